// internal/app/features/events/input.go
package events

import (
	"time"

	"github.com/nexera-events/symphony/internal/domain/models"
)

// eventInput is the body of POST and PUT. Omitted fields keep their value.
type eventInput struct {
	Title       *string    `json:"title"`
	Description *string    `json:"description"`
	Location    *string    `json:"location"`
	StartsAt    *time.Time `json:"starts_at"`
	EndsAt      *time.Time `json:"ends_at"`
	ClearEndsAt bool       `json:"clear_ends_at"`
}

func (in eventInput) apply(e *models.Event) {
	if in.Title != nil {
		e.Title = *in.Title
	}
	if in.Description != nil {
		e.Description = *in.Description
	}
	if in.Location != nil {
		e.Location = *in.Location
	}
	if in.StartsAt != nil {
		e.StartsAt = *in.StartsAt
	}
	switch {
	case in.ClearEndsAt:
		e.EndsAt = nil
	case in.EndsAt != nil:
		end := *in.EndsAt
		e.EndsAt = &end
	}
}
