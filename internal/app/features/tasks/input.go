// internal/app/features/tasks/input.go
package tasks

import (
	"errors"
	"time"

	"github.com/nexera-events/symphony/internal/app/system/formutil"
	"github.com/nexera-events/symphony/internal/domain/models"
)

var errBadPriority = errors.New(`priority must be "Low"|"Medium"|"High"`)

// taskInput is the body of POST and PUT. Omitted fields keep their current
// value; an empty assignee_id or team_id clears that reference.
type taskInput struct {
	Title        *string    `json:"title"`
	Description  *string    `json:"description"`
	AssigneeID   *string    `json:"assignee_id"`
	TeamID       *string    `json:"team_id"`
	Priority     *string    `json:"priority"`
	DueDate      *time.Time `json:"due_date"`
	ClearDueDate bool       `json:"clear_due_date"`
}

// apply copies the supplied fields onto t.
func (in taskInput) apply(t *models.Task) error {
	if in.Title != nil {
		t.Title = *in.Title
	}
	if in.Description != nil {
		t.Description = *in.Description
	}
	if in.AssigneeID != nil {
		oid, err := formutil.OptionalID(*in.AssigneeID)
		if err != nil {
			return errors.New("invalid assignee_id")
		}
		t.AssigneeID = oid
	}
	if in.TeamID != nil {
		oid, err := formutil.OptionalID(*in.TeamID)
		if err != nil {
			return errors.New("invalid team_id")
		}
		t.TeamID = oid
	}
	if in.Priority != nil {
		p, ok := models.ParseTaskPriority(*in.Priority)
		if !ok {
			return errBadPriority
		}
		t.Priority = p
	}
	switch {
	case in.ClearDueDate:
		t.DueDate = nil
	case in.DueDate != nil:
		d := *in.DueDate
		t.DueDate = &d
	}
	return nil
}
