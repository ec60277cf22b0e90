// internal/domain/models/team.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Well-known team names that carry delegated permissions.
const (
	TeamSponsorship = "Sponsorship"
	TeamLogistics   = "Logistics"
)

// Team groups volunteers under a lead. Membership lives on User.TeamID.
type Team struct {
	ID     primitive.ObjectID  `bson:"_id" json:"id"`
	Name   string              `bson:"name" json:"name"`
	NameCI string              `bson:"name_ci" json:"-"`
	LeadID *primitive.ObjectID `bson:"lead_id,omitempty" json:"lead_id,omitempty"`
	Icon   string              `bson:"icon,omitempty" json:"icon,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
