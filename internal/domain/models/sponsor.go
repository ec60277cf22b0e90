// internal/domain/models/sponsor.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Sponsor tiers.
const (
	SponsorTierPlatinum = "platinum"
	SponsorTierGold     = "gold"
	SponsorTierSilver   = "silver"
	SponsorTierBronze   = "bronze"
)

// Sponsor statuses.
const (
	SponsorProspect  = "prospect"
	SponsorCommitted = "committed"
	SponsorPaid      = "paid"
)

// Sponsor is an organisation funding the event.
// Amount is in minor currency units.
type Sponsor struct {
	ID           primitive.ObjectID `bson:"_id" json:"id"`
	Name         string             `bson:"name" json:"name"`
	NameCI       string             `bson:"name_ci" json:"-"`
	Tier         string             `bson:"tier" json:"tier"`
	ContactName  string             `bson:"contact_name,omitempty" json:"contact_name,omitempty"`
	ContactEmail string             `bson:"contact_email,omitempty" json:"contact_email,omitempty"`
	Amount       int64              `bson:"amount" json:"amount"`
	Status       string             `bson:"status" json:"status"`
	Notes        string             `bson:"notes,omitempty" json:"notes,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
