// internal/domain/models/logistics.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Logistics item statuses.
const (
	LogisticsNeeded    = "needed"
	LogisticsOrdered   = "ordered"
	LogisticsDelivered = "delivered"
)

// LogisticsItem tracks a physical resource the event needs (chairs,
// projectors, badges) and where it is in procurement.
type LogisticsItem struct {
	ID       primitive.ObjectID  `bson:"_id" json:"id"`
	Name     string              `bson:"name" json:"name"`
	NameCI   string              `bson:"name_ci" json:"-"`
	Category string              `bson:"category,omitempty" json:"category,omitempty"`
	Quantity int                 `bson:"quantity" json:"quantity"`
	Location string              `bson:"location,omitempty" json:"location,omitempty"`
	OwnerID  *primitive.ObjectID `bson:"owner_id,omitempty" json:"owner_id,omitempty"`
	Status   string              `bson:"status" json:"status"`
	Notes    string              `bson:"notes,omitempty" json:"notes,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
