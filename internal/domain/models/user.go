// internal/domain/models/user.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User is anyone who can sign in: admins, team leads, and volunteers.
//
// NOTE:
//   - Role is stored as a plain string and parsed into identity.Role when a
//     session is resolved; an unrecognised value is kept as-is and denied.
//   - TeamID is the single team affiliation used by the access policy.
type User struct {
	ID           primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	FullName     string              `bson:"full_name" json:"full_name"`
	FullNameCI   string              `bson:"full_name_ci" json:"-"` // lowercase, diacritics-stripped
	Email        string              `bson:"email" json:"email"`
	EmailCI      string              `bson:"email_ci" json:"-"`
	PasswordHash string              `bson:"password_hash,omitempty" json:"-"`
	AuthMethod   string              `bson:"auth_method,omitempty" json:"auth_method,omitempty"` // password | google
	Role         string              `bson:"role" json:"role"`                                   // admin | team_lead | volunteer
	TeamID       *primitive.ObjectID `bson:"team_id,omitempty" json:"team_id,omitempty"`
	Status       string              `bson:"status,omitempty" json:"status,omitempty"` // active | disabled

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// User status values.
const (
	UserStatusActive   = "active"
	UserStatusDisabled = "disabled"
)
