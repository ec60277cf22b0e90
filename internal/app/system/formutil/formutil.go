// Package formutil parses the identifiers clients send in URLs and bodies.
package formutil

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ErrBadID is returned for a value that is not a 24-character hex ObjectID.
var ErrBadID = errors.New("invalid id")

// IDParam parses the chi URL parameter key as an ObjectID.
func IDParam(r *http.Request, key string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(chi.URLParam(r, key))
	if err != nil {
		return primitive.NilObjectID, ErrBadID
	}
	return oid, nil
}

// OptionalID parses s as an ObjectID. Empty input yields NilObjectID.
func OptionalID(s string) (primitive.ObjectID, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return primitive.NilObjectID, nil
	}
	oid, err := primitive.ObjectIDFromHex(s)
	if err != nil {
		return primitive.NilObjectID, ErrBadID
	}
	return oid, nil
}

// OptionalIDPtr is OptionalID for pointer-valued references: empty input
// yields nil.
func OptionalIDPtr(s string) (*primitive.ObjectID, error) {
	oid, err := OptionalID(s)
	if err != nil || oid.IsZero() {
		return nil, err
	}
	return &oid, nil
}
