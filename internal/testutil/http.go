package testutil

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"

	"github.com/nexera-events/symphony/internal/app/system/auth"
	"github.com/nexera-events/symphony/internal/app/system/identity"
	"github.com/nexera-events/symphony/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type errorer interface {
	Errorf(string, ...any)
}

// AdminIdentity returns an admin with no team.
func AdminIdentity() identity.Identity {
	return identity.Identity{
		ID:    primitive.NewObjectID(),
		Name:  "Test Admin",
		Email: "admin@test.com",
		Role:  identity.RoleAdmin,
	}
}

// TeamLeadIdentity returns a team lead of the given team.
func TeamLeadIdentity(teamID primitive.ObjectID, teamName string) identity.Identity {
	return identity.Identity{
		ID:       primitive.NewObjectID(),
		Name:     "Test Lead",
		Email:    "lead@test.com",
		Role:     identity.RoleTeamLead,
		TeamID:   teamID,
		TeamName: teamName,
	}
}

// VolunteerIdentity returns a volunteer on the given team.
func VolunteerIdentity(teamID primitive.ObjectID) identity.Identity {
	return identity.Identity{
		ID:       primitive.NewObjectID(),
		Name:     "Test Volunteer",
		Email:    "volunteer@test.com",
		Role:     identity.RoleVolunteer,
		TeamID:   teamID,
		TeamName: "Test Team",
	}
}

// IdentityFor builds the identity a session for u would resolve to.
func IdentityFor(u models.User, teamName string) identity.Identity {
	return identity.FromRecord(identity.Record{
		ID:       u.ID,
		Name:     u.FullName,
		Email:    u.Email,
		Role:     u.Role,
		TeamID:   u.TeamID,
		TeamName: teamName,
	})
}

// WithUser adds an identity to the request context for testing authenticated handlers.
// This bypasses the session middleware and injects the identity directly.
func WithUser(r *http.Request, id identity.Identity) *http.Request {
	return auth.WithTestUser(r, id)
}

// NewRequest creates an HTTP request for testing.
func NewRequest(method, target string) *http.Request {
	return httptest.NewRequest(method, target, nil)
}

// NewAuthenticatedRequest creates an HTTP request with an identity in context.
func NewAuthenticatedRequest(method, target string, id identity.Identity) *http.Request {
	return WithUser(httptest.NewRequest(method, target, nil), id)
}

// JSONRequest creates a request whose body is body encoded as JSON.
func JSONRequest(method, target string, body any) *http.Request {
	buf, err := json.Marshal(body)
	if err != nil {
		panic("testutil.JSONRequest: " + err.Error())
	}
	req := httptest.NewRequest(method, target, bytes.NewReader(buf))
	req.Header.Set("Content-Type", "application/json")
	return req
}

// ResponseRecorder wraps httptest.ResponseRecorder with helper methods.
type ResponseRecorder struct {
	*httptest.ResponseRecorder
}

// NewRecorder creates a new ResponseRecorder.
func NewRecorder() *ResponseRecorder {
	return &ResponseRecorder{httptest.NewRecorder()}
}

// AssertStatus checks the response status code.
func (r *ResponseRecorder) AssertStatus(t errorer, expected int) {
	if r.Code != expected {
		t.Errorf("status code: got %d, want %d (body %s)", r.Code, expected, r.Body.String())
	}
}

// AssertContains checks if the response body contains the expected string.
func (r *ResponseRecorder) AssertContains(t errorer, expected string) {
	if !strings.Contains(r.Body.String(), expected) {
		t.Errorf("response body does not contain %q", expected)
	}
}

// AssertJSONError checks for a JSON error body with the given message.
func (r *ResponseRecorder) AssertJSONError(t errorer, msg string) {
	var body struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(r.Body.Bytes(), &body); err != nil {
		t.Errorf("response is not a JSON error: %v (body %s)", err, r.Body.String())
		return
	}
	if body.Error != msg {
		t.Errorf("error message: got %q, want %q", body.Error, msg)
	}
}

// DecodeJSON decodes the response body into v.
func (r *ResponseRecorder) DecodeJSON(t errorer, v any) {
	if err := json.Unmarshal(r.Body.Bytes(), v); err != nil {
		t.Errorf("decode response: %v (body %s)", err, r.Body.String())
	}
}
