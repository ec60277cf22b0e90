package auth

import (
	"context"
	"sync"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Session end reasons.
const (
	EndLogout   = "logout"
	EndReplaced = "replaced"
)

// SessionTracker keeps the server-side record behind each session cookie.
// A cookie is honoured only while its record is open, so ending a session
// revokes every copy of the cookie at once.
type SessionTracker interface {
	Start(ctx context.Context, userID primitive.ObjectID, ip, userAgent string) (primitive.ObjectID, error)
	End(ctx context.Context, sessionID primitive.ObjectID, reason string) error
	Active(ctx context.Context, sessionID, userID primitive.ObjectID) (bool, error)
}

// memoryTracker is the process-local tracker a SessionManager starts with.
type memoryTracker struct {
	mu   sync.Mutex
	open map[primitive.ObjectID]primitive.ObjectID // session id -> user id
}

func newMemoryTracker() *memoryTracker {
	return &memoryTracker{open: make(map[primitive.ObjectID]primitive.ObjectID)}
}

func (m *memoryTracker) Start(_ context.Context, userID primitive.ObjectID, _, _ string) (primitive.ObjectID, error) {
	id := primitive.NewObjectID()
	m.mu.Lock()
	m.open[id] = userID
	m.mu.Unlock()
	return id, nil
}

func (m *memoryTracker) End(_ context.Context, sessionID primitive.ObjectID, _ string) error {
	m.mu.Lock()
	delete(m.open, sessionID)
	m.mu.Unlock()
	return nil
}

func (m *memoryTracker) Active(_ context.Context, sessionID, userID primitive.ObjectID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	owner, ok := m.open[sessionID]
	return ok && owner == userID, nil
}
