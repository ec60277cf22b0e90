// internal/app/system/identity/holder.go
package identity

import "sync/atomic"

// Holder owns at most one active Identity. It has two states, empty and
// set; Set and Clear are the only transitions.
//
// Each live connection keeps one: it is set on connect, refreshed on every
// change, and cleared when the session ends, while pushes read it. Reads
// never block and always observe the latest completed write, so a Clear
// is visible to any check issued after it returns.
type Holder struct {
	cur atomic.Pointer[Identity]
}

// NewHolder returns an empty Holder.
func NewHolder() *Holder {
	return &Holder{}
}

// Set replaces any existing identity.
func (h *Holder) Set(id Identity) {
	if !id.Present() {
		h.cur.Store(nil)
		return
	}
	h.cur.Store(&id)
}

// Get returns the current identity, or None.
func (h *Holder) Get() Identity {
	if h == nil {
		return None
	}
	p := h.cur.Load()
	if p == nil {
		return None
	}
	return *p
}

// Clear drops the current identity. Calling it on an empty Holder is a no-op.
func (h *Holder) Clear() {
	h.cur.Store(nil)
}
