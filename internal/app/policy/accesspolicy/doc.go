// Package accesspolicy decides what the current identity may see and do.
//
// Role is the coarse gate and team or assignee membership is the fine gate.
// Admins bypass the fine gate everywhere; every other role is limited to
// records it has a direct relationship with (leading the owning team, or
// being the assignee).
//
// Every function here is a pure function of its arguments: no I/O, no
// caching, no hidden state. Callers evaluate at render time to decide which
// controls to show and again on the write path immediately before storage is
// touched. A missing identity (identity.None), an unknown role, or a subject
// with an unset relational field always yields deny or an empty result.
package accesspolicy
