package domain

// SessionState is the lifecycle position of a visitor's session.
type SessionState int

const (
	StateUninitialized SessionState = iota
	StateLoading
	StateAuthenticated
	StateAnonymous
)

func (s SessionState) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateAuthenticated:
		return "authenticated"
	case StateAnonymous:
		return "anonymous"
	default:
		return "uninitialized"
	}
}

// Session is an immutable snapshot of a visitor's session. Identity is non-nil
// exactly when State is StateAuthenticated.
type Session struct {
	ID       string
	State    SessionState
	Identity *Identity
	// Stale marks an anonymous session whose stored entry is gone or was
	// discarded. Only then is the session ID known to be worthless; an
	// anonymous session without it may still have a usable entry.
	Stale bool
}

// Anonymous returns a settled session with no identity.
func Anonymous() Session {
	return Session{State: StateAnonymous}
}

// Expired returns an anonymous session for a session ID that no longer has an
// entry behind it.
func Expired() Session {
	return Session{State: StateAnonymous, Stale: true}
}

// Authenticated returns a settled session bound to id.
func Authenticated(id string, identity *Identity) Session {
	return Session{ID: id, State: StateAuthenticated, Identity: identity}
}

// Settled reports whether the session finished loading.
func (s Session) Settled() bool {
	return s.State == StateAuthenticated || s.State == StateAnonymous
}

// Role returns the identity's role, or "" for anything but an authenticated session.
func (s Session) Role() Role {
	if s.State != StateAuthenticated || s.Identity == nil {
		return ""
	}
	return s.Identity.Role
}
