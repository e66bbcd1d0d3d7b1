package domain

import "time"

// AuthEventType classifies entries in the authentication audit trail.
type AuthEventType string

const (
	EventLoginSucceeded     AuthEventType = "login_succeeded"
	EventLoginFailed        AuthEventType = "login_failed"
	EventRegistered         AuthEventType = "registered"
	EventRegistrationFailed AuthEventType = "registration_failed"
	EventLoggedOut          AuthEventType = "logged_out"
	EventAccessDenied       AuthEventType = "access_denied"
	EventSessionDiscarded   AuthEventType = "session_discarded"
)

// AuthEvent is one entry of the authentication audit trail.
type AuthEvent struct {
	Type       AuthEventType
	SessionID  string
	UserID     string
	Email      string
	Role       Role
	Path       string
	RemoteAddr string
	Reason     string
	OccurredAt time.Time
}

// ShardKey groups events that must be written in order.
func (e AuthEvent) ShardKey() string {
	if e.SessionID != "" {
		return e.SessionID
	}
	return e.Email
}
