package ports

import (
	"context"

	"github.com/saa-academy/portal/internal/core/domain"
)

// IdentityStore is the durable home of persisted identities, one entry per session.
// Load returns domain.ErrSessionNotFound when no entry exists.
type IdentityStore interface {
	Load(ctx context.Context, sessionID string) ([]byte, error)
	Save(ctx context.Context, sessionID string, payload []byte) error
	Delete(ctx context.Context, sessionID string) error
}

// AuthBackend is the academy API's authentication surface.
type AuthBackend interface {
	Login(ctx context.Context, email, password string) (*domain.Identity, error)
	Register(ctx context.Context, username, email, password string) (*domain.Identity, error)
}

// SessionService owns the session lifecycle.
type SessionService interface {
	// Bootstrap never fails; anything unusable yields an anonymous session.
	Bootstrap(ctx context.Context, sessionID string) domain.Session
	Login(ctx context.Context, sessionID, email, password string) (domain.Session, error)
	Register(ctx context.Context, sessionID, username, email, password string) (domain.Session, error)
	Logout(ctx context.Context, sessionID string) domain.Session
}

// AuditRecorder accepts authentication audit events. Record must not block
// the request path.
type AuditRecorder interface {
	Record(event domain.AuthEvent)
}
