package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/saa-academy/portal/internal/api/metrics"
	"github.com/saa-academy/portal/internal/core/domain"
	"github.com/saa-academy/portal/internal/core/ports"
)

const defaultLoadTimeout = 2 * time.Second

// SessionService keeps persisted identities in an IdentityStore and obtains
// new ones from the academy API.
type SessionService struct {
	store       ports.IdentityStore
	backend     ports.AuthBackend
	log         zerolog.Logger
	loadTimeout time.Duration
	newID       func() string
	loads       singleflight.Group
}

// NewSessionService returns a SessionService. A non-positive loadTimeout falls
// back to defaultLoadTimeout.
func NewSessionService(store ports.IdentityStore, backend ports.AuthBackend, loadTimeout time.Duration, log zerolog.Logger) *SessionService {
	if loadTimeout <= 0 {
		loadTimeout = defaultLoadTimeout
	}
	return &SessionService{
		store:       store,
		backend:     backend,
		log:         log,
		loadTimeout: loadTimeout,
		newID:       uuid.NewString,
	}
}

// Bootstrap rehydrates the identity stored for sessionID. Concurrent calls for
// the same session share a single storage read. A missing or corrupt entry
// yields an Expired session; storage errors and cancellation yield a plain
// anonymous one so the session ID survives.
func (s *SessionService) Bootstrap(ctx context.Context, sessionID string) domain.Session {
	if sessionID == "" {
		metrics.SessionBootstrapsTotal.WithLabelValues("no_session").Inc()
		return domain.Anonymous()
	}

	// The shared load must not inherit one caller's cancellation; each caller
	// gives up on its own ctx instead.
	loaded := s.loads.DoChan(sessionID, func() (any, error) {
		return s.load(context.WithoutCancel(ctx), sessionID), nil
	})
	select {
	case res := <-loaded:
		return res.Val.(domain.Session)
	case <-ctx.Done():
		metrics.SessionBootstrapsTotal.WithLabelValues("cancelled").Inc()
		return domain.Anonymous()
	}
}

func (s *SessionService) load(ctx context.Context, sessionID string) domain.Session {
	loadCtx, cancel := context.WithTimeout(ctx, s.loadTimeout)
	defer cancel()

	payload, err := s.store.Load(loadCtx, sessionID)
	switch {
	case errors.Is(err, domain.ErrSessionNotFound):
		metrics.SessionBootstrapsTotal.WithLabelValues("missing").Inc()
		return domain.Expired()
	case err != nil:
		s.log.Warn().Err(err).Msg("session load failed, continuing as anonymous")
		metrics.SessionBootstrapsTotal.WithLabelValues("error").Inc()
		return domain.Anonymous()
	}

	identity, err := decodeIdentity(payload)
	if err != nil {
		s.log.Warn().Err(err).Msg("discarding unreadable session entry")
		metrics.SessionBootstrapsTotal.WithLabelValues("corrupt").Inc()
		if delErr := s.store.Delete(loadCtx, sessionID); delErr != nil {
			s.log.Warn().Err(delErr).Msg("failed to delete corrupt session entry")
		}
		return domain.Expired()
	}

	metrics.SessionBootstrapsTotal.WithLabelValues("authenticated").Inc()
	return domain.Authenticated(sessionID, identity)
}

// Login authenticates against the academy API and binds the resulting identity
// to a new session. On failure nothing is persisted and sessionID stays valid.
func (s *SessionService) Login(ctx context.Context, sessionID, email, password string) (domain.Session, error) {
	identity, err := s.backend.Login(ctx, email, password)
	if err != nil {
		metrics.LoginsTotal.WithLabelValues("login", outcome(err)).Inc()
		return domain.Session{}, err
	}
	sess, err := s.establish(ctx, sessionID, identity)
	metrics.LoginsTotal.WithLabelValues("login", outcome(err)).Inc()
	return sess, err
}

// Register creates an account through the academy API, which signs the new
// account in, and binds the identity to a new session.
func (s *SessionService) Register(ctx context.Context, sessionID, username, email, password string) (domain.Session, error) {
	identity, err := s.backend.Register(ctx, username, email, password)
	if err != nil {
		metrics.LoginsTotal.WithLabelValues("register", outcome(err)).Inc()
		return domain.Session{}, err
	}
	sess, err := s.establish(ctx, sessionID, identity)
	metrics.LoginsTotal.WithLabelValues("register", outcome(err)).Inc()
	return sess, err
}

// Logout forgets the identity bound to sessionID. Without a session ID there is
// nothing stored and no storage call is made.
func (s *SessionService) Logout(ctx context.Context, sessionID string) domain.Session {
	if sessionID == "" {
		return domain.Anonymous()
	}
	if err := s.store.Delete(ctx, sessionID); err != nil {
		s.log.Warn().Err(err).Msg("failed to delete session entry on logout")
	}
	return domain.Anonymous()
}

// establish persists identity under a fresh session ID. The previous entry, if
// any, is dropped only after the new one is written.
func (s *SessionService) establish(ctx context.Context, previousID string, identity *domain.Identity) (domain.Session, error) {
	if !identity.Complete() {
		return domain.Session{}, fmt.Errorf("%w: incomplete identity in response", domain.ErrBackendFailure)
	}

	payload, err := json.Marshal(identity)
	if err != nil {
		return domain.Session{}, fmt.Errorf("encode identity: %w", err)
	}

	sessionID := s.newID()
	if err := s.store.Save(ctx, sessionID, payload); err != nil {
		return domain.Session{}, fmt.Errorf("persist session: %w", err)
	}

	if previousID != "" && previousID != sessionID {
		if err := s.store.Delete(ctx, previousID); err != nil {
			s.log.Warn().Err(err).Msg("failed to drop previous session entry")
		}
	}

	s.log.Info().Str("user_id", identity.ID).Str("role", string(identity.Role)).Msg("session established")
	return domain.Authenticated(sessionID, identity), nil
}

func decodeIdentity(payload []byte) (*domain.Identity, error) {
	var identity domain.Identity
	if err := json.Unmarshal(payload, &identity); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrStorageCorrupt, err)
	}
	if !identity.Complete() {
		return nil, fmt.Errorf("%w: incomplete identity", domain.ErrStorageCorrupt)
	}
	return &identity, nil
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, domain.ErrInvalidCredentials):
		return "invalid_credentials"
	case errors.Is(err, domain.ErrRegistrationRejected):
		return "rejected"
	case errors.Is(err, domain.ErrBackendUnavailable):
		return "unavailable"
	default:
		return "error"
	}
}
