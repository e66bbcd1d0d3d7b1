package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/saa-academy/portal/internal/core/domain"
)

const sessionKeyPrefix = "session:"

// IdentityStore keeps one serialized identity per session.
// Key format: session:<session_id>
type IdentityStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewIdentityStore creates an IdentityStore. A ttl of zero keeps entries until
// they are deleted explicitly.
func NewIdentityStore(client *redis.Client, ttl time.Duration) *IdentityStore {
	if ttl < 0 {
		ttl = 0
	}
	return &IdentityStore{client: client, ttl: ttl}
}

// Load returns the stored payload, or domain.ErrSessionNotFound.
func (s *IdentityStore) Load(ctx context.Context, sessionID string) ([]byte, error) {
	payload, err := s.client.Get(ctx, s.key(sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, domain.ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("session load: %w", err)
	}
	return payload, nil
}

// Save writes payload, replacing any previous entry.
func (s *IdentityStore) Save(ctx context.Context, sessionID string, payload []byte) error {
	if err := s.client.Set(ctx, s.key(sessionID), payload, s.ttl).Err(); err != nil {
		return fmt.Errorf("session save: %w", err)
	}
	return nil
}

// Delete removes the entry. Deleting a missing entry is not an error.
func (s *IdentityStore) Delete(ctx context.Context, sessionID string) error {
	if err := s.client.Del(ctx, s.key(sessionID)).Err(); err != nil {
		return fmt.Errorf("session delete: %w", err)
	}
	return nil
}

func (s *IdentityStore) key(sessionID string) string {
	return sessionKeyPrefix + sessionID
}
