package session

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// mirrorKey is the Redis key for the mirrored access token.
	mirrorKey = "bundlehub:session:access_token"
)

// Mirror persists the access token so it survives a client restart within
// the same session. Implementations must treat an absent token as ("", nil).
type Mirror interface {
	Load(ctx context.Context) (string, error)
	Save(ctx context.Context, token string) error
	Clear(ctx context.Context) error
}

// RedisMirror stores the token in Redis with a session TTL, so a stale
// credential ages out even if the client never clears it.
type RedisMirror struct {
	redis *redis.Client
	ttl   time.Duration
}

// NewRedisMirror creates a Redis-backed token mirror.
func NewRedisMirror(redisClient *redis.Client, ttl time.Duration) *RedisMirror {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &RedisMirror{redis: redisClient, ttl: ttl}
}

// Load retrieves the mirrored token, or "" when none is stored.
func (m *RedisMirror) Load(ctx context.Context) (string, error) {
	token, err := m.redis.Get(ctx, mirrorKey).Result()
	if err == redis.Nil {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return token, nil
}

// Save stores the token with the session TTL.
func (m *RedisMirror) Save(ctx context.Context, token string) error {
	return m.redis.Set(ctx, mirrorKey, token, m.ttl).Err()
}

// Clear removes the mirrored token.
func (m *RedisMirror) Clear(ctx context.Context) error {
	return m.redis.Del(ctx, mirrorKey).Err()
}

// NoopMirror keeps the token in process memory only.
type NoopMirror struct{}

func (NoopMirror) Load(ctx context.Context) (string, error)     { return "", nil }
func (NoopMirror) Save(ctx context.Context, token string) error { return nil }
func (NoopMirror) Clear(ctx context.Context) error              { return nil }
