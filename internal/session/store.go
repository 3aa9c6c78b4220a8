package session

import (
	"context"
	"sync"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

// Store holds the current bearer access token. The in-memory value is
// authoritative; the mirror is best effort and mirror failures degrade to
// memory-only operation without surfacing an error.
type Store struct {
	mu     sync.RWMutex
	token  string
	mirror Mirror
	log    *zap.Logger
}

// NewStore creates a token store and hydrates it from the mirror exactly once.
func NewStore(ctx context.Context, mirror Mirror, log *zap.Logger) *Store {
	if mirror == nil {
		mirror = NoopMirror{}
	}
	s := &Store{mirror: mirror, log: log}

	token, err := mirror.Load(ctx)
	if err != nil {
		log.Warn("token mirror unavailable, running memory-only", zap.Error(err))
		return s
	}
	s.token = token
	return s
}

// Get returns the current access token, or "" when absent.
func (s *Store) Get() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// Set stores a new access token and mirrors it. An empty token clears the
// store and removes the mirrored copy.
func (s *Store) Set(ctx context.Context, token string) {
	s.mu.Lock()
	s.token = token
	s.mu.Unlock()

	var err error
	if token == "" {
		err = s.mirror.Clear(ctx)
	} else {
		err = s.mirror.Save(ctx, token)
	}
	if err != nil {
		s.log.Warn("failed to mirror access token", zap.Error(err))
	}
}

// Clear removes the token from memory and the mirror.
func (s *Store) Clear(ctx context.Context) {
	s.Set(ctx, "")
}

// Claims returns the unverified JWT claims of the current token. The client
// never verifies signatures; claims are used only for expiry and identity
// hints, the backend remains the authority.
func (s *Store) Claims() (*jwt.RegisteredClaims, bool) {
	token := s.Get()
	if token == "" {
		return nil, false
	}

	claims := &jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, false
	}
	return claims, true
}

// Valid reports whether a token is present and, when it parses as a JWT with
// an expiry, not yet expired. Opaque tokens count as valid while present.
func (s *Store) Valid() bool {
	token := s.Get()
	if token == "" {
		return false
	}

	claims, ok := s.Claims()
	if !ok || claims.ExpiresAt == nil {
		return true
	}
	return time.Now().Before(claims.ExpiresAt.Time)
}
