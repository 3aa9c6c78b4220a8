package service

import (
	"context"
	"encoding/json"
	"sync"

	"bundlehub-client/internal/model"
	"bundlehub-client/internal/repository"
	"bundlehub-client/pkg/uid"

	"go.uber.org/zap"
)

// CartStore holds the pending, not-yet-server-committed cart lines for the
// active identity scope and keeps the scope's partition in the repository in
// sync on every mutation.
//
// Exactly one partition is active at a time. Identity transitions follow a
// strict reset -> load -> cleanup -> re-enable-persistence order; the
// suppressPersist guard keeps a mutation issued mid-transition from
// overwriting the target partition with an empty list before it is loaded.
type CartStore struct {
	mu   sync.Mutex
	repo repository.PartitionRepository
	log  *zap.Logger

	lines           []model.CartLine
	scope           string
	suppressPersist bool
}

// NewCartStore creates a cart store with no active scope. Mutations persist
// nothing until the first SetIdentity call establishes a partition.
func NewCartStore(repo repository.PartitionRepository, log *zap.Logger) *CartStore {
	return &CartStore{
		repo:            repo,
		log:             log,
		suppressPersist: true,
	}
}

// ScopeFor derives the partition key for a user id, "" meaning guest.
func ScopeFor(userID string) string {
	if userID == "" {
		return repository.GuestScope
	}
	return repository.UserScope(userID)
}

// SetIdentity switches the active scope to the given user ("" for guest).
// Repeated calls with an unchanged identity are no-ops. On a genuine
// transition the in-memory list is replaced with the new scope's stored
// list, and stale partitions are cleaned up: the guest partition when a
// guest logs in, the previous user's partition when accounts switch on a
// shared device.
func (s *CartStore) SetIdentity(ctx context.Context, userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current := ScopeFor(userID)
	if current == s.scope {
		return
	}
	prev := s.scope

	s.lines = nil
	s.suppressPersist = true

	s.lines = s.loadPartition(ctx, current)

	if prev == repository.GuestScope && current != repository.GuestScope {
		s.deletePartition(ctx, prev)
	}
	if prev != "" && prev != repository.GuestScope &&
		current != repository.GuestScope && prev != current {
		s.deletePartition(ctx, prev)
	}

	s.scope = current
	s.suppressPersist = false
}

// Scope returns the active partition key, "" before the first SetIdentity.
func (s *CartStore) Scope() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.scope
}

// Lines returns a copy of the current cart lines in insertion order.
func (s *CartStore) Lines() []model.CartLine {
	s.mu.Lock()
	defer s.mu.Unlock()

	lines := make([]model.CartLine, len(s.lines))
	copy(lines, s.lines)
	return lines
}

// Add appends a line, or merges into the existing line matching on
// (product, phone number) by summing quantities. Returns the id of the
// affected line.
func (s *CartStore) Add(ctx context.Context, line model.CartLine) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if line.Quantity <= 0 {
		line.Quantity = 1
	}

	for i := range s.lines {
		if s.lines[i].ProductID == line.ProductID && s.lines[i].PhoneNumber == line.PhoneNumber {
			s.lines[i].Quantity += line.Quantity
			s.lines[i].PhoneNumber = line.PhoneNumber
			s.persist(ctx)
			return s.lines[i].ID
		}
	}

	line.ID = uid.New()
	s.lines = append(s.lines, line)
	s.persist(ctx)
	return line.ID
}

// RemoveByProduct removes all lines for a product.
func (s *CartStore) RemoveByProduct(ctx context.Context, productID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.lines[:0]
	for _, line := range s.lines {
		if line.ProductID != productID {
			kept = append(kept, line)
		}
	}
	s.lines = kept
	s.persist(ctx)
}

// RemoveByID removes the single line with the given identifier.
func (s *CartStore) RemoveByID(ctx context.Context, lineID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.lines[:0]
	for _, line := range s.lines {
		if line.ID != lineID {
			kept = append(kept, line)
		}
	}
	s.lines = kept
	s.persist(ctx)
}

// Clear empties the list for the current scope.
func (s *CartStore) Clear(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lines = nil
	s.persist(ctx)
}

// loadPartition reads and decodes a scope's stored lines. Absent or
// malformed data yields an empty list; storage trouble never surfaces to
// the caller.
func (s *CartStore) loadPartition(ctx context.Context, scope string) []model.CartLine {
	raw, err := s.repo.Load(ctx, scope)
	if err != nil {
		s.log.Warn("failed to load cart partition",
			zap.String("scope", scope), zap.Error(err))
		return nil
	}
	if raw == nil {
		return nil
	}

	var lines []model.CartLine
	if err := json.Unmarshal(raw, &lines); err != nil {
		s.log.Warn("malformed cart partition, starting empty",
			zap.String("scope", scope), zap.Error(err))
		return nil
	}
	return lines
}

func (s *CartStore) deletePartition(ctx context.Context, scope string) {
	if err := s.repo.Delete(ctx, scope); err != nil {
		s.log.Warn("failed to delete cart partition",
			zap.String("scope", scope), zap.Error(err))
	}
}

// persist writes the full list under the active scope. Callers must hold
// the lock.
func (s *CartStore) persist(ctx context.Context) {
	if s.suppressPersist || s.scope == "" {
		return
	}

	raw, err := json.Marshal(s.lines)
	if err != nil {
		s.log.Warn("failed to encode cart lines", zap.Error(err))
		return
	}
	if err := s.repo.Save(ctx, s.scope, raw); err != nil {
		s.log.Warn("failed to persist cart partition",
			zap.String("scope", s.scope), zap.Error(err))
	}
}
