package repository

import (
	"context"
	"sync"
)

// MemoryCartRepository implements PartitionRepository in process memory.
// Used in tests and when no durable store is configured.
type MemoryCartRepository struct {
	mu         sync.RWMutex
	partitions map[string][]byte
}

// NewMemoryCartRepository creates an empty in-memory partition repository.
func NewMemoryCartRepository() *MemoryCartRepository {
	return &MemoryCartRepository{partitions: make(map[string][]byte)}
}

// Load retrieves the raw JSON list for a scope, or nil when absent.
func (r *MemoryCartRepository) Load(ctx context.Context, scope string) ([]byte, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	raw, ok := r.partitions[scope]
	if !ok {
		return nil, nil
	}
	result := make([]byte, len(raw))
	copy(result, raw)
	return result, nil
}

// Save overwrites the raw JSON list for a scope.
func (r *MemoryCartRepository) Save(ctx context.Context, scope string, rawJSON []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	raw := make([]byte, len(rawJSON))
	copy(raw, rawJSON)
	r.partitions[scope] = raw
	return nil
}

// Delete removes a scope's partition entirely.
func (r *MemoryCartRepository) Delete(ctx context.Context, scope string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.partitions, scope)
	return nil
}

// Close is a no-op for the in-memory repository.
func (r *MemoryCartRepository) Close() error {
	return nil
}
