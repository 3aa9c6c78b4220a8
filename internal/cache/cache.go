package cache

import (
	"context"
	"time"
)

// Cache is the client-side response cache. The poller and the payment-return
// listener invalidate entries so views pick up fresh state; list entries are
// removed by prefix since they are keyed per page.
type Cache interface {
	// Get retrieves a value by key. Returns ErrCacheMiss if not found.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores a value with the given TTL.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes a value by key.
	Delete(ctx context.Context, key string) error

	// DeletePrefix removes all values whose key starts with prefix.
	DeletePrefix(ctx context.Context, prefix string) error

	// Clear removes all entries from the cache.
	Clear(ctx context.Context) error
}

// CacheError is a sentinel error type for cache operations.
type CacheError string

func (e CacheError) Error() string { return string(e) }

const (
	// ErrCacheMiss indicates the key was not found in cache.
	ErrCacheMiss CacheError = "cache miss"
)

// Keys used across the client.
const (
	KeyUser        = "user"
	KeyCart        = "cart"
	OrderKeyPrefix = "order:"
	MyOrdersPrefix = "orders:mine:"
)

// OrderKey returns the cache key for a single order.
func OrderKey(orderID string) string {
	return OrderKeyPrefix + orderID
}
