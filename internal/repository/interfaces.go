package repository

import "context"

// Partition storage keys. One partition per identity scope, plus one
// scope-independent staging bucket for pre-login adds.
const (
	GuestScope   = "cart_guest"
	PendingScope = "pendingCart"
)

// UserScope returns the partition key for an authenticated user.
func UserScope(userID string) string {
	return "cart_" + userID
}

// PartitionRepository stores the raw JSON line list for each identity scope.
// The payload is opaque at this layer; malformed content is the cart store's
// problem to recover from, absence is (nil, nil).
type PartitionRepository interface {
	// Load retrieves the raw JSON list for a scope, or nil when absent.
	Load(ctx context.Context, scope string) ([]byte, error)

	// Save overwrites the raw JSON list for a scope.
	Save(ctx context.Context, scope string, rawJSON []byte) error

	// Delete removes a scope's partition entirely.
	Delete(ctx context.Context, scope string) error

	// Close closes the repository connection.
	Close() error
}
