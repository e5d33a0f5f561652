package repository

import (
	"context"
	"time"
)

// Cache defines the interface for the optional read cache in front of
// the products table. Implementations must be safe for concurrent use.
type Cache interface {
	// Get retrieves a value by key.
	// Returns ErrCacheMiss if the key doesn't exist.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores a value with a TTL. A zero TTL means no expiry.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes a value by key. Missing keys are not an error.
	Delete(ctx context.Context, key string) error
}
