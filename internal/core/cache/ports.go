package cache

import (
	"context"
	"errors"
	"time"
)

// ErrKeyNotFound is returned by Get when the key holds no value.
var ErrKeyNotFound = errors.New("key not found")

// Cache is the key/value port used to persist whole collections.
// Values are opaque byte slices; callers own the encoding.
type Cache interface {
	// Get returns the value stored under key, or ErrKeyNotFound.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set overwrites the value under key. A zero TTL never expires.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes key.
	Delete(ctx context.Context, key string) error

	// Ping checks that the backing service is reachable.
	Ping(ctx context.Context) error

	// Close releases the underlying connection.
	Close() error
}
