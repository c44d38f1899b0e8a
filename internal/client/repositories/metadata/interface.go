// Package metadata is the local persistent key/value store of the client.
// Values are opaque bytes; callers decide the encoding.
package metadata

import (
	"context"
)

// Repository is the key/value contract. Implementations bound to a
// transaction must make every call part of it.
type Repository interface {
	// Get returns (nil, nil) when the key is absent.
	Get(ctx context.Context, key string) ([]byte, error)
	// GetMany reads several keys in one statement; absent keys are missing
	// from the result.
	GetMany(ctx context.Context, keys ...string) (map[string][]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, keys ...string) error
}
