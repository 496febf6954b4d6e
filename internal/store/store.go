// Package store defines the key-value persistence capability the rest
// of the application is written against, plus its concrete backends
// (Redis, embedded SQLite, in-memory).
package store

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Get when the key has no value.
var ErrNotFound = errors.New("store: key not found")

// Store is the injected persistence capability. Values are opaque
// bytes; callers own serialization. A failed Set is the backend's
// concern — session logic never treats it as fatal.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Remove(ctx context.Context, key string) error
	Close() error
}
