package port

import (
	"context"
	"errors"
)

var ErrKeyNotFound = errors.New("key not found")

// KeyValueStore holds opaque values under string keys. Set replaces the
// whole value; it is atomic for a single key and nothing more.
type KeyValueStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Close() error
}
