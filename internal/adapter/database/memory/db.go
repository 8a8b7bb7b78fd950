package memory

import (
	"context"

	"github.com/patrickmn/go-cache"

	"userdir/internal/core/port"
)

// Store keeps values in process memory. Nothing expires.
type Store struct {
	items *cache.Cache
}

func NewStore() *Store {
	return &Store{items: cache.New(cache.NoExpiration, 0)}
}

func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	v, ok := s.items.Get(key)
	if !ok {
		return nil, port.ErrKeyNotFound
	}

	value := v.([]byte)
	out := make([]byte, len(value))
	copy(out, value)

	return out, nil
}

func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	stored := make([]byte, len(value))
	copy(stored, value)

	s.items.Set(key, stored, cache.NoExpiration)

	return nil
}

func (s *Store) Delete(ctx context.Context, key string) error {
	s.items.Delete(key)
	return nil
}

func (s *Store) Close() error {
	s.items.Flush()
	return nil
}
