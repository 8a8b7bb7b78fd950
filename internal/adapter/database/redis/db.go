package redis

import (
	"context"
	"errors"
	"fmt"

	goredis "github.com/redis/go-redis/v9"

	"userdir/internal/core/port"
)

// Store keeps each key as a plain Redis string without expiry.
type Store struct {
	client *goredis.Client
}

func NewStore(ctx context.Context, url string) (*Store, error) {
	if url == "" {
		return nil, errors.New("REDIS_URL is not set")
	}

	opts, err := goredis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}

	client := goredis.NewClient(opts)

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return NewStoreWithClient(client), nil
}

// NewStoreWithClient takes ownership of client; Close closes it.
func NewStoreWithClient(client *goredis.Client) *Store {
	return &Store{client: client}
}

func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	value, err := s.client.Get(ctx, key).Bytes()

	if errors.Is(err, goredis.Nil) {
		return nil, port.ErrKeyNotFound
	}

	if err != nil {
		return nil, err
	}

	return value, nil
}

func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	return s.client.Set(ctx, key, value, 0).Err()
}

func (s *Store) Delete(ctx context.Context, key string) error {
	return s.client.Del(ctx, key).Err()
}

func (s *Store) Close() error {
	return s.client.Close()
}
