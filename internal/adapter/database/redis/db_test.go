package redis_test

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"userdir/internal/adapter/database/keyvalue"
	"userdir/internal/adapter/database/redis"
	"userdir/internal/core/port"
)

func newStore(t *testing.T) (*redis.Store, *miniredis.Miniredis) {
	t.Helper()

	server := miniredis.RunT(t)

	store, err := redis.NewStore(context.Background(), "redis://"+server.Addr())
	require.NoError(t, err)

	t.Cleanup(func() { _ = store.Close() })

	return store, server
}

func TestStore_GetMissingKey(t *testing.T) {
	store, _ := newStore(t)

	_, err := store.Get(context.Background(), "todos")

	assert.ErrorIs(t, err, port.ErrKeyNotFound)
}

func TestStore_SetGetDelete(t *testing.T) {
	ctx := context.Background()
	store, server := newStore(t)

	require.NoError(t, store.Set(ctx, "todos", []byte(`[{"id":1}]`)))

	got, err := store.Get(ctx, "todos")
	require.NoError(t, err)
	assert.Equal(t, `[{"id":1}]`, string(got))

	raw, err := server.Get("todos")
	require.NoError(t, err)
	assert.Equal(t, `[{"id":1}]`, raw)
	assert.Zero(t, server.TTL("todos"))

	require.NoError(t, store.Delete(ctx, "todos"))

	_, err = store.Get(ctx, "todos")
	assert.ErrorIs(t, err, port.ErrKeyNotFound)
}

func TestNewStore_Errors(t *testing.T) {
	_, err := redis.NewStore(context.Background(), "")
	assert.Error(t, err)

	_, err = redis.NewStore(context.Background(), "not a url")
	assert.Error(t, err)

	server := miniredis.RunT(t)
	addr := server.Addr()
	server.Close()

	_, err = redis.NewStore(context.Background(), "redis://"+addr)
	assert.ErrorContains(t, err, "redis ping")
}

func TestTodoRepository_OnRedis(t *testing.T) {
	ctx := context.Background()
	store, _ := newStore(t)
	repo := keyvalue.NewTodoRepository(store)

	first, err := repo.Add(ctx, "buy milk")
	require.NoError(t, err)
	assert.Equal(t, 1, first.ID)

	todos, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, todos, 1)
}
