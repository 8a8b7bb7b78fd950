package database

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"userdir/internal/adapter/database/memory"
	"userdir/internal/adapter/database/postgres"
	"userdir/internal/adapter/database/redis"
	"userdir/internal/adapter/database/sqlite"
	"userdir/internal/core/port"
	"userdir/internal/core/telemetry"
	"userdir/pkg/config"
)

const (
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverRedis    = "redis"
)

// Open returns the key-value store named by cfg.Driver, counted per driver
// in metrics.
func Open(ctx context.Context, cfg config.StoreConfig, logLevel string, logger *config.Logger, probe port.Telemetry, metrics *telemetry.AppMetrics) (port.KeyValueStore, error) {
	var (
		store port.KeyValueStore
		err   error
	)

	switch cfg.Driver {
	case "", DriverMemory:
		store = memory.NewStore()

	case DriverSQLite:
		var db *sqlite.DB

		db, err = sqlite.Open(cfg.SQLitePath, cfg.MigrationsPath, logLevel)
		if err == nil {
			store = sqlite.NewStore(db, probe)
		}

	case DriverPostgres:
		var db *postgres.DB

		db, err = postgres.NewDB(ctx, cfg.PostgresURL, cfg.MigrationsPath)
		if err == nil {
			store = postgres.NewStore(db, probe)
		}

	case DriverRedis:
		store, err = redis.NewStore(ctx, cfg.RedisURL)

	default:
		return nil, fmt.Errorf("unknown kv driver %q", cfg.Driver)
	}

	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", cfg.Driver, err)
	}

	driver := cfg.Driver
	if driver == "" {
		driver = DriverMemory
	}

	if logger != nil {
		logger.Info("Key-value store ready", zap.String("driver", driver))
	}

	return &countingStore{KeyValueStore: store, driver: driver, metrics: metrics}, nil
}

type countingStore struct {
	port.KeyValueStore
	driver  string
	metrics *telemetry.AppMetrics
}

func (s *countingStore) Get(ctx context.Context, key string) ([]byte, error) {
	s.metrics.RecordStoreOperation(ctx, s.driver, "get")
	return s.KeyValueStore.Get(ctx, key)
}

func (s *countingStore) Set(ctx context.Context, key string, value []byte) error {
	s.metrics.RecordStoreOperation(ctx, s.driver, "set")
	return s.KeyValueStore.Set(ctx, key, value)
}

func (s *countingStore) Delete(ctx context.Context, key string) error {
	s.metrics.RecordStoreOperation(ctx, s.driver, "delete")
	return s.KeyValueStore.Delete(ctx, key)
}
