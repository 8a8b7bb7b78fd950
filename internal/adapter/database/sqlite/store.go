package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	sq "github.com/Masterminds/squirrel"

	"userdir/internal/core/port"
	tel "userdir/internal/core/telemetry"
)

const table = "kv_entries"

// Store is a port.KeyValueStore over the kv_entries table.
type Store struct {
	db        *DB
	telemetry port.Telemetry
}

func NewStore(db *DB, telemetry port.Telemetry) *Store {
	if telemetry == nil {
		telemetry = tel.NewNoOpProbe()
	}

	return &Store{
		db:        db,
		telemetry: telemetry,
	}
}

func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	ctx, span := s.telemetry.StartRepositorySpan(ctx, "Get", "kv_entry", map[string]interface{}{
		"db.system": "sqlite",
		"db.table":  table,
		"kv.key":    key,
	})
	defer span.End()

	startTime := time.Now()

	query, args, err := s.db.QueryBuilder.Select("payload").
		From(table).
		Where(sq.Eq{"entry_key": key}).
		Limit(1).
		ToSql()

	if err != nil {
		s.telemetry.RecordRepositoryOperation(ctx, "Get", "kv_entry", time.Since(startTime), err)
		return nil, err
	}

	var payload []byte

	err = s.db.QueryRowContext(ctx, query, args...).Scan(&payload)

	if errors.Is(err, sql.ErrNoRows) {
		s.telemetry.RecordRepositoryOperation(ctx, "Get", "kv_entry", time.Since(startTime), nil)
		return nil, port.ErrKeyNotFound
	}

	s.telemetry.RecordRepositoryOperation(ctx, "Get", "kv_entry", time.Since(startTime), err)

	if err != nil {
		return nil, err
	}

	span.SetAttributes(map[string]interface{}{"kv.bytes": len(payload)})

	return payload, nil
}

func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	ctx, span := s.telemetry.StartRepositorySpan(ctx, "Set", "kv_entry", map[string]interface{}{
		"db.system":    "sqlite",
		"db.table":     table,
		"db.operation": "UPSERT",
		"kv.key":       key,
		"kv.bytes":     len(value),
	})
	defer span.End()

	startTime := time.Now()

	query, args, err := s.db.QueryBuilder.Insert(table).
		Columns("entry_key", "payload", "updated_at").
		Values(key, value, time.Now().UTC()).
		Suffix("ON CONFLICT(entry_key) DO UPDATE SET payload = excluded.payload, updated_at = excluded.updated_at").
		ToSql()

	if err != nil {
		s.telemetry.RecordRepositoryOperation(ctx, "Set", "kv_entry", time.Since(startTime), err)
		return err
	}

	_, err = s.db.ExecContext(ctx, query, args...)
	s.telemetry.RecordRepositoryOperation(ctx, "Set", "kv_entry", time.Since(startTime), err)

	return err
}

func (s *Store) Delete(ctx context.Context, key string) error {
	query, args, err := s.db.QueryBuilder.Delete(table).
		Where(sq.Eq{"entry_key": key}).
		ToSql()

	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, query, args...)

	return err
}

func (s *Store) Close() error {
	return s.db.Close()
}
