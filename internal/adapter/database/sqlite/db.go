package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"
	sqldblogger "github.com/simukti/sqldb-logger"
	"github.com/simukti/sqldb-logger/logadapter/zerologadapter"
	"github.com/uptrace/opentelemetry-go-extra/otelsql"
	"go.opentelemetry.io/otel"
)

type DB struct {
	*sql.DB
	QueryBuilder *squirrel.StatementBuilderType
}

// Wrap attaches a query builder to an already opened connection.
func Wrap(db *sql.DB) *DB {
	queryBuilder := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question)

	return &DB{
		DB:           db,
		QueryBuilder: &queryBuilder,
	}
}

// Open returns a traced, logged connection to the database file at path,
// migrated to the latest schema. Migrations run on the returned handle,
// so ":memory:" works too.
func Open(path string, migrationsPath string, logLevel string) (*DB, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	tracedDB, err := otelsql.Open("sqlite3", path,
		otelsql.WithDBSystem("sqlite"),
		otelsql.WithDBName("userdir"),
		otelsql.WithTracerProvider(otel.GetTracerProvider()),
	)
	if err != nil {
		return nil, err
	}

	level, err := zerolog.ParseLevel(logLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}

	logger := zerolog.New(os.Stdout).Level(level).With().Timestamp().Str("component", "sqlite").Logger()

	db := sqldblogger.OpenDriver(path, tracedDB.Driver(), zerologadapter.New(logger))

	// one writer at a time, sqlite locks the whole file anyway
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if isMemoryPath(path) {
		// the database lives and dies with its only connection
		db.SetConnMaxLifetime(0)
	} else {
		db.SetConnMaxLifetime(5 * time.Minute)
	}

	if err := RunMigrations(db, migrationsPath); err != nil {
		db.Close()
		return nil, err
	}

	return Wrap(db), nil
}

func isMemoryPath(path string) bool {
	return path == ":memory:" || strings.Contains(path, "mode=memory") || strings.HasPrefix(path, "file::memory:")
}

func RunMigrations(db *sql.DB, migrationsPath string) error {
	driver, err := sqlite3.WithInstance(db, &sqlite3.Config{})
	if err != nil {
		return fmt.Errorf("failed to create migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(
		"file://"+filepath.Join(migrationsPath, "sqlite"),
		"sqlite3",
		driver,
	)
	if err != nil {
		return fmt.Errorf("failed to create migration instance: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}
