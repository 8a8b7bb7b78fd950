package test

import (
	"database/sql"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	_ "github.com/mattn/go-sqlite3"

	"userdir/internal/adapter/database/sqlite"
)

// findProjectRoot walks up from this file until it finds go.mod.
func findProjectRoot() string {
	_, filename, _, _ := runtime.Caller(0)
	dir := filepath.Dir(filename)

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	if wd, err := os.Getwd(); err == nil {
		return wd
	}

	log.Fatal("Could not find project root directory")
	return ""
}

func MigrationsPath() string {
	return filepath.Join(findProjectRoot(), "db", "migrations")
}

// InitTestDB returns a migrated in-memory sqlite database. It is limited to
// one connection since every new connection to :memory: is a new database.
func InitTestDB() *sqlite.DB {
	db, err := sql.Open("sqlite3", ":memory:")

	if err != nil {
		log.Fatal(err)
	}

	db.SetMaxOpenConns(1)

	if err := sqlite.RunMigrations(db, MigrationsPath()); err != nil {
		log.Fatal(err)
	}

	return sqlite.Wrap(db)
}

func CleanKV(t *testing.T, db *sqlite.DB) {
	if _, err := db.Exec("DELETE FROM kv_entries"); err != nil {
		t.Fatalf("Failed to clean kv_entries: %v", err)
	}
}
