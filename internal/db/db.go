// Package db owns the local state file: a single SQLite database under the
// pokedex home directory holding the persisted session blobs.
package db

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/V2473/pokedex/internal/config"
	_ "modernc.org/sqlite"
)

// FileName is the state file inside the pokedex home directory.
const FileName = "pokedex.db"

// migrations[i] moves the schema from version i to i+1.
var migrations = []string{
	`CREATE TABLE IF NOT EXISTS blobs (
	  key        TEXT PRIMARY KEY,
	  value      TEXT NOT NULL,
	  updated_at INTEGER NOT NULL
	);`,
}

// CurrentSchemaVersion is the schema version after every migration ran.
var CurrentSchemaVersion = len(migrations)

// Init opens the state file in home, creating home (mode 0700) and the file
// (mode 0600) on first use, and brings the schema up to date. Every pooled
// connection runs in WAL mode with a busy timeout, so the web UI and the CLI
// can share one file.
func Init(home string) (*sql.DB, error) {
	if err := os.MkdirAll(home, 0700); err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", home, err)
	}
	_ = os.Chmod(home, 0700)

	path := filepath.Join(home, FileName)
	db, err := sql.Open("sqlite", path+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("failed to open state file: %w", err)
	}

	if err := requireWAL(db); err != nil {
		db.Close()
		return nil, err
	}
	if err := migrate(db); err != nil {
		db.Close()
		return nil, err
	}

	_ = os.Chmod(path, 0600)
	return db, nil
}

// ConfigurePool applies the configured pool limits. Zero leaves the
// database/sql default.
func ConfigurePool(db *sql.DB, cfg *config.Config) {
	if cfg == nil {
		return
	}
	if cfg.DBMaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.DBMaxOpenConns)
	}
	if cfg.DBMaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.DBMaxIdleConns)
	}
}

func migrate(db *sql.DB) error {
	version, err := SchemaVersion(db)
	if err != nil {
		return err
	}
	if version > CurrentSchemaVersion {
		return fmt.Errorf("state file schema %d is newer than this build (%d)", version, CurrentSchemaVersion)
	}

	for ; version < CurrentSchemaVersion; version++ {
		if _, err := db.Exec(migrations[version]); err != nil {
			return fmt.Errorf("migration %d failed: %w", version+1, err)
		}
		if err := SetSchemaVersion(db, version+1); err != nil {
			return err
		}
	}
	return nil
}

func requireWAL(db *sql.DB) error {
	var mode string
	if err := db.QueryRow("PRAGMA journal_mode;").Scan(&mode); err != nil {
		return fmt.Errorf("failed to read journal mode: %w", err)
	}
	if mode != "wal" {
		return fmt.Errorf("expected WAL mode, got %s", mode)
	}
	return nil
}

// SchemaVersion reads the user_version pragma.
func SchemaVersion(db *sql.DB) (int, error) {
	var version int
	if err := db.QueryRow("PRAGMA user_version;").Scan(&version); err != nil {
		return 0, fmt.Errorf("failed to read schema version: %w", err)
	}
	return version, nil
}

// SetSchemaVersion writes the user_version pragma.
func SetSchemaVersion(db *sql.DB, version int) error {
	if _, err := db.Exec(fmt.Sprintf("PRAGMA user_version=%d", version)); err != nil {
		return fmt.Errorf("failed to write schema version: %w", err)
	}
	return nil
}
