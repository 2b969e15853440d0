package database

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

// Config describes where the game state lives.
type Config struct {
	Driver string `env:"DATABASE_DRIVER" envDefault:"sqlite3"`
	URL    string `env:"DATABASE_URL" envDefault:"data/hostelhunt.db"`
}

// Connect opens the database and creates the schema if needed
func Connect(cfg Config) (*sqlx.DB, error) {
	switch cfg.Driver {
	case "sqlite3":
		if err := ensureDataDir(cfg.URL); err != nil {
			return nil, err
		}
	case "postgres":
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}

	db, err := sqlx.Connect(cfg.Driver, cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if cfg.Driver == "sqlite3" {
		// SQLite doesn't support multiple writers
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
	}

	if err := initializeSchema(db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

func ensureDataDir(dsn string) error {
	if dsn == ":memory:" || strings.HasPrefix(dsn, "file:") {
		return nil
	}
	dir := filepath.Dir(dsn)
	if dir == "." {
		return nil
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}
	return nil
}

// initializeSchema creates necessary tables if they don't exist
func initializeSchema(db *sqlx.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS participants (
			user_id BIGINT PRIMARY KEY,
			name TEXT NOT NULL DEFAULT '',
			student_id INTEGER NOT NULL DEFAULT 0,
			last_hint BIGINT,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create participants table: %w", err)
	}

	// A student ID can be bound to one participant only; 0 means unset.
	_, err = db.Exec(`
		CREATE UNIQUE INDEX IF NOT EXISTS participants_student_id_key
		ON participants (student_id) WHERE student_id <> 0
	`)
	if err != nil {
		return fmt.Errorf("failed to create student id index: %w", err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS tokens (
			code TEXT PRIMARY KEY,
			category TEXT NOT NULL DEFAULT '',
			claimed BOOLEAN NOT NULL DEFAULT FALSE,
			claimant TEXT NOT NULL DEFAULT '',
			hash TEXT NOT NULL DEFAULT '',
			first_hint TEXT NOT NULL DEFAULT '',
			second_hint TEXT NOT NULL DEFAULT '',
			third_hint TEXT NOT NULL DEFAULT '',
			claimed_at BIGINT
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create tokens table: %w", err)
	}

	return nil
}
