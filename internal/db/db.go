package db

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	_ "github.com/mattn/go-sqlite3"
)

// EnvPath overrides the database location.
const EnvPath = "CUSTODY_DB"

var (
	mu       sync.Mutex
	db       *sql.DB
	pathHint string
	logger   = slog.New(slog.DiscardHandler)
)

// SetLogger sets the logger used for connection and migration messages.
func SetLogger(l *slog.Logger) {
	mu.Lock()
	defer mu.Unlock()
	if l != nil {
		logger = l
	}
}

// SetPath sets the database path used by GetDB when CUSTODY_DB is unset.
// It has no effect once the connection is open.
func SetPath(path string) {
	mu.Lock()
	defer mu.Unlock()
	pathHint = path
}

// GetDB returns the shared database connection, opening it and bringing
// the schema up to date on first use.
func GetDB() (*sql.DB, error) {
	mu.Lock()
	defer mu.Unlock()

	if db != nil {
		return db, nil
	}

	path, err := resolvePath()
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	conn, err := Open(path)
	if err != nil {
		return nil, err
	}
	logger.Debug("database opened", "path", path)
	db = conn
	return db, nil
}

// Open opens the SQLite database at path with foreign keys enabled and
// initializes its schema.
func Open(path string) (*sql.DB, error) {
	conn, err := sql.Open("sqlite3", path+"?_foreign_keys=on&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := InitSchema(conn); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return conn, nil
}

// Close closes the shared database connection.
func Close() error {
	mu.Lock()
	defer mu.Unlock()
	if db == nil {
		return nil
	}
	err := db.Close()
	db = nil
	return err
}

// GetDBPath returns the path GetDB opens.
func GetDBPath() (string, error) {
	mu.Lock()
	defer mu.Unlock()
	return resolvePath()
}

func resolvePath() (string, error) {
	if p := os.Getenv(EnvPath); p != "" {
		return p, nil
	}
	if pathHint != "" {
		return pathHint, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".custody", "custody.db"), nil
}
