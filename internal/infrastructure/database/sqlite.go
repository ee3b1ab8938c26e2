package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/asakaida/permission-manager/internal/infrastructure/config"
	"github.com/asakaida/permission-manager/internal/repositories"
	"github.com/golang-migrate/migrate/v4"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	_ "modernc.org/sqlite"
)

// SQLite represents a per-user SQLite database file
type SQLite struct {
	DB   *sql.DB
	Path string
}

// OpenSQLite creates the data directory if needed and opens the database file.
// Migrations are not applied; use Open or RunMigrations for that.
func OpenSQLite(cfg *config.StorageConfig) (*SQLite, error) {
	dir := ResolveDataDir(cfg.DataDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("%w: failed to create data directory %s: %w", repositories.ErrStorageUnavailable, dir, err)
	}

	path := filepath.Join(dir, cfg.FileName)
	db, err := sql.Open("sqlite", path+"?_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open database: %w", repositories.ErrStorageUnavailable, err)
	}

	// One connection: each call's write is visible to the next call's read
	db.SetMaxOpenConns(1)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: failed to open database %s: %w", repositories.ErrStorageUnavailable, path, err)
	}
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: failed to set WAL mode: %w", repositories.ErrStorageUnavailable, err)
	}

	return &SQLite{DB: db, Path: path}, nil
}

// Conn returns the underlying connection pool
func (s *SQLite) Conn() *sql.DB {
	return s.DB
}

// Driver returns "sqlite"
func (s *SQLite) Driver() string {
	return config.DriverSQLite
}

// Location returns the database file path
func (s *SQLite) Location() string {
	return s.Path
}

// NewMigrate returns a migrate instance using the embedded SQLite migrations
func (s *SQLite) NewMigrate() (*migrate.Migrate, error) {
	src, err := migrationSource(config.DriverSQLite)
	if err != nil {
		return nil, err
	}

	driver, err := migratesqlite.WithInstance(s.DB, &migratesqlite.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to create migration driver: %w", err)
	}

	return migrate.NewWithInstance("iofs", src, config.DriverSQLite, driver)
}

// Close closes the database connection
func (s *SQLite) Close() error {
	if s.DB != nil {
		return s.DB.Close()
	}
	return nil
}
