package database

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/asakaida/permission-manager/internal/infrastructure/config"
	"github.com/asakaida/permission-manager/internal/repositories"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/source"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed migrations/sqlite/*.sql migrations/postgres/*.sql
var migrationsFS embed.FS

// Database is an open storage backend with its embedded migrations
type Database interface {
	// Conn returns the underlying connection pool
	Conn() *sql.DB

	// Driver returns the configured driver name ("sqlite" or "postgres")
	Driver() string

	// Location describes where the data lives, for logs and CLI output
	Location() string

	// NewMigrate returns a migrate instance bound to this database
	NewMigrate() (*migrate.Migrate, error)

	// Close closes the database connection
	Close() error
}

// Connect opens the backend selected by cfg.Storage.Driver without touching its schema
func Connect(cfg *config.Config) (Database, error) {
	switch cfg.Storage.Driver {
	case config.DriverSQLite:
		db, err := OpenSQLite(&cfg.Storage)
		if err != nil {
			return nil, err
		}
		return db, nil
	case config.DriverPostgres:
		db, err := NewPostgres(&cfg.Database)
		if err != nil {
			return nil, err
		}
		return db, nil
	default:
		return nil, fmt.Errorf("unsupported storage driver: %s", cfg.Storage.Driver)
	}
}

// Open connects to the configured backend and applies pending migrations.
// Calling Open repeatedly against the same location is safe and keeps existing data.
func Open(cfg *config.Config) (Database, error) {
	db, err := Connect(cfg)
	if err != nil {
		return nil, err
	}

	if err := RunMigrations(db); err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

// RunMigrations applies every pending migration. Already-migrated databases are left untouched.
func RunMigrations(db Database) error {
	m, err := db.NewMigrate()
	if err != nil {
		return fmt.Errorf("%w: failed to create migration instance: %w", repositories.ErrStorageUnavailable, err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("%w: failed to run migrations: %w", repositories.ErrStorageUnavailable, err)
	}

	return nil
}

func migrationSource(driver string) (source.Driver, error) {
	src, err := iofs.New(migrationsFS, "migrations/"+driver)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s migrations: %w", driver, err)
	}
	return src, nil
}
