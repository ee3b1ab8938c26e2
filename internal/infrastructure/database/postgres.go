package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/asakaida/permission-manager/internal/infrastructure/config"
	"github.com/asakaida/permission-manager/internal/repositories"
	"github.com/golang-migrate/migrate/v4"
	migratepostgres "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/lib/pq"
)

// Postgres represents PostgreSQL connection
type Postgres struct {
	DB       *sql.DB
	database string
	host     string
}

// NewPostgres creates a new PostgreSQL connection
func NewPostgres(cfg *config.DatabaseConfig) (*Postgres, error) {
	db, err := sql.Open("postgres", cfg.ConnectionString())
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open database: %w", repositories.ErrStorageUnavailable, err)
	}

	// A CLI invocation does a handful of statements; keep the pool small
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// Verify connection
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: failed to ping database: %w", repositories.ErrStorageUnavailable, err)
	}

	return &Postgres{DB: db, database: cfg.Database, host: fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)}, nil
}

// Conn returns the underlying connection pool
func (p *Postgres) Conn() *sql.DB {
	return p.DB
}

// Driver returns "postgres"
func (p *Postgres) Driver() string {
	return config.DriverPostgres
}

// Location returns host:port/database
func (p *Postgres) Location() string {
	return fmt.Sprintf("%s/%s", p.host, p.database)
}

// NewMigrate returns a migrate instance using the embedded PostgreSQL migrations
func (p *Postgres) NewMigrate() (*migrate.Migrate, error) {
	src, err := migrationSource(config.DriverPostgres)
	if err != nil {
		return nil, err
	}

	driver, err := migratepostgres.WithInstance(p.DB, &migratepostgres.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to create migration driver: %w", err)
	}

	return migrate.NewWithInstance("iofs", src, config.DriverPostgres, driver)
}

// Close closes the database connection
func (p *Postgres) Close() error {
	if p.DB != nil {
		return p.DB.Close()
	}
	return nil
}
