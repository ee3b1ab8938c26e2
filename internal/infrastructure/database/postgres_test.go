package database

import (
	"errors"
	"os"
	"testing"

	"github.com/asakaida/permission-manager/internal/infrastructure/config"
	"github.com/asakaida/permission-manager/internal/repositories"
)

func TestPostgres_Close(t *testing.T) {
	tests := []struct {
		name    string
		pg      *Postgres
		wantErr bool
	}{
		{
			name:    "nil DB",
			pg:      &Postgres{DB: nil},
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.pg.Close()
			if (err != nil) != tt.wantErr {
				t.Errorf("Postgres.Close() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestNewPostgres_InvalidConfig(t *testing.T) {
	// Test with invalid configuration that should fail to connect
	cfg := &config.DatabaseConfig{
		Host:     "invalid-host-that-does-not-exist.invalid",
		Port:     1,
		User:     "invalid",
		Password: "invalid",
		Database: "invalid",
		SSLMode:  "disable",
	}

	pg, err := NewPostgres(cfg)
	if err == nil {
		pg.Close()
		t.Fatal("NewPostgres() with invalid config should return error")
	}
	if !errors.Is(err, repositories.ErrStorageUnavailable) {
		t.Errorf("NewPostgres() error = %v, want ErrStorageUnavailable", err)
	}
}

func TestPostgres_Integration(t *testing.T) {
	// Requires a running database; set PERMISSION_MANAGER_TEST_DB_PASSWORD to enable
	password := os.Getenv("PERMISSION_MANAGER_TEST_DB_PASSWORD")
	if password == "" {
		t.Skip("Integration test - requires running database")
	}

	cfg := &config.Config{
		Storage: config.StorageConfig{Driver: config.DriverPostgres},
		Database: config.DatabaseConfig{
			Host:     "localhost",
			Port:     5432,
			User:     "permission_manager",
			Password: password,
			Database: "permission_manager_test",
			SSLMode:  "disable",
		},
	}

	db, err := Open(cfg)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer db.Close()

	// Second open must not fail on already-applied migrations
	db2, err := Open(cfg)
	if err != nil {
		t.Fatalf("second Open() error = %v", err)
	}
	db2.Close()

	if db.Driver() != config.DriverPostgres {
		t.Errorf("Driver() = %v, want postgres", db.Driver())
	}
}
