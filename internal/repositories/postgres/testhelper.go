package postgres

import (
	"database/sql"
	"os"
	"testing"

	"github.com/asakaida/permission-manager/internal/infrastructure/config"
	"github.com/asakaida/permission-manager/internal/infrastructure/database"
	"github.com/spf13/viper"
)

// SetupTestDB creates a test database connection and runs migrations.
// The test is skipped unless PERMISSION_MANAGER_TEST_DB_PASSWORD is set.
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	if os.Getenv("PERMISSION_MANAGER_TEST_DB_PASSWORD") == "" {
		t.Skip("Integration test - requires running database")
	}

	// Initialize test config
	viper.Reset()
	if err := config.InitConfig(""); err != nil {
		t.Fatalf("Failed to init config: %v", err)
	}
	viper.Set("STORAGE_DRIVER", config.DriverPostgres)
	viper.Set("DB_PASSWORD", os.Getenv("PERMISSION_MANAGER_TEST_DB_PASSWORD"))
	viper.SetDefault("DB_NAME", "permission_manager_test")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	// Connect to database and run migrations
	db, err := database.Open(cfg)
	if err != nil {
		t.Fatalf("Failed to connect to database: %v", err)
	}

	return db.Conn()
}

// CleanupTestDB closes the database connection and cleans up test data
func CleanupTestDB(t *testing.T, db *sql.DB) {
	t.Helper()

	if _, err := db.Exec("DELETE FROM permissions"); err != nil {
		t.Logf("Warning: Failed to clean up table permissions: %v", err)
	}

	if err := db.Close(); err != nil {
		t.Logf("Warning: Failed to close database: %v", err)
	}
}
