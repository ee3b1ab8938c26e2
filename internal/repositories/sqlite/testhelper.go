package sqlite

import (
	"testing"

	"github.com/asakaida/permission-manager/internal/infrastructure/config"
	"github.com/asakaida/permission-manager/internal/infrastructure/database"
)

// SetupTestDB opens a migrated SQLite database in a temporary directory.
// The database is closed when the test finishes.
func SetupTestDB(t *testing.T) database.Database {
	t.Helper()
	return OpenTestDB(t, t.TempDir())
}

// OpenTestDB opens a migrated SQLite database in dataDir
func OpenTestDB(t *testing.T, dataDir string) database.Database {
	t.Helper()

	db, err := database.Open(&config.Config{
		Storage: config.StorageConfig{
			Driver:   config.DriverSQLite,
			DataDir:  dataDir,
			FileName: "permissions.db",
		},
	})
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}

	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Logf("Warning: Failed to close database: %v", err)
		}
	})

	return db
}
