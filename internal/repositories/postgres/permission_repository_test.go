package postgres

import (
	"testing"

	"github.com/asakaida/permission-manager/internal/infrastructure/logging"
	"github.com/asakaida/permission-manager/internal/repositories/repotest"
)

func TestPostgresPermissionRepository_Contract(t *testing.T) {
	repotest.RunPermissionRepositorySuite(t, func(t *testing.T) *repotest.Fixture {
		db := SetupTestDB(t)
		t.Cleanup(func() { CleanupTestDB(t, db) })

		// Start every subtest from an empty table
		if _, err := db.Exec("DELETE FROM permissions"); err != nil {
			t.Fatalf("Failed to clear permissions: %v", err)
		}

		return &repotest.Fixture{
			Repo: NewPostgresPermissionRepository(db, logging.Discard()),
			InsertRaw: func(appName, permissions, state string) error {
				_, err := db.Exec(
					"INSERT INTO permissions (app_name, requested_permissions, permission_state) VALUES ($1, $2, $3)",
					appName, permissions, state)
				return err
			},
		}
	})
}
