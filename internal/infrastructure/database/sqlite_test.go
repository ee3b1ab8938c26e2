package database

import (
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/asakaida/permission-manager/internal/infrastructure/config"
	"github.com/asakaida/permission-manager/internal/repositories"
)

func testConfig(dataDir string) *config.Config {
	return &config.Config{
		Storage: config.StorageConfig{
			Driver:   config.DriverSQLite,
			DataDir:  dataDir,
			FileName: "permissions.db",
		},
	}
}

func tableExists(t *testing.T, db *sql.DB, name string) bool {
	t.Helper()
	var count int
	err := db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?", name).Scan(&count)
	if err != nil {
		t.Fatalf("query sqlite_master: %v", err)
	}
	return count == 1
}

func TestResolveDataDir(t *testing.T) {
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}

	tests := []struct {
		name string
		got  string
		want string
	}{
		{
			name: "override wins",
			got:  ResolveDataDir("/srv/perms"),
			want: "/srv/perms",
		},
		{
			name: "under per-user data dir",
			got:  dataDirUnder("/home/alice/.local/share"),
			want: filepath.Join("/home/alice/.local/share", "permission_manager"),
		},
		{
			name: "falls back to working directory",
			got:  dataDirUnder(""),
			want: filepath.Join(wd, "permission_manager"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %q, want %q", tt.got, tt.want)
			}
		})
	}
}

func TestOpen_CreatesDirectoryAndTable(t *testing.T) {
	dataDir := filepath.Join(t.TempDir(), "nested", "permission_manager")

	db, err := Open(testConfig(dataDir))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer db.Close()

	if _, err := os.Stat(filepath.Join(dataDir, "permissions.db")); err != nil {
		t.Errorf("database file not created: %v", err)
	}
	if !tableExists(t, db.Conn(), "permissions") {
		t.Error("permissions table not created")
	}
	if db.Driver() != config.DriverSQLite {
		t.Errorf("Driver() = %v, want sqlite", db.Driver())
	}
	if db.Location() != filepath.Join(dataDir, "permissions.db") {
		t.Errorf("Location() = %v", db.Location())
	}
}

func TestOpen_Idempotent(t *testing.T) {
	dataDir := t.TempDir()

	first, err := Open(testConfig(dataDir))
	if err != nil {
		t.Fatalf("first Open() error = %v", err)
	}
	defer first.Close()

	_, err = first.Conn().Exec(
		"INSERT INTO permissions (app_name, requested_permissions, permission_state) VALUES (?, ?, ?)",
		"Calculator", `["camera"]`, "Block")
	if err != nil {
		t.Fatalf("insert: %v", err)
	}

	second, err := Open(testConfig(dataDir))
	if err != nil {
		t.Fatalf("second Open() error = %v", err)
	}
	defer second.Close()

	var count int
	if err := second.Conn().QueryRow("SELECT COUNT(*) FROM permissions").Scan(&count); err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Errorf("row count after reopen = %d, want 1", count)
	}

	m, err := second.NewMigrate()
	if err != nil {
		t.Fatalf("NewMigrate() error = %v", err)
	}
	version, dirty, err := m.Version()
	if err != nil {
		t.Fatalf("Version() error = %v", err)
	}
	if version != 1 || dirty {
		t.Errorf("Version() = %d dirty=%v, want 1 clean", version, dirty)
	}
}

func TestOpen_AdoptsUnversionedDatabase(t *testing.T) {
	dataDir := t.TempDir()

	// A database created before migrations were tracked
	raw, err := sql.Open("sqlite", filepath.Join(dataDir, "permissions.db"))
	if err != nil {
		t.Fatalf("open raw: %v", err)
	}
	_, err = raw.Exec(`CREATE TABLE permissions (
		app_name TEXT PRIMARY KEY,
		requested_permissions TEXT NOT NULL,
		permission_state TEXT NOT NULL
	)`)
	if err != nil {
		t.Fatalf("create legacy table: %v", err)
	}
	_, err = raw.Exec("INSERT INTO permissions VALUES ('Terminal', '[\"network\"]', 'Always')")
	if err != nil {
		t.Fatalf("insert legacy row: %v", err)
	}
	raw.Close()

	db, err := Open(testConfig(dataDir))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer db.Close()

	var state string
	if err := db.Conn().QueryRow("SELECT permission_state FROM permissions WHERE app_name = 'Terminal'").Scan(&state); err != nil {
		t.Fatalf("legacy row lost: %v", err)
	}
	if state != "Always" {
		t.Errorf("permission_state = %q, want Always", state)
	}
}

func TestOpenSQLite_DirectoryFailure(t *testing.T) {
	// A regular file where a directory is expected
	blocker := filepath.Join(t.TempDir(), "not-a-dir")
	if err := os.WriteFile(blocker, []byte("x"), 0o600); err != nil {
		t.Fatalf("write blocker: %v", err)
	}

	_, err := OpenSQLite(&config.StorageConfig{DataDir: filepath.Join(blocker, "sub"), FileName: "permissions.db"})
	if err == nil {
		t.Fatal("OpenSQLite() should fail when the data directory cannot be created")
	}
	if !errors.Is(err, repositories.ErrStorageUnavailable) {
		t.Errorf("OpenSQLite() error = %v, want ErrStorageUnavailable", err)
	}
}

func TestOpen_UnsupportedDriver(t *testing.T) {
	cfg := testConfig(t.TempDir())
	cfg.Storage.Driver = "mysql"

	if _, err := Open(cfg); err == nil {
		t.Fatal("Open() with unsupported driver should return error")
	}
}

func TestSQLite_Close(t *testing.T) {
	s := &SQLite{}
	if err := s.Close(); err != nil {
		t.Errorf("Close() on nil DB error = %v", err)
	}
}

func TestConnect_DoesNotMigrate(t *testing.T) {
	cfg := testConfig(t.TempDir())

	db, err := Connect(cfg)
	if err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	defer db.Close()

	if tableExists(t, db.Conn(), "permissions") {
		t.Error("Connect() should not create the permissions table")
	}

	if err := RunMigrations(db); err != nil {
		t.Fatalf("RunMigrations() error = %v", err)
	}
	if !tableExists(t, db.Conn(), "permissions") {
		t.Error("permissions table missing after RunMigrations()")
	}
}
