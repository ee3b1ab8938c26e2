package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/asakaida/permission-manager/internal/entities"
	"github.com/asakaida/permission-manager/internal/repositories"
)

// SQLitePermissionRepository implements PermissionRepository using SQLite
type SQLitePermissionRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewSQLitePermissionRepository creates a new SQLite permission repository
func NewSQLitePermissionRepository(db *sql.DB, logger *slog.Logger) repositories.PermissionRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &SQLitePermissionRepository{db: db, logger: logger}
}

// ReadAll retrieves every stored entry, ordered by application name
func (r *SQLitePermissionRepository) ReadAll(ctx context.Context) ([]*entities.PermissionEntry, error) {
	query := `
		SELECT app_name, requested_permissions, permission_state
		FROM permissions
		ORDER BY app_name
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read permissions: %w", repositories.ErrStorageCorrupt, err)
	}
	defer rows.Close()

	entries := []*entities.PermissionEntry{}
	for rows.Next() {
		var appName string
		var permissions, state sql.NullString
		if err := rows.Scan(&appName, &permissions, &state); err != nil {
			return nil, fmt.Errorf("%w: failed to scan permission entry: %w", repositories.ErrStorageCorrupt, err)
		}
		entries = append(entries, repositories.DecodeEntry(r.logger, appName, permissions.String, state.String))
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: error iterating permissions: %w", repositories.ErrStorageCorrupt, err)
	}

	return entries, nil
}

// Upsert inserts the entry or replaces every column of the existing row
func (r *SQLitePermissionRepository) Upsert(ctx context.Context, entry *entities.PermissionEntry) error {
	if err := entry.Validate(); err != nil {
		return err
	}

	permissions, err := entry.MarshalPermissions()
	if err != nil {
		return fmt.Errorf("%w: %w", repositories.ErrStorageUnavailable, err)
	}

	query := `
		INSERT INTO permissions (app_name, requested_permissions, permission_state)
		VALUES (?, ?, ?)
		ON CONFLICT (app_name)
		DO UPDATE SET
			requested_permissions = excluded.requested_permissions,
			permission_state = excluded.permission_state
	`
	_, err = r.db.ExecContext(ctx, query, entry.ApplicationIdentity, permissions, entry.Decision.Tag())
	if err != nil {
		return fmt.Errorf("%w: failed to write permission entry: %w", repositories.ErrStorageUnavailable, err)
	}

	return nil
}

// Get retrieves the entry for a single application
func (r *SQLitePermissionRepository) Get(ctx context.Context, applicationIdentity string) (*entities.PermissionEntry, error) {
	query := `
		SELECT app_name, requested_permissions, permission_state
		FROM permissions
		WHERE app_name = ?
	`
	var appName string
	var permissions, state sql.NullString

	err := r.db.QueryRowContext(ctx, query, applicationIdentity).Scan(&appName, &permissions, &state)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", repositories.ErrEntryNotFound, applicationIdentity)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: failed to get permission entry: %w", repositories.ErrStorageCorrupt, err)
	}

	return repositories.DecodeEntry(r.logger, appName, permissions.String, state.String), nil
}
