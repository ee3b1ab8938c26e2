package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/asakaida/permission-manager/internal/entities"
	"github.com/asakaida/permission-manager/internal/repositories"
)

// PostgresPermissionRepository implements PermissionRepository using PostgreSQL
type PostgresPermissionRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewPostgresPermissionRepository creates a new PostgreSQL permission repository
func NewPostgresPermissionRepository(db *sql.DB, logger *slog.Logger) repositories.PermissionRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresPermissionRepository{db: db, logger: logger}
}

// ReadAll retrieves every stored entry, ordered by application name
func (r *PostgresPermissionRepository) ReadAll(ctx context.Context) ([]*entities.PermissionEntry, error) {
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
		var appName, permissions, state string
		if err := rows.Scan(&appName, &permissions, &state); err != nil {
			return nil, fmt.Errorf("%w: failed to scan permission entry: %w", repositories.ErrStorageCorrupt, err)
		}
		entries = append(entries, repositories.DecodeEntry(r.logger, appName, permissions, state))
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: error iterating permissions: %w", repositories.ErrStorageCorrupt, err)
	}

	return entries, nil
}

// Upsert inserts the entry or replaces every column of the existing row
func (r *PostgresPermissionRepository) Upsert(ctx context.Context, entry *entities.PermissionEntry) error {
	if err := entry.Validate(); err != nil {
		return err
	}

	permissions, err := entry.MarshalPermissions()
	if err != nil {
		return fmt.Errorf("%w: %w", repositories.ErrStorageUnavailable, err)
	}

	query := `
		INSERT INTO permissions (app_name, requested_permissions, permission_state)
		VALUES ($1, $2, $3)
		ON CONFLICT (app_name)
		DO UPDATE SET
			requested_permissions = EXCLUDED.requested_permissions,
			permission_state = EXCLUDED.permission_state
	`
	_, err = r.db.ExecContext(ctx, query, entry.ApplicationIdentity, permissions, entry.Decision.Tag())
	if err != nil {
		return fmt.Errorf("%w: failed to write permission entry: %w", repositories.ErrStorageUnavailable, err)
	}

	return nil
}

// Get retrieves the entry for a single application
func (r *PostgresPermissionRepository) Get(ctx context.Context, applicationIdentity string) (*entities.PermissionEntry, error) {
	query := `
		SELECT app_name, requested_permissions, permission_state
		FROM permissions
		WHERE app_name = $1
	`
	var appName, permissions, state string

	err := r.db.QueryRowContext(ctx, query, applicationIdentity).Scan(&appName, &permissions, &state)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", repositories.ErrEntryNotFound, applicationIdentity)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: failed to get permission entry: %w", repositories.ErrStorageCorrupt, err)
	}

	return repositories.DecodeEntry(r.logger, appName, permissions, state), nil
}
