package repositories

import (
	"context"

	"github.com/asakaida/permission-manager/internal/entities"
)

// PermissionRepository defines the interface for permission entry data access.
// Entries are keyed by application identity; there is at most one per identity.
type PermissionRepository interface {
	// ReadAll retrieves every stored entry. Ordering is not part of the contract.
	// Malformed permission lists decode as empty and unknown decision tags as Denied.
	ReadAll(ctx context.Context) ([]*entities.PermissionEntry, error)

	// Upsert inserts the entry or fully replaces the existing entry with the same identity
	Upsert(ctx context.Context, entry *entities.PermissionEntry) error

	// Get retrieves the entry for one application.
	// Returns ErrEntryNotFound if the application has never been registered.
	Get(ctx context.Context, applicationIdentity string) (*entities.PermissionEntry, error)
}
