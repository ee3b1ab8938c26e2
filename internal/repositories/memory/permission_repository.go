package memory

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/asakaida/permission-manager/internal/entities"
	"github.com/asakaida/permission-manager/internal/repositories"
)

// row mirrors the persisted columns so decoding behaves like the SQL backends
type row struct {
	permissions string
	state       string
}

// MemoryPermissionRepository implements PermissionRepository in process memory.
// Data is lost when the process exits.
type MemoryPermissionRepository struct {
	mu     sync.RWMutex
	rows   map[string]row
	logger *slog.Logger
}

// NewMemoryPermissionRepository creates an empty in-memory repository
func NewMemoryPermissionRepository(logger *slog.Logger) *MemoryPermissionRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &MemoryPermissionRepository{rows: make(map[string]row), logger: logger}
}

// ReadAll retrieves every stored entry, ordered by application name
func (r *MemoryPermissionRepository) ReadAll(ctx context.Context) ([]*entities.PermissionEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.rows))
	for name := range r.rows {
		names = append(names, name)
	}
	sort.Strings(names)

	entries := make([]*entities.PermissionEntry, 0, len(names))
	for _, name := range names {
		rw := r.rows[name]
		entries = append(entries, repositories.DecodeEntry(r.logger, name, rw.permissions, rw.state))
	}
	return entries, nil
}

// Upsert inserts the entry or replaces the existing one
func (r *MemoryPermissionRepository) Upsert(ctx context.Context, entry *entities.PermissionEntry) error {
	if err := entry.Validate(); err != nil {
		return err
	}

	permissions, err := entry.MarshalPermissions()
	if err != nil {
		return fmt.Errorf("%w: %w", repositories.ErrStorageUnavailable, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.rows[entry.ApplicationIdentity] = row{permissions: permissions, state: entry.Decision.Tag()}
	return nil
}

// Get retrieves the entry for a single application
func (r *MemoryPermissionRepository) Get(ctx context.Context, applicationIdentity string) (*entities.PermissionEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rw, ok := r.rows[applicationIdentity]
	if !ok {
		return nil, fmt.Errorf("%w: %s", repositories.ErrEntryNotFound, applicationIdentity)
	}
	return repositories.DecodeEntry(r.logger, applicationIdentity, rw.permissions, rw.state), nil
}

// InsertRaw stores column values verbatim, bypassing validation
func (r *MemoryPermissionRepository) InsertRaw(appName, permissions, state string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rows[appName] = row{permissions: permissions, state: state}
	return nil
}
