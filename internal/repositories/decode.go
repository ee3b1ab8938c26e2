package repositories

import (
	"log/slog"

	"github.com/asakaida/permission-manager/internal/entities"
)

// DecodeEntry builds an entry from raw column values.
// Field-level problems are recovered locally: a malformed permission list becomes
// empty and an unknown decision tag becomes Denied. Each recovery is logged.
func DecodeEntry(logger *slog.Logger, appName, permissionsJSON, stateTag string) *entities.PermissionEntry {
	entry := &entities.PermissionEntry{
		ApplicationIdentity: appName,
		Decision:            entities.ParseDecisionTag(stateTag),
	}

	if err := entry.UnmarshalPermissions(permissionsJSON); err != nil && logger != nil {
		logger.Warn("malformed requested permissions, using empty list",
			"app", appName, "error", err)
	}
	if !entities.IsKnownDecisionTag(stateTag) && logger != nil {
		logger.Warn("unknown permission state, treating as blocked",
			"app", appName, "state", stateTag)
	}

	return entry
}
