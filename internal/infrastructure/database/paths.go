package database

import (
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/asakaida/permission-manager/internal/infrastructure/config"
)

// ResolveDataDir returns the directory that holds the SQLite database.
// An explicit override wins; otherwise the per-user data directory is used,
// falling back to the current working directory when it cannot be resolved.
func ResolveDataDir(override string) string {
	if override != "" {
		return override
	}
	return dataDirUnder(xdg.DataHome)
}

func dataDirUnder(base string) string {
	if base == "" {
		base = "."
		if wd, err := os.Getwd(); err == nil {
			base = wd
		}
	}
	return filepath.Join(base, config.AppDirName)
}
