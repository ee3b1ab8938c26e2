package repositories

import "errors"

var (
	// ErrStorageUnavailable means the storage could not be opened, created or written
	ErrStorageUnavailable = errors.New("permission storage unavailable")

	// ErrStorageCorrupt means the stored table could not be scanned
	ErrStorageCorrupt = errors.New("permission storage corrupt")

	// ErrEntryNotFound means no entry exists for the requested application
	ErrEntryNotFound = errors.New("permission entry not found")
)
