package entities

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ErrInvalidEntry is returned when a permission entry fails validation
var ErrInvalidEntry = errors.New("invalid permission entry")

var validate = validator.New()

// PermissionEntry is the stored decision for one application.
// Example: Calculator requested [camera microphone] -> Block
type PermissionEntry struct {
	ApplicationIdentity  string        `validate:"required"` // Unique key, exact match
	RequestedPermissions []string      // Permission identifiers in request order
	Decision             DecisionState // Current decision
}

// NewPermissionRequest builds the entry a fresh request is stored as.
// The decision always starts as Denied regardless of what was requested.
func NewPermissionRequest(applicationIdentity string, permissions []string) *PermissionEntry {
	return &PermissionEntry{
		ApplicationIdentity:  applicationIdentity,
		RequestedPermissions: permissions,
		Decision:             Denied,
	}
}

// String returns a string representation of the entry
// Format: app [perm1, perm2] -> Label
func (e *PermissionEntry) String() string {
	return fmt.Sprintf("%s [%s] -> %s", e.ApplicationIdentity, e.JoinedPermissions(), e.Decision.Label())
}

// JoinedPermissions returns the requested permissions as a human-readable list
func (e *PermissionEntry) JoinedPermissions() string {
	return strings.Join(e.RequestedPermissions, ", ")
}

// Validate checks if the entry can be stored
func (e *PermissionEntry) Validate() error {
	if err := validate.Struct(e); err != nil {
		return fmt.Errorf("%w: application identity is required", ErrInvalidEntry)
	}
	if !e.Decision.IsValid() {
		return fmt.Errorf("%w: unknown decision state %d", ErrInvalidEntry, int(e.Decision))
	}
	return nil
}

// MarshalPermissions serializes the requested permissions to a JSON array for storage.
// A nil list is stored as an empty array.
func (e *PermissionEntry) MarshalPermissions() (string, error) {
	perms := e.RequestedPermissions
	if perms == nil {
		perms = []string{}
	}
	data, err := json.Marshal(perms)
	if err != nil {
		return "", fmt.Errorf("failed to marshal requested permissions: %w", err)
	}
	return string(data), nil
}

// UnmarshalPermissions deserializes a stored JSON array into the entry.
// On malformed input the list is reset to empty and the decode error is returned
// so the caller can report it without failing the whole read.
func (e *PermissionEntry) UnmarshalPermissions(data string) error {
	var perms []string
	if err := json.Unmarshal([]byte(data), &perms); err != nil {
		e.RequestedPermissions = []string{}
		return fmt.Errorf("failed to unmarshal requested permissions: %w", err)
	}
	if perms == nil {
		perms = []string{}
	}
	e.RequestedPermissions = perms
	return nil
}

// Clone returns a deep copy of the entry
func (e *PermissionEntry) Clone() *PermissionEntry {
	perms := make([]string, len(e.RequestedPermissions))
	copy(perms, e.RequestedPermissions)
	return &PermissionEntry{
		ApplicationIdentity:  e.ApplicationIdentity,
		RequestedPermissions: perms,
		Decision:             e.Decision,
	}
}
