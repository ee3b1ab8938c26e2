package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/asakaida/permission-manager/internal/entities"
	"github.com/asakaida/permission-manager/internal/repositories"
	"github.com/go-playground/validator/v10"
)

var (
	// ErrNoPermissions is returned when a request names no permissions
	ErrNoPermissions = errors.New("at least one permission is required")

	// ErrInvalidRequest is returned when a request fails validation for any other reason
	ErrInvalidRequest = errors.New("invalid permission request")
)

var validate = validator.New()

// submitRequest is what the request submitter accepts before it reaches the store
type submitRequest struct {
	Application string   `validate:"required"`
	Permissions []string `validate:"min=1,dive,required"`
}

// PermissionServiceInterface defines the operations used by the request submitter and decision editor
type PermissionServiceInterface interface {
	Submit(ctx context.Context, application string, permissions []string) (*entities.PermissionEntry, error)
	List(ctx context.Context) ([]*entities.PermissionEntry, error)
	Get(ctx context.Context, application string) (*entities.PermissionEntry, error)
	ChangeDecision(ctx context.Context, application string, label string) (*entities.PermissionEntry, bool, error)
}

// PermissionServiceOptions configures PermissionService
type PermissionServiceOptions struct {
	// PreservePermissions keeps the stored permission list when the decision changes.
	// When false the list is cleared, matching the behaviour of older releases.
	PreservePermissions bool
}

// PermissionService handles permission requests and decision edits
type PermissionService struct {
	repo   repositories.PermissionRepository
	opts   PermissionServiceOptions
	logger *slog.Logger
}

// NewPermissionService creates a new PermissionService
func NewPermissionService(repo repositories.PermissionRepository, opts PermissionServiceOptions, logger *slog.Logger) *PermissionService {
	if logger == nil {
		logger = slog.Default()
	}
	return &PermissionService{
		repo:   repo,
		opts:   opts,
		logger: logger,
	}
}

// Submit registers a permission request for an application.
// The entry is always stored as Denied; a previous entry for the same application is replaced.
func (s *PermissionService) Submit(ctx context.Context, application string, permissions []string) (*entities.PermissionEntry, error) {
	req := submitRequest{
		Application: application,
		Permissions: normalizePermissions(permissions),
	}
	if err := validateSubmit(req); err != nil {
		return nil, err
	}

	entry := entities.NewPermissionRequest(req.Application, req.Permissions)
	if err := s.repo.Upsert(ctx, entry); err != nil {
		return nil, fmt.Errorf("failed to submit permission request: %w", err)
	}

	s.logger.Info("permission request submitted",
		"app", entry.ApplicationIdentity,
		"permissions", entry.RequestedPermissions)

	return entry, nil
}

// List returns every stored entry
func (s *PermissionService) List(ctx context.Context) ([]*entities.PermissionEntry, error) {
	entries, err := s.repo.ReadAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list permissions: %w", err)
	}
	return entries, nil
}

// Get returns the entry for one application
func (s *PermissionService) Get(ctx context.Context, application string) (*entities.PermissionEntry, error) {
	entry, err := s.repo.Get(ctx, application)
	if err != nil {
		return nil, fmt.Errorf("failed to get permission entry: %w", err)
	}
	return entry, nil
}

// ChangeDecision sets the decision of an existing entry from an editor label.
// An unrecognized label changes nothing and reports false with no error.
// Store failures are always returned to the caller.
func (s *PermissionService) ChangeDecision(ctx context.Context, application string, label string) (*entities.PermissionEntry, bool, error) {
	decision, ok := entities.ParseDecisionLabel(label)
	if !ok {
		s.logger.Debug("ignoring unknown decision label", "app", application, "label", label)
		return nil, false, nil
	}

	current, err := s.repo.Get(ctx, application)
	if err != nil {
		return nil, false, fmt.Errorf("failed to load permission entry: %w", err)
	}

	updated := &entities.PermissionEntry{
		ApplicationIdentity:  current.ApplicationIdentity,
		RequestedPermissions: []string{},
		Decision:             decision,
	}
	if s.opts.PreservePermissions {
		updated.RequestedPermissions = current.RequestedPermissions
	}

	if err := s.repo.Upsert(ctx, updated); err != nil {
		return nil, false, fmt.Errorf("failed to change decision: %w", err)
	}

	s.logger.Info("permission decision changed",
		"app", updated.ApplicationIdentity,
		"from", current.Decision.Label(),
		"to", updated.Decision.Label())

	return updated, true, nil
}

func normalizePermissions(permissions []string) []string {
	out := make([]string, 0, len(permissions))
	for _, p := range permissions {
		out = append(out, strings.TrimSpace(p))
	}
	return out
}

func validateSubmit(req submitRequest) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}
	for _, fe := range verrs {
		switch {
		case fe.StructField() == "Permissions" && fe.Tag() == "min":
			return ErrNoPermissions
		case fe.StructField() == "Application":
			return fmt.Errorf("%w: application name is required", ErrInvalidRequest)
		}
	}
	return fmt.Errorf("%w: permission names must not be empty", ErrInvalidRequest)
}
