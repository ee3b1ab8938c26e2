package handlers

import (
	"errors"
	"fmt"
	"strings"

	"github.com/asakaida/permission-manager/internal/entities"
	"github.com/asakaida/permission-manager/internal/repositories"
	"github.com/asakaida/permission-manager/internal/services"
	"github.com/fatih/color"
)

// === Shared Helper Functions for all handlers ===

// decisionColors maps each state to the color used in list output
var decisionColors = map[entities.DecisionState]color.Attribute{
	entities.OneShot:    color.FgYellow,
	entities.Persistent: color.FgGreen,
	entities.Denied:     color.FgRed,
}

func (h *PermissionHandler) decisionLabel(d entities.DecisionState) string {
	c := color.New(decisionColors[d])
	if h.useColor {
		c.EnableColor()
	} else {
		c.DisableColor()
	}
	return c.Sprint(d.Label())
}

func joinPermissions(e *entities.PermissionEntry) string {
	if len(e.RequestedPermissions) == 0 {
		return "-"
	}
	return e.JoinedPermissions()
}

// toUserError rewrites known failures into messages meant for the person at the terminal.
// The original error stays wrapped so callers can still use errors.Is.
func toUserError(err error, application string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, services.ErrNoPermissions):
		return fmt.Errorf("no permissions given for %q: %w", application, err)
	case errors.Is(err, services.ErrInvalidRequest), errors.Is(err, entities.ErrInvalidEntry):
		return err
	case errors.Is(err, repositories.ErrEntryNotFound):
		return fmt.Errorf("no permission request recorded for %q: %w", application, err)
	case errors.Is(err, repositories.ErrStorageCorrupt):
		return fmt.Errorf("permission database could not be read: %w", err)
	case errors.Is(err, repositories.ErrStorageUnavailable):
		return fmt.Errorf("permission database is unavailable: %w", err)
	default:
		return err
	}
}

func labelChoices() string {
	labels := entities.DecisionLabels()
	quoted := make([]string, len(labels))
	for i, l := range labels {
		quoted[i] = fmt.Sprintf("%q", l)
	}
	return strings.Join(quoted, ", ")
}
