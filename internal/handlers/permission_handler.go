package handlers

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/asakaida/permission-manager/internal/services"
)

// PermissionHandler renders permission service results for the command line
type PermissionHandler struct {
	service  services.PermissionServiceInterface
	out      io.Writer
	useColor bool
}

// NewPermissionHandler creates a new PermissionHandler writing to out
func NewPermissionHandler(service services.PermissionServiceInterface, out io.Writer, useColor bool) *PermissionHandler {
	return &PermissionHandler{
		service:  service,
		out:      out,
		useColor: useColor,
	}
}

// Request submits a permission request and confirms it
func (h *PermissionHandler) Request(ctx context.Context, application string, permissions []string) error {
	if _, err := h.service.Submit(ctx, application, permissions); err != nil {
		return toUserError(err, application)
	}
	fmt.Fprintln(h.out, "Permission request submitted")
	return nil
}

// List prints every entry as a table
func (h *PermissionHandler) List(ctx context.Context) error {
	entries, err := h.service.List(ctx)
	if err != nil {
		return toUserError(err, "")
	}

	if len(entries) == 0 {
		fmt.Fprintln(h.out, "No permission requests recorded")
		return nil
	}

	w := tabwriter.NewWriter(h.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "APPLICATION\tREQUESTED PERMISSIONS\tPERMISSION STATE")
	for _, e := range entries {
		// The colored label is last so escape codes do not disturb column widths
		fmt.Fprintf(w, "%s\t%s\t%s\n", e.ApplicationIdentity, joinPermissions(e), h.decisionLabel(e.Decision))
	}
	return w.Flush()
}

// Get prints one entry
func (h *PermissionHandler) Get(ctx context.Context, application string) error {
	entry, err := h.service.Get(ctx, application)
	if err != nil {
		return toUserError(err, application)
	}

	fmt.Fprintf(h.out, "Application:           %s\n", entry.ApplicationIdentity)
	fmt.Fprintf(h.out, "Requested permissions: %s\n", joinPermissions(entry))
	fmt.Fprintf(h.out, "Permission state:      %s\n", h.decisionLabel(entry.Decision))
	return nil
}

// Set changes the decision for an application using an editor label.
// Unknown labels leave the entry untouched and are reported, not treated as failures.
func (h *PermissionHandler) Set(ctx context.Context, application string, label string) error {
	entry, changed, err := h.service.ChangeDecision(ctx, application, label)
	if err != nil {
		return toUserError(err, application)
	}

	if !changed {
		fmt.Fprintf(h.out, "Unknown permission state %q; %s unchanged (choose one of %s)\n",
			label, application, labelChoices())
		return nil
	}

	fmt.Fprintf(h.out, "%s: %s\n", entry.ApplicationIdentity, h.decisionLabel(entry.Decision))
	return nil
}
