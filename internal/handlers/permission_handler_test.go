package handlers

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/asakaida/permission-manager/internal/entities"
	"github.com/asakaida/permission-manager/internal/infrastructure/logging"
	"github.com/asakaida/permission-manager/internal/repositories"
	"github.com/asakaida/permission-manager/internal/repositories/memory"
	"github.com/asakaida/permission-manager/internal/services"
)

// failingRepository fails every call with the configured error
type failingRepository struct {
	err error
}

func (f failingRepository) ReadAll(ctx context.Context) ([]*entities.PermissionEntry, error) {
	return nil, f.err
}

func (f failingRepository) Upsert(ctx context.Context, entry *entities.PermissionEntry) error {
	return f.err
}

func (f failingRepository) Get(ctx context.Context, applicationIdentity string) (*entities.PermissionEntry, error) {
	return nil, f.err
}

func newTestHandler(repo repositories.PermissionRepository, useColor bool) (*PermissionHandler, *bytes.Buffer) {
	var out bytes.Buffer
	svc := services.NewPermissionService(repo, services.PermissionServiceOptions{PreservePermissions: true}, logging.Discard())
	return NewPermissionHandler(svc, &out, useColor), &out
}

func TestPermissionHandler_Request(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewMemoryPermissionRepository(logging.Discard())
	h, out := newTestHandler(repo, false)

	if err := h.Request(ctx, "Calculator", []string{"camera", "microphone"}); err != nil {
		t.Fatalf("Request() error = %v", err)
	}
	if got := out.String(); got != "Permission request submitted\n" {
		t.Errorf("output = %q", got)
	}

	entry, err := repo.Get(ctx, "Calculator")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if entry.Decision != entities.Denied {
		t.Errorf("Decision = %v, want Denied", entry.Decision)
	}
}

func TestPermissionHandler_Request_Errors(t *testing.T) {
	tests := []struct {
		name    string
		repo    repositories.PermissionRepository
		perms   []string
		wantErr error
		wantMsg string
	}{
		{
			name:    "no permissions",
			repo:    memory.NewMemoryPermissionRepository(logging.Discard()),
			perms:   nil,
			wantErr: services.ErrNoPermissions,
			wantMsg: `no permissions given for "Calculator"`,
		},
		{
			name:    "storage unavailable",
			repo:    failingRepository{err: repositories.ErrStorageUnavailable},
			perms:   []string{"camera"},
			wantErr: repositories.ErrStorageUnavailable,
			wantMsg: "permission database is unavailable",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, out := newTestHandler(tt.repo, false)
			err := h.Request(context.Background(), "Calculator", tt.perms)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Request() error = %v, want %v", err, tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("error message %q missing %q", err.Error(), tt.wantMsg)
			}
			if out.Len() != 0 {
				t.Errorf("failed request printed %q", out.String())
			}
		})
	}
}

func TestPermissionHandler_List(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewMemoryPermissionRepository(logging.Discard())
	seed := []*entities.PermissionEntry{
		{ApplicationIdentity: "Calculator", RequestedPermissions: []string{"camera", "microphone"}, Decision: entities.Denied},
		{ApplicationIdentity: "Terminal", RequestedPermissions: []string{}, Decision: entities.Persistent},
		{ApplicationIdentity: "Browser", RequestedPermissions: []string{"location"}, Decision: entities.OneShot},
	}
	for _, e := range seed {
		if err := repo.Upsert(ctx, e); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	h, out := newTestHandler(repo, false)
	if err := h.List(ctx); err != nil {
		t.Fatalf("List() error = %v", err)
	}

	lines := strings.Split(strings.TrimRight(out.String(), "\n"), "\n")
	if len(lines) != 4 {
		t.Fatalf("List() printed %d lines, want 4:\n%s", len(lines), out.String())
	}
	if !strings.HasPrefix(lines[0], "APPLICATION") || !strings.Contains(lines[0], "PERMISSION STATE") {
		t.Errorf("header = %q", lines[0])
	}

	wantRows := map[string][]string{
		"Browser":    {"location", "Allow Once"},
		"Calculator": {"camera, microphone", "Block"},
		"Terminal":   {"-", "Always"},
	}
	for _, line := range lines[1:] {
		app := strings.Fields(line)[0]
		want, ok := wantRows[app]
		if !ok {
			t.Errorf("unexpected row %q", line)
			continue
		}
		for _, part := range want {
			if !strings.Contains(line, part) {
				t.Errorf("row %q missing %q", line, part)
			}
		}
		if !strings.HasSuffix(line, want[1]) {
			t.Errorf("row %q should end with the state label %q", line, want[1])
		}
	}
}

func TestPermissionHandler_List_Empty(t *testing.T) {
	h, out := newTestHandler(memory.NewMemoryPermissionRepository(logging.Discard()), false)
	if err := h.List(context.Background()); err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if got := out.String(); got != "No permission requests recorded\n" {
		t.Errorf("output = %q", got)
	}
}

func TestPermissionHandler_List_Color(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewMemoryPermissionRepository(logging.Discard())
	if err := repo.Upsert(ctx, &entities.PermissionEntry{ApplicationIdentity: "Terminal", Decision: entities.Persistent}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	h, out := newTestHandler(repo, true)
	if err := h.List(ctx); err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if !strings.Contains(out.String(), "\x1b[32mAlways\x1b[0m") {
		t.Errorf("expected green Always label, got %q", out.String())
	}
}

func TestPermissionHandler_List_Corrupt(t *testing.T) {
	h, _ := newTestHandler(failingRepository{err: repositories.ErrStorageCorrupt}, false)
	err := h.List(context.Background())
	if !errors.Is(err, repositories.ErrStorageCorrupt) {
		t.Errorf("List() error = %v, want ErrStorageCorrupt", err)
	}
}

func TestPermissionHandler_Get(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewMemoryPermissionRepository(logging.Discard())
	h, out := newTestHandler(repo, false)

	if err := h.Get(ctx, "Calculator"); !errors.Is(err, repositories.ErrEntryNotFound) {
		t.Fatalf("Get() on missing entry error = %v, want ErrEntryNotFound", err)
	}

	if err := h.Request(ctx, "Calculator", []string{"camera"}); err != nil {
		t.Fatalf("Request() error = %v", err)
	}
	out.Reset()

	if err := h.Get(ctx, "Calculator"); err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	for _, want := range []string{"Calculator", "camera", "Block"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("output %q missing %q", out.String(), want)
		}
	}
}

func TestPermissionHandler_Set(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewMemoryPermissionRepository(logging.Discard())
	h, out := newTestHandler(repo, false)

	if err := h.Request(ctx, "Calculator", []string{"camera"}); err != nil {
		t.Fatalf("Request() error = %v", err)
	}

	t.Run("known label", func(t *testing.T) {
		out.Reset()
		if err := h.Set(ctx, "Calculator", "Allow Once"); err != nil {
			t.Fatalf("Set() error = %v", err)
		}
		if got := out.String(); got != "Calculator: Allow Once\n" {
			t.Errorf("output = %q", got)
		}
	})

	t.Run("unknown label is reported but not an error", func(t *testing.T) {
		out.Reset()
		if err := h.Set(ctx, "Calculator", "Forever"); err != nil {
			t.Fatalf("Set() error = %v", err)
		}
		if !strings.Contains(out.String(), `Unknown permission state "Forever"`) {
			t.Errorf("output = %q", out.String())
		}
		entry, err := repo.Get(ctx, "Calculator")
		if err != nil {
			t.Fatalf("Get() error = %v", err)
		}
		if entry.Decision != entities.OneShot {
			t.Errorf("Decision = %v, want unchanged OneShot", entry.Decision)
		}
	})

	t.Run("missing application", func(t *testing.T) {
		err := h.Set(ctx, "Nobody", "Always")
		if !errors.Is(err, repositories.ErrEntryNotFound) {
			t.Errorf("Set() error = %v, want ErrEntryNotFound", err)
		}
	})
}
