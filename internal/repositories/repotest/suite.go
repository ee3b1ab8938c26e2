// Package repotest holds the behavioural tests every PermissionRepository backend must pass.
package repotest

import (
	"context"
	"errors"
	"testing"

	"github.com/asakaida/permission-manager/internal/entities"
	"github.com/asakaida/permission-manager/internal/repositories"
)

// Fixture is a fresh, empty repository plus a way to write rows behind its back
type Fixture struct {
	Repo repositories.PermissionRepository

	// InsertRaw stores column values verbatim, bypassing encoding and validation
	InsertRaw func(appName, permissions, state string) error
}

// EntriesEqual compares two entries, treating nil and empty permission lists as equal
func EntriesEqual(a, b *entities.PermissionEntry) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.ApplicationIdentity != b.ApplicationIdentity || a.Decision != b.Decision {
		return false
	}
	if len(a.RequestedPermissions) != len(b.RequestedPermissions) {
		return false
	}
	for i := range a.RequestedPermissions {
		if a.RequestedPermissions[i] != b.RequestedPermissions[i] {
			return false
		}
	}
	return true
}

// FindEntry returns the entry for app in entries, or nil
func FindEntry(entries []*entities.PermissionEntry, app string) *entities.PermissionEntry {
	for _, e := range entries {
		if e.ApplicationIdentity == app {
			return e
		}
	}
	return nil
}

func countEntries(entries []*entities.PermissionEntry, app string) int {
	n := 0
	for _, e := range entries {
		if e.ApplicationIdentity == app {
			n++
		}
	}
	return n
}

// RunPermissionRepositorySuite runs the shared contract tests against a backend
func RunPermissionRepositorySuite(t *testing.T, newFixture func(t *testing.T) *Fixture) {
	t.Helper()
	ctx := context.Background()

	t.Run("empty store reads no entries", func(t *testing.T) {
		f := newFixture(t)
		entries, err := f.Repo.ReadAll(ctx)
		if err != nil {
			t.Fatalf("ReadAll() error = %v", err)
		}
		if len(entries) != 0 {
			t.Errorf("ReadAll() = %v, want empty", entries)
		}
	})

	t.Run("round trip", func(t *testing.T) {
		f := newFixture(t)
		want := &entities.PermissionEntry{
			ApplicationIdentity:  "Calculator",
			RequestedPermissions: []string{"microphone", "camera", "location"},
			Decision:             entities.OneShot,
		}
		if err := f.Repo.Upsert(ctx, want); err != nil {
			t.Fatalf("Upsert() error = %v", err)
		}

		entries, err := f.Repo.ReadAll(ctx)
		if err != nil {
			t.Fatalf("ReadAll() error = %v", err)
		}
		if got := FindEntry(entries, "Calculator"); !EntriesEqual(got, want) {
			t.Errorf("ReadAll() entry = %+v, want %+v", got, want)
		}

		got, err := f.Repo.Get(ctx, "Calculator")
		if err != nil {
			t.Fatalf("Get() error = %v", err)
		}
		if !EntriesEqual(got, want) {
			t.Errorf("Get() = %+v, want %+v", got, want)
		}
	})

	t.Run("one entry per identity, last write wins", func(t *testing.T) {
		f := newFixture(t)
		writes := []*entities.PermissionEntry{
			{ApplicationIdentity: "Editor", RequestedPermissions: []string{"files"}, Decision: entities.Denied},
			{ApplicationIdentity: "Editor", RequestedPermissions: []string{"files", "network"}, Decision: entities.OneShot},
			{ApplicationIdentity: "Editor", RequestedPermissions: []string{"clipboard"}, Decision: entities.Persistent},
			{ApplicationIdentity: "Other", RequestedPermissions: []string{"camera"}, Decision: entities.Denied},
		}
		for _, w := range writes {
			if err := f.Repo.Upsert(ctx, w); err != nil {
				t.Fatalf("Upsert(%v) error = %v", w, err)
			}
		}

		entries, err := f.Repo.ReadAll(ctx)
		if err != nil {
			t.Fatalf("ReadAll() error = %v", err)
		}
		if n := countEntries(entries, "Editor"); n != 1 {
			t.Fatalf("entries for Editor = %d, want 1", n)
		}
		if got := FindEntry(entries, "Editor"); !EntriesEqual(got, writes[2]) {
			t.Errorf("Editor = %+v, want %+v", got, writes[2])
		}
		if len(entries) != 2 {
			t.Errorf("ReadAll() len = %d, want 2", len(entries))
		}
	})

	t.Run("replace does not merge", func(t *testing.T) {
		f := newFixture(t)
		first := &entities.PermissionEntry{ApplicationIdentity: "A", RequestedPermissions: []string{"x"}, Decision: entities.Denied}
		second := &entities.PermissionEntry{ApplicationIdentity: "A", RequestedPermissions: []string{}, Decision: entities.Persistent}

		if err := f.Repo.Upsert(ctx, first); err != nil {
			t.Fatalf("Upsert(first) error = %v", err)
		}
		if err := f.Repo.Upsert(ctx, second); err != nil {
			t.Fatalf("Upsert(second) error = %v", err)
		}

		got, err := f.Repo.Get(ctx, "A")
		if err != nil {
			t.Fatalf("Get() error = %v", err)
		}
		if len(got.RequestedPermissions) != 0 {
			t.Errorf("RequestedPermissions = %v, want empty", got.RequestedPermissions)
		}
		if got.Decision != entities.Persistent {
			t.Errorf("Decision = %v, want Persistent", got.Decision)
		}
	})

	t.Run("store accepts empty and nil permission lists", func(t *testing.T) {
		f := newFixture(t)
		if err := f.Repo.Upsert(ctx, &entities.PermissionEntry{ApplicationIdentity: "Nil"}); err != nil {
			t.Fatalf("Upsert(nil perms) error = %v", err)
		}
		got, err := f.Repo.Get(ctx, "Nil")
		if err != nil {
			t.Fatalf("Get() error = %v", err)
		}
		if got.RequestedPermissions == nil || len(got.RequestedPermissions) != 0 {
			t.Errorf("RequestedPermissions = %#v, want empty non-nil slice", got.RequestedPermissions)
		}
		if got.Decision != entities.Denied {
			t.Errorf("Decision = %v, want Denied", got.Decision)
		}
	})

	t.Run("identities are case sensitive", func(t *testing.T) {
		f := newFixture(t)
		lower := &entities.PermissionEntry{ApplicationIdentity: "calculator", RequestedPermissions: []string{"camera"}, Decision: entities.Denied}
		upper := &entities.PermissionEntry{ApplicationIdentity: "Calculator", RequestedPermissions: []string{"camera"}, Decision: entities.Persistent}
		for _, e := range []*entities.PermissionEntry{lower, upper} {
			if err := f.Repo.Upsert(ctx, e); err != nil {
				t.Fatalf("Upsert() error = %v", err)
			}
		}

		entries, err := f.Repo.ReadAll(ctx)
		if err != nil {
			t.Fatalf("ReadAll() error = %v", err)
		}
		if len(entries) != 2 {
			t.Fatalf("ReadAll() len = %d, want 2", len(entries))
		}
		if got := FindEntry(entries, "calculator"); got == nil || got.Decision != entities.Denied {
			t.Errorf("calculator = %+v, want Denied", got)
		}
	})

	t.Run("get missing entry", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.Repo.Get(ctx, "Nobody")
		if !errors.Is(err, repositories.ErrEntryNotFound) {
			t.Errorf("Get() error = %v, want ErrEntryNotFound", err)
		}
	})

	t.Run("invalid entry is rejected", func(t *testing.T) {
		f := newFixture(t)
		err := f.Repo.Upsert(ctx, &entities.PermissionEntry{RequestedPermissions: []string{"camera"}})
		if !errors.Is(err, entities.ErrInvalidEntry) {
			t.Errorf("Upsert() error = %v, want ErrInvalidEntry", err)
		}
	})

	t.Run("corrupt fields fail closed without failing the read", func(t *testing.T) {
		f := newFixture(t)
		good := &entities.PermissionEntry{ApplicationIdentity: "Good", RequestedPermissions: []string{"camera"}, Decision: entities.Persistent}
		if err := f.Repo.Upsert(ctx, good); err != nil {
			t.Fatalf("Upsert() error = %v", err)
		}
		if err := f.InsertRaw("BadState", `["camera"]`, "Sometimes"); err != nil {
			t.Fatalf("InsertRaw() error = %v", err)
		}
		if err := f.InsertRaw("BadPerms", `camera;microphone`, "Always"); err != nil {
			t.Fatalf("InsertRaw() error = %v", err)
		}
		if err := f.InsertRaw("LabelAsTag", `[]`, "Allow Once"); err != nil {
			t.Fatalf("InsertRaw() error = %v", err)
		}

		entries, err := f.Repo.ReadAll(ctx)
		if err != nil {
			t.Fatalf("ReadAll() error = %v", err)
		}
		if len(entries) != 4 {
			t.Fatalf("ReadAll() len = %d, want 4", len(entries))
		}

		if got := FindEntry(entries, "Good"); !EntriesEqual(got, good) {
			t.Errorf("Good = %+v, want %+v", got, good)
		}

		badState := FindEntry(entries, "BadState")
		if badState.Decision != entities.Denied {
			t.Errorf("BadState decision = %v, want Denied", badState.Decision)
		}
		if len(badState.RequestedPermissions) != 1 || badState.RequestedPermissions[0] != "camera" {
			t.Errorf("BadState permissions = %v, want [camera]", badState.RequestedPermissions)
		}

		badPerms := FindEntry(entries, "BadPerms")
		if len(badPerms.RequestedPermissions) != 0 {
			t.Errorf("BadPerms permissions = %v, want empty", badPerms.RequestedPermissions)
		}
		if badPerms.Decision != entities.Persistent {
			t.Errorf("BadPerms decision = %v, want Persistent", badPerms.Decision)
		}

		if got := FindEntry(entries, "LabelAsTag"); got.Decision != entities.Denied {
			t.Errorf("LabelAsTag decision = %v, want Denied", got.Decision)
		}

		got, err := f.Repo.Get(ctx, "BadState")
		if err != nil {
			t.Fatalf("Get() error = %v", err)
		}
		if got.Decision != entities.Denied {
			t.Errorf("Get(BadState) decision = %v, want Denied", got.Decision)
		}
	})
}
