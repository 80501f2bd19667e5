// SPDX-License-Identifier: MPL-2.0

package registry

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"upack-cli/pkg/upackid"
	"upack-cli/pkg/upackmeta"
)

func TestList_MissingFileIsEmptyRegistry(t *testing.T) {
	t.Parallel()

	r := New(t.TempDir())
	pkgs, err := r.List()
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(pkgs) != 0 {
		t.Errorf("List() = %d records, want 0", len(pkgs))
	}
}

func TestList_CorruptFileIsAHardError(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	path := filepath.Join(root, "installedPackages.json")
	if err := os.WriteFile(path, []byte(`{"not": "a list"`), 0o644); err != nil {
		t.Fatalf("write corrupt file: %v", err)
	}

	r := New(root)
	if _, err := r.List(); !errors.Is(err, ErrCorruptRegistry) {
		t.Errorf("List() error = %v, want ErrCorruptRegistry", err)
	}

	// Mutations must refuse to proceed rather than repair.
	err := r.Register(&upackmeta.RegisteredPackage{Name: "p", Version: "1.0.0"})
	if !errors.Is(err, ErrCorruptRegistry) {
		t.Errorf("Register() on corrupt registry error = %v, want ErrCorruptRegistry", err)
	}

	// The corrupt file is never auto-remediated.
	data, readErr := os.ReadFile(path)
	if readErr != nil {
		t.Fatalf("read registry file: %v", readErr)
	}
	if string(data) != `{"not": "a list"` {
		t.Error("corrupt registry file was modified")
	}
}

func TestRegister_AddsAndLists(t *testing.T) {
	t.Parallel()

	r := New(t.TempDir())
	pkg := &upackmeta.RegisteredPackage{
		Group:            "tools",
		Name:             "mypkg",
		Version:          "1.0.0",
		Path:             "/opt/mypkg",
		InstallationDate: "2024-05-01T00:00:00Z",
		InstalledBy:      "tester",
	}
	pkg.Extra.SetString("ticket", "OPS-1")

	if err := r.Register(pkg); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	pkgs, err := r.List()
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(pkgs) != 1 {
		t.Fatalf("List() = %d records, want 1", len(pkgs))
	}
	got := pkgs[0]
	if got.Group != "tools" || got.Name != "mypkg" || got.Version != "1.0.0" {
		t.Errorf("record = %+v", got)
	}
	if ticket, ok := got.Extra.GetString("ticket"); !ok || ticket != "OPS-1" {
		t.Errorf("extra key lost on round trip: %q, %v", ticket, ok)
	}
}

func TestRegister_ReplacesSameIdentity(t *testing.T) {
	t.Parallel()

	r := New(t.TempDir())

	first := &upackmeta.RegisteredPackage{Group: "G", Name: "pkg", Version: "1.0.0"}
	second := &upackmeta.RegisteredPackage{Group: "g", Name: "PKG", Version: "2.0.0"}

	if err := r.Register(first); err != nil {
		t.Fatalf("Register(first) error = %v", err)
	}
	if err := r.Register(second); err != nil {
		t.Fatalf("Register(second) error = %v", err)
	}

	pkgs, err := r.List()
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(pkgs) != 1 {
		t.Fatalf("List() = %d records, want 1 (identity is case-insensitive)", len(pkgs))
	}
	if pkgs[0].Version != "2.0.0" {
		t.Errorf("Version = %q, want the re-registered 2.0.0", pkgs[0].Version)
	}
}

func TestRegister_Validation(t *testing.T) {
	t.Parallel()

	r := New(t.TempDir())

	if err := r.Register(nil); err == nil {
		t.Error("Register(nil) should fail")
	}
	if err := r.Register(&upackmeta.RegisteredPackage{Version: "1.0.0"}); err == nil {
		t.Error("Register without name should fail")
	}
	if err := r.Register(&upackmeta.RegisteredPackage{Name: "p"}); err == nil {
		t.Error("Register without version should fail")
	}
	if err := r.Register(&upackmeta.RegisteredPackage{Name: "bad name", Version: "1.0.0"}); err == nil {
		t.Error("Register with invalid name should fail")
	}
}

func TestRegister_PreservesOrderAndAppendsReplacement(t *testing.T) {
	t.Parallel()

	r := New(t.TempDir())
	for _, name := range []string{"a", "b", "c"} {
		if err := r.Register(&upackmeta.RegisteredPackage{Name: name, Version: "1.0.0"}); err != nil {
			t.Fatalf("Register(%s) error = %v", name, err)
		}
	}

	// Re-registering "a" removes the old record and appends the new one.
	if err := r.Register(&upackmeta.RegisteredPackage{Name: "a", Version: "2.0.0"}); err != nil {
		t.Fatalf("Register(a@2) error = %v", err)
	}

	pkgs, err := r.List()
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	var names []string
	for _, p := range pkgs {
		names = append(names, p.Name)
	}
	want := []string{"b", "c", "a"}
	if len(names) != len(want) {
		t.Fatalf("names = %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("names[%d] = %q, want %q", i, names[i], want[i])
		}
	}
}

func TestUnregister_RemovesMatching(t *testing.T) {
	t.Parallel()

	r := New(t.TempDir())
	if err := r.Register(&upackmeta.RegisteredPackage{Group: "g", Name: "n", Version: "1.0.0"}); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	removed, err := r.Unregister(mustID(t, "G/N"))
	if err != nil {
		t.Fatalf("Unregister() error = %v", err)
	}
	if !removed {
		t.Error("Unregister() = false, want true for case-insensitive match")
	}

	pkgs, err := r.List()
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(pkgs) != 0 {
		t.Errorf("List() = %d records after Unregister, want 0", len(pkgs))
	}
}

func TestUnregister_UnknownIdentityLeavesFileUntouched(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	r := New(root)
	if err := r.Register(&upackmeta.RegisteredPackage{Name: "keep", Version: "1.0.0"}); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	path := filepath.Join(root, "installedPackages.json")
	before, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read registry file: %v", err)
	}

	removed, err := r.Unregister(mustID(t, "nonexistent"))
	if err != nil {
		t.Fatalf("Unregister() error = %v", err)
	}
	if removed {
		t.Error("Unregister() = true for unknown identity")
	}

	after, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read registry file: %v", err)
	}
	if !bytes.Equal(before, after) {
		t.Error("registry file changed on a no-op Unregister")
	}
}

func TestUnregister_NilID(t *testing.T) {
	t.Parallel()

	r := New(t.TempDir())
	if _, err := r.Unregister(nil); err == nil {
		t.Error("Unregister(nil) should fail")
	}
}

func mustID(t *testing.T, s string) *upackid.PackageID {
	t.Helper()
	id, err := upackid.Parse(s)
	if err != nil {
		t.Fatalf("parse id %q: %v", s, err)
	}
	return id
}
