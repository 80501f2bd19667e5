// SPDX-License-Identifier: MPL-2.0

package registry

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"upack-cli/internal/testutil"
	"upack-cli/pkg/upackid"
	"upack-cli/pkg/upackmeta"
)

// registryFileName is the installed-package list inside a registry root.
const registryFileName = "installedPackages.json"

type (
	// Registry is one local registry instance rooted at a directory.
	//
	// A Registry value is not safe for concurrent use by multiple
	// goroutines; cross-process (and cross-goroutine) coordination is the
	// lock protocol's job, and one Registry represents one lock session at
	// a time.
	Registry struct {
		root  string
		clock testutil.Clock

		// lockToken is non-empty while this instance holds the registry lock.
		lockToken string
	}

	// Option configures a Registry during construction.
	Option func(*Registry)
)

// WithClock replaces the system clock, letting tests drive lock staleness
// deterministically.
func WithClock(c testutil.Clock) Option {
	return func(r *Registry) {
		r.clock = c
	}
}

// New opens the registry rooted at root. The directory is not created until
// the first mutation.
func New(root string, opts ...Option) *Registry {
	r := &Registry{root: root, clock: testutil.RealClock{}}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Machine opens the machine-wide registry at its default root.
func Machine(opts ...Option) (*Registry, error) {
	root, err := DefaultRoot(ScopeMachine)
	if err != nil {
		return nil, err
	}
	return New(root, opts...), nil
}

// User opens the current user's registry at its default root.
func User(opts ...Option) (*Registry, error) {
	root, err := DefaultRoot(ScopeUser)
	if err != nil {
		return nil, err
	}
	return New(root, opts...), nil
}

// Root returns the registry root directory.
func (r *Registry) Root() string { return r.root }

func (r *Registry) registryPath() string {
	return filepath.Join(r.root, registryFileName)
}

// List returns every registration record in the registry, in file order.
// A missing installed-package list is an empty registry, not an error; an
// unparsable one is a CorruptRegistryError.
func (r *Registry) List() ([]*upackmeta.RegisteredPackage, error) {
	data, err := os.ReadFile(r.registryPath())
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read registry file: %w", err)
	}

	var pkgs []*upackmeta.RegisteredPackage
	if err := json.Unmarshal(data, &pkgs); err != nil {
		return nil, &CorruptRegistryError{Path: r.registryPath(), Err: err}
	}
	return pkgs, nil
}

// Register adds pkg to the installed-package list, replacing any existing
// record with the same (group, name) identity. The whole list is rewritten.
//
// Register does not take the registry lock; callers performing a
// read-modify-write sequence must bracket it with Lock and Unlock.
func (r *Registry) Register(pkg *upackmeta.RegisteredPackage) error {
	if pkg == nil {
		return errors.New("register package: record is nil")
	}
	if pkg.Name == "" {
		return errors.New("register package: name is required")
	}
	if pkg.Version == "" {
		return errors.New("register package: version is required")
	}
	id, err := pkg.ID()
	if err != nil {
		return fmt.Errorf("register package: %w", err)
	}

	pkgs, err := r.List()
	if err != nil {
		return err
	}

	out := make([]*upackmeta.RegisteredPackage, 0, len(pkgs)+1)
	for _, existing := range pkgs {
		if !existing.SameIdentity(id) {
			out = append(out, existing)
		}
	}
	out = append(out, pkg.Clone())

	return r.persist(out)
}

// Unregister removes the record matching id, reporting whether one was
// removed. The file is rewritten only when something changed; unregistering
// an unknown identity leaves it byte-identical.
//
// Like Register, this does not take the registry lock itself.
func (r *Registry) Unregister(id *upackid.PackageID) (bool, error) {
	if id == nil {
		return false, errors.New("unregister package: id is nil")
	}

	pkgs, err := r.List()
	if err != nil {
		return false, err
	}

	out := make([]*upackmeta.RegisteredPackage, 0, len(pkgs))
	removed := false
	for _, existing := range pkgs {
		if existing.SameIdentity(id) {
			removed = true
			continue
		}
		out = append(out, existing)
	}

	if !removed {
		return false, nil
	}
	return true, r.persist(out)
}

// persist rewrites the whole installed-package list. There is no temp-file
// rename dance: a crash mid-write surfaces later as a CorruptRegistryError
// rather than being silently papered over.
func (r *Registry) persist(pkgs []*upackmeta.RegisteredPackage) error {
	if err := os.MkdirAll(r.root, 0o755); err != nil {
		return fmt.Errorf("create registry root: %w", err)
	}

	data, err := json.MarshalIndent(pkgs, "", "  ")
	if err != nil {
		return fmt.Errorf("encode registry file: %w", err)
	}
	data = append(data, '\n')

	if err := os.WriteFile(r.registryPath(), data, 0o644); err != nil {
		return fmt.Errorf("write registry file: %w", err)
	}
	return nil
}
