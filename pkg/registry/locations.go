// SPDX-License-Identifier: MPL-2.0

package registry

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"upack-cli/pkg/platform"
)

// Scope selects one of the well-known registry roots on a machine.
type Scope string

const (
	// ScopeMachine is the machine-wide registry, shared by all users.
	ScopeMachine Scope = "machine"
	// ScopeUser is the per-user registry.
	ScopeUser Scope = "user"
)

// registryDirName is the leaf directory name of every default registry root.
const registryDirName = "upack"

// DefaultRoot returns the default registry root for the current platform
// and environment.
func DefaultRoot(scope Scope) (string, error) {
	return DefaultRootWith(scope, runtime.GOOS, os.Getenv)
}

// DefaultRootWith returns the default registry root as a pure function of
// the scope, a GOOS value, and an environment lookup. Production callers go
// through DefaultRoot; tests inject goos/getenv to pin down every branch
// without touching process state.
//
// Machine scope resolves to %ProgramData%\upack on Windows,
// /Library/Application Support/upack on macOS, and /var/lib/upack
// elsewhere. User scope resolves to %APPDATA%\upack on Windows,
// ~/Library/Application Support/upack on macOS, and $XDG_CONFIG_HOME/upack
// (defaulting to ~/.config/upack) elsewhere.
func DefaultRootWith(scope Scope, goos string, getenv func(string) string) (string, error) {
	switch scope {
	case ScopeMachine:
		switch goos {
		case platform.Windows:
			base := getenv("ProgramData")
			if base == "" {
				base = `C:\ProgramData`
			}
			return filepath.Join(base, registryDirName), nil
		case platform.Darwin:
			return filepath.Join("/Library", "Application Support", registryDirName), nil
		default:
			return filepath.Join("/var", "lib", registryDirName), nil
		}

	case ScopeUser:
		switch goos {
		case platform.Windows:
			base := getenv("APPDATA")
			if base == "" {
				base = filepath.Join(getenv("USERPROFILE"), "AppData", "Roaming")
			}
			return filepath.Join(base, registryDirName), nil
		case platform.Darwin:
			home, err := homeDir(getenv)
			if err != nil {
				return "", err
			}
			return filepath.Join(home, "Library", "Application Support", registryDirName), nil
		default:
			if base := getenv("XDG_CONFIG_HOME"); base != "" {
				return filepath.Join(base, registryDirName), nil
			}
			home, err := homeDir(getenv)
			if err != nil {
				return "", err
			}
			return filepath.Join(home, ".config", registryDirName), nil
		}

	default:
		return "", fmt.Errorf("unknown registry scope %q", scope)
	}
}

// homeDir resolves the user home from the environment, falling back to the
// OS account database.
func homeDir(getenv func(string) string) (string, error) {
	if home := getenv("HOME"); home != "" {
		return home, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return home, nil
}
