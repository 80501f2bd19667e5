// SPDX-License-Identifier: MPL-2.0

package registry

import (
	"path/filepath"
	"testing"
)

func TestDefaultRootWith(t *testing.T) {
	t.Parallel()

	env := func(vars map[string]string) func(string) string {
		return func(key string) string { return vars[key] }
	}

	tests := []struct {
		name  string
		scope Scope
		goos  string
		vars  map[string]string
		want  string
	}{
		{
			"machine windows",
			ScopeMachine, "windows",
			map[string]string{"ProgramData": `C:\ProgramData`},
			filepath.Join(`C:\ProgramData`, "upack"),
		},
		{
			"machine windows missing env",
			ScopeMachine, "windows",
			nil,
			filepath.Join(`C:\ProgramData`, "upack"),
		},
		{
			"machine darwin",
			ScopeMachine, "darwin",
			nil,
			filepath.Join("/Library", "Application Support", "upack"),
		},
		{
			"machine linux",
			ScopeMachine, "linux",
			nil,
			filepath.Join("/var", "lib", "upack"),
		},
		{
			"user windows",
			ScopeUser, "windows",
			map[string]string{"APPDATA": `C:\Users\u\AppData\Roaming`},
			filepath.Join(`C:\Users\u\AppData\Roaming`, "upack"),
		},
		{
			"user darwin",
			ScopeUser, "darwin",
			map[string]string{"HOME": "/Users/u"},
			filepath.Join("/Users/u", "Library", "Application Support", "upack"),
		},
		{
			"user linux xdg",
			ScopeUser, "linux",
			map[string]string{"XDG_CONFIG_HOME": "/xdg", "HOME": "/home/u"},
			filepath.Join("/xdg", "upack"),
		},
		{
			"user linux default",
			ScopeUser, "linux",
			map[string]string{"HOME": "/home/u"},
			filepath.Join("/home/u", ".config", "upack"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := DefaultRootWith(tt.scope, tt.goos, env(tt.vars))
			if err != nil {
				t.Fatalf("DefaultRootWith() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("DefaultRootWith() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDefaultRootWith_UnknownScope(t *testing.T) {
	t.Parallel()

	if _, err := DefaultRootWith(Scope("bogus"), "linux", func(string) string { return "" }); err == nil {
		t.Error("DefaultRootWith() with unknown scope should fail")
	}
}
