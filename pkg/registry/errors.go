// SPDX-License-Identifier: MPL-2.0

package registry

import (
	"errors"
	"fmt"
)

// ErrCorruptRegistry is the sentinel error wrapped by CorruptRegistryError.
var ErrCorruptRegistry = errors.New("corrupt registry file")

// CorruptRegistryError is returned when the installed-package list exists
// but cannot be parsed. The file is never repaired or discarded
// automatically: a partially written list is evidence of a crashed writer,
// and deciding what to do about it belongs to a human.
type CorruptRegistryError struct {
	// Path is the location of the unparsable file.
	Path string
	// Err is the underlying parse error.
	Err error
}

// Error implements the error interface for CorruptRegistryError.
func (e *CorruptRegistryError) Error() string {
	return fmt.Sprintf("registry file %s is corrupt: %v", e.Path, e.Err)
}

// Unwrap returns ErrCorruptRegistry for errors.Is() compatibility.
// The underlying parse error is available via the Err field.
func (e *CorruptRegistryError) Unwrap() error { return ErrCorruptRegistry }
