// SPDX-License-Identifier: MPL-2.0

// Package platform provides cross-platform compatibility utilities.
//
// Registry roots, config directories, and environment variable names all
// differ per operating system; this package centralizes the GOOS constants
// those decisions switch on.
package platform
