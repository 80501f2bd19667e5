// SPDX-License-Identifier: MPL-2.0

package platform

// OS name constants for runtime.GOOS comparisons, so the string literals
// are not scattered across every path-resolution switch.
const (
	Windows = "windows"
	Darwin  = "darwin"
	Linux   = "linux"
)
