// SPDX-License-Identifier: MPL-2.0

// Package cmd contains all CLI commands for upack.
//
// This package implements the Cobra command hierarchy for the upack CLI:
// the root command, registry commands (list, register, unregister),
// archive commands (pack, unpack), and feed commands (push, versions,
// feeds).
package cmd
