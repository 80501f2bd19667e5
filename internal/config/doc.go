// SPDX-License-Identifier: MPL-2.0

// Package config loads and persists upack's tool configuration: the
// config.toml settings file and the feeds.toml credential store, both kept
// in the platform-specific configuration directory.
package config
