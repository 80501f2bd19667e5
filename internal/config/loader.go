// SPDX-License-Identifier: MPL-2.0

package config

import (
	"context"
	"sync"
)

var (
	loadMu sync.Mutex
	// loadedCfg caches the last successful Load result so every command in a
	// single invocation sees the same configuration.
	loadedCfg *Config
	// configFilePathOverride forces loading from a specific file (--config flag).
	configFilePathOverride string
)

// SetConfigFilePathOverride forces subsequent Load calls to read the given
// config file exclusively. Pass the --config flag value here.
func SetConfigFilePathOverride(path string) {
	loadMu.Lock()
	defer loadMu.Unlock()
	configFilePathOverride = path
	loadedCfg = nil
}

// Load returns the process-wide configuration, loading it on first use and
// caching it for subsequent calls.
func Load() (*Config, error) {
	loadMu.Lock()
	defer loadMu.Unlock()

	if loadedCfg != nil {
		return loadedCfg, nil
	}

	cfg, _, err := loadWithOptions(context.Background(), LoadOptions{
		ConfigFilePath: configFilePathOverride,
	})
	if err != nil {
		return nil, err
	}

	loadedCfg = cfg
	return cfg, nil
}

// ResetCache clears the cached configuration and file override. Call from
// test cleanup alongside Reset.
func ResetCache() {
	loadMu.Lock()
	defer loadMu.Unlock()
	loadedCfg = nil
	configFilePathOverride = ""
}
