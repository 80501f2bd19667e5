// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"io"

	"github.com/charmbracelet/log"

	"upack-cli/internal/config"
	"upack-cli/pkg/feed"
	"upack-cli/pkg/registry"
	"upack-cli/pkg/upackid"
)

// newLogger builds the CLI logger, honoring the verbose flag.
func newLogger(w io.Writer) *log.Logger {
	logger := log.NewWithOptions(w, log.Options{ReportTimestamp: false})
	if verbose {
		logger.SetLevel(log.DebugLevel)
	}
	return logger
}

// openRegistry resolves the registry selected by flags and configuration.
func openRegistry() (*registry.Registry, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if cfg.RegistryRoot != "" {
		return registry.New(cfg.RegistryRoot), nil
	}
	if useMachine {
		return registry.Machine()
	}
	return registry.User()
}

// resolveFeedClient builds a feed client for ref, which may be a feed name
// from feeds.toml, a bare URL, or empty (meaning the configured default).
func resolveFeedClient(ref string) (*feed.Client, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if ref == "" {
		ref = cfg.DefaultFeed
	}
	if ref == "" {
		return nil, fmt.Errorf("no feed given: pass --feed or set default_feed in config.toml")
	}

	ff, err := config.LoadFeeds()
	if err != nil {
		return nil, err
	}
	entry, err := ff.Resolve(ref)
	if err != nil {
		return nil, err
	}

	opts := []feed.ClientOption{feed.WithUserAgent("upack/" + Version)}
	if entry.APIKey != "" {
		opts = append(opts, feed.WithAPIKey(entry.APIKey))
	}
	if entry.Username != "" || entry.Password != "" {
		opts = append(opts, feed.WithBasicAuth(entry.Username, entry.Password))
	}
	return feed.NewClient(entry.URL, opts...), nil
}

// parsePackageArg parses a package identifier argument with a friendly error.
func parsePackageArg(arg string) (*upackid.PackageID, error) {
	id, err := upackid.Parse(arg)
	if err != nil {
		return nil, fmt.Errorf("invalid package identifier %q: %w", arg, err)
	}
	return id, nil
}
