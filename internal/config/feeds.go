// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// FeedsFileName is the name of the feed credential store file.
const FeedsFileName = "feeds.toml"

// ErrFeedNotFound is returned when a feed name has no feeds.toml entry.
var ErrFeedNotFound = errors.New("feed not found")

type (
	// FeedEntry is one named feed in feeds.toml: its endpoint plus whatever
	// credentials it requires. APIKey and Username/Password are alternatives;
	// a public feed needs neither.
	FeedEntry struct {
		URL      string `toml:"url"`
		APIKey   string `toml:"api_key,omitempty"`
		Username string `toml:"username,omitempty"`
		Password string `toml:"password,omitempty"`
	}

	// FeedsFile is the on-disk shape of feeds.toml.
	FeedsFile struct {
		Feeds map[string]FeedEntry `toml:"feeds"`
	}
)

// Validate checks that the entry has a usable endpoint.
func (e *FeedEntry) Validate() error {
	if strings.TrimSpace(e.URL) == "" {
		return fmt.Errorf("%w: missing URL", ErrInvalidFeedURL)
	}
	return validateFeedURL(e.URL)
}

// feedsPath resolves the feeds.toml location in the config directory.
func feedsPath() (string, error) {
	cfgDir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(cfgDir, FeedsFileName), nil
}

// LoadFeeds reads feeds.toml. A missing file is an empty store, not an error.
func LoadFeeds() (*FeedsFile, error) {
	path, err := feedsPath()
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return &FeedsFile{Feeds: map[string]FeedEntry{}}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", FeedsFileName, err)
	}

	var ff FeedsFile
	if err := toml.Unmarshal(data, &ff); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", FeedsFileName, err)
	}
	if ff.Feeds == nil {
		ff.Feeds = map[string]FeedEntry{}
	}
	return &ff, nil
}

// SaveFeeds writes the store back with owner-only permissions, since entries
// can carry credentials.
func SaveFeeds(ff *FeedsFile) error {
	path, err := feedsPath()
	if err != nil {
		return err
	}

	if err := EnsureConfigDir(); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := toml.Marshal(ff)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", FeedsFileName, err)
	}

	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write %s: %w", FeedsFileName, err)
	}
	return nil
}

// Resolve maps a feed reference onto an entry. A reference that carries a
// URL scheme is used directly; anything else must name a stored feed.
func (ff *FeedsFile) Resolve(ref string) (*FeedEntry, error) {
	if looksLikeURL(ref) {
		return &FeedEntry{URL: ref}, nil
	}
	entry, ok := ff.Feeds[ref]
	if !ok {
		return nil, fmt.Errorf("%w: %q is not defined in %s", ErrFeedNotFound, ref, FeedsFileName)
	}
	return &entry, nil
}

// Names lists stored feed names in sorted order.
func (ff *FeedsFile) Names() []string {
	names := make([]string, 0, len(ff.Feeds))
	for name := range ff.Feeds {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
