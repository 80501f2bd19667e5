// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestLoadFeeds_Missing(t *testing.T) {
	SetConfigDirOverride(t.TempDir())
	t.Cleanup(Reset)

	ff, err := LoadFeeds()
	if err != nil {
		t.Fatalf("LoadFeeds: %v", err)
	}
	if len(ff.Feeds) != 0 {
		t.Errorf("Feeds = %v, want empty", ff.Feeds)
	}
}

func TestFeedsRoundTrip(t *testing.T) {
	SetConfigDirOverride(t.TempDir())
	t.Cleanup(Reset)

	want := &FeedsFile{Feeds: map[string]FeedEntry{
		"corp-main": {URL: "https://proget.corp.example/upack/main", APIKey: "abc123"},
		"public":    {URL: "https://feeds.example.com/upack"},
		"legacy":    {URL: "https://old.example.com/upack", Username: "svc", Password: "hunter2"},
	}}
	if err := SaveFeeds(want); err != nil {
		t.Fatalf("SaveFeeds: %v", err)
	}

	got, err := LoadFeeds()
	if err != nil {
		t.Fatalf("LoadFeeds: %v", err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", got, want)
	}
}

func TestSaveFeeds_Permissions(t *testing.T) {
	dir := t.TempDir()
	SetConfigDirOverride(dir)
	t.Cleanup(Reset)

	ff := &FeedsFile{Feeds: map[string]FeedEntry{
		"corp": {URL: "https://example.com/upack", APIKey: "secret"},
	}}
	if err := SaveFeeds(ff); err != nil {
		t.Fatalf("SaveFeeds: %v", err)
	}

	info, err := os.Stat(filepath.Join(dir, FeedsFileName))
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Errorf("permissions = %o, want 600", perm)
	}
}

func TestFeedsResolve(t *testing.T) {
	t.Parallel()

	ff := &FeedsFile{Feeds: map[string]FeedEntry{
		"corp": {URL: "https://proget.corp.example/upack/main", APIKey: "abc"},
	}}

	t.Run("named feed", func(t *testing.T) {
		t.Parallel()
		entry, err := ff.Resolve("corp")
		if err != nil {
			t.Fatalf("Resolve: %v", err)
		}
		if entry.URL != "https://proget.corp.example/upack/main" || entry.APIKey != "abc" {
			t.Errorf("entry = %+v", entry)
		}
	})

	t.Run("bare URL", func(t *testing.T) {
		t.Parallel()
		entry, err := ff.Resolve("https://other.example.com/upack")
		if err != nil {
			t.Fatalf("Resolve: %v", err)
		}
		if entry.URL != "https://other.example.com/upack" || entry.APIKey != "" {
			t.Errorf("entry = %+v", entry)
		}
	})

	t.Run("unknown name", func(t *testing.T) {
		t.Parallel()
		_, err := ff.Resolve("nope")
		if !errors.Is(err, ErrFeedNotFound) {
			t.Errorf("err = %v, want ErrFeedNotFound", err)
		}
	})
}

func TestFeedsNames(t *testing.T) {
	t.Parallel()

	ff := &FeedsFile{Feeds: map[string]FeedEntry{
		"zeta": {URL: "https://z.example.com"}, "alpha": {URL: "https://a.example.com"},
	}}
	got := ff.Names()
	want := []string{"alpha", "zeta"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Names = %v, want %v", got, want)
	}
}

func TestFeedEntryValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		entry   FeedEntry
		wantErr bool
	}{
		{"valid", FeedEntry{URL: "https://example.com/upack"}, false},
		{"empty URL", FeedEntry{}, true},
		{"whitespace URL", FeedEntry{URL: "   "}, true},
		{"bad scheme", FeedEntry{URL: "ssh://example.com"}, true},
		{"no host", FeedEntry{URL: "https://"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := tt.entry.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
