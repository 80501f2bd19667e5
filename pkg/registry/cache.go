// SPDX-License-Identifier: MPL-2.0

package registry

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"upack-cli/pkg/upackid"
	"upack-cli/pkg/upackver"
)

const (
	// cacheDirName is the package-cache directory inside a registry root.
	cacheDirName = "packageCache"

	// cacheFileExt is the archive extension for cached package files.
	cacheFileExt = ".upack"

	// cacheCopyChunk is the copy granularity for cache writes; cancellation
	// is checked between chunks.
	cacheCopyChunk = 64 * 1024
)

// CachePath returns the deterministic location of the cache entry for
// (id, version): a per-package directory named after the group (slashes
// replaced by '$') joined to the name with a '$', holding a
// "<name>-<version>.upack" file. The version's unique form (no build
// metadata) is used in the file name.
func (r *Registry) CachePath(id *upackid.PackageID, version *upackver.Version) string {
	dir := strings.ReplaceAll(id.Group, "/", "$") + "$" + id.Name
	file := id.Name + "-" + version.UniqueString() + cacheFileExt
	return filepath.Join(r.root, cacheDirName, dir, file)
}

// WriteToCache streams src into the cache entry for (id, version), creating
// or fully overwriting it. The cache takes no locks: distinct keys map to
// distinct paths, and concurrent writers to the same key race at the
// filesystem level by design (entries are disposable and re-creatable).
//
// Cancellation is honored between copy chunks; a canceled write removes the
// partial file before returning ctx's error.
func (r *Registry) WriteToCache(ctx context.Context, id *upackid.PackageID, version *upackver.Version, src io.Reader) error {
	path := r.CachePath(id, version)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create cache directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("create cache entry: %w", err)
	}

	for {
		if err := ctx.Err(); err != nil {
			f.Close()
			os.Remove(path)
			return fmt.Errorf("write cache entry: %w", err)
		}

		_, copyErr := io.CopyN(f, src, cacheCopyChunk)
		if copyErr == io.EOF {
			break
		}
		if copyErr != nil {
			f.Close()
			os.Remove(path)
			return fmt.Errorf("write cache entry: %w", copyErr)
		}
	}

	if err := f.Close(); err != nil {
		return fmt.Errorf("write cache entry: %w", err)
	}
	return nil
}

// TryOpenFromCache opens the cache entry for (id, version) for reading.
// A missing entry returns (nil, nil), not an error — including the race
// where the file is deleted between a caller's existence check and the
// open. The caller owns closing a non-nil result.
func (r *Registry) TryOpenFromCache(id *upackid.PackageID, version *upackver.Version) (io.ReadCloser, error) {
	f, err := os.Open(r.CachePath(id, version))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("open cache entry: %w", err)
	}
	return f, nil
}

// DeleteFromCache removes the cache entry for (id, version). Absence is not
// an error.
func (r *Registry) DeleteFromCache(id *upackid.PackageID, version *upackver.Version) error {
	if err := os.Remove(r.CachePath(id, version)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("delete cache entry: %w", err)
	}
	return nil
}
