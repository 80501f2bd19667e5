// SPDX-License-Identifier: MPL-2.0

// Package upackage reads and writes universal package archives.
//
// A package archive is a standard zip container with two conventions: a
// metadata entry named "upack.json" at the archive root, and all package
// content stored under the "package/" prefix. This package is a thin
// wrapper over archive/zip that enforces those conventions; everything it
// knows about the metadata itself lives in upackmeta.
package upackage

import (
	"archive/zip"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"upack-cli/pkg/upackmeta"
)

const (
	// ManifestEntryName is the metadata entry at the archive root.
	ManifestEntryName = "upack.json"

	// ContentPrefix is the archive path prefix for package content.
	ContentPrefix = "package/"

	// FileExt is the conventional archive file extension.
	FileExt = ".upack"
)

// ErrNoManifest is returned when an archive has no upack.json entry.
var ErrNoManifest = errors.New("archive has no upack.json entry")

// Package is an opened package archive.
type Package struct {
	// Manifest is the parsed upack.json entry.
	Manifest *upackmeta.Manifest

	reader *zip.Reader
	closer io.Closer
}

// Build writes a package archive to w: the manifest as upack.json followed
// by every file under contentDir, stored under the package/ prefix with
// forward-slash paths. An empty contentDir produces a metadata-only
// archive.
func Build(w io.Writer, manifest *upackmeta.Manifest, contentDir string) error {
	if err := validateManifest(manifest); err != nil {
		return err
	}

	zw := zip.NewWriter(w)

	mw, err := zw.Create(ManifestEntryName)
	if err != nil {
		return fmt.Errorf("create manifest entry: %w", err)
	}
	data, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return fmt.Errorf("encode manifest: %w", err)
	}
	if _, err := mw.Write(data); err != nil {
		return fmt.Errorf("write manifest entry: %w", err)
	}

	if contentDir != "" {
		if err := addContentDir(zw, contentDir); err != nil {
			return err
		}
	}

	if err := zw.Close(); err != nil {
		return fmt.Errorf("finalize archive: %w", err)
	}
	return nil
}

// BuildFile writes a package archive to path, removing the partial file on
// failure.
func BuildFile(path string, manifest *upackmeta.Manifest, contentDir string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create archive file: %w", err)
	}
	if err := Build(f, manifest, contentDir); err != nil {
		f.Close()
		os.Remove(path)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return fmt.Errorf("close archive file: %w", err)
	}
	return nil
}

// addContentDir walks dir and stores every entry under the package/ prefix.
func addContentDir(zw *zip.Writer, dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		relPath, err := filepath.Rel(dir, path)
		if err != nil {
			return fmt.Errorf("resolve relative path: %w", err)
		}
		if relPath == "." {
			return nil
		}
		zipPath := ContentPrefix + filepath.ToSlash(relPath)

		if d.IsDir() {
			if _, err := zw.Create(zipPath + "/"); err != nil {
				return fmt.Errorf("create directory entry: %w", err)
			}
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return fmt.Errorf("stat %s: %w", path, err)
		}
		header, err := zip.FileInfoHeader(info)
		if err != nil {
			return fmt.Errorf("create header for %s: %w", path, err)
		}
		header.Name = zipPath
		header.Method = zip.Deflate

		w, err := zw.CreateHeader(header)
		if err != nil {
			return fmt.Errorf("create entry %s: %w", zipPath, err)
		}
		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("open %s: %w", path, err)
		}
		if _, err := io.Copy(w, f); err != nil {
			f.Close()
			return fmt.Errorf("write entry %s: %w", zipPath, err)
		}
		return f.Close()
	})
}

// Open reads a package archive from ra. The upack.json entry is located and
// parsed eagerly; an archive without one is rejected with ErrNoManifest.
func Open(ra io.ReaderAt, size int64) (*Package, error) {
	zr, err := zip.NewReader(ra, size)
	if err != nil {
		return nil, fmt.Errorf("open archive: %w", err)
	}
	return fromReader(zr, nil)
}

// OpenFile opens the package archive at path. The caller owns Close.
func OpenFile(path string) (*Package, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open archive file: %w", err)
	}
	fi, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("stat archive file: %w", err)
	}
	zr, err := zip.NewReader(f, fi.Size())
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("open archive: %w", err)
	}
	p, err := fromReader(zr, f)
	if err != nil {
		f.Close()
		return nil, err
	}
	return p, nil
}

// ReadMetadata opens the archive at path and returns just its manifest.
func ReadMetadata(path string) (*upackmeta.Manifest, error) {
	pkg, err := OpenFile(path)
	if err != nil {
		return nil, err
	}
	defer pkg.Close()
	return pkg.Manifest, nil
}

func fromReader(zr *zip.Reader, closer io.Closer) (*Package, error) {
	for _, f := range zr.File {
		if f.Name != ManifestEntryName {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("open manifest entry: %w", err)
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("read manifest entry: %w", err)
		}
		var m upackmeta.Manifest
		if err := json.Unmarshal(data, &m); err != nil {
			return nil, fmt.Errorf("parse manifest entry: %w", err)
		}
		return &Package{Manifest: &m, reader: zr, closer: closer}, nil
	}
	return nil, ErrNoManifest
}

// Close releases the underlying file when the package was opened via
// OpenFile; otherwise it is a no-op.
func (p *Package) Close() error {
	if p.closer == nil {
		return nil
	}
	return p.closer.Close()
}

// ContentEntries returns the archive entries under the package/ prefix.
func (p *Package) ContentEntries() []*zip.File {
	var out []*zip.File
	for _, f := range p.reader.File {
		if strings.HasPrefix(f.Name, ContentPrefix) && f.Name != ContentPrefix {
			out = append(out, f)
		}
	}
	return out
}

// ExtractContent writes the package/ subtree into destDir, preserving the
// relative layout. Entry paths are confined to destDir; an entry that would
// escape it (via ".." or an absolute name) fails the extraction.
// Cancellation is checked before each entry.
func (p *Package) ExtractContent(ctx context.Context, destDir string) error {
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return fmt.Errorf("create destination: %w", err)
	}

	for _, f := range p.ContentEntries() {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("extract package content: %w", err)
		}

		rel := strings.TrimPrefix(f.Name, ContentPrefix)
		destPath, err := securePath(destDir, rel)
		if err != nil {
			return err
		}

		if strings.HasSuffix(f.Name, "/") {
			if err := os.MkdirAll(destPath, 0o755); err != nil {
				return fmt.Errorf("create directory %s: %w", destPath, err)
			}
			continue
		}
		if err := extractFile(f, destPath); err != nil {
			return err
		}
	}
	return nil
}

// securePath joins rel onto destDir, rejecting paths that escape it.
func securePath(destDir, rel string) (string, error) {
	cleaned := filepath.Clean(filepath.FromSlash(rel))
	if filepath.IsAbs(cleaned) || cleaned == ".." || strings.HasPrefix(cleaned, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("archive entry %q escapes the destination directory", rel)
	}
	return filepath.Join(destDir, cleaned), nil
}

func extractFile(f *zip.File, destPath string) error {
	rc, err := f.Open()
	if err != nil {
		return fmt.Errorf("open entry %s: %w", f.Name, err)
	}
	defer rc.Close()

	if err := os.MkdirAll(filepath.Dir(destPath), 0o755); err != nil {
		return fmt.Errorf("create directory for %s: %w", destPath, err)
	}
	mode := f.Mode()
	if mode == 0 {
		mode = 0o644
	}
	dest, err := os.OpenFile(destPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, mode)
	if err != nil {
		return fmt.Errorf("create file %s: %w", destPath, err)
	}
	if _, err := io.Copy(dest, rc); err != nil {
		dest.Close()
		return fmt.Errorf("write file %s: %w", destPath, err)
	}
	return dest.Close()
}

// validateManifest enforces the minimum a buildable manifest needs:
// a valid identity and a parseable version.
func validateManifest(m *upackmeta.Manifest) error {
	if m == nil {
		return errors.New("manifest is nil")
	}
	if m.Name == "" {
		return errors.New("manifest name is required")
	}
	if m.Version == "" {
		return errors.New("manifest version is required")
	}
	if _, err := m.ID(); err != nil {
		return fmt.Errorf("manifest identity: %w", err)
	}
	if _, err := m.SemanticVersion(); err != nil {
		return fmt.Errorf("manifest version: %w", err)
	}
	return nil
}
