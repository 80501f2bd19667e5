// SPDX-License-Identifier: MPL-2.0

// Package upackmeta implements the free-form metadata dictionaries carried
// by universal packages: the upack.json manifest embedded in an archive and
// the registration records persisted in a local registry.
//
// Both models are open-ended property bags. Recognized keys are lifted into
// typed struct fields; everything else round-trips through an
// insertion-ordered Extras sidecar with full fidelity, so callers can attach
// arbitrary structured values without this package knowing about them.
package upackmeta

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"upack-cli/pkg/upackid"
	"upack-cli/pkg/upackver"
)

// Manifest is the typed view of a package's upack.json entry.
type Manifest struct {
	// Group is the optional package group ("" when absent).
	Group string
	// Name is the required package name.
	Name string
	// Version is the required package version string.
	Version string
	// Title is an optional human-readable display name.
	Title string
	// Description is an optional free-text summary.
	Description string
	// Icon is an optional icon URL (may use the package:// scheme).
	Icon string
	// Dependencies lists dependency specifiers ("group/name:version").
	Dependencies []string
	// Extra holds unrecognized keys in document order.
	Extra Extras
}

// manifestKeys are the recognized upack.json keys, in canonical write order.
var manifestKeys = []string{"group", "name", "version", "title", "description", "icon", "dependencies"}

// ID returns the package identity formed by the manifest's group and name.
func (m *Manifest) ID() (*upackid.PackageID, error) {
	return upackid.New(m.Group, m.Name)
}

// SemanticVersion parses the manifest's version string.
func (m *Manifest) SemanticVersion() (*upackver.Version, error) {
	return upackver.Parse(m.Version)
}

// UnmarshalJSON decodes a upack.json object, lifting recognized keys into
// typed fields and preserving everything else, in order, in Extra.
func (m *Manifest) UnmarshalJSON(data []byte) error {
	*m = Manifest{}
	return decodeObject(data, func(key string, raw json.RawMessage) error {
		switch key {
		case "group":
			return decodeInto(key, raw, &m.Group)
		case "name":
			return decodeInto(key, raw, &m.Name)
		case "version":
			return decodeInto(key, raw, &m.Version)
		case "title":
			return decodeInto(key, raw, &m.Title)
		case "description":
			return decodeInto(key, raw, &m.Description)
		case "icon":
			return decodeInto(key, raw, &m.Icon)
		case "dependencies":
			return decodeInto(key, raw, &m.Dependencies)
		default:
			m.Extra.Set(key, raw)
			return nil
		}
	})
}

// MarshalJSON encodes the manifest with recognized keys first (empty ones
// omitted) followed by the unrecognized keys in their original order.
func (m *Manifest) MarshalJSON() ([]byte, error) {
	w := newObjectWriter()
	w.stringField("group", m.Group)
	w.stringField("name", m.Name)
	w.stringField("version", m.Version)
	w.stringField("title", m.Title)
	w.stringField("description", m.Description)
	w.stringField("icon", m.Icon)
	if len(m.Dependencies) > 0 {
		w.anyField("dependencies", m.Dependencies)
	}
	w.extras(&m.Extra)
	return w.finish()
}

// RegisteredPackage is one record in a local registry's installed-package
// list. Identity for uniqueness is (Group, Name), case-insensitive; only
// one record per identity exists in a registry at a time.
type RegisteredPackage struct {
	// Group is the optional package group ("" when absent).
	Group string
	// Name is the required package name.
	Name string
	// Version is the required installed version string.
	Version string
	// Path is the directory the package was installed to.
	Path string
	// FeedURL is the source feed the package came from.
	FeedURL string
	// InstallationDate is an ISO-8601 timestamp string.
	InstallationDate string
	// InstallationReason records why the package was installed.
	InstallationReason string
	// InstalledUsing identifies the tool that performed the install.
	InstalledUsing string
	// InstalledBy identifies the user that performed the install.
	InstalledBy string
	// Extra holds unrecognized keys in document order.
	Extra Extras
}

// ID returns the record's package identity.
func (p *RegisteredPackage) ID() (*upackid.PackageID, error) {
	return upackid.New(p.Group, p.Name)
}

// SemanticVersion parses the record's version string.
func (p *RegisteredPackage) SemanticVersion() (*upackver.Version, error) {
	return upackver.Parse(p.Version)
}

// SameIdentity reports whether p and o describe the same package,
// comparing (group, name) case-insensitively.
func (p *RegisteredPackage) SameIdentity(id *upackid.PackageID) bool {
	if id == nil {
		return false
	}
	own, err := upackid.New(p.Group, p.Name)
	if err != nil {
		return false
	}
	return own.Equal(id)
}

// Clone returns a copy of the record that shares no mutable state with p.
func (p *RegisteredPackage) Clone() *RegisteredPackage {
	out := *p
	out.Extra = p.Extra.clone()
	return &out
}

// UnmarshalJSON decodes a registration record, lifting recognized keys into
// typed fields and preserving everything else, in order, in Extra.
func (p *RegisteredPackage) UnmarshalJSON(data []byte) error {
	*p = RegisteredPackage{}
	return decodeObject(data, func(key string, raw json.RawMessage) error {
		switch key {
		case "group":
			return decodeInto(key, raw, &p.Group)
		case "name":
			return decodeInto(key, raw, &p.Name)
		case "version":
			return decodeInto(key, raw, &p.Version)
		case "path":
			return decodeInto(key, raw, &p.Path)
		case "feedUrl":
			return decodeInto(key, raw, &p.FeedURL)
		case "installationDate":
			return decodeInto(key, raw, &p.InstallationDate)
		case "installationReason":
			return decodeInto(key, raw, &p.InstallationReason)
		case "installedUsing":
			return decodeInto(key, raw, &p.InstalledUsing)
		case "installedBy":
			return decodeInto(key, raw, &p.InstalledBy)
		default:
			p.Extra.Set(key, raw)
			return nil
		}
	})
}

// MarshalJSON encodes the record with recognized keys first (empty ones
// omitted) followed by the unrecognized keys in their original order.
func (p *RegisteredPackage) MarshalJSON() ([]byte, error) {
	w := newObjectWriter()
	w.stringField("group", p.Group)
	w.stringField("name", p.Name)
	w.stringField("version", p.Version)
	w.stringField("path", p.Path)
	w.stringField("feedUrl", p.FeedURL)
	w.stringField("installationDate", p.InstallationDate)
	w.stringField("installationReason", p.InstallationReason)
	w.stringField("installedUsing", p.InstalledUsing)
	w.stringField("installedBy", p.InstalledBy)
	w.extras(&p.Extra)
	return w.finish()
}

// decodeObject walks the single top-level JSON object in data, invoking
// visit once per key with the key's raw value. Key order is the document
// order, which is what lets Extras preserve it.
func decodeObject(data []byte, visit func(key string, raw json.RawMessage) error) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("decode metadata: %w", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("decode metadata: expected object, got %v", tok)
	}

	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return fmt.Errorf("decode metadata: %w", err)
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("decode metadata: expected key, got %v", tok)
		}

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return fmt.Errorf("decode metadata key %q: %w", key, err)
		}
		if err := visit(key, raw); err != nil {
			return err
		}
	}

	if _, err := dec.Token(); err != nil && err != io.EOF {
		return fmt.Errorf("decode metadata: %w", err)
	}
	return nil
}

func decodeInto(key string, raw json.RawMessage, dst any) error {
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("decode metadata key %q: %w", key, err)
	}
	return nil
}

// objectWriter builds a JSON object with explicit key order.
type objectWriter struct {
	buf   bytes.Buffer
	first bool
	err   error
}

func newObjectWriter() *objectWriter {
	w := &objectWriter{first: true}
	w.buf.WriteByte('{')
	return w
}

func (w *objectWriter) sep() {
	if !w.first {
		w.buf.WriteByte(',')
	}
	w.first = false
}

// stringField writes a string field, omitting it when empty.
func (w *objectWriter) stringField(key, val string) {
	if val == "" || w.err != nil {
		return
	}
	w.rawField(key, mustMarshal(val))
}

// anyField writes an arbitrary value under key.
func (w *objectWriter) anyField(key string, val any) {
	if w.err != nil {
		return
	}
	raw, err := json.Marshal(val)
	if err != nil {
		w.err = err
		return
	}
	w.rawField(key, raw)
}

func (w *objectWriter) rawField(key string, raw []byte) {
	w.sep()
	w.buf.Write(mustMarshal(key))
	w.buf.WriteByte(':')
	w.buf.Write(raw)
}

// extras appends every unrecognized key in insertion order.
func (w *objectWriter) extras(e *Extras) {
	if w.err != nil {
		return
	}
	for _, key := range e.keys {
		w.rawField(key, e.values[key])
	}
}

func (w *objectWriter) finish() ([]byte, error) {
	if w.err != nil {
		return nil, w.err
	}
	w.buf.WriteByte('}')
	return w.buf.Bytes(), nil
}

func mustMarshal(s string) []byte {
	raw, _ := json.Marshal(s)
	return raw
}
