// SPDX-License-Identifier: MPL-2.0

// Package upackid implements the universal-package identity model.
//
// A package is identified by an optional group and a required name, written
// canonically as "group/name" (or a bare "name" when ungrouped). The group
// may itself contain slashes; the name never does. Identity comparison is
// case-insensitive on both fields.
package upackid

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrInvalidPackageID is the sentinel error wrapped by InvalidPackageIDError.
var ErrInvalidPackageID = errors.New("invalid package id")

var (
	// groupRegex validates a package group. Slashes are allowed as segment
	// separators; empty segments ("//") are rejected separately.
	groupRegex = regexp.MustCompile(`^[0-9A-Za-z\-./_]+$`)

	// nameRegex validates a package name. Unlike groups, names never
	// contain slashes.
	nameRegex = regexp.MustCompile(`^[0-9A-Za-z\-._]+$`)
)

type (
	// PackageID is an immutable (group, name) package identity.
	// Construct via New or Parse; the zero value is not valid.
	PackageID struct {
		// Group is the optional package group ("" when absent).
		Group string
		// Name is the required package name.
		Name string
	}

	// InvalidPackageIDError is returned when a group or name does not match
	// the identity grammar.
	InvalidPackageIDError struct {
		Value  string
		Reason string
	}
)

// Error implements the error interface for InvalidPackageIDError.
func (e *InvalidPackageIDError) Error() string {
	return fmt.Sprintf("invalid package id %q: %s", e.Value, e.Reason)
}

// Unwrap returns ErrInvalidPackageID for errors.Is() compatibility.
func (e *InvalidPackageIDError) Unwrap() error { return ErrInvalidPackageID }

// New constructs a PackageID from separate group and name parts, validating
// each against the identity grammar. An empty group is normalized to absent.
func New(group, name string) (*PackageID, error) {
	if group != "" {
		if !groupRegex.MatchString(group) {
			return nil, &InvalidPackageIDError{Value: group, Reason: "group contains invalid characters"}
		}
		if strings.Contains(group, "//") {
			return nil, &InvalidPackageIDError{Value: group, Reason: "group contains an empty segment"}
		}
	}
	if name == "" {
		return nil, &InvalidPackageIDError{Value: name, Reason: "name is required"}
	}
	if !nameRegex.MatchString(name) {
		return nil, &InvalidPackageIDError{Value: name, Reason: "name contains invalid characters"}
	}
	return &PackageID{Group: group, Name: name}, nil
}

// Parse parses a package identity string.
//
// The documented form is "group/name" (split on the LAST slash, so the group
// may contain slashes) or a bare "name". A historical "group:name" form is
// also accepted when the string has no slash; it is split on the last colon.
func Parse(s string) (*PackageID, error) {
	if s == "" {
		return nil, &InvalidPackageIDError{Value: s, Reason: "name is required"}
	}

	if i := strings.LastIndexByte(s, '/'); i >= 0 {
		return New(s[:i], s[i+1:])
	}
	if i := strings.LastIndexByte(s, ':'); i >= 0 {
		return New(s[:i], s[i+1:])
	}
	return New("", s)
}

// String returns the canonical form: "group/name", or the bare name when no
// group is present.
func (id *PackageID) String() string {
	if id.Group == "" {
		return id.Name
	}
	return id.Group + "/" + id.Name
}

// Equal reports whether id and o name the same package. The comparison is
// case-insensitive on both group and name.
func (id *PackageID) Equal(o *PackageID) bool {
	if id == nil || o == nil {
		return id == o
	}
	return strings.EqualFold(id.Group, o.Group) && strings.EqualFold(id.Name, o.Name)
}

// Compare orders two identities case-insensitively by group, then name.
// An absent group sorts before any present one.
func (id *PackageID) Compare(o *PackageID) int {
	if c := strings.Compare(strings.ToLower(id.Group), strings.ToLower(o.Group)); c != 0 {
		return c
	}
	return strings.Compare(strings.ToLower(id.Name), strings.ToLower(o.Name))
}
