// SPDX-License-Identifier: MPL-2.0

package upackver

import (
	"errors"
	"fmt"
	"math/big"
	"regexp"
	"strings"
)

// ErrInvalidVersion is the sentinel error wrapped by InvalidVersionError.
var ErrInvalidVersion = errors.New("invalid version")

// versionRegex validates the version grammar:
// MAJOR.MINOR.PATCH with optional -PRERELEASE and +BUILD suffixes.
// Each of MAJOR/MINOR/PATCH is one or more decimal digits with no upper
// bound on length; PRERELEASE and BUILD allow alphanumerics, dots and hyphens.
var versionRegex = regexp.MustCompile(`^([0-9]+)\.([0-9]+)\.([0-9]+)(?:-([0-9A-Za-z.\-]+))?(?:\+([0-9A-Za-z.\-]+))?$`)

type (
	// Version is an immutable package version of the form
	// major.minor.patch[-prerelease][+build].
	//
	// The numeric components are arbitrary-precision: version strings are
	// caller-controlled and may carry digit runs that overflow any
	// fixed-width integer. Construct a Version via Parse or New; the zero
	// value is not a valid version.
	Version struct {
		// Major is the major version component (never nil, non-negative).
		Major *big.Int
		// Minor is the minor version component (never nil, non-negative).
		Minor *big.Int
		// Patch is the patch version component (never nil, non-negative).
		Patch *big.Int
		// Prerelease is the optional dot-separated prerelease identifier ("" if absent).
		Prerelease string
		// Build is the optional build metadata string ("" if absent).
		Build string
	}

	// InvalidVersionError is returned when a string does not match the
	// version grammar.
	InvalidVersionError struct {
		Value string
	}
)

// Error implements the error interface for InvalidVersionError.
func (e *InvalidVersionError) Error() string {
	return fmt.Sprintf("invalid version %q: expected major.minor.patch[-prerelease][+build]", e.Value)
}

// Unwrap returns ErrInvalidVersion for errors.Is() compatibility.
func (e *InvalidVersionError) Unwrap() error { return ErrInvalidVersion }

// New constructs a Version from already-validated parts.
// Nil numeric components are treated as zero.
func New(major, minor, patch *big.Int, prerelease, build string) *Version {
	return &Version{
		Major:      zeroIfNil(major),
		Minor:      zeroIfNil(minor),
		Patch:      zeroIfNil(patch),
		Prerelease: prerelease,
		Build:      build,
	}
}

// Parse parses s as a version string. It returns an error wrapping
// ErrInvalidVersion if s does not match the version grammar; the input is
// never repaired or guessed at.
func Parse(s string) (*Version, error) {
	m := versionRegex.FindStringSubmatch(s)
	if m == nil {
		return nil, &InvalidVersionError{Value: s}
	}

	// The regex guarantees the numeric groups are digit runs, so SetString
	// cannot fail here.
	major, _ := new(big.Int).SetString(m[1], 10)
	minor, _ := new(big.Int).SetString(m[2], 10)
	patch, _ := new(big.Int).SetString(m[3], 10)

	return &Version{
		Major:      major,
		Minor:      minor,
		Patch:      patch,
		Prerelease: m[4],
		Build:      m[5],
	}, nil
}

// TryParse parses s as a version string, returning nil (not an error)
// when s is malformed.
func TryParse(s string) *Version {
	v, err := Parse(s)
	if err != nil {
		return nil
	}
	return v
}

// String returns the full canonical form, including build metadata when present.
func (v *Version) String() string {
	var sb strings.Builder
	sb.WriteString(v.Major.String())
	sb.WriteByte('.')
	sb.WriteString(v.Minor.String())
	sb.WriteByte('.')
	sb.WriteString(v.Patch.String())
	if v.Prerelease != "" {
		sb.WriteByte('-')
		sb.WriteString(v.Prerelease)
	}
	if v.Build != "" {
		sb.WriteByte('+')
		sb.WriteString(v.Build)
	}
	return sb.String()
}

// UniqueString returns the version formatted without build metadata.
// Two versions that differ only in build metadata share a UniqueString;
// this is the form used for cache file names.
func (v *Version) UniqueString() string {
	var sb strings.Builder
	sb.WriteString(v.Major.String())
	sb.WriteByte('.')
	sb.WriteString(v.Minor.String())
	sb.WriteByte('.')
	sb.WriteString(v.Patch.String())
	if v.Prerelease != "" {
		sb.WriteByte('-')
		sb.WriteString(v.Prerelease)
	}
	return sb.String()
}

// Equal reports whether v and o match exactly on every component, including
// build metadata. Prerelease and build are compared ordinally.
func (v *Version) Equal(o *Version) bool {
	if v == nil || o == nil {
		return v == o
	}
	return v.Major.Cmp(o.Major) == 0 &&
		v.Minor.Cmp(o.Minor) == 0 &&
		v.Patch.Cmp(o.Patch) == 0 &&
		v.Prerelease == o.Prerelease &&
		v.Build == o.Build
}

// Compare returns -1, 0, or 1 ordering v against o.
//
// Major, minor and patch compare numerically. Prerelease follows
// semantic-versioning precedence: a release (no prerelease) sorts after any
// prerelease of the same numeric triple, and prerelease identifiers compare
// dot-segment by dot-segment (numeric when both sides are numeric, numeric
// below non-numeric otherwise, ordinal as the fallback). Build metadata is
// folded into the order last, so two versions differing only in build are
// ordered, not equal.
func (v *Version) Compare(o *Version) int {
	if c := v.Major.Cmp(o.Major); c != 0 {
		return c
	}
	if c := v.Minor.Cmp(o.Minor); c != 0 {
		return c
	}
	if c := v.Patch.Cmp(o.Patch); c != 0 {
		return c
	}
	if c := comparePrerelease(v.Prerelease, o.Prerelease); c != 0 {
		return c
	}
	return compareBuild(v.Build, o.Build)
}

// comparePrerelease orders two prerelease strings. An absent prerelease
// sorts after any present one (release > prerelease).
func comparePrerelease(a, b string) int {
	if a == "" && b == "" {
		return 0
	}
	if a == "" {
		return 1
	}
	if b == "" {
		return -1
	}

	aParts := strings.Split(a, ".")
	bParts := strings.Split(b, ".")
	for i := 0; i < len(aParts) || i < len(bParts); i++ {
		// The side that runs out of identifiers first is the lesser.
		if i >= len(aParts) {
			return -1
		}
		if i >= len(bParts) {
			return 1
		}
		if c := compareIdentifier(aParts[i], bParts[i]); c != 0 {
			return c
		}
	}
	return 0
}

// compareBuild orders two build metadata strings as whole identifiers.
// An absent build sorts before a present one.
func compareBuild(a, b string) int {
	if a == "" && b == "" {
		return 0
	}
	if a == "" {
		return -1
	}
	if b == "" {
		return 1
	}
	return compareIdentifier(a, b)
}

// compareIdentifier compares a single identifier pair: numerically when both
// sides parse as integers, with a numeric side sorting below a non-numeric
// one, and ordinally otherwise.
func compareIdentifier(a, b string) int {
	aNum, aOK := parseBigInt(a)
	bNum, bOK := parseBigInt(b)
	switch {
	case aOK && bOK:
		return aNum.Cmp(bNum)
	case aOK:
		return -1
	case bOK:
		return 1
	default:
		return strings.Compare(a, b)
	}
}

// parseBigInt parses s as a non-negative decimal integer.
func parseBigInt(s string) (*big.Int, bool) {
	if s == "" {
		return nil, false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return nil, false
		}
	}
	n, ok := new(big.Int).SetString(s, 10)
	return n, ok
}

// Latest returns the greatest version in vs according to Compare, or nil
// when vs is empty.
func Latest(vs []*Version) *Version {
	var best *Version
	for _, v := range vs {
		if v == nil {
			continue
		}
		if best == nil || v.Compare(best) > 0 {
			best = v
		}
	}
	return best
}

func zeroIfNil(n *big.Int) *big.Int {
	if n == nil {
		return new(big.Int)
	}
	return n
}
