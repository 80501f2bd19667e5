// SPDX-License-Identifier: MPL-2.0

package upackver

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidVersionRange is the sentinel error wrapped by InvalidVersionRangeError.
var ErrInvalidVersionRange = errors.New("invalid version range")

type (
	// VersionRange is an immutable version constraint: the unbounded
	// wildcard ("*"), an exact version ("1.2.3"), or an interval with
	// optional inclusive/exclusive bounds ("[1.0.0,2.0.0)", "[3.0.0,]",
	// "[,1.0.0]"). A nil bound means that side is unbounded.
	VersionRange struct {
		// Lower is the lower bound, or nil when unbounded below.
		Lower *Version
		// LowerExclusive reports whether the lower bound itself is excluded.
		LowerExclusive bool
		// Upper is the upper bound, or nil when unbounded above.
		Upper *Version
		// UpperExclusive reports whether the upper bound itself is excluded.
		UpperExclusive bool
	}

	// InvalidVersionRangeError is returned when a string does not match the
	// version-range grammar.
	InvalidVersionRangeError struct {
		Value  string
		Reason string
	}
)

// Error implements the error interface for InvalidVersionRangeError.
func (e *InvalidVersionRangeError) Error() string {
	return fmt.Sprintf("invalid version range %q: %s", e.Value, e.Reason)
}

// Unwrap returns ErrInvalidVersionRange for errors.Is() compatibility.
func (e *InvalidVersionRangeError) Unwrap() error { return ErrInvalidVersionRange }

// Any returns the unbounded range matching every version.
func Any() *VersionRange { return &VersionRange{} }

// Exact returns the range matching only v.
func Exact(v *Version) *VersionRange {
	return &VersionRange{Lower: v, Upper: v}
}

// ParseRange parses s as a version range: "*", a bare version, or a
// bracketed interval with optional bounds. It returns an error wrapping
// ErrInvalidVersionRange on malformed brackets, a missing comma, or an
// unparsable embedded version.
func ParseRange(s string) (*VersionRange, error) {
	if s == "*" {
		return Any(), nil
	}

	if !strings.HasPrefix(s, "[") && !strings.HasPrefix(s, "(") {
		v, err := Parse(s)
		if err != nil {
			return nil, &InvalidVersionRangeError{Value: s, Reason: "not a version, wildcard, or interval"}
		}
		return Exact(v), nil
	}

	if len(s) < 3 {
		return nil, &InvalidVersionRangeError{Value: s, Reason: "interval too short"}
	}

	last := s[len(s)-1]
	if last != ']' && last != ')' {
		return nil, &InvalidVersionRangeError{Value: s, Reason: "interval must end with ']' or ')'"}
	}

	inner := s[1 : len(s)-1]
	lowerStr, upperStr, ok := strings.Cut(inner, ",")
	if !ok {
		return nil, &InvalidVersionRangeError{Value: s, Reason: "interval is missing ','"}
	}
	if strings.Contains(upperStr, ",") {
		return nil, &InvalidVersionRangeError{Value: s, Reason: "interval has more than one ','"}
	}

	r := &VersionRange{
		LowerExclusive: s[0] == '(',
		UpperExclusive: last == ')',
	}

	if lowerStr = strings.TrimSpace(lowerStr); lowerStr != "" {
		v, err := Parse(lowerStr)
		if err != nil {
			return nil, &InvalidVersionRangeError{Value: s, Reason: fmt.Sprintf("bad lower bound %q", lowerStr)}
		}
		r.Lower = v
	}
	if upperStr = strings.TrimSpace(upperStr); upperStr != "" {
		v, err := Parse(upperStr)
		if err != nil {
			return nil, &InvalidVersionRangeError{Value: s, Reason: fmt.Sprintf("bad upper bound %q", upperStr)}
		}
		r.Upper = v
	}

	return r, nil
}

// TryParseRange parses s as a version range, returning nil (not an error)
// when s is malformed.
func TryParseRange(s string) *VersionRange {
	r, err := ParseRange(s)
	if err != nil {
		return nil
	}
	return r
}

// IsAny reports whether the range is unbounded on both sides.
func (r *VersionRange) IsAny() bool { return r.Lower == nil && r.Upper == nil }

// IsExact reports whether the range denotes a single version: both bounds
// present and equal.
func (r *VersionRange) IsExact() bool {
	return r.Lower != nil && r.Upper != nil && r.Lower.Equal(r.Upper)
}

// String returns the canonical form: "*" for the unbounded range, the bare
// version for an exact range, and bracket notation otherwise.
func (r *VersionRange) String() string {
	if r.IsAny() {
		return "*"
	}
	if r.IsExact() {
		return r.Lower.String()
	}

	var sb strings.Builder
	if r.LowerExclusive {
		sb.WriteByte('(')
	} else {
		sb.WriteByte('[')
	}
	if r.Lower != nil {
		sb.WriteString(r.Lower.String())
	}
	sb.WriteByte(',')
	if r.Upper != nil {
		sb.WriteString(r.Upper.String())
	}
	if r.UpperExclusive {
		sb.WriteByte(')')
	} else {
		sb.WriteByte(']')
	}
	return sb.String()
}

// Equal reports whether r and o denote the same range.
//
// Bounds compare by value; an exclusivity flag only participates when the
// corresponding bound is present, and two exact ranges over the same point
// are equal regardless of their exclusivity flags.
func (r *VersionRange) Equal(o *VersionRange) bool {
	if r == nil || o == nil {
		return r == o
	}
	if !versionPtrEqual(r.Lower, o.Lower) || !versionPtrEqual(r.Upper, o.Upper) {
		return false
	}
	if r.IsExact() && o.IsExact() {
		return true
	}
	if r.Lower != nil && r.LowerExclusive != o.LowerExclusive {
		return false
	}
	if r.Upper != nil && r.UpperExclusive != o.UpperExclusive {
		return false
	}
	return true
}

// Matches reports whether v falls within the range.
func (r *VersionRange) Matches(v *Version) bool {
	if v == nil {
		return false
	}
	if r.Lower != nil {
		c := v.Compare(r.Lower)
		if c < 0 || (c == 0 && r.LowerExclusive) {
			return false
		}
	}
	if r.Upper != nil {
		c := v.Compare(r.Upper)
		if c > 0 || (c == 0 && r.UpperExclusive) {
			return false
		}
	}
	return true
}

func versionPtrEqual(a, b *Version) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(b)
}
