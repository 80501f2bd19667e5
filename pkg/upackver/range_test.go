// SPDX-License-Identifier: MPL-2.0

package upackver

import (
	"errors"
	"testing"
)

func TestParseRange_RoundTrip(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  string // canonical String(); "" means same as input
	}{
		{"wildcard", "*", ""},
		{"exact", "1.2.3", ""},
		{"exact with prerelease", "1.2.3-beta.1", ""},
		{"closed interval", "[1.0.0,2.0.0]", ""},
		{"half-open interval", "[1.0.0,2.0.0)", ""},
		{"open interval", "(1.0.0,2.0.0)", ""},
		{"no upper bound", "[3.0.0,]", ""},
		{"no lower bound", "[,1.0.0]", ""},
		{"exclusive unbounded above", "(1.0.0,]", ""},
		{"exact via interval collapses", "[1.2.3,1.2.3]", "1.2.3"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			r, err := ParseRange(tt.input)
			if err != nil {
				t.Fatalf("ParseRange(%q) error = %v", tt.input, err)
			}

			want := tt.want
			if want == "" {
				want = tt.input
			}
			if got := r.String(); got != want {
				t.Errorf("String() = %q, want %q", got, want)
			}

			// The canonical form must parse back to an equal range.
			again, err := ParseRange(r.String())
			if err != nil {
				t.Fatalf("ParseRange(%q) error = %v", r.String(), err)
			}
			if !r.Equal(again) {
				t.Errorf("round-tripped range %q not equal to original", r)
			}
		})
	}
}

func TestParseRange_Invalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"bare word", "latest"},
		{"missing comma", "[1.0.0]"},
		{"two commas", "[1.0.0,2.0.0,3.0.0]"},
		{"unterminated", "[1.0.0,2.0.0"},
		{"bad close", "[1.0.0,2.0.0}"},
		{"bad lower version", "[1.x,2.0.0]"},
		{"bad upper version", "[1.0.0,nope]"},
		{"bracket only", "["},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if _, err := ParseRange(tt.input); !errors.Is(err, ErrInvalidVersionRange) {
				t.Errorf("ParseRange(%q) error = %v, want ErrInvalidVersionRange", tt.input, err)
			}
			if r := TryParseRange(tt.input); r != nil {
				t.Errorf("TryParseRange(%q) = %v, want nil", tt.input, r)
			}
		})
	}
}

func TestVersionRange_Equal(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		a, b string
		want bool
	}{
		{"wildcards", "*", "*", true},
		{"exact same", "1.2.3", "1.2.3", true},
		{"exact differs", "1.2.3", "1.2.4", false},
		{"same interval", "[1.0.0,2.0.0)", "[1.0.0,2.0.0)", true},
		{"exclusivity differs on present bound", "[1.0.0,2.0.0)", "(1.0.0,2.0.0)", false},
		{"upper exclusivity differs", "[1.0.0,2.0.0)", "[1.0.0,2.0.0]", false},
		// Exclusivity flags are irrelevant when both ranges collapse to the
		// same exact point.
		{"exact point ignores exclusivity", "[1.2.3,1.2.3]", "(1.2.3,1.2.3)", true},
		{"exact vs bare form", "[1.2.3,1.2.3]", "1.2.3", true},
		{"half-bounded equal", "[3.0.0,]", "[3.0.0,]", true},
		{"half-bounded differs", "[3.0.0,]", "[,3.0.0]", false},
		{"wildcard vs exact", "*", "1.0.0", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			a, err := ParseRange(tt.a)
			if err != nil {
				t.Fatalf("ParseRange(%q) error = %v", tt.a, err)
			}
			b, err := ParseRange(tt.b)
			if err != nil {
				t.Fatalf("ParseRange(%q) error = %v", tt.b, err)
			}

			if got := a.Equal(b); got != tt.want {
				t.Errorf("Equal(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
			if got := b.Equal(a); got != tt.want {
				t.Errorf("Equal(%q, %q) = %v, want %v", tt.b, tt.a, got, tt.want)
			}
		})
	}
}

func TestVersionRange_Matches(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		r       string
		version string
		want    bool
	}{
		{"wildcard matches anything", "*", "0.0.1-alpha", true},
		{"exact match", "1.2.3", "1.2.3", true},
		{"exact mismatch", "1.2.3", "1.2.4", false},
		{"inclusive lower edge", "[1.0.0,2.0.0)", "1.0.0", true},
		{"exclusive upper edge", "[1.0.0,2.0.0)", "2.0.0", false},
		{"inside interval", "[1.0.0,2.0.0)", "1.5.0", true},
		{"below interval", "[1.0.0,2.0.0)", "0.9.9", false},
		{"exclusive lower edge", "(1.0.0,2.0.0]", "1.0.0", false},
		{"open above", "[3.0.0,]", "99.0.0", true},
		{"open below", "[,1.0.0]", "0.0.1", true},
		{"prerelease below release at bound", "[1.0.0,2.0.0]", "1.0.0-rc.1", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			r, err := ParseRange(tt.r)
			if err != nil {
				t.Fatalf("ParseRange(%q) error = %v", tt.r, err)
			}
			v, err := Parse(tt.version)
			if err != nil {
				t.Fatalf("Parse(%q) error = %v", tt.version, err)
			}

			if got := r.Matches(v); got != tt.want {
				t.Errorf("Matches(%q, %q) = %v, want %v", tt.r, tt.version, got, tt.want)
			}
		})
	}
}

func TestVersionRange_Predicates(t *testing.T) {
	t.Parallel()

	if !Any().IsAny() {
		t.Error("Any().IsAny() = false, want true")
	}
	if Any().IsExact() {
		t.Error("Any().IsExact() = true, want false")
	}

	exact := Exact(TryParse("1.0.0"))
	if !exact.IsExact() {
		t.Error("Exact().IsExact() = false, want true")
	}
	if exact.IsAny() {
		t.Error("Exact().IsAny() = true, want false")
	}
}
