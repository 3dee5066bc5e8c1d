// Package semver implements the restricted semantic version used for
// project metadata and release tags.
//
// The grammar is MAJOR.MINOR.PATCH with an optional "-METADATA" suffix.
// Unlike full semver there is no "+" build separator: pre-release and build
// information share the single dash-delimited metadata segment, which may
// itself contain dashes ("1.2.3-rc-1").
package semver

import (
	"fmt"
	"regexp"
)

var versionPattern = regexp.MustCompile(
	`^(0|[1-9]\d*)\.(0|[1-9]\d*)\.(0|[1-9]\d*)` +
		`(?:-(0|[1-9]\d*|\d*[a-zA-Z-][0-9a-zA-Z-]*))?$`,
)

// Version is an immutable semantic version. Numeric parts are kept as
// their decimal digits, so any number of digits round-trips unchanged and
// increments never overflow. The zero value prints as 0.0.0.
type Version struct {
	major    string
	minor    string
	patch    string
	metadata string
}

// Parse validates s and returns the corresponding Version.
func Parse(s string) (Version, error) {
	m := versionPattern.FindStringSubmatch(s)
	if m == nil {
		return Version{}, fmt.Errorf("%w: %q", ErrInvalidVersion, s)
	}
	return Version{major: m[1], minor: m[2], patch: m[3], metadata: m[4]}, nil
}

// MustParse is like Parse but panics on invalid input. Intended for
// constants and tests.
func MustParse(s string) Version {
	v, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return v
}

// Major, Minor and Patch return the decimal digits of each number.
func (v Version) Major() string { return digits(v.major) }
func (v Version) Minor() string { return digits(v.minor) }
func (v Version) Patch() string { return digits(v.patch) }

// Metadata returns everything after the first dash following the patch
// number, or "" when there is none.
func (v Version) Metadata() string { return v.metadata }

func (v Version) String() string {
	core := v.Major() + "." + v.Minor() + "." + v.Patch()
	if v.metadata == "" {
		return core
	}
	return core + "-" + v.metadata
}

// NextPatch returns major.minor.(patch+1) without metadata.
func (v Version) NextPatch() Version {
	return Version{major: v.Major(), minor: v.Minor(), patch: increment(v.Patch())}
}

// NextMinor returns major.(minor+1).0 without metadata.
func (v Version) NextMinor() Version {
	return Version{major: v.Major(), minor: increment(v.Minor()), patch: "0"}
}

// NextMajor returns (major+1).0.0 without metadata.
func (v Version) NextMajor() Version {
	return Version{major: increment(v.Major()), minor: "0", patch: "0"}
}

// WithMetadata returns v with its metadata set to text, replacing any
// existing metadata. The result is re-validated against the grammar.
func (v Version) WithMetadata(text string) (Version, error) {
	return Parse(v.WithoutMetadata().String() + "-" + text)
}

// WithoutMetadata returns the bare major.minor.patch form of v.
func (v Version) WithoutMetadata() Version {
	return Version{major: v.Major(), minor: v.Minor(), patch: v.Patch()}
}

// MarshalText implements encoding.TextMarshaler.
func (v Version) MarshalText() ([]byte, error) {
	return []byte(v.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (v *Version) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

func digits(s string) string {
	if s == "" {
		return "0"
	}
	return s
}

// increment adds one to a string of decimal digits.
func increment(s string) string {
	b := []byte(s)
	for i := len(b) - 1; i >= 0; i-- {
		if b[i] < '9' {
			b[i]++
			return string(b)
		}
		b[i] = '0'
	}
	return "1" + string(b)
}
