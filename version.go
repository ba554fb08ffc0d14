package resolver

import (
	"regexp"

	"github.com/Masterminds/semver"
)

// strictSemverRegex enforces the exact grammar this module promises
// (MAJOR.MINOR.PATCH[-PRERELEASE][+BUILD], no leading zeros, no empty
// identifiers) ahead of Masterminds/semver's own parser, which is more
// permissive than that grammar (it allows a bare "1" or "1.2", and a
// leading-zero numeric identifier like "01").
var strictSemverRegex = regexp.MustCompile(
	`^(0|[1-9]\d*)\.(0|[1-9]\d*)\.(0|[1-9]\d*)` +
		`(-(0|[1-9]\d*|\d*[A-Za-z-][0-9A-Za-z-]*)(\.(0|[1-9]\d*|\d*[A-Za-z-][0-9A-Za-z-]*))*)?` +
		`(\+[0-9A-Za-z-]+(\.[0-9A-Za-z-]+)*)?$`,
)

// Version is a semver 2.0 triple with pre-release and build metadata,
// carrying a total order over that triple (build metadata is ignored for
// comparison, per the semver spec). It wraps Masterminds/semver rather
// than reimplementing precedence rules by hand: the ordering corner cases
// (numeric vs. alphanumeric pre-release identifiers, shorter-tuple
// precedence) are exactly what that library already gets right.
type Version struct {
	sv *semver.Version
}

// ParseVersion parses MAJOR.MINOR.PATCH[-PRERELEASE][+BUILD]. Leading
// zeros in numeric identifiers and empty identifiers are rejected by
// strictSemverRegex before the underlying parser runs.
func ParseVersion(s string) (Version, error) {
	if !strictSemverRegex.MatchString(s) {
		return Version{}, &MalformedVersionError{Input: s}
	}
	sv, err := semver.NewVersion(s)
	if err != nil {
		return Version{}, &MalformedVersionError{Input: s, Cause: err}
	}
	return Version{sv: sv}, nil
}

// MustParseVersion is a convenience for fixtures and tests; it panics on a
// malformed version instead of returning an error.
func MustParseVersion(s string) Version {
	v, err := ParseVersion(s)
	if err != nil {
		panic(err)
	}
	return v
}

// IsZero reports whether v is the zero Version (never produced by
// ParseVersion; useful for detecting an uninitialized field).
func (v Version) IsZero() bool { return v.sv == nil }

func (v Version) String() string {
	if v.sv == nil {
		return "<nil>"
	}
	return v.sv.String()
}

// Compare returns -1, 0 or 1 as v is less than, equal to, or greater than
// o, using full semver 2.0 precedence.
func (v Version) Compare(o Version) int {
	return v.sv.Compare(o.sv)
}

func (v Version) Less(o Version) bool    { return v.Compare(o) < 0 }
func (v Version) Equal(o Version) bool   { return v.Compare(o) == 0 }
func (v Version) Greater(o Version) bool { return v.Compare(o) > 0 }

// Major, Minor, Patch expose the numeric triple directly, e.g. for trace
// output or fixture round-tripping.
func (v Version) Major() int64 { return v.sv.Major() }
func (v Version) Minor() int64 { return v.sv.Minor() }
func (v Version) Patch() int64 { return v.sv.Patch() }

// Prerelease returns the raw prerelease string ("" if none).
func (v Version) Prerelease() string { return v.sv.Prerelease() }

// versionsDescending sorts a slice of Version highest-first. Providers
// are required to hand back versions in descending order already; this
// sorter exists for the pieces that build a list from unordered input
// (the fixture loader, test doubles) and need the same order.
type versionsDescending []Version

func (s versionsDescending) Len() int           { return len(s) }
func (s versionsDescending) Less(i, j int) bool { return s[i].Greater(s[j]) }
func (s versionsDescending) Swap(i, j int)      { s[i], s[j] = s[j], s[i] }
