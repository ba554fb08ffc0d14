package resolver

import (
	"sort"
	"strings"

	"github.com/pkg/errors"
)

// VersionSet is a canonical set over Version values: the empty set, the
// set of all versions, a singleton exact match, a half-open range
// [lo, hi), or a union of any of the above, always normalized to a sorted
// vector of disjoint pieces. Every constructor and combinator returns a
// canonical value, matching the invariant the data model requires:
// adjacent pieces coalesce, empty pieces are dropped, and a union of one
// piece collapses to that piece.
//
// Ranges are half-open with inclusive low and exclusive high. A singleton
// exact(v) is its own piece kind rather than a range synthesized against
// some constructed "successor of v" - semver versions are dense enough
// (arbitrary pre-release identifiers can always be inserted) that no such
// successor is constructible in general, so membership and merging for
// exact pieces are handled directly instead of manufacturing one.
type VersionSet struct {
	kind   vsKind
	pieces []piece // sorted ascending by lo, pairwise disjoint; unused for empty/any
}

type vsKind uint8

const (
	vsEmpty vsKind = iota
	vsAny
	vsPieces
)

type piece struct {
	exact bool
	lo    Version
	hi    Version // exclusive; meaningless when exact or hiInf
	hiInf bool
}

// Empty returns the set containing no versions.
func Empty() VersionSet { return VersionSet{kind: vsEmpty} }

// Any returns the set containing every version.
func Any() VersionSet { return VersionSet{kind: vsAny} }

// ExactSet returns the singleton set containing only v.
func ExactSet(v Version) VersionSet {
	return VersionSet{kind: vsPieces, pieces: []piece{{exact: true, lo: v}}}
}

// RangeSet returns the half-open set [lo, hi). If lo is not strictly less
// than hi, the result is Empty().
func RangeSet(lo, hi Version) VersionSet {
	if !lo.Less(hi) {
		return Empty()
	}
	return VersionSet{kind: vsPieces, pieces: []piece{{lo: lo, hi: hi}}}
}

// AtLeastSet returns the unbounded-above set [lo, +inf).
func AtLeastSet(lo Version) VersionSet {
	return VersionSet{kind: vsPieces, pieces: []piece{{lo: lo, hiInf: true}}}
}

func (s VersionSet) IsEmpty() bool { return s.kind == vsEmpty || (s.kind == vsPieces && len(s.pieces) == 0) }
func (s VersionSet) IsAny() bool   { return s.kind == vsAny }

func (p piece) contains(v Version) bool {
	if p.exact {
		return v.Equal(p.lo)
	}
	if v.Less(p.lo) {
		return false
	}
	if !p.hiInf && !v.Less(p.hi) {
		return false
	}
	return true
}

// Contains reports whether v is a member of s. Membership is a binary
// search over the canonical, sorted piece vector.
func (s VersionSet) Contains(v Version) bool {
	switch s.kind {
	case vsEmpty:
		return false
	case vsAny:
		return true
	}

	n := len(s.pieces)
	// Find the rightmost piece whose lo is <= v.
	i := sort.Search(n, func(i int) bool { return v.Less(s.pieces[i].lo) })
	if i == 0 {
		return false
	}
	return s.pieces[i-1].contains(v)
}

// Intersect returns the canonical intersection of a and b.
func Intersect(a, b VersionSet) VersionSet {
	if a.IsEmpty() || b.IsEmpty() {
		return Empty()
	}
	if a.kind == vsAny {
		return b
	}
	if b.kind == vsAny {
		return a
	}

	var out []piece
	for _, pa := range a.pieces {
		for _, pb := range b.pieces {
			if r, ok := intersectPieces(pa, pb); ok {
				out = append(out, r)
			}
		}
	}
	return canonicalize(out)
}

// Union returns the canonical union of a and b. The resolver's core
// algorithm never constructs a union set itself, but manifests with OR'd
// requirements ("||"-style ranges) lower to one, and the fixture loader
// builds one from a requirement list, so the type has to be able to
// build, normalize and round-trip them.
func Union(a, b VersionSet) VersionSet {
	if a.kind == vsAny || b.kind == vsAny {
		return Any()
	}
	if a.IsEmpty() {
		return b
	}
	if b.IsEmpty() {
		return a
	}

	out := make([]piece, 0, len(a.pieces)+len(b.pieces))
	out = append(out, a.pieces...)
	out = append(out, b.pieces...)
	return canonicalize(out)
}

// Equal reports whether a and b are the same canonical set. It compares
// representations, not denotations: an exact piece sitting at a range's
// exclusive high bound (e.g. [1.0.0,2.0.0) alongside =2.0.0) is kept as
// its own piece rather than fused into the range, so two sets with the
// same members can compare unequal when one was built through that shape.
func (s VersionSet) Equal(o VersionSet) bool {
	if s.kind != o.kind {
		return false
	}
	if s.kind != vsPieces {
		return true
	}
	if len(s.pieces) != len(o.pieces) {
		return false
	}
	for i := range s.pieces {
		if !s.pieces[i].equal(o.pieces[i]) {
			return false
		}
	}
	return true
}

// equal compares two pieces by value, going through Version.Equal rather
// than a raw struct comparison: piece's lo/hi fields are Version, which
// wraps a *semver.Version, so a plain "==" compares pointer identity on
// lo/hi instead of semver value equality.
func (p piece) equal(o piece) bool {
	if p.exact != o.exact || p.hiInf != o.hiInf {
		return false
	}
	if !p.lo.Equal(o.lo) {
		return false
	}
	if p.exact || p.hiInf {
		return true
	}
	return p.hi.Equal(o.hi)
}

func (s VersionSet) String() string {
	switch s.kind {
	case vsEmpty:
		return "empty"
	case vsAny:
		return "any"
	}

	parts := make([]string, len(s.pieces))
	for i, p := range s.pieces {
		switch {
		case p.exact:
			parts[i] = "=" + p.lo.String()
		case p.hiInf:
			parts[i] = ">=" + p.lo.String()
		default:
			parts[i] = p.lo.String() + "..<" + p.hi.String()
		}
	}
	return strings.Join(parts, " || ")
}

func intersectPieces(a, b piece) (piece, bool) {
	switch {
	case a.exact && b.exact:
		if a.lo.Equal(b.lo) {
			return a, true
		}
		return piece{}, false
	case a.exact && !b.exact:
		if b.contains(a.lo) {
			return a, true
		}
		return piece{}, false
	case !a.exact && b.exact:
		if a.contains(b.lo) {
			return b, true
		}
		return piece{}, false
	default:
		lo := a.lo
		if b.lo.Greater(lo) {
			lo = b.lo
		}

		hiInf := a.hiInf && b.hiInf
		var hi Version
		switch {
		case a.hiInf:
			hi, hiInf = b.hi, false
		case b.hiInf:
			hi, hiInf = a.hi, false
		default:
			hi = a.hi
			if b.hi.Less(hi) {
				hi = b.hi
			}
		}

		if hiInf {
			return piece{lo: lo, hiInf: true}, true
		}
		if !lo.Less(hi) {
			return piece{}, false
		}
		return piece{lo: lo, hi: hi}, true
	}
}

// canonicalize sorts pieces, drops anything degenerate, and coalesces
// overlapping or touching pieces into the minimal disjoint representation.
func canonicalize(in []piece) VersionSet {
	pieces := make([]piece, 0, len(in))
	for _, p := range in {
		if !p.exact && !p.hiInf && !p.lo.Less(p.hi) {
			continue // degenerate/empty range
		}
		pieces = append(pieces, p)
	}
	if len(pieces) == 0 {
		return Empty()
	}

	sort.Slice(pieces, func(i, j int) bool {
		a, b := pieces[i], pieces[j]
		if !a.lo.Equal(b.lo) {
			return a.lo.Less(b.lo)
		}
		// At equal lo, the smaller (exact) piece sorts first so the sweep
		// below sees it before whatever range might absorb it.
		return a.exact && !b.exact
	})

	out := make([]piece, 0, len(pieces))
	cur := pieces[0]
	for _, next := range pieces[1:] {
		if merged, ok := mergeTouching(cur, next); ok {
			cur = merged
			// An exact piece absorbed into the range after it can leave that
			// range touching the previous output piece; coalesce them too.
			if n := len(out); n > 0 {
				if m, ok := mergeTouching(out[n-1], cur); ok {
					out, cur = out[:n-1], m
				}
			}
			continue
		}
		out = append(out, cur)
		cur = next
	}
	out = append(out, cur)

	return VersionSet{kind: vsPieces, pieces: out}
}

// mergeTouching merges a and b (a sorted before or equal to b by lo) if
// they overlap or abut with no gap between them, per the "adjacent ranges
// coalesce" invariant.
func mergeTouching(a, b piece) (piece, bool) {
	switch {
	case a.exact && b.exact:
		if a.lo.Equal(b.lo) {
			return a, true
		}
		return piece{}, false
	case a.exact && !b.exact:
		if b.contains(a.lo) {
			return b, true
		}
		return piece{}, false
	case !a.exact && b.exact:
		if a.hiInf || b.lo.Less(a.hi) {
			return a, true
		}
		return piece{}, false
	default:
		touches := a.hiInf || !a.hi.Less(b.lo)
		if !touches {
			return piece{}, false
		}
		if a.hiInf || b.hiInf {
			return piece{lo: a.lo, hiInf: true}, true
		}
		hi := a.hi
		if b.hi.Greater(hi) {
			hi = b.hi
		}
		return piece{lo: a.lo, hi: hi}, true
	}
}

// ParseVersionSet parses the fixture set grammar: "any", "=X.Y.Z", or
// "X.Y.Z..<A.B.C". It also accepts "*" and the empty string as "any", and
// ">=X.Y.Z" as an unbounded-above range. Unions are expressed in fixtures as a JSON list and are
// assembled by the fixture loader via repeated Union calls, not by this
// function.
func ParseVersionSet(s string) (VersionSet, error) {
	s = strings.TrimSpace(s)
	switch {
	case s == "any" || s == "*" || s == "":
		return Any(), nil
	case strings.HasPrefix(s, "="):
		v, err := ParseVersion(strings.TrimSpace(s[1:]))
		if err != nil {
			return VersionSet{}, errors.Wrapf(err, "parsing exact version set %q", s)
		}
		return ExactSet(v), nil
	case strings.Contains(s, "..<"):
		parts := strings.SplitN(s, "..<", 2)
		lo, err := ParseVersion(strings.TrimSpace(parts[0]))
		if err != nil {
			return VersionSet{}, errors.Wrapf(err, "parsing range low bound in %q", s)
		}
		hi, err := ParseVersion(strings.TrimSpace(parts[1]))
		if err != nil {
			return VersionSet{}, errors.Wrapf(err, "parsing range high bound in %q", s)
		}
		return RangeSet(lo, hi), nil
	case strings.HasPrefix(s, ">="):
		lo, err := ParseVersion(strings.TrimSpace(s[2:]))
		if err != nil {
			return VersionSet{}, errors.Wrapf(err, "parsing lower-bound version set %q", s)
		}
		return AtLeastSet(lo), nil
	default:
		return VersionSet{}, &MalformedVersionSetError{Input: s}
	}
}
