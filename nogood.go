package resolver

import (
	"sort"
	"strings"

	radix "github.com/armon/go-radix"
)

// nogoodTrie is a typed wrapper over a radix tree; it exists so callers
// never type assert on the way in or out.
//
// A nogood record says "this exact search state (bindings plus unbound
// requirements), the last time we tried it, cannot be satisfied", keyed by
// a canonical string encoding of that state (see nogoodKey). If a later
// frame's state matches a cached nogood key exactly, the search can skip
// straight to failure instead of re-deriving it the slow way; a state that
// merely subsumes a cached one does not match.
type nogoodTrie struct {
	t *radix.Tree
}

func newNogoodTrie() nogoodTrie {
	return nogoodTrie{t: radix.New()}
}

func (t nogoodTrie) Get(key string) (struct{}, bool) {
	if _, has := t.t.Get(key); has {
		return struct{}{}, true
	}
	return struct{}{}, false
}

func (t nogoodTrie) Insert(key string) {
	t.t.Insert(key, struct{}{})
}

func (t nogoodTrie) Len() int {
	return t.t.Len()
}

// nogoodKey canonicalizes the full search state at a decision point into
// a deterministic string: every bound package sorted by name and rendered
// as "name@version", then every unbound package sorted by name and
// rendered as "name=set". Two frames in the same state, reached by
// different search paths, produce the same key. The bindings are part of
// the key because the unbound requirements alone don't determine the
// outcome: a still-unbound package can constrain an already-bound one, so
// the same unbound signature can fail under one set of bindings and
// succeed under another.
func nogoodKey(a *assignment, pkgs []PackageId) string {
	bound := make([]PackageId, 0, len(a.bindings))
	for id := range a.bindings {
		bound = append(bound, id)
	}
	sort.Slice(bound, func(i, j int) bool { return bound[i] < bound[j] })

	ids := make([]PackageId, len(pkgs))
	copy(ids, pkgs)
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	var b strings.Builder
	for _, id := range bound {
		b.WriteString(string(id))
		b.WriteByte('@')
		b.WriteString(a.bindings[id].String())
		b.WriteByte(';')
	}
	for i, id := range ids {
		if i > 0 {
			b.WriteByte(';')
		}
		b.WriteString(string(id))
		b.WriteByte('=')
		b.WriteString(a.requirementFor(id).String())
	}
	return b.String()
}
