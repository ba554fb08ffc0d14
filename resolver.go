package resolver

import (
	"context"
	"errors"
	"sort"

	"github.com/sdboyer/constext"
)

// Solution is the successful outcome of Resolve: a total mapping from
// every package transitively reached to the version chosen for it.
type Solution struct {
	Versions map[PackageId]Version

	// Attempts counts completed backtracks.
	Attempts int
}

// ResolveOptions configures one resolution. A nil *ResolveOptions is
// equivalent to &ResolveOptions{}.
type ResolveOptions struct {
	// Delegate observes the search; NopDelegate is used if nil.
	Delegate Delegate

	// Nogoods turns on the optional nogood cache. Off by default:
	// it only pays for itself on large, highly-connected graphs, and
	// every cache lookup is wasted work on a graph small enough not to
	// need it.
	Nogoods bool
}

// rootPkg is the synthetic root atom every resolution seeds bindings
// from, so the bind/propagate path never needs a nil check to special
// case "no parent package" for a root constraint's origin.
const rootPkg PackageId = ""

// Resolve runs the backtracking search described by the resolver's
// contract: seed the root constraints, then repeatedly select the most
// constrained unbound package, enumerate its versions in descending
// order, bind, propagate, and recurse, undoing on failure.
func Resolve(ctx context.Context, rootConstraints []Constraint, provider PackageProvider, opts *ResolveOptions) (*Solution, error) {
	if opts == nil {
		opts = &ResolveOptions{}
	}
	delegate := opts.Delegate
	if delegate == nil {
		delegate = NopDelegate{}
	}

	// internalCtx gives the search its own cancellation source,
	// independent of whatever the caller passed in, and merged with it
	// via constext so either tripping is observed at every check point;
	// the deferred cancel releases it once this call returns.
	internalCtx, cancel := context.WithCancel(context.Background())
	defer cancel()
	merged, mergedCancel := constext.Cons(ctx, internalCtx)
	defer mergedCancel()

	s := &searchState{
		assign:   newAssignment(),
		provider: provider,
		delegate: delegate,
	}
	if opts.Nogoods {
		s.nogoods = newNogoodTrie()
		s.useNogoods = true
	}

	f := newFrame(rootPkg)
	for _, c := range rootConstraints {
		s.assign.introduce(f, c.Package)
		cur := s.assign.requirementFor(c.Package)
		next := Intersect(cur, c.Set)
		if next.IsEmpty() {
			witness := append([]conflictingConstraint{}, s.assign.edges[c.Package]...)
			witness = append(witness, conflictingConstraint{From: rootPkg, Constraint: c})
			return nil, &UnsatisfiableError{Package: c.Package, Witness: witness}
		}
		s.assign.narrow(f, c.Package, rootPkg, c, next)
	}

	return s.selectNext(merged)
}

type searchState struct {
	assign     *assignment
	provider   PackageProvider
	delegate   Delegate
	nogoods    nogoodTrie
	useNogoods bool
	attempts   int
}

// selectNext implements steps 2-7 of the search: pick the next unbound
// package, enumerate its candidate versions, and recurse on each viable
// one until the whole graph is bound or every alternative is exhausted.
func (s *searchState) selectNext(ctx context.Context) (*Solution, error) {
	if err := ctx.Err(); err != nil {
		return nil, &CancelledError{Cause: err}
	}

	pending := s.assign.unboundPackages()
	if len(pending) == 0 {
		return s.finish(), nil
	}

	id, container, versions, err := s.pickNext(ctx, pending)
	if err != nil {
		return nil, err
	}

	s.delegate.WillResolve(id)

	req := s.assign.requirementFor(id)

	if s.useNogoods {
		key := nogoodKey(s.assign, pending)
		if _, bad := s.nogoods.Get(key); bad {
			s.attempts++
			return nil, &UnsatisfiableError{
				Package: id,
				Witness: append([]conflictingConstraint{}, s.assign.edges[id]...),
			}
		}
	}

	// deepest keeps the descendant conflict from the latest candidate whose
	// failure named a package other than id, so the witness that finally
	// reaches the root names the package actually in conflict (e.g. "D" in
	// S3) rather than whichever ancestor happened to run out of versions
	// last.
	var rejected []rejectedVersion
	var deepest *UnsatisfiableError
	for _, v := range versions {
		if err := ctx.Err(); err != nil {
			return nil, &CancelledError{Cause: err}
		}
		if !req.Contains(v) {
			rejected = append(rejected, rejectedVersion{Version: v, Reason: "outside required range " + req.String()})
			continue
		}

		sol, err := s.tryBind(ctx, id, v, container, &rejected)
		if err == nil {
			return sol, nil
		}
		ue, local := err.(*UnsatisfiableError)
		if !local {
			return nil, err
		}
		if ue.Package != id {
			deepest = ue
		}
		// local conflict: fall through and try the next version
	}

	s.delegate.WillBacktrack(id)
	s.attempts++

	if s.useNogoods {
		key := nogoodKey(s.assign, pending)
		s.nogoods.Insert(key)
	}

	if deepest != nil {
		deepest.Rejected = append(deepest.Rejected, rejected...)
		return nil, deepest
	}

	return nil, &UnsatisfiableError{
		Package:  id,
		Witness:  append([]conflictingConstraint{}, s.assign.edges[id]...),
		Rejected: rejected,
	}
}

// tryBind binds id to v, propagates its dependencies, and recurses. It
// returns a *UnsatisfiableError to signal "this version of id didn't pan
// out, try the next one" — every other error type is fatal and must
// propagate without further enumeration.
func (s *searchState) tryBind(ctx context.Context, id PackageId, v Version, container Container, rejected *[]rejectedVersion) (*Solution, error) {
	f := newFrame(id)
	s.assign.bind(f, id, v)

	deps, err := container.Dependencies(ctx, v)
	if err != nil {
		s.assign.undo(f)
		return nil, providerErr(id, "getDependencies", err)
	}

	for _, c := range deps {
		if err := ctx.Err(); err != nil {
			s.assign.undo(f)
			return nil, &CancelledError{Cause: err}
		}

		s.assign.introduce(f, c.Package)

		if !s.assign.addDepEdge(f, id, c.Package) {
			path := s.assign.pathBetween(c.Package, id)
			path = append(path, c.Package)
			s.assign.undo(f)
			return nil, &CycleError{Path: path}
		}

		cur := s.assign.requirementFor(c.Package)
		next := Intersect(cur, c.Set)

		if next.IsEmpty() {
			s.delegate.Conflict(c, "empty intersection with existing requirement")
			witness := append([]conflictingConstraint{}, s.assign.edges[c.Package]...)
			witness = append(witness, conflictingConstraint{From: id, Constraint: c})
			s.assign.undo(f)
			*rejected = append(*rejected, rejectedVersion{Version: v, Reason: "dependency on " + string(c.Package) + " conflicts with an existing requirement"})
			return nil, &UnsatisfiableError{Package: c.Package, Witness: witness}
		}
		if bound, ok := s.assign.binding(c.Package); ok && !next.Contains(bound) {
			s.delegate.Conflict(c, "already bound to "+bound.String())
			witness := append([]conflictingConstraint{}, s.assign.edges[c.Package]...)
			witness = append(witness, conflictingConstraint{From: id, Constraint: c})
			s.assign.undo(f)
			*rejected = append(*rejected, rejectedVersion{Version: v, Reason: string(c.Package) + " is already bound to " + bound.String() + ", outside " + next.String()})
			return nil, &UnsatisfiableError{Package: c.Package, Witness: witness}
		}

		s.assign.narrow(f, c.Package, id, c, next)
	}

	sol, err := s.selectNext(ctx)
	if err != nil {
		s.assign.undo(f)
		if _, local := err.(*UnsatisfiableError); local {
			s.attempts++
			*rejected = append(*rejected, rejectedVersion{Version: v, Reason: "no satisfying combination of its dependencies"})
		}
		return nil, err
	}

	s.delegate.DidResolve(id, v)
	return sol, nil
}

// pickNext selects the next package to decide. The primary heuristic is
// most-constrained-variable: fewest candidate versions currently
// satisfying the package's running requirement. Ties break by
// first-introduction order, then by the package's total version count
// (fewer is picked first, since it has less to gain from deferral), then
// by name, so selection is fully deterministic.
func (s *searchState) pickNext(ctx context.Context, pending []PackageId) (PackageId, Container, []Version, error) {
	type candidate struct {
		id         PackageId
		container  Container
		versions   []Version
		matchCount int
		introOrder int
	}

	introIndex := make(map[PackageId]int, len(s.assign.order))
	for i, id := range s.assign.order {
		introIndex[id] = i
	}

	cands := make([]candidate, 0, len(pending))
	for _, id := range pending {
		if err := ctx.Err(); err != nil {
			return "", nil, nil, &CancelledError{Cause: err}
		}
		container, err := s.provider.GetContainer(ctx, id)
		if err != nil {
			if ue, ok := err.(*UnknownPackageError); ok {
				return "", nil, nil, ue
			}
			return "", nil, nil, providerErr(id, "getContainer", err)
		}

		if err := ctx.Err(); err != nil {
			return "", nil, nil, &CancelledError{Cause: err}
		}
		versions, err := container.Versions(ctx)
		if err != nil {
			return "", nil, nil, providerErr(id, "versions", err)
		}

		req := s.assign.requirementFor(id)
		match := 0
		for _, v := range versions {
			if req.Contains(v) {
				match++
			}
		}

		cands = append(cands, candidate{
			id:         id,
			container:  container,
			versions:   versions,
			matchCount: match,
			introOrder: introIndex[id],
		})
	}

	sort.SliceStable(cands, func(i, j int) bool {
		a, b := cands[i], cands[j]
		if a.matchCount != b.matchCount {
			return a.matchCount < b.matchCount
		}
		if a.introOrder != b.introOrder {
			return a.introOrder < b.introOrder
		}
		if len(a.versions) != len(b.versions) {
			return len(a.versions) < len(b.versions)
		}
		return a.id < b.id
	})

	best := cands[0]
	return best.id, best.container, best.versions, nil
}

// providerErr classifies an error returned from a PackageProvider call. A
// cause rooted in the context being cancelled or timing out while blocked
// inside that call is reported as *CancelledError regardless of which
// blocking call it tripped during; anything else is a genuine provider
// failure.
func providerErr(pkg PackageId, op string, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return &CancelledError{Cause: err}
	}
	return &ProviderFailure{Package: pkg, Op: op, Cause: err}
}

func (s *searchState) finish() *Solution {
	m := make(map[PackageId]Version, len(s.assign.bindings))
	for id, v := range s.assign.bindings {
		if id == rootPkg {
			continue
		}
		m[id] = v
	}
	return &Solution{Versions: m, Attempts: s.attempts}
}
