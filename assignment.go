package resolver

// assignment is the resolver's mutable search state: the current binding
// for each decided package, the current requirement (running intersection
// of every VersionSet seen so far) for every package reached in the
// search, the edges that produced each requirement (for conflict
// witnesses), and the dependency graph among bound packages (for cycle
// detection). A single assignment is threaded through the whole search
// and mutated in place by frames that know how to undo themselves, rather
// than copied at each branch point.
type assignment struct {
	bindings     map[PackageId]Version
	requirements map[PackageId]VersionSet
	order        []PackageId // first-introduction order, used as a selection tie-break
	introduced   map[PackageId]bool
	edges        map[PackageId][]conflictingConstraint
	depGraph     map[PackageId]map[PackageId]bool
}

func newAssignment() *assignment {
	return &assignment{
		bindings:     make(map[PackageId]Version),
		requirements: make(map[PackageId]VersionSet),
		introduced:   make(map[PackageId]bool),
		edges:        make(map[PackageId][]conflictingConstraint),
		depGraph:     make(map[PackageId]map[PackageId]bool),
	}
}

// introduce records id's first-introduction position under f the first
// time it is seen; later calls are no-ops. The frame remembers the ids it
// introduced so undo can remove them again: a package first mentioned by a
// branch that is later backtracked must not linger in the search and end
// up resolved with nothing depending on it.
func (a *assignment) introduce(f *frame, id PackageId) {
	if a.introduced[id] {
		return
	}
	a.introduced[id] = true
	a.order = append(a.order, id)
	f.introducedPkgs = append(f.introducedPkgs, id)
}

// requirementFor returns the current requirement for id, defaulting to
// Any() for a package that has never had a constraint applied to it.
func (a *assignment) requirementFor(id PackageId) VersionSet {
	if s, ok := a.requirements[id]; ok {
		return s
	}
	return Any()
}

func (a *assignment) binding(id PackageId) (Version, bool) {
	v, ok := a.bindings[id]
	return v, ok
}

// unboundPackages returns every introduced package with no current
// binding, in first-introduction order.
func (a *assignment) unboundPackages() []PackageId {
	var out []PackageId
	for _, id := range a.order {
		if _, bound := a.bindings[id]; !bound {
			out = append(out, id)
		}
	}
	return out
}

// frame captures everything needed to undo one decision: the binding it
// made (if any), the prior value of every requirement it touched, the
// edges it appended, the dependency-graph edges it added, and the packages
// it newly introduced — each recorded on first touch only, so repeated
// narrowing within the same frame doesn't lose the pre-frame value.
type frame struct {
	pkg PackageId

	hadBinding   bool
	priorBinding Version

	touched   map[PackageId]bool
	priorReqs map[PackageId]VersionSet

	edgeTouched  map[PackageId]bool
	priorEdgeLen map[PackageId]int

	addedDepEdges  [][2]PackageId
	introducedPkgs []PackageId
}

func newFrame(pkg PackageId) *frame {
	return &frame{
		pkg:          pkg,
		touched:      make(map[PackageId]bool),
		priorReqs:    make(map[PackageId]VersionSet),
		edgeTouched:  make(map[PackageId]bool),
		priorEdgeLen: make(map[PackageId]int),
	}
}

// bind sets id's binding to v under f, recording whatever was bound
// before so undo can restore it.
func (a *assignment) bind(f *frame, id PackageId, v Version) {
	if prior, ok := a.bindings[id]; ok {
		f.hadBinding = true
		f.priorBinding = prior
	}
	a.bindings[id] = v
}

// narrow sets id's requirement to next under f and records the edge
// (from, c) that produced it, so a later conflict witness can cite every
// constraint active on id. The pre-frame requirement and edge-log length
// are stashed on first touch so undo can restore both.
func (a *assignment) narrow(f *frame, id PackageId, from PackageId, c Constraint, next VersionSet) {
	if !f.touched[id] {
		f.touched[id] = true
		f.priorReqs[id] = a.requirementFor(id)
	}
	a.requirements[id] = next

	if !f.edgeTouched[id] {
		f.edgeTouched[id] = true
		f.priorEdgeLen[id] = len(a.edges[id])
	}
	a.edges[id] = append(a.edges[id], conflictingConstraint{From: from, Constraint: c})
}

// addDepEdge records a structural dependency edge from -> to. It returns
// false, without recording anything, if the edge would close a cycle
// (to can already reach from); the caller treats that as fatal.
func (a *assignment) addDepEdge(f *frame, from, to PackageId) bool {
	if a.canReach(to, from) {
		return false
	}
	if a.depGraph[from] == nil {
		a.depGraph[from] = make(map[PackageId]bool)
	}
	if !a.depGraph[from][to] {
		a.depGraph[from][to] = true
		f.addedDepEdges = append(f.addedDepEdges, [2]PackageId{from, to})
	}
	return true
}

// canReach reports whether to is reachable from "from" following recorded
// dependency edges.
func (a *assignment) canReach(from, to PackageId) bool {
	if from == to {
		return true
	}
	visited := make(map[PackageId]bool)
	var dfs func(PackageId) bool
	dfs = func(n PackageId) bool {
		if n == to {
			return true
		}
		if visited[n] {
			return false
		}
		visited[n] = true
		for m := range a.depGraph[n] {
			if dfs(m) {
				return true
			}
		}
		return false
	}
	return dfs(from)
}

// pathBetween returns a path of packages from -> ... -> to following
// recorded dependency edges, for rendering a CycleError. Empty if no path
// exists.
func (a *assignment) pathBetween(from, to PackageId) []PackageId {
	if from == to {
		return []PackageId{from}
	}
	visited := make(map[PackageId]bool)
	var path []PackageId
	var dfs func(PackageId) bool
	dfs = func(n PackageId) bool {
		path = append(path, n)
		if n == to {
			return true
		}
		if visited[n] {
			path = path[:len(path)-1]
			return false
		}
		visited[n] = true
		for m := range a.depGraph[n] {
			if dfs(m) {
				return true
			}
		}
		path = path[:len(path)-1]
		return false
	}
	if !dfs(from) {
		return nil
	}
	return path
}

// undo reverts every change frame f made: restores every touched
// requirement and edge log to its pre-frame state, removes any
// dependency-graph edges it added, drops every package the frame
// introduced back out of the search, and restores or clears f's package
// binding.
func (a *assignment) undo(f *frame) {
	for id, prior := range f.priorReqs {
		a.requirements[id] = prior
	}
	for id, n := range f.priorEdgeLen {
		a.edges[id] = a.edges[id][:n]
	}
	for _, e := range f.addedDepEdges {
		delete(a.depGraph[e[0]], e[1])
	}

	if len(f.introducedPkgs) > 0 {
		dropped := make(map[PackageId]bool, len(f.introducedPkgs))
		for _, id := range f.introducedPkgs {
			dropped[id] = true
			delete(a.introduced, id)
			delete(a.requirements, id)
			delete(a.edges, id)
			delete(a.depGraph, id)
		}
		order := a.order[:0]
		for _, id := range a.order {
			if !dropped[id] {
				order = append(order, id)
			}
		}
		a.order = order
	}

	if f.hadBinding {
		a.bindings[f.pkg] = f.priorBinding
	} else {
		delete(a.bindings, f.pkg)
	}
}
