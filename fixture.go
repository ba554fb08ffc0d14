package resolver

import (
	"context"
	"encoding/json"
	"sort"

	"github.com/pkg/errors"
)

// MockGraph is the parsed form of the JSON mock-graph fixture format. The
// resolver core never parses this itself; it exists so any test harness
// built against this module has one canonical loader instead of each test
// writing its own.
type MockGraph struct {
	Containers  []fixtureContainer `json:"containers"`
	Constraints []fixtureEdge      `json:"constraints"`
	Result      map[string]string  `json:"result"`
}

type fixtureContainer struct {
	Name     string                   `json:"name"`
	Versions map[string][]fixtureEdge `json:"versions"`
}

type fixtureEdge struct {
	Container   string          `json:"container"`
	Requirement json.RawMessage `json:"requirement"`
}

// ParseMockGraph unmarshals the fixture JSON.
func ParseMockGraph(data []byte) (*MockGraph, error) {
	var g MockGraph
	if err := json.Unmarshal(data, &g); err != nil {
		return nil, errors.Wrap(err, "parsing mock graph fixture")
	}
	return &g, nil
}

// parseRequirement accepts either a single version-set string or a JSON
// list of them, unioned together.
func parseRequirement(raw json.RawMessage) (VersionSet, error) {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return ParseVersionSet(s)
	}

	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		out := Empty()
		for _, item := range list {
			vs, err := ParseVersionSet(item)
			if err != nil {
				return VersionSet{}, err
			}
			out = Union(out, vs)
		}
		return out, nil
	}

	return VersionSet{}, errors.Errorf("requirement is neither a string nor a list of strings: %s", raw)
}

// RootConstraints returns the fixture's top-level constraints, ready to
// pass to Resolve.
func (g *MockGraph) RootConstraints() ([]Constraint, error) {
	out := make([]Constraint, 0, len(g.Constraints))
	for _, e := range g.Constraints {
		set, err := parseRequirement(e.Requirement)
		if err != nil {
			return nil, err
		}
		out = append(out, NewConstraint(PackageId(e.Container), set))
	}
	return out, nil
}

// ExpectedVersions parses the fixture's expected "result" map, for
// comparing against a Solution in a test. An empty map means the fixture
// expects Unsatisfiable.
func (g *MockGraph) ExpectedVersions() (map[PackageId]Version, error) {
	out := make(map[PackageId]Version, len(g.Result))
	for id, vs := range g.Result {
		v, err := ParseVersion(vs)
		if err != nil {
			return nil, err
		}
		out[PackageId(id)] = v
	}
	return out, nil
}

// Provider builds a PackageProvider serving this fixture's containers
// entirely from memory.
func (g *MockGraph) Provider() (PackageProvider, error) {
	p := &fixtureProvider{containers: make(map[PackageId]*fixtureContainerHandle, len(g.Containers))}

	for _, c := range g.Containers {
		h := &fixtureContainerHandle{
			id:   PackageId(c.Name),
			deps: make(map[string][]Constraint, len(c.Versions)),
		}

		for vstr, edges := range c.Versions {
			v, err := ParseVersion(vstr)
			if err != nil {
				return nil, err
			}
			h.versions = append(h.versions, v)

			constraints := make([]Constraint, 0, len(edges))
			for _, e := range edges {
				set, err := parseRequirement(e.Requirement)
				if err != nil {
					return nil, err
				}
				constraints = append(constraints, NewConstraint(PackageId(e.Container), set))
			}
			h.deps[v.String()] = constraints
		}

		sort.Sort(versionsDescending(h.versions))
		p.containers[h.id] = h
	}

	return p, nil
}

// fixtureProvider is the in-memory PackageProvider backing a MockGraph.
type fixtureProvider struct {
	containers map[PackageId]*fixtureContainerHandle
}

func (p *fixtureProvider) GetContainer(ctx context.Context, id PackageId) (Container, error) {
	h, ok := p.containers[id]
	if !ok {
		return nil, &UnknownPackageError{Package: id}
	}
	return h, nil
}

type fixtureContainerHandle struct {
	id       PackageId
	versions []Version
	deps     map[string][]Constraint
}

func (h *fixtureContainerHandle) Versions(ctx context.Context) ([]Version, error) {
	return h.versions, nil
}

func (h *fixtureContainerHandle) Dependencies(ctx context.Context, v Version) ([]Constraint, error) {
	return h.deps[v.String()], nil
}
