package resolver

import (
	"context"
	"testing"
)

const diamondFixture = `
{
  "containers": [
    { "name": "A",
      "versions": {
        "1.0.0": [
          { "container": "B", "requirement": "1.0.0..<2.0.0" },
          { "container": "C", "requirement": "1.0.0..<2.0.0" }
        ]
      }
    },
    { "name": "B",
      "versions": {
        "1.0.0": [ { "container": "D", "requirement": "1.0.0..<2.0.0" } ]
      }
    },
    { "name": "C",
      "versions": {
        "1.0.0": [ { "container": "D", "requirement": "1.1.0..<2.0.0" } ]
      }
    },
    { "name": "D",
      "versions": {
        "1.0.0": [],
        "1.2.0": []
      }
    }
  ],
  "constraints": [
    { "container": "A", "requirement": "1.0.0..<2.0.0" }
  ],
  "result": { "A": "1.0.0", "B": "1.0.0", "C": "1.0.0", "D": "1.2.0" }
}
`

func TestFixtureLoadsAndResolvesDiamondAgreement(t *testing.T) {
	g, err := ParseMockGraph([]byte(diamondFixture))
	if err != nil {
		t.Fatal(err)
	}

	roots, err := g.RootConstraints()
	if err != nil {
		t.Fatal(err)
	}
	provider, err := g.Provider()
	if err != nil {
		t.Fatal(err)
	}
	want, err := g.ExpectedVersions()
	if err != nil {
		t.Fatal(err)
	}

	sol, err := Resolve(context.Background(), roots, provider, nil)
	if err != nil {
		t.Fatalf("expected a solution, got error: %s", err)
	}

	if len(sol.Versions) != len(want) {
		t.Fatalf("expected %d packages, got %d", len(want), len(sol.Versions))
	}
	for id, wantVer := range want {
		got, ok := sol.Versions[id]
		if !ok || !got.Equal(wantVer) {
			t.Errorf("expected %s@%s, got %v (present=%v)", id, wantVer, got, ok)
		}
	}
}

const unsatisfiableFixture = `
{
  "containers": [
    { "name": "A", "versions": { "1.0.0": [] } }
  ],
  "constraints": [
    { "container": "A", "requirement": "2.0.0..<3.0.0" }
  ],
  "result": {}
}
`

func TestFixtureUnsatisfiableHasEmptyResult(t *testing.T) {
	g, err := ParseMockGraph([]byte(unsatisfiableFixture))
	if err != nil {
		t.Fatal(err)
	}
	roots, err := g.RootConstraints()
	if err != nil {
		t.Fatal(err)
	}
	provider, err := g.Provider()
	if err != nil {
		t.Fatal(err)
	}
	want, err := g.ExpectedVersions()
	if err != nil {
		t.Fatal(err)
	}
	if len(want) != 0 {
		t.Fatalf("expected an empty result map, got %v", want)
	}

	if _, err := Resolve(context.Background(), roots, provider, nil); err == nil {
		t.Fatal("expected Unsatisfiable")
	}
}

const unionRequirementFixture = `
{
  "containers": [
    { "name": "A",
      "versions": {
        "1.0.0": [ { "container": "B", "requirement": ["1.0.0..<1.5.0", "2.0.0..<3.0.0"] } ]
      }
    },
    { "name": "B", "versions": { "2.5.0": [] } }
  ],
  "constraints": [ { "container": "A", "requirement": "any" } ],
  "result": { "A": "1.0.0", "B": "2.5.0" }
}
`

func TestFixtureParsesUnionRequirementLists(t *testing.T) {
	g, err := ParseMockGraph([]byte(unionRequirementFixture))
	if err != nil {
		t.Fatal(err)
	}
	roots, err := g.RootConstraints()
	if err != nil {
		t.Fatal(err)
	}
	provider, err := g.Provider()
	if err != nil {
		t.Fatal(err)
	}

	sol, err := Resolve(context.Background(), roots, provider, nil)
	if err != nil {
		t.Fatalf("expected a solution, got error: %s", err)
	}
	if sol.Versions["B"].String() != "2.5.0" {
		t.Errorf("expected B@2.5.0, got %s", sol.Versions["B"])
	}
}

func TestUnknownPackageFromFixtureProvider(t *testing.T) {
	g, err := ParseMockGraph([]byte(unsatisfiableFixture))
	if err != nil {
		t.Fatal(err)
	}
	provider, err := g.Provider()
	if err != nil {
		t.Fatal(err)
	}
	if _, err := provider.GetContainer(context.Background(), "ghost"); err == nil {
		t.Fatal("expected an error for an unknown package")
	} else if _, ok := err.(*UnknownPackageError); !ok {
		t.Fatalf("expected *UnknownPackageError, got %T", err)
	}
}
