package resolver

import "testing"

func TestFrameUndoRestoresBindingsAndRequirements(t *testing.T) {
	a := newAssignment()
	f0 := newFrame("root")
	a.introduce(f0, "A")
	a.introduce(f0, "B")

	f1 := newFrame("A")
	a.bind(f1, "A", v("1.0.0"))
	a.narrow(f1, "B", "A", NewConstraint("B", RangeSet(v("1.0.0"), v("2.0.0"))), RangeSet(v("1.0.0"), v("2.0.0")))

	if got, ok := a.binding("A"); !ok || !got.Equal(v("1.0.0")) {
		t.Fatalf("expected A bound to 1.0.0, got %v (%v)", got, ok)
	}
	if !a.requirementFor("B").Equal(RangeSet(v("1.0.0"), v("2.0.0"))) {
		t.Fatalf("expected B's requirement narrowed, got %s", a.requirementFor("B"))
	}

	a.undo(f1)

	if _, ok := a.binding("A"); ok {
		t.Error("expected A to be unbound after undo")
	}
	if !a.requirementFor("B").IsAny() {
		t.Errorf("expected B's requirement restored to any after undo, got %s", a.requirementFor("B"))
	}
}

func TestFrameUndoRestoresPriorBindingNotJustClearsIt(t *testing.T) {
	a := newAssignment()
	f0 := newFrame("root")
	a.introduce(f0, "A")

	f1 := newFrame("A")
	a.bind(f1, "A", v("1.0.0"))

	f2 := newFrame("A")
	a.bind(f2, "A", v("2.0.0"))

	a.undo(f2)

	got, ok := a.binding("A")
	if !ok || !got.Equal(v("1.0.0")) {
		t.Fatalf("expected undo of the second frame to restore the first frame's binding 1.0.0, got %v (%v)", got, ok)
	}
}

func TestDepEdgeCycleDetection(t *testing.T) {
	a := newAssignment()
	f := newFrame("A")

	if !a.addDepEdge(f, "A", "B") {
		t.Fatal("A -> B should not be a cycle")
	}
	if !a.addDepEdge(f, "B", "C") {
		t.Fatal("B -> C should not be a cycle")
	}
	if a.addDepEdge(f, "C", "A") {
		t.Fatal("C -> A should be rejected as a cycle (A already reaches C)")
	}
}

func TestDepEdgeUndoRemovesEdges(t *testing.T) {
	a := newAssignment()
	f := newFrame("A")

	a.addDepEdge(f, "A", "B")
	if !a.canReach("A", "B") {
		t.Fatal("expected A to reach B")
	}

	a.undo(f)

	if a.canReach("A", "B") {
		t.Error("expected the dependency edge to be removed after undo")
	}
}

func TestPathBetweenFindsCyclePath(t *testing.T) {
	a := newAssignment()
	f := newFrame("x")
	a.addDepEdge(f, "A", "B")
	a.addDepEdge(f, "B", "C")

	path := a.pathBetween("A", "C")
	want := []PackageId{"A", "B", "C"}
	if len(path) != len(want) {
		t.Fatalf("expected path %v, got %v", want, path)
	}
	for i := range want {
		if path[i] != want[i] {
			t.Fatalf("expected path %v, got %v", want, path)
		}
	}
}

func TestUndoDropsPackagesIntroducedByTheFrame(t *testing.T) {
	a := newAssignment()
	f0 := newFrame("root")
	a.introduce(f0, "A")

	f1 := newFrame("A")
	a.bind(f1, "A", v("2.0.0"))
	a.introduce(f1, "X")
	a.narrow(f1, "X", "A", NewConstraint("X", RangeSet(v("5.0.0"), v("6.0.0"))), RangeSet(v("5.0.0"), v("6.0.0")))

	a.undo(f1)

	for _, id := range a.unboundPackages() {
		if id == "X" {
			t.Fatal("expected X to leave the search once the frame that introduced it was undone")
		}
	}
	if a.introduced["X"] {
		t.Error("expected X to no longer be marked introduced")
	}
	if !a.requirementFor("X").IsAny() {
		t.Errorf("expected X's requirement entry to be gone, got %s", a.requirementFor("X"))
	}
	if len(a.edges["X"]) != 0 {
		t.Errorf("expected X's edge log to be gone, got %d entries", len(a.edges["X"]))
	}

	// A was introduced by the outer frame and must survive.
	if !a.introduced["A"] {
		t.Error("expected A to remain introduced")
	}
}

func TestUnboundPackagesPreservesIntroductionOrder(t *testing.T) {
	a := newAssignment()
	f0 := newFrame("root")
	a.introduce(f0, "C")
	a.introduce(f0, "A")
	a.introduce(f0, "B")

	f := newFrame("A")
	a.bind(f, "A", v("1.0.0"))

	got := a.unboundPackages()
	want := []PackageId{"C", "B"}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
}
