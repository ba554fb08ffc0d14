package resolver

import (
	"errors"
	"strings"
	"testing"
)

func TestMalformedVersionErrorMessageAndUnwrap(t *testing.T) {
	cause := errors.New("bad digit")
	e := &MalformedVersionError{Input: "1.x.0", Cause: cause}
	if !strings.Contains(e.Error(), "1.x.0") || !strings.Contains(e.Error(), "bad digit") {
		t.Errorf("unexpected message: %s", e.Error())
	}
	if errors.Unwrap(e) != cause {
		t.Error("expected Unwrap to return the wrapped cause")
	}
}

func TestUnknownPackageErrorMessage(t *testing.T) {
	e := &UnknownPackageError{Package: "ghost"}
	if !strings.Contains(e.Error(), "ghost") {
		t.Errorf("unexpected message: %s", e.Error())
	}
}

func TestProviderFailureWrapsCause(t *testing.T) {
	cause := errors.New("connection reset")
	e := &ProviderFailure{Package: "A", Op: "versions", Cause: cause}
	if !strings.Contains(e.Error(), "A") || !strings.Contains(e.Error(), "versions") {
		t.Errorf("unexpected message: %s", e.Error())
	}
	if errors.Unwrap(e) != cause {
		t.Error("expected Unwrap to return the wrapped cause")
	}
}

func TestCycleErrorRendersPath(t *testing.T) {
	e := &CycleError{Path: []PackageId{"A", "B", "C", "A"}}
	want := "A -> B -> C -> A"
	if !strings.Contains(e.Error(), want) {
		t.Errorf("expected %q in %q", want, e.Error())
	}
}

func TestUnsatisfiableErrorRendersWitnessAndRejected(t *testing.T) {
	e := &UnsatisfiableError{
		Package: "D",
		Witness: []conflictingConstraint{
			{From: "B", Constraint: NewConstraint("D", RangeSet(v("1.0.0"), v("2.0.0")))},
			{From: rootPkg, Constraint: NewConstraint("D", RangeSet(v("1.0.0"), v("3.0.0")))},
		},
		Rejected: []rejectedVersion{{Version: v("1.0.0"), Reason: "outside range"}},
	}
	msg := e.Error()
	for _, want := range []string{"D", "B requires", "root requires", "1.0.0", "outside range"} {
		if !strings.Contains(msg, want) {
			t.Errorf("expected %q in message:\n%s", want, msg)
		}
	}
}

func TestCancelledErrorMessage(t *testing.T) {
	plain := &CancelledError{}
	if plain.Error() != "resolution cancelled" {
		t.Errorf("unexpected plain message: %s", plain.Error())
	}
	cause := errors.New("deadline exceeded")
	withCause := &CancelledError{Cause: cause}
	if !strings.Contains(withCause.Error(), "deadline exceeded") {
		t.Errorf("unexpected message: %s", withCause.Error())
	}
	if errors.Unwrap(withCause) != cause {
		t.Error("expected Unwrap to return the wrapped cause")
	}
}
