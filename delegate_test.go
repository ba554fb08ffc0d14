package resolver

import (
	"bytes"
	"log"
	"strings"
	"testing"
)

func TestTraceDelegateRendersGlyphsAndIndentation(t *testing.T) {
	var buf bytes.Buffer
	logger := log.New(&buf, "", 0)
	d := NewTraceDelegate(logger)

	d.WillResolve("A")
	d.DidResolve("A", v("1.0.0"))
	d.WillResolve("B")
	d.WillBacktrack("B")
	d.Conflict(NewConstraint("C", Any()), "no candidates left")

	out := buf.String()
	for _, want := range []string{"? select A", successChar, "A@1.0.0", "? select B", backChar, failChar} {
		if !strings.Contains(out, want) {
			t.Errorf("expected trace output to contain %q, got:\n%s", want, out)
		}
	}
}

func TestTraceDelegateNilLoggerDefaultsToStdlib(t *testing.T) {
	d := NewTraceDelegate(nil)
	if d.Logger == nil {
		t.Fatal("expected a non-nil default logger")
	}
}

func TestNopDelegateIsSilentAndSatisfiesInterface(t *testing.T) {
	var d Delegate = NopDelegate{}
	d.WillResolve("A")
	d.DidResolve("A", v("1.0.0"))
	d.WillBacktrack("A")
	d.Conflict(NewConstraint("A", Any()), "unused")
}
