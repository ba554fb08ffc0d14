package resolver

import "testing"

func TestConstraintEqualByPackageAndSet(t *testing.T) {
	a := NewConstraint("foo", RangeSet(v("1.0.0"), v("2.0.0")))
	b := NewConstraint("foo", RangeSet(v("1.0.0"), v("2.0.0")))
	c := NewConstraint("foo", RangeSet(v("1.0.0"), v("3.0.0")))
	d := NewConstraint("bar", RangeSet(v("1.0.0"), v("2.0.0")))

	if !a.Equal(b) {
		t.Error("constraints with the same package and canonical set should be equal")
	}
	if a.Equal(c) {
		t.Error("constraints with different sets should not be equal")
	}
	if a.Equal(d) {
		t.Error("constraints with different packages should not be equal")
	}
}

func TestConstraintEqualAcrossEquivalentBuilds(t *testing.T) {
	// Two sets built differently but denoting the same canonical range
	// should still compare equal.
	a := NewConstraint("foo", Union(RangeSet(v("1.0.0"), v("2.0.0")), RangeSet(v("2.0.0"), v("3.0.0"))))
	b := NewConstraint("foo", RangeSet(v("1.0.0"), v("3.0.0")))

	if !a.Equal(b) {
		t.Error("constraints whose sets normalize the same way should be equal")
	}
}
