package resolver

import "fmt"

// Constraint is a pure value pairing a package with the set of versions
// acceptable for it. Equality is by (PackageId, VersionSet) — two
// constraints naming the same package and the same canonical set are the
// same constraint regardless of how each VersionSet was built up.
type Constraint struct {
	Package PackageId
	Set     VersionSet
}

// NewConstraint pairs a package id with a version set.
func NewConstraint(id PackageId, set VersionSet) Constraint {
	return Constraint{Package: id, Set: set}
}

func (c Constraint) Equal(o Constraint) bool {
	return c.Package == o.Package && c.Set.Equal(o.Set)
}

func (c Constraint) String() string {
	return fmt.Sprintf("%s@%s", c.Package, c.Set)
}
