package resolver

import (
	"bytes"
	"fmt"
)

// MalformedVersionError is returned when ParseVersion is given text that
// does not conform to MAJOR.MINOR.PATCH[-PRERELEASE][+BUILD].
type MalformedVersionError struct {
	Input string
	Cause error
}

func (e *MalformedVersionError) Error() string {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "malformed version %q", e.Input)
	if e.Cause != nil {
		fmt.Fprintf(&buf, ": %s", e.Cause)
	}
	return buf.String()
}

func (e *MalformedVersionError) Unwrap() error { return e.Cause }

// MalformedVersionSetError is returned when a version set expression
// doesn't match any of the grammars ParseVersionSet understands.
type MalformedVersionSetError struct {
	Input string
	Cause error
}

func (e *MalformedVersionSetError) Error() string {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "malformed version set %q", e.Input)
	if e.Cause != nil {
		fmt.Fprintf(&buf, ": %s", e.Cause)
	}
	return buf.String()
}

func (e *MalformedVersionSetError) Unwrap() error { return e.Cause }

// UnknownPackageError is surfaced when a provider cannot find the named
// package at all (as opposed to finding it with no matching versions).
type UnknownPackageError struct {
	Package PackageId
	Cause   error
}

func (e *UnknownPackageError) Error() string {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "unknown package %q", e.Package)
	if e.Cause != nil {
		fmt.Fprintf(&buf, ": %s", e.Cause)
	}
	return buf.String()
}

func (e *UnknownPackageError) Unwrap() error { return e.Cause }

// ProviderFailure wraps a fatal error surfaced by a PackageProvider (I/O,
// parsing, anything not itself a local conflict). The resolver never
// retries one of these; it propagates.
type ProviderFailure struct {
	Package PackageId
	Op      string // "getContainer", "versions", "getDependencies"
	Cause   error
}

func (e *ProviderFailure) Error() string {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "provider failure for %q during %s: %s", e.Package, e.Op, e.Cause)
	return buf.String()
}

func (e *ProviderFailure) Unwrap() error { return e.Cause }

// CycleError reports a dependency cycle discovered among bound packages.
// Path lists the packages in cycle order, starting and ending at the same
// package.
type CycleError struct {
	Path []PackageId
}

func (e *CycleError) Error() string {
	var buf bytes.Buffer
	buf.WriteString("dependency cycle: ")
	for i, p := range e.Path {
		if i > 0 {
			buf.WriteString(" -> ")
		}
		buf.WriteString(string(p))
	}
	return buf.String()
}

// rejectedVersion records one candidate version tried for a package and
// why the search moved past it, so a witness can show the whole attempt
// history instead of only the last rejection.
type rejectedVersion struct {
	Version Version
	Reason  string
}

// conflictingConstraint names one edge active at the point a search frame
// gave up on a package.
type conflictingConstraint struct {
	From       PackageId // the package whose dependency introduced this edge; "" for a root constraint
	Constraint Constraint
}

// UnsatisfiableError is returned when the root frame exhausts every
// candidate without finding a solution. Witness holds the constraints
// active on the package where the deepest conflict occurred, and Rejected
// holds the candidate versions rejected at every search level the failure
// unwound through (the conflicting level and each ancestor), and why each
// failed.
type UnsatisfiableError struct {
	Package  PackageId
	Witness  []conflictingConstraint
	Rejected []rejectedVersion
}

func (e *UnsatisfiableError) Error() string {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "no version of %q satisfies all constraints:\n", e.Package)
	for _, c := range e.Witness {
		if c.From == "" {
			fmt.Fprintf(&buf, "  root requires %s\n", c.Constraint)
		} else {
			fmt.Fprintf(&buf, "  %s requires %s\n", c.From, c.Constraint)
		}
	}
	for _, r := range e.Rejected {
		fmt.Fprintf(&buf, "  tried %s: %s\n", r.Version, r.Reason)
	}
	return buf.String()
}

// CancelledError is returned when the caller's cancellation token trips
// before the resolver could finish.
type CancelledError struct {
	Cause error
}

func (e *CancelledError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("resolution cancelled: %s", e.Cause)
	}
	return "resolution cancelled"
}

func (e *CancelledError) Unwrap() error { return e.Cause }
