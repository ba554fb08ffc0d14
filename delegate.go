package resolver

import (
	"log"
	"strings"
)

// Delegate is an optional, side-effect-only observer of the search. It
// must never mutate resolver state; it exists purely to let a caller
// watch or log the search as it happens.
type Delegate interface {
	WillResolve(id PackageId)
	DidResolve(id PackageId, v Version)
	WillBacktrack(id PackageId)
	Conflict(c Constraint, reason string)
}

// NopDelegate observes nothing. It is the default when a caller passes no
// Delegate to Resolve.
type NopDelegate struct{}

func (NopDelegate) WillResolve(PackageId)         {}
func (NopDelegate) DidResolve(PackageId, Version) {}
func (NopDelegate) WillBacktrack(PackageId)       {}
func (NopDelegate) Conflict(Constraint, string)   {}

const (
	successChar   = "✓"
	successCharSp = successChar + " "
	failChar      = "✗"
	failCharSp    = failChar + " "
	backChar      = "←"
)

// TraceDelegate renders the search as glyph-and-indentation trace lines
// through a caller-supplied *log.Logger, with indentation keyed to the
// current search depth.
type TraceDelegate struct {
	Logger *log.Logger
	depth  int
}

// NewTraceDelegate wraps l. If l is nil, log.Default() is used.
func NewTraceDelegate(l *log.Logger) *TraceDelegate {
	if l == nil {
		l = log.Default()
	}
	return &TraceDelegate{Logger: l}
}

func (d *TraceDelegate) prefix() string {
	return strings.Repeat("| ", d.depth)
}

func (d *TraceDelegate) WillResolve(id PackageId) {
	d.Logger.Printf("%s? select %s", d.prefix(), id)
	d.depth++
}

func (d *TraceDelegate) DidResolve(id PackageId, v Version) {
	if d.depth > 0 {
		d.depth--
	}
	d.Logger.Printf("%s%sselect %s@%s", d.prefix(), successCharSp, id, v)
}

func (d *TraceDelegate) WillBacktrack(id PackageId) {
	d.Logger.Printf("%s%sbacktrack: no more versions of %s to try", d.prefix(), backChar+" ", id)
	if d.depth > 0 {
		d.depth--
	}
}

func (d *TraceDelegate) Conflict(c Constraint, reason string) {
	d.Logger.Printf("%s%sconflict on %s: %s", d.prefix(), failCharSp, c, reason)
}

var _ Delegate = (*TraceDelegate)(nil)
var _ Delegate = NopDelegate{}
