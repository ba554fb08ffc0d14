package resolver

import (
	"context"
	"sync"
)

// Container is the handle a PackageProvider hands back for one package. It
// answers the two questions the resolver ever asks about a package: which
// versions exist, and what does a given version depend on.
type Container interface {
	// Versions returns every known version of this package, in descending
	// order. Policy over what counts as "known" (e.g. excluding
	// pre-releases unless explicitly requested) belongs to the provider,
	// not the resolver. The returned slice must be the same length and
	// order on every call.
	Versions(ctx context.Context) ([]Version, error)

	// Dependencies returns the constraints this package declares at the
	// given version. It must be deterministic: the same (id, version)
	// always yields the same list, since the resolver may call it more
	// than once across backtracking.
	Dependencies(ctx context.Context, v Version) ([]Constraint, error)
}

// PackageProvider is the capability the resolver consumes to learn about
// the package universe. It never reaches into source control, a registry,
// or a filesystem itself — an implementation bridges to those.
type PackageProvider interface {
	// GetContainer resolves id to a Container. It returns
	// *UnknownPackageError if id names no package the provider knows
	// about.
	GetContainer(ctx context.Context, id PackageId) (Container, error)
}

// CachingProvider wraps a PackageProvider so that concurrent callers asking
// about the same package block on one underlying GetContainer/Versions/
// Dependencies call rather than each issuing their own: the provider's
// backing store is read-heavy and populated at most once per key.
type CachingProvider struct {
	underlying PackageProvider

	mu         sync.Mutex
	containers map[PackageId]*containerCall
}

type containerCall struct {
	once sync.Once
	c    *cachingContainer
	err  error
}

// NewCachingProvider wraps underlying with per-package single-flight
// caching of GetContainer, and per-version single-flight caching of
// Dependencies within each returned Container.
func NewCachingProvider(underlying PackageProvider) *CachingProvider {
	return &CachingProvider{
		underlying: underlying,
		containers: make(map[PackageId]*containerCall),
	}
}

func (p *CachingProvider) GetContainer(ctx context.Context, id PackageId) (Container, error) {
	p.mu.Lock()
	call, ok := p.containers[id]
	if !ok {
		call = &containerCall{}
		p.containers[id] = call
	}
	p.mu.Unlock()

	call.once.Do(func() {
		c, err := p.underlying.GetContainer(ctx, id)
		if err != nil {
			call.err = err
			return
		}
		call.c = &cachingContainer{underlying: c, deps: make(map[string]depsCall)}
	})

	if call.err != nil {
		return nil, call.err
	}
	return call.c, nil
}

type depsCall struct {
	once *sync.Once
	out  *[]Constraint
	err  *error
}

// cachingContainer caches Versions (once, since the result must be stable
// across calls) and Dependencies (per-version, single-flighted the same
// way the provider-level cache is).
type cachingContainer struct {
	underlying Container

	versOnce sync.Once
	versions []Version
	versErr  error

	mu   sync.Mutex
	deps map[string]depsCall
}

func (c *cachingContainer) Versions(ctx context.Context) ([]Version, error) {
	c.versOnce.Do(func() {
		c.versions, c.versErr = c.underlying.Versions(ctx)
	})
	return c.versions, c.versErr
}

func (c *cachingContainer) Dependencies(ctx context.Context, v Version) ([]Constraint, error) {
	key := v.String()

	c.mu.Lock()
	call, ok := c.deps[key]
	if !ok {
		call = depsCall{once: new(sync.Once), out: new([]Constraint), err: new(error)}
		c.deps[key] = call
	}
	c.mu.Unlock()

	call.once.Do(func() {
		*call.out, *call.err = c.underlying.Dependencies(ctx, v)
	})
	return *call.out, *call.err
}
