package main

import (
	"context"
	"time"

	"github.com/orbitpm/resolver"
)

// latencyProvider adds a fixed artificial delay before every underlying
// call, standing in for the network/disk latency a real PackageProvider
// would see. It gives the bench tool something realistic to time and
// exercises the cancellation check the core performs before each provider
// call: a context that expires mid-delay must still surface promptly as a
// *resolver.CancelledError.
type latencyProvider struct {
	underlying resolver.PackageProvider
	delay      time.Duration
}

func withLatency(p resolver.PackageProvider, delay time.Duration) resolver.PackageProvider {
	if delay <= 0 {
		return p
	}
	return &latencyProvider{underlying: p, delay: delay}
}

func (p *latencyProvider) GetContainer(ctx context.Context, id resolver.PackageId) (resolver.Container, error) {
	if err := sleep(ctx, p.delay); err != nil {
		return nil, err
	}
	c, err := p.underlying.GetContainer(ctx, id)
	if err != nil {
		return nil, err
	}
	return &latencyContainer{underlying: c, delay: p.delay}, nil
}

type latencyContainer struct {
	underlying resolver.Container
	delay      time.Duration
}

func (c *latencyContainer) Versions(ctx context.Context) ([]resolver.Version, error) {
	if err := sleep(ctx, c.delay); err != nil {
		return nil, err
	}
	return c.underlying.Versions(ctx)
}

func (c *latencyContainer) Dependencies(ctx context.Context, v resolver.Version) ([]resolver.Constraint, error) {
	if err := sleep(ctx, c.delay); err != nil {
		return nil, err
	}
	return c.underlying.Dependencies(ctx, v)
}

// sleep blocks for d or until ctx is done, whichever comes first.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
