// Package locator turns rider numbers into positions, falling back to a simulated
// position around a reference point whenever the provider cannot answer.
package locator

import (
	"context"
	"math/rand/v2"
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/ports"
	"dispatch/internal/pkg/logger"
)

const (
	DefaultFallbackLatitude  = 6.5244
	DefaultFallbackLongitude = 3.3792
	DefaultJitterDegrees     = 0.05
)

// Metrics receives one observation per resolved rider.
type Metrics interface {
	ObserveLocation(source string, elapsed time.Duration)
}

type Options struct {
	// Provider may be nil, in which case every rider gets a simulated position.
	Provider ports.LocationProvider
	Center   kernel.Location
	Jitter   float64
	// Rand must return values in [0, 1). Defaults to math/rand/v2.Float64.
	Rand    func() float64
	Metrics Metrics
	Logger  *logger.Logger
}

var _ ports.LocationResolver = (*Resolver)(nil)

type Resolver struct {
	provider ports.LocationProvider
	center   kernel.Location
	jitter   float64
	rnd      func() float64
	metrics  Metrics
	log      *logger.Logger
	now      func() time.Time
}

// NewResolver validates the fallback center; the remaining options have defaults.
func NewResolver(opts Options) (*Resolver, error) {
	center := opts.Center
	if center.Validate() != nil {
		var err error
		center, err = kernel.NewLocation(DefaultFallbackLatitude, DefaultFallbackLongitude)
		if err != nil {
			return nil, err
		}
	}
	if _, err := kernel.NewJitteredLocation(center, opts.Jitter, func() float64 { return 0.5 }); err != nil {
		return nil, err
	}

	r := &Resolver{
		provider: opts.Provider,
		center:   center,
		jitter:   opts.Jitter,
		rnd:      opts.Rand,
		metrics:  opts.Metrics,
		log:      opts.Logger,
		now:      time.Now,
	}
	if r.rnd == nil {
		r.rnd = rand.Float64
	}
	if r.log == nil {
		r.log = logger.Nop()
	}

	return r, nil
}

// Resolve never fails. A provider error, a cancelled context or a missing provider
// all yield a location tagged kernel.Simulated.
func (r *Resolver) Resolve(ctx context.Context, riderNumber string) kernel.Location {
	started := r.now()

	loc, err := r.locate(ctx, riderNumber)
	if err != nil {
		r.log.Warn(r.log.WithField(ctx, "rider_number", riderNumber),
			"rider location unavailable, using simulated position", err)
		loc = r.simulate()
	}

	if r.metrics != nil {
		r.metrics.ObserveLocation(string(loc.Provenance()), r.now().Sub(started))
	}
	return loc
}

func (r *Resolver) locate(ctx context.Context, riderNumber string) (kernel.Location, error) {
	if r.provider == nil {
		return kernel.Location{}, errProviderDisabled
	}
	if err := ctx.Err(); err != nil {
		return kernel.Location{}, err
	}
	return r.provider.Locate(ctx, riderNumber)
}

func (r *Resolver) simulate() kernel.Location {
	loc, err := kernel.NewJitteredLocation(r.center, r.jitter, r.rnd)
	if err != nil {
		// center and jitter were checked in NewResolver
		loc, _ = kernel.NewSimulatedLocation(r.center.Latitude(), r.center.Longitude())
	}
	return loc
}
