package ports

import (
	"context"
	"time"

	"dispatch/internal/core/domain/model/kernel"
)

// LocationProvider is the external geolocation service. It may fail.
type LocationProvider interface {
	Locate(ctx context.Context, riderNumber string) (kernel.Location, error)
}

// LocationResolver turns a rider number into a location and never fails: when the
// provider cannot answer it returns a location whose provenance is kernel.Simulated.
// It is safe to call concurrently for different riders.
type LocationResolver interface {
	Resolve(ctx context.Context, riderNumber string) kernel.Location
}

// RiderLocation is one entry of a location snapshot.
type RiderLocation struct {
	RiderNumber string
	Location    kernel.Location
	LastUpdated time.Time
}

// LocationSnapshotStore keeps the most recently resolved location of each rider of a company.
type LocationSnapshotStore interface {
	Save(ctx context.Context, companyID string, locations []RiderLocation) error
	Load(ctx context.Context, companyID string) ([]RiderLocation, error)
}
