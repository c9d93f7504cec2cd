package commands

import (
	"context"
	"errors"
	"fmt"
	"time"

	"dispatch/internal/core/ports"
	"dispatch/internal/pkg/errs"
)

// RefreshRiderLocationsCommandHandler resolves riders concurrently and saves the snapshot.
// Locations are resolved with the same never-failing resolver used by dispatch, so a
// provider outage yields simulated entries rather than an error.
type RefreshRiderLocationsCommandHandler struct {
	uowFactory UoWFactory
	resolver   ports.LocationResolver
	snapshots  ports.LocationSnapshotStore
	limit      int
	now        func() time.Time
}

func NewRefreshRiderLocationsCommandHandler(
	uowFactory UoWFactory,
	resolver ports.LocationResolver,
	snapshots ports.LocationSnapshotStore,
	maxConcurrentLookups int,
) RefreshRiderLocationsCommandHandler {
	return RefreshRiderLocationsCommandHandler{
		uowFactory: uowFactory,
		resolver:   resolver,
		snapshots:  snapshots,
		limit:      maxConcurrentLookups,
		now:        time.Now,
	}
}

// Handle returns the stored snapshot in request order.
func (h RefreshRiderLocationsCommandHandler) Handle(
	ctx context.Context,
	command RefreshRiderLocationsCommand,
) ([]ports.RiderLocation, error) {
	if err := command.Validate(); err != nil {
		return nil, err
	}

	_, err := h.uowFactory.Create().CompanyRepository().Get(ctx, command.CompanyID())
	if errors.Is(err, errs.ErrObjectNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrCompanyNotFound, command.CompanyID())
	}
	if err != nil {
		return nil, err
	}

	candidates, err := resolveCandidates(ctx, h.resolver, command.RiderNumbers(), h.limit)
	if err != nil {
		return nil, err
	}

	updated := h.now().UTC()
	snapshot := make([]ports.RiderLocation, 0, len(candidates))
	for _, c := range candidates {
		snapshot = append(snapshot, ports.RiderLocation{
			RiderNumber: c.Number(),
			Location:    c.Location(),
			LastUpdated: updated,
		})
	}

	if err = h.snapshots.Save(ctx, command.CompanyID(), snapshot); err != nil {
		return nil, err
	}

	return snapshot, nil
}
