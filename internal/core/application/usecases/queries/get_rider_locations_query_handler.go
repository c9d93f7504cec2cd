package queries

import (
	"context"
	"sort"

	"dispatch/internal/core/ports"
)

// GetRiderLocationsQueryHandler reads snapshots written by the location refresh command.
type GetRiderLocationsQueryHandler struct {
	snapshots ports.LocationSnapshotStore
}

func NewGetRiderLocationsQueryHandler(snapshots ports.LocationSnapshotStore) GetRiderLocationsQueryHandler {
	return GetRiderLocationsQueryHandler{snapshots: snapshots}
}

// Handle returns the snapshot sorted by rider number; an unknown or expired snapshot is empty.
func (h GetRiderLocationsQueryHandler) Handle(
	ctx context.Context,
	query GetRiderLocationsQuery,
) ([]GetRiderLocationsQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	snapshot, err := h.snapshots.Load(ctx, query.CompanyID())
	if err != nil {
		return nil, err
	}

	out := make([]GetRiderLocationsQueryResponse, 0, len(snapshot))
	for _, entry := range snapshot {
		out = append(out, GetRiderLocationsQueryResponse{
			RiderNumber: entry.RiderNumber,
			Location: Point{
				Latitude:  entry.Location.Latitude(),
				Longitude: entry.Location.Longitude(),
			},
			Source:      string(entry.Location.Provenance()),
			LastUpdated: entry.LastUpdated,
		})
	}

	sort.Slice(out, func(i, j int) bool { return out[i].RiderNumber < out[j].RiderNumber })

	return out, nil
}
