package queries_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"dispatch/internal/core/application/usecases/queries"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/ports"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockSnapshotStore struct{ mock.Mock }

func (m *MockSnapshotStore) Save(ctx context.Context, companyID string, locations []ports.RiderLocation) error {
	args := m.Called(ctx, companyID, locations)
	return args.Error(0)
}

func (m *MockSnapshotStore) Load(ctx context.Context, companyID string) ([]ports.RiderLocation, error) {
	args := m.Called(ctx, companyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]ports.RiderLocation), args.Error(1)
}

func TestGetRiderLocationsQueryHandler_Handle(t *testing.T) {
	measured, err := kernel.NewLocation(6.6, 3.3)
	require.NoError(t, err)
	simulated, err := kernel.NewSimulatedLocation(6.5, 3.4)
	require.NoError(t, err)
	updated := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)

	store := new(MockSnapshotStore)
	store.On("Load", mock.Anything, "C1").Return([]ports.RiderLocation{
		{RiderNumber: "Z", Location: simulated, LastUpdated: updated},
		{RiderNumber: "A", Location: measured, LastUpdated: updated},
	}, nil).Once()

	query, err := queries.NewGetRiderLocationsQuery("C1")
	require.NoError(t, err)

	got, err := queries.NewGetRiderLocationsQueryHandler(store).Handle(t.Context(), query)

	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "A", got[0].RiderNumber)
	assert.Equal(t, "measured", got[0].Source)
	assert.InDelta(t, 6.6, got[0].Location.Latitude, 1e-9)
	assert.Equal(t, "Z", got[1].RiderNumber)
	assert.Equal(t, "simulated", got[1].Source)
	assert.Equal(t, updated, got[1].LastUpdated)
	store.AssertExpectations(t)
}

func TestGetRiderLocationsQueryHandler_Empty(t *testing.T) {
	store := new(MockSnapshotStore)
	store.On("Load", mock.Anything, "C1").Return(nil, nil).Once()
	query, err := queries.NewGetRiderLocationsQuery("C1")
	require.NoError(t, err)

	got, err := queries.NewGetRiderLocationsQueryHandler(store).Handle(t.Context(), query)

	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestGetRiderLocationsQueryHandler_StoreError(t *testing.T) {
	storeErr := errors.New("redis down")
	store := new(MockSnapshotStore)
	store.On("Load", mock.Anything, "C1").Return(nil, storeErr).Once()
	query, err := queries.NewGetRiderLocationsQuery("C1")
	require.NoError(t, err)

	_, err = queries.NewGetRiderLocationsQueryHandler(store).Handle(t.Context(), query)

	require.ErrorIs(t, err, storeErr)
}
