package services_test

import (
	"fmt"
	"math"
	"testing"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/rider"
	"dispatch/internal/core/domain/services"
	"dispatch/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const kmPerDegree = kernel.EarthRadiusKm * math.Pi / 180

func pickupPoint(t *testing.T) kernel.Location {
	t.Helper()
	loc, err := kernel.NewLocation(6.5244, 3.3792)
	require.NoError(t, err)
	return loc
}

// candidateNorthOf places a rider distanceKm due north of pickup.
func candidateNorthOf(t *testing.T, pickup kernel.Location, number string, distanceKm float64) rider.Candidate {
	t.Helper()
	loc, err := kernel.NewSimulatedLocation(pickup.Latitude()+distanceKm/kmPerDegree, pickup.Longitude())
	require.NoError(t, err)
	c, err := rider.NewCandidate(number, loc)
	require.NoError(t, err)
	return c
}

func TestMatchSelector_Select(t *testing.T) {
	selector := services.NewMatchSelector()
	pickup := pickupPoint(t)

	t.Run("nearest within radius wins", func(t *testing.T) {
		candidates := []rider.Candidate{
			candidateNorthOf(t, pickup, "r12", 12),
			candidateNorthOf(t, pickup, "r25", 25),
			candidateNorthOf(t, pickup, "r5", 5),
			candidateNorthOf(t, pickup, "r19", 19),
		}

		match, err := selector.Select(pickup, candidates, 20)

		require.NoError(t, err)
		assert.Equal(t, "r5", match.Candidate.Number())
		assert.InDelta(t, 5.0, match.DistanceKm, 1e-6)
	})

	t.Run("all beyond radius", func(t *testing.T) {
		candidates := []rider.Candidate{
			candidateNorthOf(t, pickup, "r25", 25),
			candidateNorthOf(t, pickup, "r30", 30),
		}

		_, err := selector.Select(pickup, candidates, 20)

		require.ErrorIs(t, err, services.ErrNoRidersInRange)
	})

	t.Run("single candidate outside radius is not returned", func(t *testing.T) {
		_, err := selector.Select(pickup, []rider.Candidate{candidateNorthOf(t, pickup, "solo", 21)}, 20)

		require.ErrorIs(t, err, services.ErrNoRidersInRange)
	})

	t.Run("no candidates", func(t *testing.T) {
		_, err := selector.Select(pickup, nil, 20)

		require.ErrorIs(t, err, services.ErrNoCandidates)
	})

	t.Run("radius just inside is accepted", func(t *testing.T) {
		match, err := selector.Select(pickup, []rider.Candidate{candidateNorthOf(t, pickup, "edge", 19.999)}, 20)

		require.NoError(t, err)
		assert.Equal(t, "edge", match.Candidate.Number())
	})

	t.Run("invalid radius", func(t *testing.T) {
		_, err := selector.Select(pickup, []rider.Candidate{candidateNorthOf(t, pickup, "a", 1)}, 0)

		require.ErrorIs(t, err, errs.ErrValueIsOutOfRange)
	})

	t.Run("unconstructed pickup", func(t *testing.T) {
		_, err := selector.Select(kernel.Location{}, []rider.Candidate{candidateNorthOf(t, pickup, "a", 1)}, 20)

		require.ErrorIs(t, err, kernel.ErrLocationIsNotConstructed)
	})

	t.Run("unconstructed candidate", func(t *testing.T) {
		_, err := selector.Select(pickup, []rider.Candidate{{}}, 20)

		require.ErrorIs(t, err, rider.ErrCandidateIsNotConstructed)
	})
}

func TestMatchSelector_TieBreakKeepsRosterOrder(t *testing.T) {
	selector := services.NewMatchSelector()
	pickup := pickupPoint(t)

	shared, err := kernel.NewLocation(pickup.Latitude()+4/kmPerDegree, pickup.Longitude())
	require.NoError(t, err)
	first, err := rider.NewCandidate("first", shared)
	require.NoError(t, err)
	second, err := rider.NewCandidate("second", shared)
	require.NoError(t, err)
	farther := candidateNorthOf(t, pickup, "farther", 9)

	for i := range 50 {
		match, err := selector.Select(pickup, []rider.Candidate{farther, first, second}, 20)
		require.NoError(t, err)
		assert.Equal(t, "first", match.Candidate.Number(), "run %d", i)
	}

	match, err := selector.Select(pickup, []rider.Candidate{second, first}, 20)
	require.NoError(t, err)
	assert.Equal(t, "second", match.Candidate.Number())
}

func TestMatchSelector_NeverExceedsRadius(t *testing.T) {
	selector := services.NewMatchSelector()
	pickup := pickupPoint(t)

	for radius := 1.0; radius <= 30; radius += 2.5 {
		var candidates []rider.Candidate
		for d := 0.5; d <= 40; d += 3.7 {
			candidates = append(candidates, candidateNorthOf(t, pickup, fmt.Sprintf("r%.1f", d), d))
		}

		match, err := selector.Select(pickup, candidates, radius)
		if err != nil {
			require.ErrorIs(t, err, services.ErrNoRidersInRange)
			continue
		}
		assert.LessOrEqual(t, match.DistanceKm, radius)
	}
}
