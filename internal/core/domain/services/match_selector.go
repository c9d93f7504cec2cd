package services

import (
	"errors"
	"math"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/rider"
	"dispatch/internal/pkg/errs"
)

var (
	// ErrNoCandidates is returned when Select receives no candidates at all.
	ErrNoCandidates = errors.New("no candidates to select from")

	// ErrNoRidersInRange is returned when candidates exist but every one of them
	// is farther from the pickup than the service radius.
	ErrNoRidersInRange = errors.New("no riders available within acceptable distance")
)

// Match is the outcome of a successful selection.
type Match struct {
	Candidate  rider.Candidate
	DistanceKm float64
}

// MatchSelector is a domain service that picks the rider closest to a pickup point.
//
// Business rules:
//   - Distance is the Haversine great-circle distance
//   - Candidates farther than maxRadiusKm are excluded entirely; the radius is inclusive
//   - Ties keep the candidate that appears first in the input, which follows roster order
//   - The radius applies even when there is a single candidate
//
// Example:
//
//	match, err := services.NewMatchSelector().Select(pickup, candidates, 20)
//	switch {
//	case errors.Is(err, services.ErrNoRidersInRange):
//	    // everyone is too far away
//	case err != nil:
//	    return err
//	}
//	fmt.Println(match.Candidate.Number(), match.DistanceKm)
type MatchSelector struct{}

// NewMatchSelector creates a MatchSelector.
func NewMatchSelector() MatchSelector {
	return MatchSelector{}
}

// Select returns the nearest candidate within maxRadiusKm of pickup.
//
// Parameters:
//   - pickup: the pickup location (must be constructed)
//   - candidates: available riders with their resolved locations, in roster order
//   - maxRadiusKm: service radius in kilometres (must be positive)
//
// Returns:
//   - Match: the selected candidate and its distance
//   - error: ErrNoCandidates, ErrNoRidersInRange, or a validation error
func (s MatchSelector) Select(pickup kernel.Location, candidates []rider.Candidate, maxRadiusKm float64) (Match, error) {
	if err := pickup.Validate(); err != nil {
		return Match{}, err
	}
	if maxRadiusKm <= 0 || math.IsNaN(maxRadiusKm) {
		return Match{}, errs.NewValueIsOutOfRangeError("maxRadiusKm", maxRadiusKm, 0, math.Inf(1))
	}
	if len(candidates) == 0 {
		return Match{}, ErrNoCandidates
	}

	var (
		best     rider.Candidate
		found    bool
		bestDist = math.MaxFloat64
	)

	for _, c := range candidates {
		if err := c.Validate(); err != nil {
			return Match{}, err
		}

		dist := kernel.Haversine(pickup, c.Location())
		if dist > maxRadiusKm {
			continue
		}

		if dist < bestDist {
			bestDist = dist
			best = c
			found = true
		}
	}

	if !found {
		return Match{}, ErrNoRidersInRange
	}

	return Match{Candidate: best, DistanceKm: bestDist}, nil
}
