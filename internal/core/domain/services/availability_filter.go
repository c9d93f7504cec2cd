package services

import (
	"context"
	"errors"
	"fmt"

	"dispatch/internal/core/domain/model/assignment"
)

var (
	// ErrNoRidersFound is returned when the company roster is empty.
	ErrNoRidersFound = errors.New("no riders found for this company")

	// ErrNoAvailableRiders is returned when every rider on the roster has an active assignment.
	ErrNoAvailableRiders = errors.New("no available riders at the moment")
)

// ActiveAssignmentReader lists a company's assignments that are assigned or in progress.
type ActiveAssignmentReader interface {
	QueryActive(ctx context.Context, companyID string) ([]*assignment.Assignment, error)
}

// AvailabilityFilter removes riders that are busy with an active assignment.
//
// The result is only a pre-filter that saves location lookups for riders known to be busy.
// It is not atomic with the later commit; the assignment store re-checks the rider when
// the assignment is written.
type AvailabilityFilter struct {
	reader ActiveAssignmentReader
}

// NewAvailabilityFilter creates an AvailabilityFilter over the given reader.
func NewAvailabilityFilter(reader ActiveAssignmentReader) AvailabilityFilter {
	return AvailabilityFilter{reader: reader}
}

// Available returns the roster minus every rider referenced by an active assignment of
// the company. Roster order is preserved.
//
// Returns:
//   - []string: free rider numbers
//   - error: ErrNoRidersFound for an empty roster, ErrNoAvailableRiders when everyone is
//     busy, or the reader's error
func (f AvailabilityFilter) Available(ctx context.Context, companyID string, roster []string) ([]string, error) {
	if len(roster) == 0 {
		return nil, ErrNoRidersFound
	}

	active, err := f.reader.QueryActive(ctx, companyID)
	if err != nil {
		return nil, fmt.Errorf("query active assignments: %w", err)
	}

	return FilterAvailable(roster, active)
}

// FilterAvailable is the pure part of Available.
func FilterAvailable(roster []string, active []*assignment.Assignment) ([]string, error) {
	if len(roster) == 0 {
		return nil, ErrNoRidersFound
	}

	busy := make(map[string]struct{}, len(active))
	for _, a := range active {
		if a == nil || !a.IsActive() {
			continue
		}
		busy[a.RiderNumber()] = struct{}{}
	}

	free := make([]string, 0, len(roster))
	for _, number := range roster {
		if _, ok := busy[number]; ok {
			continue
		}
		free = append(free, number)
	}

	if len(free) == 0 {
		return nil, ErrNoAvailableRiders
	}

	return free, nil
}
