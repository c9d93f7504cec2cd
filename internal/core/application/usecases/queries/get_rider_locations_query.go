package queries

import (
	"errors"
	"strings"
	"time"

	"dispatch/internal/pkg/errs"
	"dispatch/internal/pkg/guard"
)

var (
	ErrGetRiderLocationsQueryIsNotConstructed = errors.New(
		"GetRiderLocationsQuery must be created via NewGetRiderLocationsQuery constructor",
	)
)

// GetRiderLocationsQuery reads the last stored location snapshot of a company.
type GetRiderLocationsQuery struct {
	companyID string
	guard     guard.ConstructorGuard
}

func NewGetRiderLocationsQuery(companyID string) (GetRiderLocationsQuery, error) {
	companyID = strings.TrimSpace(companyID)
	if companyID == "" {
		return GetRiderLocationsQuery{}, errs.NewValueIsRequiredError("companyId")
	}
	return GetRiderLocationsQuery{companyID: companyID, guard: guard.NewConstructorGuard()}, nil
}

// Validate ensures the query was created through the constructor.
func (q GetRiderLocationsQuery) Validate() error {
	return q.guard.Validate(ErrGetRiderLocationsQueryIsNotConstructed)
}

func (q GetRiderLocationsQuery) CompanyID() string {
	return q.companyID
}

// GetRiderLocationsQueryResponse is one snapshot entry.
type GetRiderLocationsQueryResponse struct {
	RiderNumber string
	Location    Point
	Source      string
	LastUpdated time.Time
}
