// Package queries contains read operations. Handlers return read models shaped for the
// HTTP adapter rather than domain aggregates.
package queries

import (
	"errors"
	"strings"
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"
	"dispatch/internal/pkg/guard"
)

var (
	ErrGetAssignmentQueryIsNotConstructed = errors.New(
		"GetAssignmentQuery must be created via NewGetAssignmentQuery constructor",
	)
)

// GetAssignmentQuery loads one delivery by its id.
//
// Example:
//
//	query, err := NewGetAssignmentQuery(c.Param("id"))
//	if err != nil {
//	    return err
//	}
//	view, err := handler.Handle(ctx, query)
type GetAssignmentQuery struct {
	assignmentID kernel.UUID
	guard        guard.ConstructorGuard
}

func NewGetAssignmentQuery(assignmentID string) (GetAssignmentQuery, error) {
	raw := strings.TrimSpace(assignmentID)
	if raw == "" {
		return GetAssignmentQuery{}, errs.NewValueIsRequiredError("deliveryId")
	}

	id, err := kernel.UUIDFromString(raw)
	if err != nil {
		return GetAssignmentQuery{}, errs.NewValueIsInvalidErrorWithCause("deliveryId", err)
	}

	return GetAssignmentQuery{assignmentID: id, guard: guard.NewConstructorGuard()}, nil
}

// Validate ensures the query was created through the constructor.
func (q GetAssignmentQuery) Validate() error {
	return q.guard.Validate(ErrGetAssignmentQueryIsNotConstructed)
}

func (q GetAssignmentQuery) AssignmentID() kernel.UUID {
	return q.assignmentID
}

// Point is a latitude/longitude pair in a read model.
type Point struct {
	Latitude  float64
	Longitude float64
}

// GetAssignmentQueryResponse is the delivery read model.
type GetAssignmentQueryResponse struct {
	ID                string
	CompanyID         string
	Status            string
	Description       string
	Pickup            Point
	Dropoff           *Point
	RiderNumber       string
	RiderLocation     Point
	RiderSource       string
	DistanceKm        float64
	EstimatedDuration int
	CreatedAt         time.Time
	AssignedAt        time.Time
	UpdatedAt         time.Time
}
