package assignment

import (
	"errors"
	"math"
	"strings"
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"
	"dispatch/internal/pkg/guard"
)

// ErrAssignmentIsNotConstructed is returned when an Assignment was not created through
// NewAssignment or RestoreAssignment.
var ErrAssignmentIsNotConstructed = errors.New("Assignment must be created via NewAssignment constructor")

// NewAssignmentParams carries everything known when a rider has been selected.
type NewAssignmentParams struct {
	ID                kernel.UUID
	CompanyID         string
	Pickup            kernel.Location
	Dropoff           *kernel.Location
	Description       string
	RiderNumber       string
	RiderLocation     kernel.Location
	DistanceKm        float64
	EstimatedDuration int
	Now               time.Time
}

// RestoreParams carries a persisted assignment.
type RestoreParams struct {
	NewAssignmentParams
	Status     Status
	CreatedAt  time.Time
	AssignedAt time.Time
	UpdatedAt  time.Time
	Version    int
}

// Assignment is a delivery matched to a rider.
//
// Example:
//
//	a, err := assignment.NewAssignment(assignment.NewAssignmentParams{
//	    ID:                kernel.NewUUID(),
//	    CompanyID:         "C1",
//	    Pickup:            pickup,
//	    Dropoff:           &dropoff,
//	    RiderNumber:       "+2348000000001",
//	    RiderLocation:     riderLocation,
//	    DistanceKm:        3.1,
//	    EstimatedDuration: 6,
//	    Now:               time.Now(),
//	})
type Assignment struct {
	id                kernel.UUID
	companyID         string
	pickup            kernel.Location
	dropoff           *kernel.Location
	description       string
	riderNumber       string
	riderLocation     kernel.Location
	distanceKm        float64
	estimatedDuration int
	status            Status
	createdAt         time.Time
	assignedAt        time.Time
	updatedAt         time.Time
	version           int
	guard             guard.ConstructorGuard
}

// NewAssignment creates an assignment that is already in Assigned status.
//
// Returns:
//   - *Assignment: the new aggregate with version 0
//   - error: joined validation errors for every invalid field
func NewAssignment(p NewAssignmentParams) (*Assignment, error) {
	a := &Assignment{
		status: Pending,
		guard:  guard.NewConstructorGuard(),
	}

	if err := a.apply(p); err != nil {
		return nil, err
	}

	status, err := a.status.Assign()
	if err != nil {
		return nil, err
	}

	now := p.Now.UTC()
	a.status = status
	a.createdAt = now
	a.assignedAt = now
	a.updatedAt = now

	return a, nil
}

// RestoreAssignment rebuilds an assignment loaded from storage.
func RestoreAssignment(p RestoreParams) (*Assignment, error) {
	a := &Assignment{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(a.apply(p.NewAssignmentParams), p.Status.Validate()); err != nil {
		return nil, err
	}

	a.status = p.Status
	a.createdAt = p.CreatedAt.UTC()
	a.assignedAt = p.AssignedAt.UTC()
	a.updatedAt = p.UpdatedAt.UTC()
	a.version = p.Version

	return a, nil
}

func (a *Assignment) apply(p NewAssignmentParams) error {
	return errors.Join(
		a.setID(p.ID),
		a.setCompanyID(p.CompanyID),
		a.setPickup(p.Pickup),
		a.setDropoff(p.Dropoff),
		a.setRider(p.RiderNumber, p.RiderLocation),
		a.setDistance(p.DistanceKm),
		a.setEstimatedDuration(p.EstimatedDuration),
		a.setDescription(p.Description),
	)
}

// Validate reports ErrAssignmentIsNotConstructed for a zero-value Assignment.
func (a *Assignment) Validate() error {
	if a == nil {
		return ErrAssignmentIsNotConstructed
	}
	return a.guard.Validate(ErrAssignmentIsNotConstructed)
}

// ID returns the assignment identifier, exposed to clients as deliveryId.
func (a *Assignment) ID() kernel.UUID { return a.id }

// CompanyID returns the owning company.
func (a *Assignment) CompanyID() string { return a.companyID }

// Pickup returns the pickup location.
func (a *Assignment) Pickup() kernel.Location { return a.pickup }

// Dropoff returns the dropoff location and whether one was given.
func (a *Assignment) Dropoff() (kernel.Location, bool) {
	if a.dropoff == nil {
		return kernel.Location{}, false
	}
	return *a.dropoff, true
}

// Description returns the free-text parcel description.
func (a *Assignment) Description() string { return a.description }

// RiderNumber returns the assigned rider.
func (a *Assignment) RiderNumber() string { return a.riderNumber }

// RiderLocation returns where the rider was resolved at dispatch time.
func (a *Assignment) RiderLocation() kernel.Location { return a.riderLocation }

// DistanceKm returns the rider-to-pickup distance at dispatch time.
func (a *Assignment) DistanceKm() float64 { return a.distanceKm }

// EstimatedDuration returns the estimated rider-to-pickup time in minutes.
func (a *Assignment) EstimatedDuration() int { return a.estimatedDuration }

// Status returns the lifecycle state.
func (a *Assignment) Status() Status { return a.status }

// CreatedAt returns the creation time in UTC.
func (a *Assignment) CreatedAt() time.Time { return a.createdAt }

// AssignedAt returns the time the rider was committed, in UTC.
func (a *Assignment) AssignedAt() time.Time { return a.assignedAt }

// UpdatedAt returns the time of the last transition, in UTC.
func (a *Assignment) UpdatedAt() time.Time { return a.updatedAt }

// Version returns the persisted version used for optimistic updates.
func (a *Assignment) Version() int { return a.version }

// IsActive reports whether the assignment keeps its rider busy.
func (a *Assignment) IsActive() bool { return a.status.IsActive() }

// Start records that the rider picked the parcel up.
func (a *Assignment) Start(now time.Time) error {
	return a.transition(Status.Start, now)
}

// Complete records the delivery.
func (a *Assignment) Complete(now time.Time) error {
	return a.transition(Status.Complete, now)
}

// Cancel abandons the delivery and frees the rider.
func (a *Assignment) Cancel(now time.Time) error {
	return a.transition(Status.Cancel, now)
}

func (a *Assignment) transition(next func(Status) (Status, error), now time.Time) error {
	if err := a.Validate(); err != nil {
		return err
	}

	status, err := next(a.status)
	if err != nil {
		return err
	}

	a.status = status
	a.updatedAt = now.UTC()
	return nil
}

// EstimateDurationMinutes returns round(distanceKm / speedKmh * 60).
//
// Example:
//
//	minutes, _ := assignment.EstimateDurationMinutes(3, 30) // 6
func EstimateDurationMinutes(distanceKm, speedKmh float64) (int, error) {
	if speedKmh <= 0 || math.IsNaN(speedKmh) || math.IsInf(speedKmh, 0) {
		return 0, errs.NewValueIsOutOfRangeError("speedKmh", speedKmh, "> 0", math.Inf(1))
	}
	if distanceKm < 0 || math.IsNaN(distanceKm) {
		return 0, errs.NewValueIsOutOfRangeError("distanceKm", distanceKm, 0, math.Inf(1))
	}
	return int(math.Round(distanceKm / speedKmh * 60)), nil
}

func (a *Assignment) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	a.id = id
	return nil
}

func (a *Assignment) setCompanyID(companyID string) error {
	companyID = strings.TrimSpace(companyID)
	if companyID == "" {
		return errs.NewValueIsRequiredError("companyId")
	}
	a.companyID = companyID
	return nil
}

func (a *Assignment) setPickup(pickup kernel.Location) error {
	if err := pickup.Validate(); err != nil {
		return errs.NewValueIsRequiredErrorWithCause("pickup", err)
	}
	a.pickup = pickup
	return nil
}

func (a *Assignment) setDropoff(dropoff *kernel.Location) error {
	if dropoff == nil {
		a.dropoff = nil
		return nil
	}
	if err := dropoff.Validate(); err != nil {
		return errs.NewValueIsInvalidErrorWithCause("dropoff", err)
	}
	d := *dropoff
	a.dropoff = &d
	return nil
}

func (a *Assignment) setRider(number string, location kernel.Location) error {
	number = strings.TrimSpace(number)
	var numberErr, locationErr error
	if number == "" {
		numberErr = errs.NewValueIsRequiredError("riderNumber")
	}
	if err := location.Validate(); err != nil {
		locationErr = errs.NewValueIsRequiredErrorWithCause("riderLocation", err)
	}
	if err := errors.Join(numberErr, locationErr); err != nil {
		return err
	}
	a.riderNumber = number
	a.riderLocation = location
	return nil
}

func (a *Assignment) setDistance(km float64) error {
	if km < 0 || math.IsNaN(km) || math.IsInf(km, 0) {
		return errs.NewValueIsOutOfRangeError("distanceKm", km, 0, math.Inf(1))
	}
	a.distanceKm = km
	return nil
}

func (a *Assignment) setEstimatedDuration(minutes int) error {
	if minutes < 0 {
		return errs.NewValueIsOutOfRangeError("estimatedDuration", minutes, 0, math.MaxInt)
	}
	a.estimatedDuration = minutes
	return nil
}

func (a *Assignment) setDescription(description string) error {
	a.description = strings.TrimSpace(description)
	return nil
}
