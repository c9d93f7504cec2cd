package commands

import (
	"errors"
	"strings"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"
	"dispatch/internal/pkg/guard"
)

var ErrDispatchRiderCommandIsNotConstructed = errors.New(
	"DispatchRiderCommand must be created via NewDispatchRiderCommand constructor",
)

// Coordinates is raw latitude/longitude input in decimal degrees.
type Coordinates struct {
	Latitude  float64
	Longitude float64
}

// DispatchRiderCommand asks for the nearest free rider of a company to be assigned to a pickup.
//
// Example:
//
//	cmd, err := NewDispatchRiderCommand(DispatchRiderInput{
//	    CompanyID:      "C1",
//	    Pickup:         &Coordinates{Latitude: 6.5244, Longitude: 3.3792},
//	    Dropoff:        &Coordinates{Latitude: 6.4550, Longitude: 3.3941},
//	    Description:    "documents",
//	    RequireDropoff: true,
//	})
type DispatchRiderCommand struct { //nolint:recvcheck //using for validation
	companyID   string
	pickup      kernel.Location
	dropoff     *kernel.Location
	description string

	guard guard.ConstructorGuard
}

// DispatchRiderInput is the unvalidated request.
type DispatchRiderInput struct {
	CompanyID   string
	Pickup      *Coordinates
	Dropoff     *Coordinates
	Description string

	// RequireDropoff rejects requests without a dropoff. When false a missing dropoff is
	// accepted and stored as absent.
	RequireDropoff bool
}

// NewDispatchRiderCommand validates the input.
// Missing values produce errs.ValueIsRequiredError and out-of-range coordinates produce
// errs.ValueIsOutOfRangeError; all problems are joined.
func NewDispatchRiderCommand(in DispatchRiderInput) (DispatchRiderCommand, error) {
	cmd := DispatchRiderCommand{
		description: strings.TrimSpace(in.Description),
		guard:       guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		cmd.setCompanyID(in.CompanyID),
		cmd.setPickup(in.Pickup),
		cmd.setDropoff(in.Dropoff, in.RequireDropoff),
	); err != nil {
		return DispatchRiderCommand{}, err
	}

	return cmd, nil
}

// Validate ensures the command was created through the constructor.
func (c DispatchRiderCommand) Validate() error {
	return c.guard.Validate(ErrDispatchRiderCommandIsNotConstructed)
}

// CompanyID returns the requesting company.
func (c DispatchRiderCommand) CompanyID() string {
	return c.companyID
}

// Pickup returns the pickup location.
func (c DispatchRiderCommand) Pickup() kernel.Location {
	return c.pickup
}

// Dropoff returns the dropoff location, or nil when none was given.
func (c DispatchRiderCommand) Dropoff() *kernel.Location {
	if c.dropoff == nil {
		return nil
	}
	d := *c.dropoff
	return &d
}

// Description returns the parcel description.
func (c DispatchRiderCommand) Description() string {
	return c.description
}

func (c *DispatchRiderCommand) setCompanyID(companyID string) error {
	companyID = strings.TrimSpace(companyID)
	if companyID == "" {
		return errs.NewValueIsRequiredError("companyId")
	}
	c.companyID = companyID
	return nil
}

func (c *DispatchRiderCommand) setPickup(pickup *Coordinates) error {
	if pickup == nil {
		return errs.NewValueIsRequiredError("pickup")
	}
	loc, err := kernel.NewLocation(pickup.Latitude, pickup.Longitude)
	if err != nil {
		return err
	}
	c.pickup = loc
	return nil
}

func (c *DispatchRiderCommand) setDropoff(dropoff *Coordinates, required bool) error {
	if dropoff == nil {
		if required {
			return errs.NewValueIsRequiredError("dropoff")
		}
		return nil
	}
	loc, err := kernel.NewLocation(dropoff.Latitude, dropoff.Longitude)
	if err != nil {
		return err
	}
	c.dropoff = &loc
	return nil
}
