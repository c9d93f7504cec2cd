// Package rider describes a rider that is eligible for a delivery together with the
// location it was resolved to for the current request.
package rider

import (
	"errors"
	"strings"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"
	"dispatch/internal/pkg/guard"
)

// ErrCandidateIsNotConstructed is returned when a Candidate was not created through NewCandidate.
var ErrCandidateIsNotConstructed = errors.New("Candidate must be created via NewCandidate constructor")

// Candidate pairs an available rider's number with the location resolved for it.
// Candidates only live for the duration of one dispatch request.
type Candidate struct {
	number   string
	location kernel.Location
	guard    guard.ConstructorGuard
}

// NewCandidate validates the rider number and location.
func NewCandidate(number string, location kernel.Location) (Candidate, error) {
	c := Candidate{guard: guard.NewConstructorGuard()}

	number = strings.TrimSpace(number)
	var numberErr error
	if number == "" {
		numberErr = errs.NewValueIsRequiredError("riderNumber")
	}

	if err := errors.Join(numberErr, location.Validate()); err != nil {
		return Candidate{}, err
	}

	c.number = number
	c.location = location
	return c, nil
}

// Validate reports ErrCandidateIsNotConstructed for a zero-value Candidate.
func (c Candidate) Validate() error {
	return c.guard.Validate(ErrCandidateIsNotConstructed)
}

// Number returns the rider number.
func (c Candidate) Number() string {
	return c.number
}

// Location returns the resolved location.
func (c Candidate) Location() kernel.Location {
	return c.location
}
