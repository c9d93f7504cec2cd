package commands

import (
	"errors"
	"strings"

	"dispatch/internal/pkg/errs"
	"dispatch/internal/pkg/guard"
)

var ErrRefreshRiderLocationsCommandIsNotConstructed = errors.New(
	"RefreshRiderLocationsCommand must be created via NewRefreshRiderLocationsCommand constructor",
)

// RefreshRiderLocationsCommand resolves the current location of the listed riders and
// stores them as the company's location snapshot.
type RefreshRiderLocationsCommand struct { //nolint:recvcheck //using for validation
	companyID    string
	riderNumbers []string

	guard guard.ConstructorGuard
}

// NewRefreshRiderLocationsCommand requires a company and at least one rider number.
// Blank numbers are dropped and duplicates keep their first position.
func NewRefreshRiderLocationsCommand(companyID string, riderNumbers []string) (RefreshRiderLocationsCommand, error) {
	cmd := RefreshRiderLocationsCommand{
		companyID: strings.TrimSpace(companyID),
		guard:     guard.NewConstructorGuard(),
	}

	seen := make(map[string]struct{}, len(riderNumbers))
	for _, n := range riderNumbers {
		n = strings.TrimSpace(n)
		if n == "" {
			continue
		}
		if _, dup := seen[n]; dup {
			continue
		}
		seen[n] = struct{}{}
		cmd.riderNumbers = append(cmd.riderNumbers, n)
	}

	var companyErr, ridersErr error
	if cmd.companyID == "" {
		companyErr = errs.NewValueIsRequiredError("companyId")
	}
	if len(cmd.riderNumbers) == 0 {
		ridersErr = errs.NewValueIsRequiredError("riderNumbers")
	}
	if err := errors.Join(companyErr, ridersErr); err != nil {
		return RefreshRiderLocationsCommand{}, err
	}

	return cmd, nil
}

func (c RefreshRiderLocationsCommand) Validate() error {
	return c.guard.Validate(ErrRefreshRiderLocationsCommandIsNotConstructed)
}

func (c RefreshRiderLocationsCommand) CompanyID() string { return c.companyID }

// RiderNumbers returns a copy of the requested riders.
func (c RefreshRiderLocationsCommand) RiderNumbers() []string {
	return append([]string(nil), c.riderNumbers...)
}
