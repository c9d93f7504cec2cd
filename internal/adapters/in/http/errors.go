package http

import (
	"errors"
	"net/http"

	"dispatch/internal/core/application/usecases/commands"
	"dispatch/internal/core/application/usecases/queries"
	"dispatch/internal/core/domain/model/assignment"
	"dispatch/internal/core/domain/services"
	"dispatch/internal/pkg/errs"
)

const (
	msgDispatchInvalid       = "Pickup location, dropoff location, and companyId are required."
	msgCompanyNotFound       = "Company not found."
	msgNoRidersFound         = "No riders found for this company."
	msgNoAvailableRiders     = "No available riders at the moment."
	msgNoRidersInRange       = "No riders available within acceptable distance."
	msgAssignmentConflict    = "Rider was assigned to another delivery. Please retry."
	msgDispatchTimeout       = "Dispatch timed out."
	msgDispatchInternal      = "Error finding nearest dispatch rider."
	msgLocationsInvalid      = "Company ID and rider numbers are required"
	msgLocationsInternal     = "Error fetching rider locations"
	msgDeliveryInvalid       = "A valid delivery ID and action are required."
	msgDeliveryNotFound      = "Delivery not found."
	msgDeliveryTransition    = "Delivery cannot move to the requested status."
	msgDeliveryModified      = "Delivery was modified concurrently. Please retry."
	msgDeliveryInternal      = "Error updating delivery."
	msgDeliveryFetchInternal = "Error fetching delivery."
)

// httpError is a classified failure ready to be written.
type httpError struct {
	status  int
	message string
	cause   error
}

func isInvalidInput(err error) bool {
	return errors.Is(err, errs.ErrValueIsRequired) ||
		errors.Is(err, errs.ErrValueIsInvalid) ||
		errors.Is(err, errs.ErrValueIsOutOfRange) ||
		errors.Is(err, commands.ErrDispatchRiderCommandIsNotConstructed) ||
		errors.Is(err, commands.ErrRefreshRiderLocationsCommandIsNotConstructed) ||
		errors.Is(err, commands.ErrAdvanceAssignmentCommandIsNotConstructed) ||
		errors.Is(err, queries.ErrGetAssignmentQueryIsNotConstructed) ||
		errors.Is(err, queries.ErrGetRiderLocationsQueryIsNotConstructed)
}

// dispatchError maps a dispatch failure to its status and public message.
func dispatchError(err error) httpError {
	switch {
	case errors.Is(err, commands.ErrDispatchTimeout):
		return httpError{http.StatusGatewayTimeout, msgDispatchTimeout, err}
	case errors.Is(err, commands.ErrDispatchInternal):
		return httpError{http.StatusInternalServerError, msgDispatchInternal, err}
	case isInvalidInput(err):
		return httpError{http.StatusBadRequest, msgDispatchInvalid, err}
	case errors.Is(err, commands.ErrCompanyNotFound):
		return httpError{http.StatusNotFound, msgCompanyNotFound, err}
	case errors.Is(err, services.ErrNoRidersFound):
		return httpError{http.StatusNotFound, msgNoRidersFound, err}
	case errors.Is(err, services.ErrNoAvailableRiders):
		return httpError{http.StatusNotFound, msgNoAvailableRiders, err}
	case errors.Is(err, services.ErrNoRidersInRange):
		return httpError{http.StatusNotFound, msgNoRidersInRange, err}
	case errors.Is(err, commands.ErrAssignmentConflict),
		errors.Is(err, errs.ErrVersionIsInvalid):
		return httpError{http.StatusConflict, msgAssignmentConflict, err}
	default:
		return httpError{http.StatusInternalServerError, msgDispatchInternal, err}
	}
}

func riderLocationsError(err error) httpError {
	switch {
	case isInvalidInput(err):
		return httpError{http.StatusBadRequest, msgLocationsInvalid, err}
	case errors.Is(err, commands.ErrCompanyNotFound):
		return httpError{http.StatusNotFound, msgCompanyNotFound, err}
	default:
		return httpError{http.StatusInternalServerError, msgLocationsInternal, err}
	}
}

func deliveryError(err error, internalMessage string) httpError {
	switch {
	case errors.Is(err, errs.ErrObjectNotFound):
		return httpError{http.StatusNotFound, msgDeliveryNotFound, err}
	case isInvalidInput(err):
		return httpError{http.StatusBadRequest, msgDeliveryInvalid, err}
	case errors.Is(err, assignment.ErrInvalidStatusTransition):
		return httpError{http.StatusConflict, msgDeliveryTransition, err}
	case errors.Is(err, errs.ErrVersionIsInvalid):
		return httpError{http.StatusConflict, msgDeliveryModified, err}
	default:
		return httpError{http.StatusInternalServerError, internalMessage, err}
	}
}
