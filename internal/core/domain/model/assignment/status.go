package assignment

import (
	"errors"
	"fmt"

	"dispatch/internal/pkg/errs"
)

// ErrInvalidStatusTransition is wrapped by every rejected status transition.
var ErrInvalidStatusTransition = errors.New("invalid status transition")

// Status is the lifecycle state of an assignment.
//
// State transitions:
//
//	Pending ──> Assigned ──> InProgress ──> Completed
//	   │           │             │
//	   └───────────┴─────────────┴──────> Cancelled
//
// Completed and Cancelled are terminal. A state is never revisited once left.
type Status int

const (
	// Unknown catches uninitialized Status values.
	Unknown Status = iota

	// Pending is an assignment that has not been matched to a rider yet.
	Pending

	// Assigned means a rider has been committed to the delivery.
	Assigned

	// InProgress means the rider has picked the parcel up.
	InProgress

	// Completed means the parcel was delivered.
	Completed

	// Cancelled means the delivery was abandoned before completion.
	Cancelled
)

func getStatusStrings() map[Status]string {
	return map[Status]string{
		Unknown:    "unknown",
		Pending:    "pending",
		Assigned:   "assigned",
		InProgress: "in_progress",
		Completed:  "completed",
		Cancelled:  "cancelled",
	}
}

// ActiveStatuses lists the statuses that make a rider unavailable.
func ActiveStatuses() []Status {
	return []Status{Assigned, InProgress}
}

// ParseStatus converts the persisted string form back to a Status.
func ParseStatus(s string) (Status, error) {
	for status, str := range getStatusStrings() {
		if status != Unknown && str == s {
			return status, nil
		}
	}
	return Unknown, errs.NewValueIsInvalidErrorWithCause("status", fmt.Errorf("%q is not a valid status", s))
}

// Validate rejects Unknown and out-of-range values.
func (s Status) Validate() error {
	if s <= Unknown || s > Cancelled {
		return errs.NewValueIsInvalidErrorWithCause("status", fmt.Errorf("%d is not a valid status", s))
	}
	return nil
}

// String returns the persisted form, e.g. "in_progress".
func (s Status) String() string {
	if str, ok := getStatusStrings()[s]; ok {
		return str
	}
	return "unknown"
}

// IsActive reports whether the status blocks the rider from new assignments.
func (s Status) IsActive() bool {
	return s == Assigned || s == InProgress
}

// IsTerminal reports whether no further transitions are possible.
func (s Status) IsTerminal() bool {
	return s == Completed || s == Cancelled
}

// Assign moves Pending to Assigned.
func (s Status) Assign() (Status, error) {
	if s != Pending {
		return Unknown, s.transitionError("assign")
	}
	return Assigned, nil
}

// Start moves Assigned to InProgress.
func (s Status) Start() (Status, error) {
	if s != Assigned {
		return Unknown, s.transitionError("start")
	}
	return InProgress, nil
}

// Complete moves InProgress to Completed.
func (s Status) Complete() (Status, error) {
	if s != InProgress {
		return Unknown, s.transitionError("complete")
	}
	return Completed, nil
}

// Cancel moves any non-terminal status to Cancelled.
func (s Status) Cancel() (Status, error) {
	if s.Validate() != nil || s.IsTerminal() {
		return Unknown, s.transitionError("cancel")
	}
	return Cancelled, nil
}

func (s Status) transitionError(action string) error {
	return fmt.Errorf("%w: cannot %s an assignment in status %s", ErrInvalidStatusTransition, action, s)
}
