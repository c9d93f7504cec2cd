package ports

import (
	"context"
	"errors"
	"time"

	"dispatch/internal/core/domain/model/assignment"
	"dispatch/internal/core/domain/model/kernel"
)

// ErrCourierIsBusy is returned by CreateIfCourierFree when the rider already has an
// assigned or in-progress assignment at the moment of the write.
var ErrCourierIsBusy = errors.New("courier already has an active assignment")

// AssignmentRepository is the assignment store and the single source of truth for
// whether a rider is busy.
type AssignmentRepository interface {
	// CreateIfCourierFree persists a new active assignment only if its rider has no other
	// active assignment. The check and the write are one atomic operation; concurrent
	// callers racing for the same rider see exactly one success and ErrCourierIsBusy
	// for everyone else.
	CreateIfCourierFree(ctx context.Context, aggregate *assignment.Assignment) error

	// QueryActive returns the company's assignments in Assigned or InProgress status.
	QueryActive(ctx context.Context, companyID string) ([]*assignment.Assignment, error)

	// Get returns one assignment, or an errs.ObjectNotFoundError.
	Get(ctx context.Context, id kernel.UUID) (*assignment.Assignment, error)

	// Update persists a status transition. The write succeeds only if the stored version
	// still equals aggregate.Version(); otherwise an errs.VersionIsInvalidError is returned.
	Update(ctx context.Context, aggregate *assignment.Assignment) error

	// ListAssignedBefore returns assignments still in Assigned status whose assignedAt is
	// before the given instant, oldest first, at most limit rows.
	ListAssignedBefore(ctx context.Context, before time.Time, limit int) ([]*assignment.Assignment, error)
}
