package commands

import (
	"context"
	"errors"
	"time"

	"dispatch/internal/core/domain/model/assignment"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"
)

// ReleaseStaleAssignmentsCommandHandler cancels stale deliveries one at a time, each in its
// own transaction. A delivery that was started or changed after it was listed is skipped.
type ReleaseStaleAssignmentsCommandHandler struct {
	uowFactory AssignmentUoWFactory
	now        func() time.Time
}

func NewReleaseStaleAssignmentsCommandHandler(uowFactory AssignmentUoWFactory) ReleaseStaleAssignmentsCommandHandler {
	return ReleaseStaleAssignmentsCommandHandler{
		uowFactory: uowFactory,
		now:        time.Now,
	}
}

// Handle returns the number of cancelled deliveries.
func (h ReleaseStaleAssignmentsCommandHandler) Handle(ctx context.Context, command ReleaseStaleAssignmentsCommand) (int, error) {
	if err := command.Validate(); err != nil {
		return 0, err
	}

	now := h.now()
	cutoff := now.Add(-command.TTL())

	stale, err := h.uowFactory.Create().AssignmentRepository().
		ListAssignedBefore(ctx, cutoff, command.BatchSize())
	if err != nil {
		return 0, err
	}

	released := 0
	for _, a := range stale {
		if err = ctx.Err(); err != nil {
			return released, err
		}

		cancelled, cancelErr := h.release(ctx, a.ID(), cutoff, now)
		if errors.Is(cancelErr, errs.ErrVersionIsInvalid) || errors.Is(cancelErr, errs.ErrObjectNotFound) {
			continue
		}
		if cancelErr != nil {
			return released, cancelErr
		}
		if cancelled {
			released++
		}
	}

	return released, nil
}

func (h ReleaseStaleAssignmentsCommandHandler) release(
	ctx context.Context,
	id kernel.UUID,
	cutoff, now time.Time,
) (bool, error) {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return false, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	repo := uow.AssignmentRepository()

	a, err := repo.Get(ctx, id)
	if err != nil {
		return false, err
	}
	if a.Status() != assignment.Assigned || !a.AssignedAt().Before(cutoff) {
		return false, nil
	}

	if err = a.Cancel(now); err != nil {
		return false, err
	}
	if err = repo.Update(ctx, a); err != nil {
		return false, err
	}

	return true, uow.Commit(ctx)
}
