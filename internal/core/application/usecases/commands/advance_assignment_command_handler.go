package commands

import (
	"context"
	"time"

	"dispatch/internal/core/domain/model/assignment"
)

// AdvanceAssignmentCommandHandler applies a lifecycle transition to one delivery.
// The write is rejected with errs.ErrVersionIsInvalid when another writer changed the
// delivery after it was loaded, and with assignment.ErrInvalidStatusTransition when the
// current status does not allow the action.
type AdvanceAssignmentCommandHandler struct {
	uowFactory AssignmentUoWFactory
	now        func() time.Time
}

func NewAdvanceAssignmentCommandHandler(uowFactory AssignmentUoWFactory) AdvanceAssignmentCommandHandler {
	return AdvanceAssignmentCommandHandler{
		uowFactory: uowFactory,
		now:        time.Now,
	}
}

// Handle returns the delivery after the transition.
func (h AdvanceAssignmentCommandHandler) Handle(
	ctx context.Context,
	command AdvanceAssignmentCommand,
) (*assignment.Assignment, error) {
	if err := command.Validate(); err != nil {
		return nil, err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	repo := uow.AssignmentRepository()

	a, err := repo.Get(ctx, command.AssignmentID())
	if err != nil {
		return nil, err
	}

	if err = applyAction(a, command.Action(), h.now()); err != nil {
		return nil, err
	}

	if err = repo.Update(ctx, a); err != nil {
		return nil, err
	}

	if err = uow.Commit(ctx); err != nil {
		return nil, err
	}

	return a, nil
}

func applyAction(a *assignment.Assignment, action AssignmentAction, now time.Time) error {
	switch action {
	case ActionStart:
		return a.Start(now)
	case ActionComplete:
		return a.Complete(now)
	default:
		return a.Cancel(now)
	}
}
