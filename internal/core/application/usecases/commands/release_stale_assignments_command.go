package commands

import (
	"errors"
	"time"

	"dispatch/internal/pkg/errs"
	"dispatch/internal/pkg/guard"
)

// DefaultReleaseBatchSize bounds the number of deliveries cancelled in one run.
const DefaultReleaseBatchSize = 100

var ErrReleaseStaleAssignmentsCommandIsNotConstructed = errors.New(
	"ReleaseStaleAssignmentsCommand must be created via NewReleaseStaleAssignmentsCommand constructor",
)

// ReleaseStaleAssignmentsCommand cancels deliveries that stayed in assigned status for longer
// than ttl, which frees their riders for new dispatches.
//
// Example:
//
//	cmd, err := NewReleaseStaleAssignmentsCommand(30*time.Minute, DefaultReleaseBatchSize)
//	if err != nil {
//	    return err
//	}
//	released, err := handler.Handle(ctx, cmd)
type ReleaseStaleAssignmentsCommand struct {
	ttl       time.Duration
	batchSize int

	guard guard.ConstructorGuard
}

func NewReleaseStaleAssignmentsCommand(ttl time.Duration, batchSize int) (ReleaseStaleAssignmentsCommand, error) {
	var ttlErr, batchErr error
	if ttl <= 0 {
		ttlErr = errs.NewValueIsOutOfRangeError("ttl", ttl, "> 0", "unbounded")
	}
	if batchSize <= 0 {
		batchErr = errs.NewValueIsOutOfRangeError("batchSize", batchSize, 1, "unbounded")
	}
	if err := errors.Join(ttlErr, batchErr); err != nil {
		return ReleaseStaleAssignmentsCommand{}, err
	}

	return ReleaseStaleAssignmentsCommand{
		ttl:       ttl,
		batchSize: batchSize,
		guard:     guard.NewConstructorGuard(),
	}, nil
}

func (c *ReleaseStaleAssignmentsCommand) Validate() error {
	return c.guard.Validate(ErrReleaseStaleAssignmentsCommandIsNotConstructed)
}

func (c *ReleaseStaleAssignmentsCommand) TTL() time.Duration { return c.ttl }

func (c *ReleaseStaleAssignmentsCommand) BatchSize() int { return c.batchSize }
