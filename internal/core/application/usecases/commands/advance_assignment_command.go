package commands

import (
	"errors"
	"strings"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"
	"dispatch/internal/pkg/guard"
)

// AssignmentAction names a fulfillment transition requested by a client.
type AssignmentAction string

const (
	ActionStart    AssignmentAction = "start"
	ActionComplete AssignmentAction = "complete"
	ActionCancel   AssignmentAction = "cancel"
)

var ErrAdvanceAssignmentCommandIsNotConstructed = errors.New(
	"AdvanceAssignmentCommand must be created via NewAdvanceAssignmentCommand constructor",
)

// AdvanceAssignmentCommand moves a delivery through its lifecycle.
//
// Example:
//
//	cmd, err := NewAdvanceAssignmentCommand("6f1c1f8e-4a4e-4a4b-9e0a-6a0a3f1d2c11", "start")
type AdvanceAssignmentCommand struct { //nolint:recvcheck //using for validation
	assignmentID kernel.UUID
	action       AssignmentAction

	guard guard.ConstructorGuard
}

// NewAdvanceAssignmentCommand parses the delivery id and the action.
func NewAdvanceAssignmentCommand(assignmentID, action string) (AdvanceAssignmentCommand, error) {
	cmd := AdvanceAssignmentCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(cmd.setAssignmentID(assignmentID), cmd.setAction(action)); err != nil {
		return AdvanceAssignmentCommand{}, err
	}

	return cmd, nil
}

func (c AdvanceAssignmentCommand) Validate() error {
	return c.guard.Validate(ErrAdvanceAssignmentCommandIsNotConstructed)
}

func (c AdvanceAssignmentCommand) AssignmentID() kernel.UUID { return c.assignmentID }

func (c AdvanceAssignmentCommand) Action() AssignmentAction { return c.action }

func (c *AdvanceAssignmentCommand) setAssignmentID(raw string) error {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return errs.NewValueIsRequiredError("deliveryId")
	}

	id, err := kernel.UUIDFromString(raw)
	if err != nil {
		return errs.NewValueIsInvalidErrorWithCause("deliveryId", err)
	}

	c.assignmentID = id
	return nil
}

func (c *AdvanceAssignmentCommand) setAction(raw string) error {
	action := AssignmentAction(strings.ToLower(strings.TrimSpace(raw)))
	switch action {
	case ActionStart, ActionComplete, ActionCancel:
		c.action = action
		return nil
	case "":
		return errs.NewValueIsRequiredError("action")
	default:
		return errs.NewValueIsInvalidError("action")
	}
}
