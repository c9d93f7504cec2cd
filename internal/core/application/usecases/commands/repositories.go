// Package commands contains the operations that change dispatch state.
// Every command is built through a validating constructor and executed by a handler
// that owns transaction management through a unit of work.
package commands

import (
	"context"

	"dispatch/internal/core/ports"
)

// Unit of Work interfaces provide transaction management for command handlers.
type (
	// TxManager handles database transaction lifecycle.
	TxManager interface {
		Begin(ctx context.Context) error
		Commit(ctx context.Context) error
		Rollback(ctx context.Context) error
	}

	// CompanyRepoFactory provides access to the roster store.
	CompanyRepoFactory interface {
		CompanyRepository() ports.CompanyRepository
	}

	// AssignmentRepoFactory provides access to the assignment store.
	AssignmentRepoFactory interface {
		AssignmentRepository() ports.AssignmentRepository
	}

	// AssignmentUoW manages transactions that only touch assignments.
	AssignmentUoW interface {
		TxManager
		AssignmentRepoFactory
	}

	// AssignmentUoWFactory creates assignment-only units of work.
	AssignmentUoWFactory interface {
		Create() AssignmentUoW
	}

	// UoW spans rosters and assignments.
	//
	// Example:
	//   uow := factory.Create()
	//   roster, err := uow.CompanyRepository().Get(ctx, companyID) // outside a transaction
	//
	//   err = uow.Begin(ctx)
	//   defer uow.Rollback(ctx)
	//   err = uow.AssignmentRepository().CreateIfCourierFree(ctx, a)
	//   err = uow.Commit(ctx)
	UoW interface {
		TxManager
		CompanyRepoFactory
		AssignmentRepoFactory
	}

	// UoWFactory creates units of work spanning both stores.
	UoWFactory interface {
		Create() UoW
	}
)
