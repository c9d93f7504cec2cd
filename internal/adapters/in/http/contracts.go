package http

import (
	"context"
	"time"

	"dispatch/internal/core/application/usecases/commands"
	"dispatch/internal/core/application/usecases/queries"
	"dispatch/internal/core/domain/model/assignment"
	"dispatch/internal/core/ports"
)

type dispatchRiderUsecase interface {
	Handle(ctx context.Context, command commands.DispatchRiderCommand) (commands.DispatchRiderResult, error)
}

type refreshRiderLocationsUsecase interface {
	Handle(ctx context.Context, command commands.RefreshRiderLocationsCommand) ([]ports.RiderLocation, error)
}

type advanceAssignmentUsecase interface {
	Handle(ctx context.Context, command commands.AdvanceAssignmentCommand) (*assignment.Assignment, error)
}

type getRiderLocationsUsecase interface {
	Handle(ctx context.Context, query queries.GetRiderLocationsQuery) ([]queries.GetRiderLocationsQueryResponse, error)
}

type getAssignmentUsecase interface {
	Handle(ctx context.Context, query queries.GetAssignmentQuery) (queries.GetAssignmentQueryResponse, error)
}

// HTTPMetrics records one observation per served request.
type HTTPMetrics interface {
	ObserveHTTP(method, path string, status int, elapsed time.Duration)
}
