package commands

import (
	"context"
	"errors"
	"fmt"
	"time"

	"dispatch/internal/core/domain/model/assignment"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/rider"
	"dispatch/internal/core/domain/services"
	"dispatch/internal/core/ports"
	"dispatch/internal/pkg/errs"
)

var (
	ErrCompanyNotFound    = errors.New("company not found")
	ErrAssignmentConflict = errors.New("rider was assigned to another delivery")
	ErrDispatchTimeout    = errors.New("dispatch timed out")
	// ErrDispatchInternal marks failures of the stores or of the handler itself, so a
	// validation error raised while rehydrating stored rows is not reported as bad input.
	ErrDispatchInternal = errors.New("dispatch internal failure")
)

// Dispatch outcomes reported to DispatchMetrics.
const (
	OutcomeAssigned      = "assigned"
	OutcomeInvalidInput  = "invalid_input"
	OutcomeNoCompany     = "company_not_found"
	OutcomeNoRiders      = "no_riders"
	OutcomeNoneAvailable = "none_available"
	OutcomeNoneInRange   = "none_in_range"
	OutcomeConflict      = "conflict"
	OutcomeTimeout       = "timeout"
	OutcomeError         = "error"
)

// DispatchMetrics receives dispatch observations.
type DispatchMetrics interface {
	ObserveDispatch(outcome string, elapsed time.Duration)
	ObserveCommitConflict()
}

type nopDispatchMetrics struct{}

func (nopDispatchMetrics) ObserveDispatch(string, time.Duration) {}
func (nopDispatchMetrics) ObserveCommitConflict()                {}

// DispatchSettings are the tunables of the matching engine.
type DispatchSettings struct {
	// MaxRadiusKm is the service radius; riders farther from the pickup are never chosen.
	MaxRadiusKm float64
	// AverageSpeedKmh is the constant speed used for the duration estimate.
	AverageSpeedKmh float64
	// Timeout bounds the whole request. Zero disables the deadline.
	Timeout time.Duration
	// MaxConcurrentLookups caps parallel location lookups. Zero means unlimited.
	MaxConcurrentLookups int
}

// DefaultDispatchSettings returns a 20 km radius, 30 km/h, a 10 s deadline and 16 parallel lookups.
func DefaultDispatchSettings() DispatchSettings {
	return DispatchSettings{
		MaxRadiusKm:          20,
		AverageSpeedKmh:      30,
		Timeout:              10 * time.Second,
		MaxConcurrentLookups: 16,
	}
}

// DispatchRiderResult is returned for a committed assignment.
type DispatchRiderResult struct {
	AssignmentID      kernel.UUID
	RiderNumber       string
	DistanceKm        float64
	Location          kernel.Location
	EstimatedDuration int
}

// DispatchRiderHandlerOption customizes a DispatchRiderCommandHandler.
type DispatchRiderHandlerOption func(*DispatchRiderCommandHandler)

// WithDispatchMetrics reports outcomes to m.
func WithDispatchMetrics(m DispatchMetrics) DispatchRiderHandlerOption {
	return func(h *DispatchRiderCommandHandler) {
		if m != nil {
			h.metrics = m
		}
	}
}

// WithDispatchClock overrides the clock used for assignment timestamps.
func WithDispatchClock(now func() time.Time) DispatchRiderHandlerOption {
	return func(h *DispatchRiderCommandHandler) {
		if now != nil {
			h.now = now
		}
	}
}

// DispatchRiderCommandHandler matches a delivery request to the nearest free rider and
// commits the assignment exactly once.
//
// Steps:
//  1. load the company roster
//  2. drop riders with an active assignment (pre-filter, not authoritative)
//  3. resolve every remaining rider's location concurrently
//  4. select the nearest rider within the service radius
//  5. write the assignment with a conditional insert that fails if the rider became busy;
//     on that failure the rider is dropped and step 4 is repeated over the remaining
//     candidates, each candidate being tried at most once
//
// Example:
//
//	handler := NewDispatchRiderCommandHandler(uowFactory, resolver, DefaultDispatchSettings())
//	result, err := handler.Handle(ctx, cmd)
//	switch {
//	case errors.Is(err, services.ErrNoAvailableRiders):
//	    // everyone is busy
//	case errors.Is(err, ErrAssignmentConflict):
//	    // lost every race, the caller may retry
//	}
type DispatchRiderCommandHandler struct {
	uowFactory UoWFactory
	resolver   ports.LocationResolver
	selector   services.MatchSelector
	settings   DispatchSettings
	metrics    DispatchMetrics
	now        func() time.Time
}

// NewDispatchRiderCommandHandler creates the dispatch handler.
func NewDispatchRiderCommandHandler(
	uowFactory UoWFactory,
	resolver ports.LocationResolver,
	settings DispatchSettings,
	opts ...DispatchRiderHandlerOption,
) DispatchRiderCommandHandler {
	h := DispatchRiderCommandHandler{
		uowFactory: uowFactory,
		resolver:   resolver,
		selector:   services.NewMatchSelector(),
		settings:   settings,
		metrics:    nopDispatchMetrics{},
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(&h)
	}
	return h
}

// Handle runs the dispatch. Nothing is written unless the result is returned without error.
func (h DispatchRiderCommandHandler) Handle(ctx context.Context, command DispatchRiderCommand) (DispatchRiderResult, error) {
	started := time.Now()
	result, err := h.handle(ctx, command)
	h.metrics.ObserveDispatch(OutcomeOf(err), time.Since(started))
	return result, err
}

func (h DispatchRiderCommandHandler) handle(ctx context.Context, command DispatchRiderCommand) (DispatchRiderResult, error) {
	if err := command.Validate(); err != nil {
		return DispatchRiderResult{}, err
	}

	if h.settings.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.settings.Timeout)
		defer cancel()
	}

	uow := h.uowFactory.Create()

	comp, err := uow.CompanyRepository().Get(ctx, command.CompanyID())
	if errors.Is(err, errs.ErrObjectNotFound) {
		return DispatchRiderResult{}, fmt.Errorf("%w: %s", ErrCompanyNotFound, command.CompanyID())
	}
	if err != nil {
		return DispatchRiderResult{}, internalFailure(ctx, "load roster", err)
	}

	free, err := services.NewAvailabilityFilter(uow.AssignmentRepository()).
		Available(ctx, comp.ID(), comp.RiderNumbers())
	if errors.Is(err, services.ErrNoRidersFound) || errors.Is(err, services.ErrNoAvailableRiders) {
		return DispatchRiderResult{}, err
	}
	if err != nil {
		return DispatchRiderResult{}, internalFailure(ctx, "query active assignments", err)
	}

	candidates, err := resolveCandidates(ctx, h.resolver, free, h.settings.MaxConcurrentLookups)
	if err != nil {
		return DispatchRiderResult{}, internalFailure(ctx, "resolve locations", err)
	}
	if err = ctx.Err(); err != nil {
		return DispatchRiderResult{}, deadlineAware(ctx, err)
	}

	return h.commitNearest(ctx, command, candidates)
}

// commitNearest selects and commits, dropping each candidate that loses a race.
func (h DispatchRiderCommandHandler) commitNearest(
	ctx context.Context,
	command DispatchRiderCommand,
	candidates []rider.Candidate,
) (DispatchRiderResult, error) {
	remaining := candidates
	conflicted := false

	for len(remaining) > 0 {
		match, err := h.selector.Select(command.Pickup(), remaining, h.settings.MaxRadiusKm)
		if errors.Is(err, services.ErrNoRidersInRange) && conflicted {
			return DispatchRiderResult{}, ErrAssignmentConflict
		}
		if err != nil {
			return DispatchRiderResult{}, err
		}

		if err = ctx.Err(); err != nil {
			return DispatchRiderResult{}, deadlineAware(ctx, err)
		}

		a, err := h.newAssignment(command, match)
		if err != nil {
			return DispatchRiderResult{}, internalFailure(ctx, "build assignment", err)
		}

		err = h.commit(ctx, a)
		if errors.Is(err, ports.ErrCourierIsBusy) {
			h.metrics.ObserveCommitConflict()
			conflicted = true
			remaining = withoutRider(remaining, match.Candidate.Number())
			continue
		}
		if err != nil {
			return DispatchRiderResult{}, internalFailure(ctx, "commit assignment", err)
		}

		return DispatchRiderResult{
			AssignmentID:      a.ID(),
			RiderNumber:       a.RiderNumber(),
			DistanceKm:        a.DistanceKm(),
			Location:          a.RiderLocation(),
			EstimatedDuration: a.EstimatedDuration(),
		}, nil
	}

	return DispatchRiderResult{}, ErrAssignmentConflict
}

func (h DispatchRiderCommandHandler) newAssignment(
	command DispatchRiderCommand,
	match services.Match,
) (*assignment.Assignment, error) {
	minutes, err := assignment.EstimateDurationMinutes(match.DistanceKm, h.settings.AverageSpeedKmh)
	if err != nil {
		return nil, err
	}

	return assignment.NewAssignment(assignment.NewAssignmentParams{
		ID:                kernel.NewUUID(),
		CompanyID:         command.CompanyID(),
		Pickup:            command.Pickup(),
		Dropoff:           command.Dropoff(),
		Description:       command.Description(),
		RiderNumber:       match.Candidate.Number(),
		RiderLocation:     match.Candidate.Location(),
		DistanceKm:        match.DistanceKm,
		EstimatedDuration: minutes,
		Now:               h.now(),
	})
}

func (h DispatchRiderCommandHandler) commit(ctx context.Context, a *assignment.Assignment) error {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	if err := uow.AssignmentRepository().CreateIfCourierFree(ctx, a); err != nil {
		return err
	}

	return uow.Commit(ctx)
}

func withoutRider(candidates []rider.Candidate, number string) []rider.Candidate {
	out := make([]rider.Candidate, 0, len(candidates))
	for _, c := range candidates {
		if c.Number() != number {
			out = append(out, c)
		}
	}
	return out
}

// deadlineAware replaces err with ErrDispatchTimeout once the request deadline has passed.
func deadlineAware(ctx context.Context, err error) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w: %w", ErrDispatchTimeout, err)
	}
	return err
}

func internalFailure(ctx context.Context, op string, err error) error {
	return deadlineAware(ctx, fmt.Errorf("%w: %s: %w", ErrDispatchInternal, op, err))
}

// OutcomeOf classifies a dispatch error for metrics and logs.
func OutcomeOf(err error) string {
	switch {
	case err == nil:
		return OutcomeAssigned
	case errors.Is(err, ErrDispatchTimeout):
		return OutcomeTimeout
	case errors.Is(err, ErrDispatchInternal):
		return OutcomeError
	case errors.Is(err, ErrDispatchRiderCommandIsNotConstructed),
		errors.Is(err, errs.ErrValueIsRequired),
		errors.Is(err, errs.ErrValueIsInvalid),
		errors.Is(err, errs.ErrValueIsOutOfRange):
		return OutcomeInvalidInput
	case errors.Is(err, ErrCompanyNotFound):
		return OutcomeNoCompany
	case errors.Is(err, services.ErrNoRidersFound):
		return OutcomeNoRiders
	case errors.Is(err, services.ErrNoAvailableRiders):
		return OutcomeNoneAvailable
	case errors.Is(err, services.ErrNoRidersInRange):
		return OutcomeNoneInRange
	case errors.Is(err, ErrAssignmentConflict):
		return OutcomeConflict
	default:
		return OutcomeError
	}
}
