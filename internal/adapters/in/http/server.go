// Package http is the inbound REST adapter: request binding, validation, error mapping
// and the echo router.
package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"dispatch/internal/core/application/usecases/commands"
	"dispatch/internal/core/application/usecases/queries"
	"dispatch/internal/pkg/logger"
)

// Handlers are the application use cases served over HTTP.
type Handlers struct {
	DispatchRider         dispatchRiderUsecase
	RefreshRiderLocations refreshRiderLocationsUsecase
	GetRiderLocations     getRiderLocationsUsecase
	GetAssignment         getAssignmentUsecase
	AdvanceAssignment     advanceAssignmentUsecase
}

// Options tune request handling.
type Options struct {
	// RequireDropoff rejects dispatch requests without a dropoff.
	RequireDropoff bool
	// Development adds the underlying error text to failed responses.
	Development bool
	Logger      *logger.Logger
}

// Server coordinates between HTTP handlers and application use cases.
type Server struct {
	handlers       Handlers
	requireDropoff bool
	development    bool
	log            *logger.Logger
	now            func() time.Time
}

func NewServer(handlers Handlers, opts Options) *Server {
	log := opts.Logger
	if log == nil {
		log = logger.Nop()
	}
	return &Server{
		handlers:       handlers,
		requireDropoff: opts.RequireDropoff,
		development:    opts.Development,
		log:            log.Component("http"),
		now:            time.Now,
	}
}

// FindNearestRider handles POST /api/findNearestRider.
// @Summary Dispatch the nearest rider
// @Description Picks the nearest free rider of the company within the service radius and stores the delivery.
// @Tags dispatch
// @Accept json
// @Produce json
// @Param request body FindNearestRiderRequest true "Delivery request"
// @Success 200 {object} FindNearestRiderResponse
// @Failure 400 {object} ErrorResponse "invalid input"
// @Failure 404 {object} ErrorResponse "company, riders or match not found"
// @Failure 409 {object} ErrorResponse "rider taken by a concurrent request"
// @Failure 500 {object} ErrorResponse "internal error"
// @Failure 504 {object} ErrorResponse "dispatch timed out"
// @Router /api/findNearestRider [post]
func (s *Server) FindNearestRider(c echo.Context) error {
	ctx := s.requestContext(c)

	var req FindNearestRiderRequest
	if err := s.bind(c, &req); err != nil {
		return s.fail(ctx, c, httpError{http.StatusBadRequest, msgDispatchInvalid, err})
	}
	ctx = s.log.WithField(ctx, "company_id", req.CompanyID)

	cmd, err := commands.NewDispatchRiderCommand(req.toInput(s.requireDropoff))
	if err != nil {
		return s.fail(ctx, c, dispatchError(err))
	}

	result, err := s.handlers.DispatchRider.Handle(ctx, cmd)
	if err != nil {
		s.log.Info(s.log.WithField(ctx, "outcome", commands.OutcomeOf(err)), "dispatch failed")
		return s.fail(ctx, c, dispatchError(err))
	}

	s.log.Info(s.log.WithFields(ctx, map[string]any{
		"outcome":      commands.OutcomeAssigned,
		"delivery_id":  result.AssignmentID.String(),
		"rider_number": result.RiderNumber,
		"distance_km":  result.DistanceKm,
		"source":       string(result.Location.Provenance()),
	}), "rider dispatched")

	return c.JSON(http.StatusOK, findNearestRiderResponse(result))
}

// GetRiderLocations handles POST /api/getRiderLocations.
// @Summary Refresh rider locations
// @Description Resolves the current location of the listed riders and stores the snapshot.
// @Tags riders
// @Accept json
// @Produce json
// @Param request body RiderLocationsRequest true "Riders to locate"
// @Success 200 {object} RiderLocationsResponse
// @Failure 400 {object} ErrorResponse "invalid input"
// @Failure 404 {object} ErrorResponse "company not found"
// @Failure 500 {object} ErrorResponse "internal error"
// @Router /api/getRiderLocations [post]
func (s *Server) GetRiderLocations(c echo.Context) error {
	ctx := s.requestContext(c)

	var req RiderLocationsRequest
	if err := s.bind(c, &req); err != nil {
		return s.fail(ctx, c, httpError{http.StatusBadRequest, msgLocationsInvalid, err})
	}
	ctx = s.log.WithField(ctx, "company_id", req.CompanyID)

	cmd, err := commands.NewRefreshRiderLocationsCommand(req.CompanyID, req.RiderNumbers)
	if err != nil {
		return s.fail(ctx, c, riderLocationsError(err))
	}

	locations, err := s.handlers.RefreshRiderLocations.Handle(ctx, cmd)
	if err != nil {
		return s.fail(ctx, c, riderLocationsError(err))
	}
	return c.JSON(http.StatusOK, refreshedLocationsResponse(locations))
}

// GetCompanyRiderLocations handles GET /api/companies/{companyId}/rider-locations.
// @Summary Last known rider locations
// @Description Returns the stored location snapshot of a company, sorted by rider number.
// @Tags riders
// @Produce json
// @Param companyId path string true "Company ID"
// @Success 200 {object} RiderLocationsResponse
// @Failure 400 {object} ErrorResponse "invalid input"
// @Failure 500 {object} ErrorResponse "internal error"
// @Router /api/companies/{companyId}/rider-locations [get]
func (s *Server) GetCompanyRiderLocations(c echo.Context) error {
	ctx := s.requestContext(c)

	query, err := queries.NewGetRiderLocationsQuery(c.Param("companyId"))
	if err != nil {
		return s.fail(ctx, c, riderLocationsError(err))
	}

	locations, err := s.handlers.GetRiderLocations.Handle(ctx, query)
	if err != nil {
		return s.fail(ctx, c, riderLocationsError(err))
	}
	return c.JSON(http.StatusOK, snapshotResponse(locations))
}

// GetDelivery handles GET /api/v1/deliveries/{id}.
// @Summary Get a delivery
// @Tags deliveries
// @Produce json
// @Param id path string true "Delivery ID"
// @Success 200 {object} DeliveryEnvelope
// @Failure 400 {object} ErrorResponse "invalid id"
// @Failure 404 {object} ErrorResponse "delivery not found"
// @Failure 500 {object} ErrorResponse "internal error"
// @Router /api/v1/deliveries/{id} [get]
func (s *Server) GetDelivery(c echo.Context) error {
	ctx := s.requestContext(c)

	query, err := queries.NewGetAssignmentQuery(c.Param("id"))
	if err != nil {
		return s.fail(ctx, c, deliveryError(err, msgDeliveryFetchInternal))
	}

	delivery, err := s.handlers.GetAssignment.Handle(ctx, query)
	if err != nil {
		return s.fail(ctx, c, deliveryError(err, msgDeliveryFetchInternal))
	}
	return c.JSON(http.StatusOK, DeliveryEnvelope{Success: true, Delivery: deliveryFromQuery(delivery)})
}

// AdvanceDelivery handles POST /api/v1/deliveries/{id}/{action}.
// @Summary Move a delivery through its lifecycle
// @Description action is one of start, complete or cancel. Completing or cancelling frees the rider.
// @Tags deliveries
// @Produce json
// @Param id path string true "Delivery ID"
// @Param action path string true "start | complete | cancel"
// @Success 200 {object} DeliveryEnvelope
// @Failure 400 {object} ErrorResponse "invalid id or action"
// @Failure 404 {object} ErrorResponse "delivery not found"
// @Failure 409 {object} ErrorResponse "transition not allowed or concurrent update"
// @Failure 500 {object} ErrorResponse "internal error"
// @Router /api/v1/deliveries/{id}/{action} [post]
func (s *Server) AdvanceDelivery(c echo.Context) error {
	ctx := s.log.WithFields(s.requestContext(c), map[string]any{
		"delivery_id": c.Param("id"),
		"action":      c.Param("action"),
	})

	cmd, err := commands.NewAdvanceAssignmentCommand(c.Param("id"), c.Param("action"))
	if err != nil {
		return s.fail(ctx, c, deliveryError(err, msgDeliveryInternal))
	}

	a, err := s.handlers.AdvanceAssignment.Handle(ctx, cmd)
	if err != nil {
		return s.fail(ctx, c, deliveryError(err, msgDeliveryInternal))
	}

	s.log.Info(s.log.WithField(ctx, "status", a.Status().String()), "delivery updated")
	return c.JSON(http.StatusOK, DeliveryEnvelope{Success: true, Delivery: deliveryFromAggregate(a)})
}

// Health handles GET /health and GET /api/health.
// @Summary Liveness probe
// @Tags health
// @Produce json
// @Success 200 {object} HealthResponse
// @Router /api/health [get]
func (s *Server) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, HealthResponse{Status: "OK", Timestamp: s.now().UTC()})
}

func (s *Server) requestContext(c echo.Context) context.Context {
	return s.log.WithRequestID(c.Request().Context(), c.Response().Header().Get(echo.HeaderXRequestID))
}

func (s *Server) bind(c echo.Context, dst any) error {
	if err := c.Bind(dst); err != nil {
		return err
	}
	return c.Validate(dst)
}

// fail writes the error envelope. Internal errors are logged with a stack; client errors at warn.
func (s *Server) fail(ctx context.Context, c echo.Context, he httpError) error {
	if he.status >= http.StatusInternalServerError && !errors.Is(he.cause, commands.ErrDispatchTimeout) {
		s.log.Error(ctx, he.message, he.cause)
	} else {
		s.log.Warn(ctx, he.message, he.cause)
	}

	body := ErrorResponse{Success: false, Message: he.message}
	if s.development && he.cause != nil {
		body.Error = he.cause.Error()
	}
	return c.JSON(he.status, body)
}
