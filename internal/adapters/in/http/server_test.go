package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dispatch/internal/core/application/usecases/commands"
	"dispatch/internal/core/application/usecases/queries"
	"dispatch/internal/core/domain/model/assignment"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/services"
	"dispatch/internal/core/ports"
	"dispatch/internal/pkg/errs"
	"dispatch/internal/pkg/metrics"
)

type dispatchFunc func(context.Context, commands.DispatchRiderCommand) (commands.DispatchRiderResult, error)

func (f dispatchFunc) Handle(ctx context.Context, c commands.DispatchRiderCommand) (commands.DispatchRiderResult, error) {
	return f(ctx, c)
}

type refreshFunc func(context.Context, commands.RefreshRiderLocationsCommand) ([]ports.RiderLocation, error)

func (f refreshFunc) Handle(ctx context.Context, c commands.RefreshRiderLocationsCommand) ([]ports.RiderLocation, error) {
	return f(ctx, c)
}

type advanceFunc func(context.Context, commands.AdvanceAssignmentCommand) (*assignment.Assignment, error)

func (f advanceFunc) Handle(ctx context.Context, c commands.AdvanceAssignmentCommand) (*assignment.Assignment, error) {
	return f(ctx, c)
}

type snapshotFunc func(context.Context, queries.GetRiderLocationsQuery) ([]queries.GetRiderLocationsQueryResponse, error)

func (f snapshotFunc) Handle(
	ctx context.Context,
	q queries.GetRiderLocationsQuery,
) ([]queries.GetRiderLocationsQueryResponse, error) {
	return f(ctx, q)
}

type deliveryFunc func(context.Context, queries.GetAssignmentQuery) (queries.GetAssignmentQueryResponse, error)

func (f deliveryFunc) Handle(ctx context.Context, q queries.GetAssignmentQuery) (queries.GetAssignmentQueryResponse, error) {
	return f(ctx, q)
}

func unexpected[T any](t *testing.T) func(context.Context, T) error {
	return func(context.Context, T) error {
		t.Helper()
		t.Fatalf("unexpected call")
		return nil
	}
}

type testEnv struct {
	handlers Handlers
	opts     Options
	metrics  *metrics.Metrics
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	return &testEnv{
		handlers: Handlers{
			DispatchRider: dispatchFunc(func(ctx context.Context, c commands.DispatchRiderCommand) (commands.DispatchRiderResult, error) {
				return commands.DispatchRiderResult{}, unexpected[commands.DispatchRiderCommand](t)(ctx, c)
			}),
			RefreshRiderLocations: refreshFunc(func(ctx context.Context, c commands.RefreshRiderLocationsCommand) ([]ports.RiderLocation, error) {
				return nil, unexpected[commands.RefreshRiderLocationsCommand](t)(ctx, c)
			}),
			GetRiderLocations: snapshotFunc(func(ctx context.Context, q queries.GetRiderLocationsQuery) ([]queries.GetRiderLocationsQueryResponse, error) {
				return nil, unexpected[queries.GetRiderLocationsQuery](t)(ctx, q)
			}),
			GetAssignment: deliveryFunc(func(ctx context.Context, q queries.GetAssignmentQuery) (queries.GetAssignmentQueryResponse, error) {
				return queries.GetAssignmentQueryResponse{}, unexpected[queries.GetAssignmentQuery](t)(ctx, q)
			}),
			AdvanceAssignment: advanceFunc(func(ctx context.Context, c commands.AdvanceAssignmentCommand) (*assignment.Assignment, error) {
				return nil, unexpected[commands.AdvanceAssignmentCommand](t)(ctx, c)
			}),
		},
		opts:    Options{RequireDropoff: true},
		metrics: metrics.New(),
	}
}

func (env *testEnv) router() *echo.Echo {
	return NewRouter(NewServer(env.handlers, env.opts), RouterOptions{
		Metrics:        env.metrics,
		MetricsHandler: env.metrics.Handler(),
	})
}

func (env *testEnv) do(t *testing.T, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	env.router().ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

const validDispatchBody = `{
	"pickup": {"latitude": 6.5244, "longitude": 3.3792},
	"dropoff": {"latitude": 6.455, "longitude": 3.3941},
	"description": "documents",
	"companyId": "acme"
}`

func mustLocation(t *testing.T, lat, lon float64) kernel.Location {
	t.Helper()
	loc, err := kernel.NewLocation(lat, lon)
	require.NoError(t, err)
	return loc
}

func TestFindNearestRider_Success(t *testing.T) {
	env := newTestEnv(t)
	id := kernel.NewUUID()
	riderLoc := mustLocation(t, 6.5514, 3.3792)

	env.handlers.DispatchRider = dispatchFunc(func(_ context.Context, c commands.DispatchRiderCommand) (commands.DispatchRiderResult, error) {
		assert.Equal(t, "acme", c.CompanyID())
		assert.Equal(t, "documents", c.Description())
		assert.InDelta(t, 6.5244, c.Pickup().Latitude(), 1e-9)
		require.NotNil(t, c.Dropoff())
		return commands.DispatchRiderResult{
			AssignmentID:      id,
			RiderNumber:       "+2348012345678",
			DistanceKm:        3.0,
			Location:          riderLoc,
			EstimatedDuration: 6,
		}, nil
	})

	rec := env.do(t, http.MethodPost, "/api/findNearestRider", validDispatchBody)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get(echo.HeaderXRequestID))

	body := decode[FindNearestRiderResponse](t, rec)
	assert.True(t, body.Success)
	assert.Equal(t, id.String(), body.DeliveryID)
	assert.Equal(t, "+2348012345678", body.Rider.Number)
	assert.Equal(t, "+2348012345678", body.Rider.PhoneNumber)
	assert.Equal(t, "Rider 5678", body.Rider.Name)
	assert.InDelta(t, 3.0, body.Rider.Distance, 1e-9)
	assert.Equal(t, 6, body.Rider.EstimatedDuration)
	assert.Equal(t, LocationResponse{Latitude: 6.5514, Longitude: 3.3792, Source: "measured"}, body.Rider.Location)
}

func TestFindNearestRider_InvalidInput(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "missing pickup", body: `{"dropoff":{"latitude":6.4,"longitude":3.3},"companyId":"acme"}`},
		{name: "missing pickup longitude", body: `{"pickup":{"latitude":6.4},"dropoff":{"latitude":6.4,"longitude":3.3},"companyId":"acme"}`},
		{name: "missing company", body: `{"pickup":{"latitude":6.4,"longitude":3.3},"dropoff":{"latitude":6.4,"longitude":3.3}}`},
		{name: "blank company", body: `{"pickup":{"latitude":6.4,"longitude":3.3},"dropoff":{"latitude":6.4,"longitude":3.3},"companyId":"  "}`},
		{name: "missing dropoff", body: `{"pickup":{"latitude":6.4,"longitude":3.3},"companyId":"acme"}`},
		{name: "latitude out of range", body: `{"pickup":{"latitude":91,"longitude":3.3},"dropoff":{"latitude":6.4,"longitude":3.3},"companyId":"acme"}`},
		{name: "malformed json", body: `{"pickup":`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)

			rec := env.do(t, http.MethodPost, "/api/findNearestRider", tt.body)

			require.Equal(t, http.StatusBadRequest, rec.Code)
			body := decode[ErrorResponse](t, rec)
			assert.False(t, body.Success)
			assert.Equal(t, msgDispatchInvalid, body.Message)
			assert.Empty(t, body.Error)
		})
	}
}

func TestFindNearestRider_OptionalDropoff(t *testing.T) {
	env := newTestEnv(t)
	env.opts.RequireDropoff = false
	env.handlers.DispatchRider = dispatchFunc(func(_ context.Context, c commands.DispatchRiderCommand) (commands.DispatchRiderResult, error) {
		assert.Nil(t, c.Dropoff())
		return commands.DispatchRiderResult{
			AssignmentID: kernel.NewUUID(),
			RiderNumber:  "0801",
			Location:     mustLocation(t, 6.5, 3.3),
		}, nil
	})

	rec := env.do(t, http.MethodPost, "/api/findNearestRider",
		`{"pickup":{"latitude":6.4,"longitude":3.3},"companyId":"acme"}`)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func TestFindNearestRider_ErrorMapping(t *testing.T) {
	tests := []struct {
		err     error
		status  int
		message string
	}{
		{err: commands.ErrCompanyNotFound, status: http.StatusNotFound, message: msgCompanyNotFound},
		{err: services.ErrNoRidersFound, status: http.StatusNotFound, message: msgNoRidersFound},
		{err: services.ErrNoAvailableRiders, status: http.StatusNotFound, message: msgNoAvailableRiders},
		{err: fmt.Errorf("select: %w", services.ErrNoRidersInRange), status: http.StatusNotFound, message: msgNoRidersInRange},
		{err: commands.ErrAssignmentConflict, status: http.StatusConflict, message: msgAssignmentConflict},
		{err: errs.NewVersionIsInvalidErrorWithCause("version"), status: http.StatusConflict, message: msgAssignmentConflict},
		{err: fmt.Errorf("%w: %w", commands.ErrDispatchTimeout, context.DeadlineExceeded), status: http.StatusGatewayTimeout, message: msgDispatchTimeout},
		{err: errors.New("connection reset"), status: http.StatusInternalServerError, message: msgDispatchInternal},
		{
			err:     fmt.Errorf("%w: query active assignments: %w", commands.ErrDispatchInternal, errs.NewValueIsOutOfRangeError("latitude", 91.0, -90.0, 90.0)),
			status:  http.StatusInternalServerError,
			message: msgDispatchInternal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.message, func(t *testing.T) {
			env := newTestEnv(t)
			env.handlers.DispatchRider = dispatchFunc(func(context.Context, commands.DispatchRiderCommand) (commands.DispatchRiderResult, error) {
				return commands.DispatchRiderResult{}, tt.err
			})

			rec := env.do(t, http.MethodPost, "/api/findNearestRider", validDispatchBody)

			require.Equal(t, tt.status, rec.Code)
			body := decode[ErrorResponse](t, rec)
			assert.False(t, body.Success)
			assert.Equal(t, tt.message, body.Message)
			assert.Empty(t, body.Error)
		})
	}
}

func TestFindNearestRider_DevelopmentExposesCause(t *testing.T) {
	env := newTestEnv(t)
	env.opts.Development = true
	env.handlers.DispatchRider = dispatchFunc(func(context.Context, commands.DispatchRiderCommand) (commands.DispatchRiderResult, error) {
		return commands.DispatchRiderResult{}, errors.New("connection reset")
	})

	rec := env.do(t, http.MethodPost, "/api/findNearestRider", validDispatchBody)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	body := decode[ErrorResponse](t, rec)
	assert.Equal(t, msgDispatchInternal, body.Message)
	assert.Equal(t, "connection reset", body.Error)
}

func TestGetRiderLocations(t *testing.T) {
	env := newTestEnv(t)
	at := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	simulated, err := kernel.NewSimulatedLocation(6.52, 3.38)
	require.NoError(t, err)

	env.handlers.RefreshRiderLocations = refreshFunc(func(_ context.Context, c commands.RefreshRiderLocationsCommand) ([]ports.RiderLocation, error) {
		assert.Equal(t, "acme", c.CompanyID())
		assert.Equal(t, []string{"A", "B"}, c.RiderNumbers())
		return []ports.RiderLocation{
			{RiderNumber: "A", Location: mustLocation(t, 6.55, 3.38), LastUpdated: at},
			{RiderNumber: "B", Location: simulated, LastUpdated: at},
		}, nil
	})

	rec := env.do(t, http.MethodPost, "/api/getRiderLocations", `{"companyId":"acme","riderNumbers":["A","B"]}`)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decode[RiderLocationsResponse](t, rec)
	assert.True(t, body.Success)
	require.Len(t, body.Locations, 2)
	assert.Equal(t, "A", body.Locations[0].RiderNumber)
	assert.Equal(t, "measured", body.Locations[0].Location.Source)
	assert.Equal(t, "simulated", body.Locations[1].Location.Source)
	assert.True(t, body.Locations[0].Timestamp.Equal(at))
}

func TestGetRiderLocations_Errors(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		err     error
		status  int
		message string
	}{
		{name: "missing company", body: `{"riderNumbers":["A"]}`, status: http.StatusBadRequest, message: msgLocationsInvalid},
		{name: "empty riders", body: `{"companyId":"acme","riderNumbers":[]}`, status: http.StatusBadRequest, message: msgLocationsInvalid},
		{name: "blank riders", body: `{"companyId":"acme","riderNumbers":[" "]}`, status: http.StatusBadRequest, message: msgLocationsInvalid},
		{
			name: "unknown company", body: `{"companyId":"acme","riderNumbers":["A"]}`,
			err: commands.ErrCompanyNotFound, status: http.StatusNotFound, message: msgCompanyNotFound,
		},
		{
			name: "store failure", body: `{"companyId":"acme","riderNumbers":["A"]}`,
			err: errors.New("redis down"), status: http.StatusInternalServerError, message: msgLocationsInternal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			if tt.err != nil {
				env.handlers.RefreshRiderLocations = refreshFunc(func(context.Context, commands.RefreshRiderLocationsCommand) ([]ports.RiderLocation, error) {
					return nil, tt.err
				})
			}

			rec := env.do(t, http.MethodPost, "/api/getRiderLocations", tt.body)

			require.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.message, decode[ErrorResponse](t, rec).Message)
		})
	}
}

func TestGetCompanyRiderLocations(t *testing.T) {
	env := newTestEnv(t)
	env.handlers.GetRiderLocations = snapshotFunc(func(_ context.Context, q queries.GetRiderLocationsQuery) ([]queries.GetRiderLocationsQueryResponse, error) {
		assert.Equal(t, "acme", q.CompanyID())
		return []queries.GetRiderLocationsQueryResponse{
			{RiderNumber: "A", Location: queries.Point{Latitude: 6.5, Longitude: 3.3}, Source: "measured"},
		}, nil
	})

	rec := env.do(t, http.MethodGet, "/api/companies/acme/rider-locations", "")

	require.Equal(t, http.StatusOK, rec.Code)
	body := decode[RiderLocationsResponse](t, rec)
	require.Len(t, body.Locations, 1)
	assert.Equal(t, LocationResponse{Latitude: 6.5, Longitude: 3.3, Source: "measured"}, body.Locations[0].Location)
}

func TestGetCompanyRiderLocations_EmptySnapshot(t *testing.T) {
	env := newTestEnv(t)
	env.handlers.GetRiderLocations = snapshotFunc(func(context.Context, queries.GetRiderLocationsQuery) ([]queries.GetRiderLocationsQueryResponse, error) {
		return []queries.GetRiderLocationsQueryResponse{}, nil
	})

	rec := env.do(t, http.MethodGet, "/api/companies/acme/rider-locations", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success":true,"locations":[]}`, rec.Body.String())
}

func TestGetDelivery(t *testing.T) {
	env := newTestEnv(t)
	id := kernel.NewUUID()
	env.handlers.GetAssignment = deliveryFunc(func(_ context.Context, q queries.GetAssignmentQuery) (queries.GetAssignmentQueryResponse, error) {
		assert.True(t, q.AssignmentID().IsEqual(id))
		return queries.GetAssignmentQueryResponse{
			ID:            id.String(),
			CompanyID:     "acme",
			Status:        "assigned",
			Pickup:        queries.Point{Latitude: 6.5244, Longitude: 3.3792},
			RiderNumber:   "A",
			RiderLocation: queries.Point{Latitude: 6.55, Longitude: 3.38},
			RiderSource:   "simulated",
			DistanceKm:    3,
		}, nil
	})

	rec := env.do(t, http.MethodGet, "/api/v1/deliveries/"+id.String(), "")

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decode[DeliveryEnvelope](t, rec)
	assert.Equal(t, id.String(), body.Delivery.ID)
	assert.Equal(t, "assigned", body.Delivery.Status)
	assert.Nil(t, body.Delivery.Dropoff)
	assert.Equal(t, "simulated", body.Delivery.RiderLocation.Source)
}

func TestGetDelivery_Errors(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodGet, "/api/v1/deliveries/not-a-uuid", "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, msgDeliveryInvalid, decode[ErrorResponse](t, rec).Message)

	env.handlers.GetAssignment = deliveryFunc(func(_ context.Context, q queries.GetAssignmentQuery) (queries.GetAssignmentQueryResponse, error) {
		return queries.GetAssignmentQueryResponse{}, errs.NewObjectNotFoundError("deliveryId", q.AssignmentID().String())
	})
	rec = env.do(t, http.MethodGet, "/api/v1/deliveries/"+kernel.NewUUID().String(), "")
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, msgDeliveryNotFound, decode[ErrorResponse](t, rec).Message)
}

func newAssigned(t *testing.T) *assignment.Assignment {
	t.Helper()
	dropoff := mustLocation(t, 6.455, 3.3941)
	a, err := assignment.NewAssignment(assignment.NewAssignmentParams{
		ID:                kernel.NewUUID(),
		CompanyID:         "acme",
		Pickup:            mustLocation(t, 6.5244, 3.3792),
		Dropoff:           &dropoff,
		RiderNumber:       "A",
		RiderLocation:     mustLocation(t, 6.5514, 3.3792),
		DistanceKm:        3,
		EstimatedDuration: 6,
		Now:               time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	return a
}

func TestAdvanceDelivery(t *testing.T) {
	env := newTestEnv(t)
	a := newAssigned(t)
	env.handlers.AdvanceAssignment = advanceFunc(func(_ context.Context, c commands.AdvanceAssignmentCommand) (*assignment.Assignment, error) {
		assert.True(t, c.AssignmentID().IsEqual(a.ID()))
		assert.Equal(t, commands.ActionStart, c.Action())
		require.NoError(t, a.Start(time.Date(2026, 3, 1, 10, 5, 0, 0, time.UTC)))
		return a, nil
	})

	rec := env.do(t, http.MethodPost, "/api/v1/deliveries/"+a.ID().String()+"/start", "")

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decode[DeliveryEnvelope](t, rec)
	assert.Equal(t, "in_progress", body.Delivery.Status)
	require.NotNil(t, body.Delivery.Dropoff)
	assert.Empty(t, body.Delivery.Pickup.Source)
	assert.Equal(t, "measured", body.Delivery.RiderLocation.Source)
}

func TestAdvanceDelivery_Errors(t *testing.T) {
	id := kernel.NewUUID().String()
	tests := []struct {
		name    string
		target  string
		err     error
		status  int
		message string
	}{
		{name: "unknown action", target: "/api/v1/deliveries/" + id + "/teleport", status: http.StatusBadRequest, message: msgDeliveryInvalid},
		{name: "bad id", target: "/api/v1/deliveries/xyz/start", status: http.StatusBadRequest, message: msgDeliveryInvalid},
		{
			name: "terminal", target: "/api/v1/deliveries/" + id + "/start",
			err: fmt.Errorf("start: %w", assignment.ErrInvalidStatusTransition), status: http.StatusConflict, message: msgDeliveryTransition,
		},
		{
			name: "concurrent update", target: "/api/v1/deliveries/" + id + "/cancel",
			err: errs.NewVersionIsInvalidErrorWithCause("version"), status: http.StatusConflict, message: msgDeliveryModified,
		},
		{
			name: "missing", target: "/api/v1/deliveries/" + id + "/complete",
			err: errs.NewObjectNotFoundError("deliveryId", id), status: http.StatusNotFound, message: msgDeliveryNotFound,
		},
		{
			name: "store failure", target: "/api/v1/deliveries/" + id + "/complete",
			err: errors.New("disk full"), status: http.StatusInternalServerError, message: msgDeliveryInternal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			if tt.err != nil {
				env.handlers.AdvanceAssignment = advanceFunc(func(context.Context, commands.AdvanceAssignmentCommand) (*assignment.Assignment, error) {
					return nil, tt.err
				})
			}

			rec := env.do(t, http.MethodPost, tt.target, "")

			require.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.message, decode[ErrorResponse](t, rec).Message)
		})
	}
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t)
	for _, path := range []string{"/health", "/api/health"} {
		rec := env.do(t, http.MethodGet, path, "")
		require.Equal(t, http.StatusOK, rec.Code)
		body := decode[HealthResponse](t, rec)
		assert.Equal(t, "OK", body.Status)
		assert.False(t, body.Timestamp.IsZero())
	}
}

func TestMetricsEndpointAndMiddleware(t *testing.T) {
	env := newTestEnv(t)
	router := env.router()

	for range 2 {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/deliveries/xyz", nil))
		require.Equal(t, http.StatusBadRequest, rec.Code)
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(),
		`http_requests_total{method="GET",path="/api/v1/deliveries/:id",status="400"} 2`)
}
