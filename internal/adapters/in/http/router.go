package http

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "dispatch/internal/adapters/in/http/docs" // registers the OpenAPI document
	"dispatch/internal/pkg/logger"
)

// RouterOptions configure NewRouter.
type RouterOptions struct {
	Logger  *logger.Logger
	Metrics HTTPMetrics
	// MetricsHandler is mounted at /metrics when set.
	MetricsHandler http.Handler
	AllowOrigins   []string
	// BodyLimit is an echo size string such as "1M".
	BodyLimit string
}

// NewRouter builds the echo instance with middleware and every route mounted.
func NewRouter(s *Server, opts RouterOptions) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Logger.SetLevel(log.OFF)
	e.Validator = NewRequestValidator()

	appLog := opts.Logger
	if appLog == nil {
		appLog = logger.Nop()
	}
	origins := opts.AllowOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	bodyLimit := opts.BodyLimit
	if bodyLimit == "" {
		bodyLimit = "1M"
	}

	e.Use(middleware.RequestID())
	e.Use(requestLogger(appLog.Component("access").Zerolog()))
	e.Use(middleware.Recover())
	e.Use(middleware.BodyLimit(bodyLimit))
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{AllowOrigins: origins}))
	if opts.Metrics != nil {
		e.Use(observeRequests(opts.Metrics))
	}

	e.GET("/health", s.Health)
	e.GET("/swagger/*", echoSwagger.WrapHandler)
	if opts.MetricsHandler != nil {
		e.GET("/metrics", echo.WrapHandler(opts.MetricsHandler))
	}

	api := e.Group("/api")
	api.GET("/health", s.Health)
	api.POST("/findNearestRider", s.FindNearestRider)
	api.POST("/getRiderLocations", s.GetRiderLocations)
	api.GET("/companies/:companyId/rider-locations", s.GetCompanyRiderLocations)

	v1 := api.Group("/v1")
	v1.GET("/deliveries/:id", s.GetDelivery)
	v1.POST("/deliveries/:id/:action", s.AdvanceDelivery)

	return e
}
