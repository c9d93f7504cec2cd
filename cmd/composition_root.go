package cmd

import (
	"fmt"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	httpin "dispatch/internal/adapters/in/http"
	"dispatch/internal/adapters/out/postgres"
	"dispatch/internal/adapters/out/redis"
	"dispatch/internal/core/application/usecases/commands"
	"dispatch/internal/core/application/usecases/queries"
	"dispatch/internal/core/ports"
	"dispatch/internal/jobs"
	"dispatch/internal/pkg/logger"
	"dispatch/internal/pkg/metrics"
)

// Dependencies are the adapters built in main before the composition root.
type Dependencies struct {
	Resolver ports.LocationResolver
	// Redis may be nil; snapshots are then not kept and jobs run unlocked.
	Redis    *redis.Client
	Metrics  *metrics.Metrics
	Logger   *logger.Logger
}

type CompositionRoot struct {
	cfg        Config
	gormDB     *gorm.DB
	uowFactory *postgres.GormUnitOfWorkFactory
	resolver   ports.LocationResolver
	snapshots  ports.LocationSnapshotStore
	redis      *redis.Client
	metrics    *metrics.Metrics
	log        *logger.Logger
}

func NewCompositionRoot(cfg Config, gormDB *gorm.DB, deps Dependencies) (CompositionRoot, error) {
	log := deps.Logger
	if log == nil {
		log = logger.Nop()
	}
	m := deps.Metrics
	if m == nil {
		m = metrics.New()
	}

	var snapshots ports.LocationSnapshotStore = redis.NopSnapshotStore{}
	if deps.Redis != nil {
		store, err := redis.NewSnapshotStore(deps.Redis, cfg.Redis.SnapshotTTL)
		if err != nil {
			return CompositionRoot{}, fmt.Errorf("snapshot store: %w", err)
		}
		snapshots = store
	}

	return CompositionRoot{
		cfg:        cfg,
		gormDB:     gormDB,
		uowFactory: postgres.NewGormUnitOfWorkFactory(gormDB),
		resolver:   deps.Resolver,
		snapshots:  snapshots,
		redis:      deps.Redis,
		metrics:    m,
		log:        log,
	}, nil
}

func (c *CompositionRoot) dispatchSettings() commands.DispatchSettings {
	return commands.DispatchSettings{
		MaxRadiusKm:          c.cfg.Dispatch.MaxRadiusKm,
		AverageSpeedKmh:      c.cfg.Dispatch.AverageSpeedKmh,
		Timeout:              c.cfg.Dispatch.RequestTimeout,
		MaxConcurrentLookups: c.cfg.Dispatch.MaxConcurrentLookups,
	}
}

func (c *CompositionRoot) uow() commands.UoWFactory {
	return FuncUoWFactory(func() commands.UoW {
		return c.uowFactory.Create()
	})
}

func (c *CompositionRoot) assignmentUoW() commands.AssignmentUoWFactory {
	return FuncAssignmentUoWFactory(func() commands.AssignmentUoW {
		return c.uowFactory.Create()
	})
}

func (c *CompositionRoot) CreateDispatchRiderCommandHandler() commands.DispatchRiderCommandHandler {
	return commands.NewDispatchRiderCommandHandler(
		c.uow(),
		c.resolver,
		c.dispatchSettings(),
		commands.WithDispatchMetrics(c.metrics),
	)
}

func (c *CompositionRoot) CreateRefreshRiderLocationsCommandHandler() commands.RefreshRiderLocationsCommandHandler {
	return commands.NewRefreshRiderLocationsCommandHandler(
		c.uow(),
		c.resolver,
		c.snapshots,
		c.cfg.Dispatch.MaxConcurrentLookups,
	)
}

func (c *CompositionRoot) CreateAdvanceAssignmentCommandHandler() commands.AdvanceAssignmentCommandHandler {
	return commands.NewAdvanceAssignmentCommandHandler(c.assignmentUoW())
}

func (c *CompositionRoot) CreateReleaseStaleAssignmentsCommandHandler() commands.ReleaseStaleAssignmentsCommandHandler {
	return commands.NewReleaseStaleAssignmentsCommandHandler(c.assignmentUoW())
}

func (c *CompositionRoot) CreateGetAssignmentQueryHandler() queries.GetAssignmentQueryHandler {
	return queries.NewGetAssignmentQueryHandler(c.gormDB)
}

func (c *CompositionRoot) CreateGetRiderLocationsQueryHandler() queries.GetRiderLocationsQueryHandler {
	return queries.NewGetRiderLocationsQueryHandler(c.snapshots)
}

func (c *CompositionRoot) CreateHTTPServer() *httpin.Server {
	return httpin.NewServer(httpin.Handlers{
		DispatchRider:         c.CreateDispatchRiderCommandHandler(),
		RefreshRiderLocations: c.CreateRefreshRiderLocationsCommandHandler(),
		GetRiderLocations:     c.CreateGetRiderLocationsQueryHandler(),
		GetAssignment:         c.CreateGetAssignmentQueryHandler(),
		AdvanceAssignment:     c.CreateAdvanceAssignmentCommandHandler(),
	}, httpin.Options{
		RequireDropoff: c.cfg.Dispatch.RequireDropoff,
		Development:    c.cfg.App.IsDev(),
		Logger:         c.log,
	})
}

func (c *CompositionRoot) CreateRouter() *echo.Echo {
	return httpin.NewRouter(c.CreateHTTPServer(), httpin.RouterOptions{
		Logger:         c.log,
		Metrics:        c.metrics,
		MetricsHandler: c.metrics.Handler(),
		AllowOrigins:   c.cfg.App.AllowOrigins,
	})
}

// CreateJobManager returns the background jobs; the release job is left out when
// STALE_ASSIGNMENT_TTL is zero.
func (c *CompositionRoot) CreateJobManager() (*jobs.JobManager, error) {
	if c.cfg.Jobs.StaleAssignmentTTL <= 0 {
		return jobs.NewJobManager(), nil
	}

	opts := jobs.StaleAssignmentReleaseOptions{
		TTL:       c.cfg.Jobs.StaleAssignmentTTL,
		BatchSize: c.cfg.Jobs.StaleAssignmentBatch,
		Schedule:  c.cfg.Jobs.StaleAssignmentSchedule,
		Metrics:   c.metrics,
		Logger:    c.log,
	}
	if c.redis != nil {
		lock, err := redis.NewLock(c.redis, c.redis.JobLockKey("stale_assignment_release"), 0)
		if err != nil {
			return nil, err
		}
		opts.Lock = lock
	}

	release, err := jobs.NewStaleAssignmentReleaseJob(c.CreateReleaseStaleAssignmentsCommandHandler(), opts)
	if err != nil {
		return nil, fmt.Errorf("stale assignment job: %w", err)
	}
	return jobs.NewJobManager(release), nil
}

type FuncUoWFactory func() commands.UoW

func (f FuncUoWFactory) Create() commands.UoW {
	return f()
}

type FuncAssignmentUoWFactory func() commands.AssignmentUoW

func (f FuncAssignmentUoWFactory) Create() commands.AssignmentUoW {
	return f()
}
