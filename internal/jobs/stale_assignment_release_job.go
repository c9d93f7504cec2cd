package jobs

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"

	"dispatch/internal/core/application/usecases/commands"
	"dispatch/internal/pkg/logger"
)

const (
	DefaultReleaseSchedule = "@every 1m"
	releaseJobName         = "stale_assignment_release"
)

type releaseStaleAssignmentsUsecase interface {
	Handle(ctx context.Context, command commands.ReleaseStaleAssignmentsCommand) (int, error)
}

// Locker makes a tick exclusive across replicas.
type Locker interface {
	Acquire(ctx context.Context) (bool, error)
	Release(ctx context.Context) error
}

// ReleaseMetrics counts cancelled assignments.
type ReleaseMetrics interface {
	ObserveReleased(n int)
}

// StaleAssignmentReleaseOptions configure the job. TTL must be positive.
type StaleAssignmentReleaseOptions struct {
	TTL       time.Duration
	BatchSize int
	// Schedule is a robfig/cron spec; defaults to DefaultReleaseSchedule.
	Schedule string
	// Timeout bounds one tick; defaults to one minute.
	Timeout time.Duration
	Lock    Locker
	Metrics ReleaseMetrics
	Logger  *logger.Logger
}

// StaleAssignmentReleaseJob cancels assignments whose rider never started them.
type StaleAssignmentReleaseJob struct {
	handler  releaseStaleAssignmentsUsecase
	command  commands.ReleaseStaleAssignmentsCommand
	schedule string
	timeout  time.Duration
	lock     Locker
	metrics  ReleaseMetrics
	cron     *cron.Cron
	log      *logger.Logger
}

func NewStaleAssignmentReleaseJob(
	handler releaseStaleAssignmentsUsecase,
	opts StaleAssignmentReleaseOptions,
) (*StaleAssignmentReleaseJob, error) {
	batch := opts.BatchSize
	if batch == 0 {
		batch = commands.DefaultReleaseBatchSize
	}
	cmd, err := commands.NewReleaseStaleAssignmentsCommand(opts.TTL, batch)
	if err != nil {
		return nil, err
	}

	schedule := opts.Schedule
	if schedule == "" {
		schedule = DefaultReleaseSchedule
	}
	if _, err := cron.ParseStandard(schedule); err != nil {
		return nil, err
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = time.Minute
	}

	log := opts.Logger
	if log == nil {
		log = logger.Nop()
	}

	return &StaleAssignmentReleaseJob{
		handler:  handler,
		command:  cmd,
		schedule: schedule,
		timeout:  timeout,
		lock:     opts.Lock,
		metrics:  opts.Metrics,
		cron:     cron.New(),
		log:      log.Component(releaseJobName + "_job"),
	}, nil
}

func (j *StaleAssignmentReleaseJob) Name() string {
	return releaseJobName
}

// Start schedules the job. Overlapping ticks are skipped rather than queued.
func (j *StaleAssignmentReleaseJob) Start() error {
	wrapped := cron.NewChain(cron.SkipIfStillRunning(cron.DiscardLogger)).Then(cron.FuncJob(func() {
		ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
		defer cancel()
		_, _ = j.RunOnce(ctx)
	}))

	if _, err := j.cron.AddJob(j.schedule, wrapped); err != nil {
		return err
	}

	j.cron.Start()
	j.log.Info(j.log.WithFields(context.Background(), map[string]any{
		"schedule": j.schedule,
		"ttl":      j.command.TTL().String(),
	}), "stale assignment release job started")
	return nil
}

// Stop waits for a running tick to finish.
func (j *StaleAssignmentReleaseJob) Stop() {
	<-j.cron.Stop().Done()
	j.log.Info(context.Background(), "stale assignment release job stopped")
}

// RunOnce executes a single tick and returns how many assignments were cancelled.
// A tick that loses the lock to another replica releases nothing and is not an error.
func (j *StaleAssignmentReleaseJob) RunOnce(ctx context.Context) (int, error) {
	if j.lock != nil {
		ok, err := j.lock.Acquire(ctx)
		if err != nil {
			j.log.Error(ctx, "stale assignment release lock failed", err)
			return 0, err
		}
		if !ok {
			j.log.Debug(ctx, "stale assignment release held by another replica")
			return 0, nil
		}
		defer func() {
			if err := j.lock.Release(context.WithoutCancel(ctx)); err != nil {
				j.log.Warn(ctx, "stale assignment release unlock failed", err)
			}
		}()
	}

	released, err := j.handler.Handle(ctx, j.command)
	if released > 0 {
		if j.metrics != nil {
			j.metrics.ObserveReleased(released)
		}
		j.log.Info(j.log.WithField(ctx, "released", released), "stale assignments released")
	}
	if err != nil {
		j.log.Error(ctx, "stale assignment release job failed", err)
		return released, err
	}
	return released, nil
}
