package background

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"kitchenstock/internal/config"
	"kitchenstock/internal/jobs"
	"kitchenstock/internal/metrics"
	"kitchenstock/internal/persistence"

	"github.com/go-co-op/gocron/v2"
	"github.com/rs/zerolog"
)

const (
	JobInventoryPoll  = "inventory-poll"
	JobOutboxDrain    = "outbox-drain"
	JobChecklistDaily = "checklist-rollover"
	JobLowStockDigest = "low-stock-digest"
)

// Refresher reloads every loaded tenant from the remote store.
type Refresher interface {
	RefreshAll(ctx context.Context) error
}

// Drainer replays the persistence outbox.
type Drainer interface {
	Drain(ctx context.Context) (persistence.DrainStats, error)
}

// ChecklistOpener creates today's checklists for all tenants.
type ChecklistOpener interface {
	Today(ctx context.Context) (int, error)
}

// DigestSender sends the daily low stock digests.
type DigestSender interface {
	SendDigests(ctx context.Context) (jobs.DigestReport, error)
}

// Deps are the jobs' collaborators. Nil members disable their job.
type Deps struct {
	Inventory  Refresher
	Outbox     Drainer
	Checklists ChecklistOpener
	Digests    DigestSender
	Metrics    *metrics.Metrics
	Logger     zerolog.Logger
}

// JobScheduler runs the periodic work of one instance
type JobScheduler struct {
	scheduler gocron.Scheduler
	deps      Deps
	logger    zerolog.Logger
	jobs      map[string]gocron.Job
	mu        sync.RWMutex
	ctx       context.Context
	cancel    context.CancelFunc
}

// NewJobScheduler creates the scheduler and registers the configured jobs
func NewJobScheduler(cfg config.Config, deps Deps) (*JobScheduler, error) {
	scheduler, err := gocron.NewScheduler(gocron.WithLocation(cfg.Jobs.Location()))
	if err != nil {
		return nil, fmt.Errorf("create scheduler: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	js := &JobScheduler{
		ctx:       ctx,
		cancel:    cancel,
		scheduler: scheduler,
		deps:      deps,
		logger:    deps.Logger.With().Str("component", "scheduler").Logger(),
		jobs:      make(map[string]gocron.Job),
	}

	if err := js.registerJobs(cfg); err != nil {
		cancel()
		_ = scheduler.Shutdown()
		return nil, err
	}
	return js, nil
}

// Start starts the job scheduler
func (js *JobScheduler) Start() {
	js.logger.Info().Int("jobs", len(js.jobs)).Msg("starting background job scheduler")
	js.scheduler.Start()
}

// Stop waits for running jobs and stops the scheduler
func (js *JobScheduler) Stop() error {
	js.logger.Info().Msg("stopping background job scheduler")
	js.cancel()
	return js.scheduler.Shutdown()
}

func (js *JobScheduler) registerJobs(cfg config.Config) error {
	if js.deps.Inventory != nil {
		if err := js.add(JobInventoryPoll, gocron.DurationJob(cfg.Inventory.PollInterval), js.pollInventory); err != nil {
			return err
		}
	}
	if js.deps.Outbox != nil && cfg.Outbox.DrainInterval > 0 {
		if err := js.add(JobOutboxDrain, gocron.DurationJob(cfg.Outbox.DrainInterval), js.drainOutbox); err != nil {
			return err
		}
	}
	if js.deps.Checklists != nil && cfg.Jobs.ChecklistCron != "" {
		if err := js.add(JobChecklistDaily, gocron.CronJob(cfg.Jobs.ChecklistCron, false), js.openChecklists); err != nil {
			return err
		}
	}
	if js.deps.Digests != nil && cfg.Jobs.DigestCron != "" {
		if err := js.add(JobLowStockDigest, gocron.CronJob(cfg.Jobs.DigestCron, false), js.sendDigests); err != nil {
			return err
		}
	}
	js.logger.Info().Int("jobs", len(js.jobs)).Msg("registered background jobs")
	return nil
}

func (js *JobScheduler) add(name string, def gocron.JobDefinition, run func(context.Context) error) error {
	job, err := js.scheduler.NewJob(
		def,
		gocron.NewTask(js.timed(name, run)),
		gocron.WithName(name),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return fmt.Errorf("register job %s: %w", name, err)
	}
	js.mu.Lock()
	js.jobs[name] = job
	js.mu.Unlock()
	return nil
}

// timed wraps a job body with duration metrics and error logging. Runs are
// cancelled when the scheduler stops.
func (js *JobScheduler) timed(name string, run func(context.Context) error) func() {
	return func() {
		start := time.Now()
		err := run(js.ctx)
		js.deps.Metrics.ObserveJob(name, time.Since(start))
		if err != nil {
			js.logger.Error().Err(err).Str("job", name).Msg("job failed")
		}
	}
}

func (js *JobScheduler) pollInventory(ctx context.Context) error {
	return js.deps.Inventory.RefreshAll(ctx)
}

func (js *JobScheduler) drainOutbox(ctx context.Context) error {
	stats, err := js.deps.Outbox.Drain(ctx)
	if err != nil {
		return err
	}
	if stats.Delivered > 0 || stats.Dead > 0 {
		js.logger.Info().
			Int("delivered", stats.Delivered).
			Int("rescheduled", stats.Rescheduled).
			Int("dead", stats.Dead).
			Msg("outbox drained")
	}
	return nil
}

func (js *JobScheduler) openChecklists(ctx context.Context) error {
	_, err := js.deps.Checklists.Today(ctx)
	return err
}

func (js *JobScheduler) sendDigests(ctx context.Context) error {
	_, err := js.deps.Digests.SendDigests(ctx)
	return err
}

// AddJob adds a custom interval job to the scheduler
func (js *JobScheduler) AddJob(name string, interval time.Duration, run func(context.Context) error) error {
	js.mu.RLock()
	_, exists := js.jobs[name]
	js.mu.RUnlock()
	if exists {
		return fmt.Errorf("job %s already registered", name)
	}
	if err := js.add(name, gocron.DurationJob(interval), run); err != nil {
		return err
	}
	js.logger.Info().Str("job", name).Dur("interval", interval).Msg("added custom job")
	return nil
}

// RemoveJob removes a job from the scheduler
func (js *JobScheduler) RemoveJob(name string) error {
	js.mu.Lock()
	defer js.mu.Unlock()

	if job, exists := js.jobs[name]; exists {
		err := js.scheduler.RemoveJob(job.ID())
		delete(js.jobs, name)
		return err
	}
	return nil
}

// JobStatus describes one registered job.
type JobStatus struct {
	Name    string    `json:"name"`
	LastRun time.Time `json:"last_run,omitempty"`
	NextRun time.Time `json:"next_run,omitempty"`
}

// GetJobStatus returns information about scheduled jobs
func (js *JobScheduler) GetJobStatus() map[string]interface{} {
	js.mu.RLock()
	defer js.mu.RUnlock()

	statuses := make([]JobStatus, 0, len(js.jobs))
	for name, job := range js.jobs {
		st := JobStatus{Name: name}
		if t, err := job.LastRun(); err == nil {
			st.LastRun = t
		}
		if t, err := job.NextRun(); err == nil {
			st.NextRun = t
		}
		statuses = append(statuses, st)
	}
	sort.Slice(statuses, func(i, j int) bool { return statuses[i].Name < statuses[j].Name })

	return map[string]interface{}{
		"total_jobs": len(statuses),
		"jobs":       statuses,
	}
}
