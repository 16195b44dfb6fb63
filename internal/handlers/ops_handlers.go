package handlers

import (
	"context"
	"net/http"
	"strconv"

	"kitchenstock/internal/persistence"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

// OutboxInspector exposes the retry queue of the persistence layer.
type OutboxInspector interface {
	Depth(ctx context.Context) (int64, error)
	DeadLetters(ctx context.Context, n int64) ([]persistence.Envelope, error)
}

// OutboxDrainer replays due envelopes. Satisfied by *persistence.Dispatcher.
type OutboxDrainer interface {
	Drain(ctx context.Context) (persistence.DrainStats, error)
}

// JobReporter lists scheduled background jobs. Satisfied by *background.JobScheduler.
type JobReporter interface {
	GetJobStatus() map[string]interface{}
}

// OpsHandlers exposes outbox and scheduler state to administrators
type OpsHandlers struct {
	outbox  OutboxInspector
	drainer OutboxDrainer
	jobs    JobReporter
	logger  zerolog.Logger
}

// NewOpsHandlers creates a new ops handlers instance
func NewOpsHandlers(outbox OutboxInspector, drainer OutboxDrainer, logger zerolog.Logger) *OpsHandlers {
	return &OpsHandlers{
		outbox:  outbox,
		drainer: drainer,
		logger:  logger.With().Str("component", "ops-api").Logger(),
	}
}

// OutboxStatus returns the queue depth and the newest dead letters
func (h *OpsHandlers) OutboxStatus(c echo.Context) error {
	if h.outbox == nil {
		return c.JSON(http.StatusOK, map[string]interface{}{"enabled": false})
	}
	ctx := c.Request().Context()
	n, _ := strconv.ParseInt(c.QueryParam("dead"), 10, 64)
	if n <= 0 || n > 200 {
		n = 20
	}
	depth, err := h.outbox.Depth(ctx)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	dead, err := h.outbox.DeadLetters(ctx, n)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"enabled":      true,
		"depth":        depth,
		"dead_letters": dead,
	})
}

// DrainOutbox replays due envelopes now instead of waiting for the job
func (h *OpsHandlers) DrainOutbox(c echo.Context) error {
	if h.drainer == nil {
		return c.JSON(http.StatusOK, map[string]interface{}{"enabled": false})
	}
	stats, err := h.drainer.Drain(c.Request().Context())
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, stats)
}

// WithJobs attaches the scheduler reported by Jobs.
func (h *OpsHandlers) WithJobs(jobs JobReporter) *OpsHandlers {
	h.jobs = jobs
	return h
}

// Jobs lists the background jobs of this instance
func (h *OpsHandlers) Jobs(c echo.Context) error {
	if h.jobs == nil {
		return c.JSON(http.StatusOK, map[string]interface{}{"total_jobs": 0, "jobs": []interface{}{}})
	}
	return c.JSON(http.StatusOK, h.jobs.GetJobStatus())
}
