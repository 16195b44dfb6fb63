package persistence

import (
	"context"

	"kitchenstock/internal/metrics"
	"kitchenstock/internal/models"

	"github.com/rs/zerolog"
)

// Dispatcher applies the configured delivery policy on top of a Store. With
// PolicyAtLeastOnce retryable failures are parked in the outbox; with
// PolicyBestEffort they are only logged.
type Dispatcher struct {
	store   *Store
	outbox  *Outbox
	policy  Policy
	metrics *metrics.Metrics
	logger  zerolog.Logger
}

func NewDispatcher(store *Store, outbox *Outbox, policy Policy, m *metrics.Metrics, logger zerolog.Logger) *Dispatcher {
	if outbox == nil {
		policy = PolicyBestEffort
	}
	return &Dispatcher{
		store:   store,
		outbox:  outbox,
		policy:  policy,
		metrics: m,
		logger:  logger.With().Str("component", "persistence").Logger(),
	}
}

func (d *Dispatcher) Policy() Policy {
	return d.policy
}

func (d *Dispatcher) UpsertItem(ctx context.Context, tenantCode, sheetName string, item models.InventoryItem) Result {
	res := d.store.UpsertItem(ctx, tenantCode, sheetName, item)
	return d.settle(ctx, res, UpsertItemEnvelope(tenantCode, sheetName, item))
}

func (d *Dispatcher) AppendLog(ctx context.Context, tenantCode string, entry models.UpdateLogEntry) Result {
	res := d.store.AppendLog(ctx, tenantCode, entry)
	return d.park(ctx, res, AppendLogEnvelope(tenantCode, entry))
}

func (d *Dispatcher) SyncSheets(ctx context.Context, tenantCode string, sheets []models.Sheet) Result {
	res := d.store.SyncSheets(ctx, tenantCode, sheets)
	return d.settle(ctx, res, SyncSheetsEnvelope(tenantCode, sheets))
}

func (d *Dispatcher) FetchSnapshot(ctx context.Context, tenantCode string) ([]models.Sheet, error) {
	return d.store.FetchSnapshot(ctx, tenantCode)
}

// settle parks retryable failures and, after a successful write, drops any
// older parked envelope for the same key so a later drain cannot replay it.
func (d *Dispatcher) settle(ctx context.Context, res Result, env Envelope) Result {
	if res.IsOK() && d.policy == PolicyAtLeastOnce {
		if err := d.outbox.Discard(context.WithoutCancel(ctx), env.ID); err != nil {
			d.logger.Warn().Err(err).Str("envelope", env.ID).Msg("failed to drop superseded envelope")
		}
		return res
	}
	return d.park(ctx, res, env)
}

func (d *Dispatcher) park(ctx context.Context, res Result, env Envelope) Result {
	if !res.Retryable() || d.policy != PolicyAtLeastOnce {
		return res
	}
	// The caller's context may already be past its deadline.
	if err := d.outbox.Enqueue(context.WithoutCancel(ctx), env); err != nil {
		d.logger.Error().Err(err).Str("envelope", env.ID).Msg("failed to park write in outbox")
		return res
	}
	d.logger.Info().Str("envelope", env.ID).Msg("write parked in outbox")
	return res
}

// Drain replays due outbox envelopes against the store and refreshes the
// depth gauge.
func (d *Dispatcher) Drain(ctx context.Context) (DrainStats, error) {
	if d.outbox == nil {
		return DrainStats{}, nil
	}
	stats, err := d.outbox.Drain(ctx, d.store)
	if depth, derr := d.outbox.Depth(ctx); derr == nil {
		d.metrics.SetOutboxDepth(depth)
	}
	return stats, err
}

func (d *Dispatcher) DeadLetters(ctx context.Context, n int64) ([]Envelope, error) {
	if d.outbox == nil {
		return nil, nil
	}
	return d.outbox.DeadLetters(ctx, n)
}
