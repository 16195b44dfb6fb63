package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"kitchenstock/internal/models"

	"github.com/redis/go-redis/v9"
)

// RedisClient is the subset of *redis.Client the outbox needs.
type RedisClient interface {
	ZAdd(ctx context.Context, key string, members ...redis.Z) *redis.IntCmd
	ZRangeByScore(ctx context.Context, key string, opt *redis.ZRangeBy) *redis.StringSliceCmd
	ZRem(ctx context.Context, key string, members ...interface{}) *redis.IntCmd
	ZScore(ctx context.Context, key, member string) *redis.FloatCmd
	ZCard(ctx context.Context, key string) *redis.IntCmd
	HSet(ctx context.Context, key string, values ...interface{}) *redis.IntCmd
	HGet(ctx context.Context, key, field string) *redis.StringCmd
	HDel(ctx context.Context, key string, fields ...string) *redis.IntCmd
	LPush(ctx context.Context, key string, values ...interface{}) *redis.IntCmd
	LTrim(ctx context.Context, key string, start, stop int64) *redis.StatusCmd
	LRange(ctx context.Context, key string, start, stop int64) *redis.StringSliceCmd
}

type EnvelopeKind string

const (
	KindUpsertItem EnvelopeKind = "upsert_item"
	KindAppendLog  EnvelopeKind = "append_log"
	KindSyncSheets EnvelopeKind = "sync_sheets"
)

// Envelope is one parked write. Envelopes with the same ID coalesce: the
// newest payload replaces the older one.
type Envelope struct {
	ID         string                 `json:"id"`
	Kind       EnvelopeKind           `json:"kind"`
	TenantCode string                 `json:"tenant_code"`
	SheetName  string                 `json:"sheet_name,omitempty"`
	Item       *models.InventoryItem  `json:"item,omitempty"`
	Entry      *models.UpdateLogEntry `json:"entry,omitempty"`
	Sheets     []models.Sheet         `json:"sheets,omitempty"`
	Attempts   int                    `json:"attempts"`
	LastError  string                 `json:"last_error,omitempty"`
	EnqueuedAt time.Time              `json:"enqueued_at"`
}

func UpsertItemEnvelope(tenantCode, sheetName string, item models.InventoryItem) Envelope {
	return Envelope{
		ID:         fmt.Sprintf("%s:%s:%s:%s", KindUpsertItem, tenantCode, sheetName, item.Key()),
		Kind:       KindUpsertItem,
		TenantCode: tenantCode,
		SheetName:  sheetName,
		Item:       &item,
	}
}

func AppendLogEnvelope(tenantCode string, entry models.UpdateLogEntry) Envelope {
	return Envelope{
		ID:         fmt.Sprintf("%s:%s:%s", KindAppendLog, tenantCode, entry.ID),
		Kind:       KindAppendLog,
		TenantCode: tenantCode,
		Entry:      &entry,
	}
}

func SyncSheetsEnvelope(tenantCode string, sheets []models.Sheet) Envelope {
	return Envelope{
		ID:         fmt.Sprintf("%s:%s", KindSyncSheets, tenantCode),
		Kind:       KindSyncSheets,
		TenantCode: tenantCode,
		Sheets:     models.CloneSheets(sheets),
	}
}

type OutboxOptions struct {
	Prefix      string
	BaseBackoff time.Duration
	MaxBackoff  time.Duration
	MaxAttempts int
	BatchSize   int64
	DeadLimit   int64
}

func (o OutboxOptions) withDefaults() OutboxOptions {
	if o.Prefix == "" {
		o.Prefix = "ks:outbox"
	}
	if o.BaseBackoff <= 0 {
		o.BaseBackoff = 2 * time.Second
	}
	if o.MaxBackoff <= 0 {
		o.MaxBackoff = 5 * time.Minute
	}
	if o.MaxAttempts <= 0 {
		o.MaxAttempts = 8
	}
	if o.BatchSize <= 0 {
		o.BatchSize = 100
	}
	if o.DeadLimit <= 0 {
		o.DeadLimit = 1000
	}
	return o
}

// Outbox parks retryable writes in Redis. Due times live in a sorted set,
// payloads in a hash keyed by envelope ID and exhausted envelopes in a
// capped dead-letter list.
type Outbox struct {
	client RedisClient
	opts   OutboxOptions
	now    func() time.Time
}

func NewOutbox(client RedisClient, opts OutboxOptions) *Outbox {
	return &Outbox{client: client, opts: opts.withDefaults(), now: time.Now}
}

func (o *Outbox) queueKey() string   { return o.opts.Prefix + ":due" }
func (o *Outbox) payloadKey() string { return o.opts.Prefix + ":payload" }
func (o *Outbox) deadKey() string    { return o.opts.Prefix + ":dead" }

// Backoff returns the delay before attempt n+1, doubling from BaseBackoff.
func (o *Outbox) Backoff(attempts int) time.Duration {
	d := o.opts.BaseBackoff
	for i := 0; i < attempts; i++ {
		d *= 2
		if d >= o.opts.MaxBackoff {
			return o.opts.MaxBackoff
		}
	}
	return d
}

// Enqueue stores env and schedules it after the backoff for its attempt count.
func (o *Outbox) Enqueue(ctx context.Context, env Envelope) error {
	if env.EnqueuedAt.IsZero() {
		env.EnqueuedAt = o.now()
	}
	data, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("failed to marshal outbox envelope: %w", err)
	}
	if err := o.client.HSet(ctx, o.payloadKey(), env.ID, string(data)).Err(); err != nil {
		return fmt.Errorf("failed to store outbox payload: %w", err)
	}
	due := o.now().Add(o.Backoff(env.Attempts))
	return o.client.ZAdd(ctx, o.queueKey(), redis.Z{
		Score:  float64(due.UnixNano()),
		Member: env.ID,
	}).Err()
}

func (o *Outbox) Depth(ctx context.Context) (int64, error) {
	return o.client.ZCard(ctx, o.queueKey()).Result()
}

// DeadLetters returns up to n dead envelopes, newest first.
func (o *Outbox) DeadLetters(ctx context.Context, n int64) ([]Envelope, error) {
	raw, err := o.client.LRange(ctx, o.deadKey(), 0, n-1).Result()
	if err != nil {
		return nil, err
	}
	out := make([]Envelope, 0, len(raw))
	for _, r := range raw {
		var env Envelope
		if err := json.Unmarshal([]byte(r), &env); err != nil {
			continue
		}
		out = append(out, env)
	}
	return out, nil
}

// DrainStats summarises one drain pass.
type DrainStats struct {
	Delivered   int `json:"delivered"`
	Rescheduled int `json:"rescheduled"`
	Dead        int `json:"dead"`
	Skipped     int `json:"skipped"`
}

// Drain replays due envelopes against w. Envelopes are claimed by removing
// them from the sorted set, so concurrent drainers never replay the same one.
func (o *Outbox) Drain(ctx context.Context, w Writer) (DrainStats, error) {
	var stats DrainStats
	ids, err := o.client.ZRangeByScore(ctx, o.queueKey(), &redis.ZRangeBy{
		Min:   "-inf",
		Max:   strconv.FormatInt(o.now().UnixNano(), 10),
		Count: o.opts.BatchSize,
	}).Result()
	if err != nil {
		return stats, fmt.Errorf("failed to read due envelopes: %w", err)
	}

	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		removed, err := o.client.ZRem(ctx, o.queueKey(), id).Result()
		if err != nil {
			return stats, fmt.Errorf("failed to claim envelope: %w", err)
		}
		if removed == 0 {
			stats.Skipped++
			continue
		}

		raw, err := o.client.HGet(ctx, o.payloadKey(), id).Result()
		if errors.Is(err, redis.Nil) {
			stats.Skipped++
			continue
		}
		if err != nil {
			return stats, fmt.Errorf("failed to load envelope payload: %w", err)
		}
		var env Envelope
		if err := json.Unmarshal([]byte(raw), &env); err != nil {
			o.bury(ctx, Envelope{ID: id, LastError: err.Error()}, raw)
			stats.Dead++
			continue
		}

		res := o.replay(ctx, w, env)
		switch {
		case res.IsOK():
			o.release(ctx, id)
			stats.Delivered++
		case res.Retryable() && env.Attempts+1 < o.opts.MaxAttempts:
			env.Attempts++
			env.LastError = res.Error()
			if err := o.Enqueue(ctx, env); err != nil {
				return stats, err
			}
			stats.Rescheduled++
		default:
			env.Attempts++
			env.LastError = res.Error()
			o.bury(ctx, env, "")
			stats.Dead++
		}
	}
	return stats, nil
}

func (o *Outbox) replay(ctx context.Context, w Writer, env Envelope) Result {
	switch env.Kind {
	case KindUpsertItem:
		if env.Item == nil {
			return Fatal(errors.New("upsert envelope without item"))
		}
		return w.UpsertItem(ctx, env.TenantCode, env.SheetName, *env.Item)
	case KindAppendLog:
		if env.Entry == nil {
			return Fatal(errors.New("log envelope without entry"))
		}
		return w.AppendLog(ctx, env.TenantCode, *env.Entry)
	case KindSyncSheets:
		return w.SyncSheets(ctx, env.TenantCode, env.Sheets)
	}
	return Fatal(fmt.Errorf("unknown envelope kind %q", env.Kind))
}

// Discard drops a parked envelope. A newer write for the same ID that
// reached the store directly supersedes it.
func (o *Outbox) Discard(ctx context.Context, id string) error {
	if err := o.client.ZRem(ctx, o.queueKey(), id).Err(); err != nil {
		return fmt.Errorf("failed to unschedule envelope: %w", err)
	}
	if err := o.client.HDel(ctx, o.payloadKey(), id).Err(); err != nil {
		return fmt.Errorf("failed to drop envelope payload: %w", err)
	}
	return nil
}

// release drops the payload unless a newer write for the same ID was queued
// while this one was in flight.
func (o *Outbox) release(ctx context.Context, id string) {
	if err := o.client.ZScore(ctx, o.queueKey(), id).Err(); errors.Is(err, redis.Nil) {
		o.client.HDel(ctx, o.payloadKey(), id)
	}
}

func (o *Outbox) bury(ctx context.Context, env Envelope, raw string) {
	if raw == "" {
		data, _ := json.Marshal(env)
		raw = string(data)
	}
	o.client.LPush(ctx, o.deadKey(), raw)
	o.client.LTrim(ctx, o.deadKey(), 0, o.opts.DeadLimit-1)
	o.release(ctx, env.ID)
}
