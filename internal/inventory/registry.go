package inventory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"kitchenstock/internal/models"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// ErrNoTenant is returned when a caller has no tenant code in scope.
var ErrNoTenant = errors.New("no tenant selected")

// Registry hands out one Engine per tenant code. Engines are created lazily,
// restored from the mirror and then merged with the remote snapshot.
type Registry struct {
	deps   Dependencies
	opts   Options
	logger zerolog.Logger

	mu      sync.Mutex
	engines map[string]*registryEntry
}

type registryEntry struct {
	engine *Engine
	once   sync.Once
}

func NewRegistry(deps Dependencies, opts Options) *Registry {
	if deps.Origin == "" {
		deps.Origin = uuid.NewString()
	}
	return &Registry{
		deps:    deps,
		opts:    opts,
		logger:  deps.Logger.With().Str("component", "inventory-registry").Logger(),
		engines: make(map[string]*registryEntry),
	}
}

// Origin identifies this process on published change events.
func (r *Registry) Origin() string {
	return r.deps.Origin
}

// Get returns the engine for tenantCode, loading it on first use. Load
// failures are logged; the engine is still returned with whatever state the
// mirror provided.
func (r *Registry) Get(ctx context.Context, tenantCode string) (*Engine, error) {
	tenantCode = strings.TrimSpace(tenantCode)
	if tenantCode == "" {
		return nil, ErrNoTenant
	}

	r.mu.Lock()
	ent, ok := r.engines[tenantCode]
	if !ok {
		ent = &registryEntry{engine: NewEngine(tenantCode, r.deps, r.opts)}
		r.engines[tenantCode] = ent
	}
	r.mu.Unlock()

	ent.once.Do(func() {
		r.load(ctx, ent.engine)
	})
	return ent.engine, nil
}

func (r *Registry) load(ctx context.Context, e *Engine) {
	if r.deps.Mirror != nil {
		snap, err := r.deps.Mirror.LoadSnapshot(ctx, e.TenantCode())
		switch {
		case err != nil:
			r.logger.Warn().Err(err).Str("tenant", e.TenantCode()).Msg("mirror load failed")
		case snap != nil:
			e.Restore(*snap)
		}
	}
	if err := e.Refresh(ctx); err != nil {
		r.logger.Warn().Err(err).Str("tenant", e.TenantCode()).Msg("initial remote load failed")
	}
}

// Loaded returns the engine for tenantCode only if it is already in memory.
func (r *Registry) Loaded(tenantCode string) (*Engine, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ent, ok := r.engines[tenantCode]
	if !ok {
		return nil, false
	}
	return ent.engine, true
}

// Tenants lists the tenant codes with a live engine, sorted.
func (r *Registry) Tenants() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	codes := make([]string, 0, len(r.engines))
	for code := range r.engines {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// RefreshAll merges the remote snapshot into every live engine. Stale
// snapshots are skipped silently.
func (r *Registry) RefreshAll(ctx context.Context) error {
	var errs []error
	for _, code := range r.Tenants() {
		e, ok := r.Loaded(code)
		if !ok {
			continue
		}
		if err := e.Refresh(ctx); err != nil && !errors.Is(err, ErrStaleSnapshot) {
			r.logger.Warn().Err(err).Str("tenant", code).Msg("refresh failed")
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// HandleChange routes a change notification to the tenant's engine if it is
// loaded. Events for tenants not in memory are dropped; the next load reads
// the row from the backend anyway.
func (r *Registry) HandleChange(event models.ChangeEvent) {
	if e, ok := r.Loaded(event.TenantCode); ok {
		e.ApplyRemoteChange(event)
	}
}

// Evict flushes and drops a tenant's engine.
func (r *Registry) Evict(tenantCode string) {
	r.mu.Lock()
	ent, ok := r.engines[tenantCode]
	delete(r.engines, tenantCode)
	r.mu.Unlock()
	if ok {
		ent.engine.Close()
	}
}

// Close flushes and closes every engine.
func (r *Registry) Close() {
	r.mu.Lock()
	entries := make([]*registryEntry, 0, len(r.engines))
	for _, ent := range r.engines {
		entries = append(entries, ent)
	}
	r.engines = make(map[string]*registryEntry)
	r.mu.Unlock()
	for _, ent := range entries {
		ent.engine.Close()
	}
}
