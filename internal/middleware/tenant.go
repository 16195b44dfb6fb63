package middleware

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"kitchenstock/internal/common"
	"kitchenstock/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/labstack/echo/v4"
)

// TenantLookup loads a tenant by code. repositories.TenantRepository implements it.
type TenantLookup interface {
	GetByCode(ctx context.Context, code string) (*models.Tenant, error)
}

// TenantGuard requires a tenant on the context and rejects unknown or
// suspended tenants. Lookups are cached for ttl.
type TenantGuard struct {
	lookup TenantLookup
	ttl    time.Duration
	now    func() time.Time

	mu    sync.Mutex
	cache map[string]tenantEntry
}

type tenantEntry struct {
	active  bool
	expires time.Time
}

func NewTenantGuard(lookup TenantLookup, ttl time.Duration) *TenantGuard {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &TenantGuard{lookup: lookup, ttl: ttl, now: time.Now, cache: make(map[string]tenantEntry)}
}

func (g *TenantGuard) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := c.Request().Context()
			code, ok := common.GetTenantCodeFromContext(ctx)
			if !ok {
				return echo.NewHTTPError(http.StatusForbidden, "No tenant selected")
			}
			active, err := g.active(ctx, code)
			if err != nil {
				if errors.Is(err, pgx.ErrNoRows) {
					return echo.NewHTTPError(http.StatusForbidden, "Unknown tenant")
				}
				return echo.NewHTTPError(http.StatusServiceUnavailable, "Tenant lookup failed")
			}
			if !active {
				return echo.NewHTTPError(http.StatusForbidden, "Tenant suspended")
			}
			return next(c)
		}
	}
}

// Forget drops the cached status of a tenant.
func (g *TenantGuard) Forget(code string) {
	g.mu.Lock()
	delete(g.cache, code)
	g.mu.Unlock()
}

func (g *TenantGuard) active(ctx context.Context, code string) (bool, error) {
	now := g.now()
	g.mu.Lock()
	entry, ok := g.cache[code]
	g.mu.Unlock()
	if ok && now.Before(entry.expires) {
		return entry.active, nil
	}

	tenant, err := g.lookup.GetByCode(ctx, code)
	if err != nil {
		return false, err
	}
	entry = tenantEntry{active: tenant.IsActive(), expires: now.Add(g.ttl)}
	g.mu.Lock()
	g.cache[code] = entry
	g.mu.Unlock()
	return entry.active, nil
}
