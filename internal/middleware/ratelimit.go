package middleware

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"kitchenstock/internal/common"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

// RateLimiter counts hits per key within a window. caching.CacheService implements it.
type RateLimiter interface {
	IsRateLimited(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

// RateLimit caps requests per tenant and actor. Limiter errors let the
// request through.
func RateLimit(limiter RateLimiter, scope string, limit int, window time.Duration, logger zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if limiter == nil || limit <= 0 {
				return next(c)
			}
			ctx := c.Request().Context()
			tenant, _ := common.GetTenantCodeFromContext(ctx)
			key := scope + ":" + tenant + ":" + common.ActorFromContext(ctx)

			limited, err := limiter.IsRateLimited(ctx, key, limit, window)
			if err != nil {
				logger.Warn().Err(err).Str("key", key).Msg("rate limiter unavailable")
				return next(c)
			}
			if limited {
				c.Response().Header().Set("Retry-After", strconv.Itoa(int(window.Seconds())))
				return echo.NewHTTPError(http.StatusTooManyRequests, "Too many requests")
			}
			return next(c)
		}
	}
}
