package middleware

import (
	"kitchenstock/internal/common"
	"kitchenstock/pkg/logger"

	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
)

// RequestLogger logs one line per request and attaches a request-scoped
// logger to the context.
func RequestLogger(base zerolog.Logger) echo.MiddlewareFunc {
	return echoMiddleware.RequestLoggerWithConfig(echoMiddleware.RequestLoggerConfig{
		LogURI:       true,
		LogStatus:    true,
		LogMethod:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		BeforeNextFunc: func(c echo.Context) {
			reqID := c.Response().Header().Get(echo.HeaderXRequestID)
			l := base.With().Str("request_id", reqID).Logger()
			c.SetRequest(c.Request().WithContext(logger.WithContext(c.Request().Context(), l)))
		},
		LogValuesFunc: func(c echo.Context, v echoMiddleware.RequestLoggerValues) error {
			ctx := c.Request().Context()
			event := base.Info()
			if v.Error != nil || v.Status >= 500 {
				event = base.Error().Err(v.Error)
			}
			tenant, _ := common.GetTenantCodeFromContext(ctx)
			event.
				Str("request_id", v.RequestID).
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("tenant", tenant).
				Msg("request")
			return nil
		},
	})
}
