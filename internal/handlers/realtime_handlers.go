package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

// ChangeStream upgrades a request into a tenant's change feed. Satisfied by
// *realtime.Hub.
type ChangeStream interface {
	Serve(w http.ResponseWriter, r *http.Request, tenantCode string) error
}

// RealtimeHandlers streams item changes to browser clients
type RealtimeHandlers struct {
	stream ChangeStream
	logger zerolog.Logger
}

// NewRealtimeHandlers creates a new realtime handlers instance
func NewRealtimeHandlers(stream ChangeStream, logger zerolog.Logger) *RealtimeHandlers {
	return &RealtimeHandlers{
		stream: stream,
		logger: logger.With().Str("component", "realtime-api").Logger(),
	}
}

// Subscribe opens a websocket carrying the caller tenant's change events
func (h *RealtimeHandlers) Subscribe(c echo.Context) error {
	tenant, err := tenantFrom(c)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	if err := h.stream.Serve(c.Response(), c.Request(), tenant); err != nil {
		// the upgrader has already written the failure response
		h.logger.Debug().Err(err).Str("tenant", tenant).Msg("websocket upgrade failed")
	}
	return nil
}
