package handlers

import (
	"errors"
	"net/http"

	"kitchenstock/internal/common"
	"kitchenstock/internal/inventory"
	"kitchenstock/internal/services"
	"kitchenstock/internal/spreadsheet"
	"kitchenstock/internal/validation"
	applog "kitchenstock/pkg/logger"

	"github.com/jackc/pgx/v5"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

// respondError maps service and engine errors onto the common error shape.
// Anything unrecognised is logged and reported as a 500 without its message.
func respondError(c echo.Context, logger zerolog.Logger, err error) error {
	var verr *validation.Error
	if errors.As(err, &verr) {
		return c.JSON(http.StatusBadRequest, common.CreateErrorResponse("VALIDATION_ERROR", "Validation failed", verr.Fields))
	}
	var herr *echo.HTTPError
	if errors.As(err, &herr) {
		return herr
	}

	switch {
	case errors.Is(err, inventory.ErrNoTenant):
		return c.JSON(http.StatusForbidden, common.CreateErrorResponse("NO_TENANT", err.Error(), nil))
	case errors.Is(err, inventory.ErrNoActiveSheet),
		errors.Is(err, inventory.ErrNothingToUndo),
		errors.Is(err, inventory.ErrUndoTargetMissing),
		errors.Is(err, inventory.ErrStaleSnapshot):
		return common.SendConflictError(c, err.Error())
	case errors.Is(err, inventory.ErrNoMatch):
		return c.JSON(http.StatusNotFound, common.CreateErrorResponse("NOT_FOUND", err.Error(), nil))
	case errors.Is(err, inventory.ErrSheetNotFound):
		return common.SendNotFoundError(c, "Sheet")
	case errors.Is(err, pgx.ErrNoRows):
		return common.SendNotFoundError(c, "Resource")
	case errors.Is(err, inventory.ErrEmptyName),
		errors.Is(err, inventory.ErrInvalidQuantity),
		errors.Is(err, inventory.ErrInvalidDirection),
		errors.Is(err, services.ErrInvalidTenantCode),
		errors.Is(err, spreadsheet.ErrNoSheets),
		errors.Is(err, spreadsheet.ErrUnreadable):
		return common.SendClientError(c, err.Error())
	case errors.Is(err, services.ErrIngredientMissing):
		return c.JSON(http.StatusUnprocessableEntity, common.CreateErrorResponse("UNPROCESSABLE", err.Error(), nil))
	case errors.Is(err, services.ErrStorageDisabled):
		return c.JSON(http.StatusServiceUnavailable, common.CreateErrorResponse("UNAVAILABLE", err.Error(), nil))
	case errors.Is(err, inventory.ErrEngineClosed):
		return c.JSON(http.StatusServiceUnavailable, common.CreateErrorResponse("UNAVAILABLE", "Inventory is shutting down", nil))
	}

	l := applog.FromContext(c.Request().Context(), logger)
	l.Error().Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("request failed")
	return common.SendServerError(c, "Internal server error")
}

// tenantFrom returns the tenant resolved by the auth middleware.
func tenantFrom(c echo.Context) (string, error) {
	tenant, ok := common.GetTenantCodeFromContext(c.Request().Context())
	if !ok || tenant == "" {
		return "", inventory.ErrNoTenant
	}
	return tenant, nil
}
