package handlers

import (
	"net/http"

	"kitchenstock/internal/services"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

// UtensilHandlers handles the utensil register
type UtensilHandlers struct {
	utensilService services.UtensilService
	logger         zerolog.Logger
}

// NewUtensilHandlers creates a new utensil handlers instance
func NewUtensilHandlers(utensilService services.UtensilService, logger zerolog.Logger) *UtensilHandlers {
	return &UtensilHandlers{
		utensilService: utensilService,
		logger:         logger.With().Str("component", "utensils-api").Logger(),
	}
}

func (h *UtensilHandlers) ListUtensils(c echo.Context) error {
	tenant, err := tenantFrom(c)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	utensils, err := h.utensilService.List(c.Request().Context(), tenant)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"utensils": utensils,
		"count":    len(utensils),
	})
}

func (h *UtensilHandlers) GetUtensil(c echo.Context) error {
	tenant, err := tenantFrom(c)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	id, err := parseID(c)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	utensil, err := h.utensilService.GetByID(c.Request().Context(), tenant, id)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, utensil)
}

func (h *UtensilHandlers) CreateUtensil(c echo.Context) error {
	tenant, err := tenantFrom(c)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	var req services.UtensilRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}
	utensil, err := h.utensilService.Create(c.Request().Context(), tenant, &req)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusCreated, utensil)
}

func (h *UtensilHandlers) UpdateUtensil(c echo.Context) error {
	tenant, err := tenantFrom(c)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	id, err := parseID(c)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	var req services.UtensilRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}
	utensil, err := h.utensilService.Update(c.Request().Context(), tenant, id, &req)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, utensil)
}

func (h *UtensilHandlers) DeleteUtensil(c echo.Context) error {
	tenant, err := tenantFrom(c)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	id, err := parseID(c)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	if err := h.utensilService.Delete(c.Request().Context(), tenant, id); err != nil {
		return respondError(c, h.logger, err)
	}
	return c.NoContent(http.StatusNoContent)
}
