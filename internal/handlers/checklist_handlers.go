package handlers

import (
	"net/http"
	"time"

	"kitchenstock/internal/common"
	"kitchenstock/internal/services"
	"kitchenstock/internal/validation"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

// ChecklistHandlers handles daily checklists and their templates
type ChecklistHandlers struct {
	checklistService services.ChecklistService
	logger           zerolog.Logger
}

// NewChecklistHandlers creates a new checklist handlers instance
func NewChecklistHandlers(checklistService services.ChecklistService, logger zerolog.Logger) *ChecklistHandlers {
	return &ChecklistHandlers{
		checklistService: checklistService,
		logger:           logger.With().Str("component", "checklists-api").Logger(),
	}
}

// CheckItemRequest toggles a checklist item.
type CheckItemRequest struct {
	Done bool `json:"done"`
}

// ListChecklists returns the checklists of ?day= (default today), or the
// templates when ?templates=true
func (h *ChecklistHandlers) ListChecklists(c echo.Context) error {
	tenant, err := tenantFrom(c)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	ctx := c.Request().Context()
	if c.QueryParam("templates") == "true" {
		templates, err := h.checklistService.ListTemplates(ctx, tenant)
		if err != nil {
			return respondError(c, h.logger, err)
		}
		return c.JSON(http.StatusOK, map[string]interface{}{"checklists": templates})
	}
	var day time.Time
	if raw := c.QueryParam("day"); raw != "" {
		if day, err = common.ValidateDateFormat(raw, "day"); err != nil {
			return respondError(c, h.logger, &validation.Error{Fields: map[string]string{"day": err.Error()}})
		}
	}
	checklists, err := h.checklistService.ListByDay(ctx, tenant, day)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"checklists": checklists})
}

// GetChecklist returns one checklist with its items
func (h *ChecklistHandlers) GetChecklist(c echo.Context) error {
	tenant, err := tenantFrom(c)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	id, err := parseID(c)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	checklist, err := h.checklistService.GetByID(c.Request().Context(), tenant, id)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, checklist)
}

// CreateChecklist stores a dated checklist or a template
func (h *ChecklistHandlers) CreateChecklist(c echo.Context) error {
	tenant, err := tenantFrom(c)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	var req services.ChecklistRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}
	checklist, err := h.checklistService.Create(c.Request().Context(), tenant, &req)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusCreated, checklist)
}

// CheckItem marks a checklist item done or not done
func (h *ChecklistHandlers) CheckItem(c echo.Context) error {
	tenant, err := tenantFrom(c)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	id, err := parseID(c)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	var req CheckItemRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}
	if err := h.checklistService.CheckItem(c.Request().Context(), tenant, id, req.Done); err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"id":   id,
		"done": req.Done,
	})
}
