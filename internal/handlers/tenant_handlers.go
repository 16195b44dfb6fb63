package handlers

import (
	"net/http"

	"kitchenstock/internal/services"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

// StatusCache drops a cached tenant status. Satisfied by middleware.TenantGuard.
type StatusCache interface {
	Forget(code string)
}

// TenantHandlers handles tenant administration (admin only)
type TenantHandlers struct {
	tenantService services.TenantService
	statusCache   StatusCache
	logger        zerolog.Logger
}

// NewTenantHandlers creates a new tenant handlers instance
func NewTenantHandlers(tenantService services.TenantService, statusCache StatusCache, logger zerolog.Logger) *TenantHandlers {
	return &TenantHandlers{
		tenantService: tenantService,
		statusCache:   statusCache,
		logger:        logger.With().Str("component", "tenants-api").Logger(),
	}
}

// ListTenants returns every tenant
func (h *TenantHandlers) ListTenants(c echo.Context) error {
	tenants, err := h.tenantService.List(c.Request().Context())
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"tenants": tenants,
		"count":   len(tenants),
	})
}

// GetTenant returns one tenant by code
func (h *TenantHandlers) GetTenant(c echo.Context) error {
	tenant, err := h.tenantService.GetByCode(c.Request().Context(), c.Param("code"))
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, tenant)
}

// CreateTenant registers a tenant, or renames an existing one
func (h *TenantHandlers) CreateTenant(c echo.Context) error {
	var req services.CreateTenantRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}
	tenant, err := h.tenantService.Create(c.Request().Context(), &req)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusCreated, tenant)
}

// UpdateTenantStatus activates or suspends a tenant
func (h *TenantHandlers) UpdateTenantStatus(c echo.Context) error {
	code := c.Param("code")
	var req services.UpdateTenantStatusRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}
	if err := h.tenantService.SetStatus(c.Request().Context(), code, req.Status); err != nil {
		return respondError(c, h.logger, err)
	}
	if h.statusCache != nil {
		h.statusCache.Forget(code)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"code":   code,
		"status": req.Status,
	})
}
