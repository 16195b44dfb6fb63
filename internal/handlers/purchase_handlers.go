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

// PurchaseHandlers handles supplier purchases
type PurchaseHandlers struct {
	purchaseService services.PurchaseService
	logger          zerolog.Logger
}

// NewPurchaseHandlers creates a new purchase handlers instance
func NewPurchaseHandlers(purchaseService services.PurchaseService, logger zerolog.Logger) *PurchaseHandlers {
	return &PurchaseHandlers{
		purchaseService: purchaseService,
		logger:          logger.With().Str("component", "purchases-api").Logger(),
	}
}

// ListPurchasesRequest represents query parameters for listing purchases
type ListPurchasesRequest struct {
	From   string `query:"from"`
	To     string `query:"to"`
	Limit  int    `query:"limit"`
	Offset int    `query:"offset"`
}

// RegisterPurchase records a purchase and books its lines into stock
func (h *PurchaseHandlers) RegisterPurchase(c echo.Context) error {
	tenant, err := tenantFrom(c)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	var req services.PurchaseRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}
	result, err := h.purchaseService.Register(c.Request().Context(), tenant, &req)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusCreated, result)
}

// GetPurchase returns one purchase with its lines
func (h *PurchaseHandlers) GetPurchase(c echo.Context) error {
	tenant, err := tenantFrom(c)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	id, err := parseID(c)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	purchase, err := h.purchaseService.GetByID(c.Request().Context(), tenant, id)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, purchase)
}

// ListPurchases pages purchases inside a date window
func (h *PurchaseHandlers) ListPurchases(c echo.Context) error {
	tenant, err := tenantFrom(c)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	var req ListPurchasesRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid query parameters")
	}
	var from, to time.Time
	if req.From != "" {
		if from, err = common.ValidateDateFormat(req.From, "from"); err != nil {
			return respondError(c, h.logger, &validation.Error{Fields: map[string]string{"from": err.Error()}})
		}
	}
	if req.To != "" {
		if to, err = common.ValidateDateFormat(req.To, "to"); err != nil {
			return respondError(c, h.logger, &validation.Error{Fields: map[string]string{"to": err.Error()}})
		}
		to = to.Add(24*time.Hour - time.Nanosecond)
	}
	purchases, err := h.purchaseService.List(c.Request().Context(), tenant, from, to, req.Limit, req.Offset)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"purchases": purchases,
		"limit":     req.Limit,
		"offset":    req.Offset,
	})
}
