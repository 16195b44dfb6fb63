package handlers

import (
	"context"
	"net/http"
	"strconv"

	"kitchenstock/internal/inventory"
	"kitchenstock/internal/models"
	"kitchenstock/internal/repositories"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

// CostInvalidator drops the cached recipe costs of a tenant.
type CostInvalidator interface {
	InvalidateRecipeCosts(ctx context.Context, tenantCode string) error
}

// EngineRegistry hands out the inventory engine of a tenant.
type EngineRegistry interface {
	Get(ctx context.Context, tenantCode string) (*inventory.Engine, error)
}

// InventoryHandlers handles stock mutations, lookups and the update log
type InventoryHandlers struct {
	engines EngineRegistry
	logs    repositories.UpdateLogRepository
	costs   CostInvalidator
	logger  zerolog.Logger
}

// NewInventoryHandlers creates a new inventory handlers instance
func NewInventoryHandlers(engines EngineRegistry, logs repositories.UpdateLogRepository, logger zerolog.Logger) *InventoryHandlers {
	return &InventoryHandlers{
		engines: engines,
		logs:    logs,
		logger:  logger.With().Str("component", "inventory-api").Logger(),
	}
}

// QuantityRequest is the payload of add and set.
type QuantityRequest struct {
	Name     string  `json:"name" validate:"required,max=200"`
	Quantity float64 `json:"quantity"`
}

// CorrectionRequest is the payload of a manual stock movement.
type CorrectionRequest struct {
	Name         string   `json:"name" validate:"required,max=200"`
	Quantity     float64  `json:"quantity" validate:"gte=0"`
	Direction    string   `json:"direction" validate:"required"`
	MinThreshold *float64 `json:"min_threshold,omitempty" validate:"omitempty,gte=0"`
	UnitCost     *float64 `json:"unit_cost,omitempty" validate:"omitempty,gte=0"`
	Reason       string   `json:"reason,omitempty" validate:"max=200"`
	Sheet        string   `json:"sheet,omitempty"`
	Unit         string   `json:"unit,omitempty" validate:"max=20"`
}

// CommandsRequest carries one text command per line.
type CommandsRequest struct {
	Text   string `json:"text" validate:"required,max=10000"`
	DryRun bool   `json:"dry_run"`
}

// SheetRequest names a sheet.
type SheetRequest struct {
	Name string `json:"name" validate:"required,max=100"`
}

// WithCostCache makes unit cost corrections drop cached recipe costs.
func (h *InventoryHandlers) WithCostCache(costs CostInvalidator) *InventoryHandlers {
	h.costs = costs
	return h
}

func (h *InventoryHandlers) invalidateCosts(ctx context.Context, tenant string) {
	if h.costs == nil {
		return
	}
	if err := h.costs.InvalidateRecipeCosts(ctx, tenant); err != nil {
		h.logger.Warn().Err(err).Str("tenant", tenant).Msg("recipe cost invalidation failed")
	}
}

func (h *InventoryHandlers) engine(c echo.Context) (*inventory.Engine, error) {
	tenant, err := tenantFrom(c)
	if err != nil {
		return nil, err
	}
	return h.engines.Get(c.Request().Context(), tenant)
}

func (h *InventoryHandlers) bind(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}
	return c.Validate(req)
}

// GetInventory returns every sheet with the active selection and undo state
func (h *InventoryHandlers) GetInventory(c echo.Context) error {
	eng, err := h.engine(c)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"tenant_code":  eng.TenantCode(),
		"active_sheet": eng.ActiveSheet(),
		"sheets":       eng.Sheets(),
		"can_undo":     eng.CanUndo(),
	})
}

// AddQuantity adds to the item the name resolves to, creating it when unknown
func (h *InventoryHandlers) AddQuantity(c echo.Context) error {
	var req QuantityRequest
	if err := h.bind(c, &req); err != nil {
		return respondError(c, h.logger, err)
	}
	eng, err := h.engine(c)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	res, err := eng.ApplyAdd(c.Request().Context(), req.Name, req.Quantity)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return h.mutationResponse(c, eng, res)
}

// SetQuantity overwrites the quantity of the item the name resolves to
func (h *InventoryHandlers) SetQuantity(c echo.Context) error {
	var req QuantityRequest
	if err := h.bind(c, &req); err != nil {
		return respondError(c, h.logger, err)
	}
	eng, err := h.engine(c)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	res, err := eng.ApplySet(c.Request().Context(), req.Name, req.Quantity)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return h.mutationResponse(c, eng, res)
}

// ApplyCorrection books an entrada, saida or correcao
func (h *InventoryHandlers) ApplyCorrection(c echo.Context) error {
	var req CorrectionRequest
	if err := h.bind(c, &req); err != nil {
		return respondError(c, h.logger, err)
	}
	dir, ok := models.ParseDirection(req.Direction)
	if !ok {
		return respondError(c, h.logger, inventory.ErrInvalidDirection)
	}
	eng, err := h.engine(c)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	res, err := eng.ApplyCorrection(c.Request().Context(), inventory.CorrectionRequest{
		Name:         req.Name,
		Quantity:     req.Quantity,
		Direction:    dir,
		MinThreshold: req.MinThreshold,
		UnitCost:     req.UnitCost,
		Reason:       req.Reason,
		Sheet:        req.Sheet,
		Unit:         req.Unit,
	})
	if err != nil {
		return respondError(c, h.logger, err)
	}
	if req.UnitCost != nil {
		h.invalidateCosts(c.Request().Context(), eng.TenantCode())
	}
	return h.mutationResponse(c, eng, res)
}

// Undo reverts the most recent undoable change
func (h *InventoryHandlers) Undo(c echo.Context) error {
	eng, err := h.engine(c)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	res, err := eng.Undo(c.Request().Context())
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return h.mutationResponse(c, eng, res)
}

func (h *InventoryHandlers) mutationResponse(c echo.Context, eng *inventory.Engine, res *inventory.MutationResult) error {
	status := http.StatusOK
	if res.Created {
		status = http.StatusCreated
	}
	return c.JSON(status, map[string]interface{}{
		"result":   res,
		"can_undo": eng.CanUndo(),
	})
}

// FindItem resolves a free-text name; scope=all searches every sheet
func (h *InventoryHandlers) FindItem(c echo.Context) error {
	name := c.QueryParam("name")
	if name == "" {
		return respondError(c, h.logger, inventory.ErrEmptyName)
	}
	eng, err := h.engine(c)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	if c.QueryParam("scope") == "all" {
		item, sheet, err := eng.FindAnywhere(name)
		if err != nil {
			return respondError(c, h.logger, err)
		}
		return c.JSON(http.StatusOK, map[string]interface{}{"item": item, "sheet_name": sheet})
	}
	item, match, err := eng.Find(name)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"item":       item,
		"sheet_name": eng.ActiveSheet(),
		"match":      match.Kind.String(),
		"distance":   match.Distance,
	})
}

// LowStock lists items under their minimum across all sheets
func (h *InventoryHandlers) LowStock(c echo.Context) error {
	eng, err := h.engine(c)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	alerts := eng.LowStock()
	if alerts == nil {
		alerts = []models.LowStockAlert{}
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"items": alerts,
		"count": len(alerts),
	})
}

// RunCommands parses the text and executes the commands in order. Lines that
// do not parse are returned as rejected and never executed.
func (h *InventoryHandlers) RunCommands(c echo.Context) error {
	var req CommandsRequest
	if err := h.bind(c, &req); err != nil {
		return respondError(c, h.logger, err)
	}
	cmds, rejected := inventory.ParseCommands(req.Text)
	if rejected == nil {
		rejected = []inventory.RejectedLine{}
	}
	if req.DryRun {
		if cmds == nil {
			cmds = []inventory.Command{}
		}
		return c.JSON(http.StatusOK, map[string]interface{}{
			"commands": cmds,
			"rejected": rejected,
		})
	}
	eng, err := h.engine(c)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	outcomes := eng.ExecuteCommands(c.Request().Context(), cmds)
	failed := 0
	for _, o := range outcomes {
		if o.Error != "" {
			failed++
		}
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"outcomes": outcomes,
		"rejected": rejected,
		"failed":   failed,
		"can_undo": eng.CanUndo(),
	})
}

// Refresh merges the remote state into the engine immediately
func (h *InventoryHandlers) Refresh(c echo.Context) error {
	eng, err := h.engine(c)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	if err := eng.Refresh(c.Request().Context()); err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"active_sheet": eng.ActiveSheet(),
		"sheets":       inventory.SheetNames(eng.Sheets()),
	})
}

// ListLog returns the in-memory update log, newest first. With source=remote
// the persisted history is paged from the database instead.
func (h *InventoryHandlers) ListLog(c echo.Context) error {
	tenant, err := tenantFrom(c)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))

	if c.QueryParam("source") == "remote" {
		if limit <= 0 || limit > 500 {
			limit = 50
		}
		if offset < 0 {
			offset = 0
		}
		var entries []models.UpdateLogEntry
		if item := c.QueryParam("item"); item != "" {
			entries, err = h.logs.ListByItem(c.Request().Context(), tenant, item, limit)
		} else {
			entries, err = h.logs.List(c.Request().Context(), tenant, limit, offset)
		}
		if err != nil {
			return respondError(c, h.logger, err)
		}
		if entries == nil {
			entries = []models.UpdateLogEntry{}
		}
		return c.JSON(http.StatusOK, map[string]interface{}{
			"entries": entries,
			"limit":   limit,
			"offset":  offset,
			"source":  "remote",
		})
	}

	eng, err := h.engines.Get(c.Request().Context(), tenant)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"entries": eng.RecentLog(limit),
		"source":  "local",
	})
}

// ListSheets returns the sheet names and the active one
func (h *InventoryHandlers) ListSheets(c echo.Context) error {
	eng, err := h.engine(c)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"sheets":       inventory.SheetNames(eng.Sheets()),
		"active_sheet": eng.ActiveSheet(),
	})
}

// CreateSheet adds an empty sheet
func (h *InventoryHandlers) CreateSheet(c echo.Context) error {
	var req SheetRequest
	if err := h.bind(c, &req); err != nil {
		return respondError(c, h.logger, err)
	}
	eng, err := h.engine(c)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	if err := eng.AddSheet(req.Name); err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusCreated, map[string]interface{}{
		"sheets":       inventory.SheetNames(eng.Sheets()),
		"active_sheet": eng.ActiveSheet(),
	})
}

// ActivateSheet selects the sheet that mutations apply to
func (h *InventoryHandlers) ActivateSheet(c echo.Context) error {
	var req SheetRequest
	if err := h.bind(c, &req); err != nil {
		return respondError(c, h.logger, err)
	}
	eng, err := h.engine(c)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	if err := eng.SetActiveSheet(req.Name); err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"active_sheet": eng.ActiveSheet(),
	})
}
