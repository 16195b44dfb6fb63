package handlers

import (
	"net/http"
	"strconv"

	"kitchenstock/internal/services"
	"kitchenstock/internal/validation"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

// RecipeHandlers handles recipe CRUD, costing and production
type RecipeHandlers struct {
	recipeService services.RecipeService
	logger        zerolog.Logger
}

// NewRecipeHandlers creates a new recipe handlers instance
func NewRecipeHandlers(recipeService services.RecipeService, logger zerolog.Logger) *RecipeHandlers {
	return &RecipeHandlers{
		recipeService: recipeService,
		logger:        logger.With().Str("component", "recipes-api").Logger(),
	}
}

// ProduceRequest is the number of portions to produce.
type ProduceRequest struct {
	Portions float64 `json:"portions"`
}

func parseID(c echo.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, &validation.Error{Fields: map[string]string{"id": "must be a valid UUID"}}
	}
	return id, nil
}

// ListRecipes returns every recipe of the tenant
func (h *RecipeHandlers) ListRecipes(c echo.Context) error {
	tenant, err := tenantFrom(c)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	recipes, err := h.recipeService.List(c.Request().Context(), tenant)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"recipes": recipes,
		"count":   len(recipes),
	})
}

// GetRecipe returns one recipe with its ingredients
func (h *RecipeHandlers) GetRecipe(c echo.Context) error {
	tenant, err := tenantFrom(c)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	id, err := parseID(c)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	recipe, err := h.recipeService.GetByID(c.Request().Context(), tenant, id)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, recipe)
}

// CreateRecipe stores a new recipe
func (h *RecipeHandlers) CreateRecipe(c echo.Context) error {
	tenant, err := tenantFrom(c)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	var req services.RecipeRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}
	recipe, err := h.recipeService.Create(c.Request().Context(), tenant, &req)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusCreated, recipe)
}

// UpdateRecipe replaces a recipe and its ingredients
func (h *RecipeHandlers) UpdateRecipe(c echo.Context) error {
	tenant, err := tenantFrom(c)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	id, err := parseID(c)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	var req services.RecipeRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}
	recipe, err := h.recipeService.Update(c.Request().Context(), tenant, id, &req)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, recipe)
}

// DeleteRecipe removes a recipe
func (h *RecipeHandlers) DeleteRecipe(c echo.Context) error {
	tenant, err := tenantFrom(c)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	id, err := parseID(c)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	if err := h.recipeService.Delete(c.Request().Context(), tenant, id); err != nil {
		return respondError(c, h.logger, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// GetRecipeCost prices a recipe at current stock unit costs
func (h *RecipeHandlers) GetRecipeCost(c echo.Context) error {
	tenant, err := tenantFrom(c)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	id, err := parseID(c)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	cost, err := h.recipeService.Cost(c.Request().Context(), tenant, id)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, cost)
}

// ProduceRecipe deducts the ingredients of the given portions from stock
func (h *RecipeHandlers) ProduceRecipe(c echo.Context) error {
	tenant, err := tenantFrom(c)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	id, err := parseID(c)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	var req ProduceRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}
	result, err := h.recipeService.Produce(c.Request().Context(), tenant, id, req.Portions)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusCreated, result)
}

// ListProductions returns the recent productions of a recipe
func (h *RecipeHandlers) ListProductions(c echo.Context) error {
	tenant, err := tenantFrom(c)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	id, err := parseID(c)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	productions, err := h.recipeService.ListProductions(c.Request().Context(), tenant, id, limit)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"productions": productions,
	})
}
