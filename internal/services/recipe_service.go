package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"kitchenstock/internal/caching"
	"kitchenstock/internal/common"
	"kitchenstock/internal/inventory"
	"kitchenstock/internal/models"
	"kitchenstock/internal/repositories"
	"kitchenstock/internal/validation"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// ErrIngredientMissing is returned by Produce when an ingredient does not
// resolve to any stock item. Nothing is deducted in that case.
var ErrIngredientMissing = errors.New("ingredient not found in stock")

// ProductionReasonPrefix prefixes the reason of stock movements made by Produce.
const ProductionReasonPrefix = "Produção: "

type RecipeService interface {
	Create(ctx context.Context, tenantCode string, req *RecipeRequest) (*models.Recipe, error)
	Update(ctx context.Context, tenantCode string, id uuid.UUID, req *RecipeRequest) (*models.Recipe, error)
	GetByID(ctx context.Context, tenantCode string, id uuid.UUID) (*models.Recipe, error)
	List(ctx context.Context, tenantCode string) ([]*models.Recipe, error)
	Delete(ctx context.Context, tenantCode string, id uuid.UUID) error
	Cost(ctx context.Context, tenantCode string, id uuid.UUID) (*models.RecipeCost, error)
	Produce(ctx context.Context, tenantCode string, id uuid.UUID, portions float64) (*ProductionResult, error)
	ListProductions(ctx context.Context, tenantCode string, id uuid.UUID, limit int) ([]*models.Production, error)
}

type RecipeRequest struct {
	Name        string                    `json:"name" validate:"required,max=120"`
	Yield       float64                   `json:"yield" validate:"gt=0"`
	SalePrice   decimal.Decimal           `json:"sale_price"`
	Notes       string                    `json:"notes,omitempty" validate:"max=2000"`
	Ingredients []models.RecipeIngredient `json:"ingredients" validate:"required,min=1,dive"`
}

// ProductionResult is the recorded production and the stock movements it made.
type ProductionResult struct {
	Production *models.Production          `json:"production"`
	Movements  []*inventory.MutationResult `json:"movements"`
}

type recipeService struct {
	repo   repositories.RecipeRepository
	stock  StockProvider
	cache  caching.CacheService
	logger zerolog.Logger
	now    func() time.Time
}

func NewRecipeService(repo repositories.RecipeRepository, stock StockProvider, cache caching.CacheService, logger zerolog.Logger) RecipeService {
	return &recipeService{
		repo:   repo,
		stock:  stock,
		cache:  cache,
		logger: logger.With().Str("component", "recipes").Logger(),
		now:    time.Now,
	}
}

func (s *recipeService) Create(ctx context.Context, tenantCode string, req *RecipeRequest) (*models.Recipe, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}
	now := s.now().UTC()
	recipe := &models.Recipe{
		ID:         uuid.New(),
		TenantCode: tenantCode,
		CreatedAt:  now,
	}
	applyRecipeRequest(recipe, req, now)
	if err := s.repo.Save(ctx, recipe); err != nil {
		return nil, fmt.Errorf("save recipe: %w", err)
	}
	return recipe, nil
}

func (s *recipeService) Update(ctx context.Context, tenantCode string, id uuid.UUID, req *RecipeRequest) (*models.Recipe, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}
	recipe, err := s.repo.GetByID(ctx, tenantCode, id)
	if err != nil {
		return nil, err
	}
	applyRecipeRequest(recipe, req, s.now().UTC())
	if err := s.repo.Save(ctx, recipe); err != nil {
		return nil, fmt.Errorf("save recipe: %w", err)
	}
	s.invalidateCosts(ctx, tenantCode)
	return recipe, nil
}

func applyRecipeRequest(recipe *models.Recipe, req *RecipeRequest, now time.Time) {
	recipe.Name = strings.TrimSpace(req.Name)
	recipe.Yield = req.Yield
	recipe.SalePrice = req.SalePrice
	recipe.Notes = req.Notes
	recipe.Ingredients = make([]models.RecipeIngredient, len(req.Ingredients))
	for i, ing := range req.Ingredients {
		ing.ItemName = strings.TrimSpace(ing.ItemName)
		recipe.Ingredients[i] = ing
	}
	recipe.UpdatedAt = now
}

func (s *recipeService) GetByID(ctx context.Context, tenantCode string, id uuid.UUID) (*models.Recipe, error) {
	return s.repo.GetByID(ctx, tenantCode, id)
}

func (s *recipeService) List(ctx context.Context, tenantCode string) ([]*models.Recipe, error) {
	return s.repo.List(ctx, tenantCode)
}

func (s *recipeService) Delete(ctx context.Context, tenantCode string, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, tenantCode, id); err != nil {
		return err
	}
	s.invalidateCosts(ctx, tenantCode)
	return nil
}

// Cost prices every ingredient at the unit cost of the stock item it
// resolves to. Ingredients without a match or without a cost are listed as
// unpriced and count as zero.
func (s *recipeService) Cost(ctx context.Context, tenantCode string, id uuid.UUID) (*models.RecipeCost, error) {
	if s.cache != nil {
		cached, err := s.cache.GetRecipeCost(ctx, tenantCode, id.String())
		if err != nil {
			s.logger.Warn().Err(err).Str("recipe_id", id.String()).Msg("recipe cost cache read failed")
		} else if cached != nil {
			return cached, nil
		}
	}

	recipe, err := s.repo.GetByID(ctx, tenantCode, id)
	if err != nil {
		return nil, err
	}
	stock, err := s.stock.Stock(ctx, tenantCode)
	if err != nil {
		return nil, err
	}

	cost := &models.RecipeCost{RecipeID: recipe.ID, Total: decimal.Zero, Lines: []models.CostLine{}}
	for _, ing := range recipe.Ingredients {
		item, _, err := stock.FindAnywhere(ing.ItemName)
		if err != nil || item.UnitCost == nil {
			cost.UnpricedItem = append(cost.UnpricedItem, ing.ItemName)
			continue
		}
		unit := decimal.NewFromFloat(*item.UnitCost)
		subtotal := unit.Mul(decimal.NewFromFloat(ing.Quantity)).Round(4)
		cost.Lines = append(cost.Lines, models.CostLine{
			ItemName: item.Name,
			Quantity: ing.Quantity,
			UnitCost: unit,
			Subtotal: subtotal,
		})
		cost.Total = cost.Total.Add(subtotal)
	}
	cost.Total = cost.Total.Round(2)
	cost.PerPortion = cost.Total
	if recipe.Yield > 0 {
		cost.PerPortion = cost.Total.Div(decimal.NewFromFloat(recipe.Yield)).Round(2)
	}
	if recipe.SalePrice.IsPositive() {
		margin := recipe.SalePrice.Sub(cost.PerPortion)
		cost.Margin = &margin
	}

	if s.cache != nil {
		if err := s.cache.SetRecipeCost(ctx, tenantCode, cost); err != nil {
			s.logger.Warn().Err(err).Str("recipe_id", id.String()).Msg("recipe cost cache write failed")
		}
	}
	return cost, nil
}

// Produce deducts the ingredients for the given number of portions. The
// recipe quantities are for Yield portions and are scaled accordingly.
func (s *recipeService) Produce(ctx context.Context, tenantCode string, id uuid.UUID, portions float64) (*ProductionResult, error) {
	if portions <= 0 {
		return nil, &validation.Error{Fields: map[string]string{"portions": "must be greater than 0"}}
	}
	recipe, err := s.repo.GetByID(ctx, tenantCode, id)
	if err != nil {
		return nil, err
	}
	stock, err := s.stock.Stock(ctx, tenantCode)
	if err != nil {
		return nil, err
	}

	type target struct {
		name, sheet string
		quantity    float64
	}
	factor := portions
	if recipe.Yield > 0 {
		factor = portions / recipe.Yield
	}
	targets := make([]target, 0, len(recipe.Ingredients))
	var missing []string
	for _, ing := range recipe.Ingredients {
		item, sheet, err := stock.FindAnywhere(ing.ItemName)
		if err != nil {
			missing = append(missing, ing.ItemName)
			continue
		}
		targets = append(targets, target{name: item.Name, sheet: sheet, quantity: ing.Quantity * factor})
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrIngredientMissing, strings.Join(missing, ", "))
	}

	result := &ProductionResult{Movements: make([]*inventory.MutationResult, 0, len(targets))}
	reason := ProductionReasonPrefix + recipe.Name
	for _, t := range targets {
		res, err := stock.ApplyCorrection(ctx, inventory.CorrectionRequest{
			Name:      t.name,
			Sheet:     t.sheet,
			Quantity:  t.quantity,
			Direction: models.DirectionOut,
			Reason:    reason,
		})
		if err != nil {
			return result, fmt.Errorf("deduct %q: %w", t.name, err)
		}
		result.Movements = append(result.Movements, res)
	}

	production := &models.Production{
		ID:         uuid.New(),
		TenantCode: tenantCode,
		RecipeID:   recipe.ID,
		Portions:   portions,
		ProducedBy: common.ActorFromContext(ctx),
		CreatedAt:  s.now().UTC(),
	}
	if err := s.repo.RecordProduction(ctx, production); err != nil {
		return result, fmt.Errorf("record production: %w", err)
	}
	result.Production = production
	return result, nil
}

func (s *recipeService) ListProductions(ctx context.Context, tenantCode string, id uuid.UUID, limit int) ([]*models.Production, error) {
	if limit <= 0 || limit > 500 {
		limit = 50
	}
	return s.repo.ListProductions(ctx, tenantCode, id, limit)
}

func (s *recipeService) invalidateCosts(ctx context.Context, tenantCode string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateRecipeCosts(ctx, tenantCode); err != nil {
		s.logger.Warn().Err(err).Str("tenant", tenantCode).Msg("recipe cost invalidation failed")
	}
}
