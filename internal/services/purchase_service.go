package services

import (
	"context"
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

// PurchaseReasonPrefix prefixes the reason of stock movements made by Register.
const PurchaseReasonPrefix = "Compra: "

type PurchaseService interface {
	Register(ctx context.Context, tenantCode string, req *PurchaseRequest) (*PurchaseResult, error)
	GetByID(ctx context.Context, tenantCode string, id uuid.UUID) (*models.Purchase, error)
	List(ctx context.Context, tenantCode string, from, to time.Time, limit, offset int) ([]*models.Purchase, error)
}

type PurchaseRequest struct {
	Supplier    string                `json:"supplier" validate:"required,max=120"`
	PurchasedAt time.Time             `json:"purchased_at"`
	InvoiceNo   string                `json:"invoice_no,omitempty" validate:"max=60"`
	Sheet       string                `json:"sheet,omitempty"`
	Lines       []models.PurchaseLine `json:"lines" validate:"required,min=1,dive"`
}

// PurchaseResult is the stored purchase and the entradas it applied. Lines
// that failed to apply are listed in Failed; the purchase is still recorded.
type PurchaseResult struct {
	Purchase  *models.Purchase            `json:"purchase"`
	Movements []*inventory.MutationResult `json:"movements"`
	Failed    map[string]string           `json:"failed,omitempty"`
}

type purchaseService struct {
	repo   repositories.PurchaseRepository
	stock  StockProvider
	cache  caching.CacheService
	logger zerolog.Logger
	now    func() time.Time
}

func NewPurchaseService(repo repositories.PurchaseRepository, stock StockProvider, cache caching.CacheService, logger zerolog.Logger) PurchaseService {
	return &purchaseService{
		repo:   repo,
		stock:  stock,
		cache:  cache,
		logger: logger.With().Str("component", "purchases").Logger(),
		now:    time.Now,
	}
}

// Register stores the purchase and then books each line as an entrada with
// the line's unit price as the new unit cost. Items that resolve to an
// existing stock line are booked on that line's sheet; unknown items are
// created on req.Sheet or the active sheet.
func (s *purchaseService) Register(ctx context.Context, tenantCode string, req *PurchaseRequest) (*PurchaseResult, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}
	now := s.now().UTC()
	purchase := &models.Purchase{
		ID:           uuid.New(),
		TenantCode:   tenantCode,
		Supplier:     strings.TrimSpace(req.Supplier),
		PurchasedAt:  req.PurchasedAt,
		InvoiceNo:    req.InvoiceNo,
		Total:        decimal.Zero,
		RegisteredBy: common.ActorFromContext(ctx),
		Lines:        make([]models.PurchaseLine, len(req.Lines)),
		CreatedAt:    now,
	}
	if purchase.PurchasedAt.IsZero() {
		purchase.PurchasedAt = now
	}
	for i, line := range req.Lines {
		line.ItemName = strings.TrimSpace(line.ItemName)
		purchase.Lines[i] = line
		purchase.Total = purchase.Total.Add(line.Subtotal())
	}
	purchase.Total = purchase.Total.Round(2)

	stock, err := s.stock.Stock(ctx, tenantCode)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, purchase); err != nil {
		return nil, fmt.Errorf("create purchase: %w", err)
	}

	result := &PurchaseResult{Purchase: purchase, Movements: make([]*inventory.MutationResult, 0, len(purchase.Lines))}
	reason := PurchaseReasonPrefix + purchase.Supplier
	for _, line := range purchase.Lines {
		corr := inventory.CorrectionRequest{
			Name:      line.ItemName,
			Quantity:  line.Quantity,
			Direction: models.DirectionIn,
			Reason:    reason,
			Unit:      line.Unit,
			Sheet:     req.Sheet,
		}
		if item, sheet, err := stock.FindAnywhere(line.ItemName); err == nil {
			corr.Name = item.Name
			corr.Sheet = sheet
		}
		if !line.UnitPrice.IsZero() {
			price := line.UnitPrice.InexactFloat64()
			corr.UnitCost = &price
		}
		res, err := stock.ApplyCorrection(ctx, corr)
		if err != nil {
			if result.Failed == nil {
				result.Failed = make(map[string]string)
			}
			result.Failed[line.ItemName] = err.Error()
			s.logger.Warn().Err(err).Str("tenant", tenantCode).Str("item", line.ItemName).Msg("purchase line not applied")
			continue
		}
		result.Movements = append(result.Movements, res)
	}

	if s.cache != nil {
		if err := s.cache.InvalidateRecipeCosts(ctx, tenantCode); err != nil {
			s.logger.Warn().Err(err).Str("tenant", tenantCode).Msg("recipe cost invalidation failed")
		}
	}
	return result, nil
}

func (s *purchaseService) GetByID(ctx context.Context, tenantCode string, id uuid.UUID) (*models.Purchase, error) {
	return s.repo.GetByID(ctx, tenantCode, id)
}

func (s *purchaseService) List(ctx context.Context, tenantCode string, from, to time.Time, limit, offset int) ([]*models.Purchase, error) {
	limit, offset, err := common.ValidatePaginationParams(limit, offset)
	if err != nil {
		return nil, err
	}
	if to.IsZero() {
		to = s.now().UTC()
	}
	if from.IsZero() {
		from = to.AddDate(0, -1, 0)
	}
	if from.After(to) {
		return nil, &validation.Error{Fields: map[string]string{"from": "must not be after to"}}
	}
	return s.repo.List(ctx, tenantCode, from, to, limit, offset)
}
