package services

import (
	"context"

	"kitchenstock/internal/inventory"
	"kitchenstock/internal/models"
)

// Stock is the part of a tenant's inventory engine the services drive.
// *inventory.Engine implements it.
type Stock interface {
	ApplyCorrection(ctx context.Context, req inventory.CorrectionRequest) (*inventory.MutationResult, error)
	FindAnywhere(name string) (models.InventoryItem, string, error)
	Import(ctx context.Context, sheets []models.Sheet) (int, error)
	Sheets() []models.Sheet
	Log() []models.UpdateLogEntry
	LowStock() []models.LowStockAlert
}

// StockProvider returns the Stock of a tenant.
type StockProvider interface {
	Stock(ctx context.Context, tenantCode string) (Stock, error)
}

type registryStock struct {
	registry *inventory.Registry
}

// NewStockProvider serves engines from the tenant registry.
func NewStockProvider(registry *inventory.Registry) StockProvider {
	return &registryStock{registry: registry}
}

func (r *registryStock) Stock(ctx context.Context, tenantCode string) (Stock, error) {
	engine, err := r.registry.Get(ctx, tenantCode)
	if err != nil {
		return nil, err
	}
	return engine, nil
}
