package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Recipe struct {
	ID          uuid.UUID          `json:"id" db:"id"`
	TenantCode  string             `json:"tenant_code" db:"tenant_code"`
	Name        string             `json:"name" db:"name"`
	Yield       float64            `json:"yield" db:"yield"`
	SalePrice   decimal.Decimal    `json:"sale_price" db:"sale_price"`
	Notes       string             `json:"notes,omitempty" db:"notes"`
	Ingredients []RecipeIngredient `json:"ingredients"`
	CreatedAt   time.Time          `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at" db:"updated_at"`
}

type RecipeIngredient struct {
	ItemName string  `json:"item_name" db:"item_name" validate:"required"`
	Quantity float64 `json:"quantity" db:"quantity" validate:"gt=0"`
	Unit     string  `json:"unit" db:"unit"`
}

// RecipeCost is the costing breakdown of a recipe against current stock prices.
type RecipeCost struct {
	RecipeID     uuid.UUID        `json:"recipe_id"`
	Total        decimal.Decimal  `json:"total"`
	PerPortion   decimal.Decimal  `json:"per_portion"`
	Margin       *decimal.Decimal `json:"margin,omitempty"`
	Lines        []CostLine       `json:"lines"`
	UnpricedItem []string         `json:"unpriced_items,omitempty"`
}

type CostLine struct {
	ItemName string          `json:"item_name"`
	Quantity float64         `json:"quantity"`
	UnitCost decimal.Decimal `json:"unit_cost"`
	Subtotal decimal.Decimal `json:"subtotal"`
}

// Production records a batch made from a recipe and the stock it consumed.
type Production struct {
	ID         uuid.UUID `json:"id" db:"id"`
	TenantCode string    `json:"tenant_code" db:"tenant_code"`
	RecipeID   uuid.UUID `json:"recipe_id" db:"recipe_id"`
	Portions   float64   `json:"portions" db:"portions"`
	ProducedBy string    `json:"produced_by" db:"produced_by"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}
