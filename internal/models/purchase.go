package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Purchase struct {
	ID           uuid.UUID       `json:"id" db:"id"`
	TenantCode   string          `json:"tenant_code" db:"tenant_code"`
	Supplier     string          `json:"supplier" db:"supplier"`
	PurchasedAt  time.Time       `json:"purchased_at" db:"purchased_at"`
	InvoiceNo    string          `json:"invoice_no,omitempty" db:"invoice_no"`
	Total        decimal.Decimal `json:"total" db:"total"`
	RegisteredBy string          `json:"registered_by" db:"registered_by"`
	Lines        []PurchaseLine  `json:"lines"`
	CreatedAt    time.Time       `json:"created_at" db:"created_at"`
}

type PurchaseLine struct {
	ItemName  string          `json:"item_name" db:"item_name" validate:"required"`
	Quantity  float64         `json:"quantity" db:"quantity" validate:"gt=0"`
	Unit      string          `json:"unit,omitempty" db:"unit"`
	UnitPrice decimal.Decimal `json:"unit_price" db:"unit_price"`
}

// Subtotal is quantity times unit price.
func (l PurchaseLine) Subtotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromFloat(l.Quantity))
}
