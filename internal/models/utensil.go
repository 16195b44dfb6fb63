package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	UtensilConditionGood   = "bom"
	UtensilConditionWorn   = "desgastado"
	UtensilConditionBroken = "quebrado"
)

type Utensil struct {
	ID         uuid.UUID `json:"id" db:"id"`
	TenantCode string    `json:"tenant_code" db:"tenant_code"`
	Name       string    `json:"name" db:"name" validate:"required"`
	Quantity   int       `json:"quantity" db:"quantity" validate:"gte=0"`
	Condition  string    `json:"condition" db:"condition" validate:"omitempty,oneof=bom desgastado quebrado"`
	Location   string    `json:"location,omitempty" db:"location"`
	UpdatedAt  time.Time `json:"updated_at" db:"updated_at"`
}
