package models

import (
	"time"
)

const (
	TenantStatusActive    = "active"
	TenantStatusSuspended = "suspended"
)

type Tenant struct {
	Code      string    `json:"code" db:"code"`
	Name      string    `json:"name" db:"name"`
	Status    string    `json:"status" db:"status"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

func (t Tenant) IsActive() bool {
	return t.Status == "" || t.Status == TenantStatusActive
}
