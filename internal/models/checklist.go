package models

import (
	"time"

	"github.com/google/uuid"
)

// Checklist is a dated list of kitchen tasks. Templates have IsTemplate set and no Day.
type Checklist struct {
	ID         uuid.UUID       `json:"id" db:"id"`
	TenantCode string          `json:"tenant_code" db:"tenant_code"`
	Title      string          `json:"title" db:"title"`
	Day        *time.Time      `json:"day,omitempty" db:"day"`
	IsTemplate bool            `json:"is_template" db:"is_template"`
	Items      []ChecklistItem `json:"items"`
	CreatedAt  time.Time       `json:"created_at" db:"created_at"`
}

type ChecklistItem struct {
	ID       uuid.UUID  `json:"id" db:"id"`
	Label    string     `json:"label" db:"label"`
	Position int        `json:"position" db:"position"`
	Done     bool       `json:"done" db:"done"`
	DoneBy   string     `json:"done_by,omitempty" db:"done_by"`
	DoneAt   *time.Time `json:"done_at,omitempty" db:"done_at"`
}
