package models

import (
	"strings"
	"time"
)

// DefaultUnit is assigned to items created from a bare name.
const DefaultUnit = "un"

// InventoryItem is a single stock line inside a sheet.
type InventoryItem struct {
	ID           string    `json:"id" db:"item_id"`
	Name         string    `json:"name" db:"name"`
	Quantity     float64   `json:"quantity" db:"quantity"`
	Unit         string    `json:"unit" db:"unit"`
	Category     string    `json:"category" db:"category"`
	MinThreshold *float64  `json:"min_threshold,omitempty" db:"min_threshold"`
	UnitCost     *float64  `json:"unit_cost,omitempty" db:"unit_cost"`
	LastUpdated  time.Time `json:"last_updated" db:"last_updated"`
	UpdatedBy    string    `json:"updated_by" db:"updated_by"`
}

// Key identifies the item inside its sheet: the id when present, otherwise the name.
func (i InventoryItem) Key() string {
	if i.ID != "" {
		return i.ID
	}
	return i.Name
}

// BelowMinimum reports whether the item sits under a configured, positive minimum.
func (i InventoryItem) BelowMinimum() bool {
	return i.MinThreshold != nil && *i.MinThreshold > 0 && i.Quantity < *i.MinThreshold
}

// Sheet is a named grouping of items, usually a storage area or an imported tab.
type Sheet struct {
	Name  string          `json:"name" db:"name"`
	Items []InventoryItem `json:"items"`
}

// Clone returns a deep copy so callers cannot mutate engine-owned slices.
func (s Sheet) Clone() Sheet {
	items := make([]InventoryItem, len(s.Items))
	copy(items, s.Items)
	return Sheet{Name: s.Name, Items: items}
}

// CloneSheets deep-copies a slice of sheets.
func CloneSheets(sheets []Sheet) []Sheet {
	out := make([]Sheet, len(sheets))
	for i, s := range sheets {
		out[i] = s.Clone()
	}
	return out
}

// LogType tags an update log entry.
type LogType string

const (
	LogTypeAdd      LogType = "add"
	LogTypeSubtract LogType = "subtract"
	LogTypeSet      LogType = "set"
)

// Direction is the movement kind of a manual correction.
type Direction string

const (
	DirectionIn         Direction = "entrada"
	DirectionOut        Direction = "saida"
	DirectionCorrection Direction = "correcao"
)

// ParseDirection accepts the canonical values plus their accented spellings.
func ParseDirection(s string) (Direction, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "entrada", "in":
		return DirectionIn, true
	case "saida", "saída", "out":
		return DirectionOut, true
	case "correcao", "correção", "set":
		return DirectionCorrection, true
	}
	return "", false
}

// UpdateLogEntry is an immutable record of one mutation.
type UpdateLogEntry struct {
	ID          string    `json:"id" db:"log_id"`
	ItemName    string    `json:"item_name" db:"item_name"`
	Change      float64   `json:"change" db:"change"`
	NewQuantity float64   `json:"new_quantity" db:"new_quantity"`
	UpdatedBy   string    `json:"updated_by" db:"updated_by"`
	Timestamp   time.Time `json:"timestamp" db:"timestamp"`
	Type        LogType   `json:"type" db:"type"`
	Reason      string    `json:"reason,omitempty" db:"reason"`
}

// Snapshot is the full local state of one tenant, mirrored for restart continuity.
type Snapshot struct {
	TenantCode  string           `json:"tenant_code"`
	ActiveSheet string           `json:"active_sheet"`
	Sheets      []Sheet          `json:"sheets"`
	Log         []UpdateLogEntry `json:"log"`
	SavedAt     time.Time        `json:"saved_at"`
}

// LowStockAlert describes an item that dropped below its minimum.
type LowStockAlert struct {
	TenantCode   string    `json:"tenant_code"`
	SheetName    string    `json:"sheet_name"`
	ItemName     string    `json:"item_name"`
	Quantity     float64   `json:"quantity"`
	MinThreshold float64   `json:"min_threshold"`
	Unit         string    `json:"unit"`
	UpdatedBy    string    `json:"updated_by"`
	At           time.Time `json:"at"`
}
