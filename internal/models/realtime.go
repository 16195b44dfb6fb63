package models

import "time"

// ChangeOp is the row operation carried by a change event.
type ChangeOp string

const (
	ChangeInsert ChangeOp = "insert"
	ChangeUpdate ChangeOp = "update"
	ChangeDelete ChangeOp = "delete"
)

// ChangeEvent is published whenever an item row changes for a tenant.
type ChangeEvent struct {
	Table      string        `json:"table"`
	Op         ChangeOp      `json:"op"`
	TenantCode string        `json:"tenant_code"`
	SheetName  string        `json:"sheet_name"`
	Item       InventoryItem `json:"item"`
	Origin     string        `json:"origin"`
	At         time.Time     `json:"at"`
}
