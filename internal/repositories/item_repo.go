package repositories

import (
	"context"
	"fmt"

	"kitchenstock/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// SheetItem is an item row together with the sheet it belongs to.
type SheetItem struct {
	SheetName string
	Item      models.InventoryItem
}

type ItemRepository interface {
	Upsert(ctx context.Context, tenantCode, sheetName string, item models.InventoryItem) error
	Delete(ctx context.Context, tenantCode, sheetName, itemID string) error
	ListByTenant(ctx context.Context, tenantCode string) ([]SheetItem, error)
	ReplaceSheets(ctx context.Context, tenantCode string, sheets []models.Sheet) error
}

type itemRepo struct {
	db Database
}

func NewItemRepo(db Database) ItemRepository {
	return &itemRepo{db: db}
}

const upsertItemQuery = `
		INSERT INTO items (tenant_code, sheet_name, item_id, name, quantity, unit, category, min_threshold, unit_cost, last_updated, updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (tenant_code, sheet_name, item_id) DO UPDATE SET
			name = EXCLUDED.name,
			quantity = EXCLUDED.quantity,
			unit = EXCLUDED.unit,
			category = EXCLUDED.category,
			min_threshold = EXCLUDED.min_threshold,
			unit_cost = EXCLUDED.unit_cost,
			last_updated = EXCLUDED.last_updated,
			updated_by = EXCLUDED.updated_by
	`

const upsertSheetQuery = `
		INSERT INTO sheets (tenant_code, name, position)
		VALUES ($1, $2, $3)
		ON CONFLICT (tenant_code, name) DO UPDATE SET position = EXCLUDED.position
	`

type execer interface {
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

func upsertItem(ctx context.Context, db execer, tenantCode, sheetName string, item models.InventoryItem) error {
	_, err := db.Exec(ctx, upsertItemQuery,
		tenantCode, sheetName, item.Key(), item.Name, item.Quantity, item.Unit, item.Category,
		item.MinThreshold, item.UnitCost, item.LastUpdated, item.UpdatedBy)
	return err
}

func (r *itemRepo) Upsert(ctx context.Context, tenantCode, sheetName string, item models.InventoryItem) error {
	if err := upsertItem(ctx, r.db, tenantCode, sheetName, item); err != nil {
		return fmt.Errorf("upsert item %q: %w", item.Name, err)
	}
	return nil
}

func (r *itemRepo) Delete(ctx context.Context, tenantCode, sheetName, itemID string) error {
	query := `DELETE FROM items WHERE tenant_code = $1 AND sheet_name = $2 AND item_id = $3`
	_, err := r.db.Exec(ctx, query, tenantCode, sheetName, itemID)
	return err
}

func (r *itemRepo) ListByTenant(ctx context.Context, tenantCode string) ([]SheetItem, error) {
	query := `
		SELECT sheet_name, item_id, name, quantity, unit, category, min_threshold, unit_cost, last_updated, updated_by
		FROM items
		WHERE tenant_code = $1
		ORDER BY sheet_name, name
	`
	rows, err := r.db.Query(ctx, query, tenantCode)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []SheetItem
	for rows.Next() {
		var si SheetItem
		it := &si.Item
		if err := rows.Scan(&si.SheetName, &it.ID, &it.Name, &it.Quantity, &it.Unit, &it.Category,
			&it.MinThreshold, &it.UnitCost, &it.LastUpdated, &it.UpdatedBy); err != nil {
			return nil, err
		}
		out = append(out, si)
	}
	return out, rows.Err()
}

// ReplaceSheets writes every sheet and item and removes item rows of those
// sheets that are no longer present.
func (r *itemRepo) ReplaceSheets(ctx context.Context, tenantCode string, sheets []models.Sheet) error {
	return inTx(ctx, r.db, func(tx pgx.Tx) error {
		for pos, sheet := range sheets {
			if _, err := tx.Exec(ctx, upsertSheetQuery, tenantCode, sheet.Name, pos); err != nil {
				return fmt.Errorf("upsert sheet %q: %w", sheet.Name, err)
			}
			keys := make([]string, 0, len(sheet.Items))
			for _, item := range sheet.Items {
				if err := upsertItem(ctx, tx, tenantCode, sheet.Name, item); err != nil {
					return fmt.Errorf("upsert item %q: %w", item.Name, err)
				}
				keys = append(keys, item.Key())
			}
			prune := `DELETE FROM items WHERE tenant_code = $1 AND sheet_name = $2 AND NOT (item_id = ANY($3))`
			if _, err := tx.Exec(ctx, prune, tenantCode, sheet.Name, keys); err != nil {
				return fmt.Errorf("prune sheet %q: %w", sheet.Name, err)
			}
		}
		return nil
	})
}
