package repositories

import (
	"context"

	"kitchenstock/internal/models"
)

type UpdateLogRepository interface {
	Append(ctx context.Context, tenantCode string, entry models.UpdateLogEntry) error
	List(ctx context.Context, tenantCode string, limit, offset int) ([]models.UpdateLogEntry, error)
	ListByItem(ctx context.Context, tenantCode, itemName string, limit int) ([]models.UpdateLogEntry, error)
}

type updateLogRepo struct {
	db Database
}

func NewUpdateLogRepo(db Database) UpdateLogRepository {
	return &updateLogRepo{db: db}
}

// Append is idempotent on log_id so outbox replays never duplicate entries.
func (r *updateLogRepo) Append(ctx context.Context, tenantCode string, entry models.UpdateLogEntry) error {
	query := `
		INSERT INTO update_logs (log_id, tenant_code, item_name, change, new_quantity, updated_by, timestamp, type, reason)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (log_id) DO NOTHING
	`
	_, err := r.db.Exec(ctx, query, entry.ID, tenantCode, entry.ItemName, entry.Change, entry.NewQuantity,
		entry.UpdatedBy, entry.Timestamp, string(entry.Type), entry.Reason)
	return err
}

func (r *updateLogRepo) List(ctx context.Context, tenantCode string, limit, offset int) ([]models.UpdateLogEntry, error) {
	query := `
		SELECT log_id, item_name, change, new_quantity, updated_by, timestamp, type, reason
		FROM update_logs
		WHERE tenant_code = $1
		ORDER BY timestamp DESC
		LIMIT $2 OFFSET $3
	`
	return r.query(ctx, query, tenantCode, limit, offset)
}

func (r *updateLogRepo) ListByItem(ctx context.Context, tenantCode, itemName string, limit int) ([]models.UpdateLogEntry, error) {
	query := `
		SELECT log_id, item_name, change, new_quantity, updated_by, timestamp, type, reason
		FROM update_logs
		WHERE tenant_code = $1 AND lower(item_name) = lower($2)
		ORDER BY timestamp DESC
		LIMIT $3
	`
	return r.query(ctx, query, tenantCode, itemName, limit)
}

func (r *updateLogRepo) query(ctx context.Context, query string, args ...interface{}) ([]models.UpdateLogEntry, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []models.UpdateLogEntry
	for rows.Next() {
		var e models.UpdateLogEntry
		var typ string
		if err := rows.Scan(&e.ID, &e.ItemName, &e.Change, &e.NewQuantity, &e.UpdatedBy, &e.Timestamp, &typ, &e.Reason); err != nil {
			return nil, err
		}
		e.Type = models.LogType(typ)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
