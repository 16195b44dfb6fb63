package repositories

import (
	"context"
	"time"

	"kitchenstock/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type ChecklistRepository interface {
	Create(ctx context.Context, checklist *models.Checklist) error
	GetByID(ctx context.Context, tenantCode string, id uuid.UUID) (*models.Checklist, error)
	ListTemplates(ctx context.Context, tenantCode string) ([]*models.Checklist, error)
	ListByDay(ctx context.Context, tenantCode string, day time.Time) ([]*models.Checklist, error)
	SetItemDone(ctx context.Context, tenantCode string, itemID uuid.UUID, done bool, doneBy string, at time.Time) error
}

type checklistRepo struct {
	db Database
}

func NewChecklistRepo(db Database) ChecklistRepository {
	return &checklistRepo{db: db}
}

// Create inserts a checklist with its items. A dated checklist that already
// exists for the same title and day is left untouched.
func (r *checklistRepo) Create(ctx context.Context, c *models.Checklist) error {
	return inTx(ctx, r.db, func(tx pgx.Tx) error {
		query := `
			INSERT INTO checklists (id, tenant_code, title, day, is_template, created_at)
			VALUES ($1, $2, $3, $4, $5, NOW())
			ON CONFLICT DO NOTHING
		`
		tag, err := tx.Exec(ctx, query, c.ID, c.TenantCode, c.Title, c.Day, c.IsTemplate)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return nil
		}
		for i, item := range c.Items {
			_, err := tx.Exec(ctx, `
				INSERT INTO checklist_items (id, checklist_id, label, position, done, done_by, done_at)
				VALUES ($1, $2, $3, $4, $5, $6, $7)`,
				item.ID, c.ID, item.Label, i, item.Done, item.DoneBy, item.DoneAt)
			if err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *checklistRepo) GetByID(ctx context.Context, tenantCode string, id uuid.UUID) (*models.Checklist, error) {
	c := &models.Checklist{}
	query := `SELECT id, tenant_code, title, day, is_template, created_at FROM checklists WHERE tenant_code = $1 AND id = $2`
	if err := r.db.QueryRow(ctx, query, tenantCode, id).Scan(&c.ID, &c.TenantCode, &c.Title, &c.Day, &c.IsTemplate, &c.CreatedAt); err != nil {
		return nil, err
	}
	items, err := r.items(ctx, c.ID)
	if err != nil {
		return nil, err
	}
	c.Items = items
	return c, nil
}

func (r *checklistRepo) ListTemplates(ctx context.Context, tenantCode string) ([]*models.Checklist, error) {
	query := `
		SELECT id, tenant_code, title, day, is_template, created_at
		FROM checklists WHERE tenant_code = $1 AND is_template ORDER BY title
	`
	return r.list(ctx, query, tenantCode)
}

func (r *checklistRepo) ListByDay(ctx context.Context, tenantCode string, day time.Time) ([]*models.Checklist, error) {
	query := `
		SELECT id, tenant_code, title, day, is_template, created_at
		FROM checklists WHERE tenant_code = $1 AND day = $2 ORDER BY title
	`
	return r.list(ctx, query, tenantCode, day)
}

func (r *checklistRepo) list(ctx context.Context, query string, args ...interface{}) ([]*models.Checklist, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	var out []*models.Checklist
	for rows.Next() {
		c := &models.Checklist{}
		if err := rows.Scan(&c.ID, &c.TenantCode, &c.Title, &c.Day, &c.IsTemplate, &c.CreatedAt); err != nil {
			rows.Close()
			return nil, err
		}
		out = append(out, c)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for _, c := range out {
		items, err := r.items(ctx, c.ID)
		if err != nil {
			return nil, err
		}
		c.Items = items
	}
	return out, nil
}

func (r *checklistRepo) items(ctx context.Context, checklistID uuid.UUID) ([]models.ChecklistItem, error) {
	query := `
		SELECT id, label, position, done, done_by, done_at
		FROM checklist_items WHERE checklist_id = $1 ORDER BY position
	`
	rows, err := r.db.Query(ctx, query, checklistID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []models.ChecklistItem
	for rows.Next() {
		var it models.ChecklistItem
		if err := rows.Scan(&it.ID, &it.Label, &it.Position, &it.Done, &it.DoneBy, &it.DoneAt); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func (r *checklistRepo) SetItemDone(ctx context.Context, tenantCode string, itemID uuid.UUID, done bool, doneBy string, at time.Time) error {
	query := `
		UPDATE checklist_items ci
		SET done = $1, done_by = $2, done_at = $3
		FROM checklists c
		WHERE ci.checklist_id = c.id AND c.tenant_code = $4 AND ci.id = $5
	`
	var doneAt *time.Time
	if done {
		doneAt = &at
	} else {
		doneBy = ""
	}
	tag, err := r.db.Exec(ctx, query, done, doneBy, doneAt, tenantCode, itemID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
