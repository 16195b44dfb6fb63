package repositories

import (
	"context"
	"time"

	"kitchenstock/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type PurchaseRepository interface {
	Create(ctx context.Context, purchase *models.Purchase) error
	GetByID(ctx context.Context, tenantCode string, id uuid.UUID) (*models.Purchase, error)
	List(ctx context.Context, tenantCode string, from, to time.Time, limit, offset int) ([]*models.Purchase, error)
}

type purchaseRepo struct {
	db Database
}

func NewPurchaseRepo(db Database) PurchaseRepository {
	return &purchaseRepo{db: db}
}

func (r *purchaseRepo) Create(ctx context.Context, p *models.Purchase) error {
	return inTx(ctx, r.db, func(tx pgx.Tx) error {
		query := `
			INSERT INTO purchases (id, tenant_code, supplier, purchased_at, invoice_no, total, registered_by, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
		`
		if _, err := tx.Exec(ctx, query, p.ID, p.TenantCode, p.Supplier, p.PurchasedAt, p.InvoiceNo, p.Total, p.RegisteredBy); err != nil {
			return err
		}
		for i, line := range p.Lines {
			_, err := tx.Exec(ctx, `
				INSERT INTO purchase_items (purchase_id, position, item_name, quantity, unit, unit_price)
				VALUES ($1, $2, $3, $4, $5, $6)`,
				p.ID, i, line.ItemName, line.Quantity, line.Unit, line.UnitPrice)
			if err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *purchaseRepo) GetByID(ctx context.Context, tenantCode string, id uuid.UUID) (*models.Purchase, error) {
	p := &models.Purchase{}
	query := `
		SELECT id, tenant_code, supplier, purchased_at, invoice_no, total, registered_by, created_at
		FROM purchases WHERE tenant_code = $1 AND id = $2
	`
	err := r.db.QueryRow(ctx, query, tenantCode, id).Scan(
		&p.ID, &p.TenantCode, &p.Supplier, &p.PurchasedAt, &p.InvoiceNo, &p.Total, &p.RegisteredBy, &p.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, `
		SELECT item_name, quantity, unit, unit_price
		FROM purchase_items WHERE purchase_id = $1 ORDER BY position`, p.ID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var line models.PurchaseLine
		if err := rows.Scan(&line.ItemName, &line.Quantity, &line.Unit, &line.UnitPrice); err != nil {
			return nil, err
		}
		p.Lines = append(p.Lines, line)
	}
	return p, rows.Err()
}

// List returns purchase headers in the date range, newest first. Lines are not loaded.
func (r *purchaseRepo) List(ctx context.Context, tenantCode string, from, to time.Time, limit, offset int) ([]*models.Purchase, error) {
	query := `
		SELECT id, tenant_code, supplier, purchased_at, invoice_no, total, registered_by, created_at
		FROM purchases
		WHERE tenant_code = $1 AND purchased_at BETWEEN $2 AND $3
		ORDER BY purchased_at DESC, created_at DESC
		LIMIT $4 OFFSET $5
	`
	rows, err := r.db.Query(ctx, query, tenantCode, from, to, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*models.Purchase
	for rows.Next() {
		p := &models.Purchase{}
		if err := rows.Scan(&p.ID, &p.TenantCode, &p.Supplier, &p.PurchasedAt, &p.InvoiceNo, &p.Total, &p.RegisteredBy, &p.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
