package repositories

import (
	"context"

	"kitchenstock/internal/models"
)

type TenantRepository interface {
	Upsert(ctx context.Context, tenant *models.Tenant) error
	GetByCode(ctx context.Context, code string) (*models.Tenant, error)
	List(ctx context.Context) ([]*models.Tenant, error)
	ListActiveCodes(ctx context.Context) ([]string, error)
	UpdateStatus(ctx context.Context, code, status string) error
}

type tenantRepo struct {
	db Database
}

func NewTenantRepo(db Database) TenantRepository {
	return &tenantRepo{db: db}
}

func (r *tenantRepo) Upsert(ctx context.Context, tenant *models.Tenant) error {
	query := `
		INSERT INTO tenants (code, name, status, created_at, updated_at)
		VALUES ($1, $2, $3, NOW(), NOW())
		ON CONFLICT (code) DO UPDATE SET name = EXCLUDED.name, updated_at = NOW()
	`
	status := tenant.Status
	if status == "" {
		status = models.TenantStatusActive
	}
	_, err := r.db.Exec(ctx, query, tenant.Code, tenant.Name, status)
	return err
}

func (r *tenantRepo) GetByCode(ctx context.Context, code string) (*models.Tenant, error) {
	tenant := &models.Tenant{}
	query := `SELECT code, name, status, created_at, updated_at FROM tenants WHERE code = $1`
	err := r.db.QueryRow(ctx, query, code).Scan(&tenant.Code, &tenant.Name, &tenant.Status, &tenant.CreatedAt, &tenant.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return tenant, nil
}

func (r *tenantRepo) List(ctx context.Context) ([]*models.Tenant, error) {
	query := `SELECT code, name, status, created_at, updated_at FROM tenants ORDER BY code`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tenants []*models.Tenant
	for rows.Next() {
		tenant := &models.Tenant{}
		if err := rows.Scan(&tenant.Code, &tenant.Name, &tenant.Status, &tenant.CreatedAt, &tenant.UpdatedAt); err != nil {
			return nil, err
		}
		tenants = append(tenants, tenant)
	}
	return tenants, rows.Err()
}

func (r *tenantRepo) ListActiveCodes(ctx context.Context) ([]string, error) {
	rows, err := r.db.Query(ctx, `SELECT code FROM tenants WHERE status = $1 ORDER BY code`, models.TenantStatusActive)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var codes []string
	for rows.Next() {
		var code string
		if err := rows.Scan(&code); err != nil {
			return nil, err
		}
		codes = append(codes, code)
	}
	return codes, rows.Err()
}

func (r *tenantRepo) UpdateStatus(ctx context.Context, code, status string) error {
	query := `UPDATE tenants SET status = $1, updated_at = NOW() WHERE code = $2`
	_, err := r.db.Exec(ctx, query, status, code)
	return err
}
