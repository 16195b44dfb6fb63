package repositories

import (
	"context"

	"kitchenstock/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type UtensilRepository interface {
	Create(ctx context.Context, utensil *models.Utensil) error
	Update(ctx context.Context, utensil *models.Utensil) error
	GetByID(ctx context.Context, tenantCode string, id uuid.UUID) (*models.Utensil, error)
	List(ctx context.Context, tenantCode string) ([]*models.Utensil, error)
	Delete(ctx context.Context, tenantCode string, id uuid.UUID) error
}

type utensilRepo struct {
	db Database
}

func NewUtensilRepo(db Database) UtensilRepository {
	return &utensilRepo{db: db}
}

func (r *utensilRepo) Create(ctx context.Context, u *models.Utensil) error {
	query := `
		INSERT INTO utensils (id, tenant_code, name, quantity, condition, location, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
	`
	_, err := r.db.Exec(ctx, query, u.ID, u.TenantCode, u.Name, u.Quantity, u.Condition, u.Location)
	return err
}

func (r *utensilRepo) Update(ctx context.Context, u *models.Utensil) error {
	query := `
		UPDATE utensils SET name = $1, quantity = $2, condition = $3, location = $4, updated_at = NOW()
		WHERE tenant_code = $5 AND id = $6
	`
	tag, err := r.db.Exec(ctx, query, u.Name, u.Quantity, u.Condition, u.Location, u.TenantCode, u.ID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *utensilRepo) GetByID(ctx context.Context, tenantCode string, id uuid.UUID) (*models.Utensil, error) {
	u := &models.Utensil{}
	query := `
		SELECT id, tenant_code, name, quantity, condition, location, updated_at
		FROM utensils WHERE tenant_code = $1 AND id = $2
	`
	err := r.db.QueryRow(ctx, query, tenantCode, id).Scan(&u.ID, &u.TenantCode, &u.Name, &u.Quantity, &u.Condition, &u.Location, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return u, nil
}

func (r *utensilRepo) List(ctx context.Context, tenantCode string) ([]*models.Utensil, error) {
	query := `
		SELECT id, tenant_code, name, quantity, condition, location, updated_at
		FROM utensils WHERE tenant_code = $1 ORDER BY name
	`
	rows, err := r.db.Query(ctx, query, tenantCode)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*models.Utensil
	for rows.Next() {
		u := &models.Utensil{}
		if err := rows.Scan(&u.ID, &u.TenantCode, &u.Name, &u.Quantity, &u.Condition, &u.Location, &u.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func (r *utensilRepo) Delete(ctx context.Context, tenantCode string, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM utensils WHERE tenant_code = $1 AND id = $2`, tenantCode, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
