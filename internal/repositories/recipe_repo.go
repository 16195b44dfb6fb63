package repositories

import (
	"context"

	"kitchenstock/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type RecipeRepository interface {
	Save(ctx context.Context, recipe *models.Recipe) error
	GetByID(ctx context.Context, tenantCode string, id uuid.UUID) (*models.Recipe, error)
	List(ctx context.Context, tenantCode string) ([]*models.Recipe, error)
	Delete(ctx context.Context, tenantCode string, id uuid.UUID) error
	RecordProduction(ctx context.Context, production *models.Production) error
	ListProductions(ctx context.Context, tenantCode string, recipeID uuid.UUID, limit int) ([]*models.Production, error)
}

type recipeRepo struct {
	db Database
}

func NewRecipeRepo(db Database) RecipeRepository {
	return &recipeRepo{db: db}
}

// Save upserts the recipe header and replaces its ingredient lines.
func (r *recipeRepo) Save(ctx context.Context, recipe *models.Recipe) error {
	return inTx(ctx, r.db, func(tx pgx.Tx) error {
		query := `
			INSERT INTO recipes (id, tenant_code, name, yield, sale_price, notes, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
			ON CONFLICT (id) DO UPDATE SET
				name = EXCLUDED.name,
				yield = EXCLUDED.yield,
				sale_price = EXCLUDED.sale_price,
				notes = EXCLUDED.notes,
				updated_at = NOW()
		`
		if _, err := tx.Exec(ctx, query, recipe.ID, recipe.TenantCode, recipe.Name, recipe.Yield, recipe.SalePrice, recipe.Notes); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `DELETE FROM recipe_ingredients WHERE recipe_id = $1`, recipe.ID); err != nil {
			return err
		}
		for i, ing := range recipe.Ingredients {
			_, err := tx.Exec(ctx,
				`INSERT INTO recipe_ingredients (recipe_id, position, item_name, quantity, unit) VALUES ($1, $2, $3, $4, $5)`,
				recipe.ID, i, ing.ItemName, ing.Quantity, ing.Unit)
			if err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *recipeRepo) GetByID(ctx context.Context, tenantCode string, id uuid.UUID) (*models.Recipe, error) {
	recipe := &models.Recipe{}
	query := `
		SELECT id, tenant_code, name, yield, sale_price, notes, created_at, updated_at
		FROM recipes WHERE tenant_code = $1 AND id = $2
	`
	err := r.db.QueryRow(ctx, query, tenantCode, id).Scan(
		&recipe.ID, &recipe.TenantCode, &recipe.Name, &recipe.Yield, &recipe.SalePrice,
		&recipe.Notes, &recipe.CreatedAt, &recipe.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	ingredients, err := r.ingredients(ctx, recipe.ID)
	if err != nil {
		return nil, err
	}
	recipe.Ingredients = ingredients
	return recipe, nil
}

func (r *recipeRepo) List(ctx context.Context, tenantCode string) ([]*models.Recipe, error) {
	query := `
		SELECT id, tenant_code, name, yield, sale_price, notes, created_at, updated_at
		FROM recipes WHERE tenant_code = $1 ORDER BY name
	`
	rows, err := r.db.Query(ctx, query, tenantCode)
	if err != nil {
		return nil, err
	}
	var recipes []*models.Recipe
	for rows.Next() {
		recipe := &models.Recipe{}
		if err := rows.Scan(&recipe.ID, &recipe.TenantCode, &recipe.Name, &recipe.Yield, &recipe.SalePrice,
			&recipe.Notes, &recipe.CreatedAt, &recipe.UpdatedAt); err != nil {
			rows.Close()
			return nil, err
		}
		recipes = append(recipes, recipe)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, recipe := range recipes {
		ingredients, err := r.ingredients(ctx, recipe.ID)
		if err != nil {
			return nil, err
		}
		recipe.Ingredients = ingredients
	}
	return recipes, nil
}

func (r *recipeRepo) ingredients(ctx context.Context, recipeID uuid.UUID) ([]models.RecipeIngredient, error) {
	query := `SELECT item_name, quantity, unit FROM recipe_ingredients WHERE recipe_id = $1 ORDER BY position`
	rows, err := r.db.Query(ctx, query, recipeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.RecipeIngredient
	for rows.Next() {
		var ing models.RecipeIngredient
		if err := rows.Scan(&ing.ItemName, &ing.Quantity, &ing.Unit); err != nil {
			return nil, err
		}
		out = append(out, ing)
	}
	return out, rows.Err()
}

func (r *recipeRepo) Delete(ctx context.Context, tenantCode string, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM recipes WHERE tenant_code = $1 AND id = $2`, tenantCode, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *recipeRepo) RecordProduction(ctx context.Context, p *models.Production) error {
	query := `
		INSERT INTO productions (id, tenant_code, recipe_id, portions, produced_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.db.Exec(ctx, query, p.ID, p.TenantCode, p.RecipeID, p.Portions, p.ProducedBy, p.CreatedAt)
	return err
}

func (r *recipeRepo) ListProductions(ctx context.Context, tenantCode string, recipeID uuid.UUID, limit int) ([]*models.Production, error) {
	query := `
		SELECT id, tenant_code, recipe_id, portions, produced_by, created_at
		FROM productions
		WHERE tenant_code = $1 AND recipe_id = $2
		ORDER BY created_at DESC
		LIMIT $3
	`
	rows, err := r.db.Query(ctx, query, tenantCode, recipeID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*models.Production
	for rows.Next() {
		p := &models.Production{}
		if err := rows.Scan(&p.ID, &p.TenantCode, &p.RecipeID, &p.Portions, &p.ProducedBy, &p.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
