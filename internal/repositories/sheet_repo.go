package repositories

import (
	"context"
)

type SheetRepository interface {
	Ensure(ctx context.Context, tenantCode, name string) error
	List(ctx context.Context, tenantCode string) ([]string, error)
}

type sheetRepo struct {
	db Database
}

func NewSheetRepo(db Database) SheetRepository {
	return &sheetRepo{db: db}
}

// Ensure creates the sheet at the end of the tenant's order if it is missing.
func (r *sheetRepo) Ensure(ctx context.Context, tenantCode, name string) error {
	query := `
		INSERT INTO sheets (tenant_code, name, position)
		SELECT $1, $2, COALESCE(MAX(position) + 1, 0) FROM sheets WHERE tenant_code = $1
		ON CONFLICT (tenant_code, name) DO NOTHING
	`
	_, err := r.db.Exec(ctx, query, tenantCode, name)
	return err
}

func (r *sheetRepo) List(ctx context.Context, tenantCode string) ([]string, error) {
	query := `SELECT name FROM sheets WHERE tenant_code = $1 ORDER BY position, name`
	rows, err := r.db.Query(ctx, query, tenantCode)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}
