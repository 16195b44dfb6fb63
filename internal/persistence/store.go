package persistence

import (
	"context"
	"sort"

	"kitchenstock/internal/models"
	"kitchenstock/internal/repositories"
)

// Writer is the set of remote writes that can be retried through the outbox.
type Writer interface {
	UpsertItem(ctx context.Context, tenantCode, sheetName string, item models.InventoryItem) Result
	AppendLog(ctx context.Context, tenantCode string, entry models.UpdateLogEntry) Result
	SyncSheets(ctx context.Context, tenantCode string, sheets []models.Sheet) Result
}

// Store is the Postgres backed remote store.
type Store struct {
	items  repositories.ItemRepository
	sheets repositories.SheetRepository
	logs   repositories.UpdateLogRepository
}

func NewStore(items repositories.ItemRepository, sheets repositories.SheetRepository, logs repositories.UpdateLogRepository) *Store {
	return &Store{items: items, sheets: sheets, logs: logs}
}

func (s *Store) UpsertItem(ctx context.Context, tenantCode, sheetName string, item models.InventoryItem) Result {
	if err := s.sheets.Ensure(ctx, tenantCode, sheetName); err != nil {
		return Classify(err)
	}
	return Classify(s.items.Upsert(ctx, tenantCode, sheetName, item))
}

func (s *Store) AppendLog(ctx context.Context, tenantCode string, entry models.UpdateLogEntry) Result {
	return Classify(s.logs.Append(ctx, tenantCode, entry))
}

func (s *Store) SyncSheets(ctx context.Context, tenantCode string, sheets []models.Sheet) Result {
	return Classify(s.items.ReplaceSheets(ctx, tenantCode, sheets))
}

// FetchSnapshot loads every sheet of the tenant in position order. Item rows
// whose sheet has no sheets row are grouped under their own sheet after the
// known ones.
func (s *Store) FetchSnapshot(ctx context.Context, tenantCode string) ([]models.Sheet, error) {
	names, err := s.sheets.List(ctx, tenantCode)
	if err != nil {
		return nil, err
	}
	rows, err := s.items.ListByTenant(ctx, tenantCode)
	if err != nil {
		return nil, err
	}

	index := make(map[string]int, len(names))
	sheets := make([]models.Sheet, 0, len(names))
	for _, name := range names {
		index[name] = len(sheets)
		sheets = append(sheets, models.Sheet{Name: name})
	}

	var orphans []string
	for _, row := range rows {
		i, ok := index[row.SheetName]
		if !ok {
			i = len(sheets)
			index[row.SheetName] = i
			sheets = append(sheets, models.Sheet{Name: row.SheetName})
			orphans = append(orphans, row.SheetName)
		}
		sheets[i].Items = append(sheets[i].Items, row.Item)
	}
	if len(orphans) > 1 {
		known := sheets[:len(names)]
		extra := sheets[len(names):]
		sort.SliceStable(extra, func(a, b int) bool { return extra[a].Name < extra[b].Name })
		sheets = append(known, extra...)
	}
	return sheets, nil
}
