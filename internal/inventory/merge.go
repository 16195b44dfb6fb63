package inventory

import (
	"kitchenstock/internal/models"
)

// MergeSheets reconciles a remote snapshot with local state.
//
// Every sheet name present in either input is present in the output: local
// sheets keep their order and remote-only sheets follow in remote order.
// Within a sheet, items are keyed by id, falling back to name. Local items
// are laid down first and remote items second, so the remote value wins on
// a key collision while keeping the local position. This is the only merge
// precedence in the system.
func MergeSheets(remote, local []models.Sheet) []models.Sheet {
	var order []string
	bySheet := make(map[string]*sheetMerge)

	add := func(sheet models.Sheet) {
		m, ok := bySheet[sheet.Name]
		if !ok {
			m = &sheetMerge{index: make(map[string]int)}
			bySheet[sheet.Name] = m
			order = append(order, sheet.Name)
		}
		for _, item := range sheet.Items {
			m.put(item)
		}
	}

	for _, sheet := range local {
		add(sheet)
	}
	for _, sheet := range remote {
		add(sheet)
	}

	out := make([]models.Sheet, 0, len(order))
	for _, name := range order {
		out = append(out, models.Sheet{Name: name, Items: bySheet[name].items})
	}
	return out
}

type sheetMerge struct {
	index map[string]int
	items []models.InventoryItem
}

func (m *sheetMerge) put(item models.InventoryItem) {
	key := item.Key()
	if i, ok := m.index[key]; ok {
		m.items[i] = item
		return
	}
	m.index[key] = len(m.items)
	m.items = append(m.items, item)
}

// SheetNames lists the names of sheets in order.
func SheetNames(sheets []models.Sheet) []string {
	names := make([]string, len(sheets))
	for i, s := range sheets {
		names[i] = s.Name
	}
	return names
}
