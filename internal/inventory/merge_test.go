package inventory

import (
	"testing"

	"kitchenstock/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMergeSheets_RemoteWinsOnCollision(t *testing.T) {
	local := []models.Sheet{{Name: "Legumes", Items: []models.InventoryItem{{ID: "1", Name: "X", Quantity: 5}}}}
	remote := []models.Sheet{{Name: "Legumes", Items: []models.InventoryItem{{ID: "1", Name: "X", Quantity: 9}}}}

	merged := MergeSheets(remote, local)
	require.Len(t, merged, 1)
	require.Len(t, merged[0].Items, 1)
	assert.Equal(t, 9.0, merged[0].Items[0].Quantity)
}

func TestMergeSheets_UnionOfSheetNames(t *testing.T) {
	cases := []struct {
		remote []models.Sheet
		local  []models.Sheet
		want   []string
	}{
		{nil, nil, []string{}},
		{[]models.Sheet{{Name: "A"}}, nil, []string{"A"}},
		{nil, []models.Sheet{{Name: "B"}}, []string{"B"}},
		{[]models.Sheet{{Name: "A"}, {Name: "C"}}, []models.Sheet{{Name: "B"}, {Name: "A"}}, []string{"B", "A", "C"}},
	}
	for _, c := range cases {
		merged := MergeSheets(c.remote, c.local)
		assert.Equal(t, c.want, SheetNames(merged))
	}
}

func TestMergeSheets_KeysFallBackToName(t *testing.T) {
	local := []models.Sheet{{Name: "Secos", Items: []models.InventoryItem{
		{Name: "Arroz", Quantity: 1},
		{ID: "feijao", Name: "Feijão", Quantity: 2},
	}}}
	remote := []models.Sheet{{Name: "Secos", Items: []models.InventoryItem{
		{Name: "Arroz", Quantity: 7},
		{ID: "macarrao", Name: "Macarrão", Quantity: 3},
	}}}

	merged := MergeSheets(remote, local)
	require.Len(t, merged[0].Items, 3)
	assert.Equal(t, "Arroz", merged[0].Items[0].Name)
	assert.Equal(t, 7.0, merged[0].Items[0].Quantity)
	assert.Equal(t, "Feijão", merged[0].Items[1].Name)
	assert.Equal(t, "Macarrão", merged[0].Items[2].Name)
}

func TestMergeSheets_DoesNotAliasInputs(t *testing.T) {
	local := []models.Sheet{{Name: "A", Items: []models.InventoryItem{{ID: "1", Quantity: 1}}}}
	merged := MergeSheets(nil, local)
	merged[0].Items[0].Quantity = 42
	assert.Equal(t, 1.0, local[0].Items[0].Quantity)
}
