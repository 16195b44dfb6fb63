package spreadsheet

import (
	"bytes"
	"testing"
	"time"

	"kitchenstock/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func buildWorkbook(t *testing.T, tabs map[string][][]interface{}, order []string) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	for i, tab := range order {
		if i == 0 {
			require.NoError(t, f.SetSheetName(f.GetSheetName(0), tab))
		} else {
			_, err := f.NewSheet(tab)
			require.NoError(t, err)
		}
		for r, row := range tabs[tab] {
			for c, v := range row {
				name, err := excelize.CoordinatesToCellName(c+1, r+1)
				require.NoError(t, err)
				require.NoError(t, f.SetCellValue(tab, name, v))
			}
		}
	}
	var buf bytes.Buffer
	_, err := f.WriteTo(&buf)
	require.NoError(t, err)
	return buf.Bytes()
}

func TestDecodeHeaderAliasesAndDuplicates(t *testing.T) {
	data := buildWorkbook(t, map[string][][]interface{}{
		"Hortifruti": {
			{},
			{"Produto", "Qtde", "Unid.", "Estoque mínimo", "Preço unitário"},
			{"Tomate", "2,5", "kg", "3", "4,90"},
			{"Alface", 6, "un", "", ""},
			{"tomate", "7", "kg", "", ""},
			{"", "", "", "", ""},
			{"", "4", "", "", ""},
			{"Cebola", "muito", "kg", "", ""},
		},
		"Log": {
			{"Data", "Item"},
			{"2024-05-01", "Tomate"},
		},
	}, []string{"Hortifruti", "Log"})

	sheets, issues, err := Decode(bytes.NewReader(data))
	require.NoError(t, err)
	require.Len(t, sheets, 1)

	sheet := sheets[0]
	assert.Equal(t, "Hortifruti", sheet.Name)
	require.Len(t, sheet.Items, 2)
	assert.Equal(t, "tomate", sheet.Items[0].Name)
	assert.Equal(t, 7.0, sheet.Items[0].Quantity)
	assert.Nil(t, sheet.Items[0].MinThreshold)
	assert.Equal(t, "Alface", sheet.Items[1].Name)
	assert.Equal(t, 6.0, sheet.Items[1].Quantity)
	assert.Equal(t, "un", sheet.Items[1].Unit)

	require.Len(t, issues, 2)
	assert.Equal(t, 7, issues[0].Row)
	assert.Equal(t, "missing item name", issues[0].Reason)
	assert.Equal(t, 8, issues[1].Row)
}

func TestDecodeWithoutNameColumn(t *testing.T) {
	data := buildWorkbook(t, map[string][][]interface{}{
		"Secos": {{"Quantidade", "Unidade"}, {"3", "kg"}},
	}, []string{"Secos"})

	_, issues, err := Decode(bytes.NewReader(data))
	assert.ErrorIs(t, err, ErrNoSheets)
	require.Len(t, issues, 1)
	assert.Equal(t, "no name column in header", issues[0].Reason)
}

func TestEncodeThenDecodeKeepsSheets(t *testing.T) {
	minimum := 2.0
	cost := 5.5
	sheets := []models.Sheet{
		{Name: "Hortifruti", Items: []models.InventoryItem{
			{Name: "Tomate", Quantity: 4.5, Unit: "kg", Category: "Hortifruti", MinThreshold: &minimum, UnitCost: &cost},
		}},
		{Name: "Secos/Grãos", Items: []models.InventoryItem{{Name: "Arroz", Quantity: 10, Unit: "kg"}}},
	}
	log := []models.UpdateLogEntry{{
		ItemName: "Tomate", Change: 1.5, NewQuantity: 4.5, UpdatedBy: "ana",
		Timestamp: time.Date(2024, 5, 2, 10, 0, 0, 0, time.UTC), Type: models.LogTypeAdd,
	}}

	data, err := Encode(sheets, log)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, []string{"Hortifruti", "Secos-Grãos", "Log"}, f.GetSheetList())
	f.Close()

	got, issues, err := Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Empty(t, issues)
	require.Len(t, got, 2)
	assert.Equal(t, 4.5, got[0].Items[0].Quantity)
	assert.Equal(t, 2.0, *got[0].Items[0].MinThreshold)
	assert.Equal(t, 5.5, *got[0].Items[0].UnitCost)
	assert.Equal(t, "Arroz", got[1].Items[0].Name)
}

func TestParseNumber(t *testing.T) {
	cases := map[string]float64{
		"":        0,
		"3":       3,
		"2,5":     2.5,
		"1.234,5": 1234.5,
		"1,234.5": 1234.5,
		"R$ 4,90": 4.9,
		"0.75":    0.75,
	}
	for in, want := range cases {
		got, err := ParseNumber(in)
		require.NoError(t, err, in)
		assert.InDelta(t, want, got, 1e-9, in)
	}
	_, err := ParseNumber("muito")
	assert.Error(t, err)
}

func TestUniqueTab(t *testing.T) {
	used := map[string]bool{}
	assert.Equal(t, "Carnes", uniqueTab("Carnes", used))
	assert.Equal(t, "Carnes (2)", uniqueTab("carnes", used))
	assert.Equal(t, "Planilha", uniqueTab("  ", used))
	long := uniqueTab("Uma planilha com um nome muito longo demais", used)
	assert.Len(t, []rune(long), 31)
}
