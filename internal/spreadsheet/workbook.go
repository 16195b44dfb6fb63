// Package spreadsheet reads and writes inventory workbooks. Each tab is one
// sheet; an optional "Log" tab carries the update log on export and is
// ignored on import.
package spreadsheet

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode"

	"kitchenstock/internal/models"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// LogTab is the name of the tab holding the update log.
const LogTab = "Log"

const maxTabName = 31

var (
	ErrNoSheets   = errors.New("workbook has no inventory tabs")
	ErrUnreadable = errors.New("file is not a readable xlsx workbook")
)

type column int

const (
	colName column = iota
	colQuantity
	colUnit
	colCategory
	colMin
	colCost
)

var headerAliases = map[string]column{
	"nome": colName, "item": colName, "produto": colName, "name": colName, "ingrediente": colName, "insumo": colName,
	"quantidade": colQuantity, "qtd": colQuantity, "qtde": colQuantity, "quantity": colQuantity, "qty": colQuantity, "estoque": colQuantity,
	"unidade": colUnit, "un": colUnit, "unid": colUnit, "unit": colUnit, "medida": colUnit,
	"categoria": colCategory, "category": colCategory, "grupo": colCategory,
	"minimo": colMin, "estoque minimo": colMin, "min": colMin, "min threshold": colMin, "minimum": colMin,
	"custo": colCost, "custo unitario": colCost, "preco": colCost, "preco unitario": colCost, "unit cost": colCost, "cost": colCost,
}

// RowIssue is a row that was skipped during import.
type RowIssue struct {
	Sheet  string `json:"sheet"`
	Row    int    `json:"row"`
	Reason string `json:"reason"`
}

// Decode reads every tab except LogTab. Rows with a name are imported;
// within a tab a repeated name (ignoring case) overwrites the earlier row's
// values in place.
func Decode(r io.Reader) ([]models.Sheet, []RowIssue, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrUnreadable, err)
	}
	defer f.Close()

	var sheets []models.Sheet
	var issues []RowIssue
	for _, tab := range f.GetSheetList() {
		if strings.EqualFold(tab, LogTab) {
			continue
		}
		rows, err := f.GetRows(tab)
		if err != nil {
			return nil, nil, fmt.Errorf("read tab %q: %w", tab, err)
		}
		sheet, tabIssues := decodeTab(tab, rows)
		issues = append(issues, tabIssues...)
		if sheet != nil {
			sheets = append(sheets, *sheet)
		}
	}
	if len(sheets) == 0 {
		return nil, issues, ErrNoSheets
	}
	return sheets, issues, nil
}

func decodeTab(tab string, rows [][]string) (*models.Sheet, []RowIssue) {
	var issues []RowIssue
	header := -1
	var cols map[column]int
	for i, row := range rows {
		if isBlank(row) {
			continue
		}
		header = i
		cols = mapHeader(row)
		break
	}
	if header < 0 {
		return nil, nil
	}
	nameCol, ok := cols[colName]
	if !ok {
		return nil, []RowIssue{{Sheet: tab, Row: header + 1, Reason: "no name column in header"}}
	}

	sheet := &models.Sheet{Name: strings.TrimSpace(tab)}
	seen := make(map[string]int)
	for i := header + 1; i < len(rows); i++ {
		row := rows[i]
		name := strings.TrimSpace(cell(row, nameCol))
		if name == "" {
			if !isBlank(row) {
				issues = append(issues, RowIssue{Sheet: tab, Row: i + 1, Reason: "missing item name"})
			}
			continue
		}
		item := models.InventoryItem{Name: name}

		if c, ok := cols[colQuantity]; ok {
			q, err := ParseNumber(cell(row, c))
			if err != nil {
				issues = append(issues, RowIssue{Sheet: tab, Row: i + 1, Reason: fmt.Sprintf("invalid quantity %q", cell(row, c))})
				continue
			}
			item.Quantity = q
		}
		if c, ok := cols[colUnit]; ok {
			item.Unit = strings.TrimSpace(cell(row, c))
		}
		if c, ok := cols[colCategory]; ok {
			item.Category = strings.TrimSpace(cell(row, c))
		}
		if c, ok := cols[colMin]; ok {
			if v, ok := optionalNumber(cell(row, c)); ok {
				item.MinThreshold = &v
			}
		}
		if c, ok := cols[colCost]; ok {
			if v, ok := optionalNumber(cell(row, c)); ok {
				item.UnitCost = &v
			}
		}

		key := cases.Fold().String(name)
		if pos, dup := seen[key]; dup {
			sheet.Items[pos] = item
			continue
		}
		seen[key] = len(sheet.Items)
		sheet.Items = append(sheet.Items, item)
	}
	return sheet, issues
}

func mapHeader(row []string) map[column]int {
	cols := make(map[column]int)
	for i, h := range row {
		c, ok := headerAliases[normalizeHeader(h)]
		if !ok {
			continue
		}
		if _, taken := cols[c]; !taken {
			cols[c] = i
		}
	}
	return cols
}

var stripAccents = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

func normalizeHeader(h string) string {
	s, _, err := transform.String(stripAccents, strings.ToLower(strings.TrimSpace(h)))
	if err != nil {
		s = strings.ToLower(strings.TrimSpace(h))
	}
	s = strings.NewReplacer("_", " ", "-", " ", ".", " ", "(", " ", ")", " ").Replace(s)
	return strings.Join(strings.Fields(s), " ")
}

// ParseNumber accepts "3", "2,5", "1.234,5" and "1,234.5". Empty is zero.
func ParseNumber(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	s = strings.TrimPrefix(strings.TrimSpace(strings.TrimPrefix(s, "R$")), "+")
	dot := strings.LastIndex(s, ".")
	comma := strings.LastIndex(s, ",")
	switch {
	case dot >= 0 && comma >= 0 && comma > dot:
		s = strings.ReplaceAll(s, ".", "")
		s = strings.Replace(s, ",", ".", 1)
	case dot >= 0 && comma >= 0:
		s = strings.ReplaceAll(s, ",", "")
	case comma >= 0:
		s = strings.Replace(s, ",", ".", 1)
	}
	return strconv.ParseFloat(s, 64)
}

func optionalNumber(s string) (float64, bool) {
	if strings.TrimSpace(s) == "" {
		return 0, false
	}
	v, err := ParseNumber(s)
	if err != nil {
		return 0, false
	}
	return v, true
}

func cell(row []string, i int) string {
	if i < len(row) {
		return row[i]
	}
	return ""
}

func isBlank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

var itemHeaders = []string{"Nome", "Quantidade", "Unidade", "Categoria", "Mínimo", "Custo unitário", "Atualizado em", "Atualizado por"}

var logHeaders = []string{"Data", "Item", "Tipo", "Variação", "Quantidade", "Responsável", "Motivo"}

// Encode writes one tab per sheet and a LogTab with the given entries.
func Encode(sheets []models.Sheet, log []models.UpdateLogEntry) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	first := f.GetSheetName(0)
	used := make(map[string]bool)
	for i, sheet := range sheets {
		tab := uniqueTab(sheet.Name, used)
		if i == 0 {
			if err := f.SetSheetName(first, tab); err != nil {
				return nil, err
			}
		} else if _, err := f.NewSheet(tab); err != nil {
			return nil, err
		}
		rows := make([][]interface{}, 0, len(sheet.Items))
		for _, it := range sheet.Items {
			rows = append(rows, []interface{}{
				it.Name, it.Quantity, it.Unit, it.Category,
				optional(it.MinThreshold), optional(it.UnitCost),
				timestamp(it.LastUpdated.IsZero(), it.LastUpdated.Format("2006-01-02 15:04")), it.UpdatedBy,
			})
		}
		if err := writeTable(f, tab, itemHeaders, rows); err != nil {
			return nil, err
		}
	}

	logTab := uniqueTab(LogTab, used)
	if len(sheets) == 0 {
		if err := f.SetSheetName(first, logTab); err != nil {
			return nil, err
		}
	} else if _, err := f.NewSheet(logTab); err != nil {
		return nil, err
	}
	rows := make([][]interface{}, 0, len(log))
	for _, e := range log {
		rows = append(rows, []interface{}{
			e.Timestamp.Format("2006-01-02 15:04:05"), e.ItemName, string(e.Type),
			e.Change, e.NewQuantity, e.UpdatedBy, e.Reason,
		})
	}
	if err := writeTable(f, logTab, logHeaders, rows); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeTable(f *excelize.File, tab string, headers []string, rows [][]interface{}) error {
	for i, h := range headers {
		cellName, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(tab, cellName, h); err != nil {
			return err
		}
	}
	for r, values := range rows {
		for c, v := range values {
			cellName, err := excelize.CoordinatesToCellName(c+1, r+2)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(tab, cellName, v); err != nil {
				return err
			}
		}
	}
	return nil
}

func optional(v *float64) interface{} {
	if v == nil {
		return ""
	}
	return *v
}

func timestamp(zero bool, formatted string) string {
	if zero {
		return ""
	}
	return formatted
}

// uniqueTab makes name a valid, unused tab name.
func uniqueTab(name string, used map[string]bool) string {
	clean := strings.Map(func(r rune) rune {
		switch r {
		case ':', '\\', '/', '?', '*', '[', ']':
			return '-'
		}
		return r
	}, strings.TrimSpace(name))
	if clean == "" {
		clean = "Planilha"
	}
	if r := []rune(clean); len(r) > maxTabName {
		clean = string(r[:maxTabName])
	}
	tab := clean
	for n := 2; used[strings.ToLower(tab)]; n++ {
		suffix := fmt.Sprintf(" (%d)", n)
		r := []rune(clean)
		if len(r)+len(suffix) > maxTabName {
			r = r[:maxTabName-len(suffix)]
		}
		tab = string(r) + suffix
	}
	used[strings.ToLower(tab)] = true
	return tab
}
