package catalog

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"mindscape-go/internal/types"
)

// readXLSX loads a spreadsheet catalog: one sheet per category (sheet name is
// the category key, spaces and dashes allowed), first row is the header.
func readXLSX(path string) (map[Category][]types.Resource, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("no sheets")
	}
	out := map[Category][]types.Resource{}
	for _, sheet := range sheets {
		cat := sheetCategory(sheet)
		if !cat.valid() {
			continue
		}
		rows, err := f.GetRows(sheet)
		if err != nil {
			return nil, fmt.Errorf("read rows of %s: %w", sheet, err)
		}
		out[cat] = resourcesFromRows(rows)
	}
	return out, nil
}

func sheetCategory(name string) Category {
	n := strings.ToLower(strings.TrimSpace(name))
	n = strings.NewReplacer(" ", "_", "-", "_").Replace(n)
	return Category(n)
}

// column indices detected by header heuristics; -1 means absent
type columns struct {
	name, description, contact, website int
}

func detectColumns(header []string) columns {
	cols := columns{-1, -1, -1, -1}
	for i, h := range header {
		l := strings.ToLower(strings.TrimSpace(h))
		switch {
		case strings.Contains(l, "desc"):
			if cols.description == -1 {
				cols.description = i
			}
		case strings.Contains(l, "website") || strings.Contains(l, "url") || strings.Contains(l, "link"):
			if cols.website == -1 {
				cols.website = i
			}
		case strings.Contains(l, "contact") || strings.Contains(l, "phone") || strings.Contains(l, "number"):
			if cols.contact == -1 {
				cols.contact = i
			}
		case strings.Contains(l, "name"):
			if cols.name == -1 {
				cols.name = i
			}
		}
	}
	// fallback heuristics: name, description in the first two columns
	if cols.name == -1 && len(header) > 0 {
		cols.name = 0
	}
	if cols.description == -1 && len(header) > 1 && cols.name != 1 {
		cols.description = 1
	}
	return cols
}

func resourcesFromRows(rows [][]string) []types.Resource {
	if len(rows) <= 1 {
		return nil
	}
	cols := detectColumns(rows[0])
	cell := func(r []string, idx int) string {
		if idx >= 0 && idx < len(r) {
			return strings.TrimSpace(r[idx])
		}
		return ""
	}
	var out []types.Resource
	for _, r := range rows[1:] {
		res := types.Resource{
			Name:        cell(r, cols.name),
			Description: cell(r, cols.description),
			Contact:     cell(r, cols.contact),
			Website:     cell(r, cols.website),
		}
		// blank spacer rows are common in hand-maintained sheets
		if res.Name == "" && res.Contact == "" && res.Website == "" {
			continue
		}
		out = append(out, res)
	}
	return out
}
