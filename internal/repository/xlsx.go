package repository

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/label-matcher/internal/common"
	"github.com/joseph-ayodele/label-matcher/internal/core/catalog"
)

// LoadXLSXCatalog reads entries from a workbook whose first row holds column
// names (variedad, cultivo, cliente, vuelo, id or their English aliases).
func LoadXLSXCatalog(path, sheet string) ([]catalog.Entry, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: open workbook: %v", common.ErrCatalogUnavailable, err)
	}
	defer func() { _ = f.Close() }()
	return readXLSXCatalog(f, sheet)
}

// DecodeXLSXCatalog is LoadXLSXCatalog over an already open stream.
func DecodeXLSXCatalog(r io.Reader, sheet string) ([]catalog.Entry, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: open workbook: %v", common.ErrCatalogUnavailable, err)
	}
	defer func() { _ = f.Close() }()
	return readXLSXCatalog(f, sheet)
}

func readXLSXCatalog(f *excelize.File, sheet string) ([]catalog.Entry, error) {
	if sheet == "" {
		sheet = f.GetSheetName(0)
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("%w: read sheet %q: %v", common.ErrCatalogUnavailable, sheet, err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	cols := map[string]int{}
	for i, h := range rows[0] {
		cols[strings.ToLower(strings.TrimSpace(h))] = i
	}
	if !hasAny(cols, fieldAliases["variety"]) {
		return nil, fmt.Errorf("%w: sheet %q has no variety column", common.ErrCatalogUnavailable, sheet)
	}

	entries := make([]catalog.Entry, 0, len(rows)-1)
	for _, row := range rows[1:] {
		entries = append(entries, entryFromFields(func(alias string) string {
			i, ok := cols[alias]
			if !ok || i >= len(row) {
				return ""
			}
			return row[i]
		}))
	}
	return entries, nil
}

func hasAny(cols map[string]int, names []string) bool {
	for _, n := range names {
		if _, ok := cols[n]; ok {
			return true
		}
	}
	return false
}
