package repository

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/joseph-ayodele/label-matcher/internal/common"
	"github.com/joseph-ayodele/label-matcher/internal/core/catalog"
)

// Column aliases accepted by file catalogs, Spanish first.
var fieldAliases = map[string][]string{
	"id":      {"id", "oferta_id", "offer_id"},
	"variety": {"variedad", "variety", "nombre", "name"},
	"crop":    {"cultivo", "crop"},
	"client":  {"cliente", "client", "customer"},
	"flight":  {"vuelo", "flight", "awb"},
}

// LoadJSONCatalog reads a catalog file. See DecodeJSONCatalog for the shapes.
func LoadJSONCatalog(path string) ([]catalog.Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: open catalog: %v", common.ErrCatalogUnavailable, err)
	}
	defer f.Close()
	return DecodeJSONCatalog(f)
}

// DecodeJSONCatalog accepts a flat array of rows, an object with a "data"
// array, or a phpMyAdmin export (an array whose "table" element holds "data").
func DecodeJSONCatalog(r io.Reader) ([]catalog.Entry, error) {
	var doc any
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: decode catalog: %v", common.ErrCatalogUnavailable, err)
	}
	rows, ok := catalogRows(doc)
	if !ok {
		return nil, fmt.Errorf("%w: unrecognised catalog layout", common.ErrCatalogUnavailable)
	}

	entries := make([]catalog.Entry, 0, len(rows))
	for _, row := range rows {
		m, ok := row.(map[string]any)
		if !ok {
			continue
		}
		entries = append(entries, entryFromFields(func(alias string) string {
			return scalar(m[alias])
		}))
	}
	return entries, nil
}

func catalogRows(doc any) ([]any, bool) {
	switch d := doc.(type) {
	case []any:
		for _, el := range d {
			if m, ok := el.(map[string]any); ok && m["type"] == "table" {
				if data, ok := m["data"].([]any); ok {
					return data, true
				}
			}
		}
		return d, true
	case map[string]any:
		if data, ok := d["data"].([]any); ok {
			return data, true
		}
	}
	return nil, false
}

// entryFromFields builds an entry by probing each alias through get.
func entryFromFields(get func(alias string) string) catalog.Entry {
	pick := func(field string) string {
		for _, a := range fieldAliases[field] {
			if v := strings.TrimSpace(get(a)); v != "" {
				return v
			}
		}
		return ""
	}
	return catalog.Entry{
		ID:      pick("id"),
		Variety: pick("variety"),
		Crop:    pick("crop"),
		Client:  pick("client"),
		Flight:  pick("flight"),
	}
}

func scalar(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	}
	return ""
}
