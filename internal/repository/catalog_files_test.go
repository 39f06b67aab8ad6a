package repository

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/label-matcher/internal/common"
	"github.com/joseph-ayodele/label-matcher/internal/core/catalog"
)

func TestDecodeJSONCatalogShapes(t *testing.T) {
	want := []catalog.Entry{
		{ID: "7", Variety: "PHOENIX 60-4", Crop: "ROSA", Client: "ACME", Flight: "123-4567 8901"},
		{ID: "8", Variety: "FREEDOM", Crop: "ROSA"},
	}
	rows := `[{"id":"7","variedad":"PHOENIX 60-4","cultivo":"ROSA","cliente":"ACME","vuelo":"123-4567 8901"},
	          {"id":8,"variety":" FREEDOM ","crop":"ROSA","client":null}]`

	cases := map[string]string{
		"flat array":  rows,
		"data object": `{"data":` + rows + `}`,
		"phpmyadmin export": `[{"type":"header","version":"5.2.1"},{"type":"database","name":"flores"},
		                       {"type":"table","name":"ofertas","database":"flores","data":` + rows + `}]`,
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			got, err := DecodeJSONCatalog(strings.NewReader(doc))
			require.NoError(t, err)
			assert.Equal(t, want, got)
		})
	}
}

func TestDecodeJSONCatalogErrors(t *testing.T) {
	for _, doc := range []string{`{"rows":[]}`, `not json`, `"text"`} {
		_, err := DecodeJSONCatalog(strings.NewReader(doc))
		assert.ErrorIs(t, err, common.ErrCatalogUnavailable, doc)
	}
	_, err := LoadJSONCatalog(filepath.Join(t.TempDir(), "missing.json"))
	assert.ErrorIs(t, err, common.ErrCatalogUnavailable)
}

func TestLoadXLSXCatalog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.xlsx")
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetSheetRow(sheet, "A1", &[]any{"ID", "Variedad", "Cultivo", "Cliente", "Vuelo"}))
	require.NoError(t, f.SetSheetRow(sheet, "A2", &[]any{101, "Explorer", "Rosa", "Acme", "123-4567 8901"}))
	require.NoError(t, f.SetSheetRow(sheet, "A3", &[]any{102, "Nina 50-4", "Clavel"}))
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	got, err := LoadXLSXCatalog(path, "")
	require.NoError(t, err)
	assert.Equal(t, []catalog.Entry{
		{ID: "101", Variety: "Explorer", Crop: "Rosa", Client: "Acme", Flight: "123-4567 8901"},
		{ID: "102", Variety: "Nina 50-4", Crop: "Clavel"},
	}, got)
}

func TestLoadXLSXCatalogRequiresVarietyColumn(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.xlsx")
	f := excelize.NewFile()
	require.NoError(t, f.SetSheetRow(f.GetSheetName(0), "A1", &[]any{"codigo", "precio"}))
	require.NoError(t, f.SaveAs(path))

	_, err := LoadXLSXCatalog(path, "")
	assert.ErrorIs(t, err, common.ErrCatalogUnavailable)
}
