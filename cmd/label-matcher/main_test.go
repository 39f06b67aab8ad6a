package main

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/label-matcher/internal/common"
	"github.com/joseph-ayodele/label-matcher/internal/llm/ollama"
	"github.com/joseph-ayodele/label-matcher/internal/llm/openai"
)

const testCatalog = `[
	{"id":"1","variedad":"PHOENIX 60-4","cultivo":"ROSA","cliente":"ACME","vuelo":"123-4567 8901"},
	{"id":"2","variedad":"FREEDOM","cultivo":"ROSA","cliente":"BLOOM"}
]`

func writeCatalog(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ofertas.json")
	require.NoError(t, os.WriteFile(path, []byte(testCatalog), 0o644))
	return path
}

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestResolveCommandFromStdin(t *testing.T) {
	catalog := writeCatalog(t)
	out, err := execute(t, "AWB 123-4567 8901\nROSA PHOENIX 60-4\n", "resolve", "--catalog", catalog, "--oracle", "none", "--log-level", "error")
	require.NoError(t, err)

	var res map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, true, res["success"])
	assert.Equal(t, "PHOENIX 60-4", res["variedad"])
	assert.Equal(t, "ACME", res["cliente"])
	assert.Equal(t, "123-4567 8901", res["vuelo"])
	assert.Equal(t, "HEURISTIC", res["stage"])
}

func TestResolveCommandFromFile(t *testing.T) {
	catalog := writeCatalog(t)
	label := filepath.Join(t.TempDir(), "label.txt")
	require.NoError(t, os.WriteFile(label, []byte("X500"), 0o644))

	out, err := execute(t, "", "resolve", label, "--catalog", catalog, "--oracle", "none", "--log-level", "error")
	require.NoError(t, err)
	assert.Contains(t, out, `"variedad": "X500"`)
	assert.Contains(t, out, `"stage": "REGEX_FALLBACK"`)
}

func TestResolveCommandRejectsEmptyInput(t *testing.T) {
	_, err := execute(t, "  \n", "resolve", "--catalog", writeCatalog(t), "--oracle", "none", "--log-level", "error")
	assert.ErrorIs(t, err, common.ErrValidation)
}

func TestCatalogCheck(t *testing.T) {
	out, err := execute(t, "", "catalog", "check", "--catalog", writeCatalog(t), "--log-level", "error")
	require.NoError(t, err)

	var st map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &st))
	assert.Equal(t, float64(2), st["entries"])
	assert.Equal(t, []any{"ROSA"}, st["crops"])

	missing := filepath.Join(t.TempDir(), "missing.json")
	_, err = execute(t, "", "catalog", "check", "--catalog", missing, "--log-level", "error")
	assert.ErrorIs(t, err, common.ErrCatalogUnavailable)
}

func TestBatchCommand(t *testing.T) {
	catalog := writeCatalog(t)
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte("ROSA FREEDOM 50CM"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.txt"), []byte("????"), 0o644))
	report := filepath.Join(t.TempDir(), "report.xlsx")

	out, err := execute(t, "", "batch", dir, "-o", report, "--catalog", catalog, "--oracle", "none", "--log-level", "error")
	require.NoError(t, err)
	assert.Contains(t, out, "files=2 detected=1 failed=0")

	f, err := excelize.OpenFile(report)
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows("Resultados")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "a.txt", rows[1][0])
	assert.Equal(t, "FREEDOM", rows[1][1])
}

func TestSetupRejectsBadFlags(t *testing.T) {
	_, err := execute(t, "", "catalog", "check", "--source", "csv")
	assert.Error(t, err)
	_, err = execute(t, "", "catalog", "check", "--catalog", writeCatalog(t), "--oracle", "gemini")
	assert.ErrorIs(t, err, common.ErrInvalidInput)
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	l := newLogger(common.LogConfig{Level: "warn", Format: "json"}, &buf)
	l.Info("hidden")
	l.Warn("shown", "k", "v")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"msg":"shown"`)

	buf.Reset()
	l = newLogger(common.LogConfig{Level: "bogus"}, &buf)
	assert.True(t, l.Enabled(t.Context(), slog.LevelInfo))
	assert.False(t, l.Enabled(t.Context(), slog.LevelDebug))
}

func TestNewOracle(t *testing.T) {
	assert.Nil(t, newOracle(common.OracleConfig{Provider: "none"}, nil))
	assert.IsType(t, &ollama.Client{}, newOracle(common.OracleConfig{Provider: "ollama"}, nil))
	assert.IsType(t, &openai.Client{}, newOracle(common.OracleConfig{Provider: "openai", APIKey: "k"}, nil))
}
