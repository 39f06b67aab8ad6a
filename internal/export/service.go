package export

import (
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/label-matcher/internal/services/batch"
)

const sheet = "Resultados"

// Service renders batch results as an XLSX workbook.
type Service struct {
	logger *slog.Logger
}

func NewService(logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{logger: logger}
}

var headers = []string{
	"Archivo",
	"Variedad",
	"Cultivo",
	"Cliente",
	"Vuelo",
	"Cultivo detectado",
	"Confianza",
	"Etapa",
	"Evidencia",
	"Error",
}

// WriteResultsXLSX writes one row per file. Paths are made relative to root
// when possible.
func (s *Service) WriteResultsXLSX(w io.Writer, root string, results []batch.FileResult, stats batch.Stats) error {
	start := time.Now()

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()
	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return err
	}

	if err := f.SetSheetRow(sheet, "A1", &headers); err != nil {
		return err
	}
	for i, fr := range results {
		path := fr.Path
		if rel, err := filepath.Rel(root, fr.Path); err == nil && root != "" {
			path = filepath.ToSlash(rel)
		}
		r := fr.Result
		var conf any
		if r.Confidence != nil {
			conf = *r.Confidence
		}
		row := []any{
			path,
			r.Variety,
			r.Crop,
			r.Client,
			r.Flight,
			r.DetectedCrop,
			conf,
			string(r.Stage),
			truncate(r.Evidence, 140),
			truncate(fr.Err, 140),
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}

	// Widen a few columns
	_ = f.SetColWidth(sheet, "A", "A", 40) // file
	_ = f.SetColWidth(sheet, "B", "B", 28) // variety
	_ = f.SetColWidth(sheet, "C", "F", 16)
	_ = f.SetColWidth(sheet, "I", "J", 48) // evidence, error

	if err := writeSummary(f, stats); err != nil {
		return err
	}
	if err := f.Write(w); err != nil {
		return fmt.Errorf("xlsx write: %w", err)
	}

	s.logger.Info("export.xlsx.ok",
		"rows", len(results),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return nil
}

func writeSummary(f *excelize.File, st batch.Stats) error {
	const summary = "Resumen"
	if _, err := f.NewSheet(summary); err != nil {
		return err
	}
	rows := [][]any{
		{"Escaneados", st.Scanned},
		{"Procesados", st.Matched},
		{"Correctos", st.Succeeded},
		{"Detectados", st.Detected},
		{"Fallidos", st.Failed},
	}
	for i, r := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow(summary, cell, &r); err != nil {
			return err
		}
	}
	return nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if n <= 0 || len(r) <= n {
		return s
	}
	if n <= 1 {
		return string(r[:n])
	}
	return string(r[:n-1]) + "…"
}
