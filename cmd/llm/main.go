package main

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joseph-ayodele/label-matcher/constants"
	"github.com/joseph-ayodele/label-matcher/internal/common"
	"github.com/joseph-ayodele/label-matcher/internal/core/catalog"
	"github.com/joseph-ayodele/label-matcher/internal/core/resolver"
	"github.com/joseph-ayodele/label-matcher/internal/llm"
	"github.com/joseph-ayodele/label-matcher/internal/llm/ollama"
	"github.com/joseph-ayodele/label-matcher/internal/llm/openai"
	"github.com/joseph-ayodele/label-matcher/internal/repository"
)

// Runs the resolver on one OCR dump several times against a file catalog,
// to see how stable the oracle's answers are.
func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	if len(os.Args) < 2 {
		logger.Error("usage: llm <ocr_file> [times]")
		os.Exit(2)
	}
	raw, err := os.ReadFile(os.Args[1])
	if err != nil {
		logger.Error("read ocr file", "path", os.Args[1], "error", err)
		os.Exit(2)
	}
	times := 10
	if len(os.Args) >= 3 {
		if n, err := strconv.Atoi(os.Args[2]); err == nil && n > 0 {
			times = n
		}
	}

	cfg := common.LoadConfig()
	var entries []catalog.Entry
	switch cfg.Catalog.Source {
	case constants.SourceJSON:
		entries, err = repository.LoadJSONCatalog(cfg.Catalog.Path)
	case constants.SourceXLSX:
		entries, err = repository.LoadXLSXCatalog(cfg.Catalog.Path, cfg.Catalog.Sheet)
	default:
		logger.Error("CATALOG_SOURCE must be json or xlsx", "source", cfg.Catalog.Source)
		os.Exit(2)
	}
	if err != nil {
		logger.Error("load catalog", "path", cfg.Catalog.Path, "error", err)
		os.Exit(1)
	}
	ix := catalog.BuildIndex(entries)

	var oracle llm.Chooser
	if cfg.Oracle.Provider == "openai" {
		oracle = openai.NewClient(openai.Config{
			APIKey:  cfg.Oracle.APIKey,
			BaseURL: cfg.Oracle.BaseURL,
			Model:   cfg.Oracle.Model,
			Timeout: cfg.Oracle.Timeout,
		}, logger)
	} else {
		oracle = ollama.NewClient(ollama.Config{
			BaseURL: cfg.Oracle.BaseURL,
			Model:   cfg.Oracle.Model,
			Timeout: cfg.Oracle.Timeout,
		}, logger)
	}
	r := resolver.New(oracle, resolver.Options{OracleTimeout: cfg.Oracle.Timeout}, logger)

	base := filepath.Base(os.Args[1])
	outcomes := map[string]int{}
	for i := 1; i <= times; i++ {
		ctx, cancel := context.WithTimeout(context.Background(), 2*cfg.Oracle.Timeout)
		ctx, rid := common.EnsureRequestID(ctx)
		start := time.Now()
		logger.Info("oracle.run.start", "iter", i, "req_id", rid, "basename", base)

		res, err := r.Resolve(ctx, resolver.Input{Text: string(raw)}, ix)
		cancel()

		if err != nil {
			logger.Error("oracle.run.error", "iter", i, "err", err)
			os.Exit(1)
		}
		outcomes[res.Trace.OracleOutcome]++
		logger.Info("oracle.run.ok",
			"iter", i,
			"stage", res.Stage,
			"variedad", res.Variety,
			"oracle", res.Trace.OracleOutcome,
			"shortlist", res.Trace.ShortlistSize,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)

		time.Sleep(750 * time.Millisecond)
	}

	logger.Info("done", "basename", base, "times", times, "outcomes", outcomes)
}
