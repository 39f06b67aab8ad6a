// Package batch resolves every OCR text file under a directory.
package batch

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/joseph-ayodele/label-matcher/constants"
	"github.com/joseph-ayodele/label-matcher/internal/common"
	"github.com/joseph-ayodele/label-matcher/internal/core/resolver"
	"github.com/joseph-ayodele/label-matcher/internal/services/match"
)

// Resolver is the part of the match service a batch needs.
type Resolver interface {
	Resolve(ctx context.Context, req match.Request) (resolver.Result, error)
}

type FileResult struct {
	Path   string
	Result resolver.Result
	Err    string
}

type Stats struct {
	Scanned   uint32
	Matched   uint32
	Succeeded uint32
	Detected  uint32 // succeeded with a variety
	Failed    uint32
}

type Config struct {
	Workers    int
	Extensions []string // without '.', defaults to txt and ocr
	SkipHidden bool
}

type Service struct {
	resolver Resolver
	workers  int
	exts     map[string]struct{}
	skipHid  bool
	logger   *slog.Logger
}

func NewService(r Resolver, cfg Config, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 4
	}
	exts := map[string]struct{}{}
	for _, e := range cfg.Extensions {
		if e = constants.NormalizeExt(strings.TrimSpace(e)); e != "" {
			exts[e] = struct{}{}
		}
	}
	if len(exts) == 0 {
		for e := range constants.OCRTextExtensions {
			exts[e] = struct{}{}
		}
	}
	return &Service{resolver: r, workers: cfg.Workers, exts: exts, skipHid: cfg.SkipHidden, logger: logger}
}

// Discover walks root and returns matching files in lexical order.
func (s *Service) Discover(root string) ([]string, Stats, error) {
	var (
		paths []string
		stats Stats
	)
	if strings.TrimSpace(root) == "" {
		return nil, stats, fmt.Errorf("%w: root is required", common.ErrInvalidInput)
	}
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			if path == root {
				return walkErr
			}
			stats.Scanned++
			stats.Failed++
			s.logger.Warn("batch.walk_error", "path", path, "error", walkErr)
			return nil
		}
		if path != root && s.skipHid && isHidden(path) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		stats.Scanned++
		if _, ok := s.exts[constants.NormalizeExt(filepath.Ext(path))]; !ok {
			return nil
		}
		stats.Matched++
		paths = append(paths, path)
		return nil
	})
	if err != nil {
		return nil, stats, fmt.Errorf("walk: %w", err)
	}
	return paths, stats, nil
}

// Run resolves every discovered file with a bounded worker pool. Results keep
// discovery order. Per-file failures are reported in FileResult.Err; an
// unavailable catalog aborts the whole run.
func (s *Service) Run(ctx context.Context, root string) ([]FileResult, Stats, error) {
	start := time.Now()
	paths, stats, err := s.Discover(root)
	if err != nil {
		return nil, stats, err
	}
	s.logger.Info("batch.started", "root", root, "files", len(paths), "workers", s.workers)

	results := make([]FileResult, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for i, p := range paths {
		g.Go(func() error {
			results[i] = FileResult{Path: p}
			raw, err := os.ReadFile(p)
			if err != nil {
				results[i].Err = err.Error()
				return nil
			}
			res, err := s.resolver.Resolve(gctx, match.Request{Text: string(raw)})
			switch {
			case errors.Is(err, common.ErrCatalogUnavailable):
				return err
			case err != nil:
				results[i].Err = err.Error()
			default:
				results[i].Result = res
			}
			return gctx.Err()
		})
	}
	if err := g.Wait(); err != nil {
		s.logger.Error("batch.aborted", "root", root, "error", err)
		return nil, stats, err
	}

	for _, r := range results {
		if r.Err != "" {
			stats.Failed++
			continue
		}
		stats.Succeeded++
		if r.Result.Success {
			stats.Detected++
		}
	}
	s.logger.Info("batch.completed",
		"root", root,
		"scanned", stats.Scanned,
		"matched", stats.Matched,
		"succeeded", stats.Succeeded,
		"detected", stats.Detected,
		"failed", stats.Failed,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return results, stats, nil
}

func isHidden(path string) bool {
	return strings.HasPrefix(filepath.Base(path), ".")
}
