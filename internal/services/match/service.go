// Package match serves variety resolutions against the active catalog snapshot.
package match

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"log/slog"
	"strconv"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/joseph-ayodele/label-matcher/internal/common"
	"github.com/joseph-ayodele/label-matcher/internal/core/resolver"
	"github.com/joseph-ayodele/label-matcher/internal/observability/metrics"
	catalogsvc "github.com/joseph-ayodele/label-matcher/internal/services/catalog"
)

const maxTextLength = 20000

// Request is one OCR capture submitted for matching.
type Request struct {
	Text       string `json:"ocr_text"`
	Normalized string `json:"ocr_text_normalizado,omitempty"`
}

// Snapshots exposes the active catalog snapshot.
type Snapshots interface {
	Current() *catalogsvc.Snapshot
}

type Config struct {
	CacheTTL time.Duration // 0 disables the result cache
}

// Service resolves requests and memoizes results per catalog version.
type Service struct {
	store    Snapshots
	resolver *resolver.Resolver
	cache    *cache.Cache
	metrics  *metrics.MatcherMetrics
	logger   *slog.Logger
}

func NewService(store Snapshots, r *resolver.Resolver, cfg Config, m *metrics.MatcherMetrics, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Service{store: store, resolver: r, metrics: m, logger: logger}
	if cfg.CacheTTL > 0 {
		s.cache = cache.New(cfg.CacheTTL, 2*cfg.CacheTTL)
	}
	return s
}

// Resolve validates the request and runs it against the current snapshot.
func (s *Service) Resolve(ctx context.Context, req Request) (resolver.Result, error) {
	ctx, rid := common.EnsureRequestID(ctx)
	start := time.Now()

	text := req.Text
	if text == "" {
		text = req.Normalized
	}
	v := common.NewValidator().
		Field("ocr_text", text, common.Required, common.MaxLength(maxTextLength)).
		Field("ocr_text_normalizado", req.Normalized, common.MaxLength(maxTextLength))
	if err := v.Error(); err != nil {
		s.logger.Warn("match.invalid_request", "req_id", rid, "error", err)
		return resolver.Result{}, common.NewAppError("INVALID_INPUT", v.ErrorMessage(), err)
	}

	snap := s.store.Current()
	if snap == nil || snap.Index.Len() == 0 {
		s.logger.Error("match.catalog_unavailable", "req_id", rid)
		return resolver.Result{}, common.NewAppError("CATALOG_UNAVAILABLE", "catalog is not loaded", common.ErrCatalogUnavailable)
	}

	key := cacheKey(snap.Version, req)
	if s.cache != nil {
		if hit, ok := s.cache.Get(key); ok {
			s.metrics.RecordCacheLookup(true)
			res := hit.(resolver.Result)
			s.logger.Debug("match.cache_hit", "req_id", rid, "catalog_version", snap.Version)
			return res, nil
		}
		s.metrics.RecordCacheLookup(false)
	}

	res, err := s.resolver.Resolve(ctx, resolver.Input{Text: req.Text, Normalized: req.Normalized}, snap.Index)
	if err != nil {
		s.logger.Error("match.resolve_failed", "req_id", rid, "error", err)
		return resolver.Result{}, toAppError(err)
	}

	elapsed := time.Since(start)
	s.metrics.RecordResolution(string(res.Stage), res.Trace.ShortlistSize, elapsed)
	if res.Trace.OracleOutcome != "skipped" {
		s.metrics.RecordOracle(res.Trace.OracleOutcome, res.Trace.OracleElapsed)
	}
	if s.cache != nil && cacheable(res) {
		s.cache.SetDefault(key, res)
	}

	s.logger.Info("match.resolved",
		"req_id", rid,
		"stage", res.Stage,
		"success", res.Success,
		"catalog_version", snap.Version,
		"shortlist", res.Trace.ShortlistSize,
		"oracle", res.Trace.OracleOutcome,
		"elapsed_ms", elapsed.Milliseconds(),
	)
	return res, nil
}

// Flush drops every memoized result. Keys carry the catalog version, so this
// only releases entries that can no longer be hit.
func (s *Service) Flush() {
	if s.cache != nil {
		s.cache.Flush()
	}
}

// cacheable keeps results that a retry could improve out of the cache.
func cacheable(res resolver.Result) bool {
	switch res.Trace.OracleOutcome {
	case "timeout", "canceled", "status", "transport":
		return false
	}
	return true
}

func cacheKey(version uint64, req Request) string {
	h := sha256.New()
	h.Write([]byte(req.Text))
	h.Write([]byte{0})
	h.Write([]byte(req.Normalized))
	return strconv.FormatUint(version, 10) + ":" + hex.EncodeToString(h.Sum(nil))
}

func toAppError(err error) error {
	var appErr *common.AppError
	switch {
	case errors.As(err, &appErr):
		return err
	case errors.Is(err, common.ErrInvalidInput):
		return common.NewAppError("INVALID_INPUT", "ocr text is empty", err)
	case errors.Is(err, common.ErrCatalogUnavailable):
		return common.NewAppError("CATALOG_UNAVAILABLE", "catalog has no entries", err)
	}
	return common.NewAppError("INTERNAL", "resolution failed", errors.Join(common.ErrInternal, err))
}
