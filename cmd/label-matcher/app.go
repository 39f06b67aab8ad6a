package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/joseph-ayodele/label-matcher/constants"
	"github.com/joseph-ayodele/label-matcher/internal/common"
	"github.com/joseph-ayodele/label-matcher/internal/core/resolver"
	"github.com/joseph-ayodele/label-matcher/internal/core/shortlist"
	"github.com/joseph-ayodele/label-matcher/internal/llm"
	"github.com/joseph-ayodele/label-matcher/internal/llm/ollama"
	"github.com/joseph-ayodele/label-matcher/internal/llm/openai"
	"github.com/joseph-ayodele/label-matcher/internal/observability/metrics"
	"github.com/joseph-ayodele/label-matcher/internal/repository"
	"github.com/joseph-ayodele/label-matcher/internal/services/catalog"
	"github.com/joseph-ayodele/label-matcher/internal/services/match"
	"github.com/joseph-ayodele/label-matcher/internal/services/offers"
)

// app is the wired object graph shared by every subcommand.
type app struct {
	cfg      *common.Config
	logger   *slog.Logger
	registry *prometheus.Registry
	metrics  *metrics.MatcherMetrics
	db       *repository.DB
	store    *catalog.Store
	match    *match.Service
	offers   *offers.Service
}

func newApp(ctx context.Context, cfg *common.Config, logger *slog.Logger) (*app, error) {
	a := &app{cfg: cfg, logger: logger, registry: prometheus.NewRegistry()}
	a.registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	m, err := metrics.NewMatcherMetrics(a.registry)
	if err != nil {
		return nil, fmt.Errorf("register metrics: %w", err)
	}
	a.metrics = m

	src, err := a.openSource(ctx)
	if err != nil {
		a.close()
		return nil, err
	}
	a.store = catalog.NewStore(src, m, logger)

	var repo repository.OfferRepository
	if a.db != nil {
		repo = repository.NewOfferRepository(a.db, logger)
	}
	a.offers = offers.NewService(repo, logger)

	r := resolver.New(newOracle(cfg.Oracle, logger), resolver.Options{
		Shortlist: shortlist.Options{
			MaxTotal:           cfg.Match.MaxShortlist,
			MaxPerFamily:       cfg.Match.MaxPerFamily,
			MinBeforeExpansion: constants.MinBeforeExpansion,
		},
		OracleTimeout: cfg.Oracle.Timeout,
	}, logger)
	a.match = match.NewService(a.store, r, match.Config{CacheTTL: cfg.Match.CacheTTL}, m, logger)
	a.store.OnReload(func(*catalog.Snapshot) { a.match.Flush() })
	return a, nil
}

func (a *app) openSource(ctx context.Context) (catalog.Source, error) {
	cc := a.cfg.Catalog
	if cc.Source.IsFile() {
		return catalog.NewFileSource(cc.Source, cc.Path, cc.Sheet)
	}

	dsn := a.cfg.Database.DSN
	if dsn == "" && cc.Source == constants.SourceSQLite {
		dsn = cc.Path
	}
	dc := a.cfg.Database
	db, err := repository.Open(ctx, cc.Source, repository.Config{
		DSN:              dsn,
		MaxConns:         dc.MaxConns,
		MinConns:         dc.MinConns,
		MaxConnLifetime:  dc.MaxConnLifetime,
		MaxConnIdleTime:  dc.MaxConnIdleTime,
		DialTimeout:      dc.DialTimeout,
		StatementTimeout: dc.StatementTimeout,
	}, a.logger)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	a.db = db
	if err := db.HealthCheck(ctx, dc.DialTimeout); err != nil {
		a.logger.Error("database ping failed", "error", err)
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return catalog.NewOfferSource(cc.Source, repository.NewOfferRepository(db, a.logger), cc.TransitOnly)
}

// newOracle returns nil for the "none" provider, which disables the oracle stage.
func newOracle(cfg common.OracleConfig, logger *slog.Logger) llm.Chooser {
	switch cfg.Provider {
	case "none":
		return nil
	case "openai":
		return openai.NewClient(openai.Config{
			APIKey:         cfg.APIKey,
			BaseURL:        cfg.BaseURL,
			Model:          cfg.Model,
			Temperature:    cfg.Temperature,
			ConnectTimeout: cfg.ConnectTimeout,
			Timeout:        cfg.Timeout,
		}, logger)
	}
	return ollama.NewClient(ollama.Config{
		BaseURL:        cfg.BaseURL,
		Model:          cfg.Model,
		Temperature:    cfg.Temperature,
		ConnectTimeout: cfg.ConnectTimeout,
		Timeout:        cfg.Timeout,
	}, logger)
}

func (a *app) close() {
	if a.db != nil {
		a.db.Close(a.logger)
	}
}
