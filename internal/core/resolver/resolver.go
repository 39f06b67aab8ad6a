// Package resolver turns OCR text into a variety match. It asks the oracle
// first, then scores the shortlist heuristically, then salvages a name from
// label layout.
package resolver

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/joseph-ayodele/label-matcher/constants"
	"github.com/joseph-ayodele/label-matcher/internal/common"
	"github.com/joseph-ayodele/label-matcher/internal/core/catalog"
	"github.com/joseph-ayodele/label-matcher/internal/core/normalize"
	"github.com/joseph-ayodele/label-matcher/internal/core/shortlist"
	"github.com/joseph-ayodele/label-matcher/internal/core/signals"
	"github.com/joseph-ayodele/label-matcher/internal/llm"
)

var (
	ErrEmptyText    = fmt.Errorf("%w: ocr text is empty", common.ErrInvalidInput)
	ErrEmptyCatalog = fmt.Errorf("%w: catalog has no entries", common.ErrCatalogUnavailable)
)

// Input is one OCR capture. Normalized may carry a client-side normalization
// of Text; it is re-normalized before use.
type Input struct {
	Text       string
	Normalized string
}

type Options struct {
	Shortlist     shortlist.Options
	OracleTimeout time.Duration
}

type Resolver struct {
	oracle llm.Chooser
	opts   Options
	logger *slog.Logger
}

// New builds a Resolver. A nil oracle skips straight to the heuristic.
func New(oracle llm.Chooser, opts Options, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.OracleTimeout <= 0 {
		opts.OracleTimeout = constants.OracleTimeout
	}
	if opts.Shortlist == (shortlist.Options{}) {
		opts.Shortlist = shortlist.DefaultOptions()
	}
	return &Resolver{oracle: oracle, opts: opts, logger: logger}
}

// Resolve runs normalize -> signals -> shortlist -> oracle/heuristic/fallback
// against one catalog snapshot. Only input problems are returned as errors; a
// failed oracle or an unmatched label is a normal Result.
func (r *Resolver) Resolve(ctx context.Context, in Input, ix *catalog.Index) (Result, error) {
	if strings.TrimSpace(in.Text) == "" && strings.TrimSpace(in.Normalized) == "" {
		return Result{}, ErrEmptyText
	}
	if ix.Len() == 0 {
		return Result{}, ErrEmptyCatalog
	}
	rid := common.RequestIDFromContext(ctx)

	raw := in.Text
	if strings.TrimSpace(raw) == "" {
		raw = in.Normalized
	}
	text := in.Normalized
	if strings.TrimSpace(text) == "" {
		text = raw
	}
	text = normalize.Normalize(text)

	sig := signals.Extract(text, ix.Crops())
	short := shortlist.Build(sig, ix, r.opts.Shortlist)

	res := Result{
		Flight:       sig.Flight,
		DetectedCrop: sig.Crop,
		Stage:        constants.StageNone,
		Trace:        Trace{ShortlistSize: len(short), OracleOutcome: "skipped"},
	}
	r.logger.Debug("resolver.signals",
		"req_id", rid,
		"flight", sig.Flight,
		"crop", sig.Crop,
		"patterns", sig.Patterns,
		"tokens", len(sig.StrongTokens),
		"shortlist", len(short),
	)

	// ORACLE
	if r.oracle != nil && len(short) > 0 {
		start := time.Now()
		ans := r.ask(ctx, raw, text, sig, short)
		res.Trace.OracleElapsed = time.Since(start)
		switch a := ans.(type) {
		case Valid:
			res.Trace.OracleOutcome = "valid"
			res.Crop, res.Client, res.EntryID = a.Crop, a.Client, a.Entry.ID
			if res.Flight == "" {
				res.Flight = a.Entry.Flight
			}
			evidence := a.Evidence
			if evidence == "" {
				evidence = "oracle choice"
			}
			res.accept(a.Entry.Variety, a.Confidence, evidence, constants.StageOracle)
			r.logger.Info("resolver.oracle.accepted", "req_id", rid, "entry_id", a.Entry.ID, "variedad", a.Entry.Variety)
			return res, nil
		case Invalid:
			res.Trace.OracleOutcome = a.Reason
			r.logger.Warn("resolver.oracle.invalid", "req_id", rid, "reason", a.Reason, "error", a.Err)
		}
	}

	// HEURISTIC
	if best, score, ok := Heuristic(text, short); ok {
		res.Crop, res.Client, res.EntryID = best.Crop, best.Client, best.ID
		res.accept(best.Variety, ptr(score), heuristicEvidence(score), constants.StageHeuristic)
		r.logger.Info("resolver.heuristic.accepted", "req_id", rid, "entry_id", best.ID, "score", score)
		return res, nil
	}

	// REGEX_FALLBACK
	if s, ok := RegexFallback(normalize.Lines(raw), text); ok {
		res.accept(s.Variety, ptr(s.Confidence), s.Evidence, constants.StageRegexFallback)
		r.logger.Info("resolver.fallback.salvaged", "req_id", rid, "variedad", s.Variety, "conf", s.Confidence)
		return res, nil
	}

	r.logger.Info("resolver.no_match", "req_id", rid, "shortlist", len(short))
	return res, nil
}

// ask runs the oracle under its own deadline and folds every failure into Invalid.
func (r *Resolver) ask(ctx context.Context, raw, text string, sig signals.Signals, short []catalog.Record) Answer {
	ctx, cancel := context.WithTimeout(ctx, r.opts.OracleTimeout)
	defer cancel()

	req := llm.ChooseRequest{
		RawText:        raw,
		NormalizedText: text,
		Flight:         sig.Flight,
		DetectedCrop:   sig.Crop,
		Candidates:     make([]llm.Candidate, 0, len(short)),
	}
	for _, c := range short {
		req.Candidates = append(req.Candidates, llm.Candidate{
			ID:      c.ID,
			Variety: c.Variety,
			Crop:    c.Crop,
			Client:  c.Client,
			Flight:  c.Flight,
		})
	}

	reply, _, err := r.oracle.Choose(ctx, req)
	if err != nil {
		return Invalid{Reason: llm.FailureReason(err), Err: err}
	}
	return Validate(reply, short)
}
