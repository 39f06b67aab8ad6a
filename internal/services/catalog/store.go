// Package catalog keeps the active catalog snapshot and refreshes it from its
// source. Readers always see a complete, immutable index.
package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/joseph-ayodele/label-matcher/internal/common"
	"github.com/joseph-ayodele/label-matcher/internal/core/catalog"
	"github.com/joseph-ayodele/label-matcher/internal/observability/metrics"
)

// Snapshot is one loaded catalog version.
type Snapshot struct {
	Index    *catalog.Index
	Version  uint64
	Source   string
	LoadedAt time.Time
}

// Status is the externally visible view of the active snapshot.
type Status struct {
	Source    string    `json:"source"`
	Version   uint64    `json:"version"`
	Entries   int       `json:"entries"`
	Crops     []string  `json:"crops"`
	LoadedAt  time.Time `json:"loaded_at"`
	LastError string    `json:"last_error,omitempty"`
}

type Store struct {
	src     Source
	metrics *metrics.MatcherMetrics
	logger  *slog.Logger

	current atomic.Pointer[Snapshot]

	mu       sync.Mutex // serializes reloads and guards onReload
	onReload []func(*Snapshot)

	errMu   sync.Mutex
	lastErr error
}

func NewStore(src Source, m *metrics.MatcherMetrics, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{src: src, metrics: m, logger: logger}
}

// Current returns the active snapshot, or nil before the first load.
func (s *Store) Current() *Snapshot {
	return s.current.Load()
}

// OnReload registers fn to run after every successful reload, in
// registration order, before Reload returns.
func (s *Store) OnReload(fn func(*Snapshot)) {
	s.mu.Lock()
	s.onReload = append(s.onReload, fn)
	s.mu.Unlock()
}

// Reload loads the source and swaps the snapshot in. On failure the previous
// snapshot stays active. An empty result is only accepted for the first load.
func (s *Store) Reload(ctx context.Context) (*Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	start := time.Now()
	kind := string(s.src.Kind())
	prev := s.current.Load()

	entries, err := s.src.Load(ctx)
	if err == nil && len(entries) == 0 && prev != nil && prev.Index.Len() > 0 {
		err = fmt.Errorf("%w: source returned no entries", common.ErrCatalogUnavailable)
	}
	if err != nil {
		s.setLastErr(err)
		s.metrics.RecordCatalogReload(kind, metrics.StatusError, 0)
		s.logger.Error("catalog.reload.failed", "source", s.src.Name(), "error", err, "elapsed_ms", time.Since(start).Milliseconds())
		return prev, err
	}

	var version uint64 = 1
	if prev != nil {
		version = prev.Version + 1
	}
	snap := &Snapshot{
		Index:    catalog.BuildIndex(entries),
		Version:  version,
		Source:   s.src.Name(),
		LoadedAt: time.Now(),
	}
	s.current.Store(snap)
	s.setLastErr(nil)
	for _, fn := range s.onReload {
		fn(snap)
	}
	s.metrics.RecordCatalogReload(kind, metrics.StatusSuccess, snap.Index.Len())

	if skipped := len(entries) - snap.Index.Len(); skipped > 0 {
		s.logger.Warn("catalog.reload.skipped_entries", "count", skipped)
	}
	s.logger.Info("catalog.reload.ok",
		"source", snap.Source,
		"version", snap.Version,
		"entries", snap.Index.Len(),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return snap, nil
}

func (s *Store) Status() Status {
	st := Status{Source: s.src.Name()}
	if snap := s.current.Load(); snap != nil {
		st.Version = snap.Version
		st.Entries = snap.Index.Len()
		st.Crops = snap.Index.Crops()
		st.LoadedAt = snap.LoadedAt
	}
	s.errMu.Lock()
	if s.lastErr != nil {
		st.LastError = s.lastErr.Error()
	}
	s.errMu.Unlock()
	return st
}

func (s *Store) setLastErr(err error) {
	s.errMu.Lock()
	s.lastErr = err
	s.errMu.Unlock()
}
