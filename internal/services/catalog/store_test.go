package catalog

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/joseph-ayodele/label-matcher/constants"
	"github.com/joseph-ayodele/label-matcher/internal/common"
	"github.com/joseph-ayodele/label-matcher/internal/core/catalog"
	"github.com/joseph-ayodele/label-matcher/internal/repository"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func discard() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

type fakeSource struct {
	mu      sync.Mutex
	kind    constants.SourceKind
	entries []catalog.Entry
	err     error
	loads   int
}

func (f *fakeSource) Kind() constants.SourceKind { return f.kind }
func (f *fakeSource) Name() string               { return "fake" }

func (f *fakeSource) Load(context.Context) ([]catalog.Entry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.loads++
	return f.entries, f.err
}

func (f *fakeSource) set(entries []catalog.Entry, err error) {
	f.mu.Lock()
	f.entries, f.err = entries, err
	f.mu.Unlock()
}

func (f *fakeSource) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.loads
}

func TestStoreReload(t *testing.T) {
	src := &fakeSource{kind: constants.SourcePostgres, entries: []catalog.Entry{{Variety: "PHOENIX"}, {Variety: "FREEDOM"}}}
	s := NewStore(src, nil, discard())
	ctx := context.Background()

	var seen []uint64
	s.OnReload(func(snap *Snapshot) { seen = append(seen, snap.Version) })

	assert.Nil(t, s.Current())
	assert.Zero(t, s.Status().Entries)

	snap, err := s.Reload(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), snap.Version)
	assert.Equal(t, 2, s.Status().Entries)

	src.set([]catalog.Entry{{Variety: "EXPLORER"}}, nil)
	snap, err = s.Reload(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), snap.Version)
	assert.Same(t, snap, s.Current())
	assert.Equal(t, 1, s.Status().Entries)
	assert.Equal(t, []uint64{1, 2}, seen)
}

func TestStoreReloadFailureKeepsSnapshot(t *testing.T) {
	src := &fakeSource{kind: constants.SourceJSON, entries: []catalog.Entry{{Variety: "PHOENIX"}}}
	s := NewStore(src, nil, discard())
	ctx := context.Background()

	first, err := s.Reload(ctx)
	require.NoError(t, err)
	s.OnReload(func(*Snapshot) { t.Error("hook ran for a failed reload") })

	src.set(nil, errors.New("disk gone"))
	snap, err := s.Reload(ctx)
	assert.Error(t, err)
	assert.Same(t, first, snap)
	assert.Same(t, first, s.Current())
	assert.Equal(t, "disk gone", s.Status().LastError)

	src.set(nil, nil)
	_, err = s.Reload(ctx)
	assert.ErrorIs(t, err, common.ErrCatalogUnavailable, "empty reload after a good one is rejected")
	assert.Same(t, first, s.Current())

	s.mu.Lock()
	s.onReload = nil
	s.mu.Unlock()
	src.set([]catalog.Entry{{Variety: "FREEDOM"}}, nil)
	_, err = s.Reload(ctx)
	require.NoError(t, err)
	st := s.Status()
	assert.Empty(t, st.LastError)
	assert.Equal(t, uint64(2), st.Version)
	assert.Equal(t, 1, st.Entries)
}

func TestStoreFirstEmptyLoadIsAccepted(t *testing.T) {
	s := NewStore(&fakeSource{kind: constants.SourceJSON}, nil, discard())
	snap, err := s.Reload(context.Background())
	require.NoError(t, err)
	assert.Zero(t, snap.Index.Len())
}

func TestRunPollsDatabaseSources(t *testing.T) {
	src := &fakeSource{kind: constants.SourceMySQL, entries: []catalog.Entry{{Variety: "PHOENIX"}}}
	s := NewStore(src, nil, discard())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx, RefreshConfig{PollInterval: 10 * time.Millisecond}) }()

	assert.Eventually(t, func() bool { return src.count() >= 2 }, 2*time.Second, 5*time.Millisecond)
	cancel()
	assert.NoError(t, <-done)
}

func TestRunWatchesFileSources(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ofertas.json")
	require.NoError(t, os.WriteFile(path, []byte(`[{"variedad":"PHOENIX"}]`), 0o644))

	src, err := NewFileSource(constants.SourceJSON, path, "")
	require.NoError(t, err)
	s := NewStore(src, nil, discard())
	_, err = s.Reload(context.Background())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx, RefreshConfig{Watch: true, Debounce: 20 * time.Millisecond}) }()

	// give the watcher time to register the directory
	time.Sleep(50 * time.Millisecond)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.json"), []byte(`[]`), 0o644))
	require.NoError(t, os.WriteFile(path, []byte(`[{"variedad":"PHOENIX"},{"variedad":"FREEDOM"}]`), 0o644))

	assert.Eventually(t, func() bool { return s.Status().Entries == 2 }, 3*time.Second, 10*time.Millisecond)
	cancel()
	assert.NoError(t, <-done)
}

func TestNewSourcesRejectWrongKinds(t *testing.T) {
	_, err := NewFileSource(constants.SourcePostgres, "x.json", "")
	assert.ErrorIs(t, err, common.ErrInvalidInput)
	_, err = NewFileSource(constants.SourceJSON, "", "")
	assert.ErrorIs(t, err, common.ErrInvalidInput)
	_, err = NewOfferSource(constants.SourceXLSX, nil, true)
	assert.ErrorIs(t, err, common.ErrInvalidInput)
	_, err = NewOfferSource(constants.SourceSQLite, nil, true)
	assert.Error(t, err)
}

type fakeOffers struct {
	day time.Time
}

func (f *fakeOffers) ListInTransit(_ context.Context, day time.Time) ([]repository.Offer, error) {
	f.day = day
	return []repository.Offer{{ID: 9, Variety: "PHOENIX", Crop: "ROSA"}}, nil
}

func (f *fakeOffers) ListAll(context.Context) ([]repository.Offer, error) {
	return []repository.Offer{{ID: 1, Variety: "A"}, {ID: 2, Variety: "B"}}, nil
}

func (f *fakeOffers) GetDetails(context.Context, int64) (*repository.OfferDetails, error) {
	return nil, common.ErrNotFound
}

func TestOfferSource(t *testing.T) {
	repo := &fakeOffers{}
	src, err := NewOfferSource(constants.SourcePostgres, repo, true)
	require.NoError(t, err)
	fixed := time.Date(2026, 10, 19, 8, 0, 0, 0, time.UTC)
	src.now = func() time.Time { return fixed }

	entries, err := src.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []catalog.Entry{{ID: "9", Variety: "PHOENIX", Crop: "ROSA"}}, entries)
	assert.Equal(t, fixed, repo.day)
	assert.Equal(t, "postgres:transit", src.Name())

	all, err := NewOfferSource(constants.SourcePostgres, repo, false)
	require.NoError(t, err)
	entries, err = all.Load(context.Background())
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}
