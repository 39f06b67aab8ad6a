package catalog

import (
	"context"
	"errors"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

type RefreshConfig struct {
	Watch        bool          // file sources: reload when the file changes
	Debounce     time.Duration // coalesce rapid write/rename bursts
	PollInterval time.Duration // database sources: reload period, 0 disables
}

type pathSource interface {
	Path() string
}

// Run keeps the snapshot fresh until ctx is done. File sources are watched
// with fsnotify; database sources are polled.
func (s *Store) Run(ctx context.Context, cfg RefreshConfig) error {
	if ps, ok := s.src.(pathSource); ok && s.src.Kind().IsFile() {
		if !cfg.Watch {
			<-ctx.Done()
			return nil
		}
		return s.watchFile(ctx, ps.Path(), cfg.Debounce)
	}
	if cfg.PollInterval <= 0 {
		<-ctx.Done()
		return nil
	}
	return s.poll(ctx, cfg.PollInterval)
}

func (s *Store) poll(ctx context.Context, every time.Duration) error {
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-t.C:
			_, _ = s.Reload(ctx)
		}
	}
}

// watchFile watches the parent directory so editors that replace the file
// through a rename are still seen.
func (s *Store) watchFile(ctx context.Context, path string, debounce time.Duration) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		s.logger.Error("catalog.watch.create_failed", "error", err)
		return err
	}
	defer func() { _ = w.Close() }()

	target := filepath.Clean(path)
	if err := w.Add(filepath.Dir(target)); err != nil {
		s.logger.Error("catalog.watch.add_failed", "dir", filepath.Dir(target), "error", err)
		return err
	}
	s.logger.Info("catalog.watch.started", "path", target, "debounce_ms", debounce.Milliseconds())

	timer := time.NewTimer(time.Hour)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case e, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(e.Name) != target || e.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) == 0 {
				continue
			}
			if debounce <= 0 {
				_, _ = s.Reload(ctx)
				continue
			}
			timer.Reset(debounce)
		case <-timer.C:
			_, _ = s.Reload(ctx)
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			if errors.Is(err, fsnotify.ErrEventOverflow) {
				_, _ = s.Reload(ctx)
				continue
			}
			s.logger.Warn("catalog.watch.error", "error", err)
		}
	}
}
