package ingest

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// WatchConfig configures the inbox watcher.
type WatchConfig struct {
	Root        string        // directory to watch
	InitialScan bool          // if true, walk the root and emit existing files
	Debounce    time.Duration // coalesce rapid create/write bursts
	Logger      *slog.Logger
}

// StartWatcher watches the inbox directory and emits paths of newly dropped
// receipt images once writes have settled. The channel closes when ctx is
// cancelled.
func StartWatcher(ctx context.Context, cfg WatchConfig) (<-chan string, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Root == "" {
		return nil, errors.New("no inbox root provided")
	}
	if cfg.Debounce <= 0 {
		cfg.Debounce = 500 * time.Millisecond
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := w.Add(cfg.Root); err != nil {
		_ = w.Close()
		return nil, err
	}

	out := make(chan string, 256)

	go func() {
		defer close(out)
		defer w.Close()

		if cfg.InitialScan {
			_ = filepath.WalkDir(cfg.Root, func(path string, d fs.DirEntry, err error) error {
				if err != nil || d.IsDir() || IsHidden(path) || !AllowedExt(path) {
					return nil
				}
				select {
				case out <- path:
				case <-ctx.Done():
					return ctx.Err()
				}
				return nil
			})
		}

		// pending paths waiting for their write burst to settle
		pending := map[string]time.Time{}
		ticker := time.NewTicker(cfg.Debounce)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if ev.Op&(fsnotify.Create|fsnotify.Write) == 0 {
					continue
				}
				if IsHidden(ev.Name) || !AllowedExt(ev.Name) {
					continue
				}
				pending[ev.Name] = time.Now()
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				logger.Warn("inbox watcher error", "error", err)
			case now := <-ticker.C:
				for path, last := range pending {
					if now.Sub(last) < cfg.Debounce {
						continue
					}
					delete(pending, path)
					logger.Info("inbox file settled", "path", path)
					select {
					case out <- path:
					case <-ctx.Done():
						return
					}
				}
			}
		}
	}()

	return out, nil
}
