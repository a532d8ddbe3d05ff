package ingest

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

type WatchConfig struct {
	Dir         string        // directory to watch (not recursive)
	InitialScan bool          // if true, emit the PDFs already present
	Debounce    time.Duration // coalesce rapid create/write bursts while a file is copied in
}

// StartWatcher emits the path of every PDF created, written or renamed into cfg.Dir.
// Both channels are closed when ctx is done.
func StartWatcher(ctx context.Context, cfg WatchConfig, logger *slog.Logger) (<-chan string, <-chan error, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Dir == "" {
		return nil, nil, errors.New("no directory provided")
	}
	if st, err := os.Stat(cfg.Dir); err != nil || !st.IsDir() {
		return nil, nil, errors.New("watch target is not a directory: " + cfg.Dir)
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		logger.Error("ingest.watch.create_failed", "error", err)
		return nil, nil, err
	}
	if err := w.Add(cfg.Dir); err != nil {
		_ = w.Close()
		logger.Error("ingest.watch.add_failed", "dir", cfg.Dir, "error", err)
		return nil, nil, err
	}

	var initial []string
	if cfg.InitialScan {
		initial, _, err = ListPDFs(cfg.Dir)
		if err != nil {
			_ = w.Close()
			return nil, nil, err
		}
	}

	evCh := make(chan string, 256)
	errCh := make(chan error, 1)

	go func() {
		var (
			mu      sync.Mutex
			pending = map[string]struct{}{}
			timer   *time.Timer
			wg      sync.WaitGroup
		)
		defer func() {
			mu.Lock()
			if timer != nil && timer.Stop() {
				wg.Done()
			}
			mu.Unlock()
			wg.Wait()
			_ = w.Close()
			close(evCh)
			close(errCh)
		}()

		emit := func(p string) {
			select {
			case evCh <- p:
			case <-ctx.Done():
			}
		}
		flush := func() {
			defer wg.Done()
			mu.Lock()
			batch := make([]string, 0, len(pending))
			for p := range pending {
				batch = append(batch, p)
				delete(pending, p)
			}
			mu.Unlock()
			for _, p := range batch {
				emit(p)
			}
		}

		for _, p := range initial {
			emit(p)
		}
		logger.Info("ingest.watch.started", "dir", cfg.Dir, "initial", len(initial))

		for {
			select {
			case <-ctx.Done():
				return
			case e, ok := <-w.Events:
				if !ok {
					return
				}
				if IsHidden(e.Name) || !Allowed(e.Name) {
					continue
				}
				if e.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) == 0 {
					continue
				}
				if cfg.Debounce <= 0 {
					emit(e.Name)
					continue
				}
				mu.Lock()
				pending[e.Name] = struct{}{}
				if timer != nil && timer.Stop() {
					wg.Done()
				}
				wg.Add(1)
				timer = time.AfterFunc(cfg.Debounce, flush)
				mu.Unlock()
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				logger.Error("ingest.watch.error", "error", err)
				select {
				case errCh <- err:
				default:
				}
			}
		}
	}()

	return evCh, errCh, nil
}
