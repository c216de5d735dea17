// Package watcher ingests documents dropped into a directory.
package watcher

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/fsnotify/fsnotify"
	"golang.org/x/sync/errgroup"

	"github.com/MikeSquared-Agency/joey/internal/extractor"
	"github.com/MikeSquared-Agency/joey/internal/processor"
)

// scanConcurrency bounds parallel file reads during the initial scan.
const scanConcurrency = 4

// Ingester accepts file contents for extraction and storage.
type Ingester interface {
	IngestFile(ctx context.Context, origin processor.Origin, filename string, data []byte) (processor.IngestResult, error)
}

// Watcher feeds supported files in a directory to an Ingester.
type Watcher struct {
	dir      string
	ingester Ingester
	watcher  *fsnotify.Watcher
	logger   *slog.Logger
}

func New(dir string, ingester Ingester, logger *slog.Logger) (*Watcher, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("watch dir: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("watch dir %s is not a directory", dir)
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &Watcher{dir: dir, ingester: ingester, watcher: w, logger: logger}, nil
}

// Scan ingests every supported file already in the directory, in name order.
// Returns the number of files stored.
func (w *Watcher) Scan(ctx context.Context) (int, error) {
	dirEntries, err := os.ReadDir(w.dir)
	if err != nil {
		return 0, err
	}

	var names []string
	for _, e := range dirEntries {
		if e.IsDir() || !supported(e.Name()) {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	contents := make([][]byte, len(names))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(scanConcurrency)
	for i, name := range names {
		i, name := i, name
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			data, err := os.ReadFile(filepath.Join(w.dir, name))
			if err != nil {
				w.logger.Warn("failed to read watched file", "file", name, "error", err)
				return nil
			}
			contents[i] = data
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}

	stored := 0
	for i, name := range names {
		if contents[i] == nil {
			continue
		}
		if _, err := w.ingester.IngestFile(ctx, processor.OriginWatch, name, contents[i]); err != nil {
			w.logger.Warn("failed to ingest watched file", "file", name, "error", err)
			continue
		}
		stored++
	}
	return stored, nil
}

// Run scans the directory, then re-ingests files on create and write until
// ctx is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	if err := w.watcher.Add(w.dir); err != nil {
		return fmt.Errorf("watch %s: %w", w.dir, err)
	}

	n, err := w.Scan(ctx)
	if err != nil {
		return err
	}
	w.logger.Info("watch directory scanned", "dir", w.dir, "ingested", n)

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
				continue
			}
			if !supported(event.Name) {
				continue
			}
			w.ingestPath(ctx, event.Name)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watcher error", "error", err)
		}
	}
}

// Close releases the underlying fsnotify watcher.
func (w *Watcher) Close() error {
	return w.watcher.Close()
}

func (w *Watcher) ingestPath(ctx context.Context, path string) {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return
	}
	data, err := os.ReadFile(path)
	if err != nil {
		w.logger.Warn("failed to read watched file", "file", path, "error", err)
		return
	}
	name := filepath.Base(path)
	if _, err := w.ingester.IngestFile(ctx, processor.OriginWatch, name, data); err != nil {
		w.logger.Warn("failed to ingest watched file", "file", name, "error", err)
	}
}

func supported(name string) bool {
	_, ok := extractor.KindForFilename(name)
	return ok
}
