// Package ingest loads JSON document files from a directory into a collection
// and keeps them in sync as files are created or rewritten.
package ingest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kailas-cloud/docfinder/internal/domain/collection"
	"github.com/kailas-cloud/docfinder/internal/domain/document/record"
)

// DefaultDebounce coalesces the burst of write events an editor produces for one save.
const DefaultDebounce = 250 * time.Millisecond

// Stats counts the outcome of ingesting one or more files.
type Stats struct {
	Files    int
	Upserted int
	Failed   int
}

func (s *Stats) add(o Stats) {
	s.Files += o.Files
	s.Upserted += o.Upserted
	s.Failed += o.Failed
}

// Watcher ingests *.json files from dir into one tenant collection.
type Watcher struct {
	dir      string
	tenant   string
	col      collection.Name
	docs     DocumentWriter
	debounce time.Duration
	logger   *zap.Logger

	mu      sync.Mutex
	pending map[string]time.Time
}

// New creates a watcher.
func New(dir, tenant string, col collection.Name, docs DocumentWriter, logger *zap.Logger) *Watcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Watcher{
		dir:      dir,
		tenant:   tenant,
		col:      col,
		docs:     docs,
		debounce: DefaultDebounce,
		logger:   logger.With(zap.String("watch_dir", dir)),
		pending:  make(map[string]time.Time),
	}
}

// WithDebounce overrides the event coalescing window.
func (w *Watcher) WithDebounce(d time.Duration) *Watcher {
	if d > 0 {
		w.debounce = d
	}
	return w
}

// LoadAll ingests every *.json file in the directory, in name order.
func (w *Watcher) LoadAll(ctx context.Context) (Stats, error) {
	paths, err := filepath.Glob(filepath.Join(w.dir, "*.json"))
	if err != nil {
		return Stats{}, fmt.Errorf("list %s: %w", w.dir, err)
	}
	sort.Strings(paths)

	var total Stats
	for _, p := range paths {
		if err := ctx.Err(); err != nil {
			return total, err
		}
		st, err := w.IngestFile(ctx, p)
		if err != nil {
			w.logger.Warn("Skipping unreadable file", zap.String("file", p), zap.Error(err))
			total.Failed++
			continue
		}
		total.add(st)
	}
	return total, nil
}

// IngestFile upserts every record of one file. Records without an id get one
// derived from the file path and position, so re-ingesting updates in place.
func (w *Watcher) IngestFile(ctx context.Context, path string) (Stats, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Stats{}, fmt.Errorf("read %s: %w", path, err)
	}
	recs, err := record.Decode(data)
	if err != nil {
		return Stats{}, fmt.Errorf("decode %s: %w", path, err)
	}

	st := Stats{Files: 1}
	for i, rec := range recs {
		if rec.ID == "" {
			rec.ID = derivedID(path, i)
		}
		if _, _, err := w.docs.Upsert(ctx, w.tenant, w.col, rec); err != nil {
			w.logger.Warn("Ingest failed",
				zap.String("file", path), zap.String("id", rec.ID), zap.Error(err))
			st.Failed++
			continue
		}
		st.Upserted++
	}
	return st, nil
}

// Run watches the directory until ctx is done.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer func() { _ = fw.Close() }()

	if err := fw.Add(w.dir); err != nil {
		return fmt.Errorf("watch %s: %w", w.dir, err)
	}
	w.logger.Info("Watching for document files")

	ticker := time.NewTicker(w.debounce)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if !isJSON(ev.Name) || (!ev.Op.Has(fsnotify.Create) && !ev.Op.Has(fsnotify.Write)) {
				continue
			}
			w.mark(ev.Name, time.Now())
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("Watcher error", zap.Error(err))
		case now := <-ticker.C:
			w.flush(ctx, now)
		}
	}
}

func (w *Watcher) mark(path string, at time.Time) {
	w.mu.Lock()
	w.pending[path] = at
	w.mu.Unlock()
}

// flush ingests files whose last event is older than the debounce window.
func (w *Watcher) flush(ctx context.Context, now time.Time) {
	var ready []string
	w.mu.Lock()
	for p, at := range w.pending {
		if now.Sub(at) >= w.debounce {
			ready = append(ready, p)
			delete(w.pending, p)
		}
	}
	w.mu.Unlock()
	sort.Strings(ready)

	for _, p := range ready {
		st, err := w.IngestFile(ctx, p)
		if err != nil {
			w.logger.Warn("Re-ingest failed", zap.String("file", p), zap.Error(err))
			continue
		}
		w.logger.Info("Re-ingested file",
			zap.String("file", p), zap.Int("upserted", st.Upserted), zap.Int("failed", st.Failed))
	}
}

func isJSON(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".json")
}

func derivedID(path string, i int) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte("file://"+filepath.Base(path)+"#"+strconv.Itoa(i))).String()
}
