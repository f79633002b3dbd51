// ABOUTME: Watch-folder auto-import of CSV files using fsnotify.
// ABOUTME: Debounces create/write events and imports with the saved column mapping.
package watch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/harperreed/plantfit/internal/importer"
	"github.com/harperreed/plantfit/internal/models"
	"go.uber.org/zap"
)

// Store is what the watcher needs from the repository.
type Store interface {
	importer.Target
	LoadMapping() (models.ColumnMapping, error)
}

// ReportFunc is called after every import attempt.
type ReportFunc func(path string, rep *importer.Report, err error)

// Watcher imports matching files dropped into a folder.
type Watcher struct {
	store     Store
	dir       string
	glob      string
	debounce  time.Duration
	delimiter rune
	decimal   rune
	logger    *zap.Logger
	onReport  ReportFunc

	pending map[string]time.Time
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(w *Watcher) {
		if l != nil {
			w.logger = l
		}
	}
}

// WithDebounce sets how long a file must stay quiet before it is imported.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) { w.debounce = d }
}

// WithCSVFormat sets the delimiter and decimal separator of watched files.
func WithCSVFormat(delimiter, decimal rune) Option {
	return func(w *Watcher) {
		w.delimiter = delimiter
		w.decimal = decimal
	}
}

// OnReport registers a callback for import results.
func OnReport(fn ReportFunc) Option {
	return func(w *Watcher) { w.onReport = fn }
}

// New returns a watcher for the folder named in settings. Auto-import must
// be enabled.
func New(store Store, settings models.Settings, opts ...Option) (*Watcher, error) {
	if !settings.AutoImportEnabled {
		return nil, errors.New("auto-import is disabled in settings")
	}
	if settings.WatchFolder == "" {
		return nil, errors.New("no watch folder configured")
	}
	glob := settings.FilenameGlob
	if glob == "" {
		glob = models.DefaultSettings().FilenameGlob
	}
	if _, err := filepath.Match(glob, ""); err != nil {
		return nil, fmt.Errorf("invalid filename glob %q: %w", glob, err)
	}

	w := &Watcher{
		store:    store,
		dir:      settings.WatchFolder,
		glob:     glob,
		debounce: 500 * time.Millisecond,
		logger:   zap.NewNop(),
		pending:  make(map[string]time.Time),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Run imports the matching files already in the folder, then watches for
// new or changed ones until ctx is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer fw.Close()

	if err := fw.Add(w.dir); err != nil {
		return fmt.Errorf("watch %s: %w", w.dir, err)
	}
	w.logger.Info("watching folder", zap.String("dir", w.dir), zap.String("glob", w.glob))

	existing, err := w.existing()
	if err != nil {
		return err
	}
	for _, path := range existing {
		w.importFile(path)
	}

	tick := w.debounce / 5
	if tick <= 0 {
		tick = 10 * time.Millisecond
	}
	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("watcher stopped")
			return nil

		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			w.handleEvent(event)

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("watcher error", zap.Error(err))

		case now := <-ticker.C:
			w.flush(now)
		}
	}
}

func (w *Watcher) matches(path string) bool {
	ok, _ := filepath.Match(w.glob, filepath.Base(path))
	return ok
}

func (w *Watcher) existing() ([]string, error) {
	entries, err := os.ReadDir(w.dir)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", w.dir, err)
	}
	var out []string
	for _, e := range entries {
		if e.Type().IsRegular() && w.matches(e.Name()) {
			out = append(out, filepath.Join(w.dir, e.Name()))
		}
	}
	sort.Strings(out)
	return out, nil
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
		return
	}
	if !w.matches(event.Name) {
		return
	}
	w.logger.Debug("file event", zap.String("path", event.Name), zap.Stringer("op", event.Op))
	w.pending[event.Name] = time.Now()
}

// flush imports files that have been quiet for the debounce interval.
func (w *Watcher) flush(now time.Time) {
	var ready []string
	for path, last := range w.pending {
		if now.Sub(last) >= w.debounce {
			ready = append(ready, path)
		}
	}
	sort.Strings(ready)
	for _, path := range ready {
		delete(w.pending, path)
		w.importFile(path)
	}
}

func (w *Watcher) importFile(path string) {
	rep, err := w.ImportFile(path)
	if err != nil {
		w.logger.Error("auto-import failed", zap.String("path", path), zap.Error(err))
	} else {
		w.logger.Info("auto-import finished",
			zap.String("path", path),
			zap.String("batch", rep.BatchID),
			zap.Int("created", rep.Created),
			zap.Int("updated", rep.Updated),
			zap.Int("skipped", rep.Skipped()))
	}
	if w.onReport != nil {
		w.onReport(path, rep, err)
	}
}

// ImportFile imports one file into the daily log with the saved mapping,
// overwriting existing rows.
func (w *Watcher) ImportFile(path string) (*importer.Report, error) {
	mapping, err := w.store.LoadMapping()
	if err != nil {
		return nil, err
	}
	if len(mapping) == 0 {
		return nil, fmt.Errorf("%w: save a column mapping first", importer.ErrMissingMapping)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return importer.Import(f, w.store, importer.Options{
		Kind:      models.KindDaily,
		Mapping:   mapping,
		Delimiter: w.delimiter,
		Decimal:   w.decimal,
		Overwrite: true,
		Logger:    w.logger,
	})
}
