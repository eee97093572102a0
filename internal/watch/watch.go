// Package watch re-runs a callback when task files change on disk.
package watch

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	tallyerrors "github.com/abatilo/tally/internal/errors"
)

// DefaultDebounce is the quiet period used when none is configured.
const DefaultDebounce = 500 * time.Millisecond

// Options configures a Watcher.
type Options struct {
	// Extensions limits which file names trigger a refresh. Empty accepts all.
	// A leading dot and letter case are ignored.
	Extensions []string
	// Exclude lists directory names that are never watched.
	Exclude  []string
	Debounce time.Duration
}

// Watcher watches files and directory trees for changes.
type Watcher struct {
	opts    Options
	logger  *slog.Logger
	watcher *fsnotify.Watcher
	// files holds explicitly named files; their parents are watched.
	files map[string]bool
	trees []string
}

// New starts watching paths. Directories are watched recursively.
func New(opts Options, logger *slog.Logger, paths ...string) (*Watcher, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	if len(paths) == 0 {
		paths = []string{"."}
	}
	exts := make([]string, len(opts.Extensions))
	for i, ext := range opts.Extensions {
		exts[i] = strings.ToLower(strings.TrimPrefix(ext, "."))
	}
	opts.Extensions = exts

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{opts: opts, logger: logger, watcher: fw, files: map[string]bool{}}
	for _, p := range paths {
		if err := w.add(p); err != nil {
			fw.Close()
			return nil, err
		}
	}
	return w, nil
}

func (w *Watcher) add(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	info, err := os.Stat(abs)
	if err != nil {
		return tallyerrors.PathNotFoundError{Path: path}
	}
	if !info.IsDir() {
		w.files[abs] = true
		return w.watcher.Add(filepath.Dir(abs))
	}
	w.trees = append(w.trees, abs)
	return w.addTree(abs)
}

func (w *Watcher) addTree(root string) error {
	return filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if p != root && w.skipDir(d.Name()) {
			return filepath.SkipDir
		}
		w.logger.Debug("watching directory", "path", p)
		return w.watcher.Add(p)
	})
}

func (w *Watcher) skipDir(name string) bool {
	return strings.HasPrefix(name, ".") || slices.Contains(w.opts.Exclude, name)
}

// relevant reports whether an event on name should trigger a refresh.
func (w *Watcher) relevant(name string) bool {
	if w.files[name] {
		return true
	}
	if !w.inTree(name) {
		return false
	}
	if len(w.opts.Extensions) == 0 {
		return true
	}
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(name)), ".")
	return slices.Contains(w.opts.Extensions, ext)
}

func (w *Watcher) inTree(name string) bool {
	for _, root := range w.trees {
		if rel, err := filepath.Rel(root, name); err == nil && !strings.HasPrefix(rel, "..") {
			return true
		}
	}
	return false
}

// Close stops watching.
func (w *Watcher) Close() error {
	return w.watcher.Close()
}

// Run calls fn once at start and again after each burst of changes settles
// for the debounce period. It returns when ctx is done or fn fails.
func (w *Watcher) Run(ctx context.Context, fn func(context.Context) error) error {
	if err := fn(ctx); err != nil {
		return err
	}

	timer := time.NewTimer(w.opts.Debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() && !w.skipDir(info.Name()) {
					if err := w.addTree(event.Name); err != nil {
						w.logger.Warn("watching new directory failed", "path", event.Name, "error", err)
					}
					continue
				}
			}
			if event.Op == fsnotify.Chmod || !w.relevant(event.Name) {
				continue
			}
			w.logger.Debug("change detected", "path", event.Name, "op", event.Op.String())
			timer.Reset(w.opts.Debounce)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watch error", "error", err)
		case <-timer.C:
			if err := fn(ctx); err != nil {
				return err
			}
		}
	}
}
