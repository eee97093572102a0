// Package loader discovers task files on disk and parses them concurrently.
package loader

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	tallyerrors "github.com/abatilo/tally/internal/errors"
	"github.com/abatilo/tally/internal/parser"
	"github.com/abatilo/tally/internal/task"
)

const (
	// DefaultMaxFileSize is the largest file read by default.
	DefaultMaxFileSize = 1 << 20
	// DefaultWorkers bounds concurrent parses by default.
	DefaultWorkers = 8

	sniffLen = 8 << 10
)

// Skip reasons reported in SkippedFile.
const (
	ReasonTooLarge   = "too large"
	ReasonBinary     = "binary"
	ReasonUnreadable = "unreadable"
)

// Options configures discovery.
type Options struct {
	// Extensions lists accepted file extensions without the leading dot.
	Extensions []string
	// Exclude lists directory names that are never walked.
	Exclude     []string
	MaxFileSize int64
	Workers     int
}

// DefaultOptions returns the discovery defaults.
func DefaultOptions() Options {
	return Options{
		Extensions:  []string{"md", "markdown", "txt"},
		Exclude:     []string{".git", "node_modules"},
		MaxFileSize: DefaultMaxFileSize,
		Workers:     DefaultWorkers,
	}
}

// FileResult holds the tasks of one file.
type FileResult struct {
	Path  string
	Tasks []task.Task
}

// SkippedFile is a candidate file that was not parsed.
type SkippedFile struct {
	Path   string
	Reason string
}

// Result is the outcome of a Load.
type Result struct {
	Files   []FileResult
	Skipped []SkippedFile
}

// Tasks returns every task, in path then line order.
func (r *Result) Tasks() []task.Task {
	var n int
	for _, f := range r.Files {
		n += len(f.Tasks)
	}
	out := make([]task.Task, 0, n)
	for _, f := range r.Files {
		out = append(out, f.Tasks...)
	}
	return out
}

// Paths returns the parsed file paths.
func (r *Result) Paths() []string {
	out := make([]string, len(r.Files))
	for i, f := range r.Files {
		out[i] = f.Path
	}
	return out
}

// Loader reads task files.
type Loader struct {
	opts   Options
	logger *slog.Logger
}

// New creates a Loader. Zero option fields fall back to the defaults.
func New(opts Options, logger *slog.Logger) *Loader {
	def := DefaultOptions()
	if opts.Extensions == nil {
		opts.Extensions = def.Extensions
	}
	if opts.Exclude == nil {
		opts.Exclude = def.Exclude
	}
	if opts.MaxFileSize <= 0 {
		opts.MaxFileSize = def.MaxFileSize
	}
	if opts.Workers <= 0 {
		opts.Workers = def.Workers
	}
	exts := make([]string, len(opts.Extensions))
	for i, ext := range opts.Extensions {
		exts[i] = strings.ToLower(strings.TrimPrefix(ext, "."))
	}
	opts.Extensions = exts
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Loader{opts: opts, logger: logger}
}

// Load discovers files under paths and parses them. With no paths it reads
// the current directory.
func (l *Loader) Load(ctx context.Context, paths ...string) (*Result, error) {
	if len(paths) == 0 {
		paths = []string{"."}
	}

	files, err := l.discover(paths)
	if err != nil {
		return nil, err
	}

	results := make([]*FileResult, len(files))
	skipped := make([]*SkippedFile, len(files))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(l.opts.Workers)
	for i, path := range files {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			fr, reason := l.parseFile(path)
			if reason != "" {
				l.logger.Debug("skipping file", "path", path, "reason", reason)
				skipped[i] = &SkippedFile{Path: path, Reason: reason}
				return nil
			}
			l.logger.Debug("parsed file", "path", path, "tasks", len(fr.Tasks))
			results[i] = fr
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("loading files: %w", err)
	}

	res := &Result{Files: []FileResult{}, Skipped: []SkippedFile{}}
	for i := range files {
		if results[i] != nil {
			res.Files = append(res.Files, *results[i])
		}
		if skipped[i] != nil {
			res.Skipped = append(res.Skipped, *skipped[i])
		}
	}
	return res, nil
}

// discover expands paths into a sorted, de-duplicated list of files.
func (l *Loader) discover(paths []string) ([]string, error) {
	seen := make(map[string]bool)
	var files []string
	add := func(p string) {
		p = filepath.Clean(p)
		if !seen[p] {
			seen[p] = true
			files = append(files, p)
		}
	}

	for _, root := range paths {
		info, err := os.Stat(root)
		if err != nil {
			if os.IsNotExist(err) {
				return nil, tallyerrors.PathNotFoundError{Path: root}
			}
			return nil, fmt.Errorf("stat %s: %w", root, err)
		}

		// Explicitly named files are always read.
		if !info.IsDir() {
			add(root)
			continue
		}

		err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				l.logger.Debug("walk error", "path", path, "error", err)
				if d != nil && d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
			if d.IsDir() {
				if path != root && l.excluded(d.Name()) {
					return filepath.SkipDir
				}
				return nil
			}
			if d.Type().IsRegular() && l.accepts(path) {
				add(path)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("walking %s: %w", root, err)
		}
	}

	sort.Strings(files)
	return files, nil
}

func (l *Loader) excluded(name string) bool {
	if strings.HasPrefix(name, ".") && name != "." && name != ".." {
		return true
	}
	return slices.Contains(l.opts.Exclude, name)
}

func (l *Loader) accepts(path string) bool {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	return ext != "" && slices.Contains(l.opts.Extensions, ext)
}

// parseFile reads and parses one file, or returns a skip reason.
func (l *Loader) parseFile(path string) (*FileResult, string) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, ReasonUnreadable
	}
	if info.Size() > l.opts.MaxFileSize {
		return nil, ReasonTooLarge
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, ReasonUnreadable
	}
	if isBinary(data) {
		return nil, ReasonBinary
	}

	tasks := parser.ParseWithOptions(string(data), parser.Options{
		DefaultDate: DateFromName(path),
	})
	for i := range tasks {
		tasks[i].Source = path
	}
	return &FileResult{Path: path, Tasks: tasks}, ""
}

func isBinary(data []byte) bool {
	return bytes.IndexByte(data[:min(len(data), sniffLen)], 0) >= 0
}

// DateFromName returns the date a daily-note file name carries, such as
// 2024-01-05.md or 01-05-2024-standup.md.
func DateFromName(path string) *task.Date {
	base := filepath.Base(path)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	const n = len("2006-01-02")
	if len(base) < n {
		return nil
	}
	if d, err := task.ParseDate(base[:n]); err == nil {
		return &d
	}
	return nil
}

// ReadAll parses r as a single document, for stdin input.
func ReadAll(r io.Reader, source string) ([]task.Task, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", source, err)
	}
	tasks := parser.Parse(string(data))
	for i := range tasks {
		tasks[i].Source = source
	}
	return tasks, nil
}
