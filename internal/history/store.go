// Package history persists analysis reports as Markdown files with YAML
// front matter, one directory per analyzed project.
package history

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	tallyerrors "github.com/abatilo/tally/internal/errors"
	"github.com/abatilo/tally/internal/metrics"
)

const fileExt = ".md"

// Report is one saved analysis run.
type Report struct {
	ID        string          `json:"id"`
	CreatedAt time.Time       `json:"created_at"`
	Root      string          `json:"root"`
	Files     []string        `json:"files"`
	Summary   metrics.Summary `json:"summary"`
	Insight   string          `json:"insight,omitempty"`
}

// Store handles report file operations.
type Store struct {
	basePath string
}

// NewStore creates a Store scoped to root under baseDir (<baseDir>/<sanitized-root>/).
func NewStore(baseDir, root string) *Store {
	return &Store{basePath: filepath.Join(baseDir, SanitizePath(root))}
}

// NewStoreWithPath creates a Store with a custom base path.
func NewStoreWithPath(path string) *Store {
	return &Store{basePath: path}
}

// BasePath returns the base path of the store.
func (s *Store) BasePath() string {
	return s.basePath
}

// IsInitialized checks if the report directory exists.
func (s *Store) IsInitialized() bool {
	info, err := os.Stat(s.basePath)
	return err == nil && info.IsDir()
}

// Init creates the report directory.
func (s *Store) Init(force bool) error {
	if s.IsInitialized() && !force {
		return tallyerrors.AlreadyInitializedError{Dir: s.basePath}
	}
	return os.MkdirAll(s.basePath, 0o755)
}

// reportPath returns the full path for a report file.
func (s *Store) reportPath(id string) string {
	return filepath.Join(s.basePath, id+fileExt)
}

// Exists checks if a report with the given ID exists.
func (s *Store) Exists(id string) bool {
	_, err := os.Stat(s.reportPath(id))
	return err == nil
}

// Save writes a report to disk.
func (s *Store) Save(r *Report) error {
	if !s.IsInitialized() {
		return tallyerrors.NotInitializedError{Dir: s.basePath}
	}
	content, err := SerializeMarkdown(r)
	if err != nil {
		return fmt.Errorf("serializing report %s: %w", r.ID, err)
	}
	return os.WriteFile(s.reportPath(r.ID), content, 0o644) //nolint:gosec // reports are not secret
}

// Load reads a report from disk.
func (s *Store) Load(id string) (*Report, error) {
	if !s.IsInitialized() {
		return nil, tallyerrors.NotInitializedError{Dir: s.basePath}
	}
	content, err := os.ReadFile(s.reportPath(id))
	if os.IsNotExist(err) {
		return nil, tallyerrors.ReportNotFoundError{ID: id}
	}
	if err != nil {
		return nil, err
	}
	r, err := ParseMarkdown(content)
	if err != nil {
		return nil, fmt.Errorf("parsing report %s: %w", id, err)
	}
	return r, nil
}

// Delete removes a report file.
func (s *Store) Delete(id string) error {
	if !s.IsInitialized() {
		return tallyerrors.NotInitializedError{Dir: s.basePath}
	}
	err := os.Remove(s.reportPath(id))
	if os.IsNotExist(err) {
		return tallyerrors.ReportNotFoundError{ID: id}
	}
	return err
}

// List returns all reports, newest first.
func (s *Store) List() ([]*Report, error) {
	if !s.IsInitialized() {
		return nil, tallyerrors.NotInitializedError{Dir: s.basePath}
	}

	ids, err := s.AllIDs()
	if err != nil {
		return nil, err
	}

	reports := make([]*Report, 0, len(ids))
	for id := range ids {
		r, err := s.Load(id)
		if err != nil {
			continue // Skip malformed files
		}
		reports = append(reports, r)
	}

	sort.Slice(reports, func(i, j int) bool {
		if !reports[i].CreatedAt.Equal(reports[j].CreatedAt) {
			return reports[i].CreatedAt.After(reports[j].CreatedAt)
		}
		return reports[i].ID < reports[j].ID
	})

	return reports, nil
}

// Latest returns the newest report.
func (s *Store) Latest() (*Report, error) {
	reports, err := s.List()
	if err != nil {
		return nil, err
	}
	if len(reports) == 0 {
		return nil, tallyerrors.ReportNotFoundError{ID: "latest"}
	}
	return reports[0], nil
}

// AllIDs returns all report IDs (for ID generation collision checking).
func (s *Store) AllIDs() (map[string]bool, error) {
	if !s.IsInitialized() {
		return nil, tallyerrors.NotInitializedError{Dir: s.basePath}
	}

	entries, err := os.ReadDir(s.basePath)
	if err != nil {
		return nil, err
	}

	ids := make(map[string]bool)
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), fileExt) {
			continue
		}
		ids[strings.TrimSuffix(entry.Name(), fileExt)] = true
	}
	return ids, nil
}

// Prune deletes all but the newest keep reports and returns the removed IDs.
func (s *Store) Prune(keep int) ([]string, error) {
	if keep < 0 {
		return nil, tallyerrors.InvalidKeepError{Keep: keep}
	}
	reports, err := s.List()
	if err != nil {
		return nil, err
	}
	if len(reports) <= keep {
		return []string{}, nil
	}

	removed := make([]string, 0, len(reports)-keep)
	for _, r := range reports[keep:] {
		if err := s.Delete(r.ID); err != nil {
			return removed, err
		}
		removed = append(removed, r.ID)
	}
	return removed, nil
}

// Create saves a new report with a generated ID.
func (s *Store) Create(root string, files []string, summary metrics.Summary, insight string) (*Report, error) {
	if !s.IsInitialized() {
		return nil, tallyerrors.NotInitializedError{Dir: s.basePath}
	}

	createdAt := time.Now().UTC().Truncate(time.Second)

	existingIDs, err := s.AllIDs()
	if err != nil {
		return nil, err
	}
	existsFn := func(id string) bool {
		return existingIDs[id]
	}
	id := GenerateID(root, createdAt, existsFn)

	r := &Report{
		ID:        id,
		CreatedAt: createdAt,
		Root:      root,
		Files:     files,
		Summary:   summary,
		Insight:   insight,
	}

	if err := s.Save(r); err != nil {
		return nil, err
	}
	return r, nil
}
