//nolint:revive // Package name intentionally matches stdlib for domain clarity
package errors

import "fmt"

// NotInitializedError indicates the history directory doesn't exist.
type NotInitializedError struct {
	Dir string
}

func (e NotInitializedError) Error() string {
	return fmt.Sprintf("history not initialized at %s: run 'tally analyze --save' first", e.Dir)
}

// AlreadyInitializedError indicates the history directory already exists.
type AlreadyInitializedError struct {
	Dir string
}

func (e AlreadyInitializedError) Error() string {
	return fmt.Sprintf("history already initialized at %s", e.Dir)
}

// ReportNotFoundError indicates the report ID doesn't match any file.
type ReportNotFoundError struct {
	ID string
}

func (e ReportNotFoundError) Error() string {
	return fmt.Sprintf("report not found: %s", e.ID)
}

// AlreadyExistsError indicates an ID collision.
type AlreadyExistsError struct {
	ID string
}

func (e AlreadyExistsError) Error() string {
	return fmt.Sprintf("report already exists: %s", e.ID)
}

// PathNotFoundError indicates a path given to the loader doesn't exist.
type PathNotFoundError struct {
	Path string
}

func (e PathNotFoundError) Error() string {
	return fmt.Sprintf("path not found: %s", e.Path)
}

// NoFilesError indicates nothing readable was found under the given paths.
type NoFilesError struct {
	Paths []string
}

func (e NoFilesError) Error() string {
	return fmt.Sprintf("no task files found in %v", e.Paths)
}

// MissingAPIKeyError indicates insights were requested without credentials.
type MissingAPIKeyError struct{}

func (e MissingAPIKeyError) Error() string {
	return "anthropic API key not set: export ANTHROPIC_API_KEY or set anthropic.api_key"
}

// InsightError wraps a failed call to the insight service.
type InsightError struct {
	Err error
}

func (e InsightError) Error() string {
	return fmt.Sprintf("generating insights: %v", e.Err)
}

func (e InsightError) Unwrap() error {
	return e.Err
}

// InvalidWindowError indicates --since is after --until.
type InvalidWindowError struct {
	Since string
	Until string
}

func (e InvalidWindowError) Error() string {
	return fmt.Sprintf("invalid date window: since %s is after until %s", e.Since, e.Until)
}

// InvalidKeepError indicates a negative retention count.
type InvalidKeepError struct {
	Keep int
}

func (e InvalidKeepError) Error() string {
	return fmt.Sprintf("invalid keep count: %d (must be >= 0)", e.Keep)
}
