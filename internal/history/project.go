package history

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

//nolint:gochecknoglobals // compiled once, read-only
var unsafeChars = regexp.MustCompile(`[^a-zA-Z0-9]+`)

// FindProjectRoot walks up from start looking for a .git directory.
// Returns the directory containing .git, or false if there is none.
func FindProjectRoot(start string) (string, bool) {
	dir := start
	for {
		info, err := os.Stat(filepath.Join(dir, ".git"))
		if err == nil && info.IsDir() {
			return dir, true
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}
		dir = parent
	}
}

// ResolveRoot picks the directory reports for paths are grouped under: the
// enclosing git repository of the first path, or that path's directory.
func ResolveRoot(paths []string) (string, error) {
	first := "."
	if len(paths) > 0 {
		first = paths[0]
	}

	abs, err := filepath.Abs(first)
	if err != nil {
		return "", err
	}
	if info, err := os.Stat(abs); err == nil && !info.IsDir() {
		abs = filepath.Dir(abs)
	}

	if root, ok := FindProjectRoot(abs); ok {
		return root, nil
	}
	return abs, nil
}

// SanitizePath converts an absolute path to a safe directory name.
// "/Users/abatilo/notes" -> "Users-abatilo-notes"
func SanitizePath(path string) string {
	result := strings.TrimPrefix(path, "/")
	result = unsafeChars.ReplaceAllString(result, "-")
	return strings.Trim(result, "-")
}
