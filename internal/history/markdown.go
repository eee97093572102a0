package history

import (
	"bytes"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/abatilo/tally/internal/metrics"
)

const frontmatterDelimiter = "---"

// reportFrontmatter is the YAML-serializable portion of a report.
type reportFrontmatter struct {
	ID        string          `yaml:"id"`
	CreatedAt string          `yaml:"created_at"`
	Root      string          `yaml:"root"`
	Files     []string        `yaml:"files,omitempty"`
	Summary   metrics.Summary `yaml:"summary"`
}

// ParseMarkdown parses a markdown file with YAML frontmatter into a Report.
func ParseMarkdown(content []byte) (*Report, error) {
	lines := strings.Split(string(content), "\n")
	if len(lines) < 2 || strings.TrimSpace(lines[0]) != frontmatterDelimiter {
		return nil, &parseError{"missing YAML frontmatter"}
	}

	var frontmatterEnd int
	for i := 1; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) == frontmatterDelimiter {
			frontmatterEnd = i
			break
		}
	}
	if frontmatterEnd == 0 {
		return nil, &parseError{"unclosed YAML frontmatter"}
	}

	yamlContent := strings.Join(lines[1:frontmatterEnd], "\n")
	var fm reportFrontmatter
	if err := yaml.Unmarshal([]byte(yamlContent), &fm); err != nil {
		return nil, &parseError{"invalid YAML: " + err.Error()}
	}

	createdAt, err := parseTime(fm.CreatedAt)
	if err != nil {
		return nil, &parseError{"invalid created_at: " + err.Error()}
	}

	// The insight is everything after the frontmatter.
	var insight string
	if frontmatterEnd+1 < len(lines) {
		insight = strings.TrimSpace(strings.Join(lines[frontmatterEnd+1:], "\n"))
	}

	return &Report{
		ID:        fm.ID,
		CreatedAt: createdAt,
		Root:      fm.Root,
		Files:     fm.Files,
		Summary:   fm.Summary,
		Insight:   insight,
	}, nil
}

// SerializeMarkdown converts a Report to markdown with YAML frontmatter.
func SerializeMarkdown(r *Report) ([]byte, error) {
	fm := reportFrontmatter{
		ID:        r.ID,
		CreatedAt: r.CreatedAt.Format(time.RFC3339),
		Root:      r.Root,
		Files:     r.Files,
		Summary:   r.Summary,
	}

	var buf bytes.Buffer
	buf.WriteString(frontmatterDelimiter + "\n")

	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(fm); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}

	buf.WriteString(frontmatterDelimiter + "\n")

	if r.Insight != "" {
		buf.WriteString("\n")
		buf.WriteString(r.Insight)
		buf.WriteString("\n")
	}

	return buf.Bytes(), nil
}

// parseError represents a parsing error.
type parseError struct {
	msg string
}

func (e *parseError) Error() string {
	return e.msg
}

// parseTime tries to parse a time string in common formats.
func parseTime(s string) (time.Time, error) {
	formats := []string{
		time.RFC3339,
		time.RFC3339Nano,
		"2006-01-02T15:04:05Z",
		"2006-01-02",
	}
	for _, f := range formats {
		if t, err := time.Parse(f, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, &parseError{"unrecognized time format"}
}
