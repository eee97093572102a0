package parser

import (
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/abatilo/tally/internal/task"
)

const frontmatterDelimiter = "---"

// documentFrontmatter is the subset of YAML front matter the parser reads.
type documentFrontmatter struct {
	Date     string `yaml:"date"`
	Category string `yaml:"category"`
}

// frontmatter is the decoded document context.
type frontmatter struct {
	date     *task.Date
	category string
}

// splitFrontmatter detects a leading YAML block and returns its context and the
// index of the closing delimiter. ok is false when the document has no closed
// block, when the block is not a YAML mapping, or when it holds checklist lines;
// such a block is ordinary Markdown. A mapping with mistyped keys still counts
// as a block, with empty context.
func splitFrontmatter(lines []string) (frontmatter, int, bool) {
	if len(lines) < 2 || strings.TrimSpace(lines[0]) != frontmatterDelimiter {
		return frontmatter{}, 0, false
	}

	// Find closing delimiter
	var end int
	for i := 1; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) == frontmatterDelimiter {
			end = i
			break
		}
	}
	if end == 0 {
		return frontmatter{}, 0, false
	}

	body := lines[1:end]
	for _, line := range body {
		if checklistRe.MatchString(line) {
			return frontmatter{}, 0, false
		}
	}

	var doc yaml.Node
	if err := yaml.Unmarshal([]byte(strings.Join(body, "\n")), &doc); err != nil {
		return frontmatter{}, 0, false
	}
	// Empty or comment-only block.
	if len(doc.Content) == 0 {
		return frontmatter{}, end, true
	}
	if doc.Content[0].Kind != yaml.MappingNode {
		return frontmatter{}, 0, false
	}

	var fm documentFrontmatter
	if err := doc.Content[0].Decode(&fm); err != nil {
		return frontmatter{}, end, true
	}

	out := frontmatter{category: strings.TrimSpace(fm.Category)}
	if d, ok := parseLooseDate(fm.Date); ok {
		out.date = &d
	}
	return out, end, true
}

// parseLooseDate accepts a date or a timestamp whose first ten characters are a date.
func parseLooseDate(s string) (task.Date, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return task.Date{}, false
	}
	if d, err := task.ParseDate(s); err == nil {
		return d, true
	}
	const dateLen = len("2006-01-02")
	if len(s) > dateLen {
		if d, err := task.ParseDate(s[:dateLen]); err == nil {
			return d, true
		}
	}
	return task.Date{}, false
}
