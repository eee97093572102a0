// Package parser turns Markdown task lists into task records.
//
// Grammar, per line:
//
//   - checklist item: optional indentation, optional bullet (-, *, +) followed by
//     whitespace, then [ ], [x] or [X], then whitespace and the description;
//   - heading: up to three spaces, 1-6 '#', whitespace, the heading text.
//     The text becomes the category of the items below it. A heading that is
//     a date, or starts with a weekday name, also dates those items;
//   - fenced code blocks and everything else are ignored.
//
// Inside a description, "(2024-01-05)" or "(done 2024-01-05)" sets the date,
// "(created 2024-01-05)" sets the creation date and "#word" adds a tag. The first
// tag overrides the heading category.
package parser

import (
	"regexp"
	"strings"

	"github.com/abatilo/tally/internal/task"
)

const tabWidth = 4

//nolint:gochecknoglobals // compiled once, read-only
var (
	checklistRe = regexp.MustCompile(`^([ \t]*)(?:[-*+][ \t]+)?\[( |x|X)\](?:[ \t]+(.*))?$`)
	headingRe   = regexp.MustCompile(`^ {0,3}(#{1,6})(?:[ \t]+(.*?))?[ \t]*$`)
	closingRe   = regexp.MustCompile(`(?:^|[ \t]+)#+$`)
	annotRe     = regexp.MustCompile(
		`\(\s*(?:((?i:created|done))\s*:?\s*)?(\d{4}-\d{2}-\d{2}|\d{4}/\d{2}/\d{2}|\d{2}-\d{2}-\d{4})\s*\)`,
	)
	// Adjacent tags such as "#a#b" match as one run.
	tagRe = regexp.MustCompile(`(?:^|\s)#([A-Za-z][\w/-]*(?:#[A-Za-z][\w/-]*)*)`)
)

// Options supplies document-level defaults.
type Options struct {
	// DefaultDate is used for items with no date annotation.
	DefaultDate *task.Date
	// DefaultCategory applies until the first heading.
	DefaultCategory string
}

// Parse converts a Markdown document into its checklist items, in line order.
// It never fails: lines that are not checklist items are skipped.
func Parse(document string) []task.Task {
	return ParseWithOptions(document, Options{})
}

// ParseWithOptions is Parse with document-level defaults.
//
// The document date comes from, in order: YAML front matter "date", a
// daily-note title line "[[2024 Daily TODO]] - [Week] 3 / [Day] 15", the
// first date tag below a "## Tags" heading, then opts.DefaultDate. It dates
// items with no annotation and anchors weekday headings such as "### Monday".
// Front matter "category" takes precedence over opts.DefaultCategory.
func ParseWithOptions(document string, opts Options) []task.Task {
	lines := strings.Split(document, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}

	start := 0
	var fmDate *task.Date
	if fm, end, ok := splitFrontmatter(lines); ok {
		start = end + 1
		fmDate = fm.date
		if fm.category != "" {
			opts.DefaultCategory = fm.category
		}
	}

	dd := scanDocumentDates(lines[start:])
	for _, d := range []*task.Date{fmDate, dd.header, dd.tagged} {
		if d != nil {
			opts.DefaultDate = d
			break
		}
	}

	s := scanner{
		category: opts.DefaultCategory,
		baseDate: opts.DefaultDate,
	}
	for i := start; i < len(lines); i++ {
		s.line(i+1, lines[i])
	}
	return s.tasks
}

// frame is an open checklist item that may receive children.
type frame struct {
	indent int
	line   int
}

// scanner holds the running context of a single Parse call.
type scanner struct {
	tasks []task.Task

	category    string
	baseDate    *task.Date
	headingDate *task.Date

	fence string
	stack []frame
}

func (s *scanner) line(n int, line string) {
	trimmed := strings.TrimSpace(line)

	if s.fence != "" {
		if strings.HasPrefix(trimmed, s.fence) {
			s.fence = ""
		}
		s.stack = nil
		return
	}
	if strings.HasPrefix(trimmed, "```") || strings.HasPrefix(trimmed, "~~~") {
		s.fence = trimmed[:3]
		s.stack = nil
		return
	}

	if trimmed == "" {
		return
	}

	if m := headingRe.FindStringSubmatch(line); m != nil {
		s.heading(m[2])
		return
	}

	m := checklistRe.FindStringSubmatch(line)
	if m == nil {
		s.stack = nil
		return
	}
	s.item(n, m[1], m[2], m[3])
}

func (s *scanner) heading(text string) {
	text = strings.TrimSpace(closingRe.ReplaceAllString(text, ""))
	s.category = text
	s.headingDate = nil
	if d, err := task.ParseDate(text); err == nil {
		s.headingDate = &d
	} else if s.baseDate != nil {
		if d, ok := weekdayDate(text, *s.baseDate); ok {
			s.headingDate = &d
		}
	}
	s.stack = nil
}

func (s *scanner) item(n int, indentation, marker, description string) {
	indent := indentWidth(indentation)
	for len(s.stack) > 0 && s.stack[len(s.stack)-1].indent >= indent {
		s.stack = s.stack[:len(s.stack)-1]
	}
	parent := 0
	if len(s.stack) > 0 {
		parent = s.stack[len(s.stack)-1].line
	}
	depth := len(s.stack)
	s.stack = append(s.stack, frame{indent: indent, line: n})

	ann := extractAnnotations(description)

	t := task.Task{
		Text:       ann.text,
		Completed:  marker != " ",
		Date:       ann.date,
		Created:    ann.created,
		Category:   s.category,
		Tags:       ann.tags,
		SourceLine: n,
		Depth:      depth,
		Parent:     parent,
	}
	if len(ann.tags) > 0 {
		t.Category = ann.tags[0]
	}
	if t.Date == nil {
		t.Date = s.defaultDate()
	}
	s.tasks = append(s.tasks, t)
}

func (s *scanner) defaultDate() *task.Date {
	var d *task.Date
	switch {
	case s.headingDate != nil:
		d = s.headingDate
	case s.baseDate != nil:
		d = s.baseDate
	default:
		return nil
	}
	// Each task owns its date.
	c := *d
	return &c
}

// annotations is what extractAnnotations pulls out of a description.
type annotations struct {
	text    string
	date    *task.Date
	created *task.Date
	tags    []string
}

func extractAnnotations(description string) annotations {
	var ann annotations

	var sb strings.Builder
	last := 0
	for _, loc := range annotRe.FindAllStringSubmatchIndex(description, -1) {
		keyword := ""
		if loc[2] >= 0 {
			keyword = strings.ToLower(description[loc[2]:loc[3]])
		}
		d, err := task.ParseDate(description[loc[4]:loc[5]])
		if err != nil {
			continue
		}

		switch {
		case keyword == "created" && ann.created == nil:
			ann.created = &d
		case keyword != "created" && ann.date == nil:
			ann.date = &d
		default:
			continue
		}
		sb.WriteString(description[last:loc[0]])
		sb.WriteString(" ")
		last = loc[1]
	}
	sb.WriteString(description[last:])
	text := sb.String()

	for _, m := range tagRe.FindAllStringSubmatch(text, -1) {
		ann.tags = append(ann.tags, strings.Split(m[1], "#")...)
	}
	if len(ann.tags) > 0 {
		text = tagRe.ReplaceAllString(text, " ")
	}

	ann.text = strings.Join(strings.Fields(text), " ")
	return ann
}

// indentWidth counts leading whitespace columns, expanding tabs.
func indentWidth(s string) int {
	w := 0
	for _, r := range s {
		if r == '\t' {
			w += tabWidth - w%tabWidth
		} else {
			w++
		}
	}
	return w
}
