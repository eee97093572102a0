package parser

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/abatilo/tally/internal/task"
)

const tagsHeading = "## Tags"

//nolint:gochecknoglobals // compiled once, read-only
var (
	// dailyHeaderRe matches "[[2024 Daily TODO]] - [Week] 3 / [Day] 15".
	dailyHeaderRe = regexp.MustCompile(`\[\[(\d{4}) Daily TODO\]\]\s*-\s*\[Week\]\s*(\d+)\s*/\s*\[Day\]\s*(\d+)`)

	weekdays = map[string]time.Weekday{
		"sunday":    time.Sunday,
		"monday":    time.Monday,
		"tuesday":   time.Tuesday,
		"wednesday": time.Wednesday,
		"thursday":  time.Thursday,
		"friday":    time.Friday,
		"saturday":  time.Saturday,
	}
)

// documentDates are the dates a note declares about itself.
type documentDates struct {
	// header comes from the daily-note title line.
	header *task.Date
	// tagged is the first date tag on the line after "## Tags".
	tagged *task.Date
}

func scanDocumentDates(lines []string) documentDates {
	var dd documentDates
	for i, line := range lines {
		if dd.header == nil {
			if m := dailyHeaderRe.FindStringSubmatch(line); m != nil {
				dd.header = dayOfYear(m[1], m[3])
			}
		}
		if dd.tagged == nil && strings.TrimSpace(line) == tagsHeading {
			dd.tagged = tagDate(lines[i+1:])
		}
	}
	return dd
}

// dayOfYear returns the date of the n-th day (1-based) of year.
func dayOfYear(year, n string) *task.Date {
	y, err := strconv.Atoi(year)
	if err != nil {
		return nil
	}
	day, err := strconv.Atoi(n)
	if err != nil || day < 1 {
		return nil
	}
	d := task.NewDate(y, time.January, 1).AddDays(day - 1)
	return &d
}

// tagDate reads the first non-blank line of a Tags section and returns its
// first tag that is a date, such as #01-15-2024.
func tagDate(section []string) *task.Date {
	for _, line := range section {
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		for _, f := range fields {
			if len(f) < 2 || f[0] != '#' {
				continue
			}
			if d, err := task.ParseDate(f[1:]); err == nil {
				return &d
			}
		}
		return nil
	}
	return nil
}

// weekdayDate maps a heading such as "Monday" or "tuesday: errands" to a day
// in the Sunday-started week containing anchor.
func weekdayDate(heading string, anchor task.Date) (task.Date, bool) {
	fields := strings.Fields(heading)
	if len(fields) == 0 {
		return task.Date{}, false
	}
	day, ok := weekdays[strings.ToLower(strings.TrimRight(fields[0], ":,.-"))]
	if !ok {
		return task.Date{}, false
	}
	return anchor.AddDays(int(day) - int(anchor.Time().Weekday())), true
}
