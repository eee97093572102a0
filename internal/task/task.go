package task

import (
	"fmt"
	"time"
)

// Uncategorized is the bucket label for tasks without a category.
const Uncategorized = "uncategorized"

const (
	dateLayout    = "2006-01-02"
	secondsPerDay = 24 * 60 * 60
)

// dateLayouts lists the accepted spellings of a calendar date, in match order.
//
//nolint:gochecknoglobals // read-only lookup table
var dateLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"01-02-2006",
}

// Date is a calendar day with no time of day or zone.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// NewDate returns the Date for the given year, month and day.
func NewDate(year int, month time.Month, day int) Date {
	return Date{Year: year, Month: month, Day: day}
}

// DateOf returns the calendar day of t in t's location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

// ParseDate parses YYYY-MM-DD, YYYY/MM/DD or MM-DD-YYYY.
// Out-of-range days such as 2024-02-30 are rejected.
func ParseDate(s string) (Date, error) {
	for _, layout := range dateLayouts {
		if len(s) != len(layout) {
			continue
		}
		if t, err := time.Parse(layout, s); err == nil {
			return DateOf(t), nil
		}
	}
	return Date{}, InvalidDateError{Value: s}
}

// Time returns midnight UTC of the day.
func (d Date) Time() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

// IsZero reports whether d is the zero Date.
func (d Date) IsZero() bool {
	return d == Date{}
}

// Before reports whether d is strictly earlier than o.
func (d Date) Before(o Date) bool {
	return d.Time().Before(o.Time())
}

// AddDays returns the date n days after d (n may be negative).
func (d Date) AddDays(n int) Date {
	return DateOf(d.Time().AddDate(0, 0, n))
}

// DaysUntil returns the number of calendar days from d to o.
// It counts whole Unix days, so spans longer than a time.Duration stay exact.
func (d Date) DaysUntil(o Date) int {
	return int((o.Time().Unix() - d.Time().Unix()) / secondsPerDay)
}

func (d Date) String() string {
	return d.Time().Format(dateLayout)
}

// MarshalText implements encoding.TextMarshaler.
func (d Date) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Date) UnmarshalText(b []byte) error {
	parsed, err := ParseDate(string(b))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// InvalidDateError indicates a string is not a recognized calendar date.
type InvalidDateError struct {
	Value string
}

func (e InvalidDateError) Error() string {
	return fmt.Sprintf("invalid date: %q (valid: YYYY-MM-DD, YYYY/MM/DD, MM-DD-YYYY)", e.Value)
}

// Task represents one checklist item of a Markdown document.
type Task struct {
	Text       string
	Completed  bool
	Date       *Date
	Created    *Date
	Category   string
	Tags       []string
	SourceLine int
	Depth      int
	Parent     int
	Source     string
}

// IsDated reports whether the task carries a calendar date.
func (t Task) IsDated() bool {
	return t.Date != nil
}

// Bucket returns the category label used for grouping.
func (t Task) Bucket() string {
	if t.Category == "" {
		return Uncategorized
	}
	return t.Category
}

// Filter selects tasks by completion state.
type Filter struct {
	Open bool
	Done bool
}

// Matches returns true if the task should be included.
func (f Filter) Matches(t Task) bool {
	// If no filter is set, include all
	if !f.Open && !f.Done {
		return true
	}
	if t.Completed {
		return f.Done
	}
	return f.Open
}

// Window limits dated tasks to an inclusive date range.
// Dateless tasks always pass.
type Window struct {
	Since *Date
	Until *Date
}

// Contains reports whether t falls inside the window.
func (w Window) Contains(t Task) bool {
	if t.Date == nil {
		return true
	}
	if w.Since != nil && t.Date.Before(*w.Since) {
		return false
	}
	if w.Until != nil && w.Until.Before(*t.Date) {
		return false
	}
	return true
}

// Select returns the tasks matching both the filter and the window, in order.
func Select(tasks []Task, f Filter, w Window) []Task {
	out := make([]Task, 0, len(tasks))
	for _, t := range tasks {
		if f.Matches(t) && w.Contains(t) {
			out = append(out, t)
		}
	}
	return out
}
