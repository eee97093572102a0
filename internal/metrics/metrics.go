// Package metrics aggregates parsed tasks into completion statistics.
package metrics

import (
	"math"
	"sort"
	"strings"
	"time"

	"github.com/abatilo/tally/internal/task"
)

const day = 24 * time.Hour

// Summary is the aggregate of a task sequence.
type Summary struct {
	TotalTasks     int     `json:"total_tasks"     yaml:"total_tasks"`
	CompletedTasks int     `json:"completed_tasks" yaml:"completed_tasks"`
	CompletionRate float64 `json:"completion_rate" yaml:"completion_rate"`

	CurrentStreak int        `json:"current_streak"       yaml:"current_streak"`
	LongestStreak int        `json:"longest_streak"       yaml:"longest_streak"`
	DatedTasks    int        `json:"dated_tasks"          yaml:"dated_tasks"`
	SuccessDays   int        `json:"success_days"         yaml:"success_days"`
	FirstDate     *task.Date `json:"first_date,omitempty" yaml:"first_date,omitempty"`
	LastDate      *task.Date `json:"last_date,omitempty"  yaml:"last_date,omitempty"`

	// AverageTimeToComplete is nil when no completed task has both a creation
	// and a completion date. It saturates at the largest time.Duration;
	// AverageDaysToComplete carries the exact mean.
	AverageTimeToComplete *time.Duration `json:"average_time_to_complete,omitempty" yaml:"average_time_to_complete,omitempty"`
	AverageDaysToComplete float64        `json:"average_days_to_complete"           yaml:"average_days_to_complete"`
	TimedTasks            int            `json:"timed_tasks"                        yaml:"timed_tasks"`

	PerCategory []CategoryStats `json:"per_category" yaml:"per_category"`
	PerDay      []DayStats      `json:"per_day"      yaml:"per_day"`
	Habits      []HabitStats    `json:"habits"       yaml:"habits"`
	Workouts    WorkoutStats    `json:"workouts"     yaml:"workouts"`
}

// CategoryStats is the breakdown for one category.
type CategoryStats struct {
	Name           string  `json:"name"            yaml:"name"`
	TotalTasks     int     `json:"total_tasks"     yaml:"total_tasks"`
	CompletedTasks int     `json:"completed_tasks" yaml:"completed_tasks"`
	CompletionRate float64 `json:"completion_rate" yaml:"completion_rate"`
}

// DayStats is the breakdown for one calendar day.
type DayStats struct {
	Date           task.Date `json:"date"            yaml:"date"`
	TotalTasks     int       `json:"total_tasks"     yaml:"total_tasks"`
	CompletedTasks int       `json:"completed_tasks" yaml:"completed_tasks"`
	CompletionRate float64   `json:"completion_rate" yaml:"completion_rate"`
}

// Success reports whether at least one task was completed that day.
func (d DayStats) Success() bool {
	return d.CompletedTasks > 0
}

// HabitStats counts tasks whose text mentions a habit.
type HabitStats struct {
	Name           string  `json:"name"            yaml:"name"`
	Occurrences    int     `json:"occurrences"     yaml:"occurrences"`
	Completed      int     `json:"completed"       yaml:"completed"`
	CompletionRate float64 `json:"completion_rate" yaml:"completion_rate"`
}

// Options tunes aggregation.
type Options struct {
	// Habits are matched case-insensitively as substrings of task text.
	Habits []string
}

// Rate returns completed/total, or 0 when total is 0.
func Rate(completed, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(completed) / float64(total)
}

// Aggregate computes the summary of tasks. It is pure and never fails.
func Aggregate(tasks []task.Task) Summary {
	return AggregateWithOptions(tasks, Options{})
}

// AggregateWithOptions is Aggregate with habit tracking.
func AggregateWithOptions(tasks []task.Task, opts Options) Summary {
	s := Summary{
		TotalTasks:  len(tasks),
		PerCategory: []CategoryStats{},
		PerDay:      []DayStats{},
		Habits:      []HabitStats{},
	}

	for _, t := range tasks {
		if t.Completed {
			s.CompletedTasks++
		}
	}
	s.CompletionRate = Rate(s.CompletedTasks, s.TotalTasks)

	s.PerCategory = perCategory(tasks)
	s.PerDay = perDay(tasks)
	s.Habits = habits(tasks, opts.Habits)
	s.Workouts = workouts(tasks)

	for _, d := range s.PerDay {
		s.DatedTasks += d.TotalTasks
		if d.Success() {
			s.SuccessDays++
		}
	}
	if n := len(s.PerDay); n > 0 {
		first, last := s.PerDay[0].Date, s.PerDay[n-1].Date
		s.FirstDate, s.LastDate = &first, &last
	}
	s.CurrentStreak, s.LongestStreak = Streaks(s.PerDay)

	s.AverageTimeToComplete, s.AverageDaysToComplete, s.TimedTasks = averageTimeToComplete(tasks)
	return s
}

func perCategory(tasks []task.Task) []CategoryStats {
	out := []CategoryStats{}
	index := make(map[string]int)
	for _, t := range tasks {
		name := t.Bucket()
		i, ok := index[name]
		if !ok {
			i = len(out)
			index[name] = i
			out = append(out, CategoryStats{Name: name})
		}
		out[i].TotalTasks++
		if t.Completed {
			out[i].CompletedTasks++
		}
	}
	for i := range out {
		out[i].CompletionRate = Rate(out[i].CompletedTasks, out[i].TotalTasks)
	}
	return out
}

// perDay groups dated tasks by calendar day, ascending.
func perDay(tasks []task.Task) []DayStats {
	byDate := make(map[task.Date]*DayStats)
	for _, t := range tasks {
		if t.Date == nil {
			continue
		}
		d, ok := byDate[*t.Date]
		if !ok {
			d = &DayStats{Date: *t.Date}
			byDate[*t.Date] = d
		}
		d.TotalTasks++
		if t.Completed {
			d.CompletedTasks++
		}
	}

	out := make([]DayStats, 0, len(byDate))
	for _, d := range byDate {
		d.CompletionRate = Rate(d.CompletedTasks, d.TotalTasks)
		out = append(out, *d)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Date.Before(out[j].Date)
	})
	return out
}

// Streaks returns the current and longest runs of consecutive success days.
// days must be sorted ascending with one entry per date. The current streak
// is 0 when the most recent day has no completed task.
func Streaks(days []DayStats) (current, longest int) {
	run := 0
	for i, d := range days {
		switch {
		case !d.Success():
			run = 0
		case i > 0 && days[i-1].Success() && days[i-1].Date.DaysUntil(d.Date) == 1:
			run++
		default:
			run = 1
		}
		longest = max(longest, run)
	}
	// run now ends at the most recent dated day.
	return run, longest
}

func habits(tasks []task.Task, names []string) []HabitStats {
	out := make([]HabitStats, 0, len(names))
	for _, name := range names {
		needle := strings.ToLower(strings.TrimSpace(name))
		if needle == "" {
			continue
		}
		h := HabitStats{Name: name}
		for _, t := range tasks {
			if !strings.Contains(strings.ToLower(t.Text), needle) {
				continue
			}
			h.Occurrences++
			if t.Completed {
				h.Completed++
			}
		}
		h.CompletionRate = Rate(h.Completed, h.Occurrences)
		out = append(out, h)
	}
	return out
}

// averageTimeToComplete averages Date-Created over completed tasks that carry
// both, ignoring completions dated before their creation. Days are summed as
// integers and only the mean is converted to a Duration.
func averageTimeToComplete(tasks []task.Task) (*time.Duration, float64, int) {
	var total int64
	n := 0
	for _, t := range tasks {
		if !t.Completed || t.Date == nil || t.Created == nil {
			continue
		}
		days := t.Created.DaysUntil(*t.Date)
		if days < 0 {
			continue
		}
		total += int64(days)
		n++
	}
	if n == 0 {
		return nil, 0, 0
	}
	mean := float64(total) / float64(n)

	avg := time.Duration(math.MaxInt64)
	if ns := mean * float64(day); ns < float64(math.MaxInt64) {
		avg = time.Duration(ns)
	}
	return &avg, mean, n
}
