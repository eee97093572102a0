package insight

import (
	"context"
	"fmt"
	"strings"

	"github.com/abatilo/tally/internal/metrics"
)

// Local derives observations from the summary with fixed rules. It needs no
// network access.
type Local struct{}

// Generate implements Generator.
func (Local) Generate(_ context.Context, s metrics.Summary) (string, error) {
	if s.TotalTasks == 0 {
		return NoTasksMessage, nil
	}

	var lines []string
	add := func(format string, args ...any) {
		lines = append(lines, "- "+fmt.Sprintf(format, args...))
	}

	add("You completed %d of %d tasks (%.0f%%).", s.CompletedTasks, s.TotalTasks, s.CompletionRate*100)

	switch {
	case s.DatedTasks == 0:
		add("None of your tasks carry dates, so streaks cannot be tracked.")
	case s.CurrentStreak > 0 && s.CurrentStreak == s.LongestStreak:
		add("You are on your best streak so far: %s.", days(s.CurrentStreak))
	case s.CurrentStreak > 0:
		add("Current streak is %s; your best was %s.", days(s.CurrentStreak), days(s.LongestStreak))
	default:
		add("Your streak is broken; your best run was %s.", days(s.LongestStreak))
	}

	if best, worst, ok := extremes(s.PerCategory); ok {
		add("Strongest category: %s (%.0f%%). Weakest: %s (%.0f%%).",
			best.Name, best.CompletionRate*100, worst.Name, worst.CompletionRate*100)
	}

	for _, h := range s.Habits {
		if h.Occurrences == 0 {
			add("Habit %q never appears in your lists.", h.Name)
			continue
		}
		add("Habit %q: %d of %d done.", h.Name, h.Completed, h.Occurrences)
	}

	if w := s.Workouts; w.Sessions > 0 {
		add("Workouts: %d of %d sessions done.", w.Completed, w.Sessions)
		if top, ok := favoriteVariant(w.Variants); ok {
			add("Most frequent workout: %s (%d times).", top.Name, top.Occurrences)
		}
	}

	if s.AverageTimeToComplete != nil {
		add("Tasks take %.1f days on average from creation to completion.", s.AverageDaysToComplete)
	}

	open := s.TotalTasks - s.CompletedTasks
	if open > 0 {
		add("Suggestion: pick one of the %d open tasks and finish it today.", open)
	} else {
		add("Suggestion: everything is done, plan what comes next.")
	}

	return strings.Join(lines, "\n"), nil
}

// favoriteVariant returns the variant that occurs most often, first seen on ties.
func favoriteVariant(variants []metrics.VariantStats) (metrics.VariantStats, bool) {
	var top metrics.VariantStats
	for _, v := range variants {
		if v.Occurrences > top.Occurrences {
			top = v
		}
	}
	return top, top.Occurrences > 0
}

// extremes returns the categories with the highest and lowest rate. It needs
// at least two categories.
func extremes(cats []metrics.CategoryStats) (best, worst metrics.CategoryStats, ok bool) {
	if len(cats) < 2 { //nolint:mnd // a comparison needs two
		return best, worst, false
	}
	best, worst = cats[0], cats[0]
	for _, c := range cats[1:] {
		if c.CompletionRate > best.CompletionRate {
			best = c
		}
		if c.CompletionRate < worst.CompletionRate {
			worst = c
		}
	}
	return best, worst, true
}

func days(n int) string {
	if n == 1 {
		return "1 day"
	}
	return fmt.Sprintf("%d days", n)
}
