package metrics

import (
	"strings"

	"github.com/abatilo/tally/internal/outline"
	"github.com/abatilo/tally/internal/task"
)

// workoutMarkers flag a task as a workout session. Matching is case-insensitive.
//
//nolint:gochecknoglobals // read-only lookup table
var workoutMarkers = []string{"workout", "\U0001F3CB"}

// WorkoutStats summarizes workout sessions and the variants nested under them.
type WorkoutStats struct {
	Sessions       int            `json:"sessions"        yaml:"sessions"`
	Completed      int            `json:"completed"       yaml:"completed"`
	CompletionRate float64        `json:"completion_rate" yaml:"completion_rate"`
	Variants       []VariantStats `json:"variants"        yaml:"variants"`
}

// VariantStats counts one kind of workout. Names group case-insensitively and
// keep the first spelling seen.
type VariantStats struct {
	Name           string  `json:"name"            yaml:"name"`
	Occurrences    int     `json:"occurrences"     yaml:"occurrences"`
	Completed      int     `json:"completed"       yaml:"completed"`
	CompletionRate float64 `json:"completion_rate" yaml:"completion_rate"`
}

// IsWorkout reports whether the task text marks a workout session.
func IsWorkout(t task.Task) bool {
	text := strings.ToLower(t.Text)
	for _, m := range workoutMarkers {
		if strings.Contains(text, m) {
			return true
		}
	}
	return false
}

// workouts finds workout sessions. The direct children of a session are its
// variants; a session with no children is its own variant. Items nested
// under a session never start a session of their own.
func workouts(tasks []task.Task) WorkoutStats {
	out := WorkoutStats{Variants: []VariantStats{}}
	o := outline.New(tasks)
	index := make(map[string]int)

	record := func(t task.Task) {
		key := strings.ToLower(t.Text)
		i, ok := index[key]
		if !ok {
			i = len(out.Variants)
			index[key] = i
			out.Variants = append(out.Variants, VariantStats{Name: t.Text})
		}
		out.Variants[i].Occurrences++
		if t.Completed {
			out.Variants[i].Completed++
		}
	}

	nested := make(map[outline.Key]bool)
	for _, t := range tasks {
		k := outline.KeyOf(t)
		if !IsWorkout(t) || nested[k] {
			continue
		}
		for _, d := range o.Descendants(k) {
			nested[d] = true
		}
		out.Sessions++
		if t.Completed {
			out.Completed++
		}

		children := o.Children(k)
		if len(children) == 0 {
			record(t)
			continue
		}
		for _, c := range children {
			child, _ := o.Get(c)
			record(child)
		}
	}

	out.CompletionRate = Rate(out.Completed, out.Sessions)
	for i := range out.Variants {
		out.Variants[i].CompletionRate = Rate(out.Variants[i].Completed, out.Variants[i].Occurrences)
	}
	return out
}
