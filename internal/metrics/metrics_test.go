//nolint:testpackage // Tests require internal access for thorough testing
package metrics

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abatilo/tally/internal/parser"
	"github.com/abatilo/tally/internal/task"
)

func date(y int, m time.Month, d int) *task.Date {
	v := task.NewDate(y, m, d)
	return &v
}

func dated(text string, done bool, d *task.Date) task.Task {
	return task.Task{Text: text, Completed: done, Date: d}
}

func TestAggregateScenario(t *testing.T) {
	tasks := parser.Parse("- [x] Buy milk (2024-01-01)\n- [ ] Clean house (2024-01-02)\n- [x] Pay bills (2024-01-02)")

	s := Aggregate(tasks)

	assert.Equal(t, 3, s.TotalTasks)
	assert.Equal(t, 2, s.CompletedTasks)
	assert.InDelta(t, 0.667, s.CompletionRate, 0.001)
	assert.Equal(t, 2, s.SuccessDays)
	assert.Equal(t, 2, s.LongestStreak)
	assert.Equal(t, 2, s.CurrentStreak)
	assert.Equal(t, 3, s.DatedTasks)
	require.NotNil(t, s.FirstDate)
	require.NotNil(t, s.LastDate)
	assert.Equal(t, "2024-01-01", s.FirstDate.String())
	assert.Equal(t, "2024-01-02", s.LastDate.String())
}

func TestAggregateEmpty(t *testing.T) {
	s := Aggregate(parser.Parse(""))

	assert.Equal(t, 0, s.TotalTasks)
	assert.Equal(t, 0, s.CompletedTasks)
	assert.Zero(t, s.CompletionRate)
	assert.Equal(t, 0, s.CurrentStreak)
	assert.Equal(t, 0, s.LongestStreak)
	assert.Empty(t, s.PerCategory)
	assert.NotNil(t, s.PerCategory)
	assert.NotNil(t, s.PerDay)
	assert.NotNil(t, s.Habits)
	assert.Zero(t, s.Workouts.Sessions)
	assert.NotNil(t, s.Workouts.Variants)
	assert.Nil(t, s.AverageTimeToComplete)
	assert.Nil(t, s.FirstDate)
	assert.Nil(t, s.LastDate)
}

func TestAggregateNil(t *testing.T) {
	s := Aggregate(nil)
	assert.Equal(t, 0, s.TotalTasks)
	assert.Empty(t, s.PerCategory)
}

func TestAggregateCategories(t *testing.T) {
	s := Aggregate(parser.Parse("# Work\n- [x] Report\n# Home\n- [ ] Dishes"))

	require.Len(t, s.PerCategory, 2)
	assert.Equal(t, CategoryStats{Name: "Work", TotalTasks: 1, CompletedTasks: 1, CompletionRate: 1}, s.PerCategory[0])
	assert.Equal(t, CategoryStats{Name: "Home", TotalTasks: 1, CompletedTasks: 0, CompletionRate: 0}, s.PerCategory[1])
}

func TestAggregateCategoryOrderAndUncategorized(t *testing.T) {
	tasks := []task.Task{
		{Text: "a", Category: "B"},
		{Text: "b"},
		{Text: "c", Category: "A", Completed: true},
		{Text: "d", Category: "B", Completed: true},
		{Text: "e", Category: task.Uncategorized},
	}

	s := Aggregate(tasks)

	require.Len(t, s.PerCategory, 3)
	assert.Equal(t, "B", s.PerCategory[0].Name)
	assert.Equal(t, task.Uncategorized, s.PerCategory[1].Name)
	assert.Equal(t, "A", s.PerCategory[2].Name)

	assert.Equal(t, 2, s.PerCategory[0].TotalTasks)
	assert.InDelta(t, 0.5, s.PerCategory[0].CompletionRate, 1e-9)
	// Explicit and absent labels share one bucket.
	assert.Equal(t, 2, s.PerCategory[1].TotalTasks)
}

func TestStreaks(t *testing.T) {
	tests := []struct {
		name    string
		tasks   []task.Task
		current int
		longest int
	}{
		{
			name: "gap breaks streak",
			tasks: []task.Task{
				dated("a", true, date(2024, 1, 1)),
				dated("b", true, date(2024, 1, 5)),
			},
			current: 1,
			longest: 1,
		},
		{
			name: "no dated tasks",
			tasks: []task.Task{
				{Text: "a", Completed: true},
				{Text: "b", Completed: true},
			},
			current: 0,
			longest: 0,
		},
		{
			name: "most recent day failed",
			tasks: []task.Task{
				dated("a", true, date(2024, 1, 1)),
				dated("b", true, date(2024, 1, 2)),
				dated("c", false, date(2024, 1, 3)),
			},
			current: 0,
			longest: 2,
		},
		{
			name: "failed day in the middle",
			tasks: []task.Task{
				dated("a", true, date(2024, 1, 1)),
				dated("b", false, date(2024, 1, 2)),
				dated("c", true, date(2024, 1, 3)),
				dated("d", true, date(2024, 1, 4)),
			},
			current: 2,
			longest: 2,
		},
		{
			name: "longest run before current",
			tasks: []task.Task{
				dated("a", true, date(2024, 1, 1)),
				dated("b", true, date(2024, 1, 2)),
				dated("c", true, date(2024, 1, 3)),
				dated("d", true, date(2024, 1, 10)),
			},
			current: 1,
			longest: 3,
		},
		{
			name: "across month boundary",
			tasks: []task.Task{
				dated("a", true, date(2024, 2, 28)),
				dated("b", true, date(2024, 2, 29)),
				dated("c", true, date(2024, 3, 1)),
			},
			current: 3,
			longest: 3,
		},
		{
			name: "several tasks on one day count once",
			tasks: []task.Task{
				dated("a", true, date(2024, 1, 1)),
				dated("b", true, date(2024, 1, 1)),
				dated("c", false, date(2024, 1, 1)),
			},
			current: 1,
			longest: 1,
		},
		{
			name: "unsorted input",
			tasks: []task.Task{
				dated("c", true, date(2024, 1, 3)),
				dated("a", true, date(2024, 1, 1)),
				dated("b", true, date(2024, 1, 2)),
			},
			current: 3,
			longest: 3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Aggregate(tt.tasks)
			assert.Equal(t, tt.current, s.CurrentStreak, "current streak")
			assert.Equal(t, tt.longest, s.LongestStreak, "longest streak")
			assert.LessOrEqual(t, s.CurrentStreak, s.LongestStreak)
		})
	}
}

func TestPerDay(t *testing.T) {
	tasks := []task.Task{
		dated("a", false, date(2024, 1, 2)),
		dated("b", true, date(2024, 1, 1)),
		{Text: "undated", Completed: true},
		dated("c", true, date(2024, 1, 2)),
	}

	s := Aggregate(tasks)

	require.Len(t, s.PerDay, 2)
	assert.Equal(t, "2024-01-01", s.PerDay[0].Date.String())
	assert.Equal(t, 1, s.PerDay[0].TotalTasks)
	assert.Equal(t, "2024-01-02", s.PerDay[1].Date.String())
	assert.Equal(t, 2, s.PerDay[1].TotalTasks)
	assert.InDelta(t, 0.5, s.PerDay[1].CompletionRate, 1e-9)
	assert.Equal(t, 3, s.DatedTasks)
	assert.Equal(t, 4, s.TotalTasks)
}

func TestAverageTimeToComplete(t *testing.T) {
	t.Run("absent without timing data", func(t *testing.T) {
		s := Aggregate([]task.Task{dated("a", true, date(2024, 1, 1))})
		assert.Nil(t, s.AverageTimeToComplete)
		assert.Equal(t, 0, s.TimedTasks)
	})

	t.Run("same day is zero not absent", func(t *testing.T) {
		s := Aggregate([]task.Task{{
			Text: "a", Completed: true,
			Created: date(2024, 1, 1), Date: date(2024, 1, 1),
		}})
		require.NotNil(t, s.AverageTimeToComplete)
		assert.Equal(t, time.Duration(0), *s.AverageTimeToComplete)
	})

	t.Run("mean of qualifying tasks", func(t *testing.T) {
		s := Aggregate([]task.Task{
			{Text: "a", Completed: true, Created: date(2024, 1, 1), Date: date(2024, 1, 3)},
			{Text: "b", Completed: true, Created: date(2024, 1, 1), Date: date(2024, 1, 5)},
			// open tasks never count
			{Text: "c", Completed: false, Created: date(2024, 1, 1), Date: date(2024, 1, 30)},
			// completion before creation is ignored
			{Text: "d", Completed: true, Created: date(2024, 1, 9), Date: date(2024, 1, 2)},
		})
		require.NotNil(t, s.AverageTimeToComplete)
		assert.Equal(t, 3*24*time.Hour, *s.AverageTimeToComplete)
		assert.InDelta(t, 3, s.AverageDaysToComplete, 0)
		assert.Equal(t, 2, s.TimedTasks)
	})

	t.Run("spans longer than a duration", func(t *testing.T) {
		s := Aggregate(parser.Parse("- [x] Old (created 1700-01-01) (2024-01-01)"))
		require.NotNil(t, s.AverageTimeToComplete)
		assert.InDelta(t, 118338, s.AverageDaysToComplete, 0)
		assert.Equal(t, time.Duration(math.MaxInt64), *s.AverageTimeToComplete)
	})

	t.Run("long spans never sum negative", func(t *testing.T) {
		s := Aggregate([]task.Task{
			{Text: "a", Completed: true, Created: date(1800, 1, 1), Date: date(2024, 1, 1)},
			{Text: "b", Completed: true, Created: date(1800, 1, 1), Date: date(2024, 1, 1)},
		})
		require.NotNil(t, s.AverageTimeToComplete)
		assert.Positive(t, *s.AverageTimeToComplete)
		assert.InDelta(t, 81814, s.AverageDaysToComplete, 0)
		assert.Equal(t, 2, s.TimedTasks)
	})

	t.Run("parsed annotations", func(t *testing.T) {
		s := Aggregate(parser.Parse("- [x] Ship (created 2024-03-01) (done 2024-03-02)"))
		require.NotNil(t, s.AverageTimeToComplete)
		assert.Equal(t, 24*time.Hour, *s.AverageTimeToComplete)
	})
}

func TestHabits(t *testing.T) {
	tasks := []task.Task{
		{Text: "Morning run 5k", Completed: true},
		{Text: "RUN intervals", Completed: false},
		{Text: "Meditate", Completed: true},
		{Text: "Read a chapter", Completed: true},
	}

	s := AggregateWithOptions(tasks, Options{Habits: []string{"run", "meditate", "journal", "  "}})

	require.Len(t, s.Habits, 3)
	assert.Equal(t, HabitStats{Name: "run", Occurrences: 2, Completed: 1, CompletionRate: 0.5}, s.Habits[0])
	assert.Equal(t, HabitStats{Name: "meditate", Occurrences: 1, Completed: 1, CompletionRate: 1}, s.Habits[1])
	assert.Equal(t, HabitStats{Name: "journal"}, s.Habits[2])
}

func TestWorkouts(t *testing.T) {
	tasks := parser.Parse(`### Monday
- [x] Workout
  - [x] Squats
  - [ ] Bench press
- [ ] Read
### Tuesday
- [ ] 🏋️ gym
### Wednesday
- [x] Morning workout
  - [x] squats
    - [ ] Cool-down workout
- [x] Evening WORKOUT`)

	w := Aggregate(tasks).Workouts

	assert.Equal(t, 4, w.Sessions)
	assert.Equal(t, 3, w.Completed)
	assert.InDelta(t, 0.75, w.CompletionRate, 1e-9)
	assert.Equal(t, []VariantStats{
		{Name: "Squats", Occurrences: 2, Completed: 2, CompletionRate: 1},
		{Name: "Bench press", Occurrences: 1},
		{Name: "🏋️ gym", Occurrences: 1},
		{Name: "Evening WORKOUT", Occurrences: 1, Completed: 1, CompletionRate: 1},
	}, w.Variants)
}

func TestWorkoutsPerSource(t *testing.T) {
	a := parser.Parse("- [x] Workout\n  - [x] Row")
	b := parser.Parse("- [ ] Workout\n  - [ ] Row")
	for i := range b {
		b[i].Source = "b.md"
	}

	w := Aggregate(append(a, b...)).Workouts

	assert.Equal(t, 2, w.Sessions)
	require.Len(t, w.Variants, 1)
	assert.Equal(t, VariantStats{Name: "Row", Occurrences: 2, Completed: 1, CompletionRate: 0.5}, w.Variants[0])
}

func TestIsWorkout(t *testing.T) {
	assert.True(t, IsWorkout(task.Task{Text: "Leg day workout"}))
	assert.True(t, IsWorkout(task.Task{Text: "🏋️ lift"}))
	assert.False(t, IsWorkout(task.Task{Text: "Work out the budget"}))
}

func TestAggregateDeterministic(t *testing.T) {
	tasks := parser.Parse(`# Work
- [x] Report (2024-01-01)
- [ ] Review (2024-01-03) #review
# Home
- [x] Dishes (created 2024-01-01) (2024-01-02)
- [ ] Laundry`)

	first := AggregateWithOptions(tasks, Options{Habits: []string{"dishes"}})
	second := AggregateWithOptions(tasks, Options{Habits: []string{"dishes"}})
	assert.Equal(t, first, second)
}

func TestAggregateUnrelatedLinesDoNotMatter(t *testing.T) {
	a := parser.Parse("# Work\nintro prose\n- [x] Report (2024-01-01)\n\nmore prose\n# Home\n- [ ] Dishes (2024-01-02)")
	b := parser.Parse("# Work\n- [x] Report (2024-01-01)\nsomething else entirely\n# Home\n\n\n- [ ] Dishes (2024-01-02)")

	assert.Equal(t, Aggregate(a), Aggregate(b))
}

func TestRateBounds(t *testing.T) {
	tasks := parser.Parse("- [x] a\n- [X] b\n- [ ] c\n* [x] d\n[ ] e")
	s := Aggregate(tasks)

	assert.GreaterOrEqual(t, s.CompletionRate, 0.0)
	assert.LessOrEqual(t, s.CompletionRate, 1.0)
	assert.LessOrEqual(t, s.CompletedTasks, s.TotalTasks)
	for _, c := range s.PerCategory {
		assert.GreaterOrEqual(t, c.CompletionRate, 0.0)
		assert.LessOrEqual(t, c.CompletionRate, 1.0)
	}
	assert.Equal(t, 5, s.TotalTasks)
	assert.Equal(t, 3, s.CompletedTasks)
}

func TestRate(t *testing.T) {
	assert.Zero(t, Rate(0, 0))
	assert.InDelta(t, 1.0, Rate(4, 4), 1e-9)
	assert.InDelta(t, 0.25, Rate(1, 4), 1e-9)
}
