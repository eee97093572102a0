//nolint:testpackage // Tests require internal access for thorough testing
package output

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"

	"github.com/abatilo/tally/internal/history"
	"github.com/abatilo/tally/internal/metrics"
	"github.com/abatilo/tally/internal/outline"
	"github.com/abatilo/tally/internal/parser"
)

// plain disables ANSI colors for the duration of a test.
func plain(t *testing.T) {
	t.Helper()
	prev := color.NoColor
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = prev })
}

const doc = `# Work
- [x] Report (2024-01-01)
  - [x] Draft
  - [ ] Review
- [ ] Plan (2024-01-02)`

func TestHumanFormatSummary(t *testing.T) {
	plain(t)
	f := NewHumanFormatter()

	s := metrics.AggregateWithOptions(parser.Parse(doc), metrics.Options{Habits: []string{"review"}})
	out := f.FormatSummary(s)

	for _, want := range []string{
		"Tasks:     4 total, 2 completed (50.0%)",
		"Streaks:   current 0 days, longest 1 day",
		"Dated:     2 tasks on 2 days (2024-01-01 to 2024-01-02), 1 with completions",
		"Categories",
		"Work",
		"Habits",
		"review",
		"Recent days",
		"2024-01-02",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("FormatSummary missing %q in:\n%s", want, out)
		}
	}
	if strings.Contains(out, "Avg. time") {
		t.Errorf("FormatSummary should omit average time without data:\n%s", out)
	}
}

func TestHumanFormatWorkouts(t *testing.T) {
	plain(t)
	f := NewHumanFormatter()

	out := f.FormatSummary(metrics.Aggregate(parser.Parse("- [x] Workout\n  - [x] Squats\n  - [ ] Rows\n- [ ] Workout")))

	for _, want := range []string{
		"Workouts 1 of 2 sessions (50.0%)",
		"  Squats                  1/1    100.0%",
		"  Rows                    0/1    0.0%",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("FormatSummary missing %q in:\n%s", want, out)
		}
	}

	if strings.Contains(f.FormatSummary(metrics.Aggregate(parser.Parse(doc))), "Workouts") {
		t.Error("FormatSummary should omit workouts when there are none")
	}
}

func TestHumanFormatSummaryEmpty(t *testing.T) {
	plain(t)
	if got := NewHumanFormatter().FormatSummary(metrics.Aggregate(nil)); got != "No tasks found.\n" {
		t.Errorf("FormatSummary(empty) = %q", got)
	}
}

func TestHumanFormatTaskList(t *testing.T) {
	plain(t)
	f := NewHumanFormatter()

	tasks := parser.Parse(doc)
	tasks[0].Source = "todo.md"
	out := f.FormatTaskList(tasks)

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 4 {
		t.Fatalf("FormatTaskList lines = %d, want 4:\n%s", len(lines), out)
	}
	if lines[0] != "[x] Report (2024-01-01, Work) todo.md:2" {
		t.Errorf("line 0 = %q", lines[0])
	}
	if lines[2] != "[ ] Review (Work)" {
		t.Errorf("line 2 = %q", lines[2])
	}

	if got := f.FormatTaskList(nil); got != "No tasks found.\n" {
		t.Errorf("FormatTaskList(nil) = %q", got)
	}
}

func TestHumanFormatOutline(t *testing.T) {
	plain(t)
	f := NewHumanFormatter()

	out := f.FormatOutline(outline.New(parser.Parse(doc)).Roots())
	want := `[x] Report [1/2]
├── [x] Draft
└── [ ] Review
[ ] Plan
`
	if out != want {
		t.Errorf("FormatOutline =\n%s\nwant\n%s", out, want)
	}
}

func TestHumanFormatReportList(t *testing.T) {
	plain(t)
	f := NewHumanFormatter()

	reports := []*history.Report{{
		ID:        "abc",
		CreatedAt: time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC),
		Summary:   metrics.Aggregate(parser.Parse(doc)),
	}}
	out := f.FormatReportList(reports)
	if !strings.HasPrefix(out, "[abc] ") || !strings.Contains(out, "2/4 done (50.0%)") {
		t.Errorf("FormatReportList = %q", out)
	}
	if got := f.FormatReportList(nil); got != "No reports found.\n" {
		t.Errorf("FormatReportList(nil) = %q", got)
	}
}

func TestHumanFormatError(t *testing.T) {
	plain(t)
	if got := NewHumanFormatter().FormatError(errors.New("boom")); got != "Error: boom\n" {
		t.Errorf("FormatError = %q", got)
	}
}

func TestJSONFormatSummary(t *testing.T) {
	f := NewJSONFormatter()
	out := f.FormatSummary(metrics.Aggregate(parser.Parse(doc)))

	var got map[string]any
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, out)
	}
	if got["total_tasks"] != float64(4) {
		t.Errorf("total_tasks = %v, want 4", got["total_tasks"])
	}
	if got["first_date"] != "2024-01-01" {
		t.Errorf("first_date = %v", got["first_date"])
	}
	if _, ok := got["average_time_to_complete"]; ok {
		t.Error("average_time_to_complete should be omitted when absent")
	}
}

func TestJSONFormatTaskList(t *testing.T) {
	f := NewJSONFormatter()
	out := f.FormatTaskList(parser.Parse(doc))

	var got []taskJSON
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, out)
	}
	if len(got) != 4 {
		t.Fatalf("len = %d, want 4", len(got))
	}
	if got[1].Text != "Draft" || got[1].Depth != 1 || got[1].Parent != 2 || got[1].Line != 3 {
		t.Errorf("task 1 = %+v", got[1])
	}
	if got[0].Date == nil || got[0].Date.String() != "2024-01-01" {
		t.Errorf("task 0 date = %v", got[0].Date)
	}

	if out := f.FormatTaskList(nil); strings.TrimSpace(out) != "[]" {
		t.Errorf("FormatTaskList(nil) = %q, want []", out)
	}
}

func TestJSONFormatOutline(t *testing.T) {
	f := NewJSONFormatter()
	out := f.FormatOutline(outline.New(parser.Parse(doc)).Roots())

	var got []struct {
		Text     string `json:"text"`
		Children []struct {
			Text string `json:"text"`
		} `json:"children"`
	}
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, out)
	}
	if len(got) != 2 || len(got[0].Children) != 2 || got[0].Children[1].Text != "Review" {
		t.Errorf("FormatOutline = %s", out)
	}
}

func TestJSONFormatMessages(t *testing.T) {
	f := NewJSONFormatter()

	tests := []struct {
		name string
		got  string
		want string
	}{
		{"error", f.FormatError(errors.New("boom")), `{"error":"boom"}`},
		{"message", f.FormatMessage("hi"), `{"message":"hi"}`},
		{"insight", f.FormatInsight("- a"), `{"insight":"- a"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotV, wantV any
			if err := json.Unmarshal([]byte(tt.got), &gotV); err != nil {
				t.Fatalf("invalid JSON: %v", err)
			}
			_ = json.Unmarshal([]byte(tt.want), &wantV)
			gotB, _ := json.Marshal(gotV)
			wantB, _ := json.Marshal(wantV)
			if string(gotB) != string(wantB) {
				t.Errorf("got %s, want %s", gotB, wantB)
			}
		})
	}
}

func TestFormatAnalysis(t *testing.T) {
	plain(t)
	s := metrics.Aggregate(parser.Parse(doc))

	human := NewHumanFormatter()
	if got := human.FormatAnalysis(s, ""); got != human.FormatSummary(s) {
		t.Errorf("FormatAnalysis without insight = %q", got)
	}
	if got := human.FormatAnalysis(s, "- keep going"); !strings.HasSuffix(got, "Insights\n- keep going\n") {
		t.Errorf("FormatAnalysis with insight = %q", got)
	}

	var got map[string]any
	if err := json.Unmarshal([]byte(NewJSONFormatter().FormatAnalysis(s, "- keep going")), &got); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if got["insight"] != "- keep going" || got["total_tasks"] != float64(4) {
		t.Errorf("FormatAnalysis JSON = %v", got)
	}
}

func TestNew(t *testing.T) {
	if _, ok := New(true).(*JSONFormatter); !ok {
		t.Error("New(true) should return a JSONFormatter")
	}
	if _, ok := New(false).(*HumanFormatter); !ok {
		t.Error("New(false) should return a HumanFormatter")
	}
}
