package output

import (
	"encoding/json"
	"time"

	"github.com/abatilo/tally/internal/history"
	"github.com/abatilo/tally/internal/metrics"
	"github.com/abatilo/tally/internal/outline"
	"github.com/abatilo/tally/internal/task"
)

// JSONFormatter formats output as JSON.
type JSONFormatter struct{}

// marshalJSON marshals a value to indented JSON with a trailing newline.
func marshalJSON(v any) string {
	data, _ := json.MarshalIndent(v, "", "  ")
	return string(data) + "\n"
}

// NewJSONFormatter creates a new JSONFormatter.
func NewJSONFormatter() *JSONFormatter {
	return &JSONFormatter{}
}

// FormatSummary formats aggregate statistics as JSON.
func (f *JSONFormatter) FormatSummary(s metrics.Summary) string {
	return marshalJSON(s)
}

// taskJSON is the JSON representation of a task.
type taskJSON struct {
	Text      string     `json:"text"`
	Completed bool       `json:"completed"`
	Date      *task.Date `json:"date,omitempty"`
	Created   *task.Date `json:"created,omitempty"`
	Category  string     `json:"category,omitempty"`
	Tags      []string   `json:"tags,omitempty"`
	Source    string     `json:"source,omitempty"`
	Line      int        `json:"line"`
	Depth     int        `json:"depth"`
	Parent    int        `json:"parent,omitempty"`
}

func toTaskJSON(t task.Task) taskJSON {
	return taskJSON{
		Text:      t.Text,
		Completed: t.Completed,
		Date:      t.Date,
		Created:   t.Created,
		Category:  t.Category,
		Tags:      t.Tags,
		Source:    t.Source,
		Line:      t.SourceLine,
		Depth:     t.Depth,
		Parent:    t.Parent,
	}
}

// FormatTaskList formats a list of tasks as JSON.
func (f *JSONFormatter) FormatTaskList(tasks []task.Task) string {
	jsonTasks := make([]taskJSON, len(tasks))
	for i, t := range tasks {
		jsonTasks[i] = toTaskJSON(t)
	}
	return marshalJSON(jsonTasks)
}

// outlineNodeJSON is the JSON representation of an outline node.
type outlineNodeJSON struct {
	taskJSON

	Children []outlineNodeJSON `json:"children,omitempty"`
}

func toOutlineNodeJSON(node outline.Node) outlineNodeJSON {
	children := make([]outlineNodeJSON, len(node.Children))
	for i, c := range node.Children {
		children[i] = toOutlineNodeJSON(c)
	}
	return outlineNodeJSON{
		taskJSON: toTaskJSON(node.Task),
		Children: children,
	}
}

// FormatOutline formats nested checklist items as JSON.
func (f *JSONFormatter) FormatOutline(nodes []outline.Node) string {
	jsonNodes := make([]outlineNodeJSON, len(nodes))
	for i, n := range nodes {
		jsonNodes[i] = toOutlineNodeJSON(n)
	}
	return marshalJSON(jsonNodes)
}

// insightJSON is the JSON representation of generated insights.
type insightJSON struct {
	Insight string `json:"insight"`
}

// FormatInsight formats generated insight text as JSON.
func (f *JSONFormatter) FormatInsight(text string) string {
	return marshalJSON(insightJSON{Insight: text})
}

// analysisJSON is a summary with generated insights inlined.
type analysisJSON struct {
	metrics.Summary

	Insight string `json:"insight"`
}

// FormatAnalysis formats a summary as JSON, adding an insight field when set.
func (f *JSONFormatter) FormatAnalysis(s metrics.Summary, insight string) string {
	if insight == "" {
		return marshalJSON(s)
	}
	return marshalJSON(analysisJSON{Summary: s, Insight: insight})
}

// reportListJSON is the compact JSON representation of a saved report.
type reportListJSON struct {
	ID             string  `json:"id"`
	CreatedAt      string  `json:"created_at"`
	Root           string  `json:"root"`
	TotalTasks     int     `json:"total_tasks"`
	CompletedTasks int     `json:"completed_tasks"`
	CompletionRate float64 `json:"completion_rate"`
	CurrentStreak  int     `json:"current_streak"`
}

// FormatReport formats a saved report as JSON.
func (f *JSONFormatter) FormatReport(r *history.Report) string {
	return marshalJSON(r)
}

// FormatReportList formats saved reports as JSON.
func (f *JSONFormatter) FormatReportList(reports []*history.Report) string {
	out := make([]reportListJSON, len(reports))
	for i, r := range reports {
		out[i] = reportListJSON{
			ID:             r.ID,
			CreatedAt:      r.CreatedAt.Format(time.RFC3339),
			Root:           r.Root,
			TotalTasks:     r.Summary.TotalTasks,
			CompletedTasks: r.Summary.CompletedTasks,
			CompletionRate: r.Summary.CompletionRate,
			CurrentStreak:  r.Summary.CurrentStreak,
		}
	}
	return marshalJSON(out)
}

// errorJSON is the JSON representation of an error.
type errorJSON struct {
	Error string `json:"error"`
}

// FormatError formats an error as JSON.
func (f *JSONFormatter) FormatError(err error) string {
	return marshalJSON(errorJSON{Error: err.Error()})
}

// messageJSON is the JSON representation of a message.
type messageJSON struct {
	Message string `json:"message"`
}

// FormatMessage formats a simple message as JSON.
func (f *JSONFormatter) FormatMessage(msg string) string {
	return marshalJSON(messageJSON{Message: msg})
}
