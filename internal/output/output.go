package output

import (
	"github.com/abatilo/tally/internal/history"
	"github.com/abatilo/tally/internal/metrics"
	"github.com/abatilo/tally/internal/outline"
	"github.com/abatilo/tally/internal/task"
)

// Formatter defines the interface for output formatting.
type Formatter interface {
	FormatSummary(s metrics.Summary) string
	FormatTaskList(tasks []task.Task) string
	FormatOutline(nodes []outline.Node) string
	FormatInsight(text string) string
	// FormatAnalysis renders a summary together with optional insight text.
	FormatAnalysis(s metrics.Summary, insight string) string
	FormatReport(r *history.Report) string
	FormatReportList(reports []*history.Report) string
	FormatError(err error) string
	FormatMessage(msg string) string
}

// New returns the JSON formatter when jsonOutput is set, otherwise the human one.
func New(jsonOutput bool) Formatter {
	if jsonOutput {
		return NewJSONFormatter()
	}
	return NewHumanFormatter()
}
