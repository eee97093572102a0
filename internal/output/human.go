package output

import (
	"fmt"
	"strings"

	"github.com/fatih/color"

	"github.com/abatilo/tally/internal/history"
	"github.com/abatilo/tally/internal/metrics"
	"github.com/abatilo/tally/internal/outline"
	"github.com/abatilo/tally/internal/task"
)

const recentDays = 7

// HumanFormatter formats output for human-readable terminal display.
type HumanFormatter struct {
	done    *color.Color
	open    *color.Color
	heading *color.Color
	dim     *color.Color
	bad     *color.Color
}

// NewHumanFormatter creates a new HumanFormatter.
func NewHumanFormatter() *HumanFormatter {
	return &HumanFormatter{
		done:    color.New(color.FgGreen),
		open:    color.New(color.FgYellow),
		heading: color.New(color.Bold),
		dim:     color.New(color.Faint),
		bad:     color.New(color.FgRed),
	}
}

// FormatSummary formats aggregate statistics.
func (f *HumanFormatter) FormatSummary(s metrics.Summary) string {
	if s.TotalTasks == 0 {
		return "No tasks found.\n"
	}

	var sb strings.Builder

	fmt.Fprintf(&sb, "%s %d total, %d completed (%s)\n",
		f.heading.Sprint("Tasks:    "), s.TotalTasks, s.CompletedTasks, percent(s.CompletionRate))
	fmt.Fprintf(&sb, "%s current %s, longest %s\n",
		f.heading.Sprint("Streaks:  "), f.streak(s.CurrentStreak), days(s.LongestStreak))

	if s.FirstDate != nil && s.LastDate != nil {
		fmt.Fprintf(&sb, "%s %d tasks on %d days (%s to %s), %d with completions\n",
			f.heading.Sprint("Dated:    "), s.DatedTasks, len(s.PerDay), s.FirstDate, s.LastDate, s.SuccessDays)
	}
	if s.AverageTimeToComplete != nil {
		fmt.Fprintf(&sb, "%s %.1f days over %d tasks\n",
			f.heading.Sprint("Avg. time:"), s.AverageDaysToComplete, s.TimedTasks)
	}

	if len(s.PerCategory) > 0 {
		sb.WriteString("\n" + f.heading.Sprint("Categories") + "\n")
		for _, c := range s.PerCategory {
			sb.WriteString(f.ratioLine(c.Name, c.CompletedTasks, c.TotalTasks, c.CompletionRate))
		}
	}

	if len(s.Habits) > 0 {
		sb.WriteString("\n" + f.heading.Sprint("Habits") + "\n")
		for _, h := range s.Habits {
			sb.WriteString(f.ratioLine(h.Name, h.Completed, h.Occurrences, h.CompletionRate))
		}
	}

	if w := s.Workouts; w.Sessions > 0 {
		fmt.Fprintf(&sb, "\n%s %d of %d sessions (%s)\n",
			f.heading.Sprint("Workouts"), w.Completed, w.Sessions, percent(w.CompletionRate))
		for _, v := range w.Variants {
			sb.WriteString(f.ratioLine(v.Name, v.Completed, v.Occurrences, v.CompletionRate))
		}
	}

	if len(s.PerDay) > 0 {
		sb.WriteString("\n" + f.heading.Sprint("Recent days") + "\n")
		start := max(0, len(s.PerDay)-recentDays)
		for _, d := range s.PerDay[start:] {
			sb.WriteString(f.ratioLine(d.Date.String(), d.CompletedTasks, d.TotalTasks, d.CompletionRate))
		}
	}

	return sb.String()
}

func (f *HumanFormatter) streak(n int) string {
	if n == 0 {
		return f.bad.Sprint(days(n))
	}
	return f.done.Sprint(days(n))
}

func (f *HumanFormatter) ratioLine(name string, done, total int, rate float64) string {
	c := f.open
	if total > 0 && done == total {
		c = f.done
	}
	return fmt.Sprintf("  %-20s %s %s\n", name, c.Sprintf("%4d/%-4d", done, total), percent(rate))
}

// FormatTaskList formats a list of tasks for display.
func (f *HumanFormatter) FormatTaskList(tasks []task.Task) string {
	if len(tasks) == 0 {
		return "No tasks found.\n"
	}

	var sb strings.Builder
	for _, t := range tasks {
		sb.WriteString(f.formatTaskLine(t, ""))
	}
	return sb.String()
}

// formatTaskLine formats a single task as a compact one-liner.
func (f *HumanFormatter) formatTaskLine(t task.Task, prefix string) string {
	var extras []string
	if t.Date != nil {
		extras = append(extras, t.Date.String())
	}
	if t.Category != "" {
		extras = append(extras, t.Category)
	}
	meta := ""
	if len(extras) > 0 {
		meta = " " + f.dim.Sprintf("(%s)", strings.Join(extras, ", "))
	}
	loc := ""
	if t.Source != "" {
		loc = " " + f.dim.Sprintf("%s:%d", t.Source, t.SourceLine)
	}
	return fmt.Sprintf("%s%s %s%s%s\n", prefix, f.statusIcon(t.Completed), t.Text, meta, loc)
}

func (f *HumanFormatter) statusIcon(completed bool) string {
	if completed {
		return f.done.Sprint("[x]")
	}
	return f.open.Sprint("[ ]")
}

// FormatOutline formats nested checklist items as a tree.
func (f *HumanFormatter) FormatOutline(nodes []outline.Node) string {
	if len(nodes) == 0 {
		return "No tasks found.\n"
	}

	var sb strings.Builder
	for _, node := range nodes {
		f.formatOutlineNode(&sb, node, "", true, true)
	}
	return sb.String()
}

func (f *HumanFormatter) formatOutlineNode(sb *strings.Builder, node outline.Node, prefix string, isLast, isRoot bool) {
	connector := "├── "
	if isLast {
		connector = "└── "
	}
	if isRoot {
		connector = ""
	}

	rollup := ""
	if len(node.Children) > 0 {
		done, total := countSubtree(node)
		rollup = " " + f.dim.Sprintf("[%d/%d]", done, total)
	}
	fmt.Fprintf(sb, "%s%s%s %s%s\n", prefix, connector, f.statusIcon(node.Task.Completed), node.Task.Text, rollup)

	childPrefix := prefix
	if !isRoot {
		if isLast {
			childPrefix += "    "
		} else {
			childPrefix += "│   "
		}
	}

	for i, child := range node.Children {
		f.formatOutlineNode(sb, child, childPrefix, i == len(node.Children)-1, false)
	}
}

// countSubtree counts completed and total items below node.
func countSubtree(node outline.Node) (done, total int) {
	for _, c := range node.Children {
		total++
		if c.Task.Completed {
			done++
		}
		d, t := countSubtree(c)
		done += d
		total += t
	}
	return done, total
}

// FormatInsight formats generated insight text.
func (f *HumanFormatter) FormatInsight(text string) string {
	return "\n" + f.heading.Sprint("Insights") + "\n" + strings.TrimRight(text, "\n") + "\n"
}

// FormatAnalysis formats a summary followed by insights, if any.
func (f *HumanFormatter) FormatAnalysis(s metrics.Summary, insight string) string {
	if insight == "" {
		return f.FormatSummary(s)
	}
	return f.FormatSummary(s) + f.FormatInsight(insight)
}

// FormatReport formats a saved report with its summary.
func (f *HumanFormatter) FormatReport(r *history.Report) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s %s\n", f.heading.Sprintf("[%s]", r.ID), r.CreatedAt.Local().Format("2006-01-02 15:04"))
	fmt.Fprintf(&sb, "  Root:  %s\n", r.Root)
	fmt.Fprintf(&sb, "  Files: %d\n\n", len(r.Files))
	sb.WriteString(f.FormatSummary(r.Summary))
	if r.Insight != "" {
		sb.WriteString(f.FormatInsight(r.Insight))
	}
	return sb.String()
}

// FormatReportList formats saved reports as one line each.
func (f *HumanFormatter) FormatReportList(reports []*history.Report) string {
	if len(reports) == 0 {
		return "No reports found.\n"
	}

	var sb strings.Builder
	for _, r := range reports {
		fmt.Fprintf(&sb, "%s %s  %d/%d done (%s)  streak %d\n",
			f.heading.Sprintf("[%s]", r.ID),
			r.CreatedAt.Local().Format("2006-01-02 15:04"),
			r.Summary.CompletedTasks, r.Summary.TotalTasks,
			percent(r.Summary.CompletionRate),
			r.Summary.CurrentStreak)
	}
	return sb.String()
}

// FormatError formats an error for display.
func (f *HumanFormatter) FormatError(err error) string {
	return fmt.Sprintf("%s %s\n", f.bad.Sprint("Error:"), err.Error())
}

// FormatMessage formats a simple message.
func (f *HumanFormatter) FormatMessage(msg string) string {
	return msg + "\n"
}

func percent(rate float64) string {
	return fmt.Sprintf("%.1f%%", rate*100) //nolint:mnd // percent
}

func days(n int) string {
	if n == 1 {
		return "1 day"
	}
	return fmt.Sprintf("%d days", n)
}
