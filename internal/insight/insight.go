// Package insight turns a metrics summary into natural-language observations.
package insight

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/abatilo/tally/internal/metrics"
)

// NoTasksMessage is returned for a summary with no tasks.
const NoTasksMessage = "No tasks found, so there is nothing to analyze yet."

// Generator produces insight text for a summary.
type Generator interface {
	Generate(ctx context.Context, summary metrics.Summary) (string, error)
}

const systemPrompt = `You are a productivity coach reviewing statistics extracted from a person's Markdown task lists.
Write 3 to 6 short bullet points in Markdown. Cover completion rate, streak behavior, the strongest and weakest
categories, habit consistency, and time-to-complete when present. Be concrete, cite the numbers, and end with one
actionable suggestion. Do not invent data that is not in the statistics.`

// BuildPrompt renders the user message sent to the model.
func BuildPrompt(summary metrics.Summary) (string, error) {
	data, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encoding summary: %w", err)
	}

	var sb strings.Builder
	sb.WriteString("Here are my task statistics as JSON.\n")
	sb.WriteString("Rates are fractions between 0 and 1; average_time_to_complete is in nanoseconds.\n\n")
	sb.WriteString("```json\n")
	sb.Write(data)
	sb.WriteString("\n```\n")
	return sb.String(), nil
}

// SystemPrompt returns the instructions given to the model.
func SystemPrompt() string {
	return systemPrompt
}
