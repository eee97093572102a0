package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	tallyerrors "github.com/abatilo/tally/internal/errors"
	"github.com/abatilo/tally/internal/history"
	"github.com/abatilo/tally/internal/insight"
	"github.com/abatilo/tally/internal/loader"
	"github.com/abatilo/tally/internal/metrics"
	"github.com/abatilo/tally/internal/task"
)

// analyzeOptions holds the flags of 'tally analyze'.
type analyzeOptions struct {
	paths    []string
	since    string
	until    string
	habits   []string
	insights bool
	offline  bool
	save     bool
}

// analyzeCmd implements 'tally analyze'.
func analyzeCmd() *cobra.Command {
	var opts analyzeOptions
	cmd := &cobra.Command{
		Use:   "analyze [path...]",
		Short: "Compute completion metrics for task files",
		Long: "Scan files and directories (default: the current directory) for Markdown " +
			"checklists and report completion rates, streaks, categories and habits. " +
			"Use - to read a single document from stdin.",
		Run: func(cmd *cobra.Command, args []string) {
			opts.paths = args
			out, err := runAnalyze(cmd.Context(), opts)
			if err != nil {
				printError(err)
			}
			printOutput(out)
		},
	}
	addWindowFlags(cmd, &opts.since, &opts.until)
	cmd.Flags().StringArrayVar(&opts.habits, "habit", nil, "Track a recurring task by name (repeatable)")
	cmd.Flags().BoolVarP(&opts.insights, "insights", "i", false, "Ask Claude for insights about the results")
	cmd.Flags().BoolVar(&opts.offline, "offline", false, "Generate rule-based insights without calling the API")
	cmd.Flags().BoolVarP(&opts.save, "save", "s", false, "Save the report to history")
	return cmd
}

func addWindowFlags(cmd *cobra.Command, since, until *string) {
	cmd.Flags().StringVar(since, "since", "", "Only count dated tasks on or after this date (YYYY-MM-DD)")
	cmd.Flags().StringVar(until, "until", "", "Only count dated tasks on or before this date (YYYY-MM-DD)")
}

// parseWindow turns --since/--until into a task.Window.
func parseWindow(since, until string) (task.Window, error) {
	var w task.Window
	if since != "" {
		d, err := task.ParseDate(since)
		if err != nil {
			return w, err
		}
		w.Since = &d
	}
	if until != "" {
		d, err := task.ParseDate(until)
		if err != nil {
			return w, err
		}
		w.Until = &d
	}
	if w.Since != nil && w.Until != nil && w.Until.Before(*w.Since) {
		return w, tallyerrors.InvalidWindowError{Since: since, Until: until}
	}
	return w, nil
}

// stdinPath reads the document from standard input.
const stdinPath = "-"

func fromStdin(paths []string) bool {
	return len(paths) == 1 && paths[0] == stdinPath
}

// loadTasks discovers and parses paths. It fails when nothing was parsed.
func loadTasks(ctx context.Context, paths []string) (*loader.Result, error) {
	if fromStdin(paths) {
		tasks, err := loader.ReadAll(stdin, stdinPath)
		if err != nil {
			return nil, err
		}
		return &loader.Result{
			Files:   []loader.FileResult{{Path: stdinPath, Tasks: tasks}},
			Skipped: []loader.SkippedFile{},
		}, nil
	}

	result, err := newLoader().Load(ctx, paths...)
	if err != nil {
		return nil, err
	}
	for _, s := range result.Skipped {
		logger.Info("skipped file", "path", s.Path, "reason", s.Reason)
	}
	if len(result.Files) == 0 {
		return nil, tallyerrors.NoFilesError{Paths: paths}
	}
	return result, nil
}

func runAnalyze(ctx context.Context, opts analyzeOptions) (string, error) {
	window, err := parseWindow(opts.since, opts.until)
	if err != nil {
		return "", err
	}

	result, err := loadTasks(ctx, opts.paths)
	if err != nil {
		return "", err
	}

	tasks := task.Select(result.Tasks(), task.Filter{}, window)
	habits := append(append([]string{}, cfg.Habits...), opts.habits...)
	summary := metrics.AggregateWithOptions(tasks, metrics.Options{Habits: habits})
	logger.Debug("analyzed tasks", "files", len(result.Files), "tasks", summary.TotalTasks)

	var text string
	if opts.insights || opts.offline {
		gen, err := newGenerator(ctx, opts.offline)
		if err != nil {
			return "", err
		}
		if text, err = gen.Generate(ctx, summary); err != nil {
			return "", err
		}
	}

	if !opts.save {
		return formatter.FormatAnalysis(summary, text), nil
	}

	report, err := saveReport(opts.paths, result.Paths(), summary, text)
	if err != nil {
		return "", err
	}
	if jsonOutput {
		return formatter.FormatReport(report), nil
	}
	return formatter.FormatAnalysis(summary, text) +
		formatter.FormatMessage(fmt.Sprintf("\nSaved report %s", report.ID)), nil
}

// newGenerator picks the insight backend.
func newGenerator(ctx context.Context, offline bool) (insight.Generator, error) {
	if offline {
		return insight.Local{}, nil
	}
	gen, err := insight.NewAnthropicGenerator(ctx, insight.ClientConfig{
		APIKey:        cfg.Anthropic.APIKey,
		Model:         cfg.Anthropic.Model,
		MaxTokens:     cfg.Anthropic.MaxTokens,
		BaseURL:       cfg.Anthropic.BaseURL,
		UseAWSBedrock: cfg.Anthropic.Bedrock,
		AWSRegion:     cfg.Anthropic.AWSRegion,
		AWSProfile:    cfg.Anthropic.AWSProfile,
	})
	if err != nil {
		return nil, err
	}
	logger.Debug("requesting insights", "model", gen.Model(), "bedrock", cfg.Anthropic.Bedrock)
	return gen, nil
}

// getStore returns the history store for the project containing paths.
func getStore(paths []string) (*history.Store, string, error) {
	root, err := history.ResolveRoot(paths)
	if err != nil {
		return nil, "", err
	}
	return history.NewStore(cfg.History.Dir, root), root, nil
}

func saveReport(paths, files []string, summary metrics.Summary, text string) (*history.Report, error) {
	if fromStdin(paths) {
		paths = nil
	}
	store, root, err := getStore(paths)
	if err != nil {
		return nil, err
	}
	if !store.IsInitialized() {
		if err := store.Init(false); err != nil {
			return nil, err
		}
	}
	return store.Create(root, files, summary, text)
}
