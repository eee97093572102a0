package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/abatilo/tally/internal/watch"
)

const clearScreen = "\033[H\033[2J"

// watchCmd implements 'tally watch'.
func watchCmd() *cobra.Command {
	var (
		opts   analyzeOptions
		redraw bool
	)
	cmd := &cobra.Command{
		Use:   "watch [path...]",
		Short: "Re-run the analysis whenever task files change",
		Run: func(cmd *cobra.Command, args []string) {
			opts.paths = args
			if err := runWatch(cmd.Context(), opts, redraw && !jsonOutput); err != nil {
				printError(err)
			}
		},
	}
	addWindowFlags(cmd, &opts.since, &opts.until)
	cmd.Flags().StringArrayVar(&opts.habits, "habit", nil, "Track a recurring task by name (repeatable)")
	cmd.Flags().BoolVar(&opts.offline, "offline", false, "Include rule-based insights on each run")
	cmd.Flags().BoolVar(&redraw, "clear", true, "Clear the screen before each run")
	return cmd
}

func runWatch(ctx context.Context, opts analyzeOptions, redraw bool) error {
	w, err := watch.New(watch.Options{
		Extensions: cfg.Scan.Extensions,
		Exclude:    cfg.Scan.Exclude,
		Debounce:   cfg.Watch.Debounce,
	}, logger, opts.paths...)
	if err != nil {
		return err
	}
	defer w.Close()

	return w.Run(ctx, func(ctx context.Context) error {
		out, err := runAnalyze(ctx, opts)
		if err != nil {
			// Files may be mid-save; report and keep watching.
			out = formatter.FormatError(err)
		}
		if redraw {
			printOutput(clearScreen)
		}
		if !jsonOutput {
			out = formatter.FormatMessage(fmt.Sprintf("Updated %s\n", time.Now().Format(time.TimeOnly))) + out
		}
		printOutput(out)
		return nil
	})
}
