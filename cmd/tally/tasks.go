package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/abatilo/tally/internal/outline"
	"github.com/abatilo/tally/internal/task"
)

// tasksOptions holds the flags of 'tally tasks'.
type tasksOptions struct {
	paths []string
	open  bool
	done  bool
	since string
	until string
	tree  bool
	next  bool
	check bool
}

// tasksCmd implements 'tally tasks'.
func tasksCmd() *cobra.Command {
	var opts tasksOptions
	cmd := &cobra.Command{
		Use:   "tasks [path...]",
		Short: "List checklist items",
		Run: func(cmd *cobra.Command, args []string) {
			opts.paths = args
			out, err := runTasks(cmd.Context(), opts)
			if err != nil {
				printError(err)
			}
			printOutput(out)
		},
	}
	cmd.Flags().BoolVar(&opts.open, "open", false, "Show only open items")
	cmd.Flags().BoolVar(&opts.done, "done", false, "Show only completed items")
	addWindowFlags(cmd, &opts.since, &opts.until)
	cmd.Flags().BoolVarP(&opts.tree, "tree", "t", false, "Show items as a nested tree")
	cmd.Flags().BoolVarP(&opts.next, "next", "n", false, "Show open items whose sub-items are all done")
	cmd.Flags().BoolVar(&opts.check, "check", false, "Fail if a checked item has open sub-items")
	return cmd
}

func runTasks(ctx context.Context, opts tasksOptions) (string, error) {
	if opts.tree && opts.next {
		return "", ConflictingFlagsError{First: "tree", Second: "next"}
	}

	window, err := parseWindow(opts.since, opts.until)
	if err != nil {
		return "", err
	}

	result, err := loadTasks(ctx, opts.paths)
	if err != nil {
		return "", err
	}
	all := result.Tasks()

	if opts.check {
		if err := outline.New(all).Check(); err != nil {
			return "", err
		}
	}

	filter := task.Filter{Open: opts.open, Done: opts.done}
	switch {
	case opts.next:
		return formatter.FormatTaskList(task.Select(outline.New(all).Actionable(), filter, window)), nil
	case opts.tree:
		return formatter.FormatOutline(outline.New(task.Select(all, filter, window)).Roots()), nil
	default:
		return formatter.FormatTaskList(task.Select(all, filter, window)), nil
	}
}
