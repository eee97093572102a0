package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abatilo/tally/internal/history"
)

// historyCmd implements 'tally history' command group.
func historyCmd() *cobra.Command {
	var project string
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Manage saved reports",
	}
	cmd.PersistentFlags().StringVarP(&project, "project", "p", ".", "Project whose reports to manage")

	store := func() *history.Store {
		s, _, err := getStore([]string{project})
		if err != nil {
			printError(err)
		}
		return s
	}

	cmd.AddCommand(
		historyInitCmd(store),
		historyListCmd(store),
		historyShowCmd(store),
		historyRmCmd(store),
		historyPruneCmd(store),
	)
	return cmd
}

// historyInitCmd implements 'tally history init'.
func historyInitCmd(store func() *history.Store) *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create the report directory for this project",
		Args:  cobra.NoArgs,
		Run: func(_ *cobra.Command, _ []string) {
			s := store()
			if err := s.Init(force); err != nil {
				printError(err)
			}
			printOutput(formatter.FormatMessage(fmt.Sprintf("Initialized history at %s", s.BasePath())))
		},
	}
	cmd.Flags().BoolVarP(&force, "force", "f", false, "Reinitialize even if already exists")
	return cmd
}

// historyListCmd implements 'tally history list'.
func historyListCmd(store func() *history.Store) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List saved reports, newest first",
		Args:  cobra.NoArgs,
		Run: func(_ *cobra.Command, _ []string) {
			reports, err := store().List()
			if err != nil {
				printError(err)
			}
			printOutput(formatter.FormatReportList(reports))
		},
	}
}

// historyShowCmd implements 'tally history show'.
func historyShowCmd(store func() *history.Store) *cobra.Command {
	return &cobra.Command{
		Use:   "show [id]",
		Short: "Show a saved report (default: the latest)",
		Args:  cobra.MaximumNArgs(1),
		Run: func(_ *cobra.Command, args []string) {
			s := store()
			var (
				r   *history.Report
				err error
			)
			if len(args) == 1 {
				r, err = s.Load(args[0])
			} else {
				r, err = s.Latest()
			}
			if err != nil {
				printError(err)
			}
			printOutput(formatter.FormatReport(r))
		},
	}
}

// historyRmCmd implements 'tally history rm'.
func historyRmCmd(store func() *history.Store) *cobra.Command {
	return &cobra.Command{
		Use:   "rm <id>",
		Short: "Delete a saved report",
		Args:  cobra.ExactArgs(1),
		Run: func(_ *cobra.Command, args []string) {
			if err := store().Delete(args[0]); err != nil {
				printError(err)
			}
			printOutput(formatter.FormatMessage(fmt.Sprintf("Removed report %s", args[0])))
		},
	}
}

// historyPruneCmd implements 'tally history prune'.
func historyPruneCmd(store func() *history.Store) *cobra.Command {
	var keep int
	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Delete all but the newest reports",
		Args:  cobra.NoArgs,
		Run: func(_ *cobra.Command, _ []string) {
			removed, err := store().Prune(keep)
			if err != nil {
				printError(err)
			}
			printOutput(formatter.FormatMessage(fmt.Sprintf("Pruned %d reports", len(removed))))
		},
	}
	cmd.Flags().IntVarP(&keep, "keep", "k", 10, "Number of newest reports to keep") //nolint:mnd // default retention
	return cmd
}
