package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/abatilo/tally/internal/config"
	"github.com/abatilo/tally/internal/loader"
	"github.com/abatilo/tally/internal/output"
)

//nolint:gochecknoglobals // flags, config and formatter are shared by every command
var (
	jsonOutput bool
	verbose    bool
	configPath string
	cfg        *config.Config
	formatter  output.Formatter
	logger     *slog.Logger
	stdin      io.Reader = os.Stdin
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "tally",
		Short: "Completion metrics for Markdown task lists",
		Long:  "tally - Completion rates, streaks and insights from the checkboxes in your Markdown notes.",
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			formatter = output.New(jsonOutput)
			logger = newLogger(verbose)

			var err error
			if cfg, err = config.Load(configPath); err != nil {
				printError(err)
			}
			logger.Debug("configuration loaded", "config", configPath, "history", cfg.History.Dir)
		},
	}

	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log discovery and API details to stderr")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file (default: .tally.yaml, then user config)")

	rootCmd.AddCommand(
		analyzeCmd(),
		tasksCmd(),
		historyCmd(),
		watchCmd(),
		configCmd(),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1) //nolint:gocritic // exitAfterDefer: stop is called explicitly
	}
}

func newLogger(debug bool) *slog.Logger {
	level := slog.LevelWarn
	if debug {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func newLoader() *loader.Loader {
	return loader.New(loader.Options{
		Extensions:  cfg.Scan.Extensions,
		Exclude:     cfg.Scan.Exclude,
		MaxFileSize: cfg.Scan.MaxFileSize,
		Workers:     cfg.Scan.Workers,
	}, logger)
}

func printOutput(s string) {
	os.Stdout.WriteString(s) //nolint:gosec // stdout write errors are unrecoverable
}

func printError(err error) {
	os.Stdout.WriteString(formatter.FormatError(err)) //nolint:gosec // stdout write errors are unrecoverable
	os.Exit(1)
}

// configCmd implements 'tally config'.
func configCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Show the effective configuration",
		Args:  cobra.NoArgs,
		Run: func(_ *cobra.Command, _ []string) {
			out, err := renderConfig(cfg, jsonOutput)
			if err != nil {
				printError(err)
			}
			printOutput(out)
		},
	}
}

func renderConfig(c *config.Config, asJSON bool) (string, error) {
	if c == nil {
		return "", fmt.Errorf("configuration not loaded")
	}
	return config.Render(c.Redacted(), asJSON)
}
