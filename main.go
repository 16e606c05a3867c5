// package main is the entry point for the pwm tool
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/alan/pwm/cmd/check"
	configcmd "github.com/alan/pwm/cmd/config"
	"github.com/alan/pwm/cmd/summary"
	"github.com/alan/pwm/cmd/update"
	"github.com/alan/pwm/internal/config"
)

func main() {
	var configFile string
	var logLevel string
	var logFormat string

	rootCmd := &cobra.Command{
		Use:   "pwm",
		Short: "A CLI tool for summarizing your recent development work",
		Long: `pwm collects your recent commits, pull requests and issues from git, GitHub and
Jira and turns them into a daily work summary or an incremental pull request update.

Settings are read from ~/.config/pwm/config.toml and then from the project file
given by --config; tokens come from the environment.`,
		SilenceUsage: true,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			setupLogger(logLevel, logFormat)
		},
	}

	// Add global flags
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", ".pwm.toml", "Project configuration file path (.toml or .yaml)")
	rootCmd.PersistentFlags().StringVarP(&logLevel, "log-level", "l", "info", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVarP(&logFormat, "log-format", "f", "text", "Log format (text, json)")

	// Create commands with access to the global config file
	rootCmd.AddCommand(summary.NewSummaryCmd(&configFile, config.LoadFiles))
	rootCmd.AddCommand(update.NewUpdateCmd(&configFile, config.LoadFiles))
	rootCmd.AddCommand(check.NewCheckCmd(&configFile, config.LoadFiles))
	rootCmd.AddCommand(configcmd.NewConfigCmd(&configFile, config.LoadFiles, config.SaveConfig))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

// setupLogger writes logs to stderr so reports on stdout stay pipeable
func setupLogger(level, format string) {
	var logLevel slog.Level
	switch level {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	var handler slog.Handler
	if format == "json" {
		handler = slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel})
	} else {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel})
	}

	slog.SetDefault(slog.New(handler))
}
