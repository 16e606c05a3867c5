// Package summary implements the summary command for reporting recent work activity.
package summary

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/alan/pwm/cmd"
	"github.com/alan/pwm/internal/activity"
	"github.com/alan/pwm/internal/commands"
	"github.com/alan/pwm/internal/format"
)

// command encapsulates the summary command with common functionality
type command struct {
	commands.BaseCommand
	Since  commands.TimeFlag
	Format string
	Output string
	NoAI   bool
	All    bool
	Links  *bool

	Out    io.Writer
	ErrOut io.Writer
	Width  int
	now    func() time.Time
}

// NewSummaryCmd creates the summary command
func NewSummaryCmd(globalConfigFile *string, loadConfig func(...string) (*cmd.Config, error)) *cobra.Command {
	summaryCmd := &command{}
	var links bool

	builder := &commands.CommandBuilder{
		Use:   "summary",
		Short: "Summarize work since the previous business day",
		Long: `Summary collects commits from the local git repository, pull requests from GitHub
and issues from Jira, then prints a report grouped by branch and event type.

The window starts at midnight of the previous business day (Friday when run on a
Monday) unless --since is given. A source that is not configured or fails is noted
in the report; the remaining sources are still shown.`,
		ExampleUsage: []string{
			"pwm summary",
			"pwm summary --since 2025-01-06 --format text",
			"pwm summary --all --no-ai --output standup.md",
		},
	}

	cobraCmd := builder.BuildCommand(func(cobraCmd *cobra.Command, _ []string) error {
		summaryCmd.ConfigFile = globalConfigFile
		summaryCmd.LoadConfig = loadConfig
		if err := summaryCmd.Init(cobraCmd.Context()); err != nil {
			return err
		}

		if cobraCmd.Flags().Changed("links") {
			summaryCmd.Links = &links
		}
		summaryCmd.Out = cobraCmd.OutOrStdout()
		summaryCmd.ErrOut = cobraCmd.ErrOrStderr()
		summaryCmd.Width = terminalWidth()

		return summaryCmd.Run(cobraCmd.Context())
	})

	cobraCmd.Flags().Var(&summaryCmd.Since, "since", "Start of the window (RFC3339 or YYYY-MM-DD), defaults to the previous business day")
	cobraCmd.Flags().StringVar(&summaryCmd.Format, "format", "", "Output format (markdown, text), defaults to daily_summary.default_format")
	cobraCmd.Flags().StringVarP(&summaryCmd.Output, "output", "o", "", "Write the report to a file instead of stdout")
	cobraCmd.Flags().BoolVar(&summaryCmd.NoAI, "no-ai", false, "Skip the AI narrative")
	cobraCmd.Flags().BoolVar(&summaryCmd.All, "all", false, "Include activity from everyone, not just the current user")
	cobraCmd.Flags().BoolVar(&links, "links", true, "Include PR and issue links")

	return cobraCmd
}

// Run executes the summary command
func (sc *command) Run(ctx context.Context) error {
	identity := sc.Config.Summary.Author()
	if sc.All {
		identity = ""
	}

	pipeline := sc.Pipeline(!sc.NoAI)
	pipeline.Now = sc.now

	report, err := pipeline.Run(ctx, activity.Request{Since: sc.Since.Value(), Identity: identity})
	if err != nil {
		return err
	}

	outputFormat := sc.Format
	if outputFormat == "" {
		outputFormat = sc.Config.Summary.DefaultFormat
	}

	content, err := format.Render(outputFormat, report, sc.renderOptions())
	if err != nil {
		return err
	}

	if sc.Output != "" {
		if err := format.WriteFile(sc.Output, content); err != nil {
			return err
		}
		slog.Info("Summary written", "path", sc.Output, "commits", report.CommitCount)
	} else {
		fmt.Fprint(sc.Out, content)
	}

	commands.DisplaySourceWarnings(sc.ErrOut, report)
	return nil
}

func (sc *command) renderOptions() format.Options {
	showLinks := sc.Config.Summary.ShowLinks
	if sc.Links != nil {
		showLinks = *sc.Links
	}
	return format.Options{
		ShowLinks:           showLinks,
		MaxCommitsPerBranch: sc.Config.Summary.MaxCommitsPerBranch,
		Width:               sc.Width,
	}
}

// terminalWidth returns the stdout width, or 0 to use the formatter default
func terminalWidth() int {
	fd := int(os.Stdout.Fd())
	if !term.IsTerminal(fd) {
		return 0
	}
	width, _, err := term.GetSize(fd)
	if err != nil {
		return 0
	}
	return width
}
