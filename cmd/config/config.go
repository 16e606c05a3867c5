// Package config implements the config command for initializing and updating pwm configuration.
package config

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/alan/pwm/cmd"
	"github.com/alan/pwm/internal/format"
	"github.com/alan/pwm/internal/git"
)

// remoteDetector finds the GitHub org/repo of a git remote
type remoteDetector interface {
	RemoteRepo(ctx context.Context, remote string) (string, string, error)
}

// options holds the values given on the command line; empty means keep the existing value
type options struct {
	org         string
	repo        string
	jiraURL     string
	jiraEmail   string
	jiraProject string
	jiraTZ      string
	aiCommand   string
	format      string
}

// NewConfigCmd creates and returns the config command
func NewConfigCmd(globalConfigFile *string, loadConfig func(...string) (*cmd.Config, error), saveConfig func(string, *cmd.Config) error) *cobra.Command {
	var opts options

	cobraCmd := &cobra.Command{
		Use:   "config",
		Short: "Initialize or update the .pwm.toml configuration file",
		Long: `Config creates or updates the project configuration file.

When run from a git repository, the GitHub organization and repository are detected
from the default remote unless given with --org and --repo. Values not given on the
command line keep what the file already holds.

Credentials are never written: provide them with GITHUB_TOKEN (or PWM_GITHUB_TOKEN),
PWM_JIRA_TOKEN and PWM_JIRA_EMAIL.`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cobraCmd *cobra.Command, _ []string) error {
			return runConfigWithGitDetection(cobraCmd.Context(), cobraCmd.OutOrStdout(), *globalConfigFile, opts, git.Open(""), loadConfig, saveConfig)
		},
	}

	addConfigFlags(cobraCmd, &opts)
	return cobraCmd
}

// addConfigFlags adds all flags to the config command
func addConfigFlags(cobraCmd *cobra.Command, opts *options) {
	cobraCmd.Flags().StringVarP(&opts.org, "org", "o", "", "GitHub organization or username (auto-detected from git if available)")
	cobraCmd.Flags().StringVarP(&opts.repo, "repo", "r", "", "GitHub repository name (auto-detected from git if available)")
	cobraCmd.Flags().StringVar(&opts.jiraURL, "jira-url", "", "Jira base URL, e.g. https://acme.atlassian.net")
	cobraCmd.Flags().StringVar(&opts.jiraEmail, "jira-email", "", "Jira account email")
	cobraCmd.Flags().StringVar(&opts.jiraProject, "jira-project", "", "Jira project key")
	cobraCmd.Flags().StringVar(&opts.jiraTZ, "jira-timezone", "", "Timezone of the Jira profile, e.g. Europe/Berlin (defaults to the local timezone)")
	cobraCmd.Flags().StringVarP(&opts.aiCommand, "ai-command", "a", "", "AI command used for narrative summaries (e.g. 'claude', 'llm')")
	cobraCmd.Flags().StringVar(&opts.format, "format", "", "Default summary format (markdown, text)")
}

// runConfigWithGitDetection fills org/repo from the git remote when neither the flags nor the file set them
func runConfigWithGitDetection(ctx context.Context, out io.Writer, configFile string, opts options, detector remoteDetector, loadConfig func(...string) (*cmd.Config, error), saveConfig func(string, *cmd.Config) error) error {
	config, isUpdate, err := loadOrCreateConfig(configFile, loadConfig)
	if err != nil {
		return err
	}

	if (opts.org == "" && config.GitHub.Org == "") || (opts.repo == "" && config.GitHub.Repo == "") {
		org, repo, err := detector.RemoteRepo(ctx, config.Git.DefaultRemote)
		if err != nil {
			slog.Debug("GitHub repository not detected from git", "error", err)
		} else {
			if opts.org == "" && config.GitHub.Org == "" {
				opts.org = org
				slog.Info("Auto-detected organization", "org", org)
			}
			if opts.repo == "" && config.GitHub.Repo == "" {
				opts.repo = repo
				slog.Info("Auto-detected repository", "repo", repo)
			}
		}
	}

	return runConfig(out, configFile, config, isUpdate, opts, saveConfig)
}

func runConfig(out io.Writer, configFile string, config *cmd.Config, isUpdate bool, opts options, saveConfig func(string, *cmd.Config) error) error {
	switch opts.format {
	case "", format.FormatMarkdown, format.FormatText:
	default:
		return fmt.Errorf("%w: %q", format.ErrUnknownFormat, opts.format)
	}
	if opts.jiraTZ != "" {
		if _, err := time.LoadLocation(opts.jiraTZ); err != nil {
			return fmt.Errorf("invalid jira timezone %q: %w", opts.jiraTZ, err)
		}
	}

	updateConfigWithProvidedValues(config, opts)

	if err := saveConfig(configFile, config); err != nil {
		return fmt.Errorf("failed to save configuration: %w", err)
	}

	displayConfigSuccess(out, configFile, config, isUpdate)
	return nil
}

// displayConfigSuccess shows the configuration success message
func displayConfigSuccess(out io.Writer, configFile string, config *cmd.Config, isUpdate bool) {
	action := "initialized"
	if isUpdate {
		action = "updated"
	}
	fmt.Fprintf(out, "Successfully %s %s with:\n", action, configFile)
	fmt.Fprintf(out, "  GitHub: %s\n", orUnset(joinRepo(config.GitHub.Org, config.GitHub.Repo)))
	fmt.Fprintf(out, "  Jira: %s\n", orUnset(joinJira(config.Jira.BaseURL, config.Jira.ProjectKey)))
	fmt.Fprintf(out, "  AI Command: %s\n", orUnset(config.AI.Command))
	fmt.Fprintf(out, "  Default Format: %s\n", config.Summary.DefaultFormat)
}

// loadOrCreateConfig loads the project file alone so global settings are not copied into it
func loadOrCreateConfig(configFile string, loadConfig func(...string) (*cmd.Config, error)) (*cmd.Config, bool, error) {
	if _, err := os.Stat(configFile); err != nil {
		return cmd.Default(), false, nil
	}

	config, err := loadConfig(configFile)
	if err != nil {
		return nil, false, err
	}
	return config, true, nil
}

// updateConfigWithProvidedValues updates config with any non-empty provided values
func updateConfigWithProvidedValues(config *cmd.Config, opts options) {
	if opts.org != "" {
		config.GitHub.Org = opts.org
	}
	if opts.repo != "" {
		config.GitHub.Repo = opts.repo
	}
	if opts.jiraURL != "" {
		config.Jira.BaseURL = opts.jiraURL
	}
	if opts.jiraEmail != "" {
		config.Jira.Email = opts.jiraEmail
	}
	if opts.jiraProject != "" {
		config.Jira.ProjectKey = opts.jiraProject
	}
	if opts.jiraTZ != "" {
		config.Jira.Timezone = opts.jiraTZ
	}
	if opts.aiCommand != "" {
		config.AI.Command = opts.aiCommand
	}
	if opts.format != "" {
		config.Summary.DefaultFormat = opts.format
	}
}

func joinRepo(org, repo string) string {
	if org == "" || repo == "" {
		return ""
	}
	return org + "/" + repo
}

func joinJira(baseURL, project string) string {
	if baseURL == "" && project == "" {
		return ""
	}
	return fmt.Sprintf("%s (project %s)", baseURL, project)
}

func orUnset(s string) string {
	if s == "" {
		return "(not set)"
	}
	return s
}
