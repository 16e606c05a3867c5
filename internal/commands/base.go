// Package commands holds the setup shared by every pwm subcommand.
package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/alan/pwm/cmd"
	"github.com/alan/pwm/internal/activity"
	"github.com/alan/pwm/internal/config"
	"github.com/alan/pwm/internal/git"
	"github.com/alan/pwm/internal/github"
	"github.com/alan/pwm/internal/jira"
	"github.com/alan/pwm/internal/narrative"
)

// BaseCommand provides common fields and initialization for all commands.
// Collaborators whose configuration is incomplete stay nil.
type BaseCommand struct {
	ConfigFile *string
	LoadConfig func(...string) (*cmd.Config, error)
	Getenv     func(string) string

	Context      context.Context
	Config       *cmd.Config
	Repo         *git.Repo
	GitHubClient *github.Client
	JiraClient   *jira.Client
	Narrator     *narrative.CommandNarrator
}

// Init loads the global and project config files, applies environment
// overrides and builds the source clients
func (bc *BaseCommand) Init(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	bc.Context = ctx

	loadConfig := bc.LoadConfig
	if loadConfig == nil {
		loadConfig = config.LoadFiles
	}
	getenv := bc.Getenv
	if getenv == nil {
		getenv = os.Getenv
	}

	cfg, err := loadConfig(bc.configPaths()...)
	if err != nil {
		return err
	}
	config.ApplyEnv(cfg, getenv)
	bc.Config = cfg

	bc.Repo = git.Open("")

	if cfg.GitHub.Configured() {
		client, err := github.NewClient(ctx, cfg.GitHub.Token).WithBaseURL(cfg.GitHub.BaseURL)
		if err != nil {
			return err
		}
		bc.GitHubClient = client.WithRepository(cfg.GitHub.Org, cfg.GitHub.Repo)
	} else {
		slog.Debug("GitHub not configured, pull requests will be skipped")
	}

	if cfg.Jira.Configured() {
		client, err := jira.NewClient(cfg.Jira.BaseURL, cfg.Jira.Email, cfg.Jira.Token, cfg.Jira.ProjectKey)
		if err != nil {
			return err
		}
		if cfg.Jira.Timezone != "" {
			loc, err := time.LoadLocation(cfg.Jira.Timezone)
			if err != nil {
				return fmt.Errorf("invalid jira.timezone %q: %w", cfg.Jira.Timezone, err)
			}
			client.WithLocation(loc)
		}
		bc.JiraClient = client
	} else {
		slog.Debug("Jira not configured, issues will be skipped")
	}

	if cfg.AI.Configured() {
		bc.Narrator = &narrative.CommandNarrator{
			Command: cfg.AI.Command,
			Args:    cfg.AI.Args,
			Timeout: cfg.AI.Timeout.Duration,
		}
	}

	return nil
}

// configPaths lists the files to load, later files overriding earlier ones
func (bc *BaseCommand) configPaths() []string {
	var paths []string
	if global, err := config.GlobalConfigPath(); err == nil {
		paths = append(paths, global)
	}
	if bc.ConfigFile != nil && *bc.ConfigFile != "" {
		paths = append(paths, *bc.ConfigFile)
	}
	return paths
}

// Sources returns the configured sources. The git source is always present;
// outside a repository it reports itself unconfigured.
func (bc *BaseCommand) Sources() activity.Sources {
	sources := activity.Sources{}
	if bc.Repo != nil {
		sources.Commits = bc.Repo
	}
	if bc.GitHubClient != nil {
		sources.PullRequests = bc.GitHubClient
	}
	if bc.JiraClient != nil {
		sources.Issues = bc.JiraClient
	}
	return sources
}

// Pipeline builds an aggregation pipeline from the loaded configuration
func (bc *BaseCommand) Pipeline(withNarrative bool) *activity.Pipeline {
	p := &activity.Pipeline{
		Sources: bc.Sources(),
		Options: activity.CollectOptions{SourceTimeout: bc.Config.Summary.SourceTimeout.Duration},
	}
	if withNarrative && bc.Narrator != nil {
		p.Narrator = bc.Narrator
	}
	return p
}

// RequireGitHub fails when the code host is not configured
func (bc *BaseCommand) RequireGitHub() error {
	if bc.GitHubClient == nil {
		return fmt.Errorf("github is not configured: set github.org, github.repo and GITHUB_TOKEN")
	}
	return nil
}

