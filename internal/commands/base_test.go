package commands

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alan/pwm/cmd"
)

func envMap(vars map[string]string) func(string) string {
	return func(key string) string { return vars[key] }
}

func TestBaseCommand_Init(t *testing.T) {
	tests := []struct {
		name         string
		loadConfig   func(...string) (*cmd.Config, error)
		env          map[string]string
		wantErr      bool
		wantGitHub   bool
		wantJira     bool
		wantNarrator bool
	}{
		{
			name: "github configured from env token",
			loadConfig: func(...string) (*cmd.Config, error) {
				cfg := cmd.Default()
				cfg.GitHub.Org = "acme"
				cfg.GitHub.Repo = "widgets"
				return cfg, nil
			},
			env:        map[string]string{"GITHUB_TOKEN": "test-token"},
			wantGitHub: true,
		},
		{
			name: "missing github token leaves pull requests unconfigured",
			loadConfig: func(...string) (*cmd.Config, error) {
				cfg := cmd.Default()
				cfg.GitHub.Org = "acme"
				cfg.GitHub.Repo = "widgets"
				return cfg, nil
			},
		},
		{
			name: "every source configured",
			loadConfig: func(...string) (*cmd.Config, error) {
				cfg := cmd.Default()
				cfg.GitHub = cmd.GitHubConfig{Org: "acme", Repo: "widgets", Token: "gh"}
				cfg.Jira = cmd.JiraConfig{BaseURL: "https://acme.atlassian.net", Email: "a@acme.io", ProjectKey: "ABC"}
				cfg.AI.Command = "claude"
				return cfg, nil
			},
			env:          map[string]string{"PWM_JIRA_TOKEN": "jira-token"},
			wantGitHub:   true,
			wantJira:     true,
			wantNarrator: true,
		},
		{
			name: "invalid github base url",
			loadConfig: func(...string) (*cmd.Config, error) {
				cfg := cmd.Default()
				cfg.GitHub = cmd.GitHubConfig{Org: "acme", Repo: "widgets", Token: "gh", BaseURL: "://bad"}
				return cfg, nil
			},
			wantErr: true,
		},
		{
			name: "invalid jira timezone",
			loadConfig: func(...string) (*cmd.Config, error) {
				cfg := cmd.Default()
				cfg.Jira = cmd.JiraConfig{BaseURL: "https://acme.atlassian.net", Email: "a@acme.io", Token: "t", ProjectKey: "ABC", Timezone: "Mars/Olympus"}
				return cfg, nil
			},
			wantErr: true,
		},
		{
			name: "jira timezone",
			loadConfig: func(...string) (*cmd.Config, error) {
				cfg := cmd.Default()
				cfg.Jira = cmd.JiraConfig{BaseURL: "https://acme.atlassian.net", Email: "a@acme.io", Token: "t", ProjectKey: "ABC", Timezone: "UTC"}
				return cfg, nil
			},
			wantJira: true,
		},
		{
			name: "config load error",
			loadConfig: func(...string) (*cmd.Config, error) {
				return nil, errors.New("failed to load config")
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			configFile := ".pwm.toml"
			bc := &BaseCommand{
				ConfigFile: &configFile,
				LoadConfig: tt.loadConfig,
				Getenv:     envMap(tt.env),
			}

			err := bc.Init(context.Background())
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)

			assert.NotNil(t, bc.Config)
			assert.NotNil(t, bc.Repo)
			assert.Equal(t, tt.wantGitHub, bc.GitHubClient != nil)
			assert.Equal(t, tt.wantJira, bc.JiraClient != nil)
			assert.Equal(t, tt.wantNarrator, bc.Narrator != nil)

			sources := bc.Sources()
			assert.NotNil(t, sources.Commits)
			assert.Equal(t, tt.wantGitHub, sources.PullRequests != nil, "nil client must not become a non-nil interface")
			assert.Equal(t, tt.wantJira, sources.Issues != nil)
		})
	}
}

func TestBaseCommand_ConfigPaths(t *testing.T) {
	xdg := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", xdg)
	t.Setenv("HOME", xdg)

	var got []string
	configFile := "project.toml"
	bc := &BaseCommand{
		ConfigFile: &configFile,
		LoadConfig: func(paths ...string) (*cmd.Config, error) {
			got = paths
			return cmd.Default(), nil
		},
		Getenv: envMap(nil),
	}

	require.NoError(t, bc.Init(context.Background()))
	require.Len(t, got, 2)
	assert.Equal(t, "config.toml", filepath.Base(got[0]))
	assert.Equal(t, "project.toml", got[1], "project file loads last so it wins")
}

func TestBaseCommand_Pipeline(t *testing.T) {
	cfg := cmd.Default()
	cfg.AI.Command = "claude"
	cfg.Summary.SourceTimeout = cmd.Duration{Duration: 5 * time.Second}

	bc := &BaseCommand{
		LoadConfig: func(...string) (*cmd.Config, error) { return cfg, nil },
		Getenv:     envMap(nil),
	}
	require.NoError(t, bc.Init(context.Background()))

	p := bc.Pipeline(true)
	assert.NotNil(t, p.Narrator)
	assert.Equal(t, 5*time.Second, p.Options.SourceTimeout)

	p = bc.Pipeline(false)
	assert.Nil(t, p.Narrator)
}

func TestBaseCommand_RequireGitHub(t *testing.T) {
	bc := &BaseCommand{
		LoadConfig: func(...string) (*cmd.Config, error) { return cmd.Default(), nil },
		Getenv:     envMap(nil),
	}
	require.NoError(t, bc.Init(context.Background()))
	assert.ErrorContains(t, bc.RequireGitHub(), "github is not configured")
}
