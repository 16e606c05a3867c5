// Package cmd defines core data structures for pwm configuration.
package cmd

import (
	"time"

	"github.com/alan/pwm/internal/activity"
)

// Defaults applied before a config file is decoded
const (
	DefaultRemote              = "origin"
	DefaultFormat              = "markdown"
	DefaultMaxCommitsPerBranch = 10
	DefaultAITimeout           = 60 * time.Second
)

// Config represents the structure of .pwm.toml (or .pwm.yaml)
type Config struct {
	GitHub  GitHubConfig  `toml:"github" yaml:"github"`
	Jira    JiraConfig    `toml:"jira" yaml:"jira"`
	Git     GitConfig     `toml:"git" yaml:"git"`
	AI      AIConfig      `toml:"ai" yaml:"ai"`
	Summary SummaryConfig `toml:"daily_summary" yaml:"daily_summary"`
	Update  UpdateConfig  `toml:"update" yaml:"update"`
}

// GitHubConfig locates the repository whose pull requests are reported
type GitHubConfig struct {
	Org     string `toml:"org" yaml:"org"`
	Repo    string `toml:"repo" yaml:"repo"`
	Token   string `toml:"token,omitempty" yaml:"token,omitempty"`
	BaseURL string `toml:"base_url,omitempty" yaml:"base_url,omitempty"` // GitHub Enterprise API root
}

// Configured reports whether pull requests can be queried
func (g GitHubConfig) Configured() bool {
	return g.Token != "" && g.Org != "" && g.Repo != ""
}

// JiraConfig holds issue tracker credentials and the project to query
type JiraConfig struct {
	BaseURL    string `toml:"base_url" yaml:"base_url"`
	Email      string `toml:"email" yaml:"email"`
	Token      string `toml:"token,omitempty" yaml:"token,omitempty"`
	ProjectKey string `toml:"project_key" yaml:"project_key"`
	// Timezone is the IANA zone of the Jira profile; JQL dates are read in it
	Timezone string `toml:"timezone,omitempty" yaml:"timezone,omitempty"`
}

// Configured reports whether issues can be queried
func (j JiraConfig) Configured() bool {
	return j.BaseURL != "" && j.Email != "" && j.Token != "" && j.ProjectKey != ""
}

// GitConfig holds local repository settings
type GitConfig struct {
	DefaultRemote string `toml:"default_remote" yaml:"default_remote"`
}

// AIConfig describes the command that writes narratives
type AIConfig struct {
	Command string   `toml:"command" yaml:"command"`
	Args    []string `toml:"args,omitempty" yaml:"args,omitempty"`
	Timeout Duration `toml:"timeout" yaml:"timeout"`
}

// Configured reports whether a narrative command is set
func (a AIConfig) Configured() bool {
	return a.Command != ""
}

// SummaryConfig tunes report generation
type SummaryConfig struct {
	// OwnOnly restricts every source to the current user
	OwnOnly bool `toml:"include_own_only" yaml:"include_own_only"`
	// Identity overrides the current user when OwnOnly is set
	Identity            string   `toml:"identity,omitempty" yaml:"identity,omitempty"`
	DefaultFormat       string   `toml:"default_format" yaml:"default_format"`
	MaxCommitsPerBranch int      `toml:"max_commits_per_branch" yaml:"max_commits_per_branch"`
	SourceTimeout       Duration `toml:"source_timeout" yaml:"source_timeout"`
	ShowLinks           bool     `toml:"show_links" yaml:"show_links"`
}

// Author returns the identity passed to every source, "" for no filter
func (s SummaryConfig) Author() string {
	switch {
	case !s.OwnOnly:
		return ""
	case s.Identity != "":
		return s.Identity
	default:
		return "@me"
	}
}

// UpdateConfig controls incremental status updates
type UpdateConfig struct {
	MarkerToken string `toml:"marker_token" yaml:"marker_token"`
}

// Default returns a config with every default applied
func Default() *Config {
	return &Config{
		Git: GitConfig{DefaultRemote: DefaultRemote},
		AI:  AIConfig{Timeout: Duration{DefaultAITimeout}},
		Summary: SummaryConfig{
			OwnOnly:             true,
			DefaultFormat:       DefaultFormat,
			MaxCommitsPerBranch: DefaultMaxCommitsPerBranch,
			SourceTimeout:       Duration{activity.DefaultSourceTimeout},
			ShowLinks:           true,
		},
		Update: UpdateConfig{MarkerToken: activity.DefaultMarkerToken},
	}
}

// Duration is a time.Duration written as "30s" in config files
type Duration struct {
	time.Duration
}

// MarshalText implements encoding.TextMarshaler
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (d *Duration) UnmarshalText(text []byte) error {
	if len(text) == 0 {
		d.Duration = 0
		return nil
	}
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = parsed
	return nil
}
