// Package check implements the check command for verifying source configuration and connectivity.
package check

import (
	"context"
	"fmt"
	"io"
	"os/exec"

	"github.com/spf13/cobra"

	"github.com/alan/pwm/cmd"
	"github.com/alan/pwm/internal/activity"
	"github.com/alan/pwm/internal/commands"
)

// command encapsulates the check command with common functionality
type command struct {
	commands.BaseCommand
	Out      io.Writer
	lookPath func(string) (string, error)
}

// result is the outcome of checking one source
type result struct {
	name   string
	state  activity.SourceState
	detail string
	hint   string
}

// NewCheckCmd creates the check command
func NewCheckCmd(globalConfigFile *string, loadConfig func(...string) (*cmd.Config, error)) *cobra.Command {
	checkCmd := &command{}

	builder := &commands.CommandBuilder{
		Use:   "check",
		Short: "Check source configuration and connectivity",
		Long: `Check reports, for the local git repository, GitHub, Jira and the AI command,
whether the source is configured and whether it answers. It exits non-zero when a
configured source fails; sources that are not configured are only reported.`,
	}

	return builder.BuildCommand(func(cobraCmd *cobra.Command, _ []string) error {
		checkCmd.ConfigFile = globalConfigFile
		checkCmd.LoadConfig = loadConfig
		if err := checkCmd.Init(cobraCmd.Context()); err != nil {
			return err
		}
		checkCmd.Out = cobraCmd.OutOrStdout()
		return checkCmd.Run(cobraCmd.Context())
	})
}

// Run executes the check command
func (cc *command) Run(ctx context.Context) error {
	results := []result{
		cc.checkGit(ctx),
		cc.checkGitHub(ctx),
		cc.checkJira(ctx),
		cc.checkAI(),
	}

	failed := 0
	for _, r := range results {
		fmt.Fprintf(cc.Out, "  %-8s: %s", r.name, commands.StateLabel(r.state))
		if r.detail != "" {
			fmt.Fprintf(cc.Out, " (%s)", r.detail)
		}
		fmt.Fprintln(cc.Out)
		if r.hint != "" {
			fmt.Fprintf(cc.Out, "  %-8s  💡 %s\n", "", r.hint)
		}
		if r.state == activity.SourceFailed {
			failed++
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d source(s) failed", failed)
	}
	return nil
}

func (cc *command) checkGit(ctx context.Context) result {
	r := result{name: "git"}
	if cc.Repo == nil || !cc.Repo.IsRepository(ctx) {
		r.state = activity.SourceNotConfigured
		r.hint = "run pwm from inside a git repository"
		return r
	}

	branch, err := cc.Repo.CurrentBranch(ctx)
	if err != nil {
		r.state = activity.SourceFailed
		r.detail = err.Error()
		return r
	}

	r.state = activity.SourceOK
	r.detail = "branch: " + branch
	if org, repo, err := cc.Repo.RemoteRepo(ctx, cc.Config.Git.DefaultRemote); err == nil {
		r.detail += ", remote: " + org + "/" + repo
	}
	return r
}

func (cc *command) checkGitHub(ctx context.Context) result {
	r := result{name: "github"}
	if cc.GitHubClient == nil {
		r.state = activity.SourceNotConfigured
		r.hint = "set github.org and github.repo, and GITHUB_TOKEN or PWM_GITHUB_TOKEN"
		return r
	}

	login, err := cc.GitHubClient.GetAuthenticatedUser(ctx)
	if err != nil {
		r.state = activity.SourceFailed
		r.detail = err.Error()
		r.hint = "check GITHUB_TOKEN or PWM_GITHUB_TOKEN"
		return r
	}

	r.state = activity.SourceOK
	r.detail = fmt.Sprintf("%s as %s", cc.GitHubClient.Repository(), login)
	return r
}

func (cc *command) checkJira(ctx context.Context) result {
	r := result{name: "jira"}
	if cc.JiraClient == nil {
		r.state = activity.SourceNotConfigured
		r.hint = "set jira.project_key and PWM_JIRA_TOKEN, PWM_JIRA_EMAIL, PWM_JIRA_BASE_URL"
		return r
	}

	user, err := cc.JiraClient.Myself(ctx)
	if err != nil {
		r.state = activity.SourceFailed
		r.detail = err.Error()
		r.hint = "check PWM_JIRA_TOKEN and PWM_JIRA_EMAIL"
		return r
	}

	r.state = activity.SourceOK
	r.detail = fmt.Sprintf("%s as %s", cc.Config.Jira.ProjectKey, user)
	return r
}

func (cc *command) checkAI() result {
	r := result{name: "ai"}
	if cc.Narrator == nil {
		r.state = activity.SourceNotConfigured
		r.hint = "set ai.command to enable narrative summaries"
		return r
	}

	lookPath := cc.lookPath
	if lookPath == nil {
		lookPath = exec.LookPath
	}
	path, err := lookPath(cc.Narrator.Command)
	if err != nil {
		r.state = activity.SourceFailed
		r.detail = err.Error()
		return r
	}

	r.state = activity.SourceOK
	r.detail = path
	return r
}
