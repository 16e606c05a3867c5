// Package update implements the update command for posting incremental status updates on a pull request.
package update

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/alan/pwm/cmd"
	"github.com/alan/pwm/internal/activity"
	"github.com/alan/pwm/internal/commands"
	"github.com/alan/pwm/internal/format"
	"github.com/alan/pwm/internal/github"
)

// command encapsulates the update command with common functionality
type command struct {
	commands.BaseCommand
	Branch  string
	Post    bool
	Yes     bool
	Message string
	NoAI    bool

	In     io.Reader
	Out    io.Writer
	ErrOut io.Writer
	now    func() time.Time
}

// NewUpdateCmd creates the update command
func NewUpdateCmd(globalConfigFile *string, loadConfig func(...string) (*cmd.Config, error)) *cobra.Command {
	updateCmd := &command{}

	builder := &commands.CommandBuilder{
		Use:   "update",
		Short: "Prepare or post a status update on the current branch's pull request",
		Long: `Update finds the pull request for the current branch and reports the work done
since the last update posted on it. The last update is located by a hidden marker
comment; without one the report covers everything since the pull request was opened.

With --post the update is added as a comment carrying a new marker, so the next
run picks up where this one ended. Posting is skipped when an identical update is
already on the pull request.`,
		ExampleUsage: []string{
			"pwm update",
			"pwm update --post --message \"Ready for review\"",
			"pwm update --branch feature/login --post --yes",
		},
	}

	cobraCmd := builder.BuildCommand(func(cobraCmd *cobra.Command, _ []string) error {
		updateCmd.ConfigFile = globalConfigFile
		updateCmd.LoadConfig = loadConfig
		if err := updateCmd.Init(cobraCmd.Context()); err != nil {
			return err
		}

		updateCmd.In = cobraCmd.InOrStdin()
		updateCmd.Out = cobraCmd.OutOrStdout()
		updateCmd.ErrOut = cobraCmd.ErrOrStderr()

		return updateCmd.Run(cobraCmd.Context())
	})

	cobraCmd.Flags().StringVarP(&updateCmd.Branch, "branch", "b", "", "Branch whose pull request receives the update (defaults to the current branch)")
	cobraCmd.Flags().BoolVarP(&updateCmd.Post, "post", "p", false, "Post the update as a pull request comment")
	cobraCmd.Flags().BoolVarP(&updateCmd.Yes, "yes", "y", false, "Post without asking for confirmation")
	cobraCmd.Flags().StringVarP(&updateCmd.Message, "message", "m", "", "Note placed above the generated report")
	cobraCmd.Flags().BoolVar(&updateCmd.NoAI, "no-ai", false, "Skip the AI narrative")

	return cobraCmd
}

// Run executes the update command
func (uc *command) Run(ctx context.Context) error {
	if err := uc.RequireGitHub(); err != nil {
		return err
	}

	branch := uc.Branch
	if branch == "" {
		current, err := uc.Repo.CurrentBranch(ctx)
		if err != nil {
			return fmt.Errorf("failed to determine current branch: %w", err)
		}
		branch = current
	}

	pr, err := uc.GitHubClient.FindPRForBranch(ctx, branch)
	if err != nil {
		return err
	}

	comments, err := uc.GitHubClient.GetIssueComments(ctx, pr.Number)
	if err != nil {
		return err
	}

	token := uc.Config.Update.MarkerToken
	since := pr.CreatedAt
	if marker, ok := activity.LastUpdate(github.Messages(comments), token); ok {
		since = marker.Timestamp
		slog.Info("Resuming from last update", "pr", pr.Number, "comment_id", marker.MessageID, "since", since.Format(time.RFC3339))
	} else {
		slog.Info("No previous update found, reporting since the PR was opened", "pr", pr.Number, "since", since.Format(time.RFC3339))
	}

	pipeline := uc.Pipeline(!uc.NoAI)
	pipeline.Now = uc.now
	render := func() (string, error) {
		report, err := pipeline.Run(ctx, activity.Request{Since: &since, Identity: uc.Config.Summary.Author()})
		if err != nil {
			return "", err
		}
		commands.DisplaySourceWarnings(uc.ErrOut, report)
		return buildBody(report, uc.Message, token, format.Options{
			ShowLinks:           uc.Config.Summary.ShowLinks,
			MaxCommitsPerBranch: uc.Config.Summary.MaxCommitsPerBranch,
		}), nil
	}

	body, err := render()
	if err != nil {
		return err
	}
	fmt.Fprint(uc.Out, body)

	if !uc.Post {
		return nil
	}
	return uc.postUpdate(ctx, pr, comments, body, token, render)
}

// postUpdate adds body as a comment unless the same update is already there.
// After an interactive confirmation the report is rendered again so it ends when the comment is created.
func (uc *command) postUpdate(ctx context.Context, pr *github.PR, comments []github.Comment, body, token string, render func() (string, error)) error {
	username, err := uc.GitHubClient.GetAuthenticatedUser(ctx)
	if err != nil {
		return err
	}

	if existing := findExistingComment(comments, username, body, token); existing != nil {
		fmt.Fprintf(uc.Out, "\nNo changes to post - comment %d on PR #%d is identical.\n", existing.ID, pr.Number)
		return nil
	}

	if !uc.Yes {
		fmt.Fprintf(uc.Out, "\nPost this update on PR #%d (%s)?\n", pr.Number, pr.Title)
		if !commands.ConfirmAction(uc.In, uc.Out, "Post comment?") {
			fmt.Fprintln(uc.Out, "Posting cancelled.")
			return nil
		}

		refreshed, err := render()
		if err != nil {
			return err
		}
		if refreshed != body {
			slog.Info("Activity changed while waiting for confirmation, posting the refreshed update", "pr", pr.Number)
		}
		body = refreshed
	}

	comment, err := uc.GitHubClient.CreateIssueComment(ctx, pr.Number, body)
	if err != nil {
		return err
	}

	slog.Info("Update posted", "pr", pr.Number, "comment_id", comment.ID)
	fmt.Fprintf(uc.Out, "\nUpdate posted on PR #%d: %s\n", pr.Number, pr.URL)
	return nil
}

// buildBody renders the update with the marker the next run resumes from
func buildBody(report *activity.Report, message, token string, opts format.Options) string {
	var b strings.Builder
	b.WriteString(activity.FormatMarker(token, activity.MarkerVersion))
	b.WriteString("\n")
	if message = strings.TrimSpace(message); message != "" {
		b.WriteString(message)
		b.WriteString("\n\n")
	}
	b.WriteString(format.Markdown(report, opts))
	return b.String()
}

// findExistingComment looks for a comment by username whose content, markers aside, matches body
func findExistingComment(comments []github.Comment, username, body, token string) *github.Comment {
	want := activity.StripMarkers(body, token)

	for i := range comments {
		comment := &comments[i]
		if comment.User == username && activity.StripMarkers(comment.Body, token) == want {
			return comment
		}
	}

	return nil
}
