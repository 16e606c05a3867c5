// Package narrative turns collected activity into a short prose summary
// by piping a prompt through a user-configured AI command.
package narrative

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
	"time"

	"github.com/alan/pwm/internal/activity"
)

// DefaultTimeout bounds one narrative command run
const DefaultTimeout = 60 * time.Second

// MaxPromptCommits caps how many commits are listed in a prompt
const MaxPromptCommits = 10

// maxBodyLength is the longest commit body included verbatim
const maxBodyLength = 200

// ErrEmptyNarrative is returned when the command prints nothing
var ErrEmptyNarrative = errors.New("narrative command produced no output")

const systemPrompt = `You are helping generate concise status updates for development work.
Keep it brief (2-3 sentences) and focus on user-facing changes or key technical improvements.
Be specific about what was accomplished.
Don't use unnecessary adjectives, filler words, or superlatives.
Keep it dry, professional, and to the point.`

// CommandNarrator runs an external command with the prompt on stdin and uses its stdout
type CommandNarrator struct {
	Command string
	Args    []string
	Timeout time.Duration
}

// Summarize implements activity.Narrator
func (n *CommandNarrator) Summarize(ctx context.Context, input activity.NarrativeInput) (string, error) {
	if n.Command == "" {
		return "", fmt.Errorf("AI command not configured. Set it using: pwm config --ai-command <command>")
	}

	timeout := n.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	prompt := BuildPrompt(input)

	slog.Debug("Running narrative command", "command", n.Command, "args", n.Args, "prompt_bytes", len(prompt))
	cmd := exec.CommandContext(ctx, n.Command, n.Args...) //nolint:gosec // AI command is user-configured
	cmd.Stdin = strings.NewReader(prompt)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.WaitDelay = time.Second

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return "", fmt.Errorf("%s timed out after %s: %w", n.Command, timeout, ctx.Err())
		}
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return "", fmt.Errorf("%s failed: %w: %s", n.Command, err, msg)
		}
		return "", fmt.Errorf("%s failed: %w", n.Command, err)
	}

	text := strings.TrimSpace(stdout.String())
	if text == "" {
		return "", ErrEmptyNarrative
	}
	return text, nil
}

// BuildPrompt renders the narrative prompt for one window of activity
func BuildPrompt(input activity.NarrativeInput) string {
	var b strings.Builder

	b.WriteString(systemPrompt)
	b.WriteString("\n\nSummarize this work in 2-3 sentences for a daily status update.\n")
	fmt.Fprintf(&b, "Period: %s\n", activity.FormatRange(input.Window))

	prs := input.PullRequests
	if len(prs.Opened)+len(prs.Merged)+len(prs.Closed) > 0 {
		b.WriteString("\nPull requests:\n")
		writePRs(&b, "opened", prs.Opened)
		writePRs(&b, "merged", prs.Merged)
		writePRs(&b, "closed", prs.Closed)
	}

	issues := input.Issues
	if len(issues.Created)+len(issues.Updated) > 0 {
		b.WriteString("\nIssues:\n")
		for _, issue := range issues.Created {
			fmt.Fprintf(&b, "- created %s: %s\n", issue.Key, issue.Summary)
		}
		for _, issue := range issues.Updated {
			fmt.Fprintf(&b, "- updated %s: %s (%s)\n", issue.Key, issue.Summary, issue.Status)
		}
	}

	b.WriteString("\nCommits:\n")
	b.WriteString(formatCommits(input.Commits, MaxPromptCommits))
	b.WriteString("\n\nStatus update:\n")

	return b.String()
}

func writePRs(b *strings.Builder, verb string, prs []activity.PullRequestEvent) {
	for _, pr := range prs {
		fmt.Fprintf(b, "- %s #%d %s\n", verb, pr.Number, pr.Title)
	}
}

func formatCommits(commits []activity.Commit, limit int) string {
	if len(commits) == 0 {
		return "(no commits)"
	}

	var lines []string
	for i, c := range commits {
		if i == limit {
			lines = append(lines, fmt.Sprintf("... and %d more commits", len(commits)-limit))
			break
		}
		lines = append(lines, "- "+c.Subject)
		if body := strings.TrimSpace(c.Body); body != "" && len(body) < maxBodyLength {
			lines = append(lines, "  "+body)
		}
	}
	return strings.Join(lines, "\n")
}
