package format

import (
	"fmt"
	"strings"

	"github.com/alan/pwm/internal/activity"
)

// Markdown renders the report as GitHub-flavored markdown
func Markdown(report *activity.Report, opts Options) string {
	var b strings.Builder

	b.WriteString("# Daily Work Summary\n")
	fmt.Fprintf(&b, "**Period:** %s\n\n", activity.FormatRange(report.Window))

	if report.Narrative != nil {
		fmt.Fprintf(&b, "## Summary\n%s\n\n", *report.Narrative)
	}

	if report.CommitCount > 0 {
		fmt.Fprintf(&b, "## Commits (%d)\n\n", report.CommitCount)
		for _, group := range report.Commits {
			fmt.Fprintf(&b, "### %s\n", group.Branch)
			shown, hidden := truncate(group.Commits, opts.maxCommits())
			for _, c := range shown {
				fmt.Fprintf(&b, "- `%s` %s\n", shortSHA(c.ID), c.Subject)
			}
			if hidden > 0 {
				fmt.Fprintf(&b, "- ... and %d more\n", hidden)
			}
			b.WriteString("\n")
		}
	}

	prs := report.PullRequests
	if len(prs.Opened)+len(prs.Merged)+len(prs.Closed) > 0 {
		b.WriteString("## Pull Requests\n\n")
		markdownPRs(&b, "Opened", prs.Opened, opts)
		markdownPRs(&b, "Merged", prs.Merged, opts)
		markdownPRs(&b, "Closed", prs.Closed, opts)
	}

	issues := report.Issues
	if len(issues.Created)+len(issues.Updated) > 0 {
		b.WriteString("## Issues\n\n")
		if len(issues.Created) > 0 {
			fmt.Fprintf(&b, "### Created (%d)\n", len(issues.Created))
			for _, issue := range issues.Created {
				fmt.Fprintf(&b, "- %s: %s\n", markdownLink(issue.Key, issue.URL, opts), issue.Summary)
			}
			b.WriteString("\n")
		}
		if len(issues.Updated) > 0 {
			fmt.Fprintf(&b, "### Updated (%d)\n", len(issues.Updated))
			for _, issue := range issues.Updated {
				fmt.Fprintf(&b, "- %s: %s → %s\n", markdownLink(issue.Key, issue.URL, opts), issue.Summary, statusName(issue.Status))
			}
			b.WriteString("\n")
		}
	}

	if report.Empty() {
		b.WriteString(noActivity + "\n\n")
	}

	b.WriteString("## Sources\n")
	for _, s := range report.Sources {
		fmt.Fprintf(&b, "- %s: %s\n", SourceLabel(s.Name), SourceLine(s))
	}

	return b.String()
}

func markdownPRs(b *strings.Builder, title string, prs []activity.PullRequestEvent, opts Options) {
	if len(prs) == 0 {
		return
	}
	fmt.Fprintf(b, "### %s (%d)\n", title, len(prs))
	for _, pr := range prs {
		fmt.Fprintf(b, "- %s %s\n", markdownLink(fmt.Sprintf("#%d", pr.Number), pr.URL, opts), pr.Title)
	}
	b.WriteString("\n")
}

func markdownLink(text, url string, opts Options) string {
	if !opts.ShowLinks || url == "" {
		return text
	}
	return fmt.Sprintf("[%s](%s)", text, url)
}

func statusName(status string) string {
	if status == "" {
		return "Unknown"
	}
	return status
}
