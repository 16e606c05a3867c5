package format

import (
	"fmt"
	"strings"

	"github.com/muesli/reflow/wordwrap"

	"github.com/alan/pwm/internal/activity"
)

const ruleWidth = 60

// Text renders the report as plain text
func Text(report *activity.Report, opts Options) string {
	var b strings.Builder
	heavy := strings.Repeat("=", ruleWidth)
	light := strings.Repeat("-", ruleWidth)

	fmt.Fprintf(&b, "%s\nDAILY WORK SUMMARY\n%s\n", heavy, heavy)
	fmt.Fprintf(&b, "Period: %s\n\n", activity.FormatRange(report.Window))

	if report.Narrative != nil {
		fmt.Fprintf(&b, "SUMMARY\n%s\n%s\n\n", light, wordwrap.String(*report.Narrative, opts.width()))
	}

	if report.CommitCount > 0 {
		fmt.Fprintf(&b, "COMMITS (%d)\n%s\n", report.CommitCount, light)
		for _, group := range report.Commits {
			fmt.Fprintf(&b, "%s:\n", group.Branch)
			shown, hidden := truncate(group.Commits, opts.maxCommits())
			for _, c := range shown {
				fmt.Fprintf(&b, "  • %s %s\n", shortSHA(c.ID), c.Subject)
			}
			if hidden > 0 {
				fmt.Fprintf(&b, "  ... and %d more\n", hidden)
			}
			b.WriteString("\n")
		}
	}

	prs := report.PullRequests
	if len(prs.Opened)+len(prs.Merged)+len(prs.Closed) > 0 {
		fmt.Fprintf(&b, "PULL REQUESTS\n%s\n", light)
		textPRs(&b, "Opened", prs.Opened, opts)
		textPRs(&b, "Merged", prs.Merged, opts)
		textPRs(&b, "Closed", prs.Closed, opts)
	}

	issues := report.Issues
	if len(issues.Created)+len(issues.Updated) > 0 {
		fmt.Fprintf(&b, "ISSUES\n%s\n", light)
		if len(issues.Created) > 0 {
			fmt.Fprintf(&b, "Created (%d):\n", len(issues.Created))
			for _, issue := range issues.Created {
				fmt.Fprintf(&b, "  • %s: %s%s\n", issue.Key, issue.Summary, textLink(issue.URL, opts))
			}
			b.WriteString("\n")
		}
		if len(issues.Updated) > 0 {
			fmt.Fprintf(&b, "Updated (%d):\n", len(issues.Updated))
			for _, issue := range issues.Updated {
				fmt.Fprintf(&b, "  • %s: %s → %s%s\n", issue.Key, issue.Summary, statusName(issue.Status), textLink(issue.URL, opts))
			}
			b.WriteString("\n")
		}
	}

	if report.Empty() {
		b.WriteString(noActivity + "\n\n")
	}

	fmt.Fprintf(&b, "SOURCES\n%s\n", light)
	for _, s := range report.Sources {
		fmt.Fprintf(&b, "  %s: %s\n", SourceLabel(s.Name), SourceLine(s))
	}
	b.WriteString(heavy + "\n")

	return b.String()
}

func textPRs(b *strings.Builder, title string, prs []activity.PullRequestEvent, opts Options) {
	if len(prs) == 0 {
		return
	}
	fmt.Fprintf(b, "%s (%d):\n", title, len(prs))
	for _, pr := range prs {
		fmt.Fprintf(b, "  • #%d %s%s\n", pr.Number, pr.Title, textLink(pr.URL, opts))
	}
	b.WriteString("\n")
}

func textLink(url string, opts Options) string {
	if !opts.ShowLinks || url == "" {
		return ""
	}
	return " <" + url + ">"
}
