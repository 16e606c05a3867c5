// Package format renders activity reports as markdown or plain text.
package format

import (
	"errors"
	"fmt"
	"strings"

	"github.com/natefinch/atomic"

	"github.com/alan/pwm/internal/activity"
)

// Output formats
const (
	FormatMarkdown = "markdown"
	FormatText     = "text"
)

const (
	// DefaultMaxCommitsPerBranch limits each branch listing
	DefaultMaxCommitsPerBranch = 10
	// DefaultWidth is the wrap width for plain text narratives
	DefaultWidth = 80

	shortSHALength = 7
	noActivity     = "No work activity found for this period."
)

// ErrUnknownFormat is returned for a format other than markdown or text
var ErrUnknownFormat = errors.New("unknown output format")

// Options controls rendering
type Options struct {
	// ShowLinks renders PR and issue URLs
	ShowLinks bool
	// MaxCommitsPerBranch truncates long branch listings; negative means unlimited
	MaxCommitsPerBranch int
	// Width wraps the plain text narrative
	Width int
}

func (o Options) maxCommits() int {
	if o.MaxCommitsPerBranch == 0 {
		return DefaultMaxCommitsPerBranch
	}
	return o.MaxCommitsPerBranch
}

func (o Options) width() int {
	if o.Width <= 0 {
		return DefaultWidth
	}
	return o.Width
}

// Render dispatches on the format name
func Render(format string, report *activity.Report, opts Options) (string, error) {
	switch format {
	case FormatMarkdown, "md", "":
		return Markdown(report, opts), nil
	case FormatText, "txt":
		return Text(report, opts), nil
	default:
		return "", fmt.Errorf("%w: %q (expected %s or %s)", ErrUnknownFormat, format, FormatMarkdown, FormatText)
	}
}

// WriteFile atomically replaces path with content
func WriteFile(path, content string) error {
	if err := atomic.WriteFile(path, strings.NewReader(content)); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// SourceLine describes how a source fared, e.g. "queried (3)" or "failed: timeout"
func SourceLine(s activity.SourceStatus) string {
	switch s.State {
	case activity.SourceOK:
		if s.Count == 0 {
			return "empty"
		}
		return fmt.Sprintf("queried (%d)", s.Count)
	case activity.SourceFailed:
		if s.Reason == "" {
			return "failed"
		}
		return "failed: " + s.Reason
	default:
		return "not configured"
	}
}

var sourceLabels = map[string]string{
	activity.SourceCommits:      "Commits",
	activity.SourcePullRequests: "Pull requests",
	activity.SourceIssues:       "Issues",
}

// SourceLabel returns the display name of a source
func SourceLabel(name string) string {
	if label, ok := sourceLabels[name]; ok {
		return label
	}
	return name
}

func shortSHA(id string) string {
	if len(id) > shortSHALength {
		return id[:shortSHALength]
	}
	return id
}

// truncate returns at most limit commits and how many were left out
func truncate(commits []activity.Commit, limit int) ([]activity.Commit, int) {
	if limit < 0 || len(commits) <= limit {
		return commits, 0
	}
	return commits[:limit], len(commits) - limit
}
