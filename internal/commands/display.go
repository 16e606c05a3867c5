package commands

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/alan/pwm/internal/activity"
	"github.com/alan/pwm/internal/format"
)

var (
	okColor      = color.New(color.FgGreen)
	warnColor    = color.New(color.FgYellow)
	failColor    = color.New(color.FgRed)
	skippedColor = color.New(color.Faint)
)

// ConfirmAction prompts on out and reads a yes/no answer from in
func ConfirmAction(in io.Reader, out io.Writer, prompt string) bool {
	fmt.Fprintf(out, "%s (y/N): ", prompt)

	reader := bufio.NewReader(in)
	response, err := reader.ReadString('\n')
	if err != nil && response == "" {
		return false
	}

	response = strings.TrimSpace(strings.ToLower(response))
	return response == "y" || response == "yes"
}

// DisplaySourceWarnings prints one line per failed source so a partial report is never silent
func DisplaySourceWarnings(w io.Writer, report *activity.Report) {
	for _, s := range report.Sources {
		if s.State != activity.SourceFailed {
			continue
		}
		warnColor.Fprintf(w, "⚠️  %s: %s\n", format.SourceLabel(s.Name), format.SourceLine(s))
	}
}

// StateLabel renders a source state for terminal output
func StateLabel(state activity.SourceState) string {
	switch state {
	case activity.SourceOK:
		return okColor.Sprint("ok")
	case activity.SourceFailed:
		return failColor.Sprint("failed")
	default:
		return skippedColor.Sprint("not configured")
	}
}
