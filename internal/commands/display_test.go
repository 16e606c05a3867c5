package commands

import (
	"bytes"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"

	"github.com/alan/pwm/internal/activity"
)

func TestConfirmAction(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  bool
	}{
		{name: "yes", input: "y\n", want: true},
		{name: "full yes", input: "YES\n", want: true},
		{name: "no", input: "n\n", want: false},
		{name: "empty line defaults to no", input: "\n", want: false},
		{name: "eof without newline", input: "y", want: true},
		{name: "no input", input: "", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			got := ConfirmAction(strings.NewReader(tt.input), &out, "Post comment?")
			assert.Equal(t, tt.want, got)
			assert.Equal(t, "Post comment? (y/N): ", out.String())
		})
	}
}

func TestDisplaySourceWarnings(t *testing.T) {
	color.NoColor = true

	report := &activity.Report{Sources: []activity.SourceStatus{
		{Name: activity.SourceCommits, State: activity.SourceOK, Count: 2},
		{Name: activity.SourcePullRequests, State: activity.SourceFailed, Reason: "401 Bad credentials"},
		{Name: activity.SourceIssues, State: activity.SourceNotConfigured},
	}}

	var out bytes.Buffer
	DisplaySourceWarnings(&out, report)
	assert.Equal(t, "⚠️  Pull requests: failed: 401 Bad credentials\n", out.String())
}

func TestStateLabel(t *testing.T) {
	color.NoColor = true

	assert.Equal(t, "ok", StateLabel(activity.SourceOK))
	assert.Equal(t, "failed", StateLabel(activity.SourceFailed))
	assert.Equal(t, "not configured", StateLabel(activity.SourceNotConfigured))
}
