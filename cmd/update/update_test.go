package update

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alan/pwm/cmd"
	"github.com/alan/pwm/internal/activity"
	"github.com/alan/pwm/internal/commands"
	"github.com/alan/pwm/internal/github"
)

func mondayNoon() time.Time {
	return time.Date(2025, 1, 13, 12, 0, 0, 0, time.UTC)
}

type fakeComment struct {
	ID        int64  `json:"id"`
	Body      string `json:"body"`
	CreatedAt string `json:"created_at"`
	User      struct {
		Login string `json:"login"`
	} `json:"user"`
}

func newFakeComment(id int64, login, body, createdAt string) fakeComment {
	c := fakeComment{ID: id, Body: body, CreatedAt: createdAt}
	c.User.Login = login
	return c
}

// fakeGitHub serves a single PR #12 for branch feature/login
type fakeGitHub struct {
	mu       sync.Mutex
	comments []fakeComment
	posted   []string
	noPR     bool
}

func (f *fakeGitHub) client(t *testing.T) *github.Client {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/repos/acme/widgets/pulls", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "acme:feature/login", r.URL.Query().Get("head"))
		assert.Equal(t, "all", r.URL.Query().Get("state"))
		if f.noPR {
			fmt.Fprint(w, `[]`)
			return
		}
		fmt.Fprint(w, `[{"number":12,"title":"Login page","html_url":"https://github.com/acme/widgets/pull/12","state":"open","created_at":"2025-01-09T10:00:00Z"}]`)
	})
	mux.HandleFunc("/repos/acme/widgets/issues/12/comments", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()

		if r.Method == http.MethodPost {
			var input struct {
				Body string `json:"body"`
			}
			require.NoError(t, json.NewDecoder(r.Body).Decode(&input))
			f.posted = append(f.posted, input.Body)
			w.WriteHeader(http.StatusCreated)
			fmt.Fprint(w, `{"id":99,"body":"posted","user":{"login":"alice"},"created_at":"2025-01-13T12:00:00Z"}`)
			return
		}
		require.NoError(t, json.NewEncoder(w).Encode(f.comments))
	})
	mux.HandleFunc("/search/issues", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"total_count":0,"items":[]}`)
	})
	mux.HandleFunc("/user", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"login":"alice"}`)
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	client, err := github.NewClient(context.Background(), "test-token").WithBaseURL(server.URL)
	require.NoError(t, err)
	return client.WithRepository("acme", "widgets")
}

func newTestCommand(t *testing.T, gh *fakeGitHub, input string) (*command, *bytes.Buffer) {
	t.Helper()
	color.NoColor = true

	var out bytes.Buffer
	uc := &command{
		BaseCommand: commands.BaseCommand{
			Context: context.Background(),
			Config:  cmd.Default(),
		},
		Branch: "feature/login",
		In:     strings.NewReader(input),
		Out:    &out,
		ErrOut: io.Discard,
		now:    mondayNoon,
	}
	if gh != nil {
		uc.GitHubClient = gh.client(t)
	}
	return uc, &out
}

const previousUpdate = "<!-- pwm:work-end v1.0.0 -->\n# Daily Work Summary\n"

func TestRun_NoMarkerReportsSincePROpened(t *testing.T) {
	uc, out := newTestCommand(t, &fakeGitHub{}, "")

	require.NoError(t, uc.Run(context.Background()))

	got := out.String()
	assert.True(t, strings.HasPrefix(got, "<!-- pwm:work-end v1.0.0 -->\n# Daily Work Summary\n"), got)
	assert.Contains(t, got, "**Period:** Thursday, Jan 09 2025 10:00 - Monday, Jan 13 2025 12:00")
}

func TestRun_ResumesFromLastMarker(t *testing.T) {
	gh := &fakeGitHub{comments: []fakeComment{
		newFakeComment(1, "alice", previousUpdate, "2025-01-10T17:00:00Z"),
		newFakeComment(2, "bob", "LGTM", "2025-01-13T09:00:00Z"),
		newFakeComment(3, "alice", previousUpdate, "2025-01-13T08:00:00Z"),
	}}
	uc, out := newTestCommand(t, gh, "")

	require.NoError(t, uc.Run(context.Background()))
	assert.Contains(t, out.String(), "**Period:** Monday, Jan 13 2025 08:00 - Monday, Jan 13 2025 12:00")
	assert.Empty(t, gh.posted, "nothing is posted without --post")
}

func TestRun_Message(t *testing.T) {
	uc, out := newTestCommand(t, &fakeGitHub{}, "")
	uc.Message = "  Ready for review  "

	require.NoError(t, uc.Run(context.Background()))
	assert.True(t, strings.HasPrefix(out.String(), "<!-- pwm:work-end v1.0.0 -->\nReady for review\n\n# Daily Work Summary\n"))
}

func TestRun_PostWithYes(t *testing.T) {
	gh := &fakeGitHub{}
	uc, out := newTestCommand(t, gh, "")
	uc.Post = true
	uc.Yes = true

	require.NoError(t, uc.Run(context.Background()))

	require.Len(t, gh.posted, 1)
	marker, ok := activity.LastUpdate([]activity.Message{{ID: 99, Body: gh.posted[0], CreatedAt: mondayNoon()}}, activity.DefaultMarkerToken)
	require.True(t, ok, "posted update must carry a marker")
	assert.Equal(t, "1.0.0", marker.Version.String())
	assert.Contains(t, out.String(), "Update posted on PR #12: https://github.com/acme/widgets/pull/12")
}

func TestRun_PostConfirmation(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		wantPosted int
	}{
		{name: "confirmed", input: "y\n", wantPosted: 1},
		{name: "declined", input: "n\n", wantPosted: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gh := &fakeGitHub{}
			uc, out := newTestCommand(t, gh, tt.input)
			uc.Post = true

			require.NoError(t, uc.Run(context.Background()))
			assert.Len(t, gh.posted, tt.wantPosted)
			assert.Contains(t, out.String(), "Post this update on PR #12 (Login page)?")
		})
	}
}

func TestRun_PostAfterConfirmationCoversTheWait(t *testing.T) {
	gh := &fakeGitHub{}
	uc, out := newTestCommand(t, gh, "y\n")
	uc.Post = true

	calls := 0
	uc.now = func() time.Time {
		calls++
		if calls == 1 {
			return mondayNoon()
		}
		return mondayNoon().Add(5 * time.Minute)
	}

	require.NoError(t, uc.Run(context.Background()))

	assert.Contains(t, out.String(), "- Monday, Jan 13 2025 12:00\n", "preview ends when it was rendered")
	require.Len(t, gh.posted, 1)
	assert.Contains(t, gh.posted[0], "- Monday, Jan 13 2025 12:05\n", "posted update ends at confirmation")
}

func TestRun_PostSkipsIdenticalUpdate(t *testing.T) {
	gh := &fakeGitHub{comments: []fakeComment{
		newFakeComment(1, "alice", previousUpdate, "2025-01-13T08:00:00Z"),
	}}

	first, out := newTestCommand(t, gh, "")
	require.NoError(t, first.Run(context.Background()))
	body := out.String()

	// an earlier attempt landed without its marker line
	gh.comments = append(gh.comments, newFakeComment(2, "alice", activity.StripMarkers(body, activity.DefaultMarkerToken), "2025-01-13T07:00:00Z"))

	retry, out := newTestCommand(t, gh, "")
	retry.Post = true
	retry.Yes = true

	require.NoError(t, retry.Run(context.Background()))
	assert.Empty(t, gh.posted)
	assert.Contains(t, out.String(), "No changes to post - comment 2 on PR #12 is identical.")
}

func TestRun_NoPullRequest(t *testing.T) {
	uc, _ := newTestCommand(t, &fakeGitHub{noPR: true}, "")

	err := uc.Run(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, github.ErrNoPullRequest))
}

func TestRun_GitHubNotConfigured(t *testing.T) {
	uc, _ := newTestCommand(t, nil, "")

	err := uc.Run(context.Background())
	assert.ErrorContains(t, err, "github is not configured")
}

func TestFindExistingComment(t *testing.T) {
	token := activity.DefaultMarkerToken
	body := activity.FormatMarker(token, activity.MarkerVersion) + "\n# Daily Work Summary\n- work\n"

	tests := []struct {
		name     string
		comments []github.Comment
		wantID   int64
	}{
		{
			name:     "same content without marker",
			comments: []github.Comment{{ID: 5, User: "alice", Body: "# Daily Work Summary\n- work"}},
			wantID:   5,
		},
		{
			name:     "same content with older marker",
			comments: []github.Comment{{ID: 6, User: "alice", Body: "<!-- pwm:work-end -->\n# Daily Work Summary\n- work\n"}},
			wantID:   6,
		},
		{
			name:     "different author",
			comments: []github.Comment{{ID: 7, User: "bob", Body: body}},
		},
		{
			name:     "different content",
			comments: []github.Comment{{ID: 8, User: "alice", Body: "# Daily Work Summary\n- other work"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := findExistingComment(tt.comments, "alice", body, token)
			if tt.wantID == 0 {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, tt.wantID, got.ID)
		})
	}
}
