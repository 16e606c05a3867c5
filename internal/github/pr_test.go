package github

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alan/pwm/internal/activity"
)

var since = time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)

func TestBuildSearchQuery(t *testing.T) {
	tests := []struct {
		name       string
		author     string
		qualifiers []string
		expected   string
	}{
		{
			name:       "created without author",
			qualifiers: []string{"created:>=2025-01-10T00:00:00Z"},
			expected:   "repo:acme/widgets is:pr created:>=2025-01-10T00:00:00Z",
		},
		{
			name:       "merged with author",
			author:     "alice",
			qualifiers: []string{"is:merged", "merged:>=2025-01-10T00:00:00Z"},
			expected:   "repo:acme/widgets is:pr is:merged merged:>=2025-01-10T00:00:00Z author:alice",
		},
		{
			name:       "current user",
			author:     "@me",
			qualifiers: []string{"is:closed", "is:unmerged"},
			expected:   "repo:acme/widgets is:pr is:closed is:unmerged author:@me",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, buildSearchQuery("acme", "widgets", tt.author, tt.qualifiers...))
		})
	}
}

func TestFormatSearchTime(t *testing.T) {
	local := time.Date(2025, 1, 10, 0, 0, 0, 0, time.FixedZone("CET", 3600))
	assert.Equal(t, "2025-01-09T23:00:00Z", formatSearchTime(local))
}

func searchHandler(t *testing.T, results map[string]string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query().Get("q")
		for marker, body := range results {
			if strings.Contains(q, marker) {
				fmt.Fprint(w, body)
				return
			}
		}
		t.Errorf("unexpected search query %q", q)
		http.Error(w, "unexpected", http.StatusBadRequest)
	}
}

func TestCreatedSince(t *testing.T) {
	var gotQuery string
	mux := http.NewServeMux()
	mux.HandleFunc("/search/issues", func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("q")
		assert.Equal(t, "created", r.URL.Query().Get("sort"))
		fmt.Fprint(w, `{"total_count": 2, "items": [
			{"number": 5, "title": "Add widget", "html_url": "https://github.com/acme/widgets/pull/5",
			 "user": {"login": "alice"}, "created_at": "2025-01-10T09:00:00Z", "pull_request": {"url": "x"}},
			{"number": 6, "title": "an issue", "created_at": "2025-01-10T10:00:00Z"}
		]}`)
	})
	client := newTestClient(t, mux)

	prs, err := client.CreatedSince(context.Background(), since, "@me")
	require.NoError(t, err)

	assert.Equal(t, "repo:acme/widgets is:pr created:>=2025-01-10T00:00:00Z author:@me", gotQuery)
	require.Len(t, prs, 1)
	assert.Equal(t, activity.PullRequestEvent{
		Number:    5,
		Title:     "Add widget",
		URL:       "https://github.com/acme/widgets/pull/5",
		Author:    "alice",
		CreatedAt: time.Date(2025, 1, 10, 9, 0, 0, 0, time.UTC),
	}, prs[0])
}

func TestClosedSince(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/search/issues", searchHandler(t, map[string]string{
		"is:merged": `{"items": [{"number": 1, "title": "merged", "created_at": "2025-01-02T09:00:00Z",
			"closed_at": "2025-01-11T09:00:00Z", "pull_request": {"url": "x"}}]}`,
		"is:unmerged": `{"items": [{"number": 2, "title": "abandoned", "created_at": "2025-01-03T09:00:00Z",
			"closed_at": "2025-01-12T09:00:00Z", "pull_request": {"url": "x"}}]}`,
	}))
	mux.HandleFunc("/repos/acme/widgets/pulls/1", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"number": 1, "merged_at": "2025-01-11T08:59:00Z"}`)
	})
	client := newTestClient(t, mux)

	prs, err := client.ClosedSince(context.Background(), since, "")
	require.NoError(t, err)

	require.Len(t, prs, 2)
	require.NotNil(t, prs[0].MergedAt)
	assert.Equal(t, time.Date(2025, 1, 11, 8, 59, 0, 0, time.UTC), *prs[0].MergedAt)
	assert.Nil(t, prs[1].MergedAt)
	require.NotNil(t, prs[1].ClosedAt)
	assert.Equal(t, time.Date(2025, 1, 12, 9, 0, 0, 0, time.UTC), *prs[1].ClosedAt)
}

func TestClosedSince_SearchError(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/search/issues", func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"message": "Bad credentials"}`, http.StatusUnauthorized)
	})
	client := newTestClient(t, mux)

	_, err := client.ClosedSince(context.Background(), since, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to search PRs")
}

func TestPullRequestSource_RequiresRepository(t *testing.T) {
	client := NewClient(context.Background(), "t")

	_, err := client.CreatedSince(context.Background(), since, "")
	assert.True(t, errors.Is(err, activity.ErrSourceUnconfigured))

	_, err = client.ClosedSince(context.Background(), since, "")
	assert.True(t, errors.Is(err, activity.ErrSourceUnconfigured))
}

func TestFindPRForBranch(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/repos/acme/widgets/pulls", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "acme:feature/x", r.URL.Query().Get("head"))
		assert.Equal(t, "all", r.URL.Query().Get("state"))
		if r.URL.Query().Get("head") == "acme:feature/x" {
			fmt.Fprint(w, `[{"number": 12, "title": "Feature X", "state": "open",
				"html_url": "https://github.com/acme/widgets/pull/12", "created_at": "2025-01-06T10:00:00Z"}]`)
			return
		}
		fmt.Fprint(w, `[]`)
	})
	client := newTestClient(t, mux)

	pr, err := client.FindPRForBranch(context.Background(), "feature/x")
	require.NoError(t, err)
	assert.Equal(t, 12, pr.Number)
	assert.Equal(t, "open", pr.State)
	assert.Equal(t, time.Date(2025, 1, 6, 10, 0, 0, 0, time.UTC), pr.CreatedAt)
}

func TestFindPRForBranch_None(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/repos/acme/widgets/pulls", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `[]`)
	})
	client := newTestClient(t, mux)

	_, err := client.FindPRForBranch(context.Background(), "nope")
	assert.True(t, errors.Is(err, ErrNoPullRequest))
}
