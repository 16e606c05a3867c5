package github

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/go-github/v57/github"

	"github.com/alan/pwm/internal/activity"
)

const searchTimeLayout = "2006-01-02T15:04:05Z"

// CreatedSince returns pull requests opened at or after since.
// An author of "@me" is understood natively by the search API.
func (c *Client) CreatedSince(ctx context.Context, since time.Time, author string) ([]activity.PullRequestEvent, error) {
	if err := c.requireRepository(); err != nil {
		return nil, err
	}

	query := buildSearchQuery(c.org, c.repo, author, "created:>="+formatSearchTime(since))
	issues, err := c.searchPRs(ctx, query, "created")
	if err != nil {
		return nil, err
	}

	// merged_at is left to ClosedSince, which sees every PR closed after since
	prs := make([]activity.PullRequestEvent, 0, len(issues))
	for _, issue := range issues {
		prs = append(prs, eventFromIssue(issue))
	}
	return prs, nil
}

// ClosedSince returns pull requests merged or closed at or after since
func (c *Client) ClosedSince(ctx context.Context, since time.Time, author string) ([]activity.PullRequestEvent, error) {
	if err := c.requireRepository(); err != nil {
		return nil, err
	}

	ts := formatSearchTime(since)

	merged, err := c.searchPRs(ctx, buildSearchQuery(c.org, c.repo, author, "is:merged", "merged:>="+ts), "updated")
	if err != nil {
		return nil, err
	}
	closed, err := c.searchPRs(ctx, buildSearchQuery(c.org, c.repo, author, "is:closed", "is:unmerged", "closed:>="+ts), "updated")
	if err != nil {
		return nil, err
	}

	prs := make([]activity.PullRequestEvent, 0, len(merged)+len(closed))
	for _, issue := range merged {
		pr := eventFromIssue(issue)
		if err := c.fillMergedAt(ctx, &pr); err != nil {
			return nil, err
		}
		prs = append(prs, pr)
	}
	for _, issue := range closed {
		prs = append(prs, eventFromIssue(issue))
	}
	return prs, nil
}

// FindPRForBranch returns the most recently updated PR whose head is branch, in any state
func (c *Client) FindPRForBranch(ctx context.Context, branch string) (*PR, error) {
	if err := c.requireRepository(); err != nil {
		return nil, err
	}

	opts := &github.PullRequestListOptions{
		State:     "all",
		Head:      c.org + ":" + branch,
		Sort:      "updated",
		Direction: "desc",
		ListOptions: github.ListOptions{
			PerPage: 10,
		},
	}

	slog.Debug("GitHub API: Listing pull requests", "org", c.org, "repo", c.repo, "head", branch, "state", "all")
	prs, _, err := c.client.PullRequests.List(ctx, c.org, c.repo, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list pull requests for branch %s: %w", branch, err)
	}
	if len(prs) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoPullRequest, branch)
	}

	pr := prs[0]
	return &PR{
		Number:    pr.GetNumber(),
		Title:     pr.GetTitle(),
		URL:       pr.GetHTMLURL(),
		State:     pr.GetState(),
		CreatedAt: pr.GetCreatedAt().Time,
	}, nil
}

func (c *Client) requireRepository() error {
	if c.org == "" || c.repo == "" {
		return fmt.Errorf("%w: github org/repo not set", activity.ErrSourceUnconfigured)
	}
	return nil
}

// fillMergedAt loads merged_at, which search results do not carry
func (c *Client) fillMergedAt(ctx context.Context, pr *activity.PullRequestEvent) error {
	slog.Debug("GitHub API: Getting PR", "org", c.org, "repo", c.repo, "pr", pr.Number)
	details, _, err := c.client.PullRequests.Get(ctx, c.org, c.repo, pr.Number)
	if err != nil {
		return fmt.Errorf("failed to fetch PR #%d: %w", pr.Number, err)
	}
	if details.MergedAt != nil {
		mergedAt := details.GetMergedAt().Time
		pr.MergedAt = &mergedAt
	}
	return nil
}

// buildSearchQuery constructs a repository-scoped pull request search query
func buildSearchQuery(org, repo, author string, qualifiers ...string) string {
	parts := []string{fmt.Sprintf("repo:%s/%s", org, repo), "is:pr"}
	parts = append(parts, qualifiers...)
	if author != "" {
		parts = append(parts, "author:"+author)
	}
	return strings.Join(parts, " ")
}

func formatSearchTime(t time.Time) string {
	return t.UTC().Format(searchTimeLayout)
}

// searchPRs executes a search query and returns the matching pull requests
func (c *Client) searchPRs(ctx context.Context, query, sort string) ([]*github.Issue, error) {
	opts := &github.SearchOptions{
		Sort:  sort,
		Order: "desc",
		ListOptions: github.ListOptions{
			PerPage: 100,
		},
	}

	var all []*github.Issue
	for page := 0; page < maxSearchPages; page++ {
		slog.Debug("GitHub API: Searching issues/PRs", "query", query, "page", opts.Page)
		result, resp, err := c.client.Search.Issues(ctx, query, opts)
		if err != nil {
			return nil, fmt.Errorf("failed to search PRs: %w", err)
		}

		slog.Debug("GitHub search results", "total_count", result.GetTotal(), "returned_count", len(result.Issues), "page", opts.Page)

		for _, issue := range result.Issues {
			if !issue.IsPullRequest() {
				slog.Debug("Skipping non-PR issue", "number", issue.GetNumber())
				continue
			}
			all = append(all, issue)
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return all, nil
}

func eventFromIssue(issue *github.Issue) activity.PullRequestEvent {
	pr := activity.PullRequestEvent{
		Number:    issue.GetNumber(),
		Title:     issue.GetTitle(),
		URL:       issue.GetHTMLURL(),
		Author:    issue.GetUser().GetLogin(),
		CreatedAt: issue.GetCreatedAt().Time,
	}
	if issue.ClosedAt != nil {
		closedAt := issue.GetClosedAt().Time
		pr.ClosedAt = &closedAt
	}
	return pr
}
