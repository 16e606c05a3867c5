package github

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/go-github/v57/github"
)

// GetIssueComments retrieves all comments for a specific issue or pull request
func (c *Client) GetIssueComments(ctx context.Context, issueNumber int) ([]Comment, error) {
	comments, err := paginatedList(func(page int) ([]*github.IssueComment, *github.Response, error) {
		opts := &github.IssueListCommentsOptions{
			ListOptions: github.ListOptions{
				PerPage: 100,
				Page:    page,
			},
		}
		slog.Debug("GitHub API: Listing issue comments", "org", c.org, "repo", c.repo, "issue", issueNumber, "page", page)
		return c.client.Issues.ListComments(ctx, c.org, c.repo, issueNumber, opts)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list issue comments: %w", err)
	}

	allComments := make([]Comment, 0, len(comments))
	for _, comment := range comments {
		allComments = append(allComments, toComment(comment))
	}
	return allComments, nil
}

// CreateIssueComment creates a new comment on an issue or pull request
func (c *Client) CreateIssueComment(ctx context.Context, issueNumber int, body string) (*Comment, error) {
	commentInput := &github.IssueComment{
		Body: github.String(body),
	}

	slog.Debug("GitHub API: Creating issue comment", "org", c.org, "repo", c.repo, "issue", issueNumber)
	comment, _, err := c.client.Issues.CreateComment(ctx, c.org, c.repo, issueNumber, commentInput)
	if err != nil {
		return nil, fmt.Errorf("failed to create comment: %w", err)
	}

	created := toComment(comment)
	return &created, nil
}

// GetAuthenticatedUser returns the login name of the authenticated user
func (c *Client) GetAuthenticatedUser(ctx context.Context) (string, error) {
	slog.Debug("GitHub API: Getting authenticated user")
	user, _, err := c.client.Users.Get(ctx, "")
	if err != nil {
		return "", fmt.Errorf("failed to get authenticated user: %w", err)
	}

	return user.GetLogin(), nil
}

func toComment(comment *github.IssueComment) Comment {
	return Comment{
		ID:        comment.GetID(),
		Body:      comment.GetBody(),
		User:      comment.GetUser().GetLogin(),
		CreatedAt: comment.GetCreatedAt().Time,
		UpdatedAt: comment.GetUpdatedAt().Time,
	}
}
