// Package jira queries issue activity from a Jira project.
package jira

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	gojira "github.com/andygrunwald/go-jira"

	"github.com/alan/pwm/internal/activity"
)

// CurrentUser asks for issues assigned to the authenticated user
const CurrentUser = "@me"

const (
	jqlTimeLayout = "2006-01-02 15:04"
	pageSize      = 100
)

var searchFields = []string{"summary", "status", "created", "updated"}

// Client wraps the go-jira client for a single project
type Client struct {
	client     *gojira.Client
	baseURL    string
	projectKey string
	location   *time.Location
}

// NewClient creates a Jira client using basic auth with an API token
func NewClient(baseURL, email, token, projectKey string) (*Client, error) {
	tp := gojira.BasicAuthTransport{
		Username: email,
		Password: token,
	}

	client, err := gojira.NewClient(tp.Client(), baseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create Jira client: %w", err)
	}

	return &Client{
		client:     client,
		baseURL:    strings.TrimRight(baseURL, "/"),
		projectKey: projectKey,
	}, nil
}

// WithLocation sets the timezone JQL dates are written in. It must match the
// timezone of the Jira user's profile; nil means the local timezone.
func (c *Client) WithLocation(loc *time.Location) *Client {
	c.location = loc
	return c
}

func (c *Client) jqlTime(t time.Time) time.Time {
	if c.location == nil {
		return t.Local()
	}
	return t.In(c.location)
}

// CreatedSince returns project issues created at or after since
func (c *Client) CreatedSince(ctx context.Context, since time.Time, assignee string) ([]activity.IssueEvent, error) {
	return c.search(ctx, buildJQL(c.projectKey, "created", c.jqlTime(since), assignee))
}

// UpdatedSince returns project issues updated at or after since
func (c *Client) UpdatedSince(ctx context.Context, since time.Time, assignee string) ([]activity.IssueEvent, error) {
	return c.search(ctx, buildJQL(c.projectKey, "updated", c.jqlTime(since), assignee))
}

// Myself returns the display name of the authenticated user
func (c *Client) Myself(ctx context.Context) (string, error) {
	slog.Debug("Jira API: Getting current user")
	user, _, err := c.client.User.GetSelfWithContext(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to get current Jira user: %w", err)
	}
	if user.DisplayName != "" {
		return user.DisplayName, nil
	}
	return user.EmailAddress, nil
}

// buildJQL renders the project/time/assignee query ordered by the time field
func buildJQL(projectKey, field string, since time.Time, assignee string) string {
	clauses := []string{
		fmt.Sprintf("project = %s", quote(projectKey)),
		fmt.Sprintf("%s >= %s", field, quote(since.Format(jqlTimeLayout))),
	}

	switch assignee {
	case "":
	case CurrentUser:
		clauses = append(clauses, "assignee = currentUser()")
	default:
		clauses = append(clauses, "assignee = "+quote(assignee))
	}

	return strings.Join(clauses, " AND ") + " ORDER BY " + field + " DESC"
}

func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `\"`) + `"`
}

func (c *Client) search(ctx context.Context, jql string) ([]activity.IssueEvent, error) {
	if c.projectKey == "" {
		return nil, fmt.Errorf("%w: jira project_key not set", activity.ErrSourceUnconfigured)
	}

	opts := &gojira.SearchOptions{
		MaxResults: pageSize,
		Fields:     searchFields,
	}

	var events []activity.IssueEvent
	for {
		slog.Debug("Jira API: Searching issues", "jql", jql, "start_at", opts.StartAt)
		issues, resp, err := c.client.Issue.SearchWithContext(ctx, jql, opts)
		if err != nil {
			return nil, fmt.Errorf("failed to search Jira issues: %w", err)
		}

		for _, issue := range issues {
			events = append(events, c.toEvent(issue))
		}

		opts.StartAt += len(issues)
		if len(issues) == 0 || resp == nil || opts.StartAt >= resp.Total {
			break
		}
	}

	return events, nil
}

func (c *Client) toEvent(issue gojira.Issue) activity.IssueEvent {
	event := activity.IssueEvent{
		Key: issue.Key,
		URL: c.baseURL + "/browse/" + issue.Key,
	}
	if f := issue.Fields; f != nil {
		event.Summary = f.Summary
		event.CreatedAt = time.Time(f.Created)
		event.UpdatedAt = time.Time(f.Updated)
		if f.Status != nil {
			event.Status = f.Status.Name
		}
	}
	return event
}
