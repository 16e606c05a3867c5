package github

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/google/go-github/v57/github"
	"golang.org/x/oauth2"
)

// maxSearchPages caps search pagination; the search API stops at 1000 results
const maxSearchPages = 10

// Client wraps the GitHub API client for a single repository
type Client struct {
	client *github.Client
	org    string
	repo   string
}

// NewClient creates a new GitHub client with token authentication
func NewClient(ctx context.Context, token string) *Client {
	ts := oauth2.StaticTokenSource(
		&oauth2.Token{AccessToken: token},
	)
	tc := oauth2.NewClient(ctx, ts)

	return &Client{
		client: github.NewClient(tc),
	}
}

// WithBaseURL points the client at a GitHub Enterprise API root
func (c *Client) WithBaseURL(baseURL string) (*Client, error) {
	if baseURL == "" {
		return c, nil
	}
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid GitHub base URL %q: %w", baseURL, err)
	}
	c.client.BaseURL = u
	return c, nil
}

// WithRepository scopes the client to org/repo
func (c *Client) WithRepository(org, repo string) *Client {
	c.org = org
	c.repo = repo
	return c
}

// Repository returns the configured "org/repo" slug
func (c *Client) Repository() string {
	return c.org + "/" + c.repo
}

// paginatedList collects every page of a list endpoint
func paginatedList[T any](fetch func(page int) ([]T, *github.Response, error)) ([]T, error) {
	var all []T
	page := 1
	for {
		items, resp, err := fetch(page)
		if err != nil {
			return nil, err
		}
		all = append(all, items...)

		if resp == nil || resp.NextPage == 0 {
			break
		}
		page = resp.NextPage
	}
	return all, nil
}
