package activity

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"
)

// Source names used in reports and logs
const (
	SourceCommits      = "commits"
	SourcePullRequests = "pull_requests"
	SourceIssues       = "issues"
)

// DefaultSourceTimeout bounds each source fetch
const DefaultSourceTimeout = 30 * time.Second

// CommitSource queries version-control history
type CommitSource interface {
	Since(ctx context.Context, since time.Time, author string) ([]Commit, error)
	BranchesContaining(ctx context.Context, commitID string) ([]string, error)
}

// PullRequestSource queries the code host for pull request events
type PullRequestSource interface {
	CreatedSince(ctx context.Context, since time.Time, author string) ([]PullRequestEvent, error)
	// ClosedSince includes merged pull requests
	ClosedSince(ctx context.Context, since time.Time, author string) ([]PullRequestEvent, error)
}

// IssueSource queries the issue tracker
type IssueSource interface {
	CreatedSince(ctx context.Context, since time.Time, assignee string) ([]IssueEvent, error)
	UpdatedSince(ctx context.Context, since time.Time, assignee string) ([]IssueEvent, error)
}

// Sources holds the collaborators for one run. A nil field means the source is not configured.
type Sources struct {
	Commits      CommitSource
	PullRequests PullRequestSource
	Issues       IssueSource
}

// CollectOptions tunes a collection run
type CollectOptions struct {
	SourceTimeout time.Duration
}

func (o CollectOptions) timeout() time.Duration {
	if o.SourceTimeout <= 0 {
		return DefaultSourceTimeout
	}
	return o.SourceTimeout
}

// Collect fetches all three sources concurrently and waits for every fetch to settle.
// Source failures are recorded on the bundle and never abort the other fetches.
func Collect(ctx context.Context, window TimeWindow, identity string, sources Sources, opts CollectOptions) Bundle {
	timeout := opts.timeout()

	var bundle Bundle
	var g errgroup.Group

	g.Go(func() error {
		bundle.Commits = fetch(ctx, SourceCommits, timeout, sources.Commits != nil, func(ctx context.Context) ([]Commit, error) {
			return sources.Commits.Since(ctx, window.Start, identity)
		})
		return nil
	})

	g.Go(func() error {
		bundle.PullRequests = fetch(ctx, SourcePullRequests, timeout, sources.PullRequests != nil, func(ctx context.Context) ([]PullRequestEvent, error) {
			created, err := sources.PullRequests.CreatedSince(ctx, window.Start, identity)
			if err != nil {
				return nil, fmt.Errorf("failed to fetch created pull requests: %w", err)
			}
			closed, err := sources.PullRequests.ClosedSince(ctx, window.Start, identity)
			if err != nil {
				return nil, fmt.Errorf("failed to fetch closed pull requests: %w", err)
			}
			return mergePullRequests(created, closed), nil
		})
		return nil
	})

	g.Go(func() error {
		bundle.Issues = fetch(ctx, SourceIssues, timeout, sources.Issues != nil, func(ctx context.Context) ([]IssueEvent, error) {
			created, err := sources.Issues.CreatedSince(ctx, window.Start, identity)
			if err != nil {
				return nil, fmt.Errorf("failed to fetch created issues: %w", err)
			}
			updated, err := sources.Issues.UpdatedSince(ctx, window.Start, identity)
			if err != nil {
				return nil, fmt.Errorf("failed to fetch updated issues: %w", err)
			}
			return mergeIssues(created, updated), nil
		})
		return nil
	})

	// Every task returns nil; failures live in the result slots.
	_ = g.Wait()

	return bundle
}

// fetch runs one source query under its own timeout and maps the outcome to a SourceResult
func fetch[T any](ctx context.Context, name string, timeout time.Duration, configured bool, query func(context.Context) ([]T, error)) SourceResult[T] {
	if !configured {
		slog.Debug("Source not configured, skipping", "source", name)
		return SourceResult[T]{State: SourceNotConfigured}
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	type outcome struct {
		items []T
		err   error
	}
	done := make(chan outcome, 1)

	start := time.Now()
	go func() {
		items, err := query(ctx)
		done <- outcome{items: items, err: err}
	}()

	// A source that ignores ctx is abandoned once the deadline passes; fetches are read-only.
	var items []T
	var err error
	select {
	case out := <-done:
		items, err = out.items, out.err
	case <-ctx.Done():
		err = fmt.Errorf("%s fetch abandoned: %w", name, ctx.Err())
	}

	if err != nil {
		if errors.Is(err, ErrSourceUnconfigured) {
			slog.Debug("Source reported itself unconfigured", "source", name)
			return SourceResult[T]{State: SourceNotConfigured}
		}
		slog.Warn("Source fetch failed", "source", name, "error", err, "elapsed", time.Since(start))
		return SourceResult[T]{State: SourceFailed, Err: err}
	}

	slog.Debug("Source fetch completed", "source", name, "count", len(items), "elapsed", time.Since(start))
	return SourceResult[T]{State: SourceOK, Items: items}
}
