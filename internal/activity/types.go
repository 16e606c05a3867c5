// Package activity aggregates commits, pull request events and issue tracker activity
// for a time window into a single report.
package activity

import "time"

// UnassignedBranch is the bucket for commits no branch reaches
const UnassignedBranch = "(unassigned)"

// TimeWindow bounds every source query. Start is inclusive, End is the resolution time.
type TimeWindow struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether t falls inside the window, both ends inclusive
func (w TimeWindow) Contains(t time.Time) bool {
	return !t.Before(w.Start) && !t.After(w.End)
}

// Commit represents a version-control commit
type Commit struct {
	ID        string
	Subject   string
	Body      string
	Timestamp time.Time
	Author    string
}

// PullRequestEvent represents a pull request and its lifecycle timestamps
type PullRequestEvent struct {
	Number    int
	Title     string
	URL       string
	Author    string
	CreatedAt time.Time
	ClosedAt  *time.Time
	MergedAt  *time.Time
}

// IssueEvent represents an issue tracker item
type IssueEvent struct {
	Key       string
	Summary   string
	Status    string
	URL       string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// SourceState is the outcome of querying one source
type SourceState string

const (
	// SourceNotConfigured indicates the source has no credentials or target
	SourceNotConfigured SourceState = "not_configured"
	// SourceFailed indicates a configured source failed at call time
	SourceFailed SourceState = "failed"
	// SourceOK indicates the source was queried successfully
	SourceOK SourceState = "ok"
)

// SourceResult holds one source's data together with how the query went
type SourceResult[T any] struct {
	State SourceState
	Err   error
	Items []T
}

// Reason returns the failure reason, or an empty string when the source did not fail
func (r SourceResult[T]) Reason() string {
	if r.State != SourceFailed || r.Err == nil {
		return ""
	}
	return r.Err.Error()
}

// Bundle is the raw output of one collection run
type Bundle struct {
	Commits      SourceResult[Commit]
	PullRequests SourceResult[PullRequestEvent]
	Issues       SourceResult[IssueEvent]
}

// PRBuckets groups pull requests by lifecycle event
type PRBuckets struct {
	Opened []PullRequestEvent
	Merged []PullRequestEvent
	Closed []PullRequestEvent
}

// IssueBuckets groups issues by activity
type IssueBuckets struct {
	Created []IssueEvent
	Updated []IssueEvent
}

// BranchCommits is the ordered commit list for one branch
type BranchCommits struct {
	Branch  string
	Commits []Commit
}

// SourceStatus describes a source in the rendered report
type SourceStatus struct {
	Name   string
	State  SourceState
	Reason string
	Count  int
}

// Report is the assembled work summary
type Report struct {
	Window       TimeWindow
	Sources      []SourceStatus
	Commits      []BranchCommits
	CommitCount  int
	PullRequests PRBuckets
	Issues       IssueBuckets
	Narrative    *string
}

// Empty reports whether no activity was found in any source
func (r *Report) Empty() bool {
	return r.CommitCount == 0 &&
		len(r.PullRequests.Opened) == 0 && len(r.PullRequests.Merged) == 0 && len(r.PullRequests.Closed) == 0 &&
		len(r.Issues.Created) == 0 && len(r.Issues.Updated) == 0
}

// Source returns the status entry for the named source
func (r *Report) Source(name string) (SourceStatus, bool) {
	for _, s := range r.Sources {
		if s.Name == name {
			return s, true
		}
	}
	return SourceStatus{}, false
}
