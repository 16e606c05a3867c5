package activity

import (
	"context"
	"log/slog"
	"sort"
	"time"
)

// BranchLookup returns the branches containing a commit
type BranchLookup func(commitID string) []string

// LookupBranches adapts a CommitSource into a BranchLookup.
// Lookup failures leave the commit unassigned.
func LookupBranches(ctx context.Context, source CommitSource) BranchLookup {
	return func(commitID string) []string {
		if source == nil {
			return nil
		}
		branches, err := source.BranchesContaining(ctx, commitID)
		if err != nil {
			slog.Warn("Failed to look up branches for commit", "commit", commitID, "error", err)
			return nil
		}
		return branches
	}
}

// ClassifyCommits groups commits under every branch that contains them.
// Commits on no branch go under UnassignedBranch. Each group is ordered newest first.
func ClassifyCommits(commits []Commit, lookup BranchLookup) map[string][]Commit {
	groups := make(map[string][]Commit)
	seen := make(map[string]bool, len(commits))

	for _, commit := range commits {
		if seen[commit.ID] {
			continue
		}
		seen[commit.ID] = true

		var branches []string
		if lookup != nil {
			branches = lookup(commit.ID)
		}
		if len(branches) == 0 {
			groups[UnassignedBranch] = append(groups[UnassignedBranch], commit)
			continue
		}

		placed := make(map[string]bool, len(branches))
		for _, branch := range branches {
			if branch == "" || placed[branch] {
				continue
			}
			placed[branch] = true
			groups[branch] = append(groups[branch], commit)
		}
		if len(placed) == 0 {
			groups[UnassignedBranch] = append(groups[UnassignedBranch], commit)
		}
	}

	for branch := range groups {
		sortCommits(groups[branch])
	}

	return groups
}

func sortCommits(commits []Commit) {
	sort.SliceStable(commits, func(i, j int) bool {
		if !commits[i].Timestamp.Equal(commits[j].Timestamp) {
			return commits[i].Timestamp.After(commits[j].Timestamp)
		}
		return commits[i].ID < commits[j].ID
	})
}

// ClassifyPullRequests sorts pull requests into opened, merged and closed buckets.
// Merged and closed are exclusive; a PR opened and merged in the window appears in both opened and merged.
func ClassifyPullRequests(window TimeWindow, prs []PullRequestEvent) PRBuckets {
	var buckets PRBuckets

	for _, pr := range prs {
		switch {
		case pr.MergedAt != nil:
			buckets.Merged = append(buckets.Merged, pr)
		case pr.ClosedAt != nil && window.Contains(*pr.ClosedAt):
			buckets.Closed = append(buckets.Closed, pr)
		}
		if window.Contains(pr.CreatedAt) {
			buckets.Opened = append(buckets.Opened, pr)
		}
	}

	sortPRs(buckets.Opened, func(pr PullRequestEvent) time.Time { return pr.CreatedAt })
	sortPRs(buckets.Merged, func(pr PullRequestEvent) time.Time { return *pr.MergedAt })
	sortPRs(buckets.Closed, func(pr PullRequestEvent) time.Time { return *pr.ClosedAt })

	return buckets
}

func sortPRs(prs []PullRequestEvent, when func(PullRequestEvent) time.Time) {
	sort.SliceStable(prs, func(i, j int) bool {
		ti, tj := when(prs[i]), when(prs[j])
		if !ti.Equal(tj) {
			return ti.After(tj)
		}
		return prs[i].Number < prs[j].Number
	})
}

// ClassifyIssues sorts issues into created and updated buckets.
// Creation takes precedence, so an issue is never reported in both.
func ClassifyIssues(window TimeWindow, issues []IssueEvent) IssueBuckets {
	var buckets IssueBuckets

	for _, issue := range issues {
		switch {
		case !issue.CreatedAt.Before(window.Start):
			buckets.Created = append(buckets.Created, issue)
		case !issue.UpdatedAt.Before(window.Start):
			buckets.Updated = append(buckets.Updated, issue)
		}
	}

	sortIssues(buckets.Created, func(i IssueEvent) time.Time { return i.CreatedAt })
	sortIssues(buckets.Updated, func(i IssueEvent) time.Time { return i.UpdatedAt })

	return buckets
}

func sortIssues(issues []IssueEvent, when func(IssueEvent) time.Time) {
	sort.SliceStable(issues, func(i, j int) bool {
		ti, tj := when(issues[i]), when(issues[j])
		if !ti.Equal(tj) {
			return ti.After(tj)
		}
		return issues[i].Key < issues[j].Key
	})
}

// mergePullRequests unions created-since and closed-since results by number.
// Entries from the closed list win because they carry ClosedAt and MergedAt.
func mergePullRequests(created, closed []PullRequestEvent) []PullRequestEvent {
	byNumber := make(map[int]PullRequestEvent, len(created)+len(closed))
	for _, pr := range created {
		byNumber[pr.Number] = pr
	}
	for _, pr := range closed {
		if existing, ok := byNumber[pr.Number]; ok {
			if pr.ClosedAt == nil {
				pr.ClosedAt = existing.ClosedAt
			}
			if pr.MergedAt == nil {
				pr.MergedAt = existing.MergedAt
			}
		}
		byNumber[pr.Number] = pr
	}

	merged := make([]PullRequestEvent, 0, len(byNumber))
	for _, pr := range byNumber {
		merged = append(merged, pr)
	}
	sort.Slice(merged, func(i, j int) bool { return merged[i].Number < merged[j].Number })
	return merged
}

// mergeIssues unions created-since and updated-since results by key, keeping the later update
func mergeIssues(created, updated []IssueEvent) []IssueEvent {
	byKey := make(map[string]IssueEvent, len(created)+len(updated))
	for _, list := range [][]IssueEvent{created, updated} {
		for _, issue := range list {
			if existing, ok := byKey[issue.Key]; ok && existing.UpdatedAt.After(issue.UpdatedAt) {
				continue
			}
			byKey[issue.Key] = issue
		}
	}

	merged := make([]IssueEvent, 0, len(byKey))
	for _, issue := range byKey {
		merged = append(merged, issue)
	}
	sort.Slice(merged, func(i, j int) bool { return merged[i].Key < merged[j].Key })
	return merged
}
