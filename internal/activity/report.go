package activity

import "sort"

// Assemble merges a bundle and its classified commits into a report.
// It performs no I/O and identical inputs always yield identical reports.
func Assemble(window TimeWindow, bundle Bundle, classified map[string][]Commit, narrative *string) Report {
	report := Report{
		Window:       window,
		Commits:      orderBranches(classified),
		PullRequests: ClassifyPullRequests(window, bundle.PullRequests.Items),
		Issues:       ClassifyIssues(window, bundle.Issues.Items),
	}

	unique := make(map[string]bool)
	for _, group := range report.Commits {
		for _, c := range group.Commits {
			unique[c.ID] = true
		}
	}
	report.CommitCount = len(unique)

	report.Sources = []SourceStatus{
		sourceStatus(SourceCommits, bundle.Commits, report.CommitCount),
		sourceStatus(SourcePullRequests, bundle.PullRequests, len(bundle.PullRequests.Items)),
		sourceStatus(SourceIssues, bundle.Issues, len(bundle.Issues.Items)),
	}

	if narrative != nil && *narrative != "" {
		text := *narrative
		report.Narrative = &text
	}

	return report
}

func sourceStatus[T any](name string, result SourceResult[T], count int) SourceStatus {
	state := result.State
	if state == "" {
		state = SourceNotConfigured
	}
	if state != SourceOK {
		count = 0
	}
	return SourceStatus{
		Name:   name,
		State:  state,
		Reason: result.Reason(),
		Count:  count,
	}
}

// orderBranches sorts branch groups by name with the unassigned group last
func orderBranches(classified map[string][]Commit) []BranchCommits {
	names := make([]string, 0, len(classified))
	for name, commits := range classified {
		if name == UnassignedBranch || len(commits) == 0 {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)

	groups := make([]BranchCommits, 0, len(classified))
	for _, name := range names {
		groups = append(groups, BranchCommits{Branch: name, Commits: copyCommits(classified[name])})
	}
	if unassigned := classified[UnassignedBranch]; len(unassigned) > 0 {
		groups = append(groups, BranchCommits{Branch: UnassignedBranch, Commits: copyCommits(unassigned)})
	}
	return groups
}

func copyCommits(commits []Commit) []Commit {
	out := make([]Commit, len(commits))
	copy(out, commits)
	sortCommits(out)
	return out
}
