package activity

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Narrator produces a narrative summary for a report. Failures are never fatal.
type Narrator interface {
	Summarize(ctx context.Context, input NarrativeInput) (string, error)
}

// NarrativeInput is the structured data handed to a Narrator
type NarrativeInput struct {
	Window       TimeWindow
	Commits      []Commit
	PullRequests PRBuckets
	Issues       IssueBuckets
}

// NarrativeInputFrom extracts narrator input from an assembled report
func NarrativeInputFrom(report *Report) NarrativeInput {
	input := NarrativeInput{
		Window:       report.Window,
		PullRequests: report.PullRequests,
		Issues:       report.Issues,
	}

	seen := make(map[string]bool)
	for _, group := range report.Commits {
		for _, c := range group.Commits {
			if seen[c.ID] {
				continue
			}
			seen[c.ID] = true
			input.Commits = append(input.Commits, c)
		}
	}
	sortCommits(input.Commits)

	return input
}

// Empty reports whether there is nothing to summarize
func (in NarrativeInput) Empty() bool {
	return len(in.Commits) == 0 &&
		len(in.PullRequests.Opened) == 0 && len(in.PullRequests.Merged) == 0 && len(in.PullRequests.Closed) == 0 &&
		len(in.Issues.Created) == 0 && len(in.Issues.Updated) == 0
}

// Request describes one aggregation run
type Request struct {
	// Since overrides the business-day window start
	Since *time.Time
	// Identity is passed verbatim to every source; empty means no filter
	Identity string
}

// Pipeline wires window resolution, collection, classification and assembly
type Pipeline struct {
	Sources  Sources
	Narrator Narrator
	Options  CollectOptions
	Now      func() time.Time
}

// Run produces a report. Only an invalid window is returned as an error;
// source and narrative failures are recorded in the report instead.
func (p *Pipeline) Run(ctx context.Context, req Request) (*Report, error) {
	now := time.Now
	if p.Now != nil {
		now = p.Now
	}

	window, err := ResolveWindow(now(), req.Since)
	if err != nil {
		return nil, err
	}

	runID := uuid.NewString()
	logger := slog.With("run_id", runID)
	logger.Info("Collecting work activity", "start", window.Start.Format(time.RFC3339), "end", window.End.Format(time.RFC3339), "identity", req.Identity)

	bundle := Collect(ctx, window, req.Identity, p.Sources, p.Options)

	// branch lookups share one source timeout; lookups past it leave commits unassigned
	lookupCtx, cancel := context.WithTimeout(ctx, p.Options.timeout())
	classified := ClassifyCommits(bundle.Commits.Items, LookupBranches(lookupCtx, p.Sources.Commits))
	cancel()

	report := Assemble(window, bundle, classified, nil)
	if p.Narrator == nil {
		logger.Debug("Narrative skipped, no narrator configured")
		return &report, nil
	}

	input := NarrativeInputFrom(&report)
	if input.Empty() {
		logger.Debug("Narrative skipped, no activity")
		return &report, nil
	}

	narrative, err := p.Narrator.Summarize(ctx, input)
	if err != nil {
		logger.Warn("Narrative generation failed, continuing without it", "error", err)
		return &report, nil
	}

	report = Assemble(window, bundle, classified, &narrative)
	return &report, nil
}
