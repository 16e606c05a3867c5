// Package git reads commit history from a local repository through the git CLI.
package git

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"regexp"
	"strings"
	"time"

	"github.com/alan/pwm/internal/activity"
)

// CurrentUser asks for commits by the configured git user.name
const CurrentUser = "@me"

const (
	fieldSep  = "\x1f"
	recordSep = "\x1e"
	logFormat = "--format=%H%x1f%s%x1f%b%x1f%aI%x1f%an%x1e"
)

// ErrNotRepository is returned when the directory is not inside a work tree
var ErrNotRepository = errors.New("not in a git repository")

// Repo runs git commands against one working directory
type Repo struct {
	dir string
}

// Open returns a Repo for dir; an empty dir means the process working directory
func Open(dir string) *Repo {
	return &Repo{dir: dir}
}

func (r *Repo) run(ctx context.Context, args ...string) (string, error) {
	slog.Debug("git: running command", "args", args, "dir", r.dir)

	cmd := exec.CommandContext(ctx, "git", args...) //nolint:gosec // Arguments are built from fixed flags
	cmd.Dir = r.dir
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	out, err := cmd.Output()
	if err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return "", fmt.Errorf("git %s failed: %w: %s", args[0], err, msg)
		}
		return "", fmt.Errorf("git %s failed: %w", args[0], err)
	}
	return string(out), nil
}

// IsRepository reports whether the directory is inside a git work tree
func (r *Repo) IsRepository(ctx context.Context) bool {
	out, err := r.run(ctx, "rev-parse", "--is-inside-work-tree")
	return err == nil && strings.TrimSpace(out) == "true"
}

// Since returns commits reachable from branches, remote-tracking branches or tags
// authored at or after since. Stash entries are not work and are left out.
// An author of "@me" resolves to git config user.name; an empty author disables the filter.
func (r *Repo) Since(ctx context.Context, since time.Time, author string) ([]activity.Commit, error) {
	if !r.IsRepository(ctx) {
		return nil, fmt.Errorf("%w: %w", activity.ErrSourceUnconfigured, ErrNotRepository)
	}

	if author == CurrentUser {
		name, err := r.UserName(ctx)
		if err != nil {
			return nil, err
		}
		author = name
	}

	args := []string{"log", "--branches", "--remotes", "--tags", "--since=" + since.Format(time.RFC3339), logFormat}
	if author != "" {
		args = append(args, "--fixed-strings", "--author="+author)
	}

	out, err := r.run(ctx, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to read commit history: %w", err)
	}

	commits, err := parseLog(out)
	if err != nil {
		return nil, err
	}

	// --since filters on committer date; the window is defined by author date
	filtered := commits[:0]
	for _, c := range commits {
		if !c.Timestamp.Before(since) {
			filtered = append(filtered, c)
		}
	}
	return filtered, nil
}

// BranchesContaining returns the branches that reach the commit.
// A remote-tracking branch is listed only when no local branch of the same name reaches it.
func (r *Repo) BranchesContaining(ctx context.Context, commitID string) ([]string, error) {
	out, err := r.run(ctx, "for-each-ref", "--contains", commitID,
		"--format=%(refname)%09%(symref)", "refs/heads", "refs/remotes")
	if err != nil {
		return nil, fmt.Errorf("failed to list branches containing %s: %w", commitID, err)
	}
	return parseContainingRefs(out), nil
}

func parseContainingRefs(out string) []string {
	var local, remote []string
	localNames := make(map[string]bool)

	for _, line := range parseLines(out) {
		ref, symref, _ := strings.Cut(line, "\t")
		if symref != "" {
			continue
		}
		if name, ok := strings.CutPrefix(ref, "refs/heads/"); ok {
			local = append(local, name)
			localNames[name] = true
		} else if name, ok := strings.CutPrefix(ref, "refs/remotes/"); ok {
			remote = append(remote, name)
		}
	}

	branches := local
	for _, name := range remote {
		if _, branch, ok := strings.Cut(name, "/"); ok && localNames[branch] {
			continue
		}
		branches = append(branches, name)
	}
	return branches
}

// CurrentBranch gets the checked out branch name
func (r *Repo) CurrentBranch(ctx context.Context) (string, error) {
	out, err := r.run(ctx, "branch", "--show-current")
	if err != nil {
		return "", err
	}

	branch := strings.TrimSpace(out)
	if branch == "" {
		return "", fmt.Errorf("unable to determine current branch")
	}
	return branch, nil
}

// UserName returns git config user.name
func (r *Repo) UserName(ctx context.Context) (string, error) {
	out, err := r.run(ctx, "config", "user.name")
	if err != nil {
		return "", fmt.Errorf("git user.name is not set: %w", err)
	}
	name := strings.TrimSpace(out)
	if name == "" {
		return "", fmt.Errorf("git user.name is not set")
	}
	return name, nil
}

// RemoteRepo extracts org and repo from the URL of the named remote
func (r *Repo) RemoteRepo(ctx context.Context, remote string) (string, string, error) {
	out, err := r.run(ctx, "remote", "get-url", remote)
	if err != nil {
		return "", "", fmt.Errorf("failed to get URL of remote %s: %w", remote, err)
	}
	return ParseRemoteURL(strings.TrimSpace(out))
}

var (
	scpRemote = regexp.MustCompile(`^[\w.-]+@[\w.-]+:(.+?)(?:\.git)?/?$`)
	urlRemote = regexp.MustCompile(`^(?:https?|ssh|git)://(?:[^@/]+@)?[^/]+/(.+?)(?:\.git)?/?$`)
)

// ParseRemoteURL extracts org and repo from SSH and HTTPS remote URLs
func ParseRemoteURL(remoteURL string) (string, string, error) {
	var path string
	if m := scpRemote.FindStringSubmatch(remoteURL); m != nil {
		path = m[1]
	} else if m := urlRemote.FindStringSubmatch(remoteURL); m != nil {
		path = m[1]
	}

	parts := strings.Split(path, "/")
	if len(parts) < 2 || parts[len(parts)-2] == "" || parts[len(parts)-1] == "" {
		return "", "", fmt.Errorf("unable to parse remote URL: %s", remoteURL)
	}
	return parts[len(parts)-2], parts[len(parts)-1], nil
}

func parseLog(out string) ([]activity.Commit, error) {
	var commits []activity.Commit
	for record := range strings.SplitSeq(out, recordSep) {
		record = strings.TrimLeft(record, "\n")
		if strings.TrimSpace(record) == "" {
			continue
		}

		fields := strings.Split(record, fieldSep)
		if len(fields) != 5 {
			return nil, fmt.Errorf("unexpected git log record with %d fields", len(fields))
		}

		ts, err := time.Parse(time.RFC3339, strings.TrimSpace(fields[3]))
		if err != nil {
			return nil, fmt.Errorf("invalid date for commit %s: %w", fields[0], err)
		}

		commits = append(commits, activity.Commit{
			ID:        fields[0],
			Subject:   fields[1],
			Body:      strings.TrimSpace(fields[2]),
			Timestamp: ts,
			Author:    strings.TrimSpace(fields[4]),
		})
	}
	return commits, nil
}

func parseLines(out string) []string {
	var lines []string
	for line := range strings.SplitSeq(out, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "(HEAD detached") {
			continue
		}
		lines = append(lines, line)
	}
	return lines
}
