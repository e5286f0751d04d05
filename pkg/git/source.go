package git

import (
	"context"
	"log/slog"
	"sort"
	"strings"

	"github.com/apocsb/Gitsidian/pkg/core"
)

// Record and field separators for log parsing: commit messages may
// contain anything printable, so the format leans on the ASCII unit and
// record separator characters instead of newlines.
const (
	fieldSep = "\x1f"
	recSep   = "\x1e"
)

// logFormat yields sha, short sha, author, email, author date, subject,
// body and parents per commit.
const logFormat = "%H%x1f%h%x1f%an%x1f%ae%x1f%ai%x1f%s%x1f%B%x1f%P%x1e"

// Runner abstracts command execution so history parsing is testable
// without a git binary.
type Runner interface {
	Run(ctx context.Context, args ...string) (string, error)
}

// Source reads commit history through the git binary.
type Source struct {
	git    Runner
	logger *slog.Logger
}

var _ core.History = (*Source)(nil)

// NewSource returns a Source reading from the given runner. The logger
// may be nil.
func NewSource(git Runner, logger *slog.Logger) *Source {
	return &Source{git: git, logger: logger}
}

// Branches lists local branch names, sorted.
func (s *Source) Branches(ctx context.Context) ([]string, error) {
	out, err := s.git.Run(ctx, "for-each-ref", "--format=%(refname:short)", "refs/heads")
	if err != nil {
		return nil, err
	}
	var branches []string
	for _, line := range strings.Split(out, "\n") {
		if b := strings.TrimSpace(line); b != "" {
			branches = append(branches, b)
		}
	}
	sort.Strings(branches)
	return branches, nil
}

// Commits returns the commits of branch after since (exclusive), oldest
// first. When since is no longer in the branch's ancestry (rebase,
// force push), or the branch is simply up to date, the range query
// comes back empty, and the full history is walked instead so note
// existence can decide what is new. limit > 0 keeps the oldest limit
// commits; git's own -n keeps the newest because it applies before
// --reverse, so truncation happens here after parsing.
func (s *Source) Commits(ctx context.Context, branch, since string, includeMerges bool, limit int) ([]core.Commit, error) {
	since = strings.TrimSpace(since)

	if since != "" {
		out, err := s.git.Run(ctx, logArgs(since+".."+branch, includeMerges)...)
		if err == nil {
			if commits := parseLog(out); len(commits) > 0 {
				return truncate(commits, limit), nil
			}
		}
		if s.logger != nil {
			s.logger.Debug("range query empty, walking full history", "branch", branch, "since", since, "error", err)
		}
	}

	out, err := s.git.Run(ctx, logArgs(branch, includeMerges)...)
	if err != nil {
		return nil, err
	}
	return truncate(parseLog(out), limit), nil
}

// DiffStat returns the stat summary of a single commit, trimmed. When
// `git show --stat` fails or prints nothing, the explicit sha^! diff is
// tried before giving up.
func (s *Source) DiffStat(ctx context.Context, sha string) (string, error) {
	out, err := s.git.Run(ctx, "show", "--no-color", "--stat", "--format=", sha)
	if err == nil {
		if stat := strings.TrimSpace(out); stat != "" {
			return stat, nil
		}
	}
	out2, err2 := s.git.Run(ctx, "diff", "--no-color", "--stat", "--no-ext-diff", sha+"^!")
	if err2 != nil {
		if err == nil {
			// show succeeded with no output: an empty commit, not a
			// failure.
			return "", nil
		}
		return "", err
	}
	return strings.TrimSpace(out2), nil
}

// Diff returns the full patch of a commit, trimmed. skipBinary disables
// textconv so binary payloads stay a one-line marker instead of being
// converted into text.
func (s *Source) Diff(ctx context.Context, sha string, skipBinary bool) (string, error) {
	args := []string{"show", "--no-color", "--format=", sha}
	if skipBinary {
		args = []string{"show", "--no-textconv", "--no-color", "--format=", sha}
	}
	out, err := s.git.Run(ctx, args...)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

func logArgs(target string, includeMerges bool) []string {
	args := []string{"log", target, "--pretty=format:" + logFormat, "--reverse"}
	if !includeMerges {
		args = append(args, "--no-merges")
	}
	return args
}

// parseLog splits raw log output into commits. Records end with the
// record separator; git additionally joins format entries with a
// newline, which the per-record trim removes. Records with missing
// fields are skipped rather than failing the whole batch.
func parseLog(out string) []core.Commit {
	var commits []core.Commit
	for _, rec := range strings.Split(out, recSep) {
		rec = strings.TrimSpace(rec)
		if rec == "" {
			continue
		}
		fields := strings.Split(rec, fieldSep)
		if len(fields) < 8 {
			continue
		}
		commits = append(commits, core.Commit{
			SHA:     strings.TrimSpace(fields[0]),
			Short:   strings.TrimSpace(fields[1]),
			Author:  strings.TrimSpace(fields[2]),
			Email:   strings.TrimSpace(fields[3]),
			Date:    strings.TrimSpace(fields[4]),
			Subject: strings.TrimSpace(fields[5]),
			Body:    strings.TrimRight(fields[6], " \t\r\n"),
			Parents: strings.Fields(fields[7]),
		})
	}
	return commits
}

// truncate keeps the oldest limit commits of an oldest-first slice.
func truncate(commits []core.Commit, limit int) []core.Commit {
	if limit > 0 && len(commits) > limit {
		return commits[:limit]
	}
	return commits
}
