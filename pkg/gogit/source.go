// Package gogit reads commit history through the embedded go-git
// library, for hosts without a usable git binary. It mirrors the
// behavior of pkg/git closely enough that callers cannot tell the two
// backends apart.
package gogit

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"

	"github.com/apocsb/Gitsidian/pkg/core"
)

// Source reads commit history from an opened repository.
type Source struct {
	repo   *gogit.Repository
	logger *slog.Logger
}

var _ core.History = (*Source)(nil)

// Open opens the repository at or above path, the same way the git
// binary discovers a work tree from a subdirectory.
func Open(path string, logger *slog.Logger) (*Source, error) {
	repo, err := gogit.PlainOpenWithOptions(path, &gogit.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, fmt.Errorf("%w: %s", core.ErrNotRepository, path)
	}
	return NewSource(repo, logger), nil
}

// NewSource returns a Source over an already-opened repository. The
// logger may be nil.
func NewSource(repo *gogit.Repository, logger *slog.Logger) *Source {
	return &Source{repo: repo, logger: logger}
}

// Branches lists local branch names, sorted.
func (s *Source) Branches(ctx context.Context) ([]string, error) {
	iter, err := s.repo.Branches()
	if err != nil {
		return nil, err
	}
	var branches []string
	err = iter.ForEach(func(r *plumbing.Reference) error {
		branches = append(branches, r.Name().Short())
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(branches)
	return branches, nil
}

// Commits returns the commits of branch after since (exclusive), oldest
// first. Range semantics match `git log since..branch`: everything
// reachable from the tip minus everything reachable from since. An
// empty result with a non-empty since (the branch is up to date, or
// the checkpoint got rebased away) degrades to the full history so
// note existence can decide what is new. limit > 0 keeps the oldest
// limit commits.
func (s *Source) Commits(ctx context.Context, branch, since string, includeMerges bool, limit int) ([]core.Commit, error) {
	since = strings.TrimSpace(since)

	tip, err := s.repo.ResolveRevision(plumbing.Revision(branch))
	if err != nil {
		return nil, fmt.Errorf("resolve branch %s: %w", branch, err)
	}

	var exclude map[plumbing.Hash]bool
	if since != "" {
		if h, err := s.repo.ResolveRevision(plumbing.Revision(since)); err == nil {
			exclude = s.ancestors(*h)
		} else if s.logger != nil {
			s.logger.Debug("checkpoint unresolvable, walking full history", "branch", branch, "since", since, "error", err)
		}
	}

	commits, err := s.walk(ctx, *tip, exclude, includeMerges)
	if err != nil {
		return nil, err
	}
	if len(commits) == 0 && len(exclude) > 0 {
		if s.logger != nil {
			s.logger.Debug("range empty, walking full history", "branch", branch, "since", since)
		}
		commits, err = s.walk(ctx, *tip, nil, includeMerges)
		if err != nil {
			return nil, err
		}
	}
	if limit > 0 && len(commits) > limit {
		commits = commits[:limit]
	}
	return commits, nil
}

// DiffStat returns a stat summary formatted like git's --stat output:
// per-file change bars plus the trailing summary line.
func (s *Source) DiffStat(ctx context.Context, sha string) (string, error) {
	patch, err := s.patch(ctx, sha)
	if err != nil {
		return "", err
	}
	stats := patch.Stats()
	if len(stats) == 0 {
		return "", nil
	}
	insertions, deletions := 0, 0
	for _, fs := range stats {
		insertions += fs.Addition
		deletions += fs.Deletion
	}
	return strings.TrimRight(stats.String(), "\n") + "\n" + shortStat(len(stats), insertions, deletions), nil
}

// Diff returns the full patch text of a commit against its first
// parent. go-git never applies textconv filters, so binary content
// already renders as a short marker and skipBinary has nothing extra
// to do here.
func (s *Source) Diff(ctx context.Context, sha string, skipBinary bool) (string, error) {
	patch, err := s.patch(ctx, sha)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(patch.String()), nil
}

// walk collects the commits reachable from tip that are not excluded,
// in git log's newest-first committer-time order, then flips them to
// oldest first.
func (s *Source) walk(ctx context.Context, tip plumbing.Hash, exclude map[plumbing.Hash]bool, includeMerges bool) ([]core.Commit, error) {
	iter, err := s.repo.Log(&gogit.LogOptions{From: tip, Order: gogit.LogOrderCommitterTime})
	if err != nil {
		return nil, err
	}
	defer iter.Close()

	var commits []core.Commit
	err = iter.ForEach(func(c *object.Commit) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if exclude[c.Hash] {
			return nil
		}
		if !includeMerges && c.NumParents() > 1 {
			return nil
		}
		commits = append(commits, toCommit(c))
		return nil
	})
	if err != nil {
		return nil, err
	}
	for i, j := 0, len(commits)-1; i < j; i, j = i+1, j-1 {
		commits[i], commits[j] = commits[j], commits[i]
	}
	return commits, nil
}

// ancestors returns every commit reachable from h, h included.
func (s *Source) ancestors(h plumbing.Hash) map[plumbing.Hash]bool {
	seen := make(map[plumbing.Hash]bool)
	queue := []plumbing.Hash{h}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		if seen[current] {
			continue
		}
		seen[current] = true
		c, err := s.repo.CommitObject(current)
		if err != nil {
			continue
		}
		queue = append(queue, c.ParentHashes...)
	}
	return seen
}

// patch computes the change of a commit against its first parent; a
// root commit diffs against the empty tree.
func (s *Source) patch(ctx context.Context, sha string) (*object.Patch, error) {
	h, err := s.repo.ResolveRevision(plumbing.Revision(sha))
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", sha, err)
	}
	c, err := s.repo.CommitObject(*h)
	if err != nil {
		return nil, fmt.Errorf("load commit %s: %w", sha, err)
	}
	tree, err := c.Tree()
	if err != nil {
		return nil, err
	}
	var parentTree *object.Tree
	if c.NumParents() > 0 {
		parent, err := c.Parent(0)
		if err != nil {
			return nil, err
		}
		parentTree, err = parent.Tree()
		if err != nil {
			return nil, err
		}
	}
	changes, err := object.DiffTreeWithOptions(ctx, parentTree, tree, object.DefaultDiffTreeOptions)
	if err != nil {
		return nil, err
	}
	return changes.PatchContext(ctx)
}

func toCommit(c *object.Commit) core.Commit {
	subject, _, _ := strings.Cut(c.Message, "\n")
	parents := make([]string, 0, len(c.ParentHashes))
	for _, p := range c.ParentHashes {
		parents = append(parents, p.String())
	}
	sha := c.Hash.String()
	return core.Commit{
		SHA:     sha,
		Short:   sha[:7],
		Author:  c.Author.Name,
		Email:   c.Author.Email,
		Date:    c.Author.When.Format(core.DateLayout),
		Subject: strings.TrimSpace(subject),
		Body:    strings.TrimRight(c.Message, " \t\r\n"),
		Parents: parents,
	}
}

func shortStat(files, insertions, deletions int) string {
	var b strings.Builder
	fmt.Fprintf(&b, " %d file%s changed", files, plural(files))
	if insertions > 0 || deletions == 0 {
		fmt.Fprintf(&b, ", %d insertion%s(+)", insertions, plural(insertions))
	}
	if deletions > 0 || insertions == 0 {
		fmt.Fprintf(&b, ", %d deletion%s(-)", deletions, plural(deletions))
	}
	return b.String()
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}
