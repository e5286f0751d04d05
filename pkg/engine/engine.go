// Package engine drives sync runs. Per branch it decides the commit
// window from the saved checkpoint, materializes new notes, backfills
// diff content into existing ones, and rebuilds the branch index. The
// run is fully synchronous: branches strictly in order, commits within
// a branch strictly oldest first, because checkpoint advancement
// depends on that order.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/apocsb/Gitsidian/pkg/core"
	"github.com/apocsb/Gitsidian/pkg/vault"
)

// Engine orchestrates sync runs for one repository. History supplies
// commits and diffs, Vault owns the note tree.
type Engine struct {
	History core.History
	Vault   *vault.Vault
	Options core.Options
	RepoID  string
	Logger  *slog.Logger
}

// New returns an Engine. The logger may be nil.
func New(history core.History, v *vault.Vault, opts core.Options, repoID string, logger *slog.Logger) *Engine {
	return &Engine{
		History: history,
		Vault:   v,
		Options: opts,
		RepoID:  repoID,
		Logger:  logger,
	}
}

// Run syncs every branch matched by the selectors, reading each
// branch's checkpoint from last. It returns one summary per completed
// branch; a summary's Checkpoint field carries the advanced checkpoint
// for the caller to persist once after the whole run. A branch whose
// step fails is logged and skipped, the others still complete.
func (e *Engine) Run(ctx context.Context, selectors []string, last map[string]string) ([]core.BranchSummary, error) {
	branches, err := e.resolveBranches(ctx, selectors)
	if err != nil {
		return nil, err
	}
	if len(branches) == 0 {
		if e.Logger != nil {
			e.Logger.Info("no branches to sync", "repo", e.RepoID)
		}
		return nil, nil
	}

	var summaries []core.BranchSummary
	var errs []error
	for _, branch := range branches {
		if err := ctx.Err(); err != nil {
			return summaries, err
		}
		sum, err := e.syncBranch(ctx, branch, strings.TrimSpace(last[branch]))
		if err != nil {
			if errors.Is(err, core.ErrUnsafeBranchPath) {
				if e.Logger != nil {
					e.Logger.Warn("skipping branch", "branch", branch, "error", err)
				}
				continue
			}
			if e.Logger != nil {
				e.Logger.Error("branch sync failed", "branch", branch, "error", err)
			}
			errs = append(errs, fmt.Errorf("branch %s: %w", branch, err))
			continue
		}
		summaries = append(summaries, sum)
	}
	return summaries, errors.Join(errs...)
}

// syncBranch runs the per-branch state machine: fetch window,
// materialize, backfill, advance checkpoint, rebuild index. Both the
// new-commits and the up-to-date arm end in a backfill pass and an
// index rebuild, so the two collapse into one sequence.
func (e *Engine) syncBranch(ctx context.Context, branch, since string) (core.BranchSummary, error) {
	sum := core.BranchSummary{Branch: branch}

	// Reject hostile branch names before touching history or disk.
	if _, err := e.Vault.BranchDir(branch); err != nil {
		return sum, err
	}

	// The initial-commit cap applies to first-time syncs only.
	limit := 0
	if since == "" {
		limit = e.Options.MaxInitialCommits
	}
	commits, err := e.History.Commits(ctx, branch, since, e.Options.IncludeMerges, limit)
	if err != nil {
		// A failed history query never aborts the run; the branch is
		// treated as having nothing new this round.
		if e.Logger != nil {
			e.Logger.Warn("history query failed", "branch", branch, "error", err)
		}
		commits = nil
	}
	sum.Commits = len(commits)

	for _, c := range commits {
		if err := ctx.Err(); err != nil {
			return sum, err
		}
		created, err := e.materialize(ctx, branch, c)
		if err != nil {
			return sum, err
		}
		if created {
			sum.Created++
		}
	}

	backfilled, err := e.backfill(ctx, branch)
	if err != nil {
		return sum, err
	}
	sum.Backfilled = backfilled

	if len(commits) > 0 {
		sum.Checkpoint = commits[len(commits)-1].SHA
	}

	if _, err := e.Vault.WriteBranchIndex(branch); err != nil {
		return sum, err
	}

	if e.Logger != nil {
		e.Logger.Info("branch synced", "branch", branch,
			"commits", sum.Commits, "created", sum.Created, "backfilled", sum.Backfilled)
	}
	return sum, nil
}

// materialize writes the note for one commit unless it already exists.
// Diff content is fetched only for notes about to be created; existing
// notes are left to the backfill pass.
func (e *Engine) materialize(ctx context.Context, branch string, c core.Commit) (bool, error) {
	path, err := e.Vault.NotePath(branch, c, e.Options.FileNameStyle)
	if err != nil {
		return false, err
	}
	if _, err := os.Stat(path); err == nil {
		return false, nil
	}

	var diffstat, diff string
	if e.Options.IncludeDiffStat {
		diffstat, err = e.History.DiffStat(ctx, c.SHA)
		if err != nil {
			if e.Logger != nil {
				e.Logger.Warn("diffstat query failed", "sha", c.SHA, "error", err)
			}
			diffstat = ""
		}
	}
	if e.Options.IncludeDiff {
		diff, err = e.History.Diff(ctx, c.SHA, e.Options.SkipBinaryDiff)
		if err != nil {
			if e.Logger != nil {
				e.Logger.Warn("diff query failed", "sha", c.SHA, "error", err)
			}
			diff = ""
		}
	}

	_, created, err := e.Vault.WriteCommitNote(branch, c, diffstat, diff, e.Options, e.RepoID)
	return created, err
}

// backfill walks the branch's existing notes and injects missing diff
// content where the options ask for it. Individual unreadable notes
// are skipped, the rest proceed.
func (e *Engine) backfill(ctx context.Context, branch string) (int, error) {
	if !e.Options.IncludeDiffStat && !e.Options.IncludeDiff {
		return 0, nil
	}
	files, err := e.Vault.NoteFiles(branch)
	if err != nil {
		return 0, err
	}

	bf := &vault.Backfiller{Source: e.History, Options: e.Options, Logger: e.Logger}
	count := 0
	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return count, err
		}
		sha, err := vault.NoteCommitID(path)
		if err != nil {
			if e.Logger != nil {
				e.Logger.Warn("skipping unreadable note", "path", path, "error", err)
			}
			continue
		}
		changed, err := bf.Ensure(ctx, path, sha)
		if err != nil {
			if e.Logger != nil {
				e.Logger.Warn("backfill failed", "path", path, "error", err)
			}
			continue
		}
		if changed {
			count++
		}
	}
	return count, nil
}

// resolveBranches expands the configured selectors against the repo's
// local branches. A selector without glob metacharacters passes through
// verbatim; a glob selector keeps every matching local branch. An empty
// selector list means all local branches.
func (e *Engine) resolveBranches(ctx context.Context, selectors []string) ([]string, error) {
	if len(selectors) == 0 {
		branches, err := e.History.Branches(ctx)
		if err != nil {
			return nil, fmt.Errorf("list branches: %w", err)
		}
		return branches, nil
	}

	var out []string
	seen := make(map[string]bool)
	add := func(b string) {
		if b != "" && !seen[b] {
			seen[b] = true
			out = append(out, b)
		}
	}

	var locals []string
	listed := false
	for _, sel := range selectors {
		sel = strings.TrimSpace(sel)
		if sel == "" {
			continue
		}
		if !strings.ContainsAny(sel, "*?[{") {
			add(sel)
			continue
		}
		if !listed {
			listed = true
			var err error
			locals, err = e.History.Branches(ctx)
			if err != nil {
				// Literal selectors still work without a listing.
				if e.Logger != nil {
					e.Logger.Warn("branch listing failed, glob selectors skipped", "error", err)
				}
				locals = nil
			}
		}
		for _, b := range locals {
			ok, err := doublestar.Match(sel, b)
			if err != nil {
				if e.Logger != nil {
					e.Logger.Warn("bad branch pattern", "pattern", sel, "error", err)
				}
				break
			}
			if ok {
				add(b)
			}
		}
	}
	return out, nil
}
