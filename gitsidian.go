package gitsidian

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/apocsb/Gitsidian/pkg/config"
	"github.com/apocsb/Gitsidian/pkg/core"
	"github.com/apocsb/Gitsidian/pkg/engine"
	"github.com/apocsb/Gitsidian/pkg/git"
	"github.com/apocsb/Gitsidian/pkg/gogit"
	"github.com/apocsb/Gitsidian/pkg/vault"
)

// options holds the run configuration assembled from functional options.
type options struct {
	logger  *slog.Logger
	history core.History
}

// Option configures a sync run.
type Option func(*options)

// WithLogger sets the logger used across the run.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithHistory injects a history backend, bypassing the repo's
// configured one. Meant for tests and embedders.
func WithHistory(h core.History) Option {
	return func(o *options) {
		o.history = h
	}
}

// Sync runs one synchronous sync of a configured repository: every
// selected branch is brought up to date and the repo's checkpoint map
// is advanced in place. Persisting the updated configuration is the
// caller's job, once, after the run.
func Sync(ctx context.Context, repo *config.Repo, opts ...Option) ([]core.BranchSummary, error) {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}

	history := o.history
	if history == nil {
		var err error
		history, err = OpenHistory(ctx, repo, o.logger)
		if err != nil {
			return nil, err
		}
	}

	eng := engine.New(history, vault.New(repo.VaultPath, o.logger), repo.Options.Core(), repo.ID, o.logger)
	summaries, err := eng.Run(ctx, repo.Branches, repo.LastSync)

	for _, s := range summaries {
		if s.Checkpoint != "" {
			repo.SetCheckpoint(s.Branch, s.Checkpoint)
		}
	}
	if len(summaries) > 0 {
		repo.Touch()
	}
	return summaries, err
}

// OpenHistory builds and verifies the history backend a repository is
// configured to use: the subprocess git client by default, the embedded
// go-git one when the repo says so. Environment problems surface here,
// before any state is touched.
func OpenHistory(ctx context.Context, repo *config.Repo, logger *slog.Logger) (core.History, error) {
	switch core.Backend(repo.Options.Backend) {
	case core.BackendGoGit:
		return gogit.Open(repo.RepoPath, logger)
	default:
		client := git.NewClient(repo.RepoPath, logger)
		if !git.IsInstalled() {
			return nil, core.ErrGitUnavailable
		}
		if !client.IsRepo(ctx) {
			return nil, fmt.Errorf("%w: %s", core.ErrNotRepository, repo.RepoPath)
		}
		return git.NewSource(client, logger), nil
	}
}
