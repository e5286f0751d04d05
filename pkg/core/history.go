package core

import "context"

// History defines the narrow contract the sync engine needs from a
// version-control backend. Adhering to this interface keeps the core
// independent of the access mechanism (git binary, embedded library)
// and lets tests run against a fake instead of a live process.
type History interface {
	// Branches lists the local branch names of the repository.
	Branches(ctx context.Context) ([]string, error)

	// Commits returns the commits on branch strictly after since
	// (exclusive), oldest first. An empty since means the full branch
	// history. When since is set but yields no commits (history was
	// rewritten, or the branch is simply up to date), the implementation
	// falls back to the full branch history so callers can re-cover
	// whatever actually exists. limit > 0 keeps only the oldest limit
	// commits of the window.
	Commits(ctx context.Context, branch, since string, includeMerges bool, limit int) ([]Commit, error)

	// DiffStat returns the diffstat text for a single commit, empty when
	// the commit changes nothing.
	DiffStat(ctx context.Context, sha string) (string, error)

	// Diff returns the full diff text for a single commit. skipBinary
	// suppresses binary content.
	Diff(ctx context.Context, sha string, skipBinary bool) (string, error)
}
