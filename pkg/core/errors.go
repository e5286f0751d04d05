package core

import "errors"

// Common errors.
var (
	// ErrGitUnavailable means the git binary could not be found in PATH.
	ErrGitUnavailable = errors.New("git is not available")

	// ErrNotRepository means the configured path is not a valid repository.
	ErrNotRepository = errors.New("not a repository")

	// ErrUnknownRepo means no configured repository matches the given id.
	ErrUnknownRepo = errors.New("unknown repository id")

	// ErrUnsafeBranchPath means a branch name would escape the vault tree.
	ErrUnsafeBranchPath = errors.New("branch name escapes the vault")
)
