// Package vault writes and scans the note tree a sync run produces:
// one Markdown note per commit under branches/<branch>/, plus a per-branch
// index note. Notes are written exactly once and never overwritten;
// the index is the only file the package regenerates in place.
package vault

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/apocsb/Gitsidian/internal/fsutil"
	"github.com/apocsb/Gitsidian/pkg/core"
)

// BranchesDirName is the subdirectory of the vault root that holds all
// per-branch note directories.
const BranchesDirName = "branches"

// IndexFileName is the per-branch index note.
const IndexFileName = "index.md"

// Vault addresses one output tree rooted at Root. The zero value is not
// usable; construct with New.
type Vault struct {
	Root   string
	Logger *slog.Logger
}

// New returns a Vault rooted at root. The logger may be nil.
func New(root string, logger *slog.Logger) *Vault {
	return &Vault{Root: root, Logger: logger}
}

// BranchDir resolves the note directory for a branch and rejects any
// branch name whose cleaned path would escape the vault's branches tree
// (directory traversal through a hostile branch name).
func (v *Vault) BranchDir(branch string) (string, error) {
	if branch == "" {
		return "", fmt.Errorf("%w: empty branch name", core.ErrUnsafeBranchPath)
	}
	root, err := filepath.Abs(filepath.Join(v.Root, BranchesDirName))
	if err != nil {
		return "", fmt.Errorf("resolve branches dir: %w", err)
	}
	// Branch names may legitimately contain slashes (feature/login) and
	// map to nested directories.
	cleaned := filepath.Clean(filepath.FromSlash(branch))
	if filepath.IsAbs(cleaned) {
		return "", fmt.Errorf("%w: %s", core.ErrUnsafeBranchPath, branch)
	}
	joined, err := filepath.Abs(filepath.Join(root, cleaned))
	if err != nil {
		return "", fmt.Errorf("resolve branch dir: %w", err)
	}
	// Ensure the resolved path is still under the branches root.
	if !strings.HasPrefix(joined, root+string(os.PathSeparator)) {
		return "", fmt.Errorf("%w: %s", core.ErrUnsafeBranchPath, branch)
	}
	return joined, nil
}

// NotePath returns the deterministic path of a commit's note for the
// given filename style. It performs no I/O beyond path resolution.
func (v *Vault) NotePath(branch string, c core.Commit, style core.FileNameStyle) (string, error) {
	dir, err := v.BranchDir(branch)
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, Filename(style, c.SHA, c.Date)), nil
}

// NoteFiles lists the commit note files of a branch (every .md file
// except the index), sorted by name for deterministic iteration. A
// missing branch directory yields an empty list.
func (v *Vault) NoteFiles(branch string) ([]string, error) {
	dir, err := v.BranchDir(branch)
	if err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read branch dir: %w", err)
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".md") || e.Name() == IndexFileName {
			continue
		}
		files = append(files, filepath.Join(dir, e.Name()))
	}
	sort.Strings(files)
	return files, nil
}

// writeNew atomically creates a file that must not already exist. The
// parent directory is created on demand.
func writeNew(path string, content string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create note dir: %w", err)
	}
	return fsutil.WriteFileAtomic(path, []byte(content), 0644)
}
