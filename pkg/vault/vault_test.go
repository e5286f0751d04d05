package vault

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/apocsb/Gitsidian/pkg/core"
)

func TestBranchDir_RejectsEscapes(t *testing.T) {
	v := New(t.TempDir(), nil)

	tests := []struct {
		name   string
		branch string
		safe   bool
	}{
		{"plain branch", "main", true},
		{"nested branch", "feature/login", true},
		{"deeply nested", "user/alice/wip", true},
		{"empty", "", false},
		{"parent escape", "../outside", false},
		{"hidden escape", "ok/../../../outside", false},
		{"absolute path", "/etc/passwd", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir, err := v.BranchDir(tt.branch)
			if tt.safe {
				if err != nil {
					t.Fatalf("BranchDir(%q) failed: %v", tt.branch, err)
				}
				root := filepath.Join(v.Root, BranchesDirName)
				rel, err := filepath.Rel(root, dir)
				if err != nil || rel == ".." || filepath.IsAbs(rel) {
					t.Errorf("BranchDir(%q) = %q, not under %q", tt.branch, dir, root)
				}
				return
			}
			if !errors.Is(err, core.ErrUnsafeBranchPath) {
				t.Errorf("BranchDir(%q): expected ErrUnsafeBranchPath, got %v", tt.branch, err)
			}
		})
	}
}

func TestNoteFiles(t *testing.T) {
	v := New(t.TempDir(), nil)
	dir, err := v.BranchDir("main")
	if err != nil {
		t.Fatalf("BranchDir failed: %v", err)
	}
	if err := os.MkdirAll(filepath.Join(dir, "subdir"), 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	for _, name := range []string{"b.md", "a.md", "index.md", "notes.txt"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x\n"), 0644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}

	files, err := v.NoteFiles("main")
	if err != nil {
		t.Fatalf("NoteFiles failed: %v", err)
	}
	if len(files) != 2 {
		t.Fatalf("expected 2 note files, got %d: %v", len(files), files)
	}
	if filepath.Base(files[0]) != "a.md" || filepath.Base(files[1]) != "b.md" {
		t.Errorf("unexpected order: %v", files)
	}
}

func TestNoteFiles_MissingBranchDir(t *testing.T) {
	v := New(t.TempDir(), nil)
	files, err := v.NoteFiles("never-synced")
	if err != nil {
		t.Fatalf("NoteFiles failed: %v", err)
	}
	if len(files) != 0 {
		t.Errorf("expected no files, got %v", files)
	}
}

func TestWriteCommitNote_UnsafeBranch(t *testing.T) {
	v := New(t.TempDir(), nil)
	_, _, err := v.WriteCommitNote("../evil", testCommit(), "", "", core.Options{}, "r")
	if !errors.Is(err, core.ErrUnsafeBranchPath) {
		t.Errorf("expected ErrUnsafeBranchPath, got %v", err)
	}
}
