package git

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestClient_RunAndIsRepo(t *testing.T) {
	if !IsInstalled() {
		t.Skip("git binary not available")
	}
	tmpDir := t.TempDir()
	client := NewClient(tmpDir, nil)
	ctx := context.Background()

	if client.IsRepo(ctx) {
		t.Error("empty dir reported as a git repo")
	}

	if _, err := client.Run(ctx, "init"); err != nil {
		t.Fatalf("git init failed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(tmpDir, ".git")); os.IsNotExist(err) {
		t.Error(".git directory not created")
	}
	if !client.IsRepo(ctx) {
		t.Error("initialized dir not reported as a git repo")
	}
}

func TestClient_RunFailure(t *testing.T) {
	if !IsInstalled() {
		t.Skip("git binary not available")
	}
	client := NewClient(t.TempDir(), nil)

	_, err := client.Run(context.Background(), "rev-parse", "--is-inside-work-tree")
	if err == nil {
		t.Fatal("expected error outside a repository")
	}
}
