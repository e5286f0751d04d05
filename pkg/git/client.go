// Package git reads commit history by shelling out to the git binary.
// It is the default history backend; pkg/gogit is the embedded
// alternative for hosts without a git installation.
package git

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
)

// Client wraps git command execution in a fixed working directory.
type Client struct {
	WorkDir string
	Logger  *slog.Logger
}

// NewClient creates a new git client for the given working directory.
func NewClient(workDir string, logger *slog.Logger) *Client {
	return &Client{WorkDir: workDir, Logger: logger}
}

// IsInstalled reports whether a git binary is reachable on PATH.
func IsInstalled() bool {
	return exec.Command("git", "--version").Run() == nil
}

// Run executes a raw git command in the working directory and returns
// its stdout unmodified. Stdout and stderr stay separate: log output is
// parsed with byte-exact separators and stderr chatter must never leak
// into it. On failure stderr is folded into the returned error.
func (c *Client) Run(ctx context.Context, args ...string) (string, error) {
	if c.Logger != nil {
		c.Logger.Debug("executing git", "args", args, "dir", c.WorkDir)
	}

	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = c.WorkDir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("git %s failed: %w: %s", args[0], err, strings.TrimSpace(stderr.String()))
	}
	return stdout.String(), nil
}

// IsRepo reports whether the working directory is inside a git work
// tree.
func (c *Client) IsRepo(ctx context.Context) bool {
	out, err := c.Run(ctx, "rev-parse", "--is-inside-work-tree")
	return err == nil && strings.TrimSpace(out) == "true"
}
