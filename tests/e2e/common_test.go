package e2e

import (
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
)

// buildBinary builds the gitsidian binary into dir and returns its path.
func buildBinary(t *testing.T, dir string) string {
	t.Helper()
	bin := filepath.Join(dir, "gitsidian")
	buildCmd := exec.Command("go", "build", "-o", bin, "../../cmd/gitsidian")
	if out, err := buildCmd.CombinedOutput(); err != nil {
		t.Fatalf("Failed to build gitsidian: %v\n%s", err, string(out))
	}
	return bin
}

// requireGit skips the test when no git binary is available.
func requireGit(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not available in PATH")
	}
}

// run executes a command in dir and fails the test on a non-zero exit.
func run(t *testing.T, dir string, name string, args ...string) string {
	t.Helper()
	return runIn(t, dir, "", name, args...)
}

// runIn is run with the given stdin.
func runIn(t *testing.T, dir, stdin string, name string, args ...string) string {
	t.Helper()
	cmd := exec.Command(name, args...)
	cmd.Dir = dir
	if stdin != "" {
		cmd.Stdin = strings.NewReader(stdin)
	}
	out, err := cmd.CombinedOutput()
	t.Logf("[%s] %s %v:\n%s", dir, name, args, out)
	if err != nil {
		t.Fatalf("Command %s %v failed in %s: %v", name, args, dir, err)
	}
	return string(out)
}

// runExpectErr executes a command expecting a non-zero exit.
func runExpectErr(t *testing.T, dir string, name string, args ...string) string {
	t.Helper()
	cmd := exec.Command(name, args...)
	cmd.Dir = dir
	out, err := cmd.CombinedOutput()
	t.Logf("[%s] %s %v:\n%s", dir, name, args, out)
	if err == nil {
		t.Fatalf("Command %s %v unexpectedly succeeded in %s", name, args, dir)
	}
	return string(out)
}
