package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"

	gitsidian "github.com/apocsb/Gitsidian"
	"github.com/apocsb/Gitsidian/pkg/config"
)

func main() {
	count := flag.Int("count", 1000, "Number of commits to generate")
	keep := flag.Bool("keep", false, "Keep the benchmark dirs after running")
	flag.Parse()

	benchDir, err := os.MkdirTemp("", "gitsidian_bench_")
	if err != nil {
		panic(err)
	}
	defer func() {
		if !*keep {
			os.RemoveAll(benchDir)
		} else {
			fmt.Printf("Keeping bench dir: %s\n", benchDir)
		}
	}()

	repoDir := filepath.Join(benchDir, "repo")
	vaultDir := filepath.Join(benchDir, "vault")

	fmt.Printf("Generating %d commits in %s...\n", *count, repoDir)
	startGen := time.Now()
	if err := generateRepo(repoDir, *count); err != nil {
		panic(err)
	}
	fmt.Printf("Generation took: %v\n", time.Since(startGen))

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	repo := config.NewRepo("bench", "Bench", repoDir, vaultDir)
	repo.Options.Backend = "go-git"

	ctx := context.Background()

	// Run 1: Cold (every commit becomes a note)
	fmt.Println("Running sync (Run 1 - Cold)...")
	startCold := time.Now()
	summaries, err := gitsidian.Sync(ctx, repo, gitsidian.WithLogger(logger))
	if err != nil {
		panic(err)
	}
	cold := time.Since(startCold)
	created := 0
	for _, s := range summaries {
		created += s.Created
	}
	fmt.Printf("Run 1 Result: %v (Notes: %d)\n", cold, created)

	// Run 2: Warm (checkpointed, nothing new to write)
	fmt.Println("Running sync (Run 2 - Warm)...")
	startWarm := time.Now()
	if _, err := gitsidian.Sync(ctx, repo, gitsidian.WithLogger(logger)); err != nil {
		panic(err)
	}
	warm := time.Since(startWarm)
	fmt.Printf("Run 2 Result: %v\n", warm)

	fmt.Printf("--------------------------------------------------\n")
	fmt.Printf("Benchmark Result (%d commits):\n", *count)
	fmt.Printf("  Cold: %v (%.2f notes/sec)\n", cold, float64(created)/cold.Seconds())
	fmt.Printf("  Warm: %v\n", warm)
	fmt.Printf("--------------------------------------------------\n")
}

// generateRepo builds a repository with n single-file commits.
func generateRepo(dir string, n int) error {
	r, err := gogit.PlainInit(dir, false)
	if err != nil {
		return err
	}
	wt, err := r.Worktree()
	if err != nil {
		return err
	}
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		content := fmt.Sprintf("revision %d\n", i)
		if err := os.WriteFile(filepath.Join(dir, "note.txt"), []byte(content), 0644); err != nil {
			return err
		}
		if _, err := wt.Add("note.txt"); err != nil {
			return err
		}
		_, err := wt.Commit(fmt.Sprintf("Benchmark change %d", i), &gogit.CommitOptions{
			Author: &object.Signature{
				Name:  "Bench",
				Email: "bench@example.com",
				When:  base.Add(time.Duration(i) * time.Minute),
			},
		})
		if err != nil {
			return err
		}
	}
	return nil
}
