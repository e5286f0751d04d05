package main

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/apocsb/Gitsidian/pkg/config"
)

// watchDebounce absorbs the burst of reference updates a single git
// operation produces into one sync run.
const watchDebounce = 500 * time.Millisecond

var watchID string

// watchCmd represents the watch command
var watchCmd = &cobra.Command{
	Use:   "watch [repo-id]",
	Short: "Watch a repository and sync on new commits",
	Long: `Watch the repository's .git directory and run a sync whenever its
references change. Press Ctrl-C to stop.`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		store, err := configStore()
		if err != nil {
			fatal("Failed to resolve config path", err)
		}
		cfg, err := store.Load()
		if err != nil {
			fatal("Failed to load config", err)
		}

		rid := pickRepoID(cfg, args, watchID)
		repo, err := cfg.Repo(rid)
		if err != nil {
			bail(fmt.Sprintf("Repo id '%s' not found", rid))
		}

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		sigs := make(chan os.Signal, 1)
		signal.Notify(sigs, os.Interrupt, syscall.SIGTERM)
		go func() {
			<-sigs
			fmt.Println("\nStopping...")
			cancel()
		}()

		// Catch up before waiting for changes.
		if err := syncRepo(ctx, store, cfg, repo); err != nil {
			fmt.Fprintf(os.Stderr, "Error: Sync failed: %v\n", err)
		}

		if err := watchRepo(ctx, store, cfg, repo); err != nil {
			fatal("Watch failed", err)
		}
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
	watchCmd.Flags().StringVar(&watchID, "id", "", "Repository id to watch")
}

// watchRepo blocks watching the repository's .git directory, running a
// debounced sync after each burst of reference changes.
func watchRepo(ctx context.Context, store *config.Store, cfg *config.Config, repo *config.Repo) error {
	gitDir := filepath.Join(repo.RepoPath, ".git")
	info, err := os.Stat(gitDir)
	if err != nil || !info.IsDir() {
		return fmt.Errorf("no .git directory at %s", gitDir)
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := w.Add(gitDir); err != nil {
		return err
	}
	// Reference updates land in nested directories (refs/heads/feature/...).
	if err := addDirsRecursive(w, filepath.Join(gitDir, "refs")); err != nil {
		slog.Default().Warn("watching refs failed", "error", err.Error())
	}

	fmt.Printf("Watching '%s' for new commits. Press Ctrl-C to stop.\n", repo.Name)

	var syncTimer *time.Timer
	var syncCh <-chan time.Time

	scheduleSync := func() {
		if syncTimer == nil {
			syncTimer = time.NewTimer(watchDebounce)
			syncCh = syncTimer.C
		} else {
			syncTimer.Reset(watchDebounce)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if syncTimer != nil {
				syncTimer.Stop()
			}
			return nil

		case <-syncCh:
			if err := syncRepo(ctx, store, cfg, repo); err != nil {
				fmt.Fprintf(os.Stderr, "Error: Sync failed: %v\n", err)
			}

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if ev.Op&fsnotify.Create != 0 {
				if info, statErr := os.Stat(ev.Name); statErr == nil && info.IsDir() {
					if addErr := addDirsRecursive(w, ev.Name); addErr != nil {
						slog.Default().Warn("watching new dir failed",
							"path", ev.Name, "error", addErr.Error())
					}
					continue
				}
			}
			if strings.HasSuffix(ev.Name, ".lock") {
				continue
			}
			if !isRefEvent(gitDir, ev.Name) {
				continue
			}
			slog.Default().Debug("reference changed", "path", ev.Name)
			scheduleSync()

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			slog.Default().Error("watcher error", "error", watchErr.Error())
		}
	}
}

// isRefEvent reports whether a path under .git signals new commits:
// HEAD, packed-refs, or anything under refs/.
func isRefEvent(gitDir, name string) bool {
	rel, err := filepath.Rel(gitDir, name)
	if err != nil {
		return false
	}
	if rel == "HEAD" || rel == "packed-refs" {
		return true
	}
	return rel == "refs" || strings.HasPrefix(rel, "refs"+string(filepath.Separator))
}

// addDirsRecursive adds root and all its subdirectories to the watcher.
func addDirsRecursive(w *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return w.Add(path)
		}
		return nil
	})
}
