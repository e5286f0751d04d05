package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	gitsidian "github.com/apocsb/Gitsidian"
	"github.com/apocsb/Gitsidian/pkg/config"
	"github.com/spf13/cobra"
)

var syncID string

// syncCmd represents the sync command
var syncCmd = &cobra.Command{
	Use:   "sync [repo-id]",
	Short: "Sync a single repository",
	Long: `Sync one configured repository: new commits become notes, existing
notes gain any missing diff sections, and each branch index is rebuilt.`,
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

		rid := pickRepoID(cfg, args, syncID)
		repo, err := cfg.Repo(rid)
		if err != nil {
			bail(fmt.Sprintf("Repo id '%s' not found", rid))
		}

		if err := syncRepo(context.Background(), store, cfg, repo); err != nil {
			fmt.Fprintf(os.Stderr, "Error: Sync failed: %v\n", err)
			fmt.Println("Tip: Run 'gitsidian doctor' to check your environment.")
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(syncCmd)
	syncCmd.Flags().StringVar(&syncID, "id", "", "Repository id to sync")
}

// pickRepoID resolves which repository a command targets: the positional
// argument wins, then --id, then the sole configured repo.
func pickRepoID(cfg *config.Config, args []string, flagID string) string {
	rid := flagID
	if len(args) > 0 {
		rid = args[0]
	}
	if rid == "" && len(cfg.Repos) == 1 {
		rid = cfg.Repos[0].ID
	}
	if rid == "" {
		bail("Repository id required (pass as positional or --id). Use 'gitsidian list' to see configured repos.")
	}
	return rid
}

// syncRepo runs one sync and persists the advanced checkpoints. The
// config is saved even when some branches failed, so branches that did
// sync keep their progress.
func syncRepo(ctx context.Context, store *config.Store, cfg *config.Config, repo *config.Repo) error {
	summaries, err := gitsidian.Sync(ctx, repo, gitsidian.WithLogger(slog.Default()))
	if len(summaries) == 0 && err != nil {
		return err
	}
	saveErr := store.Save(cfg)
	if saveErr == nil {
		created := 0
		for _, s := range summaries {
			created += s.Created
		}
		fmt.Printf("[sync] Done: %d new commits written for '%s'.\n", created, repo.Name)
	}
	return errors.Join(err, saveErr)
}
