package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var syncAllCmd = &cobra.Command{
	Use:   "sync-all",
	Short: "Sync all configured repositories",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		store, err := configStore()
		if err != nil {
			fatal("Failed to resolve config path", err)
		}
		cfg, err := store.Load()
		if err != nil {
			fatal("Failed to load config", err)
		}

		if len(cfg.Repos) == 0 {
			fmt.Println("No repositories configured.")
			return
		}

		anyFail := false
		for _, repo := range cfg.Repos {
			if err := syncRepo(context.Background(), store, cfg, repo); err != nil {
				fmt.Fprintf(os.Stderr, "Error: Sync failed for '%s': %v\n", repo.ID, err)
				anyFail = true
			}
		}
		if anyFail {
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(syncAllCmd)
}
