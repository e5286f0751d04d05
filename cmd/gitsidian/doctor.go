package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	gitsidian "github.com/apocsb/Gitsidian"
	"github.com/apocsb/Gitsidian/pkg/git"
	"github.com/spf13/cobra"
)

// doctorCmd represents the doctor command
var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check the environment and configured repositories",
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

		ok := true
		fmt.Println("Environment check:")
		if git.IsInstalled() {
			fmt.Println("  ✔ git available")
		} else {
			fmt.Println("  ✖ git NOT available in PATH")
			ok = false
		}
		fmt.Printf("Config path: %s\n", store.Path)
		fmt.Printf("Repositories configured: %d\n", len(cfg.Repos))
		for _, r := range cfg.Repos {
			repoState := "ok"
			if _, statErr := os.Stat(r.RepoPath); statErr != nil {
				repoState = "MISSING"
			}
			vaultState := "ok"
			if _, statErr := os.Stat(r.VaultPath); statErr != nil {
				vaultState = "MISSING"
			}
			backendState := r.Options.Backend + " ok"
			if _, histErr := gitsidian.OpenHistory(context.Background(), r, slog.Default()); histErr != nil {
				backendState = r.Options.Backend + " FAILED"
			}
			fmt.Printf("  - %s: repo %s; vault %s; backend %s\n", r.ID, repoState, vaultState, backendState)
		}
		if !ok {
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}
