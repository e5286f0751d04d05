package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var listJSON bool

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List configured repositories",
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

		if listJSON {
			encoder := json.NewEncoder(os.Stdout)
			encoder.SetIndent("", "  ")
			if err := encoder.Encode(cfg.Repos); err != nil {
				fatal("Failed to encode JSON", err)
			}
			return
		}

		if len(cfg.Repos) == 0 {
			fmt.Println("No repositories configured. Use 'add' to register one.")
			return
		}
		for _, r := range cfg.Repos {
			branches := "all"
			if len(r.Branches) > 0 {
				branches = strings.Join(r.Branches, ", ")
			}
			fmt.Printf("- %s: %s\n  repo: %s\n  vault: %s\n  branches: %s\n",
				r.ID, r.Name, r.RepoPath, r.VaultPath, branches)
		}
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
	listCmd.Flags().BoolVar(&listJSON, "json", false, "Output in JSON format")
}
