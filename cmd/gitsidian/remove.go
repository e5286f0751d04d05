package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var removeID string

// removeCmd represents the remove command
var removeCmd = &cobra.Command{
	Use:   "remove",
	Short: "Remove a configured repository",
	Long: `Remove a repository from the configuration. Notes already written to
the vault are left in place.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		store, err := configStore()
		if err != nil {
			fatal("Failed to resolve config path", err)
		}
		cfg, err := store.Load()
		if err != nil {
			fatal("Failed to load config", err)
		}

		if !cfg.Remove(removeID) {
			bail(fmt.Sprintf("No repo with id '%s' found", removeID))
		}
		if err := store.Save(cfg); err != nil {
			fatal("Failed to save config", err)
		}
		fmt.Printf("Removed repo '%s'. (No files deleted)\n", removeID)
	},
}

func init() {
	rootCmd.AddCommand(removeCmd)
	removeCmd.Flags().StringVar(&removeID, "id", "", "Repository id to remove")
	removeCmd.MarkFlagRequired("id")
}
