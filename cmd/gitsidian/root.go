package main

import (
	"log/slog"
	"os"

	"github.com/apocsb/Gitsidian/pkg/config"
	"github.com/spf13/cobra"
)

var verbose bool

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "gitsidian",
	Short: "Export git commit history to Obsidian notes (one commit per Markdown file)",
	Long: `Gitsidian turns a repository's commit history into a tree of Markdown
notes: one write-once note per commit plus an index per branch, kept up
to date by incremental syncs.

Examples:
  gitsidian add
  gitsidian list
  gitsidian sync --id my-repo
  gitsidian doctor`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		configureLogging(verbose)
	},
}

// Execute runs the root command. Cobra has already reported unknown
// commands and flag errors by the time it returns, so only the exit
// code is left to set.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
}

// configureLogging installs the process-wide text logger on stderr.
// Verbose lowers the level to debug.
func configureLogging(verbose bool) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}

// configStore builds the store every command goes through, using the
// platform config dir unless GITSIDIAN_CONFIG_DIR overrides it.
func configStore() (*config.Store, error) {
	path, err := config.DefaultPath()
	if err != nil {
		return nil, err
	}
	return config.NewStore(path, slog.Default()), nil
}
