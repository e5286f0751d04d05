package main

import (
	"fmt"
	"runtime"
	"strings"

	gitsidian "github.com/apocsb/Gitsidian"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the gitsidian version",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("gitsidian version %s (%s %s/%s)\n",
			strings.TrimSpace(gitsidian.Version),
			runtime.Version(), runtime.GOOS, runtime.GOARCH)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
