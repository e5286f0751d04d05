package main

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/apocsb/Gitsidian/pkg/config"
	"github.com/apocsb/Gitsidian/pkg/gogit"
	"github.com/spf13/cobra"
)

// addCmd represents the add command
var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a repository via wizard",
	Long: `Register a repository interactively: where it lives, where its notes
go, and how they are rendered.`,
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

		in := bufio.NewScanner(os.Stdin)

		fmt.Println("Add new repository configuration")
		repoPath := ask(in, "Repository path (existing git repo): ")
		if repoPath == "" {
			bail("Repository path required")
		}
		absRepo, err := resolvePath(repoPath)
		if err != nil {
			fatal("Failed to resolve path", err)
		}
		if _, err := os.Stat(absRepo); err != nil {
			bail("Path does not exist")
		}
		// Probed in-process so the wizard works even without git in PATH.
		if _, err := gogit.Open(absRepo, nil); err != nil {
			bail("Not a git repository")
		}

		name := ask(in, "Display name (blank => folder name): ")
		if name == "" {
			name = filepath.Base(absRepo)
		}

		vaultPath := ask(in, "Vault (output) path: ")
		if vaultPath == "" {
			bail("Vault path required")
		}
		absVault, err := resolvePath(vaultPath)
		if err != nil {
			fatal("Failed to resolve path", err)
		}
		if err := os.MkdirAll(absVault, 0755); err != nil {
			fatal("Failed to create vault directory", err)
		}

		var branches []string
		for _, b := range strings.Split(ask(in, "Branches (comma separated, blank => all local branches): "), ",") {
			if b = strings.TrimSpace(b); b != "" {
				branches = append(branches, b)
			}
		}

		repo := config.NewRepo(cfg.NewID(name), name, absRepo, absVault)
		repo.Branches = branches
		repo.Options.IncludeDiffStat = yesNo(in, "Include diffstat? [Y/n] ", true)
		repo.Options.IncludeDiff = yesNo(in, "Include full diff? (larger notes) [y/N] ", false)
		repo.Options.IncludeMerges = yesNo(in, "Include merge commits? [y/N] ", false)
		repo.Options.FileNameStyle = choose(in, "Filename style", []string{"sha", "date-sha", "short-sha"}, "sha")
		repo.Options.Backend = choose(in, "History backend", []string{"git", "go-git"}, "git")
		if raw := ask(in, "Limit initial commits per branch (blank => no limit): "); raw != "" {
			if n, err := strconv.Atoi(raw); err == nil && n >= 0 {
				repo.Options.MaxInitialCommitsPerBranch = &n
			}
		}

		if err := repo.Validate(); err != nil {
			fatal("Invalid repository configuration", err)
		}
		cfg.Add(repo)
		if err := store.Save(cfg); err != nil {
			fatal("Failed to save config", err)
		}
		fmt.Printf("Added repo '%s' (id=%s).\n", name, repo.ID)
	},
}

func init() {
	rootCmd.AddCommand(addCmd)
}

// ask prints a prompt and returns the trimmed reply, empty on EOF.
func ask(in *bufio.Scanner, prompt string) string {
	fmt.Print(prompt)
	if !in.Scan() {
		fmt.Println()
		return ""
	}
	return strings.TrimSpace(in.Text())
}

// yesNo interprets y/yes/true/1 as yes; a blank reply keeps the default.
func yesNo(in *bufio.Scanner, prompt string, def bool) bool {
	resp := strings.ToLower(ask(in, prompt))
	if resp == "" {
		return def
	}
	switch resp {
	case "y", "yes", "true", "1":
		return true
	}
	return false
}

// choose presents a numbered menu and returns the picked option, or the
// default on a blank or out-of-range reply.
func choose(in *bufio.Scanner, title string, options []string, def string) string {
	fmt.Printf("%s:\n", title)
	for i, opt := range options {
		marker := ""
		if opt == def {
			marker = " (default)"
		}
		fmt.Printf("  %d. %s%s\n", i+1, opt, marker)
	}
	resp := ask(in, "Choose number (blank => default): ")
	if idx, err := strconv.Atoi(resp); err == nil && idx >= 1 && idx <= len(options) {
		return options[idx-1]
	}
	return def
}

// resolvePath expands a leading ~ and makes the path absolute.
func resolvePath(path string) (string, error) {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		path = filepath.Join(home, path[1:])
	}
	return filepath.Abs(path)
}
