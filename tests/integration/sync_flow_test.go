package integration

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	gitsidian "github.com/apocsb/Gitsidian"
	"github.com/apocsb/Gitsidian/pkg/config"
)

// seedRepo creates a repository with n commits on master and returns
// its path, the worktree for follow-up commits, and the commit hashes
// oldest first.
func seedRepo(t *testing.T, n int) (string, *gogit.Worktree, []string) {
	t.Helper()
	dir := t.TempDir()
	r, err := gogit.PlainInit(dir, false)
	require.NoError(t, err)
	wt, err := r.Worktree()
	require.NoError(t, err)

	hashes := make([]string, 0, n)
	for i := 1; i <= n; i++ {
		name := fmt.Sprintf("file%d.txt", i)
		hashes = append(hashes, commitFile(t, dir, wt, name, fmt.Sprintf("content %d\n", i), fmt.Sprintf("Change %d", i), i))
	}
	return dir, wt, hashes
}

func commitFile(t *testing.T, dir string, wt *gogit.Worktree, name, content, msg string, seq int) string {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
	_, err := wt.Add(name)
	require.NoError(t, err)
	h, err := wt.Commit(msg, &gogit.CommitOptions{
		Author: &object.Signature{
			Name:  "Tester",
			Email: "tester@example.com",
			When:  time.Date(2024, 5, seq, 10, 0, 0, 0, time.UTC),
		},
	})
	require.NoError(t, err)
	return h.String()
}

// newRepoConfig returns a registered repo pointed at a fresh vault,
// using the embedded backend so the tests never shell out.
func newRepoConfig(t *testing.T, repoDir string) *config.Repo {
	t.Helper()
	repo := config.NewRepo("demo", "Demo", repoDir, filepath.Join(t.TempDir(), "vault"))
	repo.Options.Backend = "go-git"
	return repo
}

// readTree collects every file under root as rel path -> content.
func readTree(t *testing.T, root string) map[string]string {
	t.Helper()
	files := map[string]string{}
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		files[rel] = string(data)
		return nil
	})
	require.NoError(t, err)
	return files
}

func TestSync_InitialRunWritesNotesAndIndex(t *testing.T) {
	repoDir, _, hashes := seedRepo(t, 3)
	repo := newRepoConfig(t, repoDir)

	summaries, err := gitsidian.Sync(context.Background(), repo)
	require.NoError(t, err)
	require.Len(t, summaries, 1)

	s := summaries[0]
	assert.Equal(t, "master", s.Branch)
	assert.Equal(t, 3, s.Commits)
	assert.Equal(t, 3, s.Created)
	assert.Equal(t, hashes[2], s.Checkpoint)
	assert.Equal(t, hashes[2], repo.LastSync["master"], "checkpoint should be applied to the repo record")

	branchDir := filepath.Join(repo.VaultPath, "branches", "master")
	for _, h := range hashes {
		assert.FileExists(t, filepath.Join(branchDir, h+".md"))
	}

	note, err := os.ReadFile(filepath.Join(branchDir, hashes[2]+".md"))
	require.NoError(t, err)
	text := string(note)
	assert.Contains(t, text, "# Change 3")
	assert.Contains(t, text, "SHA: `"+hashes[2]+"`")
	assert.Contains(t, text, "## Diff stats")
	assert.NotContains(t, text, "## Diff\n```", "full diff is off by default")

	index, err := os.ReadFile(filepath.Join(branchDir, "index.md"))
	require.NoError(t, err)
	idx := string(index)
	assert.Contains(t, idx, "# Branch: master")
	assert.Contains(t, idx, "[["+hashes[2]+"|Change 3]]")
	assert.Less(t, strings.Index(idx, "Change 3"), strings.Index(idx, "Change 1"), "index lists newest first")
}

func TestSync_SecondRunIsIdempotent(t *testing.T) {
	repoDir, _, _ := seedRepo(t, 2)
	repo := newRepoConfig(t, repoDir)
	ctx := context.Background()

	_, err := gitsidian.Sync(ctx, repo)
	require.NoError(t, err)
	before := readTree(t, repo.VaultPath)

	summaries, err := gitsidian.Sync(ctx, repo)
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.Equal(t, 0, summaries[0].Created)
	assert.Equal(t, before, readTree(t, repo.VaultPath), "an up-to-date sync must not rewrite anything")
}

func TestSync_IncrementalPicksUpNewCommits(t *testing.T) {
	repoDir, wt, _ := seedRepo(t, 2)
	repo := newRepoConfig(t, repoDir)
	ctx := context.Background()

	_, err := gitsidian.Sync(ctx, repo)
	require.NoError(t, err)

	h3 := commitFile(t, repoDir, wt, "file3.txt", "content 3\n", "Change 3", 3)

	summaries, err := gitsidian.Sync(ctx, repo)
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.Equal(t, 1, summaries[0].Commits)
	assert.Equal(t, 1, summaries[0].Created)
	assert.Equal(t, h3, repo.LastSync["master"])
	assert.FileExists(t, filepath.Join(repo.VaultPath, "branches", "master", h3+".md"))
}

func TestSync_InitialLimitThenFullCatchUp(t *testing.T) {
	repoDir, _, hashes := seedRepo(t, 3)
	repo := newRepoConfig(t, repoDir)
	limit := 1
	repo.Options.MaxInitialCommitsPerBranch = &limit
	ctx := context.Background()

	summaries, err := gitsidian.Sync(ctx, repo)
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.Equal(t, 1, summaries[0].Created)
	assert.Equal(t, hashes[0], repo.LastSync["master"], "limit keeps the oldest commits so the checkpoint stays contiguous")

	// The limit only applies to the first run; the next one catches up.
	summaries, err = gitsidian.Sync(ctx, repo)
	require.NoError(t, err)
	assert.Equal(t, 2, summaries[0].Created)
	assert.Equal(t, hashes[2], repo.LastSync["master"])
}

func TestSync_ConfigRoundtripKeepsCheckpoints(t *testing.T) {
	repoDir, wt, _ := seedRepo(t, 2)
	repo := newRepoConfig(t, repoDir)
	ctx := context.Background()

	_, err := gitsidian.Sync(ctx, repo)
	require.NoError(t, err)

	store := config.NewStore(filepath.Join(t.TempDir(), "config.json"), nil)
	cfg := &config.Config{Version: config.Version}
	cfg.Add(repo)
	require.NoError(t, store.Save(cfg))

	loaded, err := store.Load()
	require.NoError(t, err)
	again, err := loaded.Repo("demo")
	require.NoError(t, err)
	assert.Equal(t, repo.LastSync["master"], again.Checkpoint("master"))

	h3 := commitFile(t, repoDir, wt, "file3.txt", "content 3\n", "Change 3", 3)
	summaries, err := gitsidian.Sync(ctx, again)
	require.NoError(t, err)
	assert.Equal(t, 1, summaries[0].Created, "persisted checkpoint should make the next run incremental")
	assert.Equal(t, h3, again.Checkpoint("master"))
}

func TestSync_EnablingDiffBackfillsExistingNotes(t *testing.T) {
	repoDir, _, hashes := seedRepo(t, 2)
	repo := newRepoConfig(t, repoDir)
	ctx := context.Background()

	_, err := gitsidian.Sync(ctx, repo)
	require.NoError(t, err)

	notePath := filepath.Join(repo.VaultPath, "branches", "master", hashes[1]+".md")
	before, err := os.ReadFile(notePath)
	require.NoError(t, err)
	require.NotContains(t, string(before), "## Diff\n```")

	statRe := regexp.MustCompile("(?s)## Diff stats\\s*\n```.*?```")
	statSection := statRe.FindString(string(before))
	require.NotEmpty(t, statSection, "the first sync should have written a populated diffstat")

	repo.Options.IncludeDiff = true
	summaries, err := gitsidian.Sync(ctx, repo)
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.Equal(t, 0, summaries[0].Created)
	assert.Equal(t, 2, summaries[0].Backfilled, "both notes gain the diff section, the root commit included")

	after, err := os.ReadFile(notePath)
	require.NoError(t, err)
	assert.Contains(t, string(after), "## Diff\n```")
	assert.Contains(t, string(after), "diff --git")
	assert.Contains(t, string(after), statSection,
		"the populated diffstat section must survive the diff backfill byte for byte")
}

func TestSync_BranchGlobSelectors(t *testing.T) {
	repoDir, wt, _ := seedRepo(t, 1)

	checkout := func(branch string, create bool) {
		err := wt.Checkout(&gogit.CheckoutOptions{
			Branch: plumbing.NewBranchReferenceName(branch),
			Create: create,
		})
		require.NoError(t, err)
	}

	checkout("feature/login", true)
	commitFile(t, repoDir, wt, "login.txt", "login\n", "Login work", 2)
	checkout("master", false)
	checkout("feature/search", true)
	commitFile(t, repoDir, wt, "search.txt", "search\n", "Search work", 3)

	repo := newRepoConfig(t, repoDir)
	repo.Branches = []string{"feature/**"}

	summaries, err := gitsidian.Sync(context.Background(), repo)
	require.NoError(t, err)
	require.Len(t, summaries, 2)
	assert.ElementsMatch(t, []string{"feature/login", "feature/search"},
		[]string{summaries[0].Branch, summaries[1].Branch})

	assert.FileExists(t, filepath.Join(repo.VaultPath, "branches", "feature", "login", "index.md"))
	assert.NoDirExists(t, filepath.Join(repo.VaultPath, "branches", "master"))
}

func TestSync_TemplateOverride(t *testing.T) {
	repoDir, _, hashes := seedRepo(t, 1)
	repo := newRepoConfig(t, repoDir)

	tplDir := filepath.Join(repo.VaultPath, ".gitsidian", "templates")
	require.NoError(t, os.MkdirAll(tplDir, 0755))
	override := "---\nsha: {{sha_yaml}}\n---\n# {{title}} via override\n"
	require.NoError(t, os.WriteFile(filepath.Join(tplDir, "commit.md"), []byte(override), 0644))

	_, err := gitsidian.Sync(context.Background(), repo)
	require.NoError(t, err)

	note, err := os.ReadFile(filepath.Join(repo.VaultPath, "branches", "master", hashes[0]+".md"))
	require.NoError(t, err)
	assert.Contains(t, string(note), "# Change 1 via override")
	assert.Contains(t, string(note), "sha: \""+hashes[0]+"\"")
}

func TestSync_NotARepositoryFails(t *testing.T) {
	repo := config.NewRepo("demo", "Demo", t.TempDir(), filepath.Join(t.TempDir(), "vault"))
	repo.Options.Backend = "go-git"

	_, err := gitsidian.Sync(context.Background(), repo)
	assert.Error(t, err)
	assert.NoDirExists(t, filepath.Join(repo.VaultPath, "branches"), "nothing should be written when the repo cannot be opened")
}
