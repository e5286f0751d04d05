package config

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/apocsb/Gitsidian/pkg/core"
)

func TestRepoUnmarshal_AbsentOptionsKeepDefaults(t *testing.T) {
	raw := `{"id":"demo","repoPath":"/src/demo","vaultPath":"/vault/demo"}`

	var r Repo
	if err := json.Unmarshal([]byte(raw), &r); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}

	if !r.Options.IncludeDiffStat {
		t.Error("IncludeDiffStat should default to true")
	}
	if !r.Options.SkipBinaryDiff {
		t.Error("SkipBinaryDiff should default to true")
	}
	if r.Options.FileNameStyle != string(core.StyleSHA) {
		t.Errorf("FileNameStyle = %q, want %q", r.Options.FileNameStyle, core.StyleSHA)
	}
	if r.Options.Backend != string(core.BackendGit) {
		t.Errorf("Backend = %q, want %q", r.Options.Backend, core.BackendGit)
	}
	if r.Options.MaxInitialCommitsPerBranch != nil {
		t.Errorf("MaxInitialCommitsPerBranch = %v, want nil", *r.Options.MaxInitialCommitsPerBranch)
	}
}

func TestRepoUnmarshal_PartialOptionsOverlayDefaults(t *testing.T) {
	raw := `{
		"id": "demo",
		"repoPath": "/src/demo",
		"vaultPath": "/vault/demo",
		"options": {"includeDiff": true, "maxInitialCommitsPerBranch": 25}
	}`

	var r Repo
	if err := json.Unmarshal([]byte(raw), &r); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}

	if !r.Options.IncludeDiff {
		t.Error("IncludeDiff should be true")
	}
	if !r.Options.IncludeDiffStat {
		t.Error("IncludeDiffStat default should survive a partial options object")
	}
	if r.Options.MaxInitialCommitsPerBranch == nil || *r.Options.MaxInitialCommitsPerBranch != 25 {
		t.Errorf("MaxInitialCommitsPerBranch = %v, want 25", r.Options.MaxInitialCommitsPerBranch)
	}
}

func TestOptionsValidate(t *testing.T) {
	neg := -1
	tests := []struct {
		name    string
		opts    Options
		wantErr bool
	}{
		{"defaults pass", DefaultOptions(), false},
		{"empty enums normalised", Options{}, false},
		{"short-sha style", Options{FileNameStyle: "short-sha", Backend: "go-git"}, false},
		{"unknown style", Options{FileNameStyle: "uuid"}, true},
		{"unknown backend", Options{Backend: "hg"}, true},
		{"negative limit", Options{MaxInitialCommitsPerBranch: &neg}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestOptionsValidate_NormalisesEmptyEnums(t *testing.T) {
	opts := Options{}
	if err := opts.Validate(); err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	if opts.FileNameStyle != string(core.StyleSHA) {
		t.Errorf("FileNameStyle = %q, want %q", opts.FileNameStyle, core.StyleSHA)
	}
	if opts.Backend != string(core.BackendGit) {
		t.Errorf("Backend = %q, want %q", opts.Backend, core.BackendGit)
	}
}

func TestOptionsCore(t *testing.T) {
	limit := 50
	opts := Options{
		IncludeMerges:              true,
		IncludeDiff:                true,
		IncludeDiffStat:            true,
		FileNameStyle:              "date-sha",
		MaxInitialCommitsPerBranch: &limit,
		SkipBinaryDiff:             true,
	}

	got := opts.Core()
	want := core.Options{
		IncludeMerges:     true,
		IncludeDiff:       true,
		IncludeDiffStat:   true,
		FileNameStyle:     core.StyleDateSHA,
		MaxInitialCommits: 50,
		SkipBinaryDiff:    true,
	}
	if got != want {
		t.Errorf("Core() = %+v, want %+v", got, want)
	}
}

func TestOptionsCore_NilLimitMeansUnlimited(t *testing.T) {
	got := DefaultOptions().Core()
	if got.MaxInitialCommits != 0 {
		t.Errorf("MaxInitialCommits = %d, want 0", got.MaxInitialCommits)
	}
	if got.FileNameStyle != core.StyleSHA {
		t.Errorf("FileNameStyle = %q, want %q", got.FileNameStyle, core.StyleSHA)
	}
}

func TestRepoValidate(t *testing.T) {
	r := NewRepo("demo", "", "/src/demo", "/vault/demo")
	if err := r.Validate(); err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	if r.Name != "demo" {
		t.Errorf("Name = %q, want fallback to id", r.Name)
	}

	missing := NewRepo("demo", "Demo", "", "/vault/demo")
	if err := missing.Validate(); err == nil {
		t.Error("empty repoPath should fail validation")
	}
}

func TestConfigValidate_DuplicateIDs(t *testing.T) {
	cfg := &Config{Version: Version}
	cfg.Add(NewRepo("demo", "One", "/src/one", "/vault/one"))
	cfg.Add(NewRepo("demo", "Two", "/src/two", "/vault/two"))

	if err := cfg.Validate(); err == nil {
		t.Error("duplicate ids should fail validation")
	}
}

func TestConfigRepoLookup(t *testing.T) {
	cfg := &Config{Version: Version}
	cfg.Add(NewRepo("demo", "Demo", "/src/demo", "/vault/demo"))

	r, err := cfg.Repo("demo")
	if err != nil {
		t.Fatalf("Repo failed: %v", err)
	}
	if r.Name != "Demo" {
		t.Errorf("Name = %q, want Demo", r.Name)
	}

	if _, err := cfg.Repo("ghost"); !errors.Is(err, core.ErrUnknownRepo) {
		t.Errorf("error = %v, want ErrUnknownRepo", err)
	}
}

func TestConfigRemove(t *testing.T) {
	cfg := &Config{Version: Version}
	cfg.Add(NewRepo("one", "One", "/src/one", "/vault/one"))
	cfg.Add(NewRepo("two", "Two", "/src/two", "/vault/two"))

	if !cfg.Remove("one") {
		t.Fatal("Remove should report true for an existing id")
	}
	if cfg.Remove("one") {
		t.Error("Remove should report false the second time")
	}
	if len(cfg.Repos) != 1 || cfg.Repos[0].ID != "two" {
		t.Errorf("Repos = %+v, want only 'two' left", cfg.Repos)
	}
}

func TestRepoCheckpoints(t *testing.T) {
	r := &Repo{ID: "demo"}

	if got := r.Checkpoint("main"); got != "" {
		t.Errorf("Checkpoint on empty map = %q, want empty", got)
	}

	r.SetCheckpoint("main", "abc123")
	if got := r.Checkpoint("main"); got != "abc123" {
		t.Errorf("Checkpoint = %q, want abc123", got)
	}
	if got := r.Checkpoint("dev"); got != "" {
		t.Errorf("Checkpoint for unsynced branch = %q, want empty", got)
	}
}
