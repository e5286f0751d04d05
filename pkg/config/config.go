// Package config persists the application configuration: which
// repositories are registered, where their vaults live, the per-repo
// sync options, and the per-branch checkpoints. The whole configuration
// is one JSON document in the platform config directory, rewritten
// atomically on every save.
package config

import (
	"encoding/json"
	"fmt"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/apocsb/Gitsidian/pkg/core"
)

// Version is the config schema version this build reads and writes.
const Version = 1

// Config is the root of the persisted document.
type Config struct {
	Version int     `json:"version"`
	Repos   []*Repo `json:"repos"`
}

// Repo registers one git repository and the vault it is mirrored into.
// LastSync maps branch names to the last fully processed commit id.
type Repo struct {
	ID        string            `json:"id"`
	Name      string            `json:"name"`
	RepoPath  string            `json:"repoPath"`
	VaultPath string            `json:"vaultPath"`
	Branches  []string          `json:"branches"`
	Options   Options           `json:"options"`
	LastSync  map[string]string `json:"lastSync"`
	CreatedAt string            `json:"createdAt"`
	UpdatedAt string            `json:"updatedAt"`
}

// Options are the persisted per-repository sync flags. Field names
// mirror the JSON keys; Core converts to the domain form.
type Options struct {
	IncludeMerges              bool   `json:"includeMerges"`
	IncludeDiff                bool   `json:"includeDiff"`
	IncludeDiffStat            bool   `json:"includeDiffStat"`
	FileNameStyle              string `json:"fileNameStyle"`
	MaxInitialCommitsPerBranch *int   `json:"maxInitialCommitsPerBranch"`
	SkipBinaryDiff             bool   `json:"skipBinaryDiff"`
	Backend                    string `json:"backend"`
}

// DefaultOptions returns the options applied to keys absent from the
// stored document.
func DefaultOptions() Options {
	return Options{
		IncludeDiffStat: true,
		FileNameStyle:   string(core.StyleSHA),
		SkipBinaryDiff:  true,
		Backend:         string(core.BackendGit),
	}
}

// UnmarshalJSON decodes a repo record on top of the option defaults, so
// flags absent from an older document keep their documented defaults
// instead of Go's zero values.
func (r *Repo) UnmarshalJSON(data []byte) error {
	type plain Repo
	tmp := plain{Options: DefaultOptions()}
	if err := json.Unmarshal(data, &tmp); err != nil {
		return err
	}
	*r = Repo(tmp)
	return nil
}

// NewRepo builds a repository record with defaults and timestamps set.
func NewRepo(id, name, repoPath, vaultPath string) *Repo {
	now := nowStamp()
	return &Repo{
		ID:        id,
		Name:      name,
		RepoPath:  repoPath,
		VaultPath: vaultPath,
		Options:   DefaultOptions(),
		LastSync:  map[string]string{},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Checkpoint returns the last synced commit id for branch, empty when
// the branch has never been synced.
func (r *Repo) Checkpoint(branch string) string {
	return r.LastSync[branch]
}

// SetCheckpoint records the last synced commit id for branch.
func (r *Repo) SetCheckpoint(branch, sha string) {
	if r.LastSync == nil {
		r.LastSync = make(map[string]string)
	}
	r.LastSync[branch] = sha
}

// Touch refreshes the repo's updated timestamp.
func (r *Repo) Touch() {
	r.UpdatedAt = nowStamp()
}

func nowStamp() string {
	return time.Now().UTC().Format(time.RFC3339)
}

// Validate checks a repository record, normalising an empty display
// name to the id first.
func (r *Repo) Validate() error {
	if r.Name == "" {
		r.Name = r.ID
	}
	if err := validation.ValidateStruct(r,
		validation.Field(&r.ID, validation.Required),
		validation.Field(&r.RepoPath, validation.Required),
		validation.Field(&r.VaultPath, validation.Required),
	); err != nil {
		return fmt.Errorf("repo %q: %w", r.ID, err)
	}
	if err := r.Options.Validate(); err != nil {
		return fmt.Errorf("repo %q: %w", r.ID, err)
	}
	return nil
}

// Values accepted for the enumerated option fields.
var (
	fileNameStyles = []interface{}{
		string(core.StyleSHA),
		string(core.StyleDateSHA),
		string(core.StyleShortSHA),
	}
	backends = []interface{}{
		string(core.BackendGit),
		string(core.BackendGoGit),
	}
)

// Validate checks the option flags. Empty enumerated fields are
// normalised to their defaults for backward compatibility; non-empty
// unknown values are rejected.
func (o *Options) Validate() error {
	if o.FileNameStyle == "" {
		o.FileNameStyle = string(core.StyleSHA)
	}
	if o.Backend == "" {
		o.Backend = string(core.BackendGit)
	}
	return validation.ValidateStruct(o,
		validation.Field(&o.FileNameStyle, validation.In(fileNameStyles...)),
		validation.Field(&o.Backend, validation.In(backends...)),
		validation.Field(&o.MaxInitialCommitsPerBranch, validation.Min(0)),
	)
}

// Core converts the persisted flags to the domain options.
func (o Options) Core() core.Options {
	limit := 0
	if o.MaxInitialCommitsPerBranch != nil {
		limit = *o.MaxInitialCommitsPerBranch
	}
	style := core.FileNameStyle(o.FileNameStyle)
	if style == "" {
		style = core.StyleSHA
	}
	return core.Options{
		IncludeMerges:     o.IncludeMerges,
		IncludeDiff:       o.IncludeDiff,
		IncludeDiffStat:   o.IncludeDiffStat,
		FileNameStyle:     style,
		MaxInitialCommits: limit,
		SkipBinaryDiff:    o.SkipBinaryDiff,
	}
}

// Validate checks every repository record and rejects duplicate ids.
func (c *Config) Validate() error {
	seen := make(map[string]bool, len(c.Repos))
	for _, r := range c.Repos {
		if err := r.Validate(); err != nil {
			return err
		}
		if seen[r.ID] {
			return fmt.Errorf("duplicate repo id %q", r.ID)
		}
		seen[r.ID] = true
	}
	return nil
}

// Repo returns the configured repository with the given id.
func (c *Config) Repo(id string) (*Repo, error) {
	for _, r := range c.Repos {
		if r.ID == id {
			return r, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", core.ErrUnknownRepo, id)
}

// Add appends a repository record.
func (c *Config) Add(r *Repo) {
	c.Repos = append(c.Repos, r)
}

// Remove deletes the repository with the given id and reports whether
// anything was removed. Note files on disk are left alone.
func (c *Config) Remove(id string) bool {
	for i, r := range c.Repos {
		if r.ID == id {
			c.Repos = append(c.Repos[:i], c.Repos[i+1:]...)
			return true
		}
	}
	return false
}
