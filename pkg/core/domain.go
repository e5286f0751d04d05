// Commit is the central entity of the domain.
package core

import "time"

// DateLayout is the timestamp format produced by the history backends
// (the author date as `git log --pretty=%ai` prints it).
const DateLayout = "2006-01-02 15:04:05 -0700"

// Commit is one record of a repository's history. It is immutable once
// read and uniquely identified by SHA within a repository.
type Commit struct {
	SHA      string   // full commit id
	Short    string   // abbreviated commit id
	Author   string   // author name
	Email    string   // author email
	Date     string   // author date, formatted with DateLayout
	Subject  string   // first line of the message
	Body     string   // full message body
	Parents  []string // parent ids in history order
}

// Time parses the commit's author date. The zero time and an error are
// returned when the date string does not match DateLayout.
func (c Commit) Time() (time.Time, error) {
	return time.Parse(DateLayout, c.Date)
}

// FileNameStyle selects how a commit note's filename is derived.
type FileNameStyle string

const (
	StyleSHA      FileNameStyle = "sha"       // full commit id
	StyleShortSHA FileNameStyle = "short-sha" // first 7 characters
	StyleDateSHA  FileNameStyle = "date-sha"  // date plus first 12 characters
)

// Backend selects which history implementation serves a repository.
type Backend string

const (
	BackendGit   Backend = "git"    // shell out to the git binary
	BackendGoGit Backend = "go-git" // embedded go-git, no binary needed
)

// Options are the per-repository sync flags. The sync engine treats them
// as read-only input for the duration of a run; they are owned by the
// external repository configuration.
type Options struct {
	IncludeMerges     bool
	IncludeDiff       bool
	IncludeDiffStat   bool
	FileNameStyle     FileNameStyle
	MaxInitialCommits int // cap on commits fetched on first sync per branch, 0 = unlimited
	SkipBinaryDiff    bool
}

// BranchSummary is the per-branch outcome of a sync run.
type BranchSummary struct {
	Branch     string
	Commits    int    // commits seen in the fetch window
	Created    int    // notes newly materialized
	Backfilled int    // existing notes that gained diff content
	Checkpoint string // last processed commit id, empty if never advanced
}
