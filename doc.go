// Package gitsidian is the composition root for the gitsidian tool.
//
// It connects the sync engine (Domain Layer) with the history backends
// and the note vault (Infrastructure Layer), so a configured repository
// can be mirrored into Markdown notes with one call.
//
// Philosophy:
//
// Gitsidian turns a git repository's commit history into an
// Obsidian-style vault: one note per commit plus a per-branch index.
// Notes are written exactly once and never overwritten afterwards, so
// they are safe to annotate by hand; everything the tool regenerates
// (the index) is derived purely from what is on disk.
//
// Features:
//
//   - **Incremental Sync**: per-branch checkpoints bound each run to the
//     commits that are actually new; rewritten history is recovered by a
//     full re-scan with on-disk notes acting as the dedup.
//   - **Write-Once Notes**: atomic create-only materialization preserves
//     every manual edit.
//   - **Lazy Backfill**: diff and diffstat sections are added to existing
//     notes later, when the options ask for them, without touching
//     anything else.
//   - **Disk-Scanned Index**: each branch index is rebuilt from the note
//     files themselves, newest first, and self-heals from inconsistency.
//   - **Two Backends**: the git binary by default, embedded go-git where
//     no binary exists (`backend: "go-git"`).
//   - **Templates**: built-in commit and branch-index templates,
//     overridable per vault under `.gitsidian/templates/`.
//
// Usage:
//
//	// A repo record normally comes from the configuration store.
//	repo := config.NewRepo("demo", "Demo", "/src/demo", "/vault/demo")
//
//	summaries, err := gitsidian.Sync(ctx, repo,
//		gitsidian.WithLogger(logger),
//	)
package gitsidian
