package vault

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/apocsb/Gitsidian/pkg/core"
	"github.com/apocsb/Gitsidian/pkg/template"
)

// WriteCommitNote renders the note for a commit and creates it atomically
// at its deterministic path. If the note already exists the call is a
// no-op that returns the existing path with created=false: a note is
// written exactly once, and user edits after that are never discarded.
//
// diffstat and diff are the pre-fetched section contents; pass empty
// strings when the corresponding option is off or the data is empty.
func (v *Vault) WriteCommitNote(branch string, c core.Commit, diffstat, diff string, opts core.Options, repoID string) (string, bool, error) {
	path, err := v.NotePath(branch, c, opts.FileNameStyle)
	if err != nil {
		return "", false, err
	}
	if _, err := os.Stat(path); err == nil {
		return path, false, nil
	}

	ctx := v.noteContext(branch, c, repoID)
	ctx["diffstat"] = diffstat
	ctx["diff"] = diff

	content := template.Render(template.Load(v.Root, template.CommitName), ctx)

	// Rewrite the diff sections into the canonical fenced form the
	// backfiller later enforces, so a first write is byte-identical to a
	// backfilled one and unchanged notes never appear to differ.
	content = normalizeSections(content, diffstat, diff, opts.IncludeDiffStat, opts.IncludeDiff)

	if err := writeNew(path, content); err != nil {
		return "", false, err
	}
	return path, true, nil
}

// noteContext assembles the template values for a commit, raw and
// JSON-escaped (_yaml) variants both.
func (v *Vault) noteContext(branch string, c core.Commit, repoID string) map[string]string {
	title := strings.TrimSpace(c.Subject)
	if title == "" {
		title = "Untitled"
	}
	sha := strings.TrimSpace(c.SHA)
	short := strings.TrimSpace(c.Short)
	if short == "" {
		short = shorten(sha, 7)
	}
	body := strings.TrimRight(c.Body, " \t\r\n")
	if body == "" {
		body = "(no message)"
	}
	tag := branch
	if repoID != "" {
		tag = repoID + ":" + branch
	}

	ctx := make(map[string]string)
	put := func(key, val string) {
		ctx[key] = val
		ctx[key+"_yaml"] = template.JSONString(val)
	}
	put("title", title)
	put("sha", sha)
	put("short", short)
	put("author", strings.TrimSpace(c.Author))
	put("email", strings.TrimSpace(c.Email))
	put("date", strings.TrimSpace(c.Date))
	put("branch", branch)
	put("repo", repoID)
	put("repo_branch_tag", tag)
	ctx["parents_list"] = v.parentLinks(branch, c.Parents)
	ctx["parents_json"] = template.JSONStrings(c.Parents)
	ctx["body"] = body
	return ctx
}

// parentLinks builds a bullet list of wiki-links to parent notes. A
// parent resolves to a note when some file in the branch directory
// contains its id (full, then 7-character form); otherwise the short id
// is used as plain link text.
func (v *Vault) parentLinks(branch string, parents []string) string {
	if len(parents) == 0 {
		return "(none)"
	}
	dir, err := v.BranchDir(branch)
	if err != nil {
		dir = ""
	}
	var links []string
	for _, p := range parents {
		target := ""
		if dir != "" && p != "" {
			for _, seed := range []string{p, shorten(p, 7)} {
				matches, _ := filepath.Glob(filepath.Join(dir, "*"+seed+"*.md"))
				if len(matches) > 0 {
					base := filepath.Base(matches[0])
					target = strings.TrimSuffix(base, ".md")
					break
				}
			}
		}
		if target == "" {
			target = shorten(p, 7)
			if target == "" {
				target = "(unknown)"
			}
		}
		links = append(links, "- [["+target+"]]")
	}
	return strings.Join(links, "\n")
}
