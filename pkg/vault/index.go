package vault

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/apocsb/Gitsidian/internal/fsutil"
	"github.com/apocsb/Gitsidian/pkg/core"
	"github.com/apocsb/Gitsidian/pkg/template"
)

// Body-line fallbacks for notes whose front matter was edited away.
var (
	shaLineRe    = regexp.MustCompile("SHA:\\s*`([0-9a-fA-F]{7,40})`")
	dateLineRe   = regexp.MustCompile(`(?m)Date:\s*(.+)$`)
	authorLineRe = regexp.MustCompile(`(?m)Author:\s*(.+)$`)
)

// dateLayouts are tried in order against a note's date field. The first
// is the layout commit notes are written with.
var dateLayouts = []string{
	core.DateLayout,
	time.RFC3339,
	time.RFC1123Z,
	"2006-01-02",
}

// frontMatter is the slice of note front matter the index reads.
type frontMatter struct {
	Title  string `yaml:"title"`
	SHA    string `yaml:"sha"`
	Author string `yaml:"author"`
	Date   string `yaml:"date"`
}

// noteMeta is the raw metadata recovered from one note's text.
type noteMeta struct {
	Title   string
	SHA     string
	Author  string
	RawDate string
}

// indexEntry is one resolved line of the branch index.
type indexEntry struct {
	link   string
	title  string
	author string
	sha    string
	date   time.Time
}

// splitFrontMatter returns the front matter block and the remaining
// body. ok is false when the text has no leading fence; an unclosed
// fence claims the whole text, matching how the notes were written.
func splitFrontMatter(text string) (fm, body string, ok bool) {
	if !strings.HasPrefix(text, "---") {
		return "", text, false
	}
	end := strings.Index(text[3:], "\n---")
	if end < 0 {
		return text[3:], "", true
	}
	end += 3
	return text[3:end], text[end+4:], true
}

// parseNoteMeta pulls title, sha, author and date out of note text.
// Front matter wins; well-known body lines and the first heading serve
// as fallbacks for notes the user has reshaped.
func parseNoteMeta(text string) noteMeta {
	var m noteMeta
	fm, body, hasFM := splitFrontMatter(text)
	if hasFM {
		var f frontMatter
		if err := yaml.Unmarshal([]byte(fm), &f); err == nil {
			m = noteMeta{Title: f.Title, SHA: f.SHA, Author: f.Author, RawDate: f.Date}
		}
	}
	if m.SHA == "" {
		if g := shaLineRe.FindStringSubmatch(text); g != nil {
			m.SHA = g[1]
		}
	}
	if m.RawDate == "" {
		if g := dateLineRe.FindStringSubmatch(text); g != nil {
			m.RawDate = strings.TrimSpace(g[1])
		}
	}
	if m.Author == "" {
		if g := authorLineRe.FindStringSubmatch(text); g != nil {
			m.Author = strings.TrimSpace(g[1])
		}
	}
	if m.Title == "" {
		m.Title = firstHeading([]byte(body))
	}
	return m
}

func parseNoteDate(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// readNoteMeta resolves the index entry for one note file. Missing
// fields degrade to the filename stem and the file's mtime, so a
// heavily edited note still lands in the index instead of vanishing.
func (v *Vault) readNoteMeta(path string) (indexEntry, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		if v.Logger != nil {
			v.Logger.Warn("skipping unreadable note", "path", path, "error", err)
		}
		return indexEntry{}, false
	}
	m := parseNoteMeta(string(data))

	date, ok := parseNoteDate(m.RawDate)
	if !ok {
		info, err := os.Stat(path)
		if err != nil {
			return indexEntry{}, false
		}
		date = info.ModTime().UTC()
	}

	base := filepath.Base(path)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	name := SanitizeFilename(strings.TrimSpace(base))
	link := name
	if strings.HasSuffix(strings.ToLower(link), ".md") {
		link = link[:len(link)-3]
	}

	e := indexEntry{link: link, title: m.Title, author: m.Author, sha: m.SHA, date: date}
	if e.sha == "" {
		e.sha = stem
	}
	if e.title == "" {
		e.title = stem
	}
	return e, true
}

// entryLine formats one index bullet. The wiki-link alias must never
// contain "]]" or "|", and every field is flattened to a single line so
// one odd note cannot break the list structure.
func entryLine(e indexEntry) string {
	title := strings.ReplaceAll(e.title, "]]", "")
	title = strings.ReplaceAll(title, "|", "¦")
	title = strings.Join(strings.Fields(title), " ")

	entry := "- [[" + e.link + "|" + title + "]] — " + e.date.Format("2006-01-02 15:04 -0700")
	if author := strings.Join(strings.Fields(e.author), " "); author != "" {
		entry += " — " + author
	}
	return entry + " — " + shorten(e.sha, 7)
}

// WriteBranchIndex rebuilds the index note of a branch from the notes
// on disk. The index is derived state: every sync regenerates it, and
// deleting it costs nothing but the next rebuild.
//
// The rendered bytes are a pure function of the branch's notes (the
// updated stamp comes from the newest note, not the clock), and an
// identical index is not rewritten, so repeated syncs leave bytes and
// mtime alike untouched.
func (v *Vault) WriteBranchIndex(branch string) (string, error) {
	dir, err := v.BranchDir(branch)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create branch dir: %w", err)
	}
	files, err := v.NoteFiles(branch)
	if err != nil {
		return "", err
	}

	entries := make([]indexEntry, 0, len(files))
	for _, path := range files {
		if e, ok := v.readNoteMeta(path); ok {
			entries = append(entries, e)
		}
	}
	// Newest first; name order from NoteFiles breaks date ties.
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].date.After(entries[j].date)
	})

	lines := make([]string, 0, len(entries))
	for _, e := range entries {
		lines = append(lines, entryLine(e))
	}
	commitLinks := "(no commits)"
	if len(lines) > 0 {
		commitLinks = strings.Join(lines, "\n")
	}

	var headNote, updated string
	if len(entries) > 0 {
		headNote = entries[0].link
		updated = entries[0].date.UTC().Format(time.RFC3339)
	}

	title := "Branch Index: " + branch
	content := template.Render(template.Load(v.Root, template.BranchIndexName), map[string]string{
		"title":        title,
		"title_yaml":   template.JSONString(title),
		"branch":       branch,
		"branch_yaml":  template.JSONString(branch),
		"updated":      updated,
		"updated_yaml": template.JSONString(updated),
		"head_note":    headNote,
		"commit_links": commitLinks,
	})

	path := filepath.Join(dir, IndexFileName)
	if existing, err := os.ReadFile(path); err == nil && string(existing) == content {
		return path, nil
	}
	if err := fsutil.WriteFileAtomic(path, []byte(content), 0644); err != nil {
		return "", fmt.Errorf("write index: %w", err)
	}
	return path, nil
}
