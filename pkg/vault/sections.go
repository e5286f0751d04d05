package vault

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/apocsb/Gitsidian/internal/fsutil"
	"github.com/apocsb/Gitsidian/pkg/core"
)

// Placeholder is the marker written into a fenced section when real data
// was unavailable at creation time. Placeholder sections stay eligible
// for backfill on later syncs.
const Placeholder = "(none)"

// section models one of the two well-known fenced blocks of a commit
// note: a `## <heading>` line followed by a code fence.
type section struct {
	heading string
	// full matches heading line + fenced block + one trailing newline.
	full *regexp.Regexp
	// placeholder matches a fenced block holding only the placeholder.
	placeholder *regexp.Regexp
	// headingLine matches the bare heading anywhere in the note.
	headingLine *regexp.Regexp
}

func newSection(heading string) section {
	h := regexp.QuoteMeta(heading)
	const fence = "```"
	return section{
		heading:     heading,
		full:        regexp.MustCompile(`(?m)(^##\s*` + h + `\s*\n)(` + fence + `[\s\S]*?` + fence + `)(\n|$)`),
		placeholder: regexp.MustCompile(`(## ` + h + `\s*\n` + fence + `\s*\n)\(none\)(\s*\n` + fence + `)`),
		headingLine: regexp.MustCompile(`(?m)^##\s*` + h + `\s*$`),
	}
}

var (
	diffStatSection = newSection("Diff stats")
	diffSection     = newSection("Diff")
)

// replace rewrites the section for a fresh render: keep=false removes it
// entirely, keep=true replaces the fenced block with content, appending
// the whole section at the end when it is absent.
func (s section) replace(text, content string, keep bool) string {
	if loc := s.full.FindStringIndex(text); loc != nil {
		if !keep {
			return text[:loc[0]] + text[loc[1]:]
		}
		return text[:loc[0]] + s.render(content) + text[loc[1]:]
	}
	if !keep {
		return text
	}
	if !strings.HasSuffix(text, "\n") {
		text += "\n"
	}
	return text + "\n" + s.render(content)
}

// fill is the additive variant used on existing notes: it swaps a
// placeholder for content or appends the section when its heading is
// missing, and otherwise leaves the note byte-identical. The heading
// check is anchored so a `## Diff stats` section does not mask an absent
// `## Diff` one.
func (s section) fill(text, content string) (string, bool) {
	content = strings.TrimSpace(content)
	if content == "" {
		return text, false
	}
	if m := s.placeholder.FindStringSubmatchIndex(text); m != nil {
		out := text[:m[0]] + text[m[2]:m[3]] + content + text[m[4]:m[5]] + text[m[1]:]
		return out, true
	}
	if !s.headingLine.MatchString(text) {
		if !strings.HasSuffix(text, "\n") {
			text += "\n"
		}
		return text + "\n" + s.render(content), true
	}
	return text, false
}

// needsContent reports whether a backfill would have anything to do, so
// diff data is fetched only when it will actually be used.
func (s section) needsContent(text string) bool {
	return s.placeholder.MatchString(text) || !s.headingLine.MatchString(text)
}

func (s section) render(content string) string {
	return "## " + s.heading + "\n```\n" + content + "\n```\n"
}

// normalizeSections rewrites the diff sections of freshly rendered note
// text into their canonical fenced form, substituting the placeholder
// for empty content. Materializer output therefore matches what the
// backfiller would produce, keeping repeated syncs byte-stable.
func normalizeSections(text, diffstat, diff string, includeStat, includeDiff bool) string {
	stat := strings.TrimSpace(diffstat)
	if stat == "" {
		stat = Placeholder
	}
	d := strings.TrimSpace(diff)
	if d == "" {
		d = Placeholder
	}
	out := diffStatSection.replace(text, stat, includeStat)
	return diffSection.replace(out, d, includeDiff)
}

// DiffSource is the slice of the history contract the backfiller needs.
type DiffSource interface {
	DiffStat(ctx context.Context, sha string) (string, error)
	Diff(ctx context.Context, sha string, skipBinary bool) (string, error)
}

// Backfiller injects missing diff content into already-created notes.
// It is strictly additive: populated sections are never replaced, a
// disabled option never removes a section, and a no-op never touches
// the file.
type Backfiller struct {
	Source  DiffSource
	Options core.Options
	Logger  *slog.Logger
}

// Ensure fills the diffstat/diff sections of the note at path for the
// commit sha, when the corresponding option is enabled and the section
// is absent or still holds the placeholder. It reports whether the file
// was rewritten. A failed diff query is logged and treated as empty
// content for that section, never as a hard error.
func (b *Backfiller) Ensure(ctx context.Context, path, sha string) (bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return false, fmt.Errorf("read note: %w", err)
	}
	text := string(data)
	changed := false

	if b.Options.IncludeDiffStat && diffStatSection.needsContent(text) {
		stat, err := b.Source.DiffStat(ctx, sha)
		if err != nil {
			b.warn("diffstat query failed", sha, err)
		} else if out, ok := diffStatSection.fill(text, stat); ok {
			text = out
			changed = true
		}
	}

	if b.Options.IncludeDiff && diffSection.needsContent(text) {
		diff, err := b.Source.Diff(ctx, sha, b.Options.SkipBinaryDiff)
		if err != nil {
			b.warn("diff query failed", sha, err)
		} else if out, ok := diffSection.fill(text, diff); ok {
			text = out
			changed = true
		}
	}

	if !changed {
		return false, nil
	}
	if err := fsutil.WriteFileAtomic(path, []byte(text), 0644); err != nil {
		return false, fmt.Errorf("rewrite note: %w", err)
	}
	return true, nil
}

func (b *Backfiller) warn(msg, sha string, err error) {
	if b.Logger != nil {
		b.Logger.Warn(msg, "sha", sha, "error", err)
	}
}

// NoteCommitID recovers the commit id a note describes: the front-matter
// sha field when present, the filename stem otherwise.
func NoteCommitID(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read note: %w", err)
	}
	if m := parseNoteMeta(string(data)); m.SHA != "" {
		return m.SHA, nil
	}
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base)), nil
}
