package vault

import (
	"regexp"
	"strings"

	"github.com/apocsb/Gitsidian/pkg/core"
)

var (
	// Zero-width and bidirectional control characters that must never
	// reach a filename.
	invisibleRe = regexp.MustCompile(`[\x{200B}-\x{200D}\x{FEFF}\x{202A}-\x{202E}\x{2066}-\x{2069}]`)
	controlRe   = regexp.MustCompile(`[\x00-\x1F\x7F]`)
	spaceRunRe  = regexp.MustCompile(`\s+`)
	dashRunRe   = regexp.MustCompile(`-{2,}`)
)

// Filename derives the note filename for a commit id under the given
// style. Unrecognized styles fall back to the full-id form; that is the
// documented last-resort policy, configuration validation rejects them
// earlier. The result is sanitized and always carries the .md suffix.
func Filename(style core.FileNameStyle, sha, date string) string {
	var stem string
	switch style {
	case core.StyleShortSHA:
		stem = shorten(sha, 7)
	case core.StyleDateSHA:
		day, _, _ := strings.Cut(date, " ")
		stem = day + "-" + shorten(sha, 12)
	default: // core.StyleSHA and anything unknown
		stem = sha
	}
	name := SanitizeFilename(stem + ".md")
	if !strings.HasSuffix(strings.ToLower(name), ".md") {
		name += ".md"
	}
	return name
}

// SanitizeFilename returns a filesystem- and wiki-link-safe filename:
// control, zero-width and bidi characters are removed, whitespace runs
// and path separators become dashes, repeated dashes collapse. The
// extension, if present, is preserved.
func SanitizeFilename(name string) string {
	if name == "" {
		return name
	}
	base, ext := name, ""
	if i := strings.LastIndex(name, "."); i >= 0 {
		base, ext = name[:i], name[i:]
	}
	base = invisibleRe.ReplaceAllString(base, "")
	base = controlRe.ReplaceAllString(base, "")
	base = spaceRunRe.ReplaceAllString(base, "-")
	base = strings.NewReplacer("/", "-", "\\", "-", "|", "-").Replace(base)
	base = dashRunRe.ReplaceAllString(base, "-")
	base = strings.Trim(base, "-")
	return base + ext
}

// shorten truncates a commit id without slicing past its end.
func shorten(sha string, n int) string {
	if len(sha) <= n {
		return sha
	}
	return sha[:n]
}
