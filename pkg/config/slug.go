package config

import (
	"strings"
	"unicode"

	"github.com/google/uuid"
)

// Slugify lowers a display name into a filesystem- and id-friendly
// slug: alphanumerics kept, separators unified to '-', runs collapsed.
// A name with nothing usable yields "repo".
func Slugify(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		case r == ' ' || r == '_' || r == '-' || r == '.':
			b.WriteByte('-')
		}
	}
	slug := b.String()
	for strings.Contains(slug, "--") {
		slug = strings.ReplaceAll(slug, "--", "-")
	}
	slug = strings.Trim(slug, "-")
	if slug == "" {
		return "repo"
	}
	return slug
}

// NewID derives a repo id from the display name, appending a random
// suffix while the slug is already taken.
func (c *Config) NewID(name string) string {
	slug := Slugify(name)
	id := slug
	for c.hasRepo(id) {
		id = slug + "-" + uuid.New().String()[:8]
	}
	return id
}

func (c *Config) hasRepo(id string) bool {
	for _, r := range c.Repos {
		if r.ID == id {
			return true
		}
	}
	return false
}
