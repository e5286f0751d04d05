package vault

import (
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/text"
)

// markdown is the shared parser used to pull headings out of note
// bodies when the front matter carries no title. Hand-edited notes may
// contain tables, so the extension is enabled.
var markdown = goldmark.New(
	goldmark.WithExtensions(extension.Table),
)

// firstHeading returns the text of the first level-1 heading in body,
// falling back to the first level-2 heading. Empty when the body has
// no headings at all.
func firstHeading(body []byte) string {
	doc := markdown.Parser().Parse(text.NewReader(body))

	var h1, h2 string
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		heading, ok := n.(*ast.Heading)
		if !ok {
			return ast.WalkContinue, nil
		}
		switch {
		case heading.Level == 1 && h1 == "":
			h1 = headingText(heading, body)
		case heading.Level == 2 && h1 == "" && h2 == "":
			h2 = headingText(heading, body)
		}
		if h1 != "" {
			return ast.WalkStop, nil
		}
		return ast.WalkContinue, nil
	})

	if h1 != "" {
		return h1
	}
	return h2
}

// headingText flattens a heading node back into plain text, keeping the
// contents of inline code spans and emphasis.
func headingText(n ast.Node, content []byte) string {
	var b strings.Builder
	_ = ast.Walk(n, func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch v := node.(type) {
		case *ast.Text:
			b.Write(v.Segment.Value(content))
		case *ast.String:
			b.Write(v.Value)
		}
		return ast.WalkContinue, nil
	})
	return strings.TrimSpace(b.String())
}
