// Package template implements the small note-template language: literal
// text, {{name}} placeholders, and conditional blocks.
//
// Conditional blocks have two equivalent open spellings ({{#name}} and
// {{#if name}}) and two close spellings ({{/name}} and {{/if}}). Block
// content is kept when the named context value is non-empty and removed,
// delimiters included, otherwise. Templates are parsed into a node list
// once and rendered against a map, so the open/close pairing rules live
// in the parser instead of a repeated string scan.
package template

import (
	"bytes"
	"encoding/json"
	"strings"
)

const (
	openDelim  = "{{"
	closeDelim = "}}"
)

// node is one parsed piece of a template.
type node interface {
	render(sb *strings.Builder, ctx map[string]string)
}

// literalNode is verbatim template text.
type literalNode string

func (n literalNode) render(sb *strings.Builder, _ map[string]string) {
	sb.WriteString(string(n))
}

// placeholderNode is a {{name}} substitution. Names absent from the
// context render back as their literal tag, so templates survive being
// rendered with a partial context.
type placeholderNode string

func (n placeholderNode) render(sb *strings.Builder, ctx map[string]string) {
	if v, ok := ctx[string(n)]; ok {
		sb.WriteString(v)
		return
	}
	sb.WriteString(openDelim)
	sb.WriteString(string(n))
	sb.WriteString(closeDelim)
}

// conditionalNode keeps its body only when ctx[name] is non-empty.
type conditionalNode struct {
	name string
	body []node
}

func (n conditionalNode) render(sb *strings.Builder, ctx map[string]string) {
	if ctx[n.name] == "" {
		return
	}
	for _, c := range n.body {
		c.render(sb, ctx)
	}
}

// Template is a parsed template ready for rendering.
type Template struct {
	nodes []node
}

// Parse builds the node representation of src. Parsing never fails:
// malformed constructs degrade to literal text (stray closers, nested
// braces) or to a dropped opening tag (a conditional with no closer),
// matching the renderer's defined degenerate-input behavior.
func Parse(src string) *Template {
	return &Template{nodes: parseNodes(src)}
}

func parseNodes(src string) []node {
	var nodes []node
	for len(src) > 0 {
		i := strings.Index(src, openDelim)
		if i < 0 {
			nodes = append(nodes, literalNode(src))
			break
		}
		if i > 0 {
			nodes = append(nodes, literalNode(src[:i]))
			src = src[i:]
		}

		end := strings.Index(src, closeDelim)
		if end < 0 {
			// Opening braces with no closing braces anywhere: literal.
			nodes = append(nodes, literalNode(src))
			break
		}

		tag := src[len(openDelim):end]
		if strings.Contains(tag, openDelim) {
			// "{{a{{b}}": the first braces never close. Emit them as
			// literal and rescan from the inner ones.
			nodes = append(nodes, literalNode(openDelim))
			src = src[len(openDelim):]
			continue
		}

		rest := src[end+len(closeDelim):]

		switch {
		case strings.HasPrefix(tag, "#"):
			name := strings.TrimSpace(strings.TrimPrefix(tag, "#"))
			if strings.HasPrefix(name, "if ") {
				name = strings.TrimSpace(strings.TrimPrefix(name, "if "))
			}
			body, after, ok := splitAtCloser(rest, name)
			if !ok {
				// No closer: drop only the opening tag and keep going.
				src = rest
				continue
			}
			nodes = append(nodes, conditionalNode{name: name, body: parseNodes(body)})
			src = after
		case strings.HasPrefix(tag, "/"):
			// Stray closer with no open: keep it verbatim.
			nodes = append(nodes, literalNode(src[:end+len(closeDelim)]))
			src = rest
		default:
			nodes = append(nodes, placeholderNode(tag))
			src = rest
		}
	}
	return nodes
}

// splitAtCloser finds the earliest closing tag for a conditional block
// named name, accepting both {{/name}} and {{/if}}. It returns the body
// before the closer and the text after it.
func splitAtCloser(src, name string) (body, after string, ok bool) {
	closers := []string{openDelim + "/" + name + closeDelim, openDelim + "/if" + closeDelim}
	pos, length := -1, 0
	for _, c := range closers {
		if p := strings.Index(src, c); p >= 0 && (pos < 0 || p < pos) {
			pos, length = p, len(c)
		}
	}
	if pos < 0 {
		return "", "", false
	}
	return src[:pos], src[pos+length:], true
}

// Render evaluates the template against ctx.
func (t *Template) Render(ctx map[string]string) string {
	var sb strings.Builder
	for _, n := range t.nodes {
		n.render(&sb, ctx)
	}
	return sb.String()
}

// Render is a convenience for Parse(src).Render(ctx). Callers rendering
// the same template repeatedly should parse once instead.
func Render(src string, ctx map[string]string) string {
	return Parse(src).Render(ctx)
}

// JSONString returns the JSON string literal form of s (quotes included),
// which is also valid YAML. Context builders use it for the `_yaml`
// placeholder variants embedded in front-matter.
func JSONString(s string) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false) // keep <, >, & readable in front-matter
	if err := enc.Encode(s); err != nil {
		// Encoding a plain string cannot fail; fall back to quoting anyway.
		return `""`
	}
	return strings.TrimSuffix(buf.String(), "\n")
}

// JSONStrings returns the JSON array form of values, used for the
// parents list in front-matter.
func JSONStrings(values []string) string {
	if values == nil {
		values = []string{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(values); err != nil {
		return "[]"
	}
	return strings.TrimSuffix(buf.String(), "\n")
}
