package template

import (
	"os"
	"path/filepath"
)

// Template names accepted by Load. Override files live under
// <vault>/.gitsidian/templates/<name>.md.
const (
	CommitName      = "commit"
	BranchIndexName = "branch-index"
)

// DefaultCommit is the built-in commit note template. Front-matter values
// use the _yaml placeholder variants so arbitrary subjects and author
// names stay valid YAML.
const DefaultCommit = "---\n" +
	"title: {{title_yaml}}\n" +
	"sha: {{sha_yaml}}\n" +
	"short: {{short_yaml}}\n" +
	"author: {{author_yaml}}\n" +
	"email: {{email_yaml}}\n" +
	"date: {{date_yaml}}\n" +
	"branch: {{branch_yaml}}\n" +
	"parents: {{parents_json}}\n" +
	"tags: [\"git\", \"commit\", {{repo_yaml}}, {{branch_yaml}}]\n" +
	"---\n" +
	"# {{title}}\n" +
	"\n" +
	"SHA: `{{sha}}`  \n" +
	"Author: {{author}} <{{email}}>  \n" +
	"Date: {{date}}\n" +
	"\n" +
	"## Parents\n" +
	"{{parents_list}}\n" +
	"\n" +
	"## Message\n" +
	"{{body}}\n" +
	"\n" +
	"## Diff stats\n" +
	"```\n" +
	"{{diffstat}}\n" +
	"```\n" +
	"\n" +
	"{{#if diff}}\n" +
	"## Diff\n" +
	"```\n" +
	"{{diff}}\n" +
	"```\n" +
	"{{/if}}\n"

// DefaultBranchIndex is the built-in per-branch index template.
const DefaultBranchIndex = "---\n" +
	"title: {{title_yaml}}\n" +
	"branch: {{branch_yaml}}\n" +
	"updated: {{updated_yaml}}\n" +
	"tags: [\"git\", \"branch\", \"index\"]\n" +
	"---\n" +
	"# Branch: {{branch}}\n" +
	"\n" +
	"{{#if head_note}}" +
	"Head: [[{{head_note}}]]\n" +
	"\n" +
	"{{/if}}" +
	"## Commits (latest first)\n" +
	"{{commit_links}}\n"

// Load returns the template with the given name, preferring a readable
// override file in the vault over the built-in default. Templates are
// stateless and loaded fresh per call, so edits to an override take
// effect on the next render.
func Load(vaultRoot, name string) string {
	override := filepath.Join(vaultRoot, ".gitsidian", "templates", name+".md")
	if data, err := os.ReadFile(override); err == nil {
		return string(data)
	}
	switch name {
	case CommitName:
		return DefaultCommit
	case BranchIndexName:
		return DefaultBranchIndex
	}
	return ""
}
