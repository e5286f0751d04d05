package gitsidian

import _ "embed"

// Version is the tool version, sourced from the VERSION file at build
// time.
//
//go:embed VERSION
var Version string
