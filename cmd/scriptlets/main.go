// Package main provides the entry point for the scriptlets CLI.
package main

import (
	"github.com/bnema/scriptlets/internal/cli/cmd"
)

// Build-time variables (set via ldflags).
var (
	version   = "dev"
	commit    = "unknown"
	buildDate = "unknown"
)

func main() {
	cmd.SetVersion(version + " (" + commit + ", " + buildDate + ")")
	cmd.Execute()
}
