// Package cmd provides the CLI commands for wikimirror using Cobra.
package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// Version is set at build time via -ldflags.
var Version = "dev"

var rootCmd = &cobra.Command{
	Use:   "wikimirror",
	Short: "Self-hosted mirror of Wikidata entity dumps",
	Long: `wikimirror imports compressed Wikidata JSON dumps into a local SQLite
database and serves lookups, full-text search, and statistics over it.

The import is resumable: progress is checkpointed next to the database,
and an interrupted run (Ctrl-C, crash, power loss) picks up close to
where it left off when re-run. Imports are idempotent, so overlapping
re-reads after a resume are safe.

Examples:
  wikimirror import --dump dump.json.bz2 --db wikidata.db
  wikimirror get Q42
  wikimirror search "douglas adams" -n 5
  wikimirror search bridge --filter 'kind == "item"'
  wikimirror stats
  wikimirror serve --addr localhost:8000`,
	Version: Version,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	// Define command groups for organized help output
	rootCmd.AddGroup(
		&cobra.Group{ID: "import", Title: "Import Commands:"},
		&cobra.Group{ID: "query", Title: "Query Commands:"},
	)

	// Add subcommands
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(getCmd)
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(serveCmd)
}
