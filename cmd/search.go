package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wikimirror/wikimirror/internal/config"
	"github.com/wikimirror/wikimirror/pkg/query"
)

// search command flags
var (
	searchDBPath string
	searchLimit  int
	searchFilter string
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Full-text search over entity labels and descriptions",
	Long: `Search entities by English label, description, or alias.

An optional --filter expression narrows the results; it evaluates
against each result with the fields id, kind, label, description.`,
	Example: `  wikimirror search "douglas adams"
  wikimirror search bridge -n 25
  wikimirror search bridge --filter 'kind == "item" && label contains "Bridge"'`,
	Args:    cobra.ExactArgs(1),
	GroupID: "query",
	RunE:    runSearch,
}

func init() {
	cfg := config.FromEnv()
	searchCmd.Flags().StringVar(&searchDBPath, "db", cfg.DBPath,
		"Path to the SQLite database")
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", cfg.SearchLimit,
		"Max results")
	searchCmd.Flags().StringVar(&searchFilter, "filter", "",
		"Filter expression over id, kind, label, description")
}

func runSearch(cmd *cobra.Command, args []string) error {
	engine, err := query.Open(searchDBPath)
	if err != nil {
		return err
	}
	defer engine.Close()

	results, err := engine.Search(cmd.Context(), args[0], searchLimit, searchFilter)
	if err != nil {
		return err
	}

	if len(results) == 0 {
		fmt.Println("No results found")
		return nil
	}
	for _, r := range results {
		label := r.Label
		if label == "" {
			label = "(no label)"
		}
		desc := r.Description
		if desc == "" {
			desc = "(no description)"
		}
		fmt.Printf("%s: %s - %s\n", r.ID, label, desc)
	}
	return nil
}
