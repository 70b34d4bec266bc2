package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wikimirror/wikimirror/internal/config"
	"github.com/wikimirror/wikimirror/pkg/query"
)

var statsDBPath string

var statsCmd = &cobra.Command{
	Use:     "stats",
	Short:   "Show database statistics",
	Long:    `Display the total entity count and a breakdown by entity type.`,
	Example: `  wikimirror stats --db wikidata.db`,
	Args:    cobra.NoArgs,
	GroupID: "query",
	RunE:    runStats,
}

func init() {
	statsCmd.Flags().StringVar(&statsDBPath, "db", config.FromEnv().DBPath,
		"Path to the SQLite database")
}

func runStats(cmd *cobra.Command, args []string) error {
	engine, err := query.Open(statsDBPath)
	if err != nil {
		return err
	}
	defer engine.Close()

	stats, err := engine.Stats(cmd.Context())
	if err != nil {
		return err
	}

	fmt.Printf("Total entities: %d\n", stats.Total)
	for kind, count := range stats.ByKind {
		fmt.Printf("  %s: %d\n", kind, count)
	}
	return nil
}
