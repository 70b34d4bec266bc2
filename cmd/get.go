package cmd

import (
	"fmt"
	"os"

	gojson "github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/wikimirror/wikimirror/internal/config"
	"github.com/wikimirror/wikimirror/pkg/query"
)

var getDBPath string

var getCmd = &cobra.Command{
	Use:   "get <entity-id>",
	Short: "Look up an entity by ID",
	Long:  `Print the full stored entity as indented JSON. IDs are case-insensitive.`,
	Example: `  wikimirror get Q42
  wikimirror get p31 --db wikidata.db`,
	Args:    cobra.ExactArgs(1),
	GroupID: "query",
	RunE:    runGet,
}

func init() {
	getCmd.Flags().StringVar(&getDBPath, "db", config.FromEnv().DBPath,
		"Path to the SQLite database")
}

func runGet(cmd *cobra.Command, args []string) error {
	engine, err := query.Open(getDBPath)
	if err != nil {
		return err
	}
	defer engine.Close()

	entity, err := engine.GetEntity(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	if entity == nil {
		fmt.Fprintf(os.Stderr, "Entity %s not found\n", args[0])
		os.Exit(1)
	}

	out, err := gojson.MarshalIndent(entity, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}
