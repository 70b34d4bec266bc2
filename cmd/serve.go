package cmd

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/lmittmann/tint"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/wikimirror/wikimirror/internal/config"
	"github.com/wikimirror/wikimirror/internal/server"
	"github.com/wikimirror/wikimirror/pkg/query"
)

// serve command flags
var (
	serveDBPath string
	serveAddr   string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the query API over HTTP",
	Long: `Run the HTTP facade over the local database:

  GET /healthz        health check
  GET /entity/{id}    full entity by ID
  GET /search?q=...   full-text search (optional limit=, filter=)
  GET /stats          total and per-type counts

The server is read-only and can run while an import is in progress; it
serves whatever the importer has committed so far.`,
	Example: `  wikimirror serve
  wikimirror serve --addr 0.0.0.0:8000 --db wikidata.db`,
	Args:    cobra.NoArgs,
	GroupID: "query",
	RunE:    runServe,
}

func init() {
	cfg := config.FromEnv()
	serveCmd.Flags().StringVar(&serveDBPath, "db", cfg.DBPath,
		"Path to the SQLite database")
	serveCmd.Flags().StringVar(&serveAddr, "addr", cfg.Addr,
		"Address to listen on")
}

func runServe(cmd *cobra.Command, args []string) error {
	logger := slog.New(tint.NewHandler(colorable.NewColorable(os.Stderr), &tint.Options{
		TimeFormat: "15:04:05.000",
		NoColor:    !isatty.IsTerminal(os.Stderr.Fd()),
	}))

	engine, err := query.Open(serveDBPath)
	if err != nil {
		return err
	}
	defer engine.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := server.New(engine, logger, config.FromEnv().SearchLimit)
	return srv.ListenAndServe(ctx, serveAddr)
}
