package cmd

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/wikimirror/wikimirror/internal/config"
	"github.com/wikimirror/wikimirror/pkg/dump"
	"github.com/wikimirror/wikimirror/pkg/ingest"
)

// import command flags
var (
	importDumpPath        string
	importDBPath          string
	importBatchSize       int
	importCheckpointEvery int
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import a compressed entity dump into the local database",
	Long: `Stream a compressed line-oriented JSON dump into the SQLite database.

Progress is checkpointed to <db>.progress.json every --checkpoint-every
imported entities. Interrupting the import with Ctrl-C is safe: the run
stops at the next batch boundary, saves a checkpoint, and exits with
code 130; re-running the same command resumes from the checkpoint.`,
	Example: `  wikimirror import --dump dump.json.bz2 --db wikidata.db
  wikimirror import                       # use configured default paths
  wikimirror import --batch-size 5000 --checkpoint-every 100000`,
	Args:    cobra.NoArgs,
	GroupID: "import",
	RunE:    runImport,
}

func init() {
	cfg := config.FromEnv()
	importCmd.Flags().StringVar(&importDumpPath, "dump", cfg.DumpPath,
		"Path to the compressed dump file (.bz2, .gz, .zst, .xz, .lz4, or plain)")
	importCmd.Flags().StringVar(&importDBPath, "db", cfg.DBPath,
		"Path to the SQLite database")
	importCmd.Flags().IntVar(&importBatchSize, "batch-size", cfg.BatchSize,
		"Entities per batch commit")
	importCmd.Flags().IntVar(&importCheckpointEvery, "checkpoint-every", cfg.CheckpointEvery,
		"Imported entities between checkpoint saves")
}

func runImport(cmd *cobra.Command, args []string) error {
	progressPath := ingest.CheckpointPath(importDBPath)

	fmt.Println("Starting import")
	fmt.Printf("  Dump:     %s\n", importDumpPath)
	fmt.Printf("  Database: %s\n", importDBPath)
	fmt.Printf("  Progress: %s\n", progressPath)

	if cp := ingest.LoadCheckpoint(progressPath); cp.BytesRead > 0 {
		fmt.Printf("Resuming from byte %d, %d entities imported\n", cp.BytesRead, cp.EntitiesImported)
	}

	pipeline := ingest.New(ingest.Config{
		DumpPath:        importDumpPath,
		DBPath:          importDBPath,
		BatchSize:       importBatchSize,
		CheckpointEvery: importCheckpointEvery,
		ProgressCallback: func(p ingest.Progress) {
			fmt.Printf("Imported %d entities (%.0f/sec, last: %s, elapsed: %s)\n",
				p.Imported, p.Rate, p.LastID, p.Elapsed.Round(time.Second))
		},
	})

	// First Ctrl-C stops at the next batch boundary; a second one kills
	// the process the usual way.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		<-sigCh
		fmt.Fprintln(os.Stderr, "\nStopping at next batch boundary...")
		pipeline.Stop()
		signal.Stop(sigCh)
	}()

	result, err := pipeline.Run()
	if err != nil {
		if errors.Is(err, dump.ErrSourceNotFound) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return err
	}

	if result.Interrupted {
		fmt.Println("\nImport interrupted. Progress saved - run again to resume.")
		fmt.Printf("Imported so far: %d entities\n", result.Imported)
		os.Exit(130)
	}

	fmt.Println("\nImport complete!")
	fmt.Printf("Total entities: %d\n", result.Imported)
	fmt.Printf("Total time: %s\n", result.Duration.Round(time.Second))
	return nil
}
