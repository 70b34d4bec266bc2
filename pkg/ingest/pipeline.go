// Package ingest provides the resumable import pipeline for entity dumps.
// It streams the compressed dump line by line, parses and projects
// entities, applies them in atomic batches, and checkpoints progress so
// an interrupted import resumes instead of restarting.
package ingest

import (
	"context"
	"fmt"
	"time"

	"github.com/wikimirror/wikimirror/pkg/dump"
	"github.com/wikimirror/wikimirror/pkg/model"
	"github.com/wikimirror/wikimirror/pkg/store/sqlite"
)

// Config holds configuration for the import pipeline.
type Config struct {
	// DumpPath is the path to the compressed dump file.
	DumpPath string

	// DBPath is the path to the SQLite database.
	DBPath string

	// CheckpointPath overrides the default <db>.progress.json location.
	CheckpointPath string

	// BatchSize is the number of entities per batch commit.
	// Defaults to 1000 if <= 0.
	BatchSize int

	// CheckpointEvery is the number of imported entities between
	// checkpoint saves and progress reports. Defaults to 10000 if <= 0.
	// Rounded up to a multiple of BatchSize in practice, since progress
	// is only saved on batch boundaries.
	CheckpointEvery int

	// ProgressCallback is called at every checkpoint save.
	ProgressCallback func(p Progress)
}

// Result holds the result of an import run.
type Result struct {
	DBPath      string
	Imported    int64 // cumulative, including prior resumed runs
	BytesRead   int64 // decompressed bytes consumed from the stream start
	Duration    time.Duration
	Resumed     bool // run started from a nonzero checkpoint
	Interrupted bool // Stop was called before the stream was exhausted
}

// Progress holds progress information during an import.
type Progress struct {
	Imported  int64
	BytesRead int64
	LastID    string
	Elapsed   time.Duration
	Rate      float64 // entities per second since the previous report
}

// Pipeline is the import orchestrator.
type Pipeline struct {
	cfg    Config
	store  *sqlite.SQLiteStore
	ctx    context.Context
	cancel context.CancelFunc
}

// New creates a new import pipeline.
func New(cfg Config) *Pipeline {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 1000
	}
	if cfg.CheckpointEvery <= 0 {
		cfg.CheckpointEvery = 10000
	}
	if cfg.CheckpointPath == "" {
		cfg.CheckpointPath = CheckpointPath(cfg.DBPath)
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Pipeline{
		cfg:    cfg,
		ctx:    ctx,
		cancel: cancel,
	}
}

// Stop cancels the pipeline. The run finishes its current batch, saves a
// checkpoint, and returns with Result.Interrupted set.
func (p *Pipeline) Stop() {
	p.cancel()
}

// Run executes the import end to end. On any error the transaction in
// flight is rolled back and the last saved checkpoint remains the
// recovery point; re-running with the same paths resumes from there.
func (p *Pipeline) Run() (*Result, error) {
	startTime := time.Now()
	result := &Result{DBPath: p.cfg.DBPath}

	// Open the dump before creating any store state, so a bad path
	// leaves nothing behind.
	reader, err := dump.Open(p.cfg.DumpPath)
	if err != nil {
		return nil, err
	}
	defer reader.Close()

	p.store, err = sqlite.New(sqlite.Config{DBPath: p.cfg.DBPath, WAL: true})
	if err != nil {
		return nil, fmt.Errorf("create store: %w", err)
	}
	defer p.store.Close()

	cp := LoadCheckpoint(p.cfg.CheckpointPath)
	imported := cp.EntitiesImported
	lastID := cp.LastID

	// Approximate seek to the resume point: skip decompressed bytes
	// until the checkpoint offset. Overshoot or a short stream are both
	// fine; the upsert absorbs re-read entities.
	if cp.BytesRead > 0 {
		result.Resumed = true
		if _, err := reader.SkipTo(cp.BytesRead); err != nil {
			return nil, fmt.Errorf("seek to resume point: %w", err)
		}
	}

	batch := make([]*model.StoredEntity, 0, p.cfg.BatchSize)
	committedBytes := cp.BytesRead
	lastCheckpoint := imported
	lastReport := startTime

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}

		if err := p.store.BeginBatch(); err != nil {
			return fmt.Errorf("begin batch: %w", err)
		}
		if err := p.store.UpsertEntities(batch); err != nil {
			p.store.RollbackBatch()
			return fmt.Errorf("upsert entities: %w", err)
		}
		if err := p.store.CommitBatch(); err != nil {
			return fmt.Errorf("commit batch: %w", err)
		}

		imported += int64(len(batch))
		lastID = batch[len(batch)-1].ID
		committedBytes = reader.BytesRead()
		batch = batch[:0]
		return nil
	}

	checkpoint := func(completed bool) error {
		return SaveCheckpoint(p.cfg.CheckpointPath, model.Checkpoint{
			BytesRead:        committedBytes,
			EntitiesImported: imported,
			LastID:           lastID,
			Completed:        completed,
		})
	}

	interrupted := false
	for {
		line, ok := reader.Next()
		if !ok {
			break
		}

		entity := dump.ParseEntity(line)
		if entity == nil {
			continue
		}
		batch = append(batch, dump.Project(entity))

		if len(batch) < p.cfg.BatchSize {
			continue
		}
		if err := flush(); err != nil {
			return nil, err
		}

		// Periodic checkpoint and progress report, on batch boundaries.
		if imported-lastCheckpoint >= int64(p.cfg.CheckpointEvery) {
			if err := checkpoint(false); err != nil {
				return nil, err
			}
			if p.cfg.ProgressCallback != nil {
				elapsed := time.Since(lastReport)
				rate := 0.0
				if elapsed > 0 {
					rate = float64(imported-lastCheckpoint) / elapsed.Seconds()
				}
				p.cfg.ProgressCallback(Progress{
					Imported:  imported,
					BytesRead: committedBytes,
					LastID:    lastID,
					Elapsed:   time.Since(startTime),
					Rate:      rate,
				})
			}
			lastCheckpoint = imported
			lastReport = time.Now()
		}

		// Between committed batches is the one safe cancellation point:
		// everything up to here is durable and checkpointable.
		select {
		case <-p.ctx.Done():
			interrupted = true
		default:
		}
		if interrupted {
			break
		}
	}

	if err := reader.Err(); err != nil {
		// Corrupt stream: abort without advancing the checkpoint.
		return nil, err
	}

	if interrupted {
		if err := checkpoint(false); err != nil {
			return nil, err
		}
		result.Imported = imported
		result.BytesRead = committedBytes
		result.Duration = time.Since(startTime)
		result.Interrupted = true
		return result, nil
	}

	// Final partial batch.
	if err := flush(); err != nil {
		return nil, err
	}

	// The stream is exhausted and everything read is committed, so the
	// final checkpoint covers all consumed bytes, entities or not.
	committedBytes = reader.BytesRead()
	if err := checkpoint(true); err != nil {
		return nil, err
	}

	result.Imported = imported
	result.BytesRead = committedBytes
	result.Duration = time.Since(startTime)
	return result, nil
}
