package ingest

import (
	"fmt"
	"os"
	"path/filepath"

	gojson "github.com/goccy/go-json"

	"github.com/wikimirror/wikimirror/pkg/model"
)

// CheckpointPath returns the progress file associated with a database.
// Each store has exactly one checkpoint, next to it on disk.
func CheckpointPath(dbPath string) string {
	return dbPath + ".progress.json"
}

// LoadCheckpoint reads the last persisted checkpoint. A missing or
// unreadable file yields the zero checkpoint: restarting from scratch is
// always preferred over being stuck on a corrupt progress file.
func LoadCheckpoint(path string) model.Checkpoint {
	var cp model.Checkpoint
	data, err := os.ReadFile(path)
	if err != nil {
		return model.Checkpoint{}
	}
	if err := gojson.Unmarshal(data, &cp); err != nil {
		return model.Checkpoint{}
	}
	if cp.BytesRead < 0 || cp.EntitiesImported < 0 {
		return model.Checkpoint{}
	}
	return cp
}

// SaveCheckpoint durably overwrites the checkpoint. The write goes to a
// temp file which is fsynced and renamed over the target, so a crash
// mid-save never leaves a half-written file behind.
func SaveCheckpoint(path string, cp model.Checkpoint) error {
	data, err := gojson.Marshal(cp)
	if err != nil {
		return fmt.Errorf("marshal checkpoint: %w", err)
	}

	tmp := path + ".tmp"
	f, err := os.OpenFile(tmp, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return fmt.Errorf("create checkpoint temp: %w", err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("write checkpoint: %w", err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("sync checkpoint: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}

	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("replace checkpoint: %w", err)
	}
	return syncDir(filepath.Dir(path))
}

func syncDir(dir string) error {
	f, err := os.Open(dir)
	if err != nil {
		return err
	}
	defer f.Close()
	return f.Sync()
}
