package ingest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/wikimirror/wikimirror/pkg/model"
)

func TestLoadCheckpointMissingFile(t *testing.T) {
	cp := LoadCheckpoint(filepath.Join(t.TempDir(), "nope.progress.json"))
	if cp != (model.Checkpoint{}) {
		t.Errorf("missing file should load as zero checkpoint, got %+v", cp)
	}
}

func TestCheckpointRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "db.progress.json")
	want := model.Checkpoint{
		BytesRead:        123456,
		EntitiesImported: 789,
		LastID:           "Q42",
	}
	if err := SaveCheckpoint(path, want); err != nil {
		t.Fatal(err)
	}
	if got := LoadCheckpoint(path); got != want {
		t.Errorf("round trip = %+v, want %+v", got, want)
	}

	// Overwrite with completion.
	want.Completed = true
	if err := SaveCheckpoint(path, want); err != nil {
		t.Fatal(err)
	}
	if got := LoadCheckpoint(path); !got.Completed {
		t.Errorf("Completed not persisted: %+v", got)
	}
}

func TestLoadCheckpointCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "db.progress.json")
	for _, data := range []string{
		"",
		"{",
		`{"bytes_read": "not a number"}`,
		`{"bytes_read": -5, "entities_imported": 1}`,
	} {
		if err := os.WriteFile(path, []byte(data), 0644); err != nil {
			t.Fatal(err)
		}
		if cp := LoadCheckpoint(path); cp != (model.Checkpoint{}) {
			t.Errorf("corrupt data %q should load as zero checkpoint, got %+v", data, cp)
		}
	}
}

func TestSaveCheckpointLeavesNoTempFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "db.progress.json")
	if err := SaveCheckpoint(path, model.Checkpoint{BytesRead: 1}); err != nil {
		t.Fatal(err)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Name() != "db.progress.json" {
		t.Errorf("unexpected directory contents: %v", entries)
	}
}

func TestCheckpointPath(t *testing.T) {
	if got := CheckpointPath("/data/wikidata.db"); got != "/data/wikidata.db.progress.json" {
		t.Errorf("CheckpointPath = %q", got)
	}
}
