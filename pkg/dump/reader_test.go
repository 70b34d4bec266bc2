package dump

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/gzip"
)

func writePlain(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func writeGzip(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	gz := gzip.NewWriter(f)
	if _, err := gz.Write([]byte(content)); err != nil {
		t.Fatal(err)
	}
	if err := gz.Close(); err != nil {
		t.Fatal(err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestOpenMissingFile(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "nope.json.bz2"))
	if !errors.Is(err, ErrSourceNotFound) {
		t.Errorf("err = %v, want ErrSourceNotFound", err)
	}
}

func TestReaderCountsRawBytes(t *testing.T) {
	path := writePlain(t, "dump.json", "[\nabc\nde\n]\n")
	r, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()

	want := []struct {
		line  string
		bytes int64
	}{
		{"[", 2},
		{"abc", 6},
		{"de", 9},
		{"]", 11},
	}
	for _, w := range want {
		line, ok := r.Next()
		if !ok {
			t.Fatalf("stream ended early, err=%v", r.Err())
		}
		if string(line) != w.line {
			t.Errorf("line = %q, want %q", line, w.line)
		}
		if r.BytesRead() != w.bytes {
			t.Errorf("BytesRead after %q = %d, want %d", w.line, r.BytesRead(), w.bytes)
		}
	}
	if _, ok := r.Next(); ok {
		t.Error("expected end of stream")
	}
	if r.Err() != nil {
		t.Errorf("Err = %v", r.Err())
	}
}

func TestReaderGzip(t *testing.T) {
	path := writeGzip(t, "dump.json.gz", "one\ntwo\n")
	r, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()

	var lines []string
	for {
		line, ok := r.Next()
		if !ok {
			break
		}
		lines = append(lines, string(line))
	}
	if r.Err() != nil {
		t.Fatal(r.Err())
	}
	if len(lines) != 2 || lines[0] != "one" || lines[1] != "two" {
		t.Errorf("lines = %v", lines)
	}
	// Bytes count decompressed content, not the compressed file.
	if r.BytesRead() != 8 {
		t.Errorf("BytesRead = %d, want 8", r.BytesRead())
	}
}

func TestReaderCorruptGzip(t *testing.T) {
	path := writePlain(t, "dump.json.gz", "this is not gzip data")
	_, err := Open(path)
	if !errors.Is(err, ErrCorruptStream) {
		t.Errorf("err = %v, want ErrCorruptStream", err)
	}
}

func TestSkipToOvershootsByAtMostOneLine(t *testing.T) {
	// Lines of 10 bytes each (9 chars + newline).
	path := writePlain(t, "dump.json", "aaaaaaaaa\nbbbbbbbbb\nccccccccc\n")
	r, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()

	reached, err := r.SkipTo(15)
	if err != nil {
		t.Fatal(err)
	}
	if reached != 20 {
		t.Errorf("reached = %d, want 20 (end of the line containing offset 15)", reached)
	}
	line, ok := r.Next()
	if !ok || string(line) != "ccccccccc" {
		t.Errorf("next line = %q ok=%v, want ccccccccc", line, ok)
	}
}

func TestSkipToPastEnd(t *testing.T) {
	path := writePlain(t, "dump.json", "short\n")
	r, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()

	reached, err := r.SkipTo(1 << 20)
	if err != nil {
		t.Fatal(err)
	}
	if reached != 6 {
		t.Errorf("reached = %d, want 6", reached)
	}
	if _, ok := r.Next(); ok {
		t.Error("expected exhausted stream")
	}
}
