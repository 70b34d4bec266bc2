// Package dump reads line-oriented compressed entity dumps.
// The dump is a JSON array of objects with one object per line; it is
// never decoded as one document. Readers are forward-only and count raw
// decompressed bytes so that imports can checkpoint and resume by offset.
package dump

import (
	"bufio"
	"compress/bzip2"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
	"github.com/ulikunitz/xz"
)

// ErrSourceNotFound reports a missing dump file.
var ErrSourceNotFound = errors.New("dump source not found")

// ErrCorruptStream reports invalid compression framing or a line that
// exceeds the reader's buffer.
var ErrCorruptStream = errors.New("corrupt dump stream")

const (
	// Entity lines in real dumps run to a few MiB; anything beyond this
	// is treated as stream corruption rather than truncated silently.
	maxLineBytes = 64 << 20

	initialLineBytes = 1 << 20
)

// Reader is a forward-only line reader over a compressed dump file.
// It is not safe for concurrent use and cannot be rewound.
type Reader struct {
	file    *os.File
	closer  io.Closer // decompressor with its own Close, if any
	scanner *bufio.Scanner

	bytesRead int64
	err       error
}

// Open opens the dump at path, choosing the decompressor by file
// extension (.bz2, .gz, .zst, .xz, .lz4; anything else is read as plain
// text). A missing file yields ErrSourceNotFound.
func Open(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrSourceNotFound, path)
		}
		return nil, fmt.Errorf("open dump: %w", err)
	}

	var (
		src    io.Reader
		closer io.Closer
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".bz2":
		src = bzip2.NewReader(f)
	case ".gz":
		gz, err := gzip.NewReader(f)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("%w: %v", ErrCorruptStream, err)
		}
		src, closer = gz, gz
	case ".zst":
		zr, err := zstd.NewReader(f)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("%w: %v", ErrCorruptStream, err)
		}
		rc := zr.IOReadCloser()
		src, closer = rc, rc
	case ".xz":
		xr, err := xz.NewReader(f)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("%w: %v", ErrCorruptStream, err)
		}
		src = xr
	case ".lz4":
		src = lz4.NewReader(f)
	default:
		src = f
	}

	sc := bufio.NewScanner(src)
	sc.Buffer(make([]byte, initialLineBytes), maxLineBytes)

	return &Reader{file: f, closer: closer, scanner: sc}, nil
}

// Next returns the next line without its trailing newline. ok is false at
// end of stream or on error; check Err afterwards.
func (r *Reader) Next() (line []byte, ok bool) {
	if r.err != nil {
		return nil, false
	}
	if !r.scanner.Scan() {
		if err := r.scanner.Err(); err != nil {
			// Decompressors surface framing errors mid-stream.
			r.err = fmt.Errorf("%w: %v", ErrCorruptStream, err)
		}
		return nil, false
	}
	b := r.scanner.Bytes()
	// +1 for the newline the scanner consumed, matching the accounting
	// the checkpoint offsets were written with.
	r.bytesRead += int64(len(b)) + 1
	return b, true
}

// BytesRead returns the number of decompressed bytes consumed so far,
// counting the newline of every line returned by Next.
func (r *Reader) BytesRead() int64 {
	return r.bytesRead
}

// Err returns the first error encountered by Next, if any.
func (r *Reader) Err() error {
	return r.err
}

// SkipTo reads and discards lines until the byte counter reaches or
// passes offset, returning the counter's final value. Overshoot is
// bounded by one line; undershoot means the stream ended first.
func (r *Reader) SkipTo(offset int64) (int64, error) {
	for r.bytesRead < offset {
		if _, ok := r.Next(); !ok {
			break
		}
	}
	return r.bytesRead, r.err
}

// Close releases the underlying file and decompressor.
func (r *Reader) Close() error {
	if r.closer != nil {
		r.closer.Close()
	}
	return r.file.Close()
}
