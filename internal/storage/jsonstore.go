package storage

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zstd"

	"github.com/pable/uniqorn/internal/index"
)

// JSONStore keeps the index as a single JSON object on disk. A path ending in
// .zst is zstd-compressed.
type JSONStore struct {
	path string
}

// NewJSONStore returns a store backed by the file at path.
func NewJSONStore(path string) *JSONStore {
	return &JSONStore{path: path}
}

// Path returns the backing file path.
func (s *JSONStore) Path() string { return s.path }

// Exists reports whether the index file is present.
func (s *JSONStore) Exists(_ context.Context) (bool, error) {
	_, err := os.Stat(s.path)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	return false, fmt.Errorf("stat index: %w", err)
}

// Load reads the index file. A missing file yields an empty index.
func (s *JSONStore) Load(_ context.Context) (*index.Index, error) {
	x := index.New()
	err := ReadJSON(s.path, x)
	if errors.Is(err, os.ErrNotExist) {
		return index.New(), nil
	}
	if err != nil {
		return nil, err
	}
	return x, nil
}

// Save writes the whole index to a temp file and renames it over the target.
func (s *JSONStore) Save(_ context.Context, x *index.Index) error {
	return WriteJSON(s.path, x)
}

// Close is a no-op; the file is not held open between calls.
func (s *JSONStore) Close() error { return nil }

// WriteJSON encodes v to path atomically. Paths ending in .zst are compressed.
func WriteJSON(path string, v any) error {
	return writeAtomic(path, func(w io.Writer) error {
		enc := json.NewEncoder(w)
		if !strings.HasSuffix(path, ".zst") {
			enc.SetIndent("", "  ")
		}
		return enc.Encode(v)
	})
}

// ReadJSON decodes path into v. Errors from a missing file wrap os.ErrNotExist.
func ReadJSON(path string, v any) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", filepath.Base(path), err)
	}
	defer f.Close()

	var r io.Reader = bufio.NewReader(f)
	if strings.HasSuffix(path, ".zst") {
		dec, err := zstd.NewReader(r)
		if err != nil {
			return fmt.Errorf("zstd: %w", err)
		}
		defer dec.Close()
		r = dec
	}
	if err := json.NewDecoder(r).Decode(v); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrCorrupt, filepath.Base(path), err)
	}
	return nil
}

func writeAtomic(path string, write func(io.Writer) error) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	bw := bufio.NewWriter(tmp)
	var w io.Writer = bw
	var zw *zstd.Encoder
	if strings.HasSuffix(path, ".zst") {
		zw, err = zstd.NewWriter(bw)
		if err != nil {
			return fmt.Errorf("zstd: %w", err)
		}
		w = zw
	}
	if err = write(w); err != nil {
		return fmt.Errorf("encode %s: %w", filepath.Base(path), err)
	}
	if zw != nil {
		if err = zw.Close(); err != nil {
			return fmt.Errorf("zstd close: %w", err)
		}
	}
	if err = bw.Flush(); err != nil {
		return fmt.Errorf("flush: %w", err)
	}
	if err = tmp.Sync(); err != nil {
		return fmt.Errorf("sync: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("replace %s: %w", filepath.Base(path), err)
	}
	return nil
}
