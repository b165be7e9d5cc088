package jsonldb

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ErrMalformed is returned when a document's content is not a JSON array of objects.
var ErrMalformed = errors.New("malformed document")

// Document stores rows as a single indented JSON array.
//
// Unlike Table, every write replaces the whole file.
type Document[T any] struct {
	path   string
	indent string
}

// NewDocument returns a Document for path. Nothing is read until Read is called.
func NewDocument[T any](path string) *Document[T] {
	return &Document[T]{path: path, indent: "    "}
}

// Path returns the file path.
func (d *Document[T]) Path() string {
	return d.path
}

// Read loads all rows.
//
// A missing file returns an error matching fs.ErrNotExist. A blank file
// returns no rows and no error. Content that is not a JSON array of objects
// returns an error matching ErrMalformed.
func (d *Document[T]) Read() ([]T, error) {
	data, err := os.ReadFile(d.path)
	if err != nil {
		return nil, err
	}
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, nil
	}
	if data[0] != '[' {
		return nil, fmt.Errorf("%w: %s: top-level value is not an array", ErrMalformed, d.path)
	}
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrMalformed, d.path, err)
	}
	rows := make([]T, 0, len(raw))
	for i, r := range raw {
		if len(r) == 0 || r[0] != '{' {
			return nil, fmt.Errorf("%w: %s: element %d is not an object", ErrMalformed, d.path, i)
		}
		var row T
		if err := json.Unmarshal(r, &row); err != nil {
			return nil, fmt.Errorf("%w: %s: element %d: %w", ErrMalformed, d.path, i, err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// Write replaces the file content with rows.
//
// The data goes to a temporary file in the same directory which is then
// renamed over the target. Non-ASCII and HTML characters are written as is.
func (d *Document[T]) Write(rows []T) error {
	if rows == nil {
		rows = []T{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", d.indent)
	if err := enc.Encode(rows); err != nil {
		return fmt.Errorf("failed to marshal rows: %w", err)
	}

	dir := filepath.Dir(d.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", d.path, err)
	}
	f, err := os.CreateTemp(dir, "."+filepath.Base(d.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}
	tmp := f.Name()
	defer func() {
		// No-op once the rename succeeded.
		_ = os.Remove(tmp)
	}()

	if _, err := f.Write(buf.Bytes()); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to write %s: %w", tmp, err)
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to sync %s: %w", tmp, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", tmp, err)
	}
	if err := os.Chmod(tmp, 0o644); err != nil {
		return fmt.Errorf("failed to set permissions on %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, d.path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", d.path, err)
	}
	return nil
}
