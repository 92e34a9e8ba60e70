package pipeline

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/ppiankov/log2csv/internal/model"
)

// Table is one output CSV. Rows go to a hidden temp file next to the
// final path; Commit publishes it only if at least one row was written.
type Table struct {
	schema  model.Schema
	path    string
	tmpPath string
	file    *os.File
	w       *csv.Writer
	rows    int
	closed  bool
}

// OpenTable creates the temp file for path and writes the header row
func OpenTable(schema model.Schema, path string, useCRLF bool) (*Table, error) {
	dir, name := filepath.Split(path)
	if dir == "" {
		dir = "."
	}

	f, err := os.CreateTemp(dir, "."+name+".tmp-*")
	if err != nil {
		return nil, fmt.Errorf("create %s table: %w", schema.Kind, err)
	}

	w := csv.NewWriter(f)
	w.UseCRLF = useCRLF

	t := &Table{
		schema:  schema,
		path:    path,
		tmpPath: f.Name(),
		file:    f,
		w:       w,
	}

	if err := w.Write(schema.Fields); err != nil {
		t.Discard()
		return nil, fmt.Errorf("write %s header: %w", schema.Kind, err)
	}

	return t, nil
}

// Write appends one data row
func (t *Table) Write(values []string) error {
	if t.closed {
		return fmt.Errorf("write %s: table closed", t.schema.Kind)
	}
	if err := t.w.Write(values); err != nil {
		return fmt.Errorf("write %s row: %w", t.schema.Kind, err)
	}
	t.rows++
	return nil
}

// Rows returns the number of data rows written so far
func (t *Table) Rows() int {
	return t.rows
}

// Path returns the final output path
func (t *Table) Path() string {
	return t.path
}

// Commit flushes and renames the table into place. A table with no rows
// is dropped instead, along with any stale file at the final path.
// It reports whether a file was published.
func (t *Table) Commit() (written bool, err error) {
	if t.closed {
		return false, fmt.Errorf("commit %s: table closed", t.schema.Kind)
	}
	t.closed = true

	t.w.Flush()
	if err := t.w.Error(); err != nil {
		_ = t.file.Close()
		_ = os.Remove(t.tmpPath)
		return false, fmt.Errorf("flush %s: %w", t.schema.Kind, err)
	}
	if err := t.file.Close(); err != nil {
		_ = os.Remove(t.tmpPath)
		return false, fmt.Errorf("close %s: %w", t.schema.Kind, err)
	}

	if t.rows == 0 {
		if err := os.Remove(t.tmpPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return false, fmt.Errorf("remove empty %s: %w", t.schema.Kind, err)
		}
		if err := os.Remove(t.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return false, fmt.Errorf("remove stale %s: %w", t.path, err)
		}
		return false, nil
	}

	// CreateTemp uses 0600
	_ = os.Chmod(t.tmpPath, 0644)

	if err := os.Rename(t.tmpPath, t.path); err != nil {
		_ = os.Remove(t.tmpPath)
		return false, fmt.Errorf("publish %s: %w", t.path, err)
	}
	return true, nil
}

// Discard drops the table without touching the final path. Safe to call
// after Commit.
func (t *Table) Discard() {
	if t.closed {
		return
	}
	t.closed = true
	_ = t.file.Close()
	_ = os.Remove(t.tmpPath)
}
