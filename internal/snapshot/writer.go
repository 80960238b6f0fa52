// Package snapshot writes the per-bridge derived records to the JSON file
// the dashboard frontend polls.
package snapshot

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/brugmelding/brugwacht/internal/types"
)

// Writer writes snapshot files
type Writer struct {
	path string
}

// NewWriter creates a snapshot writer for the given output path
func NewWriter(path string) *Writer {
	return &Writer{path: path}
}

// Path returns the snapshot output path
func (w *Writer) Path() string {
	return w.path
}

// Write atomically replaces the snapshot file with the given records. The
// write goes to a temporary file in the same directory first so a reader
// never observes a half-written document.
func (w *Writer) Write(records []types.SnapshotRecord) error {
	content, err := json.MarshalIndent(records, "", "    ")
	if err != nil {
		return fmt.Errorf("error marshaling snapshot: %v", err)
	}

	dir := filepath.Dir(w.path)
	tmp, err := os.CreateTemp(dir, ".snapshot-*.json")
	if err != nil {
		return fmt.Errorf("error creating snapshot temp file: %v", err)
	}

	if _, err := tmp.Write(content); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("error writing snapshot: %v", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("error closing snapshot temp file: %v", err)
	}

	if err := os.Rename(tmp.Name(), w.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("error replacing snapshot file: %v", err)
	}
	return nil
}
