package snapshot

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/brugmelding/brugwacht/internal/types"
)

func TestWriteAndReadBack(t *testing.T) {
	dir := t.TempDir()
	w := NewWriter(filepath.Join(dir, "bruggen_status.json"))

	records := []types.SnapshotRecord{
		{
			ID:        "NLVLB002100463",
			Latitude:  52.0448,
			Longitude: 4.3592,
			Name:      "Hoornbrug",
			Status:    types.StatusOpen,
			Open:      true,
		},
	}
	if err := w.Write(records); err != nil {
		t.Fatal(err)
	}

	content, err := os.ReadFile(w.Path())
	if err != nil {
		t.Fatal(err)
	}
	var got []types.SnapshotRecord
	if err := json.Unmarshal(content, &got); err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].ID != "NLVLB002100463" || !got[0].Open {
		t.Errorf("unexpected snapshot content: %+v", got)
	}
}

func TestWriteReplacesPreviousSnapshot(t *testing.T) {
	dir := t.TempDir()
	w := NewWriter(filepath.Join(dir, "bruggen_status.json"))

	if err := w.Write([]types.SnapshotRecord{{ID: "a"}, {ID: "b"}}); err != nil {
		t.Fatal(err)
	}
	if err := w.Write([]types.SnapshotRecord{{ID: "c"}}); err != nil {
		t.Fatal(err)
	}

	content, err := os.ReadFile(w.Path())
	if err != nil {
		t.Fatal(err)
	}
	var got []types.SnapshotRecord
	if err := json.Unmarshal(content, &got); err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].ID != "c" {
		t.Errorf("expected the second write to replace the first, got %+v", got)
	}
}

func TestWriteLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	w := NewWriter(filepath.Join(dir, "bruggen_status.json"))

	for i := 0; i < 3; i++ {
		if err := w.Write(nil); err != nil {
			t.Fatal(err)
		}
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), ".snapshot-") {
			t.Errorf("temp file left behind: %s", e.Name())
		}
	}
}

func TestWriteFailsOnMissingDirectory(t *testing.T) {
	w := NewWriter("/nonexistent/dir/bruggen_status.json")
	if err := w.Write(nil); err == nil {
		t.Error("expected an error when the target directory does not exist")
	}
}
