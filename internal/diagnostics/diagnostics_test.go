package diagnostics

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/brugmelding/brugwacht/internal/types"
)

func TestRunLogAppend(t *testing.T) {
	path := filepath.Join(t.TempDir(), "foute_bruggen.log")
	l := NewRunLog(path)

	l.Append("invalid bridge at index %d", 3)
	l.Append("invalid bridge at index %d", 7)

	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimRight(string(content), "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 entries, got %d:\n%s", len(lines), content)
	}
	if !strings.Contains(lines[0], " - invalid bridge at index 3") {
		t.Errorf("unexpected entry format: %q", lines[0])
	}
}

func TestRunLogWithoutPathDiscards(t *testing.T) {
	var nilLog *RunLog
	nilLog.Append("dropped")
	NewRunLog("").Append("dropped")
}

func TestMissingIDLogRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ontbrekende_ndw_ids.json")

	m := LoadMissingIDs(path)
	if m.Len() != 0 {
		t.Fatalf("expected an empty log for a missing file, got %d entries", m.Len())
	}

	bridge := types.Bridge{Latitude: 52.0448, Longitude: 4.3592, Name: "Hoornbrug"}
	m.Remember("b949d", bridge)
	m.Remember("c1234", types.Bridge{Name: "Leeghwaterbrug"})
	m.Remember("b949d", bridge) // duplicates are kept once
	m.Remember("", bridge)      // empty identifiers are ignored

	if m.Len() != 2 {
		t.Fatalf("expected 2 entries, got %d", m.Len())
	}
	if err := m.Save(); err != nil {
		t.Fatal(err)
	}

	// Entries survive a reload keyed on their first-seen order.
	reloaded := LoadMissingIDs(path)
	if reloaded.Len() != 2 {
		t.Fatalf("expected 2 entries after reload, got %d", reloaded.Len())
	}

	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var entries []MissingIDEntry
	if err := json.Unmarshal(content, &entries); err != nil {
		t.Fatal(err)
	}
	if entries[0].NDWID != "b949d" || entries[1].NDWID != "c1234" {
		t.Errorf("unexpected order: %+v", entries)
	}
	if entries[0].Name != "Hoornbrug" || entries[0].FirstSeen == "" {
		t.Errorf("entry fields incomplete: %+v", entries[0])
	}
}

func TestLoadMissingIDsToleratesCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ontbrekende_ndw_ids.json")
	if err := os.WriteFile(path, []byte("{kapot"), 0o644); err != nil {
		t.Fatal(err)
	}

	m := LoadMissingIDs(path)
	if m.Len() != 0 {
		t.Errorf("corrupt file should yield an empty log, got %d entries", m.Len())
	}
}
