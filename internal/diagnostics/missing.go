package diagnostics

import (
	"encoding/json"
	"os"
	"time"

	"github.com/brugmelding/brugwacht/internal/types"
)

// MissingIDEntry is one correlation identifier for which the feed had no
// situation. The JSON keys match the file the operator tooling reads.
type MissingIDEntry struct {
	NDWID     string  `json:"ndwID"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Name      string  `json:"naam"`
	FirstSeen string  `json:"firstSeen"`
}

// MissingIDLog accumulates missing correlation identifiers across runs,
// keyed by identifier so each one is reported once with its first-seen
// timestamp.
type MissingIDLog struct {
	path    string
	entries map[string]MissingIDEntry
	order   []string
}

// LoadMissingIDs loads the missing-identifier log from disk. A missing or
// unreadable file yields an empty log rather than an error: the log is a
// diagnostic aid, never a reason to fail a run.
func LoadMissingIDs(path string) *MissingIDLog {
	m := &MissingIDLog{
		path:    path,
		entries: make(map[string]MissingIDEntry),
	}
	if path == "" {
		return m
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return m
	}

	var decoded []MissingIDEntry
	if err := json.Unmarshal(content, &decoded); err != nil {
		return m
	}

	for _, entry := range decoded {
		if entry.NDWID == "" {
			continue
		}
		if _, seen := m.entries[entry.NDWID]; seen {
			continue
		}
		m.entries[entry.NDWID] = entry
		m.order = append(m.order, entry.NDWID)
	}
	return m
}

// Remember records a correlation identifier that had no matching situation
func (m *MissingIDLog) Remember(id string, bridge types.Bridge) {
	if m == nil || id == "" {
		return
	}
	if _, seen := m.entries[id]; seen {
		return
	}

	m.entries[id] = MissingIDEntry{
		NDWID:     id,
		Latitude:  bridge.Latitude,
		Longitude: bridge.Longitude,
		Name:      bridge.Name,
		FirstSeen: time.Now().Format(time.RFC3339),
	}
	m.order = append(m.order, id)
}

// Len returns the number of recorded identifiers
func (m *MissingIDLog) Len() int {
	return len(m.entries)
}

// Save writes the log back to disk in first-seen order
func (m *MissingIDLog) Save() error {
	if m == nil || m.path == "" {
		return nil
	}

	entries := make([]MissingIDEntry, 0, len(m.order))
	for _, id := range m.order {
		entries = append(entries, m.entries[id])
	}

	content, err := json.MarshalIndent(entries, "", "    ")
	if err != nil {
		return err
	}
	return os.WriteFile(m.path, content, 0o644)
}
