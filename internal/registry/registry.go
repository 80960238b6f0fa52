// Package registry loads the static bridge list. Bridge files come from a
// few generations of exports with inconsistent key spellings, so loading
// normalizes keys first, then validates required fields and drops (and
// diagnoses) anything incomplete.
package registry

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/brugmelding/brugwacht/internal/diagnostics"
	"github.com/brugmelding/brugwacht/internal/log"
	"github.com/brugmelding/brugwacht/internal/types"
)

// Loader reads and validates a bridges JSON file
type Loader struct {
	path   string
	runLog *diagnostics.RunLog
}

// NewLoader creates a registry loader for the given bridges file
func NewLoader(path string, runLog *diagnostics.RunLog) *Loader {
	return &Loader{path: path, runLog: runLog}
}

// rawBridge accepts both the current and the legacy export key spellings.
// Coordinates and correlation ids arrive as numbers or strings depending
// on which tool produced the file.
type rawBridge struct {
	ID        string          `json:"id"`
	ISRS      string          `json:"ISRS"`
	Latitude  json.RawMessage `json:"latitude"`
	Lat       json.RawMessage `json:"Lat"`
	Longitude json.RawMessage `json:"longitude"`
	Lon       json.RawMessage `json:"Lon"`
	Name      string          `json:"naam"`
	NameAlt   string          `json:"Naam"`
	Region    string          `json:"provincie"`
	Town      string          `json:"stad"`
	NDWID     json.RawMessage `json:"ndwID"`
	NDWIDAlt  json.RawMessage `json:"ndwid"`
}

// Load reads the bridges file, returning only the valid bridges. Invalid
// records are skipped with a diagnostic entry; an empty result after
// validation is an error because the pipeline would have nothing to do.
func (l *Loader) Load() ([]types.Bridge, error) {
	content, err := os.ReadFile(l.path)
	if err != nil {
		return nil, fmt.Errorf("could not read bridges file %s: %v", l.path, err)
	}

	var raw []rawBridge
	if err := json.Unmarshal(content, &raw); err != nil {
		l.runLog.Append("invalid JSON in bridges file %s", l.path)
		return nil, fmt.Errorf("could not parse bridges file %s: %v", l.path, err)
	}

	bridges := make([]types.Bridge, 0, len(raw))
	for i, item := range raw {
		bridge, missing := normalize(item)
		if len(missing) > 0 {
			l.runLog.Append("invalid bridge at index %d, missing/invalid keys: %s", i, strings.Join(missing, ","))
			log.Warnw("skipping invalid bridge record", "index", i, "missing", missing)
			continue
		}
		bridges = append(bridges, bridge)
	}

	if len(bridges) == 0 {
		return nil, fmt.Errorf("no valid bridges found in %s", l.path)
	}

	log.Infof("loaded %d bridges from %s (%d skipped)", len(bridges), l.path, len(raw)-len(bridges))
	return bridges, nil
}

// normalize maps a raw record onto a Bridge, returning the names of any
// required fields that are missing or invalid.
func normalize(item rawBridge) (types.Bridge, []string) {
	var missing []string

	id := item.ID
	if id == "" {
		id = item.ISRS
	}
	if id == "" {
		missing = append(missing, "id")
	}

	lat, ok := parseCoordinate(item.Latitude, item.Lat)
	if !ok {
		missing = append(missing, "latitude")
	}
	lon, ok := parseCoordinate(item.Longitude, item.Lon)
	if !ok {
		missing = append(missing, "longitude")
	}

	name := item.Name
	if name == "" {
		name = item.NameAlt
	}
	if name == "" {
		missing = append(missing, "naam")
	}

	return types.Bridge{
		ID:             id,
		Latitude:       lat,
		Longitude:      lon,
		Name:           name,
		Region:         item.Region,
		Town:           item.Town,
		CorrelationIDs: correlationIDs(item.NDWID, item.NDWIDAlt),
	}, missing
}

// parseCoordinate accepts a JSON number or a numeric string, preferring
// the first non-empty candidate.
func parseCoordinate(candidates ...json.RawMessage) (float64, bool) {
	for _, c := range candidates {
		if len(c) == 0 {
			continue
		}

		var n float64
		if err := json.Unmarshal(c, &n); err == nil {
			return n, true
		}

		var s string
		if err := json.Unmarshal(c, &s); err == nil {
			if v, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
				return v, true
			}
		}
		return 0, false
	}
	return 0, false
}

// correlationIDs normalizes the feed-side identifiers to a deduplicated
// ordered list of non-empty trimmed strings. The field may be absent, a
// single string, or a list of strings.
func correlationIDs(candidates ...json.RawMessage) []string {
	var ids []string
	seen := make(map[string]bool)

	add := func(v string) {
		v = strings.TrimSpace(v)
		if v == "" || seen[v] {
			return
		}
		seen[v] = true
		ids = append(ids, v)
	}

	for _, c := range candidates {
		if len(c) == 0 {
			continue
		}

		var single string
		if err := json.Unmarshal(c, &single); err == nil {
			add(single)
			continue
		}

		var list []string
		if err := json.Unmarshal(c, &list); err == nil {
			for _, v := range list {
				add(v)
			}
		}
	}
	return ids
}
