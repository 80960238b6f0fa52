package matching

import (
	"time"

	"github.com/brugmelding/brugwacht/internal/types"
)

// Mode selects how situations are joined to bridges
type Mode string

const (
	// ModeCoordinate matches on the rounded coordinate bucket (primary,
	// more robust against feed identifier churn)
	ModeCoordinate Mode = "coordinate"
	// ModeCorrelationID matches on the NDW identifier from the situation
	// id attribute (secondary / diagnostic cross-check)
	ModeCorrelationID Mode = "ndwid"
)

// retentionWindow keeps a situation relevant for this long past its start.
const retentionWindow = 2 * time.Hour

// Index holds feed situations keyed for bridge lookup. Situations with an
// unparseable start, or entirely in the past, are pruned during the build.
// Per-key lists preserve feed order; the resolver re-ranks them.
type Index struct {
	mode          Mode
	now           time.Time
	byCoordinate  map[CoordinateKey][]types.Situation
	byCorrelation map[string][]types.Situation
	retained      int
	skipped       int
}

// BuildIndex builds a time-filtered situation index for the given mode
func BuildIndex(situations []types.Situation, mode Mode, now time.Time) *Index {
	idx := &Index{
		mode:          mode,
		now:           now,
		byCoordinate:  make(map[CoordinateKey][]types.Situation),
		byCorrelation: make(map[string][]types.Situation),
	}

	for _, s := range situations {
		if !idx.add(s) {
			idx.skipped++
		}
	}
	return idx
}

// add indexes one situation, reporting whether it was retained. Skips are
// silent by design: the feed carries many non-bridge situations and
// historical records that are simply not relevant.
func (idx *Index) add(s types.Situation) bool {
	if s.Start.IsZero() {
		return false
	}
	if !s.Start.Add(retentionWindow).After(idx.now) {
		return false
	}

	switch idx.mode {
	case ModeCorrelationID:
		if s.CorrelationID == "" {
			return false
		}
		idx.byCorrelation[s.CorrelationID] = append(idx.byCorrelation[s.CorrelationID], s)
	default:
		key, ok := keyForRawCoordinates(s.Latitude, s.Longitude)
		if !ok {
			return false
		}
		idx.byCoordinate[key] = append(idx.byCoordinate[key], s)
	}

	idx.retained++
	return true
}

// Retained returns the number of indexed situations
func (idx *Index) Retained() int {
	return idx.retained
}

// Skipped returns the number of situations pruned during the build
func (idx *Index) Skipped() int {
	return idx.skipped
}

// candidatesFor returns the matching situations for a bridge in feed
// order. In correlation-id mode a bridge with several identifiers gets
// the concatenation in identifier order.
func (idx *Index) candidatesFor(bridge types.Bridge) []types.Situation {
	if idx.mode == ModeCorrelationID {
		var candidates []types.Situation
		for _, id := range bridge.CorrelationIDs {
			candidates = append(candidates, idx.byCorrelation[id]...)
		}
		return candidates
	}
	return idx.byCoordinate[KeyForCoordinates(bridge.Latitude, bridge.Longitude)]
}
