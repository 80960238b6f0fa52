package matching

import (
	"time"

	"github.com/brugmelding/brugwacht/internal/types"
)

// Resolution is the outcome of matching one bridge against the index.
// When Found is false the caller must apply the default-closed policy.
type Resolution struct {
	Found     bool
	Situation types.Situation
	Derived   types.DerivedStatus
}

// statusPriority ranks derived statuses for candidate selection: an
// actually-open bridge must never be shadowed by a stale planned record
// that happens to appear earlier in the feed.
func statusPriority(status string) int {
	switch status {
	case types.StatusOpen:
		return 3
	case types.StatusPlanned:
		return 2
	default:
		return 1
	}
}

// tieBreakDistance is the recency measure used on a priority tie: the
// absolute distance between now and the situation's start. Open
// candidates count as distance zero, they are current by definition.
func tieBreakDistance(d types.DerivedStatus, s types.Situation, now time.Time) time.Duration {
	if d.Open {
		return 0
	}
	dist := now.Sub(s.Start)
	if dist < 0 {
		dist = -dist
	}
	return dist
}

// Resolve selects the single best situation for a bridge. Candidates are
// compared by status priority, then by recency, then by feed position
// (stable, first wins), which makes resolution deterministic for a given
// candidate set.
func (idx *Index) Resolve(bridge types.Bridge) Resolution {
	candidates := idx.candidatesFor(bridge)
	if len(candidates) == 0 {
		return Resolution{}
	}

	best := Resolution{
		Found:     true,
		Situation: candidates[0],
		Derived:   Derive(candidates[0], idx.now),
	}
	bestDist := tieBreakDistance(best.Derived, best.Situation, idx.now)

	for _, candidate := range candidates[1:] {
		derived := Derive(candidate, idx.now)
		dist := tieBreakDistance(derived, candidate, idx.now)

		better := statusPriority(derived.Status) > statusPriority(best.Derived.Status) ||
			(statusPriority(derived.Status) == statusPriority(best.Derived.Status) && dist < bestDist)
		if better {
			best.Situation = candidate
			best.Derived = derived
			bestDist = dist
		}
	}
	return best
}
