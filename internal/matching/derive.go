package matching

import (
	"time"

	"github.com/brugmelding/brugwacht/internal/types"
)

// Feed category values that signal an opening in progress or planned.
// The exact planned/closed boundary is vendor-specific; keeping the
// values together makes a vendor change a one-line edit.
const (
	validityActive        = "active"
	validityPlanned       = "planned"
	probabilityCertain    = "certain"
	probabilityProbable   = "probable"
	actionBeingCarriedOut = "beingCarriedOut"
	actionApproved        = "approved"
)

// Fallback categories reported when a bridge has no matching situation.
const (
	fallbackOperatorAction = "certain"
	fallbackProbability    = "beingTerminated"
)

// utcMillis is the status-moment format for synthesized timestamps.
const utcMillis = "2006-01-02T15:04:05.000Z"

// Derive converts a situation's temporal window and categorical fields
// into a discrete bridge status. Rules are evaluated in order, first
// match wins:
//
//  1. window contains now and an active signal is present -> open
//  2. start lies in the future -> gepland
//  3. a planned signal without a future-dated start -> gepland
//  4. otherwise -> dicht
func Derive(s types.Situation, now time.Time) types.DerivedStatus {
	d := types.DerivedStatus{
		Status:         types.StatusClosed,
		StartRaw:       s.StartRaw,
		EndRaw:         s.EndRaw,
		ValidityStatus: s.ValidityStatus,
		Probability:    s.Probability,
		OperatorAction: s.OperatorAction,
		Version:        s.Version,
	}

	inWindow := !s.Start.After(now) && (s.End == nil || !now.After(*s.End))
	activeSignal := s.ValidityStatus == validityActive ||
		s.Probability == probabilityCertain ||
		s.OperatorAction == actionBeingCarriedOut
	plannedSignal := s.ValidityStatus == validityPlanned ||
		s.Probability == probabilityProbable ||
		s.OperatorAction == actionApproved

	switch {
	case inWindow && activeSignal:
		d.Status = types.StatusOpen
		d.Open = true
		d.StatusMoment = s.StartRaw
	case s.Start.After(now):
		d.Status = types.StatusPlanned
		d.Planning = true
		d.StatusMoment = s.StartRaw
	case plannedSignal:
		d.Status = types.StatusPlanned
		d.Planning = true
		d.StatusMoment = s.StartRaw
	default:
		if s.EndRaw != "" {
			d.StatusMoment = s.EndRaw
		} else {
			d.StatusMoment = s.StartRaw
		}
	}

	if d.StatusMoment == "" {
		d.StatusMoment = now.UTC().Format(utcMillis)
	}
	return d
}

// DefaultClosed is the fail-safe status for a bridge with no matching
// situation. Absence of feed data must never be read as "open".
func DefaultClosed(now time.Time) types.DerivedStatus {
	return types.DerivedStatus{
		Status:         types.StatusClosed,
		OperatorAction: fallbackOperatorAction,
		Probability:    fallbackProbability,
		Version:        "0",
		StatusMoment:   now.UTC().Format(utcMillis),
	}
}
