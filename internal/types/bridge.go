// Package types defines the domain types shared across the brugwacht packages.
package types

import "time"

// Derived status values for a bridge. The Dutch terms are part of the
// public snapshot contract consumed by the dashboard frontend.
const (
	StatusOpen    = "open"
	StatusPlanned = "gepland"
	StatusClosed  = "dicht"
)

// Bridge is a single movable bridge from the registry. Bridges are
// constructed once per run and are immutable afterwards.
type Bridge struct {
	ID             string
	Latitude       float64
	Longitude      float64
	Name           string
	Region         string
	Town           string
	CorrelationIDs []string
}

// Situation is one reported bridge-opening event from the NDW feed.
// Situations live only for the duration of a run and are never persisted.
// Fields sourced from optional XML elements hold the empty string when the
// element was absent.
type Situation struct {
	ID             string // full situation id attribute
	CorrelationID  string // NDW identifier extracted from the id attribute
	Latitude       string // raw coordinate strings from the feed
	Longitude      string
	Start          time.Time // parsed overallStartTime; zero if unparseable
	StartRaw       string
	End            *time.Time
	EndRaw         string
	ValidityStatus string
	Probability    string
	OperatorAction string
	Version        string
}

// DerivedStatus is the normalized tri-state status computed for a bridge
// from its best-matching situation (or from the default-closed fallback).
type DerivedStatus struct {
	Status         string
	Open           bool
	Planning       bool
	StatusMoment   string // raw timestamp string, best effort
	StartRaw       string
	EndRaw         string
	ValidityStatus string
	Probability    string
	OperatorAction string
	Version        string
}

// SnapshotRecord is the per-bridge output record written to the snapshot
// file for the dashboard.
type SnapshotRecord struct {
	ID                   string   `json:"id"`
	Latitude             float64  `json:"latitude"`
	Longitude            float64  `json:"longitude"`
	SituationCurrent     string   `json:"situationCurrent"`
	SituationPredicted   string   `json:"situationPredicted"`
	Version              string   `json:"version"`
	StartRaw             string   `json:"startRaw"`
	EndRaw               string   `json:"endRaw"`
	ValidityStatus       string   `json:"validityStatus"`
	OperatorActionStatus string   `json:"operatorActionStatus"`
	Planning             bool     `json:"planning"`
	Name                 string   `json:"name"`
	Region               string   `json:"region"`
	Town                 string   `json:"town"`
	CorrelationIDs       []string `json:"correlationIds"`
	Status               string   `json:"status"`
	Open                 bool     `json:"open"`
}
