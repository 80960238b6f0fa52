package history

import (
	"fmt"
	"time"

	"gorm.io/gorm"
)

// Entry is one history row as served to API consumers. Timestamps are
// re-expressed as RFC 3339 in the storage zone; the JSON keys match what
// the dashboard frontend already consumes.
type Entry struct {
	Status                   string `json:"status"`
	RecordedAt               string `json:"recorded_at"`
	OpenedAt                 string `json:"opened_at,omitempty"`
	ClosedAt                 string `json:"closed_at,omitempty"`
	SecondsSincePreviousOpen *int64 `json:"seconds_since_previous_open"`
}

// Reader serves recent-transition queries over the history table
type Reader struct {
	db    *gorm.DB
	nowFn func() time.Time
}

// NewReader creates a history reader
func NewReader(db *gorm.DB) *Reader {
	return &Reader{db: db, nowFn: time.Now}
}

// Recent returns the newest transitions for a bridge within the given
// hours window, newest first, at most limit rows. Sessions still open
// report seconds against the current instant.
func (r *Reader) Recent(bridgeID string, limit, hours int) ([]Entry, error) {
	if r.db == nil {
		return nil, fmt.Errorf("history store is not configured")
	}

	now := r.nowFn().In(storeLocation)
	cutoff := now.Add(-time.Duration(hours) * time.Hour).Format(recordedAtLayout)

	var rows []TransitionRecord
	err := r.db.Where("bridge_id = ? AND recorded_at >= ?", bridgeID, cutoff).
		Order("id DESC").Limit(limit).Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("error querying history for bridge %s: %v", bridgeID, err)
	}

	entries := make([]Entry, 0, len(rows))
	for _, row := range rows {
		entry := Entry{
			Status:                   row.Status,
			RecordedAt:               formatStored(row.RecordedAt),
			SecondsSincePreviousOpen: row.SecondsSincePreviousOpen,
		}

		if row.OpenedAt != nil {
			entry.OpenedAt = row.OpenedAt.In(storeLocation).Format(time.RFC3339)

			end := now
			if row.ClosedAt != nil {
				end = *row.ClosedAt
				entry.ClosedAt = row.ClosedAt.In(storeLocation).Format(time.RFC3339)
			}
			seconds := sessionSeconds(*row.OpenedAt, end)
			entry.SecondsSincePreviousOpen = &seconds
		} else if row.ClosedAt != nil {
			entry.ClosedAt = row.ClosedAt.In(storeLocation).Format(time.RFC3339)
		}

		entries = append(entries, entry)
	}
	return entries, nil
}

// formatStored converts a stored recorded_at string to RFC 3339, leaving
// the original value in place when it does not parse.
func formatStored(value string) string {
	t, err := time.ParseInLocation(recordedAtLayout, value, storeLocation)
	if err != nil {
		return value
	}
	return t.Format(time.RFC3339)
}
