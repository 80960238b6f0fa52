// Package history persists bridge status transitions as open/close
// sessions and serves recent-history queries over them.
package history

import "time"

// TransitionRecord is one row of the per-bridge status history. A row
// with opened_at set and closed_at null is "the open session" for its
// bridge; the transition logger maintains at most one such row per
// bridge.
type TransitionRecord struct {
	ID                       uint       `gorm:"primaryKey;column:id"`
	BridgeID                 string     `gorm:"column:bridge_id;index:bridge_id_idx"`
	Status                   string     `gorm:"column:status"`
	RecordedAt               string     `gorm:"column:recorded_at"`
	OpenedAt                 *time.Time `gorm:"column:opened_at"`
	ClosedAt                 *time.Time `gorm:"column:closed_at"`
	OpenedAtRaw              *string    `gorm:"column:opened_at_raw"`
	ClosedAtRaw              *string    `gorm:"column:closed_at_raw"`
	SecondsSincePreviousOpen *int64     `gorm:"column:seconds_since_previous_open"`
}

// TableName customizes the table name for GORM
func (TransitionRecord) TableName() string {
	return "bridge_status_history"
}

// recordedAtLayout is the storage format for recorded_at. Fixed-width, so
// lexicographic comparison on the column equals chronological comparison.
const recordedAtLayout = "2006-01-02 15:04:05"
