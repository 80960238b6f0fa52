package history

import (
	"errors"
	"time"

	"github.com/brugmelding/brugwacht/internal/log"
	"github.com/brugmelding/brugwacht/internal/timeutil"
	"github.com/brugmelding/brugwacht/internal/types"
	"gorm.io/gorm"
)

// storeLocation is the fixed time zone for persisted timestamps.
var storeLocation = loadStoreLocation()

func loadStoreLocation() *time.Location {
	loc, err := time.LoadLocation("Europe/Amsterdam")
	if err != nil {
		log.Warnf("could not load Europe/Amsterdam zone, storing timestamps in UTC: %v", err)
		return time.UTC
	}
	return loc
}

// Logger maintains the per-bridge transition history. A Logger created
// without a database connection degrades to a no-op so the rest of the
// pipeline proceeds unaffected when the store is unreachable.
type Logger struct {
	db    *gorm.DB
	nowFn func() time.Time
}

// NewLogger creates a transition logger. db may be nil.
func NewLogger(db *gorm.DB) *Logger {
	return &Logger{db: db, nowFn: time.Now}
}

// Enabled reports whether transitions are being persisted
func (l *Logger) Enabled() bool {
	return l.db != nil
}

// EnsureSchema creates the history table if it does not exist yet
func (l *Logger) EnsureSchema() error {
	if l.db == nil {
		return nil
	}
	return l.db.AutoMigrate(&TransitionRecord{})
}

// transitionAction is the persistence decision for one status reading.
type transitionAction int

const (
	actionNone transitionAction = iota
	actionOpenSession
	actionCloseSession
	actionInsertTransition
)

// transitionFor decides what a status reading means given the bridge's
// last recorded row and whether an open session exists. Pure so the state
// machine is testable without a database.
//
//   - open reading, session already open: nothing (dedup)
//   - open reading, no open session: start a session
//   - non-open reading, session open: close the session
//   - non-open reading, status changed: plain transition row
//   - non-open reading, status unchanged: nothing
func transitionFor(lastStatus string, haveLast, haveOpenSession bool, status string) transitionAction {
	if status == types.StatusOpen {
		if haveLast && lastStatus == types.StatusOpen {
			return actionNone
		}
		return actionOpenSession
	}

	if haveOpenSession {
		return actionCloseSession
	}
	if !haveLast || lastStatus != status {
		return actionInsertTransition
	}
	return actionNone
}

// sessionSeconds computes the duration of an open interval, floored at
// zero against clock skew between runs.
func sessionSeconds(openedAt, closedAt time.Time) int64 {
	seconds := int64(closedAt.Sub(openedAt).Seconds())
	if seconds < 0 {
		return 0
	}
	return seconds
}

// normalizeMoment parses the caller's best-effort timestamp and expresses
// it in the storage zone, substituting the current instant when it cannot
// be parsed.
func (l *Logger) normalizeMoment(raw string) time.Time {
	if t, ok := timeutil.Parse(raw); ok {
		return t.In(storeLocation)
	}
	return l.nowFn().In(storeLocation)
}

// Record applies one derived status reading to the bridge's history. The
// read-decide-write sequence runs in a single transaction so overlapping
// runs cannot both observe "no open session" and insert twice.
func (l *Logger) Record(bridgeID, status, momentRaw string) error {
	if l.db == nil {
		return nil
	}

	moment := l.normalizeMoment(momentRaw)
	recordedAt := moment.Format(recordedAtLayout)

	return l.db.Transaction(func(tx *gorm.DB) error {
		var last TransitionRecord
		haveLast := true
		if err := tx.Where("bridge_id = ?", bridgeID).Order("id DESC").First(&last).Error; err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
			haveLast = false
		}

		var open TransitionRecord
		haveOpen := true
		if err := tx.Where("bridge_id = ? AND opened_at IS NOT NULL AND closed_at IS NULL", bridgeID).
			Order("id DESC").First(&open).Error; err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
			haveOpen = false
		}

		switch transitionFor(last.Status, haveLast, haveOpen, status) {
		case actionOpenSession:
			zero := int64(0)
			raw := momentRaw
			return tx.Create(&TransitionRecord{
				BridgeID:                 bridgeID,
				Status:                   status,
				RecordedAt:               recordedAt,
				OpenedAt:                 &moment,
				OpenedAtRaw:              &raw,
				SecondsSincePreviousOpen: &zero,
			}).Error

		case actionCloseSession:
			var seconds *int64
			if open.OpenedAt != nil {
				s := sessionSeconds(*open.OpenedAt, moment)
				seconds = &s
			}
			raw := momentRaw
			return tx.Model(&TransitionRecord{}).Where("id = ?", open.ID).Updates(map[string]interface{}{
				"status":                      status,
				"recorded_at":                 recordedAt,
				"closed_at":                   moment,
				"closed_at_raw":               raw,
				"seconds_since_previous_open": seconds,
			}).Error

		case actionInsertTransition:
			return tx.Create(&TransitionRecord{
				BridgeID:   bridgeID,
				Status:     status,
				RecordedAt: recordedAt,
			}).Error
		}
		return nil
	})
}
