// Package diagnostics records per-run input defects: malformed bridge
// records and correlation identifiers that matched no feed event. Both are
// written in the file formats the operator tooling already consumes.
package diagnostics

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/brugmelding/brugwacht/internal/log"
)

// RunLog is an append-only text log of skipped or malformed input items.
// A RunLog with an empty path discards everything, so callers never have
// to guard their Append calls.
type RunLog struct {
	path string
	mu   sync.Mutex
}

// NewRunLog creates a run log writing to the given path
func NewRunLog(path string) *RunLog {
	return &RunLog{path: path}
}

// Append writes a single timestamped diagnostic entry
func (l *RunLog) Append(format string, args ...interface{}) {
	if l == nil || l.path == "" {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		log.Warnf("could not open run log %s: %v", l.path, err)
		return
	}
	defer f.Close()

	line := fmt.Sprintf("%s - %s\n", time.Now().Format(time.RFC3339), fmt.Sprintf(format, args...))
	if _, err := f.WriteString(line); err != nil {
		log.Warnf("could not write run log entry: %v", err)
	}
}
