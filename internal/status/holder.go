// internal/status/holder.go
package status

import (
	"sync"
	"time"
)

// Holder keeps the latest published Record.
// One writer (the poll loop), any number of readers.
// A Record is swapped as a whole value, never field by field.
type Holder struct {
	mu      sync.RWMutex
	rec     Record
	updated time.Time
}

// NewHolder starts with the Initial record and a zero update time.
func NewHolder() *Holder {
	return &Holder{rec: Initial()}
}

// Publish replaces the current record.
func (h *Holder) Publish(r Record, at time.Time) {
	h.mu.Lock()
	h.rec = r
	h.updated = at
	h.mu.Unlock()
}

// Latest returns the current record and when it was published.
// A zero time means nothing was published yet.
func (h *Holder) Latest() (Record, time.Time) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.rec, h.updated
}
