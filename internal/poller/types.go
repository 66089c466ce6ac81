// internal/poller/types.go
package poller

import (
	"time"

	"github.com/tamzrod/solax-monitor/internal/registers"
	"github.com/tamzrod/solax-monitor/internal/status"
)

// PollResult is produced by one poll cycle.
type PollResult struct {
	Source string
	At     time.Time

	// Raw is the register window exactly as fetched.
	Raw registers.Raw

	Measurements registers.Measurements
	Snapshot     status.Snapshot

	Err error // non-nil means the fetch failed; nothing else is set
}
