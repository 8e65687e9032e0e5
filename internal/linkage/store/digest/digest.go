// Package digest remembers the fingerprint of the last applied plan so an
// unchanged run can skip the write.
package digest

import "time"

// Record is the last plan digest written to the participant store.
type Record struct {
	Digest     string
	RunID      string
	RecordedAt time.Time
}
