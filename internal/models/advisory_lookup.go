package models

import "time"

// AdvisoryLookup is a per-outcome hit count for the advisory responder.
// Outcome is a rule key or "fallback".
type AdvisoryLookup struct {
	Outcome    string
	Language   string
	Count      int64
	LastSeenAt time.Time
}
