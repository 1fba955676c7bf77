package model

import "time"

// UsageEvent records one completed generation request for reporting.
// Produced by the usage pipeline, never read on the request path.
type UsageEvent struct {
	ID          string    `json:"id"`
	EventID     string    `json:"event_id"`
	UserID      string    `json:"user_id"`
	ListingID   string    `json:"listing_id"`
	ContentDone int       `json:"content_done"`
	ContentFail int       `json:"content_fail"`
	DurationMS  int64     `json:"duration_ms"`
	OccurredAt  time.Time `json:"occurred_at"`
}
