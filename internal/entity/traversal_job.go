package entity

import "time"

// TraversalJob is a queued request to walk from a start page.
type TraversalJob struct {
	ID         string    `json:"id"`
	Start      string    `json:"start"`
	EnqueuedAt time.Time `json:"enqueued_at"`
}
