package entity

import "time"

// Outcome tells how a traversal ended.
type Outcome string

const (
	OutcomeReached     Outcome = "reached"
	OutcomeLooped      Outcome = "looped"
	OutcomeDeadEnd     Outcome = "dead_end"
	OutcomeFetchFailed Outcome = "fetch_failed"
)

// TraversalResult mirrors the `traversal_results` PostgreSQL table schema.
// Path[i] is the page name of Addresses[i]; Path[0] is always the start page.
type TraversalResult struct {
	Start         string    `json:"start"`
	Reached       bool      `json:"reached"`
	Outcome       Outcome   `json:"outcome"`
	Path          []string  `json:"path"`
	Addresses     []string  `json:"addresses"`
	FailureReason string    `json:"failure_reason,omitempty"`
	StartedAt     time.Time `json:"started_at"`
	FinishedAt    time.Time `json:"finished_at"`
}

// Hops is the number of links followed.
func (r *TraversalResult) Hops() int {
	if len(r.Path) == 0 {
		return 0
	}
	return len(r.Path) - 1
}

// Last returns the address the traversal stopped at.
func (r *TraversalResult) Last() string {
	if len(r.Addresses) == 0 {
		return ""
	}
	return r.Addresses[len(r.Addresses)-1]
}
