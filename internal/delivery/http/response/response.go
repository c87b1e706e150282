package response

import (
	"time"

	"github.com/user/philosophy-walker/internal/entity"
)

type SubmitTraversalResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	JobID   string `json:"job_id"`
}

// TraversalResponse is a DTO for a traversal result, mirroring entity.TraversalResult
type TraversalResponse struct {
	Start         string    `json:"start"`
	Reached       bool      `json:"reached"`
	Outcome       string    `json:"outcome"` // "reached", "looped", "dead_end", "fetch_failed"
	Path          []string  `json:"path"`
	Addresses     []string  `json:"addresses"`
	Hops          int       `json:"hops"`
	FailureReason string    `json:"failure_reason,omitempty"`
	Summary       string    `json:"summary"`
	StartedAt     time.Time `json:"started_at"`
	FinishedAt    time.Time `json:"finished_at"`
}

func NewTraversalResponse(result *entity.TraversalResult, summary string) TraversalResponse {
	return TraversalResponse{
		Start:         result.Start,
		Reached:       result.Reached,
		Outcome:       string(result.Outcome),
		Path:          result.Path,
		Addresses:     result.Addresses,
		Hops:          result.Hops(),
		FailureReason: result.FailureReason,
		Summary:       summary,
		StartedAt:     result.StartedAt,
		FinishedAt:    result.FinishedAt,
	}
}

// TraversalListResponse lists stored results, newest first.
type TraversalListResponse struct {
	Traversals []TraversalResponse `json:"traversals"`
}

type GraphResponse struct {
	Target string             `json:"target"`
	Nodes  []string           `json:"nodes"`
	Edges  []entity.GraphEdge `json:"edges"`
}
