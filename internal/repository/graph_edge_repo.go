package repository

import (
	"context"

	"github.com/user/philosophy-walker/internal/entity"
)

// GraphEdgeRepository persists the combined graph of all traversal paths.
type GraphEdgeRepository interface {
	// AddEdges inserts edges, ignoring ones already stored.
	AddEdges(ctx context.Context, edges []entity.GraphEdge) error
	// ListEdges returns every stored edge.
	ListEdges(ctx context.Context) ([]entity.GraphEdge, error)
}
