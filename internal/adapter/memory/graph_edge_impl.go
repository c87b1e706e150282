package memory

import (
	"context"
	"sync"

	"github.com/user/philosophy-walker/internal/entity"
)

// GraphEdgeRepoImpl is a set of path edges held in memory.
type GraphEdgeRepoImpl struct {
	mu    sync.RWMutex
	edges map[entity.GraphEdge]struct{}
	order []entity.GraphEdge
}

func NewGraphEdgeRepo() *GraphEdgeRepoImpl {
	return &GraphEdgeRepoImpl{edges: make(map[entity.GraphEdge]struct{})}
}

func (r *GraphEdgeRepoImpl) AddEdges(ctx context.Context, edges []entity.GraphEdge) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range edges {
		if _, ok := r.edges[e]; ok {
			continue
		}
		r.edges[e] = struct{}{}
		r.order = append(r.order, e)
	}
	return nil
}

// ListEdges returns edges in insertion order.
func (r *GraphEdgeRepoImpl) ListEdges(ctx context.Context) ([]entity.GraphEdge, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]entity.GraphEdge(nil), r.order...), nil
}
