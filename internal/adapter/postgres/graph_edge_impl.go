package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/user/philosophy-walker/internal/entity"
)

// GraphEdgeRepoImpl provides a concrete implementation for the GraphEdgeRepository interface using PostgreSQL.
type GraphEdgeRepoImpl struct {
	db *pgxpool.Pool
}

// NewGraphEdgeRepo creates a new instance of GraphEdgeRepoImpl.
func NewGraphEdgeRepo(db *pgxpool.Pool) *GraphEdgeRepoImpl {
	return &GraphEdgeRepoImpl{db: db}
}

// AddEdges batch inserts edges. Edges already stored are left untouched.
func (r *GraphEdgeRepoImpl) AddEdges(ctx context.Context, edges []entity.GraphEdge) error {
	if len(edges) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, e := range edges {
		batch.Queue(`INSERT INTO path_edges (from_page, to_page) VALUES ($1, $2)
		             ON CONFLICT (from_page, to_page) DO NOTHING`, e.From, e.To)
	}
	return r.db.SendBatch(ctx, batch).Close()
}

// ListEdges returns every stored edge, oldest first.
func (r *GraphEdgeRepoImpl) ListEdges(ctx context.Context) ([]entity.GraphEdge, error) {
	rows, err := r.db.Query(ctx, `SELECT from_page, to_page FROM path_edges ORDER BY created_at, from_page, to_page;`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var edges []entity.GraphEdge
	for rows.Next() {
		var e entity.GraphEdge
		if err := rows.Scan(&e.From, &e.To); err != nil {
			return nil, err
		}
		edges = append(edges, e)
	}
	return edges, rows.Err()
}
