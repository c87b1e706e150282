package entity

// GraphEdge mirrors the `path_edges` PostgreSQL table schema. Edges are
// undirected; From sorts before To.
type GraphEdge struct {
	From string `json:"from"`
	To   string `json:"to"`
}
