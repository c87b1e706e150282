// Package graph combines traversal paths into one undirected graph.
package graph

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"

	"github.com/user/philosophy-walker/internal/entity"
)

// PathGraph is a simple undirected graph of page names. Adding the same edge
// twice has no effect. It is safe for concurrent use.
type PathGraph struct {
	mu    sync.RWMutex
	nodes map[string]struct{}
	edges map[entity.GraphEdge]struct{}
}

func New() *PathGraph {
	return &PathGraph{
		nodes: make(map[string]struct{}),
		edges: make(map[entity.GraphEdge]struct{}),
	}
}

// Edge returns the canonical undirected edge between a and b.
func Edge(a, b string) entity.GraphEdge {
	if b < a {
		a, b = b, a
	}
	return entity.GraphEdge{From: a, To: b}
}

// PathEdges lists the edges between consecutive pages of path. Self edges
// are dropped.
func PathEdges(path []string) []entity.GraphEdge {
	var edges []entity.GraphEdge
	for i := 0; i+1 < len(path); i++ {
		if path[i] == path[i+1] {
			continue
		}
		edges = append(edges, Edge(path[i], path[i+1]))
	}
	return edges
}

// AddPath inserts every page of path and an edge for each consecutive pair.
func (g *PathGraph) AddPath(path []string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, name := range path {
		g.nodes[name] = struct{}{}
	}
	for _, e := range PathEdges(path) {
		g.edges[e] = struct{}{}
	}
}

// AddEdges inserts already canonical edges, e.g. loaded from storage.
func (g *PathGraph) AddEdges(edges []entity.GraphEdge) {
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, e := range edges {
		e = Edge(e.From, e.To)
		g.nodes[e.From] = struct{}{}
		g.nodes[e.To] = struct{}{}
		g.edges[e] = struct{}{}
	}
}

func (g *PathGraph) HasNode(name string) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	_, ok := g.nodes[name]
	return ok
}

// Nodes returns the page names in lexical order.
func (g *PathGraph) Nodes() []string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	nodes := make([]string, 0, len(g.nodes))
	for n := range g.nodes {
		nodes = append(nodes, n)
	}
	sort.Strings(nodes)
	return nodes
}

// Edges returns the edges ordered by From, then To.
func (g *PathGraph) Edges() []entity.GraphEdge {
	g.mu.RLock()
	defer g.mu.RUnlock()
	edges := make([]entity.GraphEdge, 0, len(g.edges))
	for e := range g.edges {
		edges = append(edges, e)
	}
	sort.Slice(edges, func(i, j int) bool {
		if edges[i].From != edges[j].From {
			return edges[i].From < edges[j].From
		}
		return edges[i].To < edges[j].To
	})
	return edges
}

// WriteDOT renders the graph in Graphviz DOT. The highlight node, usually
// the target page, is drawn filled when present.
func (g *PathGraph) WriteDOT(w io.Writer, highlight string) error {
	var b strings.Builder
	b.WriteString("graph \"Path to Philosophy Map\" {\n")
	b.WriteString("\tnode [shape=box, style=rounded, fontsize=7];\n")
	for _, n := range g.Nodes() {
		if n == highlight {
			fmt.Fprintf(&b, "\t%s [style=\"rounded,filled\", fillcolor=\"#0A2463\", fontcolor=white];\n", quote(n))
			continue
		}
		fmt.Fprintf(&b, "\t%s;\n", quote(n))
	}
	for _, e := range g.Edges() {
		fmt.Fprintf(&b, "\t%s -- %s;\n", quote(e.From), quote(e.To))
	}
	b.WriteString("}\n")
	_, err := io.WriteString(w, b.String())
	return err
}

func quote(s string) string {
	return `"` + strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(s) + `"`
}
