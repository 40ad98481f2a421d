// Package graph builds the sparse artwork similarity graph and answers hop
// distance queries over it.
package graph

import (
	"sync"

	"github.com/hrygo/sixdegrees/plugin/similarity"
)

// Node is one artwork in the graph.
type Node struct {
	ID             int64  `json:"id"`
	Title          string `json:"title"`
	Maker          string `json:"maker"`
	ImageURL       string `json:"image_url"`
	Date           string `json:"date,omitempty"`
	Medium         string `json:"medium,omitempty"`
	Classification string `json:"classification,omitempty"`
}

// Edge is an undirected similarity link. Source always has the smaller ID.
type Edge struct {
	Source   int64               `json:"source"`
	Target   int64               `json:"target"`
	Weight   float64             `json:"weight"` // total similarity score
	Relation similarity.Relation `json:"relation"`
}

// Stats contains graph statistics.
type Stats struct {
	NodeCount      int            `json:"node_count"`
	EdgeCount      int            `json:"edge_count"`
	ComponentCount int            `json:"component_count"`
	MaxDegree      int            `json:"max_degree"`
	RelationEdges  map[string]int `json:"relation_edges,omitempty"`
}

// ArtGraph is an immutable snapshot of the similarity graph. It is safe for
// concurrent readers; the adjacency index is built on first query.
type ArtGraph struct {
	Nodes   []Node `json:"nodes"`
	Edges   []Edge `json:"edges"`
	Stats   Stats  `json:"stats"`
	BuildMs int64  `json:"build_ms"`

	indexOnce sync.Once
	index     *adjacency
}

type adjacency struct {
	position  map[int64]int // node id -> index into Nodes
	neighbors [][]int
}

// NewArtGraph assembles a graph from nodes and edges and computes its stats.
func NewArtGraph(nodes []Node, edges []Edge) *ArtGraph {
	if nodes == nil {
		nodes = []Node{}
	}
	if edges == nil {
		edges = []Edge{}
	}
	g := &ArtGraph{Nodes: nodes, Edges: edges}
	g.Stats = g.computeStats()
	return g
}

func (g *ArtGraph) adjacency() *adjacency {
	g.indexOnce.Do(func() {
		idx := &adjacency{
			position:  make(map[int64]int, len(g.Nodes)),
			neighbors: make([][]int, len(g.Nodes)),
		}
		for i, n := range g.Nodes {
			idx.position[n.ID] = i
		}
		for _, e := range g.Edges {
			s, ok1 := idx.position[e.Source]
			t, ok2 := idx.position[e.Target]
			if !ok1 || !ok2 || s == t {
				continue
			}
			idx.neighbors[s] = append(idx.neighbors[s], t)
			idx.neighbors[t] = append(idx.neighbors[t], s)
		}
		g.index = idx
	})
	return g.index
}

// Node returns the node with the given ID.
func (g *ArtGraph) Node(id int64) (Node, bool) {
	i, ok := g.adjacency().position[id]
	if !ok {
		return Node{}, false
	}
	return g.Nodes[i], true
}

// HasNode reports whether id is part of the graph.
func (g *ArtGraph) HasNode(id int64) bool {
	_, ok := g.adjacency().position[id]
	return ok
}

// Neighbors returns the IDs adjacent to id.
func (g *ArtGraph) Neighbors(id int64) []int64 {
	idx := g.adjacency()
	i, ok := idx.position[id]
	if !ok {
		return nil
	}
	out := make([]int64, 0, len(idx.neighbors[i]))
	for _, j := range idx.neighbors[i] {
		out = append(out, g.Nodes[j].ID)
	}
	return out
}

// Degree returns the number of edges touching id.
func (g *ArtGraph) Degree(id int64) int {
	idx := g.adjacency()
	i, ok := idx.position[id]
	if !ok {
		return 0
	}
	return len(idx.neighbors[i])
}

func (g *ArtGraph) computeStats() Stats {
	idx := g.adjacency()
	stats := Stats{
		NodeCount: len(g.Nodes),
		EdgeCount: len(g.Edges),
	}
	for _, e := range g.Edges {
		if stats.RelationEdges == nil {
			stats.RelationEdges = make(map[string]int)
		}
		stats.RelationEdges[e.Relation.String()]++
	}
	for _, ns := range idx.neighbors {
		stats.MaxDegree = max(stats.MaxDegree, len(ns))
	}

	// Connected components by flood fill over the index.
	seen := make([]bool, len(g.Nodes))
	for i := range g.Nodes {
		if seen[i] {
			continue
		}
		stats.ComponentCount++
		seen[i] = true
		queue := []int{i}
		for len(queue) > 0 {
			cur := queue[0]
			queue = queue[1:]
			for _, j := range idx.neighbors[cur] {
				if !seen[j] {
					seen[j] = true
					queue = append(queue, j)
				}
			}
		}
	}
	return stats
}
