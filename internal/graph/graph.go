// Package graph provides a directed weighted multigraph and a shortest-path
// router over it. Parallel edges keep their own identity so callers can attach
// metadata per EdgeID.
package graph

import (
	"errors"
	"fmt"
)

var (
	// ErrVertexOutOfRange is returned when an edge or query names a vertex
	// outside [0, VertexCount).
	ErrVertexOutOfRange = errors.New("vertex out of range")

	// ErrNegativeWeight is returned when an edge is added with a negative weight.
	ErrNegativeWeight = errors.New("negative edge weight")
)

// Weight is the set of edge weight types the router supports.
type Weight interface {
	~int | ~int64 | ~float64
}

// VertexID indexes a vertex in [0, VertexCount).
type VertexID int

// EdgeID is the insertion index of an edge.
type EdgeID int

// Edge is a directed weighted edge.
type Edge[W Weight] struct {
	From   VertexID
	To     VertexID
	Weight W
}

// DirectedWeightedGraph is an append-only directed multigraph with a fixed
// vertex count.
type DirectedWeightedGraph[W Weight] struct {
	edges     []Edge[W]
	incidence [][]EdgeID
}

// New returns a graph with vertexCount vertices and no edges.
func New[W Weight](vertexCount int) *DirectedWeightedGraph[W] {
	return &DirectedWeightedGraph[W]{
		incidence: make([][]EdgeID, vertexCount),
	}
}

// AddEdge appends e and returns its id. Ids are assigned 0, 1, 2, ... in
// insertion order.
func (g *DirectedWeightedGraph[W]) AddEdge(e Edge[W]) (EdgeID, error) {
	if !g.contains(e.From) || !g.contains(e.To) {
		return 0, fmt.Errorf("%w: edge %d->%d with %d vertices", ErrVertexOutOfRange, e.From, e.To, len(g.incidence))
	}
	if e.Weight < 0 {
		return 0, fmt.Errorf("%w: edge %d->%d", ErrNegativeWeight, e.From, e.To)
	}

	id := EdgeID(len(g.edges))
	g.edges = append(g.edges, e)
	g.incidence[e.From] = append(g.incidence[e.From], id)
	return id, nil
}

// VertexCount returns the number of vertices.
func (g *DirectedWeightedGraph[W]) VertexCount() int {
	return len(g.incidence)
}

// EdgeCount returns the number of edges.
func (g *DirectedWeightedGraph[W]) EdgeCount() int {
	return len(g.edges)
}

// Edge returns the edge with the given id.
func (g *DirectedWeightedGraph[W]) Edge(id EdgeID) Edge[W] {
	return g.edges[id]
}

// IncidentEdges returns the ids of the edges leaving v, in insertion order.
// The returned slice must not be modified.
func (g *DirectedWeightedGraph[W]) IncidentEdges(v VertexID) []EdgeID {
	return g.incidence[v]
}

func (g *DirectedWeightedGraph[W]) contains(v VertexID) bool {
	return v >= 0 && int(v) < len(g.incidence)
}
