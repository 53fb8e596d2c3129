package graph

import (
	"container/heap"
	"fmt"
	"slices"
)

// RouteInfo is a shortest path: its total weight and the edges along it in
// travel order.
type RouteInfo[W Weight] struct {
	Weight W
	Edges  []EdgeID
}

// Router answers shortest-path queries over a graph that no longer changes.
// Queries do not share mutable state, so a Router is safe for concurrent use.
type Router[W Weight] struct {
	graph *DirectedWeightedGraph[W]
}

// NewRouter returns a router over g. g must not gain edges afterwards.
func NewRouter[W Weight](g *DirectedWeightedGraph[W]) *Router[W] {
	return &Router[W]{graph: g}
}

// Graph returns the graph the router searches.
func (r *Router[W]) Graph() *DirectedWeightedGraph[W] {
	return r.graph
}

// BuildRoute returns a minimum-weight path from one vertex to another. found
// is false when to is unreachable. A route from a vertex to itself has zero
// weight and no edges.
func (r *Router[W]) BuildRoute(from, to VertexID) (route RouteInfo[W], found bool, err error) {
	if !r.graph.contains(from) || !r.graph.contains(to) {
		return RouteInfo[W]{}, false, fmt.Errorf("%w: route %d->%d", ErrVertexOutOfRange, from, to)
	}
	if from == to {
		return RouteInfo[W]{}, true, nil
	}

	n := r.graph.VertexCount()
	dist := make([]W, n)
	reached := make([]bool, n)
	settled := make([]bool, n)
	prevEdge := make([]EdgeID, n)

	reached[from] = true
	queue := &vertexQueue[W]{{vertex: from}}

	for queue.Len() > 0 {
		current := heap.Pop(queue).(queueItem[W])
		v := current.vertex
		if settled[v] {
			continue
		}
		settled[v] = true
		if v == to {
			break
		}

		for _, id := range r.graph.IncidentEdges(v) {
			e := r.graph.edges[id]
			candidate := dist[v] + e.Weight
			if settled[e.To] || (reached[e.To] && candidate >= dist[e.To]) {
				continue
			}
			reached[e.To] = true
			dist[e.To] = candidate
			prevEdge[e.To] = id
			heap.Push(queue, queueItem[W]{vertex: e.To, dist: candidate})
		}
	}

	if !reached[to] {
		return RouteInfo[W]{}, false, nil
	}

	var edges []EdgeID
	for v := to; v != from; {
		id := prevEdge[v]
		edges = append(edges, id)
		v = r.graph.edges[id].From
	}
	slices.Reverse(edges)

	return RouteInfo[W]{Weight: dist[to], Edges: edges}, true, nil
}

type queueItem[W Weight] struct {
	vertex VertexID
	dist   W
}

// vertexQueue is a min-heap on dist with lazy deletion.
type vertexQueue[W Weight] []queueItem[W]

func (q vertexQueue[W]) Len() int           { return len(q) }
func (q vertexQueue[W]) Less(i, j int) bool { return q[i].dist < q[j].dist }
func (q vertexQueue[W]) Swap(i, j int)      { q[i], q[j] = q[j], q[i] }

func (q *vertexQueue[W]) Push(x any) {
	*q = append(*q, x.(queueItem[W]))
}

func (q *vertexQueue[W]) Pop() any {
	old := *q
	item := old[len(old)-1]
	*q = old[:len(old)-1]
	return item
}
