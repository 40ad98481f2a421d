package graph

import (
	"math/rand/v2"
	"slices"
)

// DefaultPreferredDistance is the hop count a target artwork is sought at.
const DefaultPreferredDistance = 6

// Rand is the randomness source used to pick among equally distant targets.
type Rand interface {
	IntN(n int) int
}

// Distance returns the number of hops on a shortest path between u and v.
// ok is false when either endpoint is absent or no path exists.
func (g *ArtGraph) Distance(u, v int64) (int, bool) {
	idx := g.adjacency()
	from, ok := idx.position[u]
	if !ok {
		return 0, false
	}
	to, ok := idx.position[v]
	if !ok {
		return 0, false
	}
	if from == to {
		return 0, true
	}

	dist := make([]int, len(g.Nodes))
	for i := range dist {
		dist[i] = -1
	}
	dist[from] = 0
	queue := []int{from}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, next := range idx.neighbors[cur] {
			if dist[next] >= 0 {
				continue
			}
			dist[next] = dist[cur] + 1
			if next == to {
				return dist[next], true
			}
			queue = append(queue, next)
		}
	}
	return 0, false
}

// ShortestPath returns the node IDs along one shortest path from u to v,
// both endpoints included.
func (g *ArtGraph) ShortestPath(u, v int64) ([]int64, bool) {
	idx := g.adjacency()
	from, ok := idx.position[u]
	if !ok {
		return nil, false
	}
	to, ok := idx.position[v]
	if !ok {
		return nil, false
	}
	if from == to {
		return []int64{u}, true
	}

	parent := make([]int, len(g.Nodes))
	for i := range parent {
		parent[i] = -1
	}
	parent[from] = from
	queue := []int{from}
	for len(queue) > 0 && parent[to] < 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, next := range idx.neighbors[cur] {
			if parent[next] >= 0 {
				continue
			}
			parent[next] = cur
			queue = append(queue, next)
		}
	}
	if parent[to] < 0 {
		return nil, false
	}

	path := []int64{g.Nodes[to].ID}
	for p := to; p != from; {
		p = parent[p]
		path = append(path, g.Nodes[p].ID)
	}
	slices.Reverse(path)
	return path, true
}

// DistancesFrom returns the hop distance from start to every reachable node,
// start included at distance 0. An absent start yields an empty map.
func (g *ArtGraph) DistancesFrom(start int64) map[int64]int {
	idx := g.adjacency()
	from, ok := idx.position[start]
	if !ok {
		return map[int64]int{}
	}

	distances := map[int64]int{start: 0}
	queue := []int{from}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		d := distances[g.Nodes[cur].ID]
		for _, next := range idx.neighbors[cur] {
			id := g.Nodes[next].ID
			// Enqueue on first discovery only.
			if _, seen := distances[id]; seen {
				continue
			}
			distances[id] = d + 1
			queue = append(queue, next)
		}
	}
	return distances
}

// TargetQuery describes the hop window a target is drawn from.
type TargetQuery struct {
	Preferred int
	Min       int
	Max       int
}

// NewTargetQuery fills in the window around preferred: [preferred-1, preferred+1].
// A non-positive preferred distance uses DefaultPreferredDistance.
func NewTargetQuery(preferred int) TargetQuery {
	if preferred <= 0 {
		preferred = DefaultPreferredDistance
	}
	return TargetQuery{Preferred: preferred, Min: preferred - 1, Max: preferred + 1}
}

// candidateDistances lists the distances to try, closest to Preferred first
// and the shorter one first on ties: p, p-1, p+1, p-2, p+2 and so on.
// Distance 0 (the start itself) is never a candidate.
func (q TargetQuery) candidateDistances() []int {
	lo := max(q.Min, 1)
	hi := q.Max
	if hi < lo {
		return nil
	}
	out := make([]int, 0, hi-lo+1)
	for d := lo; d <= hi; d++ {
		out = append(out, d)
	}
	slices.SortStableFunc(out, func(a, b int) int {
		da, db := abs(a-q.Preferred), abs(b-q.Preferred)
		if da != db {
			return da - db
		}
		return a - b
	})
	return out
}

// TargetAtDistance picks a node whose hop distance from start is as close as
// possible to q.Preferred within [max(q.Min,1), q.Max]. Among nodes at the
// chosen distance one is drawn uniformly with rng. ok is false when start is
// absent or nothing lies inside the window.
func (g *ArtGraph) TargetAtDistance(start int64, q TargetQuery, rng Rand) (Node, bool) {
	if !g.HasNode(start) {
		return Node{}, false
	}

	layers := make(map[int][]int64)
	for id, d := range g.DistancesFrom(start) {
		layers[d] = append(layers[d], id)
	}

	for _, d := range q.candidateDistances() {
		layer := layers[d]
		if len(layer) == 0 {
			continue
		}
		// Map iteration order is random; sort so rng alone decides.
		slices.Sort(layer)
		var i int
		if rng != nil {
			i = rng.IntN(len(layer))
		} else {
			i = rand.IntN(len(layer))
		}
		node, _ := g.Node(layer[i])
		return node, true
	}
	return Node{}, false
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
