package graph

import (
	"container/heap"
	"slices"

	"github.com/hrygo/sixdegrees/plugin/similarity"
)

// candidate is a scored pair kept for one endpoint.
type candidate struct {
	a, b     int // artifact positions, a < b
	otherID  int64
	weight   float64
	relation similarity.Relation
}

// stronger orders candidates by weight, then by lower neighbour ID so that
// equal scores resolve the same way on every build.
func stronger(x, y candidate) bool {
	if x.weight != y.weight {
		return x.weight > y.weight
	}
	return x.otherID < y.otherID
}

// weakestFirst is a min-heap with the weakest candidate at the root.
type weakestFirst []candidate

func (h weakestFirst) Len() int           { return len(h) }
func (h weakestFirst) Less(i, j int) bool { return stronger(h[j], h[i]) }
func (h weakestFirst) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }

func (h *weakestFirst) Push(x any) { *h = append(*h, x.(candidate)) }

func (h *weakestFirst) Pop() any {
	old := *h
	n := len(old)
	c := old[n-1]
	*h = old[:n-1]
	return c
}

// topK keeps the k strongest candidates seen so far.
type topK struct {
	k int
	h weakestFirst
}

func newTopK(k int) *topK {
	return &topK{k: k, h: make(weakestFirst, 0, k)}
}

// offer keeps c if there is room or it beats the current weakest.
func (t *topK) offer(c candidate) {
	if t.k <= 0 {
		return
	}
	if len(t.h) < t.k {
		heap.Push(&t.h, c)
		return
	}
	if stronger(c, t.h[0]) {
		t.h[0] = c
		heap.Fix(&t.h, 0)
	}
}

func (t *topK) items() []candidate {
	return t.h
}

// selectEdges merges the per-node survivors and accepts pairs strongest first
// while both endpoints still have spare degree, so no node exceeds k edges.
func selectEdges(keep []*topK, ids []int64, k int) []candidate {
	type pair struct{ a, b int }
	seen := make(map[pair]bool)
	var merged []candidate
	for _, t := range keep {
		for _, c := range t.items() {
			p := pair{c.a, c.b}
			if seen[p] {
				continue
			}
			seen[p] = true
			merged = append(merged, c)
		}
	}

	slices.SortFunc(merged, func(x, y candidate) int {
		switch {
		case x.weight > y.weight:
			return -1
		case x.weight < y.weight:
			return 1
		case ids[x.a] != ids[y.a]:
			if ids[x.a] < ids[y.a] {
				return -1
			}
			return 1
		case ids[x.b] < ids[y.b]:
			return -1
		case ids[x.b] > ids[y.b]:
			return 1
		}
		return 0
	})

	degree := make([]int, len(ids))
	accepted := merged[:0]
	for _, c := range merged {
		if degree[c.a] >= k || degree[c.b] >= k {
			continue
		}
		degree[c.a]++
		degree[c.b]++
		accepted = append(accepted, c)
	}
	return accepted
}
