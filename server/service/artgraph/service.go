package artgraph

import (
	"context"
	"errors"
	"math/rand/v2"
	"sync"

	"github.com/hrygo/sixdegrees/plugin/graph"
	"github.com/hrygo/sixdegrees/server/internal/observability"
)

// DefaultRandomCount is how many artworks RandomArtworks returns when asked for none.
const DefaultRandomCount = 2

// ErrNotFound is returned when an artwork or a target at the requested distance does not exist.
var ErrNotFound = errors.New("artwork not found")

// GraphProvider supplies the current graph snapshot. *graph.Builder implements it.
type GraphProvider interface {
	GetGraph(ctx context.Context) (*graph.ArtGraph, error)
	Invalidate(ctx context.Context) error
}

// DistanceResult is the answer to a degrees-of-separation query.
// Distance is nil when no path exists.
type DistanceResult struct {
	Distance *int    `json:"distance"`
	HasPath  bool    `json:"has_path"`
	Path     []int64 `json:"path,omitempty"`
}

// Service answers graph queries against the cached snapshot.
type Service struct {
	graphs GraphProvider

	mu  sync.Mutex
	rng *rand.Rand
}

// NewService creates a Service. A nil rng uses the global source.
func NewService(graphs GraphProvider, rng *rand.Rand) *Service {
	return &Service{graphs: graphs, rng: rng}
}

// GetGraph returns the current graph snapshot.
func (s *Service) GetGraph(ctx context.Context) (*graph.ArtGraph, error) {
	return s.graphs.GetGraph(ctx)
}

// GetArtwork returns the node for id.
func (s *Service) GetArtwork(ctx context.Context, id int64) (*graph.Node, error) {
	g, err := s.graphs.GetGraph(ctx)
	if err != nil {
		return nil, err
	}
	node, ok := g.Node(id)
	if !ok {
		return nil, ErrNotFound
	}
	return &node, nil
}

// GetNeighbors returns the artworks one hop away from id.
func (s *Service) GetNeighbors(ctx context.Context, id int64) ([]graph.Node, error) {
	g, err := s.graphs.GetGraph(ctx)
	if err != nil {
		return nil, err
	}
	if !g.HasNode(id) {
		return nil, ErrNotFound
	}
	ids := g.Neighbors(id)
	nodes := make([]graph.Node, 0, len(ids))
	for _, nid := range ids {
		if node, ok := g.Node(nid); ok {
			nodes = append(nodes, node)
		}
	}
	return nodes, nil
}

// GetDistance returns the shortest hop count between two artworks. When
// withPath is set the node IDs along one shortest path are included.
func (s *Service) GetDistance(ctx context.Context, from, to int64, withPath bool) (*DistanceResult, error) {
	g, err := s.graphs.GetGraph(ctx)
	if err != nil {
		observability.RecordQuery("distance", observability.OutcomeError)
		return nil, err
	}

	result := &DistanceResult{}
	if withPath {
		path, ok := g.ShortestPath(from, to)
		if ok {
			d := len(path) - 1
			result.Distance, result.HasPath, result.Path = &d, true, path
		}
	} else if d, ok := g.Distance(from, to); ok {
		result.Distance, result.HasPath = &d, true
	}

	if result.HasPath {
		observability.RecordQuery("distance", observability.OutcomeOK)
	} else {
		observability.RecordQuery("distance", observability.OutcomeNoPath)
	}
	return result, nil
}

// GetTargetArtwork picks an artwork whose distance from start best matches q.
func (s *Service) GetTargetArtwork(ctx context.Context, start int64, q graph.TargetQuery) (*graph.Node, error) {
	g, err := s.graphs.GetGraph(ctx)
	if err != nil {
		observability.RecordQuery("target", observability.OutcomeError)
		return nil, err
	}

	s.mu.Lock()
	node, ok := g.TargetAtDistance(start, q, s.source())
	s.mu.Unlock()
	if !ok {
		observability.RecordQuery("target", observability.OutcomeNotFound)
		return nil, ErrNotFound
	}
	observability.RecordQuery("target", observability.OutcomeOK)
	return &node, nil
}

// RandomArtworks returns up to count distinct artworks in random order.
func (s *Service) RandomArtworks(ctx context.Context, count int) ([]graph.Node, error) {
	if count <= 0 {
		count = DefaultRandomCount
	}
	g, err := s.graphs.GetGraph(ctx)
	if err != nil {
		return nil, err
	}
	count = min(count, len(g.Nodes))

	s.mu.Lock()
	var perm []int
	if s.rng != nil {
		perm = s.rng.Perm(len(g.Nodes))
	} else {
		perm = rand.Perm(len(g.Nodes))
	}
	s.mu.Unlock()

	nodes := make([]graph.Node, 0, count)
	for _, i := range perm[:count] {
		nodes = append(nodes, g.Nodes[i])
	}
	return nodes, nil
}

// Invalidate drops the cached graph so the next query rebuilds it.
func (s *Service) Invalidate(ctx context.Context) error {
	return s.graphs.Invalidate(ctx)
}

// source returns the injected rng as a graph.Rand, or nil for the global source.
// Callers hold s.mu.
func (s *Service) source() graph.Rand {
	if s.rng == nil {
		return nil
	}
	return s.rng
}
