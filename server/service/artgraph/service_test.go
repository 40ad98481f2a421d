package artgraph

import (
	"context"
	"errors"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hrygo/sixdegrees/plugin/graph"
	"github.com/hrygo/sixdegrees/plugin/similarity"
)

type fakeProvider struct {
	graph       *graph.ArtGraph
	err         error
	invalidated int
}

func (f *fakeProvider) GetGraph(context.Context) (*graph.ArtGraph, error) {
	return f.graph, f.err
}

func (f *fakeProvider) Invalidate(context.Context) error {
	f.invalidated++
	return nil
}

// chainGraph links 1-2-3-4 and leaves 5 isolated.
func chainGraph() *graph.ArtGraph {
	nodes := []graph.Node{
		{ID: 1, Title: "One", Maker: "A"},
		{ID: 2, Title: "Two", Maker: "B"},
		{ID: 3, Title: "Three", Maker: "C"},
		{ID: 4, Title: "Four", Maker: "D"},
		{ID: 5, Title: "Five", Maker: "E"},
	}
	edges := []graph.Edge{
		{Source: 1, Target: 2, Weight: 0.4, Relation: similarity.RelationArtist},
		{Source: 2, Target: 3, Weight: 0.2, Relation: similarity.RelationStyle},
		{Source: 3, Target: 4, Weight: 0.1, Relation: similarity.RelationPeriod},
	}
	return graph.NewArtGraph(nodes, edges)
}

func newTestService(p GraphProvider) *Service {
	return NewService(p, rand.New(rand.NewPCG(1, 2)))
}

func TestService_GetDistance(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(&fakeProvider{graph: chainGraph()})

	tests := []struct {
		name     string
		from, to int64
		hasPath  bool
		distance int
	}{
		{name: "self", from: 2, to: 2, hasPath: true, distance: 0},
		{name: "neighbors", from: 1, to: 2, hasPath: true, distance: 1},
		{name: "chain", from: 1, to: 4, hasPath: true, distance: 3},
		{name: "isolated", from: 1, to: 5, hasPath: false},
		{name: "unknown", from: 1, to: 99, hasPath: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := svc.GetDistance(ctx, tt.from, tt.to, false)
			require.NoError(t, err)
			assert.Equal(t, tt.hasPath, res.HasPath)
			if !tt.hasPath {
				assert.Nil(t, res.Distance)
				return
			}
			require.NotNil(t, res.Distance)
			assert.Equal(t, tt.distance, *res.Distance)
			assert.Nil(t, res.Path)
		})
	}
}

func TestService_GetDistanceWithPath(t *testing.T) {
	svc := newTestService(&fakeProvider{graph: chainGraph()})

	res, err := svc.GetDistance(context.Background(), 4, 1, true)
	require.NoError(t, err)
	require.True(t, res.HasPath)
	assert.Equal(t, 3, *res.Distance)
	assert.Equal(t, []int64{4, 3, 2, 1}, res.Path)
}

func TestService_GetTargetArtwork(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(&fakeProvider{graph: chainGraph()})

	node, err := svc.GetTargetArtwork(ctx, 1, graph.TargetQuery{Preferred: 2, Min: 1, Max: 3})
	require.NoError(t, err)
	assert.Equal(t, int64(3), node.ID)

	_, err = svc.GetTargetArtwork(ctx, 5, graph.NewTargetQuery(6))
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.GetTargetArtwork(ctx, 99, graph.NewTargetQuery(6))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestService_GetArtwork(t *testing.T) {
	svc := NewService(&fakeProvider{graph: chainGraph()}, nil)

	node, err := svc.GetArtwork(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, "Three", node.Title)

	_, err = svc.GetArtwork(context.Background(), 42)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestService_GetNeighbors(t *testing.T) {
	svc := NewService(&fakeProvider{graph: chainGraph()}, nil)
	ctx := context.Background()

	nodes, err := svc.GetNeighbors(ctx, 2)
	require.NoError(t, err)
	ids := make([]int64, 0, len(nodes))
	for _, n := range nodes {
		ids = append(ids, n.ID)
	}
	assert.ElementsMatch(t, []int64{1, 3}, ids)

	nodes, err = svc.GetNeighbors(ctx, 5)
	require.NoError(t, err)
	assert.Empty(t, nodes)

	_, err = svc.GetNeighbors(ctx, 42)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestService_RandomArtworks(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(&fakeProvider{graph: chainGraph()})

	tests := []struct {
		count    int
		expected int
	}{
		{count: 0, expected: DefaultRandomCount},
		{count: 3, expected: 3},
		{count: 50, expected: 5},
	}
	for _, tt := range tests {
		nodes, err := svc.RandomArtworks(ctx, tt.count)
		require.NoError(t, err)
		assert.Len(t, nodes, tt.expected)

		seen := make(map[int64]bool)
		for _, n := range nodes {
			assert.False(t, seen[n.ID], "duplicate node %d", n.ID)
			seen[n.ID] = true
		}
	}

	empty := NewService(&fakeProvider{graph: graph.NewArtGraph(nil, nil)}, nil)
	nodes, err := empty.RandomArtworks(ctx, 2)
	require.NoError(t, err)
	assert.Empty(t, nodes)
}

func TestService_ProviderError(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("boom")
	svc := NewService(&fakeProvider{err: boom}, nil)

	_, err := svc.GetDistance(ctx, 1, 2, false)
	assert.ErrorIs(t, err, boom)
	_, err = svc.GetTargetArtwork(ctx, 1, graph.NewTargetQuery(6))
	assert.ErrorIs(t, err, boom)
	_, err = svc.RandomArtworks(ctx, 1)
	assert.ErrorIs(t, err, boom)
}

func TestService_Invalidate(t *testing.T) {
	p := &fakeProvider{graph: chainGraph()}
	require.NoError(t, NewService(p, nil).Invalidate(context.Background()))
	assert.Equal(t, 1, p.invalidated)
}
