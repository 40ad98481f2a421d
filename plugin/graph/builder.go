package graph

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/hrygo/sixdegrees/plugin/cache"
	"github.com/hrygo/sixdegrees/plugin/feature"
	"github.com/hrygo/sixdegrees/plugin/similarity"
	"github.com/hrygo/sixdegrees/store"
)

// CacheKey is the cache key the serialized graph is stored under.
const CacheKey = "sixdegrees:art_graph"

// ArtifactSource supplies the artifacts and medium frequencies for a build.
type ArtifactSource interface {
	LoadArtifacts(ctx context.Context) ([]*store.Artifact, feature.MediumFrequency, error)
}

// Config contains configuration for graph building.
type Config struct {
	// MaxEdgesPerNode bounds every node's degree.
	MaxEdgesPerNode int
	// MinScore discards pairs whose total score is not above it.
	MinScore float64
	// CacheTTL is how long a built graph is served from cache.
	CacheTTL time.Duration
	// ExportPath, when set, receives an indented JSON copy of each fresh build.
	ExportPath string
	// Similarity configures the pair scorer.
	Similarity similarity.Config
}

// DefaultConfig returns default graph configuration.
func DefaultConfig() Config {
	return Config{
		MaxEdgesPerNode: 5,
		MinScore:        0,
		CacheTTL:        6 * time.Hour,
		Similarity: similarity.Config{
			Weights:            similarity.DefaultWeights,
			ArtistMatch:        similarity.ArtistMatchName,
			SecondaryAttribute: similarity.SecondaryDepartment,
		},
	}
}

// Builder builds the similarity graph and memoizes it in the cache.
type Builder struct {
	source ArtifactSource
	cache  cache.CacheService
	config Config

	flight singleflight.Group

	// mu guards the fields below. generation is bumped by Invalidate; a build
	// started under an older generation is never cached.
	mu         sync.Mutex
	generation uint64
	lastBytes  []byte
	lastGraph  *ArtGraph
}

// NewBuilder creates a new Builder.
func NewBuilder(source ArtifactSource, c cache.CacheService, config Config) (*Builder, error) {
	if config.MaxEdgesPerNode <= 0 {
		return nil, fmt.Errorf("max edges per node must be positive, got %d", config.MaxEdgesPerNode)
	}
	if _, err := similarity.NewScorer(config.Similarity, nil); err != nil {
		return nil, err
	}
	return &Builder{
		source: source,
		cache:  c,
		config: config,
	}, nil
}

// Build loads the artifacts and constructs a fresh graph, bypassing the cache.
func (b *Builder) Build(ctx context.Context) (*ArtGraph, error) {
	start := time.Now()

	artifacts, freq, err := b.source.LoadArtifacts(ctx)
	if err != nil {
		return nil, fmt.Errorf("load artifacts: %w", err)
	}

	scorer, err := similarity.NewScorer(b.config.Similarity, freq)
	if err != nil {
		return nil, err
	}

	nodes := make([]Node, 0, len(artifacts))
	ids := make([]int64, 0, len(artifacts))
	for _, a := range artifacts {
		nodes = append(nodes, Node{
			ID:             a.ID,
			Title:          a.Title,
			Maker:          a.Maker,
			ImageURL:       NormalizeImageURL(a.ImageURL),
			Date:           a.Date,
			Medium:         a.Medium,
			Classification: a.Classification,
		})
		ids = append(ids, a.ID)
	}

	edges := b.buildEdges(artifacts, ids, scorer)

	g := NewArtGraph(nodes, edges)
	g.BuildMs = time.Since(start).Milliseconds()

	slog.Info("art graph built",
		"nodes", g.Stats.NodeCount,
		"edges", g.Stats.EdgeCount,
		"components", g.Stats.ComponentCount,
		"build_ms", g.BuildMs)
	return g, nil
}

// buildEdges scores every pair once, keeps the strongest MaxEdgesPerNode
// candidates per node and then selects a degree-bounded edge set.
func (b *Builder) buildEdges(artifacts []*store.Artifact, ids []int64, scorer *similarity.Scorer) []Edge {
	k := b.config.MaxEdgesPerNode
	keep := make([]*topK, len(artifacts))
	for i := range keep {
		keep[i] = newTopK(k)
	}

	for i := 0; i < len(artifacts); i++ {
		for j := i + 1; j < len(artifacts); j++ {
			if ids[i] == ids[j] {
				continue
			}
			r := scorer.Score(artifacts[i], artifacts[j])
			if r.Total <= b.config.MinScore {
				continue
			}
			c := candidate{a: i, b: j, weight: r.Total, relation: r.Dominant}
			c.otherID = ids[j]
			keep[i].offer(c)
			c.otherID = ids[i]
			keep[j].offer(c)
		}
	}

	selected := selectEdges(keep, ids, k)
	edges := make([]Edge, 0, len(selected))
	for _, c := range selected {
		source, target := ids[c.a], ids[c.b]
		if source > target {
			source, target = target, source
		}
		edges = append(edges, Edge{
			Source:   source,
			Target:   target,
			Weight:   c.weight,
			Relation: c.relation,
		})
	}
	return edges
}

// GetGraph returns the cached graph, building and caching it on a miss.
// Concurrent misses share one build. When the artifacts cannot be loaded an
// empty graph is returned and nothing is cached.
func (b *Builder) GetGraph(ctx context.Context) (*ArtGraph, error) {
	if g, ok := b.fromCache(ctx); ok {
		cacheLookups.WithLabelValues("hit").Inc()
		return g, nil
	}
	cacheLookups.WithLabelValues("miss").Inc()

	v, err, _ := b.flight.Do(CacheKey, func() (any, error) {
		// A build that finished while we waited has already filled the cache.
		if g, ok := b.fromCache(ctx); ok {
			return g, nil
		}
		return b.rebuild(ctx, b.currentGeneration()), nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*ArtGraph), nil
}

func (b *Builder) currentGeneration() uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.generation
}

func (b *Builder) rebuild(ctx context.Context, generation uint64) *ArtGraph {
	start := time.Now()
	g, err := b.Build(ctx)
	buildDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		buildTotal.WithLabelValues("error").Inc()
		slog.Error("failed to build art graph, serving empty graph", "error", err)
		return NewArtGraph(nil, nil)
	}
	buildTotal.WithLabelValues("success").Inc()
	graphNodes.Set(float64(g.Stats.NodeCount))
	graphEdges.Set(float64(g.Stats.EdgeCount))

	data, err := json.Marshal(g)
	if err != nil {
		slog.Error("failed to encode art graph", "error", err)
		return g
	}
	if !b.store(ctx, generation, data, g) {
		slog.Info("art graph invalidated during build, not caching", "nodes", g.Stats.NodeCount)
		return g
	}

	if b.config.ExportPath != "" {
		if err := ExportFile(b.config.ExportPath, g); err != nil {
			slog.Warn("failed to export art graph", "path", b.config.ExportPath, "error", err)
		}
	}
	return g
}

func (b *Builder) fromCache(ctx context.Context) (*ArtGraph, bool) {
	data, ok := b.cache.Get(ctx, CacheKey)
	if !ok {
		return nil, false
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.lastGraph != nil && bytes.Equal(b.lastBytes, data) {
		return b.lastGraph, true
	}

	g := &ArtGraph{}
	if err := json.Unmarshal(data, g); err != nil {
		slog.Warn("discarding undecodable cached art graph", "error", err)
		return nil, false
	}
	if g.Nodes == nil {
		g.Nodes = []Node{}
	}
	if g.Edges == nil {
		g.Edges = []Edge{}
	}
	b.lastBytes, b.lastGraph = data, g
	return g, true
}

// store caches a build unless Invalidate ran after it started. It reports
// false only for a stale build; a failed cache write is logged and ignored.
func (b *Builder) store(ctx context.Context, generation uint64, data []byte, g *ArtGraph) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.generation != generation {
		return false
	}
	if err := b.cache.Set(ctx, CacheKey, data, b.config.CacheTTL); err != nil {
		slog.Warn("failed to cache art graph", "error", err)
		return true
	}
	b.lastBytes, b.lastGraph = data, g
	return true
}

// Invalidate drops the cached graph so the next GetGraph rebuilds it. A build
// already in flight still answers its own callers but is not cached, and later
// callers start a new build.
func (b *Builder) Invalidate(ctx context.Context) error {
	b.mu.Lock()
	b.generation++
	b.lastBytes, b.lastGraph = nil, nil
	err := b.cache.Invalidate(ctx, CacheKey)
	b.mu.Unlock()
	// Forget only once the cached copy is gone, so a fresh flight cannot
	// pick the old snapshot back up.
	b.flight.Forget(CacheKey)

	if err != nil {
		return fmt.Errorf("invalidate art graph: %w", err)
	}
	return nil
}

// WriteJSON writes the graph as indented JSON.
func WriteJSON(w io.Writer, g *ArtGraph) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(g)
}

// ExportFile writes the graph to path atomically via a temporary file.
func ExportFile(path string, g *ArtGraph) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create export directory: %w", err)
		}
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".art_graph-*.json")
	if err != nil {
		return fmt.Errorf("create export file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := WriteJSON(tmp, g); err != nil {
		tmp.Close()
		return fmt.Errorf("write export file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close export file: %w", err)
	}
	return os.Rename(tmp.Name(), path)
}
