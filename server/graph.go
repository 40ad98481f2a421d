package server

import (
	"github.com/pkg/errors"

	"github.com/hrygo/sixdegrees/internal/profile"
	"github.com/hrygo/sixdegrees/plugin/cache"
	"github.com/hrygo/sixdegrees/plugin/embedding"
	"github.com/hrygo/sixdegrees/plugin/feature"
	"github.com/hrygo/sixdegrees/plugin/graph"
	"github.com/hrygo/sixdegrees/store"
)

// GraphConfigFromProfile maps the profile onto the graph builder configuration.
func GraphConfigFromProfile(p *profile.Profile) graph.Config {
	cfg := graph.DefaultConfig()
	if p.MaxEdgesPerNode > 0 {
		cfg.MaxEdgesPerNode = p.MaxEdgesPerNode
	}
	if p.CacheTTL > 0 {
		cfg.CacheTTL = p.CacheTTL
	}
	cfg.MinScore = p.MinScore
	cfg.ExportPath = p.ExportPath
	if p.ArtistMatch != "" {
		cfg.Similarity.ArtistMatch = p.ArtistMatch
	}
	if p.SecondaryAttribute != "" {
		cfg.Similarity.SecondaryAttribute = p.SecondaryAttribute
	}
	return cfg
}

// NewGraphBuilder wires the feature provider, embedder and scorer configuration
// selected by the profile into a graph builder backed by c.
func NewGraphBuilder(p *profile.Profile, st *store.Store, c cache.CacheService) (*graph.Builder, error) {
	embedder, err := embedding.NewFromProfile(p)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create embedder")
	}
	provider, err := feature.NewProvider(st, embedder, feature.Config{
		Filter:         p.ArtifactFilter,
		AllowAnonymous: p.AllowAnonymous,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to create feature provider")
	}
	builder, err := graph.NewBuilder(provider, c, GraphConfigFromProfile(p))
	if err != nil {
		return nil, errors.Wrap(err, "failed to create graph builder")
	}
	return builder, nil
}
