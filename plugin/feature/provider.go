// Package feature loads the artifacts that take part in the graph and derives
// the per-build features the similarity scorer needs.
package feature

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/hrygo/sixdegrees/plugin/embedding"
	"github.com/hrygo/sixdegrees/store"
)

// ArtifactLister is the read side of the artifact store.
type ArtifactLister interface {
	ListArtifacts(ctx context.Context, find *store.FindArtifact) ([]*store.Artifact, error)
}

// MediumFrequency maps a medium to the number of artifacts using it.
type MediumFrequency map[string]int

// BuildMediumFrequency counts media across artifacts. Artifacts without a
// medium are not counted.
func BuildMediumFrequency(artifacts []*store.Artifact) MediumFrequency {
	freq := make(MediumFrequency)
	for _, a := range artifacts {
		if a.Medium != "" {
			freq[a.Medium]++
		}
	}
	return freq
}

// Config controls which artifacts are included.
type Config struct {
	// Filter is an optional CEL expression; see Filter.
	Filter string
	// AllowAnonymous keeps artifacts that have no maker.
	AllowAnonymous bool
}

// Provider loads the filtered artifact set and its features.
type Provider struct {
	lister         ArtifactLister
	embedder       embedding.Embedder
	filter         *Filter
	allowAnonymous bool
}

// NewProvider creates a Provider. embedder may be nil, in which case only
// embeddings already stored with the artifacts are used.
func NewProvider(lister ArtifactLister, embedder embedding.Embedder, cfg Config) (*Provider, error) {
	p := &Provider{
		lister:         lister,
		embedder:       embedder,
		allowAnonymous: cfg.AllowAnonymous,
	}
	if strings.TrimSpace(cfg.Filter) != "" {
		f, err := CompileFilter(cfg.Filter)
		if err != nil {
			return nil, err
		}
		p.filter = f
	}
	return p, nil
}

// LoadArtifacts returns the included artifacts in store order together with
// their medium frequency table. Embedding failures are logged and leave the
// affected artifacts without a vector.
func (p *Provider) LoadArtifacts(ctx context.Context) ([]*store.Artifact, MediumFrequency, error) {
	list, err := p.lister.ListArtifacts(ctx, &store.FindArtifact{
		RequireTitle: true,
		RequireMaker: !p.allowAnonymous,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("list artifacts: %w", err)
	}

	artifacts := make([]*store.Artifact, 0, len(list))
	for _, a := range list {
		if !p.include(a) {
			continue
		}
		artifacts = append(artifacts, a)
	}

	p.attachEmbeddings(ctx, artifacts)

	return artifacts, BuildMediumFrequency(artifacts), nil
}

func (p *Provider) include(a *store.Artifact) bool {
	if strings.TrimSpace(a.Title) == "" {
		return false
	}
	if !p.allowAnonymous && strings.TrimSpace(a.Maker) == "" {
		return false
	}
	if p.filter == nil {
		return true
	}
	ok, err := p.filter.Match(a)
	if err != nil {
		slog.Debug("artifact filter evaluation failed", "id", a.ID, "filter", p.filter.String(), "error", err)
		return false
	}
	return ok
}

func (p *Provider) attachEmbeddings(ctx context.Context, artifacts []*store.Artifact) {
	if p.embedder == nil {
		return
	}

	// Stored vectors from another embedder live in a different space and
	// are replaced for this build.
	tag := embedding.Tag(p.embedder)
	missing := make([]*store.Artifact, 0, len(artifacts))
	for _, a := range artifacts {
		if len(a.Embedding) == 0 || a.EmbeddingTag != tag {
			missing = append(missing, a)
		}
	}
	if len(missing) == 0 {
		return
	}

	vectors, err := p.embedder.Embed(ctx, missing)
	if err != nil {
		slog.Warn("embedding artifacts failed, text similarity disabled for them",
			"count", len(missing), "error", err)
		return
	}
	if len(vectors) != len(missing) {
		slog.Warn("embedder returned unexpected vector count",
			"expected", len(missing), "got", len(vectors))
		return
	}
	for i, a := range missing {
		a.Embedding, a.EmbeddingTag = vectors[i], tag
	}
}
