// Package embedding supplies the numeric text feature used by the text
// similarity factor. The default SeededEmbedder is a deterministic
// placeholder; OpenAIEmbedder calls an OpenAI-compatible embeddings endpoint.
package embedding

import (
	"context"
	"fmt"
	"strings"

	"github.com/hrygo/sixdegrees/internal/profile"
	"github.com/hrygo/sixdegrees/store"
)

// Embedder produces one vector per artifact, in input order.
type Embedder interface {
	Embed(ctx context.Context, artifacts []*store.Artifact) ([][]float32, error)

	// Dimensions returns the vector dimension.
	Dimensions() int

	// Model names the model behind the vectors.
	Model() string
}

// Tag identifies the vector space an embedder produces. Vectors stored under
// a different tag are not comparable and must be recomputed.
func Tag(e Embedder) string {
	return fmt.Sprintf("%s/%d", e.Model(), e.Dimensions())
}

const (
	ProviderSeeded = "seeded"
	ProviderOpenAI = "openai"
)

// NewFromProfile creates the embedder selected by the profile.
func NewFromProfile(p *profile.Profile) (Embedder, error) {
	switch p.EmbeddingProvider {
	case "", ProviderSeeded:
		return NewSeededEmbedder(p.EmbeddingDimensions), nil
	case ProviderOpenAI:
		if !p.IsOpenAIEmbeddingEnabled() {
			return nil, fmt.Errorf("embedding provider %q requires an API key", p.EmbeddingProvider)
		}
		return NewOpenAIEmbedder(OpenAIConfig{
			APIKey:     p.OpenAIAPIKey,
			BaseURL:    p.OpenAIBaseURL,
			Model:      p.EmbeddingModel,
			Dimensions: p.EmbeddingDimensions,
		}), nil
	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", p.EmbeddingProvider)
	}
}

// ArtifactText is the text embedded for an artifact: its non-empty title,
// maker, classification and medium joined by " / ".
func ArtifactText(a *store.Artifact) string {
	parts := make([]string, 0, 4)
	for _, s := range []string{a.Title, a.Maker, a.Classification, a.Medium} {
		if s = strings.TrimSpace(s); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, " / ")
}
