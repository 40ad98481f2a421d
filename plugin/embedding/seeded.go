package embedding

import (
	"context"
	"math/rand/v2"

	"github.com/hrygo/sixdegrees/store"
)

// DefaultSeededDimensions is the vector size used when none is configured.
const DefaultSeededDimensions = 5

// SeededEmbedder derives a pseudo-random vector from each artifact ID.
// The same ID always yields the same vector, so graph rebuilds are reproducible.
// The values carry no meaning about the artwork.
type SeededEmbedder struct {
	dimensions int
}

// NewSeededEmbedder creates a SeededEmbedder. Non-positive dimensions fall back to the default.
func NewSeededEmbedder(dimensions int) *SeededEmbedder {
	if dimensions <= 0 {
		dimensions = DefaultSeededDimensions
	}
	return &SeededEmbedder{dimensions: dimensions}
}

// Embed returns one vector of values in [0, 1) per artifact.
func (e *SeededEmbedder) Embed(_ context.Context, artifacts []*store.Artifact) ([][]float32, error) {
	vectors := make([][]float32, len(artifacts))
	for i, a := range artifacts {
		vectors[i] = e.vector(a.ID)
	}
	return vectors, nil
}

func (e *SeededEmbedder) vector(id int64) []float32 {
	r := rand.New(rand.NewPCG(uint64(id), 0))
	v := make([]float32, e.dimensions)
	for i := range v {
		v[i] = r.Float32()
	}
	return v
}

func (e *SeededEmbedder) Dimensions() int {
	return e.dimensions
}

func (e *SeededEmbedder) Model() string {
	return ProviderSeeded
}

var _ Embedder = (*SeededEmbedder)(nil)
