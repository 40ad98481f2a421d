package embedding

import (
	"context"
	"errors"
	"fmt"

	"github.com/sashabaranov/go-openai"

	"github.com/hrygo/sixdegrees/store"
)

// DefaultBatchSize bounds how many texts go into one embeddings request.
const DefaultBatchSize = 64

// OpenAIConfig represents OpenAI-compatible embedding configuration.
type OpenAIConfig struct {
	APIKey     string
	BaseURL    string
	Model      string // text-embedding-3-small
	Dimensions int
	BatchSize  int
}

// OpenAIEmbedder embeds ArtifactText through an OpenAI-compatible API.
type OpenAIEmbedder struct {
	client     *openai.Client
	model      string
	dimensions int
	batchSize  int
}

// NewOpenAIEmbedder creates a new OpenAIEmbedder.
func NewOpenAIEmbedder(cfg OpenAIConfig) *OpenAIEmbedder {
	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultBatchSize
	}

	return &OpenAIEmbedder{
		client:     openai.NewClientWithConfig(clientConfig),
		model:      cfg.Model,
		dimensions: cfg.Dimensions,
		batchSize:  cfg.BatchSize,
	}
}

// Embed requests vectors in batches and returns them in artifact order.
func (e *OpenAIEmbedder) Embed(ctx context.Context, artifacts []*store.Artifact) ([][]float32, error) {
	vectors := make([][]float32, 0, len(artifacts))
	for start := 0; start < len(artifacts); start += e.batchSize {
		end := min(start+e.batchSize, len(artifacts))

		texts := make([]string, 0, end-start)
		for _, a := range artifacts[start:end] {
			texts = append(texts, ArtifactText(a))
		}

		batch, err := e.embedBatch(ctx, texts)
		if err != nil {
			return nil, err
		}
		vectors = append(vectors, batch...)
	}
	return vectors, nil
}

func (e *OpenAIEmbedder) embedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	req := openai.EmbeddingRequest{
		Input:      texts,
		Model:      openai.EmbeddingModel(e.model),
		Dimensions: e.dimensions,
	}

	resp, err := e.client.CreateEmbeddings(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("create embeddings failed: %w", err)
	}
	if len(resp.Data) != len(texts) {
		return nil, errors.New("embedding response size does not match request")
	}

	// Data is ordered by index, which may differ from response order.
	vectors := make([][]float32, len(texts))
	for _, data := range resp.Data {
		if data.Index < 0 || data.Index >= len(texts) {
			return nil, fmt.Errorf("embedding index %d out of range", data.Index)
		}
		vectors[data.Index] = data.Embedding
	}
	return vectors, nil
}

func (e *OpenAIEmbedder) Dimensions() int {
	return e.dimensions
}

func (e *OpenAIEmbedder) Model() string {
	return e.model
}

var _ Embedder = (*OpenAIEmbedder)(nil)
