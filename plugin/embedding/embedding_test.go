package embedding

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hrygo/sixdegrees/internal/profile"
	"github.com/hrygo/sixdegrees/store"
)

func TestSeededEmbedder_Deterministic(t *testing.T) {
	ctx := context.Background()
	artifacts := []*store.Artifact{{ID: 1}, {ID: 2}, {ID: 299843}}

	e := NewSeededEmbedder(0)
	assert.Equal(t, DefaultSeededDimensions, e.Dimensions())

	first, err := e.Embed(ctx, artifacts)
	require.NoError(t, err)
	second, err := NewSeededEmbedder(5).Embed(ctx, artifacts)
	require.NoError(t, err)

	require.Len(t, first, 3)
	assert.Equal(t, first, second, "same IDs yield the same vectors across instances")
	assert.NotEqual(t, first[0], first[1])

	for _, v := range first {
		require.Len(t, v, DefaultSeededDimensions)
		for _, x := range v {
			assert.GreaterOrEqual(t, x, float32(0))
			assert.Less(t, x, float32(1))
		}
	}
}

func TestSeededEmbedder_Dimensions(t *testing.T) {
	vectors, err := NewSeededEmbedder(16).Embed(context.Background(), []*store.Artifact{{ID: 7}})
	require.NoError(t, err)
	assert.Len(t, vectors[0], 16)
}

func TestTag(t *testing.T) {
	assert.Equal(t, "seeded/5", Tag(NewSeededEmbedder(0)))
	assert.Equal(t, "seeded/16", Tag(NewSeededEmbedder(16)))
	assert.Equal(t, "text-embedding-3-small/8", Tag(NewOpenAIEmbedder(OpenAIConfig{
		APIKey:     "k",
		Model:      "text-embedding-3-small",
		Dimensions: 8,
	})))
}

func TestArtifactText(t *testing.T) {
	tests := []struct {
		name     string
		artifact *store.Artifact
		expected string
	}{
		{
			name:     "all fields",
			artifact: &store.Artifact{Title: "Haystacks", Maker: "Claude Monet", Classification: "Paintings", Medium: "Oil on canvas"},
			expected: "Haystacks / Claude Monet / Paintings / Oil on canvas",
		},
		{
			name:     "missing maker",
			artifact: &store.Artifact{Title: "Bowl", Classification: "Vessels"},
			expected: "Bowl / Vessels",
		},
		{
			name:     "whitespace only",
			artifact: &store.Artifact{Title: "  Print ", Maker: "   "},
			expected: "Print",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ArtifactText(tt.artifact))
		})
	}
}

func newEmbeddingServer(t *testing.T, calls *atomic.Int32) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		assert.Equal(t, "/embeddings", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req struct {
			Input []string `json:"input"`
			Model string   `json:"model"`
		}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		// Answer in reverse order so index handling is exercised.
		type datum struct {
			Object    string    `json:"object"`
			Embedding []float32 `json:"embedding"`
			Index     int       `json:"index"`
		}
		data := make([]datum, 0, len(req.Input))
		for i := len(req.Input) - 1; i >= 0; i-- {
			data = append(data, datum{Object: "embedding", Embedding: []float32{float32(len(req.Input[i])), 1}, Index: i})
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"object": "list",
			"data":   data,
			"model":  req.Model,
		})
	}))
}

func TestOpenAIEmbedder_Embed(t *testing.T) {
	var calls atomic.Int32
	srv := newEmbeddingServer(t, &calls)
	defer srv.Close()

	e := NewOpenAIEmbedder(OpenAIConfig{
		APIKey:     "test-key",
		BaseURL:    srv.URL,
		Model:      "text-embedding-3-small",
		Dimensions: 2,
		BatchSize:  2,
	})
	assert.Equal(t, 2, e.Dimensions())

	artifacts := []*store.Artifact{
		{ID: 1, Title: "A"},
		{ID: 2, Title: "BB"},
		{ID: 3, Title: "CCC"},
	}
	vectors, err := e.Embed(context.Background(), artifacts)
	require.NoError(t, err)

	assert.Equal(t, int32(2), calls.Load(), "three artifacts in batches of two")
	require.Len(t, vectors, 3)
	assert.Equal(t, []float32{1, 1}, vectors[0])
	assert.Equal(t, []float32{2, 1}, vectors[1])
	assert.Equal(t, []float32{3, 1}, vectors[2])
}

func TestOpenAIEmbedder_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"message":"unavailable"}}`, http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	e := NewOpenAIEmbedder(OpenAIConfig{APIKey: "test-key", BaseURL: srv.URL, Model: "m"})
	_, err := e.Embed(context.Background(), []*store.Artifact{{ID: 1, Title: "A"}})
	assert.Error(t, err)
}

func TestNewFromProfile(t *testing.T) {
	tests := []struct {
		name        string
		profile     *profile.Profile
		expectType  Embedder
		expectError bool
	}{
		{
			name:       "default seeded",
			profile:    &profile.Profile{EmbeddingDimensions: 5},
			expectType: &SeededEmbedder{},
		},
		{
			name:       "openai with key",
			profile:    &profile.Profile{EmbeddingProvider: "openai", OpenAIAPIKey: "k", EmbeddingModel: "m", EmbeddingDimensions: 8},
			expectType: &OpenAIEmbedder{},
		},
		{
			name:        "openai without key",
			profile:     &profile.Profile{EmbeddingProvider: "openai"},
			expectError: true,
		},
		{
			name:        "unsupported provider",
			profile:     &profile.Profile{EmbeddingProvider: "ollama"},
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, err := NewFromProfile(tt.profile)
			if tt.expectError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.IsType(t, tt.expectType, e)
		})
	}
}
