// Package embedding backfills stored artifact embeddings so graph builds do
// not call the embedding provider for artifacts it has already seen.
package embedding

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/hrygo/sixdegrees/plugin/embedding"
	"github.com/hrygo/sixdegrees/store"
)

// ArtifactStore is the subset of the store used by the runner.
type ArtifactStore interface {
	ListArtifacts(ctx context.Context, find *store.FindArtifact) ([]*store.Artifact, error)
	UpsertArtifact(ctx context.Context, upsert *store.Artifact) (*store.Artifact, error)
}

type Runner struct {
	store     ArtifactStore
	embedder  embedding.Embedder
	interval  time.Duration
	batchSize int
}

// NewRunner creates an embedding backfill runner. Only drivers that persist
// embeddings (postgres) should run it.
func NewRunner(store ArtifactStore, embedder embedding.Embedder) *Runner {
	return &Runner{
		store:     store,
		embedder:  embedder,
		interval:  2 * time.Minute,
		batchSize: 32,
	}
}

// Run starts the background task.
func (r *Runner) Run(ctx context.Context) {
	// Process once on startup
	r.processMissing(ctx)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			r.processMissing(ctx)
		case <-ctx.Done():
			slog.Info("embedding runner stopped")
			return
		}
	}
}

// RunOnce processes artifacts once and returns how many embeddings were stored.
func (r *Runner) RunOnce(ctx context.Context) int {
	return r.processMissing(ctx)
}

func (r *Runner) processMissing(ctx context.Context) int {
	limit := r.batchSize * 20 // Fetch more, embed in small batches
	artifacts, err := r.store.ListArtifacts(ctx, &store.FindArtifact{
		MissingEmbedding: true,
		EmbeddingTag:     embedding.Tag(r.embedder),
		Limit:            &limit,
	})
	if err != nil {
		slog.Error("failed to find artifacts without embedding", "error", err)
		return 0
	}
	if len(artifacts) == 0 {
		return 0
	}

	slog.Info("processing artifacts for embedding", "count", len(artifacts))

	stored := 0
	for i := 0; i < len(artifacts); i += r.batchSize {
		select {
		case <-ctx.Done():
			slog.Info("embedding processing cancelled", "processed", i, "total", len(artifacts))
			return stored
		default:
		}

		end := min(i+r.batchSize, len(artifacts))
		n, err := r.processBatch(ctx, artifacts[i:end])
		stored += n
		if err != nil {
			slog.Error("failed to process batch", "error", err)
			continue
		}
		slog.Debug("batch processed", "count", end-i, "progress", fmt.Sprintf("%d/%d", end, len(artifacts)))
	}
	return stored
}

func (r *Runner) processBatch(ctx context.Context, batch []*store.Artifact) (int, error) {
	vectors, err := r.embedder.Embed(ctx, batch)
	if err != nil {
		return 0, err
	}
	if len(vectors) != len(batch) {
		return 0, fmt.Errorf("embedder returned %d vectors for %d artifacts", len(vectors), len(batch))
	}

	tag := embedding.Tag(r.embedder)
	stored := 0
	for i, a := range batch {
		a.Embedding, a.EmbeddingTag = vectors[i], tag
		if _, err := r.store.UpsertArtifact(ctx, a); err != nil {
			slog.Error("failed to upsert embedding", "artifactID", a.ID, "error", err)
			continue
		}
		stored++
	}
	return stored, nil
}
