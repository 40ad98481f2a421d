// Package warmup builds the graph when the server starts so the first
// request does not pay for it, and optionally refreshes it on a schedule.
package warmup

import (
	"context"
	"log/slog"
	"time"

	"github.com/hrygo/sixdegrees/plugin/graph"
)

// GraphBuilder is implemented by *graph.Builder.
type GraphBuilder interface {
	GetGraph(ctx context.Context) (*graph.ArtGraph, error)
	Invalidate(ctx context.Context) error
}

type Runner struct {
	builder  GraphBuilder
	interval time.Duration
}

// NewRunner creates a warm-up runner. An interval of zero warms once at startup only.
func NewRunner(builder GraphBuilder, interval time.Duration) *Runner {
	return &Runner{builder: builder, interval: interval}
}

// Run warms the graph, then refreshes it every interval until ctx is done.
func (r *Runner) Run(ctx context.Context) {
	r.RunOnce(ctx)
	if r.interval <= 0 {
		return
	}

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			r.refresh(ctx)
		case <-ctx.Done():
			slog.Info("warmup runner stopped")
			return
		}
	}
}

// RunOnce loads the graph through the cache, building it on a miss.
func (r *Runner) RunOnce(ctx context.Context) *graph.ArtGraph {
	start := time.Now()
	g, err := r.builder.GetGraph(ctx)
	if err != nil {
		slog.Error("failed to warm art graph", "error", err)
		return nil
	}
	slog.Info("art graph ready",
		"nodes", g.Stats.NodeCount,
		"edges", g.Stats.EdgeCount,
		"components", g.Stats.ComponentCount,
		"elapsed", time.Since(start))
	return g
}

// refresh drops the cached graph and rebuilds it. Requests arriving between
// the two calls trigger the same shared build.
func (r *Runner) refresh(ctx context.Context) {
	if err := r.builder.Invalidate(ctx); err != nil {
		slog.Warn("failed to invalidate art graph", "error", err)
		return
	}
	r.RunOnce(ctx)
}
