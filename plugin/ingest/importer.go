// Package ingest imports museum object records from JSON files into the
// artifact store.
package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"os"
	"path/filepath"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/hrygo/sixdegrees/store"
)

// DefaultLimit is the maximum number of files imported per run.
const DefaultLimit = 1000

// ArtifactWriter is the write side of the artifact store.
type ArtifactWriter interface {
	UpsertArtifact(ctx context.Context, upsert *store.Artifact) (*store.Artifact, error)
	DeleteArtifacts(ctx context.Context, delete *store.DeleteArtifact) (int64, error)
}

// Invalidator drops derived data once the artifact set changes.
type Invalidator interface {
	Invalidate(ctx context.Context) error
}

// Options controls one import run.
type Options struct {
	// Dir holds *.json object records.
	Dir string
	// Limit caps how many files are sampled. Zero means DefaultLimit.
	Limit int
	// Replace deletes every stored artifact before importing.
	Replace bool
}

// Result summarizes an import run.
type Result struct {
	Files    int   `json:"files"`
	Imported int   `json:"imported"`
	Skipped  int   `json:"skipped"`
	Deleted  int64 `json:"deleted"`
}

// Importer loads object records into the store.
type Importer struct {
	writer      ArtifactWriter
	invalidator Invalidator
	rng         *rand.Rand
	parallelism int
}

// NewImporter creates an Importer. invalidator may be nil. rng decides which
// files are sampled when there are more than the limit; nil uses a random seed.
func NewImporter(writer ArtifactWriter, invalidator Invalidator, rng *rand.Rand) *Importer {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &Importer{
		writer:      writer,
		invalidator: invalidator,
		rng:         rng,
		parallelism: 8,
	}
}

// Import samples up to opts.Limit files from opts.Dir and upserts them.
// Files that cannot be read or parsed are logged and skipped.
func (i *Importer) Import(ctx context.Context, opts Options) (*Result, error) {
	files, err := filepath.Glob(filepath.Join(opts.Dir, "*.json"))
	if err != nil {
		return nil, fmt.Errorf("list object files: %w", err)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no object JSON files found in %s", opts.Dir)
	}
	files = i.sample(files, opts.Limit)

	result := &Result{Files: len(files)}
	if opts.Replace {
		deleted, err := i.writer.DeleteArtifacts(ctx, &store.DeleteArtifact{})
		if err != nil {
			return nil, fmt.Errorf("clear artifacts: %w", err)
		}
		result.Deleted = deleted
		slog.Info("cleared artifacts before import", "deleted", deleted)
	}

	artifacts := i.parseFiles(ctx, files)
	for idx, a := range artifacts {
		if a == nil {
			result.Skipped++
			continue
		}
		if _, err := i.writer.UpsertArtifact(ctx, a); err != nil {
			slog.Warn("failed to store object", "file", filepath.Base(files[idx]), "id", a.ID, "error", err)
			result.Skipped++
			continue
		}
		result.Imported++
	}

	if i.invalidator != nil && (result.Imported > 0 || result.Deleted > 0) {
		if err := i.invalidator.Invalidate(ctx); err != nil {
			slog.Warn("failed to invalidate graph after import", "error", err)
		}
	}

	slog.Info("import finished",
		"files", result.Files,
		"imported", result.Imported,
		"skipped", result.Skipped)
	return result, nil
}

// sample returns at most limit files, chosen uniformly at random, in path order.
func (i *Importer) sample(files []string, limit int) []string {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if len(files) > limit {
		i.rng.Shuffle(len(files), func(a, b int) { files[a], files[b] = files[b], files[a] })
		files = files[:limit]
	}
	sort.Strings(files)
	return files
}

// parseFiles reads files concurrently. The result is index-aligned with files;
// a nil entry marks a skipped file.
func (i *Importer) parseFiles(ctx context.Context, files []string) []*store.Artifact {
	artifacts := make([]*store.Artifact, len(files))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(i.parallelism)
	for idx, path := range files {
		g.Go(func() error {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			data, err := os.ReadFile(path)
			if err != nil {
				slog.Warn("failed to read object file", "file", filepath.Base(path), "error", err)
				return nil
			}
			a, err := parseObject(data)
			if err != nil {
				slog.Warn("skipping malformed object file", "file", filepath.Base(path), "error", err)
				return nil
			}
			artifacts[idx] = a
			return nil
		})
	}
	// Workers only fail on cancellation; partial results are still usable.
	_ = g.Wait()
	return artifacts
}
