package main

import (
	"context"

	"github.com/pkg/errors"

	"github.com/hrygo/sixdegrees/internal/profile"
	"github.com/hrygo/sixdegrees/plugin/cache"
	"github.com/hrygo/sixdegrees/plugin/graph"
	"github.com/hrygo/sixdegrees/server"
	"github.com/hrygo/sixdegrees/store"
	"github.com/hrygo/sixdegrees/store/db"
)

// openStore opens and migrates the configured database.
func openStore(ctx context.Context, p *profile.Profile) (*store.Store, error) {
	driver, err := db.NewDBDriver(p)
	if err != nil {
		return nil, err
	}
	st := store.New(driver, p)
	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, errors.Wrap(err, "failed to migrate")
	}
	return st, nil
}

// graphEnv bundles what the offline commands need to build or query the graph.
type graphEnv struct {
	store   *store.Store
	cache   cache.Backend
	builder *graph.Builder
}

func openGraphEnv(ctx context.Context, p *profile.Profile) (*graphEnv, error) {
	st, err := openStore(ctx, p)
	if err != nil {
		return nil, err
	}
	backend, err := cache.Open(p.CacheBackend, p.Data, p.CacheTTL)
	if err != nil {
		_ = st.Close()
		return nil, errors.Wrap(err, "failed to open graph cache")
	}
	builder, err := server.NewGraphBuilder(p, st, backend)
	if err != nil {
		_ = backend.Close()
		_ = st.Close()
		return nil, err
	}
	return &graphEnv{store: st, cache: backend, builder: builder}, nil
}

func (e *graphEnv) Close() {
	_ = e.cache.Close()
	_ = e.store.Close()
}
