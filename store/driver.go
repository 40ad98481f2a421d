package store

import (
	"context"
	"database/sql"
)

// Driver is an interface for store driver.
// It contains all methods that store database driver should implement.
type Driver interface {
	GetDB() *sql.DB
	Close() error

	IsInitialized(ctx context.Context) (bool, error)

	// Artifact model related methods.
	UpsertArtifact(ctx context.Context, upsert *Artifact) (*Artifact, error)
	ListArtifacts(ctx context.Context, find *FindArtifact) ([]*Artifact, error)
	DeleteArtifacts(ctx context.Context, delete *DeleteArtifact) (int64, error)
	CountArtifacts(ctx context.Context) (int64, error)
}
