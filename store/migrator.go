package store

import (
	"context"
	"embed"
	"log/slog"
	"path"

	"github.com/pkg/errors"
)

// Migration overview:
//
// The artifact schema is small and append-only, so a fresh database is initialized
// from store/migration/{driver}/LATEST.sql and an initialized database is left alone.
// Schema changes must stay backwards compatible (ADD COLUMN with defaults).

//go:embed migration
var migrationFS embed.FS

const (
	// LatestSchemaFileName is the name of the latest schema file.
	LatestSchemaFileName = "LATEST.sql"
)

// Migrate initializes the database schema when needed.
func (s *Store) Migrate(ctx context.Context) error {
	initialized, err := s.driver.IsInitialized(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to check if database is initialized")
	}
	if initialized {
		return nil
	}

	schemaPath := path.Join("migration", s.profile.Driver, LatestSchemaFileName)
	schema, err := migrationFS.ReadFile(schemaPath)
	if err != nil {
		return errors.Wrapf(err, "failed to read schema file %s", schemaPath)
	}
	if _, err := s.driver.GetDB().ExecContext(ctx, string(schema)); err != nil {
		return errors.Wrapf(err, "failed to apply schema %s", schemaPath)
	}

	slog.Info("database schema initialized", "driver", s.profile.Driver)
	return nil
}
