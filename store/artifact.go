package store

import "context"

// Artifact is a catalogued artwork record.
type Artifact struct {
	ID             int64
	Title          string
	Maker          string
	MakerID        int64
	MakerCulture   string
	Date           string // free text, usually year-prefixed ("1880-1885", "c. 1650" ...)
	Medium         string
	Department     string
	Classification string
	ImageURL       string
	// Embedding is optional; only drivers with vector support persist it.
	Embedding []float32
	// EmbeddingTag identifies the embedder that produced Embedding.
	EmbeddingTag string
	CreatedTs int64
	UpdatedTs int64
}

// FindArtifact is the find condition for artifacts.
type FindArtifact struct {
	ID  *int64
	IDs []int64

	// RequireTitle and RequireMaker push the inclusion policy down to the database.
	RequireTitle bool
	RequireMaker bool
	// MissingEmbedding selects artifacts without a stored embedding. Drivers
	// that never store embeddings treat every artifact as missing one.
	MissingEmbedding bool
	// EmbeddingTag, with MissingEmbedding, also selects artifacts whose
	// embedding was stored under a different tag.
	EmbeddingTag string

	Limit  *int
	Offset *int
}

// DeleteArtifact is the delete condition for artifacts.
// A nil ID deletes every artifact.
type DeleteArtifact struct {
	ID *int64
}

// UpsertArtifact inserts or updates an artifact keyed by its ID.
func (s *Store) UpsertArtifact(ctx context.Context, upsert *Artifact) (*Artifact, error) {
	return s.driver.UpsertArtifact(ctx, upsert)
}

// ListArtifacts lists artifacts ordered by ID.
func (s *Store) ListArtifacts(ctx context.Context, find *FindArtifact) ([]*Artifact, error) {
	return s.driver.ListArtifacts(ctx, find)
}

// GetArtifact returns the artifact with the given ID, or nil when absent.
func (s *Store) GetArtifact(ctx context.Context, id int64) (*Artifact, error) {
	list, err := s.driver.ListArtifacts(ctx, &FindArtifact{ID: &id})
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, nil
	}
	return list[0], nil
}

// DeleteArtifacts deletes artifacts matching the condition.
func (s *Store) DeleteArtifacts(ctx context.Context, delete *DeleteArtifact) (int64, error) {
	return s.driver.DeleteArtifacts(ctx, delete)
}

// CountArtifacts returns the number of stored artifacts.
func (s *Store) CountArtifacts(ctx context.Context) (int64, error) {
	return s.driver.CountArtifacts(ctx)
}
