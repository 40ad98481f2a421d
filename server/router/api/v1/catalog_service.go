package v1

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/hrygo/sixdegrees/plugin/graph"
	"github.com/hrygo/sixdegrees/plugin/ingest"
	apierrors "github.com/hrygo/sixdegrees/server/internal/errors"
	"github.com/hrygo/sixdegrees/server/internal/observability"
	"github.com/hrygo/sixdegrees/store"
)

const (
	// DefaultListLimit is the page size of the artwork listing when limit is absent.
	DefaultListLimit = 50
	// MaxListLimit caps the limit parameter of the artwork listing.
	MaxListLimit = 500
)

// ArtifactCatalog pages through stored artworks. *store.Store implements it.
type ArtifactCatalog interface {
	ListArtifacts(ctx context.Context, find *store.FindArtifact) ([]*store.Artifact, error)
	CountArtifacts(ctx context.Context) (int64, error)
}

// ArtifactImporter loads object records into the catalog. *ingest.Importer implements it.
type ArtifactImporter interface {
	Import(ctx context.Context, opts ingest.Options) (*ingest.Result, error)
}

// ArtworkResponse is a stored artwork as listed by the catalog endpoint.
type ArtworkResponse struct {
	ID             int64  `json:"id"`
	Title          string `json:"title"`
	Maker          string `json:"maker"`
	Date           string `json:"date"`
	Medium         string `json:"medium"`
	Department     string `json:"department"`
	Classification string `json:"classification"`
	ImageURL       string `json:"image_url"`
}

// ListArtworksResponse is one page of stored artworks. Total counts every
// stored artwork regardless of paging.
type ListArtworksResponse struct {
	Artworks []ArtworkResponse `json:"artworks"`
	Total    int64             `json:"total"`
}

// ImportRequest is the body of an import call. Zero Limit samples
// ingest.DefaultLimit files.
type ImportRequest struct {
	Limit   int  `json:"limit"`
	Replace bool `json:"replace"`
}

// ListArtworks pages through the stored catalog, graph membership aside.
// GET /api/v1/artworks?limit=50&offset=0&ids=1,2
func (s *APIV1Service) ListArtworks(c echo.Context) error {
	if s.Catalog == nil {
		return writeError(c, apierrors.ServiceUnavailable("artwork catalog is not configured", nil))
	}
	find, err := parseListQuery(c)
	if err != nil {
		return writeError(c, err)
	}

	ctx := c.Request().Context()
	list, err := s.Catalog.ListArtifacts(ctx, find)
	if err != nil {
		return writeError(c, apierrors.Internal("failed to list artworks", err))
	}
	total, err := s.Catalog.CountArtifacts(ctx)
	if err != nil {
		return writeError(c, apierrors.Internal("failed to count artworks", err))
	}

	resp := ListArtworksResponse{Artworks: make([]ArtworkResponse, 0, len(list)), Total: total}
	for _, a := range list {
		resp.Artworks = append(resp.Artworks, ArtworkResponse{
			ID:             a.ID,
			Title:          a.Title,
			Maker:          a.Maker,
			Date:           a.Date,
			Medium:         a.Medium,
			Department:     a.Department,
			Classification: a.Classification,
			ImageURL:       graph.NormalizeImageURL(a.ImageURL),
		})
	}
	return c.JSON(http.StatusOK, resp)
}

func parseListQuery(c echo.Context) (*store.FindArtifact, error) {
	limit, ok, err := queryInt(c, "limit")
	if err != nil {
		return nil, err
	}
	if !ok {
		limit = DefaultListLimit
	}
	if limit < 1 || limit > MaxListLimit {
		return nil, apierrors.InvalidArgument("limit must be between 1 and " + strconv.Itoa(MaxListLimit)).
			WithContext("limit", limit)
	}
	offset, _, err := queryInt(c, "offset")
	if err != nil {
		return nil, err
	}
	if offset < 0 {
		return nil, apierrors.InvalidArgument("offset must not be negative").WithContext("offset", offset)
	}

	find := &store.FindArtifact{Limit: &limit, Offset: &offset}
	if raw := c.QueryParam("ids"); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			id, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64)
			if err != nil {
				return nil, apierrors.InvalidArgument("invalid ids").WithContext("ids", raw)
			}
			find.IDs = append(find.IDs, id)
		}
	}
	return find, nil
}

// ImportArtworks loads object records from the configured import directory
// and invalidates the graph this process serves.
// POST /api/v1/import
func (s *APIV1Service) ImportArtworks(c echo.Context) error {
	if s.Importer == nil || s.Profile.ImportDir == "" {
		return writeError(c, apierrors.ServiceUnavailable("import directory is not configured", nil))
	}
	var req ImportRequest
	if err := c.Bind(&req); err != nil {
		return writeError(c, apierrors.InvalidArgument("invalid import request"))
	}
	if req.Limit < 0 {
		return writeError(c, apierrors.InvalidArgument("limit must not be negative").WithContext("limit", req.Limit))
	}

	// Imports touch the whole catalog; run them one at a time.
	s.importMu.Lock()
	defer s.importMu.Unlock()

	ctx := c.Request().Context()
	result, err := s.Importer.Import(ctx, ingest.Options{
		Dir:     s.Profile.ImportDir,
		Limit:   req.Limit,
		Replace: req.Replace,
	})
	if err != nil {
		return writeError(c, apierrors.Internal("import failed", err))
	}
	observability.LoggerFrom(ctx).Info("artworks imported",
		slog.Int("imported", result.Imported),
		slog.Int("skipped", result.Skipped),
		slog.Bool("replace", req.Replace))
	return c.JSON(http.StatusOK, result)
}
