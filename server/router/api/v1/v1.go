package v1

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"sync"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/hrygo/sixdegrees/internal/profile"
	"github.com/hrygo/sixdegrees/plugin/cache"
	apierrors "github.com/hrygo/sixdegrees/server/internal/errors"
	"github.com/hrygo/sixdegrees/server/internal/observability"
	"github.com/hrygo/sixdegrees/server/service/artgraph"
)

// MaxRandomCount caps the count parameter of the random artworks endpoint.
const MaxRandomCount = 100

type APIV1Service struct {
	Profile  *profile.Profile
	Graph    *artgraph.Service
	Catalog  ArtifactCatalog
	Importer ArtifactImporter
	// CacheStats is set when the graph cache backend keeps counters.
	CacheStats cache.StatsReporter

	importMu sync.Mutex
}

// NewAPIV1Service creates the v1 API. catalog and importer may be nil, which
// disables the catalog listing and the import endpoint.
func NewAPIV1Service(profile *profile.Profile, graph *artgraph.Service, catalog ArtifactCatalog, importer ArtifactImporter) *APIV1Service {
	return &APIV1Service{
		Profile:  profile,
		Graph:    graph,
		Catalog:  catalog,
		Importer: importer,
	}
}

// RegisterRoutes registers the HTTP API and the operational endpoints with the given Echo instance.
func (s *APIV1Service) RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", s.GetHealth)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	api := e.Group("/api/v1")
	api.GET("/graph", s.GetGraph)
	api.GET("/graph/stats", s.GetGraphStats)
	api.POST("/graph/invalidate", s.InvalidateGraph)
	api.POST("/import", s.ImportArtworks)
	api.GET("/artworks", s.ListArtworks)
	api.GET("/artworks/random", s.ListRandomArtworks)
	api.GET("/artworks/:id", s.GetArtwork)
	api.GET("/artworks/:id/neighbors", s.GetNeighbors)
	api.GET("/artworks/:id/distance/:target", s.GetDistance)
	api.GET("/artworks/:id/target", s.GetTargetArtwork)
}

// writeError renders err as an APIError body with the matching status.
func writeError(c echo.Context, err error) error {
	var apiErr *apierrors.APIError
	if errors.Is(err, artgraph.ErrNotFound) {
		apiErr = apierrors.NotFound(err.Error())
	} else {
		apiErr = apierrors.FromError(err)
	}
	if apiErr.HTTPStatus() >= http.StatusInternalServerError {
		observability.LoggerFrom(c.Request().Context()).Error("request failed",
			slog.String(observability.LogFieldErrorCode, string(apiErr.Code)),
			slog.Any("error", err))
	}
	return c.JSON(apiErr.HTTPStatus(), apiErr)
}

// parseID reads an int64 path parameter.
func parseID(c echo.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil {
		return 0, apierrors.InvalidArgument("invalid " + name).WithContext(name, c.Param(name))
	}
	return id, nil
}

// queryInt reads an optional integer query parameter. ok is false when absent.
func queryInt(c echo.Context, name string) (value int, ok bool, err error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return 0, false, nil
	}
	value, err = strconv.Atoi(raw)
	if err != nil {
		return 0, false, apierrors.InvalidArgument("invalid " + name).WithContext(name, raw)
	}
	return value, true, nil
}
