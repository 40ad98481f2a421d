package v1

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/hrygo/sixdegrees/plugin/cache"
)

// GetGraph returns the full artwork graph.
// GET /api/v1/graph
func (s *APIV1Service) GetGraph(c echo.Context) error {
	g, err := s.Graph.GetGraph(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, g)
}

// GraphStatsResponse summarizes the current graph.
type GraphStatsResponse struct {
	NodeCount      int            `json:"node_count"`
	EdgeCount      int            `json:"edge_count"`
	ComponentCount int            `json:"component_count"`
	MaxDegree      int            `json:"max_degree"`
	RelationEdges  map[string]int `json:"relation_edges"`
	BuildMs        int64          `json:"build_ms"`
	Cache          *cache.Stats   `json:"cache,omitempty"`
}

// GetGraphStats returns summary statistics for the current graph.
// GET /api/v1/graph/stats
func (s *APIV1Service) GetGraphStats(c echo.Context) error {
	g, err := s.Graph.GetGraph(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	resp := GraphStatsResponse{
		NodeCount:      g.Stats.NodeCount,
		EdgeCount:      g.Stats.EdgeCount,
		ComponentCount: g.Stats.ComponentCount,
		MaxDegree:      g.Stats.MaxDegree,
		RelationEdges:  g.Stats.RelationEdges,
		BuildMs:        g.BuildMs,
	}
	if s.CacheStats != nil {
		stats := s.CacheStats.Stats()
		resp.Cache = &stats
	}
	return c.JSON(http.StatusOK, resp)
}

// InvalidateGraph drops the cached graph so the next request rebuilds it.
// POST /api/v1/graph/invalidate
func (s *APIV1Service) InvalidateGraph(c echo.Context) error {
	if err := s.Graph.Invalidate(c.Request().Context()); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
