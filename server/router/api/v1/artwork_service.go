package v1

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/hrygo/sixdegrees/plugin/graph"
	apierrors "github.com/hrygo/sixdegrees/server/internal/errors"
	"github.com/hrygo/sixdegrees/server/service/artgraph"
)

// GetArtwork returns a single artwork node.
// GET /api/v1/artworks/:id
func (s *APIV1Service) GetArtwork(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return writeError(c, err)
	}
	node, err := s.Graph.GetArtwork(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, node)
}

// GetNeighbors returns the artworks sharing an edge with the given one.
// GET /api/v1/artworks/:id/neighbors
func (s *APIV1Service) GetNeighbors(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return writeError(c, err)
	}
	nodes, err := s.Graph.GetNeighbors(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, nodes)
}

// GetDistance returns the degrees of separation between two artworks.
// GET /api/v1/artworks/:id/distance/:target?path=true
func (s *APIV1Service) GetDistance(c echo.Context) error {
	from, err := parseID(c, "id")
	if err != nil {
		return writeError(c, err)
	}
	to, err := parseID(c, "target")
	if err != nil {
		return writeError(c, err)
	}
	withPath := false
	if raw := c.QueryParam("path"); raw != "" {
		if withPath, err = strconv.ParseBool(raw); err != nil {
			return writeError(c, apierrors.InvalidArgument("invalid path").WithContext("path", raw))
		}
	}

	result, err := s.Graph.GetDistance(c.Request().Context(), from, to, withPath)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, result)
}

// GetTargetArtwork picks an artwork a given number of steps away.
// GET /api/v1/artworks/:id/target?steps=6&min_steps=5&max_steps=7
func (s *APIV1Service) GetTargetArtwork(c echo.Context) error {
	start, err := parseID(c, "id")
	if err != nil {
		return writeError(c, err)
	}
	q, err := parseTargetQuery(c)
	if err != nil {
		return writeError(c, err)
	}

	node, err := s.Graph.GetTargetArtwork(c.Request().Context(), start, q)
	if err != nil {
		if errors.Is(err, artgraph.ErrNotFound) {
			return writeError(c, apierrors.NotFound("no artwork found in the requested distance range").
				WithContext("start", start).
				WithContext("min_steps", q.Min).
				WithContext("max_steps", q.Max))
		}
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, node)
}

func parseTargetQuery(c echo.Context) (graph.TargetQuery, error) {
	steps, ok, err := queryInt(c, "steps")
	if err != nil {
		return graph.TargetQuery{}, err
	}
	if ok && steps < 1 {
		return graph.TargetQuery{}, apierrors.InvalidArgument("steps must be positive").WithContext("steps", steps)
	}
	q := graph.NewTargetQuery(steps)

	if v, ok, err := queryInt(c, "min_steps"); err != nil {
		return graph.TargetQuery{}, err
	} else if ok {
		q.Min = v
	}
	if v, ok, err := queryInt(c, "max_steps"); err != nil {
		return graph.TargetQuery{}, err
	} else if ok {
		q.Max = v
	}
	if q.Max < 1 || q.Min > q.Max {
		return graph.TargetQuery{}, apierrors.InvalidArgument("invalid step range").
			WithContext("min_steps", q.Min).
			WithContext("max_steps", q.Max)
	}
	return q, nil
}

// ListRandomArtworks returns distinct random artworks, e.g. to seed a game round.
// GET /api/v1/artworks/random?count=2
func (s *APIV1Service) ListRandomArtworks(c echo.Context) error {
	count, ok, err := queryInt(c, "count")
	if err != nil {
		return writeError(c, err)
	}
	if !ok {
		count = artgraph.DefaultRandomCount
	}
	if count < 1 || count > MaxRandomCount {
		return writeError(c, apierrors.InvalidArgument("count out of range").WithContext("count", count))
	}

	nodes, err := s.Graph.RandomArtworks(c.Request().Context(), count)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, nodes)
}
