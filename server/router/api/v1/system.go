package v1

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// HealthResponse reports liveness and build information.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	Mode    string `json:"mode"`
	Driver  string `json:"driver"`
}

// GetHealth reports liveness without touching the graph.
// GET /healthz
func (s *APIV1Service) GetHealth(c echo.Context) error {
	resp := HealthResponse{Status: "ok"}
	if s.Profile != nil {
		resp.Version = s.Profile.Version
		resp.Mode = s.Profile.Mode
		resp.Driver = s.Profile.Driver
	}
	return c.JSON(http.StatusOK, resp)
}
