package middleware

import (
	"log/slog"

	"github.com/labstack/echo/v4"

	"github.com/hrygo/sixdegrees/server/internal/observability"
)

// HeaderRequestID is the header carrying the request ID in both directions.
const HeaderRequestID = echo.HeaderXRequestID

// RequestLogger attaches a RequestContext to each request, echoes its ID in the
// response header, and logs method, route, status and latency once the handler returns.
func RequestLogger(logger *slog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			rc := observability.NewRequestContext(logger, req.Header.Get(HeaderRequestID), req.Method, req.URL.Path)
			c.SetRequest(req.WithContext(observability.WithRequestContext(req.Context(), rc)))
			c.Response().Header().Set(HeaderRequestID, rc.RequestID)

			err := next(c)
			if err != nil {
				// Let echo's error handler write the response so the status is final.
				c.Error(err)
			}

			status := c.Response().Status
			route := c.Path()
			if route == "" {
				route = "unmatched"
			}
			observability.RecordHTTPRequest(req.Method, route, status, rc.Duration())

			attrs := []slog.Attr{
				slog.Int(observability.LogFieldStatus, status),
				slog.Int64(observability.LogFieldDuration, rc.DurationMs()),
			}
			switch {
			case status >= 500:
				rc.Error("request failed", err, attrs...)
			case status >= 400:
				rc.Warn("request rejected", attrs...)
			default:
				rc.Debug("request served", attrs...)
			}
			return nil
		}
	}
}
