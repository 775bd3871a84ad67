package httputil

import (
	"log/slog"
	"time"

	"github.com/labstack/echo/v4"

	"kanbanApi/internal/shared/logging"
	"kanbanApi/internal/shared/session"
)

// RequestLogger attaches a request-scoped slog logger to the request context
// and logs one line per request once the handler chain has run.
func RequestLogger(base *slog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			started := time.Now()
			req := c.Request()
			requestID := c.Response().Header().Get(echo.HeaderXRequestID)
			if requestID == "" {
				requestID = req.Header.Get(echo.HeaderXRequestID)
			}

			logger := base
			if logger == nil {
				logger = slog.Default()
			}
			logger = logger.With(slog.String("requestId", requestID))
			c.SetRequest(req.WithContext(logging.WithLogger(req.Context(), logger)))

			err := next(c)
			if err != nil {
				c.Error(err)
			}

			logger.Info("http request",
				slog.String("method", req.Method),
				slog.String("path", c.Path()),
				slog.String("uri", req.RequestURI),
				slog.Int("status", c.Response().Status),
				slog.Duration("latency", time.Since(started)),
				slog.String("ip", c.RealIP()),
				slog.String("userId", session.UserID(c.Request().Context())),
			)
			return nil
		}
	}
}
