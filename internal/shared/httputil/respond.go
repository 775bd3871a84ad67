package httputil

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"kanbanApi/internal/shared/logging"
)

// ErrorBody is the JSON body returned for every failed request.
type ErrorBody struct {
	Err string `json:"err"`
}

// MessageBody is the JSON body returned by endpoints that only acknowledge.
type MessageBody struct {
	Msg string `json:"msg"`
}

// Fail logs err against the request and writes the mapped status with a
// user-safe message. When the mapping carries no message, fallback is used.
// Error details never reach the response body.
func Fail(c echo.Context, mapper *ErrorMapper, err error, fallback string) error {
	info := mapper.Map(err)
	message := info.Message
	if message == "" {
		message = fallback
	}
	logger := logging.FromContext(c.Request().Context())
	if info.Status >= http.StatusInternalServerError {
		logger.Error(fallback, slog.Int("status", info.Status), slog.Any("error", err))
	} else {
		logger.Warn(fallback, slog.Int("status", info.Status), slog.Any("error", err))
	}
	return c.JSON(info.Status, ErrorBody{Err: message})
}
