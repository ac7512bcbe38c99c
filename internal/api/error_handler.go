package api

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/digiticket/digiticket/internal/core/domain"
)

// errorEnvelope is the canonical error body for all 4xx/5xx responses.
type errorEnvelope struct {
	Timestamp   time.Time `json:"timestamp"`
	StatusCode  int       `json:"statusCode"`
	StatusText  string    `json:"statusText"`
	Message     string    `json:"message"`
	RequestPath string    `json:"requestPath"`
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps known domain errors to their HTTP status codes.
//   - Logs unexpected errors internally without leaking details to the client.
//   - Renders the uniform envelope {timestamp, statusCode, statusText,
//     message, requestPath}.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, msg := resolveError(err, log, c)
		_ = c.JSON(code, errorEnvelope{
			Timestamp:   time.Now().UTC(),
			StatusCode:  code,
			StatusText:  http.StatusText(code),
			Message:     msg,
			RequestPath: c.Request().URL.Path,
		})
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, string) {
	// Echo's own errors (bind failures, 404 from the router, validation
	// rejections raised as HTTPError by the handlers).
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, fmt.Sprintf("%v", he.Message)
	}

	// Known domain errors map to deterministic codes. ErrInvalidCredentials
	// deliberately carries one message for every login failure mode.
	switch {
	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusUnauthorized, domain.ErrInvalidCredentials.Error()
	case errors.Is(err, domain.ErrEmailTaken):
		return http.StatusConflict, domain.ErrEmailTaken.Error()
	case errors.Is(err, domain.ErrDocumentTaken):
		return http.StatusConflict, domain.ErrDocumentTaken.Error()
	case errors.Is(err, domain.ErrUserNotFound):
		return http.StatusNotFound, domain.ErrUserNotFound.Error()
	}

	// Unexpected error: log the real cause, return a generic message.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return http.StatusInternalServerError, "internal server error"
}
