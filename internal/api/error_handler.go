package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/authkit/auth-api/internal/api/handler"
	"github.com/authkit/auth-api/internal/core/domain"
)

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps known domain errors to their HTTP status codes.
//   - Logs unexpected errors internally without leaking details to the client.
//   - Renders the {"success": false, "message", "errors"?} envelope.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, msg, fields := resolveError(err, log, c)
		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(code)
			return
		}
		_ = c.JSON(code, handler.ErrorBody(msg, fields))
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, string, []domain.FieldError) {
	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		return http.StatusBadRequest, "Validation failed", ve.Errors
	}

	// Known domain errors → deterministic HTTP codes. Expired and tampered
	// tokens intentionally differ: 401 asks for a new login, 403 flags misuse.
	switch {
	case errors.Is(err, domain.ErrEmailTaken), errors.Is(err, domain.ErrDuplicateEmail):
		return http.StatusConflict, "Email already registered", nil
	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusUnauthorized, "Invalid credentials", nil
	case errors.Is(err, domain.ErrMissingToken):
		return http.StatusUnauthorized, "Access token is required", nil
	case errors.Is(err, domain.ErrTokenExpired):
		return http.StatusUnauthorized, "Token expired", nil
	case errors.Is(err, domain.ErrTokenInvalid):
		return http.StatusForbidden, "Invalid token", nil
	case errors.Is(err, domain.ErrUserNotFound):
		return http.StatusNotFound, "User not found", nil
	}

	// Echo's own errors (bind failures, unknown routes, 429 from the limiter).
	var he *echo.HTTPError
	if errors.As(err, &he) {
		switch he.Code {
		case http.StatusNotFound:
			return he.Code, "Route not found", nil
		case http.StatusInternalServerError:
			// fall through to the generic branch
		default:
			return he.Code, fmt.Sprintf("%v", he.Message), nil
		}
	}

	// Unexpected error: log the real cause, return a generic message.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return http.StatusInternalServerError, "Internal server error", nil
}
