package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/authkit/auth-api/internal/api/middleware"
	"github.com/authkit/auth-api/internal/core/domain"
)

// currentUserID returns the id the Auth middleware stored on the request context.
// Its absence means the route was mounted without the guard.
func currentUserID(c echo.Context) (int64, error) {
	id, ok := middleware.UserIDFromContext(c.Request().Context())
	if !ok || id <= 0 {
		return 0, domain.ErrMissingToken
	}
	return id, nil
}
