package middleware

import (
	"context"
	"errors"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/authkit/auth-api/internal/api/metrics"
	"github.com/authkit/auth-api/internal/core/domain"
	"github.com/authkit/auth-api/internal/core/ports"
)

type userIDCtxKey struct{}

// Auth verifies the bearer token and stores the subject on the request
// context. It does not touch the database.
func Auth(verifier ports.TokenVerifier) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := bearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
			if token == "" {
				metrics.TokenVerificationsTotal.WithLabelValues("missing").Inc()
				return domain.ErrMissingToken
			}

			id, err := verifier.Verify(token)
			if err != nil {
				if errors.Is(err, domain.ErrTokenExpired) {
					metrics.TokenVerificationsTotal.WithLabelValues("expired").Inc()
					return domain.ErrTokenExpired
				}
				metrics.TokenVerificationsTotal.WithLabelValues("invalid").Inc()
				return domain.ErrTokenInvalid
			}

			metrics.TokenVerificationsTotal.WithLabelValues("valid").Inc()
			req := c.Request()
			c.SetRequest(req.WithContext(WithUserID(req.Context(), id)))

			return next(c)
		}
	}
}

// WithUserID returns a copy of ctx carrying the authenticated user id.
func WithUserID(ctx context.Context, id int64) context.Context {
	return context.WithValue(ctx, userIDCtxKey{}, id)
}

// UserIDFromContext returns the id stored by Auth on the request context.
func UserIDFromContext(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(userIDCtxKey{}).(int64)
	return id, ok
}

// bearerToken extracts the token from "Bearer <token>". Any other shape
// counts as no token.
func bearerToken(header string) string {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
