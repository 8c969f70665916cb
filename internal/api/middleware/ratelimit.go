package middleware

import (
	"context"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"github.com/authkit/auth-api/internal/api/metrics"
	redisstore "github.com/authkit/auth-api/internal/infrastructure/db/redis"
)

// Limiter counts hits per key within a window.
type Limiter interface {
	Allow(ctx context.Context, key string, max int, window time.Duration) (redisstore.Decision, error)
}

// KeyFunc builds the rate-limit key for a request.
type KeyFunc func(c echo.Context) string

// KeyByIP limits by client IP only.
func KeyByIP(scope string) KeyFunc {
	return func(c echo.Context) string {
		return scope + ":ip:" + clientIP(c)
	}
}

func clientIP(c echo.Context) string {
	if ip := c.RealIP(); ip != "" {
		return ip
	}
	return "unknown"
}

type RateLimitConfig struct {
	Limiter Limiter
	Max     int
	Window  time.Duration
	// Scope labels the rejection metric, e.g. "global" or "auth".
	Scope   string
	KeyFunc KeyFunc
	Message string
	Skipper echomiddleware.Skipper
	Logger  zerolog.Logger
}

// RateLimit rejects requests beyond cfg.Max per cfg.Window with 429 and sets
// the X-RateLimit-* headers. Limiter failures let the request through.
func RateLimit(cfg RateLimitConfig) echo.MiddlewareFunc {
	if cfg.Limiter == nil || cfg.Max <= 0 || cfg.Window <= 0 {
		return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	}
	if cfg.KeyFunc == nil {
		cfg.KeyFunc = KeyByIP(cfg.Scope)
	}
	if cfg.Message == "" {
		cfg.Message = "Too many requests, please try again later."
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if cfg.Skipper != nil && cfg.Skipper(c) {
				return next(c)
			}
			if c.Request().Method == http.MethodOptions {
				return next(c)
			}

			d, err := cfg.Limiter.Allow(c.Request().Context(), cfg.KeyFunc(c), cfg.Max, cfg.Window)
			if err != nil {
				cfg.Logger.Warn().Err(err).Str("scope", cfg.Scope).Msg("rate limiter unavailable, allowing request")
				return next(c)
			}

			resetSec := int(math.Ceil(d.Reset.Seconds()))
			h := c.Response().Header()
			h.Set("X-RateLimit-Limit", strconv.Itoa(d.Limit))
			h.Set("X-RateLimit-Remaining", strconv.Itoa(d.Remaining))
			h.Set("X-RateLimit-Reset", strconv.Itoa(resetSec))

			if !d.Allowed {
				if resetSec > 0 {
					h.Set(echo.HeaderRetryAfter, strconv.Itoa(resetSec))
				}
				metrics.RateLimitedTotal.WithLabelValues(cfg.Scope).Inc()
				return echo.NewHTTPError(http.StatusTooManyRequests, cfg.Message)
			}
			return next(c)
		}
	}
}
