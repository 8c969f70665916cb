package api

import (
	"strings"
	"time"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	"github.com/authkit/auth-api/internal/api/handler"
	"github.com/authkit/auth-api/internal/api/middleware"
	"github.com/authkit/auth-api/internal/core/ports"
)

const (
	apiPrefix = "/api/v1"
	bodyLimit = "10M"
)

// RateLimits mirrors the limiter policy from configuration.
type RateLimits struct {
	Window    time.Duration
	GlobalMax int
	AuthMax   int
}

// Options carries everything the router needs. Limiter may be nil, which
// disables rate limiting.
type Options struct {
	Logger      zerolog.Logger
	AuthService ports.AuthService
	UserService ports.UserService
	Verifier    ports.TokenVerifier
	Limiter     middleware.Limiter
	RateLimits  RateLimits
	Checkers    []handler.DependencyChecker
	StartedAt   time.Time
	// Registry receives the HTTP metrics. Nil uses the Prometheus default
	// registry, which also holds the service counters.
	Registry *prometheus.Registry
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(opts Options) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(opts.Logger)

	var registerer prometheus.Registerer = prometheus.DefaultRegisterer
	var gatherer prometheus.Gatherer = prometheus.DefaultGatherer
	if opts.Registry != nil {
		registerer, gatherer = opts.Registry, opts.Registry
	}

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(middleware.RequestLogger(opts.Logger))
	e.Use(echomiddleware.Secure())
	e.Use(echomiddleware.CORS())
	e.Use(echomiddleware.BodyLimit(bodyLimit))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:  "auth_api",
		Registerer: registerer,
	}))
	e.Use(middleware.RateLimit(middleware.RateLimitConfig{
		Limiter: opts.Limiter,
		Max:     opts.RateLimits.GlobalMax,
		Window:  opts.RateLimits.Window,
		Scope:   "global",
		KeyFunc: middleware.KeyByIP("global"),
		Message: "Too many requests from this IP, please try again later.",
		Skipper: isOpsPath,
		Logger:  opts.Logger,
	}))

	// --- Dependencies ---
	authHandler := handler.NewAuthHandler(opts.AuthService)
	userHandler := handler.NewUserHandler(opts.UserService)
	healthHandler := handler.NewHealthHandler(opts.StartedAt)
	readinessHandler := handler.NewReadinessHandler(opts.Logger, opts.Checkers...)

	authLimit := middleware.RateLimit(middleware.RateLimitConfig{
		Limiter: opts.Limiter,
		Max:     opts.RateLimits.AuthMax,
		Window:  opts.RateLimits.Window,
		Scope:   "auth",
		KeyFunc: middleware.KeyByIP("auth"),
		Message: "Too many authentication attempts, please try again later.",
		Logger:  opts.Logger,
	})
	authGuard := middleware.Auth(opts.Verifier)

	// Routes are served at the root and under /api/v1.
	for _, g := range []*echo.Group{e.Group(""), e.Group(apiPrefix)} {
		// --- Auth routes ---
		g.POST("/auth/register", authHandler.Register, authLimit)
		g.POST("/auth/login", authHandler.Login, authLimit)

		// --- User routes (bearer token required) ---
		g.GET("/users/me", userHandler.Me, authGuard)

		// --- Health probes (no auth required) ---
		g.GET("/health", healthHandler.Liveness)
		g.GET("/health/ready", readinessHandler.Readiness)
	}

	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: gatherer}))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}

// isOpsPath exempts probes, metrics and docs from the global limit.
func isOpsPath(c echo.Context) bool {
	p := c.Request().URL.Path
	return strings.HasPrefix(p, "/health") ||
		strings.HasPrefix(p, apiPrefix+"/health") ||
		p == "/metrics" ||
		strings.HasPrefix(p, "/swagger")
}
