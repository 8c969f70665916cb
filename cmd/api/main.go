// @title         Auth API
// @version       1.0
// @description   Registers users, authenticates them and issues bearer tokens.
// @BasePath      /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	_ "github.com/authkit/auth-api/docs"
	"github.com/authkit/auth-api/internal/api"
	"github.com/authkit/auth-api/internal/api/handler"
	"github.com/authkit/auth-api/internal/api/middleware"
	"github.com/authkit/auth-api/internal/core/service"
	"github.com/authkit/auth-api/internal/infrastructure/db/postgres"
	"github.com/authkit/auth-api/internal/infrastructure/db/redis"
	"github.com/authkit/auth-api/internal/infrastructure/security"
	"github.com/authkit/auth-api/internal/pkg/config"
	"github.com/authkit/auth-api/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

func main() {
	startedAt := time.Now()

	// .env is optional; real environment variables take precedence.
	_ = godotenv.Load()

	cfg := config.Load()
	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: "auth-api",
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- Security ---
	tokens, err := security.NewTokenManager(security.TokenConfig{
		Secret:   cfg.JWT.Secret,
		TTL:      cfg.JWT.ExpiresIn,
		Issuer:   cfg.JWT.Issuer,
		Audience: cfg.JWT.Audience,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("token manager")
	}
	hasher := security.NewBcryptHasher(cfg.JWT.BcryptCost)

	// --- Credential store ---
	pool, err := postgres.Connect(ctx, postgres.Config{
		DSN:             cfg.DB.DSN(),
		MaxConns:        cfg.DB.MaxConns,
		MinConns:        cfg.DB.MinConns,
		MaxConnLifetime: cfg.DB.MaxConnLifetime,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("unable to connect to database")
	}
	defer pool.Close()
	log.Info().Msg("database connection established")

	users := postgres.NewUserRepository(pool, hasher)
	if err := users.CreateTable(ctx); err != nil {
		log.Fatal().Err(err).Msg("unable to prepare users table")
	}
	log.Info().Msg("users table ready")

	checkers := []handler.DependencyChecker{handler.NewCheck("postgres", users.Ping)}

	// --- Rate limiting (optional) ---
	var limiter middleware.Limiter
	if cfg.Redis.Addr != "" {
		rdb, err := redis.Connect(ctx, redis.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			log.Warn().Err(err).Str("addr", cfg.Redis.Addr).Msg("redis unavailable, rate limiting disabled")
		} else {
			defer rdb.Close()
			limiter = redis.NewFixedWindowLimiter(rdb)
			checkers = append(checkers, handler.NewCheck("redis", func(ctx context.Context) error {
				return rdb.Ping(ctx).Err()
			}))
		}
	} else {
		log.Warn().Msg("REDIS_ADDR not set, rate limiting disabled")
	}

	// --- HTTP ---
	e := api.NewRouter(api.Options{
		Logger:      log,
		AuthService: service.NewAuthService(users, hasher, tokens, log),
		UserService: service.NewUserService(users),
		Verifier:    tokens,
		Limiter:     limiter,
		RateLimits: api.RateLimits{
			Window:    cfg.RateLimit.Window,
			GlobalMax: cfg.RateLimit.GlobalMax,
			AuthMax:   cfg.RateLimit.AuthMax,
		},
		Checkers:  checkers,
		StartedAt: startedAt,
	})

	go func() {
		log.Info().Str("port", cfg.Port).Msg("server running")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("server stopped")
			stop()
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}
