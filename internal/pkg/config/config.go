package config

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port     string `env:"PORT,      default=3000"`
	Env      string `env:"ENV,       default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	JWT       JWTConfig
	DB        DBConfig
	Redis     RedisConfig
	RateLimit RateLimitConfig
}

type JWTConfig struct {
	Secret    string        `env:"JWT_SECRET, required"`
	ExpiresIn time.Duration `env:"JWT_EXPIRES_IN, default=168h"`
	Issuer    string        `env:"JWT_ISSUER, default=auth-api"`
	Audience  string        `env:"JWT_AUDIENCE, default=auth-api-users"`
	// BcryptCost lives here because it is read together with the token
	// settings when the security layer is built.
	BcryptCost int `env:"BCRYPT_COST, default=12"`
}

type DBConfig struct {
	URL             string        `env:"DATABASE_URL"`
	Host            string        `env:"DB_HOST,     default=localhost"`
	Port            string        `env:"DB_PORT,     default=5432"`
	User            string        `env:"DB_USER,     default=postgres"`
	Password        string        `env:"DB_PASSWORD"`
	Name            string        `env:"DB_NAME,     default=auth_api"`
	SSLMode         string        `env:"DB_SSLMODE,  default=disable"`
	MaxConns        int32         `env:"DB_MAX_CONNS, default=10"`
	MinConns        int32         `env:"DB_MIN_CONNS, default=0"`
	MaxConnLifetime time.Duration `env:"DB_MAX_CONN_LIFETIME, default=1h"`
}

type RedisConfig struct {
	// Addr empty disables rate limiting.
	Addr     string `env:"REDIS_ADDR"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB, default=0"`
}

type RateLimitConfig struct {
	Window    time.Duration `env:"RATE_LIMIT_WINDOW,     default=15m"`
	GlobalMax int           `env:"RATE_LIMIT_GLOBAL_MAX, default=100"`
	AuthMax   int           `env:"RATE_LIMIT_AUTH_MAX,   default=5"`
}

// DSN returns DATABASE_URL when set, otherwise a postgres URL built from the
// DB_* parts.
func (c DBConfig) DSN() string {
	if c.URL != "" {
		return c.URL
	}
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     net.JoinHostPort(c.Host, c.Port),
		Path:     "/" + c.Name,
		RawQuery: url.Values{"sslmode": {c.SSLMode}}.Encode(),
	}
	if c.Password == "" {
		u.User = url.User(c.User)
	}
	return u.String()
}

// IsDevelopment enables human-friendly console logging.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// Validate checks constraints envconfig tags cannot express.
func (c *Config) Validate() error {
	var errs []error
	if c.JWT.Secret == "" {
		errs = append(errs, errors.New("JWT_SECRET must not be empty"))
	}
	if c.JWT.ExpiresIn <= 0 {
		errs = append(errs, errors.New("JWT_EXPIRES_IN must be positive"))
	}
	if c.RateLimit.Window <= 0 {
		errs = append(errs, errors.New("RATE_LIMIT_WINDOW must be positive"))
	}
	if c.RateLimit.GlobalMax < 0 || c.RateLimit.AuthMax < 0 {
		errs = append(errs, errors.New("rate limit maxima must not be negative"))
	}
	return errors.Join(errs...)
}

// Process reads and validates configuration from the given lookuper.
func Process(ctx context.Context, lookuper envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &cfg,
		Lookuper: lookuper,
	}); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Load reads configuration from environment variables using go-envconfig.
// A missing JWT_SECRET aborts startup.
func Load() *Config {
	cfg, err := Process(context.Background(), envconfig.OsLookuper())
	if err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}
	return cfg
}
