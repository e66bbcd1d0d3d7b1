package config

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port      string `env:"PORT,      default=8080"`
	Env       string `env:"ENV,       default=development"`
	LogLevel  string `env:"LOG_LEVEL, default=info"`
	LogPretty bool   `env:"LOG_PRETTY, default=false"`

	Session SessionConfig
	Backend BackendConfig
	Audit   AuditConfig
	Mongo   MongoConfig
	Redis   RedisConfig
	DevAPI  DevAPIConfig
}

type SessionConfig struct {
	Secret       string        `env:"SESSION_SECRET"`
	CookieName   string        `env:"SESSION_COOKIE,       default=academy_session"`
	TTL          time.Duration `env:"SESSION_TTL,          default=0s"`
	CookieMaxAge time.Duration `env:"COOKIE_MAX_AGE,       default=720h"`
	CookieSecure bool          `env:"COOKIE_SECURE,        default=true"`
	LoadTimeout  time.Duration `env:"SESSION_LOAD_TIMEOUT, default=2s"`
}

type BackendConfig struct {
	URL     string        `env:"BACKEND_URL,     default=http://localhost:5000/api"`
	Timeout time.Duration `env:"BACKEND_TIMEOUT, default=10s"`
}

type AuditConfig struct {
	Workers int `env:"AUDIT_WORKERS, default=4"`
}

type MongoConfig struct {
	URI      string        `env:"MONGO_URI,     default=mongodb://localhost:27017"`
	Database string        `env:"MONGO_DB,      default=academy_portal"`
	Timeout  time.Duration `env:"MONGO_TIMEOUT, default=10s"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR,      default=localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB,        default=0"`
	PoolSize int    `env:"REDIS_POOL_SIZE, default=20"`
}

// DevAPIConfig configures cmd/devapi, the local stand-in for the academy API.
type DevAPIConfig struct {
	Port      string        `env:"DEVAPI_PORT,       default=5000"`
	JWTSecret string        `env:"DEVAPI_JWT_SECRET"`
	TokenTTL  time.Duration `env:"DEVAPI_TOKEN_TTL,  default=24h"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load(ctx context.Context) (*Config, error) {
	return load(ctx, envconfig.OsLookuper())
}

func load(ctx context.Context, lookuper envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: lookuper}); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return &cfg, nil
}

// ValidatePortal checks the settings cmd/portal cannot run without.
func (c *Config) ValidatePortal() error {
	if len(c.Session.Secret) < 32 {
		return errors.New("config: SESSION_SECRET must be at least 32 bytes")
	}
	if c.Backend.URL == "" {
		return errors.New("config: BACKEND_URL is required")
	}
	return nil
}

// ValidateDevAPI checks the settings cmd/devapi cannot run without.
func (c *Config) ValidateDevAPI() error {
	if c.DevAPI.JWTSecret == "" {
		return errors.New("config: DEVAPI_JWT_SECRET is required")
	}
	return nil
}

// IsProduction reports whether Env names a production deployment.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}
