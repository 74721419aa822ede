package config

import (
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/caarlos0/env/v11"
)

const (
	BackendBolt   = "bolt"
	BackendMemory = "memory"
	BackendRedis  = "redis"
	BackendMySQL  = "mysql"
	BackendSQLite = "sqlite"
)

var ErrInvalidConfig = errors.New("invalid config")

// Client configures the storefront command.
type Client struct {
	APIURL         string        `env:"STOREFRONT_API_URL" envDefault:"http://localhost:8081/api"`
	StateBackend   string        `env:"STOREFRONT_STATE_BACKEND" envDefault:"bolt"`
	StatePath      string        `env:"STOREFRONT_STATE_PATH" envDefault:"storefront.db"`
	RedisAddr      string        `env:"STOREFRONT_REDIS_ADDR" envDefault:"localhost:6379"`
	MySQLDSN       string        `env:"STOREFRONT_MYSQL_DSN" envDefault:"root:root@tcp(localhost:3306)/storefront"`
	Namespace      string        `env:"STOREFRONT_NAMESPACE" envDefault:"default"`
	RequestTimeout time.Duration `env:"STOREFRONT_REQUEST_TIMEOUT" envDefault:"10s"`
	Debug          bool          `env:"STOREFRONT_DEBUG"`
	OTelEndpoint   string        `env:"STOREFRONT_OTEL_ENDPOINT"`
}

// Server configures the reference commerce service.
type Server struct {
	HTTPAddr      string        `env:"DEVSERVER_HTTP_ADDR" envDefault:":8081"`
	GRPCAddr      string        `env:"DEVSERVER_GRPC_ADDR" envDefault:":50051"`
	JWTSecret     string        `env:"DEVSERVER_JWT_SECRET" envDefault:"dev-secret-change-me"`
	TokenTTL      time.Duration `env:"DEVSERVER_TOKEN_TTL" envDefault:"24h"`
	AdminEmail    string        `env:"DEVSERVER_ADMIN_EMAIL" envDefault:"admin@bookstore.com"`
	AdminPassword string        `env:"DEVSERVER_ADMIN_PASSWORD" envDefault:"admin123"`
	Seed          bool          `env:"DEVSERVER_SEED" envDefault:"true"`
	OTelEndpoint  string        `env:"DEVSERVER_OTEL_ENDPOINT"`
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

func LoadClient() (Client, error) {
	var cfg Client
	if err := ParseEnv(&cfg); err != nil {
		return Client{}, err
	}
	return cfg, cfg.Validate()
}

func LoadServer() (Server, error) {
	var cfg Server
	if err := ParseEnv(&cfg); err != nil {
		return Server{}, err
	}
	return cfg, cfg.Validate()
}

func (c Client) Validate() error {
	u, err := url.Parse(c.APIURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("%w: STOREFRONT_API_URL %q is not an absolute URL", ErrInvalidConfig, c.APIURL)
	}

	switch c.StateBackend {
	case BackendBolt, BackendSQLite:
		if c.StatePath == "" {
			return fmt.Errorf("%w: STOREFRONT_STATE_PATH is required for %s", ErrInvalidConfig, c.StateBackend)
		}
	case BackendRedis:
		if c.RedisAddr == "" {
			return fmt.Errorf("%w: STOREFRONT_REDIS_ADDR is required", ErrInvalidConfig)
		}
	case BackendMySQL:
		if c.MySQLDSN == "" {
			return fmt.Errorf("%w: STOREFRONT_MYSQL_DSN is required", ErrInvalidConfig)
		}
	case BackendMemory:
	default:
		return fmt.Errorf("%w: unknown state backend %q", ErrInvalidConfig, c.StateBackend)
	}

	if c.RequestTimeout <= 0 {
		return fmt.Errorf("%w: STOREFRONT_REQUEST_TIMEOUT must be positive", ErrInvalidConfig)
	}
	return nil
}

func (s Server) Validate() error {
	if s.HTTPAddr == "" {
		return fmt.Errorf("%w: DEVSERVER_HTTP_ADDR is required", ErrInvalidConfig)
	}
	if s.JWTSecret == "" {
		return fmt.Errorf("%w: DEVSERVER_JWT_SECRET is required", ErrInvalidConfig)
	}
	if s.TokenTTL <= 0 {
		return fmt.Errorf("%w: DEVSERVER_TOKEN_TTL must be positive", ErrInvalidConfig)
	}
	if (s.AdminEmail == "") != (s.AdminPassword == "") {
		return fmt.Errorf("%w: DEVSERVER_ADMIN_EMAIL and DEVSERVER_ADMIN_PASSWORD go together", ErrInvalidConfig)
	}
	return nil
}
