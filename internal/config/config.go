package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds all configuration for the application.
type Config struct {
	Server  ServerConfig
	DB      DBConfig
	Log     LogConfig
	Cache   CacheConfig
	Tracing TracingConfig
}

// ServerConfig holds server-related configuration.
type ServerConfig struct {
	Port            string `envconfig:"SERVER_PORT" default:"3000"`
	ShutdownTimeout int    `envconfig:"SHUTDOWN_TIMEOUT" default:"30"` // seconds
	APIPath         string `envconfig:"API_PATH" default:"coupon-admin"`
	CORSOrigins     string `envconfig:"CORS_ORIGINS" default:"*"`
	PageSize        int    `envconfig:"PAGE_SIZE" default:"10"`
}

// BasePath returns the route prefix all coupon endpoints are mounted on.
func (c ServerConfig) BasePath() string {
	return "/v2/api/" + c.APIPath
}

// DBConfig holds database-related configuration.
// WARNING: Default password is for local development only.
type DBConfig struct {
	Host     string `envconfig:"DB_HOST" default:"localhost"`
	Port     int    `envconfig:"DB_PORT" default:"5432"`
	User     string `envconfig:"DB_USER" default:"postgres"`
	Password string `envconfig:"DB_PASSWORD" default:"postgres"` // CHANGE IN PRODUCTION
	Name     string `envconfig:"DB_NAME" default:"coupon_admin"`
	SSLMode  string `envconfig:"DB_SSLMODE" default:"disable"`
	MaxConns int    `envconfig:"DB_MAX_CONNS" default:"10"`
	MinConns int    `envconfig:"DB_MIN_CONNS" default:"2"`
}

// DSN returns the PostgreSQL connection string.
func (c DBConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s&pool_max_conns=%d&pool_min_conns=%d",
		c.User, c.Password, c.Host, c.Port, c.Name, c.SSLMode, c.MaxConns, c.MinConns)
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level  string `envconfig:"LOG_LEVEL" default:"info"`
	Pretty bool   `envconfig:"LOG_PRETTY" default:"false"`
}

// CacheConfig holds configuration for the coupon listing cache.
// An empty RedisAddr selects the in-process cache.
type CacheConfig struct {
	RedisAddr     string        `envconfig:"CACHE_REDIS_ADDR"`
	RedisPassword string        `envconfig:"CACHE_REDIS_PASSWORD"`
	RedisDB       int           `envconfig:"CACHE_REDIS_DB" default:"0"`
	TTL           time.Duration `envconfig:"CACHE_TTL" default:"30s"`
}

// TracingConfig holds OpenTelemetry configuration.
type TracingConfig struct {
	Enabled     bool   `envconfig:"TRACING_ENABLED" default:"false"`
	Endpoint    string `envconfig:"TRACING_ENDPOINT" default:"http://localhost:14268/api/traces"`
	ServiceName string `envconfig:"TRACING_SERVICE_NAME" default:"coupon-admin"`
	Environment string `envconfig:"TRACING_ENVIRONMENT" default:"development"`
}

// Load parses environment variables into the Config struct.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if cfg.Server.PageSize < 1 {
		return nil, fmt.Errorf("PAGE_SIZE must be at least 1, got %d", cfg.Server.PageSize)
	}
	return &cfg, nil
}
