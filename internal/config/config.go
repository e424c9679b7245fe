package config

import (
	"fmt"
	"net/url"
	"slices"
	"time"

	pkgconfig "github.com/journalist-service/server/pkg/config"
	"github.com/journalist-service/server/pkg/database"
)

const defaultJWTSecret = "change-this-to-a-secure-secret"

// Store drivers.
const (
	StoreMongo    = "mongo"
	StorePostgres = "postgres"
	StoreMemory   = "memory"
)

// Config holds all configuration for the journalist server.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// HTTP server
	HTTPPort        int           `env:"PORT" envDefault:"5000"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`

	// Record store
	StoreDriver string `env:"STORE_DRIVER" envDefault:"mongo"`

	// MongoDB
	DBUser       string `env:"DB_USER"`
	DBPassword   string `env:"DB_PASSWORD"`
	MongoHost    string `env:"MONGO_HOST" envDefault:"cluster0.mongodb.net"`
	MongoDBName  string `env:"MONGO_DB_NAME" envDefault:"journalist"`
	MongoRawURI  string `env:"MONGO_URI"`
	MongoMaxPool uint64 `env:"MONGO_MAX_POOL_SIZE" envDefault:"20"`

	// PostgreSQL
	PostgresHost     string `env:"POSTGRES_HOST" envDefault:"localhost"`
	PostgresPort     int    `env:"POSTGRES_PORT" envDefault:"5432"`
	PostgresUser     string `env:"POSTGRES_USER" envDefault:"journalist"`
	PostgresPass     string `env:"POSTGRES_PASSWORD" envDefault:"journalist"`
	PostgresDB       string `env:"POSTGRES_DB" envDefault:"journalist"`
	PostgresSSL      string `env:"POSTGRES_SSL_MODE" envDefault:"disable"`
	PostgresMaxConns int32  `env:"POSTGRES_MAX_CONNS" envDefault:"10"`

	SlowQueryThreshold time.Duration `env:"SLOW_QUERY_THRESHOLD" envDefault:"200ms"`

	// Kafka
	KafkaEnabled bool     `env:"KAFKA_ENABLED" envDefault:"false"`
	KafkaBrokers []string `env:"KAFKA_BROKERS" envDefault:"localhost:9092" envSeparator:","`

	// JWT
	JWTSecret   string        `env:"JWT_SECRET" envDefault:"change-this-to-a-secure-secret"`
	JWTTokenTTL time.Duration `env:"JWT_TOKEN_TTL" envDefault:"1h"`

	// OpenTelemetry
	OTELEnabled    bool    `env:"OTEL_ENABLED" envDefault:"false"`
	OTELEndpoint   string  `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:"localhost:4318"`
	OTELSampleRate float64 `env:"OTEL_SAMPLE_RATE" envDefault:"1.0"`
	OTELInsecure   bool    `env:"OTEL_EXPORTER_OTLP_INSECURE" envDefault:"true"`

	// Debug and metrics access
	PprofAllowedCIDRs   []string `env:"PPROF_ALLOWED_CIDRS" envSeparator:","`
	MetricsAllowedCIDRs []string `env:"METRICS_ALLOWED_CIDRS" envSeparator:","`

	// CORS
	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envDefault:"*" envSeparator:","`

	// Rate limiting, disabled when RPS is 0
	RateLimitRPS   float64 `env:"RATE_LIMIT_RPS" envDefault:"0"`
	RateLimitBurst int     `env:"RATE_LIMIT_BURST" envDefault:"20"`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := pkgconfig.Load(cfg); err != nil {
		return nil, fmt.Errorf("load journalist config: %w", err)
	}
	if cfg.HTTPPort < 1 || cfg.HTTPPort > 65535 {
		return nil, fmt.Errorf("invalid HTTP port: %d", cfg.HTTPPort)
	}
	if !slices.Contains([]string{StoreMongo, StorePostgres, StoreMemory}, cfg.StoreDriver) {
		return nil, fmt.Errorf("invalid STORE_DRIVER %q: want mongo, postgres or memory", cfg.StoreDriver)
	}
	if cfg.OTELSampleRate < 0 || cfg.OTELSampleRate > 1 {
		return nil, fmt.Errorf("OTEL_SAMPLE_RATE must be within [0, 1], got %g", cfg.OTELSampleRate)
	}
	if cfg.JWTTokenTTL <= 0 {
		return nil, fmt.Errorf("JWT_TOKEN_TTL must be positive, got %s", cfg.JWTTokenTTL)
	}

	// In non-development environments, require an explicitly set, strong JWT secret.
	if cfg.Environment != "development" {
		if cfg.JWTSecret == defaultJWTSecret {
			return nil, fmt.Errorf("JWT_SECRET must be explicitly set via environment variable in %q mode", cfg.Environment)
		}
		if len(cfg.JWTSecret) < 32 {
			return nil, fmt.Errorf("JWT_SECRET must be at least 32 characters long, got %d", len(cfg.JWTSecret))
		}
	}

	return cfg, nil
}

// MongoURI returns MONGO_URI when set, otherwise an SRV connection string
// built from DB_USER, DB_PASSWORD and MONGO_HOST.
func (c *Config) MongoURI() string {
	if c.MongoRawURI != "" {
		return c.MongoRawURI
	}
	u := url.URL{
		Scheme:   "mongodb+srv",
		Host:     c.MongoHost,
		Path:     "/",
		RawQuery: "retryWrites=true&w=majority",
	}
	if c.DBUser != "" {
		u.User = url.UserPassword(c.DBUser, c.DBPassword)
	}
	return u.String()
}

// MongoConfig returns the MongoDB client settings.
func (c *Config) MongoConfig() *database.MongoConfig {
	return &database.MongoConfig{
		URI:            c.MongoURI(),
		Database:       c.MongoDBName,
		AppName:        "journalist-service",
		MaxPoolSize:    c.MongoMaxPool,
		ConnectTimeout: 10 * time.Second,
	}
}

// PostgresConfig returns the PostgreSQL pool settings.
func (c *Config) PostgresConfig() *database.PostgresConfig {
	pg := database.DefaultPostgresConfig()
	pg.Host = c.PostgresHost
	pg.Port = c.PostgresPort
	pg.User = c.PostgresUser
	pg.Password = c.PostgresPass
	pg.DBName = c.PostgresDB
	pg.SSLMode = c.PostgresSSL
	pg.MaxConns = c.PostgresMaxConns
	return &pg
}
