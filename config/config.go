package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Storage drivers.
const (
	StoragePostgres = "postgres"
	StorageMemory   = "memory"
)

// Route strategies.
const (
	RoutePlaceholder     = "placeholder"
	RouteNearestNeighbor = "nearest_neighbor"
)

// Config holds all configuration for the application.
type Config struct {
	Server   ServerConfig
	Postgres PostgresConfig
	Redis    RedisConfig
	Log      LogConfig
	Auth     AuthConfig
	Storage  StorageConfig
	Dispatch DispatchConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host         string        `mapstructure:"SERVER_HOST"`
	Port         int           `mapstructure:"SERVER_PORT"`
	ReadTimeout  time.Duration `mapstructure:"SERVER_READ_TIMEOUT"`
	WriteTimeout time.Duration `mapstructure:"SERVER_WRITE_TIMEOUT"`
	IdleTimeout  time.Duration `mapstructure:"SERVER_IDLE_TIMEOUT"`
}

// PostgresConfig holds PostgreSQL connection settings.
type PostgresConfig struct {
	Host     string `mapstructure:"POSTGRES_HOST"`
	Port     int    `mapstructure:"POSTGRES_PORT"`
	User     string `mapstructure:"POSTGRES_USER"`
	Password string `mapstructure:"POSTGRES_PASSWORD"`
	DBName   string `mapstructure:"POSTGRES_DB"`
	SSLMode  string `mapstructure:"POSTGRES_SSLMODE"`
	MaxConns int32  `mapstructure:"POSTGRES_MAX_CONNS"`
	MinConns int32  `mapstructure:"POSTGRES_MIN_CONNS"`
}

// RedisConfig holds Redis connection settings.
type RedisConfig struct {
	Host     string `mapstructure:"REDIS_HOST"`
	Port     int    `mapstructure:"REDIS_PORT"`
	Password string `mapstructure:"REDIS_PASSWORD"`
	DB       int    `mapstructure:"REDIS_DB"`
	PoolSize int    `mapstructure:"REDIS_POOL_SIZE"`
}

// LogConfig controls the zap logger.
type LogConfig struct {
	Level       string `mapstructure:"LOG_LEVEL"`
	Format      string `mapstructure:"LOG_FORMAT"`
	ServiceName string `mapstructure:"LOG_SERVICE_NAME"`
}

// AuthConfig controls bearer-token authentication on the provider API.
type AuthConfig struct {
	Enabled   bool   `mapstructure:"AUTH_ENABLED"`
	JWTSecret string `mapstructure:"JWT_SECRET"`
}

// StorageConfig selects the backing store.
type StorageConfig struct {
	Driver string `mapstructure:"STORAGE_DRIVER"`
}

// DispatchConfig holds dispatch, scheduling and routing settings.
type DispatchConfig struct {
	Timezone       string        `mapstructure:"DISPATCH_TIMEZONE"`
	RouteStrategy  string        `mapstructure:"DISPATCH_ROUTE_STRATEGY"`
	DistanceAware  bool          `mapstructure:"DISPATCH_DISTANCE_AWARE"`
	DistanceWeight float64       `mapstructure:"DISPATCH_DISTANCE_WEIGHT"`
	RulesFile      string        `mapstructure:"DISPATCH_RULES_FILE"`
	StatsCacheTTL  time.Duration `mapstructure:"DISPATCH_STATS_CACHE_TTL"`

	// Rules is DefaultClassifierRules unless RulesFile overrides it.
	Rules ClassifierRules `mapstructure:"-"`
	// Location is Timezone resolved by Load.
	Location *time.Location `mapstructure:"-"`
}

// DSN returns the PostgreSQL connection string.
func (p *PostgresConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		p.User, p.Password, p.Host, p.Port, p.DBName, p.SSLMode,
	)
}

// Addr returns the Redis address in host:port format.
func (r *RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// ServerAddr returns the HTTP listen address in host:port format.
func (s *ServerConfig) ServerAddr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// Load reads configuration from environment variables and .env file.
func Load() (*Config, error) {
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")
	viper.AutomaticEnv()

	// ── Defaults ────────────────────────────────────────
	viper.SetDefault("SERVER_HOST", "0.0.0.0")
	viper.SetDefault("SERVER_PORT", 8080)
	viper.SetDefault("SERVER_READ_TIMEOUT", "5s")
	viper.SetDefault("SERVER_WRITE_TIMEOUT", "10s")
	viper.SetDefault("SERVER_IDLE_TIMEOUT", "120s")

	viper.SetDefault("POSTGRES_HOST", "localhost")
	viper.SetDefault("POSTGRES_PORT", 5432)
	viper.SetDefault("POSTGRES_USER", "propdispatch")
	viper.SetDefault("POSTGRES_PASSWORD", "propdispatch_secret")
	viper.SetDefault("POSTGRES_DB", "propdispatch")
	viper.SetDefault("POSTGRES_SSLMODE", "disable")
	viper.SetDefault("POSTGRES_MAX_CONNS", 20)
	viper.SetDefault("POSTGRES_MIN_CONNS", 2)

	viper.SetDefault("REDIS_HOST", "localhost")
	viper.SetDefault("REDIS_PORT", 6379)
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("REDIS_DB", 0)
	viper.SetDefault("REDIS_POOL_SIZE", 20)

	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("LOG_FORMAT", "json")
	viper.SetDefault("LOG_SERVICE_NAME", "propdispatch")

	viper.SetDefault("AUTH_ENABLED", false)
	viper.SetDefault("JWT_SECRET", "")

	viper.SetDefault("STORAGE_DRIVER", StoragePostgres)

	viper.SetDefault("DISPATCH_TIMEZONE", "UTC")
	viper.SetDefault("DISPATCH_ROUTE_STRATEGY", RoutePlaceholder)
	viper.SetDefault("DISPATCH_DISTANCE_AWARE", false)
	viper.SetDefault("DISPATCH_DISTANCE_WEIGHT", 0.05)
	viper.SetDefault("DISPATCH_RULES_FILE", "")
	viper.SetDefault("DISPATCH_STATS_CACHE_TTL", "30s")

	// Try to read .env file. If it doesn't exist (e.g., inside Docker),
	// env vars injected by docker-compose env_file are used instead.
	_ = viper.ReadInConfig()

	cfg := &Config{}

	// ── Server ──────────────────────────────────────────
	cfg.Server = ServerConfig{
		Host:         viper.GetString("SERVER_HOST"),
		Port:         viper.GetInt("SERVER_PORT"),
		ReadTimeout:  viper.GetDuration("SERVER_READ_TIMEOUT"),
		WriteTimeout: viper.GetDuration("SERVER_WRITE_TIMEOUT"),
		IdleTimeout:  viper.GetDuration("SERVER_IDLE_TIMEOUT"),
	}

	// ── Postgres ────────────────────────────────────────
	cfg.Postgres = PostgresConfig{
		Host:     viper.GetString("POSTGRES_HOST"),
		Port:     viper.GetInt("POSTGRES_PORT"),
		User:     viper.GetString("POSTGRES_USER"),
		Password: viper.GetString("POSTGRES_PASSWORD"),
		DBName:   viper.GetString("POSTGRES_DB"),
		SSLMode:  viper.GetString("POSTGRES_SSLMODE"),
		MaxConns: viper.GetInt32("POSTGRES_MAX_CONNS"),
		MinConns: viper.GetInt32("POSTGRES_MIN_CONNS"),
	}

	// ── Redis ───────────────────────────────────────────
	cfg.Redis = RedisConfig{
		Host:     viper.GetString("REDIS_HOST"),
		Port:     viper.GetInt("REDIS_PORT"),
		Password: viper.GetString("REDIS_PASSWORD"),
		DB:       viper.GetInt("REDIS_DB"),
		PoolSize: viper.GetInt("REDIS_POOL_SIZE"),
	}

	// ── Log / Auth / Storage ────────────────────────────
	cfg.Log = LogConfig{
		Level:       viper.GetString("LOG_LEVEL"),
		Format:      viper.GetString("LOG_FORMAT"),
		ServiceName: viper.GetString("LOG_SERVICE_NAME"),
	}
	cfg.Auth = AuthConfig{
		Enabled:   viper.GetBool("AUTH_ENABLED"),
		JWTSecret: viper.GetString("JWT_SECRET"),
	}
	cfg.Storage = StorageConfig{
		Driver: viper.GetString("STORAGE_DRIVER"),
	}

	// ── Dispatch ────────────────────────────────────────
	cfg.Dispatch = DispatchConfig{
		Timezone:       viper.GetString("DISPATCH_TIMEZONE"),
		RouteStrategy:  viper.GetString("DISPATCH_ROUTE_STRATEGY"),
		DistanceAware:  viper.GetBool("DISPATCH_DISTANCE_AWARE"),
		DistanceWeight: viper.GetFloat64("DISPATCH_DISTANCE_WEIGHT"),
		RulesFile:      viper.GetString("DISPATCH_RULES_FILE"),
		StatsCacheTTL:  viper.GetDuration("DISPATCH_STATS_CACHE_TTL"),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	loc, err := time.LoadLocation(cfg.Dispatch.Timezone)
	if err != nil {
		return nil, fmt.Errorf("config: DISPATCH_TIMEZONE: %w", err)
	}
	cfg.Dispatch.Location = loc

	cfg.Dispatch.Rules = DefaultClassifierRules()
	if cfg.Dispatch.RulesFile != "" {
		rules, err := LoadClassifierRules(cfg.Dispatch.RulesFile)
		if err != nil {
			return nil, err
		}
		cfg.Dispatch.Rules = rules
	}

	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Storage.Driver {
	case StoragePostgres, StorageMemory:
	default:
		return fmt.Errorf("config: STORAGE_DRIVER must be %q or %q, got %q",
			StoragePostgres, StorageMemory, c.Storage.Driver)
	}
	switch c.Dispatch.RouteStrategy {
	case RoutePlaceholder, RouteNearestNeighbor:
	default:
		return fmt.Errorf("config: DISPATCH_ROUTE_STRATEGY must be %q or %q, got %q",
			RoutePlaceholder, RouteNearestNeighbor, c.Dispatch.RouteStrategy)
	}
	if c.Auth.Enabled && c.Auth.JWTSecret == "" {
		return fmt.Errorf("config: JWT_SECRET is required when AUTH_ENABLED is true")
	}
	if c.Dispatch.DistanceWeight < 0 {
		return fmt.Errorf("config: DISPATCH_DISTANCE_WEIGHT must be >= 0")
	}
	return nil
}
