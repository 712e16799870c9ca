// Package config loads the module's configuration: environment variables
// first, an optional .env file underneath, validated against both the
// teacher's manual Validate() pass and struct-tag rules for the fields
// this module adds on top of the teacher's surface.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig
	Postgres PostgresConfig
	Oracle   OracleConfig
	JWT      JWTConfig
	Logging  LoggingConfig
	Pipeline PipelineConfig
}

// ServerConfig holds HTTP server configuration for the optional web API.
type ServerConfig struct {
	Port            string        `validate:"required"`
	Host            string        `validate:"required"`
	ReadTimeout     time.Duration `validate:"gt=0"`
	WriteTimeout    time.Duration `validate:"gt=0"`
	ShutdownTimeout time.Duration `validate:"gt=0"`
}

// PostgresConfig holds PostgreSQL connection configuration for the optional
// Finding/UnifiedMetrics history store.
type PostgresConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
	MaxConns int `validate:"gte=1"`
	MinConns int `validate:"gte=0"`
}

// OracleConfig holds Oracle connection configuration for the optional
// live-session snapshot capture path.
type OracleConfig struct {
	Host        string
	Port        string
	ServiceName string
	Username    string
	Password    string
	MaxConns    int `validate:"gte=1"`
	MinConns    int `validate:"gte=0"`
}

// JWTConfig holds the optional web API's bearer-token configuration.
type JWTConfig struct {
	Secret     string
	Expiration time.Duration
	Issuer     string
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `validate:"oneof=debug info warn error"`
	Format string `validate:"oneof=json console"`
}

// PipelineConfig holds settings specific to the analysis pipeline itself,
// not carried by the teacher: a default CPU core count, a cache eviction
// toggle and an advisor time limit, loaded from PIPELINE_* variables and
// validated here. No other package reads them: the parser, the Unified
// Metrics cache and the SQL generator use their own fixed defaults.
type PipelineConfig struct {
	DefaultCPUCores  int           `validate:"gte=1"`
	CacheEvictionOn  bool
	AdvisorTimeLimit time.Duration `validate:"gt=0"`
}

var validate = validator.New()

// Load loads configuration from environment variables, optionally
// preceded by a .env file in the working directory.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Port:            getEnv("SERVER_PORT", "8080"),
			Host:            getEnv("SERVER_HOST", "0.0.0.0"),
			ReadTimeout:     getDurationEnv("SERVER_READ_TIMEOUT", 15*time.Second),
			WriteTimeout:    getDurationEnv("SERVER_WRITE_TIMEOUT", 15*time.Second),
			ShutdownTimeout: getDurationEnv("SERVER_SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		Postgres: PostgresConfig{
			Host:     getEnv("POSTGRES_HOST", "localhost"),
			Port:     getEnv("POSTGRES_PORT", "5432"),
			User:     getEnv("POSTGRES_USER", "postgres"),
			Password: getEnv("POSTGRES_PASSWORD", ""),
			DBName:   getEnv("POSTGRES_DB", "awr_advisor"),
			SSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),
			MaxConns: getIntEnv("POSTGRES_MAX_CONNS", 25),
			MinConns: getIntEnv("POSTGRES_MIN_CONNS", 5),
		},
		Oracle: OracleConfig{
			Host:        getEnv("ORACLE_HOST", "localhost"),
			Port:        getEnv("ORACLE_PORT", "1521"),
			ServiceName: getEnv("ORACLE_SERVICE_NAME", "ORCLPDB1"),
			Username:    getEnv("ORACLE_USERNAME", ""),
			Password:    getEnv("ORACLE_PASSWORD", ""),
			MaxConns:    getIntEnv("ORACLE_MAX_CONNS", 10),
			MinConns:    getIntEnv("ORACLE_MIN_CONNS", 2),
		},
		JWT: JWTConfig{
			Secret:     getEnv("JWT_SECRET", ""),
			Expiration: getDurationEnv("JWT_EXPIRATION", 24*time.Hour),
			Issuer:     getEnv("JWT_ISSUER", "awr-advisor"),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
		Pipeline: PipelineConfig{
			DefaultCPUCores:  getIntEnv("PIPELINE_DEFAULT_CPU_CORES", 8),
			CacheEvictionOn:  getBoolEnv("PIPELINE_CACHE_EVICTION", true),
			AdvisorTimeLimit: getDurationEnv("PIPELINE_ADVISOR_TIME_LIMIT", 30*time.Second),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks the JWT secret length by hand (only when a secret is
// set), then runs struct-tag validation on every section except JWT.
func (c *Config) Validate() error {
	if c.JWT.Secret != "" && len(c.JWT.Secret) < 32 {
		return fmt.Errorf("JWT_SECRET must be at least 32 characters")
	}

	if err := validate.Struct(c.Server); err != nil {
		return fmt.Errorf("server config: %w", err)
	}
	if err := validate.Struct(c.Postgres); err != nil {
		return fmt.Errorf("postgres config: %w", err)
	}
	if err := validate.Struct(c.Oracle); err != nil {
		return fmt.Errorf("oracle config: %w", err)
	}
	if err := validate.Struct(c.Logging); err != nil {
		return fmt.Errorf("logging config: %w", err)
	}
	if err := validate.Struct(c.Pipeline); err != nil {
		return fmt.Errorf("pipeline config: %w", err)
	}
	return nil
}

// DSN returns the PostgreSQL connection string.
func (c *PostgresConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

// DSN returns the Oracle connection string in user/pass@host:port/service form.
func (c *OracleConfig) DSN() string {
	return fmt.Sprintf(
		"%s/%s@%s:%s/%s",
		c.Username, c.Password, c.Host, c.Port, c.ServiceName,
	)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}
