package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application.
// Every environment variable is read here and nowhere else.
type Config struct {
	// Server
	Port string
	Env  string // development, staging, production

	// Logging
	LogLevel  string
	LogFormat string

	// Engines
	Fiscal     FiscalConfig
	Simulation SimulationConfig
	Optimizer  OptimizerConfig

	// Caller-side infrastructure (all optional)
	Database  DatabaseConfig
	Redis     RedisConfig
	Retention RetentionConfig
}

// FiscalConfig holds the national deduction parameters shared by every region.
type FiscalConfig struct {
	NationalRate    float64 // national deduction rate (0.0 ~ 1.0)
	NationalCapBase float64 // max investment base eligible for the national deduction
	MinInvestment   float64 // investments below this floor are rejected
	CatalogPath     string  // optional YAML override for the embedded jurisdiction catalog
}

// SimulationConfig holds the stochastic worker parameters.
type SimulationConfig struct {
	Timeout       time.Duration // hard timeout enforced by the caller
	MaxConcurrent int           // simultaneous simulations
	Bins          int           // default histogram bins
	RiskFreeRate  float64       // percent, used by Sharpe/Sortino
	RateLimit     int           // simulate requests per minute (API only)
}

// OptimizerConfig holds the randomized search parameters.
type OptimizerConfig struct {
	RiskFreeRate float64 // fraction, used by the Sharpe objective
	Seed         int64   // fixed seed keeps Optimize idempotent
	Workers      int     // goroutines per randomized search
}

// DatabaseConfig holds PostgreSQL configuration for run history.
type DatabaseConfig struct {
	URL string

	// Connection Pool
	MaxConns        int
	MinConns        int
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

// Enabled reports whether run history persistence is configured.
func (d DatabaseConfig) Enabled() bool {
	return d.URL != ""
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	Enabled  bool
}

// RetentionConfig controls the history purge job.
type RetentionConfig struct {
	HistoryTTL time.Duration
	Schedule   string // cron expression with seconds field
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Try multiple paths for .env file
	loadEnvFile()

	cfg := &Config{
		// Server
		Port: getEnv("PORT", "8080"),
		Env:  getEnv("ENV", "development"),

		// Logging
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),

		Fiscal: FiscalConfig{
			NationalRate:    getEnvAsFloat("NATIONAL_RATE", 0.5),
			NationalCapBase: getEnvAsFloat("NATIONAL_CAP_BASE", 100000),
			MinInvestment:   getEnvAsFloat("MIN_INVESTMENT", 1000),
			CatalogPath:     getEnv("CATALOG_PATH", ""),
		},

		Simulation: SimulationConfig{
			Timeout:       getEnvAsDuration("SIMULATION_TIMEOUT", "30s"),
			MaxConcurrent: getEnvAsInt("SIMULATION_MAX_CONCURRENT", 4),
			Bins:          getEnvAsInt("SIMULATION_BINS", 20),
			RiskFreeRate:  getEnvAsFloat("SIMULATION_RISK_FREE_RATE", 2.0),
			RateLimit:     getEnvAsInt("SIMULATION_RATE_LIMIT", 30),
		},

		Optimizer: OptimizerConfig{
			RiskFreeRate: getEnvAsFloat("RISK_FREE_RATE", 0.02),
			Seed:         int64(getEnvAsInt("OPTIMIZER_SEED", 42)),
			Workers:      getEnvAsInt("OPTIMIZER_WORKERS", 4),
		},

		Database: DatabaseConfig{
			URL:             getEnv("DATABASE_URL", ""),
			MaxConns:        getEnvAsInt("DB_MAX_CONNS", 10),
			MinConns:        getEnvAsInt("DB_MIN_CONNS", 1),
			MaxConnLifetime: getEnvAsDuration("DB_MAX_CONN_LIFETIME", "1h"),
			MaxConnIdleTime: getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", "30m"),
		},

		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			Enabled:  getEnvAsBool("REDIS_ENABLED", false),
		},

		Retention: RetentionConfig{
			HistoryTTL: getEnvAsDuration("HISTORY_RETENTION", "720h"),
			Schedule:   getEnv("HISTORY_PURGE_SCHEDULE", "0 30 3 * * *"),
		},
	}

	// Validate configuration
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// validate checks that configuration values are usable
func (c *Config) validate() error {
	if c.Env != "development" && c.Env != "staging" && c.Env != "production" {
		return fmt.Errorf("ENV must be one of: development, staging, production")
	}

	if c.Fiscal.NationalRate <= 0 || c.Fiscal.NationalRate > 1 {
		return fmt.Errorf("NATIONAL_RATE must be in (0, 1], got %v", c.Fiscal.NationalRate)
	}
	if c.Fiscal.NationalCapBase < 0 {
		return fmt.Errorf("NATIONAL_CAP_BASE must be >= 0")
	}
	if c.Fiscal.MinInvestment < 0 {
		return fmt.Errorf("MIN_INVESTMENT must be >= 0")
	}

	if c.Simulation.Timeout <= 0 {
		return fmt.Errorf("SIMULATION_TIMEOUT must be > 0")
	}
	if c.Simulation.MaxConcurrent <= 0 {
		return fmt.Errorf("SIMULATION_MAX_CONCURRENT must be > 0")
	}
	if c.Simulation.Bins <= 0 {
		return fmt.Errorf("SIMULATION_BINS must be > 0")
	}

	if c.Optimizer.Workers <= 0 {
		return fmt.Errorf("OPTIMIZER_WORKERS must be > 0")
	}

	return nil
}

// Helper functions (private, only used within this file)

// loadEnvFile tries to load .env from multiple locations
func loadEnvFile() {
	paths := []string{
		".env",
	}

	// Also try relative to executable
	if exe, err := os.Executable(); err == nil {
		exeDir := filepath.Dir(exe)
		paths = append(paths,
			filepath.Join(exeDir, ".env"),
			filepath.Join(exeDir, "..", ".env"),
		)
	}

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			return
		}
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		valueStr = defaultValue
	}

	duration, err := time.ParseDuration(valueStr)
	if err != nil {
		// Fallback to default
		duration, _ = time.ParseDuration(defaultValue)
	}

	return duration
}
