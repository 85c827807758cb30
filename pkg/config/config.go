package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration.
type Config struct {
	// Application
	LogLevel string
	HTTPPort string

	// The Odds API
	OddsAPIKey     string
	OddsAPIBaseURL string
	FeedTimeout    time.Duration

	// Ingestion
	Sports          []string      // league keys to poll, e.g. basketball_nba
	LookbackHorizon time.Duration // only fetch games starting within this horizon
	PollInterval    time.Duration

	// Bookmakers
	SharpBooks []string // market-efficient books used for consensus
	SoftBooks  []string // slower books scanned for discrepancies

	// Value detection
	MinEdgePercent  float64
	MinProbability  float64
	KellyFraction   float64
	DefaultBankroll float64
	MaxBetPercent   float64

	// Storage
	PostgresHost string
	PostgresPort string
	PostgresUser string
	PostgresPass string
	PostgresDB   string
	PostgresSSL  string
}

// LoadFromEnv loads configuration from environment variables with defaults.
func LoadFromEnv() (*Config, error) {
	cfg := &Config{
		// Application defaults
		LogLevel: getEnvOrDefault("LOG_LEVEL", "info"),
		HTTPPort: getEnvOrDefault("HTTP_PORT", "8080"),

		// Feed defaults
		OddsAPIKey:     os.Getenv("ODDS_API_KEY"),
		OddsAPIBaseURL: getEnvOrDefault("ODDS_API_BASE_URL", "https://api.the-odds-api.com/v4"),
		FeedTimeout:    getDurationOrDefault("FEED_TIMEOUT", 10*time.Second),

		// Ingestion defaults
		Sports:          getListOrDefault("SPORTS", []string{"basketball_nba"}),
		LookbackHorizon: getDurationOrDefault("LOOKBACK_HORIZON", 24*time.Hour),
		PollInterval:    getDurationOrDefault("POLL_INTERVAL", 60*time.Minute),

		// Bookmaker defaults
		SharpBooks: getListOrDefault("SHARP_BOOKS", []string{"pinnacle", "betfair"}),
		SoftBooks:  getListOrDefault("SOFT_BOOKS", []string{"draftkings", "fanduel", "bet365", "betmgm"}),

		// Value detection defaults
		MinEdgePercent:  getFloat64OrDefault("MIN_EDGE_PERCENT", 5.0),
		MinProbability:  getFloat64OrDefault("MIN_PROBABILITY", 0.35),
		KellyFraction:   getFloat64OrDefault("KELLY_FRACTION", 0.25),
		DefaultBankroll: getFloat64OrDefault("DEFAULT_BANKROLL", 1000.0),
		MaxBetPercent:   getFloat64OrDefault("MAX_BET_PERCENT", 0.05),

		// Storage defaults
		PostgresHost: getEnvOrDefault("POSTGRES_HOST", "localhost"),
		PostgresPort: getEnvOrDefault("POSTGRES_PORT", "5432"),
		PostgresUser: getEnvOrDefault("POSTGRES_USER", "oddsedge"),
		PostgresPass: getEnvOrDefault("POSTGRES_PASSWORD", "oddsedge"),
		PostgresDB:   getEnvOrDefault("POSTGRES_DB", "oddsedge"),
		PostgresSSL:  getEnvOrDefault("POSTGRES_SSLMODE", "disable"),
	}

	err := cfg.Validate()
	if err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return cfg, nil
}

// Validate checks that configuration values are valid.
func (c *Config) Validate() error {
	if c.OddsAPIKey == "" {
		return fmt.Errorf("ODDS_API_KEY cannot be empty")
	}

	if c.OddsAPIBaseURL == "" {
		return fmt.Errorf("ODDS_API_BASE_URL cannot be empty")
	}

	if len(c.Sports) == 0 {
		return fmt.Errorf("SPORTS cannot be empty")
	}

	if len(c.SharpBooks) == 0 {
		return fmt.Errorf("SHARP_BOOKS cannot be empty")
	}

	if c.MinEdgePercent < 0 {
		return fmt.Errorf("MIN_EDGE_PERCENT must be >= 0, got %f", c.MinEdgePercent)
	}

	if c.MinProbability < 0 || c.MinProbability >= 1 {
		return fmt.Errorf("MIN_PROBABILITY must be in [0, 1), got %f", c.MinProbability)
	}

	if c.KellyFraction <= 0 || c.KellyFraction > 1 {
		return fmt.Errorf("KELLY_FRACTION must be in (0, 1], got %f", c.KellyFraction)
	}

	if c.MaxBetPercent <= 0 || c.MaxBetPercent > 1 {
		return fmt.Errorf("MAX_BET_PERCENT must be in (0, 1], got %f", c.MaxBetPercent)
	}

	return nil
}

// IsSharp reports whether the bookmaker is on the sharp allow-list.
func (c *Config) IsSharp(bookmaker string) bool {
	return contains(c.SharpBooks, bookmaker)
}

// IsSoft reports whether the bookmaker is on the soft allow-list.
func (c *Config) IsSoft(bookmaker string) bool {
	return contains(c.SoftBooks, bookmaker)
}

// AllBooks returns the combined sharp and soft allow-lists.
func (c *Config) AllBooks() []string {
	all := make([]string, 0, len(c.SharpBooks)+len(c.SoftBooks))
	all = append(all, c.SharpBooks...)
	all = append(all, c.SoftBooks...)
	return all
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func getEnvOrDefault(key string, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getFloat64OrDefault(key string, defaultValue float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	floatVal, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return defaultValue
	}

	return floatVal
}

func getDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	duration, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}

	return duration
}

func getListOrDefault(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}

	if len(out) == 0 {
		return defaultValue
	}

	return out
}
