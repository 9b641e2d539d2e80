package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds all application configuration
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Typesense TypesenseConfig
	LiteLLM   LiteLLMConfig
	Auth      AuthConfig
	Analytics AnalyticsConfig
	OTEL      OTELConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Host string
	Port int
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// TypesenseConfig holds Typesense configuration
type TypesenseConfig struct {
	URL    string
	APIKey string
}

// LiteLLMConfig holds the AI completion proxy configuration
type LiteLLMConfig struct {
	ProxyURL       string
	APIKey         string
	Model          string
	RateLimitRPM   int
	RateLimitBurst int
}

// Configured reports whether the AI proxy can be used at all
func (c *LiteLLMConfig) Configured() bool {
	return c.ProxyURL != "" && c.APIKey != ""
}

// AuthConfig holds JWT verification configuration
type AuthConfig struct {
	JWTSecret string
}

// AnalyticsConfig holds reporting-window defaults and the placeholder
// business heuristics used by the dashboard
type AnalyticsConfig struct {
	DefaultWindowDays int
	MaxWindowDays     int
	Heuristics        Heuristics
}

// Heuristics holds the fixed-multiplier placeholder metrics. These are
// estimates surfaced as such in the dashboard, not measured figures; product
// can tune them without touching aggregation code.
type Heuristics struct {
	RevenuePerView     float64
	ReadingWordsPerMin float64
	ScrollDepthPct     int
	DefaultAvgReadMin  float64
}

// OTELConfig holds OpenTelemetry configuration
type OTELConfig struct {
	ServiceName    string
	ServiceVersion string
	Endpoint       string
	Enabled        bool
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	return &Config{
		Server: ServerConfig{
			Host: getEnv("SERVER_HOST", "0.0.0.0"),
			Port: getEnvAsInt("SERVER_PORT", 8080),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvAsInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			Database: getEnv("DB_NAME", "dentara"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnvAsInt("REDIS_PORT", 6379),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		Typesense: TypesenseConfig{
			URL:    getEnv("TYPESENSE_URL", "http://localhost:8108"),
			APIKey: getEnv("TYPESENSE_API_KEY", "xyz"),
		},
		LiteLLM: LiteLLMConfig{
			ProxyURL:       getEnv("LITELLM_PROXY_URL", ""),
			APIKey:         getEnv("LITELLM_API_KEY", ""),
			Model:          getEnv("LITELLM_MODEL", "gpt-4o-mini"),
			RateLimitRPM:   getEnvAsInt("LITELLM_RATE_LIMIT_RPM", 60),
			RateLimitBurst: getEnvAsInt("LITELLM_RATE_LIMIT_BURST", 5),
		},
		Auth: AuthConfig{
			JWTSecret: getEnv("AUTH_JWT_SECRET", ""),
		},
		Analytics: AnalyticsConfig{
			DefaultWindowDays: getEnvAsInt("ANALYTICS_DEFAULT_WINDOW_DAYS", 7),
			MaxWindowDays:     getEnvAsInt("ANALYTICS_MAX_WINDOW_DAYS", 365),
			Heuristics: Heuristics{
				RevenuePerView:     getEnvAsFloat("ANALYTICS_REVENUE_PER_VIEW", 0.002),
				ReadingWordsPerMin: getEnvAsFloat("ANALYTICS_READING_WPM", 200),
				ScrollDepthPct:     getEnvAsInt("ANALYTICS_SCROLL_DEPTH_PCT", 65),
				DefaultAvgReadMin:  getEnvAsFloat("ANALYTICS_DEFAULT_AVG_READ_MIN", 3.5),
			},
		},
		OTEL: OTELConfig{
			ServiceName:    getEnv("OTEL_SERVICE_NAME", "dentara-backend"),
			ServiceVersion: getEnv("OTEL_SERVICE_VERSION", "1.0.0"),
			Endpoint:       getEnv("OTEL_ENDPOINT", ""),
			Enabled:        getEnvAsBool("OTEL_ENABLED", false),
		},
	}, nil
}

// DatabaseDSN returns the PostgreSQL connection string
func (c *DatabaseConfig) DatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

// RedisAddr returns the Redis address
func (c *RedisConfig) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
