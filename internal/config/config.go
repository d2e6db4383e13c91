package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration values for the application
type Config struct {
	Port           string
	AllowedOrigins []string
	LogLevel       string
	Environment    string

	// TrustProxyHeaders enables X-Forwarded-For style client IPs. Only set it
	// behind a proxy that overwrites those headers.
	TrustProxyHeaders bool

	DatabaseURL     string
	DatabaseReadURL string // Read replica URL for SELECT queries
	RedisURL        string

	// Identity provider. Sessions are HS256 tokens signed with IdentityJWTSecret.
	IdentityJWTSecret    string
	IdentityAPIURL       string
	IdentityAPIKey       string
	IdentityTimeout      time.Duration
	PlaceholderUserCount int

	// Flat-file data. Feed files are searched in DataDirs, first hit wins.
	AnalyticsFile    string
	DataDirs         []string
	BreakingNewsFile string
	RealtimeNewsFile string
	KRNewsFile       string
	USNewsFile       string
	ThemesFile       string

	QuoteBaseURL        string
	QuoteTimeout        time.Duration
	ExchangeRateBaseURL string

	SnapshotInterval  time.Duration
	VisitRateLimit    int64
	ViewLimitLocation *time.Location
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	loc, err := time.LoadLocation(getEnv("VIEW_LIMIT_TZ", "Asia/Seoul"))
	if err != nil {
		return nil, fmt.Errorf("invalid VIEW_LIMIT_TZ: %w", err)
	}

	return &Config{
		Port:           getEnv("PORT", "8080"),
		AllowedOrigins: parseList(getEnv("ALLOWED_ORIGINS", "http://localhost:3000")),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		Environment:    getEnv("ENVIRONMENT", "production"),

		TrustProxyHeaders: getBoolEnv("TRUST_PROXY_HEADERS", false),

		DatabaseURL:     getEnv("DATABASE_URL", ""),
		DatabaseReadURL: getEnv("DATABASE_READ_URL", getEnv("DATABASE_URL", "")), // Falls back to write DB if not set
		RedisURL:        getEnv("REDIS_URL", ""),

		IdentityJWTSecret:    getEnv("IDENTITY_JWT_SECRET", ""),
		IdentityAPIURL:       getEnv("IDENTITY_API_URL", ""),
		IdentityAPIKey:       getEnv("IDENTITY_API_KEY", ""),
		IdentityTimeout:      getDurationEnv("IDENTITY_TIMEOUT", 10*time.Second),
		PlaceholderUserCount: int(getIntEnv("PLACEHOLDER_USER_COUNT", 1284)),

		AnalyticsFile:    getEnv("ANALYTICS_FILE", "data/analytics.json"),
		DataDirs:         parseList(getEnv("DATA_DIRS", "data,..")),
		BreakingNewsFile: getEnv("BREAKING_NEWS_FILE", "breaking_news_analyzed.json"),
		RealtimeNewsFile: getEnv("REALTIME_NEWS_FILE", "us-news-realtime.json"),
		KRNewsFile:       getEnv("KR_NEWS_FILE", "kr_news_latest.json"),
		USNewsFile:       getEnv("US_NEWS_FILE", "us_news_latest.json"),
		ThemesFile:       getEnv("THEMES_FILE", ""),

		QuoteBaseURL: getEnv("QUOTE_BASE_URL", "https://query1.finance.yahoo.com"),
		QuoteTimeout: getDurationEnv("QUOTE_TIMEOUT", 5*time.Second),

		ExchangeRateBaseURL: getEnv("EXCHANGE_RATE_BASE_URL", "https://api.exchangerate-api.com"),

		SnapshotInterval:  getDurationEnv("SNAPSHOT_INTERVAL", 30*time.Second),
		VisitRateLimit:    getIntEnv("VISIT_RATE_LIMIT", 60),
		ViewLimitLocation: loc,
	}, nil
}

// IsDevelopment reports whether the service runs locally
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// getEnv gets an environment variable with a fallback value
func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getIntEnv(key string, fallback int64) int64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseInt(value, 10, 64); err == nil {
			return parsed
		}
	}
	return fallback
}

func getBoolEnv(key string, fallback bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func getDurationEnv(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return fallback
}

// parseList parses a comma-separated list into a slice
func parseList(value string) []string {
	if value == "" {
		return []string{}
	}

	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))

	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
