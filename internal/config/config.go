package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config is the server configuration, read from the environment after
// godotenv has loaded any .env file.
type Config struct {
	Port        string
	Environment string
	BaseURL     string

	LogLevel string
	LogFile  string

	DatabaseURL string
	DBHost      string
	DBPort      string
	DBUser      string
	DBPassword  string
	DBName      string
	DBSSLMode   string

	JWTSecret string

	RedisHost     string
	RedisPort     string
	RedisPassword string
	FeedCacheTTL  time.Duration

	CORSOrigins []string

	RateLimit       int
	RateLimitWindow time.Duration

	AWSRegion     string
	MailFromEmail string
	MailFromName  string
	S3Bucket      string
	S3BaseURL     string

	OTelEnabled      bool
	OTelEndpoint     string
	OTelSamplingRate float64
}

// Load reads Config from environment variables, applying defaults.
func Load() (*Config, error) {
	cfg := &Config{
		Port:             getEnvOrDefault("PORT", "8787"),
		Environment:      getEnvOrDefault("ENVIRONMENT", "development"),
		BaseURL:          getEnvOrDefault("BASE_URL", "http://localhost:3000"),
		LogLevel:         getEnvOrDefault("LOG_LEVEL", "info"),
		LogFile:          getEnvOrDefault("LOG_FILE", "curiohub.log"),
		DatabaseURL:      os.Getenv("DATABASE_URL"),
		DBHost:           getEnvOrDefault("DB_HOST", "localhost"),
		DBPort:           getEnvOrDefault("DB_PORT", "5432"),
		DBUser:           getEnvOrDefault("DB_USER", "postgres"),
		DBPassword:       os.Getenv("DB_PASSWORD"),
		DBName:           getEnvOrDefault("DB_NAME", "curiohub"),
		DBSSLMode:        getEnvOrDefault("DB_SSLMODE", "disable"),
		JWTSecret:        os.Getenv("JWT_SECRET"),
		RedisHost:        os.Getenv("REDIS_HOST"),
		RedisPort:        getEnvOrDefault("REDIS_PORT", "6379"),
		RedisPassword:    os.Getenv("REDIS_PASSWORD"),
		CORSOrigins:      splitList(getEnvOrDefault("CORS_ORIGINS", "http://localhost:3000")),
		AWSRegion:        os.Getenv("AWS_REGION"),
		MailFromEmail:    os.Getenv("MAIL_FROM_EMAIL"),
		MailFromName:     getEnvOrDefault("MAIL_FROM_NAME", "CurioHub"),
		S3Bucket:         os.Getenv("S3_BUCKET"),
		S3BaseURL:        os.Getenv("S3_BASE_URL"),
		OTelEndpoint:     getEnvOrDefault("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4318"),
		OTelEnabled:      getEnvOrDefault("OTEL_ENABLED", "false") == "true",
		OTelSamplingRate: 1.0,
	}

	var err error
	if cfg.FeedCacheTTL, err = durationEnv("FEED_CACHE_TTL", time.Minute); err != nil {
		return nil, err
	}
	if cfg.RateLimitWindow, err = durationEnv("RATE_LIMIT_WINDOW", time.Minute); err != nil {
		return nil, err
	}
	if cfg.RateLimit, err = intEnv("RATE_LIMIT", 100); err != nil {
		return nil, err
	}
	if raw := os.Getenv("OTEL_SAMPLING_RATE"); raw != "" {
		rate, err := strconv.ParseFloat(raw, 64)
		if err != nil || rate < 0 || rate > 1 {
			return nil, fmt.Errorf("OTEL_SAMPLING_RATE must be between 0 and 1, got %q", raw)
		}
		cfg.OTelSamplingRate = rate
	}

	if cfg.JWTSecret == "" {
		if cfg.IsProduction() {
			return nil, fmt.Errorf("JWT_SECRET environment variable not set")
		}
		cfg.JWTSecret = "dev-secret-change-me"
	}

	return cfg, nil
}

// IsProduction reports whether ENVIRONMENT is production.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// DSN returns DATABASE_URL, or a key/value DSN built from the DB_* variables.
func (c *Config) DSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode)
}

// MailEnabled reports whether SES delivery is configured.
func (c *Config) MailEnabled() bool {
	return c.AWSRegion != "" && c.MailFromEmail != ""
}

// AvatarsEnabled reports whether avatar uploads go to S3.
func (c *Config) AvatarsEnabled() bool {
	return c.AWSRegion != "" && c.S3Bucket != ""
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func durationEnv(key string, def time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return def, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func intEnv(key string, def int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
