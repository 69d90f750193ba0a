package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// RateLimitConfig indicates how many requests are allowed within a given interval.
type RateLimitConfig struct {
	Requests int
	Interval time.Duration
}

// LogConfig selects the slog handler.
type LogConfig struct {
	Level  string
	Format string // text|json
}

// StorageConfig selects where the profile slot lives.
type StorageConfig struct {
	Driver      string // memory|file|postgres|redis
	Dir         string
	Slot        string
	DatabaseURL string
	RedisURL    string
}

// VisionConfig describes the chat-completions endpoint used for card scans.
type VisionConfig struct {
	BaseURL string
	Model   string
	APIKey  string
	Auth    string // apikey|google|idtoken
}

// KafkaConfig enables contact notifications over Kafka when brokers are set.
type KafkaConfig struct {
	Brokers []string
	Topic   string
}

// Config aggregates application-wide configuration values.
type Config struct {
	Port              string
	JWTSecret         string
	TokenTTL          time.Duration
	OwnerEmail        string
	OwnerPasswordHash string
	RateLimitScan     RateLimitConfig
	MaxUploadBytes    int64
	PhoneRegion       string
	Log               LogConfig
	Storage           StorageConfig
	Vision            VisionConfig
	Kafka             KafkaConfig
}

var (
	storageDrivers  = map[string]struct{}{"memory": {}, "file": {}, "postgres": {}, "redis": {}}
	visionAuthModes = map[string]struct{}{"apikey": {}, "google": {}, "idtoken": {}}
)

// Load reads configuration from environment variables and applies sane defaults.
func Load() (*Config, error) {
	cfg := &Config{
		Port:              getEnv("PORT", "8080"),
		JWTSecret:         getEnv("JWT_SECRET", "dev-secret"),
		TokenTTL:          parseDuration(getEnv("JWT_TTL", "24h")),
		OwnerEmail:        getEnv("OWNER_EMAIL", "owner@example.com"),
		OwnerPasswordHash: os.Getenv("OWNER_PASSWORD_HASH"),
		MaxUploadBytes:    parseInt64(getEnv("MAX_UPLOAD_BYTES", "6291456"), 6<<20),
		PhoneRegion:       strings.ToUpper(getEnv("DEFAULT_PHONE_REGION", "DE")),
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "text"),
		},
		Storage: StorageConfig{
			Driver:      strings.ToLower(getEnv("STORAGE_DRIVER", "file")),
			Dir:         getEnv("STORAGE_DIR", "./data"),
			Slot:        getEnv("PROFILE_SLOT", "contactData"),
			DatabaseURL: os.Getenv("DATABASE_URL"),
			RedisURL:    os.Getenv("REDIS_URL"),
		},
		Vision: VisionConfig{
			BaseURL: strings.TrimRight(getEnv("VISION_BASE_URL", "https://ai.gateway.lovable.dev/v1"), "/"),
			Model:   getEnv("VISION_MODEL", "google/gemini-2.5-flash"),
			APIKey:  os.Getenv("VISION_API_KEY"),
			Auth:    strings.ToLower(getEnv("VISION_AUTH", "apikey")),
		},
		Kafka: KafkaConfig{
			Brokers: splitList(os.Getenv("KAFKA_BROKERS")),
			Topic:   getEnv("KAFKA_TOPIC", "contact-notifications"),
		},
	}

	rl, err := parseRateLimit(getEnv("RATE_LIMIT_SCAN", "10/min"))
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_SCAN value: %w", err)
	}
	cfg.RateLimitScan = rl

	if _, ok := storageDrivers[cfg.Storage.Driver]; !ok {
		return nil, fmt.Errorf("unsupported STORAGE_DRIVER %q", cfg.Storage.Driver)
	}
	if cfg.Storage.Driver == "postgres" && cfg.Storage.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required for the postgres storage driver")
	}
	if cfg.Storage.Driver == "redis" && cfg.Storage.RedisURL == "" {
		return nil, fmt.Errorf("REDIS_URL is required for the redis storage driver")
	}
	if _, ok := visionAuthModes[cfg.Vision.Auth]; !ok {
		return nil, fmt.Errorf("unsupported VISION_AUTH %q", cfg.Vision.Auth)
	}

	return cfg, nil
}

func parseRateLimit(value string) (RateLimitConfig, error) {
	parts := strings.Split(value, "/")
	if len(parts) != 2 {
		return RateLimitConfig{}, fmt.Errorf("expected format <requests>/<interval>, got %q", value)
	}

	requests, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil || requests <= 0 {
		return RateLimitConfig{}, fmt.Errorf("invalid request count: %v", parts[0])
	}

	unit := strings.ToLower(strings.TrimSpace(parts[1]))
	var interval time.Duration
	switch unit {
	case "s", "sec", "second", "seconds":
		interval = time.Second
	case "m", "min", "minute", "minutes":
		interval = time.Minute
	case "h", "hr", "hour", "hours":
		interval = time.Hour
	default:
		return RateLimitConfig{}, fmt.Errorf("unsupported interval unit: %s", unit)
	}

	return RateLimitConfig{Requests: requests, Interval: interval}, nil
}

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok && val != "" {
		return val
	}
	return fallback
}

func parseDuration(input string) time.Duration {
	d, err := time.ParseDuration(input)
	if err != nil {
		return 24 * time.Hour
	}
	return d
}

func parseInt64(input string, fallback int64) int64 {
	n, err := strconv.ParseInt(strings.TrimSpace(input), 10, 64)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
