package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	Redis      RedisConfig
	JWT        JWTConfig
	API        APIConfig
	CORS       CORSConfig
	Moderation ModerationConfig
}

type ServerConfig struct {
	Port string
	Env  string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

type JWTConfig struct {
	Secret      string
	ExpiryHours int
}

type APIConfig struct {
	RateLimitRequestsPerSec int
}

type CORSConfig struct {
	AllowedOrigins []string
}

// ModerationConfig carries every knob of the content moderation subsystem.
// It is passed explicitly into the moderation constructors so tests can build
// arbitrary configurations without touching the environment.
type ModerationConfig struct {
	// APIKey authenticates against the remote classifier. When empty,
	// remote scanning is unavailable and only the local scanner runs.
	APIKey     string
	BaseURL    string
	TextModel  string
	ImageModel string

	// Scan-only detection thresholds (passive logging path).
	TextDetectThreshold  float64
	ImageDetectThreshold float64

	// Block thresholds (enforcement path). Severe categories block at the
	// lower SevereBlockThreshold.
	TextBlockThreshold   float64
	SevereBlockThreshold float64
	ImageBlockThreshold  float64

	// LocalFallbackConfidence is reported when a local rule hit blocks
	// without a remote signal. Historically pinned at 1.0; kept tunable.
	LocalFallbackConfidence float64

	// ExtraKeywords extends the local scanner vocabulary.
	ExtraKeywords []string

	Debug       bool
	HTTPTimeout time.Duration
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists (ignore error in production)
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		redisDB = 0
	}

	jwtExpiry, err := strconv.Atoi(getEnv("JWT_EXPIRY_HOURS", "168"))
	if err != nil {
		jwtExpiry = 168
	}

	rateLimit, err := strconv.Atoi(getEnv("RATE_LIMIT_REQUESTS_PER_SECOND", "10"))
	if err != nil {
		rateLimit = 10
	}

	httpTimeout, err := strconv.Atoi(getEnv("MODERATION_HTTP_TIMEOUT_SECONDS", "12"))
	if err != nil || httpTimeout <= 0 {
		httpTimeout = 12
	}

	origins := strings.Split(getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000"), ",")

	cfg := &Config{
		Server: ServerConfig{
			Port: getEnv("PORT", "8080"),
			Env:  getEnv("ENV", "development"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "waypost"),
			Password: getEnv("DB_PASSWORD", "waypost_password"),
			DBName:   getEnv("DB_NAME", "waypost_db"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       redisDB,
		},
		JWT: JWTConfig{
			Secret:      getEnv("JWT_SECRET", "change-this-secret-key"),
			ExpiryHours: jwtExpiry,
		},
		API: APIConfig{
			RateLimitRequestsPerSec: rateLimit,
		},
		CORS: CORSConfig{
			AllowedOrigins: origins,
		},
		Moderation: ModerationConfig{
			APIKey:                  getEnv("MODERATION_API_KEY", ""),
			BaseURL:                 getEnv("MODERATION_API_BASE_URL", "https://api-inference.huggingface.co/models"),
			TextModel:               getEnv("MODERATION_TEXT_MODEL", "unitary/toxic-bert"),
			ImageModel:              getEnv("MODERATION_IMAGE_MODEL", "Falconsai/nsfw_image_detection"),
			TextDetectThreshold:     getEnvThreshold("MODERATION_TEXT_DETECT_THRESHOLD", 0.7),
			ImageDetectThreshold:    getEnvThreshold("MODERATION_IMAGE_DETECT_THRESHOLD", 0.7),
			TextBlockThreshold:      getEnvThreshold("MODERATION_TEXT_BLOCK_THRESHOLD", 0.9),
			SevereBlockThreshold:    getEnvThreshold("MODERATION_SEVERE_BLOCK_THRESHOLD", 0.8),
			ImageBlockThreshold:     getEnvThreshold("MODERATION_IMAGE_BLOCK_THRESHOLD", 0.9),
			LocalFallbackConfidence: getEnvThreshold("MODERATION_LOCAL_FALLBACK_CONFIDENCE", 1.0),
			ExtraKeywords:           splitKeywords(getEnv("MODERATION_EXTRA_KEYWORDS", "")),
			Debug:                   getEnv("MODERATION_DEBUG", "false") == "true",
			HTTPTimeout:             time.Duration(httpTimeout) * time.Second,
		},
	}

	// Validate required fields
	if cfg.JWT.Secret == "change-this-secret-key" && cfg.Server.Env == "production" {
		return nil, fmt.Errorf("JWT_SECRET must be set in production")
	}

	return cfg, nil
}

// GetDSN returns the database connection string
func (c *Config) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.DBName,
		c.Database.SSLMode,
	)
}

// GetRedisAddr returns the Redis address
func (c *Config) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", c.Redis.Host, c.Redis.Port)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvThreshold parses a float env var and clamps it to [0,1]. Parse
// failures fall back to the default.
func getEnvThreshold(key string, defaultValue float64) float64 {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return defaultValue
	}
	return Clamp01(v)
}

// Clamp01 bounds v to [0,1].
func Clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// splitKeywords parses the comma-separated extra keyword list. Terms are
// lower-cased; anything shorter than two characters is dropped.
func splitKeywords(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	keywords := make([]string, 0, len(parts))
	for _, p := range parts {
		kw := strings.ToLower(strings.TrimSpace(p))
		if len(kw) < 2 {
			continue
		}
		keywords = append(keywords, kw)
	}
	return keywords
}
