package utils

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config is the full service configuration, read from TENSEII_* environment
// variables with dev-friendly defaults. A .env file is loaded by main before
// this runs.
type Config struct {
	AppEnv string
	Host   string
	Port   int

	DefaultLocale string
	LocaleHeader  string

	MaxUploadBytes        int
	UploadReadChunkSize   int
	AllowedImageMimeTypes []string
	MaxImagePixels        int
	MaxImageWidth         int
	MaxImageHeight        int

	DBPath string

	RedisDSN              string
	RedisConnectTimeout   time.Duration
	RedisOperationTimeout time.Duration
	CacheTTL              time.Duration
	ImageDedupeTTL        time.Duration

	RateLimitEnabled    bool
	RateLimitRequests   int
	RateLimitWindow     time.Duration
	TrustedProxyHeaders bool

	OllamaBaseURL     string
	OllamaModel       string
	OllamaTimeout     time.Duration
	OllamaTemperature float64

	VisionBaseURL       string
	VisionTimeout       time.Duration
	VisionTopK          int
	ConfidenceThreshold float64
}

func Load() Config {
	return Config{
		AppEnv: getEnv("TENSEII_APP_ENV", "dev"),
		Host:   getEnv("TENSEII_HOST", "0.0.0.0"),
		Port:   getEnvInt("TENSEII_PORT", 8080),

		DefaultLocale: getEnv("TENSEII_DEFAULT_LOCALE", "ru"),
		LocaleHeader:  getEnv("TENSEII_LOCALE_HEADER", "X-Locale"),

		MaxUploadBytes:        getEnvInt("TENSEII_MAX_UPLOAD_BYTES", 5_000_000),
		UploadReadChunkSize:   getEnvInt("TENSEII_UPLOAD_READ_CHUNK_SIZE", 64*1024),
		AllowedImageMimeTypes: getEnvList("TENSEII_ALLOWED_IMAGE_MIME_TYPES", []string{"image/jpeg", "image/png", "image/webp"}),
		MaxImagePixels:        getEnvInt("TENSEII_MAX_IMAGE_PIXELS", 20_000_000),
		MaxImageWidth:         getEnvInt("TENSEII_MAX_IMAGE_WIDTH", 8000),
		MaxImageHeight:        getEnvInt("TENSEII_MAX_IMAGE_HEIGHT", 8000),

		DBPath: getEnv("TENSEII_DB_PATH", ""),

		RedisDSN:              getEnv("TENSEII_REDIS_DSN", "redis://localhost:6379/0"),
		RedisConnectTimeout:   getEnvDuration("TENSEII_REDIS_CONNECT_TIMEOUT", 2*time.Second),
		RedisOperationTimeout: getEnvDuration("TENSEII_REDIS_OPERATION_TIMEOUT", time.Second),
		CacheTTL:              getEnvDuration("TENSEII_CACHE_TTL", 24*time.Hour),
		ImageDedupeTTL:        getEnvDuration("TENSEII_IMAGE_DEDUPE_TTL", 10*time.Minute),

		RateLimitEnabled:    getEnvBool("TENSEII_RATE_LIMIT_ENABLED", false),
		RateLimitRequests:   getEnvInt("TENSEII_RATE_LIMIT_REQUESTS", 60),
		RateLimitWindow:     getEnvDuration("TENSEII_RATE_LIMIT_WINDOW", time.Minute),
		TrustedProxyHeaders: getEnvBool("TENSEII_TRUSTED_PROXY_HEADERS", false),

		OllamaBaseURL:     getEnv("TENSEII_OLLAMA_BASE_URL", "http://localhost:11434"),
		OllamaModel:       getEnv("TENSEII_OLLAMA_MODEL", "qwen2.5:32b"),
		OllamaTimeout:     getEnvDuration("TENSEII_OLLAMA_TIMEOUT", 20*time.Second),
		OllamaTemperature: getEnvFloat("TENSEII_OLLAMA_TEMPERATURE", 0.2),

		VisionBaseURL:       getEnv("TENSEII_VISION_BASE_URL", "http://localhost:9090"),
		VisionTimeout:       getEnvDuration("TENSEII_VISION_TIMEOUT", 7*time.Second),
		VisionTopK:          getEnvInt("TENSEII_VISION_TOP_K", 5),
		ConfidenceThreshold: getEnvFloat("TENSEII_CONFIDENCE_THRESHOLD", 0.82),
	}
}

func (c Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("TENSEII_PORT must be a valid port")
	}
	if c.MaxUploadBytes <= 0 {
		return fmt.Errorf("TENSEII_MAX_UPLOAD_BYTES must be positive")
	}
	if c.UploadReadChunkSize <= 0 {
		return fmt.Errorf("TENSEII_UPLOAD_READ_CHUNK_SIZE must be positive")
	}
	if c.MaxImagePixels <= 0 || c.MaxImageWidth <= 0 || c.MaxImageHeight <= 0 {
		return fmt.Errorf("image dimension limits must be positive")
	}
	if c.ConfidenceThreshold <= 0 || c.ConfidenceThreshold > 1 {
		return fmt.Errorf("TENSEII_CONFIDENCE_THRESHOLD must be within (0, 1]")
	}
	if c.VisionTopK <= 0 {
		return fmt.Errorf("TENSEII_VISION_TOP_K must be positive")
	}
	if c.VisionTimeout <= 0 || c.OllamaTimeout <= 0 {
		return fmt.Errorf("collaborator timeouts must be positive")
	}
	if c.CacheTTL <= 0 || c.ImageDedupeTTL <= 0 {
		return fmt.Errorf("cache TTLs must be positive")
	}
	if c.RedisConnectTimeout <= 0 || c.RedisOperationTimeout <= 0 {
		return fmt.Errorf("redis timeouts must be positive")
	}
	if c.RateLimitRequests <= 0 || c.RateLimitWindow <= 0 {
		return fmt.Errorf("rate limit values must be positive")
	}
	return nil
}

type AuthConfig struct {
	JWTSecret   string
	JWTIssuer   string
	JWTDuration time.Duration
}

func LoadAuthConfig() AuthConfig {
	secret := os.Getenv("TENSEII_JWT_SECRET")
	if secret == "" {
		// dev default (change for demo / production)
		secret = "dev-secret-change-me"
	}

	issuer := getEnv("TENSEII_JWT_ISSUER", "tenseii")

	duration := 24 * time.Hour
	if hours := getEnvInt("TENSEII_JWT_TTL_HOURS", 0); hours > 0 {
		duration = time.Duration(hours) * time.Hour
	}

	return AuthConfig{
		JWTSecret:   secret,
		JWTIssuer:   issuer,
		JWTDuration: duration,
	}
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func getEnvFloat(key string, fallback float64) float64 {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return f
}

func getEnvBool(key string, fallback bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

// getEnvDuration accepts Go duration strings ("90s", "10m") and falls back to
// plain seconds for bare integers.
func getEnvDuration(key string, fallback time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	if n, err := strconv.Atoi(v); err == nil {
		return time.Duration(n) * time.Second
	}
	return fallback
}

func getEnvList(key string, fallback []string) []string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
