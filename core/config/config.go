package config

import (
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration in a structured way.
type Config struct {
	App       AppConfig
	Assistant AssistantConfig
	Model     ModelConfig
}

type AppConfig struct {
	Version            string
	Port               string
	Debug              bool
	Environment        string
	BasePath           string
	TrustedProxies     []string
	CorsAllowedOrigins []string
}

// AssistantConfig bounds the query pipeline: rate-limit windows, response
// cache TTL and the maximum accepted message length.
type AssistantConfig struct {
	RateLimitMax          int
	RateLimitWindow       time.Duration
	StrictRateLimitMax    int
	StrictRateLimitWindow time.Duration
	CacheTTL              time.Duration
	CacheSweepInterval    time.Duration
	MaxMessageLength      int
}

type ModelConfig struct {
	BaseURL          string
	APIKey           string
	Model            string
	Timeout          time.Duration
	MaxTokens        int64
	MaxResponseChars int
}

// Global provides access to the loaded configuration globally.
var Global *Config

// Load reads configuration from a .env file (if present) and environment
// variables, falling back to the documented defaults.
func Load() (*Config, error) {
	_ = godotenv.Load()

	corsOrigins := []string{"http://localhost:3000", "http://localhost:19006"}
	if v := getEnv("APP_CORS_ALLOWED_ORIGINS", ""); v != "" {
		corsOrigins = strings.Split(v, ",")
	}

	var trustedProxies []string
	if v := getEnv("APP_TRUSTED_PROXIES", ""); v != "" {
		trustedProxies = strings.Split(v, ",")
	}

	appCfg := AppConfig{
		Version:            "v1.2.0",
		Port:               getEnv("APP_PORT", "3000"),
		Debug:              getEnvBool("APP_DEBUG", false),
		Environment:        getEnv("APP_ENV", "development"),
		BasePath:           getEnv("APP_BASE_PATH", ""),
		TrustedProxies:     trustedProxies,
		CorsAllowedOrigins: corsOrigins,
	}

	assistantCfg := AssistantConfig{
		RateLimitMax:          getEnvInt("MAX_REQUESTS_PER_WINDOW", 20),
		RateLimitWindow:       getEnvDuration("RATE_LIMIT_WINDOW", 60*time.Second),
		StrictRateLimitMax:    getEnvInt("STRICT_MAX_REQUESTS_PER_WINDOW", 50),
		StrictRateLimitWindow: getEnvDuration("STRICT_RATE_LIMIT_WINDOW", 300*time.Second),
		CacheTTL:              getEnvDuration("CACHE_TTL", time.Hour),
		CacheSweepInterval:    getEnvDuration("CACHE_SWEEP_INTERVAL", 10*time.Minute),
		MaxMessageLength:      getEnvInt("MAX_MESSAGE_LENGTH", 500),
	}

	modelCfg := ModelConfig{
		BaseURL:          getEnv("MODEL_BASE_URL", "https://router.huggingface.co/v1"),
		APIKey:           getEnv("MODEL_API_KEY", ""),
		Model:            getEnv("MODEL_NAME", "meta-llama/Llama-3.2-1B-Instruct"),
		Timeout:          getEnvDuration("MODEL_TIMEOUT", 30*time.Second),
		MaxTokens:        getEnvInt64("MODEL_MAX_TOKENS", 350),
		MaxResponseChars: getEnvInt("MODEL_MAX_RESPONSE_CHARS", 600),
	}

	cfg := &Config{
		App:       appCfg,
		Assistant: assistantCfg,
		Model:     modelCfg,
	}

	Global = cfg
	return cfg, nil
}
