package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// ErrConfiguration is returned when required configuration is missing or invalid
var ErrConfiguration = errors.New("invalid configuration")

const (
	StoreMongo  = "mongo"
	StoreSQLite = "sqlite"

	ProviderOpenRouter = "openrouter"
	ProviderGemini     = "gemini"
	ProviderPinecone   = "pinecone"
	ProviderOpenAI     = "openai"
)

// Config holds all configuration for the application
type Config struct {
	Server     ServerConfig
	Pinecone   PineconeConfig
	Store      StoreConfig
	Generation GenerationConfig
	Embedding  EmbeddingConfig
	Matching   MatchingConfig
	Cache      CacheConfig
	RateLimit  RateLimitConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port            string        `mapstructure:"port" validate:"required"`
	Environment     string        `mapstructure:"environment"`
	AllowedOrigins  []string      `mapstructure:"allowed_origins"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// PineconeConfig holds vector index and inference configuration
type PineconeConfig struct {
	APIKey            string  `mapstructure:"api_key" validate:"required"`
	Environment       string  `mapstructure:"environment" validate:"required"`
	ControlPlaneURL   string  `mapstructure:"control_plane_url" validate:"required,url"`
	APIVersion        string  `mapstructure:"api_version"`
	EmbedModel        string  `mapstructure:"embed_model"`
	DrugIndex         string  `mapstructure:"drug_index" validate:"required_without=DrugHost"`
	BabyIndex         string  `mapstructure:"baby_index" validate:"required_without=BabyHost"`
	DrugHost          string  `mapstructure:"drug_host"`
	BabyHost          string  `mapstructure:"baby_host"`
	Namespace         string  `mapstructure:"namespace"`
	RequestsPerSecond float64 `mapstructure:"requests_per_second" validate:"gt=0"`
}

// StoreConfig selects and configures the record store
type StoreConfig struct {
	Type       string `mapstructure:"type" validate:"oneof=mongo sqlite"`
	URI        string `mapstructure:"uri" validate:"required_if=Type mongo"`
	Database   string `mapstructure:"database"`
	SQLitePath string `mapstructure:"sqlite_path"`
}

// GenerationConfig configures the explanation model
type GenerationConfig struct {
	Provider    string  `mapstructure:"provider" validate:"oneof=openrouter gemini"`
	APIKey      string  `mapstructure:"api_key" validate:"required"`
	BaseURL     string  `mapstructure:"base_url" validate:"omitempty,url"`
	Model       string  `mapstructure:"model"`
	Temperature float32 `mapstructure:"temperature" validate:"gte=0,lte=2"`
	MaxTokens   int     `mapstructure:"max_tokens" validate:"gt=0"`
	Format      string  `mapstructure:"format"`
}

// EmbeddingConfig selects the embedding backend
type EmbeddingConfig struct {
	Provider string `mapstructure:"provider" validate:"oneof=pinecone openai"`
	APIKey   string `mapstructure:"api_key" validate:"required_if=Provider openai"`
	BaseURL  string `mapstructure:"base_url" validate:"omitempty,url"`
	Model    string `mapstructure:"model"`
}

// MatchingConfig holds classifier tuning
type MatchingConfig struct {
	Threshold float64 `mapstructure:"threshold" validate:"gt=0,lte=1"`
	TopK      int     `mapstructure:"top_k" validate:"gte=1,lte=100"`
	ScanMode  string  `mapstructure:"scan_mode" validate:"oneof=first best"`
}

// CacheConfig holds embedding cache configuration
type CacheConfig struct {
	Enabled    bool          `mapstructure:"enabled"`
	TTL        time.Duration `mapstructure:"ttl"`
	MaxEntries int           `mapstructure:"max_entries" validate:"gte=0"`
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	PerIP int `mapstructure:"per_ip" validate:"gte=0"` // requests per minute, 0 disables
}

// envAliases binds the unprefixed variable names existing deployments use
var envAliases = map[string][]string{
	"server.port":          {"VERO_SERVER_PORT", "PORT"},
	"pinecone.api_key":     {"VERO_PINECONE_API_KEY", "PINECONE_API_KEY"},
	"pinecone.environment": {"VERO_PINECONE_ENVIRONMENT", "PINECONE_ENVIRONMENT"},
	"store.uri":            {"VERO_STORE_URI", "MONGODB_URI"},
	"generation.api_key":   {"VERO_GENERATION_API_KEY"},
	"embedding.api_key":    {"VERO_EMBEDDING_API_KEY", "OPENAI_API_KEY"},
	"openrouter_api_key":   {"OPENROUTER_API_KEY"},
	"gemini_api_key":       {"GEMINI_API_KEY"},
}

// Load loads configuration from .env, environment variables and config files
func Load() (*Config, error) {
	if err := loadEnvFile(); err != nil {
		return nil, fmt.Errorf("%w: error loading .env file: %v", ErrConfiguration, err)
	}

	v := viper.New()

	// Set config name and paths
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/vero/")

	// Environment variable settings
	v.SetEnvPrefix("VERO")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for key, names := range envAliases {
		if err := v.BindEnv(append([]string{key}, names...)...); err != nil {
			return nil, fmt.Errorf("%w: error binding %s: %v", ErrConfiguration, key, err)
		}
	}

	setDefaults(v)

	// Read config file (optional - will use env vars if file doesn't exist)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("%w: error reading config file: %v", ErrConfiguration, err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("%w: unable to decode config: %v", ErrConfiguration, err)
	}

	if config.Generation.APIKey == "" {
		switch config.Generation.Provider {
		case ProviderOpenRouter:
			config.Generation.APIKey = v.GetString("openrouter_api_key")
		case ProviderGemini:
			config.Generation.APIKey = v.GetString("gemini_api_key")
		}
	}

	if err := validate(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// loadEnvFile loads variables from ./.env without overriding the environment
func loadEnvFile() error {
	if _, err := os.Stat(".env"); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return godotenv.Load(".env")
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", "10000")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.allowed_origins", []string{"http://localhost:3000"})
	v.SetDefault("server.shutdown_timeout", "5s")

	// Pinecone defaults
	v.SetDefault("pinecone.control_plane_url", "https://api.pinecone.io")
	v.SetDefault("pinecone.api_version", "2025-01")
	v.SetDefault("pinecone.embed_model", "llama-text-embed-v2")
	v.SetDefault("pinecone.drug_index", "fake-drugs")
	v.SetDefault("pinecone.baby_index", "fake-baby")
	v.SetDefault("pinecone.drug_host", "")
	v.SetDefault("pinecone.baby_host", "")
	v.SetDefault("pinecone.namespace", "")
	v.SetDefault("pinecone.requests_per_second", 5)

	// Store defaults
	v.SetDefault("store.type", StoreMongo)
	v.SetDefault("store.database", "VeriTrue")
	v.SetDefault("store.sqlite_path", "./data/verifications.db")

	// Generation defaults
	v.SetDefault("generation.provider", ProviderOpenRouter)
	v.SetDefault("generation.base_url", "")
	v.SetDefault("generation.model", "")
	v.SetDefault("generation.temperature", 0.7)
	v.SetDefault("generation.max_tokens", 500)
	v.SetDefault("generation.format", "")

	// Embedding defaults
	v.SetDefault("embedding.provider", ProviderPinecone)
	v.SetDefault("embedding.base_url", "")
	v.SetDefault("embedding.model", "")

	// Matching defaults
	v.SetDefault("matching.threshold", 0.8)
	v.SetDefault("matching.top_k", 3)
	v.SetDefault("matching.scan_mode", "first")

	// Cache defaults
	v.SetDefault("cache.enabled", true)
	v.SetDefault("cache.ttl", "24h")
	v.SetDefault("cache.max_entries", 10000)

	// Rate limit defaults
	v.SetDefault("ratelimit.per_ip", 60)
}

var configValidator = validator.New()

// validate validates the configuration
func validate(config *Config) error {
	if err := configValidator.Struct(config); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			return fmt.Errorf("%w: %s", ErrConfiguration, describe(fieldErrs[0]))
		}
		return fmt.Errorf("%w: %v", ErrConfiguration, err)
	}
	return nil
}

// describe turns a validation failure into an operator-facing message
func describe(fe validator.FieldError) string {
	field := strings.TrimPrefix(fe.Namespace(), "Config.")
	switch fe.Tag() {
	case "required", "required_if", "required_without":
		return field + " is required"
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s], got %q", field, fe.Param(), fe.Value())
	default:
		return fmt.Sprintf("%s failed %s=%s", field, fe.Tag(), fe.Param())
	}
}
