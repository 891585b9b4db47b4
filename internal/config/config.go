package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	StorageBackendPostgres = "postgres"
	StorageBackendMemory   = "memory"

	RateLimitBackendMemory = "memory"
	RateLimitBackendRedis  = "redis"
)

// Config holds all configuration for the assistant backend.
type Config struct {
	LogFormat string `envconfig:"LOG_FORMAT" default:"json"`
	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
	Server    ServerConfig
	Storage   StorageConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Azure     AzureOpenAIConfig
	RateLimit RateLimitConfig
	Chat      ChatConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Host      string `envconfig:"SERVER_HOST" default:"0.0.0.0"`
	Port      string `envconfig:"SERVER_PORT" default:"8080"`
	JWTSecret string `envconfig:"JWT_SECRET" required:"true"`
}

// StorageConfig selects where conversations and templates live.
type StorageConfig struct {
	Backend string `envconfig:"STORAGE_BACKEND" default:"postgres"`
}

// DatabaseConfig holds PostgreSQL configuration.
type DatabaseConfig struct {
	DSN string `envconfig:"DATABASE_DSN"`
}

// RedisConfig holds Redis configuration. Only needed by the redis rate limit backend.
type RedisConfig struct {
	URI string `envconfig:"REDIS_URI"`
}

// AzureOpenAIConfig holds the Azure OpenAI deployment settings.
// These are not required at load time: a missing value disables the chat routes only.
type AzureOpenAIConfig struct {
	APIKey     string        `envconfig:"OPENAI_API_KEY"`
	Endpoint   string        `envconfig:"AZURE_OPENAI_ENDPOINT"`
	Model      string        `envconfig:"AZURE_OPENAI_MODEL"`
	Deployment string        `envconfig:"AZURE_OPENAI_DEPLOYMENT"`
	APIVersion string        `envconfig:"AZURE_OPENAI_API_VERSION"`
	Timeout    time.Duration `envconfig:"AZURE_OPENAI_TIMEOUT" default:"30s"`
}

// Missing returns the names of the unset Azure OpenAI variables.
func (c AzureOpenAIConfig) Missing() []string {
	var missing []string
	for _, v := range []struct{ name, value string }{
		{"OPENAI_API_KEY", c.APIKey},
		{"AZURE_OPENAI_ENDPOINT", c.Endpoint},
		{"AZURE_OPENAI_MODEL", c.Model},
		{"AZURE_OPENAI_DEPLOYMENT", c.Deployment},
		{"AZURE_OPENAI_API_VERSION", c.APIVersion},
	} {
		if v.value == "" {
			missing = append(missing, v.name)
		}
	}
	return missing
}

// RateLimitConfig holds the sliding window parameters for chat turns.
type RateLimitConfig struct {
	Backend     string        `envconfig:"RATE_LIMIT_BACKEND" default:"memory"`
	Window      time.Duration `envconfig:"RATE_LIMIT_WINDOW" default:"60s"`
	MaxRequests int           `envconfig:"RATE_LIMIT_MAX_REQUESTS" default:"10"`
}

// ChatConfig holds orchestrator timeouts.
type ChatConfig struct {
	TitleTimeout   time.Duration `envconfig:"CHAT_TITLE_TIMEOUT" default:"20s"`
	PersistTimeout time.Duration `envconfig:"CHAT_PERSIST_TIMEOUT" default:"10s"`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks configuration for logical errors beyond required fields.
func (c *Config) Validate() error {
	switch c.Storage.Backend {
	case StorageBackendPostgres:
		if c.Database.DSN == "" {
			return fmt.Errorf("DATABASE_DSN is required for storage backend %q", c.Storage.Backend)
		}
	case StorageBackendMemory:
	default:
		return fmt.Errorf("unknown STORAGE_BACKEND %q", c.Storage.Backend)
	}

	switch c.RateLimit.Backend {
	case RateLimitBackendRedis:
		if c.Redis.URI == "" {
			return fmt.Errorf("REDIS_URI is required for rate limit backend %q", c.RateLimit.Backend)
		}
	case RateLimitBackendMemory:
	default:
		return fmt.Errorf("unknown RATE_LIMIT_BACKEND %q", c.RateLimit.Backend)
	}

	if c.RateLimit.Window <= 0 {
		return fmt.Errorf("RATE_LIMIT_WINDOW must be positive")
	}
	if c.RateLimit.MaxRequests <= 0 {
		return fmt.Errorf("RATE_LIMIT_MAX_REQUESTS must be positive")
	}
	return nil
}
