package config

import (
	"fmt"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds all process-level configuration for the voxtake service.
// User-facing settings (API credential, selected model) live in the
// settings store, not here.
type Config struct {
	// Server configuration
	Port string `envconfig:"PORT" default:"8080"`

	// Directory of static UI assets served at /. Presentation is external
	// to this service; an empty or missing directory is fine.
	StaticDir string `envconfig:"STATIC_DIR" default:"static"`

	// Path of the JSON key-value file backing history and settings.
	DataFile string `envconfig:"DATA_FILE" default:"voxtake.json"`

	// Remote transcription provider (OpenAI-compatible audio API).
	ProviderBaseURL string `envconfig:"PROVIDER_BASE_URL" default:"https://api.groq.com/openai/v1"`

	// Endpoint the client half of the pipeline posts clips to.
	// Empty means this process's own /transcribe endpoint.
	TranscribeURL string `envconfig:"TRANSCRIBE_URL" default:""`

	// Directory for temporary upload files. Empty means the system temp dir.
	UploadDir string `envconfig:"UPLOAD_DIR" default:""`

	// Maximum accepted clip upload size in megabytes.
	MaxUploadMB int64 `envconfig:"MAX_UPLOAD_MB" default:"64"`

	// Observability configuration
	LogLevel       string `envconfig:"LOG_LEVEL" default:"info"`       // Log level: debug, info, warn, error
	LogPretty      bool   `envconfig:"LOG_PRETTY" default:"false"`     // Pretty print logs (for development)
	MetricsEnabled bool   `envconfig:"METRICS_ENABLED" default:"true"` // Enable Prometheus metrics
}

// Load reads configuration from environment variables.
// It first attempts to load from a .env file if one exists, then from
// the environment.
func Load() (*Config, error) {
	// Try to load .env file (ignore error if it doesn't exist)
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if cfg.MaxUploadMB <= 0 {
		return nil, fmt.Errorf("MAX_UPLOAD_MB must be positive, got %d", cfg.MaxUploadMB)
	}

	return &cfg, nil
}

// TranscribeEndpoint returns the URL the capture controller submits
// finished clips to. Defaults to this process's own transcribe route.
func (c *Config) TranscribeEndpoint() string {
	if c.TranscribeURL != "" {
		return c.TranscribeURL
	}
	return fmt.Sprintf("http://localhost:%s/transcribe", c.Port)
}

// MaxUploadBytes returns the upload size cap in bytes.
func (c *Config) MaxUploadBytes() int64 {
	return c.MaxUploadMB << 20
}
