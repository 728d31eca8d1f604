package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Default values for Config.
const (
	DefaultServerBaseURL  = "http://localhost:8123"
	DefaultServerTimeout  = 15
	DefaultPollIntervalMS = 5000
	DefaultGithubAPIURL   = "https://api.github.com"
	DefaultGithubTimeout  = 30
	DefaultGithubRetries  = 3
	DefaultCacheEntries   = 256
	DefaultCacheTTLSec    = 300
	DefaultLogLevel       = "warn"
)

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig() Config {
	return Config{
		Server: ServerConfig{
			BaseURL:        DefaultServerBaseURL,
			TimeoutSeconds: DefaultServerTimeout,
		},
		Poll: PollConfig{
			IntervalMS: DefaultPollIntervalMS,
		},
		Github: GithubConfig{
			APIURL:         DefaultGithubAPIURL,
			TimeoutSeconds: DefaultGithubTimeout,
			MaxRetries:     DefaultGithubRetries,
			CacheEntries:   DefaultCacheEntries,
			CacheTTLSec:    DefaultCacheTTLSec,
		},
		LogLevel: DefaultLogLevel,
	}
}

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("validation error: %s: %s", e.Field, e.Message)
}

// IsValidationError checks if an error is a ValidationError.
func IsValidationError(err error) bool {
	var ve ValidationError
	return errors.As(err, &ve)
}

// Load reads and parses .readerctl/config.yaml from the given base path.
// A missing file yields the defaults; a present file is merged over them.
func Load(basePath string) (*Config, error) {
	configPath := filepath.Join(basePath, ".readerctl", "config.yaml")

	cfg := DefaultConfig()
	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return &cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks that all config values are usable.
func Validate(cfg *Config) error {
	if cfg.Server.BaseURL == "" {
		return ValidationError{Field: "server.base_url", Message: "required field is empty"}
	}
	if u, err := url.Parse(cfg.Server.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		return ValidationError{Field: "server.base_url", Message: "must be an absolute URL"}
	}
	if cfg.Server.TimeoutSeconds <= 0 {
		return ValidationError{Field: "server.timeout_seconds", Message: "must be positive"}
	}
	if cfg.Poll.IntervalMS <= 0 {
		return ValidationError{Field: "poll.interval_ms", Message: "must be positive"}
	}
	if cfg.Poll.IntervalMS < 500 {
		return ValidationError{Field: "poll.interval_ms", Message: "must be at least 500"}
	}
	if cfg.Github.APIURL == "" {
		return ValidationError{Field: "github.api_url", Message: "required field is empty"}
	}
	if cfg.Github.TimeoutSeconds <= 0 {
		return ValidationError{Field: "github.timeout_seconds", Message: "must be positive"}
	}
	if cfg.Github.MaxRetries < 0 {
		return ValidationError{Field: "github.max_retries", Message: "must not be negative"}
	}
	if cfg.Github.CacheEntries <= 0 {
		return ValidationError{Field: "github.cache_entries", Message: "must be positive"}
	}
	if cfg.Github.CacheTTLSec <= 0 {
		return ValidationError{Field: "github.cache_ttl_seconds", Message: "must be positive"}
	}
	return nil
}

// Env holds secrets loaded from the environment.
type Env struct {
	ReaderToken string
	GithubToken string
}

// LoadEnv reads tokens from a .env file in basePath (when present) and the
// process environment, the latter taking precedence.
func LoadEnv(basePath string) Env {
	vars := map[string]string{}
	if fileVars, err := godotenv.Read(filepath.Join(basePath, ".env")); err == nil {
		vars = fileVars
	}

	lookup := func(key string) string {
		if v := os.Getenv(key); v != "" {
			return v
		}
		return vars[key]
	}

	return Env{
		ReaderToken: lookup(EnvReaderToken),
		GithubToken: lookup(EnvGithubToken),
	}
}
