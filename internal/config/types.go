package config

import "time"

// ServerConfig points at the analysis backend.
type ServerConfig struct {
	BaseURL        string `yaml:"base_url"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// PollConfig controls the status polling loop.
type PollConfig struct {
	IntervalMS int `yaml:"interval_ms"`
}

// GithubConfig controls the read-only GitHub mirror.
type GithubConfig struct {
	APIURL         string `yaml:"api_url"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
	MaxRetries     int    `yaml:"max_retries"`
	CacheEntries   int    `yaml:"cache_entries"`
	CacheTTLSec    int    `yaml:"cache_ttl_seconds"`
}

// Config represents the .readerctl/config.yaml file. Tokens never live in
// the file; they come from the environment (see LoadEnv).
type Config struct {
	Server   ServerConfig `yaml:"server"`
	Poll     PollConfig   `yaml:"poll"`
	Github   GithubConfig `yaml:"github"`
	LogLevel string       `yaml:"log_level"`
}

// ServerTimeout returns the backend request timeout as a duration.
func (c *Config) ServerTimeout() time.Duration {
	return time.Duration(c.Server.TimeoutSeconds) * time.Second
}

// PollInterval returns the poll period as a duration.
func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.Poll.IntervalMS) * time.Millisecond
}

// GithubTimeout returns the GitHub request timeout as a duration.
func (c *Config) GithubTimeout() time.Duration {
	return time.Duration(c.Github.TimeoutSeconds) * time.Second
}

// GithubCacheTTL returns the GitHub cache entry lifetime as a duration.
func (c *Config) GithubCacheTTL() time.Duration {
	return time.Duration(c.Github.CacheTTLSec) * time.Second
}

// Environment variable names consumed by LoadEnv.
const (
	EnvReaderToken = "READER_TOKEN"
	EnvGithubToken = "GITHUB_TOKEN"
)
