package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, dir, content string) {
	t.Helper()
	cfgDir := filepath.Join(dir, ".readerctl")
	require.NoError(t, os.MkdirAll(cfgDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(cfgDir, "config.yaml"), []byte(content), 0o644))
}

func TestLoad_Default(t *testing.T) {
	t.Parallel()

	// Temp directory without a config file
	tmpDir := t.TempDir()

	cfg, err := Load(tmpDir)
	require.NoError(t, err)

	assert.Equal(t, DefaultServerBaseURL, cfg.Server.BaseURL)
	assert.Equal(t, DefaultPollIntervalMS, cfg.Poll.IntervalMS)
	assert.Equal(t, DefaultGithubAPIURL, cfg.Github.APIURL)
	assert.Equal(t, DefaultGithubRetries, cfg.Github.MaxRetries)
	assert.Equal(t, DefaultLogLevel, cfg.LogLevel)
}

func TestLoad_ValidFile(t *testing.T) {
	t.Parallel()

	tmpDir := t.TempDir()
	writeConfig(t, tmpDir, `server:
  base_url: https://reader.example.com
  timeout_seconds: 30
poll:
  interval_ms: 2000
github:
  max_retries: 5
log_level: debug
`)

	cfg, err := Load(tmpDir)
	require.NoError(t, err)

	assert.Equal(t, "https://reader.example.com", cfg.Server.BaseURL)
	assert.Equal(t, 30, cfg.Server.TimeoutSeconds)
	assert.Equal(t, 2000, cfg.Poll.IntervalMS)
	assert.Equal(t, 5, cfg.Github.MaxRetries)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoad_PartialFile(t *testing.T) {
	t.Parallel()

	tmpDir := t.TempDir()

	// Only set the poll interval, rest should keep defaults
	writeConfig(t, tmpDir, `poll:
  interval_ms: 1000
`)

	cfg, err := Load(tmpDir)
	require.NoError(t, err)

	assert.Equal(t, 1000, cfg.Poll.IntervalMS)
	assert.Equal(t, DefaultServerBaseURL, cfg.Server.BaseURL)
	assert.Equal(t, DefaultGithubAPIURL, cfg.Github.APIURL)
}

func TestLoad_InvalidYAML(t *testing.T) {
	t.Parallel()

	tmpDir := t.TempDir()
	writeConfig(t, tmpDir, "server: [not: valid")

	_, err := Load(tmpDir)
	assert.ErrorContains(t, err, "failed to parse config file")
}

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		mutate   func(*Config)
		expected string // empty means valid
	}{
		{
			name:   "defaults are valid",
			mutate: func(c *Config) {},
		},
		{
			name:     "empty base url",
			mutate:   func(c *Config) { c.Server.BaseURL = "" },
			expected: "server.base_url",
		},
		{
			name:     "relative base url",
			mutate:   func(c *Config) { c.Server.BaseURL = "localhost:8123" },
			expected: "server.base_url",
		},
		{
			name:     "zero server timeout",
			mutate:   func(c *Config) { c.Server.TimeoutSeconds = 0 },
			expected: "server.timeout_seconds",
		},
		{
			name:     "negative poll interval",
			mutate:   func(c *Config) { c.Poll.IntervalMS = -1 },
			expected: "poll.interval_ms",
		},
		{
			name:     "poll interval below floor",
			mutate:   func(c *Config) { c.Poll.IntervalMS = 100 },
			expected: "poll.interval_ms",
		},
		{
			name:     "empty github api url",
			mutate:   func(c *Config) { c.Github.APIURL = "" },
			expected: "github.api_url",
		},
		{
			name:     "negative retries",
			mutate:   func(c *Config) { c.Github.MaxRetries = -1 },
			expected: "github.max_retries",
		},
		{
			name:   "zero retries is fine",
			mutate: func(c *Config) { c.Github.MaxRetries = 0 },
		},
		{
			name:     "zero cache entries",
			mutate:   func(c *Config) { c.Github.CacheEntries = 0 },
			expected: "github.cache_entries",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := DefaultConfig()
			tt.mutate(&cfg)

			err := Validate(&cfg)
			if tt.expected == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, IsValidationError(err))
			assert.ErrorContains(t, err, tt.expected)
		})
	}
}

func TestDurationHelpers(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	assert.Equal(t, 15*time.Second, cfg.ServerTimeout())
	assert.Equal(t, 5*time.Second, cfg.PollInterval())
	assert.Equal(t, 30*time.Second, cfg.GithubTimeout())
	assert.Equal(t, 5*time.Minute, cfg.GithubCacheTTL())
}

func TestLoadEnv_FileAndProcess(t *testing.T) {
	tmpDir := t.TempDir()
	envContent := "READER_TOKEN=file-reader\nGITHUB_TOKEN=file-github\n"
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, ".env"), []byte(envContent), 0o600))

	// Process environment wins over the file.
	t.Setenv(EnvGithubToken, "proc-github")
	t.Setenv(EnvReaderToken, "")

	env := LoadEnv(tmpDir)
	assert.Equal(t, "file-reader", env.ReaderToken)
	assert.Equal(t, "proc-github", env.GithubToken)
}

func TestLoadEnv_MissingFile(t *testing.T) {
	t.Setenv(EnvReaderToken, "")
	t.Setenv(EnvGithubToken, "")

	env := LoadEnv(t.TempDir())
	assert.Empty(t, env.ReaderToken)
	assert.Empty(t, env.GithubToken)
}
