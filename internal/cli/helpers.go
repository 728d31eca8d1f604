package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/codereader/readerctl/internal/api"
	"github.com/codereader/readerctl/internal/config"
	"github.com/codereader/readerctl/internal/githubfs"
	"github.com/codereader/readerctl/internal/state"
)

// gatewayFactory builds the backend client used by commands.
// It can be overridden in tests.
var gatewayFactory func(cfg *config.Config, env config.Env) api.Gateway

// storeFactory builds the local run store. It can be overridden in tests.
var storeFactory func(basePath string) *state.Store

// githubFactory builds the GitHub client. It can be overridden in tests.
var githubFactory func(cfg *config.Config, env config.Env) *githubfs.Client

// timeNow is stubbed in tests.
var timeNow = time.Now

// setup loads config and env from the current working directory.
func setup() (*config.Config, config.Env, string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, config.Env{}, "", fmt.Errorf("failed to get current directory: %w", err)
	}

	cfg, err := config.Load(cwd)
	if err != nil {
		return nil, config.Env{}, "", fmt.Errorf("failed to load config: %w", err)
	}

	return cfg, config.LoadEnv(cwd), cwd, nil
}

func newGateway(cfg *config.Config, env config.Env) api.Gateway {
	if gatewayFactory != nil {
		return gatewayFactory(cfg, env)
	}
	opts := []api.ClientOption{api.WithTimeout(cfg.ServerTimeout())}
	if env.ReaderToken != "" {
		opts = append(opts, api.WithAuthToken(env.ReaderToken))
	}
	return api.NewClient(cfg.Server.BaseURL, opts...)
}

func newStore(basePath string) *state.Store {
	if storeFactory != nil {
		return storeFactory(basePath)
	}
	return state.NewStore(basePath)
}

func newGithubClient(cfg *config.Config, env config.Env) *githubfs.Client {
	if githubFactory != nil {
		return githubFactory(cfg, env)
	}
	return githubfs.NewClient(githubfs.Options{
		APIURL:       cfg.Github.APIURL,
		Token:        env.GithubToken,
		Timeout:      cfg.GithubTimeout(),
		MaxRetries:   cfg.Github.MaxRetries,
		CacheEntries: cfg.Github.CacheEntries,
		CacheTTL:     cfg.GithubCacheTTL(),
	})
}
