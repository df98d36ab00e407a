// Package config loads the YAML configuration, applies environment overrides
// and wires providers, guards, validation and handlers into a ready
// orchestrator.
package config

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/docrelay/docrelay/pkg/extractor"
	"github.com/docrelay/docrelay/pkg/logger"
	"github.com/docrelay/docrelay/pkg/provider"
	"github.com/docrelay/docrelay/pkg/resilience"

	"gopkg.in/yaml.v3"
)

const (
	DefaultAddress = ":8080"

	// MaxUploadSize caps document uploads at 50MB.
	MaxUploadSize = int64(50 << 20)
)

type Config struct {
	Address string
	Token   string

	Logger logger.Logger

	Orchestrator *extractor.Orchestrator

	Limiters *resilience.Limiters

	clients  map[string]provider.Client
	handlers map[extractor.Strategy]extractor.Handler
}

type configFile struct {
	Server struct {
		Address string `yaml:"address"`
		Token   string `yaml:"token"`
	} `yaml:"server"`

	Logging struct {
		Level string `yaml:"level"`
		JSON  bool   `yaml:"json"`
	} `yaml:"logging"`

	Providers map[string]providerConfig `yaml:"providers"`

	Limits map[string]resilience.RateBudget `yaml:"limits"`

	Retry *resilience.RetryPolicy `yaml:"retry"`

	Validation validationConfig `yaml:"validation"`
}

type providerConfig struct {
	URL   string `yaml:"url"`
	Token string `yaml:"token"`
	Model string `yaml:"model"`
}

type validationConfig struct {
	Enabled bool `yaml:"enabled"`

	Threshold float64 `yaml:"threshold"`
	Method    string  `yaml:"method"`
}

func New(ctx context.Context, path string) (*Config, error) {
	f, err := parseFile(path)

	if err != nil {
		return nil, err
	}

	applyEnvironment(f)

	cfg := &Config{
		Address: f.Server.Address,
		Token:   f.Server.Token,

		Logger: logger.New(logger.Options{
			Level: logger.Level(f.Logging.Level),
			JSON:  f.Logging.JSON,
		}),

		clients:  map[string]provider.Client{},
		handlers: map[extractor.Strategy]extractor.Handler{},
	}

	if cfg.Address == "" {
		cfg.Address = DefaultAddress
	}

	if err := cfg.registerProviders(ctx, f); err != nil {
		return nil, err
	}

	if err := cfg.registerHandlers(f); err != nil {
		return nil, err
	}

	cfg.Orchestrator = extractor.NewOrchestrator(cfg.handlers)

	return cfg, nil
}

// Clients exposes the configured providers for health checks.
func (cfg *Config) Clients() map[string]provider.Client {
	clients := make(map[string]provider.Client, len(cfg.clients))

	for name, client := range cfg.clients {
		clients[name] = client
	}

	return clients
}

func parseFile(path string) (*configFile, error) {
	f := new(configFile)

	if path == "" {
		return f, nil
	}

	data, err := os.ReadFile(path)

	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return f, nil
		}

		return nil, fmt.Errorf("read config: %w", err)
	}

	if err := yaml.Unmarshal(data, f); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	return f, nil
}

func applyEnvironment(f *configFile) {
	if val := os.Getenv("ADDRESS"); val != "" {
		f.Server.Address = val
	}

	if val := os.Getenv("API_TOKEN"); val != "" {
		f.Server.Token = val
	}

	if val := os.Getenv("LOG_LEVEL"); val != "" {
		f.Logging.Level = val
	}

	overrides := map[string]providerConfig{
		"azureai": {
			URL:   os.Getenv("AZUREAI_API_URL"),
			Token: os.Getenv("AZUREAI_API_TOKEN"),
			Model: os.Getenv("AZUREAI_MODEL"),
		},
		"openai": {
			URL:   os.Getenv("OPENAI_API_URL"),
			Token: os.Getenv("OPENAI_API_KEY"),
			Model: os.Getenv("OPENAI_MODEL"),
		},
		"gemini": {
			Token: os.Getenv("GEMINI_API_KEY"),
			Model: os.Getenv("GEMINI_MODEL"),
		},
		"azuredi": {
			URL:   os.Getenv("AZUREDI_API_URL"),
			Token: os.Getenv("AZUREDI_API_TOKEN"),
		},
	}

	for name, override := range overrides {
		current := f.Providers[name]

		if override.URL != "" {
			current.URL = override.URL
		}

		if override.Token != "" {
			current.Token = override.Token
		}

		if override.Model != "" {
			current.Model = override.Model
		}

		if current == (providerConfig{}) {
			continue
		}

		if f.Providers == nil {
			f.Providers = map[string]providerConfig{}
		}

		f.Providers[name] = current
	}
}

func (f *configFile) retryPolicy() resilience.RetryPolicy {
	policy := resilience.DefaultRetryPolicy()

	if f.Retry == nil {
		return policy
	}

	if f.Retry.MaxAttempts > 0 {
		policy.MaxAttempts = f.Retry.MaxAttempts
	}

	if f.Retry.BaseDelay > 0 {
		policy.BaseDelay = f.Retry.BaseDelay
	}

	if f.Retry.Factor > 0 {
		policy.Factor = f.Retry.Factor
	}

	if len(f.Retry.RetryableStatus) > 0 {
		policy.RetryableStatus = f.Retry.RetryableStatus
	}

	return policy
}

// rateBudgets merges the configured limits over the built-in per-provider
// defaults (requests per minute).
func (f *configFile) rateBudgets() map[string]resilience.RateBudget {
	budgets := map[string]resilience.RateBudget{
		"azureai": {PerMinute: 60},
		"openai":  {PerMinute: 50},
		"gemini":  {PerMinute: 60},
		"azuredi": {PerMinute: 30},
	}

	for name, budget := range f.Limits {
		budgets[name] = budget
	}

	return budgets
}
