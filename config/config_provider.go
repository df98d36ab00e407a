package config

import (
	"context"

	"github.com/docrelay/docrelay/pkg/provider/azureai"
	"github.com/docrelay/docrelay/pkg/provider/azuredi"
	"github.com/docrelay/docrelay/pkg/provider/gemini"
	"github.com/docrelay/docrelay/pkg/provider/openai"
	"github.com/docrelay/docrelay/pkg/provider/text"
	"github.com/docrelay/docrelay/pkg/resilience"
)

// registerProviders builds every configured provider client plus the shared
// limiter registry and per-provider guards. The local text provider is always
// available and never gated.
func (cfg *Config) registerProviders(ctx context.Context, f *configFile) error {
	cfg.Limiters = resilience.NewLimiters(f.rateBudgets())

	cfg.clients["text"] = text.New()

	if c, ok := f.Providers["azureai"]; ok {
		client, err := azureai.New(c.URL, c.Model, azureai.WithToken(c.Token))

		if err != nil {
			return err
		}

		cfg.clients[client.Name()] = client
	}

	if c, ok := f.Providers["openai"]; ok {
		client, err := openai.New(c.URL, c.Model, openai.WithToken(c.Token))

		if err != nil {
			return err
		}

		cfg.clients[client.Name()] = client
	}

	if c, ok := f.Providers["gemini"]; ok {
		client, err := gemini.New(ctx, c.Token, c.Model)

		if err != nil {
			return err
		}

		cfg.clients[client.Name()] = client
	}

	if c, ok := f.Providers["azuredi"]; ok {
		client, err := azuredi.New(c.URL, azuredi.WithToken(c.Token))

		if err != nil {
			return err
		}

		cfg.clients[client.Name()] = client
	}

	return nil
}

func (cfg *Config) guard(name string, policy resilience.RetryPolicy) *resilience.Guard {
	return resilience.NewGuard(name, cfg.Limiters.Get(name), policy)
}
