package config_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/docrelay/docrelay/config"
	"github.com/docrelay/docrelay/pkg/extractor"

	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

func clearProviderEnv(t *testing.T) {
	t.Helper()

	for _, key := range []string{
		"ADDRESS", "API_TOKEN", "LOG_LEVEL",
		"AZUREAI_API_URL", "AZUREAI_API_TOKEN", "AZUREAI_MODEL",
		"OPENAI_API_URL", "OPENAI_API_KEY", "OPENAI_MODEL",
		"GEMINI_API_KEY", "GEMINI_MODEL",
		"AZUREDI_API_URL", "AZUREDI_API_TOKEN",
	} {
		t.Setenv(key, "")
	}
}

func TestNewDefaults(t *testing.T) {
	clearProviderEnv(t)

	cfg, err := config.New(context.Background(), writeConfig(t, ""))
	require.NoError(t, err)

	require.Equal(t, config.DefaultAddress, cfg.Address)
	require.Empty(t, cfg.Token)
	require.NotNil(t, cfg.Logger)
	require.NotNil(t, cfg.Orchestrator)

	// Only the local text strategy needs no credentials.
	require.Equal(t, []extractor.Strategy{extractor.StrategyText}, cfg.Orchestrator.Registered())

	require.Contains(t, cfg.Clients(), "text")
}

func TestNewMissingFile(t *testing.T) {
	clearProviderEnv(t)

	cfg, err := config.New(context.Background(), filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	require.Equal(t, config.DefaultAddress, cfg.Address)
}

func TestNewInvalidYAML(t *testing.T) {
	clearProviderEnv(t)

	_, err := config.New(context.Background(), writeConfig(t, "server: ["))
	require.Error(t, err)
}

func TestNewServerSettings(t *testing.T) {
	clearProviderEnv(t)

	cfg, err := config.New(context.Background(), writeConfig(t, `
server:
  address: ":9090"
  token: "secret"
`))
	require.NoError(t, err)

	require.Equal(t, ":9090", cfg.Address)
	require.Equal(t, "secret", cfg.Token)
}

func TestNewEnvironmentOverrides(t *testing.T) {
	clearProviderEnv(t)

	t.Setenv("ADDRESS", ":7070")
	t.Setenv("API_TOKEN", "env-secret")

	cfg, err := config.New(context.Background(), writeConfig(t, `
server:
  address: ":9090"
  token: "file-secret"
`))
	require.NoError(t, err)

	require.Equal(t, ":7070", cfg.Address)
	require.Equal(t, "env-secret", cfg.Token)
}

func TestNewRegistersConfiguredProviders(t *testing.T) {
	clearProviderEnv(t)

	cfg, err := config.New(context.Background(), writeConfig(t, `
providers:
  azureai:
    url: "https://example.azure.com"
    token: "key"
  openai:
    token: "key"
  gemini:
    token: "key"
  azuredi:
    url: "https://example.cognitiveservices.azure.com"
    token: "key"
`))
	require.NoError(t, err)

	require.ElementsMatch(t, []extractor.Strategy{
		extractor.StrategyText,
		extractor.StrategyDefault,
		extractor.StrategyTables,
		extractor.StrategyVision,
		extractor.StrategyAlternate,
	}, cfg.Orchestrator.Registered())

	clients := cfg.Clients()

	for _, name := range []string{"text", "azureai", "openai", "gemini", "azuredi"} {
		require.Contains(t, clients, name)
	}
}

func TestNewProviderFromEnvironment(t *testing.T) {
	clearProviderEnv(t)

	t.Setenv("AZUREAI_API_URL", "https://example.azure.com")
	t.Setenv("AZUREAI_API_TOKEN", "key")

	cfg, err := config.New(context.Background(), writeConfig(t, ""))
	require.NoError(t, err)

	require.Contains(t, cfg.Orchestrator.Registered(), extractor.StrategyDefault)
}

func TestNewDefaultRateBudgets(t *testing.T) {
	clearProviderEnv(t)

	cfg, err := config.New(context.Background(), writeConfig(t, ""))
	require.NoError(t, err)

	tokens := cfg.Limiters.Tokens()

	require.InDelta(t, 60, tokens["azureai"], 1)
	require.InDelta(t, 50, tokens["openai"], 1)
	require.InDelta(t, 60, tokens["gemini"], 1)
	require.InDelta(t, 30, tokens["azuredi"], 1)
}

func TestNewRateBudgetOverride(t *testing.T) {
	clearProviderEnv(t)

	cfg, err := config.New(context.Background(), writeConfig(t, `
limits:
  openai:
    per_minute: 10
`))
	require.NoError(t, err)

	tokens := cfg.Limiters.Tokens()

	require.InDelta(t, 10, tokens["openai"], 1)
	require.InDelta(t, 60, tokens["azureai"], 1)
}
