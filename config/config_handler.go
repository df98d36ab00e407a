package config

import (
	"github.com/docrelay/docrelay/pkg/extractor"
	"github.com/docrelay/docrelay/pkg/extractor/handler"
	"github.com/docrelay/docrelay/pkg/validation"
)

type strategyHandler interface {
	extractor.Handler
	validation.Extractor
}

// registerHandlers builds one handler per strategy whose providers are
// configured, then pairs each with its validation secondary. Vision validates
// against the default strategy; every other strategy validates against
// alternate, falling back to default so no strategy validates against itself.
func (cfg *Config) registerHandlers(f *configFile) error {
	policy := f.retryPolicy()

	handlers := map[extractor.Strategy]strategyHandler{}

	handlers[extractor.StrategyText] = handler.NewDocument(extractor.StrategyText, cfg.clients["text"], nil)

	if client, ok := cfg.clients["azureai"]; ok {
		handlers[extractor.StrategyDefault] = handler.NewDocument(extractor.StrategyDefault, client, cfg.guard(client.Name(), policy))
	}

	if client, ok := cfg.clients["azuredi"]; ok {
		handlers[extractor.StrategyTables] = handler.NewDocument(extractor.StrategyTables, client, cfg.guard(client.Name(), policy))
	}

	if client, ok := cfg.clients["gemini"]; ok {
		handlers[extractor.StrategyAlternate] = handler.NewDocument(extractor.StrategyAlternate, client, cfg.guard(client.Name(), policy))
	}

	if client, ok := cfg.clients["openai"]; ok {
		handlers[extractor.StrategyVision] = handler.NewVision(cfg.clients["text"], client, cfg.guard(client.Name(), policy))
	}

	if f.Validation.Enabled {
		cfg.attachValidation(f, handlers)
	}

	for strategy, h := range handlers {
		cfg.handlers[strategy] = h
	}

	return nil
}

func (cfg *Config) attachValidation(f *configFile, handlers map[extractor.Strategy]strategyHandler) {
	options := []validation.CoordinatorOption{
		validation.WithThreshold(f.Validation.Threshold),
	}

	if method, err := validation.ParseMethod(f.Validation.Method); err == nil {
		options = append(options, validation.WithMethod(method))
	}

	for strategy, h := range handlers {
		secondary := secondaryFor(strategy, handlers)

		if secondary == nil {
			continue
		}

		coordinator := validation.NewCoordinator(secondary, options...)

		switch h := h.(type) {
		case *handler.Document:
			h.WithValidation(coordinator, true)

		case *handler.Vision:
			h.WithValidation(coordinator, true)
		}
	}
}

func secondaryFor(strategy extractor.Strategy, handlers map[extractor.Strategy]strategyHandler) validation.Extractor {
	candidates := []extractor.Strategy{
		extractor.StrategyAlternate,
		extractor.StrategyDefault,
	}

	if strategy == extractor.StrategyVision || strategy == extractor.StrategyAlternate {
		candidates = []extractor.Strategy{
			extractor.StrategyDefault,
			extractor.StrategyAlternate,
		}
	}

	for _, candidate := range candidates {
		if candidate == strategy {
			continue
		}

		if secondary, ok := handlers[candidate]; ok {
			return secondary
		}
	}

	return nil
}
