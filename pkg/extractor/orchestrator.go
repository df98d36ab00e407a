package extractor

import (
	"context"
	"fmt"
	"time"

	"github.com/docrelay/docrelay/pkg/logger"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("github.com/docrelay/docrelay/pkg/extractor")

// Orchestrator maps strategies to their handlers and executes the one a
// request resolves to. The registry is built once and never mutated; the
// orchestrator itself holds no per-request state.
type Orchestrator struct {
	handlers map[Strategy]Handler
}

func NewOrchestrator(handlers map[Strategy]Handler) *Orchestrator {
	registry := make(map[Strategy]Handler, len(handlers))

	for strategy, handler := range handlers {
		registry[strategy] = handler
	}

	return &Orchestrator{
		handlers: registry,
	}
}

// RunExtraction resolves the strategy (explicit override first, router
// otherwise), executes its handler and returns the result unchanged. A
// missing handler is a wiring bug, never a user error.
func (o *Orchestrator) RunExtraction(ctx context.Context, path, query string, opts *Options) (*Result, error) {
	if opts == nil {
		opts = new(Options)
	}

	strategy := opts.Strategy

	if strategy == "" {
		strategy = Route(query)
	}

	ctx, span := tracer.Start(ctx, "extraction.run")
	defer span.End()

	span.SetAttributes(attribute.String("strategy", string(strategy)))

	handler, ok := o.handlers[strategy]

	if !ok {
		err := &Error{
			Kind: KindConfig,

			Strategy: strategy,
			Err:      fmt.Errorf("%w: %s", ErrNoHandler, strategy),
		}

		span.SetStatus(codes.Error, err.Error())

		return nil, err
	}

	log := logger.FromContext(ctx).With("strategy", strategy)
	log.Info("starting extraction", "path", path)

	start := time.Now()

	result, err := handler.Execute(ctx, path, query, opts)

	if err != nil {
		log.Error("extraction failed", "error", err)
		span.SetStatus(codes.Error, err.Error())

		return nil, &Error{Kind: KindProvider, Strategy: strategy, Err: err}
	}

	log.Info("extraction complete",
		"pages", len(result.Pages),
		"content_length", len(result.Content),
		"duration", time.Since(start))

	return result, nil
}

// Registered lists the strategies this orchestrator can execute.
func (o *Orchestrator) Registered() []Strategy {
	var registered []Strategy

	for _, strategy := range Strategies() {
		if _, ok := o.handlers[strategy]; ok {
			registered = append(registered, strategy)
		}
	}

	return registered
}
