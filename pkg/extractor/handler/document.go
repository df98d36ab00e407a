package handler

import (
	"context"
	"fmt"
	"time"

	"github.com/docrelay/docrelay/pkg/extractor"
	"github.com/docrelay/docrelay/pkg/provider"
	"github.com/docrelay/docrelay/pkg/resilience"
	"github.com/docrelay/docrelay/pkg/validation"
)

var (
	_ extractor.Handler    = (*Document)(nil)
	_ validation.Extractor = (*Document)(nil)
)

// Document runs a whole-document extraction through a single provider
// client. It backs the text, default, tables and alternate strategies; a nil
// guard means the client makes no outbound calls.
type Document struct {
	strategy extractor.Strategy

	client provider.Client
	guard  *resilience.Guard

	validator validator
}

func NewDocument(strategy extractor.Strategy, client provider.Client, guard *resilience.Guard) *Document {
	return &Document{
		strategy: strategy,

		client: client,
		guard:  guard,
	}
}

// WithValidation attaches a validation coordinator. Must be called before the
// handler is registered; handlers are immutable afterwards.
func (h *Document) WithValidation(coordinator *validation.Coordinator, byDefault bool) *Document {
	h.validator = validator{coordinator, byDefault}
	return h
}

func (h *Document) Execute(ctx context.Context, path, query string, opts *extractor.Options) (*extractor.Result, error) {
	start := time.Now()

	var pages []provider.Page

	run := func(ctx context.Context) error {
		var err error
		pages, err = h.client.ProcessDocument(ctx, path, query)

		return err
	}

	var err error

	if h.guard != nil {
		err = h.guard.Do(ctx, run)
	} else {
		err = run(ctx)
	}

	if err != nil {
		return nil, fmt.Errorf("process document: %w", err)
	}

	extractor.Sort(pages)

	result := &extractor.Result{
		Content: extractor.Join(pages),
		Pages:   pages,
	}

	validate := h.validator.enabled(opts)

	if validate {
		outcome := h.validator.coordinator.Validate(ctx, result.Content, result.Pages, path, query)

		result.Validation = outcome.Report

		if outcome.Report.UsedSecondary {
			result.Content = outcome.Content
			result.Pages = outcome.Pages
		}
	}

	result.Metadata = map[string]any{
		"strategy": string(h.strategy),
		"provider": h.client.Name(),

		"pages":       len(result.Pages),
		"duration_ms": time.Since(start).Milliseconds(),

		"validation_enabled": validate,
	}

	return result, nil
}

// Extract satisfies validation.Extractor so this handler can serve as another
// strategy's secondary extraction. Validation is forced off to keep secondary
// runs from cascading.
func (h *Document) Extract(ctx context.Context, path, query string) (string, []provider.Page, error) {
	result, err := h.Execute(ctx, path, query, disabledValidation())

	if err != nil {
		return "", nil, err
	}

	return result.Content, result.Pages, nil
}
