package handler

import (
	"context"
	"fmt"
	"time"

	"github.com/docrelay/docrelay/pkg/extractor"
	"github.com/docrelay/docrelay/pkg/provider"
	"github.com/docrelay/docrelay/pkg/resilience"
	"github.com/docrelay/docrelay/pkg/validation"

	"golang.org/x/sync/errgroup"
)

var (
	_ extractor.Handler    = (*Vision)(nil)
	_ validation.Extractor = (*Vision)(nil)
)

const defaultPageConcurrency = 5

// Vision composes two providers: a local layout pass that splits the document
// into pages, then a vision model re-extracting each page. Page fan-out is
// bounded; results are re-ordered by page number before assembly.
type Vision struct {
	layout provider.Client
	vision provider.Client

	guard *resilience.Guard

	concurrency int

	validator validator
}

func NewVision(layout, vision provider.Client, guard *resilience.Guard) *Vision {
	return &Vision{
		layout: layout,
		vision: vision,

		guard: guard,

		concurrency: defaultPageConcurrency,
	}
}

func (h *Vision) WithValidation(coordinator *validation.Coordinator, byDefault bool) *Vision {
	h.validator = validator{coordinator, byDefault}
	return h
}

func (h *Vision) WithPageConcurrency(limit int) *Vision {
	if limit > 0 {
		h.concurrency = limit
	}

	return h
}

func (h *Vision) Execute(ctx context.Context, path, query string, opts *extractor.Options) (*extractor.Result, error) {
	start := time.Now()

	layoutPages, err := h.layout.ProcessDocument(ctx, path, query)

	if err != nil {
		return nil, fmt.Errorf("layout pass: %w", err)
	}

	pages := make([]provider.Page, len(layoutPages))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(h.concurrency)

	for i, layoutPage := range layoutPages {
		g.Go(func() error {
			data := provider.PageData{
				Number: layoutPage.Number,

				Text: layoutPage.Content,
			}

			var page provider.Page

			err := h.guard.Do(ctx, func(ctx context.Context) error {
				var err error
				page, err = h.vision.ExtractPage(ctx, data, query)

				return err
			})

			if err != nil {
				return fmt.Errorf("page %d: %w", layoutPage.Number, err)
			}

			pages[i] = page

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("vision pass: %w", err)
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
		"strategy": string(extractor.StrategyVision),
		"provider": h.vision.Name(),
		"layout":   h.layout.Name(),

		"pages":       len(result.Pages),
		"duration_ms": time.Since(start).Milliseconds(),

		"validation_enabled": validate,
	}

	return result, nil
}

func (h *Vision) Extract(ctx context.Context, path, query string) (string, []provider.Page, error) {
	result, err := h.Execute(ctx, path, query, disabledValidation())

	if err != nil {
		return "", nil, err
	}

	return result.Content, result.Pages, nil
}
