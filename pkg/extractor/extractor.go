// Package extractor routes extraction queries to interchangeable strategies
// and orchestrates their execution.
package extractor

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/docrelay/docrelay/pkg/provider"
	"github.com/docrelay/docrelay/pkg/validation"
)

// Strategy identifies one extraction approach. The set is closed; a run's
// strategy never changes once chosen.
type Strategy string

const (
	// StrategyText extracts embedded text locally, no AI involved.
	StrategyText Strategy = "text"

	// StrategyDefault is the general-purpose AI extraction and the routing
	// fallback.
	StrategyDefault Strategy = "default"

	// StrategyTables targets documents with complex tables and forms.
	StrategyTables Strategy = "tables"

	// StrategyVision handles scanned and image-heavy documents via OCR.
	StrategyVision Strategy = "vision"

	// StrategyAlternate is the named alternate AI provider.
	StrategyAlternate Strategy = "alternate"
)

// ContentSeparator joins page contents into a single document string.
const ContentSeparator = provider.PageSeparator

var (
	ErrNoHandler = errors.New("no handler registered for strategy")
)

// ParseStrategy resolves a strategy name or one of its historical aliases.
func ParseStrategy(s string) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "text", "text_extraction", "text-extraction":
		return StrategyText, nil

	case "default", "mistral":
		return StrategyDefault, nil

	case "tables", "azure_di", "azure-di", "azuredi", "azure":
		return StrategyTables, nil

	case "vision", "ocr", "ocr_images":
		return StrategyVision, nil

	case "alternate", "gemini":
		return StrategyAlternate, nil
	}

	return "", fmt.Errorf("unknown strategy: %q", s)
}

// Options carries per-request overrides. A zero value means "route by query,
// validate per the handler's default".
type Options struct {
	// Strategy skips routing when set.
	Strategy Strategy

	// Validate overrides the configured validation default.
	Validate *bool
}

// Result is one extraction run's output. Content is exactly the ordered join
// of the page contents with ContentSeparator.
type Result struct {
	Content string `json:"content"`

	Pages []provider.Page `json:"pages"`

	Metadata map[string]any `json:"metadata"`

	Validation *validation.Report `json:"validation,omitempty"`
}

// Handler executes one strategy end to end.
type Handler interface {
	Execute(ctx context.Context, path, query string, opts *Options) (*Result, error)
}

// Kind classifies an extraction failure. Provider failures may succeed on a
// different strategy; config failures are wiring bugs.
type Kind string

const (
	KindProvider Kind = "provider"
	KindConfig   Kind = "config"
)

// Error wraps a failed extraction with the strategy that ran.
type Error struct {
	Kind Kind

	Strategy Strategy

	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("extraction failed (strategy %s): %v", e.Strategy, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Sort orders pages by page number in place. Per-page work may complete in
// any order; the assembled result must not.
func Sort(pages []provider.Page) {
	sort.Slice(pages, func(i, j int) bool {
		return pages[i].Number < pages[j].Number
	})
}

// Join concatenates page contents in slice order with ContentSeparator.
func Join(pages []provider.Page) string {
	parts := make([]string, len(pages))

	for i, page := range pages {
		parts[i] = page.Content
	}

	return strings.Join(parts, ContentSeparator)
}
