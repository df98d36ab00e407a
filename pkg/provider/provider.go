package provider

import (
	"context"
	"errors"
	"time"
)

// Client is the capability contract every document-understanding provider
// adapter satisfies. ProcessDocument handles a whole file, ExtractPage a
// single prepared page. Implementations must be safe for concurrent use.
type Client interface {
	Name() string

	ProcessDocument(ctx context.Context, path, query string) ([]Page, error)
	ExtractPage(ctx context.Context, page PageData, query string) (Page, error)

	HealthCheck(ctx context.Context) (*Health, error)
}

var (
	ErrUnsupported = errors.New("unsupported operation")
)

// PageSeparator delimits pages in assembled document text. Adapters that ask
// a model to emit multi-page output instruct it to use this marker.
const PageSeparator = "\n---PAGE-BREAK---\n"

// Page is one page of extracted content. Numbers are 1-based and contiguous
// within a document.
type Page struct {
	Number int `json:"number"`

	Content string `json:"content"`

	Metadata map[string]string `json:"metadata,omitempty"`
}

// PageData carries the raw material for a per-page extraction call. Text or
// Image may be empty depending on what the source document yields.
type PageData struct {
	Number int

	Text  string
	Image []byte
}

type Health struct {
	Healthy bool

	Latency time.Duration

	Error string
}

// MeasureHealth runs probe and converts its outcome and duration into a
// Health value. Shared by adapters so latency accounting stays uniform.
func MeasureHealth(ctx context.Context, probe func(context.Context) error) *Health {
	start := time.Now()
	err := probe(ctx)

	health := &Health{
		Healthy: err == nil,
		Latency: time.Since(start),
	}

	if err != nil {
		health.Error = err.Error()
	}

	return health
}
