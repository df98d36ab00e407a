package extractor_test

import (
	"context"
	"errors"
	"testing"

	"github.com/docrelay/docrelay/pkg/extractor"
	"github.com/docrelay/docrelay/pkg/provider"

	"github.com/stretchr/testify/require"
)

type stubHandler struct {
	result *extractor.Result
	err    error

	calls int
}

func (h *stubHandler) Execute(ctx context.Context, path, query string, opts *extractor.Options) (*extractor.Result, error) {
	h.calls++

	return h.result, h.err
}

func TestRunExtractionRoutesByQuery(t *testing.T) {
	vision := &stubHandler{result: &extractor.Result{Content: "vision"}}
	fallback := &stubHandler{result: &extractor.Result{Content: "default"}}

	o := extractor.NewOrchestrator(map[extractor.Strategy]extractor.Handler{
		extractor.StrategyVision:  vision,
		extractor.StrategyDefault: fallback,
	})

	result, err := o.RunExtraction(context.Background(), "doc.pdf", "scanned pages", nil)
	require.NoError(t, err)
	require.Equal(t, "vision", result.Content)
	require.Equal(t, 1, vision.calls)
	require.Equal(t, 0, fallback.calls)

	result, err = o.RunExtraction(context.Background(), "doc.pdf", "", nil)
	require.NoError(t, err)
	require.Equal(t, "default", result.Content)
	require.Equal(t, 1, fallback.calls)
}

func TestRunExtractionStrategyOverride(t *testing.T) {
	vision := &stubHandler{result: &extractor.Result{Content: "vision"}}
	fallback := &stubHandler{result: &extractor.Result{Content: "default"}}

	o := extractor.NewOrchestrator(map[extractor.Strategy]extractor.Handler{
		extractor.StrategyVision:  vision,
		extractor.StrategyDefault: fallback,
	})

	// The query alone would route to vision; the override wins.
	result, err := o.RunExtraction(context.Background(), "doc.pdf", "scanned pages", &extractor.Options{
		Strategy: extractor.StrategyDefault,
	})

	require.NoError(t, err)
	require.Equal(t, "default", result.Content)
	require.Equal(t, 0, vision.calls)
}

func TestRunExtractionMissingHandler(t *testing.T) {
	o := extractor.NewOrchestrator(map[extractor.Strategy]extractor.Handler{})

	_, err := o.RunExtraction(context.Background(), "doc.pdf", "", nil)

	require.Error(t, err)
	require.ErrorIs(t, err, extractor.ErrNoHandler)

	var extractionErr *extractor.Error
	require.ErrorAs(t, err, &extractionErr)
	require.Equal(t, extractor.KindConfig, extractionErr.Kind)
}

func TestRunExtractionWrapsHandlerError(t *testing.T) {
	boom := errors.New("boom")

	o := extractor.NewOrchestrator(map[extractor.Strategy]extractor.Handler{
		extractor.StrategyDefault: &stubHandler{err: boom},
	})

	_, err := o.RunExtraction(context.Background(), "doc.pdf", "", nil)

	require.Error(t, err)
	require.ErrorIs(t, err, boom)

	var extractionErr *extractor.Error
	require.ErrorAs(t, err, &extractionErr)
	require.Equal(t, extractor.KindProvider, extractionErr.Kind)
	require.Equal(t, extractor.StrategyDefault, extractionErr.Strategy)
}

func TestRegistered(t *testing.T) {
	o := extractor.NewOrchestrator(map[extractor.Strategy]extractor.Handler{
		extractor.StrategyDefault: &stubHandler{},
		extractor.StrategyText:    &stubHandler{},
	})

	require.Equal(t, []extractor.Strategy{extractor.StrategyText, extractor.StrategyDefault}, o.Registered())
}

func TestSortAndJoin(t *testing.T) {
	pages := []provider.Page{
		{Number: 3, Content: "C"},
		{Number: 1, Content: "A"},
		{Number: 2, Content: "B"},
	}

	extractor.Sort(pages)

	require.Equal(t, 1, pages[0].Number)
	require.Equal(t, 3, pages[2].Number)

	require.Equal(t, "A\n---PAGE-BREAK---\nB\n---PAGE-BREAK---\nC", extractor.Join(pages))
}
