// Package text extracts embedded PDF text locally. It backs the no-AI
// strategy and provides the page layout pass other adapters build on.
package text

import (
	"context"
	"fmt"
	"strings"

	"github.com/docrelay/docrelay/pkg/provider"

	"github.com/ledongthuc/pdf"
)

var _ provider.Client = (*Client)(nil)

type Client struct {
}

func New() *Client {
	return &Client{}
}

func (c *Client) Name() string {
	return "text"
}

func (c *Client) ProcessDocument(ctx context.Context, path, query string) ([]provider.Page, error) {
	data, err := Pages(path)

	if err != nil {
		return nil, err
	}

	pages := make([]provider.Page, len(data))

	for i, d := range data {
		pages[i] = provider.Page{
			Number: d.Number,

			Content: d.Text,

			Metadata: map[string]string{
				"provider": c.Name(),
			},
		}
	}

	return pages, nil
}

func (c *Client) ExtractPage(ctx context.Context, page provider.PageData, query string) (provider.Page, error) {
	return provider.Page{
		Number: page.Number,

		Content: page.Text,

		Metadata: map[string]string{
			"provider": c.Name(),
		},
	}, nil
}

func (c *Client) HealthCheck(ctx context.Context) (*provider.Health, error) {
	// Local extraction has no upstream to probe.
	return &provider.Health{Healthy: true}, nil
}

// Pages reads a PDF and returns its embedded text page by page. Page numbers
// are 1-based and contiguous; pages without a text layer come back empty
// rather than being skipped.
func Pages(path string) ([]provider.PageData, error) {
	f, reader, err := pdf.Open(path)

	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}

	defer f.Close()

	total := reader.NumPage()

	var pages []provider.PageData

	for number := 1; number <= total; number++ {
		page := reader.Page(number)

		var text string

		if !page.V.IsNull() {
			content, err := page.GetPlainText(nil)

			if err == nil {
				text = strings.TrimSpace(content)
			}
		}

		pages = append(pages, provider.PageData{
			Number: number,

			Text: text,
		})
	}

	return pages, nil
}
