// Package azuredi talks to Azure Document Intelligence prebuilt-layout
// analysis. It backs the table-optimized strategy.
package azuredi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/docrelay/docrelay/pkg/provider"
	"github.com/docrelay/docrelay/pkg/resilience"
)

var _ provider.Client = (*Client)(nil)

type Client struct {
	*Config
}

func New(url string, options ...Option) (*Client, error) {
	if url == "" {
		return nil, errors.New("invalid url")
	}

	cfg := &Config{
		url: strings.TrimRight(url, "/"),

		client: http.DefaultClient,
	}

	for _, option := range options {
		option(cfg)
	}

	if cfg.interval <= 0 {
		cfg.interval = 2 * time.Second
	}

	return &Client{
		Config: cfg,
	}, nil
}

func (c *Client) Name() string {
	return "azuredi"
}

func (c *Client) ProcessDocument(ctx context.Context, path, query string) ([]provider.Page, error) {
	data, err := os.ReadFile(path)

	if err != nil {
		return nil, fmt.Errorf("read document: %w", err)
	}

	operation, err := c.submit(ctx, data)

	if err != nil {
		return nil, err
	}

	result, err := c.poll(ctx, operation)

	if err != nil {
		return nil, err
	}

	pages := make([]provider.Page, 0, len(result.Pages))

	for _, page := range result.Pages {
		var sb strings.Builder

		for _, line := range page.Lines {
			sb.WriteString(line.Content)
			sb.WriteString("\n")
		}

		pages = append(pages, provider.Page{
			Number: page.PageNumber,

			Content: strings.TrimSpace(sb.String()),

			Metadata: map[string]string{
				"provider": c.Name(),
				"model":    "prebuilt-layout",
			},
		})
	}

	return pages, nil
}

// ExtractPage is not offered: layout analysis only accepts whole documents.
func (c *Client) ExtractPage(ctx context.Context, page provider.PageData, query string) (provider.Page, error) {
	return provider.Page{}, fmt.Errorf("%w: azuredi adapter analyzes whole documents", provider.ErrUnsupported)
}

func (c *Client) HealthCheck(ctx context.Context) (*provider.Health, error) {
	return provider.MeasureHealth(ctx, func(ctx context.Context) error {
		url := c.url + "/formrecognizer/info?api-version=" + apiVersion

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)

		if err != nil {
			return err
		}

		req.Header.Set("Ocp-Apim-Subscription-Key", c.token)

		resp, err := c.client.Do(req)

		if err != nil {
			return err
		}

		defer resp.Body.Close()

		return statusError(resp)
	}), nil
}

const apiVersion = "2023-07-31"

func (c *Client) submit(ctx context.Context, data []byte) (string, error) {
	url := c.url + "/formrecognizer/documentModels/prebuilt-layout:analyze?api-version=" + apiVersion

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))

	if err != nil {
		return "", err
	}

	req.Header.Set("Ocp-Apim-Subscription-Key", c.token)
	req.Header.Set("Content-Type", "application/pdf")

	resp, err := c.client.Do(req)

	if err != nil {
		return "", err
	}

	defer resp.Body.Close()

	if resp.StatusCode != http.StatusAccepted {
		return "", statusError(resp)
	}

	operation := resp.Header.Get("Operation-Location")

	if operation == "" {
		return "", errors.New("missing operation location")
	}

	return operation, nil
}

func (c *Client) poll(ctx context.Context, operation string) (*analyzeResult, error) {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()

		case <-ticker.C:
		}

		result, done, err := c.check(ctx, operation)

		if err != nil {
			return nil, err
		}

		if done {
			return result, nil
		}
	}
}

func (c *Client) check(ctx context.Context, operation string) (*analyzeResult, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, operation, nil)

	if err != nil {
		return nil, false, err
	}

	req.Header.Set("Ocp-Apim-Subscription-Key", c.token)

	resp, err := c.client.Do(req)

	if err != nil {
		return nil, false, err
	}

	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, false, statusError(resp)
	}

	var status analyzeStatus

	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		return nil, false, err
	}

	switch status.Status {
	case "succeeded":
		return &status.AnalyzeResult, true, nil

	case "failed":
		message := "analysis failed"

		if status.Error.Message != "" {
			message = status.Error.Message
		}

		return nil, false, errors.New(message)
	}

	return nil, false, nil
}

type analyzeStatus struct {
	Status string `json:"status"`

	AnalyzeResult analyzeResult `json:"analyzeResult"`

	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

type analyzeResult struct {
	Pages []struct {
		PageNumber int `json:"pageNumber"`

		Lines []struct {
			Content string `json:"content"`
		} `json:"lines"`
	} `json:"pages"`
}

func statusError(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	message := resp.Status

	if data, err := io.ReadAll(io.LimitReader(resp.Body, 4096)); err == nil && len(data) > 0 {
		message = string(data)
	}

	return &resilience.StatusError{
		Code: resp.StatusCode,

		Message: message,
	}
}
