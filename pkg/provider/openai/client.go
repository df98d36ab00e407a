// Package openai wraps OpenAI vision models for per-page OCR extraction.
package openai

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/docrelay/docrelay/pkg/provider"
	"github.com/docrelay/docrelay/pkg/resilience"

	"github.com/openai/openai-go/v3"
)

var _ provider.Client = (*Client)(nil)

type Client struct {
	*Config
	chat openai.ChatCompletionService
}

func New(url, model string, options ...Option) (*Client, error) {
	cfg := &Config{
		url:   url,
		model: model,
	}

	for _, option := range options {
		option(cfg)
	}

	if cfg.model == "" {
		cfg.model = "gpt-4o"
	}

	return &Client{
		Config: cfg,
		chat:   openai.NewChatCompletionService(cfg.Options()...),
	}, nil
}

func (c *Client) Name() string {
	return "openai"
}

// ProcessDocument is not offered: this adapter is page-oriented and the
// vision strategy drives it through ExtractPage.
func (c *Client) ProcessDocument(ctx context.Context, path, query string) ([]provider.Page, error) {
	return nil, fmt.Errorf("%w: openai adapter extracts per page", provider.ErrUnsupported)
}

func (c *Client) ExtractPage(ctx context.Context, page provider.PageData, query string) (provider.Page, error) {
	message, err := pageMessage(page, query)

	if err != nil {
		return provider.Page{}, err
	}

	resp, err := c.chat.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(c.model),

		Messages: []openai.ChatCompletionMessageParamUnion{
			message,
		},
	})

	if err != nil {
		return provider.Page{}, convertError(err)
	}

	if len(resp.Choices) == 0 {
		return provider.Page{}, errors.New("empty completion")
	}

	return provider.Page{
		Number: page.Number,

		Content: strings.TrimSpace(resp.Choices[0].Message.Content),

		Metadata: map[string]string{
			"provider": c.Name(),
			"model":    c.model,
		},
	}, nil
}

func (c *Client) HealthCheck(ctx context.Context) (*provider.Health, error) {
	return provider.MeasureHealth(ctx, func(ctx context.Context) error {
		_, err := c.chat.New(ctx, openai.ChatCompletionNewParams{
			Model: openai.ChatModel(c.model),

			Messages: []openai.ChatCompletionMessageParamUnion{
				openai.UserMessage("ping"),
			},

			MaxTokens: openai.Int(1),
		})

		return convertError(err)
	}), nil
}

func pageMessage(page provider.PageData, query string) (openai.ChatCompletionMessageParamUnion, error) {
	if len(page.Image) > 0 {
		prompt := "You are an OCR and document analysis assistant. Extract all text and describe tables, charts and diagrams from this page image."

		if query != "" {
			prompt += " Focus on: " + query
		}

		url := "data:image/png;base64," + base64.StdEncoding.EncodeToString(page.Image)

		return openai.UserMessage([]openai.ChatCompletionContentPartUnionParam{
			openai.TextContentPart(prompt),
			openai.ImageContentPart(openai.ChatCompletionContentPartImageImageURLParam{
				URL: url,
			}),
		}), nil
	}

	if page.Text != "" {
		prompt := "You are a document extraction assistant. Clean up and extract the content of this page, preserving structure and tables."

		if query != "" {
			prompt += " Focus on: " + query
		}

		return openai.UserMessage(prompt + "\n\n" + page.Text), nil
	}

	return openai.ChatCompletionMessageParamUnion{}, errors.New("page has neither image nor text")
}

func convertError(err error) error {
	if err == nil {
		return nil
	}

	var apierr *openai.Error

	if errors.As(err, &apierr) {
		return &resilience.StatusError{
			Code: apierr.StatusCode,

			Message: apierr.Message,
		}
	}

	return err
}
