// Package azureai talks to Mistral models served through an Azure OpenAI
// endpoint. It backs the default extraction strategy.
package azureai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/docrelay/docrelay/pkg/provider"
	"github.com/docrelay/docrelay/pkg/provider/text"
	"github.com/docrelay/docrelay/pkg/resilience"

	"github.com/openai/openai-go/v3"
)

var _ provider.Client = (*Client)(nil)

type Client struct {
	*Config
	chat openai.ChatCompletionService
}

func New(url, model string, options ...Option) (*Client, error) {
	if url == "" {
		return nil, errors.New("invalid url")
	}

	cfg := &Config{
		url:   url,
		model: model,
	}

	for _, option := range options {
		option(cfg)
	}

	if cfg.model == "" {
		cfg.model = "mistral-large"
	}

	return &Client{
		Config: cfg,
		chat:   openai.NewChatCompletionService(cfg.Options()...),
	}, nil
}

func (c *Client) Name() string {
	return "azureai"
}

func (c *Client) ProcessDocument(ctx context.Context, path, query string) ([]provider.Page, error) {
	data, err := text.Pages(path)

	if err != nil {
		return nil, err
	}

	if len(data) == 0 {
		return nil, nil
	}

	resp, err := c.chat.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(c.model),

		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(documentPrompt(query, len(data))),
			openai.UserMessage(renderDocument(data)),
		},
	})

	if err != nil {
		return nil, convertError(err)
	}

	if len(resp.Choices) == 0 {
		return nil, errors.New("empty completion")
	}

	return splitPages(resp.Choices[0].Message.Content, len(data), c.Name()), nil
}

func (c *Client) ExtractPage(ctx context.Context, page provider.PageData, query string) (provider.Page, error) {
	resp, err := c.chat.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(c.model),

		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(pagePrompt(query, page)),
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

func documentPrompt(query string, pages int) string {
	prompt := fmt.Sprintf(
		"You are a document extraction assistant. Extract the full content of the document below, preserving structure and tables. The document has %d pages, delimited by '=== PAGE n ===' markers. Return the extracted content for every page in order, separated exactly by %q.",
		pages, provider.PageSeparator)

	if query != "" {
		prompt += " Focus on: " + query
	}

	return prompt
}

func pagePrompt(query string, page provider.PageData) string {
	prompt := "You are a document extraction assistant. Extract the content of this page, preserving structure and tables."

	if query != "" {
		prompt += " Focus on: " + query
	}

	return prompt + "\n\n" + page.Text
}

func renderDocument(data []provider.PageData) string {
	var sb strings.Builder

	for _, page := range data {
		fmt.Fprintf(&sb, "=== PAGE %d ===\n%s\n", page.Number, page.Text)
	}

	return sb.String()
}

// splitPages maps a model response back onto page boundaries. When the model
// ignores the separator instruction the whole response becomes page 1.
func splitPages(content string, expected int, name string) []provider.Page {
	parts := strings.Split(content, provider.PageSeparator)

	if len(parts) != expected {
		parts = []string{content}
	}

	pages := make([]provider.Page, len(parts))

	for i, part := range parts {
		pages[i] = provider.Page{
			Number: i + 1,

			Content: strings.TrimSpace(part),

			Metadata: map[string]string{
				"provider": name,
			},
		}
	}

	return pages
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
