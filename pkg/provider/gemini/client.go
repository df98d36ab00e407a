// Package gemini wraps Google Gemini for whole-document extraction. It backs
// the alternate-AI strategy.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/docrelay/docrelay/pkg/provider"
	"github.com/docrelay/docrelay/pkg/resilience"

	"google.golang.org/genai"
)

var _ provider.Client = (*Client)(nil)

type Client struct {
	model string

	client *genai.Client
}

func New(ctx context.Context, token, model string) (*Client, error) {
	if token == "" {
		return nil, errors.New("missing token")
	}

	if model == "" {
		model = "gemini-2.5-flash"
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  token,
		Backend: genai.BackendGeminiAPI,
	})

	if err != nil {
		return nil, err
	}

	return &Client{
		model: model,

		client: client,
	}, nil
}

func (c *Client) Name() string {
	return "gemini"
}

func (c *Client) ProcessDocument(ctx context.Context, path, query string) ([]provider.Page, error) {
	data, err := os.ReadFile(path)

	if err != nil {
		return nil, fmt.Errorf("read document: %w", err)
	}

	parts := []*genai.Part{
		genai.NewPartFromBytes(data, "application/pdf"),
		genai.NewPartFromText(documentPrompt(query)),
	}

	contents := []*genai.Content{
		genai.NewContentFromParts(parts, genai.RoleUser),
	}

	resp, err := c.client.Models.GenerateContent(ctx, c.model, contents, nil)

	if err != nil {
		return nil, convertError(err)
	}

	return c.splitPages(resp.Text()), nil
}

func (c *Client) ExtractPage(ctx context.Context, page provider.PageData, query string) (provider.Page, error) {
	prompt := "Extract the content of this page, preserving structure and tables."

	if query != "" {
		prompt += " Focus on: " + query
	}

	contents := []*genai.Content{
		genai.NewContentFromText(prompt+"\n\n"+page.Text, genai.RoleUser),
	}

	resp, err := c.client.Models.GenerateContent(ctx, c.model, contents, nil)

	if err != nil {
		return provider.Page{}, convertError(err)
	}

	return provider.Page{
		Number: page.Number,

		Content: strings.TrimSpace(resp.Text()),

		Metadata: map[string]string{
			"provider": c.Name(),
			"model":    c.model,
		},
	}, nil
}

func (c *Client) HealthCheck(ctx context.Context) (*provider.Health, error) {
	return provider.MeasureHealth(ctx, func(ctx context.Context) error {
		contents := []*genai.Content{
			genai.NewContentFromText("ping", genai.RoleUser),
		}

		_, err := c.client.Models.CountTokens(ctx, c.model, contents, nil)

		return convertError(err)
	}), nil
}

func documentPrompt(query string) string {
	prompt := fmt.Sprintf(
		"You are a document extraction assistant. Extract the full content of the attached document, preserving structure and tables. Return every page in order, separated exactly by %q.",
		provider.PageSeparator)

	if query != "" {
		prompt += " Focus on: " + query
	}

	return prompt
}

func (c *Client) splitPages(content string) []provider.Page {
	parts := strings.Split(content, provider.PageSeparator)

	pages := make([]provider.Page, len(parts))

	for i, part := range parts {
		pages[i] = provider.Page{
			Number: i + 1,

			Content: strings.TrimSpace(part),

			Metadata: map[string]string{
				"provider": c.Name(),
				"model":    c.model,
			},
		}
	}

	return pages
}

func convertError(err error) error {
	if err == nil {
		return nil
	}

	var apierr genai.APIError

	if errors.As(err, &apierr) {
		return &resilience.StatusError{
			Code: apierr.Code,

			Message: apierr.Message,
		}
	}

	return err
}
