// Package gemini provides the Google Gemini provider
package gemini

import (
	"context"
	"errors"
	"fmt"

	"github.com/ayurwell/portal/internal/infrastructure/config"
	"github.com/ayurwell/portal/internal/ports/outbound"
	"go.uber.org/zap"
	"google.golang.org/genai"
)

const defaultModel = "gemini-2.0-flash"

// ErrNotConfigured is returned when no API key is set
var ErrNotConfigured = errors.New("gemini api key is not configured")

// Client implements outbound.AIProvider with the Gemini API
type Client struct {
	client *genai.Client
	model  string
	logger *zap.Logger
}

var _ outbound.AIProvider = (*Client)(nil)

// NewClient creates a Gemini client. Without an API key the client is
// created but every call fails with ErrNotConfigured.
func NewClient(ctx context.Context, cfg config.GeminiConfig, logger *zap.Logger) (*Client, error) {
	c := &Client{
		model:  cfg.Model,
		logger: logger.Named("gemini"),
	}
	if c.model == "" {
		c.model = defaultModel
	}
	if cfg.APIKey == "" {
		return c, nil
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}
	c.client = client
	return c, nil
}

// Name returns the provider name
func (c *Client) Name() string { return "gemini" }

// Generate asks the model for a JSON response
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	if c.client == nil {
		return "", ErrNotConfigured
	}

	resp, err := c.client.Models.GenerateContent(ctx, c.model,
		[]*genai.Content{genai.NewContentFromText(prompt, genai.RoleUser)},
		&genai.GenerateContentConfig{
			ResponseMIMEType: "application/json",
			Temperature:      genai.Ptr[float32](0.7),
		},
	)
	if err != nil {
		return "", fmt.Errorf("gemini generate failed: %w", err)
	}

	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("gemini returned no text")
	}

	if resp.UsageMetadata != nil {
		c.logger.Info("Gemini call successful",
			zap.String("model", c.model),
			zap.Int32("prompt_tokens", resp.UsageMetadata.PromptTokenCount),
			zap.Int32("total_tokens", resp.UsageMetadata.TotalTokenCount),
		)
	}
	return text, nil
}

// HealthCheck fetches the model metadata
func (c *Client) HealthCheck(ctx context.Context) error {
	if c.client == nil {
		return ErrNotConfigured
	}
	if _, err := c.client.Models.Get(ctx, c.model, nil); err != nil {
		return fmt.Errorf("gemini model %s unavailable: %w", c.model, err)
	}
	return nil
}
