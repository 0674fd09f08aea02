package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/vero/backend/internal/domain"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

const defaultGeminiModel = "gemini-2.0-flash"

// GeminiConfig holds configuration for the Gemini client
type GeminiConfig struct {
	APIKey string
	Model  string
}

// GeminiClient wraps the Gemini API client
type GeminiClient struct {
	client    *genai.Client
	modelName string
	logger    *zap.Logger
}

// NewGeminiClient creates a new Gemini client
func NewGeminiClient(ctx context.Context, cfg GeminiConfig, logger *zap.Logger) (*GeminiClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}
	if cfg.Model == "" {
		cfg.Model = defaultGeminiModel
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	logger.Info("Gemini client initialized", zap.String("model", cfg.Model))

	return &GeminiClient{
		client:    client,
		modelName: cfg.Model,
		logger:    logger,
	}, nil
}

// Generate runs a single content generation call
func (c *GeminiClient) Generate(ctx context.Context, prompt string, opts domain.GenerateOptions) (string, error) {
	model := c.client.GenerativeModel(c.modelName)
	model.GenerationConfig = genai.GenerationConfig{
		Temperature:     genai.Ptr(opts.Temperature),
		MaxOutputTokens: genai.Ptr(int32(opts.MaxTokens)),
	}

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrGenerationUnavailable, err)
	}

	text := responseText(resp)
	if text == "" {
		return "", fmt.Errorf("%w: no candidates in gemini response", domain.ErrGenerationUnavailable)
	}
	return text, nil
}

// Close closes the client and releases resources
func (c *GeminiClient) Close() error {
	return c.client.Close()
}

// GetModelInfo returns information about the model being used
func (c *GeminiClient) GetModelInfo() map[string]interface{} {
	return map[string]interface{}{
		"provider": "gemini",
		"model":    c.modelName,
	}
}

// responseText concatenates the text parts of the first candidate
func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 {
		return ""
	}
	candidate := resp.Candidates[0]
	if candidate == nil || candidate.Content == nil {
		return ""
	}

	var sb strings.Builder
	for _, part := range candidate.Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}
	return sb.String()
}
