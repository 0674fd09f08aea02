package llm

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/sashabaranov/go-openai"
	"github.com/vero/backend/internal/domain"
	"go.uber.org/zap"
)

const (
	// OpenRouterBaseURL is the OpenAI-compatible endpoint of OpenRouter
	OpenRouterBaseURL  = "https://openrouter.ai/api/v1"
	defaultChatModel   = "meta-llama/llama-3.3-70b-instruct:free"
	defaultEmbedModel  = "text-embedding-3-small"
	openRouterReferer  = "https://vero.ng"
	openRouterAppTitle = "Vero"
	requestTimeout     = 30 * time.Second
)

// OpenAIConfig holds configuration for an OpenAI-compatible client
type OpenAIConfig struct {
	APIKey         string
	BaseURL        string
	Model          string
	EmbeddingModel string
	// Attribution adds the OpenRouter app attribution headers to every request
	Attribution bool
}

// OpenAIClient talks to any OpenAI-compatible API, OpenRouter included.
type OpenAIClient struct {
	client         *openai.Client
	model          string
	embeddingModel string
	logger         *zap.Logger
}

// NewOpenAIClient creates a new OpenAI-compatible client
func NewOpenAIClient(cfg OpenAIConfig, logger *zap.Logger) (*OpenAIClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai-compatible API key is required")
	}
	if cfg.Model == "" {
		cfg.Model = defaultChatModel
	}
	if cfg.EmbeddingModel == "" {
		cfg.EmbeddingModel = defaultEmbedModel
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	config := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		config.BaseURL = cfg.BaseURL
	}
	httpClient := &http.Client{Timeout: requestTimeout}
	if cfg.Attribution {
		httpClient.Transport = &attributionTransport{
			base:    http.DefaultTransport,
			referer: openRouterReferer,
			title:   openRouterAppTitle,
		}
	}
	config.HTTPClient = httpClient

	logger.Info("OpenAI-compatible client initialized",
		zap.String("base_url", config.BaseURL),
		zap.String("model", cfg.Model))

	return &OpenAIClient{
		client:         openai.NewClientWithConfig(config),
		model:          cfg.Model,
		embeddingModel: cfg.EmbeddingModel,
		logger:         logger,
	}, nil
}

// Generate sends a single-message chat completion and returns the first choice
func (c *OpenAIClient) Generate(ctx context.Context, prompt string, opts domain.GenerateOptions) (string, error) {
	req := openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
		Temperature: opts.Temperature,
		MaxTokens:   opts.MaxTokens,
	}

	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrGenerationUnavailable, err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: no response choices", domain.ErrGenerationUnavailable)
	}

	c.logger.Debug("Chat completion finished",
		zap.String("model", resp.Model),
		zap.Int("prompt_tokens", resp.Usage.PromptTokens),
		zap.Int("completion_tokens", resp.Usage.CompletionTokens))

	return resp.Choices[0].Message.Content, nil
}

// Embed returns the embedding of text from the embeddings endpoint
func (c *OpenAIClient) Embed(ctx context.Context, text string) ([]float32, error) {
	req := openai.EmbeddingRequest{
		Input: []string{text},
		Model: openai.EmbeddingModel(c.embeddingModel),
	}

	resp, err := c.client.CreateEmbeddings(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrEmbeddingFailure, err)
	}
	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("%w: no embedding data", domain.ErrEmbeddingFailure)
	}

	return resp.Data[0].Embedding, nil
}

// GetModelInfo returns information about the model being used
func (c *OpenAIClient) GetModelInfo() map[string]interface{} {
	return map[string]interface{}{
		"provider":        "openai-compatible",
		"model":           c.model,
		"embedding_model": c.embeddingModel,
	}
}

// attributionTransport adds the app attribution headers OpenRouter uses for ranking
type attributionTransport struct {
	base    http.RoundTripper
	referer string
	title   string
}

func (t *attributionTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	req.Header.Set("HTTP-Referer", t.referer)
	req.Header.Set("X-Title", t.title)
	return t.base.RoundTrip(req)
}
