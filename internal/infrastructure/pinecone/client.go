package pinecone

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/vero/backend/internal/domain"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	defaultControlPlaneURL = "https://api.pinecone.io"
	defaultAPIVersion      = "2025-01"
	defaultEmbedModel      = "llama-text-embed-v2"
	defaultRequestsPerSec  = 5.0
	defaultTimeout         = 30 * time.Second
	userAgent              = "Vero/1.0"
)

// Config holds configuration for the Pinecone client
type Config struct {
	APIKey            string
	Environment       string
	ControlPlaneURL   string
	APIVersion        string
	EmbedModel        string
	RequestsPerSecond float64
	Timeout           time.Duration
}

// Client handles communication with the Pinecone inference and index APIs.
// Calls are made once; failures are returned to the caller without retry.
type Client struct {
	httpClient      *http.Client
	apiKey          string
	environment     string
	controlPlaneURL string
	apiVersion      string
	embedModel      string
	rateLimiter     *rate.Limiter
	logger          *zap.Logger
	debug           bool
}

// NewClient creates a new Pinecone API client
func NewClient(cfg Config, logger *zap.Logger) *Client {
	if cfg.ControlPlaneURL == "" {
		cfg.ControlPlaneURL = defaultControlPlaneURL
	}
	if cfg.APIVersion == "" {
		cfg.APIVersion = defaultAPIVersion
	}
	if cfg.EmbedModel == "" {
		cfg.EmbedModel = defaultEmbedModel
	}
	if cfg.RequestsPerSecond <= 0 {
		cfg.RequestsPerSecond = defaultRequestsPerSec
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		apiKey:          cfg.APIKey,
		environment:     cfg.Environment,
		controlPlaneURL: strings.TrimSuffix(cfg.ControlPlaneURL, "/"),
		apiVersion:      cfg.APIVersion,
		embedModel:      cfg.EmbedModel,
		rateLimiter:     rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), int(cfg.RequestsPerSecond*2)+1),
		logger:          logger,
	}
}

// SetDebug toggles logging of request and response bodies
func (c *Client) SetDebug(debug bool) {
	c.debug = debug
}

// Environment returns the configured Pinecone environment identifier
func (c *Client) Environment() string {
	return c.environment
}

// Embed returns the passage embedding of text using the hosted inference API
func (c *Client) Embed(ctx context.Context, text string) ([]float32, error) {
	reqBody := embedRequest{
		Model: c.embedModel,
		Parameters: embedParameters{
			InputType: "passage",
			Truncate:  "END",
		},
		Inputs: []embedInput{{Text: text}},
	}

	var resp embedResponse
	if err := c.doJSON(ctx, http.MethodPost, c.controlPlaneURL+"/embed", reqBody, &resp); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrEmbeddingFailure, err)
	}

	if len(resp.Data) == 0 || len(resp.Data[0].Values) == 0 {
		return nil, fmt.Errorf("%w: no embedding data", domain.ErrEmbeddingFailure)
	}

	return resp.Data[0].Values, nil
}

// DescribeIndex looks up an index by name and returns its data-plane host
func (c *Client) DescribeIndex(ctx context.Context, name string) (string, error) {
	endpoint := fmt.Sprintf("%s/indexes/%s", c.controlPlaneURL, url.PathEscape(name))

	var resp indexDescription
	if err := c.doJSON(ctx, http.MethodGet, endpoint, nil, &resp); err != nil {
		return "", fmt.Errorf("failed to describe index %q: %w", name, err)
	}
	if resp.Host == "" {
		return "", fmt.Errorf("index %q has no host", name)
	}

	c.logger.Info("Resolved Pinecone index",
		zap.String("index", name),
		zap.String("host", resp.Host))

	return resp.Host, nil
}

// Index returns a handle for querying the index served at host
func (c *Client) Index(host, namespace string) *Index {
	if !strings.HasPrefix(host, "http://") && !strings.HasPrefix(host, "https://") {
		host = "https://" + host
	}
	return &Index{
		client:    c,
		baseURL:   strings.TrimSuffix(host, "/"),
		namespace: namespace,
	}
}

// doJSON executes a request against the Pinecone API and decodes the JSON reply
func (c *Client) doJSON(ctx context.Context, method, endpoint string, in, out interface{}) error {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter error: %w", err)
	}

	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		if c.debug {
			c.logger.Debug("Pinecone request", zap.String("url", endpoint), zap.ByteString("body", payload))
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Api-Key", c.apiKey)
	req.Header.Set("X-Pinecone-API-Version", c.apiVersion)
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}
	if c.debug {
		c.logger.Debug("Pinecone response",
			zap.String("url", endpoint),
			zap.Int("status", resp.StatusCode),
			zap.ByteString("body", respBody))
	}

	if resp.StatusCode != http.StatusOK {
		c.logger.Warn("Pinecone API error",
			zap.String("url", endpoint),
			zap.Int("status", resp.StatusCode))
		return fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(respBody)))
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// Index queries a single Pinecone index
type Index struct {
	client    *Client
	baseURL   string
	namespace string
}

// Query returns the topK nearest neighbors with metadata, in the order the index returns them
func (i *Index) Query(ctx context.Context, vector []float32, topK int) ([]domain.Neighbor, error) {
	reqBody := queryRequest{
		Vector:          vector,
		TopK:            topK,
		IncludeMetadata: true,
		Namespace:       i.namespace,
	}

	var resp queryResponse
	if err := i.client.doJSON(ctx, http.MethodPost, i.baseURL+"/query", reqBody, &resp); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrVectorSearchFailure, err)
	}

	return MapToNeighbors(resp.Matches), nil
}
