package domain

import (
	"context"
	"time"
)

// CacheRepository defines the interface for caching operations
type CacheRepository interface {
	Get(ctx context.Context, key string) (interface{}, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}

// Embedder turns text into a dense vector
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// VectorIndex returns the nearest indexed examples for a vector, in index order
type VectorIndex interface {
	Query(ctx context.Context, vector []float32, topK int) ([]Neighbor, error)
}

// GenerateOptions holds the sampling parameters for a generation call
type GenerateOptions struct {
	Temperature float32
	MaxTokens   int
}

// TextGenerator produces free text from a prompt
type TextGenerator interface {
	Generate(ctx context.Context, prompt string, opts GenerateOptions) (string, error)
}

// VerificationRepository persists verification records
type VerificationRepository interface {
	Insert(ctx context.Context, record *Record) error
	Close(ctx context.Context) error
}
