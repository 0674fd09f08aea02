package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/vero/backend/internal/domain"
	"go.uber.org/zap"
)

// FallbackExplanation is returned verbatim whenever generation yields nothing usable
const FallbackExplanation = "Sorry, we couldn't generate an explanation at the moment."

// ExplanationConfig holds configuration for the explanation service
type ExplanationConfig struct {
	Temperature float32
	MaxTokens   int
}

// ExplanationService turns a rendered prompt into user-facing text with exactly
// one generation call. Failures are absorbed into FallbackExplanation.
type ExplanationService struct {
	generator domain.TextGenerator
	opts      domain.GenerateOptions
	logger    *zap.Logger
}

// NewExplanationService creates a new explanation service with dependencies
func NewExplanationService(generator domain.TextGenerator, config ExplanationConfig, logger *zap.Logger) *ExplanationService {
	if config.Temperature <= 0 {
		config.Temperature = 0.7
	}
	if config.MaxTokens <= 0 {
		config.MaxTokens = 500
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &ExplanationService{
		generator: generator,
		opts: domain.GenerateOptions{
			Temperature: config.Temperature,
			MaxTokens:   config.MaxTokens,
		},
		logger: logger,
	}
}

// Generate returns the generated explanation, or FallbackExplanation.
// The boolean reports whether the fallback was used.
func (s *ExplanationService) Generate(ctx context.Context, prompt string) (string, bool) {
	text, err := s.generate(ctx, prompt)
	if err != nil {
		s.logger.Warn("Explanation generation degraded to fallback", zap.Error(err))
		return FallbackExplanation, true
	}
	return text, false
}

func (s *ExplanationService) generate(ctx context.Context, prompt string) (string, error) {
	if s.generator == nil {
		return "", fmt.Errorf("%w: no generator configured", domain.ErrGenerationUnavailable)
	}

	text, err := s.generator.Generate(ctx, prompt, s.opts)
	if err != nil {
		if errors.Is(err, domain.ErrGenerationUnavailable) {
			return "", err
		}
		return "", fmt.Errorf("%w: %v", domain.ErrGenerationUnavailable, err)
	}
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("%w: empty response", domain.ErrGenerationUnavailable)
	}

	return text, nil
}
