package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/vero/backend/internal/domain"
)

func TestNewExplanationService(t *testing.T) {
	t.Run("applies default sampling parameters", func(t *testing.T) {
		svc := NewExplanationService(&MockGenerator{}, ExplanationConfig{}, nil)
		assert.Equal(t, float32(0.7), svc.opts.Temperature)
		assert.Equal(t, 500, svc.opts.MaxTokens)
	})

	t.Run("keeps custom sampling parameters", func(t *testing.T) {
		svc := NewExplanationService(&MockGenerator{}, ExplanationConfig{Temperature: 0.2, MaxTokens: 100}, nil)
		assert.Equal(t, float32(0.2), svc.opts.Temperature)
		assert.Equal(t, 100, svc.opts.MaxTokens)
	})
}

func TestGenerateExplanation(t *testing.T) {
	ctx := context.Background()

	t.Run("returns generated text unmodified", func(t *testing.T) {
		gen := &MockGenerator{text: "  This drug looks genuine.\n"}
		svc := NewExplanationService(gen, ExplanationConfig{}, nil)

		text, fellBack := svc.Generate(ctx, "prompt")

		assert.Equal(t, "  This drug looks genuine.\n", text)
		assert.False(t, fellBack)
		assert.Equal(t, "prompt", gen.lastPrompt)
		assert.Equal(t, 1, gen.calls)
	})

	t.Run("service error falls back without retry", func(t *testing.T) {
		gen := &MockGenerator{err: errors.New("503 service unavailable")}
		svc := NewExplanationService(gen, ExplanationConfig{}, nil)

		text, fellBack := svc.Generate(ctx, "prompt")

		assert.Equal(t, FallbackExplanation, text)
		assert.True(t, fellBack)
		assert.Equal(t, 1, gen.calls)
	})

	t.Run("blank response falls back", func(t *testing.T) {
		svc := NewExplanationService(&MockGenerator{text: "   "}, ExplanationConfig{}, nil)

		text, fellBack := svc.Generate(ctx, "prompt")

		assert.Equal(t, FallbackExplanation, text)
		assert.True(t, fellBack)
	})

	t.Run("unavailable sentinel falls back", func(t *testing.T) {
		svc := NewExplanationService(&MockGenerator{err: domain.ErrGenerationUnavailable}, ExplanationConfig{}, nil)

		text, _ := svc.Generate(ctx, "prompt")

		assert.Equal(t, FallbackExplanation, text)
	})

	t.Run("nil generator falls back", func(t *testing.T) {
		svc := NewExplanationService(nil, ExplanationConfig{}, nil)

		text, fellBack := svc.Generate(ctx, "prompt")

		assert.Equal(t, FallbackExplanation, text)
		assert.True(t, fellBack)
	})
}
