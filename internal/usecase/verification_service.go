package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/vero/backend/internal/domain"
	"go.uber.org/zap"
)

var validate = validator.New()

// Observer receives per-verification measurements
type Observer interface {
	ObserveVerification(category domain.Category, verdict domain.Verdict, duration time.Duration)
	ObserveFallback(category domain.Category)
}

type nopObserver struct{}

func (nopObserver) ObserveVerification(domain.Category, domain.Verdict, time.Duration) {}
func (nopObserver) ObserveFallback(domain.Category)                                    {}

// VerificationService orchestrates classification, explanation and persistence
type VerificationService struct {
	classifier  *Classifier
	prompts     *PromptBuilder
	explainer   *ExplanationService
	repository  domain.VerificationRepository
	observer    Observer
	logger      *zap.Logger
	now         func() time.Time
	newRecordID func() string
}

// NewVerificationService creates a new verification service with dependencies
func NewVerificationService(
	classifier *Classifier,
	prompts *PromptBuilder,
	explainer *ExplanationService,
	repository domain.VerificationRepository,
	observer Observer,
	logger *zap.Logger,
) *VerificationService {
	if observer == nil {
		observer = nopObserver{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &VerificationService{
		classifier:  classifier,
		prompts:     prompts,
		explainer:   explainer,
		repository:  repository,
		observer:    observer,
		logger:      logger,
		now:         func() time.Time { return time.Now().UTC() },
		newRecordID: func() string { return uuid.NewString() },
	}
}

// VerifyDrug verifies a drug submission
func (s *VerificationService) VerifyDrug(ctx context.Context, submission *domain.DrugSubmission) (*domain.VerificationResponse, error) {
	if submission == nil {
		return nil, domain.ErrInvalidRequest
	}
	return s.verify(ctx, submission)
}

// VerifyBaby verifies a baby product submission
func (s *VerificationService) VerifyBaby(ctx context.Context, submission *domain.BabySubmission) (*domain.VerificationResponse, error) {
	if submission == nil {
		return nil, domain.ErrInvalidRequest
	}
	return s.verify(ctx, submission)
}

// verify runs one submission through the pipeline.
// Flow: validate -> describe -> classify -> explain -> persist -> respond
func (s *VerificationService) verify(ctx context.Context, submission domain.Submission) (*domain.VerificationResponse, error) {
	start := time.Now()
	category := submission.Category()

	if err := validate.Struct(submission); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidRequest, err)
	}
	if err := ValidateLanguage(submission.LanguageTag()); err != nil {
		return nil, err
	}

	description := BuildDescription(submission)
	result := s.classifier.Classify(ctx, category, description)
	if err := result.Check(); err != nil {
		return nil, fmt.Errorf("inconsistent classification: %w", err)
	}

	prompt, err := s.prompts.Render(submission, result)
	if err != nil {
		return nil, fmt.Errorf("failed to render prompt: %w", err)
	}

	explanation, fellBack := s.explainer.Generate(ctx, prompt)
	if fellBack {
		s.observer.ObserveFallback(category)
	}

	record := &domain.Record{
		ID:           s.newRecordID(),
		Category:     category,
		Submission:   submission,
		Result:       result,
		Timestamp:    s.now(),
		ReviewStatus: domain.ReviewPending,
	}
	if err := s.repository.Insert(ctx, record); err != nil {
		if !errors.Is(err, domain.ErrPersistence) {
			err = fmt.Errorf("%w: %v", domain.ErrPersistence, err)
		}
		return nil, err
	}

	s.observer.ObserveVerification(category, result.Verdict, time.Since(start))
	s.logger.Info("Verification completed",
		zap.String("record_id", record.ID),
		zap.String("category", string(category)),
		zap.String("verdict", string(result.Verdict)),
		zap.Bool("explanation_fallback", fellBack))

	return &domain.VerificationResponse{
		Verdict:     result.Verdict,
		Score:       result.Score,
		Explanation: explanation,
		ProductURL:  result.ReferenceURL,
	}, nil
}

// BuildDescription renders the submission as the text that gets embedded.
// Field order and labels are fixed per category.
func BuildDescription(submission domain.Submission) string {
	var sb strings.Builder
	for _, f := range submission.DescriptionFields() {
		sb.WriteString(f.Label)
		sb.WriteString(": ")
		sb.WriteString(f.Value)
		sb.WriteString("\n")
	}
	return sb.String()
}
