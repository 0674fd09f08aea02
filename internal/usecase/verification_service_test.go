package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vero/backend/internal/domain"
)

type serviceFixture struct {
	embedder  *MockEmbedder
	index     *MockVectorIndex
	generator *MockGenerator
	repo      *MockRepository
	observer  *MockObserver
	svc       *VerificationService
}

func newServiceFixture(neighbors []domain.Neighbor) *serviceFixture {
	f := &serviceFixture{
		embedder:  &MockEmbedder{},
		index:     &MockVectorIndex{neighbors: neighbors},
		generator: &MockGenerator{text: "Generated explanation."},
		repo:      &MockRepository{},
		observer:  &MockObserver{},
	}
	classifier := newTestClassifier(f.embedder, f.index, nil, ClassifierConfig{})
	explainer := NewExplanationService(f.generator, ExplanationConfig{}, nil)
	f.svc = NewVerificationService(classifier, NewPromptBuilder(PromptConfig{}), explainer, f.repo, f.observer, nil)
	f.svc.now = func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) }
	f.svc.newRecordID = func() string { return "record-1" }
	return f
}

func TestVerifyDrug(t *testing.T) {
	ctx := context.Background()

	t.Run("returns error for nil submission", func(t *testing.T) {
		f := newServiceFixture(nil)
		_, err := f.svc.VerifyDrug(ctx, nil)
		assert.True(t, errors.Is(err, domain.ErrInvalidRequest))
	})

	t.Run("returns error for missing price", func(t *testing.T) {
		f := newServiceFixture(nil)
		drug := sampleDrug()
		drug.Price = nil

		_, err := f.svc.VerifyDrug(ctx, drug)

		assert.True(t, errors.Is(err, domain.ErrInvalidRequest))
		assert.Equal(t, 0, f.embedder.calls)
	})

	t.Run("returns error for missing required field", func(t *testing.T) {
		f := newServiceFixture(nil)
		drug := sampleDrug()
		drug.DrugName = ""

		_, err := f.svc.VerifyDrug(ctx, drug)

		assert.True(t, errors.Is(err, domain.ErrInvalidRequest))
		assert.Empty(t, f.repo.records)
		assert.Equal(t, 0, f.embedder.calls)
	})

	t.Run("returns error for invalid language", func(t *testing.T) {
		f := newServiceFixture(nil)
		drug := sampleDrug()
		drug.Language = "??"

		_, err := f.svc.VerifyDrug(ctx, drug)

		assert.True(t, errors.Is(err, domain.ErrInvalidLanguage))
	})

	t.Run("fake verdict end to end", func(t *testing.T) {
		f := newServiceFixture([]domain.Neighbor{
			{Score: 0.91, Text: "this product is FAKE. Reason: packaging mismatch", URL: "https://example.com/real"},
		})

		resp, err := f.svc.VerifyDrug(ctx, sampleDrug())
		require.NoError(t, err)

		assert.Equal(t, domain.VerdictFake, resp.Verdict)
		require.NotNil(t, resp.Score)
		assert.Equal(t, 0.91, *resp.Score)
		assert.Equal(t, "Generated explanation.", resp.Explanation)
		assert.Equal(t, "https://example.com/real", resp.ProductURL)

		assert.True(t, strings.HasPrefix(f.embedder.lastText, "Drug Name: Paracetamol\nPrice: 1200 NGN\n"))
		assert.Contains(t, f.generator.lastPrompt, "suspected to be fake")
		assert.Equal(t, 1, f.generator.calls)

		require.Len(t, f.repo.records, 1)
		record := f.repo.records[0]
		assert.Equal(t, "record-1", record.ID)
		assert.Equal(t, domain.CategoryDrug, record.Category)
		assert.Equal(t, domain.ReviewPending, record.ReviewStatus)
		assert.Equal(t, "packaging mismatch", record.Result.Reason)
		assert.Equal(t, time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC), record.Timestamp)

		assert.Equal(t, []domain.Verdict{domain.VerdictFake}, f.observer.verdicts)
	})

	t.Run("error verdict still explains and persists", func(t *testing.T) {
		f := newServiceFixture(nil)
		f.embedder.err = errors.New("dial tcp: timeout")

		resp, err := f.svc.VerifyDrug(ctx, sampleDrug())
		require.NoError(t, err)

		assert.Equal(t, domain.VerdictError, resp.Verdict)
		assert.Nil(t, resp.Score)
		assert.Contains(t, f.generator.lastPrompt, "dial tcp: timeout")
		require.Len(t, f.repo.records, 1)
		assert.Contains(t, f.repo.records[0].Result.Reason, "dial tcp: timeout")
	})

	t.Run("generation failure uses fallback explanation", func(t *testing.T) {
		f := newServiceFixture([]domain.Neighbor{{Score: 0.4, Text: "x"}})
		f.generator.err = errors.New("no choices")

		resp, err := f.svc.VerifyDrug(ctx, sampleDrug())
		require.NoError(t, err)

		assert.Equal(t, domain.VerdictUnfamiliar, resp.Verdict)
		assert.Equal(t, 0.4, *resp.Score)
		assert.Equal(t, FallbackExplanation, resp.Explanation)
		assert.Equal(t, 1, f.observer.fallbacks)
	})

	t.Run("persistence failure fails the request", func(t *testing.T) {
		f := newServiceFixture(nil)
		f.repo.insertErr = errors.New("connection reset")

		_, err := f.svc.VerifyDrug(ctx, sampleDrug())

		assert.True(t, errors.Is(err, domain.ErrPersistence))
		assert.Empty(t, f.observer.verdicts)
	})
}

func TestVerifyBaby(t *testing.T) {
	ctx := context.Background()

	t.Run("returns error for nil submission", func(t *testing.T) {
		f := newServiceFixture(nil)
		_, err := f.svc.VerifyBaby(ctx, nil)
		assert.True(t, errors.Is(err, domain.ErrInvalidRequest))
	})

	t.Run("no match verdict", func(t *testing.T) {
		f := newServiceFixture(nil)

		resp, err := f.svc.VerifyBaby(ctx, sampleBaby())
		require.NoError(t, err)

		assert.Equal(t, domain.VerdictNoMatch, resp.Verdict)
		assert.Nil(t, resp.Score)
		assert.Equal(t, "Generated explanation.", resp.Explanation)
		assert.Empty(t, resp.ProductURL)
		require.Len(t, f.repo.records, 1)
		assert.Equal(t, domain.CategoryBaby, f.repo.records[0].Category)
	})

	t.Run("real verdict passes language to prompt", func(t *testing.T) {
		f := newServiceFixture([]domain.Neighbor{{Score: 0.88, Text: "Real formula"}})
		baby := sampleBaby()
		baby.Language = "yo"

		resp, err := f.svc.VerifyBaby(ctx, baby)
		require.NoError(t, err)

		assert.Equal(t, domain.VerdictReal, resp.Verdict)
		assert.Contains(t, f.generator.lastPrompt, "Respond in Yoruba.")
	})
}

func TestBuildDescription(t *testing.T) {
	t.Run("drug description has fixed order", func(t *testing.T) {
		want := "Drug Name: Paracetamol\n" +
			"Price: 1200 NGN\n" +
			"Dosage: 500mg\n" +
			"Form: Tablet\n" +
			"Brand: Emzor\n" +
			"Medicine Type: Analgesic\n" +
			"Pack Size: 10 x 10\n" +
			"Indications: Pain, fever\n" +
			"Side Effects: Nausea\n" +
			"Expiry Date Visible: yes\n" +
			"Platform: Jumia\n" +
			"NAFDAC Number Present: yes\n" +
			"Package Description: Blue and white box with hologram\n"
		assert.Equal(t, want, BuildDescription(sampleDrug()))
	})

	t.Run("baby description has fixed order", func(t *testing.T) {
		want := "Product: Infant Formula Stage 1\n" +
			"Brand: Cow & Gate\n" +
			"Price: 8500 NGN\n" +
			"Platform: Konga\n" +
			"Type: Formula\n" +
			"Age Group: 0-6 months\n" +
			"Package: Sealed tin with scoop\n" +
			"Expiry Visible: yes\n"
		assert.Equal(t, want, BuildDescription(sampleBaby()))
	})

	t.Run("language does not affect description", func(t *testing.T) {
		drug := sampleDrug()
		drug.Language = "fr"
		assert.Equal(t, BuildDescription(sampleDrug()), BuildDescription(drug))
	})
}
