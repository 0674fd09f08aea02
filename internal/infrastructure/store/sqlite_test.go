package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vero/backend/internal/domain"
)

func newTestSQLite(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "data", "verifications.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close(context.Background()) })
	return repo
}

func TestSQLiteInsert(t *testing.T) {
	ctx := context.Background()

	t.Run("stores drug record with score", func(t *testing.T) {
		repo := newTestSQLite(t)
		score := 0.88
		price := 1200
		record := &domain.Record{
			ID:       "drug-1",
			Category: domain.CategoryDrug,
			Submission: &domain.DrugSubmission{
				DrugName: "Paracetamol",
				Price:    &price,
			},
			Result: domain.VerificationResult{
				Verdict:      domain.VerdictReal,
				Score:        &score,
				Reason:       "matches registry",
				ReferenceURL: "https://example.com/p",
			},
			Timestamp:    time.Now().UTC(),
			ReviewStatus: domain.ReviewPending,
		}

		require.NoError(t, repo.Insert(ctx, record))

		var (
			userInput    string
			verdict      string
			storedScore  sql.NullFloat64
			reviewStatus string
		)
		err := repo.db.QueryRow(`SELECT user_input, verdict, score, review_status FROM drug_verifications WHERE id = ?`, "drug-1").
			Scan(&userInput, &verdict, &storedScore, &reviewStatus)
		require.NoError(t, err)

		assert.Equal(t, "real", verdict)
		assert.True(t, storedScore.Valid)
		assert.Equal(t, 0.88, storedScore.Float64)
		assert.Equal(t, "pending", reviewStatus)

		var input map[string]interface{}
		require.NoError(t, json.Unmarshal([]byte(userInput), &input))
		assert.Equal(t, "Paracetamol", input["drug_name"])
		assert.Equal(t, float64(1200), input["price"])
	})

	t.Run("stores null score for no_match", func(t *testing.T) {
		repo := newTestSQLite(t)
		record := &domain.Record{
			ID:           "baby-1",
			Category:     domain.CategoryBaby,
			Submission:   &domain.BabySubmission{Name: "Diapers"},
			Result:       domain.VerificationResult{Verdict: domain.VerdictNoMatch, Reason: "none"},
			Timestamp:    time.Now().UTC(),
			ReviewStatus: domain.ReviewPending,
		}

		require.NoError(t, repo.Insert(ctx, record))

		var storedScore sql.NullFloat64
		require.NoError(t, repo.db.QueryRow(`SELECT score FROM baby_verifications WHERE id = ?`, "baby-1").Scan(&storedScore))
		assert.False(t, storedScore.Valid)
	})

	t.Run("duplicate id is a persistence error", func(t *testing.T) {
		repo := newTestSQLite(t)
		record := &domain.Record{
			ID:           "dup",
			Category:     domain.CategoryBaby,
			Submission:   &domain.BabySubmission{Name: "Wipes"},
			Result:       domain.VerificationResult{Verdict: domain.VerdictError},
			Timestamp:    time.Now().UTC(),
			ReviewStatus: domain.ReviewPending,
		}

		require.NoError(t, repo.Insert(ctx, record))
		err := repo.Insert(ctx, record)
		assert.True(t, errors.Is(err, domain.ErrPersistence))
	})

	t.Run("unknown category is a persistence error", func(t *testing.T) {
		repo := newTestSQLite(t)
		err := repo.Insert(ctx, &domain.Record{ID: "x", Category: "toys", Submission: &domain.BabySubmission{}})
		assert.True(t, errors.Is(err, domain.ErrPersistence))
	})
}
