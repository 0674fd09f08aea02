package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/vero/backend/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
)

func TestToDocument(t *testing.T) {
	score := 0.91
	ts := time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)
	record := &domain.Record{
		ID:       "rec-1",
		Category: domain.CategoryBaby,
		Submission: &domain.BabySubmission{
			Name:      "Formula",
			BrandName: "Brand",
		},
		Result: domain.VerificationResult{
			Verdict: domain.VerdictFake,
			Score:   &score,
			Reason:  "packaging mismatch",
		},
		Timestamp:    ts,
		ReviewStatus: domain.ReviewPending,
	}

	doc := toDocument(record)

	assert.Equal(t, "rec-1", doc.ID)
	assert.Equal(t, ts, doc.Timestamp)
	assert.Equal(t, domain.ReviewPending, doc.Verified.Status)

	raw, err := bson.Marshal(doc)
	assert.NoError(t, err)

	var decoded struct {
		ID        string `bson:"_id"`
		UserInput struct {
			Name string `bson:"name"`
		} `bson:"user_input"`
		Result struct {
			Verdict string   `bson:"verdict"`
			Score   *float64 `bson:"score"`
		} `bson:"verification_result"`
		Verified struct {
			Status string `bson:"status"`
		} `bson:"verified"`
	}
	assert.NoError(t, bson.Unmarshal(raw, &decoded))
	assert.Equal(t, "rec-1", decoded.ID)
	assert.Equal(t, "Formula", decoded.UserInput.Name)
	assert.Equal(t, "fake", decoded.Result.Verdict)
	if assert.NotNil(t, decoded.Result.Score) {
		assert.Equal(t, 0.91, *decoded.Result.Score)
	}
	assert.Equal(t, "pending", decoded.Verified.Status)
}
