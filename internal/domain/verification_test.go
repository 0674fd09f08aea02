package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVerificationResultCheck(t *testing.T) {
	score := 0.9

	tests := []struct {
		name    string
		result  VerificationResult
		wantErr bool
	}{
		{name: "scored fake", result: VerificationResult{Verdict: VerdictFake, Score: &score}},
		{name: "scored real", result: VerificationResult{Verdict: VerdictReal, Score: &score}},
		{name: "scored unfamiliar", result: VerificationResult{Verdict: VerdictUnfamiliar, Score: &score}},
		{name: "unscored no_match", result: VerificationResult{Verdict: VerdictNoMatch}},
		{name: "unscored error", result: VerificationResult{Verdict: VerdictError}},
		{name: "fake without score", result: VerificationResult{Verdict: VerdictFake}, wantErr: true},
		{name: "no_match with score", result: VerificationResult{Verdict: VerdictNoMatch, Score: &score}, wantErr: true},
		{name: "unknown verdict", result: VerificationResult{Verdict: "maybe"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.result.Check()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}

	t.Run("unknown verdict wraps ErrUnknownVerdict", func(t *testing.T) {
		err := VerificationResult{Verdict: "maybe"}.Check()
		assert.True(t, errors.Is(err, ErrUnknownVerdict))
	})
}

func TestNairaFormatting(t *testing.T) {
	zero := 0
	drug := &DrugSubmission{Price: &zero}
	assert.Equal(t, Field{"Price", "0 NGN"}, drug.DescriptionFields()[1])

	baby := &BabySubmission{}
	assert.Equal(t, Field{"Price", ""}, baby.DescriptionFields()[2])
}
