package domain

import (
	"fmt"
	"time"
)

// Verdict is the categorical outcome of a classification
type Verdict string

const (
	VerdictFake       Verdict = "fake"
	VerdictReal       Verdict = "real"
	VerdictUnfamiliar Verdict = "unfamiliar"
	VerdictNoMatch    Verdict = "no_match"
	VerdictError      Verdict = "error"
)

// Valid reports whether v is one of the known verdicts
func (v Verdict) Valid() bool {
	switch v {
	case VerdictFake, VerdictReal, VerdictUnfamiliar, VerdictNoMatch, VerdictError:
		return true
	}
	return false
}

// Scored reports whether results with this verdict carry a score
func (v Verdict) Scored() bool {
	return v == VerdictFake || v == VerdictReal || v == VerdictUnfamiliar
}

// Check reports whether the result holds a known verdict and carries a score
// exactly when the verdict is scored.
func (r VerificationResult) Check() error {
	if !r.Verdict.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownVerdict, r.Verdict)
	}
	if r.Verdict.Scored() != (r.Score != nil) {
		return fmt.Errorf("verdict %s with score present=%t", r.Verdict, r.Score != nil)
	}
	return nil
}

// Neighbor is a previously indexed example returned by the vector search
type Neighbor struct {
	ID    string  `json:"id"`
	Score float64 `json:"score"`
	Text  string  `json:"text"`
	URL   string  `json:"url,omitempty"`
}

// VerificationResult is the classifier's verdict for one submission.
// Score is nil exactly when the verdict is no_match or error.
type VerificationResult struct {
	Verdict      Verdict  `json:"verdict" bson:"verdict"`
	Score        *float64 `json:"score" bson:"score"`
	Reason       string   `json:"reason" bson:"reason"`
	ReferenceURL string   `json:"reference_url,omitempty" bson:"reference_url,omitempty"`
}

// ReviewStatus tracks the manual review state of a persisted record
type ReviewStatus string

const (
	ReviewPending  ReviewStatus = "pending"
	ReviewApproved ReviewStatus = "approved"
	ReviewRejected ReviewStatus = "rejected"
)

// Record is the append-only persisted form of a verification
type Record struct {
	ID           string             `json:"id"`
	Category     Category           `json:"category"`
	Submission   Submission         `json:"user_input"`
	Result       VerificationResult `json:"verification_result"`
	Timestamp    time.Time          `json:"timestamp"`
	ReviewStatus ReviewStatus       `json:"review_status"`
}

// VerificationResponse is what the caller receives for a verification request
type VerificationResponse struct {
	Verdict     Verdict  `json:"verdict"`
	Score       *float64 `json:"score"`
	Explanation string   `json:"What_vero_has_to_say"`
	ProductURL  string   `json:"product_url"`
}

// SearchStage names the external call that failed during classification
type SearchStage string

const (
	StageEmbedding SearchStage = "embedding"
	StageQuery     SearchStage = "query"
)

// SearchError carries an embedding or vector search failure to the classifier
type SearchError struct {
	Stage SearchStage
	Err   error
}

func (e *SearchError) Error() string {
	return fmt.Sprintf("error during %s: %v", e.Stage, e.Err)
}

func (e *SearchError) Unwrap() error {
	return e.Err
}
