package usecase

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math"
	"regexp"
	"strings"
	"time"

	"github.com/vero/backend/internal/domain"
	"go.uber.org/zap"
	"golang.org/x/text/cases"
)

// Reason texts used when a neighbor carries no explicit reason
const (
	ReasonNotSpecified  = "Reason not specified."
	ReasonNoMatch       = "No similar product found in the database."
	ReasonUnfamiliar    = "Product is unfamiliar. Please verify manually."
	reasonMarker        = "Reason:"
	defaultThreshold    = 0.8
	defaultTopK         = 3
	defaultEmbeddingTTL = 24 * time.Hour
)

// ScanMode selects how qualifying neighbors are chosen
type ScanMode string

const (
	// ScanFirst takes the first neighbor in index order that meets the threshold.
	ScanFirst ScanMode = "first"
	// ScanBest takes the highest-scoring neighbor that meets the threshold.
	ScanBest ScanMode = "best"
)

var (
	productURLRegex = regexp.MustCompile(`Product_url:\s*(\S+)`)
	fakeKeyword     = cases.Fold().String("fake")
	realKeyword     = cases.Fold().String("real")
)

// ClassifierConfig holds configuration for the classifier
type ClassifierConfig struct {
	Threshold    float64
	TopK         int
	ScanMode     ScanMode
	EmbeddingTTL time.Duration
}

// Classifier maps a submission description to a verdict by nearest-neighbor search
type Classifier struct {
	embedder     domain.Embedder
	indexes      map[domain.Category]domain.VectorIndex
	cache        domain.CacheRepository
	threshold    float64
	topK         int
	scanMode     ScanMode
	embeddingTTL time.Duration
	logger       *zap.Logger
}

// NewClassifier creates a new classifier. cache may be nil to disable
// embedding memoisation.
func NewClassifier(
	embedder domain.Embedder,
	indexes map[domain.Category]domain.VectorIndex,
	cache domain.CacheRepository,
	config ClassifierConfig,
	logger *zap.Logger,
) *Classifier {
	threshold := config.Threshold
	if threshold <= 0 {
		threshold = defaultThreshold
	}

	topK := config.TopK
	if topK <= 0 {
		topK = defaultTopK
	}

	scanMode := config.ScanMode
	if scanMode != ScanBest {
		scanMode = ScanFirst
	}

	ttl := config.EmbeddingTTL
	if ttl <= 0 {
		ttl = defaultEmbeddingTTL
	}

	if logger == nil {
		logger = zap.NewNop()
	}

	return &Classifier{
		embedder:     embedder,
		indexes:      indexes,
		cache:        cache,
		threshold:    threshold,
		topK:         topK,
		scanMode:     scanMode,
		embeddingTTL: ttl,
		logger:       logger,
	}
}

// Classify embeds the description, searches the category index and derives a verdict.
// Embedding and search failures are reported as an error verdict, never returned.
func (c *Classifier) Classify(ctx context.Context, category domain.Category, description string) domain.VerificationResult {
	neighbors, err := c.search(ctx, category, description)
	if err != nil {
		c.logger.Error("Similarity search failed",
			zap.String("category", string(category)),
			zap.Error(err))
		return domain.VerificationResult{
			Verdict: domain.VerdictError,
			Reason:  err.Error(),
		}
	}

	return c.decide(neighbors)
}

// search returns the index-ordered neighbors or a *domain.SearchError
func (c *Classifier) search(ctx context.Context, category domain.Category, description string) ([]domain.Neighbor, error) {
	index, ok := c.indexes[category]
	if !ok || index == nil {
		return nil, &domain.SearchError{
			Stage: domain.StageQuery,
			Err:   fmt.Errorf("%w: no index for category %q", domain.ErrVectorSearchFailure, category),
		}
	}

	vector, err := c.embed(ctx, category, description)
	if err != nil {
		return nil, &domain.SearchError{Stage: domain.StageEmbedding, Err: err}
	}

	neighbors, err := index.Query(ctx, vector, c.topK)
	if err != nil {
		return nil, &domain.SearchError{Stage: domain.StageQuery, Err: err}
	}

	return neighbors, nil
}

// embed returns the description's vector, consulting the cache when configured
func (c *Classifier) embed(ctx context.Context, category domain.Category, description string) ([]float32, error) {
	key := embeddingCacheKey(category, description)

	if c.cache != nil {
		if value, err := c.cache.Get(ctx, key); err == nil {
			if vector, ok := toVector(value); ok {
				return vector, nil
			}
		}
	}

	vector, err := c.embedder.Embed(ctx, description)
	if err != nil {
		return nil, err
	}

	if c.cache != nil {
		if err := c.cache.Set(ctx, key, vector, c.embeddingTTL); err != nil {
			c.logger.Debug("Failed to cache embedding", zap.Error(err))
		}
	}

	return vector, nil
}

// decide applies the threshold rules to the neighbors
func (c *Classifier) decide(neighbors []domain.Neighbor) domain.VerificationResult {
	if len(neighbors) == 0 {
		return domain.VerificationResult{
			Verdict: domain.VerdictNoMatch,
			Reason:  ReasonNoMatch,
		}
	}

	if winner, ok := c.pickQualifying(neighbors); ok {
		return domain.VerificationResult{
			Verdict:      labelVerdict(winner.Text),
			Score:        roundScore(winner.Score),
			Reason:       extractReason(winner.Text, ReasonNotSpecified),
			ReferenceURL: extractURL(winner),
		}
	}

	top := c.pickTop(neighbors)
	return domain.VerificationResult{
		Verdict:      domain.VerdictUnfamiliar,
		Score:        roundScore(top.Score),
		Reason:       extractReason(top.Text, ReasonUnfamiliar),
		ReferenceURL: extractURL(top),
	}
}

func (c *Classifier) pickQualifying(neighbors []domain.Neighbor) (domain.Neighbor, bool) {
	var (
		winner domain.Neighbor
		found  bool
	)
	for _, n := range neighbors {
		if n.Score < c.threshold {
			continue
		}
		if c.scanMode == ScanFirst {
			return n, true
		}
		if !found || n.Score > winner.Score {
			winner, found = n, true
		}
	}
	return winner, found
}

func (c *Classifier) pickTop(neighbors []domain.Neighbor) domain.Neighbor {
	top := neighbors[0]
	if c.scanMode == ScanBest {
		for _, n := range neighbors[1:] {
			if n.Score > top.Score {
				top = n
			}
		}
	}
	return top
}

// labelVerdict reads the fake/real label from a neighbor's stored text.
// "fake" wins when both keywords are present.
func labelVerdict(text string) domain.Verdict {
	// Casers are stateful and must not be shared between goroutines.
	folded := cases.Fold().String(text)
	switch {
	case strings.Contains(folded, fakeKeyword):
		return domain.VerdictFake
	case strings.Contains(folded, realKeyword):
		return domain.VerdictReal
	default:
		return domain.VerdictUnfamiliar
	}
}

// extractReason returns the text after the last "Reason:" marker
func extractReason(text, placeholder string) string {
	idx := strings.LastIndex(text, reasonMarker)
	if idx < 0 {
		return placeholder
	}
	reason := text[idx+len(reasonMarker):]
	if loc := productURLRegex.FindStringIndex(reason); loc != nil {
		reason = reason[:loc[0]]
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return placeholder
	}
	return reason
}

func extractURL(n domain.Neighbor) string {
	if n.URL != "" {
		return n.URL
	}
	if m := productURLRegex.FindStringSubmatch(n.Text); m != nil {
		return m[1]
	}
	return ""
}

func roundScore(score float64) *float64 {
	rounded := math.Round(score*100) / 100
	rounded = math.Max(0, math.Min(1, rounded))
	return &rounded
}

// embeddingCacheKey creates a cache key for a description.
// Format: "embedding:{category}:{sha256(description)}"
func embeddingCacheKey(category domain.Category, description string) string {
	sum := sha256.Sum256([]byte(description))
	return fmt.Sprintf("embedding:%s:%s", category, hex.EncodeToString(sum[:]))
}

// toVector converts a cached value back to a vector. The memory cache
// round-trips values through JSON, so numbers come back as float64.
func toVector(value interface{}) ([]float32, bool) {
	switch v := value.(type) {
	case []float32:
		return v, true
	case []interface{}:
		vector := make([]float32, len(v))
		for i, item := range v {
			f, ok := item.(float64)
			if !ok {
				return nil, false
			}
			vector[i] = float32(f)
		}
		return vector, true
	}
	return nil, false
}
