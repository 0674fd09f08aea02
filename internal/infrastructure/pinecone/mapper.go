package pinecone

import (
	"fmt"

	"github.com/vero/backend/internal/domain"
)

// Metadata keys written by the indexing pipeline
const (
	MetadataText       = "text"
	MetadataURL        = "url"
	MetadataProductURL = "product_url"
)

type embedRequest struct {
	Model      string          `json:"model"`
	Parameters embedParameters `json:"parameters"`
	Inputs     []embedInput    `json:"inputs"`
}

type embedParameters struct {
	InputType string `json:"input_type"`
	Truncate  string `json:"truncate,omitempty"`
}

type embedInput struct {
	Text string `json:"text"`
}

type embedResponse struct {
	Model string `json:"model"`
	Data  []struct {
		Values []float32 `json:"values"`
	} `json:"data"`
	Usage struct {
		TotalTokens int `json:"total_tokens"`
	} `json:"usage"`
}

type indexDescription struct {
	Name      string `json:"name"`
	Dimension int    `json:"dimension"`
	Metric    string `json:"metric"`
	Host      string `json:"host"`
}

type queryRequest struct {
	Vector          []float32 `json:"vector"`
	TopK            int       `json:"topK"`
	IncludeMetadata bool      `json:"includeMetadata"`
	Namespace       string    `json:"namespace,omitempty"`
}

type queryResponse struct {
	Matches   []Match `json:"matches"`
	Namespace string  `json:"namespace"`
}

// Match is a scored vector returned by the query endpoint
type Match struct {
	ID       string                 `json:"id"`
	Score    float64                `json:"score"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}

// MapToNeighbors converts query matches to domain neighbors, preserving order
func MapToNeighbors(matches []Match) []domain.Neighbor {
	neighbors := make([]domain.Neighbor, 0, len(matches))
	for _, m := range matches {
		neighbors = append(neighbors, domain.Neighbor{
			ID:    m.ID,
			Score: m.Score,
			Text:  metadataString(m.Metadata, MetadataText),
			URL:   firstNonEmpty(metadataString(m.Metadata, MetadataURL), metadataString(m.Metadata, MetadataProductURL)),
		})
	}
	return neighbors
}

// metadataString reads a metadata value as a string
func metadataString(metadata map[string]interface{}, key string) string {
	value, ok := metadata[key]
	if !ok || value == nil {
		return ""
	}
	if s, ok := value.(string); ok {
		return s
	}
	return fmt.Sprint(value)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
