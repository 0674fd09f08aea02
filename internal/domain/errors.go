package domain

import "errors"

var (
	// ErrInvalidRequest is returned when a submission fails validation
	ErrInvalidRequest = errors.New("invalid request parameters")

	// ErrInvalidLanguage is returned when the requested reply language cannot be parsed
	ErrInvalidLanguage = errors.New("invalid language tag")

	// ErrUnknownVerdict is returned when a verdict outside the closed set reaches a template
	ErrUnknownVerdict = errors.New("unknown verdict")

	// ErrEmbeddingFailure is returned when the embedding service call fails
	ErrEmbeddingFailure = errors.New("embedding request failed")

	// ErrVectorSearchFailure is returned when the vector index query fails
	ErrVectorSearchFailure = errors.New("vector index query failed")

	// ErrGenerationUnavailable is returned when the text generation service yields no usable output
	ErrGenerationUnavailable = errors.New("text generation unavailable")

	// ErrPersistence is returned when a verification record cannot be stored
	ErrPersistence = errors.New("failed to persist verification record")

	// ErrCacheMiss is returned when data is not found in cache
	ErrCacheMiss = errors.New("cache miss")

	// ErrRateLimited is returned when rate limit is exceeded
	ErrRateLimited = errors.New("rate limit exceeded")
)
