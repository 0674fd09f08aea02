package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/vero/backend/internal/domain"
)

// MockCacheRepository is a mock implementation of domain.CacheRepository
type MockCacheRepository struct {
	data      map[string]interface{}
	getError  error
	setError  error
	getCalled bool
	setCalled bool
}

func NewMockCacheRepository() *MockCacheRepository {
	return &MockCacheRepository{
		data: make(map[string]interface{}),
	}
}

func (m *MockCacheRepository) Get(ctx context.Context, key string) (interface{}, error) {
	m.getCalled = true
	if m.getError != nil {
		return nil, m.getError
	}
	if value, ok := m.data[key]; ok {
		return value, nil
	}
	return nil, domain.ErrCacheMiss
}

func (m *MockCacheRepository) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	m.setCalled = true
	if m.setError != nil {
		return m.setError
	}
	m.data[key] = value
	return nil
}

func (m *MockCacheRepository) Delete(ctx context.Context, key string) error {
	delete(m.data, key)
	return nil
}

func (m *MockCacheRepository) Exists(ctx context.Context, key string) (bool, error) {
	_, ok := m.data[key]
	return ok, nil
}

// MockEmbedder is a mock implementation of domain.Embedder
type MockEmbedder struct {
	vector   []float32
	err      error
	calls    int
	lastText string
}

func (m *MockEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	m.calls++
	m.lastText = text
	if m.err != nil {
		return nil, m.err
	}
	if m.vector == nil {
		return []float32{0.1, 0.2, 0.3}, nil
	}
	return m.vector, nil
}

// MockVectorIndex is a mock implementation of domain.VectorIndex
type MockVectorIndex struct {
	neighbors []domain.Neighbor
	err       error
	lastTopK  int
	calls     int
}

func (m *MockVectorIndex) Query(ctx context.Context, vector []float32, topK int) ([]domain.Neighbor, error) {
	m.calls++
	m.lastTopK = topK
	if m.err != nil {
		return nil, m.err
	}
	return m.neighbors, nil
}

// MockGenerator is a mock implementation of domain.TextGenerator
type MockGenerator struct {
	text       string
	err        error
	calls      int
	lastPrompt string
	lastOpts   domain.GenerateOptions
}

func (m *MockGenerator) Generate(ctx context.Context, prompt string, opts domain.GenerateOptions) (string, error) {
	m.calls++
	m.lastPrompt = prompt
	m.lastOpts = opts
	if m.err != nil {
		return "", m.err
	}
	return m.text, nil
}

// MockRepository is a mock implementation of domain.VerificationRepository
type MockRepository struct {
	mu        sync.Mutex
	records   []*domain.Record
	insertErr error
}

func (m *MockRepository) Insert(ctx context.Context, record *domain.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.insertErr != nil {
		return m.insertErr
	}
	m.records = append(m.records, record)
	return nil
}

func (m *MockRepository) Close(ctx context.Context) error { return nil }

// MockObserver records observations
type MockObserver struct {
	verdicts  []domain.Verdict
	fallbacks int
}

func (m *MockObserver) ObserveVerification(category domain.Category, verdict domain.Verdict, duration time.Duration) {
	m.verdicts = append(m.verdicts, verdict)
}

func (m *MockObserver) ObserveFallback(category domain.Category) {
	m.fallbacks++
}

func intPtr(v int) *int { return &v }

func sampleDrug() *domain.DrugSubmission {
	return &domain.DrugSubmission{
		DrugName:            "Paracetamol",
		Price:               intPtr(1200),
		Dosage:              "500mg",
		Form:                "Tablet",
		BrandName:           "Emzor",
		MedicineType:        "Analgesic",
		PackSize:            "10 x 10",
		Indications:         "Pain, fever",
		SideEffects:         "Nausea",
		ExpiryDateAvailable: "yes",
		Platform:            "Jumia",
		NafdacNumberPresent: "yes",
		PackageDescription:  "Blue and white box with hologram",
	}
}

func sampleBaby() *domain.BabySubmission {
	return &domain.BabySubmission{
		Name:               "Infant Formula Stage 1",
		BrandName:          "Cow & Gate",
		PriceInNaira:       intPtr(8500),
		Platform:           "Konga",
		ProductType:        "Formula",
		AgeGroup:           "0-6 months",
		PackageDescription: "Sealed tin with scoop",
		VisibleExpiryDate:  "yes",
	}
}
