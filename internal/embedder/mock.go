package embedder

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"math"
	"math/rand"
	"sync"

	"github.com/federicoFrancesconi/UCSE-2025-AI-Engineering-TP/internal/types"
)

// MockEmbedder is a mock implementation of Embedder for testing.
// It generates deterministic embeddings based on text hash, ensuring
// the same text always produces the same embedding.
type MockEmbedder struct {
	mu           sync.RWMutex
	dimensions   int
	model        string
	embedCount   int
	embedError   error
	healthStatus types.HealthStatus
}

// NewMockEmbedder creates a new mock embedder for testing.
func NewMockEmbedder() *MockEmbedder {
	return &MockEmbedder{
		dimensions:   768,
		model:        "mock-embedder",
		healthStatus: types.NewHealthStatus(types.HealthStateHealthy, "mock embedder"),
	}
}

// Embed generates a deterministic embedding for a single text.
// The embedding is derived from a SHA256 hash of the text, ensuring
// consistency across calls with the same input.
func (m *MockEmbedder) Embed(ctx context.Context, text string) ([]float64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.embedCount++
	if m.embedError != nil {
		return nil, m.embedError
	}

	return m.generateEmbedding(text), nil
}

// EmbedBatch generates deterministic embeddings for multiple texts.
func (m *MockEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.embedCount++
	if m.embedError != nil {
		return nil, m.embedError
	}

	embeddings := make([][]float64, len(texts))
	for i, text := range texts {
		embeddings[i] = m.generateEmbedding(text)
	}

	return embeddings, nil
}

// generateEmbedding creates a deterministic embedding from text using SHA256.
// The hash seeds a pseudo-random generator producing consistent float64
// values, normalized to unit length.
func (m *MockEmbedder) generateEmbedding(text string) []float64 {
	hash := sha256.Sum256([]byte(text))
	seed := int64(binary.BigEndian.Uint64(hash[:8]))
	rng := rand.New(rand.NewSource(seed))

	embedding := make([]float64, m.dimensions)
	for i := 0; i < m.dimensions; i++ {
		embedding[i] = (rng.Float64() * 2) - 1
	}

	return normalizeVector(embedding)
}

// Dimensions returns the dimensionality of the embedding vectors.
func (m *MockEmbedder) Dimensions() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.dimensions
}

// Model returns the name of the mock embedding model.
func (m *MockEmbedder) Model() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.model
}

// Health returns the configured health status.
func (m *MockEmbedder) Health(ctx context.Context) types.HealthStatus {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.healthStatus
}

// SetDimensions allows changing the embedding dimensions for testing.
func (m *MockEmbedder) SetDimensions(dims int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dimensions = dims
}

// SetEmbedError configures Embed and EmbedBatch to return an error.
func (m *MockEmbedder) SetEmbedError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.embedError = err
}

// SetHealthStatus configures what Health() should return.
func (m *MockEmbedder) SetHealthStatus(status types.HealthStatus) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.healthStatus = status
}

// CallCount returns the number of embedding calls made.
func (m *MockEmbedder) CallCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.embedCount
}

// Reset clears recorded state and restores defaults.
func (m *MockEmbedder) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.embedCount = 0
	m.embedError = nil
	m.dimensions = 768
	m.model = "mock-embedder"
	m.healthStatus = types.NewHealthStatus(types.HealthStateHealthy, "mock embedder")
}

// normalizeVector normalizes a vector to unit length.
func normalizeVector(v []float64) []float64 {
	var sum float64
	for _, val := range v {
		sum += val * val
	}

	if sum == 0 {
		return v
	}

	norm := math.Sqrt(sum)
	normalized := make([]float64, len(v))
	for i, val := range v {
		normalized[i] = val / norm
	}

	return normalized
}
