package embedder

import (
	"context"

	"github.com/federicoFrancesconi/UCSE-2025-AI-Engineering-TP/internal/types"
)

// Embedder generates embedding vectors from text content.
// Implementations must be thread-safe for concurrent access.
type Embedder interface {
	// Embed generates an embedding vector for a single text.
	Embed(ctx context.Context, text string) ([]float64, error)

	// EmbedBatch generates embeddings for multiple texts efficiently.
	EmbedBatch(ctx context.Context, texts []string) ([][]float64, error)

	// Dimensions returns the dimensionality of embedding vectors.
	Dimensions() int

	// Model returns the name of the embedding model being used.
	Model() string

	// Health returns the health status of the embedder.
	Health(ctx context.Context) types.HealthStatus
}

// Config holds configuration for embedding providers.
type Config struct {
	// Provider specifies which embedder implementation to use.
	// Options: "ollama", "mock"
	Provider string `yaml:"provider" json:"provider" mapstructure:"provider"`

	// Model is the specific embedding model to use.
	// For Ollama: "nomic-embed-text" (768 dims) is the default.
	Model string `yaml:"model" json:"model" mapstructure:"model"`

	// BaseURL is the base URL of the Ollama server.
	BaseURL string `yaml:"base_url" json:"base_url" mapstructure:"base_url"`

	// Dimensions is the expected dimensionality of the vectors. Stored
	// documents and query vectors must agree, so a model switch without a
	// dimension update fails fast instead of corrupting the index.
	Dimensions int `yaml:"dimensions" json:"dimensions" mapstructure:"dimensions"`
}

// Validate checks if the Config is valid.
func (c *Config) Validate() error {
	if c.Provider == "" {
		return types.NewError(ErrCodeInvalidConfig, "embedder provider cannot be empty")
	}

	if c.Provider == "ollama" && c.Model == "" {
		return types.NewError(ErrCodeInvalidConfig, "ollama embedder requires a model (e.g., 'nomic-embed-text')")
	}

	if c.Dimensions < 0 {
		return types.NewError(ErrCodeInvalidConfig, "dimensions must be non-negative")
	}

	return nil
}

// DefaultConfig returns the default Ollama embedder configuration.
func DefaultConfig() Config {
	return Config{
		Provider:   "ollama",
		Model:      "nomic-embed-text",
		BaseURL:    "http://localhost:11434",
		Dimensions: 768,
	}
}
