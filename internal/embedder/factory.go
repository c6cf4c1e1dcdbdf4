package embedder

import (
	"fmt"

	"github.com/federicoFrancesconi/UCSE-2025-AI-Engineering-TP/internal/types"
)

// New creates an embedder based on the provided configuration.
//
// Supported provider types:
//   - "ollama": local Ollama server (nomic-embed-text by default)
//   - "mock": deterministic hash-based embeddings for testing
//
// Returns an error if embedder initialization fails. The agent should fail
// fast if the embedder cannot be created because document retrieval and the
// embedding classification strategy both depend on it.
func New(cfg Config) (Embedder, error) {
	switch cfg.Provider {
	case "ollama":
		return NewOllamaEmbedder(cfg)

	case "mock":
		mock := NewMockEmbedder()
		if cfg.Dimensions > 0 {
			mock.SetDimensions(cfg.Dimensions)
		}
		return mock, nil

	default:
		return nil, types.NewError(ErrCodeInvalidConfig,
			fmt.Sprintf("unknown embedder provider '%s' - must be 'ollama' or 'mock'",
				cfg.Provider))
	}
}
