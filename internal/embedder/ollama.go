package embedder

import (
	"context"
	"fmt"

	"github.com/tmc/langchaingo/llms/ollama"

	"github.com/federicoFrancesconi/UCSE-2025-AI-Engineering-TP/internal/types"
)

// OllamaEmbedder generates embeddings through a local Ollama server.
// The same server that backs the LLM provider also serves the embedding
// model, so a single Ollama install covers both concerns.
type OllamaEmbedder struct {
	client     *ollama.LLM
	model      string
	dimensions int
}

// NewOllamaEmbedder creates an embedder backed by the configured Ollama model.
func NewOllamaEmbedder(cfg Config) (*OllamaEmbedder, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	serverURL := cfg.BaseURL
	if serverURL == "" {
		serverURL = "http://localhost:11434"
	}

	client, err := ollama.New(
		ollama.WithServerURL(serverURL),
		ollama.WithModel(cfg.Model),
	)
	if err != nil {
		return nil, types.WrapError(ErrCodeEmbedderUnavailable,
			"failed to initialize ollama embedder", err)
	}

	return &OllamaEmbedder{
		client:     client,
		model:      cfg.Model,
		dimensions: cfg.Dimensions,
	}, nil
}

// Embed generates an embedding vector for a single text.
func (e *OllamaEmbedder) Embed(ctx context.Context, text string) ([]float64, error) {
	vectors, err := e.embed(ctx, []string{text})
	if err != nil {
		return nil, types.WrapError(ErrCodeEmbeddingFailed, "embedding failed", err)
	}
	if len(vectors) == 0 {
		return nil, types.NewError(ErrCodeEmbeddingFailed, "ollama returned no embedding")
	}
	return vectors[0], nil
}

// EmbedBatch generates embeddings for multiple texts in one request.
func (e *OllamaEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float64, error) {
	if len(texts) == 0 {
		return [][]float64{}, nil
	}

	vectors, err := e.embed(ctx, texts)
	if err != nil {
		return nil, types.WrapError(ErrCodeEmbeddingBatchFailed, "batch embedding failed", err)
	}
	if len(vectors) != len(texts) {
		return nil, types.NewError(ErrCodeEmbeddingBatchFailed,
			fmt.Sprintf("ollama returned %d embeddings for %d texts", len(vectors), len(texts)))
	}
	return vectors, nil
}

func (e *OllamaEmbedder) embed(ctx context.Context, texts []string) ([][]float64, error) {
	raw, err := e.client.CreateEmbedding(ctx, texts)
	if err != nil {
		return nil, err
	}

	vectors := make([][]float64, len(raw))
	for i, vec := range raw {
		if e.dimensions > 0 && len(vec) != e.dimensions {
			return nil, fmt.Errorf("model %q produced %d-dimensional vector, expected %d",
				e.model, len(vec), e.dimensions)
		}
		converted := make([]float64, len(vec))
		for j, v := range vec {
			converted[j] = float64(v)
		}
		vectors[i] = converted
	}
	return vectors, nil
}

// Dimensions returns the configured vector dimensionality.
func (e *OllamaEmbedder) Dimensions() int {
	return e.dimensions
}

// Model returns the embedding model name.
func (e *OllamaEmbedder) Model() string {
	return e.model
}

// Health probes the embedder with a short text.
func (e *OllamaEmbedder) Health(ctx context.Context) types.HealthStatus {
	_, err := e.Embed(ctx, "health probe")
	if err != nil {
		return types.NewHealthStatus(types.HealthStateUnhealthy, err.Error())
	}
	return types.NewHealthStatus(types.HealthStateHealthy, "")
}
