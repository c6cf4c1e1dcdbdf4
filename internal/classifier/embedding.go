package classifier

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sync"

	"github.com/federicoFrancesconi/UCSE-2025-AI-Engineering-TP/internal/embedder"
)

// EmbeddingClassifier labels questions by similarity to per-path
// exemplar questions. It needs no generation model, which makes it the
// cheaper strategy when an embedding endpoint is already running.
type EmbeddingClassifier struct {
	embedder embedder.Embedder
	logger   *slog.Logger

	initOnce sync.Once
	initErr  error
	profiles []pathProfile
}

// pathProfile holds the precomputed exemplar vectors for one path.
// Profile order doubles as the tie-break priority.
type pathProfile struct {
	path    QueryPath
	vectors [][]float64
}

// NewEmbeddingClassifier creates a classifier over the given embedder.
// Exemplar embeddings are computed lazily on the first Classify call.
// A nil logger falls back to slog.Default().
func NewEmbeddingClassifier(emb embedder.Embedder, logger *slog.Logger) *EmbeddingClassifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &EmbeddingClassifier{
		embedder: emb,
		logger:   logger,
	}
}

// Classify embeds the question and scores it against each path's
// exemplars; a path's score is its best exemplar similarity. Ties keep
// the earlier path, so equal scores resolve SQL, then RAG, then
// HYBRID. Any embedding failure falls back to SQL without failing the
// request.
func (c *EmbeddingClassifier) Classify(ctx context.Context, question string) (Classification, error) {
	c.initOnce.Do(func() { c.initErr = c.buildProfiles(ctx) })
	if c.initErr != nil {
		c.logger.Warn("exemplar embeddings unavailable, defaulting to SQL",
			"error", c.initErr)
		return fallback(), nil
	}

	queryVec, err := c.embedder.Embed(ctx, question)
	if err != nil {
		c.logger.Warn("question embedding failed, defaulting to SQL",
			"error", err)
		return fallback(), nil
	}

	best := Classification{Path: PathSQL}
	bestScore := math.Inf(-1)
	for _, profile := range c.profiles {
		score := maxSimilarity(queryVec, profile.vectors)
		c.logger.Debug("path similarity",
			"path", profile.path,
			"score", score)
		if score > bestScore {
			bestScore = score
			best = Classification{
				Path:      profile.path,
				Rationale: fmt.Sprintf("similarity %.4f", score),
			}
		}
	}

	return best, nil
}

func (c *EmbeddingClassifier) buildProfiles(ctx context.Context) error {
	exemplars := []struct {
		path  QueryPath
		texts []string
	}{
		{PathSQL, sqlExemplars},
		{PathRAG, ragExemplars},
		{PathHybrid, hybridExemplars},
	}

	profiles := make([]pathProfile, 0, len(exemplars))
	for _, ex := range exemplars {
		vectors, err := c.embedder.EmbedBatch(ctx, ex.texts)
		if err != nil {
			return fmt.Errorf("embedding %s exemplars: %w", ex.path, err)
		}
		profiles = append(profiles, pathProfile{path: ex.path, vectors: vectors})
	}

	c.profiles = profiles
	return nil
}

func maxSimilarity(query []float64, vectors [][]float64) float64 {
	best := 0.0
	for _, vec := range vectors {
		if sim := cosineSimilarity(query, vec); sim > best {
			best = sim
		}
	}
	return best
}

func cosineSimilarity(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, magA, magB float64
	for i := range a {
		dot += a[i] * b[i]
		magA += a[i] * a[i]
		magB += b[i] * b[i]
	}
	if magA == 0 || magB == 0 {
		return 0
	}
	return dot / (math.Sqrt(magA) * math.Sqrt(magB))
}
