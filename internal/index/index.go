package index

import (
	"context"
	"fmt"

	"github.com/federicoFrancesconi/UCSE-2025-AI-Engineering-TP/internal/embedder"
	"github.com/federicoFrancesconi/UCSE-2025-AI-Engineering-TP/internal/types"
)

// DocumentIndex provides read access to the synopsis collection: ranked
// similarity search for the RAG path and exact-title lookup for the hybrid
// path. It never mutates the underlying store; ingestion is a separate
// concern (see Ingestor).
type DocumentIndex struct {
	store         *SqliteStore
	embedder      embedder.Embedder
	topK          int
	minSimilarity float64
}

// Options tune the index's retrieval behavior.
type Options struct {
	// TopK is the default number of documents returned by Search.
	TopK int `mapstructure:"top_k" yaml:"top_k"`

	// MinSimilarity is the acceptance threshold for the similarity fallback
	// in SearchByTitle. A fallback hit below this score is treated as no
	// match rather than attaching an irrelevant document.
	MinSimilarity float64 `mapstructure:"min_similarity" yaml:"min_similarity"`
}

// DefaultOptions returns the retrieval defaults.
func DefaultOptions() Options {
	return Options{
		TopK:          3,
		MinSimilarity: 0.35,
	}
}

// NewDocumentIndex creates an index over the given store and embedder.
func NewDocumentIndex(store *SqliteStore, emb embedder.Embedder, opts Options) (*DocumentIndex, error) {
	if store == nil {
		return nil, types.NewError(ErrCodeInvalidConfig, "document store cannot be nil")
	}
	if emb == nil {
		return nil, types.NewError(ErrCodeInvalidConfig, "embedder cannot be nil")
	}
	if emb.Dimensions() != store.Dims() {
		return nil, types.NewError(ErrCodeInvalidConfig,
			fmt.Sprintf("embedder produces %d-dimensional vectors but store holds %d-dimensional ones",
				emb.Dimensions(), store.Dims()))
	}
	if opts.TopK <= 0 {
		opts.TopK = DefaultOptions().TopK
	}
	if opts.MinSimilarity <= 0 {
		opts.MinSimilarity = DefaultOptions().MinSimilarity
	}

	return &DocumentIndex{
		store:         store,
		embedder:      emb,
		topK:          opts.TopK,
		minSimilarity: opts.MinSimilarity,
	}, nil
}

// TopK returns the default result bound for Search.
func (di *DocumentIndex) TopK() int {
	return di.topK
}

// MinSimilarity returns the fallback acceptance threshold.
func (di *DocumentIndex) MinSimilarity() float64 {
	return di.minSimilarity
}

// Search embeds the query text and returns up to k documents ordered by
// descending similarity, ties broken by document ID ascending. Passing k <= 0
// uses the configured default. An empty result is a valid outcome, not an
// error.
func (di *DocumentIndex) Search(ctx context.Context, query string, k int) ([]RetrievedDocument, error) {
	if query == "" {
		return nil, types.NewError(ErrCodeIndexSearchFailed, "search query cannot be empty")
	}
	if k <= 0 {
		k = di.topK
	}

	queryVec, err := di.embedder.Embed(ctx, query)
	if err != nil {
		return nil, types.WrapError(ErrCodeIndexSearchFailed, "failed to embed query", err)
	}

	return di.store.Search(ctx, queryVec, k, 0)
}

// SearchByTitle resolves a catalog title to its document. The normalized
// exact match is preferred; when it misses, a similarity search seeded with
// the title takes the top hit if it clears the acceptance threshold. A (nil,
// nil) return means no acceptable document exists, which callers treat as
// degradation rather than failure.
func (di *DocumentIndex) SearchByTitle(ctx context.Context, title string) (*RetrievedDocument, error) {
	key := TitleKey(title)
	if key == "" {
		return nil, nil
	}

	doc, err := di.store.GetByTitleKey(ctx, key)
	if err == nil {
		return &RetrievedDocument{
			ID:    doc.ID,
			Title: doc.Title,
			Text:  doc.Text,
			Score: 1.0,
		}, nil
	}
	if types.CodeOf(err) != ErrCodeDocumentNotFound {
		return nil, err
	}

	// Exact match missed: fall back to similarity seeded with the title
	queryVec, embErr := di.embedder.Embed(ctx, title)
	if embErr != nil {
		return nil, types.WrapError(ErrCodeIndexSearchFailed, "failed to embed title", embErr)
	}

	hits, searchErr := di.store.Search(ctx, queryVec, 1, di.minSimilarity)
	if searchErr != nil {
		return nil, searchErr
	}
	if len(hits) == 0 {
		return nil, nil
	}

	return &hits[0], nil
}

// Count returns the number of indexed documents.
func (di *DocumentIndex) Count(ctx context.Context) (int, error) {
	return di.store.Count(ctx)
}

// Health reports the combined health of the store and the embedder.
func (di *DocumentIndex) Health(ctx context.Context) types.HealthStatus {
	storeHealth := di.store.Health(ctx)
	if !storeHealth.IsHealthy() {
		return storeHealth
	}

	embedderHealth := di.embedder.Health(ctx)
	if !embedderHealth.IsHealthy() {
		return types.NewHealthStatus(types.HealthStateDegraded,
			fmt.Sprintf("embedder unhealthy: %s", embedderHealth.Message))
	}

	return storeHealth
}
