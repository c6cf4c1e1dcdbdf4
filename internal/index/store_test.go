package index

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/federicoFrancesconi/UCSE-2025-AI-Engineering-TP/internal/types"
)

// createTestStore creates a temporary SqliteStore for testing.
func createTestStore(t *testing.T, dims int) *SqliteStore {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test_documents.db")
	store, err := NewSqliteStore(StoreConfig{
		Path: dbPath,
		Dims: dims,
	})
	require.NoError(t, err)
	require.NotNil(t, store)

	t.Cleanup(func() {
		store.Close()
	})

	return store
}

func TestNewSqliteStore(t *testing.T) {
	tests := []struct {
		name      string
		config    StoreConfig
		wantError bool
		errorCode types.ErrorCode
	}{
		{
			name: "valid configuration",
			config: StoreConfig{
				Path: filepath.Join(t.TempDir(), "documents.db"),
				Dims: 768,
			},
			wantError: false,
		},
		{
			name: "empty database path",
			config: StoreConfig{
				Dims: 768,
			},
			wantError: true,
			errorCode: ErrCodeInvalidConfig,
		},
		{
			name: "zero dimensions",
			config: StoreConfig{
				Path: filepath.Join(t.TempDir(), "documents.db"),
				Dims: 0,
			},
			wantError: true,
			errorCode: ErrCodeInvalidConfig,
		},
		{
			name: "negative dimensions",
			config: StoreConfig{
				Path: filepath.Join(t.TempDir(), "documents.db"),
				Dims: -1,
			},
			wantError: true,
			errorCode: ErrCodeInvalidConfig,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, err := NewSqliteStore(tt.config)

			if tt.wantError {
				require.Error(t, err)
				assert.Equal(t, tt.errorCode, types.CodeOf(err))
			} else {
				require.NoError(t, err)
				require.NotNil(t, store)
				assert.NoError(t, store.Close())
			}
		})
	}
}

func TestSqliteStore_StoreAndGetByTitleKey(t *testing.T) {
	store := createTestStore(t, 4)
	ctx := context.Background()

	doc := *NewDocument("La_Ultima_Frontera", "La Ultima Frontera", "Una expedición cruza la frontera helada.")
	require.NoError(t, store.Store(ctx, doc, []float64{1, 0, 0, 0}))

	got, err := store.GetByTitleKey(ctx, TitleKey("la ultima frontera"))
	require.NoError(t, err)
	assert.Equal(t, "La_Ultima_Frontera", got.ID)
	assert.Equal(t, "La Ultima Frontera", got.Title)
	assert.Equal(t, "Una expedición cruza la frontera helada.", got.Text)
}

func TestSqliteStore_GetByTitleKey_NotFound(t *testing.T) {
	store := createTestStore(t, 4)

	_, err := store.GetByTitleKey(context.Background(), "no such title")
	require.Error(t, err)
	assert.Equal(t, ErrCodeDocumentNotFound, types.CodeOf(err))
}

func TestSqliteStore_Store_DimensionMismatch(t *testing.T) {
	store := createTestStore(t, 4)

	doc := *NewDocument("doc", "Doc", "text")
	err := store.Store(context.Background(), doc, []float64{1, 0})
	require.Error(t, err)
	assert.Equal(t, ErrCodeIndexStoreFailed, types.CodeOf(err))
}

func TestSqliteStore_Store_Replace(t *testing.T) {
	store := createTestStore(t, 4)
	ctx := context.Background()

	doc := *NewDocument("doc", "Doc", "first version")
	require.NoError(t, store.Store(ctx, doc, []float64{1, 0, 0, 0}))

	doc.Text = "second version"
	require.NoError(t, store.Store(ctx, doc, []float64{0, 1, 0, 0}))

	count, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	got, err := store.GetByTitleKey(ctx, "doc")
	require.NoError(t, err)
	assert.Equal(t, "second version", got.Text)
}

func TestSqliteStore_Search_RankingAndBound(t *testing.T) {
	store := createTestStore(t, 4)
	ctx := context.Background()

	docs := []Document{
		*NewDocument("a", "Doc A", "about dreams"),
		*NewDocument("b", "Doc B", "about space"),
		*NewDocument("c", "Doc C", "about oceans"),
	}
	embeddings := [][]float64{
		{1, 0, 0, 0},
		{0.9, 0.1, 0, 0},
		{0, 0, 1, 0},
	}
	require.NoError(t, store.StoreBatch(ctx, docs, embeddings))

	results, err := store.Search(ctx, []float64{1, 0, 0, 0}, 2, 0)
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, "a", results[0].ID)
	assert.Equal(t, "b", results[1].ID)
	assert.GreaterOrEqual(t, results[0].Score, results[1].Score)
	assert.InDelta(t, 1.0, results[0].Score, 1e-9)
}

func TestSqliteStore_Search_TieBreakByID(t *testing.T) {
	store := createTestStore(t, 4)
	ctx := context.Background()

	// Identical embeddings produce identical scores; order must still be stable
	same := []float64{0.5, 0.5, 0, 0}
	require.NoError(t, store.Store(ctx, *NewDocument("zeta", "Zeta", "text z"), same))
	require.NoError(t, store.Store(ctx, *NewDocument("alpha", "Alpha", "text a"), same))

	results, err := store.Search(ctx, same, 5, 0)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "alpha", results[0].ID)
	assert.Equal(t, "zeta", results[1].ID)
}

func TestSqliteStore_Search_MinScore(t *testing.T) {
	store := createTestStore(t, 4)
	ctx := context.Background()

	require.NoError(t, store.Store(ctx, *NewDocument("near", "Near", "close match"), []float64{1, 0, 0, 0}))
	require.NoError(t, store.Store(ctx, *NewDocument("far", "Far", "unrelated"), []float64{0, 0, 0, 1}))

	results, err := store.Search(ctx, []float64{1, 0, 0, 0}, 5, 0.5)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "near", results[0].ID)
}

func TestSqliteStore_Search_ClampsNegativeScores(t *testing.T) {
	store := createTestStore(t, 2)
	ctx := context.Background()

	require.NoError(t, store.Store(ctx, *NewDocument("anti", "Anti", "opposite"), []float64{-1, 0}))

	results, err := store.Search(ctx, []float64{1, 0}, 1, 0)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, 0.0, results[0].Score)
}

func TestSqliteStore_Search_Validation(t *testing.T) {
	store := createTestStore(t, 4)
	ctx := context.Background()

	_, err := store.Search(ctx, nil, 3, 0)
	assert.Equal(t, ErrCodeIndexSearchFailed, types.CodeOf(err))

	_, err = store.Search(ctx, []float64{1, 0}, 3, 0)
	assert.Equal(t, ErrCodeIndexSearchFailed, types.CodeOf(err))

	_, err = store.Search(ctx, []float64{1, 0, 0, 0}, 0, 0)
	assert.Equal(t, ErrCodeIndexSearchFailed, types.CodeOf(err))
}

func TestSqliteStore_Closed(t *testing.T) {
	store := createTestStore(t, 4)
	require.NoError(t, store.Close())

	err := store.Store(context.Background(), *NewDocument("doc", "Doc", "text"), []float64{1, 0, 0, 0})
	assert.Equal(t, ErrCodeIndexUnavailable, types.CodeOf(err))

	_, err = store.Search(context.Background(), []float64{1, 0, 0, 0}, 1, 0)
	assert.Equal(t, ErrCodeIndexUnavailable, types.CodeOf(err))

	assert.False(t, store.Health(context.Background()).IsHealthy())

	// Closing twice is safe
	assert.NoError(t, store.Close())
}

func TestSqliteStore_Persistence(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "persist.db")

	store, err := NewSqliteStore(StoreConfig{Path: dbPath, Dims: 4})
	require.NoError(t, err)

	doc := *NewDocument("doc", "Doc", "survives reopen")
	require.NoError(t, store.Store(context.Background(), doc, []float64{0, 1, 0, 0}))
	require.NoError(t, store.Close())

	reopened, err := NewSqliteStore(StoreConfig{Path: dbPath, Dims: 4})
	require.NoError(t, err)
	defer reopened.Close()

	got, err := reopened.GetByTitleKey(context.Background(), "doc")
	require.NoError(t, err)
	assert.Equal(t, "survives reopen", got.Text)
}

func TestSerializeDeserializeEmbedding(t *testing.T) {
	original := []float64{0.1, -0.5, 3.14159, 0, 1e-12}

	bytes, err := serializeEmbedding(original)
	require.NoError(t, err)
	assert.Len(t, bytes, len(original)*8)

	restored, err := deserializeEmbedding(bytes, len(original))
	require.NoError(t, err)
	assert.Equal(t, original, restored)

	_, err = deserializeEmbedding(bytes[:8], len(original))
	assert.Error(t, err)

	_, err = serializeEmbedding(nil)
	assert.Error(t, err)
}

func TestCosineSimilarity(t *testing.T) {
	assert.InDelta(t, 1.0, cosineSimilarity([]float64{1, 0}, []float64{2, 0}), 1e-9)
	assert.InDelta(t, 0.0, cosineSimilarity([]float64{1, 0}, []float64{0, 1}), 1e-9)
	assert.InDelta(t, -1.0, cosineSimilarity([]float64{1, 0}, []float64{-1, 0}), 1e-9)
	assert.Equal(t, 0.0, cosineSimilarity([]float64{1, 0}, []float64{1}))
	assert.Equal(t, 0.0, cosineSimilarity([]float64{0, 0}, []float64{1, 0}))
}
