package index

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/federicoFrancesconi/UCSE-2025-AI-Engineering-TP/internal/types"

	_ "github.com/mattn/go-sqlite3"
)

// SqliteStore is a persistent document store backed by SQLite. Embeddings are
// stored as BLOBs next to the document text; similarity search is brute-force
// cosine over all rows, which is fine at catalog scale (tens of synopses).
// The store is thread-safe and supports concurrent readers via WAL mode.
type SqliteStore struct {
	mu     sync.RWMutex
	db     *sql.DB
	dims   int
	closed bool
}

// StoreConfig holds configuration for SqliteStore.
type StoreConfig struct {
	Path string // Path to SQLite database file
	Dims int    // Embedding dimensions (e.g., 768 for nomic-embed-text)
}

// NewSqliteStore opens (creating if needed) a document store at cfg.Path.
func NewSqliteStore(cfg StoreConfig) (*SqliteStore, error) {
	if cfg.Path == "" {
		return nil, types.NewError(ErrCodeInvalidConfig, "database path cannot be empty")
	}
	if cfg.Dims <= 0 {
		return nil, types.NewError(ErrCodeInvalidConfig, fmt.Sprintf("dimensions must be positive, got %d", cfg.Dims))
	}

	// Open database with WAL mode for better concurrency
	dsn := fmt.Sprintf("file:%s?_journal_mode=WAL&_foreign_keys=on&_busy_timeout=5000", cfg.Path)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, types.WrapError(ErrCodeIndexStoreFailed, "failed to open database", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, types.WrapError(ErrCodeIndexStoreFailed, "failed to ping database", err)
	}

	store := &SqliteStore{
		db:     db,
		dims:   cfg.Dims,
		closed: false,
	}

	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, types.WrapError(ErrCodeIndexStoreFailed, "failed to initialize schema", err)
	}

	return store, nil
}

func (s *SqliteStore) initSchema() error {
	createTableSQL := `
		CREATE TABLE IF NOT EXISTS documents (
			id TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			title_key TEXT NOT NULL,
			content TEXT NOT NULL,
			embedding BLOB NOT NULL,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)
	`
	if _, err := s.db.Exec(createTableSQL); err != nil {
		return fmt.Errorf("failed to create documents table: %w", err)
	}

	indexSQL := `CREATE INDEX IF NOT EXISTS idx_documents_title_key ON documents(title_key)`
	if _, err := s.db.Exec(indexSQL); err != nil {
		return fmt.Errorf("failed to create title_key index: %w", err)
	}

	return nil
}

// Store inserts or replaces a document and its embedding.
func (s *SqliteStore) Store(ctx context.Context, doc Document, embedding []float64) error {
	if err := doc.Validate(); err != nil {
		return err
	}
	if len(embedding) != s.dims {
		return types.NewError(ErrCodeIndexStoreFailed,
			fmt.Sprintf("embedding dimensions mismatch: expected %d, got %d", s.dims, len(embedding)))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return types.NewError(ErrCodeIndexUnavailable, "document store is closed")
	}

	embeddingBytes, err := serializeEmbedding(embedding)
	if err != nil {
		return types.WrapError(ErrCodeIndexStoreFailed, "failed to serialize embedding", err)
	}

	query := `
		INSERT OR REPLACE INTO documents (id, title, title_key, content, embedding, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	_, err = s.db.ExecContext(ctx, query,
		doc.ID,
		doc.Title,
		TitleKey(doc.Title),
		doc.Text,
		embeddingBytes,
		doc.CreatedAt,
	)
	if err != nil {
		return types.WrapError(ErrCodeIndexStoreFailed, "failed to insert document", err)
	}

	return nil
}

// StoreBatch inserts multiple documents in one transaction.
func (s *SqliteStore) StoreBatch(ctx context.Context, docs []Document, embeddings [][]float64) error {
	if len(docs) == 0 {
		return nil
	}
	if len(docs) != len(embeddings) {
		return types.NewError(ErrCodeIndexStoreFailed,
			fmt.Sprintf("document/embedding count mismatch: %d vs %d", len(docs), len(embeddings)))
	}

	for i, doc := range docs {
		if err := doc.Validate(); err != nil {
			return types.WrapError(ErrCodeIndexStoreFailed,
				fmt.Sprintf("invalid document at index %d", i), err)
		}
		if len(embeddings[i]) != s.dims {
			return types.NewError(ErrCodeIndexStoreFailed,
				fmt.Sprintf("document %d: embedding dimensions mismatch: expected %d, got %d",
					i, s.dims, len(embeddings[i])))
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return types.NewError(ErrCodeIndexUnavailable, "document store is closed")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return types.WrapError(ErrCodeIndexStoreFailed, "failed to begin transaction", err)
	}
	defer tx.Rollback()

	query := `
		INSERT OR REPLACE INTO documents (id, title, title_key, content, embedding, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return types.WrapError(ErrCodeIndexStoreFailed, "failed to prepare statement", err)
	}
	defer stmt.Close()

	for i, doc := range docs {
		embeddingBytes, err := serializeEmbedding(embeddings[i])
		if err != nil {
			return types.WrapError(ErrCodeIndexStoreFailed, "failed to serialize embedding", err)
		}

		_, err = stmt.ExecContext(ctx,
			doc.ID,
			doc.Title,
			TitleKey(doc.Title),
			doc.Text,
			embeddingBytes,
			doc.CreatedAt,
		)
		if err != nil {
			return types.WrapError(ErrCodeIndexStoreFailed, "failed to insert batch document", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return types.WrapError(ErrCodeIndexStoreFailed, "failed to commit transaction", err)
	}

	return nil
}

// Search returns up to topK documents ranked by cosine similarity against the
// query embedding. Results below minScore are dropped. Ordering is total:
// score descending, then document ID ascending so equal scores never flip
// between runs.
func (s *SqliteStore) Search(ctx context.Context, embedding []float64, topK int, minScore float64) ([]RetrievedDocument, error) {
	if len(embedding) == 0 {
		return nil, types.NewError(ErrCodeIndexSearchFailed, "query embedding cannot be empty")
	}
	if len(embedding) != s.dims {
		return nil, types.NewError(ErrCodeIndexSearchFailed,
			fmt.Sprintf("query embedding dimensions mismatch: expected %d, got %d", s.dims, len(embedding)))
	}
	if topK <= 0 {
		return nil, types.NewError(ErrCodeIndexSearchFailed,
			fmt.Sprintf("top_k must be greater than 0, got %d", topK))
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, types.NewError(ErrCodeIndexUnavailable, "document store is closed")
	}

	rows, err := s.db.QueryContext(ctx, "SELECT id, title, content, embedding FROM documents")
	if err != nil {
		return nil, types.WrapError(ErrCodeIndexSearchFailed, "failed to query documents", err)
	}
	defer rows.Close()

	results := make([]RetrievedDocument, 0)

	for rows.Next() {
		var doc RetrievedDocument
		var embeddingBytes []byte

		if err := rows.Scan(&doc.ID, &doc.Title, &doc.Text, &embeddingBytes); err != nil {
			return nil, types.WrapError(ErrCodeIndexSearchFailed, "failed to scan document", err)
		}

		stored, err := deserializeEmbedding(embeddingBytes, s.dims)
		if err != nil {
			return nil, types.WrapError(ErrCodeIndexSearchFailed, "failed to deserialize embedding", err)
		}

		// Clamp to [0,1]: anti-correlated vectors are as good as unrelated
		score := cosineSimilarity(embedding, stored)
		if score < 0 {
			score = 0
		}
		if score >= minScore {
			doc.Score = score
			results = append(results, doc)
		}
	}

	if err := rows.Err(); err != nil {
		return nil, types.WrapError(ErrCodeIndexSearchFailed, "error iterating documents", err)
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].ID < results[j].ID
	})

	if len(results) > topK {
		results = results[:topK]
	}

	return results, nil
}

// GetByTitleKey retrieves the document whose normalized title equals key.
// When several documents normalize to the same key the lowest ID wins.
func (s *SqliteStore) GetByTitleKey(ctx context.Context, key string) (*Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, types.NewError(ErrCodeIndexUnavailable, "document store is closed")
	}

	query := "SELECT id, title, content, created_at FROM documents WHERE title_key = ? ORDER BY id ASC LIMIT 1"
	row := s.db.QueryRowContext(ctx, query, key)

	var doc Document
	err := row.Scan(&doc.ID, &doc.Title, &doc.Text, &doc.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, types.NewError(ErrCodeDocumentNotFound, fmt.Sprintf("no document with title key %q", key))
	}
	if err != nil {
		return nil, types.WrapError(ErrCodeIndexSearchFailed, "failed to get document", err)
	}

	return &doc, nil
}

// Dims returns the embedding dimensionality the store was opened with.
func (s *SqliteStore) Dims() int {
	return s.dims
}

// Count returns the number of stored documents.
func (s *SqliteStore) Count(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return 0, types.NewError(ErrCodeIndexUnavailable, "document store is closed")
	}

	var count int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM documents").Scan(&count); err != nil {
		return 0, types.WrapError(ErrCodeIndexSearchFailed, "failed to count documents", err)
	}
	return count, nil
}

// Health returns the current health status of the document store.
func (s *SqliteStore) Health(ctx context.Context) types.HealthStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return types.NewHealthStatus(types.HealthStateUnhealthy, "document store is closed")
	}

	if err := s.db.PingContext(ctx); err != nil {
		return types.NewHealthStatus(types.HealthStateUnhealthy,
			fmt.Sprintf("database ping failed: %v", err))
	}

	var count int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM documents").Scan(&count); err != nil {
		return types.NewHealthStatus(types.HealthStateDegraded,
			fmt.Sprintf("failed to count documents: %v", err))
	}

	return types.NewHealthStatus(types.HealthStateHealthy,
		fmt.Sprintf("document store operational with %d documents (dims: %d)", count, s.dims))
}

// Close releases all resources held by the store.
func (s *SqliteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}

	s.closed = true

	if s.db != nil {
		return s.db.Close()
	}

	return nil
}

// serializeEmbedding converts a float64 slice to bytes for storage.
// Uses 8 bytes per float64 (little-endian binary encoding).
func serializeEmbedding(embedding []float64) ([]byte, error) {
	if len(embedding) == 0 {
		return nil, fmt.Errorf("embedding cannot be empty")
	}

	bytes := make([]byte, len(embedding)*8)
	for i, val := range embedding {
		bits := math.Float64bits(val)
		offset := i * 8
		bytes[offset] = byte(bits)
		bytes[offset+1] = byte(bits >> 8)
		bytes[offset+2] = byte(bits >> 16)
		bytes[offset+3] = byte(bits >> 24)
		bytes[offset+4] = byte(bits >> 32)
		bytes[offset+5] = byte(bits >> 40)
		bytes[offset+6] = byte(bits >> 48)
		bytes[offset+7] = byte(bits >> 56)
	}

	return bytes, nil
}

// deserializeEmbedding converts bytes back to a float64 slice.
func deserializeEmbedding(bytes []byte, dims int) ([]float64, error) {
	expectedLen := dims * 8
	if len(bytes) != expectedLen {
		return nil, fmt.Errorf("invalid embedding bytes length: expected %d, got %d", expectedLen, len(bytes))
	}

	embedding := make([]float64, dims)
	for i := 0; i < dims; i++ {
		offset := i * 8
		bits := uint64(bytes[offset]) |
			uint64(bytes[offset+1])<<8 |
			uint64(bytes[offset+2])<<16 |
			uint64(bytes[offset+3])<<24 |
			uint64(bytes[offset+4])<<32 |
			uint64(bytes[offset+5])<<40 |
			uint64(bytes[offset+6])<<48 |
			uint64(bytes[offset+7])<<56
		embedding[i] = math.Float64frombits(bits)
	}

	return embedding, nil
}

// cosineSimilarity computes the cosine similarity between two vectors.
func cosineSimilarity(a, b []float64) float64 {
	if len(a) != len(b) {
		return 0
	}

	var dotProduct, normA, normB float64
	for i := range a {
		dotProduct += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	return dotProduct / (math.Sqrt(normA) * math.Sqrt(normB))
}
