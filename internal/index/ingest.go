package index

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/federicoFrancesconi/UCSE-2025-AI-Engineering-TP/internal/embedder"
	"github.com/federicoFrancesconi/UCSE-2025-AI-Engineering-TP/internal/types"
)

// Ingestor loads synopsis files into the document store. Each file becomes
// one document: the ID is the file stem, the title is the stem with
// underscores turned into spaces ("Terror_Nocturno.txt" titles as
// "Terror Nocturno").
type Ingestor struct {
	store    *SqliteStore
	embedder embedder.Embedder
	logger   *slog.Logger
}

// NewIngestor creates an ingestor writing to the given store.
func NewIngestor(store *SqliteStore, emb embedder.Embedder, logger *slog.Logger) *Ingestor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Ingestor{
		store:    store,
		embedder: emb,
		logger:   logger,
	}
}

// IngestDir loads every .txt and .md file under dir into the store and
// returns the number of documents ingested. Unreadable and empty files
// are skipped with a warning; embedding and storage failures abort,
// since those are systemic rather than per-file. Re-ingesting is
// idempotent: existing documents with the same ID are replaced.
func (in *Ingestor) IngestDir(ctx context.Context, dir string) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, types.WrapError(ErrCodeIngestFailed,
			fmt.Sprintf("failed to read document directory %s", dir), err)
	}

	docs := make([]Document, 0, len(entries))
	texts := make([]string, 0, len(entries))

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if ext != ".txt" && ext != ".md" {
			continue
		}

		content, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			in.logger.Warn("skipping unreadable document", "file", entry.Name(), "error", err)
			continue
		}

		text := strings.TrimSpace(string(content))
		if text == "" {
			in.logger.Warn("skipping empty document", "file", entry.Name())
			continue
		}

		stem := strings.TrimSuffix(entry.Name(), filepath.Ext(entry.Name()))
		title := strings.ReplaceAll(stem, "_", " ")

		docs = append(docs, *NewDocument(stem, title, text))
		texts = append(texts, text)
	}

	if len(docs) == 0 {
		return 0, nil
	}

	embeddings, err := in.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return 0, types.WrapError(ErrCodeIngestFailed, "failed to embed documents", err)
	}

	if err := in.store.StoreBatch(ctx, docs, embeddings); err != nil {
		return 0, err
	}

	in.logger.Info("ingested documents", "dir", dir, "count", len(docs))
	return len(docs), nil
}
