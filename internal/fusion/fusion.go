// Package fusion joins SQL evidence with the synopsis document for the
// content the database ranked first. A missing synopsis degrades the
// merged context instead of failing it; the SQL evidence always
// survives.
package fusion

import (
	"context"
	"log/slog"

	"github.com/federicoFrancesconi/UCSE-2025-AI-Engineering-TP/internal/catalog"
	"github.com/federicoFrancesconi/UCSE-2025-AI-Engineering-TP/internal/index"
)

// TitleSearcher looks up one document by content title.
type TitleSearcher interface {
	SearchByTitle(ctx context.Context, title string) (*index.RetrievedDocument, error)
}

// MergedContext is the combined evidence handed to answer composition.
// Degraded means the ranked title had no synopsis; Execution is still
// present and usable.
type MergedContext struct {
	Execution *catalog.ExecutionResult
	Documents []index.RetrievedDocument
	Entity    string
	Degraded  bool
}

// Engine merges SQL results with synopsis documents.
type Engine struct {
	searcher TitleSearcher
	logger   *slog.Logger
}

// NewEngine creates a fusion engine over the given title searcher. A
// nil logger falls back to slog.Default().
func NewEngine(searcher TitleSearcher, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		searcher: searcher,
		logger:   logger,
	}
}

// Fuse attaches the synopsis of the first candidate title to the
// execution result. Only the first candidate is looked up: it is the
// top of whatever ranking the statement produced, and one focused
// synopsis answers better than several loosely related ones. Lookup
// misses degrade the context; only real index failures return an
// error. Identical inputs always produce identical output.
func (e *Engine) Fuse(ctx context.Context, execution *catalog.ExecutionResult, candidates []string) (*MergedContext, error) {
	merged := &MergedContext{Execution: execution}

	if len(candidates) == 0 {
		e.logger.Warn("no candidate titles to fuse, returning SQL evidence only")
		merged.Degraded = true
		return merged, nil
	}

	entity := candidates[0]
	merged.Entity = entity

	doc, err := e.searcher.SearchByTitle(ctx, entity)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		e.logger.Warn("no synopsis found for ranked title",
			"title", entity)
		merged.Degraded = true
		return merged, nil
	}

	merged.Documents = []index.RetrievedDocument{*doc}
	e.logger.Debug("synopsis fused",
		"title", entity,
		"document_id", doc.ID,
		"score", doc.Score)
	return merged, nil
}
