package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/jackc/pgx/v5/pgxpool"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/federicoFrancesconi/UCSE-2025-AI-Engineering-TP/internal/catalog"
	"github.com/federicoFrancesconi/UCSE-2025-AI-Engineering-TP/internal/classifier"
	"github.com/federicoFrancesconi/UCSE-2025-AI-Engineering-TP/internal/config"
	"github.com/federicoFrancesconi/UCSE-2025-AI-Engineering-TP/internal/embedder"
	"github.com/federicoFrancesconi/UCSE-2025-AI-Engineering-TP/internal/fusion"
	"github.com/federicoFrancesconi/UCSE-2025-AI-Engineering-TP/internal/index"
	"github.com/federicoFrancesconi/UCSE-2025-AI-Engineering-TP/internal/llm"
	"github.com/federicoFrancesconi/UCSE-2025-AI-Engineering-TP/internal/llm/providers"
	"github.com/federicoFrancesconi/UCSE-2025-AI-Engineering-TP/internal/observability"
	"github.com/federicoFrancesconi/UCSE-2025-AI-Engineering-TP/internal/orchestrator"
	"github.com/federicoFrancesconi/UCSE-2025-AI-Engineering-TP/internal/sqlguard"
	"github.com/federicoFrancesconi/UCSE-2025-AI-Engineering-TP/internal/sqlpath"
	"github.com/federicoFrancesconi/UCSE-2025-AI-Engineering-TP/internal/types"
)

// stack is the fully wired agent: every collaborator the orchestrator
// needs, plus the resources that must be released when the command
// finishes.
type stack struct {
	orch     *orchestrator.Orchestrator
	provider llm.Provider
	embedder embedder.Embedder

	pool    *pgxpool.Pool
	store   *index.SqliteStore
	tracing *sdktrace.TracerProvider
	logger  *slog.Logger
}

// newStack builds the agent from configuration: tracing, the catalog
// connection pool, the LLM provider, the document index, and the
// orchestrator over all of them. On error, everything opened so far is
// released before returning.
func newStack(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*stack, error) {
	if logger == nil {
		logger = slog.Default()
	}
	s := &stack{logger: logger}

	tracing, err := observability.InitTracing(ctx, cfg.Tracing)
	if err != nil {
		return nil, err
	}
	s.tracing = tracing

	pool, err := catalog.Open(ctx, cfg.Database)
	if err != nil {
		s.Close(ctx)
		return nil, err
	}
	s.pool = pool

	executor := catalog.NewExecutor(pool, cfg.Database.QueryTimeout)
	introspector := catalog.NewIntrospector(pool)
	guard := sqlguard.New()

	provider, err := providers.NewProvider(llm.ProviderConfig{
		Type:         llm.NormalizeProviderType(cfg.LLM.Provider),
		BaseURL:      cfg.LLM.BaseURL,
		DefaultModel: cfg.LLM.ConversationModel,
	})
	if err != nil {
		s.Close(ctx)
		return nil, err
	}
	s.provider = provider

	generator := sqlpath.NewGenerator(provider, cfg.LLM.SQLModel, logger)
	runner := sqlpath.NewRunner(generator, guard, executor, introspector, sqlpath.Config{
		MaxAttempts:  cfg.SQL.MaxAttempts,
		TitleColumns: cfg.SQL.TitleColumns,
	}, logger)

	emb, err := embedder.New(cfg.Embedding)
	if err != nil {
		s.Close(ctx)
		return nil, err
	}
	s.embedder = emb

	store, err := openIndexStore(cfg)
	if err != nil {
		s.Close(ctx)
		return nil, err
	}
	s.store = store

	docs, err := index.NewDocumentIndex(store, emb, index.Options{
		TopK:          cfg.Index.TopK,
		MinSimilarity: cfg.Index.MinSimilarity,
	})
	if err != nil {
		s.Close(ctx)
		return nil, err
	}

	cls, err := buildClassifier(cfg, provider, emb, logger)
	if err != nil {
		s.Close(ctx)
		return nil, err
	}

	fusionEngine := fusion.NewEngine(docs, logger)
	composer := orchestrator.NewComposer(provider, cfg.LLM.ConversationModel, logger)

	s.orch = orchestrator.New(cls, runner, docs, fusionEngine, composer,
		orchestrator.WithLogger(logger),
		orchestrator.WithTracer(tracing.Tracer("streaming-agent")),
		orchestrator.WithTopK(cfg.Index.TopK),
	)

	return s, nil
}

// Close releases the stack's resources. Safe to call on a partially
// built stack.
func (s *stack) Close(ctx context.Context) {
	if s.store != nil {
		if err := s.store.Close(); err != nil {
			s.logger.Warn("failed to close document store", "error", err)
		}
	}
	if s.pool != nil {
		s.pool.Close()
	}
	if s.tracing != nil {
		if err := observability.ShutdownTracing(ctx, s.tracing); err != nil {
			s.logger.Warn("failed to shut down tracing", "error", err)
		}
	}
}

// openIndexStore opens the synopsis index, creating its parent
// directory on first use.
func openIndexStore(cfg *config.Config) (*index.SqliteStore, error) {
	dir := filepath.Dir(cfg.Index.Path)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, types.WrapError(index.ErrCodeIndexUnavailable,
				fmt.Sprintf("failed to create index directory %s", dir), err)
		}
	}

	return index.NewSqliteStore(index.StoreConfig{
		Path: cfg.Index.Path,
		Dims: cfg.Embedding.Dimensions,
	})
}

// buildClassifier picks the routing strategy the configuration names.
func buildClassifier(cfg *config.Config, provider llm.Provider, emb embedder.Embedder, logger *slog.Logger) (classifier.Classifier, error) {
	switch cfg.Classifier.Strategy {
	case "embedding":
		return classifier.NewEmbeddingClassifier(emb, logger), nil
	case "llm", "":
		return classifier.NewLLMClassifier(provider, cfg.LLM.ResolveClassifierModel(), logger), nil
	default:
		return nil, types.NewError(types.CONFIG_VALIDATION_FAILED,
			fmt.Sprintf("unknown classifier strategy %q, must be one of: llm, embedding", cfg.Classifier.Strategy))
	}
}
