// Package orchestrator drives one question through classification, the
// chosen evidence path, and answer composition, producing a
// ResponseBundle for the front end.
package orchestrator

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/federicoFrancesconi/UCSE-2025-AI-Engineering-TP/internal/catalog"
	"github.com/federicoFrancesconi/UCSE-2025-AI-Engineering-TP/internal/classifier"
	"github.com/federicoFrancesconi/UCSE-2025-AI-Engineering-TP/internal/fusion"
	"github.com/federicoFrancesconi/UCSE-2025-AI-Engineering-TP/internal/index"
	"github.com/federicoFrancesconi/UCSE-2025-AI-Engineering-TP/internal/sqlpath"
	"github.com/federicoFrancesconi/UCSE-2025-AI-Engineering-TP/internal/types"
)

// SQLRunner drives the SQL path for one question.
type SQLRunner interface {
	Run(ctx context.Context, question string, hybrid bool) (*sqlpath.Result, error)
}

// DocumentSearcher retrieves synopsis documents by semantic similarity.
type DocumentSearcher interface {
	Search(ctx context.Context, query string, k int) ([]index.RetrievedDocument, error)
}

// FusionEngine joins SQL evidence with the ranked title's synopsis.
type FusionEngine interface {
	Fuse(ctx context.Context, execution *catalog.ExecutionResult, candidates []string) (*fusion.MergedContext, error)
}

// DefaultTopK is how many documents a retrieval-path question pulls.
const DefaultTopK = 3

// DefaultHistoryLimit caps how many prior exchanges compose sees.
const DefaultHistoryLimit = 10

// ErrCodeFailed is the fallback classification for failures that reach
// the orchestrator without a typed code of their own.
const ErrCodeFailed types.ErrorCode = "ORCHESTRATOR_FAILED"

// Orchestrator coordinates the classifier, the evidence paths, and the
// composer. One instance serves many questions; per-question state
// lives in the bundle and its state machine.
type Orchestrator struct {
	classifier classifier.Classifier
	runner     SQLRunner
	searcher   DocumentSearcher
	fusion     FusionEngine
	composer   *Composer

	topK         int
	historyLimit int
	timeout      time.Duration
	logger       *slog.Logger
	tracer       trace.Tracer
}

// Option is a functional option for configuring the Orchestrator.
type Option func(*Orchestrator)

// WithLogger sets the logger for orchestration operations.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithTracer sets the OpenTelemetry tracer for request spans.
func WithTracer(tracer trace.Tracer) Option {
	return func(o *Orchestrator) {
		if tracer != nil {
			o.tracer = tracer
		}
	}
}

// WithTimeout bounds the whole run of one question.
// Default: 0 (no timeout).
func WithTimeout(d time.Duration) Option {
	return func(o *Orchestrator) {
		if d > 0 {
			o.timeout = d
		}
	}
}

// WithTopK sets how many documents retrieval-path questions fetch.
func WithTopK(k int) Option {
	return func(o *Orchestrator) {
		if k > 0 {
			o.topK = k
		}
	}
}

// WithHistoryLimit caps the prior exchanges passed to composition.
func WithHistoryLimit(n int) Option {
	return func(o *Orchestrator) {
		if n > 0 {
			o.historyLimit = n
		}
	}
}

// New creates an Orchestrator over the given collaborators.
func New(
	cls classifier.Classifier,
	runner SQLRunner,
	searcher DocumentSearcher,
	fusionEngine FusionEngine,
	composer *Composer,
	options ...Option,
) *Orchestrator {
	o := &Orchestrator{
		classifier:   cls,
		runner:       runner,
		searcher:     searcher,
		fusion:       fusionEngine,
		composer:     composer,
		topK:         DefaultTopK,
		historyLimit: DefaultHistoryLimit,
		logger:       slog.Default(),
		tracer:       trace.NewNoopTracerProvider().Tracer("orchestrator"),
	}

	for _, opt := range options {
		opt(o)
	}

	return o
}

// Ask answers one question. The returned bundle is always non-nil and
// carries whatever was produced before any failure; when the bundle
// status is failed the typed failure is returned as the error too.
// history holds prior bundles of the same conversation, oldest first.
func (o *Orchestrator) Ask(ctx context.Context, question Question, history []*ResponseBundle) (*ResponseBundle, error) {
	start := time.Now()

	if o.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.timeout)
		defer cancel()
	}

	bundle := &ResponseBundle{
		ID:       uuid.New().String(),
		Question: question,
	}
	machine := newStateMachine(bundle.ID, o.logger)

	ctx, span := o.tracer.Start(ctx, "orchestrator.Ask",
		trace.WithAttributes(attribute.String("request.id", bundle.ID)))
	defer span.End()

	if err := question.Validate(); err != nil {
		return o.fail(bundle, machine, err, start)
	}

	o.logger.Info("question received",
		"request_id", bundle.ID,
		"question", question.Text)

	// Classification never fails a request; strategies fall back to SQL.
	cls, err := o.classifier.Classify(ctx, question.Text)
	if err != nil {
		cls = classifier.Classification{Path: classifier.PathSQL, Rationale: classifier.FallbackRationale}
	}
	bundle.Classification = cls
	span.SetAttributes(attribute.String("request.path", cls.Path.String()))

	if err := machine.to(StatusClassified); err != nil {
		return o.fail(bundle, machine, err, start)
	}

	o.logger.Info("question classified",
		"request_id", bundle.ID,
		"path", cls.Path,
		"fallback", cls.IsFallback())

	switch cls.Path {
	case classifier.PathRAG:
		err = o.runRAG(ctx, bundle, machine)
	case classifier.PathHybrid:
		err = o.runHybrid(ctx, bundle, machine)
	default:
		err = o.runSQL(ctx, bundle, machine)
	}
	if err != nil {
		return o.fail(bundle, machine, err, start)
	}

	answer, err := o.composer.Compose(ctx, bundle, o.trimHistory(history))
	if err != nil {
		return o.fail(bundle, machine, err, start)
	}
	bundle.Answer = answer

	if err := machine.to(StatusComposed); err != nil {
		return o.fail(bundle, machine, err, start)
	}
	if err := machine.to(StatusDone); err != nil {
		return o.fail(bundle, machine, err, start)
	}

	bundle.Status = StatusDone
	if bundle.PathStatus == "" {
		bundle.PathStatus = PathStatusOK
	}
	bundle.Duration = time.Since(start)

	o.logger.Info("question answered",
		"request_id", bundle.ID,
		"path", bundle.Classification.Path,
		"path_status", bundle.PathStatus,
		"duration", bundle.Duration)
	return bundle, nil
}

// runSQL executes the SQL-only path and stores its evidence.
func (o *Orchestrator) runSQL(ctx context.Context, bundle *ResponseBundle, machine *stateMachine) error {
	if err := machine.to(StatusSQLRunning); err != nil {
		return err
	}

	result, err := o.runner.Run(ctx, bundle.Question.Text, false)
	o.recordSQLResult(bundle, result)
	return err
}

// runRAG executes the retrieval path. Zero hits is a valid outcome;
// composition will say so.
func (o *Orchestrator) runRAG(ctx context.Context, bundle *ResponseBundle, machine *stateMachine) error {
	if err := machine.to(StatusRAGRunning); err != nil {
		return err
	}

	docs, err := o.searcher.Search(ctx, bundle.Question.Text, o.topK)
	if err != nil {
		return err
	}
	bundle.Documents = docs

	if len(docs) == 0 {
		o.logger.Warn("no documents retrieved",
			"request_id", bundle.ID,
			"question", bundle.Question.Text)
	}
	return nil
}

// runHybrid executes the SQL stage first, then fuses. The ordering is
// mandatory: fusion candidates come from the ranking the statement
// produced. A failed SQL stage fails the request; a fusion miss only
// degrades it.
func (o *Orchestrator) runHybrid(ctx context.Context, bundle *ResponseBundle, machine *stateMachine) error {
	if err := machine.to(StatusHybridSQLRunning); err != nil {
		return err
	}

	result, err := o.runner.Run(ctx, bundle.Question.Text, true)
	o.recordSQLResult(bundle, result)
	if err != nil {
		return err
	}

	if err := machine.to(StatusHybridFusing); err != nil {
		return err
	}

	merged, err := o.fusion.Fuse(ctx, result.Execution, result.CandidateTitles)
	if err != nil {
		return err
	}

	bundle.Documents = merged.Documents
	bundle.Entity = merged.Entity
	if merged.Degraded {
		bundle.PathStatus = PathStatusDegraded
		o.logger.Warn("hybrid fusion degraded, answering on SQL evidence alone",
			"request_id", bundle.ID,
			"entity", merged.Entity)
	}
	return nil
}

func (o *Orchestrator) recordSQLResult(bundle *ResponseBundle, result *sqlpath.Result) {
	if result == nil {
		return
	}
	bundle.Statement = result.Statement
	bundle.Attempts = result.Attempts
	bundle.Execution = result.Execution

	// The zero verdict only means no statement ever reached the guard.
	if result.Statement != "" {
		verdict := result.Verdict
		bundle.Verdict = &verdict
	}
}

// fail seals the bundle as a terminal failure carrying the typed error.
func (o *Orchestrator) fail(bundle *ResponseBundle, machine *stateMachine, err error, start time.Time) (*ResponseBundle, error) {
	if terr := machine.to(StatusFailed); terr != nil {
		o.logger.Error("failed request could not reach failed state",
			"request_id", bundle.ID,
			"error", terr)
	}

	var agentErr *types.AgentError
	if !errors.As(err, &agentErr) {
		agentErr = types.WrapError(ErrCodeFailed, "request failed", err)
	}

	bundle.Status = StatusFailed
	bundle.PathStatus = PathStatusFailed
	bundle.Failure = agentErr
	bundle.Error = agentErr.Error()
	bundle.Duration = time.Since(start)

	o.logger.Error("question failed",
		"request_id", bundle.ID,
		"path", bundle.Classification.Path,
		"error", agentErr)
	return bundle, agentErr
}

// trimHistory keeps the most recent exchanges within the limit.
func (o *Orchestrator) trimHistory(history []*ResponseBundle) []*ResponseBundle {
	if o.historyLimit <= 0 || len(history) <= o.historyLimit {
		return history
	}
	return history[len(history)-o.historyLimit:]
}
