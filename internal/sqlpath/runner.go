package sqlpath

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/federicoFrancesconi/UCSE-2025-AI-Engineering-TP/internal/catalog"
	"github.com/federicoFrancesconi/UCSE-2025-AI-Engineering-TP/internal/sqlguard"
	"github.com/federicoFrancesconi/UCSE-2025-AI-Engineering-TP/internal/types"
)

// StatementExecutor runs a guard-approved statement.
type StatementExecutor interface {
	Execute(ctx context.Context, statement string) (*catalog.ExecutionResult, error)
}

// SchemaDescriber supplies the schema text embedded in generation
// prompts.
type SchemaDescriber interface {
	Describe(ctx context.Context) (string, error)
}

// DefaultMaxAttempts bounds statement generation per question. Two
// attempts means one regeneration, whether the first attempt fell to
// the guard or to a recoverable database error.
const DefaultMaxAttempts = 2

// DefaultTitleColumns are the projected column names treated as
// content titles when extracting fusion candidates.
var DefaultTitleColumns = []string{"titulo", "title"}

// Config tunes the runner's retry and extraction behavior.
type Config struct {
	MaxAttempts  int      `mapstructure:"max_attempts" yaml:"max_attempts"`
	TitleColumns []string `mapstructure:"title_columns" yaml:"title_columns"`
}

// Result captures everything one SQL path run produced, successful or
// not. Statement and Attempts are filled even when the run failed so
// callers can report what was tried.
type Result struct {
	Statement       string
	Verdict         sqlguard.Verdict
	Attempts        int
	Execution       *catalog.ExecutionResult
	CandidateTitles []string
}

// Runner drives the generate, validate, execute loop for one question.
type Runner struct {
	generator    *Generator
	guard        *sqlguard.Guard
	executor     StatementExecutor
	schema       SchemaDescriber
	maxAttempts  int
	titleColumns []string
	logger       *slog.Logger
}

// NewRunner wires the SQL path collaborators together. Zero-value
// config fields fall back to the package defaults; a nil logger falls
// back to slog.Default().
func NewRunner(
	generator *Generator,
	guard *sqlguard.Guard,
	executor StatementExecutor,
	schema SchemaDescriber,
	cfg Config,
	logger *slog.Logger,
) *Runner {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = DefaultMaxAttempts
	}
	if len(cfg.TitleColumns) == 0 {
		cfg.TitleColumns = DefaultTitleColumns
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{
		generator:    generator,
		guard:        guard,
		executor:     executor,
		schema:       schema,
		maxAttempts:  cfg.MaxAttempts,
		titleColumns: cfg.TitleColumns,
		logger:       logger,
	}
}

// Run answers a question through the SQL path. Each attempt generates
// a statement, validates it, and executes it. A guard rejection or a
// recoverable database error buys one regeneration with the failure as
// feedback, until the attempt cap is reached. A rejected statement is
// never executed. Timeouts and connection failures end the run at
// once.
func (r *Runner) Run(ctx context.Context, question string, hybrid bool) (*Result, error) {
	schemaText, err := r.schema.Describe(ctx)
	if err != nil {
		return nil, err
	}

	result := &Result{}
	feedback := ""

	for result.Attempts < r.maxAttempts {
		result.Attempts++

		statement, err := r.generator.Generate(ctx, question, schemaText, hybrid, feedback)
		if err != nil {
			return result, err
		}
		result.Statement = statement

		verdict := r.guard.Validate(statement)
		result.Verdict = verdict
		if !verdict.Allowed {
			r.logger.Warn("statement rejected",
				"attempt", result.Attempts,
				"reason", verdict.Reason,
				"statement", statement)

			if result.Attempts >= r.maxAttempts {
				return result, types.NewError(types.SECURITY_REJECTED,
					fmt.Sprintf("statement rejected after %d attempts: %s", result.Attempts, verdict.Reason))
			}
			feedback = verdict.Reason
			continue
		}

		execution, err := r.executor.Execute(ctx, statement)
		if err != nil {
			if catalog.IsRecoverable(err) && result.Attempts < r.maxAttempts {
				r.logger.Warn("execution failed, regenerating statement",
					"attempt", result.Attempts,
					"error", err)
				feedback = err.Error()
				continue
			}
			return result, err
		}

		result.Execution = execution
		result.CandidateTitles = r.extractTitles(execution)

		r.logger.Info("statement executed",
			"attempts", result.Attempts,
			"rows", execution.RowCount,
			"candidate_titles", len(result.CandidateTitles))
		return result, nil
	}

	// The loop always returns from inside; attempts exhausted without a
	// decision would be a bug.
	return result, types.NewError(types.SQL_EXECUTION_FAILED, "attempt budget exhausted")
}

// extractTitles reads fusion candidates from the first projected
// column whose name matches the configured title columns. Row order is
// preserved; NULL cells are skipped.
func (r *Runner) extractTitles(execution *catalog.ExecutionResult) []string {
	if execution == nil || len(execution.Rows) == 0 {
		return nil
	}

	column := -1
	for i, name := range execution.Columns {
		if r.isTitleColumn(name) {
			column = i
			break
		}
	}
	if column == -1 {
		return nil
	}

	titles := make([]string, 0, len(execution.Rows))
	for _, row := range execution.Rows {
		if column >= len(row) || row[column] == nil {
			continue
		}

		var title string
		switch v := row[column].(type) {
		case string:
			title = v
		case []byte:
			title = string(v)
		default:
			title = fmt.Sprintf("%v", v)
		}

		if strings.TrimSpace(title) != "" {
			titles = append(titles, title)
		}
	}
	return titles
}

func (r *Runner) isTitleColumn(name string) bool {
	for _, candidate := range r.titleColumns {
		if strings.EqualFold(name, candidate) {
			return true
		}
	}
	return false
}
