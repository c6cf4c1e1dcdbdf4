package catalog

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/federicoFrancesconi/UCSE-2025-AI-Engineering-TP/internal/types"
)

// ExecutionResult holds the rows a validated statement produced.
// Column order follows the statement's select list; NULL values are
// preserved as nil so the renderer and title extractor can tell them
// apart from empty strings.
type ExecutionResult struct {
	Columns  []string
	Rows     [][]any
	RowCount int
}

// Executor runs guard-approved statements against the catalog database
// under a per-query timeout.
type Executor struct {
	pool    *pgxpool.Pool
	timeout time.Duration
}

// NewExecutor creates an Executor backed by the given pool. A
// non-positive timeout disables the per-query deadline.
func NewExecutor(pool *pgxpool.Pool, timeout time.Duration) *Executor {
	return &Executor{
		pool:    pool,
		timeout: timeout,
	}
}

// Execute runs the statement and collects the full result set. The
// caller is responsible for having validated the statement first; the
// executor itself never inspects the SQL text.
func (e *Executor) Execute(ctx context.Context, statement string) (*ExecutionResult, error) {
	if statement == "" {
		return nil, types.NewError(types.SQL_EXECUTION_FAILED, "statement cannot be empty")
	}

	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	rows, err := e.pool.Query(ctx, statement)
	if err != nil {
		return nil, ClassifyError(err)
	}
	defer rows.Close()

	fields := rows.FieldDescriptions()
	columns := make([]string, len(fields))
	for i, field := range fields {
		columns[i] = string(field.Name)
	}

	result := &ExecutionResult{
		Columns: columns,
		Rows:    make([][]any, 0),
	}

	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, ClassifyError(err)
		}
		row := make([]any, len(values))
		copy(row, values)
		result.Rows = append(result.Rows, row)
	}

	if err := rows.Err(); err != nil {
		return nil, ClassifyError(err)
	}

	result.RowCount = len(result.Rows)
	return result, nil
}

// Health pings the underlying pool.
func (e *Executor) Health(ctx context.Context) types.HealthStatus {
	if e.pool == nil {
		return types.NewHealthStatus(types.HealthStateUnhealthy, "no connection pool configured")
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := e.pool.Ping(ctx); err != nil {
		return types.NewHealthStatus(types.HealthStateUnhealthy, err.Error())
	}
	return types.NewHealthStatus(types.HealthStateHealthy, "database reachable")
}
