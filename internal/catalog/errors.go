package catalog

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/federicoFrancesconi/UCSE-2025-AI-Engineering-TP/internal/types"
)

// Postgres error codes the executor distinguishes. Anything in class 42
// points at the statement itself and is worth one regeneration; classes
// 08 and 57 point at the environment and are not.
const (
	pgCodeSyntaxError       = "42601"
	pgCodeUndefinedTable    = "42P01"
	pgCodeUndefinedColumn   = "42703"
	pgCodeUndefinedFunction = "42883"
	pgCodeQueryCanceled     = "57014"
)

// ClassifyError maps a raw execution failure onto the catalog error
// taxonomy. Statement-level failures (bad syntax, unknown relations)
// come back as recoverable codes; timeouts and connection failures are
// terminal for the request that hit them.
func ClassifyError(err error) *types.AgentError {
	if err == nil {
		return nil
	}

	// Already classified errors pass through unchanged.
	var agentErr *types.AgentError
	if errors.As(err, &agentErr) {
		return agentErr
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return &types.AgentError{
			Code:      types.SQL_TIMEOUT,
			Message:   "query exceeded execution timeout",
			Retryable: true,
			Cause:     err,
		}
	}
	if errors.Is(err, context.Canceled) {
		return types.WrapError(types.SQL_EXECUTION_FAILED, "query canceled", err)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return classifyPgError(pgErr)
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "connection refused"),
		strings.Contains(msg, "no such host"),
		strings.Contains(msg, "connection reset"),
		strings.Contains(msg, "closed pool"),
		strings.Contains(msg, "failed to connect"):
		return &types.AgentError{
			Code:      types.SQL_CONNECTION_FAILED,
			Message:   "failed to reach catalog database",
			Retryable: true,
			Cause:     err,
		}
	case strings.Contains(msg, "timeout"), strings.Contains(msg, "deadline"):
		return &types.AgentError{
			Code:      types.SQL_TIMEOUT,
			Message:   "query exceeded execution timeout",
			Retryable: true,
			Cause:     err,
		}
	}

	return types.WrapError(types.SQL_EXECUTION_FAILED, "query execution failed", err)
}

func classifyPgError(pgErr *pgconn.PgError) *types.AgentError {
	switch pgErr.Code {
	case pgCodeUndefinedTable, pgCodeUndefinedColumn, pgCodeUndefinedFunction:
		return types.WrapError(types.SQL_MISSING_RELATION, pgErr.Message, pgErr)
	case pgCodeQueryCanceled:
		return &types.AgentError{
			Code:      types.SQL_TIMEOUT,
			Message:   "query canceled by statement timeout",
			Retryable: true,
			Cause:     pgErr,
		}
	}

	switch {
	case strings.HasPrefix(pgErr.Code, "42"):
		return types.WrapError(types.SQL_SYNTAX_ERROR, pgErr.Message, pgErr)
	case strings.HasPrefix(pgErr.Code, "08"):
		return &types.AgentError{
			Code:      types.SQL_CONNECTION_FAILED,
			Message:   pgErr.Message,
			Retryable: true,
			Cause:     pgErr,
		}
	}

	return types.WrapError(types.SQL_EXECUTION_FAILED, pgErr.Message, pgErr)
}

// IsRecoverable reports whether a classified failure justifies
// regenerating the statement. Only failures that implicate the
// statement text qualify; environmental failures do not.
func IsRecoverable(err error) bool {
	switch types.CodeOf(err) {
	case types.SQL_SYNTAX_ERROR, types.SQL_MISSING_RELATION:
		return true
	default:
		return false
	}
}
