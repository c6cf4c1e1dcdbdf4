package orchestrator

import (
	"fmt"
	"log/slog"

	"github.com/federicoFrancesconi/UCSE-2025-AI-Engineering-TP/internal/types"
)

// RequestStatus represents the lifecycle state of one question.
type RequestStatus string

const (
	// StatusReceived indicates the question arrived and nothing has run yet.
	StatusReceived RequestStatus = "received"

	// StatusClassified indicates a path decision has been made.
	StatusClassified RequestStatus = "classified"

	// StatusSQLRunning indicates the SQL path is generating and executing.
	StatusSQLRunning RequestStatus = "sql_running"

	// StatusRAGRunning indicates the document retrieval path is searching.
	StatusRAGRunning RequestStatus = "rag_running"

	// StatusHybridSQLRunning indicates the SQL stage of a hybrid run.
	StatusHybridSQLRunning RequestStatus = "hybrid_sql_running"

	// StatusHybridFusing indicates SQL evidence is being joined with a synopsis.
	StatusHybridFusing RequestStatus = "hybrid_fusing"

	// StatusComposed indicates the answer text has been generated.
	StatusComposed RequestStatus = "composed"

	// StatusDone indicates the request finished with an answer.
	StatusDone RequestStatus = "done"

	// StatusFailed indicates the request ended with a typed failure.
	StatusFailed RequestStatus = "failed"
)

// String returns the string representation of the request status.
func (s RequestStatus) String() string {
	return string(s)
}

// IsTerminal returns true for states a request can never leave.
func (s RequestStatus) IsTerminal() bool {
	return s == StatusDone || s == StatusFailed
}

// CanTransitionTo validates whether a state change is allowed. Failed
// is reachable from every non-terminal state; everything else follows
// the single forward path per route.
func (s RequestStatus) CanTransitionTo(target RequestStatus) bool {
	if s.IsTerminal() {
		return false
	}
	if target == StatusFailed {
		return true
	}

	switch s {
	case StatusReceived:
		return target == StatusClassified
	case StatusClassified:
		return target == StatusSQLRunning ||
			target == StatusRAGRunning ||
			target == StatusHybridSQLRunning
	case StatusSQLRunning, StatusRAGRunning:
		return target == StatusComposed
	case StatusHybridSQLRunning:
		return target == StatusHybridFusing
	case StatusHybridFusing:
		return target == StatusComposed
	case StatusComposed:
		return target == StatusDone
	default:
		return false
	}
}

// ErrCodeInvalidTransition flags a request driven into an illegal
// state change.
const ErrCodeInvalidTransition types.ErrorCode = "ORCHESTRATOR_INVALID_TRANSITION"

// stateMachine tracks one request through its lifecycle. Each request
// gets its own instance; nothing is shared between questions.
type stateMachine struct {
	requestID string
	status    RequestStatus
	logger    *slog.Logger
}

func newStateMachine(requestID string, logger *slog.Logger) *stateMachine {
	if logger == nil {
		logger = slog.Default()
	}
	return &stateMachine{
		requestID: requestID,
		status:    StatusReceived,
		logger:    logger,
	}
}

// to advances the request to the target state, enforcing transition
// legality.
func (m *stateMachine) to(target RequestStatus) error {
	if !m.status.CanTransitionTo(target) {
		return types.NewError(ErrCodeInvalidTransition,
			fmt.Sprintf("cannot transition from %q to %q", m.status, target))
	}

	m.logger.Debug("request state changed",
		"request_id", m.requestID,
		"from", m.status,
		"to", target)
	m.status = target
	return nil
}
