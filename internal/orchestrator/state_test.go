package orchestrator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/federicoFrancesconi/UCSE-2025-AI-Engineering-TP/internal/types"
)

func TestRequestStatusIsTerminal(t *testing.T) {
	tests := []struct {
		status   RequestStatus
		terminal bool
	}{
		{StatusReceived, false},
		{StatusClassified, false},
		{StatusSQLRunning, false},
		{StatusRAGRunning, false},
		{StatusHybridSQLRunning, false},
		{StatusHybridFusing, false},
		{StatusComposed, false},
		{StatusDone, true},
		{StatusFailed, true},
	}

	for _, tt := range tests {
		t.Run(tt.status.String(), func(t *testing.T) {
			assert.Equal(t, tt.terminal, tt.status.IsTerminal())
		})
	}
}

func TestRequestStatusCanTransitionTo(t *testing.T) {
	tests := []struct {
		name    string
		from    RequestStatus
		to      RequestStatus
		allowed bool
	}{
		{"received to classified", StatusReceived, StatusClassified, true},
		{"received to sql_running skips classification", StatusReceived, StatusSQLRunning, false},
		{"classified to sql_running", StatusClassified, StatusSQLRunning, true},
		{"classified to rag_running", StatusClassified, StatusRAGRunning, true},
		{"classified to hybrid_sql_running", StatusClassified, StatusHybridSQLRunning, true},
		{"classified to hybrid_fusing skips sql stage", StatusClassified, StatusHybridFusing, false},
		{"sql_running to composed", StatusSQLRunning, StatusComposed, true},
		{"rag_running to composed", StatusRAGRunning, StatusComposed, true},
		{"hybrid_sql_running to hybrid_fusing", StatusHybridSQLRunning, StatusHybridFusing, true},
		{"hybrid_sql_running to composed skips fusion", StatusHybridSQLRunning, StatusComposed, false},
		{"hybrid_fusing to composed", StatusHybridFusing, StatusComposed, true},
		{"composed to done", StatusComposed, StatusDone, true},
		{"composed to classified rewinds", StatusComposed, StatusClassified, false},
		{"any active state to failed", StatusHybridFusing, StatusFailed, true},
		{"received to failed", StatusReceived, StatusFailed, true},
		{"done is terminal", StatusDone, StatusFailed, false},
		{"failed is terminal", StatusFailed, StatusClassified, false},
		{"done cannot restart", StatusDone, StatusReceived, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.allowed, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestStateMachineWalksFullSQLPath(t *testing.T) {
	m := newStateMachine("req-1", nil)
	assert.Equal(t, StatusReceived, m.status)

	for _, target := range []RequestStatus{
		StatusClassified, StatusSQLRunning, StatusComposed, StatusDone,
	} {
		require.NoError(t, m.to(target))
		assert.Equal(t, target, m.status)
	}
	assert.True(t, m.status.IsTerminal())
}

func TestStateMachineWalksHybridPath(t *testing.T) {
	m := newStateMachine("req-2", nil)

	for _, target := range []RequestStatus{
		StatusClassified, StatusHybridSQLRunning, StatusHybridFusing,
		StatusComposed, StatusDone,
	} {
		require.NoError(t, m.to(target))
	}
	assert.Equal(t, StatusDone, m.status)
}

func TestStateMachineRejectsIllegalTransition(t *testing.T) {
	m := newStateMachine("req-3", nil)

	err := m.to(StatusComposed)
	require.Error(t, err)
	assert.Equal(t, ErrCodeInvalidTransition, types.CodeOf(err))
	assert.Equal(t, StatusReceived, m.status, "status must not change on a rejected transition")
}

func TestStateMachineTerminalStatesAreSticky(t *testing.T) {
	m := newStateMachine("req-4", nil)
	require.NoError(t, m.to(StatusFailed))

	err := m.to(StatusClassified)
	require.Error(t, err)
	assert.Equal(t, StatusFailed, m.status)
}
