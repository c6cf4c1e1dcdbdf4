package types

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestErrorCode_Constants(t *testing.T) {
	tests := []struct {
		name     string
		code     ErrorCode
		expected string
	}{
		// Configuration errors
		{"CONFIG_LOAD_FAILED", CONFIG_LOAD_FAILED, "CONFIG_LOAD_FAILED"},
		{"CONFIG_PARSE_FAILED", CONFIG_PARSE_FAILED, "CONFIG_PARSE_FAILED"},
		{"CONFIG_VALIDATION_FAILED", CONFIG_VALIDATION_FAILED, "CONFIG_VALIDATION_FAILED"},
		{"CONFIG_NOT_FOUND", CONFIG_NOT_FOUND, "CONFIG_NOT_FOUND"},

		// Catalog database errors
		{"SQL_SYNTAX_ERROR", SQL_SYNTAX_ERROR, "SQL_SYNTAX_ERROR"},
		{"SQL_MISSING_RELATION", SQL_MISSING_RELATION, "SQL_MISSING_RELATION"},
		{"SQL_TIMEOUT", SQL_TIMEOUT, "SQL_TIMEOUT"},
		{"SQL_CONNECTION_FAILED", SQL_CONNECTION_FAILED, "SQL_CONNECTION_FAILED"},
		{"SQL_EXECUTION_FAILED", SQL_EXECUTION_FAILED, "SQL_EXECUTION_FAILED"},

		// Guard errors
		{"SECURITY_REJECTED", SECURITY_REJECTED, "SECURITY_REJECTED"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if string(tt.code) != tt.expected {
				t.Errorf("ErrorCode = %v, want %v", tt.code, tt.expected)
			}
		})
	}
}

func TestAgentError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *AgentError
		contains []string
	}{
		{
			name: "simple error without cause",
			err:  NewError(CONFIG_LOAD_FAILED, "failed to load configuration"),
			contains: []string{
				"[CONFIG_LOAD_FAILED]",
				"failed to load configuration",
			},
		},
		{
			name: "error with cause",
			err:  WrapError(SQL_EXECUTION_FAILED, "query execution failed", errors.New("division by zero")),
			contains: []string{
				"[SQL_EXECUTION_FAILED]",
				"query execution failed",
				"division by zero",
			},
		},
		{
			name: "retryable error",
			err:  NewRetryableError(SQL_CONNECTION_FAILED, "connection refused"),
			contains: []string{
				"[SQL_CONNECTION_FAILED]",
				"connection refused",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errMsg := tt.err.Error()
			for _, substring := range tt.contains {
				if !strings.Contains(errMsg, substring) {
					t.Errorf("Error() = %v, want to contain %v", errMsg, substring)
				}
			}
		})
	}
}

func TestAgentError_Unwrap(t *testing.T) {
	cause := errors.New("underlying failure")

	withCause := WrapError(SQL_SYNTAX_ERROR, "bad statement", cause)
	if withCause.Unwrap() != cause {
		t.Errorf("Unwrap() = %v, want %v", withCause.Unwrap(), cause)
	}
	if !errors.Is(withCause, cause) {
		t.Error("errors.Is should find the wrapped cause")
	}

	withoutCause := NewError(SQL_TIMEOUT, "deadline exceeded")
	if withoutCause.Unwrap() != nil {
		t.Errorf("Unwrap() = %v, want nil", withoutCause.Unwrap())
	}
}

func TestAgentError_Is(t *testing.T) {
	tests := []struct {
		name   string
		err    *AgentError
		target error
		want   bool
	}{
		{
			name:   "same code matches",
			err:    NewError(SQL_TIMEOUT, "query timed out"),
			target: NewError(SQL_TIMEOUT, "different message"),
			want:   true,
		},
		{
			name:   "different code does not match",
			err:    NewError(SQL_TIMEOUT, "query timed out"),
			target: NewError(SQL_SYNTAX_ERROR, "bad syntax"),
			want:   false,
		},
		{
			name:   "wrapped target with same code matches",
			err:    NewError(SECURITY_REJECTED, "statement blocked"),
			target: fmt.Errorf("outer: %w", NewError(SECURITY_REJECTED, "inner")),
			want:   true,
		},
		{
			name:   "non-agent error does not match",
			err:    NewError(SQL_CONNECTION_FAILED, "no connection"),
			target: errors.New("plain error"),
			want:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Is(tt.target); got != tt.want {
				t.Errorf("Is() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCodeOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorCode
	}{
		{
			name: "direct agent error",
			err:  NewError(SQL_MISSING_RELATION, "relation does not exist"),
			want: SQL_MISSING_RELATION,
		},
		{
			name: "wrapped agent error",
			err:  fmt.Errorf("running path: %w", NewError(SECURITY_REJECTED, "blocked")),
			want: SECURITY_REJECTED,
		},
		{
			name: "plain error has no code",
			err:  errors.New("plain"),
			want: "",
		},
		{
			name: "nil error has no code",
			err:  nil,
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CodeOf(tt.err); got != tt.want {
				t.Errorf("CodeOf() = %v, want %v", got, tt.want)
			}
		})
	}
}
