package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/federicoFrancesconi/UCSE-2025-AI-Engineering-TP/internal/types"
)

// LLM error codes follow the agent error pattern
const (
	// Provider errors
	ErrProviderNotFound     types.ErrorCode = "LLM_PROVIDER_NOT_FOUND"
	ErrProviderInitFailed   types.ErrorCode = "LLM_PROVIDER_INIT_FAILED"
	ErrProviderUnavailable  types.ErrorCode = "LLM_PROVIDER_UNAVAILABLE"
	ErrProviderUnauthorized types.ErrorCode = "LLM_PROVIDER_UNAUTHORIZED"
	ErrProviderRateLimited  types.ErrorCode = "LLM_PROVIDER_RATE_LIMITED"

	// Model errors
	ErrModelNotFound types.ErrorCode = "LLM_MODEL_NOT_FOUND"

	// Request errors
	ErrInvalidRequest types.ErrorCode = "LLM_INVALID_REQUEST"

	// Completion errors
	ErrCompletionFailed types.ErrorCode = "LLM_COMPLETION_FAILED"
	ErrEmptyResponse    types.ErrorCode = "LLM_EMPTY_RESPONSE"
	ErrTimeoutExceeded  types.ErrorCode = "LLM_TIMEOUT_EXCEEDED"
	ErrContextCanceled  types.ErrorCode = "LLM_CONTEXT_CANCELED"

	// Network errors
	ErrNetworkFailed types.ErrorCode = "LLM_NETWORK_FAILED"
)

// IsRetryable determines if an error is transient and may succeed on retry.
// This helps implement intelligent retry logic for LLM operations.
func IsRetryable(err error) bool {
	var agentErr *types.AgentError
	if !errors.As(err, &agentErr) {
		return false
	}

	// Check if error is already marked as retryable
	if agentErr.Retryable {
		return true
	}

	// Determine retryability based on error code
	switch agentErr.Code {
	// Network errors are typically retryable
	case ErrNetworkFailed:
		return true

	// Rate limiting may succeed after waiting
	case ErrProviderRateLimited:
		return true

	// Provider unavailable may be temporary
	case ErrProviderUnavailable:
		return true

	// Timeout errors may succeed with more time
	case ErrTimeoutExceeded:
		return true

	// Context cancellation is not retryable (user-initiated)
	case ErrContextCanceled:
		return false

	// Auth errors are not retryable
	case ErrProviderUnauthorized:
		return false

	// Invalid requests won't succeed on retry
	case ErrInvalidRequest:
		return false

	// Model not found won't change
	case ErrModelNotFound:
		return false

	// Default to not retryable for safety
	default:
		return false
	}
}

// Helper functions for creating common LLM errors

// NewProviderNotFoundError creates an error for when a provider is not found
func NewProviderNotFoundError(providerName string) *types.AgentError {
	return types.NewError(ErrProviderNotFound, "provider not found: "+providerName)
}

// NewProviderUnavailableError creates a retryable error for when a provider is temporarily unavailable
func NewProviderUnavailableError(providerName string, cause error) *types.AgentError {
	return &types.AgentError{
		Code:      ErrProviderUnavailable,
		Message:   "provider temporarily unavailable: " + providerName,
		Retryable: true,
		Cause:     cause,
	}
}

// NewProviderUnauthorizedError creates an unauthorized provider error
func NewProviderUnauthorizedError(providerName string, cause error) *types.AgentError {
	return &types.AgentError{
		Code:    ErrProviderUnauthorized,
		Message: fmt.Sprintf("provider '%s' authentication failed", providerName),
		Cause:   cause,
	}
}

// NewRateLimitError creates a retryable error for rate limiting
func NewRateLimitError(providerName string) *types.AgentError {
	return &types.AgentError{
		Code:      ErrProviderRateLimited,
		Message:   "rate limit exceeded for provider: " + providerName,
		Retryable: true,
		Cause:     nil,
	}
}

// NewModelNotFoundError creates an error for when a model is not found
func NewModelNotFoundError(modelName string) *types.AgentError {
	return types.NewError(ErrModelNotFound, "model not found: "+modelName)
}

// NewInvalidRequestError creates an error for invalid requests
func NewInvalidRequestError(message string) *types.AgentError {
	return types.NewError(ErrInvalidRequest, message)
}

// NewCompletionError creates an error for completion failures
func NewCompletionError(message string, cause error) *types.AgentError {
	return types.WrapError(ErrCompletionFailed, message, cause)
}

// NewEmptyResponseError creates a retryable error for blank completions
func NewEmptyResponseError(providerName string) *types.AgentError {
	return &types.AgentError{
		Code:      ErrEmptyResponse,
		Message:   "provider returned an empty response: " + providerName,
		Retryable: true,
		Cause:     nil,
	}
}

// NewNetworkError creates a retryable error for network failures
func NewNetworkError(message string, cause error) *types.AgentError {
	return &types.AgentError{
		Code:      ErrNetworkFailed,
		Message:   message,
		Retryable: true,
		Cause:     cause,
	}
}

// NewTimeoutError creates a retryable error for timeout failures
func NewTimeoutError(message string) *types.AgentError {
	return &types.AgentError{
		Code:      ErrTimeoutExceeded,
		Message:   message,
		Retryable: true,
		Cause:     nil,
	}
}

// TranslateError translates generic client errors into agent errors based on
// error message content. The langchaingo ollama client surfaces most failures
// as plain errors, so classification falls back to message sniffing.
func TranslateError(provider string, err error) error {
	if err == nil {
		return nil
	}

	// Check if it's already a typed agent error
	var agentErr *types.AgentError
	if errors.As(err, &agentErr) {
		return err
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return NewTimeoutError(err.Error())
	}
	if errors.Is(err, context.Canceled) {
		return types.WrapError(ErrContextCanceled, "request canceled", err)
	}

	errMsg := err.Error()
	lowerMsg := strings.ToLower(errMsg)

	// Detect error type from message
	switch {
	case strings.Contains(lowerMsg, "unauthorized") || strings.Contains(lowerMsg, "authentication") || strings.Contains(lowerMsg, "api key"):
		return NewProviderUnauthorizedError(provider, err)
	case strings.Contains(lowerMsg, "rate limit") || strings.Contains(lowerMsg, "too many requests"):
		return NewRateLimitError(provider)
	case strings.Contains(lowerMsg, "timeout") || strings.Contains(lowerMsg, "deadline"):
		return NewTimeoutError(errMsg)
	case strings.Contains(lowerMsg, "model") && strings.Contains(lowerMsg, "not found"):
		return types.WrapError(ErrModelNotFound, "model not served by "+provider, err)
	case strings.Contains(lowerMsg, "connection refused") || strings.Contains(lowerMsg, "no such host"):
		return NewProviderUnavailableError(provider, err)
	case strings.Contains(lowerMsg, "network") || strings.Contains(lowerMsg, "connection"):
		return NewNetworkError(errMsg, err)
	default:
		return NewCompletionError("completion failed on "+provider, err)
	}
}
