package llm

import (
	"fmt"
)

// Role represents the role of a message participant in a conversation.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// IsValid checks if the role is a recognized value.
func (r Role) IsValid() bool {
	switch r {
	case RoleSystem, RoleUser, RoleAssistant:
		return true
	default:
		return false
	}
}

// Message represents a single message in a conversation.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// NewSystemMessage creates a message with the system role.
func NewSystemMessage(content string) Message {
	return Message{Role: RoleSystem, Content: content}
}

// NewUserMessage creates a message with the user role.
func NewUserMessage(content string) Message {
	return Message{Role: RoleUser, Content: content}
}

// NewAssistantMessage creates a message with the assistant role.
func NewAssistantMessage(content string) Message {
	return Message{Role: RoleAssistant, Content: content}
}

// CompletionRequest describes a single completion call. The sampling knobs
// cover what the agent's callers actually tune: SQL generation runs cold
// (temperature 0), classification runs with a tiny token budget and narrow
// top-k/top-p, answer composition runs warm.
type CompletionRequest struct {
	Model         string    `json:"model"`
	Messages      []Message `json:"messages"`
	Temperature   float64   `json:"temperature,omitempty"`
	MaxTokens     int       `json:"max_tokens,omitempty"`
	TopP          float64   `json:"top_p,omitempty"`
	TopK          int       `json:"top_k,omitempty"`
	RepeatPenalty float64   `json:"repeat_penalty,omitempty"`
	StopSequences []string  `json:"stop_sequences,omitempty"`
}

// Validate checks the request for structural problems before it is sent.
func (r *CompletionRequest) Validate() error {
	if len(r.Messages) == 0 {
		return NewInvalidRequestError("completion request must contain at least one message")
	}
	for i, msg := range r.Messages {
		if !msg.Role.IsValid() {
			return NewInvalidRequestError(fmt.Sprintf("message %d has invalid role %q", i, msg.Role))
		}
		if msg.Content == "" {
			return NewInvalidRequestError(fmt.Sprintf("message %d has empty content", i))
		}
	}
	if r.Temperature < 0 || r.Temperature > 2 {
		return NewInvalidRequestError(fmt.Sprintf("temperature must be in [0,2], got %f", r.Temperature))
	}
	if r.MaxTokens < 0 {
		return NewInvalidRequestError(fmt.Sprintf("max_tokens must be non-negative, got %d", r.MaxTokens))
	}
	if r.TopP < 0 || r.TopP > 1 {
		return NewInvalidRequestError(fmt.Sprintf("top_p must be in [0,1], got %f", r.TopP))
	}
	if r.TopK < 0 {
		return NewInvalidRequestError(fmt.Sprintf("top_k must be non-negative, got %d", r.TopK))
	}
	return nil
}

// FinishReason indicates why a completion stopped.
type FinishReason string

const (
	FinishReasonStop          FinishReason = "stop"
	FinishReasonLength        FinishReason = "length"
	FinishReasonContentFilter FinishReason = "content_filter"
)

// CompletionResponse is the result of a completion call.
type CompletionResponse struct {
	ID           string       `json:"id"`
	Model        string       `json:"model"`
	Message      Message      `json:"message"`
	FinishReason FinishReason `json:"finish_reason"`
	Usage        TokenUsage   `json:"usage"`
}

// Text returns the assistant message content.
func (r *CompletionResponse) Text() string {
	return r.Message.Content
}

// TokenUsage reports token accounting for a completion, when the provider
// supplies it. Local providers may leave it zeroed.
type TokenUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// ModelInfo describes a model a provider can serve.
type ModelInfo struct {
	Name          string   `json:"name"`
	ContextWindow int      `json:"context_window"`
	MaxOutput     int      `json:"max_output"`
	Features      []string `json:"features,omitempty"`
}
