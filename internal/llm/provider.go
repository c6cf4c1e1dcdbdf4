package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/federicoFrancesconi/UCSE-2025-AI-Engineering-TP/internal/types"
)

// Provider is the text-in/text-out contract the agent depends on for
// classification, SQL generation, and answer composition. Implementations
// must be swappable without any caller change; callers never branch on
// provider identity, only on configuration.
type Provider interface {
	// Name returns the provider's identifier (e.g. "ollama", "mock").
	Name() string

	// Models returns information about the models this provider can serve.
	Models(ctx context.Context) ([]ModelInfo, error)

	// Complete sends a completion request and blocks until the full
	// response is available or ctx is done.
	Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error)

	// Health checks whether the provider can serve requests.
	Health(ctx context.Context) types.HealthStatus
}

// ProviderType identifies a provider implementation.
type ProviderType string

const (
	ProviderOllama ProviderType = "ollama"
	ProviderMock   ProviderType = "mock"
)

// ProviderConfig carries what is needed to construct a provider.
type ProviderConfig struct {
	Type         ProviderType `mapstructure:"type" yaml:"type"`
	BaseURL      string       `mapstructure:"base_url" yaml:"base_url"`
	DefaultModel string       `mapstructure:"default_model" yaml:"default_model"`
}

// Validate checks the provider configuration.
func (c *ProviderConfig) Validate() error {
	switch c.Type {
	case ProviderOllama, ProviderMock:
	case "":
		return types.NewError(types.CONFIG_VALIDATION_FAILED, "provider type cannot be empty")
	default:
		return types.NewError(types.CONFIG_VALIDATION_FAILED,
			fmt.Sprintf("unknown provider type %q, must be one of: ollama, mock", c.Type))
	}
	if c.Type == ProviderOllama && c.DefaultModel == "" {
		return types.NewError(types.CONFIG_VALIDATION_FAILED, "ollama provider requires a default model")
	}
	return nil
}

// NormalizeProviderType lowercases and trims a provider type for lookup.
func NormalizeProviderType(name string) ProviderType {
	return ProviderType(strings.ToLower(strings.TrimSpace(name)))
}
