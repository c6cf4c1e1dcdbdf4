// Package config loads, validates, and defaults the agent's YAML
// configuration. Section types owned by other packages (database,
// embedding, logging, tracing) are composed here so one file drives
// the whole process.
package config

import (
	"gopkg.in/yaml.v3"

	"github.com/federicoFrancesconi/UCSE-2025-AI-Engineering-TP/internal/catalog"
	"github.com/federicoFrancesconi/UCSE-2025-AI-Engineering-TP/internal/embedder"
	"github.com/federicoFrancesconi/UCSE-2025-AI-Engineering-TP/internal/observability"
)

// Config is the root configuration for the streaming agent.
type Config struct {
	Database   catalog.Config              `mapstructure:"database" yaml:"database" validate:"required"`
	LLM        LLMConfig                   `mapstructure:"llm" yaml:"llm" validate:"required"`
	Embedding  embedder.Config             `mapstructure:"embedding" yaml:"embedding"`
	Index      IndexConfig                 `mapstructure:"index" yaml:"index"`
	Classifier ClassifierConfig            `mapstructure:"classifier" yaml:"classifier"`
	SQL        SQLConfig                   `mapstructure:"sql" yaml:"sql"`
	Logging    observability.LoggingConfig `mapstructure:"logging" yaml:"logging"`
	Tracing    observability.TracingConfig `mapstructure:"tracing" yaml:"tracing"`
}

// LLMConfig names the provider and the model for each role. The three
// roles may map to the same model; SQL generation usually gets a
// dedicated one.
type LLMConfig struct {
	Provider          string `mapstructure:"provider" yaml:"provider" validate:"required,oneof=ollama mock"`
	BaseURL           string `mapstructure:"base_url" yaml:"base_url"`
	SQLModel          string `mapstructure:"sql_model" yaml:"sql_model" validate:"required"`
	ConversationModel string `mapstructure:"conversation_model" yaml:"conversation_model" validate:"required"`
	ClassifierModel   string `mapstructure:"classifier_model" yaml:"classifier_model,omitempty"`
}

// ResolveClassifierModel returns the model used for LLM classification,
// falling back to the conversation model when none is configured.
func (c LLMConfig) ResolveClassifierModel() string {
	if c.ClassifierModel != "" {
		return c.ClassifierModel
	}
	return c.ConversationModel
}

// IndexConfig locates the synopsis index and sets retrieval behavior.
type IndexConfig struct {
	Path          string  `mapstructure:"path" yaml:"path" validate:"required"`
	TopK          int     `mapstructure:"top_k" yaml:"top_k" validate:"min=1,max=50"`
	MinSimilarity float64 `mapstructure:"min_similarity" yaml:"min_similarity" validate:"min=0,max=1"`
}

// ClassifierConfig selects the routing strategy.
type ClassifierConfig struct {
	Strategy string `mapstructure:"strategy" yaml:"strategy" validate:"required,oneof=llm embedding"`
}

// SQLConfig tunes the SQL path.
type SQLConfig struct {
	MaxAttempts  int      `mapstructure:"max_attempts" yaml:"max_attempts" validate:"min=1,max=10"`
	TitleColumns []string `mapstructure:"title_columns" yaml:"title_columns" validate:"min=1,dive,required"`
}

// YAML renders the configuration, for `config show`.
func (c *Config) YAML() ([]byte, error) {
	return yaml.Marshal(c)
}
