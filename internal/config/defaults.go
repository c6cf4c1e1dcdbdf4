package config

import (
	"os"
	"path/filepath"

	"github.com/federicoFrancesconi/UCSE-2025-AI-Engineering-TP/internal/catalog"
	"github.com/federicoFrancesconi/UCSE-2025-AI-Engineering-TP/internal/embedder"
	"github.com/federicoFrancesconi/UCSE-2025-AI-Engineering-TP/internal/observability"
)

// DefaultConfig returns a Config with local-development defaults: a
// local postgres catalog, a local ollama server, and the index under
// the agent home directory.
func DefaultConfig() *Config {
	homeDir := DefaultHomeDir()

	return &Config{
		Database: catalog.DefaultConfig(),
		LLM: LLMConfig{
			Provider:          "ollama",
			BaseURL:           "http://localhost:11434",
			SQLModel:          "sqlcoder:7b",
			ConversationModel: "llama3.2",
			ClassifierModel:   "",
		},
		Embedding: embedder.DefaultConfig(),
		Index: IndexConfig{
			Path:          filepath.Join(homeDir, "index.db"),
			TopK:          3,
			MinSimilarity: 0.35,
		},
		Classifier: ClassifierConfig{
			Strategy: "llm",
		},
		SQL: SQLConfig{
			MaxAttempts:  2,
			TitleColumns: []string{"titulo", "title"},
		},
		Logging: observability.LoggingConfig{
			Level:  "info",
			Format: "text",
			Output: "stderr",
		},
		Tracing: observability.TracingConfig{
			Enabled:     false,
			Provider:    "otlp",
			Endpoint:    "localhost:4317",
			ServiceName: "streaming-agent",
			SampleRate:  1.0,
			Insecure:    true,
		},
	}
}

// DefaultHomeDir returns the agent home directory, ~/.streaming-agent,
// falling back to the system temp directory if the user home cannot be
// determined.
func DefaultHomeDir() string {
	userHome, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), ".streaming-agent")
	}
	return filepath.Join(userHome, ".streaming-agent")
}

// DefaultConfigPath returns the config file path for a given home directory.
func DefaultConfigPath(homeDir string) string {
	return filepath.Join(homeDir, "config.yaml")
}
