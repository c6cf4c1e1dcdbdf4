package config

import (
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/spf13/viper"

	"github.com/federicoFrancesconi/UCSE-2025-AI-Engineering-TP/internal/types"
)

// Loader handles loading configuration from files.
type Loader interface {
	Load(path string) (*Config, error)
	LoadWithDefaults(path string) (*Config, error)
}

// viperLoader implements Loader using Viper.
type viperLoader struct {
	validator Validator
}

// NewLoader creates a Loader that validates with the given validator.
func NewLoader(validator Validator) Loader {
	return &viperLoader{
		validator: validator,
	}
}

// Load loads configuration from the specified file path. Keys missing
// from the file fall back to DefaultConfig values; `${VAR}` references
// in string values are resolved from the environment after parsing.
func (l *viperLoader) Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var parseErr viper.ConfigParseError
		if errors.As(err, &parseErr) {
			return nil, types.WrapError(types.CONFIG_PARSE_FAILED, "failed to parse config file", err)
		}
		return nil, types.WrapError(types.CONFIG_LOAD_FAILED, "failed to read config file", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, types.WrapError(types.CONFIG_PARSE_FAILED, "failed to unmarshal config", err)
	}

	interpolate(&cfg)

	if err := l.validator.Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// LoadWithDefaults loads configuration from the specified file path.
// If the file doesn't exist, returns the default configuration.
func (l *viperLoader) LoadWithDefaults(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		cfg := DefaultConfig()
		if err := l.validator.Validate(cfg); err != nil {
			return nil, err
		}
		return cfg, nil
	}

	return l.Load(path)
}

// setDefaults registers every DefaultConfig value with viper so partial
// files load complete configurations.
func setDefaults(v *viper.Viper) {
	def := DefaultConfig()

	v.SetDefault("database.host", def.Database.Host)
	v.SetDefault("database.port", def.Database.Port)
	v.SetDefault("database.user", def.Database.User)
	v.SetDefault("database.password", def.Database.Password)
	v.SetDefault("database.database", def.Database.Database)
	v.SetDefault("database.ssl_mode", def.Database.SSLMode)
	v.SetDefault("database.max_conns", def.Database.MaxConns)
	v.SetDefault("database.query_timeout", def.Database.QueryTimeout)

	v.SetDefault("llm.provider", def.LLM.Provider)
	v.SetDefault("llm.base_url", def.LLM.BaseURL)
	v.SetDefault("llm.sql_model", def.LLM.SQLModel)
	v.SetDefault("llm.conversation_model", def.LLM.ConversationModel)
	v.SetDefault("llm.classifier_model", def.LLM.ClassifierModel)

	v.SetDefault("embedding.provider", def.Embedding.Provider)
	v.SetDefault("embedding.model", def.Embedding.Model)
	v.SetDefault("embedding.base_url", def.Embedding.BaseURL)
	v.SetDefault("embedding.dimensions", def.Embedding.Dimensions)

	v.SetDefault("index.path", def.Index.Path)
	v.SetDefault("index.top_k", def.Index.TopK)
	v.SetDefault("index.min_similarity", def.Index.MinSimilarity)

	v.SetDefault("classifier.strategy", def.Classifier.Strategy)

	v.SetDefault("sql.max_attempts", def.SQL.MaxAttempts)
	v.SetDefault("sql.title_columns", def.SQL.TitleColumns)

	v.SetDefault("logging.level", def.Logging.Level)
	v.SetDefault("logging.format", def.Logging.Format)
	v.SetDefault("logging.output", def.Logging.Output)

	v.SetDefault("tracing.enabled", def.Tracing.Enabled)
	v.SetDefault("tracing.provider", def.Tracing.Provider)
	v.SetDefault("tracing.endpoint", def.Tracing.Endpoint)
	v.SetDefault("tracing.service_name", def.Tracing.ServiceName)
	v.SetDefault("tracing.sample_rate", def.Tracing.SampleRate)
	v.SetDefault("tracing.insecure", def.Tracing.Insecure)
}

// interpolate resolves ${VAR} references in the string fields that
// commonly carry secrets or environment-specific values.
func interpolate(cfg *Config) {
	cfg.Database.Host = interpolateString(cfg.Database.Host)
	cfg.Database.User = interpolateString(cfg.Database.User)
	cfg.Database.Password = interpolateString(cfg.Database.Password)
	cfg.Database.Database = interpolateString(cfg.Database.Database)
	cfg.LLM.BaseURL = interpolateString(cfg.LLM.BaseURL)
	cfg.Embedding.BaseURL = interpolateString(cfg.Embedding.BaseURL)
	cfg.Index.Path = expandPath(interpolateString(cfg.Index.Path))
	cfg.Logging.Output = interpolateString(cfg.Logging.Output)
	cfg.Tracing.Endpoint = interpolateString(cfg.Tracing.Endpoint)
}

var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// interpolateString replaces ${VAR_NAME} with environment variable
// values. Unset variables leave the reference untouched so the
// validation error names it.
func interpolateString(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		varName := strings.TrimSuffix(strings.TrimPrefix(match, "${"), "}")
		if envValue := os.Getenv(varName); envValue != "" {
			return envValue
		}
		return match
	})
}

// expandPath resolves a leading ~ to the user home directory.
func expandPath(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		userHome, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(userHome, strings.TrimPrefix(path[1:], "/"))
	}
	return path
}
