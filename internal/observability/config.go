package observability

import (
	"fmt"
	"strings"
)

// TracingConfig contains distributed tracing configuration. Only the
// OTLP gRPC exporter is supported; "noop" keeps span plumbing in place
// without exporting anything.
type TracingConfig struct {
	Enabled     bool    `yaml:"enabled" mapstructure:"enabled"`
	Provider    string  `yaml:"provider" mapstructure:"provider"`
	Endpoint    string  `yaml:"endpoint" mapstructure:"endpoint"`
	ServiceName string  `yaml:"service_name" mapstructure:"service_name"`
	SampleRate  float64 `yaml:"sample_rate" mapstructure:"sample_rate"`
	TLSCertFile string  `yaml:"tls_cert_file" mapstructure:"tls_cert_file"`
	TLSKeyFile  string  `yaml:"tls_key_file" mapstructure:"tls_key_file"`
	Insecure    bool    `yaml:"insecure" mapstructure:"insecure"`
}

// Validate validates the TracingConfig fields. A disabled config is
// always valid.
func (c *TracingConfig) Validate() error {
	if !c.Enabled {
		return nil
	}

	provider := strings.ToLower(c.Provider)
	switch provider {
	case "otlp", "noop":
	default:
		return fmt.Errorf("invalid tracing provider: %s (must be one of: otlp, noop)", c.Provider)
	}

	if c.SampleRate < 0.0 || c.SampleRate > 1.0 {
		return fmt.Errorf("invalid sample rate: %f (must be between 0.0 and 1.0)", c.SampleRate)
	}

	if provider != "noop" && c.Endpoint == "" {
		return fmt.Errorf("endpoint is required when tracing is enabled")
	}

	return nil
}

// LoggingConfig contains structured logging configuration.
type LoggingConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
	Output string `yaml:"output" mapstructure:"output"`
}

// Validate validates the LoggingConfig fields. Empty Output means
// stderr.
func (c *LoggingConfig) Validate() error {
	if _, err := ParseLevel(c.Level); err != nil {
		return err
	}

	switch strings.ToLower(c.Format) {
	case "json", "text":
	default:
		return fmt.Errorf("invalid log format: %s (must be one of: json, text)", c.Format)
	}

	if c.Output != "" {
		output := strings.ToLower(c.Output)
		if output != "stdout" && output != "stderr" && !strings.HasPrefix(c.Output, "/") {
			return fmt.Errorf("invalid log output: %s (must be 'stdout', 'stderr', or an absolute file path)", c.Output)
		}
	}

	return nil
}
