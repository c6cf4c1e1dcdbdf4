package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/federicoFrancesconi/UCSE-2025-AI-Engineering-TP/internal/config"
	"github.com/federicoFrancesconi/UCSE-2025-AI-Engineering-TP/internal/types"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage agent configuration",
	Long: `The config command writes, displays, and validates the agent
configuration.

Configuration is stored in YAML format at ~/.streaming-agent/config.yaml
by default. Values of the form ${VAR} are replaced from the environment
when the file is loaded.`,
}

var configInitForce bool

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a starter configuration file",
	Long: `Init creates the agent home directory and writes a commented
configuration file with the default settings. Existing files are left
alone unless --force is given.`,
	RunE: runConfigInit,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Display the effective configuration",
	Long: `Show prints the configuration the agent actually runs with: file
values merged over defaults, with environment references resolved.`,
	RunE: runConfigShow,
}

var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the configuration file",
	Long: `Validate checks the configuration file for YAML syntax errors,
missing required fields, and out-of-range values.`,
	RunE: runConfigValidate,
}

func init() {
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configValidateCmd)

	configInitCmd.Flags().BoolVar(&configInitForce, "force", false, "Overwrite an existing configuration file")
	configShowCmd.Flags().String("output-format", "yaml", "Output format (yaml or json)")
}

// configTemplate is the starter file written by config init. It mirrors
// the defaults; every key is present so users see what can be tuned.
const configTemplate = `# streaming-agent configuration.
# Values of the form ${VAR} are replaced from the environment at load time.

# Catalog database (read-only access is enforced at the statement level).
database:
  host: localhost
  port: 5432
  user: postgres
  password: ${DB_PASSWORD}
  database: streaming
  ssl_mode: disable
  max_conns: 4
  query_timeout: 15s

llm:
  provider: ollama
  base_url: http://localhost:11434
  sql_model: sqlcoder:7b
  conversation_model: llama3.2
  # classifier_model falls back to conversation_model when empty.
  classifier_model: ""

embedding:
  provider: ollama
  model: nomic-embed-text
  base_url: http://localhost:11434
  dimensions: 768

# Synopsis document index.
index:
  path: ~/.streaming-agent/index.db
  top_k: 3
  min_similarity: 0.35

classifier:
  # Routing strategy: llm or embedding.
  strategy: llm

sql:
  max_attempts: 2
  title_columns:
    - titulo
    - title

logging:
  level: info
  format: text
  output: stderr

tracing:
  enabled: false
  provider: otlp
  endpoint: localhost:4317
  service_name: streaming-agent
  sample_rate: 1.0
  insecure: true
`

func runConfigInit(cmd *cobra.Command, args []string) error {
	if err := os.MkdirAll(appHomeDir, 0o755); err != nil {
		return types.WrapError(types.CONFIG_LOAD_FAILED,
			fmt.Sprintf("failed to create home directory %s", appHomeDir), err)
	}

	if _, err := os.Stat(appConfigFile); err == nil && !configInitForce {
		return types.NewError(types.CONFIG_LOAD_FAILED,
			fmt.Sprintf("config file already exists at %s (use --force to overwrite)", appConfigFile))
	}

	if err := os.WriteFile(appConfigFile, []byte(configTemplate), 0o644); err != nil {
		return types.WrapError(types.CONFIG_LOAD_FAILED,
			fmt.Sprintf("failed to write config file %s", appConfigFile), err)
	}

	cmd.Printf("✓ Configuration written to %s\n", appConfigFile)
	cmd.Println("\nNext steps:")
	cmd.Println("  1. Set DB_PASSWORD or edit the database section")
	cmd.Println("  2. Run 'streaming-agent status' to check connectivity")
	cmd.Println("  3. Run 'streaming-agent ingest --dir DIR' to index synopses")
	return nil
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("output-format")

	switch format {
	case "json":
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(appConfig)
	case "yaml", "":
		out, err := appConfig.YAML()
		if err != nil {
			return err
		}
		cmd.Println(string(out))
		return nil
	default:
		return types.NewError(types.CONFIG_VALIDATION_FAILED,
			fmt.Sprintf("unsupported output format %q (use 'yaml' or 'json')", format))
	}
}

// runConfigValidate loads the file itself rather than relying on the
// pre-run hook, so a broken file reports its specific problem here.
func runConfigValidate(cmd *cobra.Command, args []string) error {
	if _, err := os.Stat(appConfigFile); os.IsNotExist(err) {
		return types.NewError(types.CONFIG_NOT_FOUND,
			fmt.Sprintf("config file does not exist: %s (run 'streaming-agent config init' to create it)", appConfigFile))
	}

	loader := config.NewLoader(config.NewValidator())
	if _, err := loader.Load(appConfigFile); err != nil {
		return err
	}

	cmd.Printf("✓ Configuration at %s is valid\n", appConfigFile)
	return nil
}
