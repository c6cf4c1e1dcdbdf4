package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/federicoFrancesconi/UCSE-2025-AI-Engineering-TP/internal/config"
	"github.com/federicoFrancesconi/UCSE-2025-AI-Engineering-TP/internal/observability"
	"github.com/federicoFrancesconi/UCSE-2025-AI-Engineering-TP/pkg/version"
)

// Loaded once by loadConfig before any command runs.
var (
	appConfig     *config.Config
	appLogger     *slog.Logger
	appHomeDir    string
	appConfigFile string
)

var rootCmd = &cobra.Command{
	Use:   "streaming-agent",
	Short: "AI agent for a streaming platform catalog",
	Long: `streaming-agent answers natural-language questions about a streaming
platform: its users, content, ratings, and views.

Each question is classified onto one of three paths. Database questions
are translated to read-only SQL and executed against the catalog.
Content questions are answered from an embedded index of synopsis
documents. Questions that need both, such as "what is the most watched
movie about?", run the SQL ranking first and attach the winning title's
synopsis.

Run 'streaming-agent chat' for an interactive session or
'streaming-agent ask "question"' for a one-shot answer.`,
	PersistentPreRunE: loadConfig,
	SilenceUsage:      true,
	SilenceErrors:     true,
	Version:           version.Version,
}

// Execute runs the root command with signal handling
func Execute(ctx context.Context) error {
	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	return rootCmd.ExecuteContext(ctx)
}

// loadConfig runs before any command. It resolves the home directory
// and config file, loads the configuration, and installs the process
// logger. Commands that must work without a loadable config are
// skipped; they resolve paths on their own.
func loadConfig(cmd *cobra.Command, args []string) error {
	flags, err := ParseGlobalFlags(cmd)
	if err != nil {
		return err
	}

	appHomeDir = flags.HomeDir
	if appHomeDir == "" {
		appHomeDir = os.Getenv("STREAMING_AGENT_HOME")
	}
	if appHomeDir == "" {
		appHomeDir = config.DefaultHomeDir()
	}

	appConfigFile = flags.ConfigFile
	if appConfigFile == "" {
		appConfigFile = config.DefaultConfigPath(appHomeDir)
	}

	switch cmd.Name() {
	case "init", "validate", "version", "help", "completion":
		return nil
	}

	loader := config.NewLoader(config.NewValidator())
	cfg, err := loader.LoadWithDefaults(appConfigFile)
	if err != nil {
		return err
	}

	// Verbosity flags override the configured log level.
	if flags.IsVerbose() {
		cfg.Logging.Level = "debug"
	}
	if flags.IsQuiet() {
		cfg.Logging.Level = "error"
	}

	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		return err
	}
	slog.SetDefault(logger)

	appConfig = cfg
	appLogger = logger
	return nil
}

func init() {
	RegisterGlobalFlags(rootCmd)

	rootCmd.AddCommand(askCmd)
	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(ingestCmd)
	rootCmd.AddCommand(schemaCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(completionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Println(version.String())
	},
}

var completionCmd = &cobra.Command{
	Use:   "completion [bash|zsh|fish|powershell]",
	Short: "Generate shell completion scripts",
	Long: `Generate shell completion scripts for streaming-agent.

To load completions:

Bash:

  $ source <(streaming-agent completion bash)

  # To load completions for each session, execute once:
  # Linux:
  $ streaming-agent completion bash > /etc/bash_completion.d/streaming-agent
  # macOS:
  $ streaming-agent completion bash > $(brew --prefix)/etc/bash_completion.d/streaming-agent

Zsh:

  # If shell completion is not already enabled in your environment,
  # you will need to enable it. You can execute the following once:

  $ echo "autoload -U compinit; compinit" >> ~/.zshrc

  # To load completions for each session, execute once:
  $ streaming-agent completion zsh > "${fpath[1]}/_streaming-agent"

  # You will need to start a new shell for this setup to take effect.

Fish:

  $ streaming-agent completion fish | source

  # To load completions for each session, execute once:
  $ streaming-agent completion fish > ~/.config/fish/completions/streaming-agent.fish

PowerShell:

  PS> streaming-agent completion powershell | Out-String | Invoke-Expression

  # To load completions for every new session, run:
  PS> streaming-agent completion powershell > streaming-agent.ps1
  # and source this file from your PowerShell profile.
`,
	DisableFlagsInUseLine: true,
	ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
	Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	Run: func(cmd *cobra.Command, args []string) {
		switch args[0] {
		case "bash":
			_ = cmd.Root().GenBashCompletion(os.Stdout)
		case "zsh":
			_ = cmd.Root().GenZshCompletion(os.Stdout)
		case "fish":
			_ = cmd.Root().GenFishCompletion(os.Stdout, true)
		case "powershell":
			_ = cmd.Root().GenPowerShellCompletionWithDesc(os.Stdout)
		}
	},
}
