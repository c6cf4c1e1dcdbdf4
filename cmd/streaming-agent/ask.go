package main

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/federicoFrancesconi/UCSE-2025-AI-Engineering-TP/internal/orchestrator"
)

var askJSON bool

var askCmd = &cobra.Command{
	Use:   "ask \"question\"",
	Short: "Ask a single question about the catalog",
	Long: `Ask answers one natural-language question and exits.

The question is classified onto the SQL, retrieval, or hybrid path and
the full outcome is printed: the routing decision, any generated SQL
with its result table, retrieved synopsis documents with relevance
scores, and the composed answer.

Examples:
  streaming-agent ask "¿Cuántos usuarios tenemos registrados?"
  streaming-agent ask "¿De qué trata Aventuras Galácticas?"
  streaming-agent ask "¿De qué trata la película más vista?" --json`,
	Args: cobra.ExactArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().BoolVar(&askJSON, "json", false, "Print the full response bundle as JSON")
}

func runAsk(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	st, err := newStack(ctx, appConfig, appLogger)
	if err != nil {
		return err
	}
	defer st.Close(ctx)

	bundle, err := st.orch.Ask(ctx, orchestrator.NewQuestion(args[0]), nil)

	// The bundle is always non-nil and carries whatever was produced
	// before any failure, so it is printed in both outcomes. The error
	// still decides the exit code.
	if askJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		if encErr := enc.Encode(bundle); encErr != nil {
			return encErr
		}
		return err
	}

	printBundle(cmd, bundle)
	return err
}
