package main

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/federicoFrancesconi/UCSE-2025-AI-Engineering-TP/internal/catalog"
	"github.com/federicoFrancesconi/UCSE-2025-AI-Engineering-TP/internal/orchestrator"
)

var divider = strings.Repeat("=", 70)

// printBundle renders one answered (or failed) question for the
// terminal: the routing decision, whatever evidence the path produced,
// and the composed answer.
func printBundle(cmd *cobra.Command, bundle *orchestrator.ResponseBundle) {
	cmd.Println("\n" + divider)

	if bundle.Classification.Rationale != "" {
		cmd.Printf("🧭 Path: %s (%s)\n", bundle.Classification.Path, bundle.Classification.Rationale)
	} else {
		cmd.Printf("🧭 Path: %s\n", bundle.Classification.Path)
	}

	if bundle.Statement != "" {
		cmd.Printf("\n📝 Generated SQL:\n\n   %s\n", bundle.Statement)
	}

	if bundle.Verdict != nil && !bundle.Verdict.Allowed {
		cmd.Printf("\n🛡️  Statement rejected: %s\n", bundle.Verdict.Reason)
	}

	if bundle.Execution != nil {
		cmd.Printf("\n📊 Query Results:\n\n%s\n", catalog.FormatResult(bundle.Execution))
	}

	if len(bundle.Documents) > 0 {
		cmd.Println("\n📚 Retrieved synopses:")
		for i, doc := range bundle.Documents {
			cmd.Printf("  [%d] %s (relevance: %.2f)\n", i+1, doc.Title, doc.Score)
		}
	}

	if bundle.PathStatus == orchestrator.PathStatusDegraded && bundle.Entity != "" {
		cmd.Printf("\n⚠️  No synopsis found for %q, answering from database results alone.\n", bundle.Entity)
	}

	if bundle.Answer != "" {
		cmd.Printf("\n🤖 Response:\n\n%s\n", bundle.Answer)
	}

	if bundle.Error != "" {
		cmd.Printf("\n❌ Error: %s\n", bundle.Error)
	}

	cmd.Println(divider)
}
