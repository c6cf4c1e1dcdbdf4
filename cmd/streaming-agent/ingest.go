package main

import (
	"github.com/spf13/cobra"

	"github.com/federicoFrancesconi/UCSE-2025-AI-Engineering-TP/internal/embedder"
	"github.com/federicoFrancesconi/UCSE-2025-AI-Engineering-TP/internal/index"
)

var ingestDir string

var ingestCmd = &cobra.Command{
	Use:   "ingest --dir DIR",
	Short: "Index synopsis documents for retrieval",
	Long: `Ingest embeds every .txt and .md file under the given directory and
stores it in the synopsis index. Each file becomes one document: the
file stem is the document ID and, with underscores turned into spaces,
its title.

Re-running over the same directory is safe; documents with the same ID
are replaced.`,
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().StringVar(&ingestDir, "dir", "", "Directory containing synopsis files")
	_ = ingestCmd.MarkFlagRequired("dir")
}

// runIngest only needs the embedder and the index store; it never
// touches the catalog database or the LLM provider.
func runIngest(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	emb, err := embedder.New(appConfig.Embedding)
	if err != nil {
		return err
	}

	store, err := openIndexStore(appConfig)
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			appLogger.Warn("failed to close document store", "error", err)
		}
	}()

	cmd.Printf("Ingesting synopsis files from %s...\n", ingestDir)

	ingested, err := index.NewIngestor(store, emb, appLogger).IngestDir(ctx, ingestDir)
	if err != nil {
		return err
	}

	total, err := store.Count(ctx)
	if err != nil {
		return err
	}

	cmd.Printf("✓ Indexed %d document(s), %d total in %s\n", ingested, total, appConfig.Index.Path)
	return nil
}
