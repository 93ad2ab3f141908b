package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var reindexCmd = &cobra.Command{
	Use:   "reindex",
	Short: "Rebuild the vector index from stored embeddings",
	Long: `Rebuild the vector index from the chunk embeddings already stored in
the metadata database. Use this after a corrupt index snapshot or a
data directory move. No provider calls are made.`,
	RunE: runReindex,
}

func init() {
	rootCmd.AddCommand(reindexCmd)
}

func runReindex(cmd *cobra.Command, _ []string) error {
	if ingestService == nil {
		return fmt.Errorf("ingest service not configured")
	}

	cmd.Println("Rebuilding vector index...")
	if err := ingestService.Reindex(context.Background()); err != nil {
		return fmt.Errorf("failed to reindex: %w", err)
	}
	cmd.Println("Vector index rebuilt.")
	return nil
}
