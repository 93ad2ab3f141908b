package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/veritas-labs/counsel/internal/connectors/filesystem"
	"github.com/veritas-labs/counsel/internal/connectors/web"
	"github.com/veritas-labs/counsel/internal/core/domain"
	"github.com/veritas-labs/counsel/internal/logger"
)

var (
	ingestKB           string
	ingestConversation string
	ingestTitle        string
	ingestDescription  string
	ingestWait         bool
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [path|url]",
	Short: "Ingest a document, directory, or URL",
	Long: `Ingest a document into the index. The argument may be a file, a
directory (ingested recursively), or an HTTP(S) URL.

Processing happens in the background; by default the command queues
the document and returns. Use --wait to block until extraction,
chunking, and embedding finish and report the outcome.`,
	Args: cobra.ExactArgs(1),
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().StringVar(&ingestKB, "kb", "", "knowledge base (name or ID) to file the document under")
	ingestCmd.Flags().StringVar(&ingestConversation, "conversation", "", "conversation ID to attach the document to")
	ingestCmd.Flags().StringVar(&ingestTitle, "title", "", "document title (default derived from the content)")
	ingestCmd.Flags().StringVar(&ingestDescription, "description", "", "optional document description")
	ingestCmd.Flags().BoolVar(&ingestWait, "wait", false, "block until processing finishes")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	if ingestService == nil {
		return fmt.Errorf("ingest service not configured")
	}
	if embeddingService == nil {
		return fmt.Errorf("embedding provider not configured: run 'counsel config set-key embedding'")
	}

	ctx := context.Background()

	var kbID string
	if ingestKB != "" {
		if kbService == nil {
			return fmt.Errorf("knowledge base service not configured")
		}
		kb, err := kbService.Resolve(ctx, ingestKB)
		if err != nil {
			return fmt.Errorf("failed to resolve knowledge base %q: %w", ingestKB, err)
		}
		kbID = kb.ID
	}

	target := args[0]
	if web.IsURL(target) {
		fetcher := web.New(web.Config{})
		raw, err := fetcher.Fetch(ctx, target)
		if err != nil {
			return fmt.Errorf("failed to fetch %s: %w", target, err)
		}
		stampIngestFlags(raw, kbID)
		return queueDocument(ctx, cmd, raw)
	}

	path := strings.TrimPrefix(target, "file://")
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		return ingestDirectory(ctx, cmd, path, kbID)
	}

	raw, err := filesystem.Load(path)
	if err != nil {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	stampIngestFlags(raw, kbID)
	return queueDocument(ctx, cmd, raw)
}

// stampIngestFlags applies the scope and metadata flags to a loaded
// document before it enters the pipeline.
func stampIngestFlags(raw *domain.RawDocument, kbID string) {
	raw.KnowledgeBaseID = kbID
	raw.ConversationID = ingestConversation
	if ingestTitle != "" {
		raw.Title = ingestTitle
	}
	if ingestDescription != "" {
		raw.Description = ingestDescription
	}
}

func queueDocument(ctx context.Context, cmd *cobra.Command, raw *domain.RawDocument) error {
	doc, err := ingestService.Ingest(ctx, raw)
	if err != nil {
		return fmt.Errorf("failed to ingest %s: %w", raw.URI, err)
	}

	if !ingestWait {
		cmd.Printf("Queued %s as %s\n", doc.URI, doc.ID)
		cmd.Printf("Run 'counsel document status %s' to check progress.\n", doc.ID)
		return nil
	}

	cmd.Printf("Processing %s...\n", doc.URI)
	final, err := ingestService.Wait(ctx, doc.ID)
	if err != nil {
		return fmt.Errorf("failed waiting for %s: %w", doc.ID, err)
	}
	if final.Status == domain.StatusFailed {
		return fmt.Errorf("ingestion of %s failed: %s", final.URI, final.ErrorMessage)
	}
	cmd.Printf("Indexed %s as %s\n", final.URI, final.ID)
	return nil
}

func ingestDirectory(ctx context.Context, cmd *cobra.Command, dir, kbID string) error {
	docs, errs := filesystem.Scan(ctx, dir)

	var queued []string
	skipped := 0
	for raw := range docs {
		r := raw
		stampIngestFlags(&r, kbID)
		doc, err := ingestService.Ingest(ctx, &r)
		if err != nil {
			logger.Warn("Skipping %s: %v", r.URI, err)
			skipped++
			continue
		}
		queued = append(queued, doc.ID)
		cmd.Printf("Queued %s as %s\n", doc.URI, doc.ID)
	}
	if err := <-errs; err != nil {
		return fmt.Errorf("failed to scan %s: %w", dir, err)
	}
	if len(queued) == 0 && skipped == 0 {
		cmd.Printf("No supported documents found in %s\n", dir)
		return nil
	}

	if !ingestWait {
		cmd.Printf("Queued %d documents (%d skipped)\n", len(queued), skipped)
		return nil
	}

	indexed, failed := 0, 0
	for _, id := range queued {
		final, err := ingestService.Wait(ctx, id)
		if err != nil {
			return fmt.Errorf("failed waiting for %s: %w", id, err)
		}
		if final.Status == domain.StatusFailed {
			failed++
			cmd.Printf("FAILED %s: %s\n", final.URI, final.ErrorMessage)
			continue
		}
		indexed++
	}
	cmd.Printf("Indexed %d documents, %d failed (%d skipped)\n", indexed, failed, skipped)
	if failed > 0 {
		return fmt.Errorf("%d of %d documents failed", failed, len(queued))
	}
	return nil
}
