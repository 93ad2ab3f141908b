package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/veritas-labs/counsel/internal/core/domain"
)

var (
	documentListKB           string
	documentListConversation string
)

var documentCmd = &cobra.Command{
	Use:   "document",
	Short: "Manage ingested documents",
	Long:  `List, inspect, and delete ingested documents.`,
}

var documentListCmd = &cobra.Command{
	Use:   "list",
	Short: "List ingested documents",
	RunE:  runDocumentList,
}

var documentStatusCmd = &cobra.Command{
	Use:   "status [doc-id]",
	Short: "Show a document's ingestion status",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocumentStatus,
}

var documentContentCmd = &cobra.Command{
	Use:   "content [doc-id]",
	Short: "Print a document's extracted text",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocumentContent,
}

var documentDeleteCmd = &cobra.Command{
	Use:   "delete [doc-id]",
	Short: "Delete a document and its index entries",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocumentDelete,
}

func init() {
	documentListCmd.Flags().StringVar(&documentListKB, "kb", "", "only documents in this knowledge base (name or ID)")
	documentListCmd.Flags().StringVar(&documentListConversation, "conversation", "", "only documents in this conversation")

	documentCmd.AddCommand(documentListCmd)
	documentCmd.AddCommand(documentStatusCmd)
	documentCmd.AddCommand(documentContentCmd)
	documentCmd.AddCommand(documentDeleteCmd)
	rootCmd.AddCommand(documentCmd)
}

func runDocumentList(cmd *cobra.Command, _ []string) error {
	if ingestService == nil {
		return fmt.Errorf("ingest service not configured")
	}

	ctx := context.Background()
	scope, err := resolveScope(ctx, documentListKB, "", documentListConversation)
	if err != nil {
		return err
	}

	docs, err := ingestService.List(ctx, scope)
	if err != nil {
		return fmt.Errorf("failed to list documents: %w", err)
	}
	if len(docs) == 0 {
		cmd.Println("No documents found.")
		return nil
	}

	for _, doc := range docs {
		title := doc.Title
		if title == "" {
			title = "(untitled)"
		}
		cmd.Printf("%s  %-10s  %s\n", doc.ID, doc.Status, title)
		cmd.Printf("%*s%s\n", len(doc.ID)+2, "", doc.URI)
	}
	cmd.Printf("\nTotal: %d documents\n", len(docs))
	return nil
}

func runDocumentStatus(cmd *cobra.Command, args []string) error {
	if ingestService == nil {
		return fmt.Errorf("ingest service not configured")
	}

	doc, err := ingestService.Get(context.Background(), args[0])
	if err != nil {
		return fmt.Errorf("failed to get document: %w", err)
	}

	cmd.Printf("ID:      %s\n", doc.ID)
	cmd.Printf("Title:   %s\n", doc.Title)
	cmd.Printf("URI:     %s\n", doc.URI)
	cmd.Printf("Status:  %s\n", doc.Status)
	if doc.Status == domain.StatusFailed && doc.ErrorMessage != "" {
		cmd.Printf("Error:   %s\n", doc.ErrorMessage)
	}
	if doc.KnowledgeBaseID != "" {
		cmd.Printf("KB:      %s\n", doc.KnowledgeBaseID)
	}
	if doc.ConversationID != "" {
		cmd.Printf("Conv:    %s\n", doc.ConversationID)
	}
	cmd.Printf("Size:    %d bytes\n", doc.ByteSize)
	cmd.Printf("Created: %s\n", doc.CreatedAt.Format("2006-01-02 15:04:05"))
	cmd.Printf("Updated: %s\n", doc.UpdatedAt.Format("2006-01-02 15:04:05"))
	return nil
}

func runDocumentContent(cmd *cobra.Command, args []string) error {
	if ingestService == nil {
		return fmt.Errorf("ingest service not configured")
	}

	doc, err := ingestService.Get(context.Background(), args[0])
	if err != nil {
		return fmt.Errorf("failed to get document: %w", err)
	}
	if doc.Content == "" {
		return fmt.Errorf("document %s has no extracted text (status %s)", doc.ID, doc.Status)
	}

	cmd.Println(doc.Content)
	return nil
}

func runDocumentDelete(cmd *cobra.Command, args []string) error {
	if ingestService == nil {
		return fmt.Errorf("ingest service not configured")
	}

	if err := ingestService.Delete(context.Background(), args[0]); err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}
	cmd.Printf("Deleted document %s\n", args[0])
	return nil
}
