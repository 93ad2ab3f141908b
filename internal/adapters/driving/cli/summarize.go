package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/veritas-labs/counsel/internal/core/domain"
)

var (
	summarizeKB           string
	summarizeConversation string
	summarizeMaxLength    int
)

var summarizeCmd = &cobra.Command{
	Use:   "summarize [doc-id]",
	Short: "Summarise a document, knowledge base, or conversation",
	Long: `Summarise indexed material. Pass a document ID to summarise a single
document, or use --kb or --conversation to summarise everything in
that scope.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSummarize,
}

func init() {
	summarizeCmd.Flags().StringVar(&summarizeKB, "kb", "", "summarise a knowledge base (name or ID)")
	summarizeCmd.Flags().StringVar(&summarizeConversation, "conversation", "", "summarise a conversation ID")
	summarizeCmd.Flags().IntVar(&summarizeMaxLength, "max-chars", 0, "target summary length in characters (0 uses the default)")
	rootCmd.AddCommand(summarizeCmd)
}

func runSummarize(cmd *cobra.Command, args []string) error {
	if askService == nil {
		return fmt.Errorf("ask service not configured: run 'counsel config set-key' to set provider credentials")
	}

	targets := len(args)
	if summarizeKB != "" {
		targets++
	}
	if summarizeConversation != "" {
		targets++
	}
	if targets == 0 {
		return fmt.Errorf("nothing to summarise: pass a document ID, --kb, or --conversation")
	}
	if targets > 1 {
		return fmt.Errorf("pass exactly one of a document ID, --kb, or --conversation")
	}

	ctx := context.Background()

	var (
		summary string
		err     error
	)
	switch {
	case len(args) == 1:
		summary, err = askService.Summarise(ctx, args[0], summarizeMaxLength)
	case summarizeKB != "":
		var scope domain.Scope
		scope, err = resolveScope(ctx, summarizeKB, "", "")
		if err != nil {
			return err
		}
		summary, err = askService.SummariseScope(ctx, scope, summarizeMaxLength)
	default:
		scope := domain.Scope{ConversationID: summarizeConversation}
		summary, err = askService.SummariseScope(ctx, scope, summarizeMaxLength)
	}
	if err != nil {
		return fmt.Errorf("failed to summarise: %w", err)
	}

	cmd.Println(summary)
	return nil
}
