package cli

import (
	"context"
	"fmt"
	"os"
	"runtime/debug"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/veritas-labs/counsel/internal/adapters/driving/tui"
	"github.com/veritas-labs/counsel/internal/core/domain"
)

var (
	chatKB           string
	chatConversation string
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Interactive chat over the indexed documents",
	Long: `Start an interactive chat session. Each question is answered from the
indexed material with citations; earlier turns in the session are sent
along as conversation history.`,
	RunE: runChat,
}

func init() {
	chatCmd.Flags().StringVar(&chatKB, "kb", "", "restrict retrieval to a knowledge base (name or ID)")
	chatCmd.Flags().StringVar(&chatConversation, "conversation", "", "restrict retrieval to a conversation ID")
	rootCmd.AddCommand(chatCmd)
}

func runChat(cmd *cobra.Command, _ []string) error {
	if askService == nil {
		return fmt.Errorf("ask service not configured: run 'counsel config set-key' to set provider credentials")
	}

	ctx := context.Background()

	var scope domain.Scope
	var scopeName string
	if chatKB != "" {
		if kbService == nil {
			return fmt.Errorf("knowledge base service not configured")
		}
		kb, err := kbService.Resolve(ctx, chatKB)
		if err != nil {
			return fmt.Errorf("failed to resolve knowledge base %q: %w", chatKB, err)
		}
		scope.KnowledgeBaseID = kb.ID
		scopeName = kb.Name
	}
	if chatConversation != "" {
		scope.ConversationID = chatConversation
		if scopeName == "" {
			scopeName = "conversation " + chatConversation
		}
	}

	var modelName string
	if llmService != nil {
		modelName = llmService.ModelName()
	}

	chat, err := tui.NewChat(tui.Config{
		Ask:       askService,
		Scope:     scope,
		ScopeName: scopeName,
		ModelName: modelName,
	})
	if err != nil {
		return fmt.Errorf("failed to start chat: %w", err)
	}
	chat.WithContext(cmd.Context())

	// A panic inside the TUI would otherwise eat the terminal state.
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "chat crashed: %v\n%s", r, debug.Stack())
		}
	}()

	p := tea.NewProgram(chat, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("chat session failed: %w", err)
	}
	return nil
}
