package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var kbDescription string

var kbCmd = &cobra.Command{
	Use:   "kb",
	Short: "Manage knowledge bases",
	Long: `Create, list, and delete knowledge bases. A knowledge base groups
documents for one matter or client so queries can be scoped to it.`,
}

var kbCreateCmd = &cobra.Command{
	Use:   "create [name]",
	Short: "Create a knowledge base",
	Args:  cobra.ExactArgs(1),
	RunE:  runKBCreate,
}

var kbListCmd = &cobra.Command{
	Use:   "list",
	Short: "List knowledge bases",
	RunE:  runKBList,
}

var kbDeleteCmd = &cobra.Command{
	Use:   "delete [name-or-id]",
	Short: "Delete a knowledge base and its documents",
	Args:  cobra.ExactArgs(1),
	RunE:  runKBDelete,
}

func init() {
	kbCreateCmd.Flags().StringVar(&kbDescription, "description", "", "optional description")

	kbCmd.AddCommand(kbCreateCmd)
	kbCmd.AddCommand(kbListCmd)
	kbCmd.AddCommand(kbDeleteCmd)
	rootCmd.AddCommand(kbCmd)
}

func runKBCreate(cmd *cobra.Command, args []string) error {
	if kbService == nil {
		return fmt.Errorf("knowledge base service not configured")
	}

	kb, err := kbService.Create(context.Background(), args[0], kbDescription)
	if err != nil {
		return fmt.Errorf("failed to create knowledge base: %w", err)
	}
	cmd.Printf("Created knowledge base %q (%s)\n", kb.Name, kb.ID)
	return nil
}

func runKBList(cmd *cobra.Command, _ []string) error {
	if kbService == nil {
		return fmt.Errorf("knowledge base service not configured")
	}

	kbs, err := kbService.List(context.Background())
	if err != nil {
		return fmt.Errorf("failed to list knowledge bases: %w", err)
	}
	if len(kbs) == 0 {
		cmd.Println("No knowledge bases found.")
		return nil
	}

	for _, kb := range kbs {
		cmd.Printf("%s  %s\n", kb.ID, kb.Name)
		if kb.Description != "" {
			cmd.Printf("%*s%s\n", len(kb.ID)+2, "", kb.Description)
		}
	}
	cmd.Printf("\nTotal: %d knowledge bases\n", len(kbs))
	return nil
}

func runKBDelete(cmd *cobra.Command, args []string) error {
	if kbService == nil {
		return fmt.Errorf("knowledge base service not configured")
	}

	ctx := context.Background()
	kb, err := kbService.Resolve(ctx, args[0])
	if err != nil {
		return fmt.Errorf("failed to resolve knowledge base %q: %w", args[0], err)
	}

	if err := kbService.Delete(ctx, kb.ID); err != nil {
		return fmt.Errorf("failed to delete knowledge base: %w", err)
	}
	cmd.Printf("Deleted knowledge base %q and its documents\n", kb.Name)
	return nil
}
