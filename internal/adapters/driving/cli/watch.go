package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/veritas-labs/counsel/internal/connectors/filesystem"
	"github.com/veritas-labs/counsel/internal/core/services"
)

var watchKB string

var watchCmd = &cobra.Command{
	Use:   "watch [dir]",
	Short: "Watch a directory and ingest new documents",
	Long: `Watch a directory tree and ingest supported documents as they appear
or change. Runs until interrupted.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().StringVar(&watchKB, "kb", "", "knowledge base (name or ID) to file new documents under")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	if ingestService == nil {
		return fmt.Errorf("ingest service not configured")
	}
	if embeddingService == nil {
		return fmt.Errorf("embedding provider not configured: run 'counsel config set-key embedding'")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var kbID string
	if watchKB != "" {
		if kbService == nil {
			return fmt.Errorf("knowledge base service not configured")
		}
		kb, err := kbService.Resolve(ctx, watchKB)
		if err != nil {
			return fmt.Errorf("failed to resolve knowledge base %q: %w", watchKB, err)
		}
		kbID = kb.ID
	}

	var supported []string
	if extractorSet != nil {
		supported = extractorSet.SupportedMIMETypes()
	}
	watcher := filesystem.NewWatcher(supported)
	svc := services.NewWatchService(watcher, ingestService, kbID)

	cmd.Printf("Watching %s (ctrl-c to stop)\n", args[0])
	err := svc.Watch(ctx, args[0])
	if stopErr := svc.Stop(); err == nil {
		err = stopErr
	}
	return err
}
