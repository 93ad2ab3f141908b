// Package cli implements the counsel command-line interface.
//
// The root command wires the storage, index, extraction and provider
// adapters into the core services once per process. Subcommands reach
// the services through package-level variables so tests can substitute
// stubs without touching the wiring.
package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/veritas-labs/counsel/internal/adapters/driven/ai"
	configfile "github.com/veritas-labs/counsel/internal/adapters/driven/config/file"
	"github.com/veritas-labs/counsel/internal/adapters/driven/index/flat"
	"github.com/veritas-labs/counsel/internal/adapters/driven/storage/sqlite"
	"github.com/veritas-labs/counsel/internal/chunking"
	"github.com/veritas-labs/counsel/internal/core/domain"
	"github.com/veritas-labs/counsel/internal/core/ports/driven"
	"github.com/veritas-labs/counsel/internal/core/ports/driving"
	"github.com/veritas-labs/counsel/internal/core/services"
	"github.com/veritas-labs/counsel/internal/extractors"
	"github.com/veritas-labs/counsel/internal/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

// defaultIndexDims sizes a fresh vector index when no embedding
// provider is configured yet. It matches text-embedding-3-small so
// the index does not need rebuilding once the default provider is
// configured.
const defaultIndexDims = 1536

var (
	verbose bool
	homeDir string
)

// Services wired by wireServices. Tests install stubs and set
// servicesWired so the root hook leaves them alone.
var (
	settingsService  driving.SettingsService
	ingestService    driving.IngestService
	askService       driving.AskService
	kbService        driving.KnowledgeBaseService
	embeddingService driven.EmbeddingService
	llmService       driven.LLMService
	promptStore      driven.PromptStore
	extractorSet     *extractors.Registry

	servicesWired bool
	closers       []func() error
)

var rootCmd = &cobra.Command{
	Use:   "counsel",
	Short: "Question answering over your own legal documents",
	Long: `Counsel ingests legal documents (PDF, DOCX, HTML, Markdown, plain
text), indexes them with embeddings, and answers natural-language
questions grounded in the indexed material with citations back to the
source passages.

Documents can be grouped into knowledge bases (one per matter or
client) and queries scoped to a knowledge base, a single document, or
a conversation.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		logger.SetVerbose(verbose)
		if servicesWired || !needsServices(cmd) {
			return nil
		}
		if err := wireServices(); err != nil {
			return err
		}
		servicesWired = true
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&homeDir, "home", "", "counsel home directory (default ~/.counsel)")
}

// Execute runs the CLI and releases wired resources on exit.
func Execute() error {
	defer closeServices()
	return rootCmd.Execute()
}

// needsServices reports whether a command requires the wired stack.
// Purely informational commands stay usable with no config at all.
func needsServices(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		switch c.Name() {
		case "version", "help", "completion":
			return false
		}
	}
	return true
}

// counselHome resolves the base directory for config and data. The
// --home flag wins, then COUNSEL_HOME, then ~/.counsel.
func counselHome() (string, error) {
	if homeDir != "" {
		return homeDir, nil
	}
	if env := os.Getenv("COUNSEL_HOME"); env != "" {
		return env, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve home directory: %w", err)
	}
	return filepath.Join(home, ".counsel"), nil
}

// wireServices builds the full adapter and service graph. Provider
// adapters are only constructed when configured; commands that need
// them nil-check and point at 'counsel config set-key'.
func wireServices() error {
	// Credentials may live in a .env in the working directory.
	//nolint:errcheck // a missing .env is the normal case
	godotenv.Load()

	base, err := counselHome()
	if err != nil {
		return err
	}

	configStore, err := configfile.NewConfigStore(base)
	if err != nil {
		return fmt.Errorf("failed to open config: %w", err)
	}
	settingsService = services.NewSettingsService(configStore)

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}
	applyEnvOverrides(settings)

	prompts, err := configfile.NewPromptStore(filepath.Join(base, "prompts"))
	if err != nil {
		return fmt.Errorf("failed to open prompt store: %w", err)
	}
	promptStore = prompts

	store, err := sqlite.NewStore(filepath.Join(base, "data"))
	if err != nil {
		return fmt.Errorf("failed to open metadata store: %w", err)
	}
	closers = append(closers, store.Close)

	if settings.Embedding.IsConfigured() {
		embedder, err := ai.CreateEmbeddingService(settings.Embedding)
		if err != nil {
			return fmt.Errorf("failed to create embedding service: %w", err)
		}
		embeddingService = embedder
		closers = append(closers, embedder.Close)
	}
	if settings.LLM.IsConfigured() {
		llm, err := ai.CreateLLMService(settings.LLM, promptStore)
		if err != nil {
			return fmt.Errorf("failed to create LLM service: %w", err)
		}
		llmService = llm
		closers = append(closers, llm.Close)
	}

	dims := defaultIndexDims
	if embeddingService != nil {
		dims = embeddingService.Dimensions()
	}
	index, err := flat.New(filepath.Join(base, "data", "index"), dims)
	if err != nil {
		return fmt.Errorf("failed to create vector index: %w", err)
	}
	if err := index.Load(context.Background()); err != nil {
		logger.Warn("Vector index snapshot unusable (%v); starting empty. Run 'counsel reindex' to rebuild.", err)
	}
	closers = append(closers, index.Close)

	chunker := chunking.New(
		chunking.WithMaxTokens(settings.Chunking.MaxTokens),
		chunking.WithOverlap(settings.Chunking.Overlap),
	)
	extractorSet = extractors.Defaults()

	ingest := services.NewIngestService(
		store.DocumentStore(),
		extractorSet,
		chunker,
		embeddingService,
		index,
		settings.Ingest.Workers,
	)
	ingestService = ingest
	closers = append(closers, func() error {
		// One-shot commands queue work and exit; finish it first.
		ingest.Drain()
		return ingest.Close()
	})

	kbService = services.NewKnowledgeBaseService(
		store.KnowledgeBaseStore(),
		store.ConversationStore(),
		ingestService,
	)

	if embeddingService != nil && llmService != nil {
		ask := services.NewAskService(
			store.DocumentStore(),
			store.KnowledgeBaseStore(),
			index,
			embeddingService,
			llmService,
			promptStore,
		)
		ask.SetContextBudget(settings.Query.ContextBudget)
		askService = ask
	}

	return nil
}

// closeServices releases wired resources in reverse wiring order, so
// the ingest pipeline drains before the index and store close under it.
func closeServices() {
	for i := len(closers) - 1; i >= 0; i-- {
		if err := closers[i](); err != nil {
			logger.Warn("Shutdown: %v", err)
		}
	}
	closers = nil
}

// applyEnvOverrides fills unset credentials from the environment.
// Stored keys win; the environment only covers gaps, so a .env file
// is enough to run without ever calling 'config set-key'.
func applyEnvOverrides(settings *domain.Settings) {
	if settings.LLM.APIKey == "" {
		switch settings.LLM.Provider {
		case domain.LLMProviderOpenAI:
			settings.LLM.APIKey = os.Getenv("OPENAI_API_KEY")
		case domain.LLMProviderAnthropic:
			settings.LLM.APIKey = os.Getenv("ANTHROPIC_API_KEY")
		}
	}
	if settings.Embedding.APIKey == "" {
		settings.Embedding.APIKey = os.Getenv("OPENAI_API_KEY")
	}
}

// resolveScope maps the scope flags shared by several commands onto a
// retrieval scope, resolving a knowledge base name or ID to its ID.
func resolveScope(ctx context.Context, kb, documentID, conversationID string) (domain.Scope, error) {
	scope := domain.Scope{DocumentID: documentID, ConversationID: conversationID}
	if kb == "" {
		return scope, nil
	}
	if kbService == nil {
		return scope, fmt.Errorf("knowledge base service not configured")
	}
	resolved, err := kbService.Resolve(ctx, kb)
	if err != nil {
		return scope, fmt.Errorf("failed to resolve knowledge base %q: %w", kb, err)
	}
	scope.KnowledgeBaseID = resolved.ID
	return scope, nil
}
