package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/veritas-labs/counsel/internal/adapters/driven/ai"
	"github.com/veritas-labs/counsel/internal/core/domain"
)

var (
	setKeyProvider string
	setKeyModel    string
	setKeyNoVerify bool
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage counsel configuration",
	Long:  `Show the current configuration and store provider credentials.`,
	RunE:  runConfigShow,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the current configuration",
	RunE:  runConfigShow,
}

var configSetKeyCmd = &cobra.Command{
	Use:   "set-key [llm|embedding]",
	Short: "Store a provider API key",
	Long: `Prompt for an API key without echoing it and store it in the config
file. For the LLM, --provider and --model select the backend. The key
is verified against the provider before saving unless --no-verify is
given.`,
	Args: cobra.ExactArgs(1),
	RunE: runConfigSetKey,
}

func init() {
	configSetKeyCmd.Flags().StringVar(&setKeyProvider, "provider", "", "LLM provider (openai or anthropic)")
	configSetKeyCmd.Flags().StringVar(&setKeyModel, "model", "", "model name (default per provider)")
	configSetKeyCmd.Flags().BoolVar(&setKeyNoVerify, "no-verify", false, "save without pinging the provider")

	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetKeyCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return fmt.Errorf("settings service not configured")
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}

	cmd.Println("[LLM]")
	cmd.Printf("  provider:       %s\n", settings.LLM.Provider)
	cmd.Printf("  model:          %s\n", settings.LLM.Model)
	if settings.LLM.BaseURL != "" {
		cmd.Printf("  base_url:       %s\n", settings.LLM.BaseURL)
	}
	cmd.Printf("  api_key:        %s\n", maskAPIKey(settings.LLM.APIKey))

	cmd.Println("[Embedding]")
	cmd.Printf("  model:          %s\n", settings.Embedding.Model)
	if settings.Embedding.BaseURL != "" {
		cmd.Printf("  base_url:       %s\n", settings.Embedding.BaseURL)
	}
	cmd.Printf("  api_key:        %s\n", maskAPIKey(settings.Embedding.APIKey))

	cmd.Println("[Chunking]")
	cmd.Printf("  max_tokens:     %d\n", settings.Chunking.MaxTokens)
	cmd.Printf("  overlap:        %d\n", settings.Chunking.Overlap)

	cmd.Println("[Query]")
	cmd.Printf("  top_k:          %d\n", settings.Query.TopK)
	cmd.Printf("  min_score:      %.2f\n", settings.Query.MinScore)
	cmd.Printf("  context_budget: %d\n", settings.Query.ContextBudget)
	cmd.Printf("  temperature:    %.2f\n", settings.Query.Temperature)

	cmd.Println("[Ingest]")
	cmd.Printf("  workers:        %d\n", settings.Ingest.Workers)

	cmd.Println()
	if err := settingsService.Validate(); err != nil {
		cmd.Printf("Warning: %v\n", err)
	} else {
		cmd.Println("Configuration is valid.")
	}
	return nil
}

func runConfigSetKey(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return fmt.Errorf("settings service not configured")
	}

	switch args[0] {
	case "llm":
		return setLLMKey(cmd)
	case "embedding":
		return setEmbeddingKey(cmd)
	default:
		return fmt.Errorf("unknown target %q: expected llm or embedding", args[0])
	}
}

func setLLMKey(cmd *cobra.Command) error {
	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}

	provider := settings.LLM.Provider
	if setKeyProvider != "" {
		provider = domain.LLMProvider(setKeyProvider)
		if !provider.IsValid() {
			return fmt.Errorf("unknown provider %q: expected openai or anthropic", setKeyProvider)
		}
	}

	cmd.Printf("API key for %s (input hidden): ", provider)
	key := readPassword()
	cmd.Println()
	if key == "" {
		return fmt.Errorf("no key entered")
	}

	if !setKeyNoVerify {
		candidate := settings.LLM
		candidate.Provider = provider
		candidate.APIKey = key
		if setKeyModel != "" {
			candidate.Model = setKeyModel
		}
		cmd.Print("Verifying... ")
		if err := ai.ValidateLLMConfig(candidate); err != nil {
			cmd.Println("FAILED")
			return fmt.Errorf("key verification failed: %w", err)
		}
		cmd.Println("OK")
	}

	if err := settingsService.SetLLMProvider(provider, setKeyModel, key); err != nil {
		return fmt.Errorf("failed to save LLM settings: %w", err)
	}
	cmd.Printf("Stored LLM key for %s (%s)\n", provider, maskAPIKey(key))
	return nil
}

func setEmbeddingKey(cmd *cobra.Command) error {
	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}

	cmd.Print("Embedding API key (input hidden): ")
	key := readPassword()
	cmd.Println()
	if key == "" {
		return fmt.Errorf("no key entered")
	}

	settings.Embedding.APIKey = key
	if setKeyModel != "" {
		settings.Embedding.Model = setKeyModel
	}

	if !setKeyNoVerify {
		cmd.Print("Verifying... ")
		if err := ai.ValidateEmbeddingConfig(settings.Embedding); err != nil {
			cmd.Println("FAILED")
			return fmt.Errorf("key verification failed: %w", err)
		}
		cmd.Println("OK")
	}

	if err := settingsService.Save(settings); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	cmd.Printf("Stored embedding key (%s)\n", maskAPIKey(key))
	return nil
}

// maskAPIKey renders a key safe for display.
func maskAPIKey(key string) string {
	if key == "" {
		return "(not set)"
	}
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}

// readPassword reads a line without echo when stdin is a terminal,
// falling back to a plain read when it is not (pipes, tests).
func readPassword() string {
	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		//nolint:errcheck // an empty key is rejected by the caller
		raw, _ := term.ReadPassword(fd)
		return strings.TrimSpace(string(raw))
	}
	reader := bufio.NewReader(os.Stdin)
	//nolint:errcheck // an empty key is rejected by the caller
	line, _ := reader.ReadString('\n')
	return strings.TrimSpace(line)
}
