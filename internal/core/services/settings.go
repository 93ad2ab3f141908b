package services

import (
	"fmt"

	"github.com/veritas-labs/counsel/internal/core/domain"
	"github.com/veritas-labs/counsel/internal/core/ports/driven"
	"github.com/veritas-labs/counsel/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyLLMProvider      = "llm.provider"
	keyLLMModel         = "llm.model"
	keyLLMBaseURL       = "llm.base_url"
	keyLLMAPIKey        = "llm.api_key"
	keyEmbedModel       = "embedding.model"
	keyEmbedBaseURL     = "embedding.base_url"
	keyEmbedAPIKey      = "embedding.api_key"
	keyChunkMaxTokens   = "chunking.max_tokens"
	keyChunkOverlap     = "chunking.overlap"
	keyQueryTopK        = "query.top_k"
	keyQueryMinScore    = "query.min_score"
	keyQueryBudget      = "query.context_budget"
	keyQueryTemperature = "query.temperature"
	keyIngestWorkers    = "ingest.workers"
)

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore) *SettingsService {
	return &SettingsService{
		configStore: configStore,
	}
}

// Get retrieves current application settings.
func (s *SettingsService) Get() (*domain.Settings, error) {
	defaults := domain.DefaultSettings()

	settings := &domain.Settings{
		LLM: domain.LLMSettings{
			Provider: s.getProvider(keyLLMProvider, defaults.LLM.Provider),
			Model:    s.getString(keyLLMModel, defaults.LLM.Model),
			BaseURL:  s.configStore.GetString(keyLLMBaseURL), // No default - empty means the provider's endpoint
			APIKey:   s.configStore.GetString(keyLLMAPIKey),
		},
		Embedding: domain.EmbeddingSettings{
			Model:   s.getString(keyEmbedModel, defaults.Embedding.Model),
			BaseURL: s.configStore.GetString(keyEmbedBaseURL),
			APIKey:  s.configStore.GetString(keyEmbedAPIKey),
		},
		Chunking: domain.ChunkingSettings{
			MaxTokens: s.getInt(keyChunkMaxTokens, defaults.Chunking.MaxTokens),
			Overlap:   s.getInt(keyChunkOverlap, defaults.Chunking.Overlap),
		},
		Query: domain.QuerySettings{
			TopK:          s.getInt(keyQueryTopK, defaults.Query.TopK),
			MinScore:      s.getFloat(keyQueryMinScore, defaults.Query.MinScore),
			ContextBudget: s.getInt(keyQueryBudget, defaults.Query.ContextBudget),
			Temperature:   s.getFloat(keyQueryTemperature, defaults.Query.Temperature),
		},
		Ingest: domain.IngestSettings{
			Workers: s.getInt(keyIngestWorkers, defaults.Ingest.Workers),
		},
	}

	return settings, nil
}

// Save persists application settings.
func (s *SettingsService) Save(settings *domain.Settings) error {
	if err := s.configStore.Set(keyLLMProvider, settings.LLM.Provider.String()); err != nil {
		return fmt.Errorf("save llm provider: %w", err)
	}
	if err := s.configStore.Set(keyLLMModel, settings.LLM.Model); err != nil {
		return fmt.Errorf("save llm model: %w", err)
	}
	if err := s.configStore.Set(keyLLMBaseURL, settings.LLM.BaseURL); err != nil {
		return fmt.Errorf("save llm base_url: %w", err)
	}
	if settings.LLM.APIKey != "" {
		if err := s.configStore.Set(keyLLMAPIKey, settings.LLM.APIKey); err != nil {
			return fmt.Errorf("save llm api_key: %w", err)
		}
	}

	if err := s.configStore.Set(keyEmbedModel, settings.Embedding.Model); err != nil {
		return fmt.Errorf("save embedding model: %w", err)
	}
	if err := s.configStore.Set(keyEmbedBaseURL, settings.Embedding.BaseURL); err != nil {
		return fmt.Errorf("save embedding base_url: %w", err)
	}
	if settings.Embedding.APIKey != "" {
		if err := s.configStore.Set(keyEmbedAPIKey, settings.Embedding.APIKey); err != nil {
			return fmt.Errorf("save embedding api_key: %w", err)
		}
	}

	if err := s.configStore.Set(keyChunkMaxTokens, settings.Chunking.MaxTokens); err != nil {
		return fmt.Errorf("save chunking max_tokens: %w", err)
	}
	if err := s.configStore.Set(keyChunkOverlap, settings.Chunking.Overlap); err != nil {
		return fmt.Errorf("save chunking overlap: %w", err)
	}

	if err := s.configStore.Set(keyQueryTopK, settings.Query.TopK); err != nil {
		return fmt.Errorf("save query top_k: %w", err)
	}
	if err := s.configStore.Set(keyQueryMinScore, settings.Query.MinScore); err != nil {
		return fmt.Errorf("save query min_score: %w", err)
	}
	if err := s.configStore.Set(keyQueryBudget, settings.Query.ContextBudget); err != nil {
		return fmt.Errorf("save query context_budget: %w", err)
	}
	if err := s.configStore.Set(keyQueryTemperature, settings.Query.Temperature); err != nil {
		return fmt.Errorf("save query temperature: %w", err)
	}

	if err := s.configStore.Set(keyIngestWorkers, settings.Ingest.Workers); err != nil {
		return fmt.Errorf("save ingest workers: %w", err)
	}

	return nil
}

// SetLLMProvider configures the LLM provider.
func (s *SettingsService) SetLLMProvider(provider domain.LLMProvider, model, apiKey string) error {
	if !provider.IsValid() {
		return fmt.Errorf("invalid LLM provider: %s", provider)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}

	settings.LLM.Provider = provider

	if model != "" {
		settings.LLM.Model = model
	} else if defaultModel, ok := domain.DefaultLLMModels()[provider]; ok {
		settings.LLM.Model = defaultModel
	}

	if apiKey != "" {
		settings.LLM.APIKey = apiKey
	}

	return s.Save(settings)
}

// Validate checks if current settings can run the pipeline.
func (s *SettingsService) Validate() error {
	settings, err := s.Get()
	if err != nil {
		return err
	}

	if !settings.LLM.Provider.IsValid() {
		return fmt.Errorf("invalid LLM provider: %s", settings.LLM.Provider)
	}
	if !settings.LLM.IsConfigured() {
		return fmt.Errorf("LLM provider %s needs an API key (llm.api_key) or a base URL (llm.base_url)", settings.LLM.Provider)
	}
	if !settings.Embedding.IsConfigured() {
		return fmt.Errorf("embedding provider needs an API key (embedding.api_key) or a base URL (embedding.base_url)")
	}
	if !settings.Chunking.IsValid() {
		return fmt.Errorf("chunking overlap %d must be smaller than max_tokens %d",
			settings.Chunking.Overlap, settings.Chunking.MaxTokens)
	}
	if settings.Query.TopK <= 0 {
		return fmt.Errorf("query top_k must be positive, got %d", settings.Query.TopK)
	}
	if settings.Ingest.Workers <= 0 {
		return fmt.Errorf("ingest workers must be positive, got %d", settings.Ingest.Workers)
	}

	return nil
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.Settings {
	return domain.DefaultSettings()
}

// Helper methods for reading config with defaults.

func (s *SettingsService) getString(key, defaultVal string) string {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetInt(key)
}

func (s *SettingsService) getFloat(key string, defaultVal float64) float64 {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetFloat(key)
}

func (s *SettingsService) getProvider(key string, defaultVal domain.LLMProvider) domain.LLMProvider {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	provider := domain.LLMProvider(val)
	if !provider.IsValid() {
		return defaultVal
	}
	return provider
}
