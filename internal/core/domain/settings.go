package domain

const unknownDescription = "Unknown"

// LLMProvider identifies the language-model backend used for answer
// generation and summarisation.
type LLMProvider string

// Available LLM providers.
const (
	// LLMProviderOpenAI is the OpenAI chat completions API.
	LLMProviderOpenAI LLMProvider = "openai"

	// LLMProviderAnthropic is the Anthropic messages API.
	LLMProviderAnthropic LLMProvider = "anthropic"
)

// IsValid returns true if the provider is recognised.
func (p LLMProvider) IsValid() bool {
	switch p {
	case LLMProviderOpenAI, LLMProviderAnthropic:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (p LLMProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p LLMProvider) Description() string {
	switch p {
	case LLMProviderOpenAI:
		return "OpenAI (chat completions)"
	case LLMProviderAnthropic:
		return "Anthropic (messages)"
	default:
		return unknownDescription
	}
}

// LLMSettings holds language-model provider configuration.
type LLMSettings struct {
	// Provider is the LLM backend.
	Provider LLMProvider

	// Model is the model name sent to the provider.
	Model string

	// BaseURL overrides the provider's default endpoint. Used to point
	// the OpenAI provider at an API-compatible local server.
	BaseURL string

	// APIKey authenticates against the provider.
	APIKey string
}

// IsConfigured returns true if the LLM provider is usable.
// A custom BaseURL stands in for an API key so that keyless local
// servers remain reachable.
func (l LLMSettings) IsConfigured() bool {
	if !l.Provider.IsValid() {
		return false
	}
	return l.APIKey != "" || l.BaseURL != ""
}

// EmbeddingSettings holds embedding provider configuration. Embeddings
// always go through the OpenAI embeddings API; only the model, endpoint
// and key vary.
type EmbeddingSettings struct {
	// Model is the embedding model name.
	Model string

	// BaseURL overrides the default endpoint.
	BaseURL string

	// APIKey authenticates against the provider.
	APIKey string
}

// IsConfigured returns true if the embedding provider is usable.
func (e EmbeddingSettings) IsConfigured() bool {
	return e.APIKey != "" || e.BaseURL != ""
}

// ChunkingSettings holds text-splitting configuration.
type ChunkingSettings struct {
	// MaxTokens is the upper bound on tokens per chunk.
	MaxTokens int

	// Overlap is the number of tokens shared between adjacent chunks.
	Overlap int
}

// IsValid returns true if the chunking bounds are coherent. The
// overlap must leave room for the window to advance.
func (c ChunkingSettings) IsValid() bool {
	return c.MaxTokens > 0 && c.Overlap >= 0 && c.Overlap < c.MaxTokens
}

// QuerySettings holds retrieval and answer-generation configuration.
type QuerySettings struct {
	// TopK is the number of passages retrieved per question.
	TopK int

	// MinScore drops passages scoring below the floor. Zero disables it.
	MinScore float64

	// ContextBudget is the character budget for packed passages.
	ContextBudget int

	// Temperature is the language-model sampling temperature.
	Temperature float64
}

// IngestSettings holds ingestion pipeline configuration.
type IngestSettings struct {
	// Workers is the number of documents processed concurrently.
	Workers int
}

// Settings holds all application settings.
type Settings struct {
	// LLM holds language-model provider settings.
	LLM LLMSettings

	// Embedding holds embedding provider settings.
	Embedding EmbeddingSettings

	// Chunking holds text-splitting settings.
	Chunking ChunkingSettings

	// Query holds retrieval settings.
	Query QuerySettings

	// Ingest holds ingestion pipeline settings.
	Ingest IngestSettings
}

// DefaultSettings returns settings with sensible defaults. Provider
// credentials are left empty; users supply them via config or
// environment.
func DefaultSettings() Settings {
	return Settings{
		LLM: LLMSettings{
			Provider: LLMProviderOpenAI,
			Model:    "gpt-4o-mini",
		},
		Embedding: EmbeddingSettings{
			Model: "text-embedding-3-small", // 1536 dimensions
		},
		Chunking: ChunkingSettings{
			MaxTokens: 750,
			Overlap:   150,
		},
		Query: QuerySettings{
			TopK:          DefaultTopK,
			MinScore:      0,
			ContextBudget: 8000,
			Temperature:   DefaultTemperature,
		},
		Ingest: IngestSettings{
			Workers: 4,
		},
	}
}

// AllLLMProviders returns all available LLM providers.
func AllLLMProviders() []LLMProvider {
	return []LLMProvider{
		LLMProviderOpenAI,
		LLMProviderAnthropic,
	}
}

// DefaultLLMModels returns default models for each LLM provider.
func DefaultLLMModels() map[LLMProvider]string {
	return map[LLMProvider]string{
		LLMProviderOpenAI:    "gpt-4o-mini",
		LLMProviderAnthropic: "claude-3-5-sonnet-latest",
	}
}
