// Package ai assembles language-model and embedding adapters from
// provider settings.
package ai

import (
	"context"
	"fmt"
	"time"

	openaiembed "github.com/veritas-labs/counsel/internal/adapters/driven/embedding/openai"
	anthropicllm "github.com/veritas-labs/counsel/internal/adapters/driven/llm/anthropic"
	openaillm "github.com/veritas-labs/counsel/internal/adapters/driven/llm/openai"
	"github.com/veritas-labs/counsel/internal/core/domain"
	"github.com/veritas-labs/counsel/internal/core/ports/driven"
)

// pingTimeout bounds connectivity checks against provider APIs.
const pingTimeout = 5 * time.Second

// placeholderKey stands in when only a base URL is configured. Local
// OpenAI-compatible servers ignore the credential, but the adapters
// refuse an empty key.
const placeholderKey = "unused"

// CreateLLMService builds the language-model adapter named by settings.
// A nil prompt store leaves the adapter on its built-in prompts.
func CreateLLMService(settings domain.LLMSettings, prompts driven.PromptStore) (driven.LLMService, error) {
	if !settings.Provider.IsValid() {
		return nil, fmt.Errorf("unsupported LLM provider: %q", settings.Provider)
	}
	if !settings.IsConfigured() {
		return nil, fmt.Errorf("LLM provider %s needs an API key (llm.api_key) or a base URL (llm.base_url)", settings.Provider)
	}

	switch settings.Provider {
	case domain.LLMProviderOpenAI:
		return createOpenAILLM(settings, prompts)
	case domain.LLMProviderAnthropic:
		return createAnthropicLLM(settings, prompts)
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %q", settings.Provider)
	}
}

// CreateEmbeddingService builds the embedding adapter. Embeddings
// always speak the OpenAI embeddings API; only the endpoint, model and
// key vary.
func CreateEmbeddingService(settings domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	if !settings.IsConfigured() {
		return nil, fmt.Errorf("embedding provider needs an API key (embedding.api_key) or a base URL (embedding.base_url)")
	}

	return openaiembed.NewEmbeddingService(openaiembed.Config{
		APIKey:  apiKeyOrPlaceholder(settings.APIKey),
		BaseURL: settings.BaseURL,
		Model:   settings.Model,
	})
}

// CreateAndValidateLLMService builds the LLM adapter and confirms the
// provider is reachable before handing it back.
func CreateAndValidateLLMService(settings domain.LLMSettings, prompts driven.PromptStore) (driven.LLMService, error) {
	svc, err := CreateLLMService(settings, prompts)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()

	if err := svc.Ping(ctx); err != nil {
		svc.Close()
		return nil, fmt.Errorf("%w: %s is unreachable: %v", domain.ErrLLMService, settings.Provider, err)
	}
	return svc, nil
}

// CreateAndValidateEmbeddingService builds the embedding adapter and
// confirms the provider is reachable before handing it back.
func CreateAndValidateEmbeddingService(settings domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	svc, err := CreateEmbeddingService(settings)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()

	if err := svc.Ping(ctx); err != nil {
		svc.Close()
		return nil, fmt.Errorf("%w: embedding endpoint is unreachable: %v", domain.ErrEmbeddingService, err)
	}
	return svc, nil
}

// ValidateLLMConfig checks credentials by building a throwaway service
// and pinging the provider. Used when credentials are first saved.
func ValidateLLMConfig(settings domain.LLMSettings) error {
	svc, err := CreateLLMService(settings, nil)
	if err != nil {
		return err
	}
	defer svc.Close()

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	return svc.Ping(ctx)
}

// ValidateEmbeddingConfig checks embedding credentials by building a
// throwaway service and pinging the provider.
func ValidateEmbeddingConfig(settings domain.EmbeddingSettings) error {
	svc, err := CreateEmbeddingService(settings)
	if err != nil {
		return err
	}
	defer svc.Close()

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	return svc.Ping(ctx)
}

func createOpenAILLM(settings domain.LLMSettings, prompts driven.PromptStore) (driven.LLMService, error) {
	svc, err := openaillm.NewLLMService(openaillm.Config{
		APIKey:  apiKeyOrPlaceholder(settings.APIKey),
		BaseURL: settings.BaseURL,
		Model:   settings.Model,
	})
	if err != nil {
		return nil, err
	}
	if prompts != nil {
		svc.SetPromptStore(prompts)
	}
	return svc, nil
}

func createAnthropicLLM(settings domain.LLMSettings, prompts driven.PromptStore) (driven.LLMService, error) {
	svc, err := anthropicllm.NewLLMService(anthropicllm.Config{
		APIKey:  apiKeyOrPlaceholder(settings.APIKey),
		BaseURL: settings.BaseURL,
		Model:   settings.Model,
	})
	if err != nil {
		return nil, err
	}
	if prompts != nil {
		svc.SetPromptStore(prompts)
	}
	return svc, nil
}

func apiKeyOrPlaceholder(key string) string {
	if key == "" {
		return placeholderKey
	}
	return key
}
