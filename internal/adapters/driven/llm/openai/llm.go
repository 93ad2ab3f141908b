// Package openai provides an LLM service adapter using the OpenAI API.
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/veritas-labs/counsel/internal/adapters/driven/ratelimit"
	"github.com/veritas-labs/counsel/internal/backoff"
	"github.com/veritas-labs/counsel/internal/core/domain"
	"github.com/veritas-labs/counsel/internal/core/ports/driven"
)

// Ensure LLMService implements the interface.
var _ driven.LLMService = (*LLMService)(nil)

// Default configuration values.
const (
	DefaultBaseURL    = "https://api.openai.com/v1"
	DefaultModel      = "gpt-4o-mini"
	DefaultTimeout    = 120 * time.Second
	DefaultMaxRetries = 3
	DefaultRetryDelay = time.Second
)

// Config holds configuration for the OpenAI LLM service.
type Config struct {
	// APIKey is the OpenAI API key (required).
	APIKey string

	// BaseURL is the API base URL (default: https://api.openai.com/v1).
	// Can be changed for Azure OpenAI or compatible APIs.
	BaseURL string

	// Model is the LLM model to use (default: gpt-4o-mini).
	Model string

	// Timeout is the request timeout (default: 120s).
	Timeout time.Duration

	// MaxRetries is the number of retries for transient failures (default: 3).
	MaxRetries int

	// RetryDelay is the base delay for exponential backoff (default: 1s).
	RetryDelay time.Duration

	// RequestsPerSecond throttles outbound calls (default: 5/s, burst 10).
	RequestsPerSecond float64
}

// LLMService provides LLM operations using the OpenAI API.
type LLMService struct {
	client      *http.Client
	limiter     *ratelimit.Limiter
	baseURL     string
	apiKey      string
	model       string
	maxRetries  int
	retryDelay  time.Duration
	promptStore driven.PromptStore
}

// chatCompletionRequest is the OpenAI /chat/completions request format.
type chatCompletionRequest struct {
	Model       string              `json:"model"`
	Messages    []chatCompletionMsg `json:"messages"`
	MaxTokens   int                 `json:"max_tokens,omitempty"`
	Temperature float64             `json:"temperature,omitempty"`
}

// chatCompletionMsg is the OpenAI chat message format.
type chatCompletionMsg struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// chatCompletionResponse is the OpenAI /chat/completions response format.
type chatCompletionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

// NewLLMService creates a new OpenAI LLM service.
func NewLLMService(cfg Config) (*LLMService, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai: API key is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = DefaultMaxRetries
	}
	if cfg.RetryDelay == 0 {
		cfg.RetryDelay = DefaultRetryDelay
	}

	return &LLMService{
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		limiter:    ratelimit.New(ratelimit.Config{RequestsPerSecond: cfg.RequestsPerSecond}),
		baseURL:    cfg.BaseURL,
		apiKey:     cfg.APIKey,
		model:      cfg.Model,
		maxRetries: cfg.MaxRetries,
		retryDelay: cfg.RetryDelay,
	}, nil
}

// Generate produces text completion from a prompt.
func (s *LLMService) Generate(ctx context.Context, prompt string, opts driven.GenerateOptions) (string, error) {
	var messages []driven.ChatMessage
	if opts.SystemPrompt != "" {
		messages = append(messages, driven.ChatMessage{Role: "system", Content: opts.SystemPrompt})
	}
	messages = append(messages, driven.ChatMessage{Role: "user", Content: prompt})

	return s.chatCompletion(ctx, messages, driven.ChatOptions{
		MaxTokens:   opts.MaxTokens,
		Temperature: opts.Temperature,
	})
}

// Chat conducts a multi-turn conversation.
func (s *LLMService) Chat(ctx context.Context, messages []driven.ChatMessage, opts driven.ChatOptions) (string, error) {
	return s.chatCompletion(ctx, messages, opts)
}

// chatCompletion is the internal implementation for both Generate and Chat.
// Rate limits and server errors are retried with exponential backoff;
// malformed responses and client errors are not.
func (s *LLMService) chatCompletion(ctx context.Context, messages []driven.ChatMessage, opts driven.ChatOptions) (string, error) {
	var lastErr error
	for attempt := 0; attempt <= s.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(backoff.Delay(s.retryDelay, attempt)):
			}
		}

		if err := s.limiter.Wait(ctx); err != nil {
			return "", err
		}

		result, retryable, err := s.chatCompletionOnce(ctx, messages, opts)
		if err == nil {
			return result, nil
		}
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		lastErr = err
		if !retryable {
			break
		}
	}
	return "", lastErr
}

// chatCompletionOnce performs a single chat completions API call.
func (s *LLMService) chatCompletionOnce(ctx context.Context, messages []driven.ChatMessage, opts driven.ChatOptions) (string, bool, error) {
	chatMessages := make([]chatCompletionMsg, len(messages))
	for i, msg := range messages {
		chatMessages[i] = chatCompletionMsg{
			Role:    msg.Role,
			Content: msg.Content,
		}
	}

	reqBody := chatCompletionRequest{
		Model:    s.model,
		Messages: chatMessages,
	}
	if opts.MaxTokens > 0 {
		reqBody.MaxTokens = opts.MaxTokens
	}
	if opts.Temperature > 0 {
		reqBody.Temperature = opts.Temperature
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return "", false, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		s.baseURL+"/chat/completions",
		bytes.NewReader(jsonBody),
	)
	if err != nil {
		return "", false, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return "", true, fmt.Errorf("%w: %v", domain.ErrLLMService, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", true, fmt.Errorf("%w: reading response: %v", domain.ErrLLMService, err)
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		retryAfter, _ := strconv.Atoi(resp.Header.Get("Retry-After"))
		s.limiter.RecordRateLimitError(retryAfter)
		return "", true, fmt.Errorf("%w: rate limited (status 429)", domain.ErrLLMService)
	}
	if resp.StatusCode >= http.StatusInternalServerError {
		return "", true, fmt.Errorf("%w: status %d: %s", domain.ErrLLMService, resp.StatusCode, string(body))
	}

	var chatResp chatCompletionResponse
	if err := json.Unmarshal(body, &chatResp); err != nil {
		return "", false, fmt.Errorf("%w: decoding response: %v", domain.ErrUnexpectedResponse, err)
	}

	if chatResp.Error != nil {
		return "", false, fmt.Errorf("%w: %s", domain.ErrLLMService, chatResp.Error.Message)
	}
	if resp.StatusCode != http.StatusOK {
		return "", false, fmt.Errorf("%w: status %d: %s", domain.ErrLLMService, resp.StatusCode, string(body))
	}

	if len(chatResp.Choices) == 0 {
		return "", false, fmt.Errorf("%w: no response choices returned", domain.ErrUnexpectedResponse)
	}

	return chatResp.Choices[0].Message.Content, false, nil
}

// defaultSummarisePrompt is the fallback prompt when no PromptStore is configured.
const defaultSummarisePrompt = `Summarise the following document in %d characters or less.
Preserve key parties, dates, obligations and holdings. Be concise.

Content:
%s

Summary:`

// Summarise creates a summary of document content.
func (s *LLMService) Summarise(ctx context.Context, content string, maxLength int) (string, error) {
	promptTemplate := s.loadPrompt(driven.PromptSummarise, defaultSummarisePrompt)
	prompt := fmt.Sprintf(promptTemplate, maxLength, content)

	result, err := s.Generate(ctx, prompt, driven.GenerateOptions{
		MaxTokens:   maxLength / 4, // Rough estimate: 4 chars per token
		Temperature: 0.3,
	})
	if err != nil {
		return "", fmt.Errorf("summarise: %w", err)
	}

	return strings.TrimSpace(result), nil
}

// loadPrompt loads a prompt from the store, falling back to the default if unavailable.
func (s *LLMService) loadPrompt(name, fallback string) string {
	if s.promptStore == nil {
		return fallback
	}
	prompt, err := s.promptStore.Load(name)
	if err != nil {
		return fallback
	}
	return prompt
}

// ModelName returns the name of the LLM model being used.
func (s *LLMService) ModelName() string {
	return s.model
}

// SetPromptStore sets the prompt store for loading customisable prompts.
// If not set, the service uses hardcoded default prompts.
func (s *LLMService) SetPromptStore(store driven.PromptStore) {
	s.promptStore = store
}

// Ping validates the service is reachable by checking the /models endpoint.
// This is a lightweight check that validates the API key without running inference.
func (s *LLMService) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/models", http.NoBody)
	if err != nil {
		return fmt.Errorf("openai: failed to create ping request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("openai: ping failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("openai: API returned status %d (failed to read body: %w)", resp.StatusCode, err)
		}
		return fmt.Errorf("openai: API returned status %d: %s", resp.StatusCode, string(body))
	}
	return nil
}

// Close releases resources.
func (s *LLMService) Close() error {
	// HTTP client doesn't need explicit cleanup
	return nil
}
