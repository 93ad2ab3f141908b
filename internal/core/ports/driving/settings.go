package driving

import (
	"github.com/veritas-labs/counsel/internal/core/domain"
)

// SettingsService manages application settings.
type SettingsService interface {
	// Get retrieves current settings, filling unset keys with defaults.
	Get() (*domain.Settings, error)

	// Save persists settings.
	Save(settings *domain.Settings) error

	// SetLLMProvider configures the LLM provider, falling back to the
	// provider's default model when none is given.
	SetLLMProvider(provider domain.LLMProvider, model, apiKey string) error

	// Validate checks that the configuration can run the pipeline.
	Validate() error

	// GetDefaults returns the default settings.
	GetDefaults() domain.Settings
}
