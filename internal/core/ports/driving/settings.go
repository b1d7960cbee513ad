package driving

import "github.com/custodia-labs/lexcheck/internal/core/domain"

// SettingsService reads and updates lexcheck configuration.
type SettingsService interface {
	Get() (*domain.AppSettings, error)
	GetDefaults() domain.AppSettings
	Save(settings *domain.AppSettings) error

	// Path locates the settings file, or ":memory:" under --no-config.
	Path() string

	// The provider setters fill in the default model and base URL.
	SetLLMProvider(provider domain.AIProvider, model, apiKey string) error
	SetEmbeddingProvider(provider domain.AIProvider, model, apiKey string) error

	// Validate checks constraints offline. The Validate*Config methods
	// contact the configured provider.
	Validate() error
	ValidateLLMConfig() error
	ValidateEmbeddingConfig() error
}
