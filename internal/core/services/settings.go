package services

import (
	"cmp"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/custodia-labs/lexcheck/internal/core/domain"
	"github.com/custodia-labs/lexcheck/internal/core/ports/driven"
	"github.com/custodia-labs/lexcheck/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyEmbedProvider     = "embedding.provider"
	keyEmbedModel        = "embedding.model"
	keyEmbedBaseURL      = "embedding.base_url"
	keyEmbedAPIKey       = "embedding.api_key"
	keyLLMProvider       = "llm.provider"
	keyLLMModel          = "llm.model"
	keyLLMBaseURL        = "llm.base_url"
	keyLLMAPIKey         = "llm.api_key"
	keyChunkSize         = "analysis.chunk_size"
	keyChunkOverlap      = "analysis.chunk_overlap"
	keyTopK              = "analysis.top_k"
	keyPrefixChars       = "analysis.prefix_chars"
	keyWorkers           = "analysis.workers"
	keyCallTimeout       = "analysis.call_timeout"
	keyMaxRetries        = "analysis.max_retries"
	keyRequestsPerSecond = "analysis.requests_per_second"
	keyNoIssuePolicy     = "analysis.no_issue_policy"
	keyMissingDocsPolicy = "analysis.missing_docs_policy"
	keyChecklistPath     = "checklist.path"
	keyOutputDir         = "output.dir"
)

// Environment variables that override stored API keys.
//
//nolint:gosec // G101: These are variable names, not credentials.
const (
	EnvLLMAPIKey       = "LEXCHECK_LLM_API_KEY"
	EnvEmbeddingAPIKey = "LEXCHECK_EMBEDDING_API_KEY"
	EnvGeminiAPIKey    = "GEMINI_API_KEY"
	EnvAnthropicAPIKey = "ANTHROPIC_API_KEY"
	EnvOpenAIAPIKey    = "OPENAI_API_KEY"
)

// defaultOllamaURL is the base URL assigned to local providers.
const defaultOllamaURL = "http://localhost:11434"

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
	aiValidator driven.AIConfigValidator
	validate    *validator.Validate
	getenv      func(string) string
}

// NewSettingsService creates a new settings service.
// aiValidator may be nil, in which case connectivity checks are skipped.
func NewSettingsService(configStore driven.ConfigStore, aiValidator driven.AIConfigValidator) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		aiValidator: aiValidator,
		validate:    validator.New(),
		getenv:      os.Getenv,
	}
}

// Get retrieves current application settings.
// API keys from the environment take precedence over stored keys.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	defaults := domain.DefaultAppSettings()
	analysis := defaults.Analysis

	settings := &domain.AppSettings{
		Embedding: domain.EmbeddingSettings{
			Provider: s.getProvider(keyEmbedProvider, defaults.Embedding.Provider),
			Model:    s.getString(keyEmbedModel, defaults.Embedding.Model),
			BaseURL:  s.configStore.String(keyEmbedBaseURL), // empty is valid for cloud providers
			APIKey:   s.configStore.String(keyEmbedAPIKey),
		},
		LLM: domain.LLMSettings{
			Provider: s.getProvider(keyLLMProvider, defaults.LLM.Provider),
			Model:    s.getString(keyLLMModel, defaults.LLM.Model),
			BaseURL:  s.configStore.String(keyLLMBaseURL),
			APIKey:   s.configStore.String(keyLLMAPIKey),
		},
		Analysis: domain.AnalysisSettings{
			ChunkSize:         s.getInt(keyChunkSize, analysis.ChunkSize),
			ChunkOverlap:      s.getIntAllowZero(keyChunkOverlap, analysis.ChunkOverlap),
			TopK:              s.getInt(keyTopK, analysis.TopK),
			PrefixChars:       s.getInt(keyPrefixChars, analysis.PrefixChars),
			Workers:           s.getInt(keyWorkers, analysis.Workers),
			CallTimeout:       s.getDuration(keyCallTimeout, analysis.CallTimeout),
			MaxRetries:        s.getIntAllowZero(keyMaxRetries, analysis.MaxRetries),
			RequestsPerSecond: s.getFloat(keyRequestsPerSecond, analysis.RequestsPerSecond),
			NoIssuePolicy:     domain.NoIssuePolicy(s.getString(keyNoIssuePolicy, analysis.NoIssuePolicy.String())),
			MissingDocsPolicy: domain.MissingDocsPolicy(s.getString(keyMissingDocsPolicy, analysis.MissingDocsPolicy.String())),
		},
		ChecklistPath: s.getString(keyChecklistPath, defaults.ChecklistPath),
		OutputDir:     s.getString(keyOutputDir, defaults.OutputDir),
	}

	s.applyEnv(settings)
	return settings, nil
}

// applyEnv overlays API keys from the environment.
func (s *SettingsService) applyEnv(settings *domain.AppSettings) {
	if key := s.getenv(EnvLLMAPIKey); key != "" {
		settings.LLM.APIKey = key
	} else if settings.LLM.APIKey == "" {
		settings.LLM.APIKey = s.providerEnvKey(settings.LLM.Provider)
	}

	if key := s.getenv(EnvEmbeddingAPIKey); key != "" {
		settings.Embedding.APIKey = key
	} else if settings.Embedding.APIKey == "" {
		settings.Embedding.APIKey = s.providerEnvKey(settings.Embedding.Provider)
	}
}

func (s *SettingsService) providerEnvKey(provider domain.AIProvider) string {
	switch provider {
	case domain.AIProviderGemini:
		return s.getenv(EnvGeminiAPIKey)
	case domain.AIProviderAnthropic:
		return s.getenv(EnvAnthropicAPIKey)
	case domain.AIProviderOpenAI:
		return s.getenv(EnvOpenAIAPIKey)
	default:
		return ""
	}
}

// Save persists application settings in a single store update.
// API keys are written only when set and not supplied by the environment.
func (s *SettingsService) Save(settings *domain.AppSettings) error {
	values := map[string]any{
		keyEmbedProvider:     settings.Embedding.Provider.String(),
		keyEmbedModel:        settings.Embedding.Model,
		keyEmbedBaseURL:      settings.Embedding.BaseURL,
		keyLLMProvider:       settings.LLM.Provider.String(),
		keyLLMModel:          settings.LLM.Model,
		keyLLMBaseURL:        settings.LLM.BaseURL,
		keyChunkSize:         settings.Analysis.ChunkSize,
		keyChunkOverlap:      settings.Analysis.ChunkOverlap,
		keyTopK:              settings.Analysis.TopK,
		keyPrefixChars:       settings.Analysis.PrefixChars,
		keyWorkers:           settings.Analysis.Workers,
		keyCallTimeout:       settings.Analysis.CallTimeout.String(),
		keyMaxRetries:        settings.Analysis.MaxRetries,
		keyRequestsPerSecond: settings.Analysis.RequestsPerSecond,
		keyNoIssuePolicy:     settings.Analysis.NoIssuePolicy.String(),
		keyMissingDocsPolicy: settings.Analysis.MissingDocsPolicy.String(),
		keyChecklistPath:     settings.ChecklistPath,
		keyOutputDir:         settings.OutputDir,
	}
	if settings.Embedding.APIKey != "" && s.getenv(EnvEmbeddingAPIKey) == "" {
		values[keyEmbedAPIKey] = settings.Embedding.APIKey
	}
	if settings.LLM.APIKey != "" && s.getenv(EnvLLMAPIKey) == "" {
		values[keyLLMAPIKey] = settings.LLM.APIKey
	}

	if err := s.configStore.Update(values); err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	return nil
}

// SetEmbeddingProvider switches the knowledge-base embedder. An empty model
// selects the provider default.
func (s *SettingsService) SetEmbeddingProvider(provider domain.AIProvider, model, apiKey string) error {
	if provider.IsValid() && !provider.SupportsEmbeddings() {
		return fmt.Errorf("provider %s does not support embeddings", provider)
	}
	return s.setProvider("embedding", provider, apiKey, func(settings *domain.AppSettings) {
		settings.Embedding = domain.EmbeddingSettings{
			Provider: provider,
			Model:    cmp.Or(model, domain.DefaultEmbeddingModels()[provider]),
			BaseURL:  baseURLFor(provider, settings.Embedding.BaseURL),
			APIKey:   apiKey,
		}
	})
}

// SetLLMProvider switches the analysis model. An empty model selects the
// provider default.
func (s *SettingsService) SetLLMProvider(provider domain.AIProvider, model, apiKey string) error {
	return s.setProvider("LLM", provider, apiKey, func(settings *domain.AppSettings) {
		settings.LLM = domain.LLMSettings{
			Provider: provider,
			Model:    cmp.Or(model, domain.DefaultLLMModels()[provider]),
			BaseURL:  baseURLFor(provider, settings.LLM.BaseURL),
			APIKey:   apiKey,
		}
	})
}

func (s *SettingsService) setProvider(kind string, provider domain.AIProvider, apiKey string, apply func(*domain.AppSettings)) error {
	if !provider.IsValid() {
		return fmt.Errorf("invalid %s provider: %s", kind, provider)
	}
	if provider.RequiresAPIKey() && apiKey == "" {
		return fmt.Errorf("API key required for %s", provider)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}
	apply(settings)
	return s.Save(settings)
}

// baseURLFor keeps a local provider's URL (defaulting it) and clears it for
// cloud providers.
func baseURLFor(provider domain.AIProvider, current string) string {
	if !provider.IsLocal() {
		return ""
	}
	if current == "" {
		return defaultOllamaURL
	}
	return current
}

// Validate checks the current settings against their constraints.
// An unconfigured LLM is an error because every analysis step needs one.
func (s *SettingsService) Validate() error {
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.ValidateSettings(settings)
}

// ValidateSettings checks settings without reading the store.
func (s *SettingsService) ValidateSettings(settings *domain.AppSettings) error {
	if err := s.validate.Struct(settings); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("%w: %s fails %q (value %v)", domain.ErrInvalidInput, fe.Namespace(), fe.Tag(), fe.Value())
		}
		return fmt.Errorf("%w: %w", domain.ErrInvalidInput, err)
	}

	if !settings.LLM.IsConfigured() {
		return fmt.Errorf("%w: llm provider is not configured", domain.ErrLLMUnavailable)
	}
	return nil
}

// Path returns where settings are stored.
func (s *SettingsService) Path() string {
	return s.configStore.Path()
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

// ValidateEmbeddingConfig validates the current embedding configuration by pinging the provider.
func (s *SettingsService) ValidateEmbeddingConfig() error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateEmbedding(&settings.Embedding)
}

// ValidateLLMConfig validates the current LLM configuration by pinging the provider.
func (s *SettingsService) ValidateLLMConfig() error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateLLM(&settings.LLM)
}

// Helper methods for reading config with defaults.

func (s *SettingsService) getString(key, defaultVal string) string {
	if val := s.configStore.String(key); val != "" {
		return val
	}
	return defaultVal
}

// getInt treats 0 as unset.
func (s *SettingsService) getInt(key string, defaultVal int) int {
	if val, ok := s.configStore.Int(key); ok && val != 0 {
		return val
	}
	return defaultVal
}

// getIntAllowZero distinguishes an explicit 0 from a missing key.
func (s *SettingsService) getIntAllowZero(key string, defaultVal int) int {
	if val, ok := s.configStore.Int(key); ok {
		return val
	}
	return defaultVal
}

func (s *SettingsService) getFloat(key string, defaultVal float64) float64 {
	if val, ok := s.configStore.Float(key); ok {
		return val
	}
	return defaultVal
}

func (s *SettingsService) getDuration(key string, defaultVal time.Duration) time.Duration {
	if d, ok := s.configStore.Duration(key); ok && d > 0 {
		return d
	}
	return defaultVal
}

func (s *SettingsService) getProvider(key string, defaultVal domain.AIProvider) domain.AIProvider {
	provider := domain.AIProvider(s.configStore.String(key))
	if !provider.IsValid() {
		return defaultVal
	}
	return provider
}
