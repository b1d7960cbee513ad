package driven

import "github.com/custodia-labs/lexcheck/internal/core/domain"

// AIConfigValidator checks a provider configuration before it is saved.
// Unconfigured settings are not an error.
type AIConfigValidator interface {
	ValidateEmbedding(config *domain.EmbeddingSettings) error
	ValidateLLM(config *domain.LLMSettings) error
}
