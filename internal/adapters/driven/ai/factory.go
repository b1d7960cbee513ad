// Package ai builds LLM and embedding adapters from settings and checks
// that the configured providers answer.
package ai

import (
	"context"
	"fmt"
	"time"

	geminiembed "github.com/custodia-labs/lexcheck/internal/adapters/driven/embedding/gemini"
	ollamaembed "github.com/custodia-labs/lexcheck/internal/adapters/driven/embedding/ollama"
	openaiembed "github.com/custodia-labs/lexcheck/internal/adapters/driven/embedding/openai"
	anthropicllm "github.com/custodia-labs/lexcheck/internal/adapters/driven/llm/anthropic"
	geminillm "github.com/custodia-labs/lexcheck/internal/adapters/driven/llm/gemini"
	ollamallm "github.com/custodia-labs/lexcheck/internal/adapters/driven/llm/ollama"
	openaillm "github.com/custodia-labs/lexcheck/internal/adapters/driven/llm/openai"
	"github.com/custodia-labs/lexcheck/internal/core/domain"
	"github.com/custodia-labs/lexcheck/internal/core/ports/driven"
)

const pingTimeout = 5 * time.Second

// configHint is appended to initialisation errors.
const configHint = "check the [llm] and [embedding] sections of config.toml"

// Services holds the AI services used by a run.
type Services struct {
	Embedding driven.EmbeddingService // Nil when no embedding provider is configured.
	LLM       driven.LLMService
}

// Close releases whichever services were opened.
func (s *Services) Close() {
	if s.Embedding != nil {
		_ = s.Embedding.Close()
	}
	if s.LLM != nil {
		_ = s.LLM.Close()
	}
}

// CreateAndValidateEmbeddingService creates an embedding service and pings it.
// An unconfigured provider yields nil and no error: embeddings are optional.
func CreateAndValidateEmbeddingService(settings *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, nil
	}
	svc, err := CreateEmbeddingService(settings)
	return openReachable(svc, err, domain.ErrEmbeddingUnavailable)
}

// CreateAndValidateLLMService creates an LLM service and pings it.
func CreateAndValidateLLMService(settings *domain.LLMSettings) (driven.LLMService, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, fmt.Errorf("%w: no provider configured; %s", domain.ErrLLMUnavailable, configHint)
	}
	svc, err := CreateLLMService(settings)
	return openReachable(svc, err, domain.ErrLLMUnavailable)
}

// openReachable returns svc once it answers a ping. On failure svc is closed
// and the error is wrapped in unavailable.
func openReachable[S pingCloser](svc S, err error, unavailable error) (S, error) {
	var zero S
	if err != nil {
		return zero, fmt.Errorf("%w: %w; %s", unavailable, err, configHint)
	}

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	if err := svc.Ping(ctx); err != nil {
		_ = svc.Close()
		return zero, fmt.Errorf("%w: service unreachable (%w); %s", unavailable, err, configHint)
	}
	return svc, nil
}

// CreateEmbeddingService creates the appropriate embedding service based on settings.
func CreateEmbeddingService(settings *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, fmt.Errorf("embedding provider is not configured")
	}

	dimensions := domain.EmbeddingDimensions()[settings.Model]

	switch settings.Provider {
	case domain.AIProviderOllama:
		return ollamaembed.NewEmbeddingService(ollamaembed.Config{
			BaseURL:    settings.BaseURL,
			Model:      settings.Model,
			Dimensions: dimensions,
		}), nil

	case domain.AIProviderOpenAI:
		return openaiembed.NewEmbeddingService(openaiembed.Config{
			APIKey:     settings.APIKey,
			BaseURL:    settings.BaseURL,
			Model:      settings.Model,
			Dimensions: dimensions,
		})

	case domain.AIProviderGemini:
		return geminiembed.NewEmbeddingService(context.Background(), geminiembed.Config{
			APIKey:     settings.APIKey,
			BaseURL:    settings.BaseURL,
			Model:      settings.Model,
			Dimensions: dimensions,
		})

	case domain.AIProviderAnthropic:
		return nil, fmt.Errorf("anthropic does not support embeddings, use ollama, openai or gemini")

	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", settings.Provider)
	}
}

// CreateLLMService creates the appropriate LLM service based on settings.
func CreateLLMService(settings *domain.LLMSettings) (driven.LLMService, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, fmt.Errorf("llm provider is not configured")
	}

	switch settings.Provider {
	case domain.AIProviderOllama:
		return ollamallm.NewLLMService(ollamallm.LLMConfig{
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		}), nil

	case domain.AIProviderOpenAI:
		return openaillm.NewLLMService(openaillm.LLMConfig{
			APIKey:  settings.APIKey,
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		})

	case domain.AIProviderAnthropic:
		return anthropicllm.NewLLMService(anthropicllm.Config{
			APIKey:  settings.APIKey,
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		})

	case domain.AIProviderGemini:
		return geminillm.NewLLMService(context.Background(), geminillm.Config{
			APIKey:  settings.APIKey,
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		})

	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", settings.Provider)
	}
}
