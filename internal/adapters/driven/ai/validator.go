package ai

import (
	"context"
	"fmt"
	"time"

	"github.com/custodia-labs/lexcheck/internal/core/domain"
	"github.com/custodia-labs/lexcheck/internal/core/ports/driven"
)

var _ driven.AIConfigValidator = (*ConfigValidator)(nil)

// ConfigValidator checks a provider configuration by building a throwaway
// client and pinging it. Unconfigured settings pass: there is nothing to check.
type ConfigValidator struct {
	timeout time.Duration
}

// NewConfigValidator returns a validator that gives each ping the default
// connectivity timeout.
func NewConfigValidator() *ConfigValidator {
	return &ConfigValidator{timeout: pingTimeout}
}

// WithTimeout overrides the per-ping timeout.
func (v *ConfigValidator) WithTimeout(d time.Duration) *ConfigValidator {
	if d > 0 {
		v.timeout = d
	}
	return v
}

func (v *ConfigValidator) ValidateEmbedding(config *domain.EmbeddingSettings) error {
	if config == nil || !config.IsConfigured() {
		return nil
	}
	svc, err := CreateEmbeddingService(config)
	if err != nil {
		return err
	}
	return v.ping(svc, "embedding", config.Provider)
}

func (v *ConfigValidator) ValidateLLM(config *domain.LLMSettings) error {
	if config == nil || !config.IsConfigured() {
		return nil
	}
	svc, err := CreateLLMService(config)
	if err != nil {
		return err
	}
	return v.ping(svc, "llm", config.Provider)
}

type pingCloser interface {
	Ping(ctx context.Context) error
	Close() error
}

func (v *ConfigValidator) ping(svc pingCloser, kind string, provider domain.AIProvider) error {
	defer svc.Close()

	ctx, cancel := context.WithTimeout(context.Background(), v.timeout)
	defer cancel()
	if err := svc.Ping(ctx); err != nil {
		return fmt.Errorf("%s provider %s unreachable: %w", kind, provider, err)
	}
	return nil
}
