package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"golang.org/x/time/rate"

	"github.com/custodia-labs/lexcheck/internal/core/domain"
	"github.com/custodia-labs/lexcheck/internal/core/ports/driven"
	"github.com/custodia-labs/lexcheck/internal/logger"
)

// ModelCallerConfig bounds every model call made during analysis.
type ModelCallerConfig struct {
	// Timeout bounds a single attempt. Zero disables the per-attempt timeout.
	Timeout time.Duration

	// Retry controls retries after a failed attempt.
	Retry RetryConfig

	// RequestsPerSecond caps the shared call rate. Zero disables the limit.
	RequestsPerSecond float64
}

// ModelCallerConfigFrom derives the caller configuration from analysis settings.
func ModelCallerConfigFrom(s domain.AnalysisSettings) ModelCallerConfig {
	retry := DefaultRetryConfig()
	retry.MaxRetries = s.MaxRetries
	return ModelCallerConfig{
		Timeout:           s.CallTimeout,
		Retry:             retry,
		RequestsPerSecond: s.RequestsPerSecond,
	}
}

// ModelCaller wraps an LLMService with a per-attempt timeout, bounded
// exponential backoff and a token-bucket rate limit shared by all callers.
// It is safe for concurrent use.
type ModelCaller struct {
	llm     driven.LLMService
	cfg     ModelCallerConfig
	limiter *rate.Limiter
	sleep   func(ctx context.Context, d time.Duration) error
}

// NewModelCaller creates a caller around llm.
func NewModelCaller(llm driven.LLMService, cfg ModelCallerConfig) *ModelCaller {
	c := &ModelCaller{
		llm:   llm,
		cfg:   cfg,
		sleep: sleepContext,
	}
	if cfg.RequestsPerSecond > 0 {
		burst := int(math.Ceil(cfg.RequestsPerSecond))
		c.limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), burst)
	}
	return c
}

// Generate calls the model, retrying attempts that fail transiently.
// The returned error wraps domain.ErrLLMUnavailable and the last failure.
func (c *ModelCaller) Generate(ctx context.Context, prompt string, opts driven.GenerateOptions) (string, error) {
	if c.llm == nil {
		return "", domain.ErrLLMUnavailable
	}

	attempts := c.cfg.Retry.MaxRetries + 1
	made := 0
	var lastErr error

	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			backoff := c.cfg.Retry.CalculateBackoff(attempt-1, 0)
			if IsRateLimitError(lastErr) {
				backoff = c.cfg.Retry.CalculateBackoff(attempt-1, ExtractRetryDelay(lastErr))
			}
			logger.Debug("model call attempt %d/%d failed (%v), retrying in %v", attempt, attempts, lastErr, backoff)
			if err := c.sleep(ctx, backoff); err != nil {
				return "", err
			}
		}

		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return "", err
			}
		}

		made++
		resp, err := c.attempt(ctx, prompt, opts)
		if err == nil {
			return resp, nil
		}
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		lastErr = err
		if !IsRetryable(err) {
			break
		}
	}

	return "", fmt.Errorf("%w: %d attempts: %w", domain.ErrLLMUnavailable, made, lastErr)
}

func (c *ModelCaller) attempt(ctx context.Context, prompt string, opts driven.GenerateOptions) (string, error) {
	if c.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.cfg.Timeout)
		defer cancel()
	}

	resp, err := c.llm.Generate(ctx, prompt, opts)
	if err != nil && errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return "", fmt.Errorf("model call timed out after %v: %w", c.cfg.Timeout, err)
	}
	return resp, err
}

// ModelName returns the wrapped model's name.
func (c *ModelCaller) ModelName() string {
	if c.llm == nil {
		return ""
	}
	return c.llm.ModelName()
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
