package services

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/lexcheck/internal/core/domain"
	"github.com/custodia-labs/lexcheck/internal/core/ports/driven"
)

func newTestCaller(llm driven.LLMService, cfg ModelCallerConfig) (*ModelCaller, *[]time.Duration) {
	var sleeps []time.Duration
	c := NewModelCaller(llm, cfg)
	c.sleep = func(_ context.Context, d time.Duration) error {
		sleeps = append(sleeps, d)
		return nil
	}
	return c, &sleeps
}

func TestModelCaller_Success(t *testing.T) {
	llm := &mockLLM{respond: func(string, driven.GenerateOptions) (string, error) { return "ok", nil }}
	c, sleeps := newTestCaller(llm, ModelCallerConfig{Retry: DefaultRetryConfig()})

	resp, err := c.Generate(context.Background(), "hi", driven.GenerateOptions{})

	require.NoError(t, err)
	assert.Equal(t, "ok", resp)
	assert.Equal(t, 1, llm.calls())
	assert.Empty(t, *sleeps)
	assert.Equal(t, "mock-llm", c.ModelName())
}

func TestModelCaller_RetriesThenSucceeds(t *testing.T) {
	attempts := 0
	llm := &mockLLM{respond: func(string, driven.GenerateOptions) (string, error) {
		attempts++
		if attempts < 3 {
			return "", errors.New("temporary failure")
		}
		return "done", nil
	}}
	c, sleeps := newTestCaller(llm, ModelCallerConfig{Retry: RetryConfig{
		MaxRetries: 3, InitialBackoff: time.Second, MaxBackoff: time.Minute, BackoffMultiplier: 2,
	}})

	resp, err := c.Generate(context.Background(), "hi", driven.GenerateOptions{})

	require.NoError(t, err)
	assert.Equal(t, "done", resp)
	assert.Equal(t, 3, llm.calls())
	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second}, *sleeps)
}

func TestModelCaller_ExhaustsRetries(t *testing.T) {
	boom := errors.New("boom")
	llm := &mockLLM{respond: func(string, driven.GenerateOptions) (string, error) { return "", boom }}
	c, _ := newTestCaller(llm, ModelCallerConfig{Retry: RetryConfig{MaxRetries: 2, BackoffMultiplier: 2}})

	_, err := c.Generate(context.Background(), "hi", driven.GenerateOptions{})

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrLLMUnavailable)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 3, llm.calls())
}

func TestModelCaller_RejectedRequestFailsFast(t *testing.T) {
	llm := &mockLLM{respond: func(string, driven.GenerateOptions) (string, error) {
		return "", httpStatusErr(http.StatusUnauthorized)
	}}
	c, sleeps := newTestCaller(llm, ModelCallerConfig{Retry: DefaultRetryConfig()})

	_, err := c.Generate(context.Background(), "hi", driven.GenerateOptions{})

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrLLMUnavailable)
	assert.Contains(t, err.Error(), "1 attempts")
	assert.Equal(t, 1, llm.calls())
	assert.Empty(t, *sleeps)
}

func TestModelCaller_RetriesServerErrors(t *testing.T) {
	llm := &mockLLM{respond: func(string, driven.GenerateOptions) (string, error) {
		return "", httpStatusErr(http.StatusServiceUnavailable)
	}}
	c, sleeps := newTestCaller(llm, ModelCallerConfig{Retry: RetryConfig{MaxRetries: 2, BackoffMultiplier: 2}})

	_, err := c.Generate(context.Background(), "hi", driven.GenerateOptions{})

	require.Error(t, err)
	assert.Equal(t, 3, llm.calls())
	assert.Len(t, *sleeps, 2)
}

func TestModelCaller_HonoursProviderRetryDelay(t *testing.T) {
	calls := 0
	llm := &mockLLM{respond: func(string, driven.GenerateOptions) (string, error) {
		calls++
		if calls == 1 {
			return "", errors.New("Error 429: Please retry in 2s")
		}
		return "ok", nil
	}}
	c, sleeps := newTestCaller(llm, ModelCallerConfig{Retry: RetryConfig{
		MaxRetries: 1, InitialBackoff: 100 * time.Millisecond, MaxBackoff: time.Minute, BackoffMultiplier: 2,
	}})

	_, err := c.Generate(context.Background(), "hi", driven.GenerateOptions{})

	require.NoError(t, err)
	assert.Equal(t, []time.Duration{3 * time.Second}, *sleeps)
}

func TestModelCaller_PerAttemptTimeout(t *testing.T) {
	llm := &mockLLM{}
	blocking := &blockingLLM{mockLLM: llm}
	c, _ := newTestCaller(blocking, ModelCallerConfig{Timeout: 10 * time.Millisecond})

	_, err := c.Generate(context.Background(), "hi", driven.GenerateOptions{})

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrLLMUnavailable)
	assert.Contains(t, err.Error(), "timed out")
}

func TestModelCaller_ParentCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	llm := &mockLLM{respond: func(string, driven.GenerateOptions) (string, error) { return "ok", nil }}
	c, _ := newTestCaller(llm, ModelCallerConfig{Retry: RetryConfig{MaxRetries: 3}})

	_, err := c.Generate(ctx, "hi", driven.GenerateOptions{})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, llm.calls())
}

func TestModelCaller_NilService(t *testing.T) {
	c := NewModelCaller(nil, ModelCallerConfig{})
	_, err := c.Generate(context.Background(), "hi", driven.GenerateOptions{})
	assert.ErrorIs(t, err, domain.ErrLLMUnavailable)
	assert.Empty(t, c.ModelName())
}

func TestModelCaller_RateLimited(t *testing.T) {
	llm := &mockLLM{respond: func(string, driven.GenerateOptions) (string, error) { return "ok", nil }}
	c := NewModelCaller(llm, ModelCallerConfig{RequestsPerSecond: 1000})
	require.NotNil(t, c.limiter)

	for i := 0; i < 5; i++ {
		_, err := c.Generate(context.Background(), "hi", driven.GenerateOptions{})
		require.NoError(t, err)
	}
	assert.Equal(t, 5, llm.calls())
}

func TestModelCallerConfigFrom(t *testing.T) {
	s := domain.DefaultAnalysisSettings()
	s.MaxRetries = 7
	s.RequestsPerSecond = 2.5

	cfg := ModelCallerConfigFrom(s)

	assert.Equal(t, s.CallTimeout, cfg.Timeout)
	assert.Equal(t, 7, cfg.Retry.MaxRetries)
	assert.Equal(t, 2.5, cfg.RequestsPerSecond)
}

// blockingLLM waits for its context to end.
type blockingLLM struct {
	*mockLLM
}

func (b *blockingLLM) Generate(ctx context.Context, _ string, _ driven.GenerateOptions) (string, error) {
	<-ctx.Done()
	return "", ctx.Err()
}
