// Package ollama generates text with a local Ollama server.
package ollama

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/custodia-labs/lexcheck/internal/adapters/driven/httpjson"
	"github.com/custodia-labs/lexcheck/internal/core/ports/driven"
)

var _ driven.LLMService = (*LLMService)(nil)

const (
	DefaultBaseURL    = "http://localhost:11434"
	DefaultLLMModel   = "llama3.2"
	DefaultLLMTimeout = 120 * time.Second
)

// LLMConfig configures the client; every field has a default.
type LLMConfig struct {
	BaseURL string
	Model   string
	Timeout time.Duration
}

// LLMService runs non-streaming /api/generate calls.
type LLMService struct {
	api   *httpjson.Client
	model string
}

type generateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
	// Format is "json" or a JSON schema object.
	Format  any             `json:"format,omitempty"`
	Options *sampleSettings `json:"options,omitempty"`
}

type sampleSettings struct {
	NumPredict  int      `json:"num_predict,omitempty"`
	Temperature *float64 `json:"temperature,omitempty"`
	Stop        []string `json:"stop,omitempty"`
}

type generateResponse struct {
	Response string `json:"response"`
	Error    string `json:"error,omitempty"`
}

func NewLLMService(cfg LLMConfig) *LLMService {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultLLMModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultLLMTimeout
	}
	return &LLMService{api: NewClient(cfg.BaseURL, cfg.Timeout), model: cfg.Model}
}

// NewClient returns an API client that understands Ollama's {"error": "..."}
// bodies. The embedding adapter shares it.
func NewClient(baseURL string, timeout time.Duration) *httpjson.Client {
	return httpjson.New("ollama", baseURL, timeout, httpjson.WithErrorMessage(func(body []byte) string {
		var e struct {
			Error string `json:"error"`
		}
		_ = json.Unmarshal(body, &e)
		return e.Error
	}))
}

func (s *LLMService) Generate(ctx context.Context, prompt string, opts driven.GenerateOptions) (string, error) {
	req := generateRequest{Model: s.model, Prompt: prompt}
	if opts.JSONOutput {
		req.Format = "json"
		if opts.ResponseSchema != nil {
			req.Format = opts.ResponseSchema
		}
	}

	temp, hasTemp := opts.EffectiveTemperature()
	if opts.MaxTokens > 0 || hasTemp || len(opts.StopWords) > 0 {
		req.Options = &sampleSettings{NumPredict: opts.MaxTokens, Stop: opts.StopWords}
		if hasTemp {
			req.Options.Temperature = &temp
		}
	}

	var resp generateResponse
	if err := s.api.Post(ctx, "/api/generate", req, &resp); err != nil {
		return "", err
	}
	if resp.Error != "" {
		return "", errors.New("ollama error: " + resp.Error)
	}
	return resp.Response, nil
}

func (s *LLMService) ModelName() string {
	return s.model
}

// Ping lists local models, which needs no inference.
func (s *LLMService) Ping(ctx context.Context) error {
	return s.api.Get(ctx, "/api/tags", nil)
}

func (s *LLMService) Close() error {
	return nil
}
