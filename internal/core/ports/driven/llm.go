package driven

import "context"

// LLMService answers a single prompt. Classification, document matching
// and issue detection differ only in prompt and options.
type LLMService interface {
	Generate(ctx context.Context, prompt string, opts GenerateOptions) (string, error)
	ModelName() string

	// Ping checks reachability and credentials without generating text.
	Ping(ctx context.Context) error
	Close() error
}

// HTTPStatusError is implemented by provider errors that carry the HTTP
// status of the rejected request.
type HTTPStatusError interface {
	error
	HTTPStatus() int
}

// GenerateOptions configures text generation behaviour.
type GenerateOptions struct {
	// MaxTokens is the maximum number of tokens to generate.
	MaxTokens int

	// Temperature controls randomness (0.0 = deterministic, 1.0 = creative).
	// Zero means the provider default unless Deterministic is set.
	Temperature float64

	// Deterministic forces temperature 0 for yes/no style queries.
	Deterministic bool

	// StopWords are sequences that stop generation when encountered.
	StopWords []string

	// JSONOutput asks the provider for a JSON response where supported.
	JSONOutput bool

	// ResponseSchema optionally constrains JSON output (JSON Schema as a map).
	ResponseSchema map[string]any
}

// EffectiveTemperature returns the temperature to send and whether to send it.
func (o GenerateOptions) EffectiveTemperature() (float64, bool) {
	if o.Deterministic {
		return 0, true
	}
	if o.Temperature > 0 {
		return o.Temperature, true
	}
	return 0, false
}
