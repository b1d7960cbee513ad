package domain

import "time"

// AIProvider names a model vendor used for the LLM or for embeddings.
type AIProvider string

const (
	AIProviderOllama    AIProvider = "ollama"
	AIProviderOpenAI    AIProvider = "openai"
	AIProviderAnthropic AIProvider = "anthropic"
	AIProviderGemini    AIProvider = "gemini"
)

// providerInfo describes what a vendor offers. An empty embedModel means the
// vendor has no embedding API.
type providerInfo struct {
	label      string
	local      bool
	llmModel   string
	embedModel string
}

// providerOrder is the order providers are offered in menus.
var providerOrder = []AIProvider{AIProviderOllama, AIProviderOpenAI, AIProviderAnthropic, AIProviderGemini}

var providers = map[AIProvider]providerInfo{
	AIProviderOllama:    {label: "Ollama (local)", local: true, llmModel: "llama3.2", embedModel: "all-minilm"},
	AIProviderOpenAI:    {label: "OpenAI (cloud)", llmModel: "gpt-4o-mini", embedModel: "text-embedding-3-small"},
	AIProviderAnthropic: {label: "Anthropic (cloud)", llmModel: "claude-3-5-sonnet-latest"},
	AIProviderGemini:    {label: "Google Gemini (cloud)", llmModel: "gemini-2.5-flash", embedModel: "gemini-embedding-001"},
}

func (p AIProvider) IsValid() bool {
	_, ok := providers[p]
	return ok
}

// RequiresAPIKey is true for every hosted vendor.
func (p AIProvider) RequiresAPIKey() bool {
	info, ok := providers[p]
	return ok && !info.local
}

func (p AIProvider) IsLocal() bool {
	return providers[p].local
}

// SupportsEmbeddings reports whether the vendor can back the knowledge base.
func (p AIProvider) SupportsEmbeddings() bool {
	return providers[p].embedModel != ""
}

func (p AIProvider) String() string {
	return string(p)
}

// Description is the menu label, "Unknown" for unrecognised values.
func (p AIProvider) Description() string {
	if info, ok := providers[p]; ok {
		return info.label
	}
	return "Unknown"
}

// EmbeddingSettings holds embedding provider configuration.
type EmbeddingSettings struct {
	// Provider is the embedding service provider.
	Provider AIProvider `validate:"omitempty,oneof=ollama openai gemini"`

	// Model is the embedding model name.
	Model string

	// BaseURL is the API endpoint (for Ollama, or an OpenAI-compatible server).
	BaseURL string `validate:"omitempty,url"`

	// APIKey is the API key (for OpenAI/Gemini).
	APIKey string
}

// IsConfigured returns true if the embedding provider is set up.
func (e EmbeddingSettings) IsConfigured() bool {
	if !e.Provider.IsValid() {
		return false
	}
	if e.Provider.RequiresAPIKey() && e.APIKey == "" {
		return false
	}
	return true
}

// LLMSettings holds LLM provider configuration.
type LLMSettings struct {
	// Provider is the LLM service provider.
	Provider AIProvider `validate:"omitempty,oneof=ollama openai anthropic gemini"`

	// Model is the LLM model name.
	Model string

	// BaseURL is the API endpoint (for Ollama).
	BaseURL string `validate:"omitempty,url"`

	// APIKey is the API key (for OpenAI/Anthropic/Gemini).
	APIKey string
}

// IsConfigured returns true if the LLM provider is set up.
func (l LLMSettings) IsConfigured() bool {
	if !l.Provider.IsValid() {
		return false
	}
	if l.Provider.RequiresAPIKey() && l.APIKey == "" {
		return false
	}
	return true
}

// AnalysisSettings tunes the analysis pipeline.
type AnalysisSettings struct {
	// ChunkSize is the target chunk length in characters.
	ChunkSize int `validate:"gte=100,lte=20000"`

	// ChunkOverlap is the overlap between consecutive chunks in characters.
	ChunkOverlap int `validate:"gte=0,ltfield=ChunkSize"`

	// TopK is the number of grounding passages retrieved per chunk.
	TopK int `validate:"gte=1,lte=50"`

	// PrefixChars bounds the text sent for process classification.
	PrefixChars int `validate:"gte=100"`

	// Workers bounds concurrent model calls.
	Workers int `validate:"gte=1,lte=64"`

	// CallTimeout bounds a single model call attempt.
	CallTimeout time.Duration `validate:"gt=0"`

	// MaxRetries is the number of retries after a failed model call.
	MaxRetries int `validate:"gte=0,lte=10"`

	// RequestsPerSecond caps the model call rate; 0 disables the limit.
	RequestsPerSecond float64 `validate:"gte=0"`

	// NoIssuePolicy decides what a no-issue sentinel means for the run.
	NoIssuePolicy NoIssuePolicy `validate:"oneof=halt_run per_chunk"`

	// MissingDocsPolicy decides how missing documents are computed.
	MissingDocsPolicy MissingDocsPolicy `validate:"oneof=semantic exact"`
}

// AppSettings holds all application settings.
type AppSettings struct {
	// Embedding holds embedding provider settings.
	Embedding EmbeddingSettings

	// LLM holds LLM provider settings.
	LLM LLMSettings

	// Analysis holds pipeline tuning.
	Analysis AnalysisSettings

	// ChecklistPath is the default checklist file.
	ChecklistPath string

	// OutputDir is the default output directory.
	OutputDir string
}

// DefaultAnalysisSettings returns the pipeline defaults.
func DefaultAnalysisSettings() AnalysisSettings {
	return AnalysisSettings{
		ChunkSize:         1000,
		ChunkOverlap:      200,
		TopK:              5,
		PrefixChars:       2000,
		Workers:           4,
		CallTimeout:       60 * time.Second,
		MaxRetries:        3,
		RequestsPerSecond: 0,
		NoIssuePolicy:     NoIssueHaltRun,
		MissingDocsPolicy: MissingDocsSemantic,
	}
}

// DefaultAppSettings returns settings with sensible defaults.
// AI providers are left unconfigured; they must be set in config.toml.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		Embedding: EmbeddingSettings{},
		LLM:       LLMSettings{},
		Analysis:  DefaultAnalysisSettings(),
		OutputDir: "output",
	}
}

// AllEmbeddingProviders lists vendors with an embedding API, in menu order.
func AllEmbeddingProviders() []AIProvider {
	var out []AIProvider
	for _, p := range providerOrder {
		if p.SupportsEmbeddings() {
			out = append(out, p)
		}
	}
	return out
}

// AllLLMProviders lists every vendor in menu order.
func AllLLMProviders() []AIProvider {
	out := make([]AIProvider, len(providerOrder))
	copy(out, providerOrder)
	return out
}

func DefaultEmbeddingModels() map[AIProvider]string {
	out := make(map[AIProvider]string)
	for p, info := range providers {
		if info.embedModel != "" {
			out[p] = info.embedModel
		}
	}
	return out
}

func DefaultLLMModels() map[AIProvider]string {
	out := make(map[AIProvider]string, len(providers))
	for p, info := range providers {
		out[p] = info.llmModel
	}
	return out
}

// EmbeddingDimensions returns the vector dimensions for known models.
func EmbeddingDimensions() map[string]int {
	return map[string]int{
		"nomic-embed-text":       768,
		"mxbai-embed-large":      1024,
		"all-minilm":             384,
		"all-minilm:22m":         384,
		"gemini-embedding-001":   768,
		"text-embedding-004":     768,
		"text-embedding-3-small": 1536,
		"text-embedding-3-large": 3072,
	}
}
