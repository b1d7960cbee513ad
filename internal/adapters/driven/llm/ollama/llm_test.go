package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/lexcheck/internal/core/ports/driven"
)

// captureServer records the decoded request body and replies with reply.
func captureServer(t *testing.T, reply string, got *map[string]any) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/generate", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(got))
		_, _ = w.Write([]byte(reply))
	}))
	t.Cleanup(server.Close)
	return server
}

func TestGenerate(t *testing.T) {
	var got map[string]any
	server := captureServer(t, `{"response": "Company Incorporation", "done": true}`, &got)
	svc := NewLLMService(LLMConfig{BaseURL: server.URL, Model: "llama3.2"})

	text, err := svc.Generate(context.Background(), "classify", driven.GenerateOptions{MaxTokens: 64})

	require.NoError(t, err)
	assert.Equal(t, "Company Incorporation", text)
	assert.Equal(t, "llama3.2", got["model"])
	assert.Equal(t, false, got["stream"])
	assert.NotContains(t, got, "format")
	opts := got["options"].(map[string]any)
	assert.Equal(t, float64(64), opts["num_predict"])
	assert.NotContains(t, opts, "temperature")
}

func TestGenerate_DeterministicSendsZeroTemperature(t *testing.T) {
	var got map[string]any
	server := captureServer(t, `{"response": "YES"}`, &got)

	_, err := NewLLMService(LLMConfig{BaseURL: server.URL}).
		Generate(context.Background(), "match", driven.GenerateOptions{Deterministic: true})

	require.NoError(t, err)
	opts := got["options"].(map[string]any)
	assert.Equal(t, float64(0), opts["temperature"])
}

func TestGenerate_JSONOutputUsesSchema(t *testing.T) {
	var got map[string]any
	server := captureServer(t, `{"response": "{}"}`, &got)
	schema := map[string]any{"type": "object"}

	_, err := NewLLMService(LLMConfig{BaseURL: server.URL}).
		Generate(context.Background(), "detect", driven.GenerateOptions{JSONOutput: true, ResponseSchema: schema})

	require.NoError(t, err)
	assert.Equal(t, schema, got["format"])
}

func TestGenerate_JSONOutputWithoutSchema(t *testing.T) {
	var got map[string]any
	server := captureServer(t, `{"response": "{}"}`, &got)

	_, err := NewLLMService(LLMConfig{BaseURL: server.URL}).
		Generate(context.Background(), "detect", driven.GenerateOptions{JSONOutput: true})

	require.NoError(t, err)
	assert.Equal(t, "json", got["format"])
	assert.NotContains(t, got, "options")
}

func TestGenerate_StatusError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "busy", http.StatusTooManyRequests)
	}))
	defer server.Close()

	_, err := NewLLMService(LLMConfig{BaseURL: server.URL}).Generate(context.Background(), "p", driven.GenerateOptions{})
	assert.ErrorContains(t, err, "status 429")
}

func TestPing(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/tags" {
			_, _ = w.Write([]byte(`{"models": []}`))
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	svc := NewLLMService(LLMConfig{BaseURL: server.URL})
	assert.NoError(t, svc.Ping(context.Background()))
	assert.Equal(t, DefaultLLMModel, svc.ModelName())
}

func TestGenerate_ErrorBodyMessage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error": "model \"mistral\" not found"}`))
	}))
	defer server.Close()

	_, err := NewLLMService(LLMConfig{BaseURL: server.URL, Model: "mistral"}).
		Generate(context.Background(), "p", driven.GenerateOptions{})

	assert.EqualError(t, err, `ollama error (status 404): model "mistral" not found`)
}

func TestGenerate_InlineError(t *testing.T) {
	var got map[string]any
	server := captureServer(t, `{"error": "out of memory"}`, &got)

	_, err := NewLLMService(LLMConfig{BaseURL: server.URL}).
		Generate(context.Background(), "p", driven.GenerateOptions{})

	assert.EqualError(t, err, "ollama error: out of memory")
}
