package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/Laisky/errors/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestResponsesGeneratorGenerate verifies the request shape and output_text parsing.
func TestResponsesGeneratorGenerate(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/responses", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))

		var payload map[string]any
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, "gpt-4.1-mini", payload["model"])
		assert.Equal(t, "hello", payload["input"])
		assert.Equal(t, "only json", payload["instructions"])
		assert.InDelta(t, 0.3, payload["temperature"], 1e-9)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"output_text":"ok"}`))
	}))
	defer server.Close()

	gen := NewResponsesGenerator("sk-test", "",
		WithResponsesEndpoint(server.URL+"/"),
		WithResponsesTemperature(0.3))
	require.Equal(t, "OpenAI", gen.Name())

	text, err := gen.Generate(context.Background(), "only json", "hello")
	require.NoError(t, err)
	require.Equal(t, "ok", text)
}

// TestResponsesGeneratorOmitsUnsetFields verifies empty instructions and zero temperature are not sent.
func TestResponsesGeneratorOmitsUnsetFields(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var payload map[string]any
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.NotContains(t, payload, "instructions")
		assert.NotContains(t, payload, "temperature")
		_, _ = w.Write([]byte(`{"output":[{"content":[{"type":"output_text","text":"line1"},{"type":"refusal","text":"no"},{"type":"text","text":"line2"}]}]}`))
	}))
	defer server.Close()

	gen := NewResponsesGenerator("sk", "m", WithResponsesEndpoint(server.URL))
	text, err := gen.Generate(context.Background(), " ", "hello")
	require.NoError(t, err)
	require.Equal(t, "line1\nline2", text)
}

func TestResponsesGeneratorWithoutKey(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	defer server.Close()

	gen := NewResponsesGenerator(" ", "m", WithResponsesEndpoint(server.URL))
	_, err := gen.Generate(context.Background(), "", "hello")
	require.True(t, errors.Is(err, ErrNotConfigured))
	require.Zero(t, calls.Load())
}

func TestResponsesGeneratorStatusError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":"slow down"}`))
	}))
	defer server.Close()

	gen := NewResponsesGenerator("sk", "m",
		WithResponsesEndpoint(server.URL),
		WithResponsesHTTPClient(server.Client()))
	_, err := gen.Generate(context.Background(), "", "x")
	require.ErrorContains(t, err, "status 429")
	require.ErrorContains(t, err, "slow down")
}

func TestResponsesGeneratorEmptyOutput(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"output":[]}`))
	}))
	defer server.Close()

	_, err := NewResponsesGenerator("sk", "m", WithResponsesEndpoint(server.URL)).
		Generate(context.Background(), "", "x")
	require.ErrorContains(t, err, "empty")
}
