package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Laisky/errors/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGeminiGeneratorGenerate(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1beta/models/gemini-2.5-pro:generateContent", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("x-goog-api-key"))

		var payload struct {
			Contents []struct {
				Role  string `json:"role"`
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"contents"`
			SystemInstruction struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"systemInstruction"`
			GenerationConfig struct {
				Temperature float64 `json:"temperature"`
			} `json:"generationConfig"`
		}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		if assert.Len(t, payload.Contents, 1) {
			assert.Equal(t, "user", payload.Contents[0].Role)
			assert.Equal(t, "find emails", payload.Contents[0].Parts[0].Text)
		}
		if assert.Len(t, payload.SystemInstruction.Parts, 1) {
			assert.Equal(t, "only json", payload.SystemInstruction.Parts[0].Text)
		}
		assert.InDelta(t, 0.5, payload.GenerationConfig.Temperature, 1e-6)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"role":"model","parts":[{"text":"[{\"name\":"},{"text":"\"A\"}]"}]}}]}`))
	}))
	defer server.Close()

	gen, err := NewGeminiGenerator(context.Background(), "test-key", "",
		WithGeminiEndpoint(server.URL),
		WithGeminiHTTPClient(server.Client()),
		WithGeminiTemperature(0.5),
	)
	require.NoError(t, err)
	require.Equal(t, "Gemini", gen.Name())

	text, err := gen.Generate(context.Background(), "only json", "find emails")
	require.NoError(t, err)
	require.Equal(t, `[{"name":"A"}]`, text)
}

func TestGeminiGeneratorUpstreamError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"error":{"code":403,"message":"API key not valid","status":"PERMISSION_DENIED"}}`))
	}))
	defer server.Close()

	gen, err := NewGeminiGenerator(context.Background(), "bad-key", "gemini-2.5-flash",
		WithGeminiEndpoint(server.URL), WithGeminiHTTPClient(server.Client()))
	require.NoError(t, err)

	_, err = gen.Generate(context.Background(), "", "x")
	require.ErrorContains(t, err, "API key not valid")
}

func TestGeminiGeneratorWithoutKey(t *testing.T) {
	t.Parallel()

	gen, err := NewGeminiGenerator(context.Background(), " ", "")
	require.NoError(t, err)

	_, err = gen.Generate(context.Background(), "", "x")
	require.True(t, errors.Is(err, ErrNotConfigured))
}

func TestNewSelectsBackend(t *testing.T) {
	t.Parallel()

	gen, err := New(context.Background(), Config{Backend: "OpenAI", APIKey: "k"})
	require.NoError(t, err)
	require.Equal(t, "OpenAI", gen.Name())

	gen, err = New(context.Background(), Config{})
	require.NoError(t, err)
	require.Equal(t, "Gemini", gen.Name())

	_, err = New(context.Background(), Config{Backend: "claude"})
	require.Error(t, err)
}
