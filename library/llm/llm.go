// Package llm holds the text generation backends used to synthesize email candidates.
package llm

import (
	"context"
	"net/http"
	"strings"

	"github.com/Laisky/errors/v2"
)

// ErrNotConfigured is returned when a backend has no credential.
var ErrNotConfigured = errors.New("generation api key is not configured")

// TextGenerator turns one prompt into one text completion.
type TextGenerator interface {
	// Name returns the backend name used in logs and error messages.
	Name() string
	// Generate sends instructions as system guidance and prompt as the user
	// input, and returns the model's text output.
	Generate(ctx context.Context, instructions, prompt string) (string, error)
}

// Backend names accepted by New.
const (
	BackendGemini = "gemini"
	BackendOpenAI = "openai"
)

// Config selects and parameterizes a backend.
type Config struct {
	Backend     string
	Model       string
	APIKey      string
	Endpoint    string
	Temperature float64
	HTTPClient  *http.Client
}

// New constructs the backend named by cfg.Backend. An empty API key is not an
// error here; the returned generator fails with ErrNotConfigured on use.
func New(ctx context.Context, cfg Config) (TextGenerator, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Backend)) {
	case "", BackendGemini:
		return NewGeminiGenerator(ctx, cfg.APIKey, cfg.Model,
			WithGeminiEndpoint(cfg.Endpoint),
			WithGeminiHTTPClient(cfg.HTTPClient),
			WithGeminiTemperature(cfg.Temperature))
	case BackendOpenAI:
		return NewResponsesGenerator(cfg.APIKey, cfg.Model,
			WithResponsesEndpoint(cfg.Endpoint),
			WithResponsesHTTPClient(cfg.HTTPClient),
			WithResponsesTemperature(cfg.Temperature)), nil
	default:
		return nil, errors.Errorf("unknown generation backend %q", cfg.Backend)
	}
}
