package llm

import (
	"context"
	"net/http"
	"strings"

	"github.com/Laisky/errors/v2"
	gmw "github.com/Laisky/gin-middlewares/v7"
	logSDK "github.com/Laisky/go-utils/v6/log"
	"github.com/Laisky/zap"
	"google.golang.org/genai"

	"github.com/Laisky/smart-email-finder/library/log"
)

// DefaultGeminiModel is used when no model is configured.
const DefaultGeminiModel = "gemini-2.5-pro"

// GeminiOption customises a GeminiGenerator.
type GeminiOption func(*geminiOptions)

type geminiOptions struct {
	endpoint    string
	httpClient  *http.Client
	logger      logSDK.Logger
	temperature float64
}

// WithGeminiEndpoint overrides the API base URL.
func WithGeminiEndpoint(endpoint string) GeminiOption {
	return func(o *geminiOptions) {
		if trimmed := strings.TrimSpace(endpoint); trimmed != "" {
			o.endpoint = strings.TrimRight(trimmed, "/") + "/"
		}
	}
}

// WithGeminiHTTPClient overrides the HTTP client.
func WithGeminiHTTPClient(client *http.Client) GeminiOption {
	return func(o *geminiOptions) {
		if client != nil {
			o.httpClient = client
		}
	}
}

// WithGeminiLogger overrides the default logger.
func WithGeminiLogger(logger logSDK.Logger) GeminiOption {
	return func(o *geminiOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithGeminiTemperature sets the sampling temperature. Zero keeps the model default.
func WithGeminiTemperature(temperature float64) GeminiOption {
	return func(o *geminiOptions) {
		if temperature > 0 {
			o.temperature = temperature
		}
	}
}

// GeminiGenerator calls Gemini generateContent through the genai SDK.
type GeminiGenerator struct {
	client      *genai.Client
	model       string
	temperature float64
	logger      logSDK.Logger
}

// NewGeminiGenerator builds a Gemini backend. An empty apiKey yields an
// unconfigured generator that fails with ErrNotConfigured on use.
func NewGeminiGenerator(ctx context.Context, apiKey, model string, opts ...GeminiOption) (*GeminiGenerator, error) {
	o := &geminiOptions{logger: log.Logger.Named("gemini")}
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}

	model = strings.TrimSpace(model)
	if model == "" {
		model = DefaultGeminiModel
	}
	gen := &GeminiGenerator{model: model, temperature: o.temperature, logger: o.logger}

	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return gen, nil
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      apiKey,
		Backend:     genai.BackendGeminiAPI,
		HTTPClient:  o.httpClient,
		HTTPOptions: genai.HTTPOptions{BaseURL: o.endpoint},
	})
	if err != nil {
		return nil, errors.Wrap(err, "new genai client")
	}
	gen.client = client
	return gen, nil
}

// Name returns the backend name.
func (g *GeminiGenerator) Name() string {
	return "Gemini"
}

// Generate sends instructions as the system instruction and prompt as one user turn.
func (g *GeminiGenerator) Generate(ctx context.Context, instructions, prompt string) (string, error) {
	if g.client == nil {
		return "", ErrNotConfigured
	}

	logger := g.logger
	if ctxLogger := gmw.GetLogger(ctx); ctxLogger != nil {
		logger = ctxLogger.Named("gemini")
	}
	logger.Debug("outgoing generation request",
		zap.String("model", g.model),
		zap.Int("prompt_len", len(prompt)))

	cfg := &genai.GenerateContentConfig{}
	if strings.TrimSpace(instructions) != "" {
		cfg.SystemInstruction = genai.NewContentFromText(instructions, genai.RoleUser)
	}
	if g.temperature > 0 {
		temperature := float32(g.temperature)
		cfg.Temperature = &temperature
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), cfg)
	if err != nil {
		return "", errors.Wrap(err, "gemini generate content")
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", errors.New("gemini returned no text")
	}
	logger.Debug("incoming generation response", zap.Int("text_len", len(text)))
	return text, nil
}
