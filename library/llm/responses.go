package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/Laisky/errors/v2"
	gmw "github.com/Laisky/gin-middlewares/v7"
	gutils "github.com/Laisky/go-utils/v6"
	logSDK "github.com/Laisky/go-utils/v6/log"
	"github.com/Laisky/zap"

	"github.com/Laisky/smart-email-finder/library/log"
)

const (
	defaultResponsesEndpoint = "https://api.openai.com"
	defaultResponsesModel    = "gpt-4.1-mini"
	defaultResponsesTimeout  = 60 * time.Second
)

// ResponsesOption customises a ResponsesGenerator.
type ResponsesOption func(*ResponsesGenerator)

// WithResponsesEndpoint overrides the API base URL.
func WithResponsesEndpoint(endpoint string) ResponsesOption {
	return func(g *ResponsesGenerator) {
		if trimmed := strings.TrimSpace(endpoint); trimmed != "" {
			g.endpoint = strings.TrimRight(trimmed, "/")
		}
	}
}

// WithResponsesHTTPClient overrides the HTTP client.
func WithResponsesHTTPClient(client *http.Client) ResponsesOption {
	return func(g *ResponsesGenerator) {
		if client != nil {
			g.httpClient = client
		}
	}
}

// WithResponsesTemperature sets the sampling temperature. Zero keeps the model default.
func WithResponsesTemperature(temperature float64) ResponsesOption {
	return func(g *ResponsesGenerator) {
		if temperature > 0 {
			g.temperature = temperature
		}
	}
}

// WithResponsesLogger overrides the default logger.
func WithResponsesLogger(logger logSDK.Logger) ResponsesOption {
	return func(g *ResponsesGenerator) {
		if logger != nil {
			g.logger = logger
		}
	}
}

// ResponsesGenerator calls an OpenAI-compatible /v1/responses endpoint.
type ResponsesGenerator struct {
	apiKey      string
	model       string
	endpoint    string
	temperature float64
	httpClient  *http.Client
	logger      logSDK.Logger
}

// NewResponsesGenerator builds an OpenAI-compatible backend. An empty apiKey
// yields a generator that fails with ErrNotConfigured without any request.
func NewResponsesGenerator(apiKey, model string, opts ...ResponsesOption) *ResponsesGenerator {
	g := &ResponsesGenerator{
		apiKey:     strings.TrimSpace(apiKey),
		model:      strings.TrimSpace(model),
		endpoint:   defaultResponsesEndpoint,
		httpClient: &http.Client{Timeout: defaultResponsesTimeout},
		logger:     log.Logger.Named("responses"),
	}
	if g.model == "" {
		g.model = defaultResponsesModel
	}
	for _, opt := range opts {
		if opt != nil {
			opt(g)
		}
	}
	return g
}

// Name returns the backend name.
func (g *ResponsesGenerator) Name() string {
	return "OpenAI"
}

type responsesPayload struct {
	Model        string   `json:"model"`
	Input        string   `json:"input"`
	Instructions string   `json:"instructions,omitempty"`
	Temperature  *float64 `json:"temperature,omitempty"`
}

// Generate sends prompt as the Responses input and instructions as the
// request instructions, and returns the aggregated output text.
func (g *ResponsesGenerator) Generate(ctx context.Context, instructions, prompt string) (string, error) {
	if g.apiKey == "" {
		return "", ErrNotConfigured
	}
	if strings.TrimSpace(prompt) == "" {
		return "", errors.New("missing input")
	}

	logger := g.logger
	if ctxLogger := gmw.GetLogger(ctx); ctxLogger != nil {
		logger = ctxLogger.Named("responses")
	}

	payload := responsesPayload{
		Model:        g.model,
		Input:        prompt,
		Instructions: strings.TrimSpace(instructions),
	}
	if g.temperature > 0 {
		temperature := g.temperature
		payload.Temperature = &temperature
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", errors.Wrap(err, "marshal responses request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.endpoint+"/v1/responses", bytes.NewReader(body))
	if err != nil {
		return "", errors.Wrap(err, "build responses request")
	}
	req.Header.Set("Authorization", "Bearer "+g.apiKey)
	req.Header.Set("Content-Type", "application/json")

	logger.Debug("outgoing generation request",
		zap.String("model", g.model),
		zap.Int("prompt_len", len(prompt)))
	resp, err := g.httpClient.Do(req)
	if err != nil {
		return "", errors.Wrap(err, "call responses endpoint")
	}
	defer gutils.CloseWithLog(resp.Body, logger)

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", errors.Errorf("responses endpoint status %d: %s", resp.StatusCode, strings.TrimSpace(string(detail)))
	}

	var decoded responsesReply
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", errors.Wrap(err, "decode responses reply")
	}

	text := decoded.text()
	if text == "" {
		return "", errors.New("responses output text is empty")
	}
	logger.Debug("incoming generation response", zap.Int("text_len", len(text)))
	return text, nil
}

// responsesReply keeps the fields needed to read text out of a Responses reply.
type responsesReply struct {
	OutputText string `json:"output_text"`
	Output     []struct {
		Content []struct {
			Type string `json:"type"`
			Text string `json:"text"`
		} `json:"content"`
	} `json:"output"`
}

// text prefers output_text and otherwise joins the text content of every output item.
func (r responsesReply) text() string {
	if text := strings.TrimSpace(r.OutputText); text != "" {
		return text
	}

	var parts []string
	for _, item := range r.Output {
		for _, content := range item.Content {
			if content.Type != "output_text" && content.Type != "text" {
				continue
			}
			if text := strings.TrimSpace(content.Text); text != "" {
				parts = append(parts, text)
			}
		}
	}
	return strings.Join(parts, "\n")
}
