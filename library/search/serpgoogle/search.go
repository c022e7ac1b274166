// Package serpgoogle is the general search adapter backed by SerpApi's Google engine.
package serpgoogle

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Laisky/errors/v2"
	logSDK "github.com/Laisky/go-utils/v6/log"

	"github.com/Laisky/smart-email-finder/library/log"
	"github.com/Laisky/smart-email-finder/library/search"
)

const (
	defaultEndpoint    = "https://serpapi.com/search.json"
	httpRequestTimeout = 10 * time.Second
	// ProviderName is the human readable provider name.
	ProviderName = "SerpAPI"
)

// Option configures the SearchEngine instance.
type Option func(*SearchEngine)

// WithHTTPClient overrides the HTTP client used to communicate with SerpApi.
func WithHTTPClient(client *http.Client) Option {
	return func(engine *SearchEngine) {
		if client != nil {
			engine.client = client
		}
	}
}

// WithLogger overrides the default logger used for requests when no contextual logger is present.
func WithLogger(logger logSDK.Logger) Option {
	return func(engine *SearchEngine) {
		if logger != nil {
			engine.logger = logger
		}
	}
}

// WithEndpoint overrides the SerpApi endpoint, primarily for testing.
func WithEndpoint(endpoint string) Option {
	return func(engine *SearchEngine) {
		trimmed := strings.TrimSpace(endpoint)
		if trimmed != "" {
			engine.endpoint = trimmed
		}
	}
}

// WithClock overrides the timestamp source of normalized results.
func WithClock(now func() time.Time) Option {
	return func(engine *SearchEngine) {
		if now != nil {
			engine.now = now
		}
	}
}

// SearchEngine queries SerpApi's Google Search endpoint.
type SearchEngine struct {
	apiKey   string
	client   *http.Client
	endpoint string
	logger   logSDK.Logger
	now      func() time.Time
}

// NewSearchEngine constructs a SerpApi-backed search engine using the provided API key.
// The apiKey parameter must be non-empty at search time.
func NewSearchEngine(apiKey string, opts ...Option) *SearchEngine {
	engine := &SearchEngine{
		apiKey:   strings.TrimSpace(apiKey),
		client:   &http.Client{Timeout: httpRequestTimeout},
		endpoint: defaultEndpoint,
		logger:   log.Logger.Named("serp_google"),
		now:      time.Now,
	}

	for _, opt := range opts {
		if opt != nil {
			opt(engine)
		}
	}

	return engine
}

// Name returns the provider name.
func (e *SearchEngine) Name() string {
	return ProviderName
}

// FetchRaw performs the SerpApi request and returns the provider JSON unchanged.
func (e *SearchEngine) FetchRaw(ctx context.Context, query string) (json.RawMessage, error) {
	trimmedQuery := strings.TrimSpace(query)
	if trimmedQuery == "" {
		return nil, search.NewValidationError("q", "search query cannot be empty")
	}
	if e.apiKey == "" {
		return nil, &search.UpstreamError{Provider: ProviderName, Message: "serp google api key is not configured"}
	}

	endpoint, err := url.Parse(e.endpoint)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid serp google endpoint %q", e.endpoint)
	}

	params := endpoint.Query()
	params.Set("engine", "google")
	params.Set("q", trimmedQuery)
	params.Set("api_key", e.apiKey)
	endpoint.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return nil, errors.Wrap(err, "create serp google request")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := search.Do(ctx, e.client, e.logger, ProviderName, req)
	if err != nil {
		return nil, err
	}

	var envelope struct {
		Error string `json:"error"`
	}
	decodeErr := json.Unmarshal(resp.Body, &envelope)

	if !resp.OK() {
		msg := envelope.Error
		if msg == "" {
			truncated, _ := search.TruncateForLog(resp.Body, 256)
			msg = "serp google returned status: " + truncated
		}
		return nil, &search.UpstreamError{Provider: ProviderName, HTTPStatus: resp.Status, Message: msg}
	}
	if decodeErr != nil {
		return nil, &search.UpstreamError{Provider: ProviderName, HTTPStatus: resp.Status, Message: "unmarshal serp google response", Err: decodeErr}
	}
	if envelope.Error != "" {
		return nil, &search.UpstreamError{Provider: ProviderName, HTTPStatus: resp.Status, Message: "serp google reported error: " + envelope.Error}
	}

	return json.RawMessage(resp.Body), nil
}

// Search fetches query and normalizes the payload into a SearchResult.
func (e *SearchEngine) Search(ctx context.Context, query string) (*search.SearchResult, error) {
	raw, err := e.FetchRaw(ctx, query)
	if err != nil {
		return nil, err
	}

	result, err := Normalize(strings.TrimSpace(query), raw, e.now())
	if err != nil {
		return nil, &search.UpstreamError{Provider: ProviderName, Message: "normalize serp google response", Err: err}
	}
	return result, nil
}
