// Package duckduckgo is the privacy search adapter backed by the DuckDuckGo Instant Answer API.
package duckduckgo

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
	defaultEndpoint    = "https://api.duckduckgo.com/"
	httpRequestTimeout = 10 * time.Second
	// ProviderName is the human readable provider name.
	ProviderName = "DuckDuckGo"
)

// Option configures the SearchEngine instance.
type Option func(*SearchEngine)

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(engine *SearchEngine) {
		if client != nil {
			engine.client = client
		}
	}
}

// WithLogger overrides the default logger.
func WithLogger(logger logSDK.Logger) Option {
	return func(engine *SearchEngine) {
		if logger != nil {
			engine.logger = logger
		}
	}
}

// WithEndpoint overrides the API endpoint.
func WithEndpoint(endpoint string) Option {
	return func(engine *SearchEngine) {
		if trimmed := strings.TrimSpace(endpoint); trimmed != "" {
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

// SearchEngine queries the DuckDuckGo Instant Answer API. It needs no credential.
type SearchEngine struct {
	client   *http.Client
	endpoint string
	logger   logSDK.Logger
	now      func() time.Time
}

// NewSearchEngine constructs a DuckDuckGo engine.
func NewSearchEngine(opts ...Option) *SearchEngine {
	engine := &SearchEngine{
		client:   &http.Client{Timeout: httpRequestTimeout},
		endpoint: defaultEndpoint,
		logger:   log.Logger.Named("duckduckgo"),
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

// FetchRaw performs the request and returns the provider JSON unchanged.
func (e *SearchEngine) FetchRaw(ctx context.Context, query string) (json.RawMessage, error) {
	trimmedQuery := strings.TrimSpace(query)
	if trimmedQuery == "" {
		return nil, search.NewValidationError("q", "search query cannot be empty")
	}

	endpoint, err := url.Parse(e.endpoint)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid duckduckgo endpoint %q", e.endpoint)
	}

	params := endpoint.Query()
	params.Set("q", trimmedQuery)
	params.Set("format", "json")
	params.Set("no_redirect", "1")
	params.Set("skip_disambig", "1")
	endpoint.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return nil, errors.Wrap(err, "create duckduckgo request")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := search.Do(ctx, e.client, e.logger, ProviderName, req)
	if err != nil {
		return nil, err
	}
	if !resp.OK() {
		truncated, _ := search.TruncateForLog(resp.Body, 256)
		return nil, &search.UpstreamError{
			Provider:   ProviderName,
			HTTPStatus: resp.Status,
			Message:    "duckduckgo returned status: " + truncated,
		}
	}
	if !json.Valid(resp.Body) {
		return nil, &search.UpstreamError{Provider: ProviderName, HTTPStatus: resp.Status, Message: "duckduckgo returned malformed json"}
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
		return nil, &search.UpstreamError{Provider: ProviderName, Message: "normalize duckduckgo response", Err: err}
	}
	return result, nil
}
