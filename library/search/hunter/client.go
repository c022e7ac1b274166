// Package hunter is the email domain search adapter backed by the Hunter.io v2 API.
package hunter

import (
	"context"
	"encoding/json"
	"fmt"
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
	defaultEndpoint    = "https://api.hunter.io/v2"
	httpRequestTimeout = 10 * time.Second
	// ProviderName is the human readable provider name.
	ProviderName = "Hunter.io"
)

// Option configures the Client instance.
type Option func(*Client)

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.client = client
		}
	}
}

// WithLogger overrides the default logger.
func WithLogger(logger logSDK.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithEndpoint overrides the API base URL, e.g. "https://api.hunter.io/v2".
func WithEndpoint(endpoint string) Option {
	return func(c *Client) {
		if trimmed := strings.TrimRight(strings.TrimSpace(endpoint), "/"); trimmed != "" {
			c.endpoint = trimmed
		}
	}
}

// WithClock overrides the timestamp source of normalized results.
func WithClock(now func() time.Time) Option {
	return func(c *Client) {
		if now != nil {
			c.now = now
		}
	}
}

// Client talks to the Hunter.io domain-search and email-finder endpoints.
type Client struct {
	apiKey   string
	client   *http.Client
	endpoint string
	logger   logSDK.Logger
	now      func() time.Time
}

// NewClient constructs a Hunter.io client using apiKey.
func NewClient(apiKey string, opts ...Option) *Client {
	c := &Client{
		apiKey:   strings.TrimSpace(apiKey),
		client:   &http.Client{Timeout: httpRequestTimeout},
		endpoint: defaultEndpoint,
		logger:   log.Logger.Named("hunter"),
		now:      time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

// Name returns the provider name.
func (c *Client) Name() string {
	return ProviderName
}

// FetchDomainRaw calls domain-search and returns the provider JSON unchanged.
func (c *Client) FetchDomainRaw(ctx context.Context, domain string) (json.RawMessage, error) {
	domain = strings.TrimSpace(domain)
	if domain == "" {
		return nil, search.NewValidationError("domain", "Domain parameter is required")
	}

	return c.get(ctx, "/domain-search", url.Values{"domain": {domain}})
}

// FetchFinderRaw calls email-finder and returns the provider JSON unchanged.
func (c *Client) FetchFinderRaw(ctx context.Context, domain, firstName, lastName string) (json.RawMessage, error) {
	domain = strings.TrimSpace(domain)
	firstName = strings.TrimSpace(firstName)
	lastName = strings.TrimSpace(lastName)
	if domain == "" || firstName == "" || lastName == "" {
		return nil, search.NewValidationError("domain", "Domain, first_name, and last_name parameters are required")
	}

	return c.get(ctx, "/email-finder", url.Values{
		"domain":     {domain},
		"first_name": {firstName},
		"last_name":  {lastName},
	})
}

// Search runs a domain search and normalizes it. It implements search.Engine
// with the query interpreted as a domain.
func (c *Client) Search(ctx context.Context, domain string) (*search.SearchResult, error) {
	raw, err := c.FetchDomainRaw(ctx, domain)
	if err != nil {
		return nil, err
	}

	result, err := NormalizeDomainSearch(strings.TrimSpace(domain), raw, c.now())
	if err != nil {
		return nil, &search.UpstreamError{Provider: ProviderName, Message: "normalize hunter domain search response", Err: err}
	}
	return result, nil
}

// FindEmail runs an email-finder lookup and normalizes it into a result
// carrying at most one DomainEmail.
func (c *Client) FindEmail(ctx context.Context, domain, firstName, lastName string) (*search.SearchResult, error) {
	raw, err := c.FetchFinderRaw(ctx, domain, firstName, lastName)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf("%s %s @ %s", strings.TrimSpace(firstName), strings.TrimSpace(lastName), strings.TrimSpace(domain))
	result, err := NormalizeEmailFinder(query, raw, c.now())
	if err != nil {
		return nil, &search.UpstreamError{Provider: ProviderName, Message: "normalize hunter email finder response", Err: err}
	}
	return result, nil
}

func (c *Client) get(ctx context.Context, path string, params url.Values) (json.RawMessage, error) {
	if c.apiKey == "" {
		return nil, &search.UpstreamError{Provider: ProviderName, Message: "hunter api key is not configured"}
	}

	endpoint, err := url.Parse(c.endpoint + path)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid hunter endpoint %q", c.endpoint)
	}
	params.Set("api_key", c.apiKey)
	endpoint.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return nil, errors.Wrap(err, "create hunter request")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := search.Do(ctx, c.client, c.logger, ProviderName, req)
	if err != nil {
		return nil, err
	}

	if !resp.OK() {
		return nil, &search.UpstreamError{
			Provider:   ProviderName,
			HTTPStatus: resp.Status,
			Message:    errorDetails(resp.Body, resp.Status),
		}
	}
	if !json.Valid(resp.Body) {
		return nil, &search.UpstreamError{Provider: ProviderName, HTTPStatus: resp.Status, Message: "hunter returned malformed json"}
	}

	return json.RawMessage(resp.Body), nil
}

// errorDetails extracts errors[0].details, falling back to the status line.
func errorDetails(body []byte, status int) string {
	var envelope struct {
		Errors []struct {
			ID      string `json:"id"`
			Details string `json:"details"`
		} `json:"errors"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil &&
		len(envelope.Errors) > 0 && envelope.Errors[0].Details != "" {
		return envelope.Errors[0].Details
	}
	return fmt.Sprintf("HTTP %d: %s", status, http.StatusText(status))
}
