package search

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"time"

	gutils "github.com/Laisky/go-utils/v6"
	gmw "github.com/Laisky/gin-middlewares/v7"
	logSDK "github.com/Laisky/go-utils/v6/log"
	"github.com/Laisky/zap"
)

// logBodyLimit caps the number of response bytes logged for debugging.
const logBodyLimit = 4096

// secretParams are query parameters masked before a URL is logged.
var secretParams = []string{"api_key", "key"}

// Response is the raw outcome of one upstream HTTP exchange.
type Response struct {
	Status int
	Body   []byte
}

// OK reports whether the status is 2xx.
func (r *Response) OK() bool {
	return r.Status >= http.StatusOK && r.Status < http.StatusMultipleChoices
}

// Do sends req with client and reads the full body. Transport and read
// failures are returned as *UpstreamError for provider; status checks are
// left to the caller because each provider reports errors differently.
func Do(ctx context.Context, client *http.Client, logger logSDK.Logger, provider string, req *http.Request) (*Response, error) {
	if ctxLogger := gmw.GetLogger(ctx); ctxLogger != nil {
		logger = ctxLogger.Named(provider)
	}

	logger.Debug("outgoing http request",
		zap.String("method", req.Method),
		zap.String("url", RedactURL(req.URL)),
	)

	startAt := time.Now()
	resp, err := client.Do(req.WithContext(ctx))
	if err != nil {
		return nil, &UpstreamError{Provider: provider, Message: "send request", Err: err}
	}
	defer gutils.CloseWithLog(resp.Body, logger)

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &UpstreamError{Provider: provider, HTTPStatus: resp.StatusCode, Message: "read response body", Err: err}
	}

	truncatedBody, truncated := TruncateForLog(body, logBodyLimit)
	logger.Debug("incoming http response",
		zap.Int("status", resp.StatusCode),
		zap.String("body", truncatedBody),
		zap.Bool("body_truncated", truncated),
		zap.Duration("cost", time.Since(startAt)),
	)

	return &Response{Status: resp.StatusCode, Body: body}, nil
}

// RedactURL renders u with credential query parameters masked.
func RedactURL(u *url.URL) string {
	if u == nil {
		return ""
	}
	q := u.Query()
	changed := false
	for _, key := range secretParams {
		if q.Has(key) {
			q.Set(key, "***")
			changed = true
		}
	}
	if !changed {
		return u.String()
	}

	clone := *u
	clone.RawQuery = q.Encode()
	return clone.String()
}

// TruncateForLog limits the payload logged for debugging and reports whether truncation occurred.
func TruncateForLog(body []byte, limit int) (string, bool) {
	if len(body) <= limit {
		return string(body), false
	}
	return string(body[:limit]), true
}
