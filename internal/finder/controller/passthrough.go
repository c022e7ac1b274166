package controller

import (
	"encoding/json"
	"net/http"

	"github.com/Laisky/errors/v2"
	gmw "github.com/Laisky/gin-middlewares/v7"
	"github.com/Laisky/zap"
	"github.com/gin-gonic/gin"

	"github.com/Laisky/smart-email-finder/internal/finder/dto"
	"github.com/Laisky/smart-email-finder/library/search"
)

var (
	errProviderNotConfigured = errors.New("provider is not configured")

	serviceEndpoints = map[string]string{
		"GET /":                     "API information",
		"GET /search":               "Search using SerpAPI (requires ?q parameter)",
		"GET /duckduckgo":           "Search using DuckDuckGo (requires ?q parameter)",
		"POST /generate-emails":     "Generate email addresses using the configured generation service",
		"GET /hunter-domain-search": "Search domain using Hunter.io (requires ?domain parameter)",
		"GET /hunter-email-finder":  "Find email using Hunter.io (requires ?domain, ?first_name, and ?last_name parameters)",
		"POST /sessions":            "Create a lookup session",
		"GET /sessions/:id":         "Read a session's results and emails",
		"POST /sessions/:id/lookup": "Run a lookup in a session",
	}
	serviceUsage = map[string]string{
		"search":             "GET /search?q=your+search+query",
		"duckduckgo":         "GET /duckduckgo?q=your+search+query",
		"generateEmails":     "POST /generate-emails with JSON body: { prompt, contextData, targetUser }",
		"hunterDomainSearch": "GET /hunter-domain-search?domain=yourdomain.com",
		"hunterEmailFinder":  "GET /hunter-email-finder?domain=yourdomain.com&first_name=FirstName&last_name=LastName",
		"lookup":             "POST /sessions/:id/lookup with JSON body: { query, source, targetUser }",
	}
)

// Info returns the service metadata.
func (c *Controller) Info(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, dto.ServiceInfo{
		Message:   "Smart Email Finder API",
		Version:   Version,
		Status:    "running",
		Endpoints: serviceEndpoints,
		Usage:     serviceUsage,
		Timestamp: c.now().UTC(),
	})
}

// GeneralSearch proxies GET /search?q= to the general provider.
func (c *Controller) GeneralSearch(ctx *gin.Context) {
	if c.general == nil {
		abortWithError(ctx, http.StatusInternalServerError, "Error fetching data from SerpAPI", errProviderNotConfigured)
		return
	}
	raw, err := c.general.FetchRaw(ctx, ctx.Query("q"))
	c.writeRaw(ctx, raw, err, "Error fetching data from SerpAPI")
}

// PrivacySearch proxies GET /duckduckgo?q= to the privacy provider.
func (c *Controller) PrivacySearch(ctx *gin.Context) {
	if c.privacy == nil {
		abortWithError(ctx, http.StatusInternalServerError, "Error fetching data from DuckDuckGo", errProviderNotConfigured)
		return
	}
	raw, err := c.privacy.FetchRaw(ctx, ctx.Query("q"))
	c.writeRaw(ctx, raw, err, "Error fetching data from DuckDuckGo")
}

// HunterDomainSearch proxies GET /hunter-domain-search?domain=.
func (c *Controller) HunterDomainSearch(ctx *gin.Context) {
	const failure = "Error fetching data from Hunter.io domain search API"
	if c.hunter == nil {
		abortWithError(ctx, http.StatusInternalServerError, failure, errProviderNotConfigured)
		return
	}
	raw, err := c.hunter.FetchDomainRaw(ctx, ctx.Query("domain"))
	c.writeRaw(ctx, raw, err, failure)
}

// HunterEmailFinder proxies GET /hunter-email-finder?domain=&first_name=&last_name=.
func (c *Controller) HunterEmailFinder(ctx *gin.Context) {
	const failure = "Error fetching data from Hunter.io email finder API"
	if c.hunter == nil {
		abortWithError(ctx, http.StatusInternalServerError, failure, errProviderNotConfigured)
		return
	}
	raw, err := c.hunter.FetchFinderRaw(ctx, ctx.Query("domain"), ctx.Query("first_name"), ctx.Query("last_name"))
	c.writeRaw(ctx, raw, err, failure)
}

func (c *Controller) writeRaw(ctx *gin.Context, raw json.RawMessage, err error, failure string) {
	if err == nil {
		ctx.Data(http.StatusOK, "application/json; charset=utf-8", raw)
		return
	}

	var validationErr *search.ValidationError
	if errors.As(err, &validationErr) {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: validationErr.Message})
		return
	}

	gmw.GetLogger(ctx).Warn("provider request failed", zap.String("path", ctx.FullPath()), zap.Error(err))
	abortWithError(ctx, http.StatusInternalServerError, failure, err)
}

func abortWithError(ctx *gin.Context, status int, msg string, err error) {
	resp := dto.ErrorResponse{Error: msg}
	if err != nil {
		resp.Details = err.Error()
	}
	ctx.AbortWithStatusJSON(status, resp)
}
