// Package controller exposes the finder over HTTP.
package controller

import (
	"context"
	"encoding/json"
	"time"

	"github.com/Laisky/errors/v2"
	"github.com/gin-gonic/gin"

	"github.com/Laisky/smart-email-finder/internal/finder/service"
	"github.com/Laisky/smart-email-finder/internal/finder/session"
	"github.com/Laisky/smart-email-finder/library/search"
)

// Version is reported by GET /.
const Version = "1.0.0"

// RawSearcher returns a provider's JSON for a free-text query unchanged.
type RawSearcher interface {
	FetchRaw(ctx context.Context, query string) (json.RawMessage, error)
}

// RawDomainSearcher returns the email lookup provider's JSON unchanged.
type RawDomainSearcher interface {
	FetchDomainRaw(ctx context.Context, domain string) (json.RawMessage, error)
	FetchFinderRaw(ctx context.Context, domain, firstName, lastName string) (json.RawMessage, error)
}

// Deps are the collaborators of a Controller. Any provider may be nil; its
// passthrough route then answers 500.
type Deps struct {
	General     RawSearcher
	Privacy     RawSearcher
	Hunter      RawDomainSearcher
	Service     *service.Service
	Sessions    *session.Registry
	DefaultMode search.Mode
	Now         func() time.Time
}

// Controller holds the handlers.
type Controller struct {
	general     RawSearcher
	privacy     RawSearcher
	hunter      RawDomainSearcher
	svc         *service.Service
	sessions    *session.Registry
	defaultMode search.Mode
	now         func() time.Time
}

// New validates deps and builds a Controller.
func New(deps Deps) (*Controller, error) {
	if deps.Service == nil {
		return nil, errors.New("finder service is required")
	}
	if deps.Sessions == nil {
		return nil, errors.New("session registry is required")
	}
	if deps.DefaultMode == "" {
		deps.DefaultMode = search.ModeHunter
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}

	return &Controller{
		general:     deps.General,
		privacy:     deps.Privacy,
		hunter:      deps.Hunter,
		svc:         deps.Service,
		sessions:    deps.Sessions,
		defaultMode: deps.DefaultMode,
		now:         deps.Now,
	}, nil
}

// Register mounts every route on r.
func (c *Controller) Register(r gin.IRouter) {
	r.GET("/", c.Info)
	r.GET("/search", c.GeneralSearch)
	r.GET("/duckduckgo", c.PrivacySearch)
	r.GET("/hunter-domain-search", c.HunterDomainSearch)
	r.GET("/hunter-email-finder", c.HunterEmailFinder)
	r.POST("/generate-emails", c.GenerateEmails)

	sessions := r.Group("/sessions")
	sessions.POST("", c.CreateSession)
	sessions.GET("/:id", c.GetSession)
	sessions.DELETE("/:id", c.DeleteSession)
	sessions.POST("/:id/lookup", c.Lookup)
	sessions.POST("/:id/personalize", c.Personalize)
	sessions.DELETE("/:id/results/:index", c.RemoveResult)
	sessions.POST("/:id/reset", c.Reset)
}
