package search

import (
	"context"
	"strings"

	"github.com/Laisky/errors/v2"
	gmw "github.com/Laisky/gin-middlewares/v7"
	logSDK "github.com/Laisky/go-utils/v6/log"
	"github.com/Laisky/zap"

	appLog "github.com/Laisky/smart-email-finder/library/log"
)

// Engine is one upstream provider adapter.
type Engine interface {
	// Name returns the provider name used in logs and error messages.
	Name() string
	// Search executes the lookup and returns the normalized result.
	Search(ctx context.Context, query string) (*SearchResult, error)
}

// ChainOption customises a Chain during construction.
type ChainOption func(*Chain)

// WithChainLogger overrides the fallback logger used when no contextual logger is available.
func WithChainLogger(logger logSDK.Logger) ChainOption {
	return func(c *Chain) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// Chain tries engines strictly in order, moving to the next only after the
// previous one failed. It never runs two engines concurrently.
type Chain struct {
	engines []Engine
	logger  logSDK.Logger
}

// NewChain constructs a Chain over the non-nil engines, in the given order.
func NewChain(engines []Engine, opts ...ChainOption) (*Chain, error) {
	cleaned := make([]Engine, 0, len(engines))
	for _, engine := range engines {
		if engine != nil {
			cleaned = append(cleaned, engine)
		}
	}
	if len(cleaned) == 0 {
		return nil, errors.New("search chain requires at least one engine")
	}

	chain := &Chain{
		engines: cleaned,
		logger:  appLog.Logger.Named("search_chain"),
	}
	for _, opt := range opts {
		opt(chain)
	}

	return chain, nil
}

// Names returns the engine names in attempt order.
func (c *Chain) Names() []string {
	names := make([]string, 0, len(c.engines))
	for _, engine := range c.engines {
		names = append(names, engine.Name())
	}
	return names
}

// Search returns the first successful engine result. When all engines fail
// it returns a *ChainError naming every provider that was tried.
func (c *Chain) Search(ctx context.Context, query string) (*SearchResult, error) {
	trimmed := strings.TrimSpace(query)
	if trimmed == "" {
		return nil, NewValidationError("query", "search query cannot be empty")
	}

	logger := c.logger
	if ctxLogger := gmw.GetLogger(ctx); ctxLogger != nil {
		logger = ctxLogger.Named("search_chain")
	}
	logger = logger.With(zap.String("query", trimmed))

	failed := &ChainError{}
	for attempt, engine := range c.engines {
		logger.Debug("search chain invoking engine",
			zap.String("engine", engine.Name()),
			zap.Int("attempt", attempt+1),
		)

		result, err := engine.Search(ctx, trimmed)
		if err == nil {
			logger.Info("search chain succeeded",
				zap.String("engine", engine.Name()),
				zap.Int("attempt", attempt+1),
			)
			return result, nil
		}

		logger.Warn("search engine failed",
			zap.String("engine", engine.Name()),
			zap.Int("attempt", attempt+1),
			zap.Error(err),
		)
		failed.Providers = append(failed.Providers, engine.Name())
		failed.Errs = append(failed.Errs, err)

		if ctx.Err() != nil {
			break
		}
	}

	return nil, failed
}
