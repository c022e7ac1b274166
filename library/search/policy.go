package search

import (
	"context"
	"strings"

	"github.com/Laisky/errors/v2"
	logSDK "github.com/Laisky/go-utils/v6/log"
	"github.com/Laisky/zap"

	appLog "github.com/Laisky/smart-email-finder/library/log"
)

// Mode selects which provider(s) a lookup uses.
type Mode string

const (
	// ModeHunter uses only the email domain search provider.
	ModeHunter Mode = "hunter"
	// ModeGeneralSearch uses only the general search provider.
	ModeGeneralSearch Mode = "serpapi"
	// ModePrivacySearch uses only the privacy search provider.
	ModePrivacySearch Mode = "duckduckgo"
	// ModeAuto tries the general provider, then falls back to the privacy provider.
	ModeAuto Mode = "auto"
)

var modeHints = map[Mode]string{
	ModeHunter:        "Hunter.io search failed. Please check if the domain exists or try another API.",
	ModeGeneralSearch: "SerpAPI search failed. Please try DuckDuckGo or check if the backend server is running.",
	ModePrivacySearch: "DuckDuckGo search failed. Please try SerpAPI or check if the backend server is running.",
	ModeAuto:          "Both SerpAPI and DuckDuckGo failed. Please check if the backend server is running.",
}

// Modes lists every supported mode.
func Modes() []Mode {
	return []Mode{ModeHunter, ModeGeneralSearch, ModePrivacySearch, ModeAuto}
}

// ParseMode converts a user supplied string into a Mode.
func ParseMode(raw string) (Mode, error) {
	mode := Mode(strings.ToLower(strings.TrimSpace(raw)))
	if _, ok := modeHints[mode]; !ok {
		return "", NewValidationError("source", "unknown search source "+raw)
	}
	return mode, nil
}

// PolicyOption customises a Policy.
type PolicyOption func(*Policy)

// WithPolicyLogger overrides the policy logger.
func WithPolicyLogger(logger logSDK.Logger) PolicyOption {
	return func(p *Policy) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// Policy maps a Mode onto the adapters. Only ModeAuto falls back; the single
// provider modes surface their failure directly.
type Policy struct {
	hunter  Engine
	general Engine
	privacy Engine
	logger  logSDK.Logger
}

// NewPolicy builds a Policy. Any engine may be nil, in which case modes that
// need it fail with a ValidationError.
func NewPolicy(hunter, general, privacy Engine, opts ...PolicyOption) *Policy {
	p := &Policy{
		hunter:  hunter,
		general: general,
		privacy: privacy,
		logger:  appLog.Logger.Named("search_policy"),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Search runs query through the engines selected by mode.
// Failures are returned as *SelectionError carrying a user-facing hint.
func (p *Policy) Search(ctx context.Context, mode Mode, query string) (*SearchResult, error) {
	if strings.TrimSpace(query) == "" {
		return nil, NewValidationError("query", "search query cannot be empty")
	}

	engines, err := p.enginesFor(mode)
	if err != nil {
		return nil, err
	}

	chain, err := NewChain(engines, WithChainLogger(p.logger))
	if err != nil {
		return nil, errors.Wrap(err, "build search chain")
	}

	result, err := chain.Search(ctx, query)
	if err == nil {
		return result, nil
	}

	p.logger.Warn("search failed",
		zap.String("mode", string(mode)),
		zap.Strings("providers", chain.Names()),
		zap.Error(err))

	// single-engine chains surface the engine error itself
	var chainErr *ChainError
	if errors.As(err, &chainErr) && len(chainErr.Errs) == 1 {
		err = chainErr.Errs[0]
	}

	return nil, &SelectionError{Mode: mode, Hint: modeHints[mode], Err: err}
}

func (p *Policy) enginesFor(mode Mode) ([]Engine, error) {
	var engines []Engine
	switch mode {
	case ModeHunter:
		engines = []Engine{p.hunter}
	case ModeGeneralSearch:
		engines = []Engine{p.general}
	case ModePrivacySearch:
		engines = []Engine{p.privacy}
	case ModeAuto:
		engines = []Engine{p.general, p.privacy}
	default:
		return nil, NewValidationError("source", "unknown search source "+string(mode))
	}

	for _, engine := range engines {
		if engine == nil {
			return nil, NewValidationError("source", "search source "+string(mode)+" is not configured")
		}
	}
	return engines, nil
}
