package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	gconfig "github.com/Laisky/go-config/v2"
)

const (
	defaultListen          = "localhost:5000"
	defaultSessionTTL      = time.Hour
	defaultSearchMode      = "hunter"
	defaultHTTPTimeout     = 10 * time.Second
	defaultGenerationModel = "gemini-2.5-pro"
	defaultGenerationTTL   = 60 * time.Second

	// GenerationProviderGemini selects the Google Gemini backend.
	GenerationProviderGemini = "gemini"
	// GenerationProviderOpenAI selects an OpenAI-compatible Responses backend.
	GenerationProviderOpenAI = "openai"
)

// Settings is the typed view of the configuration, built once at startup
// and handed to every component that needs credentials or endpoints.
type Settings struct {
	Web        WebSettings
	Session    SessionSettings
	Search     SearchSettings
	Generation GenerationSettings
}

// WebSettings configures the HTTP surface.
type WebSettings struct {
	Listen         string
	AllowedOrigins []string
	EnableMetrics  bool
}

// SessionSettings configures the in-memory session registry.
type SessionSettings struct {
	IdleTTL time.Duration
}

// SearchSettings configures the search providers.
type SearchSettings struct {
	DefaultMode string
	HTTPTimeout time.Duration
	SerpAPI     ProviderSettings
	DuckDuckGo  ProviderSettings
	Hunter      ProviderSettings
}

// ProviderSettings holds one upstream provider's credential and endpoint.
type ProviderSettings struct {
	APIKey   string
	Endpoint string
}

// GenerationSettings configures the text-generation service.
type GenerationSettings struct {
	Provider    string
	Model       string
	APIKey      string
	Endpoint    string
	Timeout     time.Duration
	Temperature float64
}

// Getter reads a raw value by dotted key path.
type Getter func(key string) any

// NewSettingsFromShared builds Settings from the shared go-config instance,
// falling back to process environment variables for empty credentials.
func NewSettingsFromShared() *Settings {
	return NewSettings(func(key string) any {
		return gconfig.Shared.Get(key)
	}, os.Getenv)
}

// NewSettings builds Settings from get, using env to fill in empty credentials.
// Either argument may be nil.
func NewSettings(get Getter, env func(string) string) *Settings {
	if get == nil {
		get = func(string) any { return nil }
	}
	if env == nil {
		env = func(string) string { return "" }
	}

	s := &Settings{
		Web: WebSettings{
			Listen:         stringOr(get("settings.web.listen"), defaultListen),
			AllowedOrigins: stringSlice(get("settings.web.allowed_origins")),
			EnableMetrics:  boolOr(get("settings.web.enable_metrics"), true),
		},
		Session: SessionSettings{
			IdleTTL: secondsOr(get("settings.session.idle_ttl_sec"), defaultSessionTTL),
		},
		Search: SearchSettings{
			DefaultMode: strings.ToLower(stringOr(get("settings.search.default_mode"), defaultSearchMode)),
			HTTPTimeout: secondsOr(get("settings.search.http_timeout_sec"), defaultHTTPTimeout),
			SerpAPI: ProviderSettings{
				APIKey:   stringOr(get("settings.search.serpapi.api_key"), env("SERPAPI_KEY")),
				Endpoint: stringOr(get("settings.search.serpapi.endpoint"), ""),
			},
			DuckDuckGo: ProviderSettings{
				Endpoint: stringOr(get("settings.search.duckduckgo.endpoint"), ""),
			},
			Hunter: ProviderSettings{
				APIKey:   stringOr(get("settings.search.hunter.api_key"), env("HUNTER_API_KEY")),
				Endpoint: stringOr(get("settings.search.hunter.endpoint"), ""),
			},
		},
		Generation: GenerationSettings{
			Provider:    strings.ToLower(stringOr(get("settings.generation.provider"), GenerationProviderGemini)),
			Model:       stringOr(get("settings.generation.model"), ""),
			Endpoint:    stringOr(get("settings.generation.endpoint"), ""),
			Timeout:     secondsOr(get("settings.generation.timeout_sec"), defaultGenerationTTL),
			Temperature: floatOr(get("settings.generation.temperature"), 0),
		},
	}

	if len(s.Web.AllowedOrigins) == 0 {
		s.Web.AllowedOrigins = []string{"*"}
	}

	fallbackKey := env("GEMINI_API_KEY")
	if s.Generation.Provider == GenerationProviderOpenAI {
		fallbackKey = env("OPENAI_API_KEY")
	} else if s.Generation.Model == "" {
		s.Generation.Model = defaultGenerationModel
	}
	s.Generation.APIKey = stringOr(get("settings.generation.api_key"), fallbackKey)

	return s
}

func stringOr(raw any, fallback string) string {
	if v, ok := raw.(string); ok {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			return trimmed
		}
	}
	return strings.TrimSpace(fallback)
}

func boolOr(raw any, fallback bool) bool {
	switch v := raw.(type) {
	case bool:
		return v
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "true", "1", "yes":
			return true
		case "false", "0", "no":
			return false
		}
	}
	return fallback
}

func floatOr(raw any, fallback float64) float64 {
	switch v := raw.(type) {
	case int:
		return float64(v)
	case int64:
		return float64(v)
	case float64:
		return v
	case string:
		if f, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
			return f
		}
	}
	return fallback
}

func stringSlice(raw any) []string {
	var out []string
	switch v := raw.(type) {
	case []string:
		for _, s := range v {
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
		}
	case []any:
		for _, item := range v {
			if s, ok := item.(string); ok {
				if s = strings.TrimSpace(s); s != "" {
					out = append(out, s)
				}
			}
		}
	case string:
		for _, s := range strings.Split(v, ",") {
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
		}
	}
	return out
}

func secondsOr(raw any, fallback time.Duration) time.Duration {
	var sec float64
	switch v := raw.(type) {
	case int:
		sec = float64(v)
	case int64:
		sec = float64(v)
	case float64:
		sec = v
	default:
		return fallback
	}
	if sec <= 0 {
		return fallback
	}
	return time.Duration(sec * float64(time.Second))
}
