package cmd

import (
	"fmt"
	"math"
	"net"
	"net/url"
	"slices"
	"strconv"
	"strings"

	errors "github.com/Laisky/errors/v2"
	gconfig "github.com/Laisky/go-config/v2"

	"github.com/Laisky/smart-email-finder/library/config"
	"github.com/Laisky/smart-email-finder/library/search"
)

// configGetter retrieves raw configuration values by dotted key path.
type configGetter func(key string) any

// validateStartupConfig validates startup configuration from the shared config source.
// It returns an error when any configured value is malformed or violates constraints.
func validateStartupConfig() error {
	return validateStartupConfigWithGetter(func(key string) any {
		return gconfig.S.Get(key)
	})
}

// validateStartupConfigWithGetter validates startup configuration via a key-value getter.
// It accepts a value getter and returns nil when all configured values are valid.
func validateStartupConfigWithGetter(get configGetter) error {
	if get == nil {
		return errors.New("config getter is nil")
	}

	validationErrs := make([]string, 0)

	validateWebConfig(get, &validationErrs)
	validateSessionConfig(get, &validationErrs)
	validateSearchConfig(get, &validationErrs)
	validateGenerationConfig(get, &validationErrs)

	if len(validationErrs) == 0 {
		return nil
	}

	return errors.Errorf("invalid configuration:\n - %s", strings.Join(validationErrs, "\n - "))
}

// validateWebConfig validates the HTTP listener and CORS settings.
// It accepts a getter and an error collector pointer and appends validation errors.
func validateWebConfig(get configGetter, errs *[]string) {
	validateOptionalHostPort(get, "settings.web.listen", errs)
	validateOptionalBool(get, "settings.web.enable_metrics", errs)
	validateOptionalStringList(get, "settings.web.allowed_origins", errs)
}

// validateSessionConfig validates the session registry settings.
// It accepts a getter and an error collector pointer and appends validation errors.
func validateSessionConfig(get configGetter, errs *[]string) {
	validateOptionalIntMin(get, "settings.session.idle_ttl_sec", 1, errs)
}

// validateSearchConfig validates the search provider settings.
// It accepts a getter and an error collector pointer and appends validation errors.
func validateSearchConfig(get configGetter, errs *[]string) {
	modes := make([]string, 0, len(search.Modes()))
	for _, mode := range search.Modes() {
		modes = append(modes, string(mode))
	}

	validateOptionalEnum(get, "settings.search.default_mode", modes, errs)
	validateOptionalIntMin(get, "settings.search.http_timeout_sec", 1, errs)
	validateOptionalURL(get, "settings.search.serpapi.endpoint", errs)
	validateOptionalURL(get, "settings.search.duckduckgo.endpoint", errs)
	validateOptionalURL(get, "settings.search.hunter.endpoint", errs)
}

// validateGenerationConfig validates the text-generation settings.
// It accepts a getter and an error collector pointer and appends validation errors.
func validateGenerationConfig(get configGetter, errs *[]string) {
	validateOptionalEnum(get, "settings.generation.provider",
		[]string{config.GenerationProviderGemini, config.GenerationProviderOpenAI}, errs)
	validateOptionalStringNonEmpty(get, "settings.generation.model", errs)
	validateOptionalURL(get, "settings.generation.endpoint", errs)
	validateOptionalIntMin(get, "settings.generation.timeout_sec", 1, errs)
	validateOptionalFloatRange(get, "settings.generation.temperature", 0, 2, errs)
}

// validateOptionalBool validates an optionally configured boolean key.
// It accepts a getter, the key, and an error collector pointer and appends validation errors.
func validateOptionalBool(get configGetter, key string, errs *[]string) {
	raw := get(key)
	if raw == nil {
		return
	}

	if _, ok := parseStrictBool(raw); !ok {
		appendValidationError(errs, "%s must be a boolean", key)
	}
}

// validateOptionalIntMin validates an optionally configured integer key with a minimum constraint.
// It accepts a getter, the key, a minimum value, and an error collector pointer and appends validation errors.
func validateOptionalIntMin(get configGetter, key string, min int, errs *[]string) {
	raw := get(key)
	if raw == nil {
		return
	}

	value, parseErr := parseStrictInt(raw)
	if parseErr != nil {
		appendValidationError(errs, "%s must be an integer", key)
		return
	}

	if value < min {
		appendValidationError(errs, "%s must be >= %d", key, min)
	}
}

// validateOptionalFloatRange validates an optionally configured number within [min, max].
func validateOptionalFloatRange(get configGetter, key string, min, max float64, errs *[]string) {
	raw := get(key)
	if raw == nil {
		return
	}

	value, parseErr := parseStrictFloat(raw)
	if parseErr != nil {
		appendValidationError(errs, "%s must be a number", key)
		return
	}

	if value < min || value > max {
		appendValidationError(errs, "%s must be between %g and %g", key, min, max)
	}
}

// validateOptionalURL validates an optionally configured absolute URL key.
// It accepts a getter, the key, and an error collector pointer and appends validation errors.
func validateOptionalURL(get configGetter, key string, errs *[]string) {
	raw := get(key)
	if raw == nil {
		return
	}

	value, parseErr := parseStrictString(raw)
	if parseErr != nil {
		appendValidationError(errs, "%s must be a string URL", key)
		return
	}

	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		appendValidationError(errs, "%s must not be empty", key)
		return
	}

	parsed, err := url.Parse(trimmed)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		appendValidationError(errs, "%s must be a valid absolute URL", key)
	}
}

// validateOptionalStringNonEmpty validates an optionally configured non-empty string key.
// It accepts a getter, the key, and an error collector pointer and appends validation errors.
func validateOptionalStringNonEmpty(get configGetter, key string, errs *[]string) {
	raw := get(key)
	if raw == nil {
		return
	}

	value, parseErr := parseStrictString(raw)
	if parseErr != nil {
		appendValidationError(errs, "%s must be a string", key)
		return
	}

	if strings.TrimSpace(value) == "" {
		appendValidationError(errs, "%s must not be empty", key)
	}
}

// validateOptionalEnum validates an optionally configured string key against allowed values.
// It accepts a getter, the key, the allowed values, and an error collector pointer and appends validation errors.
func validateOptionalEnum(get configGetter, key string, allowed []string, errs *[]string) {
	raw := get(key)
	if raw == nil {
		return
	}

	value, parseErr := parseStrictString(raw)
	if parseErr != nil {
		appendValidationError(errs, "%s must be a string", key)
		return
	}

	if !slices.Contains(allowed, strings.ToLower(strings.TrimSpace(value))) {
		appendValidationError(errs, "%s must be one of %s", key, strings.Join(allowed, ", "))
	}
}

// validateOptionalHostPort validates an optionally configured host:port listen address.
// It accepts a getter, the key, and an error collector pointer and appends validation errors.
func validateOptionalHostPort(get configGetter, key string, errs *[]string) {
	raw := get(key)
	if raw == nil {
		return
	}

	value, parseErr := parseStrictString(raw)
	if parseErr != nil {
		appendValidationError(errs, "%s must be a string address", key)
		return
	}

	_, port, err := net.SplitHostPort(strings.TrimSpace(value))
	if err != nil {
		appendValidationError(errs, "%s must be a host:port address", key)
		return
	}
	if n, err := strconv.Atoi(port); err != nil || n < 0 || n > 65535 {
		appendValidationError(errs, "%s has an invalid port", key)
	}
}

// validateOptionalStringList validates an optionally configured list of non-empty strings.
// It accepts a getter, the key, and an error collector pointer and appends validation errors.
func validateOptionalStringList(get configGetter, key string, errs *[]string) {
	raw := get(key)
	if raw == nil {
		return
	}

	var items []any
	switch v := raw.(type) {
	case []any:
		items = v
	case []string:
		for _, s := range v {
			items = append(items, s)
		}
	case string:
		// comma separated, as accepted from env or flags
		return
	default:
		appendValidationError(errs, "%s must be a list of strings", key)
		return
	}

	for i, item := range items {
		value, parseErr := parseStrictString(item)
		if parseErr != nil || strings.TrimSpace(value) == "" {
			appendValidationError(errs, "%s[%d] must be a non-empty string", key, i)
		}
	}
}

// parseStrictBool parses a value as boolean using strict conversion rules.
// It accepts a raw value and returns the parsed boolean and whether parsing succeeded.
func parseStrictBool(value any) (bool, bool) {
	switch v := value.(type) {
	case bool:
		return v, true
	case int:
		return v != 0, true
	case int64:
		return v != 0, true
	case float64:
		if math.Trunc(v) != v {
			return false, false
		}
		return int64(v) != 0, true
	case string:
		trimmed := strings.TrimSpace(v)
		if trimmed == "" {
			return false, false
		}
		switch strings.ToLower(trimmed) {
		case "true", "1", "yes":
			return true, true
		case "false", "0", "no":
			return false, true
		default:
			return false, false
		}
	default:
		return false, false
	}
}

// parseStrictInt parses a value as a strict integer.
// It accepts a raw value and returns the parsed int and an error when parsing fails.
func parseStrictInt(value any) (int, error) {
	switch v := value.(type) {
	case int:
		return v, nil
	case int64:
		return int(v), nil
	case float64:
		if math.Trunc(v) != v {
			return 0, errors.Errorf("%v is not an integer", v)
		}
		return int(v), nil
	case string:
		trimmed := strings.TrimSpace(v)
		if trimmed == "" {
			return 0, errors.New("empty integer string")
		}
		parsed, err := strconv.Atoi(trimmed)
		if err != nil {
			return 0, errors.Wrap(err, "atoi")
		}
		return parsed, nil
	default:
		return 0, errors.Errorf("unsupported int type %T", value)
	}
}

// parseStrictFloat parses a value as a strict number.
func parseStrictFloat(value any) (float64, error) {
	switch v := value.(type) {
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case float64:
		return v, nil
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, errors.Wrap(err, "parse float")
		}
		return parsed, nil
	default:
		return 0, errors.Errorf("unsupported number type %T", value)
	}
}

// parseStrictString parses a value as a strict string.
// It accepts a raw value and returns the parsed string and an error when parsing fails.
func parseStrictString(value any) (string, error) {
	switch v := value.(type) {
	case string:
		return v, nil
	case []byte:
		return string(v), nil
	default:
		return "", errors.Errorf("unsupported string type %T", value)
	}
}

// appendValidationError appends a formatted validation error to the collector.
// It accepts an error slice pointer, a format string, and format arguments, and has no return value.
func appendValidationError(errs *[]string, format string, args ...any) {
	if errs == nil {
		return
	}
	*errs = append(*errs, fmt.Sprintf(format, args...))
}
