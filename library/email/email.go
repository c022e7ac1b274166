// Package email validates email address syntax.
package email

import (
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// IsValid reports whether s is a syntactically valid email address:
// a non-empty local part, a single '@', a dotted domain and no whitespace.
func IsValid(s string) bool {
	if s == "" || strings.IndexFunc(s, unicode.IsSpace) >= 0 {
		return false
	}

	at := strings.LastIndexByte(s, '@')
	if at <= 0 || at == len(s)-1 {
		return false
	}
	domain := s[at+1:]
	if !strings.Contains(domain, ".") ||
		strings.HasPrefix(domain, ".") ||
		strings.HasSuffix(domain, ".") {
		return false
	}

	return validate.Var(s, "required,email") == nil
}

// Normalize lowercases and trims a candidate address.
func Normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Domain returns the part after the last '@', or "" when there is none.
func Domain(address string) string {
	at := strings.LastIndexByte(address, '@')
	if at < 0 {
		return ""
	}
	return address[at+1:]
}
