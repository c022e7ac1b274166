// Package model defines the email candidates and the per-session aggregation state.
package model

import (
	"strings"
)

// Confidence is the qualitative trust label of a candidate address.
type Confidence string

const (
	// ConfidenceFound marks an address extracted verbatim from search text.
	ConfidenceFound Confidence = "found"
	// ConfidenceHigh is a generated address backed by strong evidence.
	ConfidenceHigh Confidence = "high"
	// ConfidenceMedium is a generated address backed by partial evidence.
	ConfidenceMedium Confidence = "medium"
	// ConfidenceLow is a generated address that is mostly a guess.
	ConfidenceLow Confidence = "low"
)

// ParseConfidence maps a model supplied label onto high/medium/low,
// returning fallback for anything else.
func ParseConfidence(raw string, fallback Confidence) Confidence {
	switch c := Confidence(strings.ToLower(strings.TrimSpace(raw))); c {
	case ConfidenceHigh, ConfidenceMedium, ConfidenceLow:
		return c
	default:
		return fallback
	}
}

// FoundEmail is an address extracted from search result text.
type FoundEmail struct {
	Address           string     `json:"email"`
	SourceDescription string     `json:"source"`
	ConfidenceLabel   Confidence `json:"confidence"`
}

// GeneratedEmail is a candidate produced by the text generation service.
type GeneratedEmail struct {
	Name              string     `json:"name"`
	Address           string     `json:"email"`
	Role              string     `json:"role,omitempty"`
	SourceDescription string     `json:"source"`
	ConfidenceLabel   Confidence `json:"confidence"`
}
