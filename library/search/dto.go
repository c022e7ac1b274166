package search

import (
	"encoding/json"
	"time"
)

// Source identifies which kind of upstream produced a SearchResult.
type Source string

const (
	// SourceGeneralSearch is the general web search provider (SerpAPI google).
	SourceGeneralSearch Source = "general_search"
	// SourcePrivacySearch is the privacy-focused provider (DuckDuckGo).
	SourcePrivacySearch Source = "privacy_search"
	// SourceEmailDomainSearch is the professional email lookup provider (Hunter.io).
	SourceEmailDomainSearch Source = "email_domain_search"
)

const (
	// MaxOrganicEntries caps the organic entries kept per result.
	MaxOrganicEntries = 5
	// MaxRelatedEntries caps the related entries kept per result.
	MaxRelatedEntries = 3
	// MaxPeopleAlsoAsk caps the people-also-ask entries kept per result.
	MaxPeopleAlsoAsk = 3
)

// SearchResult is the provider-agnostic outcome of one lookup.
// It is built once by an adapter and never mutated afterwards.
type SearchResult struct {
	Query     string    `json:"query"`
	Timestamp time.Time `json:"timestamp"`
	Source    Source    `json:"source"`
	// Provider is the human readable upstream name, e.g. "SerpAPI".
	Provider string `json:"provider"`

	AnswerBox      *AnswerBox      `json:"answerBox,omitempty"`
	KnowledgeGraph *KnowledgeGraph `json:"knowledgeGraph,omitempty"`
	OrganicEntries []OrganicEntry  `json:"organicEntries"`
	RelatedEntries []RelatedEntry  `json:"relatedEntries"`
	PeopleAlsoAsk  []Question      `json:"peopleAlsoAsk"`

	Abstract         string          `json:"abstract,omitempty"`
	AbstractText     string          `json:"abstractText,omitempty"`
	AbstractSource   string          `json:"abstractSource,omitempty"`
	AbstractURL      string          `json:"abstractUrl,omitempty"`
	Definition       string          `json:"definition,omitempty"`
	DefinitionSource string          `json:"definitionSource,omitempty"`
	DefinitionURL    string          `json:"definitionUrl,omitempty"`
	Answer           string          `json:"answer,omitempty"`
	AnswerType       string          `json:"answerType,omitempty"`
	Infobox          json.RawMessage `json:"infobox,omitempty"`

	Domain       string        `json:"domain,omitempty"`
	Organization string        `json:"organization,omitempty"`
	DomainEmails []DomainEmail `json:"domainEmails"`
}

// AnswerBox is the provider's direct answer block.
type AnswerBox struct {
	Answer  string `json:"answer,omitempty"`
	Snippet string `json:"snippet,omitempty"`
	Link    string `json:"link,omitempty"`
}

// KnowledgeGraph is the provider's entity panel.
type KnowledgeGraph struct {
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
	SourceName  string `json:"sourceName,omitempty"`
}

// OrganicEntry is one ranked web result.
type OrganicEntry struct {
	Title            string   `json:"title"`
	Snippet          string   `json:"snippet"`
	HighlightedWords []string `json:"highlightedWords"`
	Link             string   `json:"link"`
	DisplayedLink    string   `json:"displayedLink"`
}

// RelatedEntry is a related search or topic.
type RelatedEntry struct {
	Text string `json:"text"`
	URL  string `json:"url"`
}

// Question is a people-also-ask entry.
type Question struct {
	Question string `json:"question"`
	Snippet  string `json:"snippet"`
}

// DomainEmail is a structured address returned by the email lookup provider.
type DomainEmail struct {
	Address           string `json:"address"`
	FirstName         string `json:"firstName,omitempty"`
	LastName          string `json:"lastName,omitempty"`
	Position          string `json:"position,omitempty"`
	Department        string `json:"department,omitempty"`
	Type              string `json:"type,omitempty"`
	ConfidencePercent int    `json:"confidencePercent"`
}

// NewResult starts a result for query with empty, non-nil lists.
func NewResult(query string, source Source, provider string, at time.Time) *SearchResult {
	return &SearchResult{
		Query:          query,
		Timestamp:      at,
		Source:         source,
		Provider:       provider,
		OrganicEntries: []OrganicEntry{},
		RelatedEntries: []RelatedEntry{},
		PeopleAlsoAsk:  []Question{},
		DomainEmails:   []DomainEmail{},
	}
}

// Truncate returns a copy of the first n items, preserving order.
func Truncate[T any](items []T, n int) []T {
	if n < 0 {
		n = 0
	}
	if len(items) < n {
		n = len(items)
	}
	out := make([]T, n)
	copy(out, items[:n])
	return out
}

// ClampPercent bounds a confidence score to 0-100.
func ClampPercent(v int) int {
	switch {
	case v < 0:
		return 0
	case v > 100:
		return 100
	default:
		return v
	}
}
