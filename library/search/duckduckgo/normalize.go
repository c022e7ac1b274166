package duckduckgo

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/Laisky/errors/v2"

	"github.com/Laisky/smart-email-finder/library/search"
)

// instantAnswer models the Instant Answer fields the finder consumes.
type instantAnswer struct {
	Abstract         string          `json:"Abstract"`
	AbstractText     string          `json:"AbstractText"`
	AbstractSource   string          `json:"AbstractSource"`
	AbstractURL      string          `json:"AbstractURL"`
	Answer           json.RawMessage `json:"Answer"`
	AnswerType       string          `json:"AnswerType"`
	Definition       string          `json:"Definition"`
	DefinitionSource string          `json:"DefinitionSource"`
	DefinitionURL    string          `json:"DefinitionURL"`
	Infobox          json.RawMessage `json:"Infobox"`
	RelatedTopics    []topic         `json:"RelatedTopics"`
	Results          []topic         `json:"Results"`
}

// topic is one Results or RelatedTopics item.
type topic struct {
	Text     string `json:"Text"`
	FirstURL string `json:"FirstURL"`
}

// Normalize converts a raw Instant Answer payload into a SearchResult.
// DuckDuckGo has no organic results, so OrganicEntries stays empty.
func Normalize(query string, raw []byte, at time.Time) (*search.SearchResult, error) {
	var payload instantAnswer
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, errors.Wrap(err, "unmarshal duckduckgo response")
	}

	result := search.NewResult(query, search.SourcePrivacySearch, ProviderName, at)
	result.Abstract = payload.Abstract
	result.AbstractText = payload.AbstractText
	result.AbstractSource = payload.AbstractSource
	result.AbstractURL = payload.AbstractURL
	result.Answer = answerText(payload.Answer)
	result.AnswerType = payload.AnswerType
	result.Definition = payload.Definition
	result.DefinitionSource = payload.DefinitionSource
	result.DefinitionURL = payload.DefinitionURL
	result.Infobox = infobox(payload.Infobox)

	// each list is capped on its own, direct results first; topic groups carry no text and are skipped
	result.RelatedEntries = append(relatedEntries(payload.Results), relatedEntries(payload.RelatedTopics)...)

	return result, nil
}

func relatedEntries(topics []topic) []search.RelatedEntry {
	var out []search.RelatedEntry
	for _, item := range topics {
		if item.Text == "" && item.FirstURL == "" {
			continue
		}
		out = append(out, search.RelatedEntry{Text: item.Text, URL: item.FirstURL})
	}
	return search.Truncate(out, search.MaxRelatedEntries)
}

// answerText accepts Answer either as a string or as an object, which
// DuckDuckGo uses for some answer types.
func answerText(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}

// infobox drops the empty string DuckDuckGo sends when no infobox exists.
func infobox(raw json.RawMessage) json.RawMessage {
	trimmed := strings.TrimSpace(string(raw))
	switch trimmed {
	case "", `""`, "null", "{}":
		return nil
	}
	return raw
}
