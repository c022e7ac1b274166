package service

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/Laisky/smart-email-finder/internal/finder/model"
	"github.com/Laisky/smart-email-finder/library/email"
	"github.com/Laisky/smart-email-finder/library/search"
)

const (
	entrySeparator          = " -- "
	untitledSource          = "Search Result"
	untitledHighlightSource = "Search Result (Highlighted)"
)

var emailPattern = regexp.MustCompile(`[\w.-]+@[\w.-]+\.\w{2,}`)

// ExtractContext flattens the organic entries of r into one context blob and
// collects the valid addresses embedded in them, deduplicated within this
// call with the first occurrence winning. Email domain results carry
// structured addresses and yield nothing.
func ExtractContext(r *search.SearchResult) (string, []model.FoundEmail) {
	found := []model.FoundEmail{}
	if r == nil || r.Source == search.SourceEmailDomainSearch {
		return "", found
	}

	var (
		sb   strings.Builder
		seen = map[string]struct{}{}
	)
	add := func(candidate, source string) {
		addr := email.Normalize(candidate)
		if !email.IsValid(addr) {
			return
		}
		if _, ok := seen[addr]; ok {
			return
		}
		seen[addr] = struct{}{}
		found = append(found, model.FoundEmail{
			Address:           addr,
			SourceDescription: source,
			ConfidenceLabel:   model.ConfidenceFound,
		})
	}

	for _, entry := range r.OrganicEntries {
		sb.WriteString(entry.Title)
		sb.WriteString(entrySeparator)
		sb.WriteString(entry.Snippet)
		sb.WriteString(entrySeparator)
		sb.WriteString(strings.Join(entry.HighlightedWords, ","))

		for _, match := range emailPattern.FindAllString(entry.Snippet, -1) {
			add(match, sourceOr(entry.Title, untitledSource))
		}
		// highlighted words are already discrete tokens
		for _, word := range entry.HighlightedWords {
			add(word, sourceOr(entry.Title, untitledHighlightSource))
		}
	}

	return sb.String(), found
}

// DomainContext renders provider addresses as
// "<first> <last> - <address> - <position>" joined by "; ".
func DomainContext(emails []search.DomainEmail) string {
	lines := make([]string, 0, len(emails))
	for _, e := range emails {
		lines = append(lines, fmt.Sprintf("%s %s - %s - %s",
			e.FirstName, e.LastName, e.Address, sourceOr(e.Position, "Unknown")))
	}
	return strings.Join(lines, "; ")
}

// PersonalizedContext describes one sample provider address together with
// every other address known for the domain.
func PersonalizedContext(sample search.DomainEmail, all []search.DomainEmail) string {
	others := make([]string, 0, len(all))
	for _, e := range all {
		others = append(others, e.Address)
	}

	return strings.Join([]string{
		"Company Domain: " + email.Domain(sample.Address),
		fmt.Sprintf("Sample Employee: %s %s - %s", sample.FirstName, sample.LastName, sample.Address),
		"Position: " + sourceOr(sample.Position, "Unknown"),
		"Department: " + sourceOr(sample.Department, "Unknown"),
		"Email Pattern Analysis: " + sample.Address,
		"Additional Hunter.io emails: " + strings.Join(others, ", "),
	}, "\n")
}

func sourceOr(v, fallback string) string {
	if strings.TrimSpace(v) == "" {
		return fallback
	}
	return v
}
