package hunter

import (
	"encoding/json"
	"time"

	"github.com/Laisky/errors/v2"

	"github.com/Laisky/smart-email-finder/library/search"
)

type domainSearchResponse struct {
	Data struct {
		Domain       string `json:"domain"`
		Organization string `json:"organization"`
		Emails       []struct {
			Value      string `json:"value"`
			Type       string `json:"type"`
			Confidence int    `json:"confidence"`
			FirstName  string `json:"first_name"`
			LastName   string `json:"last_name"`
			Position   string `json:"position"`
			Department string `json:"department"`
		} `json:"emails"`
	} `json:"data"`
}

type emailFinderResponse struct {
	Data struct {
		Email     string `json:"email"`
		Score     int    `json:"score"`
		FirstName string `json:"first_name"`
		LastName  string `json:"last_name"`
		Position  string `json:"position"`
		Domain    string `json:"domain"`
		Company   string `json:"company"`
	} `json:"data"`
}

// NormalizeDomainSearch converts a domain-search payload into a SearchResult.
// Domain and organization default to the queried domain when absent.
func NormalizeDomainSearch(domain string, raw []byte, at time.Time) (*search.SearchResult, error) {
	var payload domainSearchResponse
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, errors.Wrap(err, "unmarshal hunter domain search response")
	}

	result := search.NewResult(domain, search.SourceEmailDomainSearch, ProviderName, at)
	result.Domain = firstNonEmpty(payload.Data.Domain, domain)
	result.Organization = firstNonEmpty(payload.Data.Organization, domain)

	for _, item := range payload.Data.Emails {
		if item.Value == "" {
			continue
		}
		result.DomainEmails = append(result.DomainEmails, search.DomainEmail{
			Address:           item.Value,
			FirstName:         item.FirstName,
			LastName:          item.LastName,
			Position:          item.Position,
			Department:        item.Department,
			Type:              item.Type,
			ConfidencePercent: search.ClampPercent(item.Confidence),
		})
	}

	return result, nil
}

// NormalizeEmailFinder converts an email-finder payload into a SearchResult.
func NormalizeEmailFinder(query string, raw []byte, at time.Time) (*search.SearchResult, error) {
	var payload emailFinderResponse
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, errors.Wrap(err, "unmarshal hunter email finder response")
	}

	result := search.NewResult(query, search.SourceEmailDomainSearch, ProviderName, at)
	result.Domain = payload.Data.Domain
	result.Organization = firstNonEmpty(payload.Data.Company, payload.Data.Domain)
	if payload.Data.Email != "" {
		result.DomainEmails = append(result.DomainEmails, search.DomainEmail{
			Address:           payload.Data.Email,
			FirstName:         payload.Data.FirstName,
			LastName:          payload.Data.LastName,
			Position:          payload.Data.Position,
			ConfidencePercent: search.ClampPercent(payload.Data.Score),
		})
	}

	return result, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
