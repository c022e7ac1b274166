package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Laisky/smart-email-finder/internal/finder/model"
	"github.com/Laisky/smart-email-finder/library/search"
)

func generalResult(entries ...search.OrganicEntry) *search.SearchResult {
	r := search.NewResult("acme", search.SourceGeneralSearch, "SerpAPI", time.Unix(0, 0))
	r.OrganicEntries = entries
	return r
}

func TestExtractContextFindsSnippetAddress(t *testing.T) {
	t.Parallel()

	text, found := ExtractContext(generalResult(search.OrganicEntry{
		Title:            "Acme team",
		Snippet:          "Contact John at john.doe@acme.com for details",
		HighlightedWords: []string{"John", "acme"},
	}))

	require.Equal(t, "Acme team -- Contact John at john.doe@acme.com for details -- John,acme", text)
	require.Equal(t, []model.FoundEmail{{
		Address:           "john.doe@acme.com",
		SourceDescription: "Acme team",
		ConfidenceLabel:   model.ConfidenceFound,
	}}, found)
}

func TestExtractContextDedupsFirstSourceWins(t *testing.T) {
	t.Parallel()

	_, found := ExtractContext(generalResult(
		search.OrganicEntry{Title: "First", Snippet: "mail John.Doe@Acme.com."},
		search.OrganicEntry{Title: "Second", Snippet: "again john.doe@acme.com and jane@acme.com"},
	))

	require.Len(t, found, 2)
	require.Equal(t, "john.doe@acme.com", found[0].Address)
	require.Equal(t, "First", found[0].SourceDescription)
	require.Equal(t, "jane@acme.com", found[1].Address)
	require.Equal(t, "Second", found[1].SourceDescription)
}

func TestExtractContextRejectsInvalid(t *testing.T) {
	t.Parallel()

	text, found := ExtractContext(generalResult(search.OrganicEntry{
		Title:   "Bad",
		Snippet: "write to not-an-email@@bad now",
	}))

	require.NotEmpty(t, text)
	require.Empty(t, found)
	require.NotNil(t, found)
}

func TestExtractContextHighlightedWords(t *testing.T) {
	t.Parallel()

	_, found := ExtractContext(generalResult(
		search.OrganicEntry{Snippet: "no address here", HighlightedWords: []string{" Sales@Acme.com ", "sales"}},
		search.OrganicEntry{Title: "Titled", HighlightedWords: []string{"ops@acme.com", "sales@acme.com"}},
	))

	require.Equal(t, []model.FoundEmail{
		{Address: "sales@acme.com", SourceDescription: "Search Result (Highlighted)", ConfidenceLabel: model.ConfidenceFound},
		{Address: "ops@acme.com", SourceDescription: "Titled", ConfidenceLabel: model.ConfidenceFound},
	}, found)
}

func TestExtractContextSkipsDomainResults(t *testing.T) {
	t.Parallel()

	r := search.NewResult("acme.com", search.SourceEmailDomainSearch, "Hunter.io", time.Unix(0, 0))
	r.OrganicEntries = []search.OrganicEntry{{Snippet: "x@acme.com"}}

	text, found := ExtractContext(r)
	require.Empty(t, text)
	require.Empty(t, found)

	text, found = ExtractContext(nil)
	require.Empty(t, text)
	require.Empty(t, found)
}

func TestDomainContext(t *testing.T) {
	t.Parallel()

	text := DomainContext([]search.DomainEmail{
		{Address: "jane.doe@acme.com", FirstName: "Jane", LastName: "Doe", Position: "CTO"},
		{Address: "info@acme.com"},
	})
	require.Equal(t, "Jane Doe - jane.doe@acme.com - CTO;   - info@acme.com - Unknown", text)
}

func TestPersonalizedContext(t *testing.T) {
	t.Parallel()

	sample := search.DomainEmail{Address: "jane.doe@acme.com", FirstName: "Jane", LastName: "Doe", Department: "it"}
	text := PersonalizedContext(sample, []search.DomainEmail{sample, {Address: "bob@acme.com"}})

	require.Contains(t, text, "Company Domain: acme.com")
	require.Contains(t, text, "Sample Employee: Jane Doe - jane.doe@acme.com")
	require.Contains(t, text, "Position: Unknown")
	require.Contains(t, text, "Department: it")
	require.Contains(t, text, "Email Pattern Analysis: jane.doe@acme.com")
	require.Contains(t, text, "Additional Hunter.io emails: jane.doe@acme.com, bob@acme.com")
}
