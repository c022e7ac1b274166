package serpgoogle

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Laisky/errors/v2"
	"github.com/stretchr/testify/require"

	"github.com/Laisky/smart-email-finder/library/search"
)

func organicResults(n int) []map[string]any {
	out := make([]map[string]any, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, map[string]any{
			"title":                     fmt.Sprintf("Result %d", i),
			"snippet":                   fmt.Sprintf("snippet %d", i),
			"snippet_highlighted_words": []string{fmt.Sprintf("hl%d", i)},
			"link":                      fmt.Sprintf("https://example.com/%d", i),
			"displayed_link":            fmt.Sprintf("example.com/%d", i),
		})
	}
	return out
}

func TestSearchEngineSuccess(t *testing.T) {
	at := time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "GET", r.Method)
		require.Equal(t, "acme careers", r.URL.Query().Get("q"))
		require.Equal(t, "test-key", r.URL.Query().Get("api_key"))
		require.Equal(t, "google", r.URL.Query().Get("engine"))

		payload := map[string]any{
			"answer_box":      map[string]string{"answer": "42", "snippet": "the answer", "link": "https://a"},
			"knowledge_graph": map[string]any{"title": "Acme", "description": "Widgets", "source": map[string]string{"name": "Wikipedia"}},
			"organic_results": organicResults(7),
			"related_searches": []map[string]string{
				{"query": "r1", "link": "https://r/1"}, {"query": "r2"}, {"query": "r3"}, {"query": "r4"},
			},
			"related_questions": []map[string]string{
				{"question": "q1", "snippet": "s1"}, {"question": "q2"}, {"question": "q3"}, {"question": "q4"},
			},
		}

		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(payload))
	}))
	defer server.Close()

	engine := NewSearchEngine("test-key",
		WithEndpoint(server.URL),
		WithHTTPClient(server.Client()),
		WithClock(func() time.Time { return at }),
	)

	result, err := engine.Search(context.Background(), " acme careers ")
	require.NoError(t, err)
	require.Equal(t, "acme careers", result.Query)
	require.Equal(t, search.SourceGeneralSearch, result.Source)
	require.Equal(t, at, result.Timestamp)
	require.Equal(t, &search.AnswerBox{Answer: "42", Snippet: "the answer", Link: "https://a"}, result.AnswerBox)
	require.Equal(t, "Wikipedia", result.KnowledgeGraph.SourceName)

	require.Len(t, result.OrganicEntries, search.MaxOrganicEntries)
	for i, entry := range result.OrganicEntries {
		require.Equal(t, fmt.Sprintf("Result %d", i), entry.Title)
		require.Equal(t, []string{fmt.Sprintf("hl%d", i)}, entry.HighlightedWords)
	}
	require.Len(t, result.RelatedEntries, search.MaxRelatedEntries)
	require.Equal(t, search.RelatedEntry{Text: "r1", URL: "https://r/1"}, result.RelatedEntries[0])
	require.Len(t, result.PeopleAlsoAsk, search.MaxPeopleAlsoAsk)
	require.Equal(t, "q1", result.PeopleAlsoAsk[0].Question)
	require.Empty(t, result.DomainEmails)
}

func TestSearchEngineMissingOptionalFields(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"organic_results":[{"title":"Only title"}]}`))
	}))
	defer server.Close()

	engine := NewSearchEngine("key", WithEndpoint(server.URL), WithHTTPClient(server.Client()))
	result, err := engine.Search(context.Background(), "query")
	require.NoError(t, err)
	require.Nil(t, result.AnswerBox)
	require.Nil(t, result.KnowledgeGraph)
	require.Len(t, result.OrganicEntries, 1)
	require.NotNil(t, result.OrganicEntries[0].HighlightedWords)
	require.NotNil(t, result.RelatedEntries)
	require.NotNil(t, result.PeopleAlsoAsk)
}

func TestSearchEngineFetchRawPassthrough(t *testing.T) {
	body := `{"search_metadata":{"id":"abc"},"organic_results":[]}`
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(body))
	}))
	defer server.Close()

	engine := NewSearchEngine("key", WithEndpoint(server.URL), WithHTTPClient(server.Client()))
	raw, err := engine.FetchRaw(context.Background(), "query")
	require.NoError(t, err)
	require.JSONEq(t, body, string(raw))
}

func TestSearchEngineReportsAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"error":"quota"}`))
	}))
	defer server.Close()

	engine := NewSearchEngine("key", WithEndpoint(server.URL), WithHTTPClient(server.Client()))

	result, err := engine.Search(context.Background(), "query")
	require.Error(t, err)
	require.Nil(t, result)
	require.Contains(t, err.Error(), "quota")
}

func TestSearchEngineHandlesHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`oops`))
	}))
	defer server.Close()

	engine := NewSearchEngine("key", WithEndpoint(server.URL), WithHTTPClient(server.Client()))

	result, err := engine.Search(context.Background(), "query")
	require.Error(t, err)
	require.Nil(t, result)

	var upErr *search.UpstreamError
	require.True(t, errors.As(err, &upErr))
	require.Equal(t, http.StatusInternalServerError, upErr.HTTPStatus)
	require.Equal(t, ProviderName, upErr.Provider)
	require.Contains(t, err.Error(), "returned status")
}

func TestSearchEngineMalformedPayload(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html>`))
	}))
	defer server.Close()

	engine := NewSearchEngine("key", WithEndpoint(server.URL), WithHTTPClient(server.Client()))
	_, err := engine.Search(context.Background(), "query")

	var upErr *search.UpstreamError
	require.True(t, errors.As(err, &upErr))
}

func TestSearchEngineValidatesInput(t *testing.T) {
	engine := NewSearchEngine("")

	result, err := engine.Search(context.Background(), "query")
	require.Error(t, err)
	require.Nil(t, result)
	require.Contains(t, err.Error(), "api key")

	_, err = NewSearchEngine("key").Search(context.Background(), " ")
	var validationErr *search.ValidationError
	require.True(t, errors.As(err, &validationErr))
}
