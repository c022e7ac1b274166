package serpgoogle

import (
	"encoding/json"
	"time"

	"github.com/Laisky/errors/v2"

	"github.com/Laisky/smart-email-finder/library/search"
)

// serpResponse models the subset of fields required from the SerpApi response.
type serpResponse struct {
	AnswerBox        *serpAnswerBox      `json:"answer_box"`
	KnowledgeGraph   *serpKnowledgeGraph `json:"knowledge_graph"`
	OrganicResults   []serpOrganicResult `json:"organic_results"`
	RelatedSearches  []serpRelated       `json:"related_searches"`
	PeopleAlsoAsk    []serpQuestion      `json:"people_also_ask"`
	RelatedQuestions []serpQuestion      `json:"related_questions"`
}

type serpAnswerBox struct {
	Answer  string `json:"answer"`
	Snippet string `json:"snippet"`
	Link    string `json:"link"`
}

type serpKnowledgeGraph struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Source      *struct {
		Name string `json:"name"`
	} `json:"source"`
}

type serpOrganicResult struct {
	Title                   string   `json:"title"`
	Snippet                 string   `json:"snippet"`
	SnippetHighlightedWords []string `json:"snippet_highlighted_words"`
	Link                    string   `json:"link"`
	DisplayedLink           string   `json:"displayed_link"`
}

type serpRelated struct {
	Query string `json:"query"`
	Link  string `json:"link"`
}

type serpQuestion struct {
	Question string `json:"question"`
	Snippet  string `json:"snippet"`
}

// Normalize converts a raw SerpApi payload into a SearchResult.
func Normalize(query string, raw []byte, at time.Time) (*search.SearchResult, error) {
	var payload serpResponse
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, errors.Wrap(err, "unmarshal serp google response")
	}

	result := search.NewResult(query, search.SourceGeneralSearch, ProviderName, at)

	if box := payload.AnswerBox; box != nil {
		result.AnswerBox = &search.AnswerBox{Answer: box.Answer, Snippet: box.Snippet, Link: box.Link}
	}
	if kg := payload.KnowledgeGraph; kg != nil {
		result.KnowledgeGraph = &search.KnowledgeGraph{Title: kg.Title, Description: kg.Description}
		if kg.Source != nil {
			result.KnowledgeGraph.SourceName = kg.Source.Name
		}
	}

	for _, item := range search.Truncate(payload.OrganicResults, search.MaxOrganicEntries) {
		highlighted := item.SnippetHighlightedWords
		if highlighted == nil {
			highlighted = []string{}
		}
		result.OrganicEntries = append(result.OrganicEntries, search.OrganicEntry{
			Title:            item.Title,
			Snippet:          item.Snippet,
			HighlightedWords: highlighted,
			Link:             item.Link,
			DisplayedLink:    item.DisplayedLink,
		})
	}

	for _, item := range search.Truncate(payload.RelatedSearches, search.MaxRelatedEntries) {
		result.RelatedEntries = append(result.RelatedEntries, search.RelatedEntry{Text: item.Query, URL: item.Link})
	}

	questions := payload.PeopleAlsoAsk
	if len(questions) == 0 {
		questions = payload.RelatedQuestions
	}
	for _, item := range search.Truncate(questions, search.MaxPeopleAlsoAsk) {
		result.PeopleAlsoAsk = append(result.PeopleAlsoAsk, search.Question{Question: item.Question, Snippet: item.Snippet})
	}

	return result, nil
}
