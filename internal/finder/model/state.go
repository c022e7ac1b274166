package model

import (
	"slices"
	"sync"

	"github.com/Laisky/smart-email-finder/library/email"
	"github.com/Laisky/smart-email-finder/library/search"
)

// State accumulates one session's lookups. Every mutation replaces or
// prepends whole lists under the lock, so concurrent completions never
// interleave partial updates.
type State struct {
	mu sync.RWMutex

	searchResults   []*search.SearchResult
	foundEmails     []FoundEmail
	domainEmails    []search.DomainEmail
	generatedEmails []GeneratedEmail

	err           string
	rawGeneration string
	contextText   string
}

// Snapshot is a copy of State safe to read and serialize.
type Snapshot struct {
	SearchResults   []*search.SearchResult `json:"searchResults"`
	FoundEmails     []FoundEmail           `json:"foundEmails"`
	DomainEmails    []search.DomainEmail   `json:"domainEmails"`
	GeneratedEmails []GeneratedEmail       `json:"generatedEmails"`
	Error           string                 `json:"error,omitempty"`
	RawGeneration   string                 `json:"rawGeneration,omitempty"`
	Context         string                 `json:"context,omitempty"`
}

// NewState returns an empty State.
func NewState() *State {
	return &State{}
}

// AddResult prepends r, so results are kept newest first.
func (s *State) AddResult(r *search.SearchResult) {
	if r == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.searchResults = slices.Insert(slices.Clone(s.searchResults), 0, r)
}

// RemoveResult drops the result at index, reporting whether it existed.
func (s *State) RemoveResult(index int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if index < 0 || index >= len(s.searchResults) {
		return false
	}
	s.searchResults = slices.Delete(slices.Clone(s.searchResults), index, index+1)
	return true
}

// SetFoundEmails replaces the extracted addresses.
func (s *State) SetFoundEmails(found []FoundEmail) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.foundEmails = slices.Clone(found)
}

// SetDomainEmails replaces the provider addresses.
func (s *State) SetDomainEmails(emails []search.DomainEmail) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.domainEmails = slices.Clone(emails)
}

// SetGeneratedEmails replaces the generated addresses, keeping only valid ones.
func (s *State) SetGeneratedEmails(emails []GeneratedEmail) {
	valid := validGenerated(emails)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.generatedEmails = valid
}

// AddGeneratedEmails prepends the valid entries of emails, keeping their order.
func (s *State) AddGeneratedEmails(emails []GeneratedEmail) {
	valid := validGenerated(emails)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.generatedEmails = append(valid, s.generatedEmails...)
}

// DomainEmail returns the provider address at index.
func (s *State) DomainEmail(index int) (search.DomainEmail, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if index < 0 || index >= len(s.domainEmails) {
		return search.DomainEmail{}, false
	}
	return s.domainEmails[index], true
}

// DomainEmails returns a copy of the provider addresses.
func (s *State) DomainEmails() []search.DomainEmail {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.domainEmails)
}

// SetError records the pending user-facing error; "" clears it.
func (s *State) SetError(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = msg
}

// SetRawGeneration records the unparsed generation output of the last failed parse.
func (s *State) SetRawGeneration(raw string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rawGeneration = raw
}

// SetContext records the context blob of the latest lookup.
func (s *State) SetContext(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.contextText = text
}

// Reset clears every list and the pending error.
func (s *State) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.searchResults = nil
	s.foundEmails = nil
	s.domainEmails = nil
	s.generatedEmails = nil
	s.err = ""
	s.rawGeneration = ""
	s.contextText = ""
}

// Snapshot copies the current state. Lists are never nil.
func (s *State) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{
		SearchResults:   append([]*search.SearchResult{}, s.searchResults...),
		FoundEmails:     append([]FoundEmail{}, s.foundEmails...),
		DomainEmails:    append([]search.DomainEmail{}, s.domainEmails...),
		GeneratedEmails: append([]GeneratedEmail{}, s.generatedEmails...),
		Error:           s.err,
		RawGeneration:   s.rawGeneration,
		Context:         s.contextText,
	}
}

func validGenerated(emails []GeneratedEmail) []GeneratedEmail {
	out := make([]GeneratedEmail, 0, len(emails))
	for _, e := range emails {
		if email.IsValid(e.Address) {
			out = append(out, e)
		}
	}
	return out
}
