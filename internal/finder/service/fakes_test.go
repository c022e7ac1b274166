package service

import (
	"context"
	"sync"

	"github.com/Laisky/smart-email-finder/library/search"
)

type fakeBackend struct {
	mu           sync.Mutex
	text         string
	err          error
	prompts      []string
	instructions []string
}

func (f *fakeBackend) Name() string { return "fake" }

func (f *fakeBackend) Generate(_ context.Context, instructions, prompt string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prompts = append(f.prompts, prompt)
	f.instructions = append(f.instructions, instructions)
	return f.text, f.err
}

func (f *fakeBackend) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.prompts)
}

type fakeSearcher struct {
	result *search.SearchResult
	err    error
	modes  []search.Mode
}

func (f *fakeSearcher) Search(_ context.Context, mode search.Mode, _ string) (*search.SearchResult, error) {
	f.modes = append(f.modes, mode)
	return f.result, f.err
}
