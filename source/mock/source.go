package mock

import (
	"context"
	"sync"

	"github.com/poiesic/wordbook/core"
	"github.com/poiesic/wordbook/source"
)

// MockSource is a test double for source.Source and source.TopLooker.
// It allows custom behavior injection via function fields. It is safe
// for concurrent use.
type MockSource struct {
	// LookupFunc is called by Lookup if set.
	// If nil, Lookup returns Entries[word].
	LookupFunc func(ctx context.Context, word string) ([]core.LookupResult, error)

	// LookupTopFunc is called by LookupTop if set.
	// If nil, LookupTop selects the best match from Lookup.
	LookupTopFunc func(ctx context.Context, word string) (core.LookupResult, error)

	// Entries holds canned results keyed by word.
	Entries map[string][]core.LookupResult

	name string

	mu             sync.Mutex
	lookupCalls    int
	lookupTopCalls int
	words          []string
}

var (
	_ source.Source    = (*MockSource)(nil)
	_ source.TopLooker = (*MockSource)(nil)
)

// NewSource creates a mock source with the given tag and no entries.
func NewSource(name string) *MockSource {
	return &MockSource{
		name:    name,
		Entries: make(map[string][]core.LookupResult),
	}
}

// Add registers canned results for word. Each result's Source is set to
// the mock's name when empty.
func (m *MockSource) Add(word string, results ...core.LookupResult) *MockSource {
	for i := range results {
		if results[i].Source == "" {
			results[i].Source = m.name
		}
	}
	m.Entries[word] = append(m.Entries[word], results...)
	return m
}

// Name returns the source tag.
func (m *MockSource) Name() string {
	return m.name
}

// Lookup returns canned or injected results.
func (m *MockSource) Lookup(ctx context.Context, word string) ([]core.LookupResult, error) {
	m.mu.Lock()
	m.lookupCalls++
	m.words = append(m.words, word)
	m.mu.Unlock()

	if m.LookupFunc != nil {
		return m.LookupFunc(ctx, word)
	}

	results := make([]core.LookupResult, 0, len(m.Entries[word]))
	for _, r := range m.Entries[word] {
		results = append(results, r.Clone())
	}
	return results, nil
}

// LookupTop returns the injected result or the best canned match.
func (m *MockSource) LookupTop(ctx context.Context, word string) (core.LookupResult, error) {
	m.mu.Lock()
	m.lookupTopCalls++
	m.mu.Unlock()

	if m.LookupTopFunc != nil {
		return m.LookupTopFunc(ctx, word)
	}
	return source.LookupTop(ctx, m, word)
}

// LookupCalls returns the number of times Lookup was called.
func (m *MockSource) LookupCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lookupCalls
}

// LookupTopCalls returns the number of times LookupTop was called.
func (m *MockSource) LookupTopCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lookupTopCalls
}

// Words returns the words passed to Lookup, in call order.
func (m *MockSource) Words() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.words...)
}

// Reset clears call counts and custom functions.
func (m *MockSource) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lookupCalls = 0
	m.lookupTopCalls = 0
	m.words = nil
	m.LookupFunc = nil
	m.LookupTopFunc = nil
}
