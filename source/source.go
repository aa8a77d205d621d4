package source

import (
	"context"
	"fmt"

	"github.com/poiesic/wordbook/core"
)

// Kind says how the searcher uses a source.
type Kind int

const (
	// KindDictionary sources contribute entries during dispatch.
	KindDictionary Kind = iota + 1
	// KindExamples sources enrich entries with example sentences.
	KindExamples
)

func (k Kind) String() string {
	switch k {
	case KindDictionary:
		return "dictionary"
	case KindExamples:
		return "examples"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Source looks words up in one provider.
type Source interface {
	// Name is the tag written to LookupResult.Source.
	Name() string

	// Lookup returns every entry the provider has for word, in the
	// provider's order. No entries is an empty slice and a nil error.
	Lookup(ctx context.Context, word string) ([]core.LookupResult, error)
}

// TopLooker is implemented by sources that can find their single best
// entry more cheaply than a full Lookup.
type TopLooker interface {
	LookupTop(ctx context.Context, word string) (core.LookupResult, error)
}

// Top returns the entry of s that best matches word. Sources that
// implement TopLooker answer directly; otherwise Top runs Lookup and
// picks the highest MatchScore, keeping the earliest entry on ties.
// An empty lookup fails with core.ErrNotFound.
func Top(ctx context.Context, s Source, word string) (core.LookupResult, error) {
	if tl, ok := s.(TopLooker); ok {
		return tl.LookupTop(ctx, word)
	}
	return LookupTop(ctx, s, word)
}

// LookupTop is the Lookup-based selection used by Top. Sources that
// implement TopLooker can fall back to it.
func LookupTop(ctx context.Context, s Source, word string) (core.LookupResult, error) {
	results, err := s.Lookup(ctx, word)
	if err != nil {
		return core.LookupResult{}, err
	}
	best, ok := Best(results, word)
	if !ok {
		return core.LookupResult{}, fmt.Errorf("%w: %s has no entry for %q", core.ErrNotFound, s.Name(), word)
	}
	return best, nil
}

// Best returns the result with the highest MatchScore against word,
// keeping the earliest on ties. ok is false when results is empty.
func Best(results []core.LookupResult, word string) (core.LookupResult, bool) {
	if len(results) == 0 {
		return core.LookupResult{}, false
	}
	best, bestScore := 0, results[0].MatchScore(word)
	for i := 1; i < len(results); i++ {
		if score := results[i].MatchScore(word); score > bestScore {
			best, bestScore = i, score
		}
	}
	return results[best], true
}
