package search

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/poiesic/wordbook/core"
	"github.com/poiesic/wordbook/source"
	"github.com/poiesic/wordbook/source/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// examplesSource answers every headword with canned sentences.
func examplesSource(sentences map[string][]string) *mock.MockSource {
	m := mock.NewSource("tatoeba")
	m.LookupTopFunc = func(_ context.Context, word string) (core.LookupResult, error) {
		r := core.NewLookupResult(word, "tatoeba")
		r.Examples = sentences[word]
		return r, nil
	}
	return m
}

func newTestSearcher(t *testing.T, dictionaries []source.Source, examples source.Source, opts ...Option) *Searcher {
	t.Helper()
	s, err := NewSearcher(dictionaries, examples, append([]Option{WithLogger(testLogger())}, opts...)...)
	require.NoError(t, err)
	t.Cleanup(s.Release)
	return s
}

type recordingMonitor struct {
	mu           sync.Mutex
	queryID      string
	query        string
	dispatched   []string
	failed       []string
	merged       int
	enrichFailed []string
	finished     []core.LookupResult
}

func (m *recordingMonitor) Start(queryID, query string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queryID, m.query = queryID, query
}

func (m *recordingMonitor) AfterDispatch(src string, _ []core.LookupResult) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dispatched = append(m.dispatched, src)
}

func (m *recordingMonitor) SourceFailed(src string, _ error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failed = append(m.failed, src)
}

func (m *recordingMonitor) AfterMerge(candidates []core.LookupResult) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.merged = len(candidates)
}

func (m *recordingMonitor) EnrichFailed(headword string, _ error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.enrichFailed = append(m.enrichFailed, headword)
}

func (m *recordingMonitor) Finish(results []core.LookupResult) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.finished = results
}

func TestNewSearcher(t *testing.T) {
	a := mock.NewSource("A")

	t.Run("valid configuration", func(t *testing.T) {
		s, err := NewSearcher([]source.Source{a}, nil)
		require.NoError(t, err)
		defer s.Release()
		assert.Equal(t, DefaultEnrichConcurrency, s.enrichConcurrency)
		assert.Equal(t, DefaultSourceTimeout, s.sourceTimeout)
		assert.Equal(t, DefaultEnrichTimeout, s.enrichTimeout)
	})

	t.Run("with nil logger and monitor falls back to defaults", func(t *testing.T) {
		s, err := NewSearcher([]source.Source{a}, nil, WithLogger(nil), WithMonitor(nil))
		require.NoError(t, err)
		defer s.Release()
		assert.NotNil(t, s.monitor)
	})

	t.Run("no dictionaries", func(t *testing.T) {
		_, err := NewSearcher(nil, a)
		assert.Equal(t, ErrDictionaryRequired, err)
	})

	t.Run("nil dictionary", func(t *testing.T) {
		_, err := NewSearcher([]source.Source{a, nil}, nil)
		assert.Equal(t, ErrNilSource, err)
	})

	t.Run("invalid options", func(t *testing.T) {
		_, err := NewSearcher([]source.Source{a}, nil, WithEnrichConcurrency(0))
		assert.Error(t, err)
		_, err = NewSearcher([]source.Source{a}, nil, WithSourceTimeout(0))
		assert.Error(t, err)
		_, err = NewSearcher([]source.Source{a}, nil, WithEnrichTimeout(-time.Second))
		assert.Error(t, err)
	})
}

func TestNormalizeQuery(t *testing.T) {
	q, err := NormalizeQuery("  猫 \n")
	require.NoError(t, err)
	assert.Equal(t, "猫", q)

	// か followed by a combining voiced sound mark composes to が.
	q, err = NormalizeQuery("\u304b\u3099")
	require.NoError(t, err)
	assert.Equal(t, "が", q)

	_, err = NormalizeQuery(" \t ")
	assert.ErrorIs(t, err, core.ErrEmptyQuery)
}

func TestMergeResults(t *testing.T) {
	a := []core.LookupResult{
		{Headword: "猫", Reading: "ねこ", Alternates: []string{"ネコ"}, Source: "A"},
		{Headword: "猫舌", Source: "A"},
	}
	b := []core.LookupResult{
		{Headword: "猫背", Source: "B"},
		{Headword: "猫", Reading: "びょう", Alternates: []string{"ねこ"}, Definitions: []string{"feline"}, Source: "B"},
	}

	merged := MergeResults(a, b)
	require.Len(t, merged, 3)
	assert.Equal(t, []string{"猫", "猫舌", "猫背"}, []string{merged[0].Headword, merged[1].Headword, merged[2].Headword})

	assert.Equal(t, "ねこ", merged[0].Reading, "first non-empty wins")
	assert.Equal(t, []string{"ネコ", "ねこ"}, merged[0].Alternates)
	assert.Equal(t, []string{"feline"}, merged[0].Definitions)
	assert.Equal(t, "A,B", merged[0].Source)

	assert.Equal(t, []string{"ネコ"}, a[0].Alternates, "inputs are not modified")
	assert.Equal(t, "A", a[0].Source)

	assert.Empty(t, MergeResults())
	assert.NotNil(t, MergeResults())
}

func TestRank(t *testing.T) {
	results := []core.LookupResult{
		{Headword: "子猫", Source: "A"},  // 0
		{Headword: "猫舌", Source: "A"},  // 95
		{Headword: "猫", Source: "A"},   // 100
		{Headword: "猫背", Source: "B"},  // 95
		{Headword: "山猫", Source: "B"},  // 0
	}
	Rank(results, "猫")

	got := make([]string, len(results))
	for i, r := range results {
		got[i] = r.Headword
	}
	assert.Equal(t, []string{"猫", "猫舌", "猫背", "子猫", "山猫"}, got)
}

func TestSearch_EndToEnd(t *testing.T) {
	a := mock.NewSource("A").Add("猫", core.LookupResult{Headword: "猫", Reading: "ねこ", Translations: []string{"cat"}})
	b := mock.NewSource("B").Add("猫", core.LookupResult{Headword: "猫", Definitions: []string{"feline"}})
	examples := examplesSource(map[string][]string{"猫": {"猫が好きです"}})
	monitor := &recordingMonitor{}

	s := newTestSearcher(t, []source.Source{a, b}, examples, WithMonitor(monitor))

	results, err := s.Search(context.Background(), "猫")
	require.NoError(t, err)
	require.Len(t, results, 1)

	assert.Equal(t, core.LookupResult{
		Headword:     "猫",
		Reading:      "ねこ",
		Translations: []string{"cat"},
		Definitions:  []string{"feline"},
		Examples:     []string{"猫が好きです"},
		Source:       "A,B,tatoeba",
	}, results[0])

	assert.NotEmpty(t, monitor.queryID)
	assert.Equal(t, "猫", monitor.query)
	assert.Equal(t, []string{"A", "B"}, monitor.dispatched)
	assert.Equal(t, 1, monitor.merged)
	assert.Equal(t, results, monitor.finished)
	assert.Equal(t, 1, examples.LookupTopCalls())
}

func TestSearch(t *testing.T) {
	ctx := context.Background()

	t.Run("exact match is ranked first", func(t *testing.T) {
		a := mock.NewSource("A").Add("猫",
			core.LookupResult{Headword: "子猫"},
			core.LookupResult{Headword: "猫舌"},
			core.LookupResult{Headword: "猫"},
		)
		s := newTestSearcher(t, []source.Source{a}, nil)

		results, err := s.Search(ctx, "猫")
		require.NoError(t, err)
		require.Len(t, results, 3)
		assert.Equal(t, "猫", results[0].Headword)
		assert.Equal(t, "猫舌", results[1].Headword)
		assert.Equal(t, "子猫", results[2].Headword)
	})

	t.Run("query is normalized before dispatch", func(t *testing.T) {
		a := mock.NewSource("A").Add("猫", core.LookupResult{Headword: "猫"})
		s := newTestSearcher(t, []source.Source{a}, nil)

		results, err := s.Search(ctx, "　猫 ")
		require.NoError(t, err)
		assert.Len(t, results, 1)
		assert.Equal(t, []string{"猫"}, a.Words())
	})

	t.Run("empty query", func(t *testing.T) {
		a := mock.NewSource("A")
		s := newTestSearcher(t, []source.Source{a}, nil)

		_, err := s.Search(ctx, "  ")
		assert.ErrorIs(t, err, core.ErrEmptyQuery)
		assert.Zero(t, a.LookupCalls())
	})

	t.Run("failed source contributes nothing", func(t *testing.T) {
		a := mock.NewSource("A")
		a.LookupFunc = func(context.Context, string) ([]core.LookupResult, error) {
			return nil, fmt.Errorf("%w: boom", core.ErrSourceUnavailable)
		}
		b := mock.NewSource("B").Add("猫", core.LookupResult{Headword: "猫"})
		monitor := &recordingMonitor{}
		s := newTestSearcher(t, []source.Source{a, b}, nil, WithMonitor(monitor))

		results, err := s.Search(ctx, "猫")
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, "B", results[0].Source)
		assert.Equal(t, []string{"A"}, monitor.failed)
	})

	t.Run("every source failing joins the errors", func(t *testing.T) {
		a := mock.NewSource("A")
		a.LookupFunc = func(context.Context, string) ([]core.LookupResult, error) {
			return nil, core.ErrSourceUnavailable
		}
		b := mock.NewSource("B")
		b.LookupFunc = func(context.Context, string) ([]core.LookupResult, error) {
			return nil, core.ErrParseFailure
		}
		s := newTestSearcher(t, []source.Source{a, b}, nil)

		_, err := s.Search(ctx, "猫")
		require.Error(t, err)
		assert.ErrorIs(t, err, core.ErrSourceUnavailable)
		assert.ErrorIs(t, err, core.ErrParseFailure)
		assert.Contains(t, err.Error(), "A: ")
		assert.Contains(t, err.Error(), "B: ")
	})

	t.Run("no entries is an empty result", func(t *testing.T) {
		s := newTestSearcher(t, []source.Source{mock.NewSource("A"), mock.NewSource("B")}, examplesSource(nil))

		results, err := s.Search(ctx, "猫")
		require.NoError(t, err)
		assert.NotNil(t, results)
		assert.Empty(t, results)
	})

	t.Run("invalid entries are dropped", func(t *testing.T) {
		a := mock.NewSource("A")
		a.LookupFunc = func(context.Context, string) ([]core.LookupResult, error) {
			return []core.LookupResult{
				{Headword: "", Source: "A"},
				{Headword: "猫", Source: "A"},
				{Headword: "猫舌"},
				{Headword: "子猫", Source: "A"},
			}, nil
		}
		monitor := &recordingMonitor{}
		s := newTestSearcher(t, []source.Source{a}, nil, WithMonitor(monitor))

		results, err := s.Search(ctx, "猫")
		require.NoError(t, err)
		headwords := make([]string, len(results))
		for i, r := range results {
			headwords[i] = r.Headword
		}
		assert.Equal(t, []string{"猫", "子猫"}, headwords)
		assert.Empty(t, monitor.failed)
	})

	t.Run("slow source times out", func(t *testing.T) {
		slow := mock.NewSource("slow")
		slow.LookupFunc = func(ctx context.Context, _ string) ([]core.LookupResult, error) {
			<-ctx.Done()
			return nil, fmt.Errorf("%w: %w", core.ErrSourceUnavailable, ctx.Err())
		}
		fast := mock.NewSource("fast").Add("猫", core.LookupResult{Headword: "猫"})
		s := newTestSearcher(t, []source.Source{slow, fast}, nil, WithSourceTimeout(20*time.Millisecond))

		results, err := s.Search(ctx, "猫")
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, "fast", results[0].Source)
	})

	t.Run("cancelled context", func(t *testing.T) {
		a := mock.NewSource("A").Add("猫", core.LookupResult{Headword: "猫"})
		s := newTestSearcher(t, []source.Source{a}, nil)
		cctx, cancel := context.WithCancel(ctx)
		cancel()

		_, err := s.Search(cctx, "猫")
		assert.ErrorIs(t, err, context.Canceled)
	})

	t.Run("without examples source nothing is enriched", func(t *testing.T) {
		a := mock.NewSource("A").Add("猫", core.LookupResult{Headword: "猫"})
		s := newTestSearcher(t, []source.Source{a}, nil)

		results, err := s.Search(ctx, "猫")
		require.NoError(t, err)
		assert.Empty(t, results[0].Examples)
		assert.Equal(t, "A", results[0].Source)
	})
}

func TestSearch_Enrich(t *testing.T) {
	ctx := context.Background()

	t.Run("failed enrichment leaves the entry without examples", func(t *testing.T) {
		a := mock.NewSource("A").Add("猫",
			core.LookupResult{Headword: "猫"},
			core.LookupResult{Headword: "猫舌"},
			core.LookupResult{Headword: "猫背"},
		)
		examples := mock.NewSource("tatoeba")
		examples.LookupTopFunc = func(_ context.Context, word string) (core.LookupResult, error) {
			switch word {
			case "猫舌":
				return core.LookupResult{}, core.ErrCorpusUnavailable
			case "猫背":
				panic("corrupt archive")
			}
			r := core.NewLookupResult(word, "tatoeba")
			r.Examples = []string{"猫が好きです"}
			return r, nil
		}
		monitor := &recordingMonitor{}
		s := newTestSearcher(t, []source.Source{a}, examples, WithMonitor(monitor))

		results, err := s.Search(ctx, "猫")
		require.NoError(t, err)
		require.Len(t, results, 3)

		assert.Equal(t, []string{"猫が好きです"}, results[0].Examples)
		assert.Equal(t, "A,tatoeba", results[0].Source)
		for _, r := range results[1:] {
			assert.Empty(t, r.Examples, r.Headword)
			assert.Equal(t, "A", r.Source)
		}
		assert.ElementsMatch(t, []string{"猫舌", "猫背"}, monitor.enrichFailed)
	})

	t.Run("successful enrichment without sentences is tagged", func(t *testing.T) {
		a := mock.NewSource("A").Add("猫", core.LookupResult{Headword: "猫"})
		examples := mock.NewSource("tatoeba")
		examples.LookupTopFunc = func(_ context.Context, word string) (core.LookupResult, error) {
			return core.LookupResult{Headword: word, Examples: []string{}, Source: "tatoeba"}, nil
		}
		monitor := &recordingMonitor{}
		s := newTestSearcher(t, []source.Source{a}, examples, WithMonitor(monitor))

		results, err := s.Search(ctx, "猫")
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Empty(t, results[0].Examples)
		assert.Equal(t, "A,tatoeba", results[0].Source)
		assert.Empty(t, monitor.enrichFailed)
	})

	t.Run("entries with examples keep their own", func(t *testing.T) {
		a := mock.NewSource("A").Add("猫", core.LookupResult{Headword: "猫", Examples: []string{"own"}})
		s := newTestSearcher(t, []source.Source{a}, examplesSource(map[string][]string{"猫": {"corpus"}}))

		results, err := s.Search(ctx, "猫")
		require.NoError(t, err)
		assert.Equal(t, []string{"own"}, results[0].Examples)
		assert.Equal(t, "A,tatoeba", results[0].Source)
	})

	t.Run("concurrency is capped", func(t *testing.T) {
		a := mock.NewSource("A")
		for i := range 8 {
			a.Add("猫", core.LookupResult{Headword: fmt.Sprintf("猫%d", i)})
		}

		var inFlight, peak atomic.Int32
		examples := mock.NewSource("tatoeba")
		examples.LookupTopFunc = func(_ context.Context, word string) (core.LookupResult, error) {
			n := inFlight.Add(1)
			defer inFlight.Add(-1)
			for {
				p := peak.Load()
				if n <= p || peak.CompareAndSwap(p, n) {
					break
				}
			}
			time.Sleep(10 * time.Millisecond)
			r := core.NewLookupResult(word, "tatoeba")
			r.Examples = []string{word + "の例文"}
			return r, nil
		}
		s := newTestSearcher(t, []source.Source{a}, examples, WithEnrichConcurrency(2))

		results, err := s.Search(ctx, "猫")
		require.NoError(t, err)
		require.Len(t, results, 8)
		for _, r := range results {
			assert.Equal(t, []string{r.Headword + "の例文"}, r.Examples)
		}
		assert.LessOrEqual(t, peak.Load(), int32(2))
		assert.Equal(t, 8, examples.LookupTopCalls())
	})

	t.Run("enrichment timeout", func(t *testing.T) {
		a := mock.NewSource("A").Add("猫", core.LookupResult{Headword: "猫"})
		examples := mock.NewSource("tatoeba")
		examples.LookupTopFunc = func(ctx context.Context, _ string) (core.LookupResult, error) {
			<-ctx.Done()
			return core.LookupResult{}, ctx.Err()
		}
		s := newTestSearcher(t, []source.Source{a}, examples, WithEnrichTimeout(20*time.Millisecond))

		results, err := s.Search(ctx, "猫")
		require.NoError(t, err)
		assert.Empty(t, results[0].Examples)
	})
}

func TestSearchTop(t *testing.T) {
	ctx := context.Background()

	t.Run("same headwords merge", func(t *testing.T) {
		a := mock.NewSource("A").Add("猫", core.LookupResult{Headword: "猫", Reading: "ねこ", Translations: []string{"cat"}})
		b := mock.NewSource("B").Add("猫", core.LookupResult{Headword: "猫", Definitions: []string{"feline"}})
		examples := examplesSource(map[string][]string{"猫": {"猫が好きです"}})
		s := newTestSearcher(t, []source.Source{a, b}, examples)

		top, err := s.SearchTop(ctx, "猫")
		require.NoError(t, err)
		assert.Equal(t, core.LookupResult{
			Headword:     "猫",
			Reading:      "ねこ",
			Translations: []string{"cat"},
			Definitions:  []string{"feline"},
			Examples:     []string{"猫が好きです"},
			Source:       "A,B,tatoeba",
		}, top)
	})

	t.Run("higher score replaces", func(t *testing.T) {
		a := mock.NewSource("A").Add("猫", core.LookupResult{Headword: "猫舌"})
		b := mock.NewSource("B").Add("猫", core.LookupResult{Headword: "猫"})
		s := newTestSearcher(t, []source.Source{a, b}, nil)

		top, err := s.SearchTop(ctx, "猫")
		require.NoError(t, err)
		assert.Equal(t, "猫", top.Headword)
		assert.Equal(t, "B", top.Source)
	})

	t.Run("equal score goes to the later source", func(t *testing.T) {
		a := mock.NewSource("A").Add("猫", core.LookupResult{Headword: "猫舌"})
		b := mock.NewSource("B").Add("猫", core.LookupResult{Headword: "猫背"})
		s := newTestSearcher(t, []source.Source{a, b}, nil)

		top, err := s.SearchTop(ctx, "猫")
		require.NoError(t, err)
		assert.Equal(t, "猫背", top.Headword)
		assert.Equal(t, "B", top.Source)
	})

	t.Run("lower score keeps the current", func(t *testing.T) {
		a := mock.NewSource("A").Add("猫", core.LookupResult{Headword: "猫"})
		b := mock.NewSource("B").Add("猫", core.LookupResult{Headword: "猫背"})
		s := newTestSearcher(t, []source.Source{a, b}, nil)

		top, err := s.SearchTop(ctx, "猫")
		require.NoError(t, err)
		assert.Equal(t, "猫", top.Headword)
		assert.Equal(t, "A", top.Source)
	})

	t.Run("sources without an entry are skipped", func(t *testing.T) {
		a := mock.NewSource("A")
		b := mock.NewSource("B").Add("猫", core.LookupResult{Headword: "猫"})
		s := newTestSearcher(t, []source.Source{a, b}, nil)

		top, err := s.SearchTop(ctx, "猫")
		require.NoError(t, err)
		assert.Equal(t, "B", top.Source)
	})

	t.Run("nothing found", func(t *testing.T) {
		s := newTestSearcher(t, []source.Source{mock.NewSource("A"), mock.NewSource("B")}, nil)

		_, err := s.SearchTop(ctx, "猫")
		assert.ErrorIs(t, err, core.ErrNotFound)
	})

	t.Run("transport failures are reported", func(t *testing.T) {
		a := mock.NewSource("A")
		a.LookupTopFunc = func(context.Context, string) (core.LookupResult, error) {
			return core.LookupResult{}, core.ErrSourceUnavailable
		}
		s := newTestSearcher(t, []source.Source{a, mock.NewSource("B")}, nil)

		_, err := s.SearchTop(ctx, "猫")
		assert.ErrorIs(t, err, core.ErrSourceUnavailable)
		assert.ErrorIs(t, err, core.ErrNotFound)
	})

	t.Run("invalid top entry counts as a failure", func(t *testing.T) {
		a := mock.NewSource("A")
		a.LookupTopFunc = func(context.Context, string) (core.LookupResult, error) {
			return core.LookupResult{Headword: "猫"}, nil
		}
		b := mock.NewSource("B").Add("猫", core.LookupResult{Headword: "猫背"})
		monitor := &recordingMonitor{}
		s := newTestSearcher(t, []source.Source{a, b}, nil, WithMonitor(monitor))

		top, err := s.SearchTop(ctx, "猫")
		require.NoError(t, err)
		assert.Equal(t, "猫背", top.Headword)
		assert.Equal(t, []string{"A"}, monitor.failed)

		_, err = newTestSearcher(t, []source.Source{a}, nil).SearchTop(ctx, "猫")
		assert.ErrorIs(t, err, core.ErrInvalidResult)
	})

	t.Run("enrichment failure still answers", func(t *testing.T) {
		a := mock.NewSource("A").Add("猫", core.LookupResult{Headword: "猫"})
		examples := mock.NewSource("tatoeba")
		examples.LookupTopFunc = func(context.Context, string) (core.LookupResult, error) {
			return core.LookupResult{}, errors.New("boom")
		}
		s := newTestSearcher(t, []source.Source{a}, examples)

		top, err := s.SearchTop(ctx, "猫")
		require.NoError(t, err)
		assert.Equal(t, "猫", top.Headword)
		assert.Empty(t, top.Examples)
	})

	t.Run("canned entries are not modified", func(t *testing.T) {
		a := mock.NewSource("A").Add("猫", core.LookupResult{Headword: "猫", Alternates: []string{"ネコ"}})
		b := mock.NewSource("B").Add("猫", core.LookupResult{Headword: "猫", Alternates: []string{"ねこ"}})
		s := newTestSearcher(t, []source.Source{a, b}, nil)

		_, err := s.SearchTop(ctx, "猫")
		require.NoError(t, err)
		top, err := s.SearchTop(ctx, "猫")
		require.NoError(t, err)
		assert.Equal(t, []string{"ネコ", "ねこ"}, top.Alternates)
	})
}
