package search

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/wordbook/core"
	"github.com/poiesic/wordbook/source"
	"golang.org/x/text/unicode/norm"
)

const (
	// DefaultEnrichConcurrency caps the example lookups in flight.
	DefaultEnrichConcurrency = 10

	// DefaultSourceTimeout bounds each dictionary source call.
	DefaultSourceTimeout = 10 * time.Second

	// DefaultEnrichTimeout bounds each example lookup. Corpus scans
	// decompress the whole archive, so it is generous.
	DefaultEnrichTimeout = 30 * time.Second
)

// Searcher merges lookups from several dictionary sources and enriches
// them with example sentences.
type Searcher struct {
	dictionaries      []source.Source
	examples          source.Source
	pool              *ants.Pool
	enrichConcurrency int
	sourceTimeout     time.Duration
	enrichTimeout     time.Duration
	monitor           SearchMonitor
	logger            *slog.Logger
}

// Option configures a Searcher.
type Option func(*Searcher) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Searcher) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

// WithEnrichConcurrency sets how many example lookups run at once.
// Default is 10.
func WithEnrichConcurrency(n int) Option {
	return func(s *Searcher) error {
		if n <= 0 {
			return fmt.Errorf("search: enrich concurrency must be positive, got %d", n)
		}
		s.enrichConcurrency = n
		return nil
	}
}

// WithSourceTimeout sets the time limit of each dictionary source call.
// Default is 10s.
func WithSourceTimeout(d time.Duration) Option {
	return func(s *Searcher) error {
		if d <= 0 {
			return fmt.Errorf("search: source timeout must be positive, got %s", d)
		}
		s.sourceTimeout = d
		return nil
	}
}

// WithEnrichTimeout sets the time limit of each example lookup.
// Default is 30s.
func WithEnrichTimeout(d time.Duration) Option {
	return func(s *Searcher) error {
		if d <= 0 {
			return fmt.Errorf("search: enrich timeout must be positive, got %s", d)
		}
		s.enrichTimeout = d
		return nil
	}
}

// WithMonitor sets the monitor used by Search and SearchTop.
func WithMonitor(monitor SearchMonitor) Option {
	return func(s *Searcher) error {
		s.monitor = monitor
		return nil
	}
}

// NewSearcher creates a searcher over dictionaries, queried in the order
// given. examples may be nil, in which case results carry no examples.
// Call Release when done.
func NewSearcher(dictionaries []source.Source, examples source.Source, opts ...Option) (*Searcher, error) {
	if len(dictionaries) == 0 {
		return nil, ErrDictionaryRequired
	}
	if slices.Contains(dictionaries, nil) {
		return nil, ErrNilSource
	}

	s := &Searcher{
		dictionaries:      slices.Clone(dictionaries),
		examples:          examples,
		enrichConcurrency: DefaultEnrichConcurrency,
		sourceTimeout:     DefaultSourceTimeout,
		enrichTimeout:     DefaultEnrichTimeout,
		monitor:           &noopMonitor{},
		logger:            slog.Default(),
	}

	// Apply options
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	if s.monitor == nil {
		s.monitor = &noopMonitor{}
	}
	s.logger = s.logger.With("component", "searcher")

	pool, err := ants.NewPool(s.enrichConcurrency, ants.WithPanicHandler(func(p any) {
		s.logger.Error("enrichment panicked", "panic", p)
	}))
	if err != nil {
		return nil, err
	}
	s.pool = pool
	return s, nil
}

// Release releases the enrichment worker pool.
func (s *Searcher) Release() {
	s.pool.Release()
}

// NormalizeQuery trims surrounding white space and applies NFC, so
// composed and decomposed kana compare equal. An empty query fails with
// core.ErrEmptyQuery.
func NormalizeQuery(query string) (string, error) {
	q := norm.NFC.String(strings.TrimSpace(query))
	if q == "" {
		return "", core.ErrEmptyQuery
	}
	return q, nil
}

// Search looks query up in every dictionary source and returns the
// merged, enriched entries, best match first.
//
// A source that fails is skipped. When every source fails the errors are
// joined and returned, so errors.Is finds each kind. Sources that succeed
// without entries yield an empty slice.
// Entries without a headword or source tag are logged and dropped.
func (s *Searcher) Search(ctx context.Context, query string) ([]core.LookupResult, error) {
	return s.SearchWithMonitor(ctx, query, s.monitor)
}

// SearchWithMonitor is Search reporting to monitor instead of the
// searcher's own.
func (s *Searcher) SearchWithMonitor(ctx context.Context, query string, monitor SearchMonitor) ([]core.LookupResult, error) {
	if monitor == nil {
		monitor = &noopMonitor{}
	}
	q, err := NormalizeQuery(query)
	if err != nil {
		return nil, err
	}

	queryID := uuid.NewString()
	logger := s.logger.With("query_id", queryID)
	start := time.Now()
	monitor.Start(queryID, q)

	// 1. Dispatch
	lists := make([][]core.LookupResult, 0, len(s.dictionaries))
	var errs []error
	for _, src := range s.dictionaries {
		results, err := s.lookup(ctx, src, q)
		if err != nil {
			logger.WarnContext(ctx, "source lookup failed", "source", src.Name(), "err", err)
			monitor.SourceFailed(src.Name(), err)
			errs = append(errs, fmt.Errorf("%s: %w", src.Name(), err))
			continue
		}
		results = validResults(ctx, logger, src.Name(), results)
		logger.DebugContext(ctx, "source lookup", "source", src.Name(), "results", len(results))
		monitor.AfterDispatch(src.Name(), results)
		lists = append(lists, results)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(lists) == 0 {
		logger.ErrorContext(ctx, "every source failed", "query", q)
		return nil, errors.Join(errs...)
	}

	// 2. Merge
	candidates := MergeResults(lists...)
	monitor.AfterMerge(candidates)

	// 3. Enrich
	s.enrich(ctx, logger, monitor, candidates)

	// 4. Rank
	Rank(candidates, q)

	logger.InfoContext(ctx, "search complete",
		"query", q,
		"sources", len(lists),
		"failed", len(errs),
		"results", len(candidates),
		"elapsed", time.Since(start))
	monitor.Finish(candidates)
	return candidates, nil
}

// SearchTop returns the single entry that best answers query.
//
// Each source's best match is folded in source order: a match with the
// same headword as the current one is merged into it, and a different
// headword replaces it when it scores at least as high, so on a tie the
// later source wins. The survivor is then enriched with examples.
// An invalid best match counts as a failure of its source.
func (s *Searcher) SearchTop(ctx context.Context, query string) (core.LookupResult, error) {
	monitor := s.monitor
	q, err := NormalizeQuery(query)
	if err != nil {
		return core.LookupResult{}, err
	}

	queryID := uuid.NewString()
	logger := s.logger.With("query_id", queryID)
	start := time.Now()
	monitor.Start(queryID, q)

	var best core.LookupResult
	found := false
	var errs []error
	for _, src := range s.dictionaries {
		top, err := s.lookupTop(ctx, src, q)
		if err != nil {
			logger.DebugContext(ctx, "source has no top entry", "source", src.Name(), "err", err)
			monitor.SourceFailed(src.Name(), err)
			errs = append(errs, fmt.Errorf("%s: %w", src.Name(), err))
			continue
		}
		if err := core.ValidateLookupResult(&top); err != nil {
			logger.WarnContext(ctx, "dropping invalid top entry", "source", src.Name(), "err", err)
			monitor.SourceFailed(src.Name(), err)
			errs = append(errs, fmt.Errorf("%s: %w", src.Name(), err))
			continue
		}
		monitor.AfterDispatch(src.Name(), []core.LookupResult{top})

		switch {
		case !found:
			best, found = top.Clone(), true
		case top.Headword == best.Headword:
			best.Merge(top)
		case top.MatchScore(q) >= best.MatchScore(q):
			best = top.Clone()
		}
	}
	if err := ctx.Err(); err != nil {
		return core.LookupResult{}, err
	}
	if !found {
		if len(errs) == 0 {
			errs = append(errs, fmt.Errorf("%w: %q", core.ErrNotFound, q))
		}
		return core.LookupResult{}, errors.Join(errs...)
	}

	candidates := []core.LookupResult{best}
	monitor.AfterMerge(candidates)
	s.enrich(ctx, logger, monitor, candidates)

	logger.InfoContext(ctx, "top search complete",
		"query", q,
		"headword", candidates[0].Headword,
		"source", candidates[0].Source,
		"elapsed", time.Since(start))
	monitor.Finish(candidates)
	return candidates[0], nil
}

// validResults drops the entries that fail core.ValidateLookupResult.
// results is returned as is when every entry is valid.
func validResults(ctx context.Context, logger *slog.Logger, name string, results []core.LookupResult) []core.LookupResult {
	var valid []core.LookupResult
	for i := range results {
		err := core.ValidateLookupResult(&results[i])
		if err == nil {
			if valid != nil {
				valid = append(valid, results[i])
			}
			continue
		}
		logger.WarnContext(ctx, "dropping invalid entry", "source", name, "headword", results[i].Headword, "err", err)
		if valid == nil {
			valid = make([]core.LookupResult, i, len(results))
			copy(valid, results[:i])
		}
	}
	if valid == nil {
		return results
	}
	return valid
}

func (s *Searcher) lookup(ctx context.Context, src source.Source, word string) ([]core.LookupResult, error) {
	ctx, cancel := context.WithTimeout(ctx, s.sourceTimeout)
	defer cancel()
	return src.Lookup(ctx, word)
}

func (s *Searcher) lookupTop(ctx context.Context, src source.Source, word string) (core.LookupResult, error) {
	ctx, cancel := context.WithTimeout(ctx, s.sourceTimeout)
	defer cancel()
	return source.Top(ctx, src, word)
}

type enrichSlot struct {
	examples core.LookupResult
	err      error
	done     bool
}

// enrich merges the example sentences of each candidate's headword into
// it, in place. Lookups run on the worker pool and finish in any order.
// Every successful lookup is merged, even one without sentences, so the
// example source joins the candidate's source tag; a failed lookup
// leaves its candidate untouched.
func (s *Searcher) enrich(ctx context.Context, logger *slog.Logger, monitor SearchMonitor, candidates []core.LookupResult) {
	if s.examples == nil || len(candidates) == 0 {
		return
	}

	start := time.Now()
	slots := make([]enrichSlot, len(candidates))
	var wg sync.WaitGroup
	for i := range candidates {
		headword := candidates[i].Headword
		wg.Add(1)
		err := s.pool.Submit(func() {
			defer wg.Done()
			ectx, cancel := context.WithTimeout(ctx, s.enrichTimeout)
			defer cancel()
			r, err := source.Top(ectx, s.examples, headword)
			slots[i] = enrichSlot{examples: r, err: err, done: true}
		})
		if err != nil {
			wg.Done()
			slots[i] = enrichSlot{err: err, done: true}
		}
	}
	wg.Wait()

	enriched := 0
	for i, slot := range slots {
		headword := candidates[i].Headword
		switch {
		case !slot.done:
			err := errors.New("enrichment did not complete")
			logger.WarnContext(ctx, "enrichment failed", "headword", headword, "err", err)
			monitor.EnrichFailed(headword, err)
		case slot.err != nil:
			logger.WarnContext(ctx, "enrichment failed", "headword", headword, "err", slot.err)
			monitor.EnrichFailed(headword, slot.err)
		default:
			candidates[i].Merge(slot.examples)
			enriched++
		}
	}
	logger.DebugContext(ctx, "enrichment complete",
		"candidates", len(candidates),
		"enriched", enriched,
		"elapsed", time.Since(start))
}

// MergeResults folds the given result lists into one entry per headword.
// Entries appear in the order their headword was first seen, and each
// later entry with the same headword is merged into the first. The
// inputs are not modified.
func MergeResults(lists ...[]core.LookupResult) []core.LookupResult {
	merged := []core.LookupResult{}
	index := make(map[string]int)
	for _, list := range lists {
		for _, r := range list {
			if i, ok := index[r.Headword]; ok {
				merged[i].Merge(r)
				continue
			}
			index[r.Headword] = len(merged)
			merged = append(merged, r.Clone())
		}
	}
	return merged
}

// Rank sorts results by match score against query, highest first.
// Equal scores keep their order.
func Rank(results []core.LookupResult, query string) {
	slices.SortStableFunc(results, func(a, b core.LookupResult) int {
		return b.MatchScore(query) - a.MatchScore(query)
	})
}
