package goo

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/wordbook/core"
	"github.com/poiesic/wordbook/fetch"
	"github.com/poiesic/wordbook/source"
)

const (
	// Name is the source tag written to results.
	Name = "goo_jp"

	// DefaultConcurrency caps the entry pages fetched at once.
	DefaultConcurrency = 10

	defaultBaseURL = "https://dictionary.goo.ne.jp"
)

// Source scrapes the goo Japanese dictionary. A lookup reads the search
// page, then fetches and parses every candidate entry page.
type Source struct {
	baseURL  string
	origin   *url.URL
	client   *fetch.Client
	pool     *ants.Pool
	poolSize int
	readable bool
	logger   *slog.Logger
}

var (
	_ source.Source    = (*Source)(nil)
	_ source.TopLooker = (*Source)(nil)
)

// Option configures a Source.
type Option func(*Source) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Source) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

// WithBaseURL points the source at another site origin.
func WithBaseURL(baseURL string) Option {
	return func(s *Source) error {
		s.baseURL = baseURL
		return nil
	}
}

// WithClient sets the HTTP client. It must not follow redirects.
func WithClient(client *fetch.Client) Option {
	return func(s *Source) error {
		s.client = client
		return nil
	}
}

// WithConcurrency sets how many entry pages are fetched at once.
// Default is 10.
func WithConcurrency(n int) Option {
	return func(s *Source) error {
		if n <= 0 {
			return fmt.Errorf("goo: concurrency must be positive, got %d", n)
		}
		s.poolSize = n
		return nil
	}
}

// WithReadabilityFallback controls whether pages with an unrecognized
// layout fall back to their extracted main text. Default is true.
func WithReadabilityFallback(enabled bool) Option {
	return func(s *Source) error {
		s.readable = enabled
		return nil
	}
}

// New creates a goo source. Call Close to release its worker pool.
func New(opts ...Option) (*Source, error) {
	s := &Source{
		baseURL:  defaultBaseURL,
		poolSize: DefaultConcurrency,
		readable: true,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	s.logger = s.logger.With("source", "goo")
	s.baseURL = strings.TrimRight(s.baseURL, "/")

	origin, err := url.Parse(s.baseURL)
	if err != nil || origin.Scheme == "" || origin.Host == "" {
		return nil, fmt.Errorf("goo: invalid base url %q", s.baseURL)
	}
	s.origin = origin

	if s.client == nil {
		client, err := fetch.New(
			fetch.WithTimeout(10*time.Second),
			fetch.WithoutRedirects(),
			fetch.WithLogger(s.logger),
		)
		if err != nil {
			return nil, err
		}
		s.client = client
	}

	pool, err := ants.NewPool(s.poolSize, ants.WithPanicHandler(func(p any) {
		s.logger.Error("entry fetch panicked", "panic", p)
	}))
	if err != nil {
		return nil, err
	}
	s.pool = pool
	return s, nil
}

// Name returns the source tag.
func (s *Source) Name() string {
	return Name
}

// Close releases the worker pool.
func (s *Source) Close() error {
	s.pool.Release()
	return nil
}

type slot struct {
	result core.LookupResult
	err    error
	done   bool
}

// Lookup returns one result per candidate entry, in search page order.
// Entries that fail to load or parse are logged and left out.
func (s *Source) Lookup(ctx context.Context, word string) ([]core.LookupResult, error) {
	start := time.Now()
	cands, err := s.candidates(ctx, word)
	if err != nil {
		return nil, fmt.Errorf("goo: %w", err)
	}

	slots := make([]slot, len(cands))
	var wg sync.WaitGroup
	for i, c := range cands {
		wg.Add(1)
		err := s.pool.Submit(func() {
			defer wg.Done()
			res, err := s.definition(ctx, c.URL, word)
			slots[i] = slot{result: res, err: err, done: true}
		})
		if err != nil {
			wg.Done()
			slots[i] = slot{err: err, done: true}
		}
	}
	wg.Wait()

	results := make([]core.LookupResult, 0, len(slots))
	for i, sl := range slots {
		if !sl.done {
			s.logger.WarnContext(ctx, "entry fetch did not complete", "word", word, "url", cands[i].URL)
			continue
		}
		if sl.err != nil {
			s.logger.WarnContext(ctx, "failed to look up definition", "word", word, "url", cands[i].URL, "err", sl.err)
			continue
		}
		results = append(results, sl.result)
	}

	s.logger.DebugContext(ctx, "goo lookup",
		"word", word,
		"candidates", len(cands),
		"results", len(results),
		"elapsed", time.Since(start))
	return results, nil
}

// LookupTop fetches only the candidate whose title best matches word.
func (s *Source) LookupTop(ctx context.Context, word string) (core.LookupResult, error) {
	cands, err := s.candidates(ctx, word)
	if err != nil {
		return core.LookupResult{}, fmt.Errorf("goo: %w", err)
	}
	if len(cands) == 0 {
		return core.LookupResult{}, fmt.Errorf("goo: %w: no candidates for %q", core.ErrNotFound, word)
	}

	best := bestCandidate(cands, word)
	result, err := s.definition(ctx, best.URL, word)
	if err != nil {
		return core.LookupResult{}, fmt.Errorf("goo: %w", err)
	}
	return result, nil
}
