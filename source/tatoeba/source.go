package tatoeba

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/wordbook/core"
	"github.com/poiesic/wordbook/source"
)

const (
	// Name is the source tag written to results.
	Name = "tatoeba"

	// DefaultWorkers caps the corpus scans running at once.
	DefaultWorkers = 4
)

// Corpus is the sentence search a Source wraps. *corpus.Corpus satisfies it.
type Corpus interface {
	Search(ctx context.Context, word string, limit int) ([]string, error)
}

// Source answers lookups with example sentences from a corpus. Scans
// decompress the whole archive, so they run on a dedicated worker pool
// and never on the caller's goroutine.
type Source struct {
	corpus      Corpus
	pool        *ants.Pool
	workers     int
	maxExamples int
	logger      *slog.Logger
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

// WithWorkers sets how many scans may run at once.
// Default is 4.
func WithWorkers(n int) Option {
	return func(s *Source) error {
		if n <= 0 {
			return fmt.Errorf("tatoeba: workers must be positive, got %d", n)
		}
		s.workers = n
		return nil
	}
}

// WithMaxExamples caps the sentences attached to a result.
// Zero, the default, keeps every match.
func WithMaxExamples(n int) Option {
	return func(s *Source) error {
		if n < 0 {
			return fmt.Errorf("tatoeba: max examples cannot be negative, got %d", n)
		}
		s.maxExamples = n
		return nil
	}
}

// New creates a corpus-backed source. Call Close to release its workers.
func New(c Corpus, opts ...Option) (*Source, error) {
	if c == nil {
		return nil, fmt.Errorf("tatoeba: corpus cannot be nil")
	}
	s := &Source{
		corpus:  c,
		workers: DefaultWorkers,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	s.logger = s.logger.With("source", Name)

	pool, err := ants.NewPool(s.workers, ants.WithPanicHandler(func(p any) {
		s.logger.Error("corpus scan panicked", "panic", p)
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

// Lookup returns a single result for word whose Examples hold the
// matching sentences in corpus order. No match still yields the result,
// with no examples.
func (s *Source) Lookup(ctx context.Context, word string) ([]core.LookupResult, error) {
	result, err := s.LookupTop(ctx, word)
	if err != nil {
		return nil, err
	}
	return []core.LookupResult{result}, nil
}

type scan struct {
	sentences []string
	err       error
}

// LookupTop returns the one result Lookup would.
func (s *Source) LookupTop(ctx context.Context, word string) (core.LookupResult, error) {
	if word == "" {
		return core.LookupResult{}, fmt.Errorf("tatoeba: %w: empty word", core.ErrNotFound)
	}

	start := time.Now()
	// Buffered so an abandoned scan can still deliver and exit.
	done := make(chan scan, 1)
	err := s.pool.Submit(func() {
		sentences, err := s.corpus.Search(ctx, word, s.maxExamples)
		done <- scan{sentences: sentences, err: err}
	})
	if err != nil {
		return core.LookupResult{}, fmt.Errorf("tatoeba: %w: %w", core.ErrCorpusUnavailable, err)
	}

	var res scan
	select {
	case <-ctx.Done():
		return core.LookupResult{}, fmt.Errorf("tatoeba: %w", ctx.Err())
	case res = <-done:
	}
	if res.err != nil {
		return core.LookupResult{}, fmt.Errorf("tatoeba: %w", res.err)
	}

	s.logger.DebugContext(ctx, "corpus lookup",
		"word", word,
		"examples", len(res.sentences),
		"elapsed", time.Since(start))

	result := core.NewLookupResult(word, Name)
	if len(res.sentences) > 0 {
		result.Examples = res.sentences
	}
	return result, nil
}
