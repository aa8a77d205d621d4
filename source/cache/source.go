package cache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/poiesic/wordbook/core"
	"github.com/poiesic/wordbook/source"
	"github.com/poiesic/wordbook/storage"
)

// DefaultTTL is how long a lookup stays cached.
const DefaultTTL = time.Hour

const (
	lookupPrefix = "lookup"
	topPrefix    = "top"
)

// Source caches the answers of another source. Successful lookups,
// including empty ones, are stored; errors never are. A failing cache
// falls through to the wrapped source.
type Source struct {
	next   source.Source
	cache  storage.ResultCache
	ttl    time.Duration
	logger *slog.Logger
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

// WithTTL sets how long entries live. Default is one hour.
func WithTTL(ttl time.Duration) Option {
	return func(s *Source) error {
		if ttl <= 0 {
			return fmt.Errorf("cache: ttl must be positive, got %s", ttl)
		}
		s.ttl = ttl
		return nil
	}
}

// Wrap returns next with its lookups cached in c.
func Wrap(next source.Source, c storage.ResultCache, opts ...Option) (*Source, error) {
	if next == nil || c == nil {
		return nil, fmt.Errorf("cache: source and cache are required")
	}
	s := &Source{
		next:   next,
		cache:  c,
		ttl:    DefaultTTL,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	s.logger = s.logger.With("component", "cache", "source", next.Name())
	return s, nil
}

// Name returns the wrapped source's tag.
func (s *Source) Name() string {
	return s.next.Name()
}

// Unwrap returns the wrapped source.
func (s *Source) Unwrap() source.Source {
	return s.next
}

// Lookup answers from the cache when it holds word, otherwise from the
// wrapped source. Successful lookups are stored, empty ones included;
// errors are not cached.
func (s *Source) Lookup(ctx context.Context, word string) ([]core.LookupResult, error) {
	key := s.key(lookupPrefix, word)
	if results, ok := s.get(ctx, key); ok {
		return results, nil
	}

	results, err := s.next.Lookup(ctx, word)
	if err != nil {
		return nil, err
	}
	s.put(ctx, key, results)
	return results, nil
}

// LookupTop is Lookup for the wrapped source's best entry, cached under
// its own key.
func (s *Source) LookupTop(ctx context.Context, word string) (core.LookupResult, error) {
	key := s.key(topPrefix, word)
	if results, ok := s.get(ctx, key); ok && len(results) == 1 {
		return results[0], nil
	}

	result, err := source.Top(ctx, s.next, word)
	if err != nil {
		return core.LookupResult{}, err
	}
	s.put(ctx, key, []core.LookupResult{result})
	return result, nil
}

func (s *Source) key(kind, word string) string {
	return kind + "\x00" + s.next.Name() + "\x00" + word
}

func (s *Source) get(ctx context.Context, key string) ([]core.LookupResult, bool) {
	results, err := s.cache.Get(ctx, key)
	switch {
	case err == nil:
		s.logger.DebugContext(ctx, "cache hit", "results", len(results))
		return results, true
	case errors.Is(err, storage.ErrNotFound):
		return nil, false
	default:
		s.logger.WarnContext(ctx, "cache read failed", "err", err)
		return nil, false
	}
}

func (s *Source) put(ctx context.Context, key string, results []core.LookupResult) {
	if err := s.cache.Put(ctx, key, results, s.ttl); err != nil {
		s.logger.WarnContext(ctx, "cache write failed", "err", err)
	}
}
