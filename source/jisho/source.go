package jisho

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/poiesic/wordbook/core"
	"github.com/poiesic/wordbook/fetch"
	"github.com/poiesic/wordbook/source"
)

const (
	// Name is the source tag written to results.
	Name = "Jisho.org"

	defaultBaseURL = "https://jisho.org/api/v1/search/words"
)

// Source looks words up through the Jisho search API.
type Source struct {
	baseURL string
	client  *fetch.Client
	logger  *slog.Logger
}

var _ source.Source = (*Source)(nil)

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

// WithBaseURL points the source at another search endpoint.
func WithBaseURL(baseURL string) Option {
	return func(s *Source) error {
		if _, err := url.Parse(baseURL); err != nil {
			return fmt.Errorf("jisho: invalid base url: %w", err)
		}
		s.baseURL = baseURL
		return nil
	}
}

// WithClient sets the HTTP client.
func WithClient(client *fetch.Client) Option {
	return func(s *Source) error {
		s.client = client
		return nil
	}
}

// New creates a Jisho source.
func New(opts ...Option) (*Source, error) {
	s := &Source{
		baseURL: defaultBaseURL,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	s.logger = s.logger.With("source", "jisho")
	if s.client == nil {
		client, err := fetch.New(fetch.WithTimeout(10*time.Second), fetch.WithLogger(s.logger))
		if err != nil {
			return nil, err
		}
		s.client = client
	}
	return s, nil
}

// Name returns the source tag.
func (s *Source) Name() string {
	return Name
}

// Lookup returns Jisho's entries for word in API order.
func (s *Source) Lookup(ctx context.Context, word string) ([]core.LookupResult, error) {
	reqURL := s.baseURL + "?" + url.Values{"keyword": {word}}.Encode()

	var resp apiResponse
	if err := s.client.GetJSON(ctx, reqURL, &resp); err != nil {
		return nil, fmt.Errorf("jisho: %w", err)
	}
	if resp.Meta.Status != 0 && resp.Meta.Status != http.StatusOK {
		return nil, fmt.Errorf("jisho: %w: api status %d", core.ErrSourceUnavailable, resp.Meta.Status)
	}

	results := make([]core.LookupResult, 0, len(resp.Data))
	for _, entry := range resp.Data {
		result, err := mapEntry(entry)
		if err != nil {
			s.logger.WarnContext(ctx, "skipping entry", "word", word, "slug", entry.Slug, "err", err)
			continue
		}
		results = append(results, result)
	}

	s.logger.DebugContext(ctx, "jisho response", "word", word, "entries", len(resp.Data), "results", len(results))
	return results, nil
}

// mapEntry converts an API entry. The first written form is the
// headword; the remaining forms become alternates. Each sense becomes
// one translation with its definitions joined by "; ".
func mapEntry(entry apiEntry) (core.LookupResult, error) {
	if len(entry.Japanese) == 0 || entry.Japanese[0].form() == "" {
		return core.LookupResult{}, fmt.Errorf("%w: entry %q has no japanese form", core.ErrParseFailure, entry.Slug)
	}

	first := entry.Japanese[0]
	result := core.NewLookupResult(first.form(), Name)
	result.Reading = first.Reading

	for _, j := range entry.Japanese[1:] {
		if f := j.form(); f != "" && f != result.Headword {
			result.Alternates = append(result.Alternates, f)
		}
	}

	for _, sense := range entry.Senses {
		if len(sense.EnglishDefinitions) == 0 {
			continue
		}
		result.Translations = append(result.Translations, strings.Join(sense.EnglishDefinitions, "; "))
	}
	return result, nil
}
