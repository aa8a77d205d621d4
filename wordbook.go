// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.




package wordbook

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"slices"

	"github.com/poiesic/wordbook/config"
	"github.com/poiesic/wordbook/core"
	"github.com/poiesic/wordbook/corpus"
	"github.com/poiesic/wordbook/fetch"
	"github.com/poiesic/wordbook/search"
	"github.com/poiesic/wordbook/source"
	"github.com/poiesic/wordbook/source/cache"
	"github.com/poiesic/wordbook/source/goo"
	"github.com/poiesic/wordbook/source/jisho"
	"github.com/poiesic/wordbook/source/llm"
	"github.com/poiesic/wordbook/source/morph"
	"github.com/poiesic/wordbook/source/tatoeba"
	"github.com/poiesic/wordbook/storage"
	"github.com/poiesic/wordbook/storage/badger"
)

// ErrUnknownSource is returned by Lookup and LookupTop for a name that
// matches no configured source.
var ErrUnknownSource = errors.New("unknown source")

// Wordbook wires the configured sources, the example corpus and the
// searcher together.
type Wordbook struct {
	searcher *search.Searcher
	sources  []namedSource
	corpus   *corpus.Corpus
	cache    storage.ResultCache
	closers  []func() error
	logger   *slog.Logger
}

// namedSource pairs a source with the config section that enabled it.
type namedSource struct {
	key  string
	kind source.Kind
	src  source.Source
}

// Option configures a Wordbook.
type Option func(*options) error

type options struct {
	logger     *slog.Logger
	httpClient *http.Client
	monitor    search.SearchMonitor
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) error {
		if logger == nil {
			logger = slog.Default()
		}
		o.logger = logger
		return nil
	}
}

// WithHTTPClient sets the client used to download the corpus archive.
func WithHTTPClient(client *http.Client) Option {
	return func(o *options) error {
		o.httpClient = client
		return nil
	}
}

// WithMonitor sets the monitor the searcher reports to.
func WithMonitor(monitor search.SearchMonitor) Option {
	return func(o *options) error {
		o.monitor = monitor
		return nil
	}
}

// New builds a Wordbook from cfg. A nil cfg means config.Default().
//
// When the corpus is enabled its index is built before New returns. A
// corpus that cannot be built is logged and left out, so results carry
// no examples. Call Close when done.
func New(ctx context.Context, cfg *config.Config, opts ...Option) (_ *Wordbook, err error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	o := &options{logger: slog.Default()}
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, err
		}
	}

	w := &Wordbook{logger: o.logger.With("component", "wordbook")}
	defer func() {
		if err != nil {
			w.Close()
		}
	}()

	if cfg.Cache.Enabled {
		c, err := badger.NewMemoryResultCache()
		if err != nil {
			return nil, fmt.Errorf("open result cache: %w", err)
		}
		w.cache = c
	}

	for _, key := range cfg.EnabledSources() {
		src, err := w.openSource(key, cfg, o.logger)
		if err != nil {
			return nil, fmt.Errorf("open %s source: %w", key, err)
		}
		w.sources = append(w.sources, namedSource{key: key, kind: source.KindDictionary, src: src})
	}

	if cfg.Corpus.Enabled {
		if err := w.openCorpus(ctx, cfg.Corpus, o); err != nil {
			return nil, err
		}
	}

	var examples source.Source
	if found := w.sourcesOf(source.KindExamples); len(found) > 0 {
		examples = found[0]
	}
	w.searcher, err = search.NewSearcher(w.sourcesOf(source.KindDictionary), examples,
		search.WithLogger(o.logger),
		search.WithMonitor(o.monitor),
		search.WithEnrichConcurrency(cfg.Search.EnrichConcurrency),
		search.WithSourceTimeout(cfg.Search.SourceTimeout),
		search.WithEnrichTimeout(cfg.Search.EnrichTimeout),
	)
	if err != nil {
		return nil, err
	}

	w.logger.Info("wordbook ready", "sources", w.Sources(), "examples", examples != nil, "cache", w.cache != nil)
	return w, nil
}

func (w *Wordbook) openSource(key string, cfg *config.Config, logger *slog.Logger) (source.Source, error) {
	var (
		src    source.Source
		remote bool
	)
	switch key {
	case "jisho":
		client, err := fetch.New(fetch.WithTimeout(cfg.Jisho.Timeout), fetch.WithLogger(logger))
		if err != nil {
			return nil, err
		}
		src, err = jisho.New(jisho.WithBaseURL(cfg.Jisho.BaseURL), jisho.WithClient(client), jisho.WithLogger(logger))
		if err != nil {
			return nil, err
		}
		remote = true
	case "goo":
		fetchOpts := []fetch.Option{
			fetch.WithTimeout(cfg.Goo.Timeout),
			fetch.WithoutRedirects(),
			fetch.WithLogger(logger),
		}
		if cfg.Goo.UserAgent != "" {
			fetchOpts = append(fetchOpts, fetch.WithUserAgent(cfg.Goo.UserAgent))
		}
		client, err := fetch.New(fetchOpts...)
		if err != nil {
			return nil, err
		}
		g, err := goo.New(
			goo.WithBaseURL(cfg.Goo.BaseURL),
			goo.WithClient(client),
			goo.WithConcurrency(cfg.Goo.Concurrency),
			goo.WithReadabilityFallback(cfg.Goo.Readability),
			goo.WithLogger(logger),
		)
		if err != nil {
			return nil, err
		}
		w.closers = append(w.closers, g.Close)
		src, remote = g, true
	case "morph":
		m, err := morph.New(morph.WithLogger(logger))
		if err != nil {
			return nil, err
		}
		src = m
	case "llm":
		l, err := llm.New(llm.NewConfig(
			llm.WithHost(cfg.LLM.Host),
			llm.WithModel(cfg.LLM.Model),
			llm.WithToken(cfg.LLM.Token),
			llm.WithMaxEntries(cfg.LLM.MaxEntries),
		), llm.WithLogger(logger))
		if err != nil {
			return nil, err
		}
		src, remote = l, true
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownSource, key)
	}

	if remote && w.cache != nil {
		return cache.Wrap(src, w.cache, cache.WithTTL(cfg.Cache.TTL), cache.WithLogger(logger))
	}
	return src, nil
}

func (w *Wordbook) openCorpus(ctx context.Context, cfg config.CorpusConfig, o *options) error {
	if cfg.Download {
		if err := corpus.Ensure(ctx, o.httpClient, cfg.URL, cfg.Path); err != nil {
			w.logger.Warn("corpus download failed, continuing without examples", "url", cfg.URL, "err", err)
			return nil
		}
	}

	c, err := corpus.New(cfg.Path,
		corpus.WithLanguage(cfg.Language),
		corpus.WithHotThreshold(cfg.HotThreshold),
		corpus.WithLogger(o.logger),
	)
	if err != nil {
		return err
	}
	if err := c.Build(ctx); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		w.logger.Warn("corpus unavailable, continuing without examples", "path", cfg.Path, "err", err)
		return nil
	}

	examples, err := tatoeba.New(c,
		tatoeba.WithWorkers(cfg.ScanWorkers),
		tatoeba.WithMaxExamples(cfg.MaxExamples),
		tatoeba.WithLogger(o.logger),
	)
	if err != nil {
		return err
	}
	w.closers = append(w.closers, examples.Close)
	w.corpus = c
	w.sources = append(w.sources, namedSource{key: "tatoeba", kind: source.KindExamples, src: examples})
	return nil
}

// Close releases the searcher, the sources and the cache.
func (w *Wordbook) Close() error {
	if w.searcher != nil {
		w.searcher.Release()
	}

	var errs []error
	for _, c := range slices.Backward(w.closers) {
		if err := c(); err != nil {
			errs = append(errs, err)
		}
	}
	if w.cache != nil {
		if err := w.cache.Close(); err != nil {
			w.logger.Error("error closing result cache", "err", err)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Search runs an aggregated search. See search.Searcher.Search.
func (w *Wordbook) Search(ctx context.Context, query string) ([]core.LookupResult, error) {
	return w.searcher.Search(ctx, query)
}

// SearchTop returns the single best entry. See search.Searcher.SearchTop.
func (w *Wordbook) SearchTop(ctx context.Context, query string) (core.LookupResult, error) {
	return w.searcher.SearchTop(ctx, query)
}

// Lookup queries one source. name is a config section ("jisho", "goo",
// "morph", "llm", "tatoeba") or a source tag. The example source answers
// too, with one entry carrying the matching sentences.
func (w *Wordbook) Lookup(ctx context.Context, name, word string) ([]core.LookupResult, error) {
	src, err := w.source(name)
	if err != nil {
		return nil, err
	}
	q, err := search.NormalizeQuery(word)
	if err != nil {
		return nil, err
	}
	return src.Lookup(ctx, q)
}

// LookupTop returns one source's best entry for word.
func (w *Wordbook) LookupTop(ctx context.Context, name, word string) (core.LookupResult, error) {
	src, err := w.source(name)
	if err != nil {
		return core.LookupResult{}, err
	}
	q, err := search.NormalizeQuery(word)
	if err != nil {
		return core.LookupResult{}, err
	}
	return source.Top(ctx, src, q)
}

func (w *Wordbook) source(name string) (source.Source, error) {
	ns, err := w.find(name)
	return ns.src, err
}

func (w *Wordbook) find(name string) (namedSource, error) {
	for _, ns := range w.sources {
		if ns.key == name || ns.src.Name() == name {
			return ns, nil
		}
	}
	return namedSource{}, fmt.Errorf("%w: %q", ErrUnknownSource, name)
}

func (w *Wordbook) sourcesOf(kind source.Kind) []source.Source {
	var found []source.Source
	for _, ns := range w.sources {
		if ns.kind == kind {
			found = append(found, ns.src)
		}
	}
	return found
}

// Sources returns the dictionary source tags in dispatch order.
func (w *Wordbook) Sources() []string {
	var names []string
	for _, src := range w.sourcesOf(source.KindDictionary) {
		names = append(names, src.Name())
	}
	return names
}

// Kind reports how the searcher uses the named source. name is resolved
// as in Lookup.
func (w *Wordbook) Kind(name string) (source.Kind, error) {
	ns, err := w.find(name)
	return ns.kind, err
}

// Corpus returns the example corpus, or nil when it is disabled or
// could not be built.
func (w *Wordbook) Corpus() *corpus.Corpus {
	return w.corpus
}
