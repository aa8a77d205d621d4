package corpus

import (
	"context"
	"fmt"
	"iter"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/poiesic/wordbook/core"
)

// DefaultLanguage is the language code of the lines that get indexed.
const DefaultLanguage = "jpn"

// Corpus answers substring queries against a sentence export archive.
type Corpus struct {
	path      string
	language  string
	threshold int
	logger    *slog.Logger

	mu    sync.Mutex
	built bool
	index atomic.Pointer[Index]
	stats BuildStats
	err   error
}

// Option configures a Corpus.
type Option func(*Corpus) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(c *Corpus) error {
		if logger == nil {
			logger = slog.Default()
		}
		c.logger = logger
		return nil
	}
}

// WithLanguage sets the language code whose lines are indexed and searched.
// Default is "jpn".
func WithLanguage(language string) Option {
	return func(c *Corpus) error {
		if language == "" {
			return fmt.Errorf("corpus: language cannot be empty")
		}
		c.language = language
		return nil
	}
}

// WithHotThreshold sets the occurrence count above which a character
// turns hot.
// Default is 500.
func WithHotThreshold(threshold int) Option {
	return func(c *Corpus) error {
		if threshold <= 0 {
			return fmt.Errorf("corpus: hot threshold must be positive, got %d", threshold)
		}
		c.threshold = threshold
		return nil
	}
}

// New returns an unbuilt corpus over the archive at path.
func New(path string, opts ...Option) (*Corpus, error) {
	if path == "" {
		return nil, fmt.Errorf("corpus: path cannot be empty")
	}

	c := &Corpus{
		path:      path,
		language:  DefaultLanguage,
		threshold: DefaultHotThreshold,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	c.logger = c.logger.With("component", "corpus")
	return c, nil
}

// Path returns the archive location.
func (c *Corpus) Path() string {
	return c.path
}

// Build indexes the archive. Only the first completed call does any
// work; later calls return its outcome, and a failed build leaves the
// corpus unusable. A build interrupted by ctx is not recorded, so a
// later call starts over.
func (c *Corpus) Build(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.built {
		return c.err
	}

	start := time.Now()
	idx, stats, err := c.build(ctx)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			c.logger.Warn("corpus index build interrupted", "path", c.path, "err", ctxErr)
			return fmt.Errorf("%w: %w", core.ErrCorpusUnavailable, ctxErr)
		}
		c.built = true
		c.err = fmt.Errorf("%w: %w", core.ErrCorpusUnavailable, err)
		c.logger.Error("corpus index build failed", "path", c.path, "err", err)
		return c.err
	}
	c.built = true
	c.stats = stats
	c.index.Store(idx)
	c.logger.Info("corpus index built",
		"path", c.path,
		"lines", stats.TotalLines,
		"indexed", stats.IndexedLines,
		"skipped", stats.SkippedLines,
		"chars", stats.DistinctChars,
		"hot", stats.HotChars,
		"elapsed", time.Since(start))
	return nil
}

func (c *Corpus) build(ctx context.Context) (*Index, BuildStats, error) {
	r, err := openArchive(c.path)
	if err != nil {
		return nil, BuildStats{}, err
	}
	defer r.Close()
	return BuildIndex(ctx, r, c.language, c.threshold)
}

// Ready reports whether Build has completed successfully.
func (c *Corpus) Ready() bool {
	return c.index.Load() != nil
}

// Stats returns the statistics of the completed build.
func (c *Corpus) Stats() (BuildStats, error) {
	if _, err := c.loadIndex(); err != nil {
		return BuildStats{}, err
	}
	return c.stats, nil
}

// Index returns the built index.
func (c *Corpus) Index() (*Index, error) {
	return c.loadIndex()
}

func (c *Corpus) loadIndex() (*Index, error) {
	idx := c.index.Load()
	if idx == nil {
		return nil, fmt.Errorf("%w: index not built", core.ErrCorpusUnavailable)
	}
	return idx, nil
}

// Sentences yields, in corpus order, the target-language sentences that
// contain word. Every call decompresses the archive afresh; iteration
// stops early once the candidate lines are exhausted. Errors are yielded
// once and end the sequence.
func (c *Corpus) Sentences(ctx context.Context, word string) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		idx, err := c.loadIndex()
		if err != nil {
			yield("", err)
			return
		}

		candidates, restricted := idx.CandidateLines(word)
		if restricted && len(candidates) == 0 {
			return
		}

		r, err := openArchive(c.path)
		if err != nil {
			yield("", fmt.Errorf("%w: %w", core.ErrCorpusUnavailable, err))
			return
		}
		defer r.Close()

		next := 0
		scanner := newLineScanner(r)
		for lineNo := 0; scanner.Scan(); lineNo++ {
			if lineNo%10000 == 0 {
				if err := ctx.Err(); err != nil {
					yield("", err)
					return
				}
			}
			if restricted {
				if next >= len(candidates) {
					return
				}
				if lineNo != candidates[next] {
					continue
				}
				next++
			}

			lang, text, ok := parseLine(scanner.Text())
			if !ok || lang != c.language {
				continue
			}
			if strings.Contains(text, word) {
				if !yield(text, nil) {
					return
				}
			}
		}
		if err := scanner.Err(); err != nil {
			yield("", fmt.Errorf("%w: %w", core.ErrCorpusUnavailable, err))
		}
	}
}

// Search collects the sentences containing word. limit caps the number
// of sentences returned; zero or less means no cap.
func (c *Corpus) Search(ctx context.Context, word string, limit int) ([]string, error) {
	start := time.Now()
	matches := []string{}
	for sentence, err := range c.Sentences(ctx, word) {
		if err != nil {
			return nil, err
		}
		matches = append(matches, sentence)
		if limit > 0 && len(matches) >= limit {
			break
		}
	}
	c.logger.Debug("corpus search", "word", word, "matches", len(matches), "elapsed", time.Since(start))
	return matches, nil
}
