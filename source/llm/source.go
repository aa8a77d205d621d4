package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/poiesic/wordbook/core"
	"github.com/poiesic/wordbook/source"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

const (
	// Name is the source tag written to results.
	Name = "llm"

	maxParseAttempts = 3
)

// Source asks a chat model for dictionary entries.
type Source struct {
	client     llms.Model
	maxEntries int
	logger     *slog.Logger
}

var _ source.Source = (*Source)(nil)

// entry matches one item of the model's JSON response.
type entry struct {
	Headword     string   `json:"headword"`
	Reading      string   `json:"reading"`
	Definitions  []string `json:"definitions"`
	Translations []string `json:"translations"`
}

type response struct {
	Entries []entry `json:"entries"`
}

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

// WithClient uses model instead of a client built from the config.
func WithClient(model llms.Model) Option {
	return func(s *Source) error {
		s.client = model
		return nil
	}
}

// New creates an LLM source. The config is validated and normalized before use.
func New(config *Config, opts ...Option) (*Source, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	s := &Source{
		maxEntries: config.MaxEntries,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	s.logger = s.logger.With("source", Name)

	if s.client == nil {
		client, err := openai.New(
			openai.WithBaseURL(config.Host),
			openai.WithToken(config.Token),
			openai.WithModel(config.Model),
		)
		if err != nil {
			return nil, fmt.Errorf("llm: create client: %w", err)
		}
		s.client = client
	}
	return s, nil
}

// Name returns the source tag.
func (s *Source) Name() string {
	return Name
}

// Lookup asks the model for entries for word. A response that still
// does not parse after three attempts wraps core.ErrParseFailure.
func (s *Source) Lookup(ctx context.Context, word string) ([]core.LookupResult, error) {
	word = strings.TrimSpace(word)
	if word == "" {
		return []core.LookupResult{}, nil
	}

	content := []llms.MessageContent{
		{
			Role:  llms.ChatMessageTypeSystem,
			Parts: []llms.ContentPart{llms.TextPart(buildSystemPrompt(s.maxEntries))},
		},
		{
			Role:  llms.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{llms.TextPart(word)},
		},
	}

	start := time.Now()
	var parsed response
	var lastErr error
	for attempt := 1; attempt <= maxParseAttempts; attempt++ {
		resp, err := s.client.GenerateContent(ctx, content, llms.WithTemperature(0.0), llms.WithJSONMode())
		if err != nil {
			s.logger.ErrorContext(ctx, "failed to generate content", "attempt", attempt, "err", err)
			return nil, fmt.Errorf("llm: %w: %w", core.ErrSourceUnavailable, err)
		}
		if len(resp.Choices) < 1 {
			s.logger.DebugContext(ctx, "no choices returned from model")
			return []core.LookupResult{}, nil
		}

		text := repairJSON(stripFences(resp.Choices[0].Content))
		parsed = response{}
		if err := json.Unmarshal([]byte(text), &parsed); err != nil {
			lastErr = err
			s.logger.WarnContext(ctx, "error parsing model response",
				"attempt", attempt,
				"response", text,
				"err", err)
			continue
		}
		lastErr = nil
		break
	}
	if lastErr != nil {
		return nil, fmt.Errorf("llm: %w: %w", core.ErrParseFailure, lastErr)
	}

	results := make([]core.LookupResult, 0, len(parsed.Entries))
	for _, e := range parsed.Entries {
		if len(results) == s.maxEntries {
			break
		}
		r, ok := e.toResult()
		if !ok {
			s.logger.DebugContext(ctx, "skipping entry without headword", "word", word)
			continue
		}
		results = append(results, r)
	}

	s.logger.DebugContext(ctx, "llm lookup",
		"word", word,
		"entries", len(parsed.Entries),
		"results", len(results),
		"elapsed", time.Since(start))
	return results, nil
}

func (e entry) toResult() (core.LookupResult, bool) {
	headword := strings.TrimSpace(e.Headword)
	if headword == "" {
		return core.LookupResult{}, false
	}
	r := core.NewLookupResult(headword, Name)
	r.Reading = strings.TrimSpace(e.Reading)
	r.Definitions = nonEmpty(e.Definitions)
	r.Translations = nonEmpty(e.Translations)
	return r, true
}

func nonEmpty(items []string) []string {
	var out []string
	for _, s := range items {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
