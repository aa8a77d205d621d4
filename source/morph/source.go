package morph

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/ikawaha/kagome-dict/ipa"
	"github.com/ikawaha/kagome/v2/tokenizer"
	"github.com/poiesic/wordbook/core"
	"github.com/poiesic/wordbook/source"
)

// Name is the source tag written to results.
const Name = "kagome"

// IPA feature positions.
const (
	featurePOSEnd   = 4
	featureBaseForm = 6
	featureReading  = 7
)

// Parts of speech that never become entries.
var skippedPOS = []string{"助詞", "助動詞", "記号"}

// Source analyzes the query offline and returns one entry per content
// word: the dictionary form as headword, its reading in hiragana, and
// its part of speech as the definition.
type Source struct {
	t      *tokenizer.Tokenizer
	logger *slog.Logger
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

// New loads the IPA dictionary and creates a source.
func New(opts ...Option) (*Source, error) {
	s := &Source{logger: slog.Default()}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	s.logger = s.logger.With("source", Name)

	t, err := tokenizer.New(ipa.Dict(), tokenizer.OmitBosEos())
	if err != nil {
		return nil, fmt.Errorf("morph: create tokenizer: %w", err)
	}
	s.t = t
	return s, nil
}

// Name returns the source tag.
func (s *Source) Name() string {
	return Name
}

// Lookup returns the content words of word in order of appearance,
// one entry per distinct dictionary form.
func (s *Source) Lookup(ctx context.Context, word string) ([]core.LookupResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("morph: %w", err)
	}

	results := []core.LookupResult{}
	seen := make(map[string]int)
	for _, tok := range s.t.Tokenize(word) {
		if tok.Class == tokenizer.DUMMY || strings.TrimSpace(tok.Surface) == "" {
			continue
		}
		features := tok.Features()
		pos := partOfSpeech(features)
		if len(pos) == 0 || slices.Contains(skippedPOS, pos[0]) {
			continue
		}

		base := tok.Surface
		if len(features) > featureBaseForm && features[featureBaseForm] != "*" {
			base = features[featureBaseForm]
		}

		if i, ok := seen[base]; ok {
			if tok.Surface != base && !slices.Contains(results[i].Alternates, tok.Surface) {
				results[i].Alternates = append(results[i].Alternates, tok.Surface)
			}
			continue
		}

		r := core.NewLookupResult(base, Name)
		if tok.Surface != base {
			r.Alternates = []string{tok.Surface}
		}
		r.Reading = s.reading(base, tok.Surface, features)
		r.Definitions = []string{strings.Join(pos, "・")}
		seen[base] = len(results)
		results = append(results, r)
	}

	s.logger.DebugContext(ctx, "morph lookup", "word", word, "results", len(results))
	return results, nil
}

// reading returns the hiragana reading of base. An inflected surface
// reads differently from its dictionary form, so base is analyzed again.
func (s *Source) reading(base, surface string, features []string) string {
	if base == surface {
		return featureReadingOf(features)
	}
	var b strings.Builder
	for _, tok := range s.t.Tokenize(base) {
		r := featureReadingOf(tok.Features())
		if r == "" {
			return ""
		}
		b.WriteString(r)
	}
	return b.String()
}

func featureReadingOf(features []string) string {
	if len(features) > featureReading && features[featureReading] != "*" {
		return KatakanaToHiragana(features[featureReading])
	}
	return ""
}

func partOfSpeech(features []string) []string {
	var pos []string
	for _, f := range features[:min(len(features), featurePOSEnd)] {
		if f != "*" {
			pos = append(pos, f)
		}
	}
	return pos
}

// KatakanaToHiragana maps katakana to the matching hiragana, leaving
// every other rune, including the long vowel mark, as is.
func KatakanaToHiragana(s string) string {
	runes := []rune(s)
	for i, r := range runes {
		if r >= 0x30A1 && r <= 0x30F6 {
			runes[i] = r - 0x60
		}
	}
	return string(runes)
}
