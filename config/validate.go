package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
)

// ErrNoSources is returned when every dictionary section is disabled.
var ErrNoSources = errors.New("at least one dictionary source must be enabled (jisho, goo, morph or llm)")

// Validate checks the configuration for consistency.
func (c *Config) Validate() error {
	if err := c.Log.validate(); err != nil {
		return fmt.Errorf("log: %w", err)
	}
	if err := c.Search.validate(); err != nil {
		return fmt.Errorf("search: %w", err)
	}
	if c.Corpus.Enabled {
		if err := c.Corpus.validate(); err != nil {
			return fmt.Errorf("corpus: %w", err)
		}
	}
	if len(c.EnabledSources()) == 0 {
		return ErrNoSources
	}
	if c.Jisho.Enabled {
		if err := validateURL(c.Jisho.BaseURL); err != nil {
			return fmt.Errorf("jisho: base_url: %w", err)
		}
		if c.Jisho.Timeout <= 0 {
			return fmt.Errorf("jisho: timeout must be positive")
		}
	}
	if c.Goo.Enabled {
		if err := validateURL(c.Goo.BaseURL); err != nil {
			return fmt.Errorf("goo: base_url: %w", err)
		}
		if c.Goo.Timeout <= 0 {
			return fmt.Errorf("goo: timeout must be positive")
		}
		if c.Goo.Concurrency <= 0 {
			return fmt.Errorf("goo: concurrency must be positive (got %d)", c.Goo.Concurrency)
		}
	}
	if c.LLM.Enabled {
		if err := validateURL(c.LLM.Host); err != nil {
			return fmt.Errorf("llm: host: %w", err)
		}
		if c.LLM.Model == "" {
			return fmt.Errorf("llm: model is required")
		}
		if c.LLM.MaxEntries < 1 || c.LLM.MaxEntries > 10 {
			return fmt.Errorf("llm: max_entries must be between 1 and 10 (got %d)", c.LLM.MaxEntries)
		}
	}
	if c.Cache.Enabled && c.Cache.TTL <= 0 {
		return fmt.Errorf("cache: ttl must be positive")
	}
	return nil
}

// SlogLevel parses Level.
func (c LogConfig) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Level)); err != nil {
		return 0, fmt.Errorf("invalid level %q", c.Level)
	}
	return level, nil
}

func (c LogConfig) validate() error {
	if _, err := c.SlogLevel(); err != nil {
		return err
	}
	switch strings.ToLower(c.Format) {
	case "text", "json":
		return nil
	default:
		return fmt.Errorf("format must be text or json (got %q)", c.Format)
	}
}

func (c SearchConfig) validate() error {
	if c.EnrichConcurrency <= 0 {
		return fmt.Errorf("enrich_concurrency must be positive (got %d)", c.EnrichConcurrency)
	}
	if c.SourceTimeout <= 0 {
		return fmt.Errorf("source_timeout must be positive")
	}
	if c.EnrichTimeout <= 0 {
		return fmt.Errorf("enrich_timeout must be positive")
	}
	return nil
}

func (c CorpusConfig) validate() error {
	if c.Path == "" {
		return fmt.Errorf("path is required")
	}
	if c.Language == "" {
		return fmt.Errorf("language is required")
	}
	if c.Download {
		if err := validateURL(c.URL); err != nil {
			return fmt.Errorf("url: %w", err)
		}
	}
	if c.HotThreshold <= 0 {
		return fmt.Errorf("hot_threshold must be positive (got %d)", c.HotThreshold)
	}
	if c.ScanWorkers <= 0 {
		return fmt.Errorf("scan_workers must be positive (got %d)", c.ScanWorkers)
	}
	if c.MaxExamples < 0 {
		return fmt.Errorf("max_examples cannot be negative (got %d)", c.MaxExamples)
	}
	return nil
}

func validateURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%q is not an http(s) URL", raw)
	}
	if u.Host == "" {
		return fmt.Errorf("%q has no host", raw)
	}
	return nil
}
