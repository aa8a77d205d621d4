package config

import "time"

// Config is the root application configuration.
//
// Switches that default to on carry no env-default tag: cleanenv would
// apply it over an explicit "false" in the file. Load starts from
// Default instead.
type Config struct {
	Log    LogConfig    `yaml:"log"`
	Search SearchConfig `yaml:"search"`
	Corpus CorpusConfig `yaml:"corpus"`
	Jisho  JishoConfig  `yaml:"jisho"`
	Goo    GooConfig    `yaml:"goo"`
	Morph  MorphConfig  `yaml:"morph"`
	LLM    LLMConfig    `yaml:"llm"`
	Cache  CacheConfig  `yaml:"cache"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `yaml:"level"  env:"WORDBOOK_LOG_LEVEL"  env-default:"info"`
	Format string `yaml:"format" env:"WORDBOOK_LOG_FORMAT" env-default:"text"`
}

// SearchConfig holds aggregator settings.
type SearchConfig struct {
	EnrichConcurrency int           `yaml:"enrich_concurrency" env:"WORDBOOK_SEARCH_ENRICH_CONCURRENCY" env-default:"10"`
	SourceTimeout     time.Duration `yaml:"source_timeout"     env:"WORDBOOK_SEARCH_SOURCE_TIMEOUT"     env-default:"10s"`
	EnrichTimeout     time.Duration `yaml:"enrich_timeout"     env:"WORDBOOK_SEARCH_ENRICH_TIMEOUT"     env-default:"30s"`
}

// CorpusConfig holds the example sentence corpus settings.
type CorpusConfig struct {
	Enabled      bool   `yaml:"enabled"       env:"WORDBOOK_CORPUS_ENABLED"`
	Path         string `yaml:"path"          env:"WORDBOOK_CORPUS_PATH"          env-default:"data/jpn_sentences.tsv.bz2"`
	URL          string `yaml:"url"           env:"WORDBOOK_CORPUS_URL"           env-default:"https://downloads.tatoeba.org/exports/per_language/jpn/jpn_sentences.tsv.bz2"`
	Language     string `yaml:"language"      env:"WORDBOOK_CORPUS_LANGUAGE"      env-default:"jpn"`
	Download     bool   `yaml:"download"      env:"WORDBOOK_CORPUS_DOWNLOAD"      env-default:"false"`
	HotThreshold int    `yaml:"hot_threshold" env:"WORDBOOK_CORPUS_HOT_THRESHOLD" env-default:"500"`
	ScanWorkers  int    `yaml:"scan_workers"  env:"WORDBOOK_CORPUS_SCAN_WORKERS"  env-default:"4"`
	MaxExamples  int    `yaml:"max_examples"  env:"WORDBOOK_CORPUS_MAX_EXAMPLES"  env-default:"0"`
}

// JishoConfig holds the Jisho API source settings.
type JishoConfig struct {
	Enabled bool          `yaml:"enabled"  env:"WORDBOOK_JISHO_ENABLED"`
	BaseURL string        `yaml:"base_url" env:"WORDBOOK_JISHO_BASE_URL" env-default:"https://jisho.org/api/v1/search/words"`
	Timeout time.Duration `yaml:"timeout"  env:"WORDBOOK_JISHO_TIMEOUT"  env-default:"10s"`
}

// GooConfig holds the goo dictionary scraper settings.
type GooConfig struct {
	Enabled     bool          `yaml:"enabled"     env:"WORDBOOK_GOO_ENABLED"`
	BaseURL     string        `yaml:"base_url"    env:"WORDBOOK_GOO_BASE_URL"    env-default:"https://dictionary.goo.ne.jp"`
	Timeout     time.Duration `yaml:"timeout"     env:"WORDBOOK_GOO_TIMEOUT"     env-default:"10s"`
	Concurrency int           `yaml:"concurrency" env:"WORDBOOK_GOO_CONCURRENCY" env-default:"10"`
	UserAgent   string        `yaml:"user_agent"  env:"WORDBOOK_GOO_USER_AGENT"`
	Readability bool          `yaml:"readability" env:"WORDBOOK_GOO_READABILITY"`
}

// MorphConfig holds the offline morphological analyzer settings.
type MorphConfig struct {
	Enabled bool `yaml:"enabled" env:"WORDBOOK_MORPH_ENABLED" env-default:"false"`
}

// LLMConfig holds the LLM glossary source settings.
type LLMConfig struct {
	Enabled    bool   `yaml:"enabled"     env:"WORDBOOK_LLM_ENABLED"     env-default:"false"`
	Host       string `yaml:"host"        env:"WORDBOOK_LLM_HOST"        env-default:"http://localhost:11434/v1"`
	Model      string `yaml:"model"       env:"WORDBOOK_LLM_MODEL"       env-default:"qwen2.5:7b"`
	Token      string `yaml:"token"       env:"WORDBOOK_LLM_TOKEN"       env-default:"none"`
	MaxEntries int    `yaml:"max_entries" env:"WORDBOOK_LLM_MAX_ENTRIES" env-default:"3"`
}

// CacheConfig holds the in-memory result cache settings.
type CacheConfig struct {
	Enabled bool          `yaml:"enabled" env:"WORDBOOK_CACHE_ENABLED" env-default:"false"`
	TTL     time.Duration `yaml:"ttl"     env:"WORDBOOK_CACHE_TTL"     env-default:"1h"`
}

// Default returns the configuration used when neither a file nor the
// environment sets anything.
func Default() *Config {
	return &Config{
		Log: LogConfig{Level: "info", Format: "text"},
		Search: SearchConfig{
			EnrichConcurrency: 10,
			SourceTimeout:     10 * time.Second,
			EnrichTimeout:     30 * time.Second,
		},
		Corpus: CorpusConfig{
			Enabled:      true,
			Path:         "data/jpn_sentences.tsv.bz2",
			URL:          "https://downloads.tatoeba.org/exports/per_language/jpn/jpn_sentences.tsv.bz2",
			Language:     "jpn",
			HotThreshold: 500,
			ScanWorkers:  4,
		},
		Jisho: JishoConfig{
			Enabled: true,
			BaseURL: "https://jisho.org/api/v1/search/words",
			Timeout: 10 * time.Second,
		},
		Goo: GooConfig{
			Enabled:     true,
			BaseURL:     "https://dictionary.goo.ne.jp",
			Timeout:     10 * time.Second,
			Concurrency: 10,
			Readability: true,
		},
		LLM: LLMConfig{
			Host:       "http://localhost:11434/v1",
			Model:      "qwen2.5:7b",
			Token:      "none",
			MaxEntries: 3,
		},
		Cache: CacheConfig{TTL: time.Hour},
	}
}

// EnabledSources lists the tags of the enabled dictionary sections, in
// dispatch order.
func (c *Config) EnabledSources() []string {
	var names []string
	if c.Jisho.Enabled {
		names = append(names, "jisho")
	}
	if c.Goo.Enabled {
		names = append(names, "goo")
	}
	if c.Morph.Enabled {
		names = append(names, "morph")
	}
	if c.LLM.Enabled {
		names = append(names, "llm")
	}
	return names
}
