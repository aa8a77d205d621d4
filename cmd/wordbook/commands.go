package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/poiesic/wordbook"
	"github.com/poiesic/wordbook/config"
	"github.com/poiesic/wordbook/corpus"
	"github.com/urfave/cli/v2"
)

// commandContext cancels on interrupt.
func commandContext(c *cli.Context) (context.Context, context.CancelFunc) {
	ctx := c.Context
	if ctx == nil {
		ctx = context.Background()
	}
	return signal.NotifyContext(ctx, os.Interrupt)
}

// loadConfig reads the config file. Its log section applies when the
// logging flags were not given.
func loadConfig(c *cli.Context) (*config.Config, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return nil, err
	}
	if !c.IsSet("log-level") && !c.IsSet("log-format") {
		level, err := cfg.Log.SlogLevel()
		if err != nil {
			return nil, err
		}
		slog.SetDefault(newLogger(c, level, cfg.Log.Format))
	}
	return cfg, nil
}

func wordArg(c *cli.Context) (string, error) {
	if c.NArg() == 0 {
		return "", fmt.Errorf("a word is required")
	}
	word := strings.Join(c.Args().Slice(), " ")
	if strings.TrimSpace(word) == "" {
		return "", fmt.Errorf("a word is required")
	}
	return word, nil
}

func openWordbook(ctx context.Context, cfg *config.Config) (*wordbook.Wordbook, error) {
	start := time.Now()
	w, err := wordbook.New(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open wordbook: %w", err)
	}
	slog.Debug("wordbook opened", "elapsed", time.Since(start))
	return w, nil
}

func searchCommand(c *cli.Context) error {
	word, err := wordArg(c)
	if err != nil {
		return err
	}
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	ctx, cancel := commandContext(c)
	defer cancel()

	w, err := openWordbook(ctx, cfg)
	if err != nil {
		return err
	}
	defer w.Close()

	results, err := w.Search(ctx, word)
	if err != nil {
		return err
	}
	return printResults(c, results)
}

func topCommand(c *cli.Context) error {
	word, err := wordArg(c)
	if err != nil {
		return err
	}
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	ctx, cancel := commandContext(c)
	defer cancel()

	w, err := openWordbook(ctx, cfg)
	if err != nil {
		return err
	}
	defer w.Close()

	top, err := w.SearchTop(ctx, word)
	if err != nil {
		return err
	}
	return printResult(c, top)
}

func lookupCommand(c *cli.Context) error {
	word, err := wordArg(c)
	if err != nil {
		return err
	}
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	name := c.String("source")
	// Only the examples source needs the corpus index.
	if name != "tatoeba" {
		cfg.Corpus.Enabled = false
	}
	ctx, cancel := commandContext(c)
	defer cancel()

	w, err := openWordbook(ctx, cfg)
	if err != nil {
		return err
	}
	defer w.Close()

	if c.Bool("top") {
		top, err := w.LookupTop(ctx, name, word)
		if err != nil {
			return err
		}
		return printResult(c, top)
	}
	results, err := w.Lookup(ctx, name, word)
	if err != nil {
		return err
	}
	return printResults(c, results)
}

func corpusFetchCommand(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	ctx, cancel := commandContext(c)
	defer cancel()

	if c.Bool("force") {
		err = corpus.Download(ctx, nil, cfg.Corpus.URL, cfg.Corpus.Path)
	} else {
		err = corpus.Ensure(ctx, nil, cfg.Corpus.URL, cfg.Corpus.Path)
	}
	if err != nil {
		return fmt.Errorf("failed to fetch corpus: %w", err)
	}
	fmt.Fprintln(c.App.Writer, cfg.Corpus.Path)
	return nil
}

func openCorpus(ctx context.Context, cfg config.CorpusConfig) (*corpus.Corpus, error) {
	cp, err := corpus.New(cfg.Path,
		corpus.WithLanguage(cfg.Language),
		corpus.WithHotThreshold(cfg.HotThreshold),
	)
	if err != nil {
		return nil, err
	}
	if err := cp.Build(ctx); err != nil {
		return nil, err
	}
	return cp, nil
}

func corpusGrepCommand(c *cli.Context) error {
	word, err := wordArg(c)
	if err != nil {
		return err
	}
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	ctx, cancel := commandContext(c)
	defer cancel()

	cp, err := openCorpus(ctx, cfg.Corpus)
	if err != nil {
		return err
	}
	sentences, err := cp.Search(ctx, word, c.Int("limit"))
	if err != nil {
		return err
	}
	return printSentences(c, sentences)
}

func corpusStatsCommand(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	ctx, cancel := commandContext(c)
	defer cancel()

	cp, err := openCorpus(ctx, cfg.Corpus)
	if err != nil {
		return err
	}
	stats, err := cp.Stats()
	if err != nil {
		return err
	}
	return printStats(c, cp.Path(), stats)
}
