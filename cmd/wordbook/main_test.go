package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/poiesic/wordbook"
	"github.com/poiesic/wordbook/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
)

const sentences = "1\tjpn\t猫が好きです。\n" +
	"2\tjpn\t犬が好きです。\n" +
	"3\teng\tI like cats.\n" +
	"4\tjpn\t黒い猫を見た。\n"

// offlineConfig writes a corpus and a config that enables only the
// morphological analyzer, and returns the config path.
func offlineConfig(t *testing.T, extra string) string {
	t.Helper()
	dir := t.TempDir()
	corpusPath := filepath.Join(dir, "sentences.tsv")
	require.NoError(t, os.WriteFile(corpusPath, []byte(sentences), 0o644))

	yaml := fmt.Sprintf(`
jisho:
  enabled: false
goo:
  enabled: false
morph:
  enabled: true
corpus:
  path: %q
%s`, corpusPath, extra)
	path := filepath.Join(dir, "wordbook.yaml")
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	app := newApp()
	app.Writer = &out
	app.ErrWriter = io.Discard
	err := app.Run(append([]string{"wordbook", "--log-level", "error"}, args...))
	return out.String(), err
}

func TestSearchCommand(t *testing.T) {
	cfg := offlineConfig(t, "")

	t.Run("json", func(t *testing.T) {
		out, err := run(t, "--config", cfg, "--json", "search", "猫")
		require.NoError(t, err)

		var results []core.LookupResult
		require.NoError(t, json.Unmarshal([]byte(out), &results))
		require.Len(t, results, 1)
		assert.Equal(t, "猫", results[0].Headword)
		assert.Equal(t, "ねこ", results[0].Reading)
		assert.Equal(t, "kagome,tatoeba", results[0].Source)
		assert.Equal(t, []string{"猫が好きです。", "黒い猫を見た。"}, results[0].Examples)
	})

	t.Run("text", func(t *testing.T) {
		out, err := run(t, "--config", cfg, "search", "猫")
		require.NoError(t, err)
		assert.Contains(t, out, "猫【ねこ】 (kagome,tatoeba)")
		assert.Contains(t, out, "  ex: 黒い猫を見た。")
	})

	t.Run("word is required", func(t *testing.T) {
		_, err := run(t, "--config", cfg, "search")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "word is required")
	})

	t.Run("missing config file", func(t *testing.T) {
		_, err := run(t, "--config", filepath.Join(t.TempDir(), "absent.yaml"), "search", "猫")
		assert.Error(t, err)
	})
}

func TestTopCommand(t *testing.T) {
	cfg := offlineConfig(t, "")

	out, err := run(t, "--config", cfg, "--json", "top", "犬")
	require.NoError(t, err)

	var top core.LookupResult
	require.NoError(t, json.Unmarshal([]byte(out), &top))
	assert.Equal(t, "犬", top.Headword)
	assert.Equal(t, []string{"犬が好きです。"}, top.Examples)
}

func TestLookupCommand(t *testing.T) {
	cfg := offlineConfig(t, "")

	t.Run("source is required", func(t *testing.T) {
		_, err := run(t, "--config", cfg, "lookup", "猫")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "source")
	})

	t.Run("dictionary source", func(t *testing.T) {
		out, err := run(t, "--config", cfg, "--json", "lookup", "--source", "morph", "食べた")
		require.NoError(t, err)

		var results []core.LookupResult
		require.NoError(t, json.Unmarshal([]byte(out), &results))
		require.NotEmpty(t, results)
		assert.Equal(t, "食べる", results[0].Headword)
		assert.Equal(t, "kagome", results[0].Source)
		assert.Empty(t, results[0].Examples)
	})

	t.Run("examples source", func(t *testing.T) {
		out, err := run(t, "--config", cfg, "--json", "lookup", "--source", "tatoeba", "--top", "黒い")
		require.NoError(t, err)

		var top core.LookupResult
		require.NoError(t, json.Unmarshal([]byte(out), &top))
		assert.Equal(t, []string{"黒い猫を見た。"}, top.Examples)
		assert.Equal(t, "tatoeba", top.Source)
	})

	t.Run("unknown source", func(t *testing.T) {
		_, err := run(t, "--config", cfg, "lookup", "--source", "eijiro", "猫")
		assert.ErrorIs(t, err, wordbook.ErrUnknownSource)
	})
}

func TestCorpusCommands(t *testing.T) {
	cfg := offlineConfig(t, "")

	t.Run("grep", func(t *testing.T) {
		out, err := run(t, "--config", cfg, "corpus", "grep", "猫")
		require.NoError(t, err)
		assert.Equal(t, "猫が好きです。\n黒い猫を見た。\n", out)
	})

	t.Run("grep limit", func(t *testing.T) {
		out, err := run(t, "--config", cfg, "corpus", "grep", "--limit", "1", "猫")
		require.NoError(t, err)
		assert.Equal(t, "猫が好きです。\n", out)
	})

	t.Run("stats", func(t *testing.T) {
		out, err := run(t, "--config", cfg, "--json", "corpus", "stats")
		require.NoError(t, err)

		var stats struct {
			TotalLines   int
			IndexedLines int
			ForeignLines int
		}
		require.NoError(t, json.Unmarshal([]byte(out), &stats))
		assert.Equal(t, 4, stats.TotalLines)
		assert.Equal(t, 3, stats.IndexedLines)
		assert.Equal(t, 1, stats.ForeignLines)
	})

	t.Run("fetch", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			io.WriteString(w, sentences)
		}))
		defer srv.Close()

		target := filepath.Join(t.TempDir(), "fetched", "jpn_sentences.tsv")
		fetchCfg := offlineConfig(t, fmt.Sprintf("  url: %q\n", srv.URL+"/jpn_sentences.tsv"))
		t.Setenv("WORDBOOK_CORPUS_PATH", target)

		out, err := run(t, "--config", fetchCfg, "corpus", "fetch")
		require.NoError(t, err)
		assert.Equal(t, target+"\n", out)

		data, err := os.ReadFile(target)
		require.NoError(t, err)
		assert.Equal(t, sentences, string(data))
	})
}

func TestSetupLogger(t *testing.T) {
	newTestApp := func(action cli.ActionFunc) *cli.App {
		return &cli.App{
			Name: "test",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:    "log-level",
					Aliases: []string{"l"},
					Value:   "info",
				},
				&cli.StringFlag{
					Name:  "log-format",
					Value: "text",
				},
			},
			Before:    setupLogger,
			ErrWriter: io.Discard,
			Action:    action,
		}
	}
	noop := func(*cli.Context) error { return nil }

	t.Run("valid log levels", func(t *testing.T) {
		for _, level := range []string{"debug", "info", "warn", "error", "DEBUG", "WaRn"} {
			t.Run(level, func(t *testing.T) {
				err := newTestApp(noop).Run([]string{"test", "--log-level", level})
				require.NoError(t, err)
			})
		}
	})

	t.Run("invalid log level returns error", func(t *testing.T) {
		err := newTestApp(noop).Run([]string{"test", "--log-level", "invalid"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid log level")
	})

	t.Run("json format", func(t *testing.T) {
		var buf bytes.Buffer
		app := newTestApp(func(*cli.Context) error {
			slog.Info("hello")
			return nil
		})
		app.ErrWriter = &buf
		require.NoError(t, app.Run([]string{"test", "--log-format", "json"}))
		assert.True(t, strings.HasPrefix(buf.String(), "{"), buf.String())
		assert.Contains(t, buf.String(), `"msg":"hello"`)
	})

	t.Run("invalid log format returns error", func(t *testing.T) {
		err := newTestApp(noop).Run([]string{"test", "--log-format", "xml"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid log format")
	})

	t.Run("log-level flag has alias -l", func(t *testing.T) {
		app := newTestApp(func(c *cli.Context) error {
			assert.Equal(t, "debug", c.String("log-level"))
			return nil
		})
		require.NoError(t, app.Run([]string{"test", "-l", "debug"}))
	})
}
