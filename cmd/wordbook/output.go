package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/poiesic/wordbook/core"
	"github.com/poiesic/wordbook/corpus"
	"github.com/urfave/cli/v2"
)

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printResults(c *cli.Context, results []core.LookupResult) error {
	if c.Bool("json") {
		return writeJSON(c.App.Writer, results)
	}
	if len(results) == 0 {
		fmt.Fprintln(c.App.Writer, "no entries found")
		return nil
	}
	for i, r := range results {
		if i > 0 {
			fmt.Fprintln(c.App.Writer)
		}
		formatResult(c.App.Writer, r)
	}
	return nil
}

func printResult(c *cli.Context, r core.LookupResult) error {
	if c.Bool("json") {
		return writeJSON(c.App.Writer, r)
	}
	formatResult(c.App.Writer, r)
	return nil
}

// formatResult writes an entry as
//
//	猫【ねこ】 (Jisho.org,tatoeba)
//	  alternates: ネコ
//	  en: cat
func formatResult(w io.Writer, r core.LookupResult) {
	heading := r.Headword
	if r.Reading != "" {
		heading += "【" + r.Reading + "】"
	}
	fmt.Fprintf(w, "%s (%s)\n", heading, r.Source)
	if len(r.Alternates) > 0 {
		fmt.Fprintf(w, "  alternates: %s\n", strings.Join(r.Alternates, "、"))
	}
	for _, d := range r.Definitions {
		fmt.Fprintf(w, "  def: %s\n", d)
	}
	for _, t := range r.Translations {
		fmt.Fprintf(w, "  en: %s\n", t)
	}
	for _, e := range r.Examples {
		fmt.Fprintf(w, "  ex: %s\n", e)
	}
}

func printSentences(c *cli.Context, sentences []string) error {
	if c.Bool("json") {
		return writeJSON(c.App.Writer, sentences)
	}
	for _, s := range sentences {
		fmt.Fprintln(c.App.Writer, s)
	}
	return nil
}

func printStats(c *cli.Context, path string, stats corpus.BuildStats) error {
	if c.Bool("json") {
		return writeJSON(c.App.Writer, struct {
			Path string `json:"path"`
			corpus.BuildStats
		}{path, stats})
	}
	fmt.Fprintf(c.App.Writer, "path:           %s\n", path)
	fmt.Fprintf(c.App.Writer, "lines:          %d\n", stats.TotalLines)
	fmt.Fprintf(c.App.Writer, "indexed:        %d\n", stats.IndexedLines)
	fmt.Fprintf(c.App.Writer, "other language: %d\n", stats.ForeignLines)
	fmt.Fprintf(c.App.Writer, "malformed:      %d\n", stats.SkippedLines)
	fmt.Fprintf(c.App.Writer, "characters:     %d (%d hot)\n", stats.DistinctChars, stats.HotChars)
	return nil
}
