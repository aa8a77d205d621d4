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




package main

import (
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"strings"

	"github.com/urfave/cli/v2"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "wordbook",
		Usage: "Look Japanese words up across several dictionaries at once",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
			&cli.StringFlag{
				Name:  "log-format",
				Usage: "Set logging format (text, json)",
				Value: "text",
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to the YAML config file (default: $CONFIG_PATH or ./wordbook.yaml)",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Print results as JSON",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:      "search",
				Usage:     "Search every enabled dictionary and merge the entries",
				ArgsUsage: "<word>",
				Action:    searchCommand,
			},
			{
				Name:      "top",
				Usage:     "Print the single entry that best matches a word",
				ArgsUsage: "<word>",
				Action:    topCommand,
			},
			{
				Name:      "lookup",
				Usage:     "Query one source directly",
				ArgsUsage: "<word>",
				Action:    lookupCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "source",
						Aliases:  []string{"s"},
						Usage:    "Source to query (jisho, goo, morph, llm, tatoeba)",
						Required: true,
					},
					&cli.BoolFlag{
						Name:  "top",
						Usage: "Print only the source's best entry",
					},
				},
			},
			{
				Name:  "corpus",
				Usage: "Manage the example sentence corpus",
				Subcommands: []*cli.Command{
					{
						Name:   "fetch",
						Usage:  "Download the sentence export",
						Action: corpusFetchCommand,
						Flags: []cli.Flag{
							&cli.BoolFlag{
								Name:  "force",
								Usage: "Download even when the archive already exists",
							},
						},
					},
					{
						Name:      "grep",
						Usage:     "Print the corpus sentences that contain a word",
						ArgsUsage: "<word>",
						Action:    corpusGrepCommand,
						Flags: []cli.Flag{
							&cli.IntFlag{
								Name:    "limit",
								Aliases: []string{"n"},
								Usage:   "Maximum number of sentences (0 for all)",
								Value:   20,
							},
						},
					},
					{
						Name:   "stats",
						Usage:  "Build the index and print its statistics",
						Action: corpusStatsCommand,
					},
				},
			},
		},
	}
}

func setupLogger(c *cli.Context) error {
	// Get log level from flag and normalize to lowercase
	levelStr := strings.ToLower(c.String("log-level"))

	// Map string to slog.Level
	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	format := strings.ToLower(c.String("log-format"))
	if format != "" && format != "text" && format != "json" {
		return fmt.Errorf("invalid log format %q: must be one of text, json", format)
	}
	slog.SetDefault(newLogger(c, level, format))

	return nil
}

// newLogger writes to the app's error writer, falling back to stderr.
func newLogger(c *cli.Context, level slog.Level, format string) *slog.Logger {
	var out io.Writer = os.Stderr
	if c.App.ErrWriter != nil {
		out = c.App.ErrWriter
	}
	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(format, "json") {
		return slog.New(slog.NewJSONHandler(out, opts))
	}
	return slog.New(slog.NewTextHandler(out, opts))
}
