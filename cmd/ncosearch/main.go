// Copyright 2025 Udyog Labs
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
	"context"
	"encoding/json"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/udyoglabs/ncosearch"
	"github.com/udyoglabs/ncosearch/config"
	"github.com/udyoglabs/ncosearch/core"
	"github.com/udyoglabs/ncosearch/search"
)

func main() {
	app := &cli.App{
		Name:  "ncosearch",
		Usage: "Semantic search over the national occupation classification",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to YAML configuration file",
			},
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:      "search",
				Usage:     "Search occupations for a free-text query",
				ArgsUsage: "<query>",
				Action:    searchCommand,
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:    "top",
						Aliases: []string{"k"},
						Usage:   "Number of results to return (1-20)",
						Value:   core.DefaultK,
					},
					&cli.StringFlag{
						Name:  "lang",
						Usage: "Language override (en, hi, bn, mr); detected from script when omitted",
					},
				},
			},
			{
				Name:      "get",
				Usage:     "Show the full record for an occupation code",
				ArgsUsage: "<nco-code>",
				Action:    getCommand,
			},
			{
				Name:      "synonyms",
				Usage:     "Add or remove synonyms for an occupation code",
				ArgsUsage: "<nco-code>",
				Action:    synonymsCommand,
				Flags: []cli.Flag{
					&cli.StringSliceFlag{
						Name:  "add",
						Usage: "Synonym to add (repeatable)",
					},
					&cli.StringSliceFlag{
						Name:  "remove",
						Usage: "Synonym to remove (repeatable)",
					},
					&cli.BoolFlag{
						Name:  "reindex",
						Usage: "Rebuild the index immediately after the edit",
					},
				},
			},
			{
				Name:   "reindex",
				Usage:  "Re-embed the whole corpus and rebuild the index",
				Action: reindexCommand,
			},
			{
				Name:   "watch",
				Usage:  "Reload and reindex whenever the dataset file changes",
				Action: watchCommand,
			},
			{
				Name:   "stats",
				Usage:  "Show corpus and index statistics",
				Action: statsCommand,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func setupLogger(c *cli.Context) error {
	// Get log level from flag and normalize to lowercase
	levelStr := strings.ToLower(c.String("log-level"))

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

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}

// newService builds a service from the --config flag, with build progress
// on stderr.
func newService(c *cli.Context) (*ncosearch.Service, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return nil, err
	}
	return ncosearch.NewService(cfg, ncosearch.WithProgress(os.Stderr))
}

func printJSON(v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

func searchCommand(c *cli.Context) error {
	queryText := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
	if queryText == "" {
		return fmt.Errorf("query text is required")
	}

	svc, err := newService(c)
	if err != nil {
		return err
	}
	defer svc.Close()

	ctx := context.Background()
	if _, err := svc.Bootstrap(ctx); err != nil {
		return fmt.Errorf("building index: %w", err)
	}

	resp, err := svc.Search(ctx, core.SearchQuery{
		Text:     queryText,
		K:        c.Int("top"),
		Language: core.Language(c.String("lang")),
	})
	if err != nil {
		return err
	}
	return printJSON(resp)
}

func getCommand(c *cli.Context) error {
	code := c.Args().First()
	if code == "" {
		return fmt.Errorf("occupation code is required")
	}

	svc, err := newService(c)
	if err != nil {
		return err
	}
	defer svc.Close()

	record, err := svc.GetRecord(code)
	if err != nil {
		return err
	}
	return printJSON(record)
}

func synonymsCommand(c *cli.Context) error {
	code := c.Args().First()
	if code == "" {
		return fmt.Errorf("occupation code is required")
	}
	add := c.StringSlice("add")
	remove := c.StringSlice("remove")
	if len(add) == 0 && len(remove) == 0 {
		return fmt.Errorf("nothing to do: pass --add and/or --remove")
	}

	svc, err := newService(c)
	if err != nil {
		return err
	}
	defer svc.Close()

	result, err := svc.UpdateSynonyms([]core.SynonymUpdate{
		{Code: code, Add: add, Remove: remove},
	})
	if err != nil {
		return err
	}
	if len(result.InvalidCodes) > 0 {
		return fmt.Errorf("unknown occupation code: %s", strings.Join(result.InvalidCodes, ", "))
	}

	if result.RequiresReindex && c.Bool("reindex") {
		reindexed, err := svc.Reindex(context.Background())
		if err != nil {
			return err
		}
		return printJSON(reindexed)
	}
	return printJSON(result)
}

func reindexCommand(c *cli.Context) error {
	svc, err := newService(c)
	if err != nil {
		return err
	}
	defer svc.Close()

	result, err := svc.Reindex(context.Background())
	if err != nil {
		return err
	}
	return printJSON(result)
}

func watchCommand(c *cli.Context) error {
	svc, err := newService(c)
	if err != nil {
		return err
	}
	defer svc.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if _, err := svc.Bootstrap(ctx); err != nil {
		return fmt.Errorf("building index: %w", err)
	}

	fmt.Fprintln(os.Stderr, "Watching dataset for changes. Ctrl-C to stop.")
	return svc.Watch(ctx)
}

func statsCommand(c *cli.Context) error {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return err
	}
	svc, err := ncosearch.NewService(cfg, ncosearch.WithProgress(os.Stderr))
	if err != nil {
		return err
	}
	defer svc.Close()

	if _, err := svc.Bootstrap(context.Background()); err != nil {
		return fmt.Errorf("building index: %w", err)
	}

	out := struct {
		Index  search.Stats       `json:"index"`
		Events *search.EventStats `json:"events,omitempty"`
	}{Index: svc.Stats()}

	if cfg.EventLog != "" {
		f, err := os.Open(cfg.EventLog)
		if err == nil {
			events := search.CollectEventStats(f)
			f.Close()
			out.Events = &events
		}
	}
	return printJSON(out)
}
