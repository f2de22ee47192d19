// Copyright 2026 Civita Labs
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
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/civita/caseflow"
	"github.com/civita/caseflow/agent"
	"github.com/civita/caseflow/ai"
	"github.com/civita/caseflow/indexing"
	"github.com/civita/caseflow/search"
	"github.com/civita/caseflow/tabular"
)

func main() {
	app := &cli.App{
		Name:  "caseflow",
		Usage: "Citizen service request management with semantic retrieval and resource assignment",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to YAML configuration file",
			},
			&cli.StringFlag{
				Name:    "db",
				Aliases: []string{"d"},
				Usage:   "Path to BadgerDB database directory",
			},
			&cli.StringFlag{
				Name:  "data",
				Usage: "Directory holding the exported CSV tables",
			},
			&cli.StringFlag{
				Name:  "embedding-host",
				Usage: "Embedding service host URL",
			},
			&cli.StringFlag{
				Name:  "embedding-model",
				Usage: "Embedding model name",
			},
			&cli.StringFlag{
				Name:  "oracle-host",
				Usage: "Decision service host URL",
			},
			&cli.StringFlag{
				Name:  "oracle-model",
				Usage: "Decision model name",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:   "load",
				Usage:  "Replace all reference tables from the CSV exports",
				Action: loadCommand,
			},
			{
				Name:   "reindex",
				Usage:  "Rebuild the semantic index from the loaded case table",
				Action: reindexCommand,
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "batch-size",
						Usage: "Number of chunks to embed in each batch",
						Value: 16,
					},
					&cli.IntFlag{
						Name:  "pool-size",
						Usage: "Number of concurrent embedding workers",
					},
				},
			},
			{
				Name:   "validate",
				Usage:  "Check the loaded tables for data quality issues",
				Action: validateCommand,
			},
			{
				Name:   "stats",
				Usage:  "Print table totals and the case status breakdown",
				Action: statsCommand,
			},
			{
				Name:      "search",
				Usage:     "Query the loaded cases",
				ArgsUsage: "QUERY",
				Action:    searchCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "mode",
						Usage: "Retrieval mode (exact_key, semantic, hybrid)",
						Value: string(search.ModeSemantic),
					},
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of hits",
						Value: 10,
					},
					&cli.StringSliceFlag{
						Name:  "filter",
						Usage: "Structured filter as field=value (hybrid mode, repeatable)",
					},
				},
			},
			{
				Name:      "suggest",
				Usage:     "Suggest query completions for a partial query",
				ArgsUsage: "PARTIAL",
				Action:    suggestCommand,
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of suggestions",
						Value: 5,
					},
				},
			},
			{
				Name:      "assign",
				Usage:     "Assign zone resources to the given case keys",
				ArgsUsage: "CASE_KEY [CASE_KEY...]",
				Action:    assignCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "zone",
						Usage: "Restrict assignment to active cases in this zone",
					},
				},
			},
			{
				Name:      "task",
				Usage:     "Hand a free-form task to the coordinator",
				ArgsUsage: "DESCRIPTION",
				Action:    taskCommand,
				Flags: []cli.Flag{
					&cli.StringSliceFlag{
						Name:  "key",
						Usage: "Case key parameter (repeatable)",
					},
					&cli.StringFlag{
						Name:  "zone",
						Usage: "Zone filter parameter",
					},
					&cli.StringFlag{
						Name:  "query",
						Usage: "Query text parameter",
					},
					&cli.StringFlag{
						Name:  "query-type",
						Usage: "Retrieval mode parameter (exact_key, semantic, hybrid)",
					},
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Result limit parameter",
					},
					&cli.StringFlag{
						Name:  "action",
						Usage: "Data management action (reload, rebuild_index, validate, statistics)",
					},
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

// openSystem merges the config file with command-line overrides and
// builds the full System. The caller owns the returned Close.
func openSystem(c *cli.Context, extra ...caseflow.SystemOption) (*caseflow.System, error) {
	cfg, err := loadFileConfig(c.String("config"))
	if err != nil {
		return nil, err
	}

	dbPath := override(c.String("db"), cfg.DB)
	dataDir := override(c.String("data"), cfg.Data.Dir)

	var sourceOpts []tabular.DirOption
	if cfg.Data.Cases != "" {
		sourceOpts = append(sourceOpts, tabular.WithCasesFile(cfg.Data.Cases))
	}
	if cfg.Data.Personnel != "" {
		sourceOpts = append(sourceOpts, tabular.WithPersonnelFile(cfg.Data.Personnel))
	}
	if cfg.Data.Vehicles != "" {
		sourceOpts = append(sourceOpts, tabular.WithVehiclesFile(cfg.Data.Vehicles))
	}
	if cfg.Data.Zones != "" {
		sourceOpts = append(sourceOpts, tabular.WithZonesFile(cfg.Data.Zones))
	}
	source := tabular.NewDirSource(dataDir, sourceOpts...)

	var aiOpts []ai.ConfigOption
	if host := override(c.String("embedding-host"), cfg.AI.EmbeddingHost); host != "" {
		aiOpts = append(aiOpts, ai.WithEmbeddingHost(host))
	}
	if model := override(c.String("embedding-model"), cfg.AI.EmbeddingModel); model != "" {
		aiOpts = append(aiOpts, ai.WithEmbeddingModel(model))
	}
	if host := override(c.String("oracle-host"), cfg.AI.OracleHost); host != "" {
		aiOpts = append(aiOpts, ai.WithOracleHost(host))
	}
	if model := override(c.String("oracle-model"), cfg.AI.OracleModel); model != "" {
		aiOpts = append(aiOpts, ai.WithOracleModel(model))
	}
	if cfg.AI.Temperature != 0 {
		aiOpts = append(aiOpts, ai.WithTemperature(cfg.AI.Temperature))
	}
	aiConfig := ai.NewConfig(aiOpts...)
	if err := aiConfig.Validate(); err != nil {
		return nil, fmt.Errorf("invalid AI configuration: %w", err)
	}

	opts := append([]caseflow.SystemOption{caseflow.WithAIConfig(aiConfig)}, extra...)
	return caseflow.New(dbPath, source, opts...)
}

// override prefers the command-line value over the config file value.
func override(flag, file string) string {
	if flag != "" {
		return flag
	}
	return file
}

func loadCommand(c *cli.Context) error {
	system, err := openSystem(c)
	if err != nil {
		return err
	}
	defer system.Close()

	result, err := system.Load(context.Background())
	if err != nil {
		return fmt.Errorf("load failed: %w", err)
	}

	fmt.Printf("Loaded %d cases, %d personnel, %d vehicles, %d zones\n",
		result.Counts.Cases, result.Counts.Personnel,
		result.Counts.Vehicles, result.Counts.Zones)
	fmt.Println("Semantic index is stale; run 'caseflow reindex' to rebuild it.")
	return nil
}

func reindexCommand(c *cli.Context) error {
	indexerOpts := []indexing.Option{indexing.WithBatchSize(c.Int("batch-size"))}
	if c.Int("pool-size") > 0 {
		indexerOpts = append(indexerOpts, indexing.WithPoolSize(c.Int("pool-size")))
	}

	system, err := openSystem(c, caseflow.WithIndexerOptions(indexerOpts...))
	if err != nil {
		return err
	}
	defer system.Close()

	entries, err := system.RebuildIndex(context.Background())
	if err != nil {
		return fmt.Errorf("reindex failed: %w", err)
	}

	fmt.Printf("Indexed %d chunks\n", entries)
	return nil
}

func validateCommand(c *cli.Context) error {
	system, err := openSystem(c)
	if err != nil {
		return err
	}
	defer system.Close()

	report, err := system.ValidateIntegrity(context.Background())
	if err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	fmt.Printf("Integrity score: %d/100\n", report.Score)
	for _, issue := range report.Issues {
		fmt.Printf("  - %s\n", issue)
	}
	return nil
}

func statsCommand(c *cli.Context) error {
	system, err := openSystem(c)
	if err != nil {
		return err
	}
	defer system.Close()

	stats, err := system.Statistics(context.Background())
	if err != nil {
		return fmt.Errorf("stats failed: %w", err)
	}

	fmt.Printf("Cases: %d  Personnel: %d  Vehicles: %d  Zones: %d\n",
		stats.Tables.Cases, stats.Tables.Personnel,
		stats.Tables.Vehicles, stats.Tables.Zones)
	for status, n := range stats.CasesByStatus {
		fmt.Printf("  %s: %d\n", status, n)
	}
	return nil
}

func searchCommand(c *cli.Context) error {
	if c.NArg() == 0 {
		return fmt.Errorf("search requires a query argument")
	}
	query := strings.Join(c.Args().Slice(), " ")

	filters, err := parseFilters(c.StringSlice("filter"))
	if err != nil {
		return err
	}

	system, err := openSystem(c)
	if err != nil {
		return err
	}
	defer system.Close()

	result, err := system.Retrieve(context.Background(), search.Request{
		Mode:    search.Mode(c.String("mode")),
		Query:   query,
		Filters: filters,
		Limit:   c.Int("limit"),
	})
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if result.Metadata.NotFound {
		fmt.Printf("No case with key %q\n", query)
		return nil
	}

	fmt.Printf("Found %d hits\n", result.TotalFound)
	for i, hit := range result.Hits {
		fmt.Printf("%d: %s [%0.3f] %s\n", i+1, hit.Case.CaseKey, hit.Score, hit.MatchedContent)
	}
	return nil
}

func suggestCommand(c *cli.Context) error {
	if c.NArg() == 0 {
		return fmt.Errorf("suggest requires a partial query argument")
	}
	partial := strings.Join(c.Args().Slice(), " ")

	system, err := openSystem(c)
	if err != nil {
		return err
	}
	defer system.Close()

	suggestions, err := system.Suggest(context.Background(), partial, c.Int("limit"))
	if err != nil {
		return fmt.Errorf("suggest failed: %w", err)
	}

	for _, s := range suggestions {
		fmt.Println(s)
	}
	return nil
}

func assignCommand(c *cli.Context) error {
	if c.NArg() == 0 {
		return fmt.Errorf("assign requires at least one case key")
	}

	system, err := openSystem(c)
	if err != nil {
		return err
	}
	defer system.Close()

	outcome, err := system.Assign(context.Background(), c.Args().Slice(), c.String("zone"))
	if err != nil {
		return fmt.Errorf("assignment failed: %w", err)
	}

	for _, a := range outcome.Assignments {
		fmt.Printf("%s: personnel=%v vehicles=%v hours=%.1f confidence=%.2f\n",
			a.CaseKey, a.Personnel, a.Vehicles, a.EstimatedHours, a.Confidence)
		fmt.Printf("  %s\n", a.Rationale)
	}
	if len(outcome.Unassigned) > 0 {
		fmt.Printf("Unassigned: %s\n", strings.Join(outcome.Unassigned, ", "))
	}
	if len(outcome.NotFound) > 0 {
		fmt.Printf("Not found in active set: %s\n", strings.Join(outcome.NotFound, ", "))
	}
	fmt.Printf("Assigned %d of %d requested\n", outcome.TotalAssigned, c.NArg())
	return nil
}

func taskCommand(c *cli.Context) error {
	if c.NArg() == 0 {
		return fmt.Errorf("task requires a description argument")
	}
	description := strings.Join(c.Args().Slice(), " ")

	system, err := openSystem(c)
	if err != nil {
		return err
	}
	defer system.Close()

	resp := system.Process(context.Background(), agent.TaskRequest{
		Description: description,
		Params: agent.TaskParams{
			CaseKeys:   c.StringSlice("key"),
			ZoneFilter: c.String("zone"),
			Query:      c.String("query"),
			QueryType:  c.String("query-type"),
			Limit:      c.Int("limit"),
			Action:     c.String("action"),
		},
	})

	out, err := json.MarshalIndent(resp, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

// parseFilters turns repeated field=value flags into a filter map.
func parseFilters(raw []string) (map[string]string, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	filters := make(map[string]string, len(raw))
	for _, f := range raw {
		field, value, ok := strings.Cut(f, "=")
		if !ok || field == "" {
			return nil, fmt.Errorf("invalid filter %q: expected field=value", f)
		}
		filters[field] = value
	}
	return filters, nil
}

func setupLogger(c *cli.Context) error {
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
