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
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/poiesic/simcheck"
	"github.com/poiesic/simcheck/ai"
	"github.com/poiesic/simcheck/core"
	"github.com/poiesic/simcheck/detect"
	"github.com/poiesic/simcheck/extract"
	"github.com/poiesic/simcheck/ingest"
	"github.com/poiesic/simcheck/report"
	"github.com/poiesic/simcheck/websearch/serper"
)

var detectorFlags = []cli.Flag{
	&cli.StringFlag{
		Name:    "db",
		Aliases: []string{"d"},
		Usage:   "Path to the corpus database directory (omit for in-memory)",
	},
	&cli.StringFlag{
		Name:  "embedding-host",
		Usage: "Embedding service host URL",
		Value: "http://localhost:11434/v1",
	},
	&cli.StringFlag{
		Name:  "embedding-model",
		Usage: "Embedding model name",
		Value: "embeddinggemma",
	},
}

func main() {
	app := &cli.App{
		Name:  "simcheck",
		Usage: "Semantic plagiarism detection against web search and a local corpus",
		Flags: []cli.Flag{
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
				Name:      "detect",
				Usage:     "Analyze a document for plagiarized segments",
				ArgsUsage: "FILE",
				Action:    detectCommand,
				Flags: append([]cli.Flag{
					&cli.Float64Flag{
						Name:    "threshold",
						Aliases: []string{"t"},
						Usage:   "Similarity threshold above which a segment is suspect",
						Value:   detect.DefaultThreshold,
					},
					&cli.StringFlag{
						Name:    "serper-key",
						Usage:   "serper.dev API key enabling web search",
						EnvVars: []string{"SERPER_API_KEY"},
					},
					&cli.BoolFlag{
						Name:  "corpus",
						Usage: "Compare against the local corpus",
						Value: true,
					},
					&cli.BoolFlag{
						Name:  "add-to-corpus",
						Usage: "Add the document to the corpus after analysis",
					},
					&cli.StringFlag{
						Name:  "source-id",
						Usage: "Source identifier used with --add-to-corpus (defaults to the file name)",
					},
					&cli.StringFlag{
						Name:    "csv",
						Aliases: []string{"o"},
						Usage:   "Write the per-segment report to a CSV file",
					},
				}, detectorFlags...),
			},
			{
				Name:  "corpus",
				Usage: "Manage the local corpus of known documents",
				Subcommands: []*cli.Command{
					{
						Name:      "build",
						Usage:     "Ingest documents into the corpus",
						ArgsUsage: "FILE...",
						Action:    corpusBuildCommand,
						Flags: append([]cli.Flag{
							&cli.IntFlag{
								Name:  "pool-size",
								Usage: "Number of documents ingested concurrently",
								Value: 4,
							},
						}, detectorFlags...),
					},
					{
						Name:   "info",
						Usage:  "Show per-source segment counts",
						Action: corpusInfoCommand,
						Flags:  detectorFlags,
					},
					{
						Name:   "clear",
						Usage:  "Remove every corpus entry",
						Action: corpusClearCommand,
						Flags:  detectorFlags,
					},
					{
						Name:      "save",
						Usage:     "Export the corpus to a portable JSON snapshot",
						ArgsUsage: "SNAPSHOT",
						Action:    corpusSaveCommand,
						Flags:     detectorFlags,
					},
					{
						Name:      "load",
						Usage:     "Replace the corpus with a JSON snapshot",
						ArgsUsage: "SNAPSHOT",
						Action:    corpusLoadCommand,
						Flags:     detectorFlags,
					},
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

// newDetector builds a detector from the shared CLI flags.
func newDetector(c *cli.Context, extra ...simcheck.DetectorOption) (*simcheck.Detector, error) {
	opts := []simcheck.DetectorOption{
		simcheck.WithAIConfig(ai.NewConfig(
			ai.WithHost(c.String("embedding-host")),
			ai.WithModel(c.String("embedding-model")),
		)),
	}
	if dbPath := c.String("db"); dbPath != "" {
		opts = append(opts, simcheck.WithDataPath(dbPath))
	}
	return simcheck.NewDetector(append(opts, extra...)...)
}

func detectCommand(c *cli.Context) error {
	if c.NArg() != 1 {
		return fmt.Errorf("expected exactly one document file")
	}
	path := c.Args().First()

	detectorOpts := []simcheck.DetectorOption{
		simcheck.WithThreshold(c.Float64("threshold")),
	}
	useSearch := false
	if key := c.String("serper-key"); key != "" {
		detectorOpts = append(detectorOpts, simcheck.WithSearcher(&serper.Search{APIKey: key}))
		useSearch = true
	}

	detector, err := newDetector(c, detectorOpts...)
	if err != nil {
		return err
	}
	defer detector.Close()

	rep, err := detector.DetectFile(c.Context, path, detect.Options{
		UseSearch:   useSearch,
		UseCorpus:   c.Bool("corpus"),
		AddToCorpus: c.Bool("add-to-corpus"),
		SourceID:    c.String("source-id"),
	})
	if err != nil {
		return fmt.Errorf("detection failed: %w", err)
	}

	printReport(path, rep)

	if csvPath := c.String("csv"); csvPath != "" {
		if err := report.SaveCSV(csvPath, rep); err != nil {
			return fmt.Errorf("writing CSV report: %w", err)
		}
		fmt.Printf("Report written to %s\n", csvPath)
	}
	return nil
}

func printReport(path string, rep *core.Report) {
	fmt.Printf("Document: %s\n", filepath.Base(path))
	fmt.Printf("Segments: %d (suspect %d, original %d)\n",
		rep.TotalSegments, rep.SuspectSegments, rep.OriginalSegments)
	fmt.Printf("Suspect: %.2f%%\n", rep.SuspectPercentage)
	fmt.Printf("Average similarity: %.4f (threshold %.2f)\n", rep.AvgSimilarity, rep.Threshold)

	for _, result := range rep.Segments {
		if result.BestMatch == nil {
			continue
		}
		marker := " "
		if result.Label == core.LabelSuspect {
			marker = "!"
		}
		location := result.BestMatch.URL
		if location == "" {
			location = result.BestMatch.SourceID
		}
		fmt.Printf("%s segment %d: %.4f %s\n", marker, result.Segment.ID, result.Similarity, location)
	}
}

func corpusBuildCommand(c *cli.Context) error {
	if c.NArg() == 0 {
		return fmt.Errorf("expected at least one document file")
	}

	detector, err := newDetector(c)
	if err != nil {
		return err
	}
	defer detector.Close()

	documents := make([]ingest.Document, 0, c.NArg())
	for _, path := range c.Args().Slice() {
		text, err := extract.File(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "skipping %s: %v\n", path, err)
			continue
		}
		documents = append(documents, ingest.Document{
			SourceID: filepath.Base(path),
			Text:     text,
		})
	}

	builder, err := detector.NewBuilder(ingest.WithPoolSize(c.Int("pool-size")))
	if err != nil {
		return err
	}
	defer builder.Release()

	failed := 0
	for _, result := range builder.Build(context.Background(), documents) {
		if result.Err != nil {
			failed++
			fmt.Fprintf(os.Stderr, "failed %s: %v\n", result.SourceID, result.Err)
			continue
		}
		fmt.Printf("added %s: %d segments\n", result.SourceID, result.Segments)
	}

	fmt.Printf("Corpus size: %d segments (%d documents failed)\n", detector.CorpusSize(), failed)
	if failed > 0 {
		return fmt.Errorf("%d of %d documents failed", failed, len(documents))
	}
	return nil
}

func corpusInfoCommand(c *cli.Context) error {
	detector, err := newDetector(c)
	if err != nil {
		return err
	}
	defer detector.Close()

	info := detector.CorpusInfo()
	if len(info) == 0 {
		fmt.Println("Corpus is empty")
		return nil
	}

	for _, source := range info {
		fmt.Printf("%6d  %s\n", source.Segments, source.SourceID)
	}
	fmt.Printf("Total: %d segments from %d sources\n", detector.CorpusSize(), len(info))
	return nil
}

func corpusClearCommand(c *cli.Context) error {
	detector, err := newDetector(c)
	if err != nil {
		return err
	}
	defer detector.Close()

	removed, err := detector.ClearCorpus(c.Context)
	if err != nil {
		return err
	}
	fmt.Printf("Removed %d segments\n", removed)
	return nil
}

func corpusSaveCommand(c *cli.Context) error {
	if c.NArg() != 1 {
		return fmt.Errorf("expected a snapshot file path")
	}

	detector, err := newDetector(c)
	if err != nil {
		return err
	}
	defer detector.Close()

	if err := detector.SaveCorpus(c.Args().First()); err != nil {
		return fmt.Errorf("saving snapshot: %w", err)
	}
	fmt.Printf("Saved %d segments to %s\n", detector.CorpusSize(), c.Args().First())
	return nil
}

func corpusLoadCommand(c *cli.Context) error {
	if c.NArg() != 1 {
		return fmt.Errorf("expected a snapshot file path")
	}

	detector, err := newDetector(c)
	if err != nil {
		return err
	}
	defer detector.Close()

	restored, err := detector.LoadCorpus(c.Context, c.Args().First())
	if err != nil {
		return fmt.Errorf("loading snapshot: %w", err)
	}
	fmt.Printf("Restored %d segments\n", restored)
	return nil
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

	// Configure slog with the specified level
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
