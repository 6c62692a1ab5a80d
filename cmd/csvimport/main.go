// Command csvimport loads a CSV export into HubSpot from the terminal:
// parse, map columns to CRM properties, drop duplicates, then run the
// concurrent batch import and print the partitioned result line.
//
// Design goals:
//   - Keep main() tiny and delegate to run() for testability.
//   - Inject side effects (file opening, record creation, output) via Deps
//     so tests run hermetically against fakes.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/joho/godotenv"

	"crmconsole/internal/config"
	"crmconsole/internal/csvsource"
	"crmconsole/internal/hubspot"
	"crmconsole/internal/importer"
	"crmconsole/internal/rowmap"
)

// Deps holds injectable dependencies so run() is fully testable. Each field
// is a boundary that would otherwise be hard-coded in main(); tests pass
// fakes, production uses defaultDeps().
type Deps struct {
	// Open opens the input CSV for reading.
	Open func(path string) (io.ReadCloser, error)

	// NewRunner builds the import runner for the given object type.
	NewRunner func(cfg *config.Config, obj hubspot.ObjectType) *importer.Runner

	// Out receives the summary line and progress output.
	Out io.Writer
}

// defaultDeps wires production implementations.
func defaultDeps() Deps {
	return Deps{
		Open: func(path string) (io.ReadCloser, error) { return os.Open(path) },
		NewRunner: func(cfg *config.Config, obj hubspot.ObjectType) *importer.Runner {
			client := hubspot.New(hubspot.Config{Token: cfg.HubSpotToken})
			return &importer.Runner{
				BatchCreate: func(ctx context.Context, inputs []map[string]string) ([]string, error) {
					results, err := client.BatchCreate(ctx, obj, inputs)
					if err != nil {
						return nil, err
					}
					ids := make([]string, len(results))
					for i, r := range results {
						ids[i] = r.ID
					}
					return ids, nil
				},
				CreateOne: func(ctx context.Context, props map[string]string) (string, error) {
					created, err := client.Create(ctx, obj, props)
					if err != nil {
						return "", err
					}
					return created.ID, nil
				},
				Concurrency: cfg.Concurrency,
				BatchSize:   cfg.BatchSize,
				Pause:       cfg.FallbackPause,
				Job:         "csvimport",
			}
		},
		Out: os.Stdout,
	}
}

// run parses the CSV at path, maps and dedups its rows, imports them, and
// writes the summary. It returns an error only for unusable input or
// missing credentials; per-row failures are reported in the summary.
func run(ctx context.Context, cfg *config.Config, path string, objectType string, deps Deps) error {
	if cfg.HubSpotToken == "" {
		return fmt.Errorf("HubSpot access token is required")
	}
	obj := hubspot.ObjectType(objectType)
	switch obj {
	case hubspot.Contacts, hubspot.Companies, hubspot.Deals:
	default:
		return fmt.Errorf("unknown object type %q", objectType)
	}

	f, err := deps.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	parsed, err := csvsource.Parse(f)
	if err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	if parsed.Skipped > 0 {
		log.Printf("skipped %d malformed line(s)", parsed.Skipped)
	}

	rows, keptIdx, dropped := importer.DedupRows(parsed.Rows, cfg.DedupeColumn)
	if dropped > 0 {
		log.Printf("dropped %d duplicate row(s) on column %q", dropped, cfg.DedupeColumn)
	}

	mapper := rowmap.NewMapper(rowmap.DefaultColumns)
	items := make([]map[string]string, len(rows))
	for i, row := range rows {
		items[i] = mapper.Map(parsed.Headers, row)
	}

	runner := deps.NewRunner(cfg, obj)
	runner.SourceIndex = keptIdx
	runner.OnProgress = func(s importer.Summary) {
		log.Printf("progress: %d/%d rows", s.Completed, s.Total)
	}

	summary := runner.Run(ctx, items)
	fmt.Fprintln(deps.Out, summary.Line())
	for _, w := range summary.Warnings {
		fmt.Fprintf(deps.Out, "row %d: %s\n", w.Row, w.Message)
	}
	for _, e := range summary.Errors {
		fmt.Fprintf(deps.Out, "row %d: %s\n", e.Row, e.Message)
	}
	return nil
}

func main() {
	_ = godotenv.Load()

	fs := flag.NewFlagSet("csvimport", flag.ExitOnError)
	path := fs.String("csv", "", "Path to the CSV file to import")
	objectType := fs.String("object_type", string(hubspot.Contacts), "CRM object type: contacts, companies or deals")
	cfg := config.LoadFromArgs(fs, os.Getenv, os.Args[1:])

	if *path == "" {
		fs.Usage()
		os.Exit(2)
	}
	if err := run(context.Background(), cfg, *path, *objectType, defaultDeps()); err != nil {
		log.Fatal(err)
	}
}
