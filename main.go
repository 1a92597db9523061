// house-dashboard serves an interactive price dashboard over the King County
// house sales dataset.
//
// Usage:
//
//	house-dashboard [serve]
//	house-dashboard export --dir ./output
//	house-dashboard snapshot
//	house-dashboard screenshot --url http://localhost:8050 --out dashboard.png
package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"house-dashboard/browser"
	"house-dashboard/config"
	"house-dashboard/export"
	"house-dashboard/loader"
	"house-dashboard/models"
	"house-dashboard/server"
	"house-dashboard/services"
	"house-dashboard/storage"
	"house-dashboard/utils"
)

var version = "dev"

// env is shared by all commands once Before has run.
type env struct {
	cfg    *config.Config
	logger *utils.Logger
}

func main() {
	e := &env{}

	app := &cli.App{
		Name:    "house-dashboard",
		Usage:   "Real-estate price dashboard for King County house sales",
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "dataset",
				Usage: "Dataset CSV location, https URL or local path (overrides DATASET_URL)",
			},
			&cli.StringFlag{
				Name:  "source",
				Usage: "Dataset source: csv or postgres (overrides DATASET_SOURCE)",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "Log level: debug, info, warn, error (overrides LOG_LEVEL)",
			},
		},
		Before: e.setup,
		Action: e.serve,
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Load the dataset and serve the dashboard",
				Flags:  []cli.Flag{&cli.StringFlag{Name: "addr", Usage: "Listen address (overrides HTTP_ADDR)"}},
				Action: e.serve,
			},
			{
				Name:   "export",
				Usage:  "Write the aggregate tables and default charts to a directory",
				Flags:  []cli.Flag{&cli.StringFlag{Name: "dir", Usage: "Output directory (overrides EXPORT_DIR)"}},
				Action: e.export,
			},
			{
				Name:   "snapshot",
				Usage:  "Load the CSV dataset and store it in PostgreSQL",
				Action: e.snapshot,
			},
			{
				Name:  "screenshot",
				Usage: "Capture a running dashboard as a PNG with headless Chrome",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "url", Value: "http://localhost:8050", Usage: "Dashboard URL"},
					&cli.StringFlag{Name: "out", Value: "dashboard.png", Usage: "Output file"},
				},
				Action: e.screenshot,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func (e *env) setup(c *cli.Context) error {
	e.cfg = config.Load()
	if v := c.String("dataset"); v != "" {
		e.cfg.DatasetURL = v
	}
	if v := c.String("source"); v != "" {
		e.cfg.DatasetSource = v
	}
	if v := c.String("log-level"); v != "" {
		e.cfg.LogLevel = v
	}
	e.logger = utils.NewLoggerTo(os.Stdout, os.Stderr, utils.ParseLevel(e.cfg.LogLevel))
	return nil
}

// loadDataset reads the dataset from the configured source. Any failure here
// is fatal to the command.
func (e *env) loadDataset(ctx context.Context) (*models.Dataset, error) {
	switch e.cfg.DatasetSource {
	case config.SourceCSV:
		return loader.New(e.cfg.FetchTimeout, e.logger).Load(ctx, e.cfg.DatasetURL)
	case config.SourcePostgres:
		var store storage.HouseReader
		store, err := storage.NewPostgresStore(e.cfg.DSN(), e.cfg.MaxRetries, e.logger)
		if err != nil {
			return nil, err
		}
		defer store.Close()

		houses, err := store.FetchAll()
		if err != nil {
			return nil, err
		}
		if len(houses) == 0 {
			return nil, errors.New("postgres snapshot is empty, run the snapshot command first")
		}
		e.logger.Info("[main] Loaded %d houses from PostgreSQL", len(houses))
		return models.NewDataset(houses), nil
	default:
		return nil, fmt.Errorf("unknown dataset source %q", e.cfg.DatasetSource)
	}
}

func (e *env) loadAndSummarize(ctx context.Context) (*models.Dataset, *models.Summary, error) {
	ds, err := e.loadDataset(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("load dataset: %w", err)
	}
	agg := services.NewAggregator(e.logger)
	summary, err := agg.Summarize(ds)
	if err != nil {
		return nil, nil, fmt.Errorf("aggregate: %w", err)
	}
	agg.Print(os.Stdout, summary)
	return ds, summary, nil
}

func (e *env) serve(c *cli.Context) error {
	if v := c.String("addr"); v != "" {
		e.cfg.HTTPAddr = v
	}
	e.logger.Info("=== House price dashboard %s starting ===", version)

	ds, summary, err := e.loadAndSummarize(c.Context)
	if err != nil {
		return err
	}
	return server.New(e.cfg, ds, summary, e.logger).StartWithGracefulShutdown()
}

func (e *env) export(c *cli.Context) error {
	dir := e.cfg.ExportDir
	if v := c.String("dir"); v != "" {
		dir = v
	}

	ds, summary, err := e.loadAndSummarize(c.Context)
	if err != nil {
		return err
	}
	written, err := export.New(dir, e.cfg.MaxConcurrency, e.logger).
		Run(summary, services.NewDispatcher(ds, e.logger))
	if err != nil {
		return err
	}
	fmt.Printf("  Done. %d files written to %s\n\n", len(written), dir)
	return nil
}

func (e *env) snapshot(c *cli.Context) error {
	ds, err := loader.New(e.cfg.FetchTimeout, e.logger).Load(c.Context, e.cfg.DatasetURL)
	if err != nil {
		return fmt.Errorf("load dataset: %w", err)
	}

	var store storage.HouseWriter
	store, err = storage.NewPostgresStore(e.cfg.DSN(), e.cfg.MaxRetries, e.logger)
	if err != nil {
		e.logger.Error("Make sure PostgreSQL is running: docker compose up -d")
		return err
	}
	defer store.Close()

	if err := store.Write(ds.Houses()); err != nil {
		return err
	}
	e.logger.Info("[main] Stored %d houses in PostgreSQL (table: houses)", ds.Len())
	return nil
}

func (e *env) screenshot(c *cli.Context) error {
	opts := browser.DefaultOptions()
	opts.ChromeBin = e.cfg.ChromeBin

	png, err := browser.Capture(c.Context, c.String("url"), opts, e.logger)
	if err != nil {
		return err
	}
	if err := os.WriteFile(c.String("out"), png, 0o644); err != nil {
		return fmt.Errorf("write screenshot: %w", err)
	}
	e.logger.Info("[main] Screenshot saved to %s (%d bytes)", c.String("out"), len(png))
	return nil
}
