// Package main is the command-line entry point: it analyzes one
// publication and prints or exports the result.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"slices"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"newsletter-analytics/internal/app/service"
	"newsletter-analytics/internal/config"
	"newsletter-analytics/internal/domain"
	"newsletter-analytics/internal/extract"
	"newsletter-analytics/internal/infra/provider/registry"
	"newsletter-analytics/internal/logger"
	"newsletter-analytics/internal/report"
	"newsletter-analytics/internal/transport/httpserver/dto"
	"newsletter-analytics/pkg/locker"
)

// Exit codes.
const (
	exitNoPosts            = 1
	exitInvalidPublication = 2
)

var formats = []string{"text", "json", "yaml", "xlsx"}

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:      "analyze",
		Usage:     "engagement analytics for a Substack publication",
		ArgsUsage: "<publication name, domain or URL>",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "limit", Aliases: []string{"n"}, Usage: "analyze at most `N` feed items (0 = configured default)"},
			&cli.StringFlag{Name: "format", Aliases: []string{"f"}, Value: "text", Usage: "output format: text, json, yaml or xlsx"},
			&cli.StringFlag{Name: "output-dir", Aliases: []string{"o"}, Usage: "directory for xlsx reports (default: report.output_dir)"},
			&cli.IntFlag{Name: "workers", Aliases: []string{"w"}, Usage: "concurrent page fetches (default: analysis.workers)"},
			&cli.DurationFlag{Name: "delay", Usage: "minimum spacing between page fetches (default: analysis.request_delay)"},
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, EnvVars: []string{"ANALYTICS_CONFIG"}, Usage: "path to config.yaml"},
			&cli.BoolFlag{Name: "verbose", Aliases: []string{"v"}, Usage: "log progress to stderr"},
		},
		Action: analyze,
	}
}

func analyze(c *cli.Context) error {
	input := c.Args().First()
	if input == "" {
		return cli.Exit("a publication name, domain or URL is required", exitInvalidPublication)
	}

	format := c.String("format")
	if !slices.Contains(formats, format) {
		return cli.Exit(fmt.Sprintf("unknown format %q (want one of %v)", format, formats), exitInvalidPublication)
	}

	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	applyFlags(c, cfg)

	level := "warn"
	if c.Bool("verbose") {
		level = "debug"
	}
	log, err := logger.New(
		logger.Config{Level: level, Format: "console", Output: "stderr"},
		logger.SentryConfig{
			Enabled:     cfg.Sentry.Enabled,
			DSN:         cfg.Sentry.DSN,
			Environment: cfg.Sentry.Environment,
			SampleRate:  cfg.Sentry.SampleRate,
		},
	)
	if err != nil {
		return fmt.Errorf("initializing logger: %w", err)
	}
	defer func() { _ = log.Close() }()

	clients := registry.NewClients(cfg.Provider, nil, 0, log.Logger)
	svc := service.NewAnalysisService(
		service.Sources{
			Feed:        clients.Feed,
			Pages:       clients.Pages,
			HomePages:   clients.HomePages,
			Subscribers: clients.Subscribers,
		},
		extract.NewExtractor(log.Logger),
		nil,
		locker.NewLocalLocker(),
		service.AnalysisConfig{
			Workers:      cfg.Analysis.Workers,
			RequestDelay: cfg.Analysis.RequestDelay,
			DefaultLimit: cfg.Analysis.DefaultLimit,
			MaxLimit:     cfg.Analysis.MaxLimit,
			TopN:         cfg.Analysis.TopN,
			LockTTL:      cfg.Analysis.LockTTL,
		},
		log.Logger,
	)

	ctx := c.Context
	if cfg.Analysis.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Analysis.Timeout)
		defer cancel()
	}

	analysis, err := svc.Analyze(ctx, input, c.Int("limit"))
	switch {
	case errors.Is(err, domain.ErrInvalidPublication):
		return cli.Exit(err.Error(), exitInvalidPublication)
	case errors.Is(err, domain.ErrNoPosts):
		return cli.Exit(err.Error(), exitNoPosts)
	case err != nil:
		return err
	}

	out := c.App.Writer
	switch format {
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(dto.FromAnalysis(analysis, true, true))
	case "yaml":
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		if err := enc.Encode(dto.FromAnalysis(analysis, true, true)); err != nil {
			return err
		}
		return enc.Close()
	case "xlsx":
		if err := report.WriteSummary(out, analysis); err != nil {
			return err
		}
		path, err := report.NewXLSXWriter(cfg.Report.OutputDir, log.Logger).WriteReport(ctx, analysis)
		if err != nil {
			return fmt.Errorf("exporting report: %w", err)
		}
		log.Debug("report exported", zap.String("path", path))
		_, err = fmt.Fprintf(out, "\nReport saved to %s\n", path)
		return err
	default:
		return report.WriteSummary(out, analysis)
	}
}

// applyFlags overrides config values with flags given on the command line.
func applyFlags(c *cli.Context, cfg *config.Config) {
	if c.IsSet("workers") && c.Int("workers") > 0 {
		cfg.Analysis.Workers = c.Int("workers")
	}
	if c.IsSet("delay") && c.Duration("delay") >= 0 {
		cfg.Analysis.RequestDelay = c.Duration("delay")
	}
	if dir := c.String("output-dir"); dir != "" {
		cfg.Report.OutputDir = dir
	}
}
