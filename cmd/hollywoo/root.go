package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"hollywoo/internal/config"
	"hollywoo/internal/database"
	"hollywoo/internal/logging"
	"hollywoo/internal/metrics"
	"hollywoo/internal/probe"
	"hollywoo/internal/scanner"
	"hollywoo/internal/tracing"
)

// app carries what every command needs once the configuration is loaded
type app struct {
	configPath string
	output     string
	logLevel   string

	cfg     *config.AppConfig
	log     *logging.Logger
	reg     *prometheus.Registry
	metrics *metrics.Metrics
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "hollywoo",
		Short:         "Index a video collection into a SQLite catalog",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup()
		},
	}

	root.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "config file (default: ./hollywoo.yaml or ~/.config/hollywoo/hollywoo.yaml)")
	root.PersistentFlags().StringVarP(&a.output, "output", "o", "yaml", "output format: yaml or json")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "override the configured log level")

	root.AddCommand(
		newScanCmd(a),
		newPurgeCmd(a),
		newFoldersCmd(a),
		newVideosCmd(a),
		newTagsCmd(a),
		newPeopleCmd(a),
		newProgramsCmd(a),
		newServeCmd(a),
	)
	return root
}

func (a *app) setup() error {
	if a.output != "yaml" && a.output != "json" {
		return fmt.Errorf("unknown output format %q", a.output)
	}

	cfg, err := config.Load(a.configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if a.logLevel != "" {
		cfg.Log.Level = a.logLevel
	}
	a.cfg = cfg
	a.log = logging.NewStderrLogger(logging.LogLevel(cfg.Log.Level), cfg.Log.Format)

	a.reg = prometheus.NewRegistry()
	a.reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	a.metrics = metrics.New(a.reg)
	return nil
}

// openDB opens the catalog, creating its directory on first use
func (a *app) openDB(ctx context.Context) (*database.DB, error) {
	path := a.cfg.Database.Path
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := database.Open(ctx, path,
		database.WithLogger(a.log.WithModule("database")),
		database.WithMetrics(a.metrics),
		database.WithBusyTimeout(a.cfg.Database.BusyTimeout),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return db, nil
}

func (a *app) newProber() probe.Prober {
	chain := probe.Chain{probe.NewFFProbe(a.cfg.Probe.FFProbePath, a.cfg.Probe.Timeout)}
	if a.cfg.Probe.ReadTags {
		chain = append(chain, probe.TagReader{})
	}
	return chain
}

func (a *app) newScanner(db *database.DB) *scanner.Scanner {
	sc := a.cfg.Scanner
	return scanner.New(db, a.newProber(), scanner.Config{
		MinSize:    sc.MinSize,
		Extensions: sc.Extensions,
		Workers:    sc.Workers,
		BatchSize:  sc.BatchSize,
		Reprobe:    scanner.ReprobePolicy(sc.Reprobe),
		ProbeRate:  sc.ProbeRate,
	}, a.log.WithModule("scanner"), a.metrics)
}

// startTracing installs the tracer provider when tracing is enabled. The
// returned function flushes it.
func (a *app) startTracing(ctx context.Context) (func(), error) {
	if !a.cfg.Tracing.Enabled {
		return func() {}, nil
	}

	tracer, err := tracing.NewTracer(ctx, tracing.ServiceName, tracing.Options{
		Endpoint: a.cfg.Tracing.OTLPEndpoint,
		Writer:   os.Stderr,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize tracing: %w", err)
	}

	return func() {
		if err := tracer.Shutdown(context.Background()); err != nil {
			logger := a.log.WithModule("tracing")
			logger.Warn().Err(err).Msg("Failed to flush traces")
		}
	}, nil
}
