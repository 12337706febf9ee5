// Package orchestrator wires configuration, helper execution, metrics and
// output together for one batch run.
package orchestrator

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/randomizedcoder/show-runtime/internal/batch"
	"github.com/randomizedcoder/show-runtime/internal/config"
	"github.com/randomizedcoder/show-runtime/internal/logging"
	"github.com/randomizedcoder/show-runtime/internal/metrics"
	"github.com/randomizedcoder/show-runtime/internal/preflight"
	"github.com/randomizedcoder/show-runtime/internal/process"
	"github.com/randomizedcoder/show-runtime/internal/report"
	"github.com/randomizedcoder/show-runtime/internal/stats"
	"github.com/randomizedcoder/show-runtime/internal/task"
	"github.com/randomizedcoder/show-runtime/internal/tui"
)

var (
	// ErrPreflight is returned when a preflight check fails.
	ErrPreflight = errors.New("preflight checks failed (use -skip-preflight to override)")

	// ErrInterrupted is returned when a signal stopped the batch.
	ErrInterrupted = errors.New("interrupted")
)

// shutdownTimeout bounds the metrics server shutdown.
const shutdownTimeout = 5 * time.Second

// Options holds the process-level collaborators of a run.
type Options struct {
	Stdout  io.Writer
	Stderr  io.Writer
	Version string

	// Signals stop the batch when received. Nil means SIGINT and SIGTERM.
	Signals []os.Signal
}

// Orchestrator coordinates all components for one batch.
type Orchestrator struct {
	config *config.Config
	logger *slog.Logger
	opts   Options

	runID      string
	helperPath string

	recorder      *stats.Recorder
	metrics       *metrics.Collector
	metricsServer *metrics.Server
	dashboard     *tui.Dashboard

	startTime time.Time
}

// New creates a new Orchestrator with the given configuration.
func New(cfg *config.Config, logger *slog.Logger, opts Options) *Orchestrator {
	if logger == nil {
		logger = logging.Discard()
	}
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}
	if opts.Stderr == nil {
		opts.Stderr = os.Stderr
	}
	if len(opts.Signals) == 0 {
		opts.Signals = []os.Signal{os.Interrupt, syscall.SIGTERM}
	}

	runID := uuid.NewString()

	return &Orchestrator{
		config:     cfg,
		logger:     logger.With("run_id", runID),
		opts:       opts,
		runID:      runID,
		helperPath: cfg.HelperPath,
	}
}

// Run executes the batch for items and writes the report to stdout. It
// returns batch.ErrNoItems, batch.ErrNoValidResults, ErrPreflight or
// ErrInterrupted for the matching terminal conditions.
func (o *Orchestrator) Run(ctx context.Context, items []string) (*batch.Outcome, error) {
	if len(items) == 0 {
		return nil, batch.ErrNoItems
	}
	o.startTime = time.Now()

	concurrency := o.config.Concurrency(len(items))

	if !o.config.SkipPreflight {
		result := preflight.RunAll(concurrency, o.config.HelperPath)
		if !result.Passed || result.HasWarnings() || o.config.Verbose {
			preflight.PrintResults(o.opts.Stderr, result)
		}
		if !result.Passed {
			return nil, ErrPreflight
		}
		o.helperPath = result.HelperPath
	}

	o.logger.Info("run_starting",
		"version", o.opts.Version,
		"items", len(items),
		"concurrency", concurrency,
		"timeout", o.config.Timeout.String(),
		"helper", o.helperPath,
	)

	o.recorder = stats.NewRecorder(len(items))

	if err := o.startMetrics(len(items), concurrency); err != nil {
		return nil, err
	}
	defer o.stopMetrics()

	builder := process.NewHelperRunner(&process.HelperConfig{BinaryPath: o.helperPath})

	// Diagnostics wait until the dashboard has released the terminal.
	var diag io.Writer = o.opts.Stderr
	var held *bytes.Buffer
	if o.config.TUIEnabled {
		held = &bytes.Buffer{}
		diag = held
		o.startDashboard(len(items), concurrency, builder.Name())
	}

	runner := task.NewRunner(task.Config{
		Builder:     builder,
		Logger:      o.logger,
		Diagnostics: diag,
		Timeout:     o.config.Timeout,
	})

	agg := batch.New(batch.Config{
		Runner:   runner,
		Parallel: o.config.Parallel,
		Logger:   o.logger,
		Callbacks: batch.Callbacks{
			OnTaskStart: o.onTaskStart,
			OnTaskDone:  o.onTaskDone,
		},
	})

	sigCtx, stop := signal.NotifyContext(ctx, o.opts.Signals...)
	defer stop()

	outcome, err := agg.Run(sigCtx, items)
	interrupted := sigCtx.Err() != nil && ctx.Err() == nil
	stop()

	if o.dashboard != nil {
		if derr := o.dashboard.Stop(); derr != nil {
			o.logger.Warn("dashboard_error", "error", derr)
		}
	}
	if held != nil {
		o.opts.Stderr.Write(held.Bytes())
	}

	elapsed := time.Since(o.startTime)
	if o.metrics != nil {
		o.metrics.BatchFinished(elapsed)
	}

	o.logger.Info("run_complete",
		"elapsed", elapsed.String(),
		"interrupted", interrupted,
	)

	if o.config.Summary {
		o.writeSummary()
	}

	switch {
	case interrupted:
		return outcome, ErrInterrupted
	case ctx.Err() != nil:
		return outcome, ctx.Err()
	case err != nil:
		return outcome, err
	}

	if err := report.WriteReport(o.opts.Stdout, outcome); err != nil {
		return outcome, fmt.Errorf("writing report: %w", err)
	}
	return outcome, nil
}

// startMetrics creates the collector when any metrics output is configured
// and starts the HTTP endpoint.
func (o *Orchestrator) startMetrics(items, concurrency int) error {
	if o.config.MetricsAddr == "" && o.config.MetricsFile == "" {
		return nil
	}

	o.metrics = metrics.NewCollector(metrics.CollectorConfig{
		Version:           o.opts.Version,
		RunID:             o.runID,
		Items:             items,
		Parallel:          concurrency,
		Timeout:           o.config.Timeout,
		RuntimeCollectors: o.config.MetricsAddr != "",
	})

	if o.config.MetricsAddr == "" {
		return nil
	}

	o.metricsServer = metrics.NewServer(o.config.MetricsAddr, o.metrics.Registry(), o.logger)
	if err := o.metricsServer.Start(); err != nil {
		o.metricsServer = nil
		return fmt.Errorf("failed to start metrics server: %w", err)
	}
	return nil
}

// stopMetrics writes the textfile and shuts the endpoint down.
func (o *Orchestrator) stopMetrics() {
	if o.metrics != nil && o.config.MetricsFile != "" {
		if err := metrics.WriteTextfile(o.config.MetricsFile, o.metrics.Registry()); err != nil {
			o.logger.Warn("metrics_file_error", "path", o.config.MetricsFile, "error", err)
		} else {
			o.logger.Debug("metrics_file_written", "path", o.config.MetricsFile)
		}
	}

	if o.metricsServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := o.metricsServer.Shutdown(ctx); err != nil {
			o.logger.Warn("metrics_server_shutdown_error", "error", err)
		}
	}
}

func (o *Orchestrator) startDashboard(items, concurrency int, helperName string) {
	model := tui.New(tui.Config{
		Total:       items,
		Parallel:    concurrency,
		HelperName:  helperName,
		MetricsAddr: o.metricsAddrForDisplay(),
		RunID:       o.runID,
		StatsSource: o.recorder,
	})
	o.dashboard = tui.NewDashboard(model, o.opts.Stderr)
	o.dashboard.Start()
}

func (o *Orchestrator) metricsAddrForDisplay() string {
	if o.metricsServer != nil {
		return o.metricsServer.Addr()
	}
	return ""
}

func (o *Orchestrator) writeSummary() {
	err := report.WriteSummary(o.opts.Stderr, o.recorder.Snapshot(), report.SummaryConfig{
		RunID:       o.runID,
		Helper:      o.helperPath,
		MetricsAddr: o.metricsAddrForDisplay(),
		MetricsFile: o.config.MetricsFile,
	})
	if err != nil {
		o.logger.Warn("summary_write_error", "error", err)
	}
}

// Callback handlers

func (o *Orchestrator) onTaskStart(index int, item string) {
	o.recorder.TaskStarted()
	if o.metrics != nil {
		o.metrics.TaskStarted()
	}
	if o.dashboard != nil {
		o.dashboard.TaskStarted(index, item)
	}
}

func (o *Orchestrator) onTaskDone(res task.Result) {
	o.recorder.TaskDone(res)
	if o.metrics != nil {
		o.metrics.TaskDone(res)
	}
	if o.dashboard != nil {
		o.dashboard.TaskDone(res)
	}
}

// RunID returns the identifier attached to this run's logs and metrics.
func (o *Orchestrator) RunID() string {
	return o.runID
}

// Metrics returns the metrics collector, or nil when metrics are disabled.
func (o *Orchestrator) Metrics() *metrics.Collector {
	return o.metrics
}
