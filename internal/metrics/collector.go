// Package metrics provides Prometheus metrics for show-runtime.
//
// Metrics live on a registry owned by the Collector, exposed over HTTP by
// Server and optionally written to a node_exporter textfile at exit.
package metrics

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/randomizedcoder/show-runtime/internal/task"
)

const namespace = "show_runtime"

// CollectorConfig holds configuration for the collector.
type CollectorConfig struct {
	Version  string
	RunID    string
	Items    int
	Parallel int
	Timeout  time.Duration

	// RuntimeCollectors adds the Go runtime and process collectors.
	RuntimeCollectors bool
}

// Collector manages all Prometheus metrics for one batch.
type Collector struct {
	registry *prometheus.Registry

	info            *prometheus.GaugeVec
	items           prometheus.Gauge
	parallelLimit   prometheus.Gauge
	taskTimeout     prometheus.Gauge
	tasksInFlight   prometheus.Gauge
	peakInFlight    prometheus.Gauge
	taskResults     *prometheus.CounterVec
	helperExits     *prometheus.CounterVec
	helperExitCodes *prometheus.CounterVec
	helperDuration  prometheus.Histogram
	runtimeMinutes  prometheus.Histogram
	batchDuration   prometheus.Gauge

	mu        sync.Mutex
	startTime time.Time
	inFlight  int
	peak      int
}

// NewCollector creates a collector on a new registry.
func NewCollector(cfg CollectorConfig) *Collector {
	c := &Collector{
		registry:  prometheus.NewRegistry(),
		startTime: time.Now(),

		info: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "info",
				Help:      "Information about the run (value always 1)",
			},
			[]string{"version", "run_id"},
		),
		items: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "items",
			Help:      "Number of shows in the batch",
		}),
		parallelLimit: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "parallel_limit",
			Help:      "Maximum concurrent helper processes",
		}),
		taskTimeout: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "task_timeout_seconds",
			Help:      "Per-task helper timeout (0 = none)",
		}),
		tasksInFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "tasks_in_flight",
			Help:      "Helper processes currently running",
		}),
		peakInFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "tasks_in_flight_peak",
			Help:      "Most helper processes running at once",
		}),
		taskResults: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "task_results_total",
				Help:      "Finished tasks by outcome",
			},
			[]string{"reason"},
		),
		helperExits: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "helper_exits_total",
				Help:      "Helper exits by category (success, error, signal)",
			},
			[]string{"category"},
		),
		helperExitCodes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "helper_exit_codes_total",
				Help:      "Helper exits by exit code",
			},
			[]string{"code"},
		),
		helperDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "helper_duration_seconds",
			Help:      "Wall time of each helper run",
			Buckets:   prometheus.ExponentialBuckets(0.01, 2, 14),
		}),
		runtimeMinutes: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "runtime_minutes",
			Help:      "Total runtime of each valid show, in minutes",
			Buckets:   []float64{30, 60, 120, 240, 480, 960, 1920, 3840, 7680},
		}),
		batchDuration: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "batch_duration_seconds",
			Help:      "Wall time of the whole batch",
		}),
	}

	c.registry.MustRegister(
		c.info,
		c.items,
		c.parallelLimit,
		c.taskTimeout,
		c.tasksInFlight,
		c.peakInFlight,
		c.taskResults,
		c.helperExits,
		c.helperExitCodes,
		c.helperDuration,
		c.runtimeMinutes,
		c.batchDuration,
	)

	if cfg.RuntimeCollectors {
		c.registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}

	c.info.WithLabelValues(cfg.Version, cfg.RunID).Set(1)
	c.items.Set(float64(cfg.Items))
	c.parallelLimit.Set(float64(cfg.Parallel))
	c.taskTimeout.Set(cfg.Timeout.Seconds())

	// Pre-create every outcome so absent reasons export as 0.
	c.taskResults.WithLabelValues(task.ReasonNone.String())
	for _, reason := range task.Reasons {
		c.taskResults.WithLabelValues(reason.String())
	}

	return c
}

// Registry returns the collector's registry.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// TaskStarted records a helper process starting.
func (c *Collector) TaskStarted() {
	c.tasksInFlight.Inc()

	c.mu.Lock()
	c.inFlight++
	if c.inFlight > c.peak {
		c.peak = c.inFlight
		c.peakInFlight.Set(float64(c.peak))
	}
	c.mu.Unlock()
}

// TaskDone records a finished task.
func (c *Collector) TaskDone(res task.Result) {
	c.tasksInFlight.Dec()
	c.taskResults.WithLabelValues(res.Reason.String()).Inc()

	if res.Duration > 0 {
		c.helperDuration.Observe(res.Duration.Seconds())
	}

	// -1 marks a helper that never ran.
	if res.ExitCode >= 0 {
		c.helperExits.WithLabelValues(exitCategory(res.ExitCode)).Inc()
		c.helperExitCodes.WithLabelValues(strconv.Itoa(res.ExitCode)).Inc()
	}

	if res.Valid() {
		c.runtimeMinutes.Observe(float64(res.Minutes))
	}

	c.mu.Lock()
	c.inFlight--
	c.mu.Unlock()
}

// BatchFinished records the batch wall time.
func (c *Collector) BatchFinished(elapsed time.Duration) {
	c.batchDuration.Set(elapsed.Seconds())
}

func exitCategory(code int) string {
	switch {
	case code == 0:
		return "success"
	case code > 128:
		return "signal"
	default:
		return "error"
	}
}
