// Package stats records per-task outcomes of a batch and summarizes them.
//
// Runtime minutes and helper latency are tracked with T-Digests, so
// percentiles stay cheap for any batch size.
package stats

import (
	"sync"
	"time"

	"github.com/influxdata/tdigest"

	"github.com/randomizedcoder/show-runtime/internal/task"
)

// digestCompression gives ~100 centroids per digest.
const digestCompression = 100

// Summary is a point-in-time snapshot of a Recorder.
type Summary struct {
	Timestamp time.Time
	Elapsed   time.Duration

	// Task counts
	Total    int
	Started  int
	Finished int
	InFlight int
	Valid    int

	// PeakInFlight is the most helpers seen running at once.
	PeakInFlight int
	Invalid  int

	// ByReason counts invalid results by failure reason.
	ByReason map[task.Reason]int

	// ExitCodes counts helper exit codes of finished tasks that ran.
	ExitCodes map[int]int

	// Runtime distribution over valid results, in minutes.
	RuntimeMin  int
	RuntimeMax  int
	RuntimeMean float64
	RuntimeP50  float64
	RuntimeP90  float64
	RuntimeP99  float64

	// Helper latency over all finished tasks.
	LatencyMin time.Duration
	LatencyMax time.Duration
	LatencyP50 time.Duration
	LatencyP95 time.Duration
	LatencyP99 time.Duration
}

// Done reports whether every task has finished.
func (s Summary) Done() bool {
	return s.Total > 0 && s.Finished >= s.Total
}

// Recorder accumulates task outcomes.
//
// Thread-safe: all methods can be called concurrently.
type Recorder struct {
	mu    sync.Mutex
	start time.Time
	total int

	started  int
	finished int
	valid    int
	peak     int

	byReason  map[task.Reason]int
	exitCodes map[int]int

	runtimeDigest *tdigest.TDigest
	runtimeSum    int64
	runtimeMin    int
	runtimeMax    int

	latencyDigest *tdigest.TDigest
	latencyMin    time.Duration
	latencyMax    time.Duration
}

// NewRecorder creates a Recorder for a batch of total tasks.
func NewRecorder(total int) *Recorder {
	return &Recorder{
		start:         time.Now(),
		total:         total,
		byReason:      make(map[task.Reason]int),
		exitCodes:     make(map[int]int),
		runtimeDigest: tdigest.NewWithCompression(digestCompression),
		latencyDigest: tdigest.NewWithCompression(digestCompression),
	}
}

// TaskStarted records a task entering the running state.
func (r *Recorder) TaskStarted() {
	r.mu.Lock()
	r.started++
	r.peak = max(r.peak, r.started-r.finished)
	r.mu.Unlock()
}

// TaskDone records a finished task.
func (r *Recorder) TaskDone(res task.Result) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.finished++

	// -1 marks a helper that never ran.
	if res.ExitCode >= 0 {
		r.exitCodes[res.ExitCode]++
	}

	if res.Duration > 0 {
		r.latencyDigest.Add(float64(res.Duration.Nanoseconds()), 1)
		if r.latencyMin == 0 || res.Duration < r.latencyMin {
			r.latencyMin = res.Duration
		}
		if res.Duration > r.latencyMax {
			r.latencyMax = res.Duration
		}
	}

	if task.StateOf(res) == task.StateFailed {
		r.byReason[res.Reason]++
		return
	}

	if r.valid == 0 || res.Minutes < r.runtimeMin {
		r.runtimeMin = res.Minutes
	}
	if r.valid == 0 || res.Minutes > r.runtimeMax {
		r.runtimeMax = res.Minutes
	}
	r.valid++
	r.runtimeSum += int64(res.Minutes)
	r.runtimeDigest.Add(float64(res.Minutes), 1)
}

// Snapshot returns the current summary.
func (r *Recorder) Snapshot() Summary {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	s := Summary{
		Timestamp: now,
		Elapsed:   now.Sub(r.start),
		Total:     r.total,
		Started:   r.started,
		Finished:  r.finished,
		InFlight:  max(r.started-r.finished, 0),
		Valid:     r.valid,

		PeakInFlight: r.peak,
		Invalid:   r.finished - r.valid,
		ByReason:  make(map[task.Reason]int, len(r.byReason)),
		ExitCodes: make(map[int]int, len(r.exitCodes)),
	}
	for k, v := range r.byReason {
		s.ByReason[k] = v
	}
	for k, v := range r.exitCodes {
		s.ExitCodes[k] = v
	}

	if r.valid > 0 {
		s.RuntimeMin = r.runtimeMin
		s.RuntimeMax = r.runtimeMax
		s.RuntimeMean = float64(r.runtimeSum) / float64(r.valid)
		s.RuntimeP50 = r.runtimeDigest.Quantile(0.50)
		s.RuntimeP90 = r.runtimeDigest.Quantile(0.90)
		s.RuntimeP99 = r.runtimeDigest.Quantile(0.99)
	}

	if r.latencyMax > 0 {
		s.LatencyMin = r.latencyMin
		s.LatencyMax = r.latencyMax
		s.LatencyP50 = time.Duration(r.latencyDigest.Quantile(0.50))
		s.LatencyP95 = time.Duration(r.latencyDigest.Quantile(0.95))
		s.LatencyP99 = time.Duration(r.latencyDigest.Quantile(0.99))
	}

	return s
}
