// Package batch fans a list of items out to concurrent task runs and reduces
// the results to the shortest and longest runtime.
package batch

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/randomizedcoder/show-runtime/internal/logging"
	"github.com/randomizedcoder/show-runtime/internal/task"
)

var (
	// ErrNoItems is returned when the batch is started with no items.
	ErrNoItems = errors.New("no shows provided")

	// ErrNoValidResults is returned when every task ended invalid.
	ErrNoValidResults = errors.New("no valid data retrieved")
)

// TaskRunner runs one item. Implementations must be safe for concurrent use
// and must return a Result for every call.
type TaskRunner interface {
	Run(ctx context.Context, index int, item string) task.Result
}

// Callbacks are invoked from task goroutines, possibly concurrently.
type Callbacks struct {
	OnTaskStart func(index int, item string)
	OnTaskDone  func(result task.Result)
}

// Config holds configuration for an Aggregator.
type Config struct {
	Runner TaskRunner

	// Parallel caps concurrent tasks. Zero or less means one per item.
	Parallel int

	Logger    *slog.Logger
	Callbacks Callbacks
}

// Outcome is the reduced result of a batch.
type Outcome struct {
	Shortest task.Result
	Longest  task.Result

	// Valid and Invalid partition the results, each in input order.
	Valid   []task.Result
	Invalid []task.Result

	Elapsed time.Duration
}

// Total returns the number of tasks in the batch.
func (o *Outcome) Total() int {
	return len(o.Valid) + len(o.Invalid)
}

// Aggregator drives one task per item and joins on all of them.
type Aggregator struct {
	runner    TaskRunner
	parallel  int
	logger    *slog.Logger
	callbacks Callbacks
}

// New creates an Aggregator.
func New(cfg Config) *Aggregator {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Discard()
	}
	return &Aggregator{
		runner:    cfg.Runner,
		parallel:  cfg.Parallel,
		logger:    logger,
		callbacks: cfg.Callbacks,
	}
}

// Run executes the batch. With no valid results it returns ErrNoValidResults
// together with an Outcome holding the invalid partition.
func (a *Aggregator) Run(ctx context.Context, items []string) (*Outcome, error) {
	if len(items) == 0 {
		return nil, ErrNoItems
	}

	start := time.Now()
	a.logger.Info("batch_starting",
		"items", len(items),
		"parallel", a.workers(len(items)),
	)

	results := a.Collect(ctx, items)
	valid, invalid := Partition(results)

	outcome := &Outcome{
		Valid:   valid,
		Invalid: invalid,
		Elapsed: time.Since(start),
	}

	a.logger.Info("batch_complete",
		"valid", len(valid),
		"invalid", len(invalid),
		"elapsed", outcome.Elapsed.String(),
	)

	shortest, longest, ok := Extremes(valid)
	if !ok {
		return outcome, ErrNoValidResults
	}
	outcome.Shortest = shortest
	outcome.Longest = longest

	return outcome, nil
}

// Collect runs every item and returns one result per item, indexed by input
// position. It returns only after every task has finished.
func (a *Aggregator) Collect(ctx context.Context, items []string) []task.Result {
	results := make([]task.Result, len(items))

	var sem chan struct{}
	if n := a.workers(len(items)); n < len(items) {
		sem = make(chan struct{}, n)
	}

	var wg sync.WaitGroup
	for i, item := range items {
		wg.Add(1)
		go func(i int, item string) {
			defer wg.Done()

			if sem != nil {
				select {
				case sem <- struct{}{}:
					defer func() { <-sem }()
				case <-ctx.Done():
					// The runner maps a done context to a Canceled result
					// without starting the helper.
				}
			}

			if a.callbacks.OnTaskStart != nil {
				a.callbacks.OnTaskStart(i, item)
			}

			res := a.runner.Run(ctx, i, item)
			res.Index = i
			res.Item = item
			results[i] = res

			if a.callbacks.OnTaskDone != nil {
				a.callbacks.OnTaskDone(res)
			}
		}(i, item)
	}
	wg.Wait()

	return results
}

func (a *Aggregator) workers(n int) int {
	if a.parallel <= 0 || a.parallel > n {
		return n
	}
	return a.parallel
}

// Partition splits results into valid and invalid, keeping their order.
func Partition(results []task.Result) (valid, invalid []task.Result) {
	for _, r := range results {
		if r.Valid() {
			valid = append(valid, r)
		} else {
			invalid = append(invalid, r)
		}
	}
	return valid, invalid
}

// Extremes returns the results with the fewest and the most minutes in a
// single scan. On a tie the lower Index wins, for each extreme independently.
// ok is false when valid is empty.
func Extremes(valid []task.Result) (shortest, longest task.Result, ok bool) {
	if len(valid) == 0 {
		return task.Result{}, task.Result{}, false
	}

	shortest, longest = valid[0], valid[0]
	for _, r := range valid[1:] {
		if r.Minutes < shortest.Minutes || (r.Minutes == shortest.Minutes && r.Index < shortest.Index) {
			shortest = r
		}
		if r.Minutes > longest.Minutes || (r.Minutes == longest.Minutes && r.Index < longest.Index) {
			longest = r
		}
	}
	return shortest, longest, true
}
