package task

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/randomizedcoder/show-runtime/internal/logging"
	"github.com/randomizedcoder/show-runtime/internal/process"
)

// errNegativeRuntime rejects helper output below zero minutes.
var errNegativeRuntime = errors.New("runtime must not be negative")

// Config holds configuration for a Runner.
type Config struct {
	Builder process.CommandBuilder
	Logger  *slog.Logger

	// Diagnostics receives one line per invalid result. Nil means os.Stderr.
	Diagnostics io.Writer

	// Timeout bounds each helper run. Zero disables it.
	Timeout time.Duration
}

// Runner invokes the helper for one item at a time. It holds no per-task
// state, so a single Runner serves any number of concurrent Run calls.
type Runner struct {
	builder process.CommandBuilder
	logger  *slog.Logger
	timeout time.Duration

	diagMu sync.Mutex
	diag   io.Writer
}

// NewRunner creates a Runner.
func NewRunner(cfg Config) *Runner {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Discard()
	}
	diag := cfg.Diagnostics
	if diag == nil {
		diag = os.Stderr
	}

	return &Runner{
		builder: cfg.Builder,
		logger:  logger,
		timeout: cfg.Timeout,
		diag:    diag,
	}
}

// Run starts the helper with item as its only argument, waits for it and
// maps the outcome to a Result. It never panics or returns early on helper
// failure: every call yields exactly one Result and reaps its child process.
func (r *Runner) Run(ctx context.Context, index int, item string) Result {
	start := time.Now()

	res := r.run(ctx, item)
	res.Index = index
	res.Item = item
	res.Duration = time.Since(start)

	if res.Err != nil {
		r.diagnose(res.Err)
	}

	r.logger.Debug("task_finished",
		"index", index,
		"item", item,
		"command", r.builder.CommandString(item),
		"outcome", res.Reason.String(),
		"minutes", res.Minutes,
		"exit_code", res.ExitCode,
		"duration", res.Duration.String(),
	)

	return res
}

func (r *Runner) run(parent context.Context, item string) Result {
	if err := parent.Err(); err != nil {
		return invalid(item, ReasonCanceled, "interrupted before the helper started", err, -1)
	}

	ctx := parent
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(parent, r.timeout)
		defer cancel()
	}

	cmd, err := r.builder.BuildCommand(ctx, item)
	if err != nil {
		return invalid(item, ReasonLaunchFailed, "cannot start helper: "+err.Error(), err, -1)
	}

	// os/exec drains both pipes concurrently and Wait joins the copiers.
	var stdout bytes.Buffer
	stderr := logging.NewStderrHandler(item, r.logger)
	cmd.Stdout = &stdout
	cmd.Stderr = stderr

	if err := cmd.Start(); err != nil {
		if res, ok := r.interrupted(parent, ctx, item, err, -1); ok {
			return res
		}
		return invalid(item, ReasonLaunchFailed, "cannot start helper: "+err.Error(), err, -1)
	}

	waitErr := cmd.Wait()
	stderr.Flush()

	// The helper exited but a descendant kept a pipe open past WaitDelay.
	if errors.Is(waitErr, exec.ErrWaitDelay) && cmd.ProcessState != nil && cmd.ProcessState.Success() {
		waitErr = nil
	}

	if waitErr != nil {
		exitCode := process.ExitCode(waitErr)
		if res, ok := r.interrupted(parent, ctx, item, waitErr, exitCode); ok {
			res.Stderr = stderr.Text()
			return res
		}

		detail := stderr.Text()
		if detail == "" {
			detail = fmt.Sprintf("helper exited with status %d", exitCode)
		}
		res := invalid(item, ReasonHelperFailed, detail, waitErr, exitCode)
		res.Stderr = stderr.Text()
		return res
	}

	text := strings.TrimSpace(stdout.String())
	minutes, err := parseMinutes(text)
	if err != nil {
		res := invalid(item, ReasonMalformedOutput, text, err, 0)
		res.Stderr = stderr.Text()
		return res
	}

	return Result{
		Minutes:  minutes,
		ExitCode: 0,
		Stderr:   stderr.Text(),
	}
}

// interrupted maps a failure caused by the batch context or the per-task
// timeout. ok is false when neither context ended.
func (r *Runner) interrupted(parent, ctx context.Context, item string, err error, exitCode int) (Result, bool) {
	if cerr := parent.Err(); cerr != nil {
		return invalid(item, ReasonCanceled, "interrupted before the helper finished", errors.Join(cerr, err), exitCode), true
	}
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		detail := fmt.Sprintf("helper timed out after %s", r.timeout)
		return invalid(item, ReasonTimeout, detail, errors.Join(context.DeadlineExceeded, err), exitCode), true
	}
	return Result{}, false
}

// diagnose writes one diagnostic line. Concurrent tasks share the writer.
func (r *Runner) diagnose(err error) {
	r.diagMu.Lock()
	defer r.diagMu.Unlock()
	fmt.Fprintln(r.diag, err.Error())
}

func invalid(item string, reason Reason, detail string, err error, exitCode int) Result {
	return Result{
		Reason:   reason,
		ExitCode: exitCode,
		Err: &Error{
			Item:   item,
			Reason: reason,
			Detail: detail,
			Err:    err,
		},
	}
}

// parseMinutes parses trimmed helper output as a base-10 minute count.
func parseMinutes(text string) (int, error) {
	n, err := strconv.Atoi(text)
	if err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, errNegativeRuntime
	}
	return n, nil
}
