// Package process provides abstractions for running the external runtime helper.
package process

import (
	"context"
	"errors"
	"os/exec"
	"syscall"
)

// CommandBuilder creates executable commands for items.
// This interface keeps the task runner independent of how the helper is invoked.
type CommandBuilder interface {
	// BuildCommand returns a ready-to-start command for the given item.
	// The command should NOT be started yet.
	BuildCommand(ctx context.Context, item string) (*exec.Cmd, error)

	// Name returns a human-readable name for this process type.
	Name() string

	// CommandString renders the command for item, for logs.
	CommandString(item string) string
}

// ExitCode extracts the exit status from the error returned by cmd.Wait.
// A process killed by a signal reports 128 + signal number.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		if status, ok := exitErr.Sys().(syscall.WaitStatus); ok {
			if status.Signaled() {
				return 128 + int(status.Signal())
			}
			return status.ExitStatus()
		}
		return exitErr.ExitCode()
	}

	// Unknown error, assume exit code 1
	return 1
}
