package process

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// DefaultWaitDelay bounds how long Wait keeps draining pipes after the
// helper was killed or exited while a grandchild still holds them open.
const DefaultWaitDelay = 2 * time.Second

// HelperConfig holds configuration for runtime helper execution.
type HelperConfig struct {
	// BinaryPath is the resolved path to the helper binary.
	BinaryPath string

	// Env holds extra KEY=VALUE entries appended to the inherited environment.
	Env []string

	// WaitDelay is passed to exec.Cmd.WaitDelay. Zero uses DefaultWaitDelay.
	WaitDelay time.Duration
}

// HelperRunner implements CommandBuilder for the runtime helper.
type HelperRunner struct {
	config *HelperConfig
}

// NewHelperRunner creates a new helper runner with the given configuration.
func NewHelperRunner(cfg *HelperConfig) *HelperRunner {
	return &HelperRunner{
		config: cfg,
	}
}

// Name returns the helper's base file name.
func (r *HelperRunner) Name() string {
	return filepath.Base(r.config.BinaryPath)
}

// BuildCommand creates an exec.Cmd running the helper with item as its only
// argument. The helper runs in its own process group, and cancelling ctx
// kills the whole group.
func (r *HelperRunner) BuildCommand(ctx context.Context, item string) (*exec.Cmd, error) {
	if r.config.BinaryPath == "" {
		return nil, errors.New("helper binary path is empty")
	}

	cmd := exec.CommandContext(ctx, r.config.BinaryPath, item)
	if len(r.config.Env) > 0 {
		cmd.Env = append(os.Environ(), r.config.Env...)
	}

	cmd.WaitDelay = r.config.WaitDelay
	if cmd.WaitDelay <= 0 {
		cmd.WaitDelay = DefaultWaitDelay
	}

	setProcessGroup(cmd)

	return cmd, nil
}

// CommandString returns the command that would be executed for item (for debugging).
func (r *HelperRunner) CommandString(item string) string {
	return r.config.BinaryPath + " " + quoteArg(item)
}

// quoteArg quotes s when it would not survive a shell round trip unquoted.
func quoteArg(s string) string {
	if s != "" && !strings.ContainsAny(s, " \t\n'\"\\$`|&;<>()*?[]#~") {
		return s
	}
	return strconv.Quote(s)
}
